package cache

import (
	"context"
	"fmt"

	"github.com/cafecrawl/backend/internal/infrastructure/auth"
	"github.com/cafecrawl/backend/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// BlacklistFactory creates token blacklists based on configuration
type BlacklistFactory struct {
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
	connect               func(context.Context, config.RedisConfig) (*redis.Client, error)
}

// BlacklistFactoryOption is a functional option for configuring the factory
type BlacklistFactoryOption func(*BlacklistFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) BlacklistFactoryOption {
	return func(f *BlacklistFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether to fall back to the in-memory
// blacklist when Redis is unavailable. Default is true.
func WithInMemoryFallback(allow bool) BlacklistFactoryOption {
	return func(f *BlacklistFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewBlacklistFactory creates a new factory
func NewBlacklistFactory(cfg config.RedisConfig, opts ...BlacklistFactoryOption) *BlacklistFactory {
	f := &BlacklistFactory{
		redisConfig:           cfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
		connect:               NewRedisClient,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// Blacklist is a token blacklist together with the Redis client backing it.
// Client is nil for the in-memory variant.
type Blacklist struct {
	auth.TokenBlacklist
	Client *redis.Client
}

// Close releases the Redis connection, if any
func (b *Blacklist) Close() error {
	if b.Client == nil {
		return nil
	}
	return b.Client.Close()
}

// Create returns a Redis-backed blacklist when Redis is enabled and
// reachable. Otherwise it falls back to the in-memory blacklist if allowed.
// In-memory revocations are not shared across instances.
func (f *BlacklistFactory) Create(ctx context.Context) (*Blacklist, error) {
	if !f.redisConfig.Enabled {
		if !f.allowInMemoryFallback {
			return nil, fmt.Errorf("Redis required for token revocation but disabled")
		}
		f.logger.Info("Redis disabled, using in-memory token blacklist")
		return &Blacklist{TokenBlacklist: auth.NewInMemoryTokenBlacklist()}, nil
	}

	client, err := f.connect(ctx, f.redisConfig)
	if err == nil {
		f.logger.Info("Using Redis token blacklist", zap.String("addr", f.redisConfig.Addr()))
		return &Blacklist{TokenBlacklist: auth.NewRedisTokenBlacklist(client), Client: client}, nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("Redis required for token revocation but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory token blacklist. "+
		"Revocations will not be shared between instances.",
		zap.Error(err),
	)
	return &Blacklist{TokenBlacklist: auth.NewInMemoryTokenBlacklist()}, nil
}
