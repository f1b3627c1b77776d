package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenBlacklist records revoked access tokens so they are rejected before
// they expire
type TokenBlacklist interface {
	// Revoke blacklists a single token by jti for ttl
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	// RevokeAllBefore rejects every token of subject issued in an earlier
	// second than now. Token iat has one-second precision, so tokens issued
	// within the cutoff's own second stay valid and a fresh login right after
	// logout-all works.
	RevokeAllBefore(ctx context.Context, subject string, ttl time.Duration) error
	// IsRevoked reports whether the token identified by jti, issued to subject
	// at issuedAt, has been revoked by either mechanism
	IsRevoked(ctx context.Context, jti, subject string, issuedAt time.Time) (bool, error)
}

const blacklistKeyPrefix = "cafecrawl:token:revoked:"

// RedisTokenBlacklist implements TokenBlacklist on Redis so that every
// instance sees the same revocations
type RedisTokenBlacklist struct {
	client redis.UniversalClient
}

// NewRedisTokenBlacklist wraps an existing Redis client
func NewRedisTokenBlacklist(client redis.UniversalClient) *RedisTokenBlacklist {
	return &RedisTokenBlacklist{client: client}
}

func jtiKey(jti string) string {
	return blacklistKeyPrefix + "jti:" + jti
}

func subjectKey(subject string) string {
	return blacklistKeyPrefix + "sub:" + subject
}

// Revoke implements TokenBlacklist
func (b *RedisTokenBlacklist) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if err := b.client.Set(ctx, jtiKey(jti), "1", ttl).Err(); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

// RevokeAllBefore implements TokenBlacklist
func (b *RedisTokenBlacklist) RevokeAllBefore(ctx context.Context, subject string, ttl time.Duration) error {
	if err := b.client.Set(ctx, subjectKey(subject), time.Now().Unix(), ttl).Err(); err != nil {
		return fmt.Errorf("failed to revoke tokens for subject: %w", err)
	}
	return nil
}

// IsRevoked implements TokenBlacklist with a single pipelined round trip
func (b *RedisTokenBlacklist) IsRevoked(ctx context.Context, jti, subject string, issuedAt time.Time) (bool, error) {
	pipe := b.client.Pipeline()
	existsCmd := pipe.Exists(ctx, jtiKey(jti))
	cutoffCmd := pipe.Get(ctx, subjectKey(subject))
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return false, fmt.Errorf("failed to check token revocation: %w", err)
	}

	if existsCmd.Val() > 0 {
		return true, nil
	}

	raw, err := cutoffCmd.Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check subject revocation: %w", err)
	}
	cutoff, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return false, fmt.Errorf("failed to parse revocation timestamp: %w", err)
	}

	return issuedAt.Unix() < cutoff, nil
}

var _ TokenBlacklist = (*RedisTokenBlacklist)(nil)

// InMemoryTokenBlacklist keeps revocations in process memory. It only fits
// single-instance development setups and tests.
type InMemoryTokenBlacklist struct {
	mu       sync.Mutex
	tokens   map[string]time.Time // jti -> entry expiry
	subjects map[string]subjectCutoff
}

// subjectCutoff is a logout-all marker. A zero expiry never expires.
type subjectCutoff struct {
	cutoff time.Time
	expiry time.Time
}

func (s subjectCutoff) expired(now time.Time) bool {
	return !s.expiry.IsZero() && !now.Before(s.expiry)
}

// NewInMemoryTokenBlacklist creates an empty in-memory blacklist
func NewInMemoryTokenBlacklist() *InMemoryTokenBlacklist {
	return &InMemoryTokenBlacklist{
		tokens:   make(map[string]time.Time),
		subjects: make(map[string]subjectCutoff),
	}
}

// Revoke implements TokenBlacklist
func (b *InMemoryTokenBlacklist) Revoke(_ context.Context, jti string, ttl time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tokens[jti] = time.Now().Add(ttl)
	return nil
}

// RevokeAllBefore implements TokenBlacklist
func (b *InMemoryTokenBlacklist) RevokeAllBefore(_ context.Context, subject string, ttl time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	now := time.Now()
	entry := subjectCutoff{cutoff: now}
	if ttl > 0 {
		entry.expiry = now.Add(ttl)
	}
	b.subjects[subject] = entry
	return nil
}

// IsRevoked implements TokenBlacklist
func (b *InMemoryTokenBlacklist) IsRevoked(_ context.Context, jti, subject string, issuedAt time.Time) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now()
	if expiry, ok := b.tokens[jti]; ok {
		if now.Before(expiry) {
			return true, nil
		}
		delete(b.tokens, jti)
	}

	entry, ok := b.subjects[subject]
	if !ok {
		return false, nil
	}
	if entry.expired(now) {
		delete(b.subjects, subject)
		return false, nil
	}
	return issuedAt.Unix() < entry.cutoff.Unix(), nil
}

var _ TokenBlacklist = (*InMemoryTokenBlacklist)(nil)
