package auth

import (
	"context"
	"fmt"
	"strings"

	"github.com/cafecrawl/backend/internal/domain/identity"
	"github.com/cafecrawl/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// JWTResolver resolves bearer access tokens to callers
type JWTResolver struct {
	jwt       *JWTService
	blacklist TokenBlacklist
	logger    *zap.Logger
}

// NewJWTResolver creates a resolver. blacklist may be nil to skip revocation checks.
func NewJWTResolver(jwtService *JWTService, blacklist TokenBlacklist, log *zap.Logger) *JWTResolver {
	if log == nil {
		log = zap.NewNop()
	}
	return &JWTResolver{jwt: jwtService, blacklist: blacklist, logger: log}
}

// Resolve implements identity.Resolver. Every failure wraps
// identity.ErrUnauthenticated.
func (r *JWTResolver) Resolve(ctx context.Context, credential string) (*identity.Caller, error) {
	credential = strings.TrimSpace(credential)
	if credential == "" {
		return nil, identity.ErrUnauthenticated
	}

	claims, err := r.jwt.ValidateAccessToken(credential)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", identity.ErrUnauthenticated, err)
	}

	if r.blacklist != nil {
		revoked, err := r.blacklist.IsRevoked(ctx, claims.ID, claims.Subject, claims.IssuedAt.Time)
		switch {
		case err != nil:
			// Fails open once the signature has verified.
			r.logger.Warn("Token revocation check failed, allowing request",
				zap.String("request_id", logger.GetRequestID(ctx)),
				zap.String("jti", claims.ID),
				zap.Error(err),
			)
		case revoked:
			return nil, fmt.Errorf("%w: %w", identity.ErrUnauthenticated, ErrTokenRevoked)
		}
	}

	return identity.NewCaller(claims.CallerID())
}

var _ identity.Resolver = (*JWTResolver)(nil)
