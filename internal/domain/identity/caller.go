package identity

import (
	"context"
	"errors"
	"strings"
)

// ErrUnauthenticated is returned by a Resolver when a credential is missing,
// malformed, expired or revoked.
var ErrUnauthenticated = errors.New("unauthenticated")

// Caller is the identity resolved from a request credential.
// It is never persisted.
type Caller struct {
	ID string
}

// NewCaller builds a Caller from a resolved subject.
func NewCaller(id string) (*Caller, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrUnauthenticated
	}
	return &Caller{ID: id}, nil
}

// Resolver turns an opaque bearer credential into a Caller.
type Resolver interface {
	Resolve(ctx context.Context, credential string) (*Caller, error)
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(ctx context.Context, credential string) (*Caller, error)

// Resolve implements Resolver.
func (f ResolverFunc) Resolve(ctx context.Context, credential string) (*Caller, error) {
	return f(ctx, credential)
}
