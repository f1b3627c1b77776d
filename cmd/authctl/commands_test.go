package main

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/cafecrawl/backend/internal/infrastructure/auth"
	"github.com/cafecrawl/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCLI() (*cli, *auth.InMemoryTokenBlacklist, *bytes.Buffer) {
	out := &bytes.Buffer{}
	blacklist := auth.NewInMemoryTokenBlacklist()
	return &cli{
		jwt: auth.NewJWTService(config.JWTConfig{
			Secret:                "authctl-test-secret-at-least-32-chars",
			Issuer:                "cafecrawl",
			AccessTokenExpiration: time.Hour,
		}),
		blacklist: blacklist,
		out:       out,
	}, blacklist, out
}

func TestIssue(t *testing.T) {
	c, _, out := newTestCLI()

	require.NoError(t, c.run(context.Background(), "issue", []string{"-sub", "user-1", "-ttl", "30m"}))

	var issued auth.IssuedToken
	require.NoError(t, json.Unmarshal(out.Bytes(), &issued))
	assert.Equal(t, "Bearer", issued.TokenType)
	assert.WithinDuration(t, time.Now().Add(30*time.Minute), issued.ExpiresAt, 2*time.Second)

	claims, err := c.jwt.ValidateAccessToken(issued.Token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.CallerID())
}

func TestIssue_MissingSubject(t *testing.T) {
	c, _, _ := newTestCLI()
	err := c.run(context.Background(), "issue", nil)
	assert.ErrorIs(t, err, auth.ErrMissingSubject)
}

func TestRevoke(t *testing.T) {
	c, blacklist, out := newTestCLI()
	issued, err := c.jwt.IssueAccessToken("user-1", 10*time.Minute)
	require.NoError(t, err)

	require.NoError(t, c.run(context.Background(), "revoke", []string{"-token", issued.Token}))
	assert.Contains(t, out.String(), issued.TokenID)

	revoked, err := blacklist.IsRevoked(context.Background(), issued.TokenID, "user-1", time.Now())
	require.NoError(t, err)
	assert.True(t, revoked)
}

func TestRevoke_Errors(t *testing.T) {
	c, _, _ := newTestCLI()
	ctx := context.Background()

	assert.Error(t, c.run(ctx, "revoke", nil))
	assert.ErrorIs(t, c.run(ctx, "revoke", []string{"-token", "not-a-jwt"}), auth.ErrInvalidToken)

	c.blacklist = nil
	issued, err := c.jwt.IssueAccessToken("user-1", 0)
	require.NoError(t, err)
	assert.Error(t, c.run(ctx, "revoke", []string{"-token", issued.Token}))
}

func TestLogoutAll(t *testing.T) {
	c, blacklist, out := newTestCLI()
	ctx := context.Background()

	require.NoError(t, c.run(ctx, "logout-all", []string{"-sub", "user-1"}))
	assert.Contains(t, out.String(), "user-1")

	revoked, err := blacklist.IsRevoked(ctx, "jti-old", "user-1", time.Now().Add(-time.Minute))
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = blacklist.IsRevoked(ctx, "jti-other", "user-2", time.Now().Add(-time.Minute))
	require.NoError(t, err)
	assert.False(t, revoked)

	assert.ErrorIs(t, c.run(ctx, "logout-all", nil), auth.ErrMissingSubject)
}

func TestUnknownCommand(t *testing.T) {
	c, _, _ := newTestCLI()
	assert.ErrorIs(t, c.run(context.Background(), "rotate", nil), errUnknownCommand)
}
