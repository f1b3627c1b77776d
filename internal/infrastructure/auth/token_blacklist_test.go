package auth

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryTokenBlacklist_Revoke(t *testing.T) {
	b := NewInMemoryTokenBlacklist()
	ctx := context.Background()
	issued := time.Now().Add(-time.Minute)

	require.NoError(t, b.Revoke(ctx, "jti-1", time.Hour))

	revoked, err := b.IsRevoked(ctx, "jti-1", "u1", issued)
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = b.IsRevoked(ctx, "jti-2", "u1", issued)
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestInMemoryTokenBlacklist_EntriesExpire(t *testing.T) {
	b := NewInMemoryTokenBlacklist()
	ctx := context.Background()

	require.NoError(t, b.Revoke(ctx, "jti-short", time.Millisecond))
	time.Sleep(5 * time.Millisecond)

	revoked, err := b.IsRevoked(ctx, "jti-short", "u1", time.Now())
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestInMemoryTokenBlacklist_RevokeAllBefore(t *testing.T) {
	b := NewInMemoryTokenBlacklist()
	ctx := context.Background()

	require.NoError(t, b.RevokeAllBefore(ctx, "u1", time.Hour))

	revoked, err := b.IsRevoked(ctx, "any", "u1", time.Now().Add(-time.Minute))
	require.NoError(t, err)
	assert.True(t, revoked, "tokens issued before the cutoff are rejected")

	revoked, err = b.IsRevoked(ctx, "any", "u1", time.Now().Add(time.Minute))
	require.NoError(t, err)
	assert.False(t, revoked, "tokens issued after the cutoff are accepted")

	revoked, err = b.IsRevoked(ctx, "any", "u2", time.Now().Add(-time.Minute))
	require.NoError(t, err)
	assert.False(t, revoked, "other subjects are unaffected")
}

func TestInMemoryTokenBlacklist_RevokeAllBeforeKeepsCutoffSecond(t *testing.T) {
	b := NewInMemoryTokenBlacklist()
	ctx := context.Background()

	require.NoError(t, b.RevokeAllBefore(ctx, "u1", time.Hour))
	cutoffSecond := b.subjects["u1"].cutoff.Truncate(time.Second)

	revoked, err := b.IsRevoked(ctx, "fresh", "u1", cutoffSecond)
	require.NoError(t, err)
	assert.False(t, revoked, "tokens from the cutoff's own second survive")

	revoked, err = b.IsRevoked(ctx, "stale", "u1", cutoffSecond.Add(-time.Second))
	require.NoError(t, err)
	assert.True(t, revoked)
}

func TestInMemoryTokenBlacklist_SubjectCutoffExpires(t *testing.T) {
	b := NewInMemoryTokenBlacklist()
	ctx := context.Background()
	issued := time.Now().Add(-time.Minute)

	require.NoError(t, b.RevokeAllBefore(ctx, "u1", time.Millisecond))
	time.Sleep(5 * time.Millisecond)

	revoked, err := b.IsRevoked(ctx, "any", "u1", issued)
	require.NoError(t, err)
	assert.False(t, revoked)
	assert.NotContains(t, b.subjects, "u1", "expired cutoffs are pruned on read")
}

func TestInMemoryTokenBlacklist_SubjectCutoffWithoutTTL(t *testing.T) {
	b := NewInMemoryTokenBlacklist()
	ctx := context.Background()

	require.NoError(t, b.RevokeAllBefore(ctx, "u1", 0))

	revoked, err := b.IsRevoked(ctx, "any", "u1", time.Now().Add(-time.Minute))
	require.NoError(t, err)
	assert.True(t, revoked)
	assert.Contains(t, b.subjects, "u1")
}

func unreachableRedis() *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
}

func TestRedisTokenBlacklist_ReportsConnectionErrors(t *testing.T) {
	client := unreachableRedis()
	defer client.Close()
	b := NewRedisTokenBlacklist(client)
	ctx := context.Background()

	assert.Error(t, b.Revoke(ctx, "jti-1", time.Minute))
	assert.Error(t, b.RevokeAllBefore(ctx, "u1", time.Minute))

	revoked, err := b.IsRevoked(ctx, "jti-1", "u1", time.Now())
	assert.Error(t, err)
	assert.False(t, revoked)
}

func TestBlacklistKeys(t *testing.T) {
	assert.Equal(t, "cafecrawl:token:revoked:jti:abc", jtiKey("abc"))
	assert.Equal(t, "cafecrawl:token:revoked:sub:u1", subjectKey("u1"))
}
