package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryRevocationStore_RevokeToken(t *testing.T) {
	store := NewInMemoryRevocationStore()
	ctx := context.Background()

	require.NoError(t, store.RevokeToken(ctx, "jti-1", time.Hour))

	revoked, err := store.IsTokenRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = store.IsTokenRevoked(ctx, "jti-2")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestInMemoryRevocationStore_Expiration(t *testing.T) {
	store := NewInMemoryRevocationStore()
	ctx := context.Background()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	require.NoError(t, store.RevokeToken(ctx, "jti-1", time.Minute))

	now = now.Add(2 * time.Minute)
	revoked, err := store.IsTokenRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)
	assert.Empty(t, store.tokens)
}

func TestInMemoryRevocationStore_RevokeUser(t *testing.T) {
	store := NewInMemoryRevocationStore()
	ctx := context.Background()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	issuedBefore := now.Add(-time.Hour)

	revoked, err := store.IsUserRevoked(ctx, "user-1", issuedBefore)
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, store.RevokeUser(ctx, "user-1", time.Hour))

	revoked, err = store.IsUserRevoked(ctx, "user-1", issuedBefore)
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = store.IsUserRevoked(ctx, "user-1", now.Add(time.Second))
	require.NoError(t, err)
	assert.False(t, revoked, "tokens issued after the cut-off stay valid")

	revoked, err = store.IsUserRevoked(ctx, "user-2", issuedBefore)
	require.NoError(t, err)
	assert.False(t, revoked)
}
