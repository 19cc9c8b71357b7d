package auth

import (
	"context"
	"testing"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequireAuth(t *testing.T) {
	t.Run("returns error when no claims in context", func(t *testing.T) {
		claims, err := RequireAuth(context.Background())
		assert.Nil(t, claims)
		require.Error(t, err)
		assert.Equal(t, connect.CodeUnauthenticated, connect.CodeOf(err))
	})

	t.Run("returns error when claims have no UID", func(t *testing.T) {
		ctx := withUserClaims(context.Background(), &UserClaims{Email: "x@example.com"})
		_, err := RequireAuth(ctx)
		assert.Equal(t, connect.CodeUnauthenticated, connect.CodeOf(err))
	})

	t.Run("returns claims when present in context", func(t *testing.T) {
		expectedClaims := &UserClaims{UID: "user-123", Email: "test@example.com"}
		ctx := withUserClaims(context.Background(), expectedClaims)

		claims, err := RequireAuth(ctx)
		require.NoError(t, err)
		assert.Equal(t, expectedClaims.UID, claims.UID)
		assert.Equal(t, expectedClaims.Email, claims.Email)
	})
}

func TestRequireOwnership(t *testing.T) {
	claims := &UserClaims{UID: "user-123"}

	assert.NoError(t, RequireOwnership(claims, "user-123"))

	err := RequireOwnership(claims, "user-456")
	require.Error(t, err)
	assert.Equal(t, connect.CodePermissionDenied, connect.CodeOf(err))
	assert.Contains(t, err.Error(), "cannot access another user's resources")
}

func TestNormalizePageSize(t *testing.T) {
	assert.Equal(t, int32(50), NormalizePageSize(0))
	assert.Equal(t, int32(50), NormalizePageSize(-5))
	assert.Equal(t, int32(20), NormalizePageSize(20))
	assert.Equal(t, int32(200), NormalizePageSize(5000))
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("s3cret-pass")
	require.NoError(t, err)

	assert.NotEqual(t, "s3cret-pass", hash)
	assert.True(t, CheckPassword(hash, "s3cret-pass"))
	assert.False(t, CheckPassword(hash, "wrong"))
	assert.False(t, CheckPassword("not-a-hash", "s3cret-pass"))
}
