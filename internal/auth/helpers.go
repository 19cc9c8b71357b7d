package auth

import (
	"context"
	"fmt"

	"connectrpc.com/connect"
)

// RequireAuth extracts user claims from context or returns an unauthenticated error
func RequireAuth(ctx context.Context) (*UserClaims, error) {
	claims, ok := GetUserClaims(ctx)
	if !ok || claims.UID == "" {
		return nil, connect.NewError(connect.CodeUnauthenticated, fmt.Errorf("user not authenticated"))
	}
	return claims, nil
}

// RequireOwnership verifies the authenticated user owns a record
func RequireOwnership(claims *UserClaims, ownerID string) error {
	if ownerID != claims.UID {
		return connect.NewError(connect.CodePermissionDenied,
			fmt.Errorf("cannot access another user's resources"))
	}
	return nil
}

// NormalizePageSize returns a valid page size (default 50, max 200)
func NormalizePageSize(pageSize int32) int32 {
	if pageSize <= 0 {
		return 50
	}
	if pageSize > 200 {
		return 200
	}
	return pageSize
}
