package auth

import (
	"context"

	"connectrpc.com/connect"
)

// ServicePath is the Connect path prefix of the finance service.
const ServicePath = "/cashmate.v1.FinanceService/"

// AuthInterceptor creates a Connect interceptor that authenticates every
// non-public procedure with verifier.
func AuthInterceptor(verifier TokenVerifier) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			if isPublicEndpoint(req.Spec().Procedure) {
				return next(ctx, req)
			}

			// Already authenticated, e.g. by DebugAuthInterceptor
			if _, ok := GetUserClaims(ctx); ok {
				return next(ctx, req)
			}

			token, err := ExtractTokenFromHeader(req.Header().Get("Authorization"))
			if err != nil {
				return nil, connect.NewError(connect.CodeUnauthenticated, err)
			}

			claims, err := verifier.VerifyToken(ctx, token)
			if err != nil {
				return nil, connect.NewError(connect.CodeUnauthenticated, err)
			}

			return next(withUserClaims(ctx, claims), req)
		}
	}
}

// DebugAuthInterceptor creates an interceptor that allows impersonation via header
// ONLY use this in development - never in production!
func DebugAuthInterceptor(skipAuth bool) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			if skipAuth {
				if impersonateUser := req.Header().Get("X-Debug-Impersonate-User"); impersonateUser != "" {
					ctx = withUserClaims(ctx, &UserClaims{
						UID:   impersonateUser,
						Email: impersonateUser + "@debug.local",
					})
				}
			}
			return next(ctx, req)
		}
	}
}

// isPublicEndpoint checks if an endpoint should be accessible without authentication
func isPublicEndpoint(procedure string) bool {
	switch procedure {
	case "/health",
		ServicePath + "Register",
		ServicePath + "Login":
		return true
	}
	return false
}
