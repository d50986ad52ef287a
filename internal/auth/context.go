package auth

import (
	"context"

	"github.com/gateward/go-core/pkg/types"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const (
	principalContextKey contextKey = "principal"
	tokenContextKey     contextKey = "bearer_token"
)

// WithPrincipal stores the principal and its raw bearer token in the
// context. The raw token is kept only so the token-exchange service can
// derive on-behalf-of tokens; it must never be logged.
func WithPrincipal(ctx context.Context, principal *types.Principal, token string) context.Context {
	ctx = context.WithValue(ctx, principalContextKey, principal)
	return context.WithValue(ctx, tokenContextKey, token)
}

// PrincipalFromContext returns the request principal, or nil for anonymous
func PrincipalFromContext(ctx context.Context) *types.Principal {
	principal, _ := ctx.Value(principalContextKey).(*types.Principal)
	return principal
}

// TokenFromContext returns the caller's raw bearer token, or empty
func TokenFromContext(ctx context.Context) string {
	token, _ := ctx.Value(tokenContextKey).(string)
	return token
}
