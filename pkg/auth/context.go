package auth

import (
	"context"
	"errors"
)

type contextKey struct{}
type tokenKey struct{}

// ErrUnauthenticated is returned when a request carries no valid identity.
var ErrUnauthenticated = errors.New("unauthenticated")

// WithClaims returns a context carrying the authenticated user's claims.
func WithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, contextKey{}, claims)
}

// ClaimsFromContext extracts the authenticated user's claims from the context.
func ClaimsFromContext(ctx context.Context) (*Claims, error) {
	claims, ok := ctx.Value(contextKey{}).(*Claims)
	if !ok || claims == nil {
		return nil, ErrUnauthenticated
	}
	return claims, nil
}

// WithToken returns a context carrying the raw bearer token, kept so
// logout can revoke the exact token the request arrived with.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

// TokenFromContext extracts the raw bearer token from the context.
func TokenFromContext(ctx context.Context) (string, error) {
	token, ok := ctx.Value(tokenKey{}).(string)
	if !ok || token == "" {
		return "", ErrUnauthenticated
	}
	return token, nil
}
