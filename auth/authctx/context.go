// Package authctx carries the authenticated caller through a request
// context.
//
//	ctx = authctx.Set(ctx, claims)
//	claims, ok := authctx.Get(ctx)
package authctx

import (
	"context"
	"errors"

	"github.com/kbukum/bookstore/auth/jwt"
)

type contextKey struct{}

// ErrNoClaims is returned when the context carries no caller.
var ErrNoClaims = errors.New("authctx: no claims in context")

// Set stores claims in ctx.
func Set(ctx context.Context, claims *jwt.Claims) context.Context {
	return context.WithValue(ctx, contextKey{}, claims)
}

// Get returns the claims stored by Set.
func Get(ctx context.Context) (*jwt.Claims, bool) {
	claims, ok := ctx.Value(contextKey{}).(*jwt.Claims)
	return claims, ok && claims != nil
}

// GetOrError returns the claims or ErrNoClaims.
func GetOrError(ctx context.Context) (*jwt.Claims, error) {
	claims, ok := Get(ctx)
	if !ok {
		return nil, ErrNoClaims
	}
	return claims, nil
}
