package posts

import (
	"context"

	"github.com/goliatone/go-router"
)

var subjectCtxKey = &contextKey{"subject"}
var claimsCtxKey = &contextKey{"claims"}

type contextKey struct {
	name string
}

// WithSubject sets the authenticated subject identifier in the given context
func WithSubject(ctx context.Context, subjectID string) context.Context {
	return context.WithValue(ctx, subjectCtxKey, subjectID)
}

// SubjectFromContext returns the authenticated subject identifier
func SubjectFromContext(ctx context.Context) (string, bool) {
	raw, ok := ctx.Value(subjectCtxKey).(string)
	return raw, ok && raw != ""
}

// WithClaimsContext sets the AuthClaims in the given context
func WithClaimsContext(ctx context.Context, claims AuthClaims) context.Context {
	return context.WithValue(ctx, claimsCtxKey, claims)
}

// GetClaims extracts the AuthClaims from the standard context
func GetClaims(ctx context.Context) (AuthClaims, bool) {
	raw, ok := ctx.Value(claimsCtxKey).(AuthClaims)
	return raw, ok
}

// GetRouterClaims extracts the AuthClaims stored by the auth gate in the request locals
func GetRouterClaims(c router.Context, key string) (AuthClaims, bool) {
	if key == "" {
		key = "user" // Default key used by JWT middleware
	}
	raw := c.Locals(key)
	if raw == nil {
		return nil, false
	}
	claims, ok := raw.(AuthClaims)
	return claims, ok
}
