package posts

import (
	"context"

	"github.com/goliatone/go-posts/middleware/jwtware"
)

// ContextEnricherAdapter stores the verified subject, and the full claims
// when available, in the request context for the handlers.
func ContextEnricherAdapter(c context.Context, claims jwtware.AuthClaims) context.Context {
	if claims == nil {
		return c
	}

	ctx := WithSubject(c, claims.UserID())

	if authClaims, ok := claims.(AuthClaims); ok {
		ctx = WithClaimsContext(ctx, authClaims)
	}

	return ctx
}
