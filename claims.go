package posts

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AuthClaims represents the decoded token payload
type AuthClaims interface {
	Subject() string
	UserID() string
	Expires() time.Time
	IssuedAt() time.Time
}

// ClaimsUser is the `user` object carried in the token payload
type ClaimsUser struct {
	ID string `json:"id"`
}

// JWTClaims is the concrete implementation of AuthClaims.
// Payload shape: {"user": {"id": "..."}, "sub": "...", "exp": ...}
type JWTClaims struct {
	jwt.RegisteredClaims
	User ClaimsUser `json:"user"`
}

// Verify interface compliance
var _ AuthClaims = (*JWTClaims)(nil)

// Subject returns the subject claim
func (c *JWTClaims) Subject() string {
	return c.RegisteredClaims.Subject
}

// UserID returns the user ID
func (c *JWTClaims) UserID() string {
	if c.User.ID != "" {
		return c.User.ID
	}
	return c.Subject()
}

// Expires returns the expiration time
func (c *JWTClaims) Expires() time.Time {
	if c.RegisteredClaims.ExpiresAt != nil {
		return c.RegisteredClaims.ExpiresAt.Time
	}
	return time.Time{}
}

// IssuedAt returns the issued at time
func (c *JWTClaims) IssuedAt() time.Time {
	if c.RegisteredClaims.IssuedAt != nil {
		return c.RegisteredClaims.IssuedAt.Time
	}
	return time.Time{}
}
