package posts

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Logger takes a message followed by alternating key value pairs
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Error(msg string, args ...any)
}

// Config holds the options the HTTP surface and the token service need
type Config interface {
	GetSigningKey() string
	GetContextKey() string
	GetTokenExpiration() time.Duration
	GetTokenLookup() string
	GetIssuer() string
	GetRequestTimeout() time.Duration
	GetCORSOrigin() string
	GetUseHashid() bool
}

// PasswordHasher hashes and checks passwords
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) bool
}

// TokenService mints and verifies signed tokens
type TokenService interface {
	Generate(subjectID string, ttl time.Duration) (string, error)
	Validate(tokenString string) (AuthClaims, error)
}

// Users is the user store
type Users interface {
	FindByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	Insert(ctx context.Context, user *User) (*User, error)
}

// Posts is the post store
type Posts interface {
	Insert(ctx context.Context, post *Post) (*Post, error)
}

// RepositoryManager exposes all repositories
type RepositoryManager interface {
	Validate() error
	MustValidate()
	Users() Users
	Posts() Posts
}

type defLogger struct{}

func (d defLogger) Error(msg string, args ...any) {
	fmt.Print("[ERR] POSTS " + formatLine(msg, args...))
}

func (d defLogger) Info(msg string, args ...any) {
	fmt.Print("[INF] POSTS " + formatLine(msg, args...))
}

func (d defLogger) Debug(msg string, args ...any) {
	fmt.Print("[DBG] POSTS " + formatLine(msg, args...))
}

// DefaultLogger returns the stdout logger used when none is provided
func DefaultLogger() Logger {
	return defLogger{}
}

func normalizeLogger(l Logger) Logger {
	if l == nil {
		return defLogger{}
	}
	return l
}

// formatLine renders msg and its key value pairs as a single line
func formatLine(msg string, args ...any) string {
	var b strings.Builder
	b.WriteString(msg)
	for i := 0; i < len(args); i += 2 {
		if i+1 < len(args) {
			fmt.Fprintf(&b, " %v=%v", args[i], args[i+1])
			continue
		}
		fmt.Fprintf(&b, " %v", args[i])
	}
	return newline(b.String())
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
