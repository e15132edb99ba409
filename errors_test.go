package posts_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-posts"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestIsTokenExpiredError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{
			name:     "Structured token expired error",
			err:      posts.ErrTokenExpired,
			expected: true,
		},
		{
			name:     "Legacy token expired error (string match)",
			err:      errors.New("some wrapper: token is expired"),
			expected: true,
		},
		{
			name:     "Different structured error",
			err:      posts.ErrUserNotFound,
			expected: false,
		},
		{
			name:     "Different legacy error",
			err:      errors.New("invalid token"),
			expected: false,
		},
		{
			name:     "Nil error",
			err:      nil,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, posts.IsTokenExpiredError(tt.err))
		})
	}
}

func TestIsMalformedError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{
			name:     "Structured malformed error",
			err:      posts.ErrTokenMalformed,
			expected: true,
		},
		{
			name:     "Legacy malformed error",
			err:      errors.New("missing or malformed JWT"),
			expected: true,
		},
		{
			name:     "Expired is not malformed",
			err:      posts.ErrTokenExpired,
			expected: false,
		},
		{
			name:     "Nil error",
			err:      nil,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, posts.IsMalformedError(tt.err))
		})
	}
}

func TestIsUniqueViolation(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{
			name:     "postgres unique violation",
			err:      fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"}),
			expected: true,
		},
		{
			name:     "postgres other violation",
			err:      &pgconn.PgError{Code: "23503"},
			expected: false,
		},
		{
			name:     "sqlite unique violation",
			err:      errors.New("constraint failed: UNIQUE constraint failed: users.email (2067)"),
			expected: true,
		},
		{
			name:     "unrelated",
			err:      errors.New("disk I/O error"),
			expected: false,
		},
		{
			name:     "nil",
			err:      nil,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, posts.IsUniqueViolation(tt.err))
		})
	}
}

func TestValidationFields(t *testing.T) {
	fields := []posts.FieldError{
		{Msg: "Title text is required", Param: "title", Location: "body"},
	}

	err := posts.NewValidationError(http.StatusBadRequest, fields)
	assert.Equal(t, fields, posts.ValidationFields(err))
	assert.Equal(t, http.StatusBadRequest, err.Code)
	assert.Equal(t, goerrors.CategoryValidation, err.Category)
	assert.True(t, posts.HasTextCode(err, posts.TextCodeValidationFailed))

	assert.Nil(t, posts.ValidationFields(errors.New("plain")))
	assert.Nil(t, posts.ValidationFields(posts.ErrUserNotFound))
}

func TestNewStoreError(t *testing.T) {
	cause := errors.New("connection reset")
	err := posts.NewStoreError(cause, "failed to insert post")

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, goerrors.CategoryInternal, err.Category)
	assert.True(t, posts.HasTextCode(err, posts.TextCodeStoreFailed))
	assert.False(t, posts.HasTextCode(cause, posts.TextCodeStoreFailed))
}
