package posts

import (
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	TextCodeValidationFailed   = "VALIDATION_FAILED"
	TextCodeUserExists         = "USER_ALREADY_EXISTS"
	TextCodeUserNotFound       = "USER_NOT_FOUND"
	TextCodeTokenExpired       = "TOKEN_EXPIRED"
	TextCodeTokenMalformed     = "TOKEN_MALFORMED"
	TextCodeUnauthorized       = "UNAUTHORIZED"
	TextCodeEmptyPassword      = "EMPTY_PASSWORD"
	TextCodePasswordTooLong    = "PASSWORD_TOO_LONG"
	TextCodePasswordMismatch   = "PASSWORD_MISMATCH"
	TextCodeHashingFailed      = "HASHING_FAILED"
	TextCodeStoreFailed        = "STORE_FAILED"
	TextCodeTokenSigningFailed = "TOKEN_SIGNING_FAILED"
)

// MessageServerError is the only detail clients get for internal failures
const MessageServerError = "Server error"

// MessageUnauthorized is returned for every rejected token
const MessageUnauthorized = "Authorization denied"

// ErrUserAlreadyExists is returned when the email is already registered
var ErrUserAlreadyExists = goerrors.New("User already exists", goerrors.CategoryConflict).
	WithCode(http.StatusBadRequest).
	WithTextCode(TextCodeUserExists)

// ErrUserNotFound is returned by stores when no user matches
var ErrUserNotFound = goerrors.New("user not found", goerrors.CategoryNotFound).
	WithCode(http.StatusNotFound).
	WithTextCode(TextCodeUserNotFound)

// ErrTokenExpired is returned for tokens past their expiry
var ErrTokenExpired = goerrors.New("token is expired", goerrors.CategoryAuth).
	WithCode(http.StatusUnauthorized).
	WithTextCode(TextCodeTokenExpired)

// ErrTokenMalformed is returned for tokens with a bad signature or shape
var ErrTokenMalformed = goerrors.New("token is malformed", goerrors.CategoryAuth).
	WithCode(http.StatusUnauthorized).
	WithTextCode(TextCodeTokenMalformed)

// ErrUnauthorized is the generic auth failure
var ErrUnauthorized = goerrors.New(MessageUnauthorized, goerrors.CategoryAuth).
	WithCode(http.StatusUnauthorized).
	WithTextCode(TextCodeUnauthorized)

// ErrNoEmptyString is returned when hashing an empty password
var ErrNoEmptyString = goerrors.New("password must not be empty", goerrors.CategoryValidation).
	WithCode(http.StatusUnprocessableEntity).
	WithTextCode(TextCodeEmptyPassword)

// ErrPasswordTooLong is returned when a password exceeds the bcrypt input limit
var ErrPasswordTooLong = goerrors.New("password must be at most 72 bytes", goerrors.CategoryValidation).
	WithCode(http.StatusUnprocessableEntity).
	WithTextCode(TextCodePasswordTooLong)

// ErrMismatchedHashAndPassword is returned when a password does not match its hash
var ErrMismatchedHashAndPassword = goerrors.New("password does not match", goerrors.CategoryAuth).
	WithCode(http.StatusUnauthorized).
	WithTextCode(TextCodePasswordMismatch)

// FieldError is a single violated validation rule
type FieldError struct {
	Msg      string `json:"msg"`
	Param    string `json:"param,omitempty"`
	Location string `json:"location,omitempty"`
}

const metadataErrorsKey = "errors"

// NewValidationError builds a validation error carrying every violated field
func NewValidationError(code int, fields []FieldError) *goerrors.Error {
	return goerrors.New("invalid payload", goerrors.CategoryValidation).
		WithCode(code).
		WithTextCode(TextCodeValidationFailed).
		WithMetadata(map[string]any{
			metadataErrorsKey: fields,
		})
}

// ValidationFields returns the field errors attached to a validation error
func ValidationFields(err error) []FieldError {
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) || richErr.Metadata == nil {
		return nil
	}
	fields, _ := richErr.Metadata[metadataErrorsKey].([]FieldError)
	return fields
}

// NewStoreError wraps a persistence failure
func NewStoreError(err error, message string) *goerrors.Error {
	return goerrors.Wrap(err, goerrors.CategoryInternal, message).
		WithCode(http.StatusInternalServerError).
		WithTextCode(TextCodeStoreFailed)
}

// NewHashingError wraps a password hashing failure
func NewHashingError(err error) *goerrors.Error {
	return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password").
		WithCode(http.StatusInternalServerError).
		WithTextCode(TextCodeHashingFailed)
}

// HasTextCode reports whether err is a rich error with the given text code
func HasTextCode(err error, code string) bool {
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		return false
	}
	return richErr.TextCode == code
}

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	if HasTextCode(err, TextCodeTokenExpired) {
		return true
	}
	return strings.Contains(err.Error(), "token is expired")
}

// IsMalformedError will check for error message
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}
	if HasTextCode(err, TextCodeTokenMalformed) {
		return true
	}
	return strings.Contains(err.Error(), "token is malformed") ||
		strings.Contains(err.Error(), "missing or malformed JWT")
}

const pgUniqueViolation = "23505"

// IsUniqueViolation matches unique constraint failures across the SQL backends
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}

	var pgErr *pgconn.PgError
	if goerrors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}

	// sqlite drivers only expose the constraint in the message
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "SQLSTATE 23505") ||
		strings.Contains(msg, "duplicate key")
}
