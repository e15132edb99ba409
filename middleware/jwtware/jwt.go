package jwtware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-router"
)

var (
	defaultTokenLookup       = "header:" + router.HeaderAuthorization
	defaultAuthScheme        = "Bearer"
	ErrJWTMissingOrMalformed = errors.New("missing or malformed JWT")
)

// Reason describes why a request was rejected
type Reason string

const (
	ReasonMissingToken Reason = "no token"
	ReasonInvalidToken Reason = "invalid token"
	ReasonExpiredToken Reason = "expired token"
	ReasonForbidden    Reason = "rejected by listener"
)

// Rejection is the typed failure returned by Authenticate. The reason is
// meant for logs; clients should get the same response for every reason.
type Rejection struct {
	Reason Reason
	Err    error
}

func (r *Rejection) Error() string {
	if r.Err == nil {
		return string(r.Reason)
	}
	return fmt.Sprintf("%s: %s", r.Reason, r.Err)
}

func (r *Rejection) Unwrap() error {
	return r.Err
}

// AsRejection extracts a Rejection from err
func AsRejection(err error) (*Rejection, bool) {
	var rej *Rejection
	if errors.As(err, &rej) {
		return rej, true
	}
	return nil, false
}

// TokenValidator interface for validating tokens without import cycles
// This mirrors the TokenService.Validate method from the posts package
type TokenValidator interface {
	Validate(tokenString string) (AuthClaims, error)
}

// TokenValidatorFunc adapts a function into a TokenValidator.
type TokenValidatorFunc func(tokenString string) (AuthClaims, error)

// Validate satisfies the TokenValidator interface.
func (f TokenValidatorFunc) Validate(tokenString string) (AuthClaims, error) {
	return f(tokenString)
}

// AuthClaims interface for structured claims without import cycles
type AuthClaims interface {
	Subject() string
	UserID() string
}

// ValidationListener is invoked after a token has been validated but before
// the request proceeds.
type ValidationListener func(ctx router.Context, claims AuthClaims) error

type Config struct {
	Filter         func(router.Context) bool
	SuccessHandler router.HandlerFunc
	ErrorHandler   router.ErrorHandler
	ContextKey     string
	// TokenLookup is a comma separated list of sources,
	// header:Authorization,cookie:jwt,query:auth_token,param:token
	TokenLookup string
	// AuthScheme is the header value prefix. Empty means the header
	// carries the raw token.
	AuthScheme string
	// TokenValidator is required for token validation
	TokenValidator TokenValidator
	// IsExpired classifies validator errors as expired tokens
	IsExpired func(error) bool

	// ContextEnricher is an optional function to propagate claims to the
	// request user context. Called after successful token validation.
	ContextEnricher func(c context.Context, claims AuthClaims) context.Context

	// ValidationListeners are invoked after token validation succeeds.
	ValidationListeners []ValidationListener
}

// New returns the middleware guarding a route
func New(config ...Config) router.MiddlewareFunc {
	return func(hf router.HandlerFunc) router.HandlerFunc {
		cfg := GetDefaultConfig(config...)
		return func(ctx router.Context) error {
			if cfg.Filter != nil && cfg.Filter(ctx) {
				return ctx.Next()
			}

			claims, err := authenticate(ctx, cfg)
			if err != nil {
				return cfg.ErrorHandler(ctx, err)
			}

			ctx.Locals(cfg.ContextKey, claims)

			if cfg.ContextEnricher != nil {
				ctx.SetContext(cfg.ContextEnricher(ctx.Context(), claims))
			}

			return cfg.SuccessHandler(ctx)
		}
	}
}

// Authenticate runs the token checks for a single request without touching
// the request. It returns the claims or a *Rejection.
func Authenticate(ctx router.Context, config Config) (AuthClaims, error) {
	return authenticate(ctx, GetDefaultConfig(config))
}

func authenticate(ctx router.Context, cfg Config) (AuthClaims, error) {
	raw, err := ExtractRawTokenFromContext(ctx, cfg.getExtractors())
	if err != nil || raw == "" {
		return nil, &Rejection{Reason: ReasonMissingToken, Err: ErrJWTMissingOrMalformed}
	}

	claims, err := cfg.TokenValidator.Validate(raw)
	if err != nil {
		if cfg.IsExpired(err) {
			return nil, &Rejection{Reason: ReasonExpiredToken, Err: err}
		}
		return nil, &Rejection{Reason: ReasonInvalidToken, Err: err}
	}

	if claims == nil || claims.UserID() == "" {
		return nil, &Rejection{Reason: ReasonInvalidToken, Err: errors.New("token has no subject")}
	}

	if err := cfg.runValidationListeners(ctx, claims); err != nil {
		return nil, &Rejection{Reason: ReasonForbidden, Err: err}
	}

	return claims, nil
}

func ExtractRawTokenFromContext(ctx router.Context, extractors []JWTExtractor) (string, error) {
	var raw string
	err := ErrJWTMissingOrMalformed

	for _, extractor := range extractors {
		raw, err = extractor(ctx)
		if raw != "" && err == nil {
			break
		}
	}

	return raw, err
}

func GetDefaultConfig(config ...Config) (cfg Config) {
	if len(config) > 0 {
		cfg = config[0]
	}

	if cfg.SuccessHandler == nil {
		cfg.SuccessHandler = func(ctx router.Context) error {
			return ctx.Next()
		}
	}

	if cfg.ErrorHandler == nil {
		cfg.ErrorHandler = func(ctx router.Context, err error) error {
			return ctx.Status(http.StatusUnauthorized).SendString("Invalid or expired token")
		}
	}

	if cfg.TokenValidator == nil {
		panic("POSTS: JWT middleware configuration: TokenValidator is required.")
	}

	if cfg.IsExpired == nil {
		cfg.IsExpired = isExpiredError
	}

	if cfg.ContextKey == "" {
		cfg.ContextKey = "user"
	}

	if cfg.TokenLookup == "" {
		cfg.TokenLookup = defaultTokenLookup
		if cfg.AuthScheme == "" {
			cfg.AuthScheme = defaultAuthScheme
		}
	}

	return cfg
}

func isExpiredError(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, jwt.ErrTokenExpired) || strings.Contains(err.Error(), "token is expired")
}

func (cfg *Config) getExtractors() []JWTExtractor {
	return GetExtractors(cfg.TokenLookup, cfg.AuthScheme)
}

func (cfg *Config) runValidationListeners(ctx router.Context, claims AuthClaims) error {
	for _, listener := range cfg.ValidationListeners {
		if listener == nil {
			continue
		}
		if err := listener(ctx, claims); err != nil {
			return err
		}
	}
	return nil
}

func GetExtractors(tokenLookup string, authScheme string) []JWTExtractor {
	extractors := make([]JWTExtractor, 0)

	// header:Authorization,cookie:jwt,query:auth_token,param:token
	rootParts := strings.Split(tokenLookup, ",")
	for _, rootPart := range rootParts {
		parts := strings.SplitN(strings.TrimSpace(rootPart), ":", 2)
		if len(parts) != 2 {
			continue
		}

		source := strings.TrimSpace(parts[0])
		key := strings.TrimSpace(parts[1])

		switch source {
		case "header":
			extractors = append(extractors, jwtFromHeader(key, authScheme))
		case "query":
			extractors = append(extractors, jwtFromQuery(key))
		case "param":
			extractors = append(extractors, jwtFromParam(key))
		case "cookie":
			extractors = append(extractors, jwtFromCookie(key))
		}
	}

	return extractors
}

type JWTExtractor func(ctx router.Context) (string, error)

// jwtFromHeader returns a function that extracts token from the request header.
func jwtFromHeader(header string, authScheme string) JWTExtractor {
	authScheme = strings.TrimSpace(authScheme)
	return func(ctx router.Context) (string, error) {
		a := strings.TrimSpace(ctx.Header(header))
		if authScheme == "" {
			if a == "" {
				return "", ErrJWTMissingOrMalformed
			}
			return a, nil
		}

		l := len(authScheme)
		if len(a) > l+1 && strings.EqualFold(a[:l], authScheme) {
			return strings.TrimSpace(a[l:]), nil
		}
		return "", ErrJWTMissingOrMalformed
	}
}

// jwtFromQuery returns a function that extracts token from the query string.
func jwtFromQuery(param string) JWTExtractor {
	return func(ctx router.Context) (string, error) {
		token := ctx.Query(param, "")
		if token == "" {
			return "", ErrJWTMissingOrMalformed
		}
		return token, nil
	}
}

// jwtFromParam returns a function that extracts token from the url param string.
func jwtFromParam(param string) JWTExtractor {
	return func(ctx router.Context) (string, error) {
		token := ctx.Param(param)
		if token == "" {
			return "", ErrJWTMissingOrMalformed
		}
		return token, nil
	}
}

// jwtFromCookie returns a function that extracts token from the named cookie.
func jwtFromCookie(name string) JWTExtractor {
	return func(ctx router.Context) (string, error) {
		token := ctx.Cookies(name)
		if token == "" {
			return "", ErrJWTMissingOrMalformed
		}
		return token, nil
	}
}
