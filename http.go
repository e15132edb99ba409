package posts

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-posts/middleware/jwtware"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
)

// ErrorResponse is the JSON body for every client facing failure
type ErrorResponse struct {
	Errors []FieldError `json:"errors"`
}

// NewServer builds the fiber backed server with the middleware stack and routes
func NewServer(controller *PostsController) router.Server[*fiber.App] {
	srv := router.NewFiberAdapter(func(*fiber.App) *fiber.App {
		app := fiber.New(fiber.Config{
			AppName:      "go-posts",
			ErrorHandler: ErrorHandler(controller.Logger),
		})

		app.Use(recover.New())

		if controller.AccessLog {
			app.Use(fiberlogger.New())
		}

		app.Use(cors.New(CORSConfig(controller.Config)))

		return app
	})

	RegisterRoutes(srv.Router(), controller)

	return srv
}

// CORSConfig allows the configured origin and token header
func CORSConfig(cfg Config) cors.Config {
	origin := DefaultCORSOrigin
	if cfg != nil && cfg.GetCORSOrigin() != "" {
		origin = cfg.GetCORSOrigin()
	}

	headers := []string{"Origin", "Content-Type", "Accept", fiber.HeaderAuthorization}
	headers = append(headers, tokenHeaders(lookupFor(cfg))...)

	return cors.Config{
		AllowOrigins: origin,
		AllowHeaders: strings.Join(headers, ", "),
		AllowMethods: "GET,POST,OPTIONS",
	}
}

func lookupFor(cfg Config) string {
	if cfg != nil {
		if l := cfg.GetTokenLookup(); l != "" {
			return l
		}
	}
	return "header:" + DefaultTokenHeader
}

// tokenHeaders lists the header sources of a token lookup
func tokenHeaders(lookup string) []string {
	var out []string
	for _, part := range strings.Split(lookup, ",") {
		source, key, ok := strings.Cut(strings.TrimSpace(part), ":")
		if !ok || strings.TrimSpace(source) != "header" {
			continue
		}
		key = strings.TrimSpace(key)
		if key == "" || strings.EqualFold(key, fiber.HeaderAuthorization) {
			continue
		}
		out = append(out, key)
	}
	return out
}

// ErrorHandler maps rich errors onto the fixed response shapes. Internal
// details are logged and never sent to the client.
func ErrorHandler(logger Logger) fiber.ErrorHandler {
	logger = normalizeLogger(logger)

	return func(c *fiber.Ctx, err error) error {
		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return c.Status(fiberErr.Code).SendString(fiberErr.Message)
		}
		return WriteError(router.NewFiberContext(c), logger, err)
	}
}

// WriteError sends the client facing response for err
func WriteError(ctx router.Context, logger Logger, err error) error {
	logger = normalizeLogger(logger)

	if rej, ok := jwtware.AsRejection(err); ok {
		logger.Info("request rejected", "reason", rej.Reason, "path", ctx.OriginalURL())
		return sendUnauthorized(ctx)
	}

	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		logger.Error("unexpected error", "method", ctx.Method(), "path", ctx.OriginalURL(), "error", err)
		return sendServerError(ctx)
	}

	switch richErr.Category {
	case goerrors.CategoryValidation, goerrors.CategoryBadInput:
		fields := ValidationFields(richErr)
		if len(fields) == 0 {
			fields = []FieldError{{Msg: richErr.Message}}
		}
		code := richErr.Code
		if code == 0 {
			code = http.StatusUnprocessableEntity
		}
		return ctx.JSON(code, ErrorResponse{Errors: fields})
	case goerrors.CategoryConflict:
		return ctx.JSON(http.StatusBadRequest, ErrorResponse{
			Errors: []FieldError{{Msg: richErr.Message}},
		})
	case goerrors.CategoryAuth, goerrors.CategoryAuthz:
		logger.Info("request rejected", "text_code", richErr.TextCode, "path", ctx.OriginalURL())
		return sendUnauthorized(ctx)
	default:
		logger.Error("server error",
			"method", ctx.Method(),
			"path", ctx.OriginalURL(),
			"error", err,
			"details", print.MaybePrettyJSON(richErr.Metadata),
		)
		return sendServerError(ctx)
	}
}

func sendUnauthorized(ctx router.Context) error {
	return ctx.JSON(http.StatusUnauthorized, ErrorResponse{
		Errors: []FieldError{{Msg: MessageUnauthorized}},
	})
}

func sendServerError(ctx router.Context) error {
	return ctx.Status(http.StatusInternalServerError).SendString(MessageServerError)
}

// ProtectedRoute returns the auth gate. Every rejection gets the same 401
// body, the reason only goes to the logs and the activity sink.
func ProtectedRoute(cfg Config, tokens TokenService, opts ...HandlerOption) router.MiddlewareFunc {
	o := newHandlerOptions(opts...)

	contextKey := ""
	if cfg != nil {
		contextKey = cfg.GetContextKey()
	}

	return jwtware.New(jwtware.Config{
		ContextKey:      contextKey,
		TokenLookup:     lookupFor(cfg),
		TokenValidator:  TokenValidatorFor(tokens),
		IsExpired:       IsTokenExpiredError,
		ContextEnricher: ContextEnricherAdapter,
		ErrorHandler: func(ctx router.Context, err error) error {
			reason := "unknown"
			if rej, ok := jwtware.AsRejection(err); ok {
				reason = string(rej.Reason)
			}
			o.logger.Info("auth gate rejected request",
				"method", ctx.Method(),
				"path", ctx.OriginalURL(),
				"reason", reason,
			)
			recordActivity(ctx.Context(), o.activity, o.logger, ActivityEvent{
				EventType: ActivityEventAuthRejected,
				Metadata: map[string]any{
					"reason": reason,
					"path":   ctx.Path(),
				},
			})
			return sendUnauthorized(ctx)
		},
	})
}

// TokenValidatorFor adapts a TokenService to the gate validator
func TokenValidatorFor(tokens TokenService) jwtware.TokenValidator {
	return jwtware.TokenValidatorFunc(func(raw string) (jwtware.AuthClaims, error) {
		claims, err := tokens.Validate(raw)
		if err != nil {
			return nil, err
		}
		return claims, nil
	})
}
