package http

import (
	"context"
	"fmt"
	"runtime/debug"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"go.uber.org/zap"

	"github.com/spec-kit/tour-service/internal/config"
	"github.com/spec-kit/tour-service/internal/observability"
	apperrors "github.com/spec-kit/tour-service/pkg/util"
)

const (
	apiPrefix = "/api"

	msgMaskedAPI  = "Something went wrong!"
	msgMaskedPage = "Please try again later."
	errorTitle    = "Something went wrong!"

	contentSecurityPolicy = "default-src 'self';" +
		"connect-src 'self' https://unpkg.com https://tile.openstreetmap.org ws:;" +
		"script-src 'self' https://unpkg.com https://tile.openstreetmap.org;" +
		"style-src 'self' 'unsafe-inline' https://unpkg.com https://tile.openstreetmap.org https://fonts.googleapis.com/;" +
		"worker-src 'self' blob:;" +
		"object-src 'none';" +
		"img-src 'self' blob: data: https:;" +
		"font-src 'self' fonts.googleapis.com fonts.gstatic.com;"
)

// MiddlewareConfig carries what the global middleware chain needs.
type MiddlewareConfig struct {
	Logger  *zap.Logger
	Metrics *observability.Metrics
	Timeout time.Duration
	// Development exposes error detail to API callers.
	Development bool
	RateLimit   config.RateLimitConfig
	// LimiterStorage keeps rate limit counters; nil uses fiber's in-process store.
	LimiterStorage fiber.Storage
}

// RegisterMiddlewares attaches global middlewares such as error handling and logging.
func RegisterMiddlewares(app *fiber.App, cfg MiddlewareConfig) {
	if cfg.Timeout > 0 {
		app.Use(requestTimeoutMiddleware(cfg.Timeout))
	}
	app.Use(errorHandlingMiddleware(cfg.Logger, cfg.Metrics, cfg.Development))
	app.Use(observability.RequestLogger(cfg.Logger, cfg.Metrics))
	app.Use(helmet.New(helmet.Config{
		ContentSecurityPolicy:     contentSecurityPolicy,
		CrossOriginEmbedderPolicy: "credentialless",
	}))
	if cfg.RateLimit.Max > 0 {
		app.Use(apiPrefix, rateLimitMiddleware(cfg.RateLimit, cfg.LimiterStorage))
	}
}

func requestTimeoutMiddleware(timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}

func rateLimitMiddleware(cfg config.RateLimitConfig, storage fiber.Storage) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        cfg.Max,
		Expiration: cfg.Window,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return fiber.NewError(fiber.StatusTooManyRequests, cfg.Message)
		},
		Storage: storage,
	})
}

func errorHandlingMiddleware(logger *zap.Logger, metrics *observability.Metrics, development bool) fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		var stack []byte
		defer func() {
			if r := recover(); r != nil {
				stack = debug.Stack()
				logger.Error("panic recovered", zap.Any("panic", r), zap.ByteString("stack", stack))
				err = apperrors.NewInternalError(fmt.Errorf("panic: %v", r))
			}
			if err != nil {
				domainErr := apperrors.ToDomainError(err)
				metrics.RecordError(c.Path(), c.Method(), domainErr.Code)
				if !domainErr.Operational {
					logger.Error("request failed",
						zap.String("request_id", observability.RequestID(c)),
						zap.Error(domainErr))
				}
				err = respondError(c, domainErr, development, stack)
			}
		}()
		return c.Next()
	}
}

// respondError writes a JSON envelope for API callers and the error page otherwise.
// Non-operational messages are masked unless running in development.
func respondError(c *fiber.Ctx, domainErr *apperrors.DomainError, development bool, stack []byte) error {
	c.Status(domainErr.HTTPStatus)
	reveal := domainErr.Operational || development

	if !strings.HasPrefix(c.Path(), apiPrefix) {
		msg := domainErr.Message
		if !reveal {
			msg = msgMaskedPage
		}
		if err := c.Render("error", fiber.Map{"Title": errorTitle, "Msg": msg}, "layouts/base"); err != nil {
			return c.SendString(msg)
		}
		return nil
	}

	msg := domainErr.Message
	if !reveal {
		msg = msgMaskedAPI
	}
	body := fiber.Map{
		"code":    domainErr.Code,
		"message": msg,
	}
	if len(domainErr.Details) > 0 {
		body["details"] = domainErr.Details
	}
	if development {
		if domainErr.Err != nil {
			body["detail"] = domainErr.Err.Error()
		}
		if len(stack) > 0 {
			body["stack"] = string(stack)
		}
	}
	return c.JSON(fiber.Map{"status": statusWord(domainErr.HTTPStatus), "error": body})
}

func statusWord(status int) string {
	if status < fiber.StatusInternalServerError {
		return "fail"
	}
	return "error"
}

func notFound(c *fiber.Ctx) error {
	return apperrors.NewNotFound(fmt.Sprintf("Can't find %s on this server!", c.OriginalURL()))
}
