package middleware

import (
	"log/slog"
	"net/http"

	"devconnect/config"
	"devconnect/internal/delivery/api/response"
	deliverycontext "devconnect/internal/delivery/context"
	domainerrors "devconnect/internal/domain/errors"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/fx"
)

// CredentialLimiter throttles the login and registration endpoints per client IP.
type CredentialLimiter struct {
	enabled bool
	store   echomiddleware.RateLimiterStore
	logger  *slog.Logger
}

// CredentialLimiterParams holds dependencies for CredentialLimiter, injected by Fx.
type CredentialLimiterParams struct {
	fx.In

	Store  echomiddleware.RateLimiterStore
	Config *config.Config
	Logger *slog.Logger
}

// NewCredentialLimiter is the constructor for CredentialLimiter.
func NewCredentialLimiter(params CredentialLimiterParams) *CredentialLimiter {
	return &CredentialLimiter{
		enabled: params.Config.RateLimit != nil && params.Config.RateLimit.Enabled,
		store:   params.Store,
		logger:  params.Logger,
	}
}

// Middleware returns the limiter, or a pass-through when rate limiting is disabled.
func (l *CredentialLimiter) Middleware() echo.MiddlewareFunc {
	if !l.enabled {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}

	return echomiddleware.RateLimiterWithConfig(echomiddleware.RateLimiterConfig{
		Store: l.store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return response.Error(c, http.StatusForbidden, domainerrors.ErrForbidden.ErrorCode(), domainerrors.ErrForbidden.Message())
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			deliverycontext.GetLoggerOrDefault(c.Request().Context(), l.logger).Warn("Credential endpoint rate limited",
				slog.String("identifier", identifier),
				slog.String("path", c.Request().URL.Path),
			)

			return response.Error(c, http.StatusTooManyRequests, domainerrors.ErrTooManyRequests.ErrorCode(), domainerrors.ErrTooManyRequests.Message())
		},
	})
}
