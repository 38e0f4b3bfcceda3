package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"devconnect/config"
	"devconnect/internal/delivery/api/response"
	deliverycontext "devconnect/internal/delivery/context"
	"devconnect/internal/domain/entity"
	domainerrors "devconnect/internal/domain/errors"
	"devconnect/internal/domain/service"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

const bearerScheme = "bearer"

// Gate authenticates requests with credential tokens. Protect guards the
// configured path prefixes for every route; Authenticate guards single API routes.
type Gate struct {
	tokens     service.TokenService
	prefixes   []string
	loginPath  string
	cookieName string
	logger     *slog.Logger
}

// GateParams holds dependencies for Gate, injected by Fx. The gate verifies
// with the edge backend; tokens from either backend pass.
type GateParams struct {
	fx.In

	Tokens service.TokenService `name:"edgeTokens"`
	Config *config.Config
	Logger *slog.Logger
}

// NewGate is the constructor for Gate.
func NewGate(params GateParams) *Gate {
	auth := params.Config.Auth

	prefixes := make([]string, 0, len(auth.Gate.ProtectedPrefixes))
	for _, prefix := range auth.Gate.ProtectedPrefixes {
		prefix = "/" + strings.Trim(strings.TrimSpace(prefix), "/")
		if prefix != "/" {
			prefixes = append(prefixes, prefix)
		}
	}

	return &Gate{
		tokens:     params.Tokens,
		prefixes:   prefixes,
		loginPath:  auth.Gate.LoginPath,
		cookieName: auth.Cookie.Name,
		logger:     params.Logger,
	}
}

// IsProtected reports whether path falls under a protected prefix. Matching is
// per path segment: /profile covers /profile and /profile/x but not /profiles.
func (g *Gate) IsProtected(path string) bool {
	for _, prefix := range g.prefixes {
		if path == prefix || strings.HasPrefix(path, prefix+"/") {
			return true
		}
	}

	return false
}

// Protect is the global gate. Requests outside the protected prefixes pass
// untouched; inside them a valid token is required.
func (g *Gate) Protect(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !g.IsProtected(c.Request().URL.Path) {
			return next(c)
		}

		claims, err := g.verify(c)
		if err != nil {
			return g.deny(c, err)
		}
		deliverycontext.SetClaims(c, claims)

		return next(c)
	}
}

// Authenticate requires a valid token and always answers failures with 401 JSON.
func (g *Gate) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if claims := deliverycontext.GetClaims(c); claims != nil {
			return next(c)
		}

		claims, err := g.verify(c)
		if err != nil {
			return unauthorized(c, err)
		}
		deliverycontext.SetClaims(c, claims)

		return next(c)
	}
}

// RequireRole rejects authenticated callers whose role is not listed.
// It must run after Protect or Authenticate.
func (g *Gate) RequireRole(roles ...entity.Role) echo.MiddlewareFunc {
	allowed := entity.Roles(roles)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims := deliverycontext.GetClaims(c)
			if claims == nil {
				return unauthorized(c, domainerrors.ErrNoToken)
			}
			if !allowed.Contains(claims.Role) {
				deliverycontext.GetLoggerOrDefault(c.Request().Context(), g.logger).Debug("Role not permitted",
					slog.Any("role", claims.Role),
					slog.String("path", c.Request().URL.Path),
				)

				return response.Forbidden(c, domainerrors.ErrForbidden.ErrorCode(), domainerrors.ErrForbidden.Message())
			}

			return next(c)
		}
	}
}

// verify returns domainerrors.ErrNoToken or domainerrors.ErrInvalidToken on failure.
func (g *Gate) verify(c echo.Context) (*entity.Claims, error) {
	token := g.extractToken(c.Request())
	if token == "" {
		return nil, domainerrors.ErrNoToken
	}

	claims, err := g.tokens.Verify(token)
	if err != nil {
		deliverycontext.GetLoggerOrDefault(c.Request().Context(), g.logger).Info("Token rejected",
			slog.String("reason", string(service.TokenFailureReason(err))),
			slog.String("path", c.Request().URL.Path),
			slog.Any("error", err),
		)

		return nil, domainerrors.ErrInvalidToken
	}

	return claims, nil
}

// extractToken prefers the Authorization bearer token and falls back to the cookie.
func (g *Gate) extractToken(r *http.Request) string {
	if scheme, token, ok := strings.Cut(r.Header.Get(echo.HeaderAuthorization), " "); ok &&
		strings.EqualFold(scheme, bearerScheme) {
		if token = strings.TrimSpace(token); token != "" {
			return token
		}
	}

	if cookie, err := r.Cookie(g.cookieName); err == nil {
		return strings.TrimSpace(cookie.Value)
	}

	return ""
}

func (g *Gate) deny(c echo.Context, err error) error {
	if isAPIRequest(c.Request()) {
		return unauthorized(c, err)
	}

	return c.Redirect(http.StatusTemporaryRedirect, g.loginPath)
}

func unauthorized(c echo.Context, err error) error {
	appErr := domainerrors.ErrInvalidToken
	if errors.Is(err, domainerrors.ErrNoToken) {
		appErr = domainerrors.ErrNoToken
	}

	return response.Unauthorized(c, appErr.ErrorCode(), appErr.Message())
}

// isAPIRequest tells programmatic callers, which expect 401, from browser
// navigations, which expect a redirect to the login page.
func isAPIRequest(r *http.Request) bool {
	if r.Header.Get(echo.HeaderAuthorization) != "" {
		return true
	}
	if strings.EqualFold(r.Header.Get(echo.HeaderXRequestedWith), "XMLHttpRequest") {
		return true
	}

	accept := r.Header.Get(echo.HeaderAccept)

	return strings.Contains(accept, echo.MIMEApplicationJSON) && !strings.Contains(accept, echo.MIMETextHTML)
}
