package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"devconnect/config"
	"devconnect/internal/delivery/api/response"
	deliverycontext "devconnect/internal/delivery/context"
	"devconnect/internal/domain/entity"
	domainerrors "devconnect/internal/domain/errors"
	"devconnect/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// AuthHandlerParams holds dependencies for AuthHandler, injected by Fx.
type AuthHandlerParams struct {
	fx.In

	AuthUC usecase.AuthUsecase
	Config *config.Config
	Logger *slog.Logger
}

// AuthHandler serves registration, login and the current-identity lookup.
type AuthHandler struct {
	authUC usecase.AuthUsecase
	cookie config.CookieConfig
	logger *slog.Logger
}

// NewAuthHandler is the constructor for AuthHandler.
func NewAuthHandler(params AuthHandlerParams) *AuthHandler {
	return &AuthHandler{
		authUC: params.AuthUC,
		cookie: params.Config.Auth.Cookie,
		logger: params.Logger,
	}
}

// RegisterRequest represents the request body for registration.
type RegisterRequest struct {
	Email     string `json:"email" validate:"required,email,max=254"`
	Password  string `json:"password" validate:"required,min=6,max=72"`
	Name      string `json:"name" validate:"required,min=2,max=50"`
	UserType  string `json:"userType" validate:"required,oneof=student hirer"`
	Bio       string `json:"bio" validate:"max=500"`
	Company   string `json:"company" validate:"max=100"`
	Position  string `json:"position" validate:"max=100"`
	Education string `json:"education" validate:"max=200"`
	Github    string `json:"github" validate:"omitempty,max=200"`
}

// LoginRequest represents the request body for login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
	UserType string `json:"userType" validate:"required,oneof=student hirer"`
}

func (r *RegisterRequest) normalize() {
	r.Email = strings.TrimSpace(r.Email)
	r.Name = strings.TrimSpace(r.Name)
	r.UserType = strings.TrimSpace(r.UserType)
	r.Bio = strings.TrimSpace(r.Bio)
}

func (r *LoginRequest) normalize() {
	r.Email = strings.TrimSpace(r.Email)
	r.UserType = strings.TrimSpace(r.UserType)
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return bindError(c, err)
	}
	req.normalize()

	if err := c.Validate(&req); err != nil {
		return response.HandleAppError(c, err)
	}

	out, err := h.authUC.Register(c.Request().Context(), usecase.RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		Name:      req.Name,
		UserType:  req.UserType,
		Bio:       req.Bio,
		Company:   req.Company,
		Position:  req.Position,
		Education: req.Education,
		Github:    req.Github,
	})
	if err != nil {
		return response.HandleAppError(c, err)
	}

	h.setTokenCookie(c, out.Token)

	return response.Auth(c, http.StatusCreated, "User created successfully", out.Identity.Public(), out.Token)
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return bindError(c, err)
	}
	req.normalize()

	if err := c.Validate(&req); err != nil {
		return response.HandleAppError(c, err)
	}

	out, err := h.authUC.Login(c.Request().Context(), usecase.LoginInput{
		Email:    req.Email,
		Password: req.Password,
		UserType: req.UserType,
	})
	if err != nil {
		return response.HandleAppError(c, err)
	}

	h.setTokenCookie(c, out.Token)

	return response.Auth(c, http.StatusOK, "Login successful", out.Identity.Public(), out.Token)
}

// Me handles GET /auth/me. The gate has already verified the token.
func (h *AuthHandler) Me(c echo.Context) error {
	claims := deliverycontext.GetClaims(c)
	if claims == nil {
		return response.Unauthorized(c, domainerrors.ErrNoToken.ErrorCode(), domainerrors.ErrNoToken.Message())
	}

	identity, err := h.authUC.Me(c.Request().Context(), claims.SubjectID)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.User(c, http.StatusOK, "", identity.Public())
}

// Logout handles POST /auth/logout. Tokens are not revocable; this only
// expires the cookie in the caller's browser.
func (h *AuthHandler) Logout(c echo.Context) error {
	c.SetCookie(h.newCookie("", -1))

	return response.Message(c, http.StatusOK, "Logged out")
}

func (h *AuthHandler) setTokenCookie(c echo.Context, token string) {
	if !h.cookie.ServerSet {
		return
	}
	c.SetCookie(h.newCookie(token, int(entity.TokenLifetime.Seconds())))
}

func (h *AuthHandler) newCookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     h.cookie.Name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: sameSite(h.cookie.SameSite),
	}
}

func sameSite(mode string) http.SameSite {
	switch strings.ToLower(mode) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}

// bindError keeps echo's binding failures from reaching the error handler as 500s.
func bindError(c echo.Context, err error) error {
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) && httpErr.Code == http.StatusUnsupportedMediaType {
		return response.Error(c, http.StatusUnsupportedMediaType, "UNSUPPORTED_MEDIA_TYPE", "Unsupported media type")
	}

	return response.Error(c, http.StatusBadRequest, "INVALID_INPUT", "Invalid request body")
}
