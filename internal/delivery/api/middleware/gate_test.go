package middleware

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"devconnect/config"
	deliverycontext "devconnect/internal/delivery/context"
	"devconnect/internal/domain/entity"
	"devconnect/internal/infra/auth"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newTestConfig() *config.Config {
	return &config.Config{
		Auth: &config.AuthConfig{
			Secret: testSecret,
			Cookie: config.CookieConfig{Name: "auth-token", SameSite: "lax"},
			Gate: config.GateConfig{
				LoginPath:         "/login",
				ProtectedPrefixes: []string{"/dashboard", "profile/", " /jobs "},
			},
		},
	}
}

func newTestGate(t *testing.T) *Gate {
	t.Helper()

	edge, err := auth.NewJoseSigner(testSecret)
	require.NoError(t, err)

	return NewGate(GateParams{
		Tokens: edge,
		Config: newTestConfig(),
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
}

// issueServerToken issues with the other backend so every gate test also checks interchangeability.
func issueServerToken(t *testing.T, id uuid.UUID, role entity.Role, opts ...auth.Option) string {
	t.Helper()

	signer, err := auth.NewJWTSigner(testSecret, opts...)
	require.NoError(t, err)
	token, err := signer.Issue(id, role)
	require.NoError(t, err)

	return token
}

type gateResult struct {
	rec     *httptest.ResponseRecorder
	claims  *entity.Claims
	reached bool
}

func serve(g *Gate, mw echo.MiddlewareFunc, req *http.Request) gateResult {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var result gateResult
	handler := mw(func(c echo.Context) error {
		result.reached = true
		result.claims = deliverycontext.ClaimsFromContext(c.Request().Context())

		return c.NoContent(http.StatusOK)
	})
	_ = handler(c)
	result.rec = rec

	return result
}

func decodeMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	msg, _ := body["message"].(string)

	return msg
}

func TestGate_IsProtected(t *testing.T) {
	g := newTestGate(t)

	tests := []struct {
		path string
		want bool
	}{
		{"/dashboard", true},
		{"/dashboard/talent", true},
		{"/profile", true},
		{"/profile/123/qr", true},
		{"/jobs", true},
		{"/profiles", false},
		{"/dashboards/x", false},
		{"/", false},
		{"/auth/login", false},
		{"/health", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, g.IsProtected(tt.path))
		})
	}
}

func TestGate_Protect_PublicPathPassesWithoutToken(t *testing.T) {
	g := newTestGate(t)

	req := httptest.NewRequest(http.MethodGet, "/auth/login", nil)
	result := serve(g, g.Protect, req)

	assert.True(t, result.reached)
	assert.Nil(t, result.claims)
	assert.Equal(t, http.StatusOK, result.rec.Code)
}

func TestGate_Protect_ValidTokens(t *testing.T) {
	g := newTestGate(t)
	id := uuid.New()
	token := issueServerToken(t, id, entity.RoleStudent)

	tests := []struct {
		name  string
		setup func(r *http.Request)
	}{
		{"bearer header", func(r *http.Request) { r.Header.Set(echo.HeaderAuthorization, "Bearer "+token) }},
		{"lowercase scheme", func(r *http.Request) { r.Header.Set(echo.HeaderAuthorization, "bearer "+token) }},
		{"cookie", func(r *http.Request) { r.AddCookie(&http.Cookie{Name: "auth-token", Value: token}) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
			tt.setup(req)

			result := serve(g, g.Protect, req)

			require.True(t, result.reached)
			require.NotNil(t, result.claims)
			assert.Equal(t, id, result.claims.SubjectID)
			assert.Equal(t, entity.RoleStudent, result.claims.Role)
		})
	}
}

func TestGate_Protect_HeaderWinsOverCookie(t *testing.T) {
	g := newTestGate(t)
	headerID := uuid.New()

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+issueServerToken(t, headerID, entity.RoleHirer))
	req.AddCookie(&http.Cookie{Name: "auth-token", Value: issueServerToken(t, uuid.New(), entity.RoleStudent)})

	result := serve(g, g.Protect, req)

	require.NotNil(t, result.claims)
	assert.Equal(t, headerID, result.claims.SubjectID)
}

func TestGate_Protect_Denials(t *testing.T) {
	g := newTestGate(t)
	expired := issueServerToken(t, uuid.New(), entity.RoleStudent, auth.WithClock(func() time.Time {
		return time.Now().Add(-8 * 24 * time.Hour)
	}))

	tests := []struct {
		name         string
		setup        func(r *http.Request)
		wantStatus   int
		wantMessage  string
		wantLocation string
	}{
		{
			name:         "browser without token is redirected",
			setup:        func(r *http.Request) { r.Header.Set(echo.HeaderAccept, "text/html,application/xhtml+xml") },
			wantStatus:   http.StatusTemporaryRedirect,
			wantLocation: "/login",
		},
		{
			name:         "browser with expired cookie is redirected",
			setup:        func(r *http.Request) { r.AddCookie(&http.Cookie{Name: "auth-token", Value: expired}) },
			wantStatus:   http.StatusTemporaryRedirect,
			wantLocation: "/login",
		},
		{
			name:        "json client without token",
			setup:       func(r *http.Request) { r.Header.Set(echo.HeaderAccept, echo.MIMEApplicationJSON) },
			wantStatus:  http.StatusUnauthorized,
			wantMessage: "No token provided",
		},
		{
			name:        "xhr without token",
			setup:       func(r *http.Request) { r.Header.Set(echo.HeaderXRequestedWith, "XMLHttpRequest") },
			wantStatus:  http.StatusUnauthorized,
			wantMessage: "No token provided",
		},
		{
			name:        "bearer with garbage",
			setup:       func(r *http.Request) { r.Header.Set(echo.HeaderAuthorization, "Bearer not.a.token") },
			wantStatus:  http.StatusUnauthorized,
			wantMessage: "Invalid token",
		},
		{
			name:        "bearer with expired token",
			setup:       func(r *http.Request) { r.Header.Set(echo.HeaderAuthorization, "Bearer "+expired) },
			wantStatus:  http.StatusUnauthorized,
			wantMessage: "Invalid token",
		},
		{
			name:        "empty bearer",
			setup:       func(r *http.Request) { r.Header.Set(echo.HeaderAuthorization, "Bearer   ") },
			wantStatus:  http.StatusUnauthorized,
			wantMessage: "No token provided",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/profile/abc", nil)
			tt.setup(req)

			result := serve(g, g.Protect, req)

			assert.False(t, result.reached)
			assert.Equal(t, tt.wantStatus, result.rec.Code)
			if tt.wantLocation != "" {
				assert.Equal(t, tt.wantLocation, result.rec.Header().Get(echo.HeaderLocation))
			}
			if tt.wantMessage != "" {
				assert.Equal(t, tt.wantMessage, decodeMessage(t, result.rec))
			}
		})
	}
}

func TestGate_Authenticate_AlwaysAnswers401(t *testing.T) {
	g := newTestGate(t)

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.Header.Set(echo.HeaderAccept, "text/html")

	result := serve(g, g.Authenticate, req)

	assert.False(t, result.reached)
	assert.Equal(t, http.StatusUnauthorized, result.rec.Code)
	assert.Equal(t, "No token provided", decodeMessage(t, result.rec))
}

func TestGate_Authenticate_ValidToken(t *testing.T) {
	g := newTestGate(t)
	id := uuid.New()

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+issueServerToken(t, id, entity.RoleHirer))

	result := serve(g, g.Authenticate, req)

	require.True(t, result.reached)
	require.NotNil(t, result.claims)
	assert.Equal(t, id, result.claims.SubjectID)
}

func TestGate_RequireRole(t *testing.T) {
	g := newTestGate(t)
	hirerOnly := func(next echo.HandlerFunc) echo.HandlerFunc {
		return g.Authenticate(g.RequireRole(entity.RoleHirer)(next))
	}

	tests := []struct {
		name       string
		role       entity.Role
		wantStatus int
	}{
		{"hirer allowed", entity.RoleHirer, http.StatusOK},
		{"student forbidden", entity.RoleStudent, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/dashboard/talent", nil)
			req.Header.Set(echo.HeaderAuthorization, "Bearer "+issueServerToken(t, uuid.New(), tt.role))

			result := serve(g, hirerOnly, req)

			assert.Equal(t, tt.wantStatus, result.rec.Code)
			assert.Equal(t, tt.wantStatus == http.StatusOK, result.reached)
		})
	}
}

func TestGate_RequireRole_WithoutClaims(t *testing.T) {
	g := newTestGate(t)

	req := httptest.NewRequest(http.MethodGet, "/dashboard/talent", nil)
	result := serve(g, g.RequireRole(entity.RoleHirer), req)

	assert.False(t, result.reached)
	assert.Equal(t, http.StatusUnauthorized, result.rec.Code)
}
