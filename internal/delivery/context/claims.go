package context

import (
	"context"

	"devconnect/internal/domain/entity"

	"github.com/labstack/echo/v4"
)

// KeyClaims is the key for the verified token claims.
const KeyClaims ContextKey = "claims"

// SetClaims stores verified claims on the echo context and the request context.
func SetClaims(c echo.Context, claims *entity.Claims) {
	c.Set(string(KeyClaims), claims)
	c.SetRequest(c.Request().WithContext(WithClaims(c.Request().Context(), claims)))
}

// GetClaims returns the claims set by the gate, or nil on an unauthenticated route.
func GetClaims(c echo.Context) *entity.Claims {
	if claims, ok := c.Get(string(KeyClaims)).(*entity.Claims); ok {
		return claims
	}

	return nil
}

// WithClaims returns a new context carrying the claims.
func WithClaims(ctx context.Context, claims *entity.Claims) context.Context {
	return context.WithValue(ctx, KeyClaims, claims)
}

// ClaimsFromContext extracts claims from a standard context.Context.
func ClaimsFromContext(ctx context.Context) *entity.Claims {
	if claims, ok := ctx.Value(KeyClaims).(*entity.Claims); ok {
		return claims
	}

	return nil
}
