// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"devconnect/internal/delivery/api/middleware"
	"devconnect/internal/delivery/api/router/handler"
	"devconnect/internal/domain/entity"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

type RouterParams struct {
	fx.In

	AuthHandler      *handler.AuthHandler
	ProfileHandler   *handler.ProfileHandler
	DashboardHandler *handler.DashboardHandler
	Gate             *middleware.Gate
	Limiter          *middleware.CredentialLimiter
}

// router holds all the handlers that need to be registered.
type router struct {
	authHandler      *handler.AuthHandler
	profileHandler   *handler.ProfileHandler
	dashboardHandler *handler.DashboardHandler
	gate             *middleware.Gate
	limiter          *middleware.CredentialLimiter
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		authHandler:      params.AuthHandler,
		profileHandler:   params.ProfileHandler,
		dashboardHandler: params.DashboardHandler,
		gate:             params.Gate,
		limiter:          params.Limiter,
	}
}

// RegisterRoutes sets up all the API routes for the application.
// The server's global gate already covers the protected prefixes; Authenticate
// on the groups keeps the handlers guarded if the prefixes are reconfigured.
func (r *router) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", handler.HealthCheck)

	authGroup := e.Group("/auth")
	{
		limit := r.limiter.Middleware()
		authGroup.POST("/register", r.authHandler.Register, limit)
		authGroup.POST("/login", r.authHandler.Login, limit)
		authGroup.POST("/logout", r.authHandler.Logout)
		authGroup.GET("/me", r.authHandler.Me, r.gate.Authenticate)
	}

	dashboardGroup := e.Group("/dashboard", r.gate.Authenticate)
	{
		dashboardGroup.GET("", r.dashboardHandler.Dashboard)
		dashboardGroup.GET("/talent", r.dashboardHandler.Talent, r.gate.RequireRole(entity.RoleHirer))
	}

	profileGroup := e.Group("/profile", r.gate.Authenticate)
	{
		profileGroup.PUT("/:id", r.profileHandler.UpdateProfile)
		profileGroup.GET("/:id/qr", r.profileHandler.ProfileQRCode)
	}
}
