package server

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) registerRoutes() {
	// Observability endpoints (no auth required)
	s.echo.GET("/health/live", s.handleLiveness)
	s.echo.GET("/health/ready", s.handleReadiness)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Root - redirect by identity
	s.echo.GET("/", s.handleHome)

	// Static assets
	s.echo.Static("/static", "web/static")

	// Guest-only routes (GETs run the CSRF middleware to issue the token)
	s.echo.GET("/login", s.handleLoginPage, s.requireGuest, s.csrfMiddleware)
	s.echo.POST("/login", s.handleLogin, s.requireGuest, s.csrfMiddleware)
	s.echo.GET("/register", s.handleRegisterPage, s.requireGuest, s.csrfMiddleware)
	s.echo.POST("/register", s.handleRegister, s.requireGuest, s.csrfMiddleware)

	// Authenticated routes
	s.echo.POST("/logout", s.handleLogout, s.requireAuth, s.csrfMiddleware)
	s.echo.GET("/dashboard", s.handleDashboard, s.requireAuth, s.csrfMiddleware)
	s.echo.GET("/create-application", s.handleCreateApplicationPage, s.requireAuth, s.csrfMiddleware)
	s.echo.POST("/create-application", s.handleCreateApplication, s.requireAuth, s.csrfMiddleware)

	// Admin-only routes
	s.echo.GET("/admin", s.handleAdminPanel, s.requireAdmin, s.csrfMiddleware)
	s.echo.POST("/admin/applications/:id/status", s.handleSetApplicationStatus, s.requireAdmin, s.csrfMiddleware)
	s.echo.POST("/admin/applications/:id/delete", s.handleDeleteApplication, s.requireAdmin, s.csrfMiddleware)
}
