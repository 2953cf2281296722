// Package server implements the HTTP layer: routes, the session issuer,
// the access gate, and page handlers.
package server

import (
	"context"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/gerosd/book-exchange/internal/config"
	"github.com/gerosd/book-exchange/internal/domain"
	apperrors "github.com/gerosd/book-exchange/internal/errors"
	"github.com/gorilla/sessions"
	"github.com/jonboulle/clockwork"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	goredis "github.com/redis/go-redis/v9"
)

const sessionMaxAgeDays = 7

// postgresHealthChecker is a minimal interface for database health checks.
type postgresHealthChecker interface {
	HealthCheck(ctx context.Context) error
}

type Server struct {
	echo           *echo.Echo
	config         *config.Config
	app            domain.AppService
	sessionStore   *sessions.CookieStore
	csrfMiddleware echo.MiddlewareFunc
	db             postgresHealthChecker
	redisClient    *goredis.Client
	clock          clockwork.Clock
	startTime      time.Time

	loginTemplate     *template.Template
	registerTemplate  *template.Template
	dashboardTemplate *template.Template
	createTemplate    *template.Template
	adminTemplate     *template.Template
}

// NewServer wires the HTTP layer. redisClient may be nil if Redis is not
// configured; the readiness probe then checks PostgreSQL only.
func NewServer(cfg *config.Config, app domain.AppService, db postgresHealthChecker, redisClient *goredis.Client, clock clockwork.Clock) (*Server, error) {
	// Parse templates once at startup
	loginTmpl, err := template.ParseFiles("web/templates/login.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse login template: %w", err)
	}
	registerTmpl, err := template.ParseFiles("web/templates/register.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse register template: %w", err)
	}
	dashboardTmpl, err := template.ParseFiles("web/templates/dashboard.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse dashboard template: %w", err)
	}
	createTmpl, err := template.ParseFiles("web/templates/create_application.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse create application template: %w", err)
	}
	adminTmpl, err := template.ParseFiles("web/templates/admin.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse admin template: %w", err)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(apperrors.Middleware())

	// Session store
	sessionStore := sessions.NewCookieStore([]byte(cfg.SessionSecret))
	sessionStore.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400 * sessionMaxAgeDays,
		HttpOnly: true,
		Secure:   cfg.AppEnv == "production",
		SameSite: http.SameSiteLaxMode,
	}

	srv := &Server{
		echo:         e,
		config:       cfg,
		app:          app,
		sessionStore: sessionStore,
		csrfMiddleware: middleware.CSRFWithConfig(middleware.CSRFConfig{
			TokenLookup: "form:csrf_token,header:X-CSRF-Token",
			CookieName:  "csrf_token",
		}),
		db:                db,
		redisClient:       redisClient,
		clock:             clock,
		startTime:         clock.Now(),
		loginTemplate:     loginTmpl,
		registerTemplate:  registerTmpl,
		dashboardTemplate: dashboardTmpl,
		createTemplate:    createTmpl,
		adminTemplate:     adminTmpl,
	}

	srv.registerRoutes()

	return srv, nil
}

func (s *Server) Start() error {
	return s.echo.Start(fmt.Sprintf(":%s", s.config.Port))
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
