package server

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/gerosd/book-exchange/internal/domain"
	apperrors "github.com/gerosd/book-exchange/internal/errors"
	"github.com/gerosd/book-exchange/internal/phone"
	"github.com/labstack/echo/v4"
)

// genericLoginError deliberately gives no detail on which field was wrong.
const genericLoginError = "Invalid login/phone or password"

func (s *Server) handleLoginPage(c echo.Context) error {
	data := map[string]interface{}{
		"CSRFToken":  c.Get("csrf"),
		"Registered": c.QueryParam("success") == "registration",
		"Error":      "",
	}
	return renderTemplate(c, 200, s.loginTemplate, data)
}

func (s *Server) renderLoginError(c echo.Context, status int, message string) error {
	data := map[string]interface{}{
		"CSRFToken":  c.Get("csrf"),
		"Registered": false,
		"Error":      message,
	}
	return renderTemplate(c, status, s.loginTemplate, data)
}

func (s *Server) handleLogin(c echo.Context) error {
	identifier := strings.TrimSpace(c.FormValue("login"))
	password := c.FormValue("password")

	user, err := s.app.Authenticate(c.Request().Context(), identifier, password)
	if errors.Is(err, domain.ErrInvalidCredentials) {
		return s.renderLoginError(c, 401, genericLoginError)
	}
	if errors.Is(err, domain.ErrTooManyAttempts) {
		return s.renderLoginError(c, 429, "Too many login attempts, try again later")
	}
	if err != nil {
		slog.Error("Authentication failed", "error", err)
		return s.renderLoginError(c, 500, "Login failed, try again")
	}

	if err := s.issueSession(c, user); err != nil {
		slog.Error("Failed to save session", "error", err)
		return s.renderLoginError(c, 500, "Login failed, try again")
	}

	if user.IsAdmin {
		return c.Redirect(302, "/admin")
	}
	return c.Redirect(302, "/dashboard")
}

func (s *Server) handleRegisterPage(c echo.Context) error {
	data := map[string]interface{}{
		"CSRFToken": c.Get("csrf"),
		"Error":     "",
	}
	return renderTemplate(c, 200, s.registerTemplate, data)
}

func (s *Server) handleRegister(c echo.Context) error {
	input := domain.RegisterInput{
		Login:    c.FormValue("login"),
		Password: c.FormValue("password"),
		FullName: c.FormValue("fullName"),
		// The raw phone input runs through the canonical formatter before
		// validation, mirroring the interactive input field.
		Phone: phone.FormatDisplay(strings.TrimSpace(c.FormValue("phone"))),
		Email: c.FormValue("email"),
	}

	_, err := s.app.Register(c.Request().Context(), input)
	if err != nil {
		return s.renderRegisterError(c, err)
	}

	return c.Redirect(302, "/login?success=registration")
}

// renderRegisterError surfaces validation messages verbatim; everything else
// is logged and shown generically.
func (s *Server) renderRegisterError(c echo.Context, err error) error {
	data := map[string]interface{}{
		"CSRFToken": c.Get("csrf"),
	}

	var structured *apperrors.Error
	switch {
	case errors.Is(err, domain.ErrLoginTaken):
		data["Error"] = "A user with this login already exists"
		return renderTemplate(c, 409, s.registerTemplate, data)
	case errors.As(err, &structured) && structured.Type == apperrors.TypeValidation:
		data["Error"] = structured.Message
		return renderTemplate(c, 400, s.registerTemplate, data)
	default:
		slog.Error("Registration failed", "error", err)
		data["Error"] = "Registration failed, try again"
		return renderTemplate(c, 500, s.registerTemplate, data)
	}
}

func (s *Server) handleLogout(c echo.Context) error {
	s.clearSession(c)
	return c.Redirect(302, "/")
}
