package server

import (
	"bytes"
	"html/template"
	"log/slog"

	"github.com/labstack/echo/v4"
)

// renderTemplate renders a template to a buffer first to prevent partial HTML
// from being sent if template execution fails.
func renderTemplate(c echo.Context, status int, tmpl *template.Template, data interface{}) error {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		slog.Error("Template execution failed", "path", c.Request().URL.Path, "error", err)
		return c.String(500, "Failed to render page")
	}
	return c.HTMLBlob(status, buf.Bytes())
}

// handleHome redirects to the caller's home: /admin for administrators,
// /dashboard for users, /login for anonymous visitors.
func (s *Server) handleHome(c echo.Context) error {
	id, malformed := s.currentIdentity(c)
	if malformed {
		s.clearSession(c)
		return c.Redirect(302, "/login")
	}
	if id == nil {
		return c.Redirect(302, "/login")
	}
	return c.Redirect(302, id.homePath())
}
