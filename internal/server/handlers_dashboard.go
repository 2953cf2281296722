package server

import (
	"errors"
	"log/slog"

	"github.com/gerosd/book-exchange/internal/domain"
	apperrors "github.com/gerosd/book-exchange/internal/errors"
	"github.com/labstack/echo/v4"
)

func (s *Server) handleDashboard(c echo.Context) error {
	id := c.Get("identity").(*identity)

	apps, err := s.app.ListUserApplications(c.Request().Context(), id.UserID)
	if err != nil {
		slog.Error("Failed to list user applications", "user_id", id.UserID, "error", err)
		return c.String(500, "Failed to load applications")
	}

	data := map[string]interface{}{
		"CSRFToken":    c.Get("csrf"),
		"FullName":     id.FullName,
		"Applications": apps,
		"Created":      c.QueryParam("success") == "application",
	}
	return renderTemplate(c, 200, s.dashboardTemplate, data)
}

func (s *Server) handleCreateApplicationPage(c echo.Context) error {
	data := map[string]interface{}{
		"CSRFToken": c.Get("csrf"),
		"Error":     "",
	}
	return renderTemplate(c, 200, s.createTemplate, data)
}

func (s *Server) handleCreateApplication(c echo.Context) error {
	id := c.Get("identity").(*identity)

	input := domain.ApplicationInput{
		BookTitle:   c.FormValue("bookTitle"),
		Author:      c.FormValue("author"),
		Genre:       c.FormValue("genre"),
		Description: c.FormValue("description"),
		Condition:   c.FormValue("condition"),
		Kind:        c.FormValue("kind"),
	}

	_, err := s.app.CreateApplication(c.Request().Context(), id.UserID, input)
	if err != nil {
		data := map[string]interface{}{
			"CSRFToken": c.Get("csrf"),
		}
		var structured *apperrors.Error
		if errors.As(err, &structured) && structured.Type == apperrors.TypeValidation {
			data["Error"] = structured.Message
			return renderTemplate(c, 400, s.createTemplate, data)
		}
		slog.Error("Failed to create application", "user_id", id.UserID, "error", err)
		data["Error"] = "Failed to submit application, try again"
		return renderTemplate(c, 500, s.createTemplate, data)
	}

	return c.Redirect(302, "/dashboard?success=application")
}
