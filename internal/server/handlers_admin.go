package server

import (
	"github.com/gerosd/book-exchange/internal/domain"
	apperrors "github.com/gerosd/book-exchange/internal/errors"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

func (s *Server) handleAdminPanel(c echo.Context) error {
	id := c.Get("identity").(*identity)

	apps, err := s.app.ListAllApplications(c.Request().Context(), id.UserID)
	if err != nil {
		// Access denial and storage failures flow through the error
		// middleware; detail is logged there, never returned.
		return err
	}

	var pending, reviewed []domain.ApplicationWithOwner
	for _, app := range apps {
		if app.Reviewed() {
			reviewed = append(reviewed, app)
		} else {
			pending = append(pending, app)
		}
	}

	data := map[string]interface{}{
		"CSRFToken": c.Get("csrf"),
		"FullName":  id.FullName,
		"Pending":   pending,
		"Reviewed":  reviewed,
	}
	return renderTemplate(c, 200, s.adminTemplate, data)
}

func (s *Server) handleSetApplicationStatus(c echo.Context) error {
	id := c.Get("identity").(*identity)

	applicationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperrors.ValidationError("invalid application id")
	}

	status := c.FormValue("status")
	comment := c.FormValue("adminComment")

	if err := s.app.SetApplicationStatus(c.Request().Context(), id.UserID, applicationID, status, comment); err != nil {
		return err
	}

	return c.Redirect(302, "/admin")
}

func (s *Server) handleDeleteApplication(c echo.Context) error {
	id := c.Get("identity").(*identity)

	applicationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperrors.ValidationError("invalid application id")
	}

	if err := s.app.DeleteApplication(c.Request().Context(), id.UserID, applicationID); err != nil {
		return err
	}

	return c.Redirect(302, "/admin")
}
