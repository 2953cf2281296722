package server

import (
	"github.com/labstack/echo/v4"
)

// Access gate: per-request authorization checks run before any page logic.
// Route classes are guest-only (login, register), authenticated (dashboard,
// create-application), and admin-only (admin panel). A cookie that fails to
// parse is treated as absent and deleted before redirecting, so a corrupt
// cookie heals itself on the next request.

// requireGuest allows only anonymous requests; authenticated users are
// redirected to their own home.
func (s *Server) requireGuest(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, malformed := s.currentIdentity(c)
		if malformed {
			s.clearSession(c)
			return next(c)
		}
		if id != nil {
			return c.Redirect(302, id.homePath())
		}
		return next(c)
	}
}

// requireAuth allows only authenticated requests and stores the decoded
// identity in the echo context for handlers.
func (s *Server) requireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, malformed := s.currentIdentity(c)
		if malformed {
			s.clearSession(c)
			return c.Redirect(302, "/login")
		}
		if id == nil {
			return c.Redirect(302, "/login")
		}

		c.Set("identity", id)
		return next(c)
	}
}

// requireAdmin allows only authenticated administrators. Non-admins are sent
// to their own home; the service layer re-verifies the flag against storage.
func (s *Server) requireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, malformed := s.currentIdentity(c)
		if malformed {
			s.clearSession(c)
			return c.Redirect(302, "/login")
		}
		if id == nil {
			return c.Redirect(302, "/login")
		}
		if !id.IsAdmin {
			return c.Redirect(302, "/dashboard")
		}

		c.Set("identity", id)
		return next(c)
	}
}
