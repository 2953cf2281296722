package server

import (
	"log/slog"

	"github.com/gerosd/book-exchange/internal/domain"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// Session cookie. The value carries the minimal identity claims
// {id, login, fullName, isAdmin}, integrity-protected by the cookie store's
// HMAC signature. Decoded content is never trusted without that check.
const (
	sessionName        = "user-session"
	sessionKeyID       = "id"
	sessionKeyLogin    = "login"
	sessionKeyFullName = "fullName"
	sessionKeyIsAdmin  = "isAdmin"
)

// identity is the decoded session cookie.
type identity struct {
	UserID   uuid.UUID
	Login    string
	FullName string
	IsAdmin  bool
}

// homePath is where an authenticated user lands by default.
func (id *identity) homePath() string {
	if id.IsAdmin {
		return "/admin"
	}
	return "/dashboard"
}

// currentIdentity decodes the session cookie. It returns (nil, false) for an
// anonymous request and (nil, true) when a cookie is present but fails the
// signature or shape check. It never returns an error to the caller.
func (s *Server) currentIdentity(c echo.Context) (*identity, bool) {
	session, err := s.sessionStore.Get(c.Request(), sessionName)
	if err != nil {
		return nil, true
	}

	raw, ok := session.Values[sessionKeyID]
	if !ok {
		return nil, false
	}

	idStr, ok := raw.(string)
	if !ok {
		return nil, true
	}
	userID, err := uuid.Parse(idStr)
	if err != nil {
		return nil, true
	}

	login, _ := session.Values[sessionKeyLogin].(string)
	fullName, _ := session.Values[sessionKeyFullName].(string)
	isAdmin, _ := session.Values[sessionKeyIsAdmin].(bool)

	return &identity{
		UserID:   userID,
		Login:    login,
		FullName: fullName,
		IsAdmin:  isAdmin,
	}, false
}

// issueSession writes the identity claims into a fresh session cookie.
func (s *Server) issueSession(c echo.Context, user *domain.User) error {
	session, err := s.sessionStore.Get(c.Request(), sessionName)
	if err != nil {
		// A stale or corrupt cookie still yields a usable fresh session.
		slog.Warn("Failed to decode existing session, issuing fresh one", "error", err)
	}

	session.Values[sessionKeyID] = user.ID.String()
	session.Values[sessionKeyLogin] = user.Login
	session.Values[sessionKeyFullName] = user.FullName
	session.Values[sessionKeyIsAdmin] = user.IsAdmin

	return session.Save(c.Request(), c.Response().Writer)
}

// clearSession deletes the session cookie.
func (s *Server) clearSession(c echo.Context) {
	session, err := s.sessionStore.Get(c.Request(), sessionName)
	if err != nil {
		slog.Warn("Failed to decode session during clear", "error", err)
	}
	session.Options.MaxAge = -1

	if err := session.Save(c.Request(), c.Response().Writer); err != nil {
		slog.Error("Failed to clear session", "error", err)
	}
}
