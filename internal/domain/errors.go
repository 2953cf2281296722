package domain

import "errors"

var (
	ErrUserNotFound        = errors.New("user not found")
	ErrLoginTaken          = errors.New("login already taken")
	ErrInvalidCredentials  = errors.New("invalid login/phone or password")
	ErrAccessDenied        = errors.New("access denied")
	ErrApplicationNotFound = errors.New("application not found")
	ErrTooManyAttempts     = errors.New("too many login attempts")
)
