package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID       uuid.UUID `db:"id"`
	Login    string    `db:"login"`
	// PasswordHash is a bcrypt hash. It never leaves the service layer.
	PasswordHash string    `db:"password_hash"`
	FullName     string    `db:"full_name"`
	Phone        string    `db:"phone"`
	Email        string    `db:"email"`
	IsAdmin      bool      `db:"is_admin"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

// RegisterInput carries the registration form contract. Login is latin
// letters only, full name is Cyrillic letters and spaces, phone must match
// +7(XXX)-XXX-XX-XX exactly.
type RegisterInput struct {
	Login    string `validate:"required,min=6,latinalpha"`
	Password string `validate:"required,min=6"`
	FullName string `validate:"required,cyrillic"`
	Phone    string `validate:"required,ruphone"`
	Email    string `validate:"required,simpleemail"`
}

// UserRepository abstracts user persistence (the credential store).
type UserRepository interface {
	Create(ctx context.Context, login, passwordHash, fullName, phone, email string, isAdmin bool) (*User, error)
	GetByID(ctx context.Context, userID uuid.UUID) (*User, error)
	GetByLogin(ctx context.Context, login string) (*User, error)
	GetByPhone(ctx context.Context, phone string) (*User, error)
}

// LoginRateLimiter throttles authentication attempts per identifier.
// A nil limiter means unlimited attempts.
type LoginRateLimiter interface {
	Allow(ctx context.Context, identifier string) (bool, error)
}
