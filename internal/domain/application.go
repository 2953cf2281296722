package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Book condition values accepted on application forms.
const (
	ConditionExcellent = "excellent"
	ConditionGood      = "good"
	ConditionFair      = "fair"
	ConditionPoor      = "poor"
)

// Application kinds: the owner either offers a book or requests one.
const (
	KindOffer   = "offer"
	KindRequest = "request"
)

// Application statuses. Every application starts pending; the reviewing
// administrator moves it to approved or rejected.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

type Application struct {
	ID           uuid.UUID `db:"id"`
	UserID       uuid.UUID `db:"user_id"`
	BookTitle    string    `db:"book_title"`
	Author       string    `db:"author"`
	Genre        string    `db:"genre"`
	Description  string    `db:"description"`
	Condition    string    `db:"condition"`
	Kind         string    `db:"kind"`
	Status       string    `db:"status"`
	AdminComment string    `db:"admin_comment"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

// Reviewed reports whether the application has left the pending state.
func (a *Application) Reviewed() bool {
	return a.Status != StatusPending
}

// OwnerInfo is the subset of user fields exposed on the admin panel.
type OwnerInfo struct {
	ID       uuid.UUID `db:"id"`
	Login    string    `db:"login"`
	FullName string    `db:"full_name"`
	Phone    string    `db:"phone"`
	Email    string    `db:"email"`
}

// ApplicationWithOwner joins an application with its owner's public fields.
type ApplicationWithOwner struct {
	Application
	Owner OwnerInfo
}

// ApplicationInput carries the creation form contract.
type ApplicationInput struct {
	BookTitle   string `validate:"required"`
	Author      string `validate:"required"`
	Genre       string `validate:"required"`
	Description string
	Condition   string `validate:"required,oneof=excellent good fair poor"`
	Kind        string `validate:"required,oneof=offer request"`
}

// ApplicationRepository abstracts application persistence.
type ApplicationRepository interface {
	Create(ctx context.Context, userID uuid.UUID, input ApplicationInput) (*Application, error)
	ListByOwner(ctx context.Context, userID uuid.UUID) ([]Application, error)
	ListAllWithOwners(ctx context.Context) ([]ApplicationWithOwner, error)
	UpdateStatus(ctx context.Context, applicationID uuid.UUID, status, adminComment string) error
	Delete(ctx context.Context, applicationID uuid.UUID) error
}

// AppService is the application layer contract. HTTP handlers route all
// operations through here.
type AppService interface {
	Register(ctx context.Context, input RegisterInput) (*User, error)
	Authenticate(ctx context.Context, identifier, password string) (*User, error)
	GetUserByID(ctx context.Context, userID uuid.UUID) (*User, error)

	CreateApplication(ctx context.Context, ownerID uuid.UUID, input ApplicationInput) (*Application, error)
	ListUserApplications(ctx context.Context, ownerID uuid.UUID) ([]Application, error)
	ListAllApplications(ctx context.Context, callerID uuid.UUID) ([]ApplicationWithOwner, error)
	SetApplicationStatus(ctx context.Context, callerID, applicationID uuid.UUID, status, adminComment string) error
	DeleteApplication(ctx context.Context, callerID, applicationID uuid.UUID) error
}
