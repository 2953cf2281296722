package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/gerosd/book-exchange/internal/auth"
	"github.com/gerosd/book-exchange/internal/domain"
	apperrors "github.com/gerosd/book-exchange/internal/errors"
	"github.com/gerosd/book-exchange/internal/metrics"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Seeded administrator account. The password comes from configuration and
// must be rotated in any real deployment.
const (
	adminLogin    = "admin"
	adminFullName = "Администратор"
	adminPhone    = "+7(000)-000-00-00"
	adminEmail    = "admin@book-exchange.ru"
)

// Service implements domain.AppService.
type Service struct {
	users        domain.UserRepository
	applications domain.ApplicationRepository
	limiter      domain.LoginRateLimiter
	validate     *validator.Validate
}

// NewService creates the application layer service.
// limiter may be nil if Redis is not configured; logins are then unthrottled.
func NewService(users domain.UserRepository, applications domain.ApplicationRepository, limiter domain.LoginRateLimiter) *Service {
	return &Service{
		users:        users,
		applications: applications,
		limiter:      limiter,
		validate:     newValidator(),
	}
}

// Register validates the registration contract, rejects taken logins, and
// persists the user with a bcrypt password hash and is_admin false.
func (s *Service) Register(ctx context.Context, input domain.RegisterInput) (*domain.User, error) {
	input.Login = strings.TrimSpace(input.Login)
	input.FullName = strings.TrimSpace(input.FullName)
	input.Phone = strings.TrimSpace(input.Phone)
	input.Email = strings.TrimSpace(input.Email)

	if err := s.validate.Struct(input); err != nil {
		return nil, asValidationError(err)
	}

	// Precondition check; the storage UNIQUE constraint closes the race
	// between concurrent registrations with the same login.
	_, err := s.users.GetByLogin(ctx, input.Login)
	if err == nil {
		return nil, domain.ErrLoginTaken
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to check login availability: %w", err)
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user, err := s.users.Create(ctx, input.Login, hash, input.FullName, input.Phone, input.Email, false)
	if err != nil {
		return nil, err
	}

	metrics.RegistrationsTotal.Inc()
	slog.Info("User registered", "login", user.Login)
	return user, nil
}

// Authenticate resolves the identifier to a user and checks the password.
// An identifier containing '+', '(' or '-' is treated as a phone number,
// otherwise as a login. Registered logins are latin-only, so they can never
// land in the phone branch.
// Unknown identifier and wrong password are indistinguishable to the caller.
func (s *Service) Authenticate(ctx context.Context, identifier, password string) (*domain.User, error) {
	if identifier == "" || password == "" {
		metrics.LoginAttemptsTotal.WithLabelValues("failure").Inc()
		return nil, domain.ErrInvalidCredentials
	}

	if s.limiter != nil {
		allowed, err := s.limiter.Allow(ctx, identifier)
		if err != nil {
			// Fail open: an unavailable limiter must not lock out logins.
			slog.Warn("Login rate limiter unavailable", "error", err)
		} else if !allowed {
			metrics.LoginAttemptsTotal.WithLabelValues("rate_limited").Inc()
			return nil, domain.ErrTooManyAttempts
		}
	}

	var (
		user *domain.User
		err  error
	)
	if strings.ContainsAny(identifier, "+(-") {
		user, err = s.users.GetByPhone(ctx, identifier)
	} else {
		user, err = s.users.GetByLogin(ctx, identifier)
	}

	if errors.Is(err, domain.ErrUserNotFound) {
		metrics.LoginAttemptsTotal.WithLabelValues("failure").Inc()
		return nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if !auth.CheckPassword(password, user.PasswordHash) {
		metrics.LoginAttemptsTotal.WithLabelValues("failure").Inc()
		return nil, domain.ErrInvalidCredentials
	}

	metrics.LoginAttemptsTotal.WithLabelValues("success").Inc()
	return user, nil
}

// GetUserByID retrieves a user by internal ID.
func (s *Service) GetUserByID(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	return s.users.GetByID(ctx, userID)
}

// SeedAdmin creates the distinguished administrator account if absent.
// Checked-then-inserted; a concurrent seed losing the race is treated as
// already seeded.
func (s *Service) SeedAdmin(ctx context.Context, password string) error {
	_, err := s.users.GetByLogin(ctx, adminLogin)
	if err == nil {
		return nil
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		return fmt.Errorf("failed to check for admin account: %w", err)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	_, err = s.users.Create(ctx, adminLogin, hash, adminFullName, adminPhone, adminEmail, true)
	if errors.Is(err, domain.ErrLoginTaken) {
		return nil
	}
	if err != nil {
		return err
	}

	slog.Info("Administrator account seeded", "login", adminLogin)
	return nil
}

// CreateApplication persists a new application for its owner with status
// pending. Title, author, and genre are required.
func (s *Service) CreateApplication(ctx context.Context, ownerID uuid.UUID, input domain.ApplicationInput) (*domain.Application, error) {
	input.BookTitle = strings.TrimSpace(input.BookTitle)
	input.Author = strings.TrimSpace(input.Author)
	input.Genre = strings.TrimSpace(input.Genre)
	input.Description = strings.TrimSpace(input.Description)

	if err := s.validate.Struct(input); err != nil {
		return nil, asValidationError(err)
	}

	app, err := s.applications.Create(ctx, ownerID, input)
	if err != nil {
		return nil, err
	}

	metrics.ApplicationsCreatedTotal.WithLabelValues(app.Kind).Inc()
	return app, nil
}

// ListUserApplications returns the caller's applications, newest first.
func (s *Service) ListUserApplications(ctx context.Context, ownerID uuid.UUID) ([]domain.Application, error) {
	return s.applications.ListByOwner(ctx, ownerID)
}

// ListAllApplications returns every application joined with its owner's
// public fields, newest first. Admin-only.
func (s *Service) ListAllApplications(ctx context.Context, callerID uuid.UUID) ([]domain.ApplicationWithOwner, error) {
	if err := s.requireAdmin(ctx, callerID); err != nil {
		return nil, err
	}
	return s.applications.ListAllWithOwners(ctx)
}

// SetApplicationStatus overwrites an application's status and admin comment.
// Admin-only. Repeated calls overwrite; there is no transition guard.
func (s *Service) SetApplicationStatus(ctx context.Context, callerID, applicationID uuid.UUID, status, adminComment string) error {
	if err := s.requireAdmin(ctx, callerID); err != nil {
		return err
	}

	if status != domain.StatusApproved && status != domain.StatusRejected {
		return apperrors.ValidationError("status must be approved or rejected")
	}

	if err := s.applications.UpdateStatus(ctx, applicationID, status, strings.TrimSpace(adminComment)); err != nil {
		return err
	}

	metrics.ApplicationReviewsTotal.WithLabelValues(status).Inc()
	return nil
}

// DeleteApplication hard-deletes an application. Admin-only.
func (s *Service) DeleteApplication(ctx context.Context, callerID, applicationID uuid.UUID) error {
	if err := s.requireAdmin(ctx, callerID); err != nil {
		return err
	}

	if err := s.applications.Delete(ctx, applicationID); err != nil {
		return err
	}

	metrics.ApplicationsDeletedTotal.Inc()
	return nil
}

// requireAdmin re-verifies the caller's admin flag against storage. The HTTP
// access gate performs the same check on cookie claims, but service-level
// operations can be reached directly, so the flag is checked here as well.
func (s *Service) requireAdmin(ctx context.Context, callerID uuid.UUID) error {
	caller, err := s.users.GetByID(ctx, callerID)
	if errors.Is(err, domain.ErrUserNotFound) {
		return domain.ErrAccessDenied
	}
	if err != nil {
		return fmt.Errorf("failed to verify caller: %w", err)
	}
	if !caller.IsAdmin {
		return domain.ErrAccessDenied
	}
	return nil
}
