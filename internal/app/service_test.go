package app

import (
	"context"
	"fmt"
	"testing"

	"github.com/gerosd/book-exchange/internal/auth"
	"github.com/gerosd/book-exchange/internal/domain"
	apperrors "github.com/gerosd/book-exchange/internal/errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Mock implementations ---

type mockUserRepo struct {
	createFn     func(ctx context.Context, login, passwordHash, fullName, phone, email string, isAdmin bool) (*domain.User, error)
	getByIDFn    func(ctx context.Context, userID uuid.UUID) (*domain.User, error)
	getByLoginFn func(ctx context.Context, login string) (*domain.User, error)
	getByPhoneFn func(ctx context.Context, phone string) (*domain.User, error)
}

func (m *mockUserRepo) Create(ctx context.Context, login, passwordHash, fullName, phone, email string, isAdmin bool) (*domain.User, error) {
	if m.createFn != nil {
		return m.createFn(ctx, login, passwordHash, fullName, phone, email, isAdmin)
	}
	return nil, fmt.Errorf("not implemented")
}

func (m *mockUserRepo) GetByID(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, userID)
	}
	return nil, domain.ErrUserNotFound
}

func (m *mockUserRepo) GetByLogin(ctx context.Context, login string) (*domain.User, error) {
	if m.getByLoginFn != nil {
		return m.getByLoginFn(ctx, login)
	}
	return nil, domain.ErrUserNotFound
}

func (m *mockUserRepo) GetByPhone(ctx context.Context, phone string) (*domain.User, error) {
	if m.getByPhoneFn != nil {
		return m.getByPhoneFn(ctx, phone)
	}
	return nil, domain.ErrUserNotFound
}

type mockApplicationRepo struct {
	createFn        func(ctx context.Context, userID uuid.UUID, input domain.ApplicationInput) (*domain.Application, error)
	listByOwnerFn   func(ctx context.Context, userID uuid.UUID) ([]domain.Application, error)
	listAllFn       func(ctx context.Context) ([]domain.ApplicationWithOwner, error)
	updateStatusFn  func(ctx context.Context, applicationID uuid.UUID, status, adminComment string) error
	deleteFn        func(ctx context.Context, applicationID uuid.UUID) error
}

func (m *mockApplicationRepo) Create(ctx context.Context, userID uuid.UUID, input domain.ApplicationInput) (*domain.Application, error) {
	if m.createFn != nil {
		return m.createFn(ctx, userID, input)
	}
	return nil, fmt.Errorf("not implemented")
}

func (m *mockApplicationRepo) ListByOwner(ctx context.Context, userID uuid.UUID) ([]domain.Application, error) {
	if m.listByOwnerFn != nil {
		return m.listByOwnerFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockApplicationRepo) ListAllWithOwners(ctx context.Context) ([]domain.ApplicationWithOwner, error) {
	if m.listAllFn != nil {
		return m.listAllFn(ctx)
	}
	return nil, nil
}

func (m *mockApplicationRepo) UpdateStatus(ctx context.Context, applicationID uuid.UUID, status, adminComment string) error {
	if m.updateStatusFn != nil {
		return m.updateStatusFn(ctx, applicationID, status, adminComment)
	}
	return nil
}

func (m *mockApplicationRepo) Delete(ctx context.Context, applicationID uuid.UUID) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, applicationID)
	}
	return nil
}

func validRegisterInput() domain.RegisterInput {
	return domain.RegisterInput{
		Login:    "reader",
		Password: "secret123",
		FullName: "Иванов Иван Иванович",
		Phone:    "+7(926)-123-45-67",
		Email:    "reader@example.com",
	}
}

// --- Register ---

func TestRegister_Success(t *testing.T) {
	var created *domain.User
	users := &mockUserRepo{
		createFn: func(ctx context.Context, login, passwordHash, fullName, phone, email string, isAdmin bool) (*domain.User, error) {
			require.False(t, isAdmin)
			require.NotEqual(t, "secret123", passwordHash, "password must be stored only as a hash")
			created = &domain.User{ID: uuid.New(), Login: login, PasswordHash: passwordHash, FullName: fullName, Phone: phone, Email: email}
			return created, nil
		},
	}
	svc := NewService(users, &mockApplicationRepo{}, nil)

	user, err := svc.Register(context.Background(), validRegisterInput())
	require.NoError(t, err)
	assert.Equal(t, created, user)
	assert.True(t, auth.CheckPassword("secret123", user.PasswordHash))
}

func TestRegister_LoginTaken(t *testing.T) {
	createCalled := false
	users := &mockUserRepo{
		getByLoginFn: func(ctx context.Context, login string) (*domain.User, error) {
			return &domain.User{Login: login}, nil
		},
		createFn: func(ctx context.Context, login, passwordHash, fullName, phone, email string, isAdmin bool) (*domain.User, error) {
			createCalled = true
			return nil, nil
		},
	}
	svc := NewService(users, &mockApplicationRepo{}, nil)

	_, err := svc.Register(context.Background(), validRegisterInput())
	assert.ErrorIs(t, err, domain.ErrLoginTaken)
	assert.False(t, createCalled, "no record must be created on a login collision")
}

func TestRegister_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*domain.RegisterInput)
	}{
		{"short login", func(in *domain.RegisterInput) { in.Login = "abc" }},
		{"non-latin login", func(in *domain.RegisterInput) { in.Login = "читатель" }},
		{"login with special chars", func(in *domain.RegisterInput) { in.Login = "reader!" }},
		{"short password", func(in *domain.RegisterInput) { in.Password = "12345" }},
		{"latin full name", func(in *domain.RegisterInput) { in.FullName = "John Smith" }},
		{"unformatted phone", func(in *domain.RegisterInput) { in.Phone = "79261234567" }},
		{"bad email", func(in *domain.RegisterInput) { in.Email = "not-an-email" }},
	}

	svc := NewService(&mockUserRepo{}, &mockApplicationRepo{}, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validRegisterInput()
			tt.mutate(&input)

			_, err := svc.Register(context.Background(), input)
			var structured *apperrors.Error
			require.ErrorAs(t, err, &structured)
			assert.Equal(t, apperrors.TypeValidation, structured.Type)
		})
	}
}

func TestRegister_SixCharLatinLoginAccepted(t *testing.T) {
	users := &mockUserRepo{
		createFn: func(ctx context.Context, login, passwordHash, fullName, phone, email string, isAdmin bool) (*domain.User, error) {
			return &domain.User{ID: uuid.New(), Login: login}, nil
		},
	}
	svc := NewService(users, &mockApplicationRepo{}, nil)

	input := validRegisterInput()
	input.Login = "abcdef"
	_, err := svc.Register(context.Background(), input)
	assert.NoError(t, err)
}

// --- Authenticate ---

func passwordHash(t *testing.T, password string) string {
	t.Helper()
	hash, err := auth.HashPassword(password)
	require.NoError(t, err)
	return hash
}

func TestAuthenticate_IdentifierRouting(t *testing.T) {
	tests := []struct {
		identifier string
		wantPhone  bool
	}{
		{"+7(123)-456-78-90", true},
		{"testuser", false},
		{"7(123)", true},
		{"admin", false},
	}

	for _, tt := range tests {
		t.Run(tt.identifier, func(t *testing.T) {
			var phoneLookup, loginLookup bool
			users := &mockUserRepo{
				getByPhoneFn: func(ctx context.Context, phone string) (*domain.User, error) {
					phoneLookup = true
					return nil, domain.ErrUserNotFound
				},
				getByLoginFn: func(ctx context.Context, login string) (*domain.User, error) {
					loginLookup = true
					return nil, domain.ErrUserNotFound
				},
			}
			svc := NewService(users, &mockApplicationRepo{}, nil)

			_, err := svc.Authenticate(context.Background(), tt.identifier, "whatever")
			assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
			assert.Equal(t, tt.wantPhone, phoneLookup)
			assert.Equal(t, !tt.wantPhone, loginLookup)
		})
	}
}

func TestAuthenticate_Success(t *testing.T) {
	hash := passwordHash(t, "secret123")
	users := &mockUserRepo{
		getByLoginFn: func(ctx context.Context, login string) (*domain.User, error) {
			return &domain.User{ID: uuid.New(), Login: login, PasswordHash: hash}, nil
		},
	}
	svc := NewService(users, &mockApplicationRepo{}, nil)

	user, err := svc.Authenticate(context.Background(), "reader", "secret123")
	require.NoError(t, err)
	assert.Equal(t, "reader", user.Login)
}

func TestAuthenticate_WrongPassword(t *testing.T) {
	hash := passwordHash(t, "secret123")
	users := &mockUserRepo{
		getByLoginFn: func(ctx context.Context, login string) (*domain.User, error) {
			return &domain.User{PasswordHash: hash}, nil
		},
	}
	svc := NewService(users, &mockApplicationRepo{}, nil)

	// Wrong password and unknown identifier yield the same error.
	_, err := svc.Authenticate(context.Background(), "reader", "wrong")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	_, err = svc.Authenticate(context.Background(), "nobody", "secret123")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestAuthenticate_EmptyFields(t *testing.T) {
	svc := NewService(&mockUserRepo{}, &mockApplicationRepo{}, nil)

	_, err := svc.Authenticate(context.Background(), "", "secret123")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	_, err = svc.Authenticate(context.Background(), "reader", "")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

type mockLimiter struct {
	allowFn func(ctx context.Context, identifier string) (bool, error)
}

func (m *mockLimiter) Allow(ctx context.Context, identifier string) (bool, error) {
	return m.allowFn(ctx, identifier)
}

func TestAuthenticate_RateLimited(t *testing.T) {
	limiter := &mockLimiter{allowFn: func(ctx context.Context, identifier string) (bool, error) {
		return false, nil
	}}
	svc := NewService(&mockUserRepo{}, &mockApplicationRepo{}, limiter)

	_, err := svc.Authenticate(context.Background(), "reader", "secret123")
	assert.ErrorIs(t, err, domain.ErrTooManyAttempts)
}

func TestAuthenticate_LimiterFailureFailsOpen(t *testing.T) {
	hash := passwordHash(t, "secret123")
	limiter := &mockLimiter{allowFn: func(ctx context.Context, identifier string) (bool, error) {
		return false, fmt.Errorf("redis down")
	}}
	users := &mockUserRepo{
		getByLoginFn: func(ctx context.Context, login string) (*domain.User, error) {
			return &domain.User{PasswordHash: hash}, nil
		},
	}
	svc := NewService(users, &mockApplicationRepo{}, limiter)

	_, err := svc.Authenticate(context.Background(), "reader", "secret123")
	assert.NoError(t, err)
}

// --- SeedAdmin ---

func TestSeedAdmin_Idempotent(t *testing.T) {
	createCalled := false
	users := &mockUserRepo{
		getByLoginFn: func(ctx context.Context, login string) (*domain.User, error) {
			return &domain.User{Login: login, IsAdmin: true}, nil
		},
		createFn: func(ctx context.Context, login, passwordHash, fullName, phone, email string, isAdmin bool) (*domain.User, error) {
			createCalled = true
			return nil, nil
		},
	}
	svc := NewService(users, &mockApplicationRepo{}, nil)

	require.NoError(t, svc.SeedAdmin(context.Background(), "admin123"))
	assert.False(t, createCalled)
}

func TestSeedAdmin_CreatesAdmin(t *testing.T) {
	users := &mockUserRepo{
		createFn: func(ctx context.Context, login, passwordHash, fullName, phone, email string, isAdmin bool) (*domain.User, error) {
			assert.Equal(t, "admin", login)
			assert.True(t, isAdmin)
			assert.True(t, auth.CheckPassword("admin123", passwordHash))
			return &domain.User{Login: login, IsAdmin: true}, nil
		},
	}
	svc := NewService(users, &mockApplicationRepo{}, nil)

	require.NoError(t, svc.SeedAdmin(context.Background(), "admin123"))
}

func TestSeedAdmin_LostRaceIsSeeded(t *testing.T) {
	users := &mockUserRepo{
		createFn: func(ctx context.Context, login, passwordHash, fullName, phone, email string, isAdmin bool) (*domain.User, error) {
			return nil, domain.ErrLoginTaken
		},
	}
	svc := NewService(users, &mockApplicationRepo{}, nil)

	assert.NoError(t, svc.SeedAdmin(context.Background(), "admin123"))
}

// --- Applications ---

func validApplicationInput() domain.ApplicationInput {
	return domain.ApplicationInput{
		BookTitle:   "Мастер и Маргарита",
		Author:      "Булгаков",
		Genre:       "роман",
		Description: "хорошее состояние",
		Condition:   domain.ConditionGood,
		Kind:        domain.KindOffer,
	}
}

func TestCreateApplication_Success(t *testing.T) {
	ownerID := uuid.New()
	apps := &mockApplicationRepo{
		createFn: func(ctx context.Context, userID uuid.UUID, input domain.ApplicationInput) (*domain.Application, error) {
			assert.Equal(t, ownerID, userID)
			return &domain.Application{ID: uuid.New(), UserID: userID, Status: domain.StatusPending, Kind: input.Kind}, nil
		},
	}
	svc := NewService(&mockUserRepo{}, apps, nil)

	app, err := svc.CreateApplication(context.Background(), ownerID, validApplicationInput())
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, app.Status)
	assert.False(t, app.Reviewed())
}

func TestCreateApplication_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*domain.ApplicationInput)
	}{
		{"missing title", func(in *domain.ApplicationInput) { in.BookTitle = "  " }},
		{"missing author", func(in *domain.ApplicationInput) { in.Author = "" }},
		{"missing genre", func(in *domain.ApplicationInput) { in.Genre = "" }},
		{"bad condition", func(in *domain.ApplicationInput) { in.Condition = "mint" }},
		{"bad kind", func(in *domain.ApplicationInput) { in.Kind = "loan" }},
	}

	svc := NewService(&mockUserRepo{}, &mockApplicationRepo{}, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validApplicationInput()
			tt.mutate(&input)

			_, err := svc.CreateApplication(context.Background(), uuid.New(), input)
			var structured *apperrors.Error
			require.ErrorAs(t, err, &structured)
			assert.Equal(t, apperrors.TypeValidation, structured.Type)
		})
	}
}

// --- Admin operations ---

func adminUserRepo(adminID uuid.UUID) *mockUserRepo {
	return &mockUserRepo{
		getByIDFn: func(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
			if userID == adminID {
				return &domain.User{ID: userID, IsAdmin: true}, nil
			}
			return &domain.User{ID: userID, IsAdmin: false}, nil
		},
	}
}

func TestAdminOperations_RejectNonAdmin(t *testing.T) {
	adminID := uuid.New()
	nonAdminID := uuid.New()
	svc := NewService(adminUserRepo(adminID), &mockApplicationRepo{}, nil)
	ctx := context.Background()
	appID := uuid.New()

	_, err := svc.ListAllApplications(ctx, nonAdminID)
	assert.ErrorIs(t, err, domain.ErrAccessDenied)

	err = svc.SetApplicationStatus(ctx, nonAdminID, appID, domain.StatusApproved, "")
	assert.ErrorIs(t, err, domain.ErrAccessDenied)

	err = svc.DeleteApplication(ctx, nonAdminID, appID)
	assert.ErrorIs(t, err, domain.ErrAccessDenied)
}

func TestAdminOperations_RejectUnknownCaller(t *testing.T) {
	svc := NewService(&mockUserRepo{}, &mockApplicationRepo{}, nil)

	_, err := svc.ListAllApplications(context.Background(), uuid.New())
	assert.ErrorIs(t, err, domain.ErrAccessDenied)
}

func TestSetApplicationStatus(t *testing.T) {
	adminID := uuid.New()
	appID := uuid.New()

	var gotStatus, gotComment string
	apps := &mockApplicationRepo{
		updateStatusFn: func(ctx context.Context, applicationID uuid.UUID, status, adminComment string) error {
			assert.Equal(t, appID, applicationID)
			gotStatus = status
			gotComment = adminComment
			return nil
		},
	}
	svc := NewService(adminUserRepo(adminID), apps, nil)

	err := svc.SetApplicationStatus(context.Background(), adminID, appID, domain.StatusApproved, " отличная книга ")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusApproved, gotStatus)
	assert.Equal(t, "отличная книга", gotComment)

	// Repeated transitions overwrite; no state-machine guard.
	require.NoError(t, svc.SetApplicationStatus(context.Background(), adminID, appID, domain.StatusRejected, ""))
	assert.Equal(t, domain.StatusRejected, gotStatus)
}

func TestSetApplicationStatus_RejectsInvalidStatus(t *testing.T) {
	adminID := uuid.New()
	svc := NewService(adminUserRepo(adminID), &mockApplicationRepo{}, nil)

	for _, status := range []string{domain.StatusPending, "archived", ""} {
		err := svc.SetApplicationStatus(context.Background(), adminID, uuid.New(), status, "")
		var structured *apperrors.Error
		require.ErrorAs(t, err, &structured)
		assert.Equal(t, apperrors.TypeValidation, structured.Type)
	}
}

func TestDeleteApplication(t *testing.T) {
	adminID := uuid.New()
	appID := uuid.New()

	deleted := false
	apps := &mockApplicationRepo{
		deleteFn: func(ctx context.Context, applicationID uuid.UUID) error {
			assert.Equal(t, appID, applicationID)
			deleted = true
			return nil
		},
	}
	svc := NewService(adminUserRepo(adminID), apps, nil)

	require.NoError(t, svc.DeleteApplication(context.Background(), adminID, appID))
	assert.True(t, deleted)
}
