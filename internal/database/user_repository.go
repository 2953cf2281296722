package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/gerosd/book-exchange/internal/domain"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

// userColumns must match the Scan order in scanUser.
const userColumns = `id, login, password_hash, full_name, phone, email, is_admin, created_at, updated_at`

// uniqueViolation is the PostgreSQL error code for unique constraint violations.
const uniqueViolation = "23505"

// UserRepo implements domain.UserRepository backed by PostgreSQL.
type UserRepo struct {
	db *sql.DB
}

// NewUserRepo creates a UserRepo from the shared DB connection.
func NewUserRepo(db *DB) *UserRepo {
	return &UserRepo{db: db.DB}
}

func scanUser(row *sql.Row) (*domain.User, error) {
	var user domain.User
	err := row.Scan(
		&user.ID, &user.Login, &user.PasswordHash, &user.FullName,
		&user.Phone, &user.Email, &user.IsAdmin,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepo) Create(ctx context.Context, login, passwordHash, fullName, phone, email string, isAdmin bool) (*domain.User, error) {
	user, err := scanUser(r.db.QueryRowContext(ctx, `
		INSERT INTO users (login, password_hash, full_name, phone, email, is_admin, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		RETURNING `+userColumns+`
	`, login, passwordHash, fullName, phone, email, isAdmin))
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return nil, domain.ErrLoginTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

func (r *UserRepo) GetByID(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	return scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, userID))
}

func (r *UserRepo) GetByLogin(ctx context.Context, login string) (*domain.User, error) {
	return scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE login = $1`, login))
}

func (r *UserRepo) GetByPhone(ctx context.Context, phone string) (*domain.User, error) {
	return scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE phone = $1`, phone))
}
