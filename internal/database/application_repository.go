package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/gerosd/book-exchange/internal/domain"
	"github.com/google/uuid"
)

// applicationColumns must match the Scan order in scanApplication.
const applicationColumns = `id, user_id, book_title, author, genre, description, condition, kind, status, admin_comment, created_at, updated_at`

// ApplicationRepo implements domain.ApplicationRepository backed by PostgreSQL.
type ApplicationRepo struct {
	db *sql.DB
}

// NewApplicationRepo creates an ApplicationRepo from the shared DB connection.
func NewApplicationRepo(db *DB) *ApplicationRepo {
	return &ApplicationRepo{db: db.DB}
}

func scanApplication(app *domain.Application, scan func(dest ...any) error) error {
	return scan(
		&app.ID, &app.UserID, &app.BookTitle, &app.Author, &app.Genre,
		&app.Description, &app.Condition, &app.Kind, &app.Status,
		&app.AdminComment, &app.CreatedAt, &app.UpdatedAt,
	)
}

func (r *ApplicationRepo) Create(ctx context.Context, userID uuid.UUID, input domain.ApplicationInput) (*domain.Application, error) {
	var app domain.Application
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO applications (user_id, book_title, author, genre, description, condition, kind, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, 'pending', NOW(), NOW())
		RETURNING `+applicationColumns+`
	`, userID, input.BookTitle, input.Author, input.Genre, input.Description, input.Condition, input.Kind)

	if err := scanApplication(&app, row.Scan); err != nil {
		return nil, fmt.Errorf("failed to create application: %w", err)
	}
	return &app, nil
}

func (r *ApplicationRepo) ListByOwner(ctx context.Context, userID uuid.UUID) ([]domain.Application, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+applicationColumns+`
		FROM applications
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}
	defer rows.Close()

	var apps []domain.Application
	for rows.Next() {
		var app domain.Application
		if err := scanApplication(&app, rows.Scan); err != nil {
			return nil, fmt.Errorf("failed to scan application: %w", err)
		}
		apps = append(apps, app)
	}
	return apps, rows.Err()
}

func (r *ApplicationRepo) ListAllWithOwners(ctx context.Context) ([]domain.ApplicationWithOwner, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT a.id, a.user_id, a.book_title, a.author, a.genre, a.description,
		       a.condition, a.kind, a.status, a.admin_comment, a.created_at, a.updated_at,
		       u.id, u.login, u.full_name, u.phone, u.email
		FROM applications a
		JOIN users u ON u.id = a.user_id
		ORDER BY a.created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list applications with owners: %w", err)
	}
	defer rows.Close()

	var apps []domain.ApplicationWithOwner
	for rows.Next() {
		var app domain.ApplicationWithOwner
		err := rows.Scan(
			&app.ID, &app.UserID, &app.BookTitle, &app.Author, &app.Genre,
			&app.Description, &app.Condition, &app.Kind, &app.Status,
			&app.AdminComment, &app.CreatedAt, &app.UpdatedAt,
			&app.Owner.ID, &app.Owner.Login, &app.Owner.FullName,
			&app.Owner.Phone, &app.Owner.Email,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan application with owner: %w", err)
		}
		apps = append(apps, app)
	}
	return apps, rows.Err()
}

func (r *ApplicationRepo) UpdateStatus(ctx context.Context, applicationID uuid.UUID, status, adminComment string) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE applications
		SET status = $1, admin_comment = $2, updated_at = NOW()
		WHERE id = $3
	`, status, adminComment, applicationID)
	if err != nil {
		return fmt.Errorf("failed to update application status: %w", err)
	}
	return requireRowAffected(result)
}

func (r *ApplicationRepo) Delete(ctx context.Context, applicationID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM applications WHERE id = $1`, applicationID)
	if err != nil {
		return fmt.Errorf("failed to delete application: %w", err)
	}
	return requireRowAffected(result)
}

func requireRowAffected(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrApplicationNotFound
	}
	return nil
}
