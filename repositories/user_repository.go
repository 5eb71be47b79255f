package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/playoff-pool/models"
	"github.com/lib/pq"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserEmailConflict = errors.New("user email conflict")
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	ListVerified(ctx context.Context) ([]models.User, error)
	SetVerified(ctx context.Context, id int, verified bool) error
}

type postgresUserRepository struct {
	db *sql.DB
}

func NewPostgresUserRepository(db *sql.DB) UserRepository {
	return &postgresUserRepository{db: db}
}

func (r *postgresUserRepository) scanUser(rowScanner interface{ Scan(...interface{}) error }) (*models.User, error) {
	var user models.User
	err := rowScanner.Scan(
		&user.ID, &user.FirstName, &user.LastName, &user.Email,
		&user.PasswordHash, &user.Role, &user.Verified, &user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *postgresUserRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (first_name, last_name, email, password_hash, role, verified)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		user.FirstName,
		user.LastName,
		user.Email,
		user.PasswordHash,
		user.Role,
		user.Verified,
	).Scan(&user.ID, &user.CreatedAt)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" && pqErr.Constraint == "users_email_key" {
			return ErrUserEmailConflict
		}
		return err
	}
	return nil
}

func (r *postgresUserRepository) GetByID(ctx context.Context, id int) (*models.User, error) {
	query := `
		SELECT id, first_name, last_name, email, password_hash, role, verified, created_at
		FROM users
		WHERE id = $1`
	row := r.db.QueryRowContext(ctx, query, id)
	return r.scanUser(row)
}

func (r *postgresUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `
		SELECT id, first_name, last_name, email, password_hash, role, verified, created_at
		FROM users
		WHERE email = $1`
	row := r.db.QueryRowContext(ctx, query, email)
	return r.scanUser(row)
}

// ListVerified returns the users who count for the leaderboard, in a stable
// display order.
func (r *postgresUserRepository) ListVerified(ctx context.Context) ([]models.User, error) {
	query := `
		SELECT id, first_name, last_name, email, password_hash, role, verified, created_at
		FROM users
		WHERE verified = TRUE
		ORDER BY last_name ASC, first_name ASC, id ASC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list verified users: %w", err)
	}
	defer rows.Close()

	users := make([]models.User, 0)
	for rows.Next() {
		user, errScan := r.scanUser(rows)
		if errScan != nil {
			return nil, errScan
		}
		users = append(users, *user)
	}
	return users, rows.Err()
}

func (r *postgresUserRepository) SetVerified(ctx context.Context, id int, verified bool) error {
	query := `UPDATE users SET verified = $1 WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, verified, id)
	if err != nil {
		return fmt.Errorf("failed to set verified for user %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrUserNotFound)
}
