package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Dosada05/playoff-pool/models"
)

var ErrRoundNotFound = errors.New("round not found")

type RoundRepository interface {
	Upsert(ctx context.Context, exec SQLExecutor, round *models.Round) error
	GetByNumber(ctx context.Context, exec SQLExecutor, number int) (*models.Round, error)
	List(ctx context.Context, exec SQLExecutor) ([]*models.Round, error)
	SetLockDate(ctx context.Context, exec SQLExecutor, number int, lockDate time.Time) error
}

type postgresRoundRepository struct {
	db *sql.DB
}

func NewPostgresRoundRepository(db *sql.DB) RoundRepository {
	return &postgresRoundRepository{db: db}
}

func (r *postgresRoundRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresRoundRepository) scanRound(rowScanner interface{ Scan(...interface{}) error }) (*models.Round, error) {
	var round models.Round
	err := rowScanner.Scan(&round.Number, &round.Name, &round.LockDate, &round.EndDate)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRoundNotFound
		}
		return nil, err
	}
	return &round, nil
}

// Upsert creates the round row or refreshes its name. Lock and end dates
// are set through the admin flow and survive re-seeding at startup.
func (r *postgresRoundRepository) Upsert(ctx context.Context, exec SQLExecutor, round *models.Round) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO rounds (number, name, lock_date, end_date)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (number) DO UPDATE
		SET name = EXCLUDED.name`
	_, err := executor.ExecContext(ctx, query, round.Number, round.Name, round.LockDate, round.EndDate)
	if err != nil {
		return fmt.Errorf("failed to upsert round %d: %w", round.Number, err)
	}
	return nil
}

func (r *postgresRoundRepository) GetByNumber(ctx context.Context, exec SQLExecutor, number int) (*models.Round, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT number, name, lock_date, end_date
		FROM rounds
		WHERE number = $1`
	row := executor.QueryRowContext(ctx, query, number)
	return r.scanRound(row)
}

func (r *postgresRoundRepository) List(ctx context.Context, exec SQLExecutor) ([]*models.Round, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT number, name, lock_date, end_date
		FROM rounds
		ORDER BY number ASC`
	rows, err := executor.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list rounds: %w", err)
	}
	defer rows.Close()

	rounds := make([]*models.Round, 0)
	for rows.Next() {
		round, errScan := r.scanRound(rows)
		if errScan != nil {
			return nil, errScan
		}
		rounds = append(rounds, round)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return rounds, nil
}

func (r *postgresRoundRepository) SetLockDate(ctx context.Context, exec SQLExecutor, number int, lockDate time.Time) error {
	executor := r.getExecutor(exec)
	query := `UPDATE rounds SET lock_date = $1 WHERE number = $2`
	result, err := executor.ExecContext(ctx, query, lockDate, number)
	if err != nil {
		return fmt.Errorf("failed to set lock date for round %d: %w", number, err)
	}
	return checkAffectedRows(result, ErrRoundNotFound)
}
