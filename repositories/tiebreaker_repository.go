package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Dosada05/playoff-pool/models"
	"github.com/lib/pq"
)

var ErrTiebreakerNotFound = errors.New("tiebreaker not found")

type TiebreakerRepository interface {
	Upsert(ctx context.Context, exec SQLExecutor, tiebreaker *models.Tiebreaker) error
	GetByUserAndRound(ctx context.Context, exec SQLExecutor, userID, round int) (*models.Tiebreaker, error)
}

type postgresTiebreakerRepository struct {
	db *sql.DB
}

func NewPostgresTiebreakerRepository(db *sql.DB) TiebreakerRepository {
	return &postgresTiebreakerRepository{db: db}
}

func (r *postgresTiebreakerRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresTiebreakerRepository) Upsert(ctx context.Context, exec SQLExecutor, tiebreaker *models.Tiebreaker) error {
	executor := r.getExecutor(exec)
	if tiebreaker.UpdatedAt.IsZero() {
		tiebreaker.UpdatedAt = time.Now()
	}
	query := `
		INSERT INTO tiebreakers (user_id, round_number, answers, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, round_number) DO UPDATE
		SET answers = EXCLUDED.answers, updated_at = EXCLUDED.updated_at
		RETURNING id`
	err := executor.QueryRowContext(ctx, query,
		tiebreaker.UserID, tiebreaker.RoundNumber, pq.Array(tiebreaker.Answers), tiebreaker.UpdatedAt,
	).Scan(&tiebreaker.ID)
	if err != nil {
		return fmt.Errorf("failed to upsert tiebreaker for user %d round %d: %w", tiebreaker.UserID, tiebreaker.RoundNumber, err)
	}
	return nil
}

func (r *postgresTiebreakerRepository) GetByUserAndRound(ctx context.Context, exec SQLExecutor, userID, round int) (*models.Tiebreaker, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT id, user_id, round_number, answers, updated_at
		FROM tiebreakers
		WHERE user_id = $1 AND round_number = $2`
	var tb models.Tiebreaker
	err := executor.QueryRowContext(ctx, query, userID, round).Scan(
		&tb.ID, &tb.UserID, &tb.RoundNumber, pq.Array(&tb.Answers), &tb.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTiebreakerNotFound
		}
		return nil, err
	}
	return &tb, nil
}
