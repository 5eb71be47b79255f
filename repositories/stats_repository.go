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

var (
	ErrStatSnapshotNotFound      = errors.New("stat snapshot not found")
	ErrStatSnapshotPlayerInvalid = errors.New("snapshot player conflict or invalid")
)

type StatsRepository interface {
	Upsert(ctx context.Context, exec SQLExecutor, snapshot *models.StatSnapshot) error
	GetByPlayerAndRound(ctx context.Context, exec SQLExecutor, playerID, round int) (*models.StatSnapshot, error)
	ListByPlayer(ctx context.Context, exec SQLExecutor, playerID int) ([]*models.StatSnapshot, error)
}

type postgresStatsRepository struct {
	db *sql.DB
}

func NewPostgresStatsRepository(db *sql.DB) StatsRepository {
	return &postgresStatsRepository{db: db}
}

func (r *postgresStatsRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresStatsRepository) scanSnapshot(rowScanner interface{ Scan(...interface{}) error }) (*models.StatSnapshot, error) {
	var s models.StatSnapshot
	err := rowScanner.Scan(
		&s.ID, &s.PlayerID, &s.Round, &s.Goals, &s.Assists,
		&s.Wins, &s.Shutouts, &s.GamesPlayed, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrStatSnapshotNotFound
		}
		return nil, err
	}
	return &s, nil
}

// Upsert writes the whole row for (player, round). The snapshot is a full
// replacement of whatever was there, never an increment, so re-running a
// sync with unchanged upstream data is a no-op.
func (r *postgresStatsRepository) Upsert(ctx context.Context, exec SQLExecutor, snapshot *models.StatSnapshot) error {
	executor := r.getExecutor(exec)
	if snapshot.UpdatedAt.IsZero() {
		snapshot.UpdatedAt = time.Now()
	}
	query := `
		INSERT INTO stat_snapshots (player_id, round, goals, assists, wins, shutouts, games_played, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (player_id, round) DO UPDATE
		SET goals = EXCLUDED.goals,
		    assists = EXCLUDED.assists,
		    wins = EXCLUDED.wins,
		    shutouts = EXCLUDED.shutouts,
		    games_played = EXCLUDED.games_played,
		    updated_at = EXCLUDED.updated_at
		RETURNING id`
	err := executor.QueryRowContext(ctx, query,
		snapshot.PlayerID, snapshot.Round, snapshot.Goals, snapshot.Assists,
		snapshot.Wins, snapshot.Shutouts, snapshot.GamesPlayed, snapshot.UpdatedAt,
	).Scan(&snapshot.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23503" {
			return ErrStatSnapshotPlayerInvalid
		}
		return fmt.Errorf("failed to upsert snapshot for player %d round %d: %w", snapshot.PlayerID, snapshot.Round, err)
	}
	return nil
}

func (r *postgresStatsRepository) GetByPlayerAndRound(ctx context.Context, exec SQLExecutor, playerID, round int) (*models.StatSnapshot, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT id, player_id, round, goals, assists, wins, shutouts, games_played, updated_at
		FROM stat_snapshots
		WHERE player_id = $1 AND round = $2`
	row := executor.QueryRowContext(ctx, query, playerID, round)
	return r.scanSnapshot(row)
}

func (r *postgresStatsRepository) ListByPlayer(ctx context.Context, exec SQLExecutor, playerID int) ([]*models.StatSnapshot, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT id, player_id, round, goals, assists, wins, shutouts, games_played, updated_at
		FROM stat_snapshots
		WHERE player_id = $1
		ORDER BY round ASC`
	rows, err := executor.QueryContext(ctx, query, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots for player %d: %w", playerID, err)
	}
	defer rows.Close()

	snapshots := make([]*models.StatSnapshot, 0, models.LastRound)
	for rows.Next() {
		s, errScan := r.scanSnapshot(rows)
		if errScan != nil {
			return nil, errScan
		}
		snapshots = append(snapshots, s)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return snapshots, nil
}
