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

var ErrSyncLogNotFound = errors.New("sync log not found")

type SyncLogRepository interface {
	Create(ctx context.Context, exec SQLExecutor, log *models.SyncLog) error
	Finish(ctx context.Context, exec SQLExecutor, log *models.SyncLog) error
	GetLatest(ctx context.Context, exec SQLExecutor) (*models.SyncLog, error)
	List(ctx context.Context, exec SQLExecutor, limit int) ([]*models.SyncLog, error)
	Prune(ctx context.Context, exec SQLExecutor, keep int) ([]string, error)
}

type postgresSyncLogRepository struct {
	db *sql.DB
}

func NewPostgresSyncLogRepository(db *sql.DB) SyncLogRepository {
	return &postgresSyncLogRepository{db: db}
}

func (r *postgresSyncLogRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresSyncLogRepository) scanLog(rowScanner interface{ Scan(...interface{}) error }) (*models.SyncLog, error) {
	var log models.SyncLog
	err := rowScanner.Scan(
		&log.ID, &log.StartedAt, &log.FinishedAt, &log.PlayersUpdated,
		pq.Array(&log.Errors), &log.Status, &log.ReportKey,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSyncLogNotFound
		}
		return nil, err
	}
	return &log, nil
}

// Create opens a run log row in "running" state.
func (r *postgresSyncLogRepository) Create(ctx context.Context, exec SQLExecutor, log *models.SyncLog) error {
	executor := r.getExecutor(exec)
	if log.StartedAt.IsZero() {
		log.StartedAt = time.Now()
	}
	log.Status = models.SyncStatusRunning
	query := `
		INSERT INTO sync_logs (started_at, status)
		VALUES ($1, $2)
		RETURNING id`
	err := executor.QueryRowContext(ctx, query, log.StartedAt, log.Status).Scan(&log.ID)
	if err != nil {
		return fmt.Errorf("failed to create sync log: %w", err)
	}
	return nil
}

// Finish records the run's terminal state, counts and error list.
func (r *postgresSyncLogRepository) Finish(ctx context.Context, exec SQLExecutor, log *models.SyncLog) error {
	executor := r.getExecutor(exec)
	if log.FinishedAt == nil {
		now := time.Now()
		log.FinishedAt = &now
	}
	query := `
		UPDATE sync_logs
		SET finished_at = $1, players_updated = $2, errors = $3, status = $4, report_key = $5
		WHERE id = $6`
	result, err := executor.ExecContext(ctx, query,
		log.FinishedAt, log.PlayersUpdated, pq.Array(log.Errors), log.Status, log.ReportKey, log.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to finish sync log %d: %w", log.ID, err)
	}
	return checkAffectedRows(result, ErrSyncLogNotFound)
}

func (r *postgresSyncLogRepository) GetLatest(ctx context.Context, exec SQLExecutor) (*models.SyncLog, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT id, started_at, finished_at, players_updated, errors, status, report_key
		FROM sync_logs
		ORDER BY started_at DESC
		LIMIT 1`
	row := executor.QueryRowContext(ctx, query)
	return r.scanLog(row)
}

// Prune deletes run rows beyond the keep most recent and returns the
// archive keys of the deleted rows, so the caller can drop the objects too.
func (r *postgresSyncLogRepository) Prune(ctx context.Context, exec SQLExecutor, keep int) ([]string, error) {
	executor := r.getExecutor(exec)
	if keep < 1 {
		keep = 1
	}
	query := `
		DELETE FROM sync_logs
		WHERE id IN (
			SELECT id FROM sync_logs
			ORDER BY started_at DESC
			OFFSET $1
		)
		RETURNING report_key`
	rows, err := executor.QueryContext(ctx, query, keep)
	if err != nil {
		return nil, fmt.Errorf("failed to prune sync logs: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key sql.NullString
		if err := rows.Scan(&key); err != nil {
			return nil, err
		}
		if key.Valid {
			keys = append(keys, key.String)
		}
	}
	return keys, rows.Err()
}

func (r *postgresSyncLogRepository) List(ctx context.Context, exec SQLExecutor, limit int) ([]*models.SyncLog, error) {
	executor := r.getExecutor(exec)
	if limit <= 0 {
		limit = 20
	}
	query := `
		SELECT id, started_at, finished_at, players_updated, errors, status, report_key
		FROM sync_logs
		ORDER BY started_at DESC
		LIMIT $1`
	rows, err := executor.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list sync logs: %w", err)
	}
	defer rows.Close()

	logs := make([]*models.SyncLog, 0, limit)
	for rows.Next() {
		log, errScan := r.scanLog(rows)
		if errScan != nil {
			return nil, errScan
		}
		logs = append(logs, log)
	}
	return logs, rows.Err()
}
