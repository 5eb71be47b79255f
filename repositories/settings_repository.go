package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

var ErrSettingNotFound = errors.New("setting not found")

// SettingsRepository is a JSON key-value store for process-wide pool state
// (current round, last sync time, stats verification flag). It is injected
// into services; nothing reads it as a global.
type SettingsRepository interface {
	Get(ctx context.Context, exec SQLExecutor, key string, dest any) error
	Set(ctx context.Context, exec SQLExecutor, key string, value any) error
}

type postgresSettingsRepository struct {
	db *sql.DB
}

func NewPostgresSettingsRepository(db *sql.DB) SettingsRepository {
	return &postgresSettingsRepository{db: db}
}

func (r *postgresSettingsRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

// Get unmarshals the stored value into dest. A missing key returns
// ErrSettingNotFound; callers decide whether that means a zero value.
func (r *postgresSettingsRepository) Get(ctx context.Context, exec SQLExecutor, key string, dest any) error {
	executor := r.getExecutor(exec)
	query := `SELECT value FROM pool_settings WHERE key = $1`

	var raw []byte
	err := executor.QueryRowContext(ctx, query, key).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrSettingNotFound
		}
		return fmt.Errorf("failed to get setting %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("failed to unmarshal setting %s: %w", key, err)
	}
	return nil
}

func (r *postgresSettingsRepository) Set(ctx context.Context, exec SQLExecutor, key string, value any) error {
	executor := r.getExecutor(exec)

	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal setting %s: %w", key, err)
	}

	query := `
		INSERT INTO pool_settings (key, value)
		VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`
	if _, err := executor.ExecContext(ctx, query, key, raw); err != nil {
		return fmt.Errorf("failed to set setting %s: %w", key, err)
	}
	return nil
}
