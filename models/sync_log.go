package models

import "time"

// SyncStatus mirrors the sync_logs status ENUM in the DB.
type SyncStatus string

const (
	SyncStatusRunning   SyncStatus = "running"
	SyncStatusCompleted SyncStatus = "completed"
	SyncStatusFailed    SyncStatus = "failed"
)

// SyncLog is one row per stats sync run. A row left in "running" state
// means the process died mid-run; snapshots written before the interruption
// are still valid.
type SyncLog struct {
	ID             int        `json:"id" db:"id"`
	StartedAt      time.Time  `json:"started_at" db:"started_at"`
	FinishedAt     *time.Time `json:"finished_at,omitempty" db:"finished_at"`
	PlayersUpdated int        `json:"players_updated" db:"players_updated"`
	Errors         []string   `json:"errors,omitempty" db:"errors"`
	Status         SyncStatus `json:"status" db:"status"`

	ReportKey *string `json:"-" db:"report_key"`
	ReportURL *string `json:"report_url,omitempty" db:"-"`
}
