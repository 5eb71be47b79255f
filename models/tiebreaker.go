package models

import "time"

// Tiebreaker stores a user's numeric tie-break answers for a round. The
// answers are persisted alongside the roster and resolved manually by the
// pool operator; the scoring engine never evaluates them.
type Tiebreaker struct {
	ID          int       `json:"id" db:"id"`
	UserID      int       `json:"user_id" db:"user_id"`
	RoundNumber int       `json:"round_number" db:"round_number"`
	Answers     []int64   `json:"answers" db:"answers"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}
