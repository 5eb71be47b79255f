package models

import "time"

// Round window numbers. Round 0 is a non-scoring test round opened before
// the playoffs start; rounds 1-3 score (3 covers the conference finals and
// the cup final together).
const (
	TestRound  = 0
	FirstRound = 1
	LastRound  = 3
)

func ScoringRound(number int) bool {
	return number >= FirstRound && number <= LastRound
}

type Round struct {
	Number   int        `json:"number" db:"number"`
	Name     string     `json:"name" db:"name"`
	LockDate *time.Time `json:"lock_date,omitempty" db:"lock_date"`
	EndDate  *time.Time `json:"end_date,omitempty" db:"end_date"`
}

// Locked reports whether the round's pick deadline has passed. A round
// without a configured deadline is never locked.
func (r *Round) Locked(now time.Time) bool {
	return r.LockDate != nil && now.After(*r.LockDate)
}
