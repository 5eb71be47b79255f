package models

import "time"

// Roster is one user's picks for one round. At most one roster per
// (user, round). Selections may change freely until the roster is
// submitted or the round locks; submission is terminal.
type Roster struct {
	ID          int        `json:"id" db:"id"`
	UserID      int        `json:"user_id" db:"user_id"`
	RoundNumber int        `json:"round_number" db:"round_number"`
	Submitted   bool       `json:"submitted" db:"submitted"`
	SubmittedAt *time.Time `json:"submitted_at,omitempty" db:"submitted_at"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`

	Selections []RosterSelection `json:"selections,omitempty" db:"-"`
	Tiebreaker *Tiebreaker       `json:"tiebreaker,omitempty" db:"-"`
}

type RosterSelection struct {
	ID       int  `json:"id" db:"id"`
	RosterID int  `json:"roster_id" db:"roster_id"`
	PlayerID int  `json:"player_id" db:"player_id"`
	Star     bool `json:"star" db:"star"`

	Player *Player `json:"player,omitempty" db:"-"`
}
