package models

import "time"

// PlayerPosition mirrors the position ENUM in the DB.
type PlayerPosition string

const (
	PositionForward    PlayerPosition = "forward"
	PositionDefense    PlayerPosition = "defense"
	PositionGoaltender PlayerPosition = "goaltender"
)

// Skater reports whether the position scores on goals and assists.
func (p PlayerPosition) Skater() bool {
	return p == PositionForward || p == PositionDefense
}

func (p PlayerPosition) Valid() bool {
	switch p {
	case PositionForward, PositionDefense, PositionGoaltender:
		return true
	}
	return false
}

type Player struct {
	ID         int            `json:"id" db:"id"`
	ExternalID string         `json:"external_id" db:"external_id"`
	FullName   string         `json:"full_name" db:"full_name"`
	TeamAbbr   string         `json:"team_abbr" db:"team_abbr"`
	Position   PlayerPosition `json:"position" db:"position"`
	Cost       int            `json:"cost" db:"cost"`
	Active     bool           `json:"active" db:"active"`
	CreatedAt  time.Time      `json:"created_at" db:"created_at"`

	// Optional linked data, populated by services, not mapped directly.
	Team *Team `json:"team,omitempty" db:"-"`
}
