package models

import "time"

// StatSnapshot holds the fully recomputed cumulative totals for one player
// in one playoff round as of the last sync run. It is only ever written as
// a whole-row upsert, never incremented in place.
type StatSnapshot struct {
	ID          int       `json:"id" db:"id"`
	PlayerID    int       `json:"player_id" db:"player_id"`
	Round       int       `json:"round" db:"round"`
	Goals       int       `json:"goals" db:"goals"`
	Assists     int       `json:"assists" db:"assists"`
	Wins        int       `json:"wins" db:"wins"`
	Shutouts    int       `json:"shutouts" db:"shutouts"`
	GamesPlayed int       `json:"games_played" db:"games_played"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// PlayerRoundStats is the role-shaped public view of a snapshot: skaters
// expose goals/assists, goaltenders wins/shutouts.
type PlayerRoundStats struct {
	Goals       *int `json:"goals,omitempty"`
	Assists     *int `json:"assists,omitempty"`
	Wins        *int `json:"wins,omitempty"`
	Shutouts    *int `json:"shutouts,omitempty"`
	GamesPlayed int  `json:"games_played"`
}

type PlayerStats struct {
	Player *Player                  `json:"player"`
	Rounds map[int]PlayerRoundStats `json:"rounds"`
}
