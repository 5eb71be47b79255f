package models

// LeaderboardEntry is one verified user's standing: total points plus the
// per-round breakdown for the scoring rounds. Users who never submitted a
// roster still get an entry with zero points.
type LeaderboardEntry struct {
	UserID      int         `json:"user_id"`
	FirstName   string      `json:"first_name"`
	LastName    string      `json:"last_name"`
	TotalPoints int         `json:"total_points"`
	RoundPoints map[int]int `json:"round_points"`
}
