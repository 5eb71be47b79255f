package models

// Conference mirrors the conference ENUM in the DB.
type Conference string

const (
	ConferenceEast Conference = "east"
	ConferenceWest Conference = "west"
)

func (c Conference) Valid() bool {
	return c == ConferenceEast || c == ConferenceWest
}

// Team is keyed by its abbreviation: bracket results from the stats feed
// reference teams by abbreviation only.
type Team struct {
	Abbreviation     string     `json:"abbreviation" db:"abbreviation"`
	Name             string     `json:"name" db:"name"`
	Conference       Conference `json:"conference" db:"conference"`
	Eliminated       bool       `json:"eliminated" db:"eliminated"`
	EliminationRound *int       `json:"elimination_round,omitempty" db:"elimination_round"`
}
