package statsfeed

import "fmt"

// DecisionWin is the decision code the feed reports for a goaltender win.
const DecisionWin = "W"

// GameLog is one game line from the feed. Skaters carry goals/assists,
// goaltenders decision/shutouts/goals-against; the feed sends zero values
// for the fields that do not apply to the position.
type GameLog struct {
	GameID       string `json:"gameId"`
	Goals        int    `json:"goals"`
	Assists      int    `json:"assists"`
	Decision     string `json:"decision"`
	Shutouts     int    `json:"shutouts"`
	GoalsAgainst int    `json:"goalsAgainst"`
}

// SeriesResult is one playoff series from the bracket endpoint. Winner and
// Loser are team abbreviations; both are empty while the series is still
// in progress.
type SeriesResult struct {
	Round  int    `json:"round"`
	Winner string `json:"winner"`
	Loser  string `json:"loser"`
}

// Completed reports whether the series has a decided winner and loser.
func (s SeriesResult) Completed() bool {
	return s.Winner != "" && s.Loser != ""
}

type gameLogResponse struct {
	GameLog []GameLog `json:"gameLog"`
}

type bracketResponse struct {
	Series []SeriesResult `json:"series"`
}

// APIError is a non-OK, non-404 response from the feed.
type APIError struct {
	StatusCode int
	URL        string
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("stats feed request to %s failed with status %d: %s", e.URL, e.StatusCode, e.Body)
}
