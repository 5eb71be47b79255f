package scoring

import (
	"github.com/Dosada05/playoff-pool/models"
	"github.com/Dosada05/playoff-pool/statsfeed"
)

// RoundTotals is the cumulative stat line for one player in one round.
type RoundTotals struct {
	Goals       int
	Assists     int
	Wins        int
	Shutouts    int
	GamesPlayed int
}

// Aggregation is the result of folding one player's complete game log.
// Every scoring round is present, zero-initialized.
type Aggregation struct {
	Rounds map[int]*RoundTotals

	// UnknownGameIDs are identifiers that fell back to the default round.
	UnknownGameIDs []string
}

// Aggregate folds a complete game log into per-round totals. The fold
// always starts from zero and consumes the whole log, so writing the result
// as a full overwrite stays idempotent across repeated sync runs.
//
// Goaltenders score wins and shutouts. A win with zero goals against and no
// reported shutout still credits one shutout: some feed rows omit the
// shutout field, and crediting only the omitted case avoids double counting
// when it is present. Skaters score goals and assists as reported.
func Aggregate(position models.PlayerPosition, games []statsfeed.GameLog) *Aggregation {
	agg := &Aggregation{
		Rounds: make(map[int]*RoundTotals, models.LastRound),
	}
	for round := models.FirstRound; round <= models.LastRound; round++ {
		agg.Rounds[round] = &RoundTotals{}
	}

	for _, game := range games {
		round, known := Classify(game.GameID)
		if !known {
			agg.UnknownGameIDs = append(agg.UnknownGameIDs, game.GameID)
		}
		totals := agg.Rounds[round]

		if position == models.PositionGoaltender {
			win := game.Decision == statsfeed.DecisionWin
			if win {
				totals.Wins++
			}
			totals.Shutouts += game.Shutouts
			if win && game.Shutouts == 0 && game.GoalsAgainst == 0 {
				totals.Shutouts++
			}
		} else {
			totals.Goals += game.Goals
			totals.Assists += game.Assists
		}
		totals.GamesPlayed++
	}

	return agg
}
