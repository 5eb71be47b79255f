package scoring

import (
	"strconv"

	"github.com/Dosada05/playoff-pool/models"
)

// DefaultRound is where games with an unrecognized identifier are counted.
// The feed encodes the round as the two digits immediately before the final
// two digits of the game identifier; anything outside the known code ranges
// lands on the default so a feed glitch shows up as skewed round-1 totals
// instead of silently dropped games. Callers are expected to log and count
// the unknown identifiers the aggregation reports.
const DefaultRound = models.FirstRound

// Classify maps an upstream game identifier to a playoff round number.
// known is false when the identifier carried no recognizable round code and
// the default applied.
func Classify(gameID string) (round int, known bool) {
	if len(gameID) < 4 {
		return DefaultRound, false
	}

	code, err := strconv.Atoi(gameID[len(gameID)-4 : len(gameID)-2])
	if err != nil {
		return DefaultRound, false
	}

	switch {
	case code >= 11 && code <= 17:
		return 1, true
	case code >= 21 && code <= 27:
		return 2, true
	case code >= 31 && code <= 47:
		// Conference finals and the cup final share the last round.
		return 3, true
	}
	return DefaultRound, false
}
