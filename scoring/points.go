package scoring

import "github.com/Dosada05/playoff-pool/models"

// Star selections score double.
const starMultiplier = 2

// SelectionPoints computes the points one roster selection earns from a
// round snapshot. Skaters: goals + assists. Goaltenders: two per win plus
// one per shutout. No snapshot means the player has not appeared in the
// round yet and scores zero.
func SelectionPoints(position models.PlayerPosition, snapshot *models.StatSnapshot, star bool) int {
	if snapshot == nil {
		return 0
	}

	var base int
	if position == models.PositionGoaltender {
		base = snapshot.Wins*2 + snapshot.Shutouts
	} else {
		base = snapshot.Goals + snapshot.Assists
	}

	if star {
		return base * starMultiplier
	}
	return base
}
