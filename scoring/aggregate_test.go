package scoring

import (
	"testing"

	"github.com/Dosada05/playoff-pool/models"
	"github.com/Dosada05/playoff-pool/statsfeed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregateSkater(t *testing.T) {
	games := []statsfeed.GameLog{
		{GameID: "2024031101", Goals: 2, Assists: 1},
		{GameID: "2024031102", Goals: 0, Assists: 3},
		{GameID: "2024032101", Goals: 1, Assists: 0},
	}

	agg := Aggregate(models.PositionForward, games)

	require.Len(t, agg.Rounds, 3)
	assert.Equal(t, 2, agg.Rounds[1].Goals)
	assert.Equal(t, 4, agg.Rounds[1].Assists)
	assert.Equal(t, 2, agg.Rounds[1].GamesPlayed)
	assert.Equal(t, 1, agg.Rounds[2].Goals)
	assert.Equal(t, 0, agg.Rounds[2].Assists)
	assert.Equal(t, 1, agg.Rounds[2].GamesPlayed)
	assert.Empty(t, agg.UnknownGameIDs)
}

func TestAggregateAllRoundsPresent(t *testing.T) {
	agg := Aggregate(models.PositionDefense, nil)

	require.Len(t, agg.Rounds, 3)
	for round := models.FirstRound; round <= models.LastRound; round++ {
		require.NotNil(t, agg.Rounds[round])
		assert.Equal(t, RoundTotals{}, *agg.Rounds[round])
	}
}

func TestAggregateGoaltenderShutoutOmitted(t *testing.T) {
	// A win with zero goals against and no reported shutout still credits one.
	games := []statsfeed.GameLog{
		{GameID: "2024031101", Decision: statsfeed.DecisionWin, Shutouts: 0, GoalsAgainst: 0},
	}

	agg := Aggregate(models.PositionGoaltender, games)

	assert.Equal(t, 1, agg.Rounds[1].Wins)
	assert.Equal(t, 1, agg.Rounds[1].Shutouts)
	assert.Equal(t, 1, agg.Rounds[1].GamesPlayed)
}

func TestAggregateGoaltenderShutoutReported(t *testing.T) {
	// When the feed reports the field, no extra credit on top of it.
	games := []statsfeed.GameLog{
		{GameID: "2024031101", Decision: statsfeed.DecisionWin, Shutouts: 1, GoalsAgainst: 0},
	}

	agg := Aggregate(models.PositionGoaltender, games)

	assert.Equal(t, 1, agg.Rounds[1].Wins)
	assert.Equal(t, 1, agg.Rounds[1].Shutouts)
}

func TestAggregateGoaltenderLossNoCredit(t *testing.T) {
	games := []statsfeed.GameLog{
		{GameID: "2024031101", Decision: "L", Shutouts: 0, GoalsAgainst: 0},
		{GameID: "2024031102", Decision: statsfeed.DecisionWin, Shutouts: 0, GoalsAgainst: 2},
	}

	agg := Aggregate(models.PositionGoaltender, games)

	assert.Equal(t, 1, agg.Rounds[1].Wins)
	assert.Equal(t, 0, agg.Rounds[1].Shutouts)
	assert.Equal(t, 2, agg.Rounds[1].GamesPlayed)
}

func TestAggregateUnknownGameIDs(t *testing.T) {
	games := []statsfeed.GameLog{
		{GameID: "2024039901", Goals: 1},
		{GameID: "abc", Assists: 1},
		{GameID: "2024031101", Goals: 1},
	}

	agg := Aggregate(models.PositionForward, games)

	assert.Equal(t, []string{"2024039901", "abc"}, agg.UnknownGameIDs)
	// Unrecognized games are counted in the default round, not dropped.
	assert.Equal(t, 2, agg.Rounds[DefaultRound].Goals)
	assert.Equal(t, 1, agg.Rounds[DefaultRound].Assists)
	assert.Equal(t, 3, agg.Rounds[DefaultRound].GamesPlayed)
}

func TestAggregateIdempotent(t *testing.T) {
	games := []statsfeed.GameLog{
		{GameID: "2024031101", Goals: 2, Assists: 1},
		{GameID: "2024032101", Goals: 1, Assists: 1},
	}

	first := Aggregate(models.PositionForward, games)
	second := Aggregate(models.PositionForward, games)

	for round := models.FirstRound; round <= models.LastRound; round++ {
		assert.Equal(t, *first.Rounds[round], *second.Rounds[round])
	}
}
