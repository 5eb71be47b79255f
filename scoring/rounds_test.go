package scoring

import (
	"testing"

	"github.com/Dosada05/playoff-pool/models"
	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name      string
		gameID    string
		wantRound int
		wantKnown bool
	}{
		{"first round opener", "2024031101", 1, true},
		{"first round last series", "2024031799", 1, true},
		{"second round opener", "2024032101", 2, true},
		{"second round last series", "2024032799", 2, true},
		{"conference final", "2024033101", 3, true},
		{"second conference final", "2024033201", 3, true},
		{"cup final", "2024034101", 3, true},
		{"top of final range", "2024034799", 3, true},
		{"code below first round", "2024031001", 1, false},
		{"code between rounds", "2024031801", 1, false},
		{"code above final range", "2024034801", 1, false},
		{"code zero", "2024030011", 1, false},
		{"non numeric code", "202403xx01", 1, false},
		{"short identifier", "123", 1, false},
		{"empty identifier", "", 1, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			round, known := Classify(tc.gameID)
			assert.Equal(t, tc.wantRound, round)
			assert.Equal(t, tc.wantKnown, known)
		})
	}
}

func TestClassifyDefaultRound(t *testing.T) {
	round, known := Classify("2024039901")
	assert.False(t, known)
	assert.Equal(t, models.FirstRound, round)
	assert.Equal(t, DefaultRound, round)
}
