package services

import (
	"context"
	"testing"

	"github.com/Dosada05/playoff-pool/models"
	"github.com/Dosada05/playoff-pool/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTeamList(t *testing.T) {
	elimRound := 1
	teams := &fakeTeamRepo{list: []*models.Team{
		{Abbreviation: "DAL", Name: "Dallas Stars", Conference: models.ConferenceWest},
		{Abbreviation: "VGK", Name: "Vegas Golden Knights", Conference: models.ConferenceWest, Eliminated: true, EliminationRound: &elimRound},
	}}
	svc := NewTeamService(teams)

	result, err := svc.List(context.Background())

	require.NoError(t, err)
	require.Len(t, result, 2)
	assert.False(t, result[0].Eliminated)
	assert.True(t, result[1].Eliminated)
	require.NotNil(t, result[1].EliminationRound)
	assert.Equal(t, 1, *result[1].EliminationRound)
}

func TestTeamCreateNormalizes(t *testing.T) {
	teams := &fakeTeamRepo{}
	svc := NewTeamService(teams)

	team, err := svc.Create(context.Background(), CreateTeamInput{
		Abbreviation: " fla ",
		Name:         "  Florida Panthers ",
		Conference:   models.ConferenceEast,
	})

	require.NoError(t, err)
	assert.Equal(t, "FLA", team.Abbreviation)
	assert.Equal(t, "Florida Panthers", team.Name)
	assert.Equal(t, models.ConferenceEast, team.Conference)
	assert.False(t, team.Eliminated)
	require.Len(t, teams.created, 1)
}

func TestTeamCreateValidation(t *testing.T) {
	tests := []struct {
		name  string
		input CreateTeamInput
	}{
		{"missing abbreviation", CreateTeamInput{Name: "Florida Panthers", Conference: models.ConferenceEast}},
		{"missing name", CreateTeamInput{Abbreviation: "FLA", Conference: models.ConferenceEast}},
		{"bogus conference", CreateTeamInput{Abbreviation: "FLA", Name: "Florida Panthers", Conference: "central"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			teams := &fakeTeamRepo{}
			svc := NewTeamService(teams)

			_, err := svc.Create(context.Background(), tc.input)

			assert.ErrorIs(t, err, ErrValidationFailed)
			assert.Empty(t, teams.created)
		})
	}
}

func TestTeamCreateAbbreviationConflict(t *testing.T) {
	teams := &fakeTeamRepo{createErr: repositories.ErrTeamAbbrConflict}
	svc := NewTeamService(teams)

	_, err := svc.Create(context.Background(), CreateTeamInput{
		Abbreviation: "FLA",
		Name:         "Florida Panthers",
		Conference:   models.ConferenceEast,
	})

	assert.ErrorIs(t, err, ErrTeamConflict)
}
