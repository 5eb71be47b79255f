package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Dosada05/playoff-pool/models"
	"github.com/Dosada05/playoff-pool/repositories"
)

type CreateTeamInput struct {
	Abbreviation string            `json:"abbreviation"`
	Name         string            `json:"name"`
	Conference   models.Conference `json:"conference"`
}

// TeamService covers the team catalog: the public list with elimination
// state and the admin-side season setup.
type TeamService interface {
	List(ctx context.Context) ([]*models.Team, error)
	Create(ctx context.Context, input CreateTeamInput) (*models.Team, error)
}

type teamService struct {
	teamRepo repositories.TeamRepository
}

func NewTeamService(teamRepo repositories.TeamRepository) TeamService {
	return &teamService{
		teamRepo: teamRepo,
	}
}

func (s *teamService) List(ctx context.Context) ([]*models.Team, error) {
	return s.teamRepo.List(ctx, nil)
}

// Create adds a team to the catalog. Teams are keyed by abbreviation; the
// bracket feed references them by nothing else.
func (s *teamService) Create(ctx context.Context, input CreateTeamInput) (*models.Team, error) {
	input.Abbreviation = strings.ToUpper(strings.TrimSpace(input.Abbreviation))
	input.Name = strings.TrimSpace(input.Name)

	if input.Abbreviation == "" || input.Name == "" {
		return nil, fmt.Errorf("%w: abbreviation and name are required", ErrValidationFailed)
	}
	if !input.Conference.Valid() {
		return nil, fmt.Errorf("%w: conference must be east or west", ErrValidationFailed)
	}

	team := &models.Team{
		Abbreviation: input.Abbreviation,
		Name:         input.Name,
		Conference:   input.Conference,
	}
	if err := s.teamRepo.Create(ctx, nil, team); err != nil {
		if errors.Is(err, repositories.ErrTeamAbbrConflict) {
			return nil, ErrTeamConflict
		}
		return nil, err
	}
	return team, nil
}
