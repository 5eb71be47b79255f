package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Dosada05/playoff-pool/models"
	"github.com/Dosada05/playoff-pool/repositories"
)

type CreatePlayerInput struct {
	ExternalID string                `json:"external_id"`
	FullName   string                `json:"full_name"`
	TeamAbbr   string                `json:"team_abbr"`
	Position   models.PlayerPosition `json:"position"`
	Cost       int                   `json:"cost"`
}

// UpdatePlayerInput carries the season-maintenance mutations: trades and
// scratches. Cost and position are fixed once the player is created.
type UpdatePlayerInput struct {
	FullName *string `json:"full_name,omitempty"`
	TeamAbbr *string `json:"team_abbr,omitempty"`
	Active   *bool   `json:"active,omitempty"`
}

type PlayerService interface {
	Get(ctx context.Context, id int) (*models.Player, error)
	ListEligible(ctx context.Context, round int) ([]*models.Player, error)
	Stats(ctx context.Context, playerID int) (*models.PlayerStats, error)
	Create(ctx context.Context, input CreatePlayerInput) (*models.Player, error)
	Update(ctx context.Context, id int, input UpdatePlayerInput) (*models.Player, error)
}

type playerService struct {
	playerRepo repositories.PlayerRepository
	statsRepo  repositories.StatsRepository
	teamRepo   repositories.TeamRepository
}

func NewPlayerService(
	playerRepo repositories.PlayerRepository,
	statsRepo repositories.StatsRepository,
	teamRepo repositories.TeamRepository,
) PlayerService {
	return &playerService{
		playerRepo: playerRepo,
		statsRepo:  statsRepo,
		teamRepo:   teamRepo,
	}
}

func (s *playerService) Get(ctx context.Context, id int) (*models.Player, error) {
	player, err := s.playerRepo.GetByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return nil, ErrPlayerNotFound
		}
		return nil, err
	}
	return player, nil
}

// ListEligible returns the pickable pool for a round: active players whose
// team is qualified for it, priciest first.
func (s *playerService) ListEligible(ctx context.Context, round int) ([]*models.Player, error) {
	if !models.ScoringRound(round) {
		return nil, ErrRoundInvalid
	}
	active := true
	return s.playerRepo.List(ctx, nil, repositories.PlayerFilter{
		Active:            &active,
		QualifiedForRound: &round,
	})
}

// Create adds a player to the pickable catalog.
func (s *playerService) Create(ctx context.Context, input CreatePlayerInput) (*models.Player, error) {
	input.ExternalID = strings.TrimSpace(input.ExternalID)
	input.FullName = strings.TrimSpace(input.FullName)
	input.TeamAbbr = strings.ToUpper(strings.TrimSpace(input.TeamAbbr))

	if input.ExternalID == "" || input.FullName == "" {
		return nil, fmt.Errorf("%w: external id and full name are required", ErrValidationFailed)
	}
	if !input.Position.Valid() {
		return nil, fmt.Errorf("%w: position must be forward, defense or goaltender", ErrValidationFailed)
	}
	if input.Cost < 1 {
		return nil, fmt.Errorf("%w: cost must be at least 1 budget unit", ErrValidationFailed)
	}

	team, err := s.teamRepo.GetByAbbreviation(ctx, nil, input.TeamAbbr)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrTeamNotFound, input.TeamAbbr)
		}
		return nil, err
	}

	player := &models.Player{
		ExternalID: input.ExternalID,
		FullName:   input.FullName,
		TeamAbbr:   team.Abbreviation,
		Position:   input.Position,
		Cost:       input.Cost,
		Active:     true,
	}
	if err := s.playerRepo.Create(ctx, nil, player); err != nil {
		if errors.Is(err, repositories.ErrPlayerExternalIDConflict) {
			return nil, ErrPlayerConflict
		}
		return nil, err
	}
	player.Team = team
	return player, nil
}

// Update applies season maintenance to a player: rename, trade to another
// team, or toggle the active flag. Inactive players stay on saved rosters
// but block submission.
func (s *playerService) Update(ctx context.Context, id int, input UpdatePlayerInput) (*models.Player, error) {
	player, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.FullName != nil {
		name := strings.TrimSpace(*input.FullName)
		if name == "" {
			return nil, fmt.Errorf("%w: full name cannot be empty", ErrValidationFailed)
		}
		player.FullName = name
	}
	if input.TeamAbbr != nil {
		abbr := strings.ToUpper(strings.TrimSpace(*input.TeamAbbr))
		team, err := s.teamRepo.GetByAbbreviation(ctx, nil, abbr)
		if err != nil {
			if errors.Is(err, repositories.ErrTeamNotFound) {
				return nil, fmt.Errorf("%w: %s", ErrTeamNotFound, abbr)
			}
			return nil, err
		}
		player.TeamAbbr = team.Abbreviation
		player.Team = team
	}
	if input.Active != nil {
		player.Active = *input.Active
	}

	if err := s.playerRepo.Update(ctx, nil, player); err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return nil, ErrPlayerNotFound
		}
		return nil, err
	}
	return player, nil
}

// Stats returns the player's per-round snapshot totals shaped by role:
// goals and assists for skaters, wins and shutouts for goaltenders. Rounds
// without a snapshot are absent from the map.
func (s *playerService) Stats(ctx context.Context, playerID int) (*models.PlayerStats, error) {
	player, err := s.Get(ctx, playerID)
	if err != nil {
		return nil, err
	}

	snapshots, err := s.statsRepo.ListByPlayer(ctx, nil, playerID)
	if err != nil {
		return nil, err
	}

	stats := &models.PlayerStats{
		Player: player,
		Rounds: make(map[int]models.PlayerRoundStats, len(snapshots)),
	}
	for _, snapshot := range snapshots {
		rs := models.PlayerRoundStats{GamesPlayed: snapshot.GamesPlayed}
		if player.Position.Skater() {
			goals, assists := snapshot.Goals, snapshot.Assists
			rs.Goals, rs.Assists = &goals, &assists
		} else {
			wins, shutouts := snapshot.Wins, snapshot.Shutouts
			rs.Wins, rs.Shutouts = &wins, &shutouts
		}
		stats.Rounds[snapshot.Round] = rs
	}
	return stats, nil
}
