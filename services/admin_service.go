package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Dosada05/playoff-pool/repositories"
)

// qualifiedTeamCounts is how many teams must be marked qualified per round:
// the whole league for the test round, then 16, 8 and 4 as the bracket
// narrows. The last scoring round covers the conference finals and the cup
// final together.
var qualifiedTeamCounts = map[int]int{
	0: 32,
	1: 16,
	2: 8,
	3: 4,
}

type AdminService interface {
	ReplaceQualifiedTeams(ctx context.Context, round int, teamAbbrs []string) error
	VerifyUser(ctx context.Context, userID int, verified bool) error
}

type adminService struct {
	qualRepo repositories.QualificationRepository
	userRepo repositories.UserRepository
}

func NewAdminService(
	qualRepo repositories.QualificationRepository,
	userRepo repositories.UserRepository,
) AdminService {
	return &adminService{
		qualRepo: qualRepo,
		userRepo: userRepo,
	}
}

// ReplaceQualifiedTeams overwrites the qualified-team list for a round.
// The count must match the bracket size for that round exactly; duplicates
// are rejected before they can collapse the list below size.
func (s *adminService) ReplaceQualifiedTeams(ctx context.Context, round int, teamAbbrs []string) error {
	want, ok := qualifiedTeamCounts[round]
	if !ok {
		return ErrRoundInvalid
	}
	if len(teamAbbrs) != want {
		return fmt.Errorf("%w: round %d needs %d teams, got %d", ErrQualificationCount, round, want, len(teamAbbrs))
	}
	normalized := make([]string, len(teamAbbrs))
	seen := make(map[string]bool, len(teamAbbrs))
	for i, abbr := range teamAbbrs {
		abbr = strings.ToUpper(strings.TrimSpace(abbr))
		if seen[abbr] {
			return fmt.Errorf("%w: %s listed more than once", ErrValidationFailed, abbr)
		}
		seen[abbr] = true
		normalized[i] = abbr
	}

	if err := s.qualRepo.ReplaceForRound(ctx, nil, round, normalized); err != nil {
		switch {
		case errors.Is(err, repositories.ErrQualificationRoundInvalid):
			return ErrRoundNotFound
		case errors.Is(err, repositories.ErrQualificationTeamInvalid):
			return fmt.Errorf("%w: unknown team in list", ErrTeamNotFound)
		}
		return err
	}
	return nil
}

func (s *adminService) VerifyUser(ctx context.Context, userID int, verified bool) error {
	if err := s.userRepo.SetVerified(ctx, userID, verified); err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	return nil
}
