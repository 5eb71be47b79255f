package services

import (
	"context"
	"sort"

	"github.com/Dosada05/playoff-pool/models"
	"github.com/Dosada05/playoff-pool/repositories"
	"github.com/Dosada05/playoff-pool/scoring"
)

type LeaderboardService interface {
	Leaderboard(ctx context.Context) ([]*models.LeaderboardEntry, error)
}

type leaderboardService struct {
	userRepo   repositories.UserRepository
	rosterRepo repositories.RosterRepository
}

func NewLeaderboardService(
	userRepo repositories.UserRepository,
	rosterRepo repositories.RosterRepository,
) LeaderboardService {
	return &leaderboardService{
		userRepo:   userRepo,
		rosterRepo: rosterRepo,
	}
}

// Leaderboard scores every selection of every submitted roster and returns
// one entry per verified user, highest total first. Users who submitted
// nothing appear with zero points. Reads are untransacted; a sync running
// at the same time can at worst make a row one refresh stale.
func (s *leaderboardService) Leaderboard(ctx context.Context) ([]*models.LeaderboardEntry, error) {
	users, err := s.userRepo.ListVerified(ctx)
	if err != nil {
		return nil, err
	}

	entries := make(map[int]*models.LeaderboardEntry, len(users))
	for _, user := range users {
		entry := &models.LeaderboardEntry{
			UserID:      user.ID,
			FirstName:   user.FirstName,
			LastName:    user.LastName,
			RoundPoints: make(map[int]int, models.LastRound),
		}
		for round := models.FirstRound; round <= models.LastRound; round++ {
			entry.RoundPoints[round] = 0
		}
		entries[user.ID] = entry
	}

	selections, err := s.rosterRepo.ListScoringSelections(ctx, nil)
	if err != nil {
		return nil, err
	}
	for _, sel := range selections {
		entry, ok := entries[sel.UserID]
		if !ok {
			// Roster owner is not verified, their points are not ranked.
			continue
		}
		points := scoring.SelectionPoints(sel.Position, sel.Snapshot, sel.Star)
		entry.RoundPoints[sel.Round] += points
		entry.TotalPoints += points
	}

	ranked := make([]*models.LeaderboardEntry, 0, len(entries))
	for _, entry := range entries {
		ranked = append(ranked, entry)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].TotalPoints != ranked[j].TotalPoints {
			return ranked[i].TotalPoints > ranked[j].TotalPoints
		}
		if ranked[i].LastName != ranked[j].LastName {
			return ranked[i].LastName < ranked[j].LastName
		}
		if ranked[i].FirstName != ranked[j].FirstName {
			return ranked[i].FirstName < ranked[j].FirstName
		}
		return ranked[i].UserID < ranked[j].UserID
	})
	return ranked, nil
}
