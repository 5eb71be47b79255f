package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Dosada05/playoff-pool/models"
	"github.com/Dosada05/playoff-pool/repositories"
)

// Keys in the pool_settings store.
const (
	settingCurrentRound  = "current_round"
	settingLastSync      = "last_sync"
	settingStatsVerified = "stats_verified"
)

// SettingsService owns the process-wide pool state: the active round, the
// last stats sync time and the operator's "stats verified" confirmation.
// Lock dates are read and written through the rounds table, which stays the
// single source of truth for deadlines.
type SettingsService interface {
	CurrentRound(ctx context.Context) (int, error)
	SetCurrentRound(ctx context.Context, round int) error
	LastSync(ctx context.Context) (*time.Time, error)
	TouchLastSync(ctx context.Context, at time.Time) error
	StatsVerified(ctx context.Context) (bool, error)
	SetStatsVerified(ctx context.Context, verified bool) error
	Rounds(ctx context.Context) ([]*models.Round, error)
	LockDates(ctx context.Context) (map[int]*time.Time, error)
	SetLockDate(ctx context.Context, round int, lockDate time.Time) error
}

type settingsService struct {
	settingsRepo repositories.SettingsRepository
	roundRepo    repositories.RoundRepository
}

func NewSettingsService(
	settingsRepo repositories.SettingsRepository,
	roundRepo repositories.RoundRepository,
) SettingsService {
	return &settingsService{
		settingsRepo: settingsRepo,
		roundRepo:    roundRepo,
	}
}

// CurrentRound defaults to the test round until an operator advances it.
func (s *settingsService) CurrentRound(ctx context.Context) (int, error) {
	var round int
	err := s.settingsRepo.Get(ctx, nil, settingCurrentRound, &round)
	if err != nil {
		if errors.Is(err, repositories.ErrSettingNotFound) {
			return models.TestRound, nil
		}
		return 0, err
	}
	return round, nil
}

func (s *settingsService) SetCurrentRound(ctx context.Context, round int) error {
	if _, err := s.roundRepo.GetByNumber(ctx, nil, round); err != nil {
		if errors.Is(err, repositories.ErrRoundNotFound) {
			return ErrRoundNotFound
		}
		return fmt.Errorf("failed to check round %d: %w", round, err)
	}
	return s.settingsRepo.Set(ctx, nil, settingCurrentRound, round)
}

func (s *settingsService) LastSync(ctx context.Context) (*time.Time, error) {
	var at time.Time
	err := s.settingsRepo.Get(ctx, nil, settingLastSync, &at)
	if err != nil {
		if errors.Is(err, repositories.ErrSettingNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &at, nil
}

func (s *settingsService) TouchLastSync(ctx context.Context, at time.Time) error {
	return s.settingsRepo.Set(ctx, nil, settingLastSync, at)
}

func (s *settingsService) StatsVerified(ctx context.Context) (bool, error) {
	var verified bool
	err := s.settingsRepo.Get(ctx, nil, settingStatsVerified, &verified)
	if err != nil {
		if errors.Is(err, repositories.ErrSettingNotFound) {
			return false, nil
		}
		return false, err
	}
	return verified, nil
}

func (s *settingsService) SetStatsVerified(ctx context.Context, verified bool) error {
	return s.settingsRepo.Set(ctx, nil, settingStatsVerified, verified)
}

func (s *settingsService) Rounds(ctx context.Context) ([]*models.Round, error) {
	return s.roundRepo.List(ctx, nil)
}

func (s *settingsService) LockDates(ctx context.Context) (map[int]*time.Time, error) {
	rounds, err := s.roundRepo.List(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load rounds: %w", err)
	}
	lockDates := make(map[int]*time.Time, len(rounds))
	for _, round := range rounds {
		lockDates[round.Number] = round.LockDate
	}
	return lockDates, nil
}

func (s *settingsService) SetLockDate(ctx context.Context, round int, lockDate time.Time) error {
	err := s.roundRepo.SetLockDate(ctx, nil, round, lockDate)
	if err != nil {
		if errors.Is(err, repositories.ErrRoundNotFound) {
			return ErrRoundNotFound
		}
		return err
	}
	return nil
}
