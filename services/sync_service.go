package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Dosada05/playoff-pool/metrics"
	"github.com/Dosada05/playoff-pool/models"
	"github.com/Dosada05/playoff-pool/repositories"
	"github.com/Dosada05/playoff-pool/scoring"
	"github.com/Dosada05/playoff-pool/statsfeed"
	"github.com/Dosada05/playoff-pool/storage"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Runs kept in the log and in the archive. A season of hourly syncs would
// otherwise accumulate thousands of rows and report objects.
const syncRunRetention = 50

// SyncSummary is what a sync trigger returns. Success means the run itself
// completed; per-player failures do not clear it, they show up in Errors.
type SyncSummary struct {
	Success        bool     `json:"success"`
	PlayersUpdated int      `json:"players_updated"`
	Errors         []string `json:"errors,omitempty"`
}

type SyncService interface {
	RunSync(ctx context.Context) (*SyncSummary, error)
	LatestRun(ctx context.Context) (*models.SyncLog, error)
	ListRuns(ctx context.Context, limit int) ([]*models.SyncLog, error)
}

type syncService struct {
	playerRepo  repositories.PlayerRepository
	statsRepo   repositories.StatsRepository
	teamRepo    repositories.TeamRepository
	syncLogRepo repositories.SyncLogRepository
	settings    SettingsService
	feed        statsfeed.Client
	pacer       *statsfeed.Pacer
	uploader    storage.Uploader
	workers     int
	logger      *slog.Logger

	mu sync.Mutex
}

// NewSyncService wires the stats sync orchestrator. uploader may be nil to
// disable report archiving. workers below 1 falls back to the sequential
// single-worker mode; the shared pacer bounds the total request rate either
// way.
func NewSyncService(
	playerRepo repositories.PlayerRepository,
	statsRepo repositories.StatsRepository,
	teamRepo repositories.TeamRepository,
	syncLogRepo repositories.SyncLogRepository,
	settings SettingsService,
	feed statsfeed.Client,
	pacer *statsfeed.Pacer,
	uploader storage.Uploader,
	workers int,
	logger *slog.Logger,
) SyncService {
	if workers < 1 {
		workers = 1
	}
	return &syncService{
		playerRepo:  playerRepo,
		statsRepo:   statsRepo,
		teamRepo:    teamRepo,
		syncLogRepo: syncLogRepo,
		settings:    settings,
		feed:        feed,
		pacer:       pacer,
		uploader:    uploader,
		workers:     workers,
		logger:      logger,
	}
}

// RunSync pulls every active player's game log from the feed, recomputes
// and overwrites their per-round snapshots, applies bracket eliminations
// and records the run. Only one run may be in flight per process; the
// scheduler and the admin trigger share the same lock. Per-player failures
// are collected, never fatal. Only a failure before the per-player loop
// (opening the log, listing players) fails the run.
func (s *syncService) RunSync(ctx context.Context) (*SyncSummary, error) {
	if !s.mu.TryLock() {
		return nil, ErrSyncAlreadyRunning
	}
	defer s.mu.Unlock()

	runID := uuid.NewString()
	logger := s.logger.With(slog.String("run_id", runID))
	started := time.Now()

	runLog := &models.SyncLog{StartedAt: started}
	if err := s.syncLogRepo.Create(ctx, nil, runLog); err != nil {
		metrics.SyncRunsTotal.WithLabelValues(string(models.SyncStatusFailed)).Inc()
		return nil, fmt.Errorf("failed to open sync log: %w", err)
	}

	players, err := s.playerRepo.ListActive(ctx, nil)
	if err != nil {
		err = fmt.Errorf("failed to list active players: %w", err)
		s.finishRun(ctx, logger, runLog, models.SyncStatusFailed, 0, []string{err.Error()}, nil)
		return nil, err
	}

	logger.Info("stats sync started",
		slog.Int("players", len(players)),
		slog.Int("workers", s.workers),
	)

	var (
		resultMu  sync.Mutex
		updated   int
		errorList []string
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for _, player := range players {
		player := player
		g.Go(func() error {
			wrote, syncErr := s.syncPlayer(gCtx, logger, player)
			resultMu.Lock()
			defer resultMu.Unlock()
			if syncErr != nil {
				errorList = append(errorList, fmt.Sprintf("player %d (%s): %v", player.ID, player.FullName, syncErr))
				metrics.SyncPlayerErrorsTotal.Inc()
				logger.Warn("player sync failed",
					slog.Int("player_id", player.ID),
					slog.Any("error", syncErr),
				)
				return nil
			}
			if wrote {
				updated++
			}
			return nil
		})
	}
	g.Wait()

	s.applyBracket(ctx, logger)

	if err := s.settings.TouchLastSync(ctx, time.Now()); err != nil {
		logger.Error("failed to record last sync time", slog.Any("error", err))
	}

	reportKey := s.archiveReport(ctx, logger, runID, &SyncSummary{
		Success:        true,
		PlayersUpdated: updated,
		Errors:         errorList,
	})
	s.finishRun(ctx, logger, runLog, models.SyncStatusCompleted, updated, errorList, reportKey)
	s.pruneOldRuns(ctx, logger)

	metrics.SyncPlayersUpdatedTotal.Add(float64(updated))
	metrics.SyncDuration.Observe(time.Since(started).Seconds())

	logger.Info("stats sync finished",
		slog.Int("players_updated", updated),
		slog.Int("errors", len(errorList)),
		slog.Duration("took", time.Since(started)),
	)

	return &SyncSummary{
		Success:        true,
		PlayersUpdated: updated,
		Errors:         errorList,
	}, nil
}

// syncPlayer fetches one player's log and, when games exist, overwrites all
// three round snapshots with freshly recomputed totals. The write is a full
// replace per (player, round), so retries and re-runs cannot double count.
func (s *syncService) syncPlayer(ctx context.Context, logger *slog.Logger, player *models.Player) (bool, error) {
	if err := s.pacer.Wait(ctx); err != nil {
		return false, err
	}

	games, err := s.feed.GameLog(ctx, player.ExternalID)
	if err != nil {
		return false, fmt.Errorf("fetch game log: %w", err)
	}
	if len(games) == 0 {
		return false, nil
	}

	agg := scoring.Aggregate(player.Position, games)
	if len(agg.UnknownGameIDs) > 0 {
		metrics.RoundFallbacksTotal.Add(float64(len(agg.UnknownGameIDs)))
		logger.Warn("unrecognized game identifiers counted in default round",
			slog.Int("player_id", player.ID),
			slog.Any("game_ids", agg.UnknownGameIDs),
		)
	}

	for round := models.FirstRound; round <= models.LastRound; round++ {
		totals := agg.Rounds[round]
		snapshot := &models.StatSnapshot{
			PlayerID:    player.ID,
			Round:       round,
			Goals:       totals.Goals,
			Assists:     totals.Assists,
			Wins:        totals.Wins,
			Shutouts:    totals.Shutouts,
			GamesPlayed: totals.GamesPlayed,
		}
		if err := s.statsRepo.Upsert(ctx, nil, snapshot); err != nil {
			return false, fmt.Errorf("upsert snapshot for round %d: %w", round, err)
		}
	}
	return true, nil
}

// applyBracket marks series losers eliminated. Failures here never fail the
// run: eliminations catch up on the next sync.
func (s *syncService) applyBracket(ctx context.Context, logger *slog.Logger) {
	series, err := s.feed.PlayoffBracket(ctx)
	if err != nil {
		logger.Warn("bracket fetch failed, eliminations not updated", slog.Any("error", err))
		return
	}

	for _, result := range series {
		if !result.Completed() {
			continue
		}
		if err := s.teamRepo.MarkEliminated(ctx, nil, result.Loser, result.Round); err != nil {
			logger.Warn("failed to mark team eliminated",
				slog.String("team", result.Loser),
				slog.Int("round", result.Round),
				slog.Any("error", err),
			)
		}
	}
}

// archiveReport uploads the run summary as JSON and returns the object key,
// or nil when archiving is disabled or failed.
func (s *syncService) archiveReport(ctx context.Context, logger *slog.Logger, runID string, summary *SyncSummary) *string {
	if s.uploader == nil {
		return nil
	}

	payload, err := json.Marshal(summary)
	if err != nil {
		logger.Error("failed to marshal sync report", slog.Any("error", err))
		return nil
	}

	key := fmt.Sprintf("sync-reports/%s.json", runID)
	if _, err := s.uploader.Upload(ctx, key, "application/json", bytes.NewReader(payload)); err != nil {
		logger.Warn("failed to archive sync report", slog.String("key", key), slog.Any("error", err))
		return nil
	}
	return &key
}

// pruneOldRuns drops run rows beyond the retention window and the archived
// reports that belonged to them. Failures are logged and swallowed; the run
// that just finished is already recorded.
func (s *syncService) pruneOldRuns(ctx context.Context, logger *slog.Logger) {
	staleKeys, err := s.syncLogRepo.Prune(ctx, nil, syncRunRetention)
	if err != nil {
		logger.Error("failed to prune sync logs", slog.Any("error", err))
		return
	}
	if s.uploader == nil {
		return
	}
	for _, key := range staleKeys {
		if err := s.uploader.Delete(ctx, key); err != nil {
			logger.Warn("failed to delete archived sync report", slog.String("key", key), slog.Any("error", err))
		}
	}
}

func (s *syncService) finishRun(ctx context.Context, logger *slog.Logger, runLog *models.SyncLog, status models.SyncStatus, updated int, errorList []string, reportKey *string) {
	runLog.Status = status
	runLog.PlayersUpdated = updated
	runLog.Errors = errorList
	runLog.ReportKey = reportKey
	if err := s.syncLogRepo.Finish(ctx, nil, runLog); err != nil {
		logger.Error("failed to close sync log", slog.Int("log_id", runLog.ID), slog.Any("error", err))
	}
	metrics.SyncRunsTotal.WithLabelValues(string(status)).Inc()
}

func (s *syncService) LatestRun(ctx context.Context) (*models.SyncLog, error) {
	runLog, err := s.syncLogRepo.GetLatest(ctx, nil)
	if err != nil {
		if errors.Is(err, repositories.ErrSyncLogNotFound) {
			return nil, ErrSyncLogNotFound
		}
		return nil, err
	}
	s.populateReportURL(runLog)
	return runLog, nil
}

func (s *syncService) ListRuns(ctx context.Context, limit int) ([]*models.SyncLog, error) {
	logs, err := s.syncLogRepo.List(ctx, nil, limit)
	if err != nil {
		return nil, err
	}
	for _, runLog := range logs {
		s.populateReportURL(runLog)
	}
	return logs, nil
}

func (s *syncService) populateReportURL(runLog *models.SyncLog) {
	if s.uploader == nil || runLog.ReportKey == nil {
		return
	}
	if url := s.uploader.GetPublicURL(*runLog.ReportKey); url != "" {
		runLog.ReportURL = &url
	}
}
