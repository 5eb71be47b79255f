package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Dosada05/playoff-pool/config"
	"github.com/Dosada05/playoff-pool/db"
	"github.com/Dosada05/playoff-pool/handlers"
	"github.com/Dosada05/playoff-pool/models"
	"github.com/Dosada05/playoff-pool/repositories"
	api "github.com/Dosada05/playoff-pool/routes"
	"github.com/Dosada05/playoff-pool/services"
	"github.com/Dosada05/playoff-pool/statsfeed"
	"github.com/Dosada05/playoff-pool/storage"
	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded",
		slog.Int("port", cfg.ServerPort),
		slog.String("season", cfg.StatsSeason),
		slog.Duration("sync_interval", cfg.SyncInterval),
	)

	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		} else {
			logger.Info("database connection closed")
		}
	}()
	logger.Info("database connection established")

	// Report archiving is optional. uploader stays nil without R2 creds.
	var uploader storage.Uploader
	if cfg.ArchiveEnabled() {
		uploader, err = storage.NewCloudflareR2Uploader(storage.CloudflareR2UploaderConfig{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
			PublicBaseURL:   cfg.R2PublicBaseURL,
		})
		if err != nil {
			logger.Error("failed to initialize Cloudflare R2 uploader", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("Cloudflare R2 uploader initialized")
	} else {
		logger.Info("sync report archiving disabled, no R2 credentials")
	}

	userRepo := repositories.NewPostgresUserRepository(dbConn)
	teamRepo := repositories.NewPostgresTeamRepository(dbConn)
	playerRepo := repositories.NewPostgresPlayerRepository(dbConn)
	roundRepo := repositories.NewPostgresRoundRepository(dbConn)
	qualRepo := repositories.NewPostgresQualificationRepository(dbConn)
	statsRepo := repositories.NewPostgresStatsRepository(dbConn)
	rosterRepo := repositories.NewPostgresRosterRepository(dbConn)
	tiebreakerRepo := repositories.NewPostgresTiebreakerRepository(dbConn)
	syncLogRepo := repositories.NewPostgresSyncLogRepository(dbConn)
	settingsRepo := repositories.NewPostgresSettingsRepository(dbConn)
	logger.Info("repositories initialized")

	if err := seedRounds(context.Background(), roundRepo); err != nil {
		logger.Error("failed to seed rounds", slog.Any("error", err))
		os.Exit(1)
	}

	feed := statsfeed.NewHTTPClient(cfg.StatsAPIBaseURL, cfg.StatsSeason, cfg.StatsGameType, logger)
	pacer := statsfeed.NewPacer(cfg.SyncRequestInterval)

	authService := services.NewAuthService(userRepo)
	settingsService := services.NewSettingsService(settingsRepo, roundRepo)
	teamService := services.NewTeamService(teamRepo)
	playerService := services.NewPlayerService(playerRepo, statsRepo, teamRepo)
	rosterService := services.NewRosterService(dbConn, rosterRepo, playerRepo, roundRepo, qualRepo, tiebreakerRepo, logger)
	leaderboardService := services.NewLeaderboardService(userRepo, rosterRepo)
	adminService := services.NewAdminService(qualRepo, userRepo)
	syncService := services.NewSyncService(
		playerRepo,
		statsRepo,
		teamRepo,
		syncLogRepo,
		settingsService,
		feed,
		pacer,
		uploader,
		cfg.SyncWorkers,
		logger,
	)
	logger.Info("services initialized")

	// Scheduled stats syncs. The run lock inside the sync service keeps a
	// scheduled run and an admin-triggered run from overlapping.
	go func() {
		ticker := time.NewTicker(cfg.SyncInterval)
		defer ticker.Stop()
		logger.Info("stats sync scheduler started", slog.Duration("interval", cfg.SyncInterval))

		runScheduledSync(logger, syncService)
		for range ticker.C {
			runScheduledSync(logger, syncService)
		}
	}()

	authHandler := handlers.NewAuthHandler(authService, cfg.JWTSecretKey)
	playerHandler := handlers.NewPlayerHandler(playerService, settingsService)
	teamHandler := handlers.NewTeamHandler(teamService)
	rosterHandler := handlers.NewRosterHandler(rosterService)
	leaderboardHandler := handlers.NewLeaderboardHandler(leaderboardService, settingsService)
	syncHandler := handlers.NewSyncHandler(syncService)
	adminHandler := handlers.NewAdminHandler(adminService, settingsService)
	logger.Info("HTTP handlers initialized")

	router := chi.NewRouter()
	api.SetupRoutes(
		router,
		api.Config{
			JWTSecret:      cfg.JWTSecretKey,
			AllowedOrigins: cfg.CORSAllowedOrigins,
		},
		authHandler,
		playerHandler,
		teamHandler,
		rosterHandler,
		leaderboardHandler,
		syncHandler,
		adminHandler,
	)
	logger.Info("routes configured")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		} else {
			logger.Info("server stopped gracefully")
		}
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		logger.Info("shutting down server", slog.Duration("timeout", 15*time.Second))
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		} else {
			logger.Info("server shutdown complete")
		}
	}
	logger.Info("application exited")
}

// seedRounds makes sure the four fixed round rows exist. Names refresh on
// every boot; lock and end dates are left to the admin endpoints.
func seedRounds(ctx context.Context, roundRepo repositories.RoundRepository) error {
	rounds := []*models.Round{
		{Number: models.TestRound, Name: "Test Round"},
		{Number: 1, Name: "First Round"},
		{Number: 2, Name: "Second Round"},
		{Number: 3, Name: "Conference Finals and Final"},
	}
	for _, round := range rounds {
		if err := roundRepo.Upsert(ctx, nil, round); err != nil {
			return err
		}
	}
	return nil
}

func runScheduledSync(logger *slog.Logger, syncService services.SyncService) {
	summary, err := syncService.RunSync(context.Background())
	if err != nil {
		if errors.Is(err, services.ErrSyncAlreadyRunning) {
			logger.Info("scheduler: sync already in progress, skipping")
			return
		}
		logger.Error("scheduler: sync run failed", slog.Any("error", err))
		return
	}
	logger.Info("scheduler: sync run finished",
		slog.Int("players_updated", summary.PlayersUpdated),
		slog.Int("errors", len(summary.Errors)),
	)
}
