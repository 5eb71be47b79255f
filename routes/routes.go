package routes

import (
	"net/http"

	"github.com/Dosada05/playoff-pool/handlers"
	"github.com/Dosada05/playoff-pool/middleware"
	"github.com/Dosada05/playoff-pool/models"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware" // Alias to avoid conflict
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Config struct {
	JWTSecret      string
	AllowedOrigins []string
}

func SetupRoutes(
	router *chi.Mux,
	cfg Config,
	authHandler *handlers.AuthHandler,
	playerHandler *handlers.PlayerHandler,
	teamHandler *handlers.TeamHandler,
	rosterHandler *handlers.RosterHandler,
	leaderboardHandler *handlers.LeaderboardHandler,
	syncHandler *handlers.SyncHandler,
	adminHandler *handlers.AdminHandler,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	authenticate := middleware.Authenticator(cfg.JWTSecret)
	adminOnly := middleware.Authorize(models.RoleAdmin)

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	router.Handle("/metrics", promhttp.Handler())

	router.Post("/auth/register", authHandler.Register)
	router.Post("/auth/login", authHandler.Login)

	router.Get("/leaderboard", leaderboardHandler.GetLeaderboard)
	router.Get("/rounds", playerHandler.ListRounds)
	router.Get("/teams", teamHandler.List)
	router.Route("/players", func(r chi.Router) {
		r.Get("/", playerHandler.ListEligible)
		r.Get("/{playerID}/stats", playerHandler.GetStats)
	})

	router.Group(func(r chi.Router) {
		r.Use(authenticate)

		r.Get("/me", authHandler.Me)

		r.Route("/rosters/{round}", func(r chi.Router) {
			r.Get("/", rosterHandler.GetRoster)
			r.Put("/", rosterHandler.SaveRoster)
			r.Post("/submit", rosterHandler.SubmitRoster)
		})
	})

	router.Route("/admin", func(r chi.Router) {
		r.Use(authenticate)
		r.Use(adminOnly)

		r.Post("/sync", syncHandler.TriggerSync)
		r.Get("/sync/latest", syncHandler.GetLatestRun)
		r.Get("/sync/runs", syncHandler.ListRuns)

		r.Post("/teams", teamHandler.Create)
		r.Post("/players", playerHandler.Create)
		r.Put("/players/{playerID}", playerHandler.Update)

		r.Put("/rounds/{round}/lock-date", adminHandler.SetLockDate)
		r.Put("/rounds/{round}/qualified-teams", adminHandler.ReplaceQualifiedTeams)
		r.Put("/settings/current-round", adminHandler.SetCurrentRound)
		r.Post("/stats/confirm", adminHandler.ConfirmStats)
		r.Post("/users/{userID}/verify", adminHandler.VerifyUser)
	})
}
