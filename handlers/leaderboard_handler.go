package handlers

import (
	"net/http"

	"github.com/Dosada05/playoff-pool/services"
)

type LeaderboardHandler struct {
	leaderboardService services.LeaderboardService
	settingsService    services.SettingsService
}

func NewLeaderboardHandler(
	leaderboardService services.LeaderboardService,
	settingsService services.SettingsService,
) *LeaderboardHandler {
	return &LeaderboardHandler{
		leaderboardService: leaderboardService,
		settingsService:    settingsService,
	}
}

// GetLeaderboard returns the ranked standings plus the pool state a client
// needs to frame them: the active round, when the stats were last synced
// and whether an operator has confirmed them.
func (h *LeaderboardHandler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	entries, err := h.leaderboardService.Leaderboard(r.Context())
	if err != nil {
		serverErrorResponse(w, r, err)
		return
	}

	currentRound, err := h.settingsService.CurrentRound(r.Context())
	if err != nil {
		serverErrorResponse(w, r, err)
		return
	}
	lastSync, err := h.settingsService.LastSync(r.Context())
	if err != nil {
		serverErrorResponse(w, r, err)
		return
	}
	statsVerified, err := h.settingsService.StatsVerified(r.Context())
	if err != nil {
		serverErrorResponse(w, r, err)
		return
	}

	response := jsonResponse{
		"leaderboard":    entries,
		"current_round":  currentRound,
		"last_sync":      lastSync,
		"stats_verified": statsVerified,
	}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
