package handlers

import (
	"net/http"
	"strconv"

	"github.com/Dosada05/playoff-pool/services"
)

type PlayerHandler struct {
	playerService   services.PlayerService
	settingsService services.SettingsService
}

func NewPlayerHandler(
	playerService services.PlayerService,
	settingsService services.SettingsService,
) *PlayerHandler {
	return &PlayerHandler{
		playerService:   playerService,
		settingsService: settingsService,
	}
}

// ListEligible returns the pickable player pool. The round defaults to the
// pool's current round and can be overridden with ?round=N.
func (h *PlayerHandler) ListEligible(w http.ResponseWriter, r *http.Request) {
	round, err := h.settingsService.CurrentRound(r.Context())
	if err != nil {
		serverErrorResponse(w, r, err)
		return
	}
	if raw := r.URL.Query().Get("round"); raw != "" {
		round, err = strconv.Atoi(raw)
		if err != nil {
			badRequestResponse(w, r, err)
			return
		}
	}

	players, err := h.playerService.ListEligible(r.Context(), round)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{
		"players": players,
		"round":   round,
	}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetStats returns one player's per-round totals shaped by role.
func (h *PlayerHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	playerID, err := getIDFromURL(r, "playerID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	stats, err := h.playerService.Stats(r.Context(), playerID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{
		"stats": stats,
	}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Create registers a player in the catalog.
func (h *PlayerHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input services.CreatePlayerInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	player, err := h.playerService.Create(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"player": player}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Update applies season maintenance to a player.
func (h *PlayerHandler) Update(w http.ResponseWriter, r *http.Request) {
	playerID, err := getIDFromURL(r, "playerID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.UpdatePlayerInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	player, err := h.playerService.Update(r.Context(), playerID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"player": player}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListRounds returns all rounds with their lock and end dates.
func (h *PlayerHandler) ListRounds(w http.ResponseWriter, r *http.Request) {
	rounds, err := h.settingsService.Rounds(r.Context())
	if err != nil {
		serverErrorResponse(w, r, err)
		return
	}

	response := jsonResponse{
		"rounds": rounds,
	}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
