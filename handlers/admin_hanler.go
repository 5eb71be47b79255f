package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/Dosada05/playoff-pool/services"
)

type AdminHandler struct {
	adminService    services.AdminService
	settingsService services.SettingsService
}

func NewAdminHandler(
	adminService services.AdminService,
	settingsService services.SettingsService,
) *AdminHandler {
	return &AdminHandler{
		adminService:    adminService,
		settingsService: settingsService,
	}
}

// SetLockDate sets the pick deadline for the round in the URL.
func (h *AdminHandler) SetLockDate(w http.ResponseWriter, r *http.Request) {
	round, err := getRoundFromURL(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		LockDate time.Time `json:"lock_date"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.LockDate.IsZero() {
		badRequestResponse(w, r, errors.New("lock_date is required"))
		return
	}

	if err := h.settingsService.SetLockDate(r.Context(), round, input.LockDate); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{
		"round":     round,
		"lock_date": input.LockDate,
	}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// SetCurrentRound advances (or rewinds) the pool's active round.
func (h *AdminHandler) SetCurrentRound(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Round int `json:"round"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.settingsService.SetCurrentRound(r.Context(), input.Round); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{
		"current_round": input.Round,
	}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ReplaceQualifiedTeams overwrites the round's qualified-team list.
func (h *AdminHandler) ReplaceQualifiedTeams(w http.ResponseWriter, r *http.Request) {
	round, err := getRoundFromURL(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		Teams []string `json:"teams"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.adminService.ReplaceQualifiedTeams(r.Context(), round, input.Teams); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{
		"round": round,
		"teams": input.Teams,
	}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ConfirmStats records the operator's judgement that the synced numbers
// look right (or withdraws it). Syncs never touch this flag.
func (h *AdminHandler) ConfirmStats(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Verified bool `json:"verified"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.settingsService.SetStatsVerified(r.Context(), input.Verified); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{
		"stats_verified": input.Verified,
	}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// VerifyUser grants or revokes a user's paid/verified status.
func (h *AdminHandler) VerifyUser(w http.ResponseWriter, r *http.Request) {
	userID, err := getIDFromURL(r, "userID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		Verified bool `json:"verified"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.adminService.VerifyUser(r.Context(), userID, input.Verified); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{
		"user_id":  userID,
		"verified": input.Verified,
	}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
