package handlers

import (
	"net/http"

	"github.com/Dosada05/playoff-pool/middleware"
	"github.com/Dosada05/playoff-pool/services"
)

type RosterHandler struct {
	rosterService services.RosterService
}

func NewRosterHandler(rosterService services.RosterService) *RosterHandler {
	return &RosterHandler{
		rosterService: rosterService,
	}
}

// GetRoster returns the caller's roster for the round in the URL.
func (h *RosterHandler) GetRoster(w http.ResponseWriter, r *http.Request) {
	round, err := getRoundFromURL(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	roster, err := h.rosterService.GetRoster(r.Context(), userID, round)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{
		"roster": roster,
	}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// SaveRoster replaces the caller's picks for the round. Allowed any number
// of times until the deadline passes or the roster is submitted.
func (h *RosterHandler) SaveRoster(w http.ResponseWriter, r *http.Request) {
	round, err := getRoundFromURL(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	var input services.SaveRosterInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	roster, err := h.rosterService.SaveRoster(r.Context(), userID, round, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{
		"roster": roster,
	}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// SubmitRoster finalizes the caller's roster for the round.
func (h *RosterHandler) SubmitRoster(w http.ResponseWriter, r *http.Request) {
	round, err := getRoundFromURL(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	roster, err := h.rosterService.SubmitRoster(r.Context(), userID, round)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{
		"roster": roster,
	}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
