package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/Dosada05/playoff-pool/services"
)

type SyncHandler struct {
	syncService services.SyncService
}

func NewSyncHandler(syncService services.SyncService) *SyncHandler {
	return &SyncHandler{
		syncService: syncService,
	}
}

// TriggerSync runs a stats sync right now and blocks until it finishes.
// A 503 means another run (scheduled or manual) already holds the lock.
func (h *SyncHandler) TriggerSync(w http.ResponseWriter, r *http.Request) {
	summary, err := h.syncService.RunSync(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{
		"sync": summary,
	}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetLatestRun returns the most recent sync run record.
func (h *SyncHandler) GetLatestRun(w http.ResponseWriter, r *http.Request) {
	runLog, err := h.syncService.LatestRun(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{
		"run": runLog,
	}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListRuns returns recent sync run records, newest first. ?limit=N caps the
// page size.
func (h *SyncHandler) ListRuns(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			badRequestResponse(w, r, fmt.Errorf("invalid limit %q", raw))
			return
		}
		limit = parsed
	}

	runs, err := h.syncService.ListRuns(r.Context(), limit)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{
		"runs": runs,
	}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
