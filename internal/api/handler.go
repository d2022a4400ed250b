// Package api exposes the read-only HTTP query surface over the trial
// store. It only ever reads committed state; a sync running concurrently
// is never observable mid-page.
package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/mesh-intelligence/trialmirror/pkg/types"
)

// defaultRunsLimit caps the runs listing when no limit parameter is given.
const defaultRunsLimit = 20

// Reader is the slice of the store the API needs.
type Reader interface {
	GetSince(date string) ([]types.Trial, error)
	RecentRuns(limit int) ([]types.SyncRun, error)
}

// Handler provides HTTP access to the mirrored trials.
type Handler struct {
	Store Reader
}

// NewHandler constructs a read API handler over the given store.
func NewHandler(store Reader) *Handler {
	return &Handler{Store: store}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.Store == nil {
		writeError(w, http.StatusInternalServerError, "trial store not configured")
		return
	}

	path := strings.TrimSuffix(r.URL.Path, "/")
	switch {
	case r.Method == http.MethodGet && path == "/health":
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	case r.Method == http.MethodGet && path == "/api/v1/trials":
		h.handleTrials(w, r)
	case r.Method == http.MethodGet && path == "/api/v1/runs":
		h.handleRuns(w, r)
	case path == "/health" || path == "/api/v1/trials" || path == "/api/v1/runs":
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	default:
		http.NotFound(w, r)
	}
}

// handleTrials returns every trial updated on or after the caller's ISO
// date string.
func (h *Handler) handleTrials(w http.ResponseWriter, r *http.Request) {
	since := r.URL.Query().Get("since")
	if since == "" {
		writeError(w, http.StatusBadRequest, "missing required query parameter: since")
		return
	}

	trials, err := h.Store.GetSince(since)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "querying trials failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"count":  len(trials),
		"trials": trials,
	})
}

// handleRuns returns recent sync runs, newest first.
func (h *Handler) handleRuns(w http.ResponseWriter, r *http.Request) {
	limit := defaultRunsLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	runs, err := h.Store.RecentRuns(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "querying sync runs failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"count": len(runs),
		"runs":  runs,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
