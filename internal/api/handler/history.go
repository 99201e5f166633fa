package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/cropcareai/cropcare/internal/api/response"
	"github.com/cropcareai/cropcare/pkg/models"
)

const maxHistoryLimit = 100

// Historian defines the history operations the handlers depend on.
type Historian interface {
	History(ctx context.Context, username string, limit int) ([]*models.DiagnosisRecord, error)
	ClearHistory(ctx context.Context, username string) (int64, error)
	Counts(ctx context.Context) (map[string]int, error)
}

// NewPastResultsHandler returns an http.HandlerFunc for GET /api/past-results.
func NewPastResultsHandler(svc Historian) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		username := r.URL.Query().Get("user")
		if username == "" {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST",
				"user is required", nil)
			return
		}

		limit := 0
		if raw := r.URL.Query().Get("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 0 {
				response.Error(w, http.StatusBadRequest, "INVALID_REQUEST",
					"limit must be a non-negative integer", nil)
				return
			}
			limit = n
		}
		if limit > maxHistoryLimit {
			limit = maxHistoryLimit
		}

		records, err := svc.History(r.Context(), username, limit)
		if err != nil {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"An unexpected error occurred", nil)
			return
		}

		response.JSON(w, records)
	}
}

// NewClearHistoryHandler returns an http.HandlerFunc for DELETE /api/clear-history.
func NewClearHistoryHandler(svc Historian) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		username := r.URL.Query().Get("user")
		if username == "" {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST",
				"user is required", nil)
			return
		}

		deleted, err := svc.ClearHistory(r.Context(), username)
		if err != nil {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"An unexpected error occurred", nil)
			return
		}

		response.JSON(w, map[string]int64{"deleted": deleted})
	}
}

// NewDebugCountsHandler returns an http.HandlerFunc for GET /api/debug-counts.
func NewDebugCountsHandler(svc Historian) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		counts, err := svc.Counts(r.Context())
		if err != nil {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"An unexpected error occurred", nil)
			return
		}

		response.JSON(w, counts)
	}
}
