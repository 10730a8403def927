package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/actuallystonmai/mood-recommender/internal/domain"
	"github.com/actuallystonmai/mood-recommender/internal/logging"
)

// GET /api/recommendations/recent
func (h *Handler) GetRecentRecommendations(w http.ResponseWriter, r *http.Request) {
	// Parse and validate limit
	limit := 10
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 1 || parsed > 50 {
			writeError(w, http.StatusBadRequest, "Invalid limit parameter", "limit must be between 1 and 50")
			return
		}
		limit = parsed
	}

	entries, total, err := h.service.ListRecent(r.Context(), limit)
	if err != nil {
		if errors.Is(err, domain.ErrHistoryUnavailable) {
			writeError(w, http.StatusServiceUnavailable, "history_unavailable", err.Error())
			return
		}
		logging.Ctx(r.Context()).Error().Err(err).Msg("listing recent recommendations failed")
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, RecentResponse{
		Recommendations: entries,
		TotalCount:      total,
	})
}
