package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/actuallystonmai/mood-recommender/internal/domain"
	"github.com/actuallystonmai/mood-recommender/internal/logging"
)

const maxBodyBytes = 1 << 20

// POST /api/recommend
func (h *Handler) Recommend(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var req domain.RecommendationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	resp, err := h.service.Recommend(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrMoodRequired):
			writeError(w, http.StatusBadRequest, "Mood is required", "")
		case errors.Is(err, domain.ErrInvalidDate):
			writeError(w, http.StatusBadRequest, "Invalid date range", err.Error())
		case errors.Is(err, domain.ErrMovieNotFound):
			writeError(w, http.StatusNotFound, "Movie not found. Please try again.", "")
		case errors.Is(err, context.DeadlineExceeded):
			logging.Ctx(r.Context()).Warn().Err(err).Msg("recommendation timed out")
			writeError(w, http.StatusGatewayTimeout, "Request timed out. Please try again.", err.Error())
		default:
			logging.Ctx(r.Context()).Error().Err(err).Msg("recommendation failed")
			writeError(w, http.StatusInternalServerError,
				"Failed to generate recommendation. Please try again.", err.Error())
		}
		return
	}

	writeJSON(w, http.StatusOK, resp)
}
