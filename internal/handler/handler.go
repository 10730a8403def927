package handler

import (
	"context"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/actuallystonmai/mood-recommender/internal/domain"
	"github.com/actuallystonmai/mood-recommender/internal/logging"
)

// Recommender is the orchestrator the handlers drive.
type Recommender interface {
	Recommend(ctx context.Context, req domain.RecommendationRequest) (*domain.RecommendationResponse, error)
	ListRecent(ctx context.Context, limit int) ([]domain.HistoryEntry, int, error)
}

type Handler struct {
	service Recommender
}

func NewHandler(svc Recommender) *Handler {
	return &Handler{service: svc}
}

// write JSON response
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Error().Err(err).Msg("failed to encode response")
	}
}

// writes JSON error response.
func writeError(w http.ResponseWriter, status int, message, details string) {
	writeJSON(w, status, ErrorResponse{
		Error:   message,
		Details: details,
	})
}

// GET /api/health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// GET /api/genres
func (h *Handler) ListGenres(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, GenresResponse{Genres: domain.Genres()})
}
