package handler

import "github.com/actuallystonmai/mood-recommender/internal/domain"

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

type HealthResponse struct {
	Status string `json:"status"`
}

type GenresResponse struct {
	Genres []domain.Genre `json:"genres"`
}

type RecentResponse struct {
	Recommendations []domain.HistoryEntry `json:"recommendations"`
	TotalCount      int                   `json:"total_count"`
}
