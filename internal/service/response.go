package service

import (
	"github.com/actuallystonmai/mood-recommender/internal/domain"
	"github.com/actuallystonmai/mood-recommender/internal/trailer"
)

func buildResponse(
	title string,
	details *domain.MovieDetails,
	reviews []domain.Review,
	trailerInfo domain.TrailerInfo,
	explanation string,
	imageBaseURL string,
) *domain.RecommendationResponse {
	if details == nil {
		details = &domain.MovieDetails{}
	}

	resp := &domain.RecommendationResponse{
		Title:        title,
		ReleaseDate:  details.ReleaseDate,
		Rating:       details.Rating,
		Summary:      details.Overview,
		WhyThisMovie: explanation,
		Reviews:      formatReviews(reviews),
		TrailerURL:   trailerInfo.SearchURL,
		IMDbID:       details.IMDbID,
	}

	if details.Title != "" {
		resp.Title = details.Title
	}
	if resp.TrailerURL == "" {
		resp.TrailerURL = trailer.SearchURL(title)
	}
	if trailerInfo.EmbedURL != "" {
		embed := trailerInfo.EmbedURL
		resp.TrailerEmbedURL = &embed
	}
	if details.PosterPath != "" {
		poster := imageBaseURL + details.PosterPath
		resp.PosterURL = &poster
	}

	return resp
}

// formatReviews keeps the first three reviews with truncated content.
func formatReviews(reviews []domain.Review) []domain.Review {
	n := min(len(reviews), maxReviews)
	out := make([]domain.Review, 0, n)
	for _, r := range reviews[:n] {
		out = append(out, domain.Review{
			Author:  r.Author,
			Content: truncate(r.Content, reviewContentLimit),
			Rating:  r.Rating,
			URL:     r.URL,
		})
	}
	return out
}

// truncate keeps at most limit characters of s and always ends in "...",
// so every review reads as an excerpt of the full text behind its link.
func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) > limit {
		runes = runes[:limit]
	}
	return string(runes) + "..."
}
