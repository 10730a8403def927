package domain

import "time"

type MediaType string

const (
	MediaMovie MediaType = "movie"
	MediaTV    MediaType = "tv"
)

// SearchResult is one TMDB multi-search hit.
type SearchResult struct {
	ID        int64     `json:"id"`
	MediaType MediaType `json:"media_type"`
	Title     string    `json:"title"`
}

// SearchFilters narrows a title search. Zero values mean "no filter".
type SearchFilters struct {
	GenreID  int
	FromDate string
	ToDate   string
}

type MovieDetails struct {
	Title       string  `json:"title"`
	ReleaseDate string  `json:"release_date"`
	Rating      float64 `json:"rating"`
	Overview    string  `json:"overview"`
	IMDbID      string  `json:"imdb_id,omitempty"`
	PosterPath  string  `json:"poster_path,omitempty"`
}

// Review as returned by the movie database, before trimming for the response.
type Review struct {
	Author  string   `json:"author"`
	Content string   `json:"content"`
	Rating  *float64 `json:"rating"`
	URL     string   `json:"url,omitempty"`
}

type TrailerInfo struct {
	SearchURL string
	EmbedURL  string
	VideoID   string
}

type RecommendationResponse struct {
	Title           string   `json:"title"`
	ReleaseDate     string   `json:"releaseDate"`
	Rating          float64  `json:"rating"`
	Summary         string   `json:"summary"`
	WhyThisMovie    string   `json:"whyThisMovie"`
	Reviews         []Review `json:"reviews"`
	TrailerURL      string   `json:"trailerUrl"`
	TrailerEmbedURL *string  `json:"trailerEmbedUrl"`
	IMDbID          string   `json:"imdbId,omitempty"`
	PosterURL       *string  `json:"posterUrl"`
}

// HistoryEntry records one served recommendation.
type HistoryEntry struct {
	ID        string    `json:"id"`
	Mood      string    `json:"mood"`
	Genre     string    `json:"genre,omitempty"`
	Title     string    `json:"title"`
	TMDBID    int64     `json:"tmdbId"`
	MediaType MediaType `json:"mediaType"`
	CreatedAt time.Time `json:"createdAt"`
}
