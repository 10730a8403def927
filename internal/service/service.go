package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/actuallystonmai/mood-recommender/internal/domain"
	"github.com/actuallystonmai/mood-recommender/internal/logging"
	"github.com/actuallystonmai/mood-recommender/internal/metrics"
)

const (
	maxReviews         = 3
	reviewContentLimit = 200
	defaultRecentLimit = 10
	maxRecentLimit     = 50
)

// TitleModel is the language model collaborator.
type TitleModel interface {
	SuggestTitle(ctx context.Context, mood, genre string) (string, error)
	Explain(ctx context.Context, title, mood string) (string, error)
}

// MovieDatabase is the TMDB collaborator.
type MovieDatabase interface {
	SearchMulti(ctx context.Context, query string, filters domain.SearchFilters) ([]domain.SearchResult, error)
	GetDetails(ctx context.Context, mediaType domain.MediaType, id int64) (*domain.MovieDetails, error)
	GetReviews(ctx context.Context, mediaType domain.MediaType, id int64) ([]domain.Review, error)
}

type TrailerLookup interface {
	Lookup(ctx context.Context, title string) (domain.TrailerInfo, error)
}

// LookupCache caches movie database lookups. Optional.
type LookupCache interface {
	GetDetails(ctx context.Context, mediaType domain.MediaType, id int64) (*domain.MovieDetails, bool, error)
	SetDetails(ctx context.Context, mediaType domain.MediaType, id int64, details *domain.MovieDetails) error
	GetReviews(ctx context.Context, mediaType domain.MediaType, id int64) ([]domain.Review, bool, error)
	SetReviews(ctx context.Context, mediaType domain.MediaType, id int64, reviews []domain.Review) error
}

// HistoryStore records served recommendations. Optional.
type HistoryStore interface {
	AddRecommendation(ctx context.Context, entry domain.HistoryEntry) error
	ListRecentRecommendations(ctx context.Context, limit int) ([]domain.HistoryEntry, error)
	CountRecommendations(ctx context.Context) (int, error)
}

type Service struct {
	model        TitleModel
	movies       MovieDatabase
	trailers     TrailerLookup
	imageBaseURL string

	cache   LookupCache
	history HistoryStore
	now     func() time.Time
}

func NewService(model TitleModel, movies MovieDatabase, trailers TrailerLookup, imageBaseURL string) *Service {
	return &Service{
		model:        model,
		movies:       movies,
		trailers:     trailers,
		imageBaseURL: imageBaseURL,
		now:          time.Now,
	}
}

func (s *Service) WithCache(c LookupCache) *Service {
	s.cache = c
	return s
}

func (s *Service) WithHistory(h HistoryStore) *Service {
	s.history = h
	return s
}

// Recommend runs the full pipeline: title, search, details and reviews,
// trailer, explanation. Title generation, search and explanation failures
// abort the request; details, reviews and trailer lookups degrade.
func (s *Service) Recommend(ctx context.Context, req domain.RecommendationRequest) (*domain.RecommendationResponse, error) {
	resp, err := s.recommend(ctx, req)
	metrics.RecordRecommendation(outcome(err))
	return resp, err
}

func (s *Service) recommend(ctx context.Context, req domain.RecommendationRequest) (*domain.RecommendationResponse, error) {
	log := logging.Ctx(ctx)

	req, err := req.Normalize()
	if err != nil {
		return nil, err
	}

	log.Info().Str("mood", req.Mood).Str("genre", req.Genre).Msg("generating recommendation based on mood")
	title, err := s.model.SuggestTitle(ctx, req.Mood, req.Genre)
	if err != nil {
		return nil, fmt.Errorf("generate title: %w", err)
	}
	log.Info().Str("title", title).Msg("recommended title")

	results, err := s.movies.SearchMulti(ctx, title, req.Filters())
	if err != nil {
		return nil, fmt.Errorf("search movie database: %w", err)
	}
	if len(results) == 0 {
		log.Info().Str("title", title).Msg("no movie database match")
		return nil, domain.ErrMovieNotFound
	}
	match := results[0]

	details, reviews := s.fetchDetailsAndReviews(ctx, match)

	trailer, err := s.trailers.Lookup(ctx, title)
	if err != nil {
		log.Warn().Err(err).Str("title", title).Msg("trailer lookup failed, using search link")
	}

	explanation, err := s.model.Explain(ctx, title, req.Mood)
	if err != nil {
		return nil, fmt.Errorf("generate explanation: %w", err)
	}

	resp := buildResponse(title, details, reviews, trailer, explanation, s.imageBaseURL)
	s.recordHistory(ctx, req, resp.Title, match)
	return resp, nil
}

// Details and reviews are independent; fetch both at once.
func (s *Service) fetchDetailsAndReviews(ctx context.Context, match domain.SearchResult) (*domain.MovieDetails, []domain.Review) {
	var (
		wg      sync.WaitGroup
		details *domain.MovieDetails
		reviews []domain.Review
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		details = s.getDetails(ctx, match)
	}()
	go func() {
		defer wg.Done()
		reviews = s.getReviews(ctx, match)
	}()
	wg.Wait()

	return details, reviews
}

func (s *Service) getDetails(ctx context.Context, match domain.SearchResult) *domain.MovieDetails {
	log := logging.Ctx(ctx)

	if s.cache != nil {
		cached, found, err := s.cache.GetDetails(ctx, match.MediaType, match.ID)
		if err != nil {
			log.Warn().Err(err).Msg("cache get details failed")
		}
		metrics.RecordCacheLookup(found)
		if found {
			return cached
		}
	}

	details, err := s.movies.GetDetails(ctx, match.MediaType, match.ID)
	if err != nil {
		log.Warn().Err(err).Int64("tmdb_id", match.ID).Msg("fetching details failed, continuing without them")
		return nil
	}

	if s.cache != nil {
		if err := s.cache.SetDetails(ctx, match.MediaType, match.ID, details); err != nil {
			log.Warn().Err(err).Msg("cache set details failed")
		}
	}
	return details
}

func (s *Service) getReviews(ctx context.Context, match domain.SearchResult) []domain.Review {
	log := logging.Ctx(ctx)

	if s.cache != nil {
		cached, found, err := s.cache.GetReviews(ctx, match.MediaType, match.ID)
		if err != nil {
			log.Warn().Err(err).Msg("cache get reviews failed")
		}
		metrics.RecordCacheLookup(found)
		if found {
			return cached
		}
	}

	reviews, err := s.movies.GetReviews(ctx, match.MediaType, match.ID)
	if err != nil {
		log.Warn().Err(err).Int64("tmdb_id", match.ID).Msg("fetching reviews failed, continuing without them")
		return nil
	}

	if s.cache != nil {
		if err := s.cache.SetReviews(ctx, match.MediaType, match.ID, reviews); err != nil {
			log.Warn().Err(err).Msg("cache set reviews failed")
		}
	}
	return reviews
}

// A failed insert is logged; the recommendation was already produced.
func (s *Service) recordHistory(ctx context.Context, req domain.RecommendationRequest, title string, match domain.SearchResult) {
	if s.history == nil {
		return
	}
	entry := domain.HistoryEntry{
		ID:        uuid.NewString(),
		Mood:      req.Mood,
		Genre:     req.Genre,
		Title:     title,
		TMDBID:    match.ID,
		MediaType: match.MediaType,
		CreatedAt: s.now().UTC(),
	}
	if err := s.history.AddRecommendation(ctx, entry); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("recording recommendation history failed")
	}
}

// ListRecent returns the newest served recommendations and the number
// stored overall. Limit is clamped to 1..50; zero means the default of 10.
func (s *Service) ListRecent(ctx context.Context, limit int) ([]domain.HistoryEntry, int, error) {
	if s.history == nil {
		return nil, 0, domain.ErrHistoryUnavailable
	}
	if limit <= 0 {
		limit = defaultRecentLimit
	} else if limit > maxRecentLimit {
		limit = maxRecentLimit
	}

	entries, err := s.history.ListRecentRecommendations(ctx, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("list recent recommendations: %w", err)
	}
	total, err := s.history.CountRecommendations(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("count recommendations: %w", err)
	}
	return entries, total, nil
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, domain.ErrMoodRequired), errors.Is(err, domain.ErrInvalidDate):
		return "invalid"
	case errors.Is(err, domain.ErrMovieNotFound):
		return "not_found"
	default:
		return "error"
	}
}
