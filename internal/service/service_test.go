package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/actuallystonmai/mood-recommender/internal/domain"
	"github.com/actuallystonmai/mood-recommender/internal/trailer"
)

type fakeModel struct {
	title       string
	titleErr    error
	explanation string
	explainErr  error

	mu    sync.Mutex
	calls []string
}

func (f *fakeModel) SuggestTitle(ctx context.Context, mood, genre string) (string, error) {
	f.record("title")
	return f.title, f.titleErr
}

func (f *fakeModel) Explain(ctx context.Context, title, mood string) (string, error) {
	f.record("explain")
	return f.explanation, f.explainErr
}

func (f *fakeModel) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

type fakeMovies struct {
	results    []domain.SearchResult
	searchErr  error
	details    *domain.MovieDetails
	detailsErr error
	reviews    []domain.Review
	reviewsErr error

	mu          sync.Mutex
	calls       []string
	lastFilters domain.SearchFilters
}

func (f *fakeMovies) SearchMulti(ctx context.Context, query string, filters domain.SearchFilters) ([]domain.SearchResult, error) {
	f.record("search")
	f.mu.Lock()
	f.lastFilters = filters
	f.mu.Unlock()
	return f.results, f.searchErr
}

func (f *fakeMovies) GetDetails(ctx context.Context, mediaType domain.MediaType, id int64) (*domain.MovieDetails, error) {
	f.record("details")
	return f.details, f.detailsErr
}

func (f *fakeMovies) GetReviews(ctx context.Context, mediaType domain.MediaType, id int64) ([]domain.Review, error) {
	f.record("reviews")
	return f.reviews, f.reviewsErr
}

func (f *fakeMovies) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

type fakeHistory struct {
	entries  []domain.HistoryEntry
	addErr   error
	countErr error
	limit    int
}

func (f *fakeHistory) AddRecommendation(ctx context.Context, entry domain.HistoryEntry) error {
	if f.addErr != nil {
		return f.addErr
	}
	f.entries = append(f.entries, entry)
	return nil
}

func (f *fakeHistory) ListRecentRecommendations(ctx context.Context, limit int) ([]domain.HistoryEntry, error) {
	f.limit = limit
	return f.entries[:min(limit, len(f.entries))], nil
}

func (f *fakeHistory) CountRecommendations(ctx context.Context) (int, error) {
	return len(f.entries), f.countErr
}

type fakeCache struct {
	details map[int64]*domain.MovieDetails
	reviews map[int64][]domain.Review
	mu      sync.Mutex
}

func newFakeCache() *fakeCache {
	return &fakeCache{details: map[int64]*domain.MovieDetails{}, reviews: map[int64][]domain.Review{}}
}

func (c *fakeCache) GetDetails(ctx context.Context, mt domain.MediaType, id int64) (*domain.MovieDetails, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	d, ok := c.details[id]
	return d, ok, nil
}

func (c *fakeCache) SetDetails(ctx context.Context, mt domain.MediaType, id int64, d *domain.MovieDetails) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.details[id] = d
	return nil
}

func (c *fakeCache) GetReviews(ctx context.Context, mt domain.MediaType, id int64) ([]domain.Review, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	r, ok := c.reviews[id]
	return r, ok, nil
}

func (c *fakeCache) SetReviews(ctx context.Context, mt domain.MediaType, id int64, r []domain.Review) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reviews[id] = r
	return nil
}

func rating(v float64) *float64 { return &v }

func newTestService(m *fakeModel, movies *fakeMovies) *Service {
	return NewService(m, movies, trailer.NewService(nil), "https://image.tmdb.org/t/p/w500")
}

func happyMovies() *fakeMovies {
	return &fakeMovies{
		results: []domain.SearchResult{
			{ID: 11216, MediaType: domain.MediaMovie, Title: "Cinema Paradiso"},
			{ID: 2, MediaType: domain.MediaMovie, Title: "Other"},
		},
		details: &domain.MovieDetails{
			Title:       "Cinema Paradiso",
			ReleaseDate: "1988-11-17",
			Rating:      8.4,
			Overview:    "A filmmaker recalls his childhood.",
			IMDbID:      "tt0095765",
			PosterPath:  "/poster.jpg",
		},
		reviews: []domain.Review{
			{Author: "ana", Content: "Lovely.", Rating: rating(9), URL: "https://tmdb.test/r/1"},
		},
	}
}

func TestRecommendFullFlow(t *testing.T) {
	m := &fakeModel{title: "Cinema Paradiso", explanation: "It bathes you in memories."}
	movies := happyMovies()

	resp, err := newTestService(m, movies).Recommend(context.Background(), domain.RecommendationRequest{Mood: "I feel nostalgic"})
	require.NoError(t, err)

	assert.Equal(t, "Cinema Paradiso", resp.Title)
	assert.Equal(t, "1988-11-17", resp.ReleaseDate)
	assert.Equal(t, 8.4, resp.Rating)
	assert.Equal(t, "A filmmaker recalls his childhood.", resp.Summary)
	assert.Equal(t, "It bathes you in memories.", resp.WhyThisMovie)
	assert.True(t, strings.HasPrefix(resp.TrailerURL, "https://www.youtube.com/results?search_query="))
	assert.Nil(t, resp.TrailerEmbedURL)
	assert.Equal(t, "tt0095765", resp.IMDbID)
	require.NotNil(t, resp.PosterURL)
	assert.Equal(t, "https://image.tmdb.org/t/p/w500/poster.jpg", *resp.PosterURL)
	require.Len(t, resp.Reviews, 1)
	assert.Equal(t, "ana", resp.Reviews[0].Author)

	assert.Equal(t, []string{"title", "explain"}, m.calls)
	assert.Zero(t, movies.lastFilters)
}

func TestRecommendMissingMoodMakesNoCalls(t *testing.T) {
	m := &fakeModel{title: "x", explanation: "y"}
	movies := happyMovies()
	svc := newTestService(m, movies)

	for _, mood := range []string{"", "   "} {
		_, err := svc.Recommend(context.Background(), domain.RecommendationRequest{Mood: mood})
		assert.ErrorIs(t, err, domain.ErrMoodRequired)
	}

	assert.Empty(t, m.calls)
	assert.Empty(t, movies.calls)
}

func TestRecommendNotFoundStopsEarly(t *testing.T) {
	m := &fakeModel{title: "Imaginary Film", explanation: "y"}
	movies := &fakeMovies{}

	_, err := newTestService(m, movies).Recommend(context.Background(), domain.RecommendationRequest{Mood: "odd"})
	assert.ErrorIs(t, err, domain.ErrMovieNotFound)

	assert.Equal(t, []string{"search"}, movies.calls)
	assert.Equal(t, []string{"title"}, m.calls)
}

func TestRecommendNormalizesFilters(t *testing.T) {
	m := &fakeModel{title: "Interstellar", explanation: "y"}
	movies := happyMovies()

	_, err := newTestService(m, movies).Recommend(context.Background(), domain.RecommendationRequest{
		Mood:     "curious",
		Genre:    "Sci-Fi",
		FromDate: "2020-01-01",
		ToDate:   "2015-01-01",
	})
	require.NoError(t, err)

	assert.Equal(t, domain.SearchFilters{GenreID: 878, FromDate: "2015-01-01", ToDate: "2020-01-01"}, movies.lastFilters)
}

func TestRecommendTitleFailurePropagates(t *testing.T) {
	upstream := errors.New("llm down")
	movies := happyMovies()

	_, err := newTestService(&fakeModel{titleErr: upstream}, movies).
		Recommend(context.Background(), domain.RecommendationRequest{Mood: "sad"})

	assert.ErrorIs(t, err, upstream)
	assert.Empty(t, movies.calls)
}

func TestRecommendSearchFailurePropagates(t *testing.T) {
	upstream := errors.New("tmdb down")
	movies := &fakeMovies{searchErr: upstream}

	_, err := newTestService(&fakeModel{title: "Heat"}, movies).
		Recommend(context.Background(), domain.RecommendationRequest{Mood: "tense"})

	assert.ErrorIs(t, err, upstream)
	assert.NotErrorIs(t, err, domain.ErrMovieNotFound)
}

func TestRecommendExplanationFailurePropagates(t *testing.T) {
	upstream := errors.New("llm overloaded")

	_, err := newTestService(&fakeModel{title: "Heat", explainErr: upstream}, happyMovies()).
		Recommend(context.Background(), domain.RecommendationRequest{Mood: "tense"})

	assert.ErrorIs(t, err, upstream)
}

func TestRecommendDegradesOnDetailsAndReviewsFailure(t *testing.T) {
	movies := happyMovies()
	movies.detailsErr = errors.New("details 500")
	movies.reviewsErr = errors.New("reviews 500")

	resp, err := newTestService(&fakeModel{title: "Heat", explanation: "Tense and sleek."}, movies).
		Recommend(context.Background(), domain.RecommendationRequest{Mood: "tense"})
	require.NoError(t, err)

	assert.Equal(t, "Heat", resp.Title)
	assert.Equal(t, "Tense and sleek.", resp.WhyThisMovie)
	assert.NotNil(t, resp.Reviews)
	assert.Empty(t, resp.Reviews)
	assert.Nil(t, resp.PosterURL)
	assert.Empty(t, resp.ReleaseDate)
}

func TestRecommendTitleFallsBackWhenDetailsUntitled(t *testing.T) {
	movies := happyMovies()
	movies.details = &domain.MovieDetails{Overview: "No title here"}

	resp, err := newTestService(&fakeModel{title: "Generated Title", explanation: "y"}, movies).
		Recommend(context.Background(), domain.RecommendationRequest{Mood: "meh"})
	require.NoError(t, err)

	assert.Equal(t, "Generated Title", resp.Title)
}

func TestRecommendLimitsAndTruncatesReviews(t *testing.T) {
	movies := happyMovies()
	long := strings.Repeat("é", 250)
	movies.reviews = []domain.Review{
		{Author: "a", Content: long},
		{Author: "b", Content: "short", Rating: rating(7)},
		{Author: "c", Content: long},
		{Author: "d", Content: long},
		{Author: "e", Content: long},
	}

	resp, err := newTestService(&fakeModel{title: "x", explanation: "y"}, movies).
		Recommend(context.Background(), domain.RecommendationRequest{Mood: "meh"})
	require.NoError(t, err)

	require.Len(t, resp.Reviews, 3)
	for _, r := range resp.Reviews {
		assert.LessOrEqual(t, len([]rune(r.Content)), 203)
	}
	assert.Equal(t, strings.Repeat("é", 200)+"...", resp.Reviews[0].Content)
	assert.Equal(t, "short...", resp.Reviews[1].Content)
	assert.Nil(t, resp.Reviews[0].Rating)
	assert.Equal(t, 7.0, *resp.Reviews[1].Rating)
	assert.Equal(t, "c", resp.Reviews[2].Author)
}

func TestRecommendUsesFirstResultOnly(t *testing.T) {
	movies := happyMovies()
	movies.results = []domain.SearchResult{
		{ID: 1396, MediaType: domain.MediaTV, Title: "Breaking Bad"},
		{ID: 11216, MediaType: domain.MediaMovie, Title: "Cinema Paradiso"},
	}
	history := &fakeHistory{}
	svc := newTestService(&fakeModel{title: "Breaking Bad", explanation: "y"}, movies).WithHistory(history)

	_, err := svc.Recommend(context.Background(), domain.RecommendationRequest{Mood: "edgy"})
	require.NoError(t, err)

	require.Len(t, history.entries, 1)
	assert.Equal(t, int64(1396), history.entries[0].TMDBID)
	assert.Equal(t, domain.MediaTV, history.entries[0].MediaType)
}

func TestRecommendRecordsHistory(t *testing.T) {
	history := &fakeHistory{}
	svc := newTestService(&fakeModel{title: "Cinema Paradiso", explanation: "y"}, happyMovies()).WithHistory(history)
	fixed := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	_, err := svc.Recommend(context.Background(), domain.RecommendationRequest{Mood: " nostalgic ", Genre: "drama"})
	require.NoError(t, err)

	require.Len(t, history.entries, 1)
	entry := history.entries[0]
	assert.Len(t, entry.ID, 36)
	assert.Equal(t, "nostalgic", entry.Mood)
	assert.Equal(t, "drama", entry.Genre)
	assert.Equal(t, "Cinema Paradiso", entry.Title)
	assert.Equal(t, fixed, entry.CreatedAt)
}

func TestRecommendHistoryFailureIsIgnored(t *testing.T) {
	history := &fakeHistory{addErr: errors.New("db down")}
	svc := newTestService(&fakeModel{title: "Heat", explanation: "y"}, happyMovies()).WithHistory(history)

	resp, err := svc.Recommend(context.Background(), domain.RecommendationRequest{Mood: "tense"})
	require.NoError(t, err)
	assert.NotNil(t, resp)
}

func TestRecommendUsesCache(t *testing.T) {
	cache := newFakeCache()
	movies := happyMovies()
	svc := newTestService(&fakeModel{title: "Cinema Paradiso", explanation: "y"}, movies).WithCache(cache)

	for i := 0; i < 2; i++ {
		_, err := svc.Recommend(context.Background(), domain.RecommendationRequest{Mood: "nostalgic"})
		require.NoError(t, err)
	}

	details, reviews := 0, 0
	for _, c := range movies.calls {
		switch c {
		case "details":
			details++
		case "reviews":
			reviews++
		}
	}
	assert.Equal(t, 1, details)
	assert.Equal(t, 1, reviews)
}

func TestListRecent(t *testing.T) {
	svc := newTestService(&fakeModel{}, &fakeMovies{})

	_, _, err := svc.ListRecent(context.Background(), 5)
	assert.ErrorIs(t, err, domain.ErrHistoryUnavailable)

	history := &fakeHistory{entries: []domain.HistoryEntry{{Title: "Heat"}, {Title: "Up"}, {Title: "Amelie"}}}
	svc.WithHistory(history)

	entries, total, err := svc.ListRecent(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
	assert.Equal(t, 3, total)
	assert.Equal(t, defaultRecentLimit, history.limit)

	entries, total, err = svc.ListRecent(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
	assert.Equal(t, 3, total)

	_, _, err = svc.ListRecent(context.Background(), 500)
	require.NoError(t, err)
	assert.Equal(t, maxRecentLimit, history.limit)
}

func TestListRecentCountError(t *testing.T) {
	history := &fakeHistory{countErr: errors.New("db down")}
	svc := newTestService(&fakeModel{}, &fakeMovies{}).WithHistory(history)

	_, _, err := svc.ListRecent(context.Background(), 5)
	assert.ErrorContains(t, err, "count recommendations")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc...", truncate("abc", 200))
	assert.Equal(t, "...", truncate("", 200))
	assert.Equal(t, strings.Repeat("a", 200)+"...", truncate(strings.Repeat("a", 200), 200))
	assert.Equal(t, strings.Repeat("a", 200)+"...", truncate(strings.Repeat("a", 201), 200))
}

func TestOutcome(t *testing.T) {
	assert.Equal(t, "success", outcome(nil))
	assert.Equal(t, "invalid", outcome(domain.ErrMoodRequired))
	assert.Equal(t, "not_found", outcome(domain.ErrMovieNotFound))
	assert.Equal(t, "error", outcome(errors.New("boom")))
}
