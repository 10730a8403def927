package tmdb

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/sony/gobreaker/v2"

	"github.com/actuallystonmai/mood-recommender/internal/domain"
	"github.com/actuallystonmai/mood-recommender/internal/logging"
	"github.com/actuallystonmai/mood-recommender/internal/metrics"
	"github.com/actuallystonmai/mood-recommender/internal/resilience"
)

const maxBodyBytes = 4 << 20

// Client is the TMDB API client.
type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker[[]byte]
}

// NewClient creates a new TMDB API client.
func NewClient(apiKey, baseURL string, timeout time.Duration) *Client {
	cfg := resilience.DefaultBreakerConfig("tmdb")
	cfg.IsSuccessful = func(err error) bool {
		// A 4xx is an answer about the request, not a sign the API is down.
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			return apiErr.StatusCode < http.StatusInternalServerError && apiErr.StatusCode != http.StatusTooManyRequests
		}
		return err == nil
	}

	return &Client{
		apiKey:  apiKey,
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		breaker: resilience.NewBreaker[[]byte](cfg),
	}
}

// APIError is a non-200 answer from TMDB.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("TMDB API returned status %d: %s", e.StatusCode, e.Body)
}

// ---- TMDB response types ----

type multiSearchResponse struct {
	Results []multiSearchResult `json:"results"`
}

type multiSearchResult struct {
	ID        int64  `json:"id"`
	MediaType string `json:"media_type"`
	Title     string `json:"title"`
	Name      string `json:"name"`
}

// detailResponse covers both /movie/{id} and /tv/{id}.
type detailResponse struct {
	Title        string  `json:"title"`
	Name         string  `json:"name"`
	ReleaseDate  string  `json:"release_date"`
	FirstAirDate string  `json:"first_air_date"`
	VoteAverage  float64 `json:"vote_average"`
	Overview     string  `json:"overview"`
	IMDbID       *string `json:"imdb_id"`
	PosterPath   *string `json:"poster_path"`
}

type reviewsResponse struct {
	Results []reviewResult `json:"results"`
}

type reviewResult struct {
	Author        string `json:"author"`
	Content       string `json:"content"`
	URL           string `json:"url"`
	AuthorDetails struct {
		Rating *float64 `json:"rating"`
	} `json:"author_details"`
}

// ---- Client methods ----

// SearchMulti runs a free-text search and keeps only movie and tv results,
// in the order TMDB returned them.
func (c *Client) SearchMulti(ctx context.Context, query string, filters domain.SearchFilters) ([]domain.SearchResult, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("include_adult", "false")
	if filters.FromDate != "" {
		params.Set("primary_release_date.gte", filters.FromDate)
	}
	if filters.ToDate != "" {
		params.Set("primary_release_date.lte", filters.ToDate)
	}
	if filters.GenreID > 0 {
		params.Set("with_genres", strconv.Itoa(filters.GenreID))
	}

	logging.Ctx(ctx).Debug().Str("query", query).Msg("searching TMDB")
	body, err := c.doGet(ctx, "search", "/search/multi", params)
	if err != nil {
		return nil, err
	}

	var resp multiSearchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	results := make([]domain.SearchResult, 0, len(resp.Results))
	for _, r := range resp.Results {
		mt := domain.MediaType(r.MediaType)
		if mt != domain.MediaMovie && mt != domain.MediaTV {
			continue
		}
		title := r.Title
		if mt == domain.MediaTV {
			title = r.Name
		}
		results = append(results, domain.SearchResult{ID: r.ID, MediaType: mt, Title: title})
	}
	return results, nil
}

// GetDetails fetches title, date, rating and artwork for a movie or show.
func (c *Client) GetDetails(ctx context.Context, mediaType domain.MediaType, id int64) (*domain.MovieDetails, error) {
	logging.Ctx(ctx).Debug().Str("media_type", string(mediaType)).Int64("tmdb_id", id).Msg("fetching TMDB details")
	body, err := c.doGet(ctx, "details", fmt.Sprintf("/%s/%d", pathSegment(mediaType), id), nil)
	if err != nil {
		return nil, err
	}

	var resp detailResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode details response: %w", err)
	}

	details := &domain.MovieDetails{
		Title:       resp.Title,
		ReleaseDate: resp.ReleaseDate,
		Rating:      resp.VoteAverage,
		Overview:    resp.Overview,
	}
	if mediaType == domain.MediaTV {
		details.Title = resp.Name
		details.ReleaseDate = resp.FirstAirDate
	}
	if resp.IMDbID != nil {
		details.IMDbID = *resp.IMDbID
	}
	if resp.PosterPath != nil {
		details.PosterPath = *resp.PosterPath
	}
	return details, nil
}

// GetReviews returns every review on the first page. A rating of zero is
// treated as absent.
func (c *Client) GetReviews(ctx context.Context, mediaType domain.MediaType, id int64) ([]domain.Review, error) {
	logging.Ctx(ctx).Debug().Str("media_type", string(mediaType)).Int64("tmdb_id", id).Msg("fetching TMDB reviews")
	body, err := c.doGet(ctx, "reviews", fmt.Sprintf("/%s/%d/reviews", pathSegment(mediaType), id), nil)
	if err != nil {
		return nil, err
	}

	var resp reviewsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode reviews response: %w", err)
	}

	reviews := make([]domain.Review, 0, len(resp.Results))
	for _, r := range resp.Results {
		review := domain.Review{Author: r.Author, Content: r.Content, URL: r.URL}
		if r.AuthorDetails.Rating != nil && *r.AuthorDetails.Rating != 0 {
			rating := *r.AuthorDetails.Rating
			review.Rating = &rating
		}
		reviews = append(reviews, review)
	}
	return reviews, nil
}

func pathSegment(mediaType domain.MediaType) string {
	if mediaType == domain.MediaTV {
		return "tv"
	}
	return "movie"
}

func (c *Client) doGet(ctx context.Context, operation, path string, params url.Values) ([]byte, error) {
	if params == nil {
		params = url.Values{}
	}
	params.Set("api_key", c.apiKey)
	endpoint := c.baseURL + path + "?" + params.Encode()

	start := time.Now()
	body, err := resilience.Execute(ctx, c.breaker, func() ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			// url.Error embeds the full URL, api_key included.
			var uerr *url.Error
			if errors.As(err, &uerr) {
				err = uerr.Err
			}
			return nil, fmt.Errorf("TMDB request %s failed: %w", path, err)
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
		if err != nil {
			return nil, fmt.Errorf("read response: %w", err)
		}
		if resp.StatusCode != http.StatusOK {
			return nil, &APIError{StatusCode: resp.StatusCode, Body: string(body)}
		}
		return body, nil
	})
	metrics.ObserveCollaborator("tmdb", operation, start, err)
	return body, err
}
