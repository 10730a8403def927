package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"github.com/actuallystonmai/mood-recommender/internal/domain"
)

const defaultTTL = time.Hour

// Cache stores TMDB details and reviews so repeated recommendations of the
// same title skip the movie database.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Cache{client: client, ttl: ttl}
}

func detailsKey(mediaType domain.MediaType, id int64) string {
	return fmt.Sprintf("tmdb:details:%s:%d", mediaType, id)
}

func reviewsKey(mediaType domain.MediaType, id int64) string {
	return fmt.Sprintf("tmdb:reviews:%s:%d", mediaType, id)
}

// GetDetails reports found=false on a miss.
func (c *Cache) GetDetails(ctx context.Context, mediaType domain.MediaType, id int64) (*domain.MovieDetails, bool, error) {
	var details domain.MovieDetails
	found, err := c.get(ctx, detailsKey(mediaType, id), &details)
	if err != nil || !found {
		return nil, false, err
	}
	return &details, true, nil
}

func (c *Cache) SetDetails(ctx context.Context, mediaType domain.MediaType, id int64, details *domain.MovieDetails) error {
	return c.set(ctx, detailsKey(mediaType, id), details)
}

// GetReviews reports found=false on a miss. A cached empty list is a hit.
func (c *Cache) GetReviews(ctx context.Context, mediaType domain.MediaType, id int64) ([]domain.Review, bool, error) {
	var reviews []domain.Review
	found, err := c.get(ctx, reviewsKey(mediaType, id), &reviews)
	if err != nil || !found {
		return nil, false, err
	}
	if reviews == nil {
		reviews = []domain.Review{}
	}
	return reviews, true, nil
}

func (c *Cache) SetReviews(ctx context.Context, mediaType domain.MediaType, id int64, reviews []domain.Review) error {
	if reviews == nil {
		reviews = []domain.Review{}
	}
	return c.set(ctx, reviewsKey(mediaType, id), reviews)
}

func (c *Cache) get(ctx context.Context, key string, dst any) (bool, error) {
	val, err := c.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to get %s from cache: %w", key, err)
	}

	if err := json.Unmarshal([]byte(val), dst); err != nil {
		return false, fmt.Errorf("failed to unmarshal %s: %w", key, err)
	}
	return true, nil
}

func (c *Cache) set(ctx context.Context, key string, v any) error {
	val, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}

	if err := c.client.Set(ctx, key, val, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set %s in cache: %w", key, err)
	}
	return nil
}

// Ping connectivity
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *Cache) Close() error {
	return c.client.Close()
}
