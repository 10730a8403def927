package repository

import (
	"context"
	"fmt"

	"github.com/actuallystonmai/mood-recommender/internal/domain"
)

// Add one served recommendation
func (r *Repository) AddRecommendation(ctx context.Context, entry domain.HistoryEntry) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO recommendation_history (id, mood, genre, title, tmdb_id, media_type, created_at)
		VALUES ($1::uuid, $2, $3, $4, $5, $6, $7)`,
		entry.ID, entry.Mood, entry.Genre, entry.Title, entry.TMDBID, string(entry.MediaType), entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert recommendation %s: %w", entry.ID, err)
	}
	return nil
}

// Newest first
func (r *Repository) ListRecentRecommendations(ctx context.Context, limit int) ([]domain.HistoryEntry, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id::text, mood, genre, title, tmdb_id, media_type, created_at
		FROM recommendation_history
		ORDER BY created_at DESC
		LIMIT $1`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query recent recommendations: %w", err)
	}
	defer rows.Close()

	items := []domain.HistoryEntry{}
	for rows.Next() {
		var e domain.HistoryEntry
		var mediaType string
		if err := rows.Scan(&e.ID, &e.Mood, &e.Genre, &e.Title, &e.TMDBID, &mediaType, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan recommendation: %w", err)
		}
		e.MediaType = domain.MediaType(mediaType)
		items = append(items, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate over recommendations: %w", err)
	}
	return items, nil
}

// Count stored recommendations
func (r *Repository) CountRecommendations(ctx context.Context) (int, error) {
	var total int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM recommendation_history`,
	).Scan(&total)

	if err != nil {
		return 0, fmt.Errorf("count recommendations: %w", err)
	}
	return total, nil
}
