// Package trailer builds trailer links for a recommended title.
package trailer

import (
	"context"
	"net/url"
	"strings"

	"github.com/actuallystonmai/mood-recommender/internal/domain"
)

const (
	searchBaseURL = "https://www.youtube.com/results?search_query="
	embedBaseURL  = "https://www.youtube.com/embed/"
)

// VideoFinder resolves a title to an embeddable video id. An empty id with a
// nil error means no video was found.
type VideoFinder interface {
	FindVideoID(ctx context.Context, title string) (string, error)
}

// NoopFinder never finds a video. Embedding needs a video search API, which
// is not wired up yet; callers fall back to the search link.
type NoopFinder struct{}

func (NoopFinder) FindVideoID(context.Context, string) (string, error) {
	return "", nil
}

type Service struct {
	finder VideoFinder
}

func NewService(finder VideoFinder) *Service {
	if finder == nil {
		finder = NoopFinder{}
	}
	return &Service{finder: finder}
}

// SearchURL is the YouTube search link for "<title> trailer".
func SearchURL(title string) string {
	return searchBaseURL + strings.ReplaceAll(url.QueryEscape(title+" trailer"), "+", "%20")
}

// Lookup always returns a search URL. A finder error only drops the embed.
func (s *Service) Lookup(ctx context.Context, title string) (domain.TrailerInfo, error) {
	info := domain.TrailerInfo{SearchURL: SearchURL(title)}
	id, err := s.finder.FindVideoID(ctx, title)
	if err != nil {
		return info, err
	}
	if id != "" {
		info.VideoID = id
		info.EmbedURL = embedBaseURL + url.PathEscape(id)
	}
	return info, nil
}
