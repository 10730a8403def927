package router

import (
	"io/fs"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/actuallystonmai/mood-recommender/internal/handler"
)

type Options struct {
	RequestTimeout     time.Duration
	RateLimitRequests  int
	RateLimitWindow    time.Duration
	CORSAllowedOrigins []string
	Assets             fs.FS
}

func Setup(h *handler.Handler, opts Options) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	if len(opts.CORSAllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: opts.CORSAllowedOrigins,
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Content-Type"},
			MaxAge:         86400,
		}))
	}

	var static http.HandlerFunc
	if opts.Assets != nil {
		static = h.Static(opts.Assets)
	}

	// Routes
	r.Route("/api", func(r chi.Router) {
		if static != nil {
			r.NotFound(spaFallback(static))
		}
		r.Get("/health", h.Health)
		r.Get("/genres", h.ListGenres)
		r.Get("/recommendations/recent", h.GetRecentRecommendations)
		r.With(
			requestDeadline(opts.RequestTimeout),
			rateLimit(opts.RateLimitRequests, opts.RateLimitWindow),
		).Post("/recommend", h.Recommend)
	})
	r.Handle("/metrics", promhttp.Handler())

	if static != nil {
		r.Get("/*", static)
	}

	return r
}

// spaFallback serves the frontend for unmatched GETs under a mounted
// subrouter; other methods still get a 404.
func spaFallback(static http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			http.NotFound(w, r)
			return
		}
		static(w, r)
	}
}

func rateLimit(requests int, window time.Duration) func(http.Handler) http.Handler {
	if requests <= 0 || window <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return httprate.LimitByIP(requests, window)
}
