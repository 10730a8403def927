package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/actuallystonmai/mood-recommender/internal/cache"
	"github.com/actuallystonmai/mood-recommender/internal/config"
	"github.com/actuallystonmai/mood-recommender/internal/handler"
	"github.com/actuallystonmai/mood-recommender/internal/logging"
	"github.com/actuallystonmai/mood-recommender/internal/model"
	"github.com/actuallystonmai/mood-recommender/internal/repository"
	"github.com/actuallystonmai/mood-recommender/internal/router"
	"github.com/actuallystonmai/mood-recommender/internal/service"
	"github.com/actuallystonmai/mood-recommender/internal/tmdb"
	"github.com/actuallystonmai/mood-recommender/internal/trailer"
	"github.com/actuallystonmai/mood-recommender/web"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to load config")
	}
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	if missing := cfg.MissingSecrets(); len(missing) > 0 {
		logging.Warn().Strs("missing", missing).Msg("API keys not set; recommendations will fail until they are configured")
	}

	ctx := context.Background()

	// ------------ PostgreSQL ---------------
	var pool *pgxpool.Pool
	if cfg.DatabaseURL != "" {
		pool, err = connectDB(ctx, cfg)
		if err != nil {
			logging.Fatal().Err(err).Msg("failed to connect to database")
		}
		defer pool.Close()

		// ------------ Run Migrations ---------------
		// for migrate-down using CLI command
		if len(os.Args) > 1 && os.Args[1] == "migrate-down" {
			if err := migrateDown(ctx, pool); err != nil {
				logging.Fatal().Err(err).Msg("failed to migrate down")
			}
			return
		}

		if err := migrateUp(ctx, pool); err != nil {
			logging.Fatal().Err(err).Msg("failed to migrate up")
		}
	} else {
		logging.Info().Msg("DATABASE_URL not set, recommendation history disabled")
	}

	// ------------ Redis ---------------
	var lookupCache *cache.Cache
	if cfg.RedisURL != "" {
		lookupCache, err = connectCache(ctx, cfg)
		if err != nil {
			logging.Fatal().Err(err).Msg("failed to configure redis")
		}
		defer lookupCache.Close()
	} else {
		logging.Info().Msg("REDIS_URL not set, TMDB lookups are not cached")
	}

	// ------------ Services ---------------
	llm := model.NewClient(model.NewAnthropicCompleter(cfg.AnthropicAPIKey, cfg.AnthropicModel, cfg.AnthropicBaseURL, cfg.HTTPTimeout))
	movies := tmdb.NewClient(cfg.TMDBAPIKey, cfg.TMDBBaseURL, cfg.HTTPTimeout)
	svc := service.NewService(llm, movies, trailer.NewService(nil), cfg.TMDBImageBaseURL)
	if lookupCache != nil {
		svc.WithCache(lookupCache)
	}
	if pool != nil {
		svc.WithHistory(repository.NewRepository(pool))
	}

	// ---------------- Server --------------------
	r := router.Setup(handler.NewHandler(svc), router.Options{
		RequestTimeout:     cfg.RequestTimeout,
		RateLimitRequests:  cfg.RateLimitRequests,
		RateLimitWindow:    cfg.RateLimitWindow,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		Assets:             web.Assets(),
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", srv.Addr).Msg("server running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		logging.Fatal().Err(err).Msg("server failed")
	case sig := <-stop:
		logging.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.Error().Err(err).Msg("graceful shutdown failed")
	}
	logging.Info().Msg("server stopped")
}

func connectDB(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database config: %w", err)
	}
	poolConfig.MaxConns = int32(cfg.DBPoolSize)
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := waitForDB(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	logging.Info().Msg("connected to PostgreSQL")
	return pool, nil
}

func waitForDB(ctx context.Context, pool *pgxpool.Pool) error {
	for i := 0; i < 30; i++ {
		if err := pool.Ping(ctx); err == nil {
			return nil
		}
		logging.Info().Int("attempt", i+1).Msg("waiting for database... (max 30)")
		time.Sleep(1 * time.Second)
	}
	return fmt.Errorf("database connection timeout after 30s")
}

func migrateDown(ctx context.Context, pool *pgxpool.Pool) error {
	if err := execMigration(ctx, pool, "migrations/create_tables.down.sql"); err != nil {
		return err
	}
	logging.Info().Msg("migrations dropped successfully")
	return nil
}

func migrateUp(ctx context.Context, pool *pgxpool.Pool) error {
	if err := execMigration(ctx, pool, "migrations/create_tables.up.sql"); err != nil {
		return err
	}
	logging.Info().Msg("migrations applied successfully")
	return nil
}

func execMigration(ctx context.Context, pool *pgxpool.Pool, path string) error {
	sql, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read migration file: %w", err)
	}
	if _, err := pool.Exec(ctx, string(sql)); err != nil {
		return fmt.Errorf("execute migration: %w", err)
	}
	return nil
}

// connectCache builds the lookup cache. An unreachable Redis at startup is
// only logged; lookups degrade to cache misses until it comes back.
func connectCache(ctx context.Context, cfg *config.Config) (*cache.Cache, error) {
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	c := cache.NewCache(redis.NewClient(opts), cfg.CacheTTL)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := c.Ping(pingCtx); err != nil {
		logging.Warn().Err(err).Str("addr", opts.Addr).Msg("redis not reachable, continuing without warm cache")
	} else {
		logging.Info().Msg("connected to Redis")
	}
	return c, nil
}
