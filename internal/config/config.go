package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port int

	AnthropicAPIKey  string
	AnthropicModel   string
	AnthropicBaseURL string

	TMDBAPIKey       string
	TMDBBaseURL      string
	TMDBImageBaseURL string

	HTTPTimeout    time.Duration
	RequestTimeout time.Duration

	DatabaseURL string
	DBPoolSize  int
	RedisURL    string
	CacheTTL    time.Duration

	LogLevel  string
	LogFormat string

	RateLimitRequests  int
	RateLimitWindow    time.Duration
	CORSAllowedOrigins []string
}

// Load configuration from env. A .env file in the working directory is read
// first when present; real environment variables take precedence.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port: getEnvInt("PORT", 3000),

		AnthropicAPIKey:  os.Getenv("ANTHROPIC_API_KEY"),
		AnthropicModel:   getEnv("ANTHROPIC_MODEL", "claude-3-5-sonnet-20241022"),
		AnthropicBaseURL: os.Getenv("ANTHROPIC_BASE_URL"),

		TMDBAPIKey:       os.Getenv("TMDB_API_KEY"),
		TMDBBaseURL:      strings.TrimRight(getEnv("TMDB_BASE_URL", "https://api.themoviedb.org/3"), "/"),
		TMDBImageBaseURL: strings.TrimRight(getEnv("TMDB_IMAGE_BASE_URL", "https://image.tmdb.org/t/p/w500"), "/"),

		HTTPTimeout:    getEnvDuration("HTTP_TIMEOUT", 15*time.Second),
		RequestTimeout: getEnvDuration("REQUEST_TIMEOUT", 60*time.Second),

		DatabaseURL: os.Getenv("DATABASE_URL"),
		DBPoolSize:  getEnvInt("DB_POOL_SIZE", 5),
		RedisURL:    os.Getenv("REDIS_URL"),
		CacheTTL:    getEnvDuration("CACHE_TTL", time.Hour),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),

		RateLimitRequests:  getEnvInt("RATE_LIMIT_REQUESTS", 30),
		RateLimitWindow:    getEnvDuration("RATE_LIMIT_WINDOW", time.Minute),
		CORSAllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS"),
	}

	if cfg.Port <= 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("invalid PORT %d", cfg.Port)
	}
	if cfg.DBPoolSize <= 0 {
		return nil, fmt.Errorf("invalid DB_POOL_SIZE %d", cfg.DBPoolSize)
	}

	return cfg, nil
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// MissingSecrets names the required API keys that are unset. Calls to the
// matching collaborator fail at request time; startup is not blocked.
func (c *Config) MissingSecrets() []string {
	var missing []string
	if c.AnthropicAPIKey == "" {
		missing = append(missing, "ANTHROPIC_API_KEY")
	}
	if c.TMDBAPIKey == "" {
		missing = append(missing, "TMDB_API_KEY")
	}
	return missing
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err == nil {
			return d
		}
	}
	return fallback
}

func getEnvList(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
