package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr               string
	DBPath             string
	LogLevel           string
	LogFormat          string
	Timezone           string
	BackendURLs        []string
	BackendToken       string
	DefaultPeriod      int
	ChartWidth         int
	ChartHeight        int
	RedrawDelay        time.Duration
	ReloadWorkerCount  int
	ReloadQueueSize    int
	RenderCacheMaxCost int64
	CORSOrigins        []string
	SessionIdleTTL     time.Duration
}

// Load reads configuration from a .env file (if present) and environment variables,
// applying sensible defaults when values are missing or invalid.
func Load() Config {
	// Ignore error so the app still starts when .env is absent in production.
	_ = godotenv.Load()

	return Config{
		Addr:               envOr("ADDR", ":8080"),
		DBPath:             envOr("DB_PATH", "file:resultados.db"),
		LogLevel:           envOr("LOG_LEVEL", "INFO"),
		LogFormat:          envOr("LOG_FORMAT", "text"),
		Timezone:           envOr("TIMEZONE", "Local"),
		BackendURLs:        envListOr("BACKEND_URLS", nil),
		BackendToken:       os.Getenv("BACKEND_TOKEN"),
		DefaultPeriod:      envIntOr("DEFAULT_PERIOD", 30),
		ChartWidth:         envIntOr("CHART_WIDTH", 640),
		ChartHeight:        envIntOr("CHART_HEIGHT", 400),
		RedrawDelay:        envDurationOr("REDRAW_DELAY", 50*time.Millisecond),
		ReloadWorkerCount:  envIntOr("RELOAD_WORKER_COUNT", 2),
		ReloadQueueSize:    envIntOr("RELOAD_QUEUE_SIZE", 32),
		RenderCacheMaxCost: int64(envIntOr("RENDER_CACHE_MAX_COST", 64<<20)),
		CORSOrigins:        envListOr("CORS_ORIGINS", []string{"*"}),
		SessionIdleTTL:     envDurationOr("SESSION_IDLE_TTL", 30*time.Minute),
	}
}

// Location resolves Timezone, falling back to time.Local.
func (c Config) Location() *time.Location {
	if c.Timezone == "" || strings.EqualFold(c.Timezone, "local") {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.Addr) == "" {
		errs = append(errs, errors.New("ADDR cannot be empty"))
	}
	if strings.TrimSpace(c.DBPath) == "" {
		errs = append(errs, errors.New("DB_PATH cannot be empty"))
	}
	switch strings.ToUpper(c.LogLevel) {
	case "DEBUG", "INFO", "WARN", "WARNING", "ERROR":
	default:
		errs = append(errs, fmt.Errorf("LOG_LEVEL %q is not one of DEBUG, INFO, WARN, ERROR", c.LogLevel))
	}
	switch strings.ToLower(c.LogFormat) {
	case "", "text", "json":
	default:
		errs = append(errs, fmt.Errorf("LOG_FORMAT %q is not one of text, json", c.LogFormat))
	}
	if c.Timezone != "" && !strings.EqualFold(c.Timezone, "local") {
		if _, err := time.LoadLocation(c.Timezone); err != nil {
			errs = append(errs, fmt.Errorf("TIMEZONE %q: %v", c.Timezone, err))
		}
	}
	for _, u := range c.BackendURLs {
		if !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
			errs = append(errs, fmt.Errorf("BACKEND_URLS entry %q must start with http:// or https://", u))
		}
	}
	if c.DefaultPeriod < 1 || c.DefaultPeriod > 365 {
		errs = append(errs, fmt.Errorf("DEFAULT_PERIOD must be between 1 and 365, got %d", c.DefaultPeriod))
	}
	if c.ChartWidth < 1 || c.ChartHeight < 1 {
		errs = append(errs, fmt.Errorf("CHART_WIDTH and CHART_HEIGHT must be positive, got %dx%d", c.ChartWidth, c.ChartHeight))
	}
	if c.RedrawDelay < 0 {
		errs = append(errs, fmt.Errorf("REDRAW_DELAY cannot be negative, got %v", c.RedrawDelay))
	}
	if c.ReloadWorkerCount < 1 {
		errs = append(errs, fmt.Errorf("RELOAD_WORKER_COUNT must be at least 1, got %d", c.ReloadWorkerCount))
	}
	if c.ReloadQueueSize < 1 {
		errs = append(errs, fmt.Errorf("RELOAD_QUEUE_SIZE must be at least 1, got %d", c.ReloadQueueSize))
	}
	if c.RenderCacheMaxCost < 1 {
		errs = append(errs, fmt.Errorf("RENDER_CACHE_MAX_COST must be positive, got %d", c.RenderCacheMaxCost))
	}

	if c.SessionIdleTTL <= 0 {
		errs = append(errs, fmt.Errorf("SESSION_IDLE_TTL must be positive, got %v", c.SessionIdleTTL))
	}

	return errors.Join(errs...)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntOr(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
		log.Printf("invalid value for %s=%q, using default %d", key, v, def)
	}
	return def
}

func envDurationOr(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		log.Printf("invalid value for %s=%q, using default %v", key, v, def)
	}
	return def
}

func envListOr(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, strings.TrimRight(p, "/"))
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
