package config

import (
	"errors"
	"fmt"
	"log"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// devSessionSecret is only accepted when APP_ENV is development.
const devSessionSecret = "semsearch-development-session-secret"

// DefaultDeployURL points the deploy button at the project's clone flow.
const DefaultDeployURL = "https://vercel.com/new/clone?repository-url=https://github.com/nfrund/semsearch"

// Config holds all configuration for the application.
type Config struct {
	AppEnv        string
	ServerAddr    string
	AppBaseURL    string
	SessionSecret string

	CatalogPath  string
	CatalogWatch bool

	ResultCacheTTL time.Duration
	ResolveTimeout time.Duration
	MaxResults     int
	SkeletonCards  int

	RateLimitRPS   float64
	RateLimitBurst int

	DeployURL string

	LogFormat string
	LogLevel  string
}

// New loads configuration from the environment, reading a .env file first if
// one exists.
func New() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}
	return FromEnv(os.LookupEnv)
}

// FromEnv builds a Config from the given lookup function. It is separated
// from New so tests can supply an environment without touching the process.
func FromEnv(lookup func(string) (string, bool)) (*Config, error) {
	get := func(key, def string) string {
		if v, ok := lookup(key); ok && v != "" {
			return v
		}
		return def
	}

	cfg := &Config{
		AppEnv:        get("APP_ENV", "development"),
		ServerAddr:    get("SERVER_ADDR", ":8080"),
		AppBaseURL:    get("APP_BASE_URL", "http://localhost:8080"),
		SessionSecret: get("SESSION_SECRET", ""),
		CatalogPath:   get("CATALOG_PATH", "data/catalog.yaml"),
		DeployURL:     get("DEPLOY_URL", DefaultDeployURL),
		LogFormat:     get("LOG_FORMAT", "text"),
		LogLevel:      get("LOG_LEVEL", "debug"),
	}

	var errs []error

	var err error
	if cfg.CatalogWatch, err = strconv.ParseBool(get("CATALOG_WATCH", "true")); err != nil {
		errs = append(errs, fmt.Errorf("CATALOG_WATCH: %w", err))
	}
	// A zero cache TTL disables result caching.
	if cfg.ResultCacheTTL, err = duration(get("RESULT_CACHE_TTL", "5m"), true); err != nil {
		errs = append(errs, fmt.Errorf("RESULT_CACHE_TTL: %w", err))
	}
	if cfg.ResolveTimeout, err = duration(get("RESOLVE_TIMEOUT", "10s"), false); err != nil {
		errs = append(errs, fmt.Errorf("RESOLVE_TIMEOUT: %w", err))
	}
	if cfg.MaxResults, err = positiveInt(get("MAX_RESULTS", "24")); err != nil {
		errs = append(errs, fmt.Errorf("MAX_RESULTS: %w", err))
	}
	if cfg.SkeletonCards, err = positiveInt(get("SKELETON_CARDS", "8")); err != nil {
		errs = append(errs, fmt.Errorf("SKELETON_CARDS: %w", err))
	}

	if cfg.RateLimitRPS, err = strconv.ParseFloat(get("RATE_LIMIT_RPS", "10"), 64); err != nil || cfg.RateLimitRPS <= 0 {
		errs = append(errs, fmt.Errorf("RATE_LIMIT_RPS: must be a positive number, got %q", get("RATE_LIMIT_RPS", "10")))
	}
	if cfg.RateLimitBurst, err = positiveInt(get("RATE_LIMIT_BURST", "30")); err != nil {
		errs = append(errs, fmt.Errorf("RATE_LIMIT_BURST: %w", err))
	}

	if u, err := url.Parse(cfg.AppBaseURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Errorf("APP_BASE_URL: must be an absolute http(s) URL, got %q", cfg.AppBaseURL))
	}

	if cfg.SessionSecret == "" {
		if cfg.AppEnv != "development" {
			errs = append(errs, errors.New("SESSION_SECRET is required outside development"))
		}
		cfg.SessionSecret = devSessionSecret
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return cfg, nil
}

// SecureCookies reports whether cookies must be restricted to HTTPS, which
// is the case when the application is served from an https base URL.
func (c *Config) SecureCookies() bool {
	u, err := url.Parse(c.AppBaseURL)
	return err == nil && u.Scheme == "https"
}

func duration(s string, allowZero bool) (time.Duration, error) {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d < 0 || (d == 0 && !allowZero) {
		return 0, fmt.Errorf("must be positive, got %s", s)
	}
	return d, nil
}

func positiveInt(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, fmt.Errorf("must be positive, got %d", n)
	}
	return n, nil
}
