// Package config reads the server settings from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	_ "github.com/joho/godotenv/autoload"
)

const (
	DefaultPort          = "8080"
	DefaultDBPath        = "/app/data/showboard.db"
	DefaultTVMazeBaseURL = "https://api.tvmaze.com/"
	DefaultTVMazeTimeout = 10 * time.Second
	DefaultJWTTTL        = 24 * time.Hour
	DefaultRateLimit     = 120
)

type Config struct {
	Port   string
	DBPath string

	TVMazeBaseURL        string
	TVMazeCountryBaseURL string
	TVMazeTimeout        time.Duration

	JWTSecret string
	JWTTTL    time.Duration

	ViewsSeed uint64

	AdminEmail    string
	AdminPassword string

	CORSOrigins        []string
	RateLimitPerMinute int

	LogLevel string
}

// Load reads the environment (a .env file is loaded first if present).
func Load() (Config, error) {
	return load(os.Getenv)
}

func load(getenv func(string) string) (Config, error) {
	envOr := func(key, fallback string) string {
		if val := strings.TrimSpace(getenv(key)); val != "" {
			return val
		}
		return fallback
	}

	cfg := Config{
		Port:          envOr("PORT", DefaultPort),
		DBPath:        envOr("DB_PATH", DefaultDBPath),
		TVMazeBaseURL: envOr("TVMAZE_BASE_URL", DefaultTVMazeBaseURL),
		JWTSecret:     getenv("JWT_SECRET"),
		AdminEmail:    strings.TrimSpace(getenv("ADMIN_EMAIL")),
		AdminPassword: getenv("ADMIN_PASSWORD"),
		LogLevel:      envOr("LOG_LEVEL", "info"),
	}
	cfg.TVMazeCountryBaseURL = envOr("TVMAZE_COUNTRY_BASE_URL", cfg.TVMazeBaseURL)

	if cfg.JWTSecret == "" {
		return Config{}, errors.New("JWT_SECRET is required")
	}
	if (cfg.AdminEmail == "") != (cfg.AdminPassword == "") {
		return Config{}, errors.New("ADMIN_EMAIL and ADMIN_PASSWORD must be set together")
	}

	var err error
	if cfg.TVMazeTimeout, err = parseDuration(envOr("TVMAZE_TIMEOUT", ""), DefaultTVMazeTimeout); err != nil {
		return Config{}, fmt.Errorf("TVMAZE_TIMEOUT: %w", err)
	}
	if cfg.JWTTTL, err = parseDuration(envOr("JWT_TTL", ""), DefaultJWTTTL); err != nil {
		return Config{}, fmt.Errorf("JWT_TTL: %w", err)
	}
	if raw := envOr("VIEWS_SEED", ""); raw != "" {
		if cfg.ViewsSeed, err = strconv.ParseUint(raw, 10, 64); err != nil {
			return Config{}, fmt.Errorf("VIEWS_SEED: %w", err)
		}
	}
	cfg.RateLimitPerMinute = DefaultRateLimit
	if raw := envOr("RATE_LIMIT_PER_MINUTE", ""); raw != "" {
		if cfg.RateLimitPerMinute, err = strconv.Atoi(raw); err != nil {
			return Config{}, fmt.Errorf("RATE_LIMIT_PER_MINUTE: %w", err)
		}
	}
	for _, origin := range strings.Split(envOr("CORS_ORIGINS", "*"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.CORSOrigins = append(cfg.CORSOrigins, origin)
		}
	}

	return cfg, nil
}

func parseDuration(raw string, fallback time.Duration) (time.Duration, error) {
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, errors.New("must be positive")
	}
	return d, nil
}
