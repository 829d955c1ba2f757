package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// AppConfig carries everything the service needs at startup. The Netatmo
// credentials are opaque here; they are handed to the token manager and
// client at construction.
type AppConfig struct {
	NetatmoBaseURL      string
	NetatmoClientID     string
	NetatmoClientSecret string
	NetatmoRefreshToken string

	// HTTPTimeout bounds every outbound call, token refresh included.
	HTTPTimeout time.Duration

	// CacheTTL is how long device-list and station snapshots stay valid.
	CacheTTL time.Duration

	// RefreshInterval controls the cache-warming job; 0 disables it.
	RefreshInterval time.Duration

	Port string
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}

	cfg := &AppConfig{}

	cfg.NetatmoBaseURL = getenvDefault("NETATMO_BASE_URL", "https://api.netatmo.com")
	cfg.NetatmoClientID = os.Getenv("NETATMO_CLIENT_ID")
	cfg.NetatmoClientSecret = os.Getenv("NETATMO_CLIENT_SECRET")
	cfg.NetatmoRefreshToken = os.Getenv("NETATMO_REFRESH_TOKEN")

	if cfg.NetatmoClientID == "" || cfg.NetatmoClientSecret == "" || cfg.NetatmoRefreshToken == "" {
		return nil, fmt.Errorf("NETATMO_CLIENT_ID, NETATMO_CLIENT_SECRET and NETATMO_REFRESH_TOKEN are required")
	}

	timeout, err := getenvDuration("HTTP_TIMEOUT", "10s")
	if err != nil {
		return nil, fmt.Errorf("invalid HTTP_TIMEOUT: %w", err)
	}
	cfg.HTTPTimeout = timeout

	ttl, err := getenvDuration("CACHE_TTL", "60s")
	if err != nil {
		return nil, fmt.Errorf("invalid CACHE_TTL: %w", err)
	}
	cfg.CacheTTL = ttl

	interval, err := getenvDuration("REFRESH_INTERVAL", "15m")
	if err != nil {
		return nil, fmt.Errorf("invalid REFRESH_INTERVAL: %w", err)
	}
	cfg.RefreshInterval = interval

	cfg.Port = getenvDefault("PORT", "8080")

	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvDuration(key, def string) (time.Duration, error) {
	return time.ParseDuration(getenvDefault(key, def))
}
