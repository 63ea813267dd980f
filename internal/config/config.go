// Package config loads application configuration from environment variables.
package config

import (
	"encoding/hex"
	"fmt"
	"os"
	"time"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	Env               string
	ListenAddr        string
	DBPath            string
	SecretKey         []byte // 32-byte AES key; nil when credential encryption is disabled.
	OAuthClientID     string
	OAuthClientSecret string
	PageSpeedAPIKey   string
	WarmupDelay       time.Duration
	SyncInterval      time.Duration
}

// HasOAuthCredentials returns true when both the client ID and secret are set.
// Used by the composition root to decide whether token refresh is available;
// without them the app starts but every sync reports not configured.
func (c *Config) HasOAuthCredentials() bool {
	return c.OAuthClientID != "" && c.OAuthClientSecret != ""
}

// IsProduction reports whether the daily scheduler should self-start.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Load reads configuration from environment variables and returns a validated
// Config. OAuth credentials (RANKPANEL_OAUTH_CLIENT_ID/SECRET) and
// RANKPANEL_PAGESPEED_API_KEY are optional. RANKPANEL_SECRET_KEY, when set,
// must be 64 hex characters (a 32-byte AES-256 key); without it credentials
// cannot be stored. Optional variables with defaults: RANKPANEL_ENV
// (development), RANKPANEL_LISTEN_ADDR (127.0.0.1:8080), RANKPANEL_DB_PATH
// (rankpanel.db), RANKPANEL_WARMUP_DELAY (5m), RANKPANEL_SYNC_INTERVAL (24h).
func Load() (*Config, error) {
	var secretKey []byte
	if v := os.Getenv("RANKPANEL_SECRET_KEY"); v != "" {
		decoded, err := hex.DecodeString(v)
		if err != nil {
			return nil, fmt.Errorf("RANKPANEL_SECRET_KEY is not valid hex: %w", err)
		}
		if len(decoded) != 32 {
			return nil, fmt.Errorf("RANKPANEL_SECRET_KEY must decode to 32 bytes, got %d", len(decoded))
		}
		secretKey = decoded
	}

	env := "development"
	if v, ok := os.LookupEnv("RANKPANEL_ENV"); ok {
		env = v
	}

	listenAddr := "127.0.0.1:8080"
	if v, ok := os.LookupEnv("RANKPANEL_LISTEN_ADDR"); ok {
		listenAddr = v
	}

	dbPath := "rankpanel.db"
	if v, ok := os.LookupEnv("RANKPANEL_DB_PATH"); ok {
		dbPath = v
	}

	warmupDelay := 5 * time.Minute
	if v, ok := os.LookupEnv("RANKPANEL_WARMUP_DELAY"); ok {
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("RANKPANEL_WARMUP_DELAY has invalid duration %q: %w", v, err)
		}
		warmupDelay = parsed
	}

	syncInterval := 24 * time.Hour
	if v, ok := os.LookupEnv("RANKPANEL_SYNC_INTERVAL"); ok {
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("RANKPANEL_SYNC_INTERVAL has invalid duration %q: %w", v, err)
		}
		syncInterval = parsed
	}

	return &Config{
		Env:               env,
		ListenAddr:        listenAddr,
		DBPath:            dbPath,
		SecretKey:         secretKey,
		OAuthClientID:     os.Getenv("RANKPANEL_OAUTH_CLIENT_ID"),
		OAuthClientSecret: os.Getenv("RANKPANEL_OAUTH_CLIENT_SECRET"),
		PageSpeedAPIKey:   os.Getenv("RANKPANEL_PAGESPEED_API_KEY"),
		WarmupDelay:       warmupDelay,
		SyncInterval:      syncInterval,
	}, nil
}
