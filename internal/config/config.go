package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Config captures runtime configuration sourced from environment variables.
type Config struct {
	Environment    string
	HTTPPort       string
	DatabasePath   string
	LogDir         string
	JWTSecret      string
	MasterPassword string   // optional bootstrap password for the first run
	NotifyURLs     []string // shoutrrr service URLs for security event pushes
}

// Load reads env vars and falls back to defaults so the service can boot with zero configuration.
func Load() (Config, error) {
	cfg := Config{
		Environment:    getEnv("LINKLOCK_ENV", "development"),
		HTTPPort:       getEnv("LINKLOCK_HTTP_PORT", "8089"),
		DatabasePath:   getEnv("LINKLOCK_DB_PATH", filepath.Join("data", "linklock.db")),
		LogDir:         getEnv("LINKLOCK_LOG_DIR", filepath.Join("data", "logs")),
		JWTSecret:      getEnv("LINKLOCK_JWT_SECRET", ""),
		MasterPassword: os.Getenv("LINKLOCK_MASTER_PASSWORD"),
		NotifyURLs:     splitList(os.Getenv("LINKLOCK_NOTIFY_URLS")),
	}

	if err := os.MkdirAll(filepath.Dir(cfg.DatabasePath), 0o755); err != nil {
		return Config{}, fmt.Errorf("ensure data directory: %w", err)
	}

	return cfg, nil
}

// IsProduction reports whether the service runs in production mode.
func (c Config) IsProduction() bool {
	return c.Environment == "production" || c.Environment == "prod"
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}

	return fallback
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
