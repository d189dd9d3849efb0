package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Env              string
	ListenAddr       string
	DatabaseURL      string
	DataDir          string
	DataWatch        bool
	ImportWorkers    int
	ResolveCacheSize int
	LogDebug         bool
}

func getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

// Load reads the environment, after applying a .env file if one exists.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Env:              getenv("APP_ENV", "development"),
		ListenAddr:       getenv("LISTEN_ADDR", ":8080"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		DataDir:          getenv("DATA_DIR", "data"),
		DataWatch:        getenvBool("DATA_WATCH", false),
		ImportWorkers:    getenvInt("IMPORT_WORKERS", 0),
		ResolveCacheSize: getenvInt("RESOLVE_CACHE_SIZE", 1024),
		LogDebug:         getenvBool("LOG_DEBUG", false),
	}
	if cfg.ResolveCacheSize < 1 {
		return cfg, fmt.Errorf("RESOLVE_CACHE_SIZE must be positive, got %d", cfg.ResolveCacheSize)
	}
	if cfg.ImportWorkers < 0 {
		return cfg, fmt.Errorf("IMPORT_WORKERS must not be negative, got %d", cfg.ImportWorkers)
	}
	return cfg, nil
}

// UsePostgres reports whether the snapshot store is Postgres rather than the data directory.
func (c Config) UsePostgres() bool { return c.DatabaseURL != "" }

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		var out int
		_, err := fmt.Sscanf(v, "%d", &out)
		if err == nil {
			return out
		}
	}
	return def
}

func getenvBool(key string, def bool) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	return def
}
