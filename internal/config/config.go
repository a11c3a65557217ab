package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

type Config struct {
	ClashAPIToken string
	UpstreamBase  string
	DBPath        string
	ServerPort    string
	LogLevel      string
}

func Load(logger zerolog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg(".env file not found, using environment variables or defaults")
	}

	cfg := &Config{
		ClashAPIToken: getEnv("CLASH_API_TOKEN", ""),
		UpstreamBase:  getEnv("UPSTREAM_BASE", "https://proxy.royaleapi.dev/v1"),
		DBPath:        getEnv("DB_PATH", "clashhub.db"),
		ServerPort:    getEnv("SERVER_PORT", "8080"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
	}

	if cfg.ClashAPIToken == "" {
		return nil, fmt.Errorf("CLASH_API_TOKEN is required")
	}

	logger.Info().
		Str("upstream_base", cfg.UpstreamBase).
		Str("db_path", cfg.DBPath).
		Str("server_port", cfg.ServerPort).
		Str("log_level", cfg.LogLevel).
		Msg("configuration loaded")

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

var Module = fx.Provide(Load)
