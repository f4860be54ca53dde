// Package config loads runtime settings from the environment and an
// optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config keeps runtime settings for the server.
type Config struct {
	Port            int
	DBPath          string
	JWTSecret       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	LogLevel        string
	CORSOrigins     []string
	ShutdownTimeout time.Duration
}

// Addr returns the listen address for Port.
func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

var ErrMissingSecret = errors.New("JWT_SECRET is required")

// Load reads configuration from environment variables with defaults.
// If envFile is non-empty and exists it is read first; environment
// variables always take precedence.
func Load(envFile string) (Config, error) {
	v := viper.New()
	v.SetDefault("PORT", 8080)
	v.SetDefault("DB_PATH", "./data/tracker.db")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("ACCESS_TOKEN_TTL", "5m")
	v.SetDefault("REFRESH_TOKEN_TTL", "24h")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("CORS_ORIGINS", "*")
	v.SetDefault("SHUTDOWN_TIMEOUT", "10s")
	v.AutomaticEnv()

	if envFile != "" {
		v.SetConfigFile(envFile)
		v.SetConfigType("env")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
				return Config{}, fmt.Errorf("read %s: %w", envFile, err)
			}
		}
	}

	cfg := Config{
		Port:            v.GetInt("PORT"),
		DBPath:          strings.TrimSpace(v.GetString("DB_PATH")),
		JWTSecret:       strings.TrimSpace(v.GetString("JWT_SECRET")),
		AccessTokenTTL:  v.GetDuration("ACCESS_TOKEN_TTL"),
		RefreshTokenTTL: v.GetDuration("REFRESH_TOKEN_TTL"),
		LogLevel:        strings.ToLower(strings.TrimSpace(v.GetString("LOG_LEVEL"))),
		CORSOrigins:     splitList(v.GetString("CORS_ORIGINS")),
		ShutdownTimeout: v.GetDuration("SHUTDOWN_TIMEOUT"),
	}

	if cfg.JWTSecret == "" {
		return cfg, ErrMissingSecret
	}
	if cfg.AccessTokenTTL <= 0 || cfg.RefreshTokenTTL <= 0 {
		return cfg, fmt.Errorf("token TTLs must be positive (access=%s, refresh=%s)", cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return cfg, fmt.Errorf("invalid PORT %d", cfg.Port)
	}

	return cfg, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
