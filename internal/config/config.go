// Package config reads process configuration from the environment. A .env
// file in the working directory is loaded first when present; variables
// already set in the environment win.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port                string
	PostgresURL         string
	KafkaBrokers        []string
	OrdersTopic         string
	RedisAddr           string
	OTLPEndpoint        string
	OTelEnabled         bool
	ImageSearchURL      string
	PlaceholderImageURL string
	LowStockThreshold   int
	MigrationsPath      string
}

func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	cfg := Config{
		Port:                getEnv("PORT", "8080"),
		PostgresURL:         os.Getenv("POSTGRES_URL"),
		KafkaBrokers:        splitList(os.Getenv("KAFKA_BROKERS")),
		OrdersTopic:         getEnv("ORDERS_TOPIC", "order.created"),
		RedisAddr:           os.Getenv("REDIS_ADDR"),
		OTLPEndpoint:        getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
		ImageSearchURL:      getEnv("IMAGE_SEARCH_URL", "https://www.bing.com/images/search"),
		PlaceholderImageURL: getEnv("PLACEHOLDER_IMAGE_URL", "https://placehold.co/512x512"),
		MigrationsPath:      getEnv("MIGRATIONS_PATH", "file://migrations"),
	}

	var err error
	if cfg.OTelEnabled, err = strconv.ParseBool(getEnv("OTEL_ENABLED", "true")); err != nil {
		return Config{}, fmt.Errorf("OTEL_ENABLED: %w", err)
	}
	if cfg.LowStockThreshold, err = strconv.Atoi(getEnv("LOW_STOCK_THRESHOLD", "5")); err != nil {
		return Config{}, fmt.Errorf("LOW_STOCK_THRESHOLD: %w", err)
	}
	if cfg.LowStockThreshold < 0 {
		return Config{}, errors.New("LOW_STOCK_THRESHOLD must not be negative")
	}

	return cfg, nil
}

// RequirePostgres reports an error when POSTGRES_URL is unset.
func (c Config) RequirePostgres() error {
	if c.PostgresURL == "" {
		return errors.New("POSTGRES_URL environment variable is required")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
