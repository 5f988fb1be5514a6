package main

import (
	"fmt"
	"os"
	"strconv"

	"product-importer/database"
)

// Config holds all environment variables for the product importer.
type Config struct {
	Port                  string
	RedisURL              string
	Postgres              database.PostgresConfig
	ImportStorageDir      string
	WorkerCount           int
	RateLimitPerMin       int
	UploadRateLimitPerMin int
}

// LoadConfig loads environment variables into Config and validates them.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Port:     getEnv("PORT", "8080"),
		RedisURL: getEnv("REDIS_URL", "redis://redis:6379/0"),
		Postgres: database.PostgresConfig{
			Host:     getEnv("POSTGRES_HOST", "localhost"),
			Port:     getEnv("POSTGRES_PORT", "5432"),
			User:     os.Getenv("POSTGRES_USER"),
			Password: os.Getenv("POSTGRES_PASSWORD"),
			DBName:   os.Getenv("POSTGRES_DB"),
			SSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
			TimeZone: getEnv("POSTGRES_TIMEZONE", "UTC"),
		},
		ImportStorageDir: getEnv("IMPORT_STORAGE_DIR", "./data/imports"),
	}

	workers, err := strconv.Atoi(getEnv("WORKER_COUNT", "4"))
	if err != nil || workers < 1 {
		return nil, fmt.Errorf("invalid WORKER_COUNT")
	}
	cfg.WorkerCount = workers

	cfg.RateLimitPerMin, err = strconv.Atoi(getEnv("RATE_LIMIT_PER_MIN", "100"))
	if err != nil || cfg.RateLimitPerMin < 1 {
		return nil, fmt.Errorf("invalid RATE_LIMIT_PER_MIN")
	}
	cfg.UploadRateLimitPerMin, err = strconv.Atoi(getEnv("UPLOAD_RATE_LIMIT_PER_MIN", "10"))
	if err != nil || cfg.UploadRateLimitPerMin < 1 {
		return nil, fmt.Errorf("invalid UPLOAD_RATE_LIMIT_PER_MIN")
	}

	if cfg.Postgres.User == "" || cfg.Postgres.Password == "" || cfg.Postgres.DBName == "" {
		return nil, fmt.Errorf("database config incomplete")
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
