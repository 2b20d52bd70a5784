package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Port string

	// Database configuration
	DBType            string // mysql, postgres, sqlite, sqlserver, etc.
	DBHost            string
	DBPort            string
	DBDatabase        string
	DBUser            string
	DBPassword        string
	DBConnectionLimit int

	// Admin auth configuration
	AdminUser     string
	AdminPassword string
	JWTSecret     string
	TokenTTLHours int

	// Media storage configuration
	StorageBackend string // disk or gcs
	UploadDir      string
	PublicBaseURL  string
	GCSBucket      string

	// Optional listing cache
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Content configuration
	ReorderDebounceMS int
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Port:              getEnv("PORT", "3000"),
		DBType:            getEnv("DB_TYPE", "mysql"),
		DBHost:            getEnv("DB_HOST", "localhost"),
		DBPort:            getEnv("DB_PORT", "3306"),
		DBDatabase:        getEnv("DB_DATABASE", ""),
		DBUser:            getEnv("DB_USER", ""),
		DBPassword:        getEnv("DB_PASSWORD", ""),
		DBConnectionLimit: getEnvAsInt("DB_CONNECTION_LIMIT", 5),
		AdminUser:         getEnv("ADMIN_USER", "admin"),
		AdminPassword:     getEnv("ADMIN_PASSWORD", ""),
		JWTSecret:         getEnv("JWT_SECRET", ""),
		TokenTTLHours:     getEnvAsInt("TOKEN_TTL_HOURS", 24),
		StorageBackend:    getEnv("STORAGE_BACKEND", "disk"),
		UploadDir:         getEnv("UPLOAD_DIR", "./uploads"),
		PublicBaseURL:     getEnv("PUBLIC_BASE_URL", "http://localhost:3000"),
		GCSBucket:         getEnv("GCS_BUCKET", ""),
		RedisAddr:         getEnv("REDIS_ADDR", ""),
		RedisPassword:     getEnv("REDIS_PASSWORD", ""),
		RedisDB:           getEnvAsInt("REDIS_DB", 0),
		ReorderDebounceMS: getEnvAsInt("REORDER_DEBOUNCE_MS", 500),
	}

	// Validate required fields
	if cfg.DBDatabase == "" {
		return nil, fmt.Errorf("DB_DATABASE is required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.AdminPassword == "" {
		return nil, fmt.Errorf("ADMIN_PASSWORD is required")
	}
	if cfg.StorageBackend != "disk" && cfg.StorageBackend != "gcs" {
		return nil, fmt.Errorf("STORAGE_BACKEND must be disk or gcs")
	}
	if cfg.StorageBackend == "gcs" && cfg.GCSBucket == "" {
		return nil, fmt.Errorf("GCS_BUCKET is required for gcs storage")
	}

	return cfg, nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
