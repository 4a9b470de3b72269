package common

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	Catalog  CatalogConfig
	Fetch    FetchConfig
	Status   StatusConfig
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	Path        string
	BusyTimeout time.Duration
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	HTTPAddr       string
	AccessPassword string
}

// CatalogConfig holds catalog-related configuration
type CatalogConfig struct {
	Path string
}

// FetchConfig holds configuration for the external text-retrieval services.
type FetchConfig struct {
	OCRSpaceAPIKey    string
	OCRSpaceEndpoint  string
	AdobeClientID     string
	AdobeClientSecret string
	RequestTimeout    time.Duration
	InterRequestDelay time.Duration
}

// StatusConfig holds the renewal-rule thresholds for the status engine.
type StatusConfig struct {
	ExpiringWindowDays    int
	AnnualLookaheadDays   int
	FiveYearLookaheadDays int
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path:        getEnv("CERTTRACK_DB", "./certtrack.db"),
			BusyTimeout: getEnvAsDuration("CERTTRACK_DB_BUSY_TIMEOUT", 5*time.Second),
		},
		Server: ServerConfig{
			HTTPAddr:       getEnv("CERTTRACK_HTTP_ADDR", ":8080"),
			AccessPassword: getEnv("CERTTRACK_ACCESS_PASSWORD", ""),
		},
		Catalog: CatalogConfig{
			Path: getEnv("CERTTRACK_CATALOG", "./certificates.json"),
		},
		Fetch: FetchConfig{
			OCRSpaceAPIKey:    getEnv("OCR_API_KEY", ""),
			OCRSpaceEndpoint:  getEnv("OCR_API_ENDPOINT", "https://api.ocr.space/parse/image"),
			AdobeClientID:     getEnv("ADOBE_CLIENT_ID", ""),
			AdobeClientSecret: getEnv("ADOBE_CLIENT_SECRET", ""),
			RequestTimeout:    getEnvAsDuration("FETCH_TIMEOUT", 60*time.Second),
			InterRequestDelay: getEnvAsDuration("FETCH_DELAY", 1500*time.Millisecond),
		},
		Status: StatusConfig{
			ExpiringWindowDays:    getEnvAsInt("STATUS_EXPIRING_WINDOW_DAYS", 182),
			AnnualLookaheadDays:   getEnvAsInt("STATUS_ANNUAL_LOOKAHEAD_DAYS", 60),
			FiveYearLookaheadDays: getEnvAsInt("STATUS_FIVE_YEAR_LOOKAHEAD_DAYS", 182),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return NewAppError("CONFIG_ERROR", "CERTTRACK_DB is required", ErrInvalidInput)
	}
	if c.Catalog.Path == "" {
		return NewAppError("CONFIG_ERROR", "CERTTRACK_CATALOG is required", ErrInvalidInput)
	}
	if c.Server.HTTPAddr == "" {
		return NewAppError("CONFIG_ERROR", "CERTTRACK_HTTP_ADDR is required", ErrInvalidInput)
	}
	return nil
}
