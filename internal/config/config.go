package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// DefaultMaxPhotoBytes caps receipt photo uploads at 10 MiB.
const DefaultMaxPhotoBytes int64 = 10 << 20

// Config holds application configuration
type Config struct {
	Env string

	// Server
	Port string

	// Database
	DBDriver    string
	DBPath      string
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string
	DBSSLMode   string
	AutoMigrate bool

	// APIKey guards /api/v1 when non-empty.
	APIKey string

	// Receipts
	MaxPhotoBytes int64
}

var appConfig *Config

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if not already loaded
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	config := &Config{
		Env:  getEnv("ENV", "development"),
		Port: getEnv("PORT", "8080"),

		DBDriver:   strings.ToLower(getEnv("DB_DRIVER", "sqlite")),
		DBPath:     getEnv("DB_PATH", "finance.db"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "finance"),
		DBPassword: getEnv("DB_PASSWORD", "finance"),
		DBName:     getEnv("DB_NAME", "finance"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		APIKey: os.Getenv("API_KEY"),
	}

	autoMigrate, err := strconv.ParseBool(getEnv("AUTO_MIGRATE", "true"))
	if err != nil {
		log.Printf("Warning: invalid AUTO_MIGRATE value, falling back to true\n")
		autoMigrate = true
	}
	config.AutoMigrate = autoMigrate

	maxStr := getEnv("MAX_PHOTO_BYTES", strconv.FormatInt(DefaultMaxPhotoBytes, 10))
	maxBytes, err := strconv.ParseInt(maxStr, 10, 64)
	if err != nil || maxBytes <= 0 {
		log.Printf("Warning: invalid MAX_PHOTO_BYTES value '%s', falling back to %d\n", maxStr, DefaultMaxPhotoBytes)
		maxBytes = DefaultMaxPhotoBytes
	}
	config.MaxPhotoBytes = maxBytes

	appConfig = config
	return config, nil
}

// Get returns the application configuration
func Get() *Config {
	if appConfig == nil {
		var err error
		appConfig, err = Load()
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}
	}
	return appConfig
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
