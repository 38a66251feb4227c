package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Storage backends accepted by STORAGE_BACKEND.
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	DataCSV         string
	BoroughsGeoJSON string

	HTTPPort       string
	GinMode        string
	AllowedOrigins string

	StorageBackend   string
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string
	SQLitePath       string

	MaxRetries      int
	RetryBaseMs     int
	FetchTimeoutSec int

	MapWidth  int
	MapHeight int

	ReloadSchedule    string
	SessionTTLMinutes int

	LogLevel   string
	ExportPath string
	ChromeBin  string
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	return &Config{
		DataCSV:         getEnv("DATA_CSV", "./data/Airbnb_Open_Data.csv"),
		BoroughsGeoJSON: getEnv("BOROUGHS_GEOJSON", "./data/Boroughs.geojson"),

		HTTPPort:       getEnv("PORT", "8080"),
		GinMode:        getEnv("GIN_MODE", "release"),
		AllowedOrigins: getEnv("ALLOWED_ORIGINS", "*"),

		StorageBackend:   strings.ToLower(getEnv("STORAGE_BACKEND", BackendMemory)),
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "dashboard"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "dashboard123"),
		PostgresDB:       getEnv("POSTGRES_DB", "rental_db"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
		SQLitePath:       getEnv("SQLITE_PATH", "./output/listings.db"),

		MaxRetries:      getEnvInt("MAX_RETRIES", 3),
		RetryBaseMs:     getEnvInt("RETRY_BASE_MS", 1000),
		FetchTimeoutSec: getEnvInt("FETCH_TIMEOUT_SEC", 30),

		MapWidth:  getEnvInt("MAP_WIDTH", 800),
		MapHeight: getEnvInt("MAP_HEIGHT", 350),

		ReloadSchedule:    getEnv("RELOAD_SCHEDULE", ""),
		SessionTTLMinutes: getEnvInt("SESSION_TTL_MINUTES", 60),

		LogLevel:   getEnv("LOG_LEVEL", "info"),
		ExportPath: getEnv("EXPORT_PATH", "./output/clean_listings.csv"),
		ChromeBin:  getEnv("CHROME_BIN", ""),
	}
}

// Validate reports configuration that cannot work.
func (c *Config) Validate() error {
	if c.DataCSV == "" {
		return errors.New("DATA_CSV is required")
	}
	if c.BoroughsGeoJSON == "" {
		return errors.New("BOROUGHS_GEOJSON is required")
	}
	switch c.StorageBackend {
	case BackendMemory, BackendPostgres, BackendSQLite:
	default:
		return fmt.Errorf("STORAGE_BACKEND %q must be one of memory, postgres, sqlite", c.StorageBackend)
	}
	if c.MapWidth <= 0 || c.MapHeight <= 0 {
		return fmt.Errorf("MAP_WIDTH and MAP_HEIGHT must be positive, got %dx%d", c.MapWidth, c.MapHeight)
	}
	return nil
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
}

func getEnv(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(strings.TrimSpace(val))
		if err == nil {
			return n
		}
	}
	return fallback
}
