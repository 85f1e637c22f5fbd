package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Network sources
const (
	SourceFiles    = "files"
	SourceGTFS     = "gtfs"
	SourceSQLite   = "sqlite"
	SourcePostgres = "postgres"
)

// Config holds all configuration for the route API
type Config struct {
	// HTTP server
	Port           int           `yaml:"port" validate:"gt=0,lt=65536"`
	AllowedOrigins []string      `yaml:"allowedOrigins" validate:"dive,required"`
	RequestTimeout time.Duration `yaml:"requestTimeout" validate:"gt=0"`
	StaticDir      string        `yaml:"staticDir"`

	// Network source
	NetworkSource  string        `yaml:"networkSource" validate:"oneof=files gtfs sqlite postgres"`
	ReloadInterval time.Duration `yaml:"reloadInterval" validate:"gte=0"`

	// files source
	StationsFile  string `yaml:"stationsFile"`
	LinesDir      string `yaml:"linesDir" validate:"required_if=NetworkSource files"`
	LoaderWorkers int    `yaml:"loaderWorkers" validate:"gte=0"`
	WatchLines    bool   `yaml:"watchLines"`

	// gtfs source
	GTFSZip string `yaml:"gtfsZip" validate:"required_if=NetworkSource gtfs"`

	// database sources
	SQLiteDatabase string `yaml:"sqliteDatabase" validate:"required_if=NetworkSource sqlite"`
	DatabaseURL    string `yaml:"databaseURL" validate:"required_if=NetworkSource postgres"`
}

// Load reads configuration from .env files, environment variables and, when
// METROROUTE_CONFIG is set, a YAML file whose values override the environment.
func Load() (*Config, error) {
	// Base .env first, then .env.local overrides it for local development
	_ = godotenv.Load(".env")
	_ = godotenv.Overload(".env.local")

	cfg := FromEnv()

	if path := os.Getenv("METROROUTE_CONFIG"); path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FromEnv builds a Config from environment variables with sensible defaults
func FromEnv() *Config {
	return &Config{
		Port:           getEnvInt("PORT", 5001),
		AllowedOrigins: getEnvList("ALLOWED_ORIGINS", []string{"http://localhost:5173"}),
		RequestTimeout: time.Duration(getEnvInt("REQUEST_TIMEOUT_MS", 5000)) * time.Millisecond,
		StaticDir:      getEnv("STATIC_DIR", ""),

		NetworkSource:  getEnv("NETWORK_SOURCE", SourceFiles),
		ReloadInterval: time.Duration(getEnvInt("RELOAD_INTERVAL_SEC", 0)) * time.Second,

		StationsFile:  getEnv("STATIONS_FILE", ""),
		LinesDir:      getEnv("LINES_DIR", "data/lines"),
		LoaderWorkers: getEnvInt("LOADER_WORKERS", 8),
		WatchLines:    getEnvBool("WATCH_LINES", false),

		GTFSZip: getEnv("GTFS_ZIP", ""),

		SQLiteDatabase: getEnv("SQLITE_DATABASE", "data/network.db"),
		DatabaseURL:    getEnv("DATABASE_URL", ""),
	}
}

// Validate checks the struct tags of the configuration
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// mergeFile decodes a YAML file over the current values. Keys absent from the
// file keep their environment value.
func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
