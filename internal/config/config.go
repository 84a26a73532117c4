// Package config centralises all environment / file configuration for both
// binaries. It should be imported only by `cmd/*` (and test code). Controllers,
// the API client and the stand-in server receive already-built values via
// dependency injection.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Store backends for the stand-in server.
const (
	StoreCSV   = "csv"
	StoreMongo = "mongo"
)

// Config holds every runtime option.
// Keep it flat and simple: prefer primitive types over embedding structs.
type Config struct {
	// Client
	APIBaseURL      string        `yaml:"api_base_url"`
	RequestTimeout  time.Duration `yaml:"request_timeout"`
	Debounce        time.Duration `yaml:"debounce"`
	SuggestionLimit int           `yaml:"suggestion_limit"`
	PageSize        int           `yaml:"page_size"`

	// Logging
	LogLevel string `yaml:"log_level"`
	LogJSON  bool   `yaml:"log_json"`

	// Stand-in server
	Port         string        `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// Data stores
	Store    string `yaml:"store"`
	DataPath string `yaml:"data_path"`
	MongoURI string `yaml:"mongodb_uri"`
	DBName   string `yaml:"mongodb_db"`
}

// Defaults returns the configuration used when nothing is set.
func Defaults() Config {
	return Config{
		APIBaseURL:      "http://localhost:8000/api",
		RequestTimeout:  10 * time.Second,
		Debounce:        300 * time.Millisecond,
		SuggestionLimit: 10,
		PageSize:        20,
		LogLevel:        "info",
		Port:            "8000",
		ReadTimeout:     5 * time.Second,
		WriteTimeout:    10 * time.Second,
		Store:           StoreCSV,
		DataPath:        "data/restaurants_names.csv",
		DBName:          "restaurants",
	}
}

// Load parses the optional YAML file named by RESTO_CONFIG, then the environment
// (and an optional .env file) on top of it.
func Load() (Config, error) {
	// godotenv.Load() is a no-op error if .env doesn't exist: safe in production.
	_ = godotenv.Load()

	cfg := Defaults()
	if path := os.Getenv("RESTO_CONFIG"); path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}
	applyEnv(&cfg)

	if cfg.Store == StoreMongo {
		uri, err := must("MONGODB_URI", cfg.MongoURI)
		if err != nil {
			return Config{}, err
		}
		cfg.MongoURI = uri
	}
	if cfg.Store != StoreCSV && cfg.Store != StoreMongo {
		return Config{}, errors.Newf("STORE must be %q or %q, got %q", StoreCSV, StoreMongo, cfg.Store)
	}
	if cfg.PageSize <= 0 {
		return Config{}, errors.Newf("PAGE_SIZE must be positive, got %d", cfg.PageSize)
	}
	return cfg, nil
}

// loadFile overlays the YAML document at path onto cfg. Keys that are absent
// keep their current value.
func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "read config file %s", path)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return errors.Wrapf(err, "parse config file %s", path)
	}
	return nil
}

func applyEnv(cfg *Config) {
	cfg.APIBaseURL = getEnv("API_BASE_URL", cfg.APIBaseURL)
	cfg.RequestTimeout = getDuration("REQUEST_TIMEOUT_SEC", time.Second, cfg.RequestTimeout)
	cfg.Debounce = getDuration("DEBOUNCE_MS", time.Millisecond, cfg.Debounce)
	cfg.SuggestionLimit = getInt("SUGGESTION_LIMIT", cfg.SuggestionLimit)
	cfg.PageSize = getInt("PAGE_SIZE", cfg.PageSize)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.LogJSON = getBool("LOG_JSON", cfg.LogJSON)
	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.ReadTimeout = getDuration("READ_TIMEOUT_SEC", time.Second, cfg.ReadTimeout)
	cfg.WriteTimeout = getDuration("WRITE_TIMEOUT_SEC", time.Second, cfg.WriteTimeout)
	cfg.Store = getEnv("STORE", cfg.Store)
	cfg.DataPath = getEnv("DATA_PATH", cfg.DataPath)
	cfg.MongoURI = getEnv("MONGODB_URI", cfg.MongoURI)
	cfg.DBName = getEnv("MONGODB_DB", cfg.DBName)
}

// must returns env[key], falling back to current, or fails when both are empty.
func must(key, current string) (string, error) {
	if val := getEnv(key, current); val != "" {
		return val, nil
	}
	return "", errors.Newf("env var %s is required", key)
}

// getEnv returns env[key] if set, otherwise defaultVal.
func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// getDuration reads an integer count of unit from env, falling back to defaultVal.
func getDuration(key string, unit time.Duration, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return time.Duration(n) * unit
		}
	}
	return defaultVal
}

func getInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultVal
}

func getBool(key string, defaultVal bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return defaultVal
}
