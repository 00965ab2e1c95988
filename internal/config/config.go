// Package config centralises all environment / file configuration for the
// binaries. It should be imported only by `cmd/*` and `internal/app`.
// Business-logic layers receive already-built values via dependency injection.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Storage and provider selectors.
const (
	StorageSQLite = "sqlite"
	StorageMongo  = "mongo"

	ProviderGemini = "gemini"
	ProviderVertex = "vertex"
	ProviderDummy  = "dummy"
)

// Config holds every runtime option the binaries need.
// Keep it flat and simple; prefer primitive types over embedding structs.
type Config struct {
	// Network
	Port string `yaml:"port"`

	// Data stores
	StorageDriver string `yaml:"storage_driver"`
	SQLitePath    string `yaml:"sqlite_path"`
	MongoURI      string `yaml:"mongodb_uri"`
	DBName        string `yaml:"mongodb_db"`

	// GitHub
	GitHubToken   string        `yaml:"-"`
	GitHubAPIURL  string        `yaml:"github_api_url"`
	GitHubTimeout time.Duration `yaml:"-"`

	// LLM provider
	LLMProvider     string `yaml:"llm_provider"`
	LLMModel        string `yaml:"llm_model"`
	GeminiAPIKey    string `yaml:"-"`
	ProjectID       string `yaml:"gcp_project_id"`
	Location        string `yaml:"gcp_location"`
	CredentialsFile string `yaml:"credentials_file"`

	// Server tuning
	ReadTimeout  time.Duration `yaml:"-"`
	WriteTimeout time.Duration `yaml:"-"`

	LogLevel string `yaml:"log_level"`
}

// fileConfig mirrors the YAML file; durations are given in whole seconds.
type fileConfig struct {
	Config           `yaml:",inline"`
	GitHubTimeoutSec int `yaml:"github_timeout_sec"`
	ReadTimeoutSec   int `yaml:"read_timeout_sec"`
	WriteTimeoutSec  int `yaml:"write_timeout_sec"`
}

func defaults() fileConfig {
	return fileConfig{
		Config: Config{
			Port:          "8000",
			StorageDriver: StorageSQLite,
			SQLitePath:    "./issues.db",
			DBName:        "issue_scanner",
			LLMProvider:   ProviderGemini,
			Location:      "us-central1",
			LogLevel:      "info",
		},
		GitHubTimeoutSec: 30,
		ReadTimeoutSec:   5,
		WriteTimeoutSec:  120,
	}
}

// Load reads an optional .env file, an optional YAML file (CONFIG_FILE,
// default config.yaml) and then the environment, which wins over the file.
// Secrets are read from the environment only.
func Load() (Config, error) {
	// godotenv.Load() is a no-op if .env doesn't exist; safe in production.
	_ = godotenv.Load()

	fc := defaults()

	path := getEnv("CONFIG_FILE", "config.yaml")
	if err := readFile(path, &fc); err != nil {
		// Only an explicitly named file has to exist.
		if !(errors.Is(err, os.ErrNotExist) && os.Getenv("CONFIG_FILE") == "") {
			return Config{}, err
		}
	}

	cfg := fc.Config
	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.StorageDriver = strings.ToLower(getEnv("STORAGE_DRIVER", cfg.StorageDriver))
	cfg.SQLitePath = getEnv("SQLITE_PATH", cfg.SQLitePath)
	cfg.MongoURI = getEnv("MONGODB_URI", cfg.MongoURI)
	cfg.DBName = getEnv("MONGODB_DB", cfg.DBName)
	cfg.GitHubToken = os.Getenv("GITHUB_TOKEN")
	cfg.GitHubAPIURL = getEnv("GITHUB_API_URL", cfg.GitHubAPIURL)
	cfg.LLMProvider = strings.ToLower(getEnv("LLM_PROVIDER", cfg.LLMProvider))
	cfg.LLMModel = getEnv("LLM_MODEL", cfg.LLMModel)
	cfg.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	cfg.ProjectID = getEnv("GCP_PROJECT_ID", cfg.ProjectID)
	cfg.Location = getEnv("GCP_LOCATION", cfg.Location)
	cfg.CredentialsFile = getEnv("GOOGLE_APPLICATION_CREDENTIALS", cfg.CredentialsFile)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)

	var err error
	if cfg.GitHubTimeout, err = getDuration("GITHUB_TIMEOUT_SEC", fc.GitHubTimeoutSec); err != nil {
		return Config{}, err
	}
	if cfg.ReadTimeout, err = getDuration("READ_TIMEOUT_SEC", fc.ReadTimeoutSec); err != nil {
		return Config{}, err
	}
	if cfg.WriteTimeout, err = getDuration("WRITE_TIMEOUT_SEC", fc.WriteTimeoutSec); err != nil {
		return Config{}, err
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// validate reports every missing critical variable in one error so a
// misconfigured deployment is fixed in one round.
func (c Config) validate() error {
	var missing []string
	if c.GitHubToken == "" {
		missing = append(missing, "GITHUB_TOKEN")
	}

	switch c.StorageDriver {
	case StorageSQLite:
		if c.SQLitePath == "" {
			missing = append(missing, "SQLITE_PATH")
		}
	case StorageMongo:
		if c.MongoURI == "" {
			missing = append(missing, "MONGODB_URI")
		}
	default:
		return fmt.Errorf("unsupported STORAGE_DRIVER %q (want %s or %s)", c.StorageDriver, StorageSQLite, StorageMongo)
	}

	switch c.LLMProvider {
	case ProviderGemini:
		if c.GeminiAPIKey == "" {
			missing = append(missing, "GEMINI_API_KEY")
		}
	case ProviderVertex:
		if c.ProjectID == "" {
			missing = append(missing, "GCP_PROJECT_ID")
		}
		if c.Location == "" {
			missing = append(missing, "GCP_LOCATION")
		}
	case ProviderDummy:
	default:
		return fmt.Errorf("unsupported LLM_PROVIDER %q (want %s, %s or %s)", c.LLMProvider, ProviderGemini, ProviderVertex, ProviderDummy)
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}
	return nil
}

func readFile(path string, fc *fileConfig) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, fc); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

// getEnv returns env[key] if set, otherwise defaultVal.
func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// getDuration reads an integer (seconds) from env, falling back to defaultSec.
func getDuration(key string, defaultSec int) (time.Duration, error) {
	if v := os.Getenv(key); v != "" {
		sec, err := strconv.Atoi(v)
		if err != nil || sec <= 0 {
			return 0, fmt.Errorf("invalid %s=%q: want a positive number of seconds", key, v)
		}
		return time.Duration(sec) * time.Second, nil
	}
	return time.Duration(defaultSec) * time.Second, nil
}
