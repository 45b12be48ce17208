package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"choicelab/domain/trial"
	"choicelab/internal/errors"

	"gopkg.in/yaml.v3"
)

// Config represents the complete application configuration
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	Analysis AnalysisConfig
	Logging  LoggingConfig
}

// DatabaseConfig selects where analysis runs are recorded
type DatabaseConfig struct {
	Driver string // none, sqlite or postgres
	URL    string
}

// Enabled reports whether runs should be persisted
func (d DatabaseConfig) Enabled() bool {
	return d.Driver != "" && d.Driver != "none"
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string
	UIPort  string
	GinMode string
	// MaxUploadMB bounds multipart uploads to the API
	MaxUploadMB int64
}

// AnalysisConfig holds batch analysis settings
type AnalysisConfig struct {
	Workers     int
	OutputDir   string
	SourcesFile string
	Alpha       float64
}

// LoggingConfig holds logger settings
type LoggingConfig struct {
	Level  string
	Pretty bool
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	cfg := &Config{
		Database: DatabaseConfig{
			Driver: strings.ToLower(getEnvOrDefault("DATABASE_DRIVER", "none")),
			URL:    getEnvOrDefault("DATABASE_URL", ""),
		},
		Server: ServerConfig{
			Port:        getEnvOrDefault("PORT", "8080"),
			UIPort:      getEnvOrDefault("UI_PORT", "8081"),
			GinMode:     getEnvOrDefault("GIN_MODE", "release"),
			MaxUploadMB: int64(getEnvIntOrDefault("MAX_UPLOAD_MB", 32)),
		},
		Analysis: AnalysisConfig{
			Workers:     getEnvIntOrDefault("TALLY_WORKERS", 0),
			OutputDir:   getEnvOrDefault("OUTPUT_DIR", "out"),
			SourcesFile: getEnvOrDefault("SOURCES_FILE", ""),
			Alpha:       getEnvFloatOrDefault("ALPHA", 0.05),
		},
		Logging: LoggingConfig{
			Level:  getEnvOrDefault("LOG_LEVEL", "INFO"),
			Pretty: getEnvBoolOrDefault("LOG_PRETTY", false),
		},
	}

	if cfg.Database.Driver == "sqlite" && cfg.Database.URL == "" {
		cfg.Database.URL = "choicelab.db"
	}

	if err := validateConfig(cfg); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return cfg, nil
}

func validateConfig(cfg *Config) error {
	switch cfg.Database.Driver {
	case "none", "sqlite":
	case "postgres":
		if cfg.Database.URL == "" {
			return errors.ConfigInvalid("DATABASE_URL is required for the postgres driver")
		}
	default:
		return errors.ConfigInvalid(fmt.Sprintf("DATABASE_DRIVER %q is not one of none, sqlite, postgres", cfg.Database.Driver))
	}
	if cfg.Analysis.Alpha <= 0 || cfg.Analysis.Alpha >= 1 {
		return errors.ConfigInvalid(fmt.Sprintf("ALPHA must be in (0,1), got %v", cfg.Analysis.Alpha))
	}
	if cfg.Server.MaxUploadMB <= 0 {
		return errors.ConfigInvalid("MAX_UPLOAD_MB must be positive")
	}
	return nil
}

// sourcesFile is the YAML layout of SOURCES_FILE
type sourcesFile struct {
	Sources []trial.Source `yaml:"sources"`
}

// LoadSources returns the built-in source profiles plus any defined in path.
// Profiles in the file replace built-ins of the same name. An empty path
// returns the built-ins only.
func LoadSources(path string) (*trial.Registry, error) {
	reg := trial.NewRegistry()
	if path == "" {
		return reg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read sources file %s", path)
	}

	var file sourcesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, errors.WithCode(errors.CodeConfigInvalid, fmt.Errorf("parse sources file %s: %w", path, err))
	}

	for _, src := range file.Sources {
		if err := reg.Register(src); err != nil {
			return nil, errors.WithCode(errors.CodeConfigInvalid, err)
		}
	}
	return reg, nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
