// Package config loads tally's settings from an optional YAML file and
// TALLY_* environment variables. Environment values win over the file;
// unparseable values are ignored and the previous value kept.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/alexanderramin/tally/internal/graphql"
	"gopkg.in/yaml.v3"
)

// Config holds all tally configuration.
type Config struct {
	GraphQL GraphQLConfig `yaml:"graphql"`

	// DBPath is the snapshot database.
	DBPath string `yaml:"db_path"`

	// Report defaults.
	Slug      string `yaml:"slug"`
	Field     string `yaml:"field"`
	Hierarchy string `yaml:"hierarchy"`
	SortBy    string `yaml:"sort_by"`
	Strict    bool   `yaml:"strict"`

	Logging LoggingConfig `yaml:"logging"`
}

type GraphQLConfig struct {
	Endpoint   string `yaml:"endpoint"`
	Token      string `yaml:"token"`
	TimeoutMs  int    `yaml:"timeout_ms"`
	MaxRetries int    `yaml:"max_retries"`
}

type LoggingConfig struct {
	LogCalls bool   `yaml:"log_calls"`
	Level    string `yaml:"level"`
}

// DefaultConfig returns a Config with defaults rooted at home.
func DefaultConfig(home string) Config {
	gql := graphql.DefaultConfig()
	return Config{
		GraphQL: GraphQLConfig{
			Endpoint:   gql.Endpoint,
			TimeoutMs:  gql.TimeoutMs,
			MaxRetries: gql.MaxRetries,
		},
		DBPath:    filepath.Join(home, ".tally", "tally.db"),
		Field:     "consulting",
		Hierarchy: "manager",
		SortBy:    "hours",
		Logging:   LoggingConfig{Level: "info"},
	}
}

// DefaultPath is the config file location used when TALLY_CONFIG is unset.
func DefaultPath(home string) string {
	return filepath.Join(home, ".tally", "config.yaml")
}

// Load reads the file at path (a missing file is not an error) and then
// applies environment overrides.
func Load(home, path string) (Config, error) {
	cfg := DefaultConfig(home)
	if err := loadFile(&cfg, path); err != nil {
		return cfg, err
	}
	applyEnv(&cfg)
	return cfg, nil
}

func loadFile(cfg *Config, path string) error {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	setString(&cfg.GraphQL.Endpoint, "TALLY_GRAPHQL_ENDPOINT")
	setString(&cfg.GraphQL.Token, "TALLY_GRAPHQL_TOKEN")
	if v := os.Getenv("TALLY_GRAPHQL_TIMEOUT_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.GraphQL.TimeoutMs = n
		}
	}
	if v := os.Getenv("TALLY_GRAPHQL_MAX_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.GraphQL.MaxRetries = n
		}
	}
	setString(&cfg.DBPath, "TALLY_DB")
	setString(&cfg.Slug, "TALLY_SLUG")
	setString(&cfg.Field, "TALLY_FIELD")
	setString(&cfg.Hierarchy, "TALLY_HIERARCHY")
	setString(&cfg.SortBy, "TALLY_SORT")
	setBool(&cfg.Strict, "TALLY_STRICT")
	setBool(&cfg.Logging.LogCalls, "TALLY_LOG_CALLS")
	setString(&cfg.Logging.Level, "TALLY_LOG_LEVEL")
}

func setString(dst *string, env string) {
	if v := os.Getenv(env); v != "" {
		*dst = v
	}
}

func setBool(dst *bool, env string) {
	if v := os.Getenv(env); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

// GraphQLClientConfig converts to the client's config.
func (c Config) GraphQLClientConfig() graphql.Config {
	return graphql.Config{
		Endpoint:   c.GraphQL.Endpoint,
		Token:      c.GraphQL.Token,
		TimeoutMs:  c.GraphQL.TimeoutMs,
		MaxRetries: c.GraphQL.MaxRetries,
	}
}

// LogLevel maps Logging.Level to a slog level, defaulting to info.
func (c Config) LogLevel() slog.Level {
	switch strings.ToLower(c.Logging.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
