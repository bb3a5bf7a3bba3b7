package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Loader provides configuration loading capabilities.
type Loader interface {
	// Load loads configuration from file and environment variables.
	// Priority: defaults → config file → environment variables (env wins)
	Load() (*Config, error)
}

type loader struct {
	rootDir string
}

// NewLoader creates a configuration loader for the given root directory.
func NewLoader(rootDir string) Loader {
	return &loader{rootDir: rootDir}
}

// Load loads configuration with the following priority (highest to lowest):
// 1. Environment variables (LAWGRAPH_*)
// 2. Config file (.lawgraph/config.yml or .lawgraph/config.yaml)
// 3. Default values
func (l *loader) Load() (*Config, error) {
	v := viper.New()

	configDir := filepath.Join(l.rootDir, ".lawgraph")
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir)

	v.SetEnvPrefix("LAWGRAPH")
	v.AutomaticEnv()
	// Replace . with _ in env var names (e.g., LAWGRAPH_ORACLE_MODEL)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.BindEnv("corpus.root")
	v.BindEnv("corpus.pattern")
	v.BindEnv("detection.review_threshold")
	v.BindEnv("detection.max_workers")
	v.BindEnv("oracle.enabled")
	v.BindEnv("oracle.model")
	v.BindEnv("oracle.timeout_seconds")
	v.BindEnv("oracle.max_concurrent")
	v.BindEnv("storage.path")
	v.BindEnv("search.index_path")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// Config file not found is acceptable - we'll use defaults + env vars
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("corpus.root", defaults.Corpus.Root)
	v.SetDefault("corpus.pattern", defaults.Corpus.Pattern)

	v.SetDefault("detection.review_threshold", defaults.Detection.ReviewThreshold)
	v.SetDefault("detection.max_workers", defaults.Detection.MaxWorkers)

	v.SetDefault("oracle.enabled", defaults.Oracle.Enabled)
	v.SetDefault("oracle.model", defaults.Oracle.Model)
	v.SetDefault("oracle.timeout_seconds", defaults.Oracle.TimeoutSecs)
	v.SetDefault("oracle.max_concurrent", defaults.Oracle.MaxConcurrent)

	v.SetDefault("storage.path", defaults.Storage.Path)
	v.SetDefault("search.index_path", defaults.Search.IndexPath)
}

// LoadConfig loads configuration using the current working directory as root.
func LoadConfig() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	return NewLoader(wd).Load()
}

// LoadConfigFromDir loads configuration from a specific directory.
func LoadConfigFromDir(rootDir string) (*Config, error) {
	return NewLoader(rootDir).Load()
}
