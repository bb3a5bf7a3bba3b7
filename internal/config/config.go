// Package config loads lawgraph configuration from .lawgraph/config.yml with
// environment variable overrides.
package config

import "time"

// Config is the complete lawgraph configuration.
type Config struct {
	Corpus    CorpusConfig    `yaml:"corpus" mapstructure:"corpus"`
	Detection DetectionConfig `yaml:"detection" mapstructure:"detection"`
	Oracle    OracleConfig    `yaml:"oracle" mapstructure:"oracle"`
	Storage   StorageConfig   `yaml:"storage" mapstructure:"storage"`
	Search    SearchConfig    `yaml:"search" mapstructure:"search"`
}

// CorpusConfig selects the law XML sources to scan.
type CorpusConfig struct {
	Root    string `yaml:"root" mapstructure:"root"`       // directory holding e-Gov XML files
	Pattern string `yaml:"pattern" mapstructure:"pattern"` // glob selecting law files under root
}

// DetectionConfig tunes the reference detection pipeline.
type DetectionConfig struct {
	ReviewThreshold float64 `yaml:"review_threshold" mapstructure:"review_threshold"` // below this, references are flagged for review
	MaxWorkers      int     `yaml:"max_workers" mapstructure:"max_workers"`           // concurrent documents per scan
}

// OracleConfig configures the optional LLM verification phase.
type OracleConfig struct {
	Enabled       bool   `yaml:"enabled" mapstructure:"enabled"`
	Model         string `yaml:"model" mapstructure:"model"`
	TimeoutSecs   int    `yaml:"timeout_seconds" mapstructure:"timeout_seconds"`
	MaxConcurrent int    `yaml:"max_concurrent" mapstructure:"max_concurrent"` // oracle calls in flight per document
}

// Timeout returns the per-call oracle timeout.
func (o OracleConfig) Timeout() time.Duration {
	return time.Duration(o.TimeoutSecs) * time.Second
}

// StorageConfig locates the reference database.
type StorageConfig struct {
	Path string `yaml:"path" mapstructure:"path"` // SQLite database file
}

// SearchConfig locates the full-text index.
type SearchConfig struct {
	IndexPath string `yaml:"index_path" mapstructure:"index_path"` // bleve index directory; empty disables persistence
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Corpus: CorpusConfig{
			Root:    "laws",
			Pattern: "**.xml",
		},
		Detection: DetectionConfig{
			ReviewThreshold: 0.75,
			MaxWorkers:      4,
		},
		Oracle: OracleConfig{
			Enabled:       false,
			Model:         "gpt-4o-mini",
			TimeoutSecs:   15,
			MaxConcurrent: 4,
		},
		Storage: StorageConfig{
			Path: ".lawgraph/lawgraph.db",
		},
		Search: SearchConfig{
			IndexPath: ".lawgraph/index.bleve",
		},
	}
}
