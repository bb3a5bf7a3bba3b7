package config

import (
	"errors"
	"fmt"
)

// Validate checks the configuration for values the pipeline cannot run with.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.New("config is nil")
	}

	if cfg.Corpus.Root == "" {
		return errors.New("corpus.root must not be empty")
	}
	if cfg.Corpus.Pattern == "" {
		return errors.New("corpus.pattern must not be empty")
	}

	if cfg.Detection.ReviewThreshold < 0 || cfg.Detection.ReviewThreshold > 1 {
		return fmt.Errorf("detection.review_threshold must be within [0, 1], got %v", cfg.Detection.ReviewThreshold)
	}
	if cfg.Detection.MaxWorkers < 1 {
		return fmt.Errorf("detection.max_workers must be at least 1, got %d", cfg.Detection.MaxWorkers)
	}

	if cfg.Oracle.Enabled {
		if cfg.Oracle.Model == "" {
			return errors.New("oracle.model must be set when the oracle is enabled")
		}
		if cfg.Oracle.TimeoutSecs < 1 {
			return fmt.Errorf("oracle.timeout_seconds must be at least 1, got %d", cfg.Oracle.TimeoutSecs)
		}
		if cfg.Oracle.MaxConcurrent < 1 {
			return fmt.Errorf("oracle.max_concurrent must be at least 1, got %d", cfg.Oracle.MaxConcurrent)
		}
	}

	if cfg.Storage.Path == "" {
		return errors.New("storage.path must not be empty")
	}

	return nil
}
