package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadConfigFromDir(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "laws", cfg.Corpus.Root)
	assert.Equal(t, 0.75, cfg.Detection.ReviewThreshold)
	assert.Equal(t, 4, cfg.Detection.MaxWorkers)
	assert.False(t, cfg.Oracle.Enabled)
	assert.Equal(t, ".lawgraph/lawgraph.db", cfg.Storage.Path)
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".lawgraph"), 0o755))
	yml := `
corpus:
  root: /data/egov
detection:
  review_threshold: 0.8
  max_workers: 8
oracle:
  enabled: true
  model: gpt-4o
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".lawgraph", "config.yml"), []byte(yml), 0o644))

	cfg, err := LoadConfigFromDir(dir)
	require.NoError(t, err)

	assert.Equal(t, "/data/egov", cfg.Corpus.Root)
	assert.Equal(t, "**.xml", cfg.Corpus.Pattern, "unset keys keep defaults")
	assert.Equal(t, 0.8, cfg.Detection.ReviewThreshold)
	assert.Equal(t, 8, cfg.Detection.MaxWorkers)
	assert.True(t, cfg.Oracle.Enabled)
	assert.Equal(t, "gpt-4o", cfg.Oracle.Model)
}

func TestEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".lawgraph"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".lawgraph", "config.yml"),
		[]byte("detection:\n  max_workers: 2\n"), 0o644))

	t.Setenv("LAWGRAPH_DETECTION_MAX_WORKERS", "16")

	cfg, err := LoadConfigFromDir(dir)
	require.NoError(t, err)
	assert.Equal(t, 16, cfg.Detection.MaxWorkers, "environment wins over the file")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid defaults", func(*Config) {}, ""},
		{"empty corpus root", func(c *Config) { c.Corpus.Root = "" }, "corpus.root"},
		{"threshold above one", func(c *Config) { c.Detection.ReviewThreshold = 1.5 }, "review_threshold"},
		{"negative threshold", func(c *Config) { c.Detection.ReviewThreshold = -0.1 }, "review_threshold"},
		{"zero workers", func(c *Config) { c.Detection.MaxWorkers = 0 }, "max_workers"},
		{"oracle enabled without model", func(c *Config) {
			c.Oracle.Enabled = true
			c.Oracle.Model = ""
		}, "oracle.model"},
		{"empty storage path", func(c *Config) { c.Storage.Path = "" }, "storage.path"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := Validate(cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}

	assert.Error(t, Validate(nil))
}
