package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"docqa/internal/domain"
)

func TestDefaultConfigIsValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestLoadMissingFileFallsBackToDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Retrieve.TopK != 3 {
		t.Errorf("top_k %d, want default 3", cfg.Retrieve.TopK)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docqa.yaml")
	content := `
chunking:
  strategy: sentence
  size: 300
retrieve:
  top_k: 5
  mmr_enabled: true
generation:
  provider: mock
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Chunking.Strategy != "sentence" || cfg.Chunking.Size != 300 {
		t.Errorf("chunking overrides not applied: %+v", cfg.Chunking)
	}
	if cfg.Retrieve.TopK != 5 || !cfg.Retrieve.MMREnabled {
		t.Errorf("retrieve overrides not applied: %+v", cfg.Retrieve)
	}
	if cfg.Generation.Provider != "mock" {
		t.Errorf("generation provider %q, want mock", cfg.Generation.Provider)
	}
	// Untouched sections keep defaults.
	if cfg.Embedding.Model != "text-embedding-3-small" {
		t.Errorf("embedding model %q lost its default", cfg.Embedding.Model)
	}
	if cfg.Chunking.Overlap != 50 {
		t.Errorf("overlap %d lost its default", cfg.Chunking.Overlap)
	}
}

func TestLoadFromDir(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "docqa.yaml"),
		[]byte("retrieve:\n  top_k: 7\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Retrieve.TopK != 7 {
		t.Errorf("top_k %d, want 7 from docqa.yaml", cfg.Retrieve.TopK)
	}

	cfg, err = LoadFromDir(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Retrieve.TopK != 3 {
		t.Errorf("empty dir should yield defaults, got top_k %d", cfg.Retrieve.TopK)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown strategy", func(c *Config) { c.Chunking.Strategy = "paragraph" }},
		{"zero chunk size", func(c *Config) { c.Chunking.Size = 0 }},
		{"overlap equals size", func(c *Config) { c.Chunking.Size = 100; c.Chunking.Overlap = 100 }},
		{"overlap above size", func(c *Config) { c.Chunking.Size = 100; c.Chunking.Overlap = 150 }},
		{"negative overlap", func(c *Config) { c.Chunking.Overlap = -1 }},
		{"zero batch size", func(c *Config) { c.Embedding.BatchSize = 0 }},
		{"zero top_k", func(c *Config) { c.Retrieve.TopK = 0 }},
		{"zero context budget", func(c *Config) { c.Generation.ContextBudget = 0 }},
		{"negative history turns", func(c *Config) { c.Generation.HistoryTurns = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); !errors.Is(err, domain.ErrConfiguration) {
				t.Errorf("expected ErrConfiguration, got %v", err)
			}
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docqa.yaml")
	cfg := DefaultConfig()
	cfg.Retrieve.TopK = 9

	if err := cfg.Save(path); err != nil {
		t.Fatal(err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Retrieve.TopK != 9 {
		t.Errorf("top_k %d after round trip, want 9", loaded.Retrieve.TopK)
	}
}
