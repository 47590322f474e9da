package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"docqa/internal/domain"
)

// Config holds all configuration for the document QA tool.
type Config struct {
	Chunking   ChunkingConfig   `yaml:"chunking"`
	Embedding  EmbeddingConfig  `yaml:"embedding"`
	Retrieve   RetrieveConfig   `yaml:"retrieve"`
	Generation GenerationConfig `yaml:"generation"`
	Ingest     IngestConfig     `yaml:"ingest"`
	Server     ServerConfig     `yaml:"server"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// ChunkingConfig holds passage splitting configuration.
type ChunkingConfig struct {
	Strategy         string `yaml:"strategy"` // "window" or "sentence"
	Size             int    `yaml:"size"`     // runes per passage
	Overlap          int    `yaml:"overlap"`  // runes shared between neighbors
	WordSafe         bool   `yaml:"word_safe"`
	OverlapSentences int    `yaml:"overlap_sentences"` // sentence strategy only
}

// EmbeddingConfig holds embedding backend configuration.
type EmbeddingConfig struct {
	Provider   string `yaml:"provider"` // "openai" or "mock"
	Model      string `yaml:"model"`
	APIKeyEnv  string `yaml:"api_key_env"`
	Dimension  int    `yaml:"dimension"`
	BatchSize  int    `yaml:"batch_size"`
	TimeoutSec int    `yaml:"timeout_seconds"`
}

// RetrieveConfig holds retrieval configuration.
type RetrieveConfig struct {
	TopK         int     `yaml:"top_k"`
	MinScore     float64 `yaml:"min_score"` // Filter results below this score (0 = disabled)
	MMREnabled   bool    `yaml:"mmr_enabled"`
	MMRLambda    float64 `yaml:"mmr_lambda"`
	DedupJaccard float64 `yaml:"dedup_jaccard"`
	CacheSize    int     `yaml:"cache_size"`
	CacheTTLMin  int     `yaml:"cache_ttl_minutes"`
}

// GenerationConfig holds answer synthesis configuration.
type GenerationConfig struct {
	Provider      string `yaml:"provider"` // "openai" or "mock"
	Model         string `yaml:"model"`
	APIKeyEnv     string `yaml:"api_key_env"`
	ContextBudget int    `yaml:"context_budget"` // runes of passage text per prompt
	HistoryTurns  int    `yaml:"history_turns"`
	TimeoutSec    int    `yaml:"timeout_seconds"`
}

// IngestConfig holds document loading configuration.
type IngestConfig struct {
	Includes []string `yaml:"includes"`
	Excludes []string `yaml:"excludes"`
}

// ServerConfig holds the HTTP host configuration.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Chunking: ChunkingConfig{
			Strategy:         "window",
			Size:             500,
			Overlap:          50,
			WordSafe:         false,
			OverlapSentences: 1,
		},
		Embedding: EmbeddingConfig{
			Provider:   "openai",
			Model:      "text-embedding-3-small",
			APIKeyEnv:  "OPENAI_API_KEY",
			Dimension:  1536,
			BatchSize:  32,
			TimeoutSec: 60,
		},
		Retrieve: RetrieveConfig{
			TopK:         3,
			MinScore:     0,
			MMREnabled:   false,
			MMRLambda:    0.7,
			DedupJaccard: 0.8,
			CacheSize:    128,
			CacheTTLMin:  5,
		},
		Generation: GenerationConfig{
			Provider:      "openai",
			Model:         "gpt-4o-mini",
			APIKeyEnv:     "OPENAI_API_KEY",
			ContextBudget: 4000,
			HistoryTurns:  2,
			TimeoutSec:    60,
		},
		Ingest: IngestConfig{
			Includes: []string{"**/*.txt", "**/*.md", "**/*.pdf"},
			Excludes: []string{"**/node_modules/**", "**/.git/**"},
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from a YAML file, falling back to defaults
// when the file does not exist.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromDir loads configuration from a directory (looks for docqa.yaml).
func LoadFromDir(dir string) (*Config, error) {
	path := filepath.Join(dir, "docqa.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	path = filepath.Join(dir, ".docqa", "config.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	return DefaultConfig(), nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks parameter sanity before any component is built.
func (c *Config) Validate() error {
	switch c.Chunking.Strategy {
	case "window", "sentence":
	default:
		return fmt.Errorf("%w: unknown chunking strategy %q", domain.ErrConfiguration, c.Chunking.Strategy)
	}
	if c.Chunking.Size <= 0 {
		return fmt.Errorf("%w: chunking size must be positive, got %d", domain.ErrConfiguration, c.Chunking.Size)
	}
	if c.Chunking.Overlap < 0 || c.Chunking.Overlap >= c.Chunking.Size {
		return fmt.Errorf("%w: chunking overlap must be in [0, size), got size=%d overlap=%d",
			domain.ErrConfiguration, c.Chunking.Size, c.Chunking.Overlap)
	}
	if c.Embedding.BatchSize <= 0 {
		return fmt.Errorf("%w: embedding batch size must be positive, got %d", domain.ErrConfiguration, c.Embedding.BatchSize)
	}
	if c.Retrieve.TopK <= 0 {
		return fmt.Errorf("%w: top_k must be positive, got %d", domain.ErrConfiguration, c.Retrieve.TopK)
	}
	if c.Generation.ContextBudget <= 0 {
		return fmt.Errorf("%w: context_budget must be positive, got %d", domain.ErrConfiguration, c.Generation.ContextBudget)
	}
	if c.Generation.HistoryTurns < 0 {
		return fmt.Errorf("%w: history_turns must not be negative, got %d", domain.ErrConfiguration, c.Generation.HistoryTurns)
	}
	return nil
}

// EmbedTimeout returns the per-call budget for embedding requests.
func (c *Config) EmbedTimeout() time.Duration {
	return time.Duration(c.Embedding.TimeoutSec) * time.Second
}

// GenerateTimeout returns the per-call budget for generation requests.
func (c *Config) GenerateTimeout() time.Duration {
	return time.Duration(c.Generation.TimeoutSec) * time.Second
}

// CacheTTL returns the query cache time-to-live.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Retrieve.CacheTTLMin) * time.Minute
}
