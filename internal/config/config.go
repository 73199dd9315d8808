// Package config loads and validates the application configuration.
package config

import (
	"fmt"
	"os"

	"github.com/Musaddiq174/ai-knowledge-helper/internal/domain/entities"
	"gopkg.in/yaml.v3"
)

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// IndexConfig selects and configures the vector index backend.
type IndexConfig struct {
	Type string `yaml:"type"`
	Path string `yaml:"path"`
}

// ChunkingConfig controls the token-window chunker.
type ChunkingConfig struct {
	ChunkSize    int `yaml:"chunk_size"`
	ChunkOverlap int `yaml:"chunk_overlap"`
}

// RetrievalConfig controls similarity search.
type RetrievalConfig struct {
	TopK          int     `yaml:"top_k"`
	MinSimilarity float64 `yaml:"min_similarity"`
}

// EmbeddingConfig selects and configures the embedding backend.
type EmbeddingConfig struct {
	Type        string `yaml:"type"`
	Model       string `yaml:"model"`
	Dimension   int    `yaml:"dimension"`
	BaseURL     string `yaml:"base_url"`
	APIKeyEnv   string `yaml:"api_key_env"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// GenerationConfig selects and configures the answer backend. With Enabled
// false, answers come from the extractive backend only.
type GenerationConfig struct {
	Enabled         bool    `yaml:"enabled"`
	Type            string  `yaml:"type"`
	Model           string  `yaml:"model"`
	BaseURL         string  `yaml:"base_url"`
	APIKeyEnv       string  `yaml:"api_key_env"`
	TimeoutSecs     int     `yaml:"timeout_secs"`
	FallbackPenalty float64 `yaml:"fallback_penalty"`
}

// EvaluationConfig weights the answer quality score.
type EvaluationConfig struct {
	RelevanceWeight float64 `yaml:"relevance_weight"`
	CoverageWeight  float64 `yaml:"coverage_weight"`
}

// Config is the full application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	DataDir    string           `yaml:"data_dir"`
	Watch      bool             `yaml:"watch"`
	Index      IndexConfig      `yaml:"index"`
	Chunking   ChunkingConfig   `yaml:"chunking"`
	Retrieval  RetrievalConfig  `yaml:"retrieval"`
	Embedding  EmbeddingConfig  `yaml:"embedding"`
	Generation GenerationConfig `yaml:"generation"`
	Evaluation EvaluationConfig `yaml:"evaluation"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Server:  ServerConfig{Addr: ":8080"},
		DataDir: "data",
		Index:   IndexConfig{Type: "sqlite", Path: "vector_db"},
		Chunking: ChunkingConfig{
			ChunkSize:    500,
			ChunkOverlap: 50,
		},
		Retrieval: RetrievalConfig{
			TopK:          3,
			MinSimilarity: 0.5,
		},
		Embedding: EmbeddingConfig{
			Type:        "local",
			Dimension:   384,
			APIKeyEnv:   "OPENAI_API_KEY",
			TimeoutSecs: 30,
		},
		Generation: GenerationConfig{
			Enabled:         false,
			Type:            "ollama",
			APIKeyEnv:       "OPENAI_API_KEY",
			TimeoutSecs:     30,
			FallbackPenalty: 0.75,
		},
		Evaluation: EvaluationConfig{
			RelevanceWeight: 0.7,
			CoverageWeight:  0.3,
		},
	}
}

// Load reads a YAML config file layered over the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %v", entities.ErrInvalidConfiguration, path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	if c.Chunking.ChunkSize <= 0 {
		return fmt.Errorf("%w: chunk_size must be positive, got %d", entities.ErrInvalidConfiguration, c.Chunking.ChunkSize)
	}
	if c.Chunking.ChunkOverlap < 0 || c.Chunking.ChunkOverlap >= c.Chunking.ChunkSize {
		return fmt.Errorf("%w: chunk_overlap must be in [0, chunk_size), got %d", entities.ErrInvalidConfiguration, c.Chunking.ChunkOverlap)
	}
	if c.Retrieval.TopK <= 0 {
		return fmt.Errorf("%w: top_k must be positive, got %d", entities.ErrInvalidConfiguration, c.Retrieval.TopK)
	}
	if c.Retrieval.MinSimilarity < 0 || c.Retrieval.MinSimilarity > 1 {
		return fmt.Errorf("%w: min_similarity must be in [0, 1], got %f", entities.ErrInvalidConfiguration, c.Retrieval.MinSimilarity)
	}
	switch c.Index.Type {
	case "sqlite", "chromem", "memory":
	default:
		return fmt.Errorf("%w: unknown index type %q", entities.ErrInvalidConfiguration, c.Index.Type)
	}
	switch c.Embedding.Type {
	case "local", "ollama", "openai":
	default:
		return fmt.Errorf("%w: unknown embedding type %q", entities.ErrInvalidConfiguration, c.Embedding.Type)
	}
	if c.Generation.Enabled {
		switch c.Generation.Type {
		case "ollama", "openai":
		default:
			return fmt.Errorf("%w: unknown generation type %q", entities.ErrInvalidConfiguration, c.Generation.Type)
		}
	}
	if p := c.Generation.FallbackPenalty; p <= 0 || p >= 1 {
		return fmt.Errorf("%w: fallback_penalty must be in (0, 1), got %f", entities.ErrInvalidConfiguration, p)
	}
	if c.Evaluation.RelevanceWeight < 0 || c.Evaluation.CoverageWeight < 0 ||
		c.Evaluation.RelevanceWeight+c.Evaluation.CoverageWeight == 0 {
		return fmt.Errorf("%w: evaluation weights must be non-negative with a positive sum", entities.ErrInvalidConfiguration)
	}
	return nil
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
