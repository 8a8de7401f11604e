// Package config provides configuration loading and management for
// Policyhub.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete Policyhub configuration.
type Config struct {
	Model     ModelConfig     `yaml:"model"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	NATS      NATSConfig      `yaml:"nats"`
	Duplicate DuplicateConfig `yaml:"duplicate"`
	Session   SessionConfig   `yaml:"session"`
	Store     StoreConfig     `yaml:"store"`
}

// ModelConfig configures the drafting and translation model.
type ModelConfig struct {
	// Provider is the LLM provider name (openai, ollama, anthropic).
	Provider string `yaml:"provider"`
	// Name is the model identifier.
	Name string `yaml:"name"`
	// Endpoint is the API endpoint (default: http://localhost:11434/v1).
	Endpoint string `yaml:"endpoint"`
	// Temperature controls randomness (0.0-1.0).
	Temperature float64 `yaml:"temperature"`
	// Timeout is the maximum time to wait for model responses.
	Timeout time.Duration `yaml:"timeout"`
}

// EmbeddingConfig configures the embedding endpoint.
type EmbeddingConfig struct {
	// Endpoint is the embeddings API base URL.
	Endpoint string `yaml:"endpoint"`
	// Model is the embedding model identifier.
	Model string `yaml:"model"`
	// Dimension is the platform-wide vector dimension.
	Dimension int `yaml:"dimension"`
}

// NATSConfig configures the NATS connection.
type NATSConfig struct {
	// URL is the NATS server URL.
	URL string `yaml:"url"`
}

// DuplicateConfig tunes duplicate detection.
type DuplicateConfig struct {
	// K is the maximum matches returned.
	K int `yaml:"k"`
	// MinEmbedScore is the inclusive floor for the embedding path.
	MinEmbedScore int `yaml:"min_embed_score"`
	// MinLLMScore is the exclusive floor for the LLM path.
	MinLLMScore int `yaml:"min_llm_score"`
	// CandidateCap bounds the LLM path candidate set.
	CandidateCap int `yaml:"candidate_cap"`
}

// SessionConfig tunes draft auto-save.
type SessionConfig struct {
	// AutosaveInterval is how often the draft is persisted.
	AutosaveInterval time.Duration `yaml:"autosave_interval"`
	// Expiry is how long a saved draft stays restorable.
	Expiry time.Duration `yaml:"expiry"`
	// Path is the session file location (default: under user config dir).
	Path string `yaml:"path"`
}

// StoreConfig configures local storage paths.
type StoreConfig struct {
	// AttachmentsDir is where uploaded attachments are stored.
	AttachmentsDir string `yaml:"attachments_dir"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Model: ModelConfig{
			Provider:    "ollama",
			Name:        "qwen2.5:32b",
			Endpoint:    "http://localhost:11434/v1",
			Temperature: 0.2,
			Timeout:     3 * time.Minute,
		},
		Embedding: EmbeddingConfig{
			Endpoint:  "http://localhost:11434/v1",
			Model:     "nomic-embed-text",
			Dimension: 768,
		},
		NATS: NATSConfig{
			URL: "nats://localhost:4222",
		},
		Duplicate: DuplicateConfig{
			K:             3,
			MinEmbedScore: 70,
			MinLLMScore:   60,
			CandidateCap:  50,
		},
		Session: SessionConfig{
			AutosaveInterval: 30 * time.Second,
			Expiry:           24 * time.Hour,
		},
		Store: StoreConfig{
			AttachmentsDir: "attachments",
		},
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.Model.Provider == "" {
		return fmt.Errorf("model.provider is required")
	}
	if c.Model.Name == "" {
		return fmt.Errorf("model.name is required")
	}
	if c.Model.Endpoint == "" {
		return fmt.Errorf("model.endpoint is required")
	}
	if c.Model.Temperature < 0 || c.Model.Temperature > 1 {
		return fmt.Errorf("model.temperature must be between 0 and 1")
	}
	if c.Embedding.Dimension <= 0 {
		return fmt.Errorf("embedding.dimension must be positive")
	}
	if c.Duplicate.MinEmbedScore < 0 || c.Duplicate.MinEmbedScore > 100 {
		return fmt.Errorf("duplicate.min_embed_score must be between 0 and 100")
	}
	if c.Duplicate.MinLLMScore < 0 || c.Duplicate.MinLLMScore > 100 {
		return fmt.Errorf("duplicate.min_llm_score must be between 0 and 100")
	}
	if c.Session.AutosaveInterval <= 0 {
		return fmt.Errorf("session.autosave_interval must be positive")
	}
	return nil
}

// LoadFromFile loads configuration from a YAML file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return config, nil
}

// SaveToFile saves configuration to a YAML file.
func (c *Config) SaveToFile(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Merge merges another config into this one (other takes precedence for
// non-zero values).
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	if other.Model.Provider != "" {
		c.Model.Provider = other.Model.Provider
	}
	if other.Model.Name != "" {
		c.Model.Name = other.Model.Name
	}
	if other.Model.Endpoint != "" {
		c.Model.Endpoint = other.Model.Endpoint
	}
	if other.Model.Temperature != 0 {
		c.Model.Temperature = other.Model.Temperature
	}
	if other.Model.Timeout != 0 {
		c.Model.Timeout = other.Model.Timeout
	}

	if other.Embedding.Endpoint != "" {
		c.Embedding.Endpoint = other.Embedding.Endpoint
	}
	if other.Embedding.Model != "" {
		c.Embedding.Model = other.Embedding.Model
	}
	if other.Embedding.Dimension != 0 {
		c.Embedding.Dimension = other.Embedding.Dimension
	}

	if other.NATS.URL != "" {
		c.NATS.URL = other.NATS.URL
	}

	if other.Duplicate.K != 0 {
		c.Duplicate.K = other.Duplicate.K
	}
	if other.Duplicate.MinEmbedScore != 0 {
		c.Duplicate.MinEmbedScore = other.Duplicate.MinEmbedScore
	}
	if other.Duplicate.MinLLMScore != 0 {
		c.Duplicate.MinLLMScore = other.Duplicate.MinLLMScore
	}
	if other.Duplicate.CandidateCap != 0 {
		c.Duplicate.CandidateCap = other.Duplicate.CandidateCap
	}

	if other.Session.AutosaveInterval != 0 {
		c.Session.AutosaveInterval = other.Session.AutosaveInterval
	}
	if other.Session.Expiry != 0 {
		c.Session.Expiry = other.Session.Expiry
	}
	if other.Session.Path != "" {
		c.Session.Path = other.Session.Path
	}

	if other.Store.AttachmentsDir != "" {
		c.Store.AttachmentsDir = other.Store.AttachmentsDir
	}
}
