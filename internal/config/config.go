// Package config provides configuration loading and structs for the Ujenzi assistant.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application. The OpenAI API key is
// deliberately not part of the file; it comes from the OPENAI_API_KEY
// environment variable so credentials stay out of config files.
type Config struct {
	Debug      bool             `yaml:"debug"`
	Server     ServerConfig     `yaml:"server"`
	Knowledge  KnowledgeConfig  `yaml:"knowledge"`
	Model      ModelConfig      `yaml:"model"`
	Population PopulationConfig `yaml:"population"`
	Images     ImagesConfig     `yaml:"images"`
	Watch      WatchConfig      `yaml:"watch"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// KnowledgeConfig holds the knowledge-base artifact location and retrieval size.
type KnowledgeConfig struct {
	BasePath string `yaml:"base_path"`
	TopK     int    `yaml:"top_k"`
}

// ModelConfig holds hosted model settings. EmbeddingModel must match the
// model used by the ingestion pipeline that built the knowledge base,
// otherwise similarity scores are meaningless.
type ModelConfig struct {
	ChatModel             string  `yaml:"chat_model"`
	EmbeddingModel        string  `yaml:"embedding_model"`
	Temperature           float32 `yaml:"temperature"`
	RequestTimeoutSeconds int     `yaml:"request_timeout_seconds"`
}

// PopulationConfig holds WorldPop lookup settings.
type PopulationConfig struct {
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	ReferenceYear  int    `yaml:"reference_year"`
}

// ImagesConfig holds image catalog and figure directory settings.
type ImagesConfig struct {
	CatalogPath string `yaml:"catalog_path"`
	Dir         string `yaml:"dir"`
	MaxResults  int    `yaml:"max_results"`
}

// WatchConfig holds artifact watch settings for server mode. When enabled,
// the server caches the knowledge base in memory and invalidates the cache
// on artifact file changes instead of reloading from disk on every query.
type WatchConfig struct {
	Enabled    bool `yaml:"enabled"`
	DebounceMS int  `yaml:"debounce_ms"`
}

// Load reads and parses the config file at path, applies defaults, and
// expands paths. Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)

	configDir := filepath.Dir(path)
	cfg.Knowledge.BasePath = expandPath(cfg.Knowledge.BasePath, configDir)
	cfg.Images.CatalogPath = expandPath(cfg.Images.CatalogPath, configDir)
	cfg.Images.Dir = expandPath(cfg.Images.Dir, configDir)

	return &cfg, nil
}

// Save writes the config to path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
