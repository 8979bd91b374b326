package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"

	"github.com/cholinyo/chatbot-comparador/internal/gateway"
)

// DefaultConfigFile is where Load looks when no path is given.
const DefaultConfigFile = ".comparador.yml"

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (COMPARADOR_*).
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	cfg := DefaultConfig()

	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	// Overlay environment variables: COMPARADOR_STORE_DIR -> store_dir, etc.
	if err := k.Load(env.Provider("COMPARADOR_", ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, "COMPARADOR_"))
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// DefaultConfig returns a Config with sensible defaults: a fully local
// stack that works without any API key.
func DefaultConfig() *Config {
	return &Config{
		StoreDir: "vectorstore",
		RAG: RAGConfig{
			K:        5,
			MaxChars: 500,
			Overlap:  50,
		},
		Embedding: EmbeddingConfig{
			Provider:   EmbeddingOllama,
			Model:      "nomic-embed-text",
			Dimensions: 768,
		},
		Backends: BackendsConfig{
			Default:     "ollama:llama3",
			Temperature: 0.3,
			MaxTokens:   1024,
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
		MaxConcurrency: 4,
	}
}

// validEmbeddingProviders is the set of recognized embedding providers.
var validEmbeddingProviders = map[EmbeddingProvider]bool{
	EmbeddingOllama: true,
	EmbeddingOpenAI: true,
}

// Validate checks that the configuration contains usable values. This is
// the only place a bad configuration becomes a fatal error: everything
// downstream assumes a validated Config.
func (c *Config) Validate() error {
	if c.StoreDir == "" {
		return fmt.Errorf("store_dir is required")
	}

	if c.RAG.K < 1 || c.RAG.K > 10 {
		return fmt.Errorf("rag.k must be between 1 and 10, got %d", c.RAG.K)
	}
	if c.RAG.MaxChars < 1 {
		return fmt.Errorf("rag.max_chars must be positive, got %d", c.RAG.MaxChars)
	}
	if c.RAG.Overlap < 0 || c.RAG.Overlap >= c.RAG.MaxChars {
		return fmt.Errorf("rag.overlap must be in [0, max_chars), got %d", c.RAG.Overlap)
	}

	if !validEmbeddingProviders[c.Embedding.Provider] {
		return fmt.Errorf("invalid embedding.provider %q: must be ollama or openai", c.Embedding.Provider)
	}
	if c.Embedding.Model == "" {
		return fmt.Errorf("embedding.model is required")
	}
	if c.Embedding.Dimensions < 1 {
		return fmt.Errorf("embedding.dimensions must be positive, got %d", c.Embedding.Dimensions)
	}

	if c.Backends.Default == "" {
		return fmt.Errorf("backends.default is required")
	}
	if _, err := gateway.ParseBackend(c.Backends.Default); err != nil {
		return fmt.Errorf("backends.default: %w", err)
	}
	for _, b := range c.Backends.Compare {
		if _, err := gateway.ParseBackend(b); err != nil {
			return fmt.Errorf("backends.compare: %w", err)
		}
	}

	for _, src := range c.WebSources {
		if src.URL == "" {
			return fmt.Errorf("web_sources entries need a url")
		}
	}
	for _, src := range c.APISources {
		if src.URL == "" {
			return fmt.Errorf("api_sources entries need a url")
		}
	}

	if c.MaxConcurrency < 0 {
		return fmt.Errorf("max_concurrency must be non-negative")
	}

	return nil
}
