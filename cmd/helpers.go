package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/cholinyo/chatbot-comparador/internal/config"
	"github.com/cholinyo/chatbot-comparador/internal/embeddings"
	"github.com/cholinyo/chatbot-comparador/internal/gateway"
	"github.com/cholinyo/chatbot-comparador/internal/manifest"
	"github.com/cholinyo/chatbot-comparador/internal/retrieval"
	"github.com/cholinyo/chatbot-comparador/internal/vectorstore"
)

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `comparador init` to create a config file", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// buildEmbedder creates an embeddings.Embedder from config.
func buildEmbedder(cfg *config.Config) (embeddings.Embedder, error) {
	switch cfg.Embedding.Provider {
	case config.EmbeddingOpenAI:
		apiKey := os.Getenv("OPENAI_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable is required for OpenAI embeddings")
		}
		return embeddings.NewOpenAIEmbedder(apiKey, embeddings.OpenAIModel(cfg.Embedding.Model)), nil
	case config.EmbeddingOllama:
		return embeddings.NewOllamaEmbedder(cfg.Embedding.Model, cfg.Embedding.Dimensions, cfg.Embedding.OllamaHost), nil
	default:
		return nil, fmt.Errorf("unsupported embedding provider %q", cfg.Embedding.Provider)
	}
}

// resolveK applies the configured default and the 1-10 retrieval bound
// to a --k flag value.
func resolveK(cfg *config.Config, k int) (int, error) {
	if k <= 0 {
		k = cfg.RAG.K
	}
	if k > 10 {
		return 0, fmt.Errorf("k must be at most 10")
	}
	return k, nil
}

// openIndices opens one SourceIndex per category in registration order.
// Load warnings (corrupt or missing snapshots) go to stderr; they never
// abort startup.
func openIndices(cfg *config.Config) ([]*vectorstore.SourceIndex, map[vectorstore.SourceCategory]*vectorstore.SourceIndex, error) {
	var ordered []*vectorstore.SourceIndex
	byCategory := make(map[vectorstore.SourceCategory]*vectorstore.SourceIndex)

	for _, category := range vectorstore.Categories {
		dir := filepath.Join(cfg.StoreDir, string(category))
		idx, warning, err := vectorstore.Open(dir, category, cfg.Embedding.Dimensions)
		if err != nil {
			return nil, nil, fmt.Errorf("opening %s index: %w", category, err)
		}
		if warning != "" {
			fmt.Fprintf(os.Stderr, "Warning: %s index: %s\n", category, warning)
		}
		ordered = append(ordered, idx)
		byCategory[category] = idx
	}
	return ordered, byCategory, nil
}

// openManifest opens the artifact manifest next to the vector indices.
func openManifest(cfg *config.Config) (*manifest.Manifest, error) {
	return manifest.Open(filepath.Join(cfg.StoreDir, "manifest.db"))
}

// buildFuser wires the embedder and indices into a retrieval fuser.
func buildFuser(cfg *config.Config) (*retrieval.Fuser, []*vectorstore.SourceIndex, error) {
	embedder, err := buildEmbedder(cfg)
	if err != nil {
		return nil, nil, err
	}
	ordered, _, err := openIndices(cfg)
	if err != nil {
		return nil, nil, err
	}
	return retrieval.NewFuser(embedder, ordered...), ordered, nil
}

// buildGateway creates the model gateway from config.
func buildGateway(cfg *config.Config) *gateway.Gateway {
	return gateway.New(gateway.Options{
		OpenAIKey:     os.Getenv("OPENAI_API_KEY"),
		OllamaHost:    cfg.Backends.OllamaHost,
		FileServerURL: cfg.Backends.FileServerURL,
		HostedTimeout: time.Duration(cfg.Backends.HostedTimeoutS) * time.Second,
		LocalTimeout:  time.Duration(cfg.Backends.LocalTimeoutS) * time.Second,
	})
}

// defaultBackend parses the configured default backend, applying the
// shared generation parameters.
func defaultBackend(cfg *config.Config) (gateway.BackendDescriptor, error) {
	return parseBackend(cfg, cfg.Backends.Default)
}

// compareBackends parses the configured comparison set; when empty it
// falls back to just the default backend.
func compareBackends(cfg *config.Config) ([]gateway.BackendDescriptor, error) {
	names := cfg.Backends.Compare
	if len(names) == 0 {
		names = []string{cfg.Backends.Default}
	}
	var backends []gateway.BackendDescriptor
	for _, name := range names {
		b, err := parseBackend(cfg, name)
		if err != nil {
			return nil, err
		}
		backends = append(backends, b)
	}
	return backends, nil
}

func parseBackend(cfg *config.Config, name string) (gateway.BackendDescriptor, error) {
	b, err := gateway.ParseBackend(name)
	if err != nil {
		return gateway.BackendDescriptor{}, err
	}
	b.Temperature = cfg.Backends.Temperature
	b.MaxTokens = cfg.Backends.MaxTokens
	return b, nil
}
