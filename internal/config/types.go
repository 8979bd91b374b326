package config

// EmbeddingProvider identifies an embedding backend.
type EmbeddingProvider string

const (
	EmbeddingOllama EmbeddingProvider = "ollama"
	EmbeddingOpenAI EmbeddingProvider = "openai"
)

// Config is the top-level comparador configuration, corresponding to
// .comparador.yml.
type Config struct {
	StoreDir        string            `yaml:"store_dir" koanf:"store_dir"`
	DocumentFolders []string          `yaml:"document_folders" koanf:"document_folders"`
	Include         []string          `yaml:"include" koanf:"include"`
	Exclude         []string          `yaml:"exclude" koanf:"exclude"`
	WebSources      []WebSourceConfig `yaml:"web_sources" koanf:"web_sources"`
	APISources      []APISourceConfig `yaml:"api_sources" koanf:"api_sources"`
	RAG             RAGConfig         `yaml:"rag" koanf:"rag"`
	Embedding       EmbeddingConfig   `yaml:"embedding" koanf:"embedding"`
	Backends        BackendsConfig    `yaml:"backends" koanf:"backends"`
	Server          ServerConfig      `yaml:"server" koanf:"server"`
	MaxConcurrency  int               `yaml:"max_concurrency" koanf:"max_concurrency"`
}

// WebSourceConfig is one web crawl seed.
type WebSourceConfig struct {
	URL      string `yaml:"url" koanf:"url"`
	MaxPages int    `yaml:"max_pages" koanf:"max_pages"`
}

// APISourceConfig is one REST endpoint to ingest.
type APISourceConfig struct {
	Name      string   `yaml:"name" koanf:"name"`
	URL       string   `yaml:"url" koanf:"url"`
	Auth      string   `yaml:"auth" koanf:"auth"`
	TextField string   `yaml:"text_field" koanf:"text_field"`
	Labels    []string `yaml:"labels" koanf:"labels"`
}

// RAGConfig controls retrieval and fragmentation.
type RAGConfig struct {
	K        int `yaml:"k" koanf:"k"`
	MaxChars int `yaml:"max_chars" koanf:"max_chars"`
	Overlap  int `yaml:"overlap" koanf:"overlap"`
}

// EmbeddingConfig selects and sizes the embedding model.
type EmbeddingConfig struct {
	Provider   EmbeddingProvider `yaml:"provider" koanf:"provider"`
	Model      string            `yaml:"model" koanf:"model"`
	Dimensions int               `yaml:"dimensions" koanf:"dimensions"`
	OllamaHost string            `yaml:"ollama_host" koanf:"ollama_host"`
}

// BackendsConfig names the generation backends and their shared parameters.
type BackendsConfig struct {
	Default        string   `yaml:"default" koanf:"default"`
	Compare        []string `yaml:"compare" koanf:"compare"`
	Temperature    float64  `yaml:"temperature" koanf:"temperature"`
	MaxTokens      int      `yaml:"max_tokens" koanf:"max_tokens"`
	OllamaHost     string   `yaml:"ollama_host" koanf:"ollama_host"`
	FileServerURL  string   `yaml:"file_server_url" koanf:"file_server_url"`
	HostedTimeoutS int      `yaml:"hosted_timeout_seconds" koanf:"hosted_timeout_seconds"`
	LocalTimeoutS  int      `yaml:"local_timeout_seconds" koanf:"local_timeout_seconds"`
}

// ServerConfig holds the HTTP API settings.
type ServerConfig struct {
	Addr string `yaml:"addr" koanf:"addr"`
}
