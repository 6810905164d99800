package config

import "time"

// Config holds all application configuration.
type Config struct {
	LLM           LLM           `mapstructure:"llm"`
	Embeddings    Embeddings    `mapstructure:"embeddings"`
	Images        Images        `mapstructure:"images"`
	Generation    Generation    `mapstructure:"generation"`
	Storage       Storage       `mapstructure:"storage"`
	Elasticsearch Elasticsearch `mapstructure:"elasticsearch"`
	Scraper       Scraper       `mapstructure:"scraper"`
	Server        Server        `mapstructure:"server"`
	MCP           MCP           `mapstructure:"mcp"`
	Log           Log           `mapstructure:"log"`
}

// LLM holds text generation configuration.
type LLM struct {
	Provider   string        `mapstructure:"provider"` // dmr, openai or gemini
	SocketPath string        `mapstructure:"socket_path"`
	BaseURL    string        `mapstructure:"base_url"`
	APIKey     string        `mapstructure:"api_key"`
	Model      string        `mapstructure:"model"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

// Embeddings holds sentence embedding configuration.
// When disabled, similarity falls back to the offline hashing embedder.
type Embeddings struct {
	Enabled    bool          `mapstructure:"enabled"`
	SocketPath string        `mapstructure:"socket_path"`
	BaseURL    string        `mapstructure:"base_url"`
	APIKey     string        `mapstructure:"api_key"`
	Model      string        `mapstructure:"model"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

// Images holds image generation configuration.
type Images struct {
	Enabled bool          `mapstructure:"enabled"`
	BaseURL string        `mapstructure:"base_url"`
	APIKey  string        `mapstructure:"api_key"`
	Model   string        `mapstructure:"model"`
	Size    string        `mapstructure:"size"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// Generation holds batch generation behaviour.
type Generation struct {
	NearDuplicateThreshold float64 `mapstructure:"near_duplicate_threshold"`
	SimilarityConcurrency  int     `mapstructure:"similarity_concurrency"`
	Lexical                bool    `mapstructure:"lexical"`
	Seed                   uint64  `mapstructure:"seed"` // 0 seeds from the clock
}

// Storage holds artifact storage configuration.
type Storage struct {
	Backend         string `mapstructure:"backend"` // local or s3
	Dir             string `mapstructure:"dir"`
	Endpoint        string `mapstructure:"endpoint"`
	Bucket          string `mapstructure:"bucket"`
	Prefix          string `mapstructure:"prefix"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	UseSSL          bool   `mapstructure:"use_ssl"`
}

// Elasticsearch holds search index configuration.
type Elasticsearch struct {
	Enabled   bool     `mapstructure:"enabled"`
	Addresses []string `mapstructure:"addresses"`
	Index     string   `mapstructure:"index"`
	Username  string   `mapstructure:"username"`
	Password  string   `mapstructure:"password"`
}

// Scraper holds page fetching configuration used by evaluate --url.
type Scraper struct {
	Timeout   time.Duration `mapstructure:"timeout"`
	UserAgent string        `mapstructure:"user_agent"`
}

// Server holds HTTP API configuration.
type Server struct {
	Addr string `mapstructure:"addr"`
}

// MCP holds MCP server configuration.
type MCP struct {
	Name    string `mapstructure:"name"`
	Version string `mapstructure:"version"`
}

// Log holds logging configuration.
type Log struct {
	Format string `mapstructure:"format"` // text, json or pretty
}

// Storage backends.
const (
	BackendLocal = "local"
	BackendS3    = "s3"
)

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	return Config{
		LLM: LLM{
			Provider:   "dmr",
			SocketPath: "", // User must provide their Docker socket path
			Model:      "ai/gemma3",
			Timeout:    2 * time.Minute,
		},
		Embeddings: Embeddings{
			Enabled: false, // Disabled by default, hashing embedder is used
			Model:   "ai/all-minilm",
			Timeout: 30 * time.Second,
		},
		Images: Images{
			Enabled: false,
			BaseURL: "https://api.openai.com/v1",
			Model:   "dall-e-2",
			Size:    "512x512",
			Timeout: 2 * time.Minute,
		},
		Generation: Generation{
			NearDuplicateThreshold: 0.92,
			SimilarityConcurrency:  4,
			Lexical:                true,
		},
		Storage: Storage{
			Backend:         BackendLocal,
			Dir:             "generated_sites",
			Endpoint:        "localhost:9002",
			Bucket:          "sitegen",
			Prefix:          "sites",
			AccessKeyID:     "minioadmin",
			SecretAccessKey: "minioadmin",
		},
		Elasticsearch: Elasticsearch{
			Enabled:   false,
			Addresses: []string{"http://localhost:9200"},
			Index:     "sitegen-sites",
		},
		Scraper: Scraper{
			Timeout:   30 * time.Second,
			UserAgent: "sitegen/1.0",
		},
		Server: Server{
			Addr: ":8000",
		},
		MCP: MCP{
			Name:    "sitegen",
			Version: "1.0.0",
		},
		Log: Log{
			Format: "text",
		},
	}
}
