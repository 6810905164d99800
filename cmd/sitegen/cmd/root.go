package cmd

import (
	"log/slog"
	"os"
	"strings"

	charmlog "github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mfenderov/sitegen/internal/config"
)

var (
	cfgFile   string
	verbose   bool
	logFormat string
	cfg       config.Config
)

// GetConfig returns the loaded configuration.
func GetConfig() config.Config {
	return cfg
}

var rootCmd = &cobra.Command{
	Use:   "sitegen",
	Short: "sitegen: an LLM single-page site generator",
	Long: `sitegen plans and writes single-page sites about a topic with a text
generation model, renders them in one of several styles, and scores how
similar the pages of a batch are to each other.

Commands:
  generate  Generate a batch of sites
  evaluate  Compute the similarity matrix of stored sites, files or URLs
  http      Start the HTTP API
  serve     Start the MCP server
  reindex   Rebuild the search index from stored sites
  search    Search indexed sites`,
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig, initLogger)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format: text, json or pretty (default from config)")
}

func initLogger() {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	format := cfg.Log.Format
	if logFormat != "" {
		format = logFormat
	}

	var handler slog.Handler
	switch format {
	case "json":
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	case "pretty":
		charmLevel := charmlog.WarnLevel
		if verbose {
			charmLevel = charmlog.DebugLevel
		}
		handler = charmlog.NewWithOptions(os.Stderr, charmlog.Options{
			Level:           charmLevel,
			ReportTimestamp: true,
		})
	default:
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	}
	slog.SetDefault(slog.New(handler))
}

// envKeys are bound to SITEGEN_<KEY> with dots replaced by underscores.
var envKeys = []string{
	"llm.provider", "llm.socket_path", "llm.base_url", "llm.api_key", "llm.model", "llm.timeout",
	"embeddings.enabled", "embeddings.socket_path", "embeddings.base_url", "embeddings.api_key", "embeddings.model", "embeddings.timeout",
	"images.enabled", "images.base_url", "images.api_key", "images.model", "images.size", "images.timeout",
	"generation.near_duplicate_threshold", "generation.similarity_concurrency", "generation.lexical", "generation.seed",
	"storage.backend", "storage.dir", "storage.endpoint", "storage.bucket", "storage.prefix",
	"storage.access_key_id", "storage.secret_access_key", "storage.use_ssl",
	"elasticsearch.enabled", "elasticsearch.index", "elasticsearch.username", "elasticsearch.password",
	"scraper.timeout", "scraper.user_agent",
	"server.addr",
	"mcp.name", "mcp.version",
	"log.format",
}

func initConfig() {
	// .env is optional; it usually carries API keys
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("failed to load .env", "error", err)
	}

	// Start with defaults
	cfg = config.Defaults()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath("./config")
		viper.AddConfigPath("/etc/sitegen")
		viper.AddConfigPath(".")
	}

	// Environment variable overrides
	// SITEGEN_LLM_MODEL -> llm.model
	viper.SetEnvPrefix("SITEGEN")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	for _, key := range envKeys {
		viper.BindEnv(key)
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			slog.Warn("config file error", "error", err)
		}
		// No config file - use defaults + env vars
	}

	// Unmarshal into struct (merges config file with defaults)
	if err := viper.Unmarshal(&cfg); err != nil {
		slog.Warn("failed to parse config", "error", err)
	}

	// Handle special case: addresses as comma-separated string from env
	if addrs := os.Getenv("SITEGEN_ELASTICSEARCH_ADDRESSES"); addrs != "" {
		cfg.Elasticsearch.Addresses = strings.Split(addrs, ",")
	}

	// Provider keys under their usual names
	if cfg.LLM.APIKey == "" {
		switch cfg.LLM.Provider {
		case "openai":
			cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
		case "gemini":
			cfg.LLM.APIKey = os.Getenv("GEMINI_API_KEY")
		}
	}
	if cfg.Images.APIKey == "" {
		cfg.Images.APIKey = os.Getenv("OPENAI_API_KEY")
	}
}
