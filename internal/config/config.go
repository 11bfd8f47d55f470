// Package config provides application configuration with multi-source
// priority.
//
// Sources, highest to lowest:
//  1. Environment variables (ASKPHYS_* plus DATABASE_URL and GEMINI_API_KEY)
//  2. Config file (./config.yaml or ~/.askphys/config.yaml)
//  3. Defaults
//
// Validation is fail-fast: Load returns sentinel errors checkable with
// errors.Is. Sensitive fields are masked in MarshalJSON.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

var (
	// ErrConfigNil indicates the configuration is nil.
	ErrConfigNil = errors.New("configuration is nil")

	// ErrMissingAPIKey indicates a required API key is missing.
	ErrMissingAPIKey = errors.New("missing API key")

	// ErrInvalidProvider indicates the AI provider is not supported.
	ErrInvalidProvider = errors.New("invalid provider")

	// ErrInvalidModelName indicates the generation model name is invalid.
	ErrInvalidModelName = errors.New("invalid model name")

	// ErrInvalidEmbedderModel indicates the embedder model is invalid.
	ErrInvalidEmbedderModel = errors.New("invalid embedder model")

	// ErrInvalidEmbeddingDim indicates the embedding dimension is out of range.
	ErrInvalidEmbeddingDim = errors.New("invalid embedding dimension")

	// ErrInvalidChunkSize indicates chunk_size is not positive.
	ErrInvalidChunkSize = errors.New("invalid chunk size")

	// ErrInvalidChunkOverlap indicates chunk_overlap is negative or not
	// smaller than chunk_size.
	ErrInvalidChunkOverlap = errors.New("invalid chunk overlap")

	// ErrInvalidThreshold indicates similarity_threshold is out of [0, 1].
	ErrInvalidThreshold = errors.New("invalid similarity threshold")

	// ErrInvalidTopK indicates top_k is out of range.
	ErrInvalidTopK = errors.New("invalid top_k")

	// ErrInvalidBatchSize indicates insert_batch_size is out of range.
	ErrInvalidBatchSize = errors.New("invalid insert batch size")

	// ErrInvalidPostgresHost indicates the PostgreSQL host is empty.
	ErrInvalidPostgresHost = errors.New("invalid PostgreSQL host")

	// ErrInvalidPostgresPort indicates the PostgreSQL port is out of range.
	ErrInvalidPostgresPort = errors.New("invalid PostgreSQL port")

	// ErrInvalidPostgresDBName indicates the PostgreSQL database name is empty.
	ErrInvalidPostgresDBName = errors.New("invalid PostgreSQL database name")

	// ErrInvalidPostgresSSLMode indicates the PostgreSQL SSL mode is invalid.
	ErrInvalidPostgresSSLMode = errors.New("invalid PostgreSQL SSL mode")
)

// AI provider identifiers used in Config.Provider.
const (
	ProviderGemini = "gemini"
	ProviderOllama = "ollama"
)

// Defaults for the retrieval pipeline. Exported so pipelines can fall back
// to them when constructed outside of Load (tests, tools).
const (
	DefaultChunkSize           = 1000
	DefaultChunkOverlap        = 200
	DefaultSimilarityThreshold = 0.3
	DefaultTopK                = 5
	DefaultInsertBatchSize     = 20
	DefaultMinDocumentLength   = 10
	DefaultEmbeddingDim        = 768
)

// Config stores application configuration.
// Sensitive fields are masked in MarshalJSON; when adding secrets, update it.
type Config struct {
	// AI provider and models
	Provider      string `mapstructure:"provider" json:"provider"`
	ModelName     string `mapstructure:"model_name" json:"model_name"`
	EmbedderModel string `mapstructure:"embedder_model" json:"embedder_model"`
	EmbeddingDim  int    `mapstructure:"embedding_dimension" json:"embedding_dimension"`
	OllamaHost    string `mapstructure:"ollama_host" json:"ollama_host"`

	// Ingestion
	ChunkSize         int    `mapstructure:"chunk_size" json:"chunk_size"`
	ChunkOverlap      int    `mapstructure:"chunk_overlap" json:"chunk_overlap"`
	InsertBatchSize   int    `mapstructure:"insert_batch_size" json:"insert_batch_size"`
	MinDocumentLength int    `mapstructure:"min_document_length" json:"min_document_length"`
	CorpusDir         string `mapstructure:"corpus_dir" json:"corpus_dir"`

	// Retrieval
	SimilarityThreshold float32 `mapstructure:"similarity_threshold" json:"similarity_threshold"`
	TopK                int     `mapstructure:"top_k" json:"top_k"`

	// PostgreSQL (pgvector store)
	PostgresHost     string `mapstructure:"postgres_host" json:"postgres_host"`
	PostgresPort     int    `mapstructure:"postgres_port" json:"postgres_port"`
	PostgresUser     string `mapstructure:"postgres_user" json:"postgres_user"`
	PostgresPassword string `mapstructure:"postgres_password" json:"-"`
	PostgresDBName   string `mapstructure:"postgres_dbname" json:"postgres_dbname"`
	PostgresSSLMode  string `mapstructure:"postgres_ssl_mode" json:"postgres_ssl_mode"`

	// HTTP server
	ServerAddr  string   `mapstructure:"server_addr" json:"server_addr"`
	CORSOrigins []string `mapstructure:"cors_origins" json:"cors_origins"`
}

// Load reads configuration from defaults, an optional config.yaml and the
// environment, then validates it.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".askphys"))
	}

	setDefaults(v)

	v.SetEnvPrefix("ASKPHYS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine; defaults plus env apply.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		slog.Debug("config file not found, using defaults")
	}

	cfg, err := unmarshal(v)
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating configuration: %w", err)
	}

	return cfg, nil
}

// unmarshal maps viper state into a Config and applies DATABASE_URL.
// Split out from Load so tests can exercise it with a private viper.
func unmarshal(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing configuration: %w", err)
	}

	// DATABASE_URL has the highest priority for the postgres_* group.
	if err := cfg.parseDatabaseURL(); err != nil {
		return nil, fmt.Errorf("parsing DATABASE_URL: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets all default configuration values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("provider", ProviderGemini)
	v.SetDefault("model_name", "gemini-2.5-flash")
	v.SetDefault("embedder_model", "gemini-embedding-001")
	v.SetDefault("embedding_dimension", DefaultEmbeddingDim)
	v.SetDefault("ollama_host", "http://localhost:11434")

	v.SetDefault("chunk_size", DefaultChunkSize)
	v.SetDefault("chunk_overlap", DefaultChunkOverlap)
	v.SetDefault("insert_batch_size", DefaultInsertBatchSize)
	v.SetDefault("min_document_length", DefaultMinDocumentLength)
	v.SetDefault("corpus_dir", "docs")

	v.SetDefault("similarity_threshold", DefaultSimilarityThreshold)
	v.SetDefault("top_k", DefaultTopK)

	v.SetDefault("postgres_host", "localhost")
	v.SetDefault("postgres_port", 5432)
	v.SetDefault("postgres_user", "askphys")
	v.SetDefault("postgres_dbname", "askphys")
	v.SetDefault("postgres_ssl_mode", "disable")

	v.SetDefault("server_addr", "127.0.0.1:3400")
	v.SetDefault("cors_origins", []string{"*"})
}

// MarshalJSON masks sensitive fields so the config can be logged safely.
func (c *Config) MarshalJSON() ([]byte, error) {
	type alias Config // avoid recursion
	masked := struct {
		alias
		PostgresPassword string `json:"postgres_password"`
	}{
		alias:            alias(*c),
		PostgresPassword: "***",
	}
	if c.PostgresPassword == "" {
		masked.PostgresPassword = ""
	}
	return json.Marshal(masked)
}
