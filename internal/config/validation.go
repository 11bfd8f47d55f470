package config

import (
	"fmt"
	"os"
	"slices"
)

// Validate checks all configuration values.
// Returns sentinel errors that can be checked with errors.Is.
func (c *Config) Validate() error {
	if c == nil {
		return ErrConfigNil
	}

	// Provider and models.
	if !slices.Contains([]string{ProviderGemini, ProviderOllama}, c.Provider) {
		return fmt.Errorf("%w: %q, must be one of: gemini, ollama", ErrInvalidProvider, c.Provider)
	}
	if c.Provider == ProviderGemini && os.Getenv("GEMINI_API_KEY") == "" {
		return fmt.Errorf("%w: GEMINI_API_KEY environment variable is required for the gemini provider\n"+
			"Get your API key at: https://ai.google.dev/gemini-api/docs/api-key",
			ErrMissingAPIKey)
	}
	if c.ModelName == "" {
		return fmt.Errorf("%w: model_name cannot be empty", ErrInvalidModelName)
	}
	if c.EmbedderModel == "" {
		return fmt.Errorf("%w: embedder_model cannot be empty", ErrInvalidEmbedderModel)
	}
	// Must match the vector(N) column in db/migrations.
	if c.EmbeddingDim < 1 || c.EmbeddingDim > 4096 {
		return fmt.Errorf("%w: must be between 1 and 4096, got %d", ErrInvalidEmbeddingDim, c.EmbeddingDim)
	}

	// Chunking. An overlap >= chunk_size never advances the window.
	if c.ChunkSize < 1 {
		return fmt.Errorf("%w: chunk_size must be positive, got %d", ErrInvalidChunkSize, c.ChunkSize)
	}
	if c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("%w: must satisfy 0 <= overlap < chunk_size, got overlap=%d chunk_size=%d",
			ErrInvalidChunkOverlap, c.ChunkOverlap, c.ChunkSize)
	}
	if c.InsertBatchSize < 1 || c.InsertBatchSize > 1000 {
		return fmt.Errorf("%w: must be between 1 and 1000, got %d", ErrInvalidBatchSize, c.InsertBatchSize)
	}

	// Retrieval. top_k is capped so the assembled context stays inside the
	// generation window.
	if c.SimilarityThreshold < 0 || c.SimilarityThreshold > 1 {
		return fmt.Errorf("%w: must be between 0.0 and 1.0, got %.2f", ErrInvalidThreshold, c.SimilarityThreshold)
	}
	if c.TopK < 1 || c.TopK > 10 {
		return fmt.Errorf("%w: must be between 1 and 10, got %d", ErrInvalidTopK, c.TopK)
	}

	// PostgreSQL.
	if c.PostgresHost == "" {
		return fmt.Errorf("%w: host cannot be empty", ErrInvalidPostgresHost)
	}
	if c.PostgresPort < 1 || c.PostgresPort > 65535 {
		return fmt.Errorf("%w: must be between 1 and 65535, got %d", ErrInvalidPostgresPort, c.PostgresPort)
	}
	if c.PostgresDBName == "" {
		return fmt.Errorf("%w: database name cannot be empty", ErrInvalidPostgresDBName)
	}
	validSSLModes := []string{"disable", "require", "verify-ca", "verify-full"}
	if !slices.Contains(validSSLModes, c.PostgresSSLMode) {
		return fmt.Errorf("%w: %q, must be one of: %v", ErrInvalidPostgresSSLMode, c.PostgresSSLMode, validSSLModes)
	}

	return nil
}
