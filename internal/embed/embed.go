// Package embed turns text into L2-normalized embedding vectors through a
// Genkit embedder. It also owns Genkit initialization for the configured
// AI provider, since generation and embedding share the same instance.
package embed

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	"github.com/firebase/genkit/go/plugins/googlegenai"
	"github.com/firebase/genkit/go/plugins/ollama"

	"github.com/askphys/askphys/internal/config"
	"github.com/askphys/askphys/internal/log"
)

var (
	// ErrEmptyInput indicates the text to embed is empty.
	ErrEmptyInput = errors.New("empty embedding input")

	// ErrNoEmbedding indicates the provider returned no vector.
	ErrNoEmbedding = errors.New("embedder returned no embedding")

	// ErrDimension indicates the provider returned a vector whose length
	// does not match the configured dimension.
	ErrDimension = errors.New("unexpected embedding dimension")
)

// Setup initializes Genkit with the configured AI provider plugin.
// Ollama requires explicit model and embedder registration; Gemini models
// are discovered automatically.
func Setup(ctx context.Context, cfg *config.Config) (*genkit.Genkit, error) {
	switch cfg.Provider {
	case config.ProviderOllama:
		plugin := &ollama.Ollama{ServerAddress: cfg.OllamaHost}
		g := genkit.Init(ctx, genkit.WithPlugins(plugin))
		if g == nil {
			return nil, errors.New("initializing genkit with ollama provider")
		}
		plugin.DefineModel(g, ollama.ModelDefinition{
			Name: cfg.ModelName,
			Type: "chat",
		}, nil)
		plugin.DefineEmbedder(g, cfg.OllamaHost, cfg.EmbedderModel, nil)
		return g, nil

	default: // gemini
		g := genkit.Init(ctx, genkit.WithPlugins(&googlegenai.GoogleAI{}))
		if g == nil {
			return nil, errors.New("initializing genkit with gemini provider")
		}
		return g, nil
	}
}

// Embedder resolves the embedder registered by the provider plugin.
// Ollama keys embedders by server address; Gemini by model name.
func Embedder(g *genkit.Genkit, cfg *config.Config) ai.Embedder {
	if cfg.Provider == config.ProviderOllama {
		return ollama.Embedder(g, cfg.OllamaHost)
	}
	return googlegenai.GoogleAIEmbedder(g, cfg.EmbedderModel)
}

// ModelName returns the Genkit model reference for generation,
// e.g. "googleai/gemini-2.5-flash" or "ollama/llama3.3".
func ModelName(cfg *config.Config) string {
	if cfg.Provider == config.ProviderOllama {
		return "ollama/" + cfg.ModelName
	}
	return "googleai/" + cfg.ModelName
}

// Client embeds text with a fixed output dimension.
// Vectors are L2-normalized before being returned, so the cosine
// similarity of two embeddings equals their dot product.
type Client struct {
	embedder ai.Embedder
	dim      int
	logger   log.Logger
}

// NewClient creates a Client around an embedder expected to produce
// dim-length vectors.
func NewClient(embedder ai.Embedder, dim int, logger log.Logger) *Client {
	return &Client{embedder: embedder, dim: dim, logger: logger}
}

// Dimension returns the expected vector length.
func (c *Client) Dimension() int { return c.dim }

// Embed produces the normalized embedding of text.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, ErrEmptyInput
	}

	resp, err := c.embedder.Embed(ctx, &ai.EmbedRequest{
		Input: []*ai.Document{ai.DocumentFromText(text, nil)},
	})
	if err != nil {
		return nil, fmt.Errorf("generating embedding: %w", err)
	}
	if len(resp.Embeddings) == 0 || len(resp.Embeddings[0].Embedding) == 0 {
		return nil, ErrNoEmbedding
	}

	vec := resp.Embeddings[0].Embedding
	if len(vec) != c.dim {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrDimension, len(vec), c.dim)
	}
	return Normalize(vec), nil
}

// Normalize scales v to unit length. A zero vector is returned unchanged
// rather than dividing by zero.
func Normalize(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return v
	}
	norm := math.Sqrt(sum)
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(float64(x) / norm)
	}
	return out
}
