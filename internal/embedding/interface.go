package embedding

import (
	"context"
	"fmt"

	"docurag/internal/config"
)

// Embedding is the interface every embedding model client implements.
type Embedding interface {
	// Embed generates an embedding vector for a single text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embedding vectors for a batch of texts,
	// one vector per input in the same order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// NewClient is a factory that creates an embedding client for the configured
// provider.
func NewClient(cfg config.EmbeddingConfig) (Embedding, error) {
	switch cfg.Provider {
	case "gemini":
		return NewGoogleModel(cfg.Gemini.APIKey, cfg.Gemini.Model)
	case "openai":
		return NewOpenAIModel(cfg.OpenAI.APIKey, cfg.OpenAI.Model)
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.Provider)
	}
}
