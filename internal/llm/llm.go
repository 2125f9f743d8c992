package llm

import (
	"context"
	"fmt"

	"docurag/internal/config"
)

// LLM is the common interface every generative model client implements.
// GenerateWithImage passes the image bytes inline to the model, for
// providers that support multimodal prompts.
type LLM interface {
	Generate(ctx context.Context, prompt string) (string, error)
	GenerateWithImage(ctx context.Context, prompt string, image []byte, mimeType string) (string, error)
}

// NewClient is a factory that creates an LLM client for the configured
// provider.
func NewClient(ctx context.Context, cfg config.LLMConfig) (LLM, error) {
	switch cfg.Provider {
	case "gemini":
		return NewGemini(ctx, cfg.Gemini.Model, cfg.Gemini.APIKey)
	case "openai":
		return NewOpenAI(cfg.OpenAI.Model, cfg.OpenAI.VisionModel, cfg.OpenAI.APIKey)
	case "ollama":
		return NewOllama(cfg.Ollama.Model, cfg.Ollama.BaseURL)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
}
