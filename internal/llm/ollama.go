package llm

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	olla "github.com/ollama/ollama/api"
)

// Ollama is an LLM client backed by a local or remote Ollama instance.
type Ollama struct {
	client *olla.Client
	model  string
}

// NewOllama creates a new Ollama client. An empty baseURL defaults to the
// standard local instance address.
func NewOllama(model, baseURL string) (*Ollama, error) {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}

	parsedURL, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}

	hc := &http.Client{
		Timeout: 120 * time.Second,
	}

	return &Ollama{client: olla.NewClient(parsedURL, hc), model: model}, nil
}

// Generate sends a text-only prompt and returns the model's text output.
func (o *Ollama) Generate(ctx context.Context, prompt string) (string, error) {
	return o.generate(ctx, &olla.GenerateRequest{
		Model:  o.model,
		Prompt: prompt,
		Stream: new(bool), // non-streaming
	})
}

// GenerateWithImage sends a prompt together with raw image bytes and returns
// the model's text output.
func (o *Ollama) GenerateWithImage(ctx context.Context, prompt string, image []byte, mimeType string) (string, error) {
	return o.generate(ctx, &olla.GenerateRequest{
		Model:  o.model,
		Prompt: prompt,
		Images: []olla.ImageData{image},
		Stream: new(bool),
	})
}

func (o *Ollama) generate(ctx context.Context, req *olla.GenerateRequest) (string, error) {
	var result string
	err := o.client.Generate(ctx, req, func(resp olla.GenerateResponse) error {
		result = resp.Response
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate content with ollama: %w", err)
	}
	return result, nil
}
