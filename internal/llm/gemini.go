package llm

import (
	"context"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Gemini is an LLM client backed by the Gemini API. Unlike a chat client it
// keeps no session: every call is a standalone generation.
type Gemini struct {
	model *genai.GenerativeModel
}

// NewGemini creates a new Gemini client for the given model name.
func NewGemini(ctx context.Context, model, apiKey string) (*Gemini, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}

	return &Gemini{model: client.GenerativeModel(model)}, nil
}

// Generate sends a text-only prompt and returns the model's text output.
func (g *Gemini) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", err
	}
	return textFromResponse(resp)
}

// GenerateWithImage sends a prompt together with inline image bytes and
// returns the model's text output.
func (g *Gemini) GenerateWithImage(ctx context.Context, prompt string, image []byte, mimeType string) (string, error) {
	resp, err := g.model.GenerateContent(ctx,
		genai.Text(prompt),
		genai.Blob{MIMEType: mimeType, Data: image},
	)
	if err != nil {
		return "", err
	}
	return textFromResponse(resp)
}

// textFromResponse extracts the text of the first candidate's parts.
func textFromResponse(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("gemini response was empty")
	}
	cand := resp.Candidates[0]
	if cand.Content == nil {
		return "", fmt.Errorf("gemini response had no content")
	}
	var out string
	for _, part := range cand.Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			out += string(txt)
		}
	}
	return out, nil
}
