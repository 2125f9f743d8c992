package llm

import (
	"context"
	"encoding/base64"
	"fmt"

	openai "github.com/meguminnnnnnnnn/go-openai"
)

// OpenAI is an LLM client backed by the OpenAI chat completion API.
// Image prompts go to visionModel, which may differ from the text model.
type OpenAI struct {
	client      *openai.Client
	model       string
	visionModel string
}

// NewOpenAI creates a new OpenAI client. When visionModel is empty, the text
// model is used for image prompts as well.
func NewOpenAI(model, visionModel, apiKey string) (*OpenAI, error) {
	config := openai.DefaultConfig(apiKey)
	client := openai.NewClientWithConfig(config)
	if visionModel == "" {
		visionModel = model
	}
	return &OpenAI{
		client:      client,
		model:       model,
		visionModel: visionModel,
	}, nil
}

// Generate sends a text-only prompt and returns the model's text output.
func (o *OpenAI) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to create chat completion: %w", err)
	}
	return firstChoiceContent(&resp)
}

// GenerateWithImage sends a prompt with the image embedded as a data URL and
// returns the model's text output.
func (o *OpenAI) GenerateWithImage(ctx context.Context, prompt string, image []byte, mimeType string) (string, error) {
	dataURL := fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(image))

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.visionModel,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{Type: openai.ChatMessagePartTypeText, Text: prompt},
					{
						Type:     openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{URL: dataURL},
					},
				},
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to create chat completion: %w", err)
	}
	return firstChoiceContent(&resp)
}

// firstChoiceContent extracts the message content of the first choice.
func firstChoiceContent(resp *openai.ChatCompletionResponse) (string, error) {
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai response had no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
