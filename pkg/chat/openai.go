package chat

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAI is a Processor backed by the OpenAI chat completions API
// (or any compatible endpoint via a custom base URL).
type OpenAI struct {
	client *openai.Client
	model  string
}

// OpenAIConfig configures the OpenAI chat backend.
type OpenAIConfig struct {
	// APIKey authenticates requests. Required.
	APIKey string

	// BaseURL overrides the API endpoint for OpenAI-compatible providers.
	BaseURL string

	// Model is the chat model name. Defaults to gpt-4o-mini.
	Model string
}

// NewOpenAI creates an OpenAI chat processor.
func NewOpenAI(cfg OpenAIConfig) (*OpenAI, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("chat: openai config missing api key")
	}
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	model := cfg.Model
	if model == "" {
		model = openai.ChatModelGPT4oMini
	}
	client := openai.NewClient(opts...)
	return &OpenAI{client: &client, model: model}, nil
}

// Process implements Processor.
func (o *OpenAI) Process(ctx context.Context, systemPrompt, message string) (string, error) {
	var messages []openai.ChatCompletionMessageParamUnion
	if systemPrompt != "" {
		messages = append(messages, openai.SystemMessage(systemPrompt))
	}
	messages = append(messages, openai.UserMessage(message))

	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:    o.model,
		Messages: messages,
	})
	if err != nil {
		return "", fmt.Errorf("chat: openai completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat: openai returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
