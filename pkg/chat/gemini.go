package chat

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// Gemini is a Processor backed by the Google Gemini API.
type Gemini struct {
	client *genai.Client
	model  string
}

// GeminiConfig configures the Gemini chat backend.
type GeminiConfig struct {
	// APIKey authenticates requests. Required.
	APIKey string

	// Model is the generation model name. Defaults to gemini-2.0-flash.
	Model string
}

// NewGemini creates a Gemini chat processor.
func NewGemini(ctx context.Context, cfg GeminiConfig) (*Gemini, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("chat: gemini config missing api key")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: cfg.APIKey})
	if err != nil {
		return nil, fmt.Errorf("chat: gemini client: %w", err)
	}
	model := cfg.Model
	if model == "" {
		model = "gemini-2.0-flash"
	}
	return &Gemini{client: client, model: model}, nil
}

// Process implements Processor.
func (g *Gemini) Process(ctx context.Context, systemPrompt, message string) (string, error) {
	var config *genai.GenerateContentConfig
	if systemPrompt != "" {
		config = &genai.GenerateContentConfig{
			SystemInstruction: &genai.Content{
				Parts: []*genai.Part{{Text: systemPrompt}},
			},
		}
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, []*genai.Content{
		{Parts: []*genai.Part{{Text: message}}, Role: "user"},
	}, config)
	if err != nil {
		return "", fmt.Errorf("chat: gemini generate: %w", err)
	}

	var sb strings.Builder
	if resp != nil && len(resp.Candidates) > 0 && resp.Candidates[0].Content != nil {
		for _, part := range resp.Candidates[0].Content.Parts {
			sb.WriteString(part.Text)
		}
	}
	return sb.String(), nil
}
