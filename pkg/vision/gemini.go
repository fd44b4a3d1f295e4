package vision

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// describePrompt asks for a transcription-style description so the result
// can flow back into the chat pipeline as plain text.
const describePrompt = "Describe what this image shows, in one or two plain sentences."

// Gemini is a Describer backed by the Google Gemini multimodal API.
type Gemini struct {
	client *genai.Client
	model  string
}

// GeminiConfig configures the Gemini vision backend.
type GeminiConfig struct {
	// APIKey authenticates requests. Required.
	APIKey string

	// Model is the multimodal model name. Defaults to gemini-2.0-flash.
	Model string
}

// NewGemini creates a Gemini vision describer.
func NewGemini(ctx context.Context, cfg GeminiConfig) (*Gemini, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("vision: gemini config missing api key")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: cfg.APIKey})
	if err != nil {
		return nil, fmt.Errorf("vision: gemini client: %w", err)
	}
	model := cfg.Model
	if model == "" {
		model = "gemini-2.0-flash"
	}
	return &Gemini{client: client, model: model}, nil
}

// Describe implements Describer.
func (g *Gemini) Describe(ctx context.Context, jpegData []byte) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, []*genai.Content{
		{
			Parts: []*genai.Part{
				{InlineData: &genai.Blob{MIMEType: "image/jpeg", Data: jpegData}},
				{Text: describePrompt},
			},
			Role: "user",
		},
	}, nil)
	if err != nil {
		return "", fmt.Errorf("vision: gemini generate: %w", err)
	}

	var sb strings.Builder
	if resp != nil && len(resp.Candidates) > 0 && resp.Candidates[0].Content != nil {
		for _, part := range resp.Candidates[0].Content.Parts {
			sb.WriteString(part.Text)
		}
	}
	return sb.String(), nil
}
