package speech

import (
	"bytes"
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAI is a Transcriber backed by the OpenAI audio transcriptions API
// (Whisper).
type OpenAI struct {
	client *openai.Client
	model  string
}

// OpenAIConfig configures the OpenAI transcription backend.
type OpenAIConfig struct {
	// APIKey authenticates requests. Required.
	APIKey string

	// BaseURL overrides the API endpoint for compatible providers.
	BaseURL string

	// Model is the transcription model name. Defaults to whisper-1.
	Model string
}

// NewOpenAI creates an OpenAI Whisper transcriber.
func NewOpenAI(cfg OpenAIConfig) (*OpenAI, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("speech: openai config missing api key")
	}
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	model := cfg.Model
	if model == "" {
		model = openai.AudioModelWhisper1
	}
	client := openai.NewClient(opts...)
	return &OpenAI{client: &client, model: model}, nil
}

// Transcribe implements Transcriber.
func (o *OpenAI) Transcribe(ctx context.Context, audio Audio) (string, error) {
	name := "voice" + extensionFor(audio.MIMEType)
	resp, err := o.client.Audio.Transcriptions.New(ctx, openai.AudioTranscriptionNewParams{
		Model: o.model,
		File:  openai.File(bytes.NewReader(audio.Data), name, audio.MIMEType),
	})
	if err != nil {
		return "", fmt.Errorf("speech: openai transcription: %w", err)
	}
	return resp.Text, nil
}

// extensionFor maps a MIME type to the filename extension the API expects.
func extensionFor(mimeType string) string {
	switch mimeType {
	case "audio/mpeg", "audio/mp3":
		return ".mp3"
	case "audio/ogg":
		return ".ogg"
	case "audio/webm":
		return ".webm"
	case "audio/mp4", "audio/m4a":
		return ".m4a"
	default:
		return ".wav"
	}
}
