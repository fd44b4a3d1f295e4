// Package gateway implements the session-scoped input dispatcher: it
// classifies incoming events by declared input type, enforces the feature
// gate and required-field invariants, runs the type-specific action against
// the injected collaborators, and appends an action-log record for every
// dispatched request.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/animahq/anima/pkg/chat"
	"github.com/animahq/anima/pkg/hub"
	"github.com/animahq/anima/pkg/session"
	"github.com/animahq/anima/pkg/social"
	"github.com/animahq/anima/pkg/speech"
	"github.com/animahq/anima/pkg/storage"
	"github.com/animahq/anima/pkg/subconscious"
	"github.com/animahq/anima/pkg/vision"
)

// Input types accepted by Dispatch.
const (
	InputNormalChat = "Normal Chat Message"
	InputVoice      = "Voice"
	InputImage      = "Image"
	InputTwitter    = "Twitter Message"
	InputBrain      = "Brain Message"
	InputMemory     = "Memory Request"
	InputWebhook    = "RPC Webhook"
	InputReasoning  = "Reasoning Server"
)

// Output types produced by Dispatch.
const (
	OutputCompleteStream  = "Complete stream"
	OutputText            = "Text"
	OutputMemoryArray     = "Memory Array"
	OutputWebhook         = "Webhook"
	OutputActionTriggered = "Action Triggered"
	OutputError           = "Error"
)

// Dispatch error taxonomy. Configuration and validation errors carry their
// own message to the caller; collaborator failures surface only as
// ErrProcessing, with the detail kept in the action log.
var (
	ErrFeatureDisabled  = errors.New("gateway: feature disabled")
	ErrMissingFields    = errors.New("gateway: missing required fields")
	ErrInvalidPayload   = errors.New("gateway: invalid payload")
	ErrUnknownInputType = errors.New("gateway: unknown input type")
	ErrProcessing       = errors.New("gateway: processing failed")
)

// Request is one dispatch call. Payload is decoded per input type: a JSON
// string for chat, passthrough, and reasoning bundles; a media object for
// voice and image.
type Request struct {
	SessionID string          `json:"sessionId,omitempty"`
	InputType string          `json:"inputType"`
	Payload   json.RawMessage `json:"payload"`
}

// VoicePayload is the payload shape for Voice dispatches. Data is base64 in
// JSON. A SampleRate marks Data as raw 16-bit mono PCM to be normalized;
// otherwise Data is a complete clip described by MIMEType.
type VoicePayload struct {
	Data       []byte `json:"data"`
	MIMEType   string `json:"mimeType,omitempty"`
	SampleRate int    `json:"sampleRate,omitempty"`
}

// ImagePayload is the payload shape for Image dispatches.
type ImagePayload struct {
	Data []byte `json:"data"`
}

// Response is the dispatch result returned to the caller. Exactly one of
// Response and Error is set.
type Response struct {
	SessionID  string `json:"sessionId"`
	OutputType string `json:"outputType,omitempty"`
	Response   any    `json:"response,omitempty"`
	Error      string `json:"error,omitempty"`
}

// Config carries the dispatcher's runtime settings.
type Config struct {
	// Enabled is the feature gate. When false every dispatch and subscribe
	// fails immediately with ErrFeatureDisabled, before any log entry.
	Enabled bool

	// SystemPrompt is prepended to every chat-processing call.
	SystemPrompt string

	// ChatBackend and SpeechBackend name the registered collaborator
	// backends to route to.
	ChatBackend   string
	SpeechBackend string
}

// Options bundles the collaborators injected into a Gateway. Hub and Log are
// required; the rest may be nil when the corresponding input types are not
// served.
type Options struct {
	Config  Config
	Chat    *chat.Mux
	Speech  *speech.Mux
	Vision  vision.Describer
	Memory  *subconscious.Store
	Poster  social.Poster
	Hub     *hub.Hub
	Log     *session.Log
	Archive storage.FileStore
}

// Gateway routes input events to their processing action and records every
// outcome. All state is injected at construction; a process may run several
// independent gateways.
type Gateway struct {
	cfg     Config
	chat    *chat.Mux
	speech  *speech.Mux
	vision  vision.Describer
	memory  *subconscious.Store
	hub     *hub.Hub
	log     *session.Log
	archive storage.FileStore
	trigger *Trigger
}

// New creates a Gateway from opts.
func New(opts Options) *Gateway {
	h := opts.Hub
	if h == nil {
		h = hub.New()
	}
	l := opts.Log
	if l == nil {
		l = session.NewLog()
	}
	return &Gateway{
		cfg:     opts.Config,
		chat:    opts.Chat,
		speech:  opts.Speech,
		vision:  opts.Vision,
		memory:  opts.Memory,
		hub:     h,
		log:     l,
		archive: opts.Archive,
		trigger: NewTrigger(TriggerOptions{
			Chat:         opts.Chat,
			ChatBackend:  opts.Config.ChatBackend,
			SystemPrompt: opts.Config.SystemPrompt,
			Poster:       opts.Poster,
			Hub:          h,
		}),
	}
}

// Enabled reports the feature gate.
func (g *Gateway) Enabled() bool { return g.cfg.Enabled }

// Hub returns the broadcast hub subscribers attach to.
func (g *Gateway) Hub() *hub.Hub { return g.hub }

// Log returns the action log.
func (g *Gateway) Log() *session.Log { return g.log }

// Dispatch routes one input event. It returns the caller-facing Response and
// an error from the taxonomy above; on success the error is nil. Every call
// past the feature gate appends exactly one action-log entry.
func (g *Gateway) Dispatch(ctx context.Context, req Request) (Response, error) {
	if !g.cfg.Enabled {
		return Response{Error: "feature disabled"}, ErrFeatureDisabled
	}

	sessionID := session.GenerateID(req.SessionID)

	if req.InputType == "" || len(req.Payload) == 0 {
		return g.fail(sessionID, req.InputType, "missing required fields", ErrMissingFields)
	}

	outputType, result, err := g.route(ctx, sessionID, req)
	if err != nil {
		switch {
		case errors.Is(err, ErrUnknownInputType), errors.Is(err, ErrInvalidPayload):
			return g.fail(sessionID, req.InputType, err.Error(), err)
		default:
			// Collaborator failure: log the detail, return a generic error.
			slog.Error("dispatch failed", "session", sessionID, "inputType", req.InputType, "err", err)
			resp, _ := g.fail(sessionID, req.InputType, err.Error(), nil)
			resp.Error = "processing failed"
			return resp, ErrProcessing
		}
	}

	g.log.Append(session.Entry{
		SessionID:  sessionID,
		Timestamp:  time.Now().UTC(),
		InputType:  req.InputType,
		OutputType: outputType,
		Response:   result,
	})
	return Response{SessionID: sessionID, OutputType: outputType, Response: result}, nil
}

// fail appends an Error log entry and shapes the caller-facing response.
func (g *Gateway) fail(sessionID, inputType, message string, err error) (Response, error) {
	g.log.Append(session.Entry{
		SessionID:  sessionID,
		Timestamp:  time.Now().UTC(),
		InputType:  inputType,
		OutputType: OutputError,
		Error:      message,
	})
	return Response{SessionID: sessionID, Error: message}, err
}

// route executes the type-specific action and returns (outputType, result).
func (g *Gateway) route(ctx context.Context, sessionID string, req Request) (string, any, error) {
	switch req.InputType {
	case InputNormalChat:
		text, err := decodeString(req.Payload)
		if err != nil {
			return "", nil, err
		}
		if g.chat == nil {
			return "", nil, errors.New("gateway: chat collaborator not configured")
		}
		out, err := g.chat.Process(ctx, g.cfg.ChatBackend, g.cfg.SystemPrompt, text)
		if err != nil {
			return "", nil, err
		}
		return OutputCompleteStream, out, nil

	case InputVoice:
		var p VoicePayload
		if err := json.Unmarshal(req.Payload, &p); err != nil || len(p.Data) == 0 {
			return "", nil, fmt.Errorf("%w: voice payload needs data", ErrInvalidPayload)
		}
		audio := speech.Audio{Data: p.Data, MIMEType: p.MIMEType}
		if p.SampleRate > 0 {
			normalized, err := speech.NormalizePCM(p.Data, p.SampleRate)
			if err != nil {
				return "", nil, err
			}
			audio = normalized
		}
		g.archiveMedia(ctx, sessionID, "voice", audio.Data)
		if g.speech == nil {
			return "", nil, errors.New("gateway: transcription collaborator not configured")
		}
		text, err := g.speech.Transcribe(ctx, g.cfg.SpeechBackend, audio)
		if err != nil {
			return "", nil, err
		}
		return OutputText, text, nil

	case InputImage:
		var p ImagePayload
		if err := json.Unmarshal(req.Payload, &p); err != nil || len(p.Data) == 0 {
			return "", nil, fmt.Errorf("%w: image payload needs data", ErrInvalidPayload)
		}
		jpegData, err := vision.Normalize(p.Data)
		if err != nil {
			return "", nil, err
		}
		g.archiveMedia(ctx, sessionID, "image", jpegData)
		if g.vision == nil {
			return "", nil, errors.New("gateway: vision collaborator not configured")
		}
		description, err := g.vision.Describe(ctx, jpegData)
		if err != nil {
			return "", nil, err
		}
		return OutputText, description, nil

	case InputTwitter, InputBrain:
		text, err := decodeString(req.Payload)
		if err != nil {
			return "", nil, err
		}
		return OutputText, text, nil

	case InputMemory:
		if g.memory == nil {
			return "", nil, errors.New("gateway: memory collaborator not configured")
		}
		entries, err := g.memory.All(ctx)
		if err != nil {
			return "", nil, err
		}
		if entries == nil {
			entries = []subconscious.Entry{}
		}
		return OutputMemoryArray, entries, nil

	case InputWebhook:
		return OutputWebhook, g.log.Snapshot(), nil

	case InputReasoning:
		payload, err := DecodeActionPayload(req.Payload)
		if err != nil {
			return "", nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
		}
		return OutputActionTriggered, g.trigger.Run(ctx, payload), nil

	default:
		return "", nil, fmt.Errorf("%w: %s", ErrUnknownInputType, req.InputType)
	}
}

// archiveMedia stores inbound media best-effort; archive failures never fail
// the dispatch.
func (g *Gateway) archiveMedia(ctx context.Context, sessionID, kind string, data []byte) {
	if g.archive == nil {
		return
	}
	path := fmt.Sprintf("%s/%s-%d", sessionID, kind, time.Now().UnixNano())
	if err := g.archive.Put(ctx, path, data); err != nil {
		slog.Warn("media archive failed", "session", sessionID, "kind", kind, "err", err)
	}
}

// decodeString reads a payload that must be a JSON string.
func decodeString(raw json.RawMessage) (string, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", fmt.Errorf("%w: expected a string payload", ErrInvalidPayload)
	}
	return s, nil
}
