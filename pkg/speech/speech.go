// Package speech defines the voice-transcription collaborator contract and
// a multiplexer that routes transcription requests to a named backend.
//
// The backend is selected by external configuration; asking for a name with
// no registered transcriber is a configuration error, not a processing
// failure.
package speech

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrUnknownBackend is returned when no transcriber is registered for the
// requested name.
var ErrUnknownBackend = errors.New("speech: unknown transcription backend")

// Audio is one complete voice clip handed to a transcriber.
type Audio struct {
	// Data is the encoded audio payload.
	Data []byte

	// MIMEType describes the encoding, e.g. "audio/wav" or "audio/mpeg".
	MIMEType string
}

// Transcriber is the interface that wraps the Transcribe method.
type Transcriber interface {
	// Transcribe converts a complete voice clip to text.
	Transcribe(ctx context.Context, audio Audio) (string, error)
}

// TranscribeFunc is an adapter to allow the use of ordinary functions as
// Transcribers.
type TranscribeFunc func(ctx context.Context, audio Audio) (string, error)

// Transcribe calls the underlying function.
func (f TranscribeFunc) Transcribe(ctx context.Context, audio Audio) (string, error) {
	return f(ctx, audio)
}

// Mux routes transcription requests to the transcriber registered under a
// backend name.
type Mux struct {
	mu          sync.RWMutex
	transcriber map[string]Transcriber
}

// NewMux creates an empty transcription mux.
func NewMux() *Mux {
	return &Mux{transcriber: make(map[string]Transcriber)}
}

// Handle registers a Transcriber for the given backend name, replacing any
// previous registration.
func (m *Mux) Handle(name string, t Transcriber) {
	m.mu.Lock()
	m.transcriber[name] = t
	m.mu.Unlock()
}

// HandleFunc registers a TranscribeFunc for the given backend name.
func (m *Mux) HandleFunc(name string, f TranscribeFunc) {
	m.Handle(name, f)
}

// Transcribe dispatches the clip to the transcriber registered for name.
func (m *Mux) Transcribe(ctx context.Context, name string, audio Audio) (string, error) {
	m.mu.RLock()
	t := m.transcriber[name]
	m.mu.RUnlock()
	if t == nil {
		return "", fmt.Errorf("%w: %s", ErrUnknownBackend, name)
	}
	return t.Transcribe(ctx, audio)
}
