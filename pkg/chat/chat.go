// Package chat defines the chat-processing collaborator contract: turn a
// system prompt and a user message into a response text.
//
// Backends are registered on a mux by name and selected by configuration,
// so deployments can switch between providers without touching call sites.
package chat

import (
	"context"
	"fmt"
	"sync"
)

// DefaultMux is the default multiplexer for chat processors.
var DefaultMux = NewMux()

// Handle registers a Processor for the given name with the default mux.
func Handle(name string, p Processor) {
	DefaultMux.Handle(name, p)
}

// Process dispatches to the named processor on the default mux.
func Process(ctx context.Context, name, systemPrompt, message string) (string, error) {
	return DefaultMux.Process(ctx, name, systemPrompt, message)
}

// Processor is the interface that wraps the Process method.
type Processor interface {
	// Process sends a system prompt and user message to the model and
	// returns the response text.
	Process(ctx context.Context, systemPrompt, message string) (string, error)
}

// ProcessFunc is an adapter to allow the use of ordinary functions as
// Processors.
type ProcessFunc func(ctx context.Context, systemPrompt, message string) (string, error)

// Process calls the underlying function.
func (f ProcessFunc) Process(ctx context.Context, systemPrompt, message string) (string, error) {
	return f(ctx, systemPrompt, message)
}

// Mux routes chat requests to the processor registered under a name.
type Mux struct {
	mu         sync.RWMutex
	processors map[string]Processor
}

// NewMux creates an empty chat mux.
func NewMux() *Mux {
	return &Mux{processors: make(map[string]Processor)}
}

// Handle registers a Processor for the given name, replacing any previous
// registration.
func (m *Mux) Handle(name string, p Processor) {
	m.mu.Lock()
	m.processors[name] = p
	m.mu.Unlock()
}

// HandleFunc registers a ProcessFunc for the given name.
func (m *Mux) HandleFunc(name string, f ProcessFunc) {
	m.Handle(name, f)
}

// Process dispatches the request to the processor registered for name.
func (m *Mux) Process(ctx context.Context, name, systemPrompt, message string) (string, error) {
	m.mu.RLock()
	p := m.processors[name]
	m.mu.RUnlock()
	if p == nil {
		return "", fmt.Errorf("chat: processor not found for %s", name)
	}
	return p.Process(ctx, systemPrompt, message)
}
