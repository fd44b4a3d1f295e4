package session

import (
	"sync"
	"time"
)

// Entry is one recorded dispatch outcome. Exactly one of Response and Error
// is set.
type Entry struct {
	SessionID  string    `json:"sessionId"`
	Timestamp  time.Time `json:"timestamp"`
	InputType  string    `json:"inputType"`
	OutputType string    `json:"outputType"`
	Response   any       `json:"response,omitempty"`
	Error      string    `json:"error,omitempty"`
}

// Log is an append-only, in-memory sequence of dispatch outcomes.
// It is safe for concurrent use. Entries are never mutated or removed;
// growth is unbounded for the lifetime of the process.
type Log struct {
	mu      sync.RWMutex
	entries []Entry
}

// NewLog creates an empty action log.
func NewLog() *Log {
	return &Log{}
}

// Append adds entry to the end of the log.
func (l *Log) Append(entry Entry) {
	l.mu.Lock()
	l.entries = append(l.entries, entry)
	l.mu.Unlock()
}

// Snapshot returns a copy of the full log in append order. The copy is
// prefix-consistent: it never observes a partially written entry, and
// appends after the call do not alter the returned slice.
func (l *Log) Snapshot() []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	cp := make([]Entry, len(l.entries))
	copy(cp, l.entries)
	return cp
}

// Len returns the number of recorded entries.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}
