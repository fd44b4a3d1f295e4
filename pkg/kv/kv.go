// Package kv provides a small key-value store interface used for the
// gateway's persisted collaborator state (subconscious memory records).
//
// Keys are flat strings; List scans by prefix in lexicographic order.
// The package includes a BadgerDB-backed implementation for production use
// and an in-memory implementation for testing.
package kv

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"strings"
)

// Sentinel errors.
var (
	// ErrNotFound is returned when a key does not exist in the store.
	ErrNotFound = errors.New("kv: not found")
)

// Entry is a key-value pair yielded by List.
type Entry struct {
	Key   string
	Value []byte
}

// Store is the interface for a key-value store.
type Store interface {
	// Get retrieves the value for a key. Returns ErrNotFound if not present.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a key-value pair. Overwrites any existing value.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes a key. No error if the key does not exist.
	Delete(ctx context.Context, key string) error

	// List iterates over all entries whose key starts with the given prefix,
	// in lexicographic key order. An empty prefix scans everything.
	List(ctx context.Context, prefix string) iter.Seq2[Entry, error]

	// Close releases any resources held by the store.
	Close() error
}

// Open opens a store from a URL like "badger:///var/lib/anima" or "memory://".
func Open(url string) (Store, error) {
	switch {
	case strings.HasPrefix(url, "badger://"):
		return NewBadger(BadgerOptions{Dir: strings.TrimPrefix(url, "badger://")})
	case url == "memory://":
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("kv: unsupported URL scheme: %s", url)
	}
}
