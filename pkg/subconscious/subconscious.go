// Package subconscious stores the companion's subconscious memory: an
// ordered sequence of timestamped prompts produced by the idle-life
// subroutines and replayed to the reasoning layer on request.
//
// Records live in a [kv.Store] under the "subconscious:" prefix, encoded
// with msgpack. Keys embed a zero-padded sequence number so lexicographic
// KV order is insertion order.
package subconscious

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/animahq/anima/pkg/kv"
)

const keyPrefix = "subconscious:"

// Entry is one timestamped subconscious prompt.
type Entry struct {
	Timestamp time.Time `json:"timestamp" msgpack:"ts"`
	Prompt    string    `json:"prompt" msgpack:"prompt"`
}

// Store is the subconscious memory store.
type Store struct {
	kv  kv.Store
	seq atomic.Uint64
}

// New creates a store on top of the given KV. The KV is owned by the
// caller; Close is not forwarded.
func New(store kv.Store) *Store {
	return &Store{kv: store}
}

// All returns every stored entry in insertion order.
func (s *Store) All(ctx context.Context) ([]Entry, error) {
	var entries []Entry
	for e, err := range s.kv.List(ctx, keyPrefix) {
		if err != nil {
			return nil, fmt.Errorf("subconscious: list: %w", err)
		}
		var entry Entry
		if err := msgpack.Unmarshal(e.Value, &entry); err != nil {
			return nil, fmt.Errorf("subconscious: decode %s: %w", e.Key, err)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// Replace swaps the stored sequence for entries: the old records are
// cleared, then the new ones written in order. Concurrent readers may
// observe the intermediate empty state.
func (s *Store) Replace(ctx context.Context, entries []Entry) error {
	if err := s.Clear(ctx); err != nil {
		return err
	}
	for _, entry := range entries {
		data, err := msgpack.Marshal(entry)
		if err != nil {
			return fmt.Errorf("subconscious: encode: %w", err)
		}
		key := fmt.Sprintf("%s%020d", keyPrefix, s.seq.Add(1))
		if err := s.kv.Set(ctx, key, data); err != nil {
			return fmt.Errorf("subconscious: write: %w", err)
		}
	}
	return nil
}

// Clear removes all stored entries. Called at server startup so each run
// begins with an empty subconscious.
func (s *Store) Clear(ctx context.Context) error {
	var keys []string
	for e, err := range s.kv.List(ctx, keyPrefix) {
		if err != nil {
			return fmt.Errorf("subconscious: list: %w", err)
		}
		keys = append(keys, e.Key)
	}
	for _, k := range keys {
		if err := s.kv.Delete(ctx, k); err != nil {
			return fmt.Errorf("subconscious: delete %s: %w", k, err)
		}
	}
	return nil
}
