// Package configdoc manages the companion's whole-document JSON
// configuration file. The document is a flat key-value object; updates may
// only touch keys that already exist, so a corrupt caller cannot grow the
// schema at runtime.
package configdoc

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// ErrUnknownKey is returned by Set for a key not present in the document.
type ErrUnknownKey struct {
	Key string
}

func (e *ErrUnknownKey) Error() string {
	return fmt.Sprintf("configdoc: key %q not found", e.Key)
}

// Store reads and writes one JSON configuration document. All methods are
// safe for concurrent use; writes are atomic (temp file + rename).
type Store struct {
	mu   sync.Mutex
	path string
}

// Open returns a store for the document at path. The file must exist and
// hold a JSON object.
func Open(path string) (*Store, error) {
	s := &Store{path: path}
	if _, err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

// Create writes an initial document to path (unless one exists) and opens it.
func Create(path string, defaults map[string]any) (*Store, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if defaults == nil {
			defaults = map[string]any{}
		}
		s := &Store{path: path}
		if err := s.save(defaults); err != nil {
			return nil, err
		}
	}
	return Open(path)
}

// All returns the full document.
func (s *Store) All() (map[string]any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// Get returns the value for key, or an ErrUnknownKey.
func (s *Store) Get(key string) (any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.load()
	if err != nil {
		return nil, err
	}
	v, ok := doc[key]
	if !ok {
		return nil, &ErrUnknownKey{Key: key}
	}
	return v, nil
}

// Set updates the value of an existing key and persists the document.
// Setting a key that is not already present fails with ErrUnknownKey.
func (s *Store) Set(key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.load()
	if err != nil {
		return err
	}
	if _, ok := doc[key]; !ok {
		return &ErrUnknownKey{Key: key}
	}
	doc[key] = value
	return s.save(doc)
}

func (s *Store) load() (map[string]any, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("configdoc: read %s: %w", s.path, err)
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("configdoc: parse %s: %w", s.path, err)
	}
	return doc, nil
}

func (s *Store) save(doc map[string]any) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("configdoc: marshal: %w", err)
	}
	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".configdoc-*")
	if err != nil {
		return fmt.Errorf("configdoc: temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("configdoc: write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("configdoc: close: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("configdoc: rename: %w", err)
	}
	return nil
}
