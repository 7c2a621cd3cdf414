package config

import (
	"log/slog"
	"sync/atomic"
)

// Store holds the active configuration document. The document is only ever
// replaced whole, so readers always see a complete, validated document.
type Store struct {
	current atomic.Pointer[Document]
	path    string
}

// Open loads and validates the document at path.
func Open(path string) (*Store, error) {
	doc, err := LoadAndValidate(path)
	if err != nil {
		return nil, err
	}

	s := &Store{path: path}
	s.current.Store(doc)
	return s, nil
}

// NewStore wraps an already validated document.
func NewStore(doc *Document) *Store {
	s := &Store{path: doc.Path()}
	s.current.Store(doc)
	return s
}

// Current returns the active document.
func (s *Store) Current() *Document {
	return s.current.Load()
}

// Path returns the file the store reloads from.
func (s *Store) Path() string {
	return s.path
}

// Reload re-reads the file and swaps in the new document only if it loads and
// validates. On failure the previous document stays active and the error is returned.
func (s *Store) Reload() error {
	doc, err := LoadAndValidate(s.path)
	if err != nil {
		slog.Warn("Config reload failed, keeping previous configuration",
			"path", s.path,
			"error", err)
		return err
	}

	s.current.Store(doc)
	slog.Info("Config reloaded", "path", s.path)
	return nil
}
