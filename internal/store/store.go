// internal/store/store.go

// Package store loads the wiki corpus: a JSON object mapping page
// identifiers to raw WikiText markup.
package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Sentinel errors for corpus operations.
var (
	ErrCorpusNotFound = errors.New("corpus file not found")
	ErrCorpusParse    = errors.New("failed to parse corpus")
	ErrEmptyID        = errors.New("page id cannot be empty")
)

// Corpus is an immutable view of all pages keyed by identifier.
type Corpus map[string]string

// Has reports whether a page with the given id exists.
func (c Corpus) Has(id string) bool {
	_, ok := c[id]
	return ok
}

// Get returns the markup for id.
func (c Corpus) Get(id string) (string, bool) {
	markup, ok := c[id]
	return markup, ok
}

// IDs returns all page identifiers in sorted order.
func (c Corpus) IDs() []string {
	ids := make([]string, 0, len(c))
	for id := range c {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Store holds the current corpus snapshot and the file it came from.
type Store struct {
	path  string
	mu    sync.RWMutex
	pages Corpus
}

// Load reads the corpus at path.
func Load(path string) (*Store, error) {
	pages, err := readCorpus(path)
	if err != nil {
		return nil, err
	}
	return &Store{path: path, pages: pages}, nil
}

// New returns a store over an in-memory corpus. Save writes it to path.
func New(path string, pages map[string]string) *Store {
	c := make(Corpus, len(pages))
	for id, markup := range pages {
		c[id] = markup
	}
	return &Store{path: path, pages: c}
}

// Path returns the corpus file path.
func (s *Store) Path() string {
	return s.path
}

// Snapshot returns the current corpus. Callers must not modify it; Put and
// Reload replace the snapshot instead of mutating it.
func (s *Store) Snapshot() Corpus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pages
}

// Reload re-reads the corpus file. The previous snapshot is kept on error.
func (s *Store) Reload() error {
	pages, err := readCorpus(s.path)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.pages = pages
	s.mu.Unlock()
	return nil
}

// Put adds or replaces a page.
func (s *Store) Put(id, markup string) error {
	if id == "" {
		return ErrEmptyID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	next := make(Corpus, len(s.pages)+1)
	for k, v := range s.pages {
		next[k] = v
	}
	next[id] = markup
	s.pages = next
	return nil
}

// Save writes the current snapshot back to the corpus file.
func (s *Store) Save() error {
	data, err := json.MarshalIndent(s.Snapshot(), "", "  ")
	if err != nil {
		return fmt.Errorf("could not encode corpus: %w", err)
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	if err := os.WriteFile(s.path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("could not write corpus file %s: %w", s.path, err)
	}
	return nil
}

func readCorpus(path string) (Corpus, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrCorpusNotFound, path)
		}
		return nil, fmt.Errorf("could not read corpus file %s: %w", path, err)
	}
	pages := Corpus{}
	if err := json.Unmarshal(data, &pages); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorpusParse, path, err)
	}
	return pages, nil
}
