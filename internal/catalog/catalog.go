// Package catalog loads the image catalog that backs the result resolver.
package catalog

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/nfrund/semsearch/internal/domain"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// file is the on-disk layout of a catalog.
type file struct {
	Images []domain.Image `yaml:"images"`
}

// Parse decodes and validates a YAML catalog. Unknown fields are rejected.
func Parse(r io.Reader) ([]domain.Image, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f file
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidCatalog, err)
	}

	seen := make(map[string]int, len(f.Images))
	for i := range f.Images {
		img := &f.Images[i]
		if err := img.Validate(); err != nil {
			return nil, fmt.Errorf("%w: image %d (%q): %v", domain.ErrInvalidCatalog, i, img.ID, err)
		}
		if prev, dup := seen[img.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate id %q at images %d and %d", domain.ErrInvalidCatalog, img.ID, prev, i)
		}
		seen[img.ID] = i
	}
	return f.Images, nil
}

// Store holds the current catalog snapshot loaded from a file.
// Snapshots are never mutated after they are published.
type Store struct {
	fs   afero.Fs
	path string

	mu       sync.RWMutex
	images   []domain.Image
	loadedAt time.Time
	onReload []func()
}

// NewStore creates a Store for the catalog at path. Call Reload to load it.
func NewStore(fs afero.Fs, path string) *Store {
	return &Store{fs: fs, path: path}
}

// Open creates a Store and performs the initial load.
func Open(fs afero.Fs, path string) (*Store, error) {
	s := NewStore(fs, path)
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Path returns the catalog file path.
func (s *Store) Path() string {
	return s.path
}

// Reload reads the catalog file again. On failure the previous snapshot
// stays in place.
func (s *Store) Reload() error {
	f, err := s.fs.Open(s.path)
	if err != nil {
		return fmt.Errorf("failed to open catalog %s: %w", s.path, err)
	}
	defer f.Close()

	images, err := Parse(f)
	if err != nil {
		return fmt.Errorf("failed to load catalog %s: %w", s.path, err)
	}

	s.mu.Lock()
	s.images = images
	s.loadedAt = time.Now()
	hooks := append([]func(){}, s.onReload...)
	s.mu.Unlock()

	slog.Info("Catalog loaded", "path", s.path, "images", len(images))
	for _, fn := range hooks {
		fn()
	}
	return nil
}

// OnReload registers fn to run after every successful reload.
func (s *Store) OnReload(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onReload = append(s.onReload, fn)
}

// Images returns the current snapshot. Callers must not modify it.
func (s *Store) Images() []domain.Image {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.images
}

// LoadedAt reports when the current snapshot was loaded.
func (s *Store) LoadedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadedAt
}
