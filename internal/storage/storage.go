package storage

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/eugenenazirov/hpconf/internal/hyperparams"
)

var (
	// ErrNoDocument indicates no hyperparameter document has been stored yet.
	ErrNoDocument = errors.New("no hyperparameter document loaded")
)

// Snapshot is the active document together with where and when it came from.
type Snapshot struct {
	Document *hyperparams.Document
	Source   string
	LoadedAt time.Time
}

// Storage provides access to the hyperparameter document served to callers.
type Storage interface {
	Get() (Snapshot, error)
	Set(doc *hyperparams.Document, source string) error
	Reload(path string) error
}

// MemoryStorage keeps the active document in-memory and guards access with a RWMutex.
// Documents are immutable, so readers share the stored pointer.
type MemoryStorage struct {
	mu       sync.RWMutex
	snapshot Snapshot
	clock    func() time.Time
}

// Option configures MemoryStorage.
type Option func(*MemoryStorage)

// WithClock overrides the time source, primarily for tests.
func WithClock(clock func() time.Time) Option {
	return func(s *MemoryStorage) {
		s.clock = clock
	}
}

// NewMemoryStorage returns an empty storage.
func NewMemoryStorage(opts ...Option) *MemoryStorage {
	s := &MemoryStorage{
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns the active snapshot.
func (s *MemoryStorage) Get() (Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.snapshot.Document == nil {
		return Snapshot{}, ErrNoDocument
	}
	return s.snapshot, nil
}

// Set replaces the active document.
func (s *MemoryStorage) Set(doc *hyperparams.Document, source string) error {
	if doc == nil {
		return ErrNoDocument
	}

	s.mu.Lock()
	s.snapshot = Snapshot{Document: doc, Source: source, LoadedAt: s.clock()}
	s.mu.Unlock()

	return nil
}

// Reload parses the file at path and stores it. A document that fails to
// parse leaves the active one untouched.
func (s *MemoryStorage) Reload(path string) error {
	doc, err := hyperparams.Load(path)
	if err != nil {
		return fmt.Errorf("reload %s: %w", path, err)
	}
	return s.Set(doc, path)
}
