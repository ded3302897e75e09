package dataset

import (
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"
	"time"
)

// Snapshot is the full set of profiles from one successful load. It is never
// modified after creation; accessors hand out copies.
type Snapshot struct {
	profiles []SpeciesProfile
	loadedAt time.Time
}

func NewSnapshot(profiles []SpeciesProfile, loadedAt time.Time) *Snapshot {
	return &Snapshot{profiles: slices.Clone(profiles), loadedAt: loadedAt}
}

func (s *Snapshot) Profiles() []SpeciesProfile {
	return slices.Clone(s.profiles)
}

func (s *Snapshot) Len() int {
	return len(s.profiles)
}

func (s *Snapshot) LoadedAt() time.Time {
	return s.loadedAt
}

// Store holds the current snapshot. Replace and Clear swap the pointer, so readers
// always see one snapshot in full.
type Store struct {
	current atomic.Pointer[Snapshot]
}

func NewStore() *Store {
	return &Store{}
}

func (s *Store) Snapshot() (*Snapshot, error) {
	snap := s.current.Load()
	if snap == nil {
		return nil, ErrDatasetNotLoaded
	}
	return snap, nil
}

func (s *Store) Replace(profiles []SpeciesProfile, at time.Time) *Snapshot {
	snap := NewSnapshot(profiles, at)
	s.current.Store(snap)
	return snap
}

func (s *Store) IsLoaded() bool {
	return s.current.Load() != nil
}

// LastUpdateTime reports when the current snapshot was loaded; ok is false when
// nothing is loaded.
func (s *Store) LastUpdateTime() (t time.Time, ok bool) {
	snap := s.current.Load()
	if snap == nil {
		return time.Time{}, false
	}
	return snap.loadedAt, true
}

func (s *Store) Clear() {
	s.current.Store(nil)
}

// Loader reads a catalog file, parses it and publishes the result to a Store.
type Loader struct {
	ingestor *Ingestor
	store    *Store
	logger   *slog.Logger
	now      func() time.Time

	// serializes loads; readers never take it
	mu sync.Mutex
}

func NewLoader(ingestor *Ingestor, store *Store, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{ingestor: ingestor, store: store, logger: logger, now: time.Now}
}

// LoadFile replaces the store snapshot with the profiles parsed from path. On any
// error the previous snapshot stays in place.
func (l *Loader) LoadFile(path string) ([]SpeciesProfile, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	rows, err := ReadRows(path)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: %s has no rows", ErrEmptyDataset, path)
	}

	profiles := l.ingestor.ParseDataset(rows)
	snap := l.store.Replace(profiles, l.now().UTC())
	l.logger.Info("dataset loaded",
		"path", path,
		"species", snap.Len(),
		"rows", len(rows),
		"loaded_at", snap.LoadedAt(),
	)
	return snap.Profiles(), nil
}
