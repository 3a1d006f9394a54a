package cache

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"roster/internal/logging"
	"roster/internal/registry"
)

// Store holds the current lookup snapshot and the refresh-in-flight flag.
// Lookups take a read lock against the snapshot pointer; a refresh builds a
// complete replacement snapshot and swaps it in with Install, so readers
// never observe a partially loaded table.
type Store struct {
	logger *slog.Logger

	mu   sync.RWMutex
	snap *registry.Snapshot

	loading atomic.Bool
}

// NewStore creates an empty store. A nil logger falls back to a no-op logger.
func NewStore(logger *slog.Logger) *Store {
	return &Store{logger: logging.NewComponentLogger(logger, "cache")}
}

// Lookup returns the record for the given raw key, if present.
func (s *Store) Lookup(raw string) (registry.Record, bool) {
	s.mu.RLock()
	snap := s.snap
	s.mu.RUnlock()
	return snap.Lookup(raw)
}

// Install atomically replaces the current snapshot.
func (s *Store) Install(snap *registry.Snapshot) {
	s.mu.Lock()
	s.snap = snap
	s.mu.Unlock()
	if snap != nil {
		s.logger.Info("snapshot installed",
			logging.Int("entries", snap.Len()),
			logging.Any("fetched_at", snap.FetchedAt),
		)
	}
}

// Snapshot returns the currently installed snapshot, which may be nil.
func (s *Store) Snapshot() *registry.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// Len reports the number of entries in the current snapshot.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap.Len()
}

// Empty reports whether no snapshot has been installed or it has no entries.
func (s *Store) Empty() bool {
	return s.Len() == 0
}

// LastUpdate returns when the current snapshot was fetched. The zero time
// means no snapshot has ever been installed.
func (s *Store) LastUpdate() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snap == nil {
		return time.Time{}
	}
	return s.snap.FetchedAt
}

// Age returns how long ago the current snapshot was fetched, or zero when no
// snapshot has ever been installed.
func (s *Store) Age() time.Duration {
	last := s.LastUpdate()
	if last.IsZero() {
		return 0
	}
	return time.Since(last)
}

// Loading reports whether a refresh is currently in flight.
func (s *Store) Loading() bool {
	return s.loading.Load()
}

// BeginLoading attempts to claim the single refresh slot. It returns false
// when another refresh already holds it.
func (s *Store) BeginLoading() bool {
	return s.loading.CompareAndSwap(false, true)
}

// EndLoading releases the refresh slot.
func (s *Store) EndLoading() {
	s.loading.Store(false)
}
