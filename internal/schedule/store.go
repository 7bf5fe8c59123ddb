// Package schedule keeps the latest extraction result per configured source
// and refreshes them on a cron schedule.
package schedule

import (
	"sort"
	"sync"
	"time"

	"schedscan/internal/model"
	"schedscan/internal/source"
)

// Entry is the stored state of one source.
type Entry struct {
	Source   source.Source          `json:"source"`
	Strategy string                 `json:"strategy"`
	Result   model.ExtractionResult `json:"result"`

	// UpdatedAt is the time of the last successful refresh; zero if none.
	UpdatedAt time.Time `json:"updated_at"`
	// CheckedAt is the time of the last attempt.
	CheckedAt time.Time `json:"checked_at"`
	// Err is the last attempt's error. Result still holds the previous good
	// extraction when set.
	Err string `json:"error,omitempty"`
}

// Store is a concurrency-safe map of source ID to Entry.
type Store struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{entries: make(map[string]Entry)}
}

// Put replaces the entry for e.Source.ID.
func (s *Store) Put(e Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[e.Source.ID] = e
}

// Get returns the entry for id.
func (s *Store) Get(id string) (Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[id]
	return e, ok
}

// List returns all entries ordered by source ID.
func (s *Store) List() []Entry {
	s.mu.RLock()
	out := make([]Entry, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, e)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Source.ID < out[j].Source.ID })
	return out
}

// update applies fn to the current entry for id (zero Entry if none) and
// stores the result.
func (s *Store) update(id string, fn func(Entry) Entry) Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := fn(s.entries[id])
	s.entries[id] = e
	return e
}
