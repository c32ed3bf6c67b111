// Package decluster tracks which regions the user has explicitly opened
// (declustered). One store exists per map session; all mutation happens on
// the UI event path, but the store carries its own mutex so a future
// render-thread split does not need to change callers.
package decluster

import "sync"

// Store is the set of region ids currently opened.
type Store struct {
	mu     sync.RWMutex
	opened map[string]struct{}
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{opened: make(map[string]struct{})}
}

// Open marks a region as declustered. Idempotent. Callers must invoke this
// only after the viewport-settled signal for the click's camera transition
// has resolved; opening earlier flashes un-zoomed individual sprites.
func (s *Store) Open(regionID string) {
	s.mu.Lock()
	s.opened[regionID] = struct{}{}
	s.mu.Unlock()
}

// IsOpen reports whether a region is currently declustered.
func (s *Store) IsOpen(regionID string) bool {
	s.mu.RLock()
	_, ok := s.opened[regionID]
	s.mu.RUnlock()
	return ok
}

// ResetAll collapses every opened region at once.
func (s *Store) ResetAll() {
	s.mu.Lock()
	s.opened = make(map[string]struct{})
	s.mu.Unlock()
}

// OpenIDs returns the currently opened region ids in no particular order.
func (s *Store) OpenIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.opened))
	for id := range s.opened {
		ids = append(ids, id)
	}
	return ids
}

// Len returns the number of opened regions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.opened)
}

// ZoomObserver resets a store when the zoom level crosses from at-or-above
// the neighborhood threshold down below it. Changes that stay within the
// neighborhood band leave the store alone.
type ZoomObserver struct {
	store     *Store
	threshold float64
	lastZoom  float64
	hasLast   bool
}

// NewZoomObserver wires a store to a neighborhood-tier zoom threshold.
func NewZoomObserver(store *Store, threshold float64) *ZoomObserver {
	return &ZoomObserver{store: store, threshold: threshold}
}

// ObserveZoom feeds the observer a new zoom level.
func (o *ZoomObserver) ObserveZoom(zoom float64) {
	if o.hasLast && o.lastZoom >= o.threshold && zoom < o.threshold {
		o.store.ResetAll()
	}
	o.lastZoom = zoom
	o.hasLast = true
}
