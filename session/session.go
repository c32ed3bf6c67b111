// Package session ties the engine pieces together for one active map: the
// decluster store, the zoom observer, the viewport, and the event set. All
// collaborator calls (clicks, zoom changes, animation triggers) go through
// a Session.
package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/conorlee8/Eppy-Events-sub001/cluster"
	"github.com/conorlee8/Eppy-Events-sub001/decluster"
	"github.com/conorlee8/Eppy-Events-sub001/events"
	"github.com/conorlee8/Eppy-Events-sub001/particles"
	"github.com/conorlee8/Eppy-Events-sub001/region"
	"github.com/conorlee8/Eppy-Events-sub001/viewport"
)

// Session is one active map's engine state.
type Session struct {
	ID string

	mu       sync.Mutex
	engine   *cluster.Engine
	regions  *region.Index
	store    *decluster.Store
	observer *decluster.ZoomObserver
	settler  *viewport.Settler
	view     viewport.Viewport
	evts     []events.Event
	animOpts particles.Options
}

// Config bundles what a session needs at construction.
type Config struct {
	Regions     *region.Index
	Events      []events.Event
	ClusterOpts cluster.Options
	AnimOpts    particles.Options
	View        viewport.Viewport
}

// New creates a session with a fresh decluster store and settled signal.
func New(cfg Config) *Session {
	opts := cfg.ClusterOpts
	engine := cluster.NewEngine(opts)
	store := decluster.NewStore()

	threshold := opts.PopularityMaxZoom
	if threshold <= 0 {
		threshold = cluster.DefaultOptions().PopularityMaxZoom
	}

	s := &Session{
		ID:       uuid.New().String()[:8],
		engine:   engine,
		regions:  cfg.Regions,
		store:    store,
		observer: decluster.NewZoomObserver(store, threshold),
		settler:  viewport.NewSettler(),
		view:     cfg.View,
		evts:     cfg.Events,
		animOpts: cfg.AnimOpts,
	}
	s.observer.ObserveZoom(cfg.View.Zoom)
	return s
}

// Clusters computes the display clusters for the current zoom.
func (s *Session) Clusters() []cluster.DisplayCluster {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.ComputeClusters(s.evts, s.view.Zoom, s.regions, s.store)
}

// ClustersAt computes clusters for an explicit zoom without moving the
// session's camera.
func (s *Session) ClustersAt(zoom float64) []cluster.DisplayCluster {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.ComputeClusters(s.evts, zoom, s.regions, s.store)
}

// Summary summarizes the current clusters.
func (s *Session) Summary() cluster.Summary {
	return cluster.Summarize(s.Clusters())
}

// SetZoom moves the camera zoom and feeds the decluster observer, which
// clears all opened regions when the zoom crosses below the neighborhood
// threshold.
func (s *Session) SetZoom(zoom float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view.Zoom = zoom
	s.observer.ObserveZoom(zoom)
}

// SetEvents swaps the event set. Clusters are recomputed from scratch on the
// next call, so no diffing happens here.
func (s *Session) SetEvents(evts []events.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.evts = evts
}

// Events returns the current event set.
func (s *Session) Events() []events.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.evts
}

// View returns the current viewport.
func (s *Session) View() viewport.Viewport {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view
}

// SetView replaces the viewport frame.
func (s *Session) SetView(v viewport.Viewport) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view = v
	s.observer.ObserveZoom(v.Zoom)
}

// Settler exposes the settled signal for the camera owner to resolve.
func (s *Session) Settler() *viewport.Settler {
	return s.settler
}

// Opened returns the decluster store's open region ids.
func (s *Session) Opened() []string {
	return s.store.OpenIDs()
}

// ResetOpened collapses every opened region.
func (s *Session) ResetOpened() {
	s.store.ResetAll()
}

// ClickRegion handles a tap on a collapsed neighborhood cluster: it waits
// for the camera transition to the region's bounds to settle, then commits
// the open. Opening before the transition settles flashes un-zoomed
// individual sprites, so the settled signal is the commit point, not the
// click.
func (s *Session) ClickRegion(ctx context.Context, regionID string) error {
	r := s.regions.RegionByID(regionID)
	if r == nil {
		return fmt.Errorf("unknown region %s", regionID)
	}

	if err := s.settler.WaitSettled(ctx); err != nil {
		return fmt.Errorf("viewport never settled for region %s: %w", regionID, err)
	}

	s.store.Open(regionID)
	return nil
}

// StartTransition builds a particle run from the given sprite positions to
// the given cluster centroids within the current viewport.
func (s *Session) StartTransition(sources, targets []particles.Position) *particles.Handle {
	s.mu.Lock()
	view := s.view
	opts := s.animOpts
	s.mu.Unlock()

	engine := particles.NewEngine(view.PixelBounds(), opts)
	return engine.Start(sources, targets)
}
