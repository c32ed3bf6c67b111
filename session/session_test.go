package session

import (
	"context"
	"testing"
	"time"

	"github.com/conorlee8/Eppy-Events-sub001/cluster"
	"github.com/conorlee8/Eppy-Events-sub001/events"
	"github.com/conorlee8/Eppy-Events-sub001/geo"
	"github.com/conorlee8/Eppy-Events-sub001/particles"
	"github.com/conorlee8/Eppy-Events-sub001/region"
	"github.com/conorlee8/Eppy-Events-sub001/viewport"
)

func testSession() *Session {
	regions := region.NewIndex([]region.Region{
		{
			ID:   "alpha",
			Name: "Alpha",
			Boundary: geo.Polygon{
				{Lat: 0, Lng: 0}, {Lat: 0, Lng: 1}, {Lat: 1, Lng: 1}, {Lat: 1, Lng: 0},
			},
		},
		{
			ID:   "beta",
			Name: "Beta",
			Boundary: geo.Polygon{
				{Lat: 0, Lng: 2}, {Lat: 0, Lng: 3}, {Lat: 1, Lng: 3}, {Lat: 1, Lng: 2},
			},
		},
	})

	evts := []events.Event{
		{ID: 1, Position: geo.Point{Lat: 0.5, Lng: 0.5}, Popularity: 10},
		{ID: 2, Position: geo.Point{Lat: 0.6, Lng: 0.4}, Popularity: 20},
		{ID: 3, Position: geo.Point{Lat: 0.5, Lng: 2.5}, Popularity: 30},
	}

	return New(Config{
		Regions:     regions,
		Events:      evts,
		ClusterOpts: cluster.DefaultOptions(),
		AnimOpts:    particles.Options{Seed: 42},
		View: viewport.Viewport{
			Width: 800, Height: 800,
			Center: geo.Point{Lat: 0.5, Lng: 1.5},
			Zoom:   12,
		},
	})
}

func TestClickRegionCommitsAfterSettle(t *testing.T) {
	s := testSession()

	clickErr := make(chan error, 1)
	go func() {
		clickErr <- s.ClickRegion(context.Background(), "alpha")
	}()

	// The open must not commit before the camera settles.
	time.Sleep(20 * time.Millisecond)
	if len(s.Opened()) != 0 {
		t.Error("Region opened before the viewport settled")
	}

	s.Settler().Settle()
	if err := <-clickErr; err != nil {
		t.Fatalf("ClickRegion failed: %v", err)
	}
	if opened := s.Opened(); len(opened) != 1 || opened[0] != "alpha" {
		t.Errorf("Expected [alpha] opened, got %v", opened)
	}

	// Alpha now declusters; beta stays collapsed.
	var individuals int
	for _, c := range s.Clusters() {
		if c.Tier == cluster.TierIndividual {
			individuals++
		}
	}
	if individuals != 2 {
		t.Errorf("Expected 2 individual clusters for opened alpha, got %d", individuals)
	}
}

func TestClickRegionUnknownID(t *testing.T) {
	s := testSession()
	if err := s.ClickRegion(context.Background(), "nowhere"); err == nil {
		t.Error("Expected error for unknown region")
	}
}

func TestClickRegionContextCancelled(t *testing.T) {
	s := testSession()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := s.ClickRegion(ctx, "alpha"); err == nil {
		t.Error("Expected error when the viewport never settles")
	}
	if len(s.Opened()) != 0 {
		t.Error("Open committed despite cancelled wait")
	}
}

func TestZoomOutResetsOpenedRegions(t *testing.T) {
	s := testSession()

	go func() {
		time.Sleep(5 * time.Millisecond)
		s.Settler().Settle()
	}()
	if err := s.ClickRegion(context.Background(), "alpha"); err != nil {
		t.Fatalf("ClickRegion failed: %v", err)
	}

	s.SetZoom(9)
	if len(s.Opened()) != 0 {
		t.Error("Expected opened regions cleared after zooming below the neighborhood tier")
	}

	s.SetZoom(12)
	for _, c := range s.Clusters() {
		if c.Tier != cluster.TierNeighborhood {
			t.Errorf("Expected collapsed clusters after reset, got %s", c.Tier)
		}
	}
}

func TestStartTransition(t *testing.T) {
	s := testSession()

	h := s.StartTransition(
		[]particles.Position{{X: 100, Y: 100}},
		[]particles.Position{{X: 500, Y: 500}},
	)
	if h.Done() {
		t.Fatal("Expected a live animation run")
	}
	if snap := h.Tick(0); len(snap) == 0 {
		t.Error("Expected particles at animation start")
	}
}

func TestManagerAddGetEvict(t *testing.T) {
	m := NewManager(2)

	s1, s2, s3 := testSession(), testSession(), testSession()
	m.Add(s1)
	time.Sleep(2 * time.Millisecond)
	m.Add(s2)

	if _, err := m.Get(s1.ID); err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	time.Sleep(2 * time.Millisecond)
	m.Add(s3) // evicts s2, the least recently used

	if m.Len() != 2 {
		t.Errorf("Expected 2 sessions, got %d", m.Len())
	}
	if _, err := m.Get(s2.ID); err == nil {
		t.Error("Expected s2 evicted")
	}
	if _, err := m.Get(s3.ID); err != nil {
		t.Error("Expected s3 present")
	}

	m.Remove(s3.ID)
	if _, err := m.Get(s3.ID); err == nil {
		t.Error("Expected s3 removed")
	}
}
