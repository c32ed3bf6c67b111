// Package viewport models the camera collaborator: the current zoom and
// pixel frame, plus the settled signal camera transitions resolve.
package viewport

import (
	"context"
	"sync"

	"github.com/paulmach/orb"

	"github.com/conorlee8/Eppy-Events-sub001/geo"
)

// Viewport is the visible map frame: a pixel canvas centered on a
// geographic point at a zoom level.
type Viewport struct {
	Width  float64
	Height float64
	Center geo.Point
	Zoom   float64
}

// ScreenPosition maps a geographic point to screen pixels, with (0,0) at the
// viewport's top-left corner.
func (v Viewport) ScreenPosition(p geo.Point) (x, y float64) {
	px, py := geo.Project(p, v.Zoom)
	cx, cy := geo.Project(v.Center, v.Zoom)
	return px - cx + v.Width/2, py - cy + v.Height/2
}

// PixelBounds returns the screen-space rectangle of the viewport.
func (v Viewport) PixelBounds() orb.Bound {
	return orb.Bound{
		Min: orb.Point{0, 0},
		Max: orb.Point{v.Width, v.Height},
	}
}

// GeoBounds returns the geographic box currently visible.
func (v Viewport) GeoBounds() geo.Bounds {
	cx, cy := geo.Project(v.Center, v.Zoom)
	nw := geo.Unproject(cx-v.Width/2, cy-v.Height/2, v.Zoom)
	se := geo.Unproject(cx+v.Width/2, cy+v.Height/2, v.Zoom)
	return geo.Bounds{North: nw.Lat, South: se.Lat, East: se.Lng, West: nw.Lng}
}

// Settler is the explicit camera-transition-finished signal. The camera
// owner calls Settle when its movement ends; logic that must wait for a
// stable viewport blocks on WaitSettled. Never a timer.
type Settler struct {
	mu      sync.Mutex
	waiters []chan struct{}
}

// NewSettler returns a settler with no pending waiters.
func NewSettler() *Settler {
	return &Settler{}
}

// WaitSettled blocks until the next Settle call or context cancellation.
func (s *Settler) WaitSettled(ctx context.Context) error {
	ch := make(chan struct{})
	s.mu.Lock()
	s.waiters = append(s.waiters, ch)
	s.mu.Unlock()

	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Settle releases every waiter registered before this call.
func (s *Settler) Settle() {
	s.mu.Lock()
	waiters := s.waiters
	s.waiters = nil
	s.mu.Unlock()

	for _, ch := range waiters {
		close(ch)
	}
}
