package particles

import (
	"math"
	"testing"
	"time"

	"github.com/paulmach/orb"
)

func testViewport() orb.Bound {
	return orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{800, 800}}
}

func testEngine(opts Options) *Engine {
	if opts.Seed == 0 {
		opts.Seed = 42
	}
	return NewEngine(testViewport(), opts)
}

func TestStartSpawnsBatchesPerSprite(t *testing.T) {
	e := testEngine(Options{})
	h := e.Start(
		[]Position{{X: 100, Y: 100}, {X: 300, Y: 300}},
		[]Position{{X: 500, Y: 500}},
	)

	if h.Done() {
		t.Fatal("Expected a live run")
	}
	snap := h.Tick(0)
	if len(snap) < 16 || len(snap) > 24 {
		t.Errorf("Expected 8-12 particles per sprite for 2 sprites, got %d", len(snap))
	}
}

func TestParticlesStartAtSourceAndEndAtTarget(t *testing.T) {
	e := testEngine(Options{TotalDuration: time.Second, JitterRadius: 6})
	h := e.Start([]Position{{X: 100, Y: 100}}, []Position{{X: 500, Y: 500}})

	// Progress 0: everything within the jitter radius of the source.
	for _, p := range h.Tick(0) {
		dx, dy := p.Pos.X-100, p.Pos.Y-100
		if math.Hypot(dx, dy) > 6+1e-9 {
			t.Errorf("Particle at (%f,%f) outside jitter radius at progress 0", p.Pos.X, p.Pos.Y)
		}
	}

	// Walk the timeline at a frame cadence to progress 1.
	var last []Particle
	for ms := 16.0; ms < 1000; ms += 16 {
		last = h.Tick(ms)
	}
	last = h.Tick(1000)

	const epsilon = 1e-6
	surviving := 0
	for _, p := range last {
		if p.Opacity == 0 {
			continue
		}
		surviving++
		if p.Phase != PhaseDone {
			t.Errorf("Expected done phase at progress 1, got %s", p.Phase)
		}
		if math.Abs(p.Pos.X-500) > epsilon || math.Abs(p.Pos.Y-500) > epsilon {
			t.Errorf("Surviving particle ended at (%f,%f), want (500,500)", p.Pos.X, p.Pos.Y)
		}
	}
	if surviving == 0 {
		t.Error("Expected surviving particles for an in-bounds run")
	}
	if !h.Done() {
		t.Error("Expected handle complete at progress 1")
	}
}

func TestExplosionPhaseIgnoresTarget(t *testing.T) {
	e := testEngine(Options{TotalDuration: time.Second})
	h := e.Start([]Position{{X: 400, Y: 400}}, []Position{{X: 700, Y: 700}})

	start := h.Tick(0)
	mid := h.Tick(200) // progress 0.2, still ballistic

	for i, p := range mid {
		if p.Phase != PhaseExplode {
			t.Errorf("Expected explode phase at progress 0.2, got %s", p.Phase)
		}
		// Position is origin + velocity*t, not pulled toward the target.
		wantX := start[i].Origin.X + p.VX*0.2
		wantY := start[i].Origin.Y + p.VY*0.2
		if math.Abs(p.Pos.X-wantX) > 1e-6 || math.Abs(p.Pos.Y-wantY) > 1e-6 {
			t.Errorf("Particle %d at (%f,%f), want ballistic (%f,%f)", i, p.Pos.X, p.Pos.Y, wantX, wantY)
		}
	}
}

func TestNearestTargetAssignment(t *testing.T) {
	e := testEngine(Options{})
	h := e.Start(
		[]Position{{X: 100, Y: 100}, {X: 700, Y: 700}},
		[]Position{{X: 150, Y: 150}, {X: 650, Y: 650}},
	)

	for _, p := range h.Tick(0) {
		nearSource := math.Hypot(p.Origin.X-100, p.Origin.Y-100) < 50
		if nearSource && (p.Target.X != 150 || p.Target.Y != 150) {
			t.Errorf("Sprite at (100,100) assigned target (%f,%f), want (150,150)", p.Target.X, p.Target.Y)
		}
		if !nearSource && (p.Target.X != 650 || p.Target.Y != 650) {
			t.Errorf("Sprite at (700,700) assigned target (%f,%f), want (650,650)", p.Target.X, p.Target.Y)
		}
	}
}

func TestInvalidPositionsDiscardedAtStart(t *testing.T) {
	e := testEngine(Options{})

	// Out-of-bounds target; the only pair dies and the run completes
	// immediately with no particles.
	h := e.Start([]Position{{X: 100, Y: 100}}, []Position{{X: -9999, Y: -9999}})
	if !h.Done() {
		t.Error("Expected immediate completion for zero valid pairs")
	}

	// NaN source likewise.
	h = e.Start([]Position{{X: math.NaN(), Y: 100}}, []Position{{X: 500, Y: 500}})
	if !h.Done() {
		t.Error("Expected immediate completion for non-finite source")
	}

	// One bad source among good ones is just dropped.
	h = e.Start(
		[]Position{{X: 100, Y: 100}, {X: -9999, Y: 50}},
		[]Position{{X: 500, Y: 500}},
	)
	if h.Done() {
		t.Fatal("Expected a live run with the valid source")
	}
	snap := h.Tick(0)
	if len(snap) < 8 || len(snap) > 12 {
		t.Errorf("Expected one sprite's worth of particles, got %d", len(snap))
	}
}

func TestOffscreenExcursionFadesInsteadOfClamping(t *testing.T) {
	// Near-corner source with a fast explosion and a lenient margin off:
	// particles that leave the viewport fade over FadeTicks, never teleport.
	e := testEngine(Options{
		TotalDuration: time.Second,
		MaxSpeed:      4000,
		BoundsMargin:  1,
		FadeTicks:     3,
	})
	h := e.Start([]Position{{X: 2, Y: 2}}, []Position{{X: 500, Y: 500}})

	h.Tick(50)
	h.Tick(100)
	snap := h.Tick(150)

	faded := 0
	for _, p := range snap {
		if p.Opacity < 1 {
			faded++
		}
		if p.Opacity < 0 {
			t.Errorf("Opacity went negative: %f", p.Opacity)
		}
	}
	if faded == 0 {
		t.Error("Expected fast offscreen particles to fade")
	}
}

func TestCancelThenTickPanics(t *testing.T) {
	e := testEngine(Options{})
	h := e.Start([]Position{{X: 100, Y: 100}}, []Position{{X: 500, Y: 500}})

	h.Tick(16)
	h.Cancel()
	if !h.Done() {
		t.Error("Expected Done after Cancel")
	}

	defer func() {
		if recover() == nil {
			t.Error("Expected panic for Tick after Cancel")
		}
	}()
	h.Tick(32)
}

func TestTickAfterCompletionPanics(t *testing.T) {
	e := testEngine(Options{TotalDuration: 100 * time.Millisecond})
	h := e.Start([]Position{{X: 100, Y: 100}}, []Position{{X: 500, Y: 500}})

	h.Tick(100)
	if !h.Done() {
		t.Fatal("Expected completion at full duration")
	}

	defer func() {
		if recover() == nil {
			t.Error("Expected panic for Tick after completion")
		}
	}()
	h.Tick(116)
}

func TestSnapshotIsACopy(t *testing.T) {
	e := testEngine(Options{TotalDuration: time.Second})
	h := e.Start([]Position{{X: 100, Y: 100}}, []Position{{X: 500, Y: 500}})

	first := h.Tick(100)
	saved := first[0].Pos
	h.Tick(250)

	if first[0].Pos != saved {
		t.Error("Expected earlier snapshot to be unaffected by later ticks")
	}
}
