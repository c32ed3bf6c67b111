// Package particles runs the two-phase cluster-transition animation: sprite
// positions explode outward under random velocities, then morph onto their
// assigned cluster centroids. The engine is pull-based; the renderer calls
// Tick once per frame and draws the snapshot it gets back.
package particles

import (
	"math"
	"math/rand"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/quadtree"
)

// Position is a screen-space pixel position.
type Position struct {
	X float64
	Y float64
}

// IsFinite reports whether both coordinates are finite numbers.
func (p Position) IsFinite() bool {
	return !math.IsNaN(p.X) && !math.IsInf(p.X, 0) &&
		!math.IsNaN(p.Y) && !math.IsInf(p.Y, 0)
}

// Phase is a particle's lifetime phase.
type Phase uint8

const (
	PhaseExplode Phase = iota
	PhaseMorph
	PhaseDone
)

func (p Phase) String() string {
	switch p {
	case PhaseExplode:
		return "explode"
	case PhaseMorph:
		return "morph"
	default:
		return "done"
	}
}

// Particle is one animated point. Opacity reaches zero for particles faded
// out by the defensive checks; the renderer skips those.
type Particle struct {
	Origin  Position
	Pos     Position
	Target  Position
	VX, VY  float64
	SpawnMs float64
	Phase   Phase
	Opacity float64

	// free is the ballistic position the morph blend starts from.
	free   Position
	fading bool
}

// Options tune the animation. Zero values take defaults.
type Options struct {
	// TotalDuration is the full explode+morph timeline.
	TotalDuration time.Duration
	// MinPerSprite/MaxPerSprite bound the particles spawned per source.
	MinPerSprite int
	MaxPerSprite int
	// ExplosionFraction is the share of the timeline spent ballistic.
	ExplosionFraction float64
	// JitterRadius is the spawn position jitter in pixels.
	JitterRadius float64
	// MaxSpeed is the largest initial velocity magnitude in pixels/second.
	MaxSpeed float64
	// BoundsMargin is how far outside the viewport an explosion-phase
	// particle may stray before it fades.
	BoundsMargin float64
	// FadeTicks is how many ticks a fading particle takes to reach zero
	// opacity.
	FadeTicks int
	// Seed fixes the jitter randomness; zero seeds from the clock.
	Seed int64
}

func (o Options) withDefaults() Options {
	if o.TotalDuration <= 0 {
		o.TotalDuration = 1200 * time.Millisecond
	}
	if o.MinPerSprite <= 0 {
		o.MinPerSprite = 8
	}
	if o.MaxPerSprite < o.MinPerSprite {
		o.MaxPerSprite = o.MinPerSprite + 4
	}
	if o.ExplosionFraction <= 0 || o.ExplosionFraction >= 1 {
		o.ExplosionFraction = 0.3
	}
	if o.JitterRadius <= 0 {
		o.JitterRadius = 6
	}
	if o.MaxSpeed <= 0 {
		o.MaxSpeed = 120
	}
	if o.BoundsMargin <= 0 {
		o.BoundsMargin = 32
	}
	if o.FadeTicks <= 0 {
		o.FadeTicks = 4
	}
	return o
}

// Engine constructs animation runs for one viewport.
type Engine struct {
	opts     Options
	viewport orb.Bound
}

// NewEngine returns an engine animating within the given viewport pixel
// bounds.
func NewEngine(viewport orb.Bound, opts Options) *Engine {
	return &Engine{opts: opts.withDefaults(), viewport: viewport}
}

func (e *Engine) inViewport(p Position, margin float64) bool {
	return p.X >= e.viewport.Min.X()-margin && p.X <= e.viewport.Max.X()+margin &&
		p.Y >= e.viewport.Min.Y()-margin && p.Y <= e.viewport.Max.Y()+margin
}

// Start validates the source sprites and target centroids, assigns each
// surviving source its nearest target by on-screen distance, and spawns the
// particle batches. Non-finite or out-of-viewport positions are discarded;
// if nothing valid remains the returned handle is already complete with an
// empty particle set.
func (e *Engine) Start(sources, targets []Position) *Handle {
	validTargets := make([]Position, 0, len(targets))
	for _, t := range targets {
		if t.IsFinite() && e.inViewport(t, 0) {
			validTargets = append(validTargets, t)
		}
	}
	validSources := make([]Position, 0, len(sources))
	for _, s := range sources {
		if s.IsFinite() && e.inViewport(s, 0) {
			validSources = append(validSources, s)
		}
	}

	if len(validSources) == 0 || len(validTargets) == 0 {
		return &Handle{engine: e, done: true}
	}

	qt := quadtree.New(e.viewport)
	for _, t := range validTargets {
		qt.Add(orb.Point{t.X, t.Y})
	}

	seed := e.opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	totalMs := float64(e.opts.TotalDuration.Milliseconds())
	particles := make([]Particle, 0, len(validSources)*e.opts.MaxPerSprite)

	for _, src := range validSources {
		nearest := qt.Find(orb.Point{src.X, src.Y})
		target := Position{X: nearest.Point().X(), Y: nearest.Point().Y()}

		n := e.opts.MinPerSprite + rng.Intn(e.opts.MaxPerSprite-e.opts.MinPerSprite+1)
		for i := 0; i < n; i++ {
			// Uniform jitter within the disc around the sprite.
			angle := rng.Float64() * 2 * math.Pi
			dist := e.opts.JitterRadius * math.Sqrt(rng.Float64())
			origin := Position{
				X: src.X + dist*math.Cos(angle),
				Y: src.Y + dist*math.Sin(angle),
			}

			speed := e.opts.MaxSpeed * (0.3 + 0.7*rng.Float64())
			dir := rng.Float64() * 2 * math.Pi

			particles = append(particles, Particle{
				Origin:  origin,
				Pos:     origin,
				Target:  target,
				VX:      speed * math.Cos(dir),
				VY:      speed * math.Sin(dir),
				SpawnMs: rng.Float64() * 0.1 * totalMs,
				Phase:   PhaseExplode,
				Opacity: 1,
				free:    origin,
			})
		}
	}

	return &Handle{
		engine:    e,
		particles: particles,
		totalMs:   totalMs,
	}
}

// smoothstep is the eased morph blend over t in [0,1].
func smoothstep(t float64) float64 {
	if t <= 0 {
		return 0
	}
	if t >= 1 {
		return 1
	}
	return t * t * (3 - 2*t)
}
