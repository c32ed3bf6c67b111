package particles

// Handle is one in-flight animation run. The renderer drives it with Tick
// once per frame and may Cancel at any time. Calling Tick after the run has
// completed or been cancelled is a caller contract violation and panics:
// silently returning would hide a wiring bug in the frame loop.
type Handle struct {
	engine    *Engine
	particles []Particle
	totalMs   float64
	lastMs    float64
	done      bool
	cancelled bool
}

// Done reports whether the run has completed or been cancelled.
func (h *Handle) Done() bool {
	return h.done || h.cancelled
}

// Cancel discards all particle state. Cooperative: a Tick already producing
// its snapshot finishes before the flag is observed on the next call.
func (h *Handle) Cancel() {
	h.cancelled = true
	h.particles = nil
}

// Tick advances the simulation to elapsedMs since Start and returns a
// snapshot of every particle. The snapshot is a copy; the caller may hold
// it across frames.
func (h *Handle) Tick(elapsedMs float64) []Particle {
	if h.done || h.cancelled {
		panic("particles: Tick called after completion or cancel")
	}

	progress := elapsedMs / h.totalMs
	if progress > 1 {
		progress = 1
	}
	dtSec := (elapsedMs - h.lastMs) / 1000
	if dtSec < 0 {
		dtSec = 0
	}
	h.lastMs = elapsedMs

	explodeEnd := h.engine.opts.ExplosionFraction
	fadeStep := 1 / float64(h.engine.opts.FadeTicks)

	for i := range h.particles {
		p := &h.particles[i]

		if p.fading {
			p.Opacity -= fadeStep
			if p.Opacity < 0 {
				p.Opacity = 0
			}
			continue
		}
		if elapsedMs < p.SpawnMs {
			continue
		}

		if progress < explodeEnd {
			// Ballistic: no target influence yet.
			p.free.X += p.VX * dtSec
			p.free.Y += p.VY * dtSec
			p.Pos = p.free
			p.Phase = PhaseExplode

			if !p.Pos.IsFinite() ||
				!h.engine.inViewport(p.Pos, h.engine.opts.BoundsMargin) {
				p.fading = true
			}
			continue
		}

		// Morph: velocity influence fades with the sub-progress while the
		// eased blend pulls toward the target.
		sub := (progress - explodeEnd) / (1 - explodeEnd)
		p.free.X += p.VX * (1 - sub) * dtSec
		p.free.Y += p.VY * (1 - sub) * dtSec

		eased := smoothstep(sub)
		p.Pos = Position{
			X: p.free.X + (p.Target.X-p.free.X)*eased,
			Y: p.free.Y + (p.Target.Y-p.free.Y)*eased,
		}
		p.Phase = PhaseMorph

		if !p.Pos.IsFinite() {
			p.fading = true
		}
	}

	if progress >= 1 {
		for i := range h.particles {
			h.particles[i].Phase = PhaseDone
		}
		h.done = true
	}

	snapshot := make([]Particle, len(h.particles))
	copy(snapshot, h.particles)
	return snapshot
}
