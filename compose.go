package fathom

import "math"

// Iteration budget tuning. Base and slope are empirical visual-smoothness
// constants; the budget is clamped to [IterMin, IterMax] regardless of depth
// or oscillator modulation.
const (
	iterBase  = 190.0
	iterSlope = 90.0
	IterMin   = 180
	IterMax   = 900
)

const (
	// recenterRate is the per-second convergence rate of the view center
	// toward the focus target.
	recenterRate = 1.8

	// driftScale sizes the ambient drift offset relative to the view scale.
	driftScale = 0.08

	// driftFadeDecades: drift attenuates to zero over this many decades of
	// scale above MinScale, so extreme magnification stays jitter-free.
	driftFadeDecades = 3.0

	// targetPull is the power-law exponent biasing the zoom rate toward the
	// scene target: far above the target zooms harder, near it eases off.
	targetPull = 0.04

	// Cascaded smoothing rates for the per-second zoom multiplier: a fast
	// organic easing stage feeding a slower final-adoption stage. Both are
	// frame-independent exponential blends.
	zoomSmoothFast = 6.0
	zoomSmoothSlow = 2.5
)

// blendRate converts a per-second convergence rate into a frame-independent
// blend factor for a step of dt seconds.
func blendRate(rate, dt float64) float64 {
	return 1 - math.Exp(-rate*dt)
}

// IterationBudget returns the unmodulated iteration budget for a view scale:
// linear in log10(1/scale), clamped to [IterMin, IterMax]. Monotonically
// non-increasing in scale.
func IterationBudget(scale float64) int {
	depth := math.Log10(1 / scale)
	budget := iterBase + iterSlope*depth
	if budget < IterMin {
		return IterMin
	}
	if budget > IterMax {
		return IterMax
	}
	return int(budget)
}

// driftAttenuation fades the drift offset toward zero as scale approaches
// MinScale. Returns a factor in [0, 1].
func driftAttenuation(scale float64) float64 {
	return clamp01(math.Log10(scale/MinScale) / driftFadeDecades)
}

// Compose is the render-payload callback consumed by the engine: it advances
// the view (recentring, drift, zoom) by dt seconds and returns the frame's
// render request. Never returns nil; a future host may skip frames by
// wrapping it.
func (d *Director) Compose(dt float64, width, height int) *RenderRequest {
	a := &d.amb
	v := &d.View

	// Ease the center toward the focus target, frame-independently.
	k := blendRate(recenterRate, dt)
	v.CenterX += (a.focus.X - v.CenterX) * k
	v.CenterY += (a.focus.Y - v.CenterY) * k

	// Ambient drift rides on top of the eased center rather than
	// accumulating into it, attenuated near the deepest zoom.
	shift := 0.0
	if d.scene.def != nil {
		shift = d.scene.def.ShiftIntensity
	}
	att := driftAttenuation(v.Scale)
	driftX := math.Sin(a.driftPhase) * shift * driftScale * v.Scale * att
	driftY := math.Cos(a.driftPhase*0.77+a.orbitPhase) * shift * driftScale * v.Scale * att

	// Advance scale toward the scene target. The raw per-second multiplier
	// is oscillator-modulated and biased by a power-law correction toward
	// the target, then smoothed through two cascaded exponential blends so
	// zoom velocity never jumps between frames.
	rate := a.zoomSpeed * (1 + 0.15*math.Sin(a.pulsePhase))
	ratio := v.Scale / a.targetScale
	if ratio > 0 {
		rate *= math.Pow(ratio, float64(a.zoomDir)*targetPull)
	}
	perSec := 1 - float64(a.zoomDir)*rate // <1 zooms in, >1 zooms out
	a.zoomSmooth1 += (perSec - a.zoomSmooth1) * blendRate(zoomSmoothFast, dt)
	a.zoomSmooth2 += (a.zoomSmooth1 - a.zoomSmooth2) * blendRate(zoomSmoothSlow, dt)
	v.Scale = ClampScale(v.Scale * math.Pow(a.zoomSmooth2, dt))

	// Iteration budget: depth-derived, breathing with the oscillators.
	budget := float64(IterationBudget(v.Scale))
	budget *= 1 + 0.05*math.Sin(a.pulsePhase) + 0.04*math.Sin(a.breathePhase)
	iters := int(math.Max(IterMin, math.Min(IterMax, budget)))

	return &RenderRequest{
		Width:       width,
		Height:      height,
		Type:        d.ftype,
		Variant:     d.variant,
		JuliaSeed:   d.seed, // internal seed: updates every tick
		MaxIter:     iters,
		View:        View{CenterX: v.CenterX + driftX, CenterY: v.CenterY + driftY, Scale: v.Scale},
		AspectRatio: float64(width) / float64(height),
	}
}
