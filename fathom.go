package fathom

import "math/rand/v2"

// RGB is an 8-bit color triple. Palette LUTs and pixel buffers use RGB with
// an implied opaque alpha; alpha is appended at buffer-fill time.
type RGB struct {
	R, G, B uint8
}

// Vec2 is a 2D vector used for complex-plane coordinates, focus targets, and
// Julia seeds throughout the API. X is the real axis, Y the imaginary axis.
type Vec2 struct {
	X, Y float64
}

// Range is a general-purpose min/max range.
// Used by scene definitions (durations, zoom speeds, target scales).
type Range struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

// Sample returns a uniformly distributed value in [Min, Max).
func (r Range) Sample(rng Rand) float64 {
	return r.Min + rng.Float64()*(r.Max-r.Min)
}

// FractalType selects the family of the escape-time iteration.
type FractalType uint8

const (
	// FractalMandelbrot varies c per pixel with z0 = 0. Variants apply.
	FractalMandelbrot FractalType = iota
	// FractalJulia fixes c (the seed) and varies z0 per pixel.
	FractalJulia
)

// String returns the catalog name of the fractal type.
func (t FractalType) String() string {
	if t == FractalJulia {
		return "julia"
	}
	return "mandelbrot"
}

// Variant selects the Mandelbrot-family iteration formula.
// Variants other than VariantClassic only apply to FractalMandelbrot.
type Variant uint8

const (
	VariantClassic       Variant = iota // z ← z² + c
	VariantBurningShip                  // z ← (|Re z| + i|Im z|)² + c
	VariantCubic                        // z ← z³ + c
	VariantPerpendicular                // Re ← Re²−Im², Im ← |2·Re·Im|, then +c
)

var variantNames = [...]string{"classic", "burning-ship", "cubic", "perpendicular"}

// String returns the catalog name of the variant.
func (v Variant) String() string {
	if int(v) < len(variantNames) {
		return variantNames[v]
	}
	return "classic"
}

// ParseVariant converts a catalog name back into a Variant.
// Unknown names map to VariantClassic.
func ParseVariant(name string) Variant {
	for i, n := range variantNames {
		if n == name {
			return Variant(i)
		}
	}
	return VariantClassic
}

// View is a logical complex-plane window. Scale is the window width in plane
// units; the height follows from the render target's aspect ratio.
type View struct {
	CenterX, CenterY float64
	Scale            float64
}

// Scale bounds for the view window. MinScale is where float64 pixel deltas
// degrade visibly; the engine accepts that degradation rather than switching
// to arbitrary precision.
const (
	MinScale = 2.5e-13
	MaxScale = 4.0
)

// ClampScale restricts s to [MinScale, MaxScale].
func ClampScale(s float64) float64 {
	if s < MinScale {
		return MinScale
	}
	if s > MaxScale {
		return MaxScale
	}
	return s
}

// Rand is the random source injected at every stochastic call site (scene
// picks, mutation selection, jitter) so tests can seed deterministically.
// *rand.Rand from math/rand/v2 satisfies it.
type Rand interface {
	Float64() float64
	IntN(n int) int
}

// newDefaultRand returns an auto-seeded source for production use.
func newDefaultRand() Rand {
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}
