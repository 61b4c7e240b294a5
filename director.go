package fathom

import (
	"fmt"
	"math"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// mutationCategory indexes the per-category cooldown timers.
type mutationCategory uint8

const (
	catPalette mutationCategory = iota
	catFractalType
	catVariant
	catSeed
	catZoomDir
	catZoomSpeed
	catRecenter
	catRhythm
	catDeepen
	categoryCount
)

// defaultCooldowns holds the full cooldown value, in seconds, each category
// resets to when its action fires.
var defaultCooldowns = [categoryCount]float64{
	catPalette:     12,
	catFractalType: 45,
	catVariant:     25,
	catSeed:        18,
	catZoomDir:     20,
	catZoomSpeed:   8,
	catRecenter:    10,
	catRhythm:      15,
	catDeepen:      14,
}

const (
	// seedPublishInterval throttles the externally-visible Julia seed to a few
	// updates per second; the internal seed moves every tick.
	seedPublishInterval = 0.25

	// zoomOutMaxWindow bounds how long a scene may zoom outward before the
	// direction is forced back inward.
	zoomOutMaxWindow = 12.0

	// defaultScaleTolerance is the log-ratio band within which the live scale
	// counts as converged to the scene target (early-arrival termination).
	// Applied identically for both zoom directions.
	defaultScaleTolerance = 0.05

	// sceneTargetHeadroom caps a new scene's target at this fraction of the
	// current scale so every scene demands further zoom progress.
	sceneTargetHeadroom = 0.7
)

// DirectorConfig configures a Director. Zero-value fields fall back to the
// built-in catalogs, an auto-seeded random source, and default tuning.
type DirectorConfig struct {
	Scenes   []SceneDef
	Palettes *PaletteCatalog
	Presets  *PresetCatalog

	// StartPalette names the initial palette; defaults to the catalog's first.
	StartPalette string

	// LUTSize is the palette LUT resolution. Defaults to DefaultLUTSize.
	LUTSize int

	// ScaleTolerance overrides the scene-convergence log-ratio tolerance.
	ScaleTolerance float64

	// Status, if set, receives human-readable status lines (scene entries,
	// mutation summaries, manual overrides).
	Status func(string)

	// Rand overrides the random source for deterministic tests.
	Rand Rand
}

// ambient is the continuously mutated per-session state: oscillator phases
// and speeds, cooldown timers, zoom posture, and the focus target the view
// eases toward.
type ambient struct {
	pulsePhase, breathePhase, driftPhase, orbitPhase float64
	pulseSpeed, breatheSpeed, driftSpeed, orbitSpeed float64

	cooldowns [categoryCount]float64

	focus       Vec2
	zoomDir     int
	zoomSpeed   float64 // per-second scale fraction
	zoomOutLeft float64 // seconds remaining in the bounded zoom-out window
	targetScale float64

	mutTimer float64
	mutEvery float64

	// cascaded frame-independent blends of the per-second zoom multiplier
	zoomSmooth1, zoomSmooth2 float64
}

// activeScene tracks the running scene's lifecycle.
type activeScene struct {
	def      *SceneDef
	elapsed  float64
	duration float64
}

// seedMorph eases the internal Julia seed toward a random target coordinate
// over a randomized duration.
type seedMorph struct {
	tx, ty       *gween.Tween
	doneX, doneY bool
	target       Vec2
}

// Director is the autonomous scene state machine. It owns the view window,
// ambient oscillators, mutation cooldowns, and scene lifecycle, and exposes
// Compose as the engine's per-frame payload callback.
//
// All Director state is mutated synchronously from Tick, Compose, and the
// public handlers on the host's frame callback; queued directives are the
// only cross-goroutine input and are drained at the top of Tick.
type Director struct {
	View    View
	cfg     DirectorConfig
	rng     Rand
	scenes  []SceneDef
	pal     *PaletteCatalog
	presets *PresetCatalog

	ftype   FractalType
	variant Variant

	paletteName string
	lut         []RGB
	lutVersion  uint64

	seed         Vec2 // internal: read by Compose, morphed every tick
	published    Vec2 // throttled external seed
	publishTimer float64
	morph        *seedMorph

	amb   ambient
	scene activeScene

	mutationsOff bool

	directives chan Directive
}

// NewDirector builds a director from cfg and enters its first scene.
func NewDirector(cfg DirectorConfig) (*Director, error) {
	scenes := cfg.Scenes
	if scenes == nil {
		scenes = DefaultScenes()
	}
	if err := ValidateSceneCatalog(scenes); err != nil {
		return nil, err
	}
	pal := cfg.Palettes
	if pal == nil {
		pal = DefaultPalettes()
	}
	presets := cfg.Presets
	if presets == nil {
		presets = DefaultPresets()
	}
	rng := cfg.Rand
	if rng == nil {
		rng = newDefaultRand()
	}
	if cfg.LUTSize == 0 {
		cfg.LUTSize = DefaultLUTSize
	}
	if cfg.ScaleTolerance == 0 {
		cfg.ScaleTolerance = defaultScaleTolerance
	}

	d := &Director{
		cfg:        cfg,
		rng:        rng,
		scenes:     scenes,
		pal:        pal,
		presets:    presets,
		directives: make(chan Directive, 64),
		View:       View{CenterX: -0.6, CenterY: 0, Scale: 3.2},
	}
	d.amb.focus = Vec2{X: d.View.CenterX, Y: d.View.CenterY}
	d.amb.targetScale = d.View.Scale
	d.amb.zoomDir = ZoomIn
	d.amb.zoomSmooth1 = 1
	d.amb.zoomSmooth2 = 1
	d.randomizeRhythm()
	d.amb.mutEvery = d.nextMutationInterval()
	d.seed = Vec2{X: -0.78, Y: 0.14}
	d.published = d.seed
	d.startSeedMorph()

	start := cfg.StartPalette
	if start == "" {
		start = pal.Names()[0]
	}
	if err := d.SelectPalette(start); err != nil {
		return nil, err
	}

	d.enterScene(pickScene(d.scenes, d.rng, ""))
	return d, nil
}

// Tick advances ambient and scene state by dt seconds of wall-clock time.
// Call once per host display frame, independent of render pacing.
func (d *Director) Tick(dt float64) {
	if dt <= 0 {
		return
	}
	d.drainDirectives()

	a := &d.amb
	a.pulsePhase = wrapPhase(a.pulsePhase + a.pulseSpeed*dt)
	a.breathePhase = wrapPhase(a.breathePhase + a.breatheSpeed*dt)
	a.driftPhase = wrapPhase(a.driftPhase + a.driftSpeed*dt)
	a.orbitPhase = wrapPhase(a.orbitPhase + a.orbitSpeed*dt)

	for i := range a.cooldowns {
		a.cooldowns[i] = math.Max(0, a.cooldowns[i]-dt)
	}

	if a.zoomDir == ZoomOut {
		a.zoomOutLeft -= dt
		if a.zoomOutLeft <= 0 {
			a.zoomDir = ZoomIn
		}
	}

	if d.ftype == FractalJulia {
		d.tickSeedMorph(dt)
	}

	if d.mutationsOff {
		a.mutTimer = 0
	} else {
		a.mutTimer += dt
		if a.mutTimer >= a.mutEvery {
			a.mutTimer = 0
			a.mutEvery = d.nextMutationInterval()
			d.mutate()
		}
	}

	d.scene.elapsed += dt
	if d.sceneDone() {
		d.enterScene(pickScene(d.scenes, d.rng, d.scene.def.Name))
	}
}

// sceneDone reports whether the active scene should end: elapsed past its
// duration, or the live scale converged to the target within tolerance.
func (d *Director) sceneDone() bool {
	if d.scene.def == nil {
		return true
	}
	if d.scene.elapsed >= d.scene.duration {
		return true
	}
	return math.Abs(math.Log(d.View.Scale/d.amb.targetScale)) < d.cfg.ScaleTolerance
}

// enterScene activates the catalog entry at index i and rolls its entry
// effects: target scale, focus preset, zoom posture, cooldown fractions, and
// thematic palette/variant/seed biases.
func (d *Director) enterScene(i int) {
	def := &d.scenes[i]
	d.scene = activeScene{def: def, duration: def.Duration.Sample(d.rng)}
	a := &d.amb

	target := def.TargetScale.Sample(d.rng)
	if ceiling := d.View.Scale * sceneTargetHeadroom; target > ceiling {
		target = ceiling
	}
	a.targetScale = math.Max(target, MinScale)

	if focus, ok := d.presets.Resolve(d.ftype, d.variant, a.targetScale, d.rng); ok {
		a.focus = focus
	}

	a.zoomDir = def.ZoomDirection
	if a.zoomDir == ZoomOut {
		a.zoomOutLeft = math.Min(d.scene.duration, zoomOutMaxWindow)
	}
	a.zoomSpeed = def.ZoomSpeed.Sample(d.rng)

	// Cooldowns restart at a scene-scaled fraction of their full value so
	// short scenes still get a mutation budget.
	frac := clamp01(d.scene.duration/45) * 0.5
	for c := range a.cooldowns {
		a.cooldowns[c] = defaultCooldowns[c] * frac
	}

	if len(def.PaletteBias) > 0 && d.rng.Float64() < 0.6 {
		name := def.PaletteBias[d.rng.IntN(len(def.PaletteBias))]
		if _, ok := d.pal.Lookup(name); ok && name != d.paletteName {
			d.SelectPalette(name)
		}
	}
	if d.ftype == FractalMandelbrot && len(def.VariantBias) > 0 && d.rng.Float64() < 0.5 {
		d.SetVariant(ParseVariant(def.VariantBias[d.rng.IntN(len(def.VariantBias))]))
	}
	if d.ftype == FractalJulia && d.rng.Float64() < 0.4 {
		d.ResetSeed()
	}

	d.statusf("scene %s: target %.2e over %.0fs", def.Name, a.targetScale, d.scene.duration)
}

// SceneName returns the active scene's name.
func (d *Director) SceneName() string {
	if d.scene.def == nil {
		return ""
	}
	return d.scene.def.Name
}

// --- rhythm / randomness ---

func wrapPhase(p float64) float64 {
	return math.Mod(p, 2*math.Pi)
}

// randomizeRhythm re-rolls all oscillator angular speeds.
func (d *Director) randomizeRhythm() {
	a := &d.amb
	a.pulseSpeed = 0.4 + d.rng.Float64()*0.8
	a.breatheSpeed = 0.1 + d.rng.Float64()*0.3
	a.driftSpeed = 0.15 + d.rng.Float64()*0.45
	a.orbitSpeed = 0.05 + d.rng.Float64()*0.2
}

func (d *Director) nextMutationInterval() float64 {
	return 7 + d.rng.Float64()*9
}

// --- Julia seed morph ---

// startSeedMorph begins easing the internal seed toward a fresh random target
// over a randomized duration.
func (d *Director) startSeedMorph() {
	target := Vec2{
		X: -1.0 + d.rng.Float64()*1.6, // interesting seeds cluster near the set boundary
		Y: -0.9 + d.rng.Float64()*1.8,
	}
	dur := float32(4 + d.rng.Float64()*8)
	d.morph = &seedMorph{
		tx:     gween.New(float32(d.seed.X), float32(target.X), dur, ease.InOutQuad),
		ty:     gween.New(float32(d.seed.Y), float32(target.Y), dur, ease.InOutQuad),
		target: target,
	}
}

func (d *Director) tickSeedMorph(dt float64) {
	m := d.morph
	if m == nil {
		d.startSeedMorph()
		m = d.morph
	}
	if !m.doneX {
		v, done := m.tx.Update(float32(dt))
		d.seed.X = float64(v)
		m.doneX = done
	}
	if !m.doneY {
		v, done := m.ty.Update(float32(dt))
		d.seed.Y = float64(v)
		m.doneY = done
	}
	if m.doneX && m.doneY {
		d.startSeedMorph()
	}

	d.publishTimer += dt
	if d.publishTimer >= seedPublishInterval {
		d.publishTimer = 0
		d.published = d.seed
	}
}

// Seed returns the published (throttled) Julia seed.
func (d *Director) Seed() Vec2 {
	return d.published
}

// --- public handlers (user or directive origin) ---

// statusf forwards a formatted status line to the sink, if any.
func (d *Director) statusf(format string, args ...any) {
	if d.cfg.Status != nil {
		d.cfg.Status(fmt.Sprintf(format, args...))
	}
}

// SelectPalette switches to the named palette and rebuilds the LUT.
func (d *Director) SelectPalette(name string) error {
	p, ok := d.pal.Lookup(name)
	if !ok {
		return fmt.Errorf("palette %q not in catalog", name)
	}
	anchors, err := p.AnchorColors()
	if err != nil {
		return err
	}
	d.lut = BuildLUT(anchors, d.cfg.LUTSize)
	d.lutVersion++
	d.paletteName = name
	d.statusf("palette %s", name)
	return nil
}

// PaletteLUT returns the current LUT and its monotonic version. The engine
// uses the version to detect staleness without deep comparison.
func (d *Director) PaletteLUT() ([]RGB, uint64) {
	return d.lut, d.lutVersion
}

// PaletteName returns the active palette's catalog name.
func (d *Director) PaletteName() string {
	return d.paletteName
}

// SetJuliaSeed pins the seed to (x, y) and restarts the morph from there.
func (d *Director) SetJuliaSeed(x, y float64) {
	d.seed = Vec2{X: x, Y: y}
	d.published = d.seed
	d.startSeedMorph()
	d.amb.cooldowns[catSeed] = defaultCooldowns[catSeed]
	d.statusf("julia seed (%.4f, %.4f)", x, y)
}

// ResetSeed randomizes the Julia seed and its morph target.
func (d *Director) ResetSeed() {
	d.SetJuliaSeed(-1.0+d.rng.Float64()*1.6, -0.9+d.rng.Float64()*1.8)
}

// SetVariant switches the Mandelbrot-family formula. Ignored for Julia.
func (d *Director) SetVariant(v Variant) {
	if d.ftype != FractalMandelbrot || v == d.variant {
		return
	}
	d.variant = v
	d.amb.cooldowns[catVariant] = defaultCooldowns[catVariant]
	if focus, ok := d.presets.Resolve(d.ftype, v, d.amb.targetScale, d.rng); ok {
		d.amb.focus = focus
	}
	d.statusf("variant %s", v)
}

// Variant returns the active Mandelbrot-family variant.
func (d *Director) Variant() Variant {
	return d.variant
}

// SetFractalType switches the fractal family. A type switch is the one event
// that resets the view window.
func (d *Director) SetFractalType(t FractalType) {
	if t == d.ftype {
		return
	}
	d.ftype = t
	d.variant = VariantClassic
	d.View = View{CenterX: -0.6, CenterY: 0, Scale: 3.2}
	if t == FractalJulia {
		d.View.CenterX = 0
		d.startSeedMorph()
	}
	d.amb.focus = Vec2{X: d.View.CenterX, Y: d.View.CenterY}
	d.amb.targetScale = d.View.Scale * sceneTargetHeadroom
	d.amb.cooldowns[catFractalType] = defaultCooldowns[catFractalType]
	d.statusf("fractal %s", t)
}

// FractalType returns the active fractal family.
func (d *Director) FractalType() FractalType {
	return d.ftype
}

// SelectPreset jumps the focus to a curated coordinate and re-aims the zoom
// to dive into it.
func (d *Director) SelectPreset(p FocusPreset) {
	d.amb.focus = Vec2{X: p.X, Y: p.Y}
	d.amb.targetScale = math.Max(MinScale, p.Scale*0.25)
	d.amb.zoomDir = ZoomIn
	d.statusf("focus (%.5f, %.5f) @ %.2e", p.X, p.Y, p.Scale)
}

// AdjustZoom applies a manual zoom factor to the view scale (<1 zooms in).
// The scale invariant holds across arbitrarily many calls.
func (d *Director) AdjustZoom(factor float64) {
	if factor <= 0 {
		return
	}
	d.View.Scale = ClampScale(d.View.Scale * factor)
	d.statusf("zoom %.2e", d.View.Scale)
}

// SetMutationsEnabled toggles autonomous mutation. While disabled the
// mutation timer is held at zero.
func (d *Director) SetMutationsEnabled(enabled bool) {
	d.mutationsOff = !enabled
}
