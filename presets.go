package fathom

import (
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

// FocusPreset is one entry of the focus-target catalog: a known-interesting
// complex coordinate and the view scale it was curated at.
type FocusPreset struct {
	Scale float64 `yaml:"scale"`
	X     float64 `yaml:"x"`
	Y     float64 `yaml:"y"`
}

// presetGroup is the YAML shape of one (type, variant) preset list.
type presetGroup struct {
	Type    string        `yaml:"type"`
	Variant string        `yaml:"variant"`
	Presets []FocusPreset `yaml:"presets"`
}

type presetKey struct {
	t FractalType
	v Variant
}

// presetJitter is the fraction of a preset's scale used to randomize the
// resolved focus coordinate, so repeat visits never land pixel-identical.
const presetJitter = 0.2

// PresetCatalog holds scale-ordered focus presets keyed by fractal type and
// variant. Lists are kept sorted deepest (smallest scale) first.
type PresetCatalog struct {
	groups map[presetKey][]FocusPreset
}

// NewPresetCatalog builds a catalog from the given groups.
func NewPresetCatalog(groups []presetGroup) (*PresetCatalog, error) {
	c := &PresetCatalog{groups: make(map[presetKey][]FocusPreset)}
	for _, g := range groups {
		var t FractalType
		switch g.Type {
		case "mandelbrot":
			t = FractalMandelbrot
		case "julia":
			t = FractalJulia
		default:
			return nil, fmt.Errorf("preset catalog: unknown fractal type %q", g.Type)
		}
		if len(g.Presets) == 0 {
			return nil, fmt.Errorf("preset catalog: empty preset list for %s/%s", g.Type, g.Variant)
		}
		key := presetKey{t, ParseVariant(g.Variant)}
		list := append(c.groups[key], g.Presets...)
		sort.Slice(list, func(i, j int) bool { return list[i].Scale < list[j].Scale })
		c.groups[key] = list
	}
	return c, nil
}

// LoadPresetCatalog parses a YAML preset catalog.
func LoadPresetCatalog(data []byte) (*PresetCatalog, error) {
	var groups []presetGroup
	if err := yaml.Unmarshal(data, &groups); err != nil {
		return nil, fmt.Errorf("parse preset catalog: %w", err)
	}
	return NewPresetCatalog(groups)
}

// Lookup returns the scale-ordered preset list for (t, v), falling back to
// the classic list of the same type when the variant has none.
func (c *PresetCatalog) Lookup(t FractalType, v Variant) []FocusPreset {
	if list, ok := c.groups[presetKey{t, v}]; ok {
		return list
	}
	return c.groups[presetKey{t, VariantClassic}]
}

// Resolve picks the focus coordinate for a dive toward targetScale: the
// deepest preset still at or above the target (so the approach passes through
// the curated feature), jittered proportionally to the preset's own scale.
// Falls back to the shallowest preset when the target is shallower than the
// whole list, and reports ok=false when no list exists at all.
func (c *PresetCatalog) Resolve(t FractalType, v Variant, targetScale float64, rng Rand) (Vec2, bool) {
	list := c.Lookup(t, v)
	if len(list) == 0 {
		return Vec2{}, false
	}
	chosen := list[len(list)-1]
	for _, p := range list {
		if p.Scale >= targetScale {
			chosen = p
			break
		}
	}
	jx := (rng.Float64() - 0.5) * chosen.Scale * presetJitter
	jy := (rng.Float64() - 0.5) * chosen.Scale * presetJitter
	return Vec2{X: chosen.X + jx, Y: chosen.Y + jy}, true
}

// DefaultPresets returns the built-in landmark catalog. The classic
// Mandelbrot entries are well-known set features (seahorse valley, elephant
// valley, spiral minibrots); the other variants carry a handful of curated
// coordinates each.
func DefaultPresets() *PresetCatalog {
	cat, err := NewPresetCatalog([]presetGroup{
		{
			Type: "mandelbrot", Variant: "classic",
			Presets: []FocusPreset{
				{Scale: 3.2, X: -0.6, Y: 0},
				{Scale: 0.1, X: -0.75, Y: 0.1},  // seahorse valley
				{Scale: 0.1, X: -1.8, Y: -0.06}, // elephant valley
				{Scale: 0.005, X: -0.7375, Y: 0.1825},
				{Scale: 0.003, X: -0.7465, Y: 0.0965},    // triple spiral
				{Scale: 0.0015, X: -0.74275, Y: 0.13175}, // spiral minibrot
				{Scale: 0.0015, X: -1.73825, Y: -0.02275},
			},
		},
		{
			Type: "mandelbrot", Variant: "burning-ship",
			Presets: []FocusPreset{
				{Scale: 3.4, X: -0.5, Y: -0.5},
				{Scale: 0.15, X: -1.755, Y: -0.03},
				{Scale: 0.02, X: -1.7715, Y: -0.0573},
			},
		},
		{
			Type: "mandelbrot", Variant: "cubic",
			Presets: []FocusPreset{
				{Scale: 3.0, X: 0, Y: 0},
				{Scale: 0.5, X: -0.2, Y: 0.85},
				{Scale: 0.08, X: 0.39, Y: 0.69},
			},
		},
		{
			Type: "mandelbrot", Variant: "perpendicular",
			Presets: []FocusPreset{
				{Scale: 3.2, X: -0.5, Y: 0},
				{Scale: 0.3, X: -1.62, Y: 0.0},
				{Scale: 0.05, X: -0.135, Y: -1.09},
			},
		},
		{
			Type: "julia", Variant: "classic",
			Presets: []FocusPreset{
				{Scale: 3.0, X: 0, Y: 0},
				{Scale: 0.8, X: 0.3, Y: 0.25},
				{Scale: 0.12, X: -0.15, Y: 0.6},
			},
		},
	})
	if err != nil {
		panic(err) // built-in catalog must parse
	}
	return cat
}
