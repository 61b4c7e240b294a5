package fathom

import (
	"math"
	"strings"
)

// mutationAction is one entry of the mutation pool: a cooldown category, an
// applicability check, and the mutation itself, which returns a
// human-readable status fragment.
type mutationAction struct {
	cat   mutationCategory
	ok    func(d *Director) bool
	apply func(d *Director) string
}

// paletteBiasChance is the probability the palette recolor fires
// unconditionally (cooldown permitting) when the scene carries palette bias.
const paletteBiasChance = 0.35

// dirFlipCeiling blocks outward zoom-direction flips once the scale is this
// close to MaxScale, preventing in/out oscillation at the ceiling.
const dirFlipCeiling = MaxScale * 0.35

// mutationPool lists every autonomous action. Order is irrelevant; selection
// is uniform over the eligible subset.
var mutationPool = []mutationAction{
	{cat: catPalette, apply: (*Director).mutatePalette},
	{
		cat:   catFractalType,
		apply: (*Director).mutateFractalType,
	},
	{
		cat:   catVariant,
		ok:    func(d *Director) bool { return d.ftype == FractalMandelbrot },
		apply: (*Director).mutateVariant,
	},
	{
		cat:   catSeed,
		ok:    func(d *Director) bool { return d.ftype == FractalJulia },
		apply: (*Director).mutateSeed,
	},
	{cat: catZoomSpeed, apply: (*Director).mutateZoomSpeed},
	{
		cat: catZoomDir,
		ok: func(d *Director) bool {
			// Flipping outward near the ceiling would immediately clamp and
			// flip back; block it there.
			return d.amb.zoomDir == ZoomOut || d.View.Scale < dirFlipCeiling
		},
		apply: (*Director).mutateZoomDir,
	},
	{cat: catRecenter, apply: (*Director).mutateRecenter},
	{cat: catRhythm, apply: (*Director).mutateRhythm},
	{cat: catDeepen, apply: (*Director).mutateDeepen},
}

// fireMutation executes one action. The category cooldown resets only when
// the action reports a fragment; a no-op (empty fragment) leaves the category
// eligible for the next cycle.
func (d *Director) fireMutation(act mutationAction) string {
	frag := act.apply(d)
	if frag != "" {
		d.amb.cooldowns[act.cat] = defaultCooldowns[act.cat]
	}
	return frag
}

// mutate runs one mutation cycle: an optional scene-biased palette recolor,
// then 1 to 2 actions drawn uniformly from the eligible pool. Every executed
// action resets its category cooldown and contributes a status fragment. If
// nothing executed, the rhythm re-randomization runs unconditionally so each
// cycle makes forward progress.
func (d *Director) mutate() {
	a := &d.amb
	var frags []string

	fire := func(act mutationAction) {
		if frag := d.fireMutation(act); frag != "" {
			frags = append(frags, frag)
		}
	}

	paletteFired := false
	if a.cooldowns[catPalette] == 0 && d.sceneHasPaletteBias() && d.rng.Float64() < paletteBiasChance {
		fire(mutationAction{cat: catPalette, apply: (*Director).mutatePalette})
		paletteFired = true
	}

	var eligible []mutationAction
	for _, act := range mutationPool {
		if act.cat == catPalette && paletteFired {
			continue
		}
		if a.cooldowns[act.cat] > 0 {
			continue
		}
		if act.ok != nil && !act.ok(d) {
			continue
		}
		eligible = append(eligible, act)
	}

	n := 1 + d.rng.IntN(2)
	for i := 0; i < n && len(eligible) > 0; i++ {
		j := d.rng.IntN(len(eligible))
		fire(eligible[j])
		eligible = append(eligible[:j], eligible[j+1:]...)
	}

	if len(frags) == 0 {
		fire(mutationAction{cat: catRhythm, apply: (*Director).mutateRhythm})
	}

	d.statusf("%s", strings.Join(frags, ", "))
}

func (d *Director) sceneHasPaletteBias() bool {
	return d.scene.def != nil && len(d.scene.def.PaletteBias) > 0
}

// --- individual mutations ---

// mutatePalette recolors, preferring the scene's palette bias list.
func (d *Director) mutatePalette() string {
	name := ""
	if bias := d.sceneBiasPalettes(); len(bias) > 0 && d.rng.Float64() < 0.7 {
		name = bias[d.rng.IntN(len(bias))]
	}
	if name == "" || name == d.paletteName {
		name = d.pal.Pick(d.rng, d.paletteName)
	}
	if err := d.SelectPalette(name); err != nil {
		return ""
	}
	return "recolored " + name
}

// sceneBiasPalettes returns the scene's bias names filtered to the catalog.
func (d *Director) sceneBiasPalettes() []string {
	if d.scene.def == nil {
		return nil
	}
	var out []string
	for _, name := range d.scene.def.PaletteBias {
		if _, ok := d.pal.Lookup(name); ok && name != d.paletteName {
			out = append(out, name)
		}
	}
	return out
}

func (d *Director) mutateFractalType() string {
	next := FractalJulia
	if d.ftype == FractalJulia {
		next = FractalMandelbrot
	}
	d.SetFractalType(next)
	return "switched to " + next.String()
}

func (d *Director) mutateVariant() string {
	if d.ftype != FractalMandelbrot {
		return "" // a type toggle earlier in this cycle may have changed family
	}
	v := Variant(d.rng.IntN(len(variantNames)))
	if v == d.variant {
		v = Variant((int(v) + 1) % len(variantNames))
	}
	d.SetVariant(v)
	return "variant " + v.String()
}

func (d *Director) mutateSeed() string {
	d.ResetSeed()
	return "reseeded julia"
}

func (d *Director) mutateZoomSpeed() string {
	if d.scene.def != nil {
		d.amb.zoomSpeed = d.scene.def.ZoomSpeed.Sample(d.rng)
	} else {
		d.amb.zoomSpeed = 0.05 + d.rng.Float64()*0.15
	}
	return "retimed zoom"
}

func (d *Director) mutateZoomDir() string {
	if d.amb.zoomDir == ZoomIn {
		d.amb.zoomDir = ZoomOut
		d.amb.zoomOutLeft = zoomOutMaxWindow * (0.3 + d.rng.Float64()*0.7)
		return "drifting outward"
	}
	d.amb.zoomDir = ZoomIn
	return "diving back in"
}

// mutateRecenter nudges the focus target within the current window.
func (d *Director) mutateRecenter() string {
	r := d.View.Scale * 0.25
	d.amb.focus.X = d.View.CenterX + (d.rng.Float64()-0.5)*r
	d.amb.focus.Y = d.View.CenterY + (d.rng.Float64()-0.5)*r
	return "recentred"
}

func (d *Director) mutateRhythm() string {
	d.randomizeRhythm()
	return "new rhythm"
}

// mutateDeepen pushes the scene target further down, within bounds.
func (d *Director) mutateDeepen() string {
	d.amb.targetScale = math.Max(MinScale, d.amb.targetScale*(0.1+d.rng.Float64()*0.4))
	return "deepened target"
}
