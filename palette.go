package fathom

import (
	"fmt"
	"math"

	"gopkg.in/yaml.v3"
)

// DefaultLUTSize is the step count used when building palette LUTs unless a
// caller asks for a different resolution.
const DefaultLUTSize = 2048

// minLuminanceSpan is the minimum spread, out of 255, between the darkest and
// brightest LUT entry after contrast normalization. Anchor lists that are too
// flat get stretched to at least this span.
const minLuminanceSpan = 110.0

// BuildLUT interpolates the anchor colors into a cyclic LUT of exactly steps
// entries, wrapping last→first, then normalizes contrast so the luminance span
// meets minLuminanceSpan. Identical anchors are left untouched (there is no
// contrast to recover). Panics if fewer than 2 anchors or steps < 2; palette
// input is validated at the API boundary before reaching here.
func BuildLUT(anchors []RGB, steps int) []RGB {
	if len(anchors) < 2 {
		panic("fathom: BuildLUT requires at least 2 anchor colors")
	}
	if steps < 2 {
		panic("fathom: BuildLUT requires at least 2 steps")
	}

	lut := make([]RGB, steps)
	segs := float64(len(anchors)) // wrapping: one segment per anchor
	for i := 0; i < steps; i++ {
		t := float64(i) / float64(steps) * segs
		seg := int(t)
		frac := t - float64(seg)
		a := anchors[seg%len(anchors)]
		b := anchors[(seg+1)%len(anchors)]
		lut[i] = RGB{
			R: uint8(math.Round(lerp(float64(a.R), float64(b.R), frac))),
			G: uint8(math.Round(lerp(float64(a.G), float64(b.G), frac))),
			B: uint8(math.Round(lerp(float64(a.B), float64(b.B), frac))),
		}
	}

	normalizeContrast(lut)
	return lut
}

// luminance returns the relative luminance of c in [0, 255].
func luminance(c RGB) float64 {
	return 0.2126*float64(c.R) + 0.7152*float64(c.G) + 0.0722*float64(c.B)
}

// normalizeContrast stretches the LUT's luminance range about its midpoint so
// the realized span is at least minLuminanceSpan, rescaling each channel by
// the luminance ratio. The stretched window is shifted back inside [0, 255]
// first, so a flat set near either end of the range still realizes the full
// span instead of losing it to clamping. A zero-luminance sample has no
// channel information to rescale and maps to neutral gray at its target
// luminance.
func normalizeContrast(lut []RGB) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, c := range lut {
		l := luminance(c)
		lo = math.Min(lo, l)
		hi = math.Max(hi, l)
	}
	span := hi - lo
	if span <= 0 || span >= minLuminanceSpan {
		return
	}

	mid := (hi + lo) / 2
	stretch := minLuminanceSpan / span

	// minLuminanceSpan < 255, so at most one end can overshoot.
	offset := 0.0
	if newLo := mid + (lo-mid)*stretch; newLo < 0 {
		offset = -newLo
	} else if newHi := mid + (hi-mid)*stretch; newHi > 255 {
		offset = 255 - newHi
	}

	for i, c := range lut {
		l := luminance(c)
		target := mid + (l-mid)*stretch + offset
		if target < 0 {
			target = 0
		} else if target > 255 {
			target = 255
		}
		if l == 0 {
			g := uint8(math.Round(target))
			lut[i] = RGB{g, g, g}
			continue
		}
		// The LUT stores sRGB-encoded bytes and luminance is measured on the
		// encoded values, so the ratio applies to the channels directly: the
		// realized luminance lands exactly on target unless a channel clips.
		ratio := target / l
		lut[i] = RGB{
			R: clampByte(float64(c.R) * ratio),
			G: clampByte(float64(c.G) * ratio),
			B: clampByte(float64(c.B) * ratio),
		}
	}
}

func clampByte(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(math.Round(v))
}

// Palette is a named, ordered anchor-color list as stored in the catalog.
type Palette struct {
	Name    string   `yaml:"name"`
	Anchors []string `yaml:"anchors"` // hex colors, "#rrggbb"
}

// ParseHexColor parses "#rrggbb" (or "rrggbb") into an RGB triple.
func ParseHexColor(s string) (RGB, error) {
	if len(s) > 0 && s[0] == '#' {
		s = s[1:]
	}
	if len(s) != 6 {
		return RGB{}, fmt.Errorf("parse color %q: want 6 hex digits", s)
	}
	var v uint32
	for i := 0; i < 6; i++ {
		v <<= 4
		c := s[i]
		switch {
		case c >= '0' && c <= '9':
			v |= uint32(c - '0')
		case c >= 'a' && c <= 'f':
			v |= uint32(c-'a') + 10
		case c >= 'A' && c <= 'F':
			v |= uint32(c-'A') + 10
		default:
			return RGB{}, fmt.Errorf("parse color %q: invalid hex digit %q", s, c)
		}
	}
	return RGB{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, nil
}

// AnchorColors parses the palette's hex anchors.
func (p Palette) AnchorColors() ([]RGB, error) {
	if len(p.Anchors) < 2 {
		return nil, fmt.Errorf("palette %q: need at least 2 anchors, have %d", p.Name, len(p.Anchors))
	}
	out := make([]RGB, len(p.Anchors))
	for i, hex := range p.Anchors {
		c, err := ParseHexColor(hex)
		if err != nil {
			return nil, fmt.Errorf("palette %q: %w", p.Name, err)
		}
		out[i] = c
	}
	return out, nil
}

// PaletteCatalog is an ordered, name-addressable palette collection.
type PaletteCatalog struct {
	palettes []Palette
	byName   map[string]int
}

// NewPaletteCatalog builds a catalog from the given palettes.
// Duplicate names and unparsable anchors are rejected.
func NewPaletteCatalog(palettes []Palette) (*PaletteCatalog, error) {
	if len(palettes) == 0 {
		return nil, fmt.Errorf("palette catalog: empty")
	}
	byName := make(map[string]int, len(palettes))
	for i, p := range palettes {
		if _, dup := byName[p.Name]; dup {
			return nil, fmt.Errorf("palette catalog: duplicate name %q", p.Name)
		}
		if _, err := p.AnchorColors(); err != nil {
			return nil, err
		}
		byName[p.Name] = i
	}
	return &PaletteCatalog{palettes: palettes, byName: byName}, nil
}

// LoadPaletteCatalog parses a YAML palette list.
func LoadPaletteCatalog(data []byte) (*PaletteCatalog, error) {
	var palettes []Palette
	if err := yaml.Unmarshal(data, &palettes); err != nil {
		return nil, fmt.Errorf("parse palette catalog: %w", err)
	}
	return NewPaletteCatalog(palettes)
}

// Names returns the palette names in catalog order.
func (c *PaletteCatalog) Names() []string {
	names := make([]string, len(c.palettes))
	for i, p := range c.palettes {
		names[i] = p.Name
	}
	return names
}

// Lookup returns the palette with the given name.
func (c *PaletteCatalog) Lookup(name string) (Palette, bool) {
	i, ok := c.byName[name]
	if !ok {
		return Palette{}, false
	}
	return c.palettes[i], true
}

// Pick returns a random palette name, excluding the given current name when
// the catalog has more than one entry.
func (c *PaletteCatalog) Pick(rng Rand, exclude string) string {
	if len(c.palettes) == 1 {
		return c.palettes[0].Name
	}
	for {
		name := c.palettes[rng.IntN(len(c.palettes))].Name
		if name != exclude {
			return name
		}
	}
}

// DefaultPalettes returns the built-in palette catalog. All entries satisfy
// the contrast guarantee after LUT construction.
func DefaultPalettes() *PaletteCatalog {
	cat, err := NewPaletteCatalog([]Palette{
		{Name: "ember", Anchors: []string{"#0b0423", "#4a1942", "#893168", "#f05d23", "#f8c630"}},
		{Name: "glacier", Anchors: []string{"#03045e", "#0077b6", "#90e0ef", "#caf0f8", "#48cae4"}},
		{Name: "aurora", Anchors: []string{"#001219", "#005f73", "#0a9396", "#94d2bd", "#ee9b00"}},
		{Name: "abyss", Anchors: []string{"#10002b", "#3c096c", "#7b2cbf", "#c77dff", "#e0aaff"}},
		{Name: "sulfur", Anchors: []string{"#232112", "#555b22", "#a6a867", "#fefae0", "#dda15e"}},
		{Name: "rust", Anchors: []string{"#250902", "#641220", "#b21e35", "#e01e37", "#f6aa1c"}},
		{Name: "verdigris", Anchors: []string{"#081c15", "#1b4332", "#2d6a4f", "#74c69d", "#d8f3dc"}},
	})
	if err != nil {
		panic(err) // built-in catalog must parse
	}
	return cat
}
