package fathom

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Zoom directions. Inward shrinks the view scale (deeper magnification),
// outward grows it.
const (
	ZoomIn  = 1
	ZoomOut = -1
)

// SceneDef is a static catalog entry describing one autonomous-exploration
// mode: how long it runs, which way and how fast it zooms, how deep it aims,
// how much ambient drift it applies, and which palettes/variants it favors.
type SceneDef struct {
	Name           string   `yaml:"name"`
	Duration       Range    `yaml:"duration"` // seconds
	ZoomDirection  int      `yaml:"zoom_direction"`
	ZoomSpeed      Range    `yaml:"zoom_speed"`   // per-second scale fraction
	TargetScale    Range    `yaml:"target_scale"` // plane units
	ShiftIntensity float64  `yaml:"shift_intensity"`
	VariantBias    []string `yaml:"variant_bias"`
	PaletteBias    []string `yaml:"palette_bias"`
}

// validate checks a single definition's internal consistency.
func (s SceneDef) validate() error {
	if s.Name == "" {
		return fmt.Errorf("scene with empty name")
	}
	if s.Duration.Min <= 0 || s.Duration.Max < s.Duration.Min {
		return fmt.Errorf("scene %q: bad duration range [%g, %g]", s.Name, s.Duration.Min, s.Duration.Max)
	}
	if s.ZoomDirection != ZoomIn && s.ZoomDirection != ZoomOut {
		return fmt.Errorf("scene %q: zoom_direction must be 1 or -1, got %d", s.Name, s.ZoomDirection)
	}
	if s.ZoomSpeed.Min < 0 || s.ZoomSpeed.Max < s.ZoomSpeed.Min {
		return fmt.Errorf("scene %q: bad zoom_speed range", s.Name)
	}
	if s.TargetScale.Min < MinScale || s.TargetScale.Max > MaxScale || s.TargetScale.Max < s.TargetScale.Min {
		return fmt.Errorf("scene %q: target_scale range outside [%g, %g]", s.Name, MinScale, MaxScale)
	}
	return nil
}

// ValidateSceneCatalog checks the whole catalog: at least two scenes (the next
// pick always excludes the current name), unique names, valid ranges.
func ValidateSceneCatalog(scenes []SceneDef) error {
	if len(scenes) < 2 {
		return fmt.Errorf("scene catalog: need at least 2 scenes, have %d", len(scenes))
	}
	seen := make(map[string]bool, len(scenes))
	for _, s := range scenes {
		if err := s.validate(); err != nil {
			return fmt.Errorf("scene catalog: %w", err)
		}
		if seen[s.Name] {
			return fmt.Errorf("scene catalog: duplicate name %q", s.Name)
		}
		seen[s.Name] = true
	}
	return nil
}

// LoadSceneCatalog parses a YAML scene list and validates it.
func LoadSceneCatalog(data []byte) ([]SceneDef, error) {
	var scenes []SceneDef
	if err := yaml.Unmarshal(data, &scenes); err != nil {
		return nil, fmt.Errorf("parse scene catalog: %w", err)
	}
	if err := ValidateSceneCatalog(scenes); err != nil {
		return nil, err
	}
	return scenes, nil
}

// pickScene returns a random catalog index whose name differs from exclude.
func pickScene(scenes []SceneDef, rng Rand, exclude string) int {
	for {
		i := rng.IntN(len(scenes))
		if scenes[i].Name != exclude {
			return i
		}
	}
}

// DefaultScenes returns the built-in scene catalog.
func DefaultScenes() []SceneDef {
	return []SceneDef{
		{
			Name:           "plunge",
			Duration:       Range{22, 40},
			ZoomDirection:  ZoomIn,
			ZoomSpeed:      Range{0.12, 0.25},
			TargetScale:    Range{1e-9, 1e-5},
			ShiftIntensity: 0.25,
			PaletteBias:    []string{"abyss", "glacier"},
		},
		{
			Name:           "wander",
			Duration:       Range{28, 55},
			ZoomDirection:  ZoomIn,
			ZoomSpeed:      Range{0.04, 0.09},
			TargetScale:    Range{1e-4, 0.05},
			ShiftIntensity: 0.9,
			VariantBias:    []string{"classic", "perpendicular"},
			PaletteBias:    []string{"aurora", "verdigris", "sulfur"},
		},
		{
			Name:           "filigree",
			Duration:       Range{30, 60},
			ZoomDirection:  ZoomIn,
			ZoomSpeed:      Range{0.07, 0.14},
			TargetScale:    Range{1e-11, 1e-7},
			ShiftIntensity: 0.12,
			VariantBias:    []string{"classic"},
			PaletteBias:    []string{"ember", "rust"},
		},
		{
			Name:           "retreat",
			Duration:       Range{12, 24},
			ZoomDirection:  ZoomOut,
			ZoomSpeed:      Range{0.10, 0.20},
			TargetScale:    Range{0.5, 3.2},
			ShiftIntensity: 0.6,
			PaletteBias:    []string{"glacier", "aurora"},
		},
		{
			Name:           "smoulder",
			Duration:       Range{20, 45},
			ZoomDirection:  ZoomIn,
			ZoomSpeed:      Range{0.05, 0.12},
			TargetScale:    Range{1e-6, 1e-3},
			ShiftIntensity: 0.45,
			VariantBias:    []string{"burning-ship", "cubic"},
			PaletteBias:    []string{"ember", "sulfur", "rust"},
		},
	}
}
