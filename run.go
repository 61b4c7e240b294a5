package fathom

import (
	"fmt"
	"math"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

// RunConfig configures the Run convenience loop.
type RunConfig struct {
	Title  string
	Width  int // logical window width; defaults to 960
	Height int // logical window height; defaults to 540

	// MinRenderInterval caps the compute frame rate. Zero uses the engine
	// default.
	MinRenderInterval time.Duration

	// MaxDeviceScale caps the device-pixel-ratio used for the render surface.
	// Zero disables high-DPI scaling (ratio 1).
	MaxDeviceScale float64

	// ShowOverlay draws fps, scene, and the latest status line on top of the
	// fractal.
	ShowOverlay bool
}

// game adapts a Director/Engine pair to ebiten.Game. Per display frame:
// directives drain and ambient state ticks (Director.Tick), the palette
// version syncs, then the engine paces and dispatches compute (Engine.Frame).
type game struct {
	d       *Director
	e       *Engine
	surface *ebiten.Image
	cfg     RunConfig

	last    time.Time
	sentLUT uint64
	status  string
	overlay bool
}

func (g *game) Update() error {
	now := time.Now()
	dt := now.Sub(g.last).Seconds()
	g.last = now
	// Clamp runaway deltas (window drag, suspend) so oscillators and scene
	// clocks never leap.
	if dt > 0.25 {
		dt = 0.25
	}

	g.d.Tick(dt)

	if lut, v := g.d.PaletteLUT(); v != g.sentLUT {
		if err := g.e.SetPalette(lut); err == nil {
			g.sentLUT = v
		}
	}

	g.e.Frame(dt)
	return nil
}

func (g *game) Draw(screen *ebiten.Image) {
	op := &ebiten.DrawImageOptions{}
	sb := g.surface.Bounds()
	db := screen.Bounds()
	op.GeoM.Scale(float64(db.Dx())/float64(sb.Dx()), float64(db.Dy())/float64(sb.Dy()))
	screen.DrawImage(g.surface, op)

	if g.overlay {
		t := g.e.Telemetry()
		ebitenutil.DebugPrint(screen, fmt.Sprintf("FPS: %.1f  scene: %s  palette: %s\n%s",
			t.FPS, g.d.SceneName(), g.d.PaletteName(), g.status))
	}
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return outsideWidth, outsideHeight
}

// Run opens a window and drives the director/engine pair until the window
// closes. The engine is destroyed on the way out.
func Run(d *Director, cfg RunConfig) error {
	if d == nil {
		return fmt.Errorf("fathom: Run requires a director")
	}
	if cfg.Width <= 0 {
		cfg.Width = 960
	}
	if cfg.Height <= 0 {
		cfg.Height = 540
	}

	scale := 1.0
	if cfg.MaxDeviceScale > 0 {
		scale = math.Min(ebiten.Monitor().DeviceScaleFactor(), cfg.MaxDeviceScale)
	}
	surface := ebiten.NewImage(int(float64(cfg.Width)*scale), int(float64(cfg.Height)*scale))

	g := &game{d: d, surface: surface, cfg: cfg, overlay: cfg.ShowOverlay, last: time.Now()}

	// The overlay shows the most recent status line; chain rather than
	// replace any sink the caller installed.
	prev := d.cfg.Status
	d.cfg.Status = func(s string) {
		g.status = s
		if prev != nil {
			prev(s)
		}
	}

	e, err := NewEngine(surface, Config{
		MinRenderInterval: cfg.MinRenderInterval,
		Compose:           d.Compose,
	})
	if err != nil {
		return err
	}
	g.e = e
	defer e.Destroy()

	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	return ebiten.RunGame(g)
}
