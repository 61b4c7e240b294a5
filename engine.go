package fathom

import (
	"errors"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
)

// ComposeFunc produces the next frame's render request from the director (or
// any other payload source). dt is the wall-clock delta in seconds since the
// previous accepted frame. Returning nil skips the frame.
type ComposeFunc func(dt float64, width, height int) *RenderRequest

// TelemetryStats is reported through Config.Telemetry on every accepted frame.
type TelemetryStats struct {
	FPS      float64 // exponential moving average of accepted-frame rate
	Frames   uint64  // total accepted frames
	Dropped  uint64  // composed requests overwritten in the pending slot
	InFlight bool
}

// Config configures a render engine.
type Config struct {
	// MinRenderInterval is a hard frame-rate cap: frames arriving sooner than
	// this after the last accepted frame are rejected. Defaults to ~30 fps.
	MinRenderInterval time.Duration

	// Compose is called once per accepted frame to obtain the render request.
	// Required.
	Compose ComposeFunc

	// Telemetry, if set, receives stats every accepted frame.
	Telemetry func(TelemetryStats)

	// Draw, if set, replaces the default surface draw. Engines constructed
	// with a nil surface must set Draw.
	Draw func(RenderResult)

	// NewComputer, if set, replaces the default worker factory.
	NewComputer func() Computer

	// RenderWidth and RenderHeight fix the composed request size for engines
	// constructed without a surface. Ignored when a surface is present (its
	// bounds win).
	RenderWidth, RenderHeight int
}

// defaultMinRenderInterval caps uncapped engines at roughly 30 fps; fractal
// frames are expensive and display refresh outpaces compute anyway.
const defaultMinRenderInterval = 33 * time.Millisecond

// fpsSmoothing is the EMA weight given to the newest inter-frame spacing.
const fpsSmoothing = 0.1

// Engine owns the drawable surface, paces frames, and speaks the single-slot
// backpressure protocol with the compute worker: at most one request in
// flight, at most one pending, newest pending always wins.
//
// All Engine state is mutated from Frame and the public setters on the host's
// frame callback; the worker goroutine is reached only through the Computer
// channel boundary.
type Engine struct {
	surface *ebiten.Image
	cfg     Config
	comp    Computer

	lut        []RGB
	lutVersion uint64
	sentLUT    uint64

	busy    bool
	pending *RenderRequest

	sinceAccept float64 // seconds since last accepted frame
	stats       TelemetryStats

	destroyed bool
}

// ErrNoSurface is returned by NewEngine when neither a surface nor a Draw
// hook is available to receive pixels.
var ErrNoSurface = errors.New("fathom: engine needs a surface or a Draw hook")

// ErrNoCompose is returned by NewEngine when no Compose callback is given.
var ErrNoCompose = errors.New("fathom: engine needs a Compose callback")

// NewEngine constructs an engine drawing into surface. Misconfiguration is
// fatal here; runtime failures after construction are local and non-fatal.
func NewEngine(surface *ebiten.Image, cfg Config) (*Engine, error) {
	if surface == nil && cfg.Draw == nil {
		return nil, ErrNoSurface
	}
	if cfg.Compose == nil {
		return nil, ErrNoCompose
	}
	if cfg.MinRenderInterval <= 0 {
		cfg.MinRenderInterval = defaultMinRenderInterval
	}
	newComp := cfg.NewComputer
	if newComp == nil {
		newComp = NewWorker
	}
	return &Engine{
		surface: surface,
		cfg:     cfg,
		comp:    newComp(),
	}, nil
}

// SetPalette replaces the engine's palette LUT. The new palette is forwarded
// to the worker strictly before the next render request. Rejects nil/empty
// input synchronously.
func (e *Engine) SetPalette(lut []RGB) error {
	if len(lut) == 0 {
		return errors.New("fathom: SetPalette: empty palette")
	}
	if e.destroyed {
		return nil
	}
	e.lut = lut
	e.lutVersion++
	return nil
}

// Settings carries partial engine reconfiguration; nil fields are unchanged.
type Settings struct {
	MinRenderInterval *time.Duration
	Compose           ComposeFunc
	Telemetry         func(TelemetryStats)
	Draw              func(RenderResult)
}

// UpdateSettings swaps the stored callbacks/intervals for any non-nil fields.
func (e *Engine) UpdateSettings(s Settings) {
	if s.MinRenderInterval != nil && *s.MinRenderInterval > 0 {
		e.cfg.MinRenderInterval = *s.MinRenderInterval
	}
	if s.Compose != nil {
		e.cfg.Compose = s.Compose
	}
	if s.Telemetry != nil {
		e.cfg.Telemetry = s.Telemetry
	}
	if s.Draw != nil {
		e.cfg.Draw = s.Draw
	}
}

// Telemetry returns the latest stats snapshot.
func (e *Engine) Telemetry() TelemetryStats {
	return e.stats
}

// Frame advances the engine by dt seconds of wall-clock time. Call once per
// host display frame. Results are collected every call; a new render request
// is composed only on accepted frames (dt accumulation ≥ MinRenderInterval).
func (e *Engine) Frame(dt float64) {
	if e.destroyed {
		return
	}

	e.collectResults()

	e.sinceAccept += dt
	if e.sinceAccept < e.cfg.MinRenderInterval.Seconds() {
		return
	}
	spacing := e.sinceAccept
	e.sinceAccept = 0

	// fps EMA over accepted-frame spacing.
	inst := 1 / spacing
	if e.stats.FPS == 0 {
		e.stats.FPS = inst
	} else {
		e.stats.FPS += (inst - e.stats.FPS) * fpsSmoothing
	}
	e.stats.Frames++
	e.stats.InFlight = e.busy
	if e.cfg.Telemetry != nil {
		e.cfg.Telemetry(e.stats)
	}

	w, h := e.renderSize()
	req := e.cfg.Compose(spacing, w, h)
	if req == nil {
		return
	}

	if e.busy {
		if e.pending != nil {
			e.stats.Dropped++ // previously pending request is discarded uncomputed
		}
		e.pending = req
		return
	}
	e.dispatch(req)
}

// collectResults drains completed renders, draws them, and redispatches any
// pending request immediately.
func (e *Engine) collectResults() {
	for {
		select {
		case res := <-e.comp.Results():
			e.busy = false
			e.stats.InFlight = false
			if res.Pix != nil {
				e.draw(res)
			}
			if e.pending != nil {
				req := e.pending
				e.pending = nil
				e.dispatch(req)
			}
		default:
			return
		}
	}
}

// dispatch sends a render request, preceded by any palette replacement that
// accumulated since the last send. Coalescing the palette to dispatch time
// keeps worker traffic bounded: at most one set-palette per in-flight render,
// and the palette always arrives strictly before the render it applies to.
func (e *Engine) dispatch(req *RenderRequest) {
	if e.lutVersion != e.sentLUT && len(e.lut) > 0 {
		e.comp.SetPalette(e.lut)
		e.sentLUT = e.lutVersion
	}
	e.busy = true
	e.stats.InFlight = true
	e.comp.Render(*req)
}

func (e *Engine) draw(res RenderResult) {
	if e.cfg.Draw != nil {
		e.cfg.Draw(res)
		return
	}
	b := e.surface.Bounds()
	if res.Width != b.Dx() || res.Height != b.Dy() {
		return // stale size (surface was resized mid-flight); skip the draw
	}
	e.surface.WritePixels(res.Pix)
}

func (e *Engine) renderSize() (int, int) {
	if e.surface != nil {
		b := e.surface.Bounds()
		return b.Dx(), b.Dy()
	}
	return e.cfg.RenderWidth, e.cfg.RenderHeight
}

// Destroy stops the frame loop, terminates the worker, abandons any in-flight
// computation without awaiting its result, and drops references. Idempotent;
// no callback fires after Destroy returns.
func (e *Engine) Destroy() {
	if e.destroyed {
		return
	}
	e.destroyed = true
	e.comp.Close()
	e.comp = nil
	e.surface = nil
	e.pending = nil
	e.cfg.Compose = nil
	e.cfg.Draw = nil
	e.cfg.Telemetry = nil
}
