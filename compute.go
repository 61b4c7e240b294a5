package fathom

import "math"

// RenderRequest is one unit of compute work. Immutable once constructed.
type RenderRequest struct {
	Width, Height int
	Type          FractalType
	Variant       Variant
	JuliaSeed     Vec2
	MaxIter       int
	View          View
	AspectRatio   float64
}

// RenderResult pairs an RGBA pixel buffer with the dimensions it was computed
// at. Pix is 4 bytes per pixel, row-major, top-to-bottom. Pix is nil when the
// request had zero size or no palette was set (the engine skips the draw).
// The worker is FIFO single-consumer, so results pair 1:1 with requests in
// order.
type RenderResult struct {
	Width, Height int
	Pix           []byte
}

// Computer is the compute-channel boundary. Exactly one render may be in
// flight at a time; SetPalette and Render enqueue messages processed in order
// by a single worker. Results returns the channel render results arrive on.
// Implementations transfer pixel buffers by ownership, never sharing them.
//
// The default implementation is NewWorker. Tests and alternative hosts may
// substitute their own (Engine Config.NewComputer).
type Computer interface {
	SetPalette(lut []RGB)
	Render(req RenderRequest)
	Results() <-chan RenderResult
	Close()
}

// computeMsg is the worker's wire format: either a palette replacement or a
// render request.
type computeMsg struct {
	lut    []RGB // non-nil: set-palette
	render bool
	req    RenderRequest
}

// worker runs escape-time computation on its own goroutine. The only state
// retained between requests is the palette buffer.
type worker struct {
	in  chan computeMsg
	out chan RenderResult
}

// NewWorker starts the default compute worker goroutine.
func NewWorker() Computer {
	w := &worker{
		// in holds at most one palette message plus one render; 4 leaves
		// headroom so the engine never blocks on dispatch.
		in:  make(chan computeMsg, 4),
		out: make(chan RenderResult, 1),
	}
	go w.loop()
	return w
}

func (w *worker) SetPalette(lut []RGB) {
	w.in <- computeMsg{lut: lut}
}

func (w *worker) Render(req RenderRequest) {
	w.in <- computeMsg{render: true, req: req}
}

func (w *worker) Results() <-chan RenderResult {
	return w.out
}

// Close terminates the worker. Any in-flight computation finishes and is
// discarded by the (now absent) consumer; the goroutine then exits.
func (w *worker) Close() {
	close(w.in)
}

func (w *worker) loop() {
	var lut []RGB
	for msg := range w.in {
		if msg.lut != nil {
			lut = msg.lut
			continue
		}
		if !msg.render {
			continue // unrecognized message kinds are ignored
		}
		res := RenderResult{Width: msg.req.Width, Height: msg.req.Height}
		res.Pix = RenderPixels(msg.req, lut)
		w.out <- res
	}
}

// RenderPixels computes the RGBA buffer for one request. Returns nil when the
// request has zero size or the palette is empty. Exported so stub computers
// and benchmarks can share the reference kernel.
func RenderPixels(req RenderRequest, lut []RGB) []byte {
	if req.Width <= 0 || req.Height <= 0 || len(lut) == 0 {
		return nil
	}

	w, h := req.Width, req.Height
	aspect := req.AspectRatio
	if aspect <= 0 {
		aspect = float64(w) / float64(h)
	}
	planeW := req.View.Scale
	planeH := planeW / aspect
	x0 := req.View.CenterX - planeW/2
	yTop := req.View.CenterY + planeH/2 // plane Y grows upward, pixels downward

	pix := make([]byte, w*h*4)
	for py := 0; py < h; py++ {
		cy := yTop - (float64(py)+0.5)/float64(h)*planeH
		row := py * w * 4
		for px := 0; px < w; px++ {
			cx := x0 + (float64(px)+0.5)/float64(w)*planeW
			idx := escapeIndex(req, cx, cy)
			c := sampleLUT(lut, idx)
			o := row + px*4
			pix[o] = c.R
			pix[o+1] = c.G
			pix[o+2] = c.B
			pix[o+3] = 0xff
		}
	}
	return pix
}

// escapeIndex iterates the selected family member at plane point (cx, cy) and
// returns a continuous palette index. Escaped points get smooth (log-log
// renormalized) coloring; interior points use the raw iteration count.
func escapeIndex(req RenderRequest, cx, cy float64) float64 {
	var zx, zy, kx, ky float64
	if req.Type == FractalJulia {
		zx, zy = cx, cy
		kx, ky = req.JuliaSeed.X, req.JuliaSeed.Y
	} else {
		kx, ky = cx, cy
	}

	variant := req.Variant
	if req.Type == FractalJulia {
		variant = VariantClassic
	}

	for n := 0; n < req.MaxIter; n++ {
		r2 := zx*zx + zy*zy
		if r2 > 4 {
			return smoothCount(n, r2)
		}
		switch variant {
		case VariantBurningShip:
			ax, ay := math.Abs(zx), math.Abs(zy)
			zx, zy = ax*ax-ay*ay+kx, 2*ax*ay+ky
		case VariantCubic:
			// z³ = (x³ − 3xy²) + i(3x²y − y³)
			zx, zy = zx*zx*zx-3*zx*zy*zy+kx, 3*zx*zx*zy-zy*zy*zy+ky
		case VariantPerpendicular:
			zx, zy = zx*zx-zy*zy+kx, math.Abs(2*zx*zy)+ky
		default:
			zx, zy = zx*zx-zy*zy+kx, 2*zx*zy+ky
		}
	}
	return float64(req.MaxIter)
}

// smoothCount renormalizes a discrete escape count into a continuous value
// via the standard log-log formula, removing iteration banding.
func smoothCount(n int, r2 float64) float64 {
	// log|z| = log(r2)/2; nu = n + 1 − log2(log2|z|)
	logZ := math.Log(r2) / 2
	nu := float64(n) + 1 - math.Log2(logZ/math.Ln2)
	if nu < 0 {
		nu = 0
	}
	return nu
}

// sampleLUT maps a continuous index into the cyclic LUT, blending linearly
// between the two bounding entries.
func sampleLUT(lut []RGB, idx float64) RGB {
	n := float64(len(lut))
	idx = math.Mod(idx, n)
	if idx < 0 {
		idx += n
	}
	i := int(idx)
	frac := idx - float64(i)
	a := lut[i]
	b := lut[(i+1)%len(lut)]
	return RGB{
		R: uint8(lerp(float64(a.R), float64(b.R), frac)),
		G: uint8(lerp(float64(a.G), float64(b.G), frac)),
		B: uint8(lerp(float64(a.B), float64(b.B), frac)),
	}
}
