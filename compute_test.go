package fathom

import (
	"testing"
	"time"
)

var testLUT = BuildLUT([]RGB{{0, 0, 0}, {255, 255, 255}}, 64)

func testRequest(w, h int) RenderRequest {
	return RenderRequest{
		Width: w, Height: h,
		Type:    FractalMandelbrot,
		MaxIter: 200,
		View:    View{CenterX: -0.6, CenterY: 0, Scale: 3.0},
	}
}

func TestRenderPixelsBufferShape(t *testing.T) {
	req := testRequest(16, 9)
	pix := RenderPixels(req, testLUT)
	if len(pix) != 16*9*4 {
		t.Fatalf("len(pix) = %d, want %d", len(pix), 16*9*4)
	}
	for i := 3; i < len(pix); i += 4 {
		if pix[i] != 0xff {
			t.Fatalf("pix[%d] alpha = %d, want 255", i, pix[i])
		}
	}
}

func TestRenderPixelsEdgeCases(t *testing.T) {
	if pix := RenderPixels(testRequest(0, 10), testLUT); pix != nil {
		t.Error("zero width: got buffer, want nil")
	}
	if pix := RenderPixels(testRequest(10, 0), testLUT); pix != nil {
		t.Error("zero height: got buffer, want nil")
	}
	if pix := RenderPixels(testRequest(10, 10), nil); pix != nil {
		t.Error("empty palette: got buffer, want nil")
	}
}

func TestEscapeInteriorVsExterior(t *testing.T) {
	req := testRequest(1, 1)

	// Origin is inside the Mandelbrot set: never escapes.
	if got := escapeIndex(req, 0, 0); got != float64(req.MaxIter) {
		t.Errorf("interior index = %g, want raw count %d", got, req.MaxIter)
	}

	// A point far outside escapes immediately with a small smooth count.
	got := escapeIndex(req, 2.5, 2.5)
	if got >= 3 {
		t.Errorf("exterior index = %g, want < 3", got)
	}
}

func TestEscapeJuliaUsesSeed(t *testing.T) {
	req := testRequest(1, 1)
	req.Type = FractalJulia
	req.JuliaSeed = Vec2{X: 10, Y: 10} // absurd seed: everything escapes fast

	if got := escapeIndex(req, 0, 0); got >= 3 {
		t.Errorf("julia with diverging seed: index = %g, want < 3", got)
	}
}

func TestEscapeVariantsDiffer(t *testing.T) {
	// A probe point where the variants disagree on escape time.
	req := testRequest(1, 1)
	classic := escapeIndex(req, -1.78, 0.01)

	req.Variant = VariantBurningShip
	ship := escapeIndex(req, -1.78, 0.01)

	req.Variant = VariantCubic
	cubic := escapeIndex(req, -1.78, 0.01)

	if classic == ship && ship == cubic {
		t.Errorf("variants all returned %g for the same point", classic)
	}
}

func TestSmoothCountContinuity(t *testing.T) {
	// Smooth counts near the same escape iteration stay within one unit of
	// the raw count: renormalization removes banding, not ordering.
	for _, r2 := range []float64{4.01, 8, 16, 100} {
		nu := smoothCount(10, r2)
		if nu < 8 || nu > 12 {
			t.Errorf("smoothCount(10, %g) = %g, want near 10", r2, nu)
		}
	}
}

func TestSampleLUTWraps(t *testing.T) {
	lut := []RGB{{0, 0, 0}, {100, 100, 100}, {200, 200, 200}}
	// Index beyond the cyclic length wraps.
	a := sampleLUT(lut, 1)
	b := sampleLUT(lut, 4) // 4 mod 3 == 1
	if a != b {
		t.Errorf("sampleLUT wrap: %v != %v", a, b)
	}
	// Fractional index blends between the bounding entries.
	m := sampleLUT(lut, 0.5)
	if m.R != 50 {
		t.Errorf("sampleLUT(0.5).R = %d, want 50", m.R)
	}
}

func TestWorkerPaletteThenRender(t *testing.T) {
	w := NewWorker()
	defer w.Close()

	w.SetPalette(testLUT)
	w.Render(testRequest(8, 8))

	select {
	case res := <-w.Results():
		if res.Width != 8 || res.Height != 8 {
			t.Errorf("result dims %dx%d, want 8x8", res.Width, res.Height)
		}
		if len(res.Pix) != 8*8*4 {
			t.Errorf("len(Pix) = %d, want %d", len(res.Pix), 8*8*4)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("worker did not respond")
	}
}

func TestWorkerNoPaletteYieldsNullBuffer(t *testing.T) {
	w := NewWorker()
	defer w.Close()

	w.Render(testRequest(8, 8))
	select {
	case res := <-w.Results():
		if res.Pix != nil {
			t.Error("render before set-palette: got buffer, want nil")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("worker did not respond")
	}
}

func TestWorkerFIFOOrdering(t *testing.T) {
	w := NewWorker()
	defer w.Close()
	w.SetPalette(testLUT)

	first := testRequest(4, 4)
	second := testRequest(6, 6)
	w.Render(first)
	w.Render(second)

	for _, want := range []int{4, 6} {
		select {
		case res := <-w.Results():
			if res.Width != want {
				t.Fatalf("result width %d, want %d (FIFO)", res.Width, want)
			}
		case <-time.After(5 * time.Second):
			t.Fatal("worker did not respond")
		}
	}
}
