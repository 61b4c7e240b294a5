package fathom

import (
	"testing"
	"time"
)

// stubComputer records the message stream and optionally echoes a fixed-color
// buffer for every render, or never resolves at all.
type stubComputer struct {
	ops      []string // "palette" / "render" in arrival order
	palettes [][]RGB
	requests []RenderRequest
	results  chan RenderResult
	closed   bool

	echo      bool
	echoColor RGB
}

func newStubComputer(echo bool) *stubComputer {
	return &stubComputer{results: make(chan RenderResult, 4), echo: echo, echoColor: RGB{10, 20, 30}}
}

func (s *stubComputer) SetPalette(lut []RGB) {
	s.ops = append(s.ops, "palette")
	s.palettes = append(s.palettes, lut)
}

func (s *stubComputer) Render(req RenderRequest) {
	s.ops = append(s.ops, "render")
	s.requests = append(s.requests, req)
	if !s.echo {
		return
	}
	pix := make([]byte, req.Width*req.Height*4)
	for i := 0; i < len(pix); i += 4 {
		pix[i], pix[i+1], pix[i+2], pix[i+3] = s.echoColor.R, s.echoColor.G, s.echoColor.B, 0xff
	}
	s.results <- RenderResult{Width: req.Width, Height: req.Height, Pix: pix}
}

func (s *stubComputer) Results() <-chan RenderResult { return s.results }
func (s *stubComputer) Close()                       { s.closed = true }

// testEngine builds a surfaceless engine around a stub computer. Compose
// tags each request with a sequence number in MaxIter.
func testEngine(t *testing.T, stub *stubComputer, interval time.Duration) (*Engine, *int, *[]RenderResult) {
	t.Helper()
	seq := 0
	var draws []RenderResult
	e, err := NewEngine(nil, Config{
		MinRenderInterval: interval,
		Compose: func(dt float64, w, h int) *RenderRequest {
			seq++
			return &RenderRequest{Width: w, Height: h, MaxIter: seq, View: View{Scale: 1}}
		},
		Draw:         func(res RenderResult) { draws = append(draws, res) },
		NewComputer:  func() Computer { return stub },
		RenderWidth:  8,
		RenderHeight: 6,
	})
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return e, &seq, &draws
}

func TestNewEngineValidation(t *testing.T) {
	if _, err := NewEngine(nil, Config{Compose: func(float64, int, int) *RenderRequest { return nil }}); err != ErrNoSurface {
		t.Errorf("no surface, no draw hook: err = %v, want ErrNoSurface", err)
	}
	if _, err := NewEngine(nil, Config{Draw: func(RenderResult) {}}); err != ErrNoCompose {
		t.Errorf("no compose: err = %v, want ErrNoCompose", err)
	}
}

func TestPendingSlotMostRecentWins(t *testing.T) {
	stub := newStubComputer(false) // never resolves
	e, seq, _ := testEngine(t, stub, 10*time.Millisecond)
	defer e.Destroy()

	for i := 0; i < 10; i++ {
		e.Frame(0.02) // every frame accepted
	}

	if len(stub.requests) != 1 {
		t.Fatalf("dispatched %d requests while busy, want 1", len(stub.requests))
	}
	if e.pending == nil {
		t.Fatal("no pending request retained")
	}
	if e.pending.MaxIter != *seq {
		t.Errorf("pending seq = %d, want most recent %d", e.pending.MaxIter, *seq)
	}
	if dropped := e.Telemetry().Dropped; dropped != uint64(*seq-2) {
		t.Errorf("dropped = %d, want %d", dropped, *seq-2)
	}
}

func TestPaletteSentBeforeRender(t *testing.T) {
	stub := newStubComputer(false)
	e, _, _ := testEngine(t, stub, 10*time.Millisecond)
	defer e.Destroy()

	if err := e.SetPalette(testLUT); err != nil {
		t.Fatalf("SetPalette: %v", err)
	}
	e.Frame(0.02)

	if len(stub.ops) != 2 || stub.ops[0] != "palette" || stub.ops[1] != "render" {
		t.Fatalf("ops = %v, want [palette render]", stub.ops)
	}

	// Unchanged palette is not re-sent on later frames.
	e.Frame(0.02)
	count := 0
	for _, op := range stub.ops {
		if op == "palette" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("palette sent %d times, want 1", count)
	}
}

func TestPaletteCoalescedWhileBusy(t *testing.T) {
	stub := newStubComputer(false) // never resolves
	e, _, _ := testEngine(t, stub, 10*time.Millisecond)
	defer e.Destroy()

	if err := e.SetPalette(testLUT); err != nil {
		t.Fatalf("SetPalette: %v", err)
	}
	e.Frame(0.02) // dispatches palette + render; worker stays busy

	// A burst of palette updates while the render is in flight must not send
	// anything: only the latest palette matters and it rides the next dispatch.
	var last []RGB
	for i := 0; i < 8; i++ {
		last = BuildLUT([]RGB{{uint8(i), 0, 0}, {255, 255, 255}}, 16)
		if err := e.SetPalette(last); err != nil {
			t.Fatalf("SetPalette #%d: %v", i, err)
		}
		e.Frame(0.02)
	}
	count := 0
	for _, op := range stub.ops {
		if op == "palette" {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("palette sent %d times while worker busy, want 1", count)
	}

	// Resolving the render redispatches the pending request with the newest
	// palette immediately ahead of it.
	stub.results <- RenderResult{Width: 8, Height: 6, Pix: nil}
	e.Frame(0.001)

	n := len(stub.ops)
	if n < 2 || stub.ops[n-2] != "palette" || stub.ops[n-1] != "render" {
		t.Fatalf("ops tail = %v, want [... palette render]", stub.ops)
	}
	if got := stub.palettes[len(stub.palettes)-1]; got[0] != last[0] {
		t.Errorf("worker got palette starting %v, want newest %v", got[0], last[0])
	}
}

func TestSetPaletteRejectsEmpty(t *testing.T) {
	stub := newStubComputer(false)
	e, _, _ := testEngine(t, stub, 10*time.Millisecond)
	defer e.Destroy()

	if err := e.SetPalette(nil); err == nil {
		t.Error("empty palette accepted")
	}
}

func TestFramePacing(t *testing.T) {
	stub := newStubComputer(false)
	e, seq, _ := testEngine(t, stub, 100*time.Millisecond)
	defer e.Destroy()

	// Five 30ms frames: only at 120ms accumulated does one get accepted.
	for i := 0; i < 5; i++ {
		e.Frame(0.03)
	}
	if *seq != 1 {
		t.Errorf("composed %d requests over 150ms at a 100ms cap, want 1", *seq)
	}
}

func TestEchoEndToEnd(t *testing.T) {
	stub := newStubComputer(true)
	e, _, draws := testEngine(t, stub, 10*time.Millisecond)
	defer e.Destroy()

	e.Frame(0.02)  // dispatches; stub echoes synchronously
	e.Frame(0.001) // below cap: collects the result, no new compose

	if len(*draws) != 1 {
		t.Fatalf("draw calls = %d, want 1", len(*draws))
	}
	res := (*draws)[0]
	if res.Width != 8 || res.Height != 6 {
		t.Errorf("drawn dims %dx%d, want 8x6", res.Width, res.Height)
	}
	for i := 0; i < len(res.Pix); i += 4 {
		if res.Pix[i] != 10 || res.Pix[i+1] != 20 || res.Pix[i+2] != 30 {
			t.Fatalf("pixel %d = %v, want echo color", i/4, res.Pix[i:i+4])
		}
	}
}

func TestPendingRedispatchAfterResult(t *testing.T) {
	stub := newStubComputer(false)
	e, _, draws := testEngine(t, stub, 10*time.Millisecond)
	defer e.Destroy()

	e.Frame(0.02) // dispatch #1
	e.Frame(0.02) // pending #2
	if len(stub.requests) != 1 {
		t.Fatalf("requests = %d, want 1", len(stub.requests))
	}

	// Resolve #1 by hand; the pending request must dispatch immediately.
	stub.results <- RenderResult{Width: 8, Height: 6, Pix: make([]byte, 8*6*4)}
	e.Frame(0.001)

	if len(stub.requests) != 2 {
		t.Errorf("requests after result = %d, want 2 (pending redispatched)", len(stub.requests))
	}
	if len(*draws) != 1 {
		t.Errorf("draws = %d, want 1", len(*draws))
	}
	if e.pending != nil {
		t.Error("pending slot not cleared after redispatch")
	}
}

func TestNullResultSkipsDraw(t *testing.T) {
	stub := newStubComputer(false)
	e, _, draws := testEngine(t, stub, 10*time.Millisecond)
	defer e.Destroy()

	e.Frame(0.02)
	stub.results <- RenderResult{Width: 8, Height: 6, Pix: nil}
	e.Frame(0.001)

	if len(*draws) != 0 {
		t.Errorf("null buffer drawn %d times, want 0", len(*draws))
	}
	if e.busy {
		t.Error("busy not cleared after null result")
	}
}

func TestTelemetryFPS(t *testing.T) {
	stub := newStubComputer(false)
	var last TelemetryStats
	e, err := NewEngine(nil, Config{
		MinRenderInterval: 10 * time.Millisecond,
		Compose:           func(float64, int, int) *RenderRequest { return nil },
		Draw:              func(RenderResult) {},
		Telemetry:         func(s TelemetryStats) { last = s },
		NewComputer:       func() Computer { return stub },
	})
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	defer e.Destroy()

	for i := 0; i < 20; i++ {
		e.Frame(0.1) // steady 10 fps
	}
	if !approxEqual(last.FPS, 10, 0.5) {
		t.Errorf("FPS = %.2f, want ~10", last.FPS)
	}
	if last.Frames != 20 {
		t.Errorf("Frames = %d, want 20", last.Frames)
	}
}

func TestDestroyIsIdempotentAndFinal(t *testing.T) {
	stub := newStubComputer(false)
	e, seq, draws := testEngine(t, stub, 10*time.Millisecond)

	e.Frame(0.02) // one request in flight
	e.Destroy()
	if !stub.closed {
		t.Error("Destroy did not close the computer")
	}
	e.Destroy() // double-destroy is a no-op

	// A result arriving after destroy is abandoned: no draw, no dispatch.
	stub.results <- RenderResult{Width: 8, Height: 6, Pix: make([]byte, 8*6*4)}
	before := *seq
	for i := 0; i < 5; i++ {
		e.Frame(0.05)
	}
	if *seq != before {
		t.Error("Compose called after Destroy")
	}
	if len(*draws) != 0 {
		t.Error("draw fired after Destroy")
	}
}
