package fathom

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
)

func TestApplyDirectives(t *testing.T) {
	d := testDirector(t, 60)
	d.SetMutationsEnabled(false)

	d.apply(Directive{Op: "palette", Name: "sulfur"})
	if d.PaletteName() != "sulfur" {
		t.Errorf("palette = %q, want sulfur", d.PaletteName())
	}

	d.apply(Directive{Op: "fractal", Name: "julia"})
	if d.FractalType() != FractalJulia {
		t.Error("fractal directive ignored")
	}

	d.apply(Directive{Op: "seed", X: 0.25, Y: -0.5})
	if d.Seed() != (Vec2{X: 0.25, Y: -0.5}) {
		t.Errorf("seed = %v, want (0.25, -0.5)", d.Seed())
	}

	d.apply(Directive{Op: "fractal", Name: "mandelbrot"})
	d.apply(Directive{Op: "variant", Name: "cubic"})
	if d.Variant() != VariantCubic {
		t.Errorf("variant = %v, want cubic", d.Variant())
	}

	d.apply(Directive{Op: "preset", Scale: 0.4, X: -1.0, Y: 0.2})
	if d.amb.focus != (Vec2{X: -1.0, Y: 0.2}) {
		t.Errorf("focus = %v, want (-1, 0.2)", d.amb.focus)
	}

	before := d.View.Scale
	d.apply(Directive{Op: "zoom", Factor: 2})
	if !approxEqual(d.View.Scale, ClampScale(before*2), 1e-12) {
		t.Error("zoom directive ignored")
	}

	d.apply(Directive{Op: "unknown-op"}) // ignored, no panic
}

func TestEnqueueDropsWhenFull(t *testing.T) {
	d := testDirector(t, 61)
	for i := 0; i < 200; i++ {
		d.Enqueue(Directive{Op: "zoom", Factor: 1}) // must never block
	}
	if n := len(d.directives); n != cap(d.directives) {
		t.Errorf("queue length = %d, want full at %d", n, cap(d.directives))
	}
}

func TestDirectiveServerRoundTrip(t *testing.T) {
	d := testDirector(t, 62)
	d.SetMutationsEnabled(false)
	ds := NewDirectiveServer(d, "unused")

	srv := httptest.NewServer(http.HandlerFunc(ds.handle))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.CloseNow()

	msg := []byte(`{"op": "palette", "name": "verdigris"}`)
	if err := conn.Write(ctx, websocket.MessageText, msg); err != nil {
		t.Fatalf("write: %v", err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for d.PaletteName() != "verdigris" {
		if time.Now().After(deadline) {
			t.Fatal("directive never applied")
		}
		d.Tick(0.001)
		time.Sleep(5 * time.Millisecond)
	}
}
