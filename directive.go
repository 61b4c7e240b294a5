package fathom

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/coder/websocket"
)

// Directive is one externally issued command. Directives invoke the same
// public handlers direct user interaction does; unknown ops are ignored.
type Directive struct {
	Op      string  `json:"op"` // palette | seed | preset | variant | fractal | zoom | mutations
	Name    string  `json:"name,omitempty"`
	X       float64 `json:"x,omitempty"`
	Y       float64 `json:"y,omitempty"`
	Scale   float64 `json:"scale,omitempty"`
	Factor  float64 `json:"factor,omitempty"`
	Enabled bool    `json:"enabled,omitempty"`
}

// Enqueue queues a directive for the next Tick. Safe to call from any
// goroutine. Directives are dropped, not blocked on, when the queue is full.
func (d *Director) Enqueue(dir Directive) {
	select {
	case d.directives <- dir:
	default:
	}
}

// drainDirectives applies queued directives on the director's own callback,
// keeping all state mutation single-threaded.
func (d *Director) drainDirectives() {
	for {
		select {
		case dir := <-d.directives:
			d.apply(dir)
		default:
			return
		}
	}
}

func (d *Director) apply(dir Directive) {
	switch dir.Op {
	case "palette":
		if err := d.SelectPalette(dir.Name); err != nil {
			d.statusf("directive: %v", err)
		}
	case "seed":
		d.SetJuliaSeed(dir.X, dir.Y)
	case "preset":
		d.SelectPreset(FocusPreset{Scale: dir.Scale, X: dir.X, Y: dir.Y})
	case "variant":
		d.SetVariant(ParseVariant(dir.Name))
	case "fractal":
		if dir.Name == "julia" {
			d.SetFractalType(FractalJulia)
		} else {
			d.SetFractalType(FractalMandelbrot)
		}
	case "zoom":
		d.AdjustZoom(dir.Factor)
	case "mutations":
		d.SetMutationsEnabled(dir.Enabled)
	}
}

// DirectiveServer accepts JSON directives over websocket and feeds them into
// a Director's queue. One message per directive; malformed messages close the
// offending connection.
type DirectiveServer struct {
	d   *Director
	srv *http.Server
}

// NewDirectiveServer creates a server listening on addr (e.g. ":7323").
// Call ListenAndServe to start it.
func NewDirectiveServer(d *Director, addr string) *DirectiveServer {
	s := &DirectiveServer{d: d}
	mux := http.NewServeMux()
	mux.HandleFunc("/directives", s.handle)
	s.srv = &http.Server{Addr: addr, Handler: mux}
	return s
}

// ListenAndServe blocks serving directive connections until Close.
func (s *DirectiveServer) ListenAndServe() error {
	err := s.srv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Close stops the server and drops all connections.
func (s *DirectiveServer) Close() error {
	return s.srv.Close()
}

func (s *DirectiveServer) handle(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		log.Printf("directive accept: %v", err)
		return
	}
	defer conn.CloseNow()

	ctx := r.Context()
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			return
		}
		var dir Directive
		if err := json.Unmarshal(data, &dir); err != nil {
			conn.Close(websocket.StatusInvalidFramePayloadData, "bad directive")
			return
		}
		s.d.Enqueue(dir)
	}
}
