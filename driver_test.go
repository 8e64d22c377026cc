package mandel

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type recordingDisplay struct {
	mu       sync.Mutex
	progress []int
	presents chan Stats
}

func newRecordingDisplay() *recordingDisplay {
	return &recordingDisplay{presents: make(chan Stats, 16)}
}

func (d *recordingDisplay) Progress(pct int) {
	d.mu.Lock()
	d.progress = append(d.progress, pct)
	d.mu.Unlock()
}

func (d *recordingDisplay) Present(buf *PixelBuffer, stats Stats) {
	d.presents <- stats
}

func (d *recordingDisplay) wait(t *testing.T) Stats {
	t.Helper()
	select {
	case s := <-d.presents:
		return s
	case <-time.After(10 * time.Second):
		t.Fatal("timed out waiting for Present")
	}
	return Stats{}
}

type recordingSink struct {
	mu    sync.Mutex
	ids   []string
	sizes [][2]int
	saved chan struct{}
	err   error
}

func newRecordingSink() *recordingSink {
	return &recordingSink{saved: make(chan struct{}, 16)}
}

func (s *recordingSink) Save(_ context.Context, buf *PixelBuffer, id string) error {
	s.mu.Lock()
	s.ids = append(s.ids, id)
	s.sizes = append(s.sizes, [2]int{buf.Width(), buf.Height()})
	s.mu.Unlock()
	s.saved <- struct{}{}
	return s.err
}

func (s *recordingSink) wait(t *testing.T) {
	t.Helper()
	select {
	case <-s.saved:
	case <-time.After(10 * time.Second):
		t.Fatal("timed out waiting for Save")
	}
}

func startDriver(t *testing.T, d *Driver) <-chan error {
	t.Helper()
	done := make(chan error, 1)
	go func() { done <- d.Run(context.Background()) }()
	t.Cleanup(func() {
		d.Close()
		select {
		case <-done:
		case <-time.After(10 * time.Second):
			t.Error("Run did not return after Close")
		}
	})
	return done
}

// =============================================================================
// Deltas
// =============================================================================

func TestDeltas(t *testing.T) {
	base := driverState{req: DefaultRequest(), depth: 1, width: 300, height: 300}

	tests := []struct {
		name    string
		delta   Delta
		changed bool
		check   func(t *testing.T, s driverState)
	}{
		{"pan", Pan{DX: 0.1}, true, func(t *testing.T, s driverState) {
			if re, _ := s.req.Center(); !approx(re, -0.2) {
				t.Errorf("center re = %v, want -0.2", re)
			}
		}},
		{"pan zero", Pan{}, false, nil},
		{"zoom in", ZoomAt{X: 150, Y: 150, Factor: 2}, true, func(t *testing.T, s driverState) {
			if w, _ := s.req.Span(); !approx(w, 1.5) {
				t.Errorf("span = %v, want 1.5", w)
			}
			if s.depth != 2 {
				t.Errorf("depth = %v, want 2", s.depth)
			}
		}},
		{"zoom out to floor", ZoomAt{X: 150, Y: 150, Factor: 0.5}, true, func(t *testing.T, s driverState) {
			if s.depth != 0.5 {
				t.Errorf("depth = %v, want 0.5", s.depth)
			}
		}},
		{"zoom factor one", ZoomAt{Factor: 1}, false, nil},
		{"iterations up", ScaleIterations{Up: true}, true, func(t *testing.T, s driverState) {
			if s.req.MaxIter != 512 {
				t.Errorf("MaxIter = %d, want 512", s.req.MaxIter)
			}
		}},
		{"iterations down", ScaleIterations{}, true, func(t *testing.T, s driverState) {
			if s.req.MaxIter != 128 {
				t.Errorf("MaxIter = %d, want 128", s.req.MaxIter)
			}
		}},
		{"aa up", ScaleAA{Up: true}, true, func(t *testing.T, s driverState) {
			if s.req.AA != 2 {
				t.Errorf("AA = %d, want 2", s.req.AA)
			}
		}},
		{"aa down at one", ScaleAA{}, false, nil},
		{"set mode", SetMode{Mode: ColorGray}, true, func(t *testing.T, s driverState) {
			if s.req.Mode != ColorGray {
				t.Errorf("Mode = %v, want gray", s.req.Mode)
			}
		}},
		{"set same mode", SetMode{Mode: ColorTrig}, false, nil},
		{"set invalid mode", SetMode{Mode: ColorMode(200)}, false, nil},
		{"cycle", CycleMode{}, true, func(t *testing.T, s driverState) {
			if s.req.Mode != ColorSmooth {
				t.Errorf("Mode = %v, want smooth", s.req.Mode)
			}
		}},
		{"high res", HighRes{}, true, func(t *testing.T, s driverState) {
			if !s.highRes || s.dirty {
				t.Errorf("highRes = %v dirty = %v, want true false", s.highRes, s.dirty)
			}
		}},
		{"save", Save{}, true, func(t *testing.T, s driverState) {
			if !s.save || s.dirty {
				t.Errorf("save = %v dirty = %v, want true false", s.save, s.dirty)
			}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := base
			if got := tt.delta.apply(&s); got != tt.changed {
				t.Fatalf("apply() = %v, want %v", got, tt.changed)
			}
			if !tt.changed && s != base {
				t.Errorf("refused delta modified state: %+v", s)
			}
			if tt.check != nil {
				tt.check(t, s)
			}
		})
	}
}

func TestZoomOutRefusedBelowFloor(t *testing.T) {
	s := driverState{req: DefaultRequest(), depth: 1, width: 100, height: 100}
	if !(ZoomAt{X: 50, Y: 50, Factor: 0.5}).apply(&s) {
		t.Fatal("first zoom out refused")
	}
	before := s
	if (ZoomAt{X: 50, Y: 50, Factor: 0.5}).apply(&s) {
		t.Error("zoom out below 0.5 accepted")
	}
	if s != before {
		t.Error("refused zoom changed state")
	}
}

// =============================================================================
// Run
// =============================================================================

func TestNewDriverInvalid(t *testing.T) {
	r := NewRenderer(WithWorkers(1))
	defer r.Close()
	if _, err := NewDriver(r, DefaultRequest(), 0, 4); !errors.Is(err, ErrInvalidSize) {
		t.Errorf("NewDriver(0x4) = %v, want ErrInvalidSize", err)
	}
	req := DefaultRequest()
	req.MaxIm = req.MinIm
	if _, err := NewDriver(r, req, 4, 4); !errors.Is(err, ErrInvalidBounds) {
		t.Errorf("NewDriver(empty bounds) = %v, want ErrInvalidBounds", err)
	}
}

func TestDriverRendersInitialFrame(t *testing.T) {
	r := NewRenderer(WithWorkers(2))
	defer r.Close()

	disp := newRecordingDisplay()
	d, err := NewDriver(r, DefaultRequest(), 24, 16, WithDisplay(disp))
	if err != nil {
		t.Fatal(err)
	}
	startDriver(t, d)

	stats := disp.wait(t)
	if stats.Width != 24 || stats.Height != 16 || stats.Rows != 16 {
		t.Errorf("stats = %+v", stats)
	}
	disp.mu.Lock()
	last := disp.progress[len(disp.progress)-1]
	disp.mu.Unlock()
	if last != 100 {
		t.Errorf("last progress = %d, want 100", last)
	}
}

func TestDriverApplyRerenders(t *testing.T) {
	r := NewRenderer(WithWorkers(2))
	defer r.Close()

	disp := newRecordingDisplay()
	d, err := NewDriver(r, DefaultRequest(), 16, 16, WithDisplay(disp))
	if err != nil {
		t.Fatal(err)
	}
	startDriver(t, d)
	first := disp.wait(t)

	if !d.Apply(ZoomAt{X: 8, Y: 8, Factor: 2}) {
		t.Fatal("Apply(zoom) = false")
	}
	second := disp.wait(t)
	if second.Generation <= first.Generation {
		t.Errorf("generation %d after edit, want > %d", second.Generation, first.Generation)
	}
	if d.Depth() != 2 {
		t.Errorf("Depth() = %v, want 2", d.Depth())
	}
}

func TestDriverCoalescesSignals(t *testing.T) {
	d := &Driver{permit: make(chan struct{}, 1)}
	for range 10 {
		d.Signal()
	}
	if n := len(d.permit); n != 1 {
		t.Errorf("permits = %d, want 1", n)
	}
}

func TestDriverHighResAndSave(t *testing.T) {
	r := NewRenderer(WithWorkers(2))
	defer r.Close()

	disp := newRecordingDisplay()
	sink := newRecordingSink()
	d, err := NewDriver(r, DefaultRequest(), 8, 6,
		WithDisplay(disp), WithSink(sink), WithHighResFactor(2))
	if err != nil {
		t.Fatal(err)
	}
	startDriver(t, d)
	disp.wait(t)

	d.Apply(HighRes{})
	sink.wait(t)
	d.Apply(Save{})
	sink.wait(t)

	sink.mu.Lock()
	defer sink.mu.Unlock()
	want := DefaultRequest().Identifier()
	for i, id := range sink.ids {
		if id != want {
			t.Errorf("save %d id = %q, want %q", i, id, want)
		}
	}
	if sink.sizes[0] != [2]int{16, 12} {
		t.Errorf("high-res size = %v, want [16 12]", sink.sizes[0])
	}
	if sink.sizes[1] != [2]int{8, 6} {
		t.Errorf("saved size = %v, want [8 6]", sink.sizes[1])
	}
}

func TestDriverSinkErrorEndsRun(t *testing.T) {
	r := NewRenderer(WithWorkers(1))
	defer r.Close()

	disp := newRecordingDisplay()
	sink := newRecordingSink()
	sink.err = errors.New("disk full")
	d, err := NewDriver(r, DefaultRequest(), 4, 4, WithDisplay(disp), WithSink(sink))
	if err != nil {
		t.Fatal(err)
	}
	done := make(chan error, 1)
	go func() { done <- d.Run(context.Background()) }()
	disp.wait(t)

	d.Apply(Save{})
	select {
	case err := <-done:
		if !errors.Is(err, sink.err) {
			t.Errorf("Run() = %v, want wrapped sink error", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("Run did not return")
	}
}

func TestDriverCloseUnblocksRun(t *testing.T) {
	r := NewRenderer(WithWorkers(1))
	defer r.Close()

	d, err := NewDriver(r, DefaultRequest(), 4, 4)
	if err != nil {
		t.Fatal(err)
	}
	<-d.permit // no initial frame; Run blocks immediately

	done := make(chan error, 1)
	go func() { done <- d.Run(context.Background()) }()
	d.Close()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() = %v, want nil", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("Run did not return after Close")
	}
}

func TestDriverCloseBeforePassStarts(t *testing.T) {
	r := NewRenderer(WithWorkers(1))
	defer r.Close()

	disp := newRecordingDisplay()
	sink := newRecordingSink()
	d, err := NewDriver(r, DefaultRequest(), 4, 4, WithDisplay(disp), WithSink(sink))
	if err != nil {
		t.Fatal(err)
	}

	// Run has taken the permit and snapshotted the state; Close lands before
	// the pass begins, so there is nothing for it to abort.
	<-d.permit
	s := d.state
	d.Close()

	ctx := context.Background()
	if err := d.renderHighRes(ctx, s); err != nil {
		t.Errorf("renderHighRes() = %v", err)
	}
	if err := d.renderView(ctx, s); err != nil {
		t.Errorf("renderView() = %v", err)
	}
	if g := r.Generation(); g != 0 {
		t.Errorf("a pass ran after Close: generation = %d", g)
	}
	select {
	case st := <-disp.presents:
		t.Errorf("Present called after Close: %+v", st)
	default:
	}
	if len(sink.ids) != 0 {
		t.Errorf("Save called after Close: %v", sink.ids)
	}
}

func TestDriverContextCancel(t *testing.T) {
	r := NewRenderer(WithWorkers(1))
	defer r.Close()

	d, err := NewDriver(r, DefaultRequest(), 4, 4)
	if err != nil {
		t.Fatal(err)
	}
	<-d.permit

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := d.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Run() = %v, want context.Canceled", err)
	}
}

func approx(a, b float64) bool {
	const eps = 1e-12
	return a-b < eps && b-a < eps
}
