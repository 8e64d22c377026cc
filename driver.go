package mandel

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/gogpu/mandel/internal/kernel"
)

// MinZoomDepth is the shallowest zoom a Driver allows. Zooming out past it is
// refused.
const MinZoomDepth = 0.5

// Delta is a change to the driven request. The concrete types below cover
// every interactive edit.
type Delta interface {
	apply(s *driverState) bool
}

// Pan moves the view by fractions of its span.
type Pan struct{ DX, DY float64 }

// ZoomAt recenters on pixel (X, Y) and divides the span by Factor.
// Factor 2 zooms in, 0.5 zooms out.
type ZoomAt struct {
	X, Y   int
	Factor float64
}

// ScaleIterations doubles (Up) or halves the iteration cap.
type ScaleIterations struct{ Up bool }

// ScaleAA doubles (Up) or halves the supersampling factor.
type ScaleAA struct{ Up bool }

// SetMode selects a coloring mode.
type SetMode struct{ Mode ColorMode }

// CycleMode advances to the next coloring mode.
type CycleMode struct{}

// HighRes requests one enlarged pass of the current view that goes to the
// Sink instead of the Display.
type HighRes struct{}

// Save sends the last presented buffer to the Sink.
type Save struct{}

type driverState struct {
	req     RenderRequest
	depth   float64
	width   int
	height  int
	dirty   bool
	highRes bool
	save    bool
}

func (d Pan) apply(s *driverState) bool {
	if d.DX == 0 && d.DY == 0 {
		return false
	}
	s.req.Bounds = s.req.Pan(d.DX, d.DY)
	s.dirty = true
	return true
}

func (d ZoomAt) apply(s *driverState) bool {
	if d.Factor <= 0 || d.Factor == 1 {
		return false
	}
	depth := s.depth * d.Factor
	if depth < MinZoomDepth {
		return false
	}
	s.depth = depth
	s.req.Bounds = s.req.ZoomAt(d.X, d.Y, s.width, s.height, d.Factor)
	s.dirty = true
	return true
}

func (d ScaleIterations) apply(s *driverState) bool {
	n := scale(s.req.MaxIter, d.Up)
	if n == s.req.MaxIter {
		return false
	}
	s.req.MaxIter = n
	s.dirty = true
	return true
}

func (d ScaleAA) apply(s *driverState) bool {
	n := scale(s.req.AA, d.Up)
	if n == s.req.AA {
		return false
	}
	s.req.AA = n
	s.dirty = true
	return true
}

func (d SetMode) apply(s *driverState) bool {
	if d.Mode == s.req.Mode || !kernel.Mode(d.Mode).Valid() {
		return false
	}
	s.req.Mode = d.Mode
	s.dirty = true
	return true
}

func (CycleMode) apply(s *driverState) bool {
	s.req.Mode = s.req.Mode.Next()
	s.dirty = true
	return true
}

func (HighRes) apply(s *driverState) bool {
	s.highRes = true
	return true
}

func (Save) apply(s *driverState) bool {
	s.save = true
	return true
}

func scale(n int, up bool) int {
	if up {
		return n * 2
	}
	return max(n/2, 1)
}

// DriverOption configures a Driver.
type DriverOption func(*driverOptions)

type driverOptions struct {
	display Display
	sink    Sink
	factor  int
}

// WithDisplay sets the collaborator that receives progress and finished
// buffers.
func WithDisplay(d Display) DriverOption {
	return func(o *driverOptions) {
		if d != nil {
			o.display = d
		}
	}
}

// WithSink sets the collaborator that persists buffers for Save and HighRes.
func WithSink(s Sink) DriverOption {
	return func(o *driverOptions) {
		o.sink = s
	}
}

// WithHighResFactor sets the size and supersampling multiplier of HighRes
// passes. Values below 1 are treated as 1.
func WithHighResFactor(n int) DriverOption {
	return func(o *driverOptions) {
		o.factor = max(n, 1)
	}
}

// Driver connects an interactive front end to a Renderer.
//
// The front end calls Apply for every user edit; each call releases a single
// permit. Run blocks on that permit, snapshots the request and renders it.
// Edits arriving while a pass runs coalesce into one follow-up pass.
//
//	d, err := mandel.NewDriver(r, mandel.DefaultRequest(), 800, 600, mandel.WithDisplay(ui))
//	if err != nil {
//	    return err
//	}
//	go d.Run(ctx)
//	d.Apply(mandel.ZoomAt{X: 400, Y: 300, Factor: 2})
type Driver struct {
	r    *Renderer
	opts driverOptions

	permit   chan struct{}
	shutdown atomic.Bool

	mu    sync.Mutex
	state driverState
	last  *PixelBuffer
	lastQ RenderRequest
}

// NewDriver creates a Driver for a width×height view starting at initial.
// The first Run iteration renders initial without waiting for an edit.
func NewDriver(r *Renderer, initial RenderRequest, width, height int, opts ...DriverOption) (*Driver, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}
	initial = initial.Clamped()
	if err := initial.Validate(); err != nil {
		return nil, err
	}

	o := driverOptions{display: nopDisplay{}, factor: 4}
	for _, opt := range opts {
		opt(&o)
	}

	d := &Driver{
		r:      r,
		opts:   o,
		permit: make(chan struct{}, 1),
		state: driverState{
			req:    initial,
			depth:  1,
			width:  width,
			height: height,
			dirty:  true,
		},
	}
	d.permit <- struct{}{}
	return d, nil
}

// Apply edits the driven request and wakes Run. It reports whether the edit
// changed anything; refused edits (such as zooming out past MinZoomDepth)
// leave the request untouched and release no permit.
func (d *Driver) Apply(delta Delta) bool {
	d.mu.Lock()
	changed := delta.apply(&d.state)
	d.mu.Unlock()
	if changed {
		d.Signal()
	}
	return changed
}

// Signal releases the permit. Multiple signals before Run acquires it
// collapse into one.
func (d *Driver) Signal() {
	select {
	case d.permit <- struct{}{}:
	default:
	}
}

// Request returns the current request.
func (d *Driver) Request() RenderRequest {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state.req
}

// Depth returns the accumulated zoom factor relative to the initial view.
func (d *Driver) Depth() float64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state.depth
}

// Abort abandons the pass in flight. Run keeps going and renders again on
// the next edit.
func (d *Driver) Abort() bool {
	return d.r.Abort()
}

// Close stops Run. It aborts the pass in flight and releases the permit so a
// blocked Run observes the shutdown.
func (d *Driver) Close() {
	d.shutdown.Store(true)
	d.r.Abort()
	d.Signal()
}

// Run services edits until Close is called or ctx is done. It returns nil
// after Close and ctx.Err() on cancellation. Aborted passes are not errors;
// any other render or save failure ends Run.
func (d *Driver) Run(ctx context.Context) error {
	log := Logger()
	for {
		select {
		case <-d.permit:
		case <-ctx.Done():
			return ctx.Err()
		}
		if d.shutdown.Load() {
			log.Debug("mandel: driver stopped")
			return nil
		}

		d.mu.Lock()
		s := d.state
		d.state.dirty, d.state.highRes, d.state.save = false, false, false
		d.mu.Unlock()

		if s.save {
			if err := d.saveLast(ctx); err != nil {
				return err
			}
		}
		if s.highRes {
			if err := d.renderHighRes(ctx, s); err != nil {
				return err
			}
		}
		if s.dirty {
			if err := d.renderView(ctx, s); err != nil {
				return err
			}
		}
	}
}

// Close may land after Run took the permit but before the pass began, when
// there is nothing for it to abort. The render helpers check shutdown again
// around each pass so no output is delivered for such a pass.

func (d *Driver) renderView(ctx context.Context, s driverState) error {
	if d.shutdown.Load() {
		return nil
	}
	buf, stats, err := d.r.render(ctx, s.req, s.width, s.height, d.opts.display.Progress)
	if err != nil {
		return d.settle(ctx, err)
	}
	if d.shutdown.Load() {
		return nil
	}
	d.mu.Lock()
	d.last, d.lastQ = buf, s.req
	d.mu.Unlock()
	d.opts.display.Present(buf, stats)
	return nil
}

func (d *Driver) renderHighRes(ctx context.Context, s driverState) error {
	if d.opts.sink == nil {
		Logger().Warn("mandel: high-res pass skipped, no sink configured")
		return nil
	}
	req := s.req
	req.AA *= d.opts.factor
	w, h := s.width*d.opts.factor, s.height*d.opts.factor

	if d.shutdown.Load() {
		return nil
	}
	buf, stats, err := d.r.render(ctx, req, w, h, d.opts.display.Progress)
	if err != nil {
		return d.settle(ctx, err)
	}
	if d.shutdown.Load() {
		return nil
	}
	id := s.req.Identifier()
	if err := d.opts.sink.Save(ctx, buf, id); err != nil {
		return fmt.Errorf("mandel: save %s: %w", id, err)
	}
	Logger().Info("mandel: high-res pass saved", "id", id, "width", w, "height", h, "elapsed", stats.Elapsed)
	return nil
}

func (d *Driver) saveLast(ctx context.Context) error {
	d.mu.Lock()
	buf, req := d.last, d.lastQ
	d.mu.Unlock()
	if d.opts.sink == nil || buf == nil {
		Logger().Warn("mandel: nothing to save", "sink", d.opts.sink != nil, "presented", buf != nil)
		return nil
	}
	id := req.Identifier()
	if err := d.opts.sink.Save(ctx, buf, id); err != nil {
		return fmt.Errorf("mandel: save %s: %w", id, err)
	}
	Logger().Info("mandel: buffer saved", "id", id)
	return nil
}

// settle maps a render error to Run's result. Aborts keep Run alive unless
// they came from ctx.
func (d *Driver) settle(ctx context.Context, err error) error {
	if !errors.Is(err, ErrAborted) {
		return err
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return nil
}
