package mandel

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/gogpu/mandel/internal/cache"
	"github.com/gogpu/mandel/internal/kernel"
	"github.com/gogpu/mandel/internal/parallel"
)

// ErrAborted is returned by Render when the pass was abandoned, either by
// Abort or by cancellation of its context. The partial buffer is discarded.
var ErrAborted = errors.New("mandel: render aborted")

// ErrClosed is returned by Render after Close.
var ErrClosed = errors.New("mandel: renderer closed")

// Renderer runs render passes on a work-stealing pool.
//
// Each pass submits one task per row. Rows complete in any order; the pass is
// finished when its progress counter reaches the row count. Only one pass
// runs at a time; concurrent Render calls queue behind each other.
//
// Thread safety: Renderer is safe for concurrent use. Abort may be called
// from any goroutine while Render is blocked.
type Renderer struct {
	opts    options
	pool    *parallel.WorkerPool
	kernel  *kernel.Kernel
	session Session
	frames  *cache.LRU[frameKey, *PixelBuffer] // nil unless WithFrameCache

	// mu serializes passes.
	mu     sync.Mutex
	closed atomic.Bool
}

// NewRenderer creates a Renderer and starts its worker pool.
func NewRenderer(opts ...Option) *Renderer {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	r := &Renderer{
		opts:   o,
		pool:   parallel.NewWorkerPool(o.workers),
		kernel: kernel.New(),
	}
	if o.frames > 0 {
		r.frames = cache.New[frameKey, *PixelBuffer](o.frames)
	}
	return r
}

// frameKey identifies a completed buffer. The seed is fixed per Renderer.
type frameKey struct {
	req           RenderRequest
	width, height int
}

// Workers returns the size of the worker pool.
func (r *Renderer) Workers() int {
	return r.pool.Workers()
}

// State returns the session state.
func (r *Renderer) State() State {
	return r.session.State()
}

// Generation returns the current render generation.
func (r *Renderer) Generation() uint64 {
	return r.session.Generation()
}

// Render computes req into a new width×height buffer.
//
// req is clamped before use; invalid bounds or a non-positive size are
// reported as errors. Progress is reported through the WithProgress callback.
func (r *Renderer) Render(ctx context.Context, req RenderRequest, width, height int) (*PixelBuffer, Stats, error) {
	return r.render(ctx, req, width, height, r.opts.progress)
}

// Abort abandons the in-flight pass, if any. Rows already running finish but
// their results are discarded; queued rows of the abandoned pass turn into
// no-ops. It reports whether a pass was aborted.
func (r *Renderer) Abort() bool {
	if err := r.session.Abort(); err != nil {
		return false
	}
	Logger().Warn("mandel: abort requested", "generation", r.session.Generation())
	return true
}

// Close aborts any pass in flight and stops the worker pool.
// Close is safe to call multiple times.
func (r *Renderer) Close() {
	if !r.closed.CompareAndSwap(false, true) {
		return
	}
	r.Abort()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pool.Close()
	if r.frames != nil {
		r.frames.Purge()
	}
}

func (r *Renderer) render(ctx context.Context, req RenderRequest, width, height int, progress ProgressFunc) (*PixelBuffer, Stats, error) {
	if width <= 0 || height <= 0 {
		return nil, Stats{}, fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}
	req = req.Clamped()
	if err := req.Validate(); err != nil {
		return nil, Stats{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed.Load() {
		return nil, Stats{}, ErrClosed
	}

	key := frameKey{req: req, width: width, height: height}
	if r.frames != nil {
		if buf, ok := r.frames.Get(key); ok {
			Logger().Debug("mandel: frame cache hit", "id", req.Identifier(), "width", width, "height", height)
			progress(100)
			return buf, Stats{
				PassID:     uuid.NewString(),
				Generation: r.session.Generation(),
				Width:      width,
				Height:     height,
				Rows:       height,
				Cached:     true,
			}, nil
		}
	}

	gen, aborted, err := r.session.Begin()
	if err != nil {
		return nil, Stats{}, err
	}

	p := &pass{
		gen:     gen,
		params:  req.params(width, height, r.opts.seed),
		buf:     NewPixelBuffer(width, height),
		session: &r.session,
		kernel:  r.kernel,
		notify:  make(chan struct{}, 1),
	}
	stats := Stats{PassID: uuid.NewString(), Generation: gen, Width: width, Height: height}
	log := Logger().With("pass", stats.PassID, "generation", gen)
	log.Info("mandel: pass started",
		"width", width, "height", height,
		"max_iter", req.MaxIter, "aa", req.AA, "mode", req.Mode.String())
	log.Debug("mandel: submitting rows", "rows", height, "workers", r.pool.Workers())

	start := time.Now()
	for y := range height {
		r.pool.Submit(func() { p.row(y) })
	}
	log.Debug("mandel: rows submitted", "queued", r.pool.QueuedWork())

	total := int64(height)
	last := -1
	for {
		done := p.progress.Load()
		if pct := int(done * 100 / total); pct != last {
			last = pct
			progress(pct)
		}
		if err := ctx.Err(); err != nil {
			_ = r.session.Abort()
			return nil, r.abandon(log, stats, p, start), fmt.Errorf("%w: %w", ErrAborted, err)
		}
		if done == total {
			break
		}

		select {
		case <-p.notify:
		case <-aborted:
			return nil, r.abandon(log, stats, p, start), ErrAborted
		case <-ctx.Done():
			_ = r.session.Abort()
			return nil, r.abandon(log, stats, p, start), fmt.Errorf("%w: %w", ErrAborted, ctx.Err())
		}
	}

	stats.Rows = height
	stats.Elapsed = time.Since(start)
	if err := r.session.Finish(gen); err != nil {
		// Aborted after the last row landed; honor the abort.
		return nil, r.abandon(log, stats, p, start), ErrAborted
	}
	log.Info("mandel: pass finished", "elapsed", stats.Elapsed)
	if r.frames != nil {
		r.frames.Add(key, p.buf)
		fs := r.frames.Stats()
		log.Debug("mandel: frame cached", "frames", fs.Len, "capacity", fs.Capacity, "hits", fs.Hits, "misses", fs.Misses)
	}
	return p.buf, stats, nil
}

// abandon settles an aborted session and returns the stats of the partial pass.
func (r *Renderer) abandon(log *slog.Logger, stats Stats, p *pass, start time.Time) Stats {
	_ = r.session.Settle()
	stats.Rows = int(p.progress.Load())
	stats.Elapsed = time.Since(start)
	log.Warn("mandel: pass aborted", "rows", stats.Rows, "of", stats.Height, "elapsed", stats.Elapsed)
	return stats
}

// pass is the immutable context shared by every row task of one render pass.
// Only progress and notify are written after construction.
type pass struct {
	gen     uint64
	params  kernel.Params
	buf     *PixelBuffer
	session *Session
	kernel  *kernel.Kernel

	progress atomic.Int64
	notify   chan struct{}
}

// row evaluates row y unless the pass has been superseded.
func (p *pass) row(y int) {
	if !p.session.Current(p.gen) {
		return
	}
	p.kernel.Row(p.params, y, p.buf.Row(y))
	p.progress.Add(1)
	select {
	case p.notify <- struct{}{}:
	default:
	}
}
