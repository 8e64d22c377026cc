package mandel

// Option configures a Renderer during creation.
// Use functional options to customize Renderer behavior.
//
// Example:
//
//	// One worker per GOMAXPROCS, silent progress
//	r := mandel.NewRenderer()
//
//	// Fixed pool, reproducible jitter, progress to stderr
//	r := mandel.NewRenderer(
//	    mandel.WithWorkers(8),
//	    mandel.WithSeed(42),
//	    mandel.WithProgress(func(pct int) { fmt.Fprintf(os.Stderr, "\r%3d%%", pct) }),
//	)
type Option func(*options)

// ProgressFunc receives the completion percentage of the running pass.
// It is called from the goroutine that called Render, once per change.
type ProgressFunc func(percent int)

// options holds optional configuration for Renderer creation.
type options struct {
	workers  int
	seed     uint64
	progress ProgressFunc
	frames   int
}

// defaultOptions returns the default renderer options.
func defaultOptions() options {
	return options{
		workers:  0, // GOMAXPROCS
		seed:     0,
		progress: func(int) {},
	}
}

// WithWorkers sets the worker pool size.
// Zero or negative means runtime.GOMAXPROCS(0).
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// WithSeed sets the base seed of the anti-aliasing jitter. Identical
// requests rendered with the same seed produce identical buffers.
func WithSeed(seed uint64) Option {
	return func(o *options) {
		o.seed = seed
	}
}

// WithProgress installs a progress callback for Render.
// A nil function disables progress reporting.
func WithProgress(fn ProgressFunc) Option {
	return func(o *options) {
		if fn == nil {
			fn = func(int) {}
		}
		o.progress = fn
	}
}

// WithFrameCache keeps the last n completed buffers. Rendering a request
// that is still cached at the same size returns the stored buffer without a
// pass; callers must then treat buffers as read-only. Zero disables the
// cache, which is the default.
func WithFrameCache(n int) Option {
	return func(o *options) {
		o.frames = max(n, 0)
	}
}
