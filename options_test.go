package mandel

import (
	"runtime"
	"testing"
)

func TestDefaultOptions(t *testing.T) {
	o := defaultOptions()
	if o.workers != 0 || o.seed != 0 || o.progress == nil {
		t.Errorf("defaultOptions() = %+v", o)
	}
}

func TestNewRendererOptions(t *testing.T) {
	var calls int
	r := NewRenderer(WithWorkers(3), WithSeed(99), WithProgress(func(int) { calls++ }))
	defer r.Close()

	if r.Workers() != 3 {
		t.Errorf("Workers() = %d, want 3", r.Workers())
	}
	if r.opts.seed != 99 {
		t.Errorf("seed = %d, want 99", r.opts.seed)
	}
	r.opts.progress(50)
	if calls != 1 {
		t.Error("progress option not installed")
	}
}

func TestNewRendererDefaultWorkers(t *testing.T) {
	r := NewRenderer(WithWorkers(-1), WithProgress(nil))
	defer r.Close()

	if r.Workers() != max(runtime.GOMAXPROCS(0), 1) {
		t.Errorf("Workers() = %d, want GOMAXPROCS", r.Workers())
	}
	r.opts.progress(10) // nil progress must be replaced by a no-op
}
