package mandel

import (
	"context"
	"time"
)

// Stats describes a completed (or abandoned) pass.
type Stats struct {
	// PassID is a unique identifier for log correlation.
	PassID string
	// Generation is the session generation the pass ran under.
	Generation uint64
	// Width and Height are the buffer dimensions.
	Width, Height int
	// Rows is the number of rows completed when the pass ended.
	Rows int
	// Elapsed is the wall-clock time from submission to completion.
	Elapsed time.Duration
	// Cached reports that the buffer came from the frame cache.
	Cached bool
}

// Display is the presentation collaborator: it receives progress while a pass
// runs and the finished buffer afterwards.
type Display interface {
	Progress(percent int)
	Present(buf *PixelBuffer, stats Stats)
}

// Sink is the persistence collaborator. id is the request Identifier;
// choosing a file format and location is up to the Sink.
type Sink interface {
	Save(ctx context.Context, buf *PixelBuffer, id string) error
}

// nopDisplay drops everything.
type nopDisplay struct{}

func (nopDisplay) Progress(int)                {}
func (nopDisplay) Present(*PixelBuffer, Stats) {}
