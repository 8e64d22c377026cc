// Package mandel renders the Mandelbrot set on all CPU cores.
//
// # Overview
//
// A render pass evaluates one RenderRequest (a rectangle of the complex
// plane, an iteration cap, a supersampling factor and a coloring mode) into
// a row-major RGB8 PixelBuffer. Each row is a task on a work-stealing pool;
// inside a row, eight adjacent pixels iterate together in fixed-width lanes
// so the compiler can keep them in vector registers.
//
// # Quick Start
//
//	import "github.com/gogpu/mandel"
//
//	r := mandel.NewRenderer(mandel.WithSeed(1))
//	defer r.Close()
//
//	req := mandel.DefaultRequest()
//	req.Bounds = mandel.BoundsAround(-0.7435, 0.1314, 0.002, 0.002)
//	req.MaxIter = 2048
//	req.AA = 4
//
//	buf, stats, err := r.Render(ctx, req, 1024, 1024)
//	if err != nil {
//	    return err
//	}
//	png.Encode(f, buf) // PixelBuffer implements image.Image
//
// # Interactive use
//
// A Driver turns a stream of edits (Pan, ZoomAt, ScaleIterations, ...) into
// render passes. Edits made while a pass runs coalesce into one follow-up
// pass. Results go to a Display; Save and HighRes go to a Sink.
//
// # Sessions and generations
//
// Every pass runs under a Session generation. Abort advances the generation,
// so rows of an abandoned pass that are still queued become no-ops and a
// new pass never races with stale writers.
//
// # Coordinate System
//
//   - Pixel (0,0) maps to (MinRe, MinIm)
//   - X increases the real part
//   - Y increases the imaginary part
//
// # Determinism
//
// Supersampling jitter is drawn from PCG32 streams seeded by the renderer
// seed and the row index. The same request, size and seed always produce
// the same bytes, whatever the worker count.
package mandel

// Version information
const (
	// Version is the current version of the library
	Version = "0.1.0"

	// VersionMajor is the major version
	VersionMajor = 0

	// VersionMinor is the minor version
	VersionMinor = 1

	// VersionPatch is the patch version
	VersionPatch = 0
)
