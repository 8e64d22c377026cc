package cli

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"

	"github.com/gogpu/mandel"
)

// pngSink writes buffers to <dir>/<id>.png.
type pngSink struct {
	dir   string
	saved func(path string)
}

func newPNGSink(dir string) *pngSink {
	return &pngSink{dir: dir, saved: func(string) {}}
}

// Save implements mandel.Sink.
func (s *pngSink) Save(ctx context.Context, buf *mandel.PixelBuffer, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path := filepath.Join(s.dir, id+".png")
	if err := writePNG(path, buf); err != nil {
		return err
	}
	s.saved(path)
	return nil
}

// writePNG encodes img to path, creating parent directories as needed.
func writePNG(path string, img image.Image) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", path, cerr)
		}
	}()
	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return nil
}
