package cli

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/gogpu/mandel"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	config string // config file path
	flags  Config // raw flag values, applied only when set
	thumb  int    // longest side of the optional thumbnail, 0 disables it
}

func (c *CLI) renderCommand() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render one view to PNG",
		Long: `Render one view of the Mandelbrot set and write it to <out>/<id>.png, where
<id> is derived from the view center, the iteration cap and the coloring mode.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd.Flags(), &opts.flags, opts.config)
			if err != nil {
				return err
			}
			return c.runRender(cmd.Context(), cmd.OutOrStdout(), cfg, opts.thumb)
		},
	}

	bindConfigFlags(cmd.Flags(), &opts.flags, &opts.config)
	cmd.Flags().IntVar(&opts.thumb, "thumb", 0, "also write a thumbnail whose longest side is this many pixels")

	return cmd
}

func (c *CLI) runRender(ctx context.Context, out io.Writer, cfg Config, thumb int) error {
	req, err := cfg.Request()
	if err != nil {
		return err
	}

	r := mandel.NewRenderer(cfg.rendererOptions(mandel.WithProgress(percentLogger(c.Logger)))...)
	defer r.Close()

	prog := newProgress(c.Logger)
	buf, stats, err := r.Render(ctx, req, cfg.Width, cfg.Height)
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Rendered %dx%d", cfg.Width, cfg.Height))

	id := req.Identifier()
	sink := newPNGSink(cfg.OutputDir)
	sink.saved = func(path string) { printFile(out, path) }
	if err := sink.Save(ctx, buf, id); err != nil {
		return err
	}
	if thumb > 0 {
		path := filepath.Join(cfg.OutputDir, id+"_thumb.png")
		if err := writePNG(path, thumbnail(buf, thumb, thumb)); err != nil {
			return err
		}
		printFile(out, path)
	}

	printSuccess(out, "Rendered %s", StyleTitle.Render(id))
	printStats(out, req, stats)
	return nil
}

// percentLogger logs progress at debug level in steps of ten percent.
func percentLogger(l *log.Logger) mandel.ProgressFunc {
	last := -10
	return func(pct int) {
		if pct-last >= 10 || pct == 100 {
			last = pct
			l.Debug("progress", "percent", pct)
		}
	}
}

// printStats prints the per-pass summary.
func printStats(w io.Writer, req mandel.RenderRequest, stats mandel.Stats) {
	pixels := int64(stats.Width) * int64(stats.Height)
	samples := pixels * int64(req.AA)
	printKeyValue(w, "size", fmt.Sprintf("%dx%d", stats.Width, stats.Height))
	printKeyValue(w, "pixels", formatCount(pixels))
	printKeyValue(w, "samples", formatCount(samples)+"  "+StyleDim.Render(formatRate(samples, stats.Elapsed)))
	printKeyValue(w, "elapsed", stats.Elapsed.String())
	printKeyValue(w, "pass", StyleDim.Render(stats.PassID))
}
