package cli

import (
	"context"
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/stat"

	"github.com/gogpu/mandel"
)

const defaultBenchPasses = 10

// benchOpts holds the command-line flags for the bench command.
type benchOpts struct {
	config string
	flags  Config
	passes int
	warmup int
}

func (c *CLI) benchCommand() *cobra.Command {
	opts := benchOpts{passes: defaultBenchPasses, warmup: 1}

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Time repeated passes of one view",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.passes < 1 {
				return fmt.Errorf("--passes must be at least 1, got %d", opts.passes)
			}
			cfg, err := resolveConfig(cmd.Flags(), &opts.flags, opts.config)
			if err != nil {
				return err
			}
			return c.runBench(cmd.Context(), cmd.OutOrStdout(), cfg, opts)
		},
	}

	bindConfigFlags(cmd.Flags(), &opts.flags, &opts.config)
	cmd.Flags().IntVarP(&opts.passes, "passes", "n", opts.passes, "number of timed passes")
	cmd.Flags().IntVar(&opts.warmup, "warmup", opts.warmup, "untimed passes before measuring")

	return cmd
}

func (c *CLI) runBench(ctx context.Context, out io.Writer, cfg Config, opts benchOpts) error {
	req, err := cfg.Request()
	if err != nil {
		return err
	}

	r := mandel.NewRenderer(cfg.rendererOptions()...)
	defer r.Close()

	c.Logger.Info("Benchmarking", "size", fmt.Sprintf("%dx%d", cfg.Width, cfg.Height),
		"passes", opts.passes, "workers", r.Workers(), "id", req.Identifier())

	for range opts.warmup {
		if _, _, err := r.Render(ctx, req, cfg.Width, cfg.Height); err != nil {
			return err
		}
	}

	times := make([]float64, 0, opts.passes)
	for i := range opts.passes {
		_, stats, err := r.Render(ctx, req, cfg.Width, cfg.Height)
		if err != nil {
			return err
		}
		c.Logger.Debug("pass", "n", i+1, "elapsed", stats.Elapsed)
		times = append(times, stats.Elapsed.Seconds())
	}

	s := summarize(times)
	pixels := int64(cfg.Width) * int64(cfg.Height)
	printSuccess(out, "%s passes of %s", formatCount(int64(opts.passes)), StyleTitle.Render(req.Identifier()))
	printKeyValue(out, "workers", fmt.Sprint(r.Workers()))
	printKeyValue(out, "mean", seconds(s.mean).String())
	printKeyValue(out, "stddev", seconds(s.stddev).String())
	printKeyValue(out, "min", seconds(s.min).String())
	printKeyValue(out, "median", seconds(s.median).String())
	printKeyValue(out, "p90", seconds(s.p90).String())
	printKeyValue(out, "max", seconds(s.max).String())
	printKeyValue(out, "throughput", formatRate(pixels*int64(cfg.AA), seconds(s.mean).dur())+" samples")
	if s.mean > 0 && s.stddev/s.mean > 0.25 {
		printWarning(out, "timings vary by more than 25%%; results may be noisy")
	}
	return nil
}

// benchStats summarizes pass times in seconds.
type benchStats struct {
	mean, stddev     float64
	min, median, p90 float64
	max              float64
}

func summarize(times []float64) benchStats {
	if len(times) == 0 {
		return benchStats{}
	}
	sorted := slices.Clone(times)
	slices.Sort(sorted)

	var s benchStats
	s.mean, s.stddev = stat.MeanStdDev(sorted, nil)
	if len(sorted) < 2 {
		s.stddev = 0
	}
	s.min = sorted[0]
	s.max = sorted[len(sorted)-1]
	s.median = stat.Quantile(0.5, stat.Empirical, sorted, nil)
	s.p90 = stat.Quantile(0.9, stat.Empirical, sorted, nil)
	return s
}

type seconds float64

func (s seconds) dur() time.Duration { return time.Duration(float64(s) * float64(time.Second)) }

func (s seconds) String() string { return s.dur().Round(time.Microsecond).String() }
