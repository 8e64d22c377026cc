package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/gogpu/mandel"
)

// Config is the union of file and flag settings shared by every command.
type Config struct {
	Width         int     `yaml:"width" toml:"width"`
	Height        int     `yaml:"height" toml:"height"`
	CenterRe      float64 `yaml:"center_re" toml:"center_re"`
	CenterIm      float64 `yaml:"center_im" toml:"center_im"`
	Span          float64 `yaml:"span" toml:"span"` // real extent; imaginary follows the aspect ratio
	MaxIter       int     `yaml:"max_iter" toml:"max_iter"`
	AA            int     `yaml:"aa" toml:"aa"`
	Mode          string  `yaml:"mode" toml:"mode"`
	Workers       int     `yaml:"workers" toml:"workers"`
	Seed          uint64  `yaml:"seed" toml:"seed"`
	HighResFactor int     `yaml:"high_res_factor" toml:"high_res_factor"`
	OutputDir     string  `yaml:"output_dir" toml:"output_dir"`
}

// defaultConfig frames the whole set in an 800x600 view.
func defaultConfig() Config {
	return Config{
		Width:         800,
		Height:        600,
		CenterRe:      -0.5,
		CenterIm:      0,
		Span:          4,
		MaxIter:       256,
		AA:            1,
		Mode:          mandel.ColorTrig.String(),
		HighResFactor: 4,
		OutputDir:     ".",
	}
}

// loadConfig reads path on top of the defaults. An empty path yields the
// defaults. The format is chosen by extension.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	case ".toml":
		err = toml.Unmarshal(data, &cfg)
	default:
		return cfg, fmt.Errorf("config %s: unsupported format %q (want .yaml, .yml or .toml)", path, ext)
	}
	if err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}

	setDefaults(&cfg)
	return cfg, nil
}

// setDefaults replaces zero values that would make a render impossible.
func setDefaults(cfg *Config) {
	d := defaultConfig()
	if cfg.Width <= 0 {
		cfg.Width = d.Width
	}
	if cfg.Height <= 0 {
		cfg.Height = d.Height
	}
	if cfg.Span <= 0 {
		cfg.Span = d.Span
	}
	if cfg.MaxIter <= 0 {
		cfg.MaxIter = d.MaxIter
	}
	if cfg.AA <= 0 {
		cfg.AA = d.AA
	}
	if cfg.Mode == "" {
		cfg.Mode = d.Mode
	}
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.GOMAXPROCS(0)
	}
	if cfg.HighResFactor <= 0 {
		cfg.HighResFactor = d.HighResFactor
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = d.OutputDir
	}
}

// bindConfigFlags registers the shared flags, writing into f.
func bindConfigFlags(fs *pflag.FlagSet, f *Config, path *string) {
	d := defaultConfig()
	fs.StringVarP(path, "config", "c", "", "config file (.yaml, .yml or .toml)")
	fs.IntVar(&f.Width, "width", d.Width, "image width in pixels")
	fs.IntVar(&f.Height, "height", d.Height, "image height in pixels")
	fs.Float64Var(&f.CenterRe, "center-re", d.CenterRe, "real part of the view center")
	fs.Float64Var(&f.CenterIm, "center-im", d.CenterIm, "imaginary part of the view center")
	fs.Float64Var(&f.Span, "span", d.Span, "real extent of the view")
	fs.IntVar(&f.MaxIter, "max-iter", d.MaxIter, "iteration cap")
	fs.IntVar(&f.AA, "aa", d.AA, "samples per pixel")
	fs.StringVar(&f.Mode, "mode", d.Mode, "coloring mode: trig, smooth, gray")
	fs.IntVar(&f.Workers, "workers", 0, "worker goroutines (0 = GOMAXPROCS)")
	fs.Uint64Var(&f.Seed, "seed", 0, "anti-aliasing jitter seed")
	fs.IntVar(&f.HighResFactor, "high-res-factor", d.HighResFactor, "size and AA multiplier of high-res passes")
	fs.StringVarP(&f.OutputDir, "out", "o", d.OutputDir, "output directory")
}

// applyFlags copies every flag the user set explicitly from f into cfg.
func applyFlags(cfg *Config, fs *pflag.FlagSet, f *Config) {
	set := func(name string, apply func()) {
		if fs.Changed(name) {
			apply()
		}
	}
	set("width", func() { cfg.Width = f.Width })
	set("height", func() { cfg.Height = f.Height })
	set("center-re", func() { cfg.CenterRe = f.CenterRe })
	set("center-im", func() { cfg.CenterIm = f.CenterIm })
	set("span", func() { cfg.Span = f.Span })
	set("max-iter", func() { cfg.MaxIter = f.MaxIter })
	set("aa", func() { cfg.AA = f.AA })
	set("mode", func() { cfg.Mode = f.Mode })
	set("workers", func() { cfg.Workers = f.Workers })
	set("seed", func() { cfg.Seed = f.Seed })
	set("high-res-factor", func() { cfg.HighResFactor = f.HighResFactor })
	set("out", func() { cfg.OutputDir = f.OutputDir })
}

// resolveConfig loads the file named by --config, overlays explicit flags
// and fills defaults.
func resolveConfig(fs *pflag.FlagSet, f *Config, path string) (Config, error) {
	cfg, err := loadConfig(path)
	if err != nil {
		return cfg, err
	}
	applyFlags(&cfg, fs, f)
	setDefaults(&cfg)
	return cfg, nil
}

// Request converts cfg into a render request. The imaginary extent follows
// the image aspect ratio so pixels stay square.
func (cfg Config) Request() (mandel.RenderRequest, error) {
	mode, err := mandel.ParseColorMode(cfg.Mode)
	if err != nil {
		return mandel.RenderRequest{}, err
	}
	spanIm := cfg.Span * float64(cfg.Height) / float64(cfg.Width)
	req := mandel.RenderRequest{
		Bounds:  mandel.BoundsAround(cfg.CenterRe, cfg.CenterIm, cfg.Span, spanIm),
		MaxIter: cfg.MaxIter,
		AA:      cfg.AA,
		Mode:    mode,
	}
	if err := req.Validate(); err != nil {
		return mandel.RenderRequest{}, err
	}
	return req, nil
}

// rendererOptions returns the mandel options cfg implies.
func (cfg Config) rendererOptions(extra ...mandel.Option) []mandel.Option {
	return append([]mandel.Option{
		mandel.WithWorkers(cfg.Workers),
		mandel.WithSeed(cfg.Seed),
	}, extra...)
}
