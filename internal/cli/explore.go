package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/gogpu/mandel"
)

const (
	panStep    = 0.1
	zoomFactor = 2

	// exploreFrames is the number of recent views kept for instant revisits.
	exploreFrames = 32
)

var (
	exploreHelpStyle   = lipgloss.NewStyle().Foreground(colorDim)
	exploreStatusStyle = lipgloss.NewStyle().Foreground(colorGray)
	exploreBarStyle    = lipgloss.NewStyle().Foreground(colorCyan)
)

// exploreOpts holds the command-line flags for the explore command.
type exploreOpts struct {
	config string
	flags  Config
}

func (c *CLI) exploreCommand() *cobra.Command {
	var opts exploreOpts

	cmd := &cobra.Command{
		Use:   "explore",
		Short: "Pan and zoom interactively in the terminal",
		Long: `Explore renders the view at the configured size and shows a scaled preview
in the terminal. Every key press edits the view and triggers a new pass.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd.Flags(), &opts.flags, opts.config)
			if err != nil {
				return err
			}
			return c.runExplore(cmd.Context(), cmd.OutOrStdout(), cfg)
		},
	}

	bindConfigFlags(cmd.Flags(), &opts.flags, &opts.config)
	return cmd
}

func (c *CLI) runExplore(ctx context.Context, out io.Writer, cfg Config) error {
	req, err := cfg.Request()
	if err != nil {
		return err
	}

	// Log lines would tear the alternate screen.
	c.Logger.SetOutput(io.Discard)
	defer c.Logger.SetOutput(c.logOut)

	r := mandel.NewRenderer(cfg.rendererOptions(mandel.WithFrameCache(exploreFrames))...)
	defer r.Close()

	disp := &teaDisplay{}
	sink := newPNGSink(cfg.OutputDir)
	d, err := mandel.NewDriver(r, req, cfg.Width, cfg.Height,
		mandel.WithDisplay(disp),
		mandel.WithSink(sink),
		mandel.WithHighResFactor(cfg.HighResFactor))
	if err != nil {
		return err
	}

	p := tea.NewProgram(newExploreModel(d, cfg.Width, cfg.Height), tea.WithAltScreen(), tea.WithContext(ctx))
	disp.send = p.Send
	var saved []string
	sink.saved = func(path string) {
		saved = append(saved, path)
		p.Send(savedMsg(path))
	}

	runErr := make(chan error, 1)
	go func() { runErr <- d.Run(ctx) }()

	final, err := p.Run()
	d.Close()
	if derr := <-runErr; derr != nil && !errors.Is(derr, context.Canceled) {
		printError(out, "render loop: %v", derr)
	}
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}

	for _, path := range saved {
		printFile(out, path)
	}
	if m, ok := final.(exploreModel); ok && m.buf != nil {
		printSuccess(out, "Last view %s", StyleTitle.Render(m.req.Identifier()))
	}
	return ctx.Err()
}

// =============================================================================
// Messages
// =============================================================================

type progressMsg int

type frameMsg struct {
	buf   *mandel.PixelBuffer
	stats mandel.Stats
}

type savedMsg string

// teaDisplay forwards Driver output into the bubbletea event loop.
type teaDisplay struct {
	send func(tea.Msg)
}

func (d *teaDisplay) Progress(pct int) { d.send(progressMsg(pct)) }

func (d *teaDisplay) Present(buf *mandel.PixelBuffer, stats mandel.Stats) {
	d.send(frameMsg{buf: buf, stats: stats})
}

// =============================================================================
// Model
// =============================================================================

// viewDriver is the part of *mandel.Driver the explorer uses.
type viewDriver interface {
	Apply(mandel.Delta) bool
	Abort() bool
	Request() mandel.RenderRequest
}

type exploreModel struct {
	driver        viewDriver
	width, height int // render size
	cols, rows    int // terminal size

	req     mandel.RenderRequest
	percent int
	buf     *mandel.PixelBuffer
	stats   mandel.Stats
	preview string
	status  string

	// color is the mode restored when grayscale is toggled off.
	color mandel.ColorMode
}

func newExploreModel(d viewDriver, width, height int) exploreModel {
	req := d.Request()
	color := req.Mode
	if color == mandel.ColorGray {
		color = mandel.ColorTrig
	}
	return exploreModel{
		driver: d,
		width:  width,
		height: height,
		cols:   80,
		rows:   24,
		req:    req,
		color:  color,
	}
}

func (m exploreModel) Init() tea.Cmd {
	return nil
}

func (m exploreModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.key(msg.String())
	case tea.WindowSizeMsg:
		m.cols, m.rows = msg.Width, msg.Height
		m.preview = m.renderPreview()
	case progressMsg:
		m.percent = int(msg)
	case frameMsg:
		m.buf, m.stats = msg.buf, msg.stats
		m.percent = 100
		m.preview = m.renderPreview()
		m.status = fmt.Sprintf("pass %s in %s", formatCount(int64(msg.stats.Generation)), msg.stats.Elapsed.Round(time.Millisecond))
		if msg.stats.Cached {
			m.status = "cached view"
		}
	case savedMsg:
		m.status = "saved " + string(msg)
	}
	return m, nil
}

func (m exploreModel) key(k string) (tea.Model, tea.Cmd) {
	switch k {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "b":
		if m.driver.Abort() {
			m.status = "aborted"
		}
		return m, nil
	}

	delta, ok := m.keyDelta(k)
	if !ok {
		return m, nil
	}
	if !m.driver.Apply(delta) {
		if _, zoom := delta.(mandel.ZoomAt); zoom {
			m.status = "zoom limit reached"
		}
		return m, nil
	}
	switch delta.(type) {
	case mandel.HighRes:
		m.status = "high-res pass queued"
	case mandel.Save:
		m.status = "saving"
	}
	m.req = m.driver.Request()
	if m.req.Mode != mandel.ColorGray {
		m.color = m.req.Mode
	}
	return m, nil
}

// keyDelta maps a key to the view edit it stands for.
func (m exploreModel) keyDelta(k string) (mandel.Delta, bool) {
	switch k {
	case "left", "h":
		return mandel.Pan{DX: -panStep}, true
	case "right", "l":
		return mandel.Pan{DX: panStep}, true
	case "up", "k":
		return mandel.Pan{DY: -panStep}, true
	case "down", "j":
		return mandel.Pan{DY: panStep}, true
	case "+", "=":
		return mandel.ZoomAt{X: m.width / 2, Y: m.height / 2, Factor: zoomFactor}, true
	case "-", "_":
		return mandel.ZoomAt{X: m.width / 2, Y: m.height / 2, Factor: 1.0 / zoomFactor}, true
	case "]":
		return mandel.ScaleIterations{Up: true}, true
	case "[":
		return mandel.ScaleIterations{Up: false}, true
	case "p":
		return mandel.ScaleAA{Up: true}, true
	case "o":
		return mandel.ScaleAA{Up: false}, true
	case "c":
		if m.req.Mode == mandel.ColorGray {
			return mandel.SetMode{Mode: m.color}, true
		}
		return mandel.SetMode{Mode: mandel.ColorGray}, true
	case "x":
		if m.req.Mode == mandel.ColorTrig {
			return mandel.SetMode{Mode: mandel.ColorSmooth}, true
		}
		return mandel.SetMode{Mode: mandel.ColorTrig}, true
	case "r":
		return mandel.HighRes{}, true
	case "s":
		return mandel.Save{}, true
	}
	return nil, false
}

// renderPreview scales the last frame to the terminal, leaving room for the
// header and footer lines.
func (m exploreModel) renderPreview() string {
	if m.buf == nil {
		return ""
	}
	cols, lines := max(m.cols, 1), max(m.rows-4, 1)
	return halfBlocks(thumbnail(m.buf, cols, 2*lines))
}

func (m exploreModel) View() string {
	var b strings.Builder

	re, im := m.req.Center()
	span, _ := m.req.Span()
	b.WriteString(StyleTitle.Render(appName))
	b.WriteString("  ")
	b.WriteString(exploreStatusStyle.Render(fmt.Sprintf("re %.10g  im %.10g  span %.3g  iter %s  aa %d  %s",
		re, im, span, formatCount(int64(m.req.MaxIter)), m.req.AA, m.req.Mode)))
	b.WriteString("\n")
	b.WriteString(progressBar(m.percent, 20))
	if m.status != "" {
		b.WriteString("  ")
		b.WriteString(StyleDim.Render(m.status))
	}
	b.WriteString("\n")
	b.WriteString(m.preview)
	b.WriteString("\n")
	b.WriteString(exploreHelpStyle.Render("←↑↓→ pan  +/- zoom  ]/[ iter  p/o aa  c gray  x palette  b abort  r high-res  s save  q quit"))
	return b.String()
}

// progressBar draws pct as a bar of the given width followed by the number.
func progressBar(pct, width int) string {
	pct = min(max(pct, 0), 100)
	filled := pct * width / 100
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return exploreBarStyle.Render(bar) + fmt.Sprintf(" %3d%%", pct)
}
