package cli

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/gogpu/mandel"
)

// fakeDriver records deltas and applies mode changes so toggles can be
// observed.
type fakeDriver struct {
	req     mandel.RenderRequest
	applied []mandel.Delta
	refuse  bool
	aborts  int
}

func (d *fakeDriver) Apply(delta mandel.Delta) bool {
	if d.refuse {
		return false
	}
	d.applied = append(d.applied, delta)
	if m, ok := delta.(mandel.SetMode); ok {
		d.req.Mode = m.Mode
	}
	return true
}

func (d *fakeDriver) Abort() bool {
	d.aborts++
	return true
}

func (d *fakeDriver) Request() mandel.RenderRequest { return d.req }

func TestKeyDelta(t *testing.T) {
	m := newExploreModel(&fakeDriver{req: mandel.DefaultRequest()}, 200, 100)

	tests := []struct {
		key  string
		want mandel.Delta
	}{
		{"left", mandel.Pan{DX: -panStep}},
		{"right", mandel.Pan{DX: panStep}},
		{"up", mandel.Pan{DY: -panStep}},
		{"down", mandel.Pan{DY: panStep}},
		{"+", mandel.ZoomAt{X: 100, Y: 50, Factor: 2}},
		{"-", mandel.ZoomAt{X: 100, Y: 50, Factor: 0.5}},
		{"]", mandel.ScaleIterations{Up: true}},
		{"[", mandel.ScaleIterations{Up: false}},
		{"p", mandel.ScaleAA{Up: true}},
		{"o", mandel.ScaleAA{Up: false}},
		{"c", mandel.SetMode{Mode: mandel.ColorGray}},
		{"x", mandel.SetMode{Mode: mandel.ColorSmooth}},
		{"r", mandel.HighRes{}},
		{"s", mandel.Save{}},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got, ok := m.keyDelta(tt.key)
			if !ok {
				t.Fatalf("keyDelta(%q) not mapped", tt.key)
			}
			if got != tt.want {
				t.Errorf("keyDelta(%q) = %#v, want %#v", tt.key, got, tt.want)
			}
		})
	}

	if _, ok := m.keyDelta("z"); ok {
		t.Error("keyDelta(\"z\") mapped, want unmapped")
	}
}

func TestGrayToggleRestoresPalette(t *testing.T) {
	d := &fakeDriver{req: mandel.DefaultRequest()}
	d.req.Mode = mandel.ColorSmooth
	var model tea.Model = newExploreModel(d, 100, 100)

	press := func(k string) {
		model, _ = model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)})
	}

	press("c")
	if d.req.Mode != mandel.ColorGray {
		t.Fatalf("mode after c = %v, want gray", d.req.Mode)
	}
	press("c")
	if d.req.Mode != mandel.ColorSmooth {
		t.Errorf("mode after second c = %v, want smooth", d.req.Mode)
	}
}

func TestExploreUpdate(t *testing.T) {
	d := &fakeDriver{req: mandel.DefaultRequest()}
	var model tea.Model = newExploreModel(d, 40, 20)

	model, _ = model.Update(tea.WindowSizeMsg{Width: 20, Height: 10})
	model, _ = model.Update(progressMsg(42))
	if got := model.(exploreModel).percent; got != 42 {
		t.Errorf("percent = %d, want 42", got)
	}

	buf := mandel.NewPixelBuffer(40, 20)
	model, _ = model.Update(frameMsg{buf: buf, stats: mandel.Stats{Generation: 3, Elapsed: 12 * time.Millisecond}})
	m := model.(exploreModel)
	if m.buf != buf || m.percent != 100 {
		t.Errorf("frame not recorded: buf=%p percent=%d", m.buf, m.percent)
	}
	if m.preview == "" {
		t.Error("preview empty after frame")
	}
	if !strings.Contains(m.View(), "12ms") {
		t.Errorf("view missing elapsed time:\n%s", m.View())
	}

	model, _ = model.Update(savedMsg("out/x.png"))
	if !strings.Contains(model.View(), "saved out/x.png") {
		t.Error("view missing save status")
	}
}

func TestExploreKeys(t *testing.T) {
	d := &fakeDriver{req: mandel.DefaultRequest()}
	var model tea.Model = newExploreModel(d, 40, 20)

	model, _ = model.Update(tea.KeyMsg{Type: tea.KeyRight})
	if len(d.applied) != 1 || d.applied[0] != (mandel.Pan{DX: panStep}) {
		t.Errorf("applied = %#v, want one right pan", d.applied)
	}

	model, _ = model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("b")})
	if d.aborts != 1 {
		t.Errorf("aborts = %d, want 1", d.aborts)
	}

	d.refuse = true
	model, _ = model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("-")})
	if m := model.(exploreModel); m.status != "zoom limit reached" {
		t.Errorf("status = %q, want zoom limit reached", m.status)
	}

	_, cmd := model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("q returned no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q did not quit")
	}
}

func TestProgressBar(t *testing.T) {
	tests := []struct {
		pct    int
		filled int
	}{
		{0, 0}, {50, 10}, {100, 20}, {150, 20}, {-5, 0},
	}
	for _, tt := range tests {
		bar := progressBar(tt.pct, 20)
		if n := strings.Count(bar, "█"); n != tt.filled {
			t.Errorf("progressBar(%d) filled = %d, want %d", tt.pct, n, tt.filled)
		}
	}
}
