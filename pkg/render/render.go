// Package render lays out and draws bars: it computes where every region
// goes, composites the background and foreground layers and commits the
// frame to the bar's surface.
package render

import (
	"context"
	"fmt"
	"image"
	"image/draw"
	"time"

	"github.com/brendandebeasi/dwlb/pkg/audio"
	"github.com/brendandebeasi/dwlb/pkg/bar"
	"github.com/brendandebeasi/dwlb/pkg/colors"
	"github.com/brendandebeasi/dwlb/pkg/layout"
	"github.com/brendandebeasi/dwlb/pkg/perf"
	"github.com/brendandebeasi/dwlb/pkg/stats"
)

// Modules drawn from sources other than GlobalStats.
const (
	ModuleVolume = "volume"
	ModuleDate   = "date"
)

// LayoutTemplate sizes the layout indicator.
const LayoutTemplate = "[]="

// Options are the static parts of the bar's appearance.
type Options struct {
	Tags       []string
	HideVacant bool
	// Modules are drawn right of the status text, left to right.
	Modules    []string
	TimeFormat string
	DateFormat string
}

// Renderer draws bars. It is used from the event loop goroutine only.
type Renderer struct {
	engine  *layout.Engine
	palette colors.Palette
	opts    Options
	stats   *stats.GlobalStats
	mixer   audio.Mixer

	padding int
	widths  map[string]int
	timeW   int
	layoutW int

	// Now is the clock for the time and date regions.
	Now func() time.Time
}

// New returns a renderer. st and mixer may be nil, in which case their
// modules show zeros.
func New(engine *layout.Engine, palette colors.Palette, opts Options, st *stats.GlobalStats, mixer audio.Mixer) *Renderer {
	if mixer == nil {
		mixer = audio.Static{}
	}
	if st == nil {
		st = &stats.GlobalStats{}
	}
	r := &Renderer{
		engine:  engine,
		palette: palette,
		opts:    opts,
		stats:   st,
		mixer:   mixer,
		Now:     time.Now,
	}
	r.measureTemplates()
	return r
}

// SetPalette switches colors; bars must be marked dirty by the caller.
func (r *Renderer) SetPalette(p colors.Palette) {
	r.palette = p
}

// SetOptions replaces the appearance options and re-measures regions.
func (r *Renderer) SetOptions(opts Options) {
	r.opts = opts
	r.measureTemplates()
}

// Padding is the horizontal text inset of every region.
func (r *Renderer) Padding() int {
	return r.padding
}

// widestTime is formatted to size the time and date regions.
var widestTime = time.Date(2000, time.December, 28, 23, 59, 59, 0, time.UTC)

// measureTemplates fixes module widths from their widest rendering so
// regions do not move as values change.
func (r *Renderer) measureTemplates() {
	r.padding = r.engine.Face().Metrics().Height * 2 / 5
	measure := func(s string) int {
		return r.engine.Measure(s, maxWidth, r.padding)
	}
	r.timeW = measure(widestTime.Format(r.opts.TimeFormat))
	r.layoutW = measure(LayoutTemplate)
	r.widths = make(map[string]int, len(r.opts.Modules))
	for _, m := range r.opts.Modules {
		switch m {
		case ModuleVolume:
			r.widths[m] = measure(audio.Template)
		case ModuleDate:
			r.widths[m] = measure(widestTime.Format(r.opts.DateFormat))
		default:
			r.widths[m] = measure(stats.Template(m))
		}
	}
}

const maxWidth = 1 << 30

func (r *Renderer) moduleText(name string, now time.Time) string {
	switch name {
	case ModuleVolume:
		return r.mixer.Levels().Text()
	case ModuleDate:
		return now.Format(r.opts.DateFormat)
	}
	return r.stats.Text(name)
}

// Render draws b and commits the frame. Hidden, unconfigured and invalid
// bars are skipped.
func (r *Renderer) Render(ctx context.Context, b *bar.Bar) error {
	s := b.Surface()
	if b.Visibility != bar.Visible || !b.Configured || b.Invalid || s == nil {
		return nil
	}
	t := perf.Start(ctx, "render", "output", uint32(b.Output))
	defer t.Stop()

	now := r.Now()
	g := r.Geometry(b)
	b.Geometry = g

	bgLayer, fgLayer := b.Buffer.Layers()
	c := r.newCanvas(bgLayer, fgLayer)

	c.text(g.Time, now.Format(r.opts.TimeFormat), nil, r.palette.Time)
	for _, cell := range g.Tags {
		r.drawTag(c, b, cell)
	}
	c.text(g.Layout, b.LayoutSymbol, nil, r.palette.Inactive)

	middle := r.palette.Middle
	if b.Selected {
		middle = r.palette.MiddleSel
	}
	c.text(g.Title, b.Title, nil, middle)
	c.text(g.Status, b.Status.Text, b.Status.Colors, r.palette.Inactive)

	for _, m := range g.Modules {
		pair := r.palette.Inactive
		if m.Name == ModuleDate {
			pair = r.palette.Active
		}
		c.text(m.Span, r.moduleText(m.Name, now), nil, pair)
	}

	draw.Draw(bgLayer, bgLayer.Bounds(), fgLayer, image.Point{}, draw.Over)
	if err := s.Commit(bgLayer); err != nil {
		return fmt.Errorf("commit %s: %w", b, err)
	}
	return nil
}

func (r *Renderer) drawTag(c *canvas, b *bar.Bar, cell bar.TagCell) {
	active := b.Mounted.Has(cell.Tag)
	occupied := b.Occupied.Has(cell.Tag)
	urgent := b.Urgent.Has(cell.Tag)

	pair := r.palette.Inactive
	switch {
	case urgent:
		pair = r.palette.Urgent
	case active:
		pair = r.palette.Active
	case occupied:
		pair = r.palette.Occupied
	}
	label := ""
	if cell.Tag < len(r.opts.Tags) {
		label = r.opts.Tags[cell.Tag]
	}
	c.text(cell.Span, label, nil, pair)

	if r.opts.HideVacant || !occupied {
		return
	}
	h := r.engine.Face().Metrics().Height
	boxs := h / 9
	boxw := h/6 + 2
	x := cell.X0 + boxs
	c.box(image.Rect(x, boxs, x+boxw, boxs+boxw), pair.Fg)
	if (!b.Selected || !active) && boxw >= 3 {
		c.clearFg(image.Rect(x+1, boxs+1, x+boxw-1, boxs+boxw-1))
	}
}
