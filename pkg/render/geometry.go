package render

import "github.com/brendandebeasi/dwlb/pkg/bar"

// Geometry computes region boundaries for b at its current width. Left
// to right: time, tag cells, layout indicator, title, status text, then
// the modules, which are anchored to the right edge. The status text is
// anchored to the first module and the title takes whatever remains.
func (r *Renderer) Geometry(b *bar.Bar) bar.Geometry {
	width := b.Width
	g := bar.Geometry{StatusPadding: r.padding}

	x := 0
	take := func(w int) bar.Span {
		s := bar.Span{X0: x, X1: min(x+w, width)}
		x = s.X1
		return s
	}
	g.Time = take(r.timeW)
	for i, label := range r.opts.Tags {
		if r.opts.HideVacant && !b.Mounted.Has(i) && !b.Occupied.Has(i) && !b.Urgent.Has(i) {
			continue
		}
		w := r.engine.Measure(label, maxWidth, r.padding)
		g.Tags = append(g.Tags, bar.TagCell{Tag: i, Span: take(w)})
	}
	g.Layout = take(r.layoutW)
	left := x

	// Modules from the right; the rightmost keep their place when the
	// bar is too narrow for all of them.
	right := width
	n := len(r.opts.Modules)
	placed := make([]bar.ModuleCell, 0, n)
	for i := n - 1; i >= 0; i-- {
		name := r.opts.Modules[i]
		w := r.widths[name]
		if right-w < left {
			break
		}
		placed = append(placed, bar.ModuleCell{Name: name, Span: bar.Span{X0: right - w, X1: right}})
		right -= w
	}
	for i := len(placed) - 1; i >= 0; i-- {
		g.Modules = append(g.Modules, placed[i])
	}

	sw := r.engine.Measure(b.Status.Text, right-left, r.padding)
	g.Status = bar.Span{X0: right - sw, X1: right}
	g.Title = bar.Span{X0: left, X1: g.Status.X0}
	return g
}
