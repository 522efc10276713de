package render

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/brendandebeasi/dwlb/pkg/bar"
	"github.com/brendandebeasi/dwlb/pkg/colors"
	"github.com/brendandebeasi/dwlb/pkg/fonts"
	"github.com/brendandebeasi/dwlb/pkg/layout"
	"github.com/brendandebeasi/dwlb/pkg/markup"
)

// canvas draws region backgrounds on bg and glyphs and markers on fg.
type canvas struct {
	bg, fg   *image.RGBA
	engine   *layout.Engine
	face     fonts.Face
	padding  int
	height   int
	baseline int
}

func (r *Renderer) newCanvas(bg, fg *image.RGBA) *canvas {
	m := r.engine.Face().Metrics()
	h := bg.Bounds().Dy()
	return &canvas{
		bg:       bg,
		fg:       fg,
		engine:   r.engine,
		face:     r.engine.Face(),
		padding:  r.padding,
		height:   h,
		baseline: (h + m.Ascent - m.Descent) / 2,
	}
}

func (c *canvas) fill(x0, x1 int, col color.Color) {
	draw.Draw(c.bg, image.Rect(x0, 0, x1, c.height), image.NewUniform(col), image.Point{}, draw.Src)
}

// text fills span with the base background and lays text out inside it.
func (c *canvas) text(span bar.Span, text string, spans []markup.ColorSpan, base colors.Pair) {
	if span.Width() <= 0 {
		return
	}
	c.fill(span.X0, span.X1, base.Bg)
	ops, _ := c.engine.Layout(text, spans, span.Width(), c.padding, base)
	for _, f := range ops.Fills {
		c.fill(span.X0+f.X0, span.X0+f.X1, f.Color)
	}
	for _, g := range ops.Glyphs {
		c.face.DrawGlyph(c.fg, span.X0+g.X, c.baseline, g.Rune, image.NewUniform(g.Color))
	}
}

func (c *canvas) box(r image.Rectangle, col color.Color) {
	draw.Draw(c.fg, r, image.NewUniform(col), image.Point{}, draw.Src)
}

func (c *canvas) clearFg(r image.Rectangle) {
	draw.Draw(c.fg, r, image.Transparent, image.Point{}, draw.Src)
}
