package fonts

import (
	"image"
	"image/draw"

	"github.com/mattn/go-runewidth"
)

// Cell is a monospace face where every rune occupies runewidth cells of
// CellWidth pixels. Zero-width runes count as missing glyphs. Glyphs are
// drawn as solid boxes, which is enough for headless rendering checks.
type Cell struct {
	CellWidth  int
	CellHeight int
	// Kerning, if set, is applied between every pair of runes.
	Kerning int
}

func (c Cell) Advance(r rune) (int, bool) {
	w := runewidth.RuneWidth(r)
	if w == 0 {
		return 0, false
	}
	return w * c.CellWidth, true
}

func (c Cell) Kern(prev, r rune) int {
	return c.Kerning
}

func (c Cell) Metrics() Metrics {
	descent := c.CellHeight / 5
	return Metrics{
		Height:  c.CellHeight,
		Ascent:  c.CellHeight - descent,
		Descent: descent,
	}
}

func (c Cell) DrawGlyph(dst draw.Image, x, baseline int, r rune, src image.Image) {
	adv, ok := c.Advance(r)
	if !ok || r == ' ' {
		return
	}
	m := c.Metrics()
	rect := image.Rect(x+1, baseline-m.Ascent+1, x+adv-1, baseline)
	draw.Draw(dst, rect, src, image.Point{}, draw.Over)
}
