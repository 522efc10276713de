// Package fonts exposes the glyph metrics and rasterization the bar needs
// behind a small interface, so layout code never touches a font library
// directly.
package fonts

import (
	"image"
	"image/draw"
)

// Metrics are whole-pixel vertical font metrics.
type Metrics struct {
	Height  int
	Ascent  int
	Descent int
}

// Face is a sized font.
type Face interface {
	// Advance returns the horizontal advance of r. ok is false when the
	// face has no glyph for r; such runes are skipped by layout.
	Advance(r rune) (advance int, ok bool)
	// Kern returns the adjustment between prev and r, usually <= 0.
	Kern(prev, r rune) int
	Metrics() Metrics
	// DrawGlyph draws r with its origin at (x, baseline), masking src.
	DrawGlyph(dst draw.Image, x, baseline int, r rune, src image.Image)
}
