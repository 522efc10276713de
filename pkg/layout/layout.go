// Package layout places glyphs of a text segment within a width budget and
// produces the fill and glyph operations needed to draw it.
package layout

import (
	"image/color"
	"unicode/utf8"

	"github.com/brendandebeasi/dwlb/pkg/colors"
	"github.com/brendandebeasi/dwlb/pkg/fonts"
	"github.com/brendandebeasi/dwlb/pkg/markup"
)

// Fill is a background rectangle spanning [X0, X1) horizontally and the
// full bar height.
type Fill struct {
	X0, X1 int
	Color  color.NRGBA64
}

// Glyph is a rune to draw with its pen origin at X.
type Glyph struct {
	X     int
	Rune  rune
	Color color.NRGBA64
}

// Ops are drawing operations relative to the segment origin.
type Ops struct {
	Fills  []Fill
	Glyphs []Glyph
}

// Empty reports whether there is nothing to draw.
func (o Ops) Empty() bool {
	return len(o.Fills) == 0 && len(o.Glyphs) == 0
}

// Engine lays out text with a single face.
type Engine struct {
	face  fonts.Face
	cache *measureCache
}

// NewEngine returns an engine for face. cacheSize bounds the number of
// memoized measurements; zero disables memoization.
func NewEngine(face fonts.Face, cacheSize int) *Engine {
	e := &Engine{face: face}
	if cacheSize > 0 {
		e.cache = newMeasureCache(cacheSize)
	}
	return e
}

// Face returns the engine's face.
func (e *Engine) Face() fonts.Face {
	return e.face
}

// Layout places text starting at pen position padding, truncating before
// any glyph that would end past maxWidth-padding. Spans switch colors as
// the scan crosses their offsets; base supplies the colors before the
// first span. The returned width includes both paddings and is 0 when no
// glyph was placed, in which case ops are empty.
func (e *Engine) Layout(text string, spans []markup.ColorSpan, maxWidth, padding int, base colors.Pair) (Ops, int) {
	var ops Ops
	if text == "" || maxWidth <= 0 || 2*padding >= maxWidth {
		return ops, 0
	}
	fg, bg := base.Fg, base.Bg
	leadBg := bg
	next := 0
	pen := padding
	var prev rune
	placed := false
	for off, r := range text {
		for next < len(spans) && spans[next].Offset <= off {
			if spans[next].Background {
				bg = spans[next].Color
			} else {
				fg = spans[next].Color
			}
			next++
		}
		adv, ok := e.face.Advance(r)
		if !ok {
			continue
		}
		kern := 0
		if placed {
			kern = e.face.Kern(prev, r)
		}
		if pen+kern+adv+padding > maxWidth {
			break
		}
		if !placed {
			leadBg = bg
		}
		pen += kern
		ops.Fills = append(ops.Fills, Fill{X0: pen, X1: pen + adv, Color: bg})
		ops.Glyphs = append(ops.Glyphs, Glyph{X: pen, Rune: r, Color: fg})
		pen += adv
		prev = r
		placed = true
	}
	if !placed {
		return Ops{}, 0
	}
	ops.Fills = append(ops.Fills,
		Fill{X0: 0, X1: padding, Color: leadBg},
		Fill{X0: pen, X1: pen + padding, Color: bg},
	)
	return ops, pen + padding
}

// Measure returns the width Layout would report, without building ops.
func (e *Engine) Measure(text string, maxWidth, padding int) int {
	if e.cache != nil {
		key := measureKey{text: text, maxWidth: maxWidth, padding: padding}
		if w, ok := e.cache.get(key); ok {
			return w
		}
		w := e.measure(text, maxWidth, padding)
		e.cache.put(key, w)
		return w
	}
	return e.measure(text, maxWidth, padding)
}

func (e *Engine) measure(text string, maxWidth, padding int) int {
	if text == "" || maxWidth <= 0 || 2*padding >= maxWidth {
		return 0
	}
	pen := padding
	var prev rune
	placed := false
	for len(text) > 0 {
		r, size := utf8.DecodeRuneInString(text)
		text = text[size:]
		adv, ok := e.face.Advance(r)
		if !ok {
			continue
		}
		kern := 0
		if placed {
			kern = e.face.Kern(prev, r)
		}
		if pen+kern+adv+padding > maxWidth {
			break
		}
		pen += kern + adv
		prev = r
		placed = true
	}
	if !placed {
		return 0
	}
	return pen + padding
}

// Reset drops memoized measurements, needed after the face changes.
func (e *Engine) Reset(face fonts.Face) {
	e.face = face
	if e.cache != nil {
		e.cache.clear()
	}
}
