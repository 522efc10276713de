package fonts

import (
	"fmt"
	"image"
	"image/draw"
	"os"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// XFace adapts a golang.org/x/image font.Face.
type XFace struct {
	face font.Face
}

// NewXFace wraps face.
func NewXFace(face font.Face) *XFace {
	return &XFace{face: face}
}

// Options select and size a font.
type Options struct {
	Path string  // TrueType/OpenType file; empty selects the bundled Go Bold
	Size float64 // points
	DPI  float64
}

// Open loads the face described by opts. Size 0 selects the fixed 7x13
// bitmap face.
func Open(opts Options) (*XFace, error) {
	if opts.Size <= 0 {
		return NewXFace(basicfont.Face7x13), nil
	}
	data := gobold.TTF
	if opts.Path != "" {
		b, err := os.ReadFile(opts.Path)
		if err != nil {
			return nil, fmt.Errorf("read font %s: %w", opts.Path, err)
		}
		data = b
	}
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	dpi := opts.DPI
	if dpi <= 0 {
		dpi = 96
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    opts.Size,
		DPI:     dpi,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("create face: %w", err)
	}
	return NewXFace(face), nil
}

func (x *XFace) Advance(r rune) (int, bool) {
	adv, ok := x.face.GlyphAdvance(r)
	if !ok {
		return 0, false
	}
	return adv.Round(), true
}

func (x *XFace) Kern(prev, r rune) int {
	return x.face.Kern(prev, r).Round()
}

func (x *XFace) Metrics() Metrics {
	m := x.face.Metrics()
	return Metrics{
		Height:  m.Height.Ceil(),
		Ascent:  m.Ascent.Ceil(),
		Descent: m.Descent.Ceil(),
	}
}

func (x *XFace) DrawGlyph(dst draw.Image, px, baseline int, r rune, src image.Image) {
	dr, mask, maskp, _, ok := x.face.Glyph(fixed.P(px, baseline), r)
	if !ok {
		return
	}
	draw.DrawMask(dst, dr, src, image.Point{}, mask, maskp, draw.Over)
}

// Close releases the underlying face.
func (x *XFace) Close() error {
	return x.face.Close()
}
