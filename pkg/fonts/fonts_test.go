package fonts

import (
	"image"
	"image/color"
	"testing"
)

func TestCellAdvance(t *testing.T) {
	c := Cell{CellWidth: 8, CellHeight: 16}
	tests := []struct {
		r    rune
		want int
		ok   bool
	}{
		{'a', 8, true},
		{' ', 8, true},
		{'世', 16, true},
		{'\u0301', 0, false},
		{'\x01', 0, false},
	}
	for _, tt := range tests {
		got, ok := c.Advance(tt.r)
		if got != tt.want || ok != tt.ok {
			t.Errorf("Advance(%q) = %d, %v, want %d, %v", tt.r, got, ok, tt.want, tt.ok)
		}
	}
}

func TestCellMetrics(t *testing.T) {
	m := Cell{CellWidth: 8, CellHeight: 20}.Metrics()
	if m.Height != 20 || m.Ascent+m.Descent != 20 {
		t.Errorf("Metrics() = %+v", m)
	}
}

func TestOpenBitmapFallback(t *testing.T) {
	f, err := Open(Options{})
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	defer f.Close()
	if adv, ok := f.Advance('A'); !ok || adv != 7 {
		t.Errorf("Advance('A') = %d, %v, want 7, true", adv, ok)
	}
	if m := f.Metrics(); m.Height != 13 {
		t.Errorf("Metrics().Height = %d, want 13", m.Height)
	}
}

func TestOpenScalable(t *testing.T) {
	f, err := Open(Options{Size: 12, DPI: 96})
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	defer f.Close()
	adv, ok := f.Advance('W')
	if !ok || adv <= 0 {
		t.Fatalf("Advance('W') = %d, %v", adv, ok)
	}
	if m := f.Metrics(); m.Height < 12 || m.Ascent <= 0 {
		t.Errorf("Metrics() = %+v", m)
	}
}

func TestOpenMissingFile(t *testing.T) {
	if _, err := Open(Options{Path: "/nonexistent/font.ttf", Size: 10}); err == nil {
		t.Fatal("Open() with a missing file succeeded")
	}
}

func TestDrawGlyphMarksPixels(t *testing.T) {
	faces := map[string]Face{
		"cell":   Cell{CellWidth: 8, CellHeight: 16},
		"bitmap": mustBasic(t),
	}
	for name, face := range faces {
		t.Run(name, func(t *testing.T) {
			dst := image.NewRGBA(image.Rect(0, 0, 20, 20))
			face.DrawGlyph(dst, 2, face.Metrics().Ascent+1, 'M', image.NewUniform(color.White))
			if !anyOpaque(dst) {
				t.Error("DrawGlyph drew nothing")
			}
		})
	}
}

func mustBasic(t *testing.T) *XFace {
	t.Helper()
	f, err := Open(Options{})
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	return f
}

func anyOpaque(img *image.RGBA) bool {
	for i := 3; i < len(img.Pix); i += 4 {
		if img.Pix[i] != 0 {
			return true
		}
	}
	return false
}
