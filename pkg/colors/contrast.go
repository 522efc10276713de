package colors

import (
	"image/color"
	"math"
)

var (
	white = color.NRGBA64{R: 0xffff, G: 0xffff, B: 0xffff, A: 0xffff}
	black = color.NRGBA64{A: 0xffff}
)

// Luminance returns the WCAG relative luminance of c, ignoring alpha.
// The result is between 0 (black) and 1 (white).
func Luminance(c color.NRGBA64) float64 {
	r := gammaSRGB(float64(c.R) / 0xffff)
	g := gammaSRGB(float64(c.G) / 0xffff)
	b := gammaSRGB(float64(c.B) / 0xffff)
	return 0.2126*r + 0.7152*g + 0.0722*b
}

func gammaSRGB(val float64) float64 {
	if val <= 0.03928 {
		return val / 12.92
	}
	return math.Pow((val+0.055)/1.055, 2.4)
}

// ContrastRatio returns the WCAG contrast ratio between two colors,
// from 1 (none) to 21 (black on white).
func ContrastRatio(fg, bg color.NRGBA64) float64 {
	l1, l2 := Luminance(fg), Luminance(bg)
	if l1 < l2 {
		l1, l2 = l2, l1
	}
	return (l1 + 0.05) / (l2 + 0.05)
}

// IsLight reports whether c is closer to white than black.
func IsLight(c color.NRGBA64) bool {
	return Luminance(c) > 0.5
}

// EnsureContrast moves fg away from bg in 10% steps until minRatio is met,
// falling back to black or white. Alpha of fg is preserved.
func EnsureContrast(fg, bg color.NRGBA64, minRatio float64) color.NRGBA64 {
	if ContrastRatio(fg, bg) >= minRatio {
		return fg
	}
	lighter := Luminance(fg) > Luminance(bg)
	for step := 1; step <= 10; step++ {
		amount := float64(step) / 10
		var adjusted color.NRGBA64
		if lighter {
			adjusted = Lighten(fg, amount)
		} else {
			adjusted = Darken(fg, amount)
		}
		if ContrastRatio(adjusted, bg) >= minRatio {
			return adjusted
		}
	}
	out := white
	if IsLight(bg) {
		out = black
	}
	out.A = fg.A
	return out
}

// Lighten moves each channel of c toward white by amount (0..1).
func Lighten(c color.NRGBA64, amount float64) color.NRGBA64 {
	return color.NRGBA64{
		R: clamp16(float64(c.R) + float64(0xffff-c.R)*amount),
		G: clamp16(float64(c.G) + float64(0xffff-c.G)*amount),
		B: clamp16(float64(c.B) + float64(0xffff-c.B)*amount),
		A: c.A,
	}
}

// Darken scales each channel of c toward black by amount (0..1).
func Darken(c color.NRGBA64, amount float64) color.NRGBA64 {
	m := 1 - amount
	return color.NRGBA64{
		R: clamp16(float64(c.R) * m),
		G: clamp16(float64(c.G) * m),
		B: clamp16(float64(c.B) * m),
		A: c.A,
	}
}

func clamp16(v float64) uint16 {
	if v <= 0 {
		return 0
	}
	if v >= 0xffff {
		return 0xffff
	}
	return uint16(v + 0.5)
}
