package colors

import "image/color"

// TextColorFor picks black or white text for a background. White wins
// whenever it reaches the 3:1 large-text ratio, since the bar font is
// usually bold and small.
func TextColorFor(bg color.NRGBA64) color.NRGBA64 {
	if ContrastRatio(white, bg) >= 3.0 {
		return white
	}
	if ContrastRatio(black, bg) >= 3.0 {
		return black
	}
	if IsLight(bg) {
		return black
	}
	return white
}

// resolvePair parses a theme entry. An empty fg is derived from bg so
// user themes can list backgrounds only.
func resolvePair(fgHex, bgHex string) (Pair, error) {
	bg, err := ParseHex(bgHex)
	if err != nil {
		return Pair{}, err
	}
	if fgHex == "" {
		return Pair{Fg: TextColorFor(bg), Bg: bg}, nil
	}
	fg, err := ParseHex(fgHex)
	if err != nil {
		return Pair{}, err
	}
	return Pair{Fg: fg, Bg: bg}, nil
}
