package colors

import (
	"errors"
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// ErrInvalidHex is returned for color strings that are not 6 or 8 hex digits.
var ErrInvalidHex = errors.New("invalid hex color")

// ParseHex parses "#rrggbb" or "#rrggbbaa" (the leading '#' is optional).
// Each 8-bit channel is scaled to 16 bits by multiplying by 257; a missing
// alpha component means fully opaque.
func ParseHex(s string) (color.NRGBA64, error) {
	hex := strings.TrimPrefix(s, "#")
	if len(hex) != 6 && len(hex) != 8 {
		return color.NRGBA64{}, fmt.Errorf("%w: %q", ErrInvalidHex, s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.NRGBA64{}, fmt.Errorf("%w: %q", ErrInvalidHex, s)
	}
	if len(hex) == 6 {
		v = v<<8 | 0xff
	}
	return color.NRGBA64{
		R: uint16(v>>24&0xff) * 257,
		G: uint16(v>>16&0xff) * 257,
		B: uint16(v>>8&0xff) * 257,
		A: uint16(v&0xff) * 257,
	}, nil
}

// Hex formats c as "#rrggbbaa".
func Hex(c color.NRGBA64) string {
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R>>8, c.G>>8, c.B>>8, c.A>>8)
}
