package bar

import (
	"errors"
	"fmt"
	"image"
)

// ErrBufferTooLarge is returned when a resize would exceed the buffer limit.
var ErrBufferTooLarge = errors.New("bar buffer too large")

// Buffer is a bar's two-layer pixel store: backgrounds are filled on one
// layer and glyphs drawn on the other, then merged. Its backing arrays
// only ever grow, so a burst of resizes does not reallocate each time.
type Buffer struct {
	limit  int // bytes per layer, 0 for no limit
	bg, fg []byte
	width  int
	height int
}

// NewBuffer returns an empty buffer capped at limit bytes per layer.
func NewBuffer(limit int) *Buffer {
	return &Buffer{limit: limit}
}

// Grow sizes the layers for a width x height frame. The backing arrays
// are reallocated only when the frame does not fit.
func (b *Buffer) Grow(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("invalid buffer size %dx%d", width, height)
	}
	size := width * height * 4
	if size > len(b.bg) {
		if b.limit > 0 && size > b.limit {
			return fmt.Errorf("%w: %dx%d needs %d bytes, limit %d", ErrBufferTooLarge, width, height, size, b.limit)
		}
		b.bg = make([]byte, size)
		b.fg = make([]byte, size)
	}
	b.width, b.height = width, height
	return nil
}

// Cap returns the allocated bytes per layer.
func (b *Buffer) Cap() int {
	return len(b.bg)
}

// Size returns the current frame size.
func (b *Buffer) Size() (int, int) {
	return b.width, b.height
}

// Layers returns cleared background and foreground images for the
// current frame size. Both alias the buffer and are valid until the
// next Grow.
func (b *Buffer) Layers() (bg, fg *image.RGBA) {
	n := b.width * b.height * 4
	clear(b.bg[:n])
	clear(b.fg[:n])
	r := image.Rect(0, 0, b.width, b.height)
	bg = &image.RGBA{Pix: b.bg[:n:n], Stride: b.width * 4, Rect: r}
	fg = &image.RGBA{Pix: b.fg[:n:n], Stride: b.width * 4, Rect: r}
	return bg, fg
}
