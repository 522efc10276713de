// Package backend defines what the bar needs from a display server:
// output and seat notifications, layer surfaces to draw into, and the
// window manager requests a click can trigger.
package backend

import "image"

// OutputID identifies a display output for the lifetime of the connection.
type OutputID uint32

// SeatID identifies an input seat.
type SeatID uint32

// Anchor is the screen edge a bar is attached to.
type Anchor int

const (
	AnchorTop Anchor = iota
	AnchorBottom
)

func (a Anchor) String() string {
	if a == AnchorBottom {
		return "bottom"
	}
	return "top"
}

// CursorShape is the pointer image shown over a bar.
type CursorShape int

const (
	CursorDefault CursorShape = iota
	CursorPointer
)

// Button codes follow linux/input-event-codes.h.
type Button uint32

const (
	ButtonLeft   Button = 0x110
	ButtonRight  Button = 0x111
	ButtonMiddle Button = 0x112
)

// TagState flags reported for each tag of an output.
type TagState uint32

const (
	TagActive TagState = 1 << iota
	TagUrgent
)

// Backend is a connection to the compositor.
type Backend interface {
	// Events delivers notifications in compositor order. The channel is
	// closed when the connection is lost.
	Events() <-chan Event
	// CreateSurface maps a layer surface of the given height on out.
	// The surface reports its size with a Configured event.
	CreateSurface(out OutputID, anchor Anchor, height int) (Surface, error)
	// SetTags asks the window manager to view mask on out. With
	// toggleTagset set, the alternate tag set is selected first, as
	// dwl's view() does.
	SetTags(out OutputID, mask uint32, toggleTagset bool)
	SetLayout(out OutputID, index int)
	SetCursor(seat SeatID, shape CursorShape)
	Close() error
}

// Surface is a mapped layer surface.
type Surface interface {
	SetAnchor(anchor Anchor)
	// Commit presents img, which must match the configured size.
	Commit(img *image.RGBA) error
	Destroy()
}
