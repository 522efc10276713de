// Package bar holds per-output bar state and the registry of bars and
// seats shared by the event loop, the control handler and the click
// router.
package bar

import (
	"fmt"

	"github.com/brendandebeasi/dwlb/pkg/backend"
	"github.com/brendandebeasi/dwlb/pkg/markup"
)

// Visibility of a bar's surface.
type Visibility int

const (
	Hidden Visibility = iota
	Visible
)

func (v Visibility) String() string {
	if v == Visible {
		return "visible"
	}
	return "hidden"
}

// Dirty marks which parts of a bar changed since the last render.
type Dirty uint8

const (
	DirtyTags Dirty = 1 << iota
	DirtyLayout
	DirtyTitle
	DirtyStatus
	DirtyModules
	DirtyFrame

	DirtyAll = DirtyTags | DirtyLayout | DirtyTitle | DirtyStatus | DirtyModules | DirtyFrame
)

// Bar is the state of one output's bar. It survives hide/show; only the
// surface is recreated.
type Bar struct {
	Output backend.OutputID
	// Name is empty until the backend names the output.
	Name string

	Width, Height int
	Anchor        backend.Anchor
	Visibility    Visibility
	Selected      bool
	// Configured is set once the current surface has a size.
	Configured bool
	// Invalid is set when the pixel buffer could not grow; the bar is
	// skipped by rendering until a later resize succeeds.
	Invalid bool

	Mounted  Tags
	Occupied Tags
	Urgent   Tags

	Layout       int
	PrevLayout   int
	LayoutSymbol string

	Title string
	// CustomTitle pins Title against window manager updates.
	CustomTitle bool

	Status markup.StatusText

	// Geometry is where the last render placed each region.
	Geometry Geometry
	Buffer   *Buffer

	surface backend.Surface
	dirty   Dirty
}

// New returns a hidden bar for out.
func New(out backend.OutputID, height int, anchor backend.Anchor, bufferLimit int) *Bar {
	return &Bar{
		Output: out,
		Height: height,
		Anchor: anchor,
		Buffer: NewBuffer(bufferLimit),
	}
}

func (b *Bar) String() string {
	if b.Name != "" {
		return b.Name
	}
	return fmt.Sprintf("output-%d", b.Output)
}

// Surface returns the live surface, nil while hidden.
func (b *Bar) Surface() backend.Surface {
	return b.surface
}

// MarkDirty flags parts of the bar for the next render.
func (b *Bar) MarkDirty(d Dirty) {
	b.dirty |= d
}

// Dirty returns the pending flags.
func (b *Bar) Dirty() Dirty {
	return b.dirty
}

// ClearDirty resets the pending flags after a render.
func (b *Bar) ClearDirty() {
	b.dirty = 0
}

// Show maps a surface if the bar is hidden. The first frame is drawn
// once the backend configures the surface.
func (b *Bar) Show(be backend.Backend) error {
	if b.Visibility == Visible {
		return nil
	}
	s, err := be.CreateSurface(b.Output, b.Anchor, b.Height)
	if err != nil {
		return fmt.Errorf("show %s: %w", b, err)
	}
	b.surface = s
	b.Visibility = Visible
	b.Configured = false
	b.MarkDirty(DirtyAll)
	return nil
}

// Hide destroys the surface, keeping all other state.
func (b *Bar) Hide() {
	if b.Visibility == Hidden {
		return
	}
	if b.surface != nil {
		b.surface.Destroy()
		b.surface = nil
	}
	b.Visibility = Hidden
	b.Configured = false
}

// ToggleVisibility shows a hidden bar or hides a visible one.
func (b *Bar) ToggleVisibility(be backend.Backend) error {
	if b.Visibility == Hidden {
		return b.Show(be)
	}
	b.Hide()
	return nil
}

// SetAnchor moves the bar to an edge, re-anchoring a live surface.
func (b *Bar) SetAnchor(a backend.Anchor) {
	if b.Anchor == a {
		return
	}
	b.Anchor = a
	if b.Visibility == Visible && b.surface != nil {
		b.surface.SetAnchor(a)
		b.MarkDirty(DirtyFrame)
	}
}

func (b *Bar) SetTop()    { b.SetAnchor(backend.AnchorTop) }
func (b *Bar) SetBottom() { b.SetAnchor(backend.AnchorBottom) }

// ToggleLocation swaps the anchor edge.
func (b *Bar) ToggleLocation() {
	if b.Anchor == backend.AnchorBottom {
		b.SetTop()
		return
	}
	b.SetBottom()
}

// Configure applies a compositor-chosen size. The buffer only grows; a
// failure marks the bar invalid and is returned for logging.
func (b *Bar) Configure(width, height int) error {
	if b.Configured && width == b.Width && height == b.Height {
		return nil
	}
	b.Width, b.Height = width, height
	b.Configured = true
	if err := b.Buffer.Grow(width, height); err != nil {
		b.Invalid = true
		return fmt.Errorf("configure %s: %w", b, err)
	}
	b.Invalid = false
	b.MarkDirty(DirtyAll)
	return nil
}

// SetTag applies a window manager tag report.
func (b *Bar) SetTag(tag int, state backend.TagState, clients int) {
	b.Mounted = b.Mounted.With(tag, state&backend.TagActive != 0)
	b.Occupied = b.Occupied.With(tag, clients > 0)
	b.Urgent = b.Urgent.With(tag, state&backend.TagUrgent != 0)
	b.MarkDirty(DirtyTags)
}

// SetLayout records a layout change, remembering the previous index.
func (b *Bar) SetLayout(index int) {
	b.PrevLayout = b.Layout
	b.Layout = index
	b.MarkDirty(DirtyLayout)
}

// SetLayoutSymbol updates the layout indicator text.
func (b *Bar) SetLayoutSymbol(sym string) {
	if b.LayoutSymbol == sym {
		return
	}
	b.LayoutSymbol = sym
	b.MarkDirty(DirtyLayout)
}

// SetWindowTitle applies a title from the window manager unless a custom
// title is pinned.
func (b *Bar) SetWindowTitle(title string) {
	if b.CustomTitle {
		return
	}
	b.Title = title
	b.MarkDirty(DirtyTitle)
}

// SetCustomTitle pins a title set over the control socket.
func (b *Bar) SetCustomTitle(title string) {
	b.Title = title
	b.CustomTitle = true
	b.MarkDirty(DirtyTitle)
}

// SetStatus replaces the parsed status text.
func (b *Bar) SetStatus(st markup.StatusText) {
	b.Status = st
	b.MarkDirty(DirtyStatus)
}

// SetSelected records keyboard focus; the middle region changes color.
func (b *Bar) SetSelected(sel bool) {
	if b.Selected == sel {
		return
	}
	b.Selected = sel
	b.MarkDirty(DirtyTags | DirtyTitle)
}
