package backend

// Event is a compositor notification.
type Event interface {
	event()
}

// OutputAdded announces a new output.
type OutputAdded struct{ Output OutputID }

// OutputRemoved retracts an output; its bar is destroyed.
type OutputRemoved struct{ Output OutputID }

// OutputNamed carries the output's name, which arrives after OutputAdded.
type OutputNamed struct {
	Output OutputID
	Name   string
}

// Configured reports the surface size chosen by the compositor, in
// buffer pixels.
type Configured struct {
	Output        OutputID
	Width, Height int
}

// SurfaceClosed means the compositor destroyed the bar's surface.
type SurfaceClosed struct{ Output OutputID }

// TagCount is the number of tags the window manager uses.
type TagCount struct{ Count int }

// LayoutAnnounced lists a layout symbol the window manager supports.
type LayoutAnnounced struct{ Symbol string }

// TagChanged reports one tag of an output.
type TagChanged struct {
	Output  OutputID
	Tag     int
	State   TagState
	Clients int
	Focused bool
}

// LayoutChanged reports the output's layout index.
type LayoutChanged struct {
	Output OutputID
	Index  int
}

// LayoutSymbol updates the symbol shown for the current layout.
type LayoutSymbol struct {
	Output OutputID
	Symbol string
}

// TitleChanged carries the focused window title.
type TitleChanged struct {
	Output OutputID
	Title  string
}

// ActiveChanged marks the output holding keyboard focus.
type ActiveChanged struct {
	Output OutputID
	Active bool
}

// OutputFrame ends a batch of per-output updates.
type OutputFrame struct{ Output OutputID }

// VisibilityToggled is the window manager's request to toggle the bar.
type VisibilityToggled struct{ Output OutputID }

type SeatAdded struct{ Seat SeatID }

type SeatRemoved struct{ Seat SeatID }

// PointerEntered means the seat's pointer moved onto an output's bar.
type PointerEntered struct {
	Seat   SeatID
	Output OutputID
	X, Y   int
}

type PointerLeft struct{ Seat SeatID }

type PointerMoved struct {
	Seat SeatID
	X, Y int
}

type PointerButton struct {
	Seat    SeatID
	Button  Button
	Pressed bool
}

// PointerAxis is a discrete vertical scroll step; negative is up.
type PointerAxis struct {
	Seat     SeatID
	Discrete int
}

// PointerFrame ends a batch of pointer events.
type PointerFrame struct{ Seat SeatID }

func (OutputAdded) event()       {}
func (OutputRemoved) event()     {}
func (OutputNamed) event()       {}
func (Configured) event()        {}
func (SurfaceClosed) event()     {}
func (TagCount) event()          {}
func (LayoutAnnounced) event()   {}
func (TagChanged) event()        {}
func (LayoutChanged) event()     {}
func (LayoutSymbol) event()      {}
func (TitleChanged) event()      {}
func (ActiveChanged) event()     {}
func (OutputFrame) event()       {}
func (VisibilityToggled) event() {}
func (SeatAdded) event()         {}
func (SeatRemoved) event()       {}
func (PointerEntered) event()    {}
func (PointerLeft) event()       {}
func (PointerMoved) event()      {}
func (PointerButton) event()     {}
func (PointerAxis) event()       {}
func (PointerFrame) event()      {}
