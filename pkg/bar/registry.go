package bar

import (
	"github.com/brendandebeasi/dwlb/pkg/backend"
)

// Target tokens understood by Resolve.
const (
	TargetAll      = "all"
	TargetSelected = "selected"
)

// Seat is a pointer's state relative to the bars.
type Seat struct {
	ID   backend.SeatID
	X, Y int
	// Button is a press waiting for the end of its pointer frame.
	Button backend.Button
	// Bar is under the pointer, nil when the pointer is elsewhere.
	Bar    *Bar
	Cursor backend.CursorShape
}

// Registry owns every bar and seat. It is used from the event loop
// goroutine only.
type Registry struct {
	bars  []*Bar
	seats map[backend.SeatID]*Seat
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{seats: make(map[backend.SeatID]*Seat)}
}

// Add registers b, replacing any bar for the same output.
func (r *Registry) Add(b *Bar) {
	for i, old := range r.bars {
		if old.Output == b.Output {
			r.bars[i] = b
			return
		}
	}
	r.bars = append(r.bars, b)
}

// Remove drops the bar for out and detaches any seat pointing at it.
func (r *Registry) Remove(out backend.OutputID) *Bar {
	for i, b := range r.bars {
		if b.Output != out {
			continue
		}
		r.bars = append(r.bars[:i], r.bars[i+1:]...)
		for _, s := range r.seats {
			if s.Bar == b {
				s.Bar = nil
				s.Button = 0
			}
		}
		return b
	}
	return nil
}

// Get returns the bar for out.
func (r *Registry) Get(out backend.OutputID) *Bar {
	for _, b := range r.bars {
		if b.Output == out {
			return b
		}
	}
	return nil
}

// Bars returns all bars in announcement order.
func (r *Registry) Bars() []*Bar {
	return r.bars
}

// Selected returns the bar holding focus, if any.
func (r *Registry) Selected() *Bar {
	for _, b := range r.bars {
		if b.Selected {
			return b
		}
	}
	return nil
}

// ByName returns the bar whose output has the given name.
func (r *Registry) ByName(name string) *Bar {
	if name == "" {
		return nil
	}
	for _, b := range r.bars {
		if b.Name == name {
			return b
		}
	}
	return nil
}

// Resolve maps a control target token to bars: "all", "selected" or an
// output name. Unknown names resolve to nothing.
func (r *Registry) Resolve(target string) []*Bar {
	switch target {
	case TargetAll:
		return append([]*Bar(nil), r.bars...)
	case TargetSelected:
		if b := r.Selected(); b != nil {
			return []*Bar{b}
		}
		return nil
	}
	if b := r.ByName(target); b != nil {
		return []*Bar{b}
	}
	return nil
}

// AddSeat registers a seat.
func (r *Registry) AddSeat(id backend.SeatID) *Seat {
	s := &Seat{ID: id}
	r.seats[id] = s
	return s
}

// RemoveSeat drops a seat.
func (r *Registry) RemoveSeat(id backend.SeatID) {
	delete(r.seats, id)
}

// Seat returns a registered seat.
func (r *Registry) Seat(id backend.SeatID) *Seat {
	return r.seats[id]
}
