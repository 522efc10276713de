package loop

import (
	"context"

	"github.com/brendandebeasi/dwlb/pkg/backend"
	"github.com/brendandebeasi/dwlb/pkg/bar"
	"github.com/brendandebeasi/dwlb/pkg/click"
	"github.com/brendandebeasi/dwlb/pkg/logx"
	"pkt.systems/pslog"
)

// pointer tracks seats and routes clicks. A press is acted on at the
// end of its pointer frame; scroll steps act immediately.
func (l *Loop) pointer(ctx context.Context, ev backend.Event) {
	var id backend.SeatID
	switch ev := ev.(type) {
	case backend.PointerEntered:
		id = ev.Seat
	case backend.PointerLeft:
		id = ev.Seat
	case backend.PointerMoved:
		id = ev.Seat
	case backend.PointerButton:
		id = ev.Seat
	case backend.PointerAxis:
		id = ev.Seat
	case backend.PointerFrame:
		id = ev.Seat
	}
	seat := l.Registry.Seat(id)
	if seat == nil {
		seat = l.Registry.AddSeat(id)
	}

	switch ev := ev.(type) {
	case backend.PointerEntered:
		seat.Bar = l.Registry.Get(ev.Output)
		seat.X, seat.Y = ev.X, ev.Y
		l.updateCursor(seat)
	case backend.PointerLeft:
		seat.Bar = nil
		seat.Button = 0
		seat.Cursor = backend.CursorDefault
	case backend.PointerMoved:
		seat.X, seat.Y = ev.X, ev.Y
		l.updateCursor(seat)
	case backend.PointerButton:
		if ev.Pressed {
			seat.Button = ev.Button
		} else {
			seat.Button = 0
		}
	case backend.PointerAxis:
		if seat.Bar != nil {
			l.act(ctx, seat, l.Router.RouteScroll(seat.Bar, seat.X, ev.Discrete))
		}
	case backend.PointerFrame:
		if seat.Button == 0 || seat.Bar == nil {
			return
		}
		l.act(ctx, seat, l.Router.Route(seat.Bar, seat.X, seat.Button))
		seat.Button = 0
	}
}

func (l *Loop) act(ctx context.Context, seat *bar.Seat, a click.Action) {
	if a.Kind == click.None {
		return
	}
	log := logx.WithSeat(logx.WithBar(pslog.Ctx(ctx), seat.Bar), seat.ID)
	log.Debug("click", "action", a.Kind.String(), "x", seat.X)
	click.Do(pslog.ContextWithLogger(ctx, log), a, seat.Bar, l.Backend, l.Spawner)
}

func (l *Loop) updateCursor(seat *bar.Seat) {
	shape := backend.CursorDefault
	if seat.Bar != nil && l.Router.Clickable(seat.Bar, seat.X) {
		shape = backend.CursorPointer
	}
	if shape == seat.Cursor {
		return
	}
	seat.Cursor = shape
	l.Backend.SetCursor(seat.ID, shape)
}
