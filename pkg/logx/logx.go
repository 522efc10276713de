// Package logx holds logger helpers shared by the bar packages.
package logx

import (
	"context"

	"github.com/brendandebeasi/dwlb/pkg/backend"
	"github.com/brendandebeasi/dwlb/pkg/bar"
	"pkt.systems/pslog"
)

// Ctx returns the logger bound to the provided context.
func Ctx(ctx context.Context) pslog.Logger {
	return pslog.Ctx(ctx)
}

// WithBar annotates the logger with the bar's output id and name.
func WithBar(log pslog.Logger, b *bar.Bar) pslog.Logger {
	if b == nil {
		return log
	}
	log = log.With("output", uint32(b.Output))
	if b.Name != "" {
		log = log.With("bar", b.Name)
	}
	return log
}

// WithSeat annotates the logger with a seat id.
func WithSeat(log pslog.Logger, id backend.SeatID) pslog.Logger {
	return log.With("seat", uint32(id))
}
