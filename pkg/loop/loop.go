// Package loop is the bar's event multiplexer. One goroutine owns every
// bar: it waits on the backend, the control socket, the stats ticker,
// the mixer and config reloads, applies what arrived, then redraws each
// dirty bar once.
package loop

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/brendandebeasi/dwlb/pkg/audio"
	"github.com/brendandebeasi/dwlb/pkg/backend"
	"github.com/brendandebeasi/dwlb/pkg/bar"
	"github.com/brendandebeasi/dwlb/pkg/click"
	"github.com/brendandebeasi/dwlb/pkg/daemon"
	"github.com/brendandebeasi/dwlb/pkg/logx"
	"github.com/brendandebeasi/dwlb/pkg/perf"
	"github.com/brendandebeasi/dwlb/pkg/render"
	"github.com/brendandebeasi/dwlb/pkg/stats"
	"pkt.systems/pslog"
)

var (
	// ErrTagCount means the window manager uses a different number of
	// tags than configured.
	ErrTagCount = errors.New("tag count mismatch")
	// ErrBackendClosed means the compositor connection went away.
	ErrBackendClosed = errors.New("backend connection closed")
)

// Options are the per-bar settings applied when an output appears.
type Options struct {
	Tags int
	// Height of a bar in buffer pixels.
	Height         int
	Hidden         bool
	Bottom         bool
	MaxBufferBytes int
}

// Loop wires the components together. Nil channels are never ready.
type Loop struct {
	Backend  backend.Backend
	Registry *bar.Registry
	Renderer *render.Renderer
	Router   *click.Router
	Spawner  click.Spawner
	Handler  *daemon.Handler

	Messages <-chan daemon.Message
	Ticks    <-chan time.Time
	Sampler  stats.Sampler
	Stats    *stats.GlobalStats
	Mixer    audio.Mixer
	Reload   <-chan struct{}
	// OnReload applies a changed config; every bar is redrawn after it.
	OnReload func(ctx context.Context) error

	Opts Options

	layouts []string
}

// Run processes events until ctx is done or a fatal error occurs. On
// return every surface has been released.
func (l *Loop) Run(ctx context.Context) error {
	log := pslog.Ctx(ctx)
	defer l.release()

	events := l.Backend.Events()
	messages := l.Messages
	var mixer <-chan struct{}
	if l.Mixer != nil {
		mixer = l.Mixer.Changes()
	}
	l.sample(ctx)

	for {
		select {
		case <-ctx.Done():
			log.Info("shutting down")
			l.logTimings(log)
			return nil
		case ev, ok := <-events:
			if !ok {
				return ErrBackendClosed
			}
			if err := l.handle(ctx, ev); err != nil {
				return err
			}
		case msg, ok := <-messages:
			if !ok {
				messages = nil
				continue
			}
			log.Debug("control message", "msg", msg.String())
			l.Handler.Apply(ctx, msg)
		case <-l.Ticks:
			l.sample(ctx)
			l.markAll(bar.DirtyModules | bar.DirtyFrame)
		case <-mixer:
			l.markAll(bar.DirtyModules)
		case <-l.Reload:
			l.reload(ctx)
		}
		if err := l.drain(ctx, events); err != nil {
			return err
		}
		l.redraw(ctx)
	}
}

// drain handles every backend event that is already queued.
func (l *Loop) drain(ctx context.Context, events <-chan backend.Event) error {
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return ErrBackendClosed
			}
			if err := l.handle(ctx, ev); err != nil {
				return err
			}
		default:
			return nil
		}
	}
}

func (l *Loop) redraw(ctx context.Context) {
	perf.Track(ctx, "redraw", func() {
		for _, b := range l.Registry.Bars() {
			if b.Dirty() == 0 {
				continue
			}
			if b.Visibility == bar.Visible {
				if err := l.Renderer.Render(ctx, b); err != nil {
					logx.WithBar(pslog.Ctx(ctx), b).Error("render failed", "err", err)
				}
			}
			b.ClearDirty()
		}
	})
}

// logTimings reports render totals, at info level when DWLB_PERF is on.
func (l *Loop) logTimings(log pslog.Logger) {
	s := perf.Snapshot("render")
	if s.Count == 0 {
		return
	}
	kv := []any{"renders", s.Count, "mean", s.Mean().String(), "max", s.Max.String()}
	if perf.IsEnabled() {
		log.Info("render timings", kv...)
		return
	}
	log.Debug("render timings", kv...)
}

func (l *Loop) markAll(d bar.Dirty) {
	for _, b := range l.Registry.Bars() {
		b.MarkDirty(d)
	}
}

func (l *Loop) sample(ctx context.Context) {
	if l.Sampler == nil || l.Stats == nil {
		return
	}
	s, err := l.Sampler.Sample(ctx)
	if err != nil {
		// A partial sample would turn the next rates into totals since boot.
		pslog.Ctx(ctx).Debug("stats sample failed, keeping previous values", "err", err)
		return
	}
	l.Stats.Update(s)
}

func (l *Loop) reload(ctx context.Context) {
	if l.OnReload == nil {
		return
	}
	if err := l.OnReload(ctx); err != nil {
		pslog.Ctx(ctx).Warn("config reload failed, keeping current settings", "err", err)
		return
	}
	pslog.Ctx(ctx).Info("config reloaded")
	l.markAll(bar.DirtyAll)
}

func (l *Loop) release() {
	for _, b := range l.Registry.Bars() {
		b.Hide()
	}
}

func (l *Loop) newBar(ctx context.Context, out backend.OutputID) error {
	anchor := backend.AnchorTop
	if l.Opts.Bottom {
		anchor = backend.AnchorBottom
	}
	b := bar.New(out, l.Opts.Height, anchor, l.Opts.MaxBufferBytes)
	l.Registry.Add(b)
	logx.WithBar(pslog.Ctx(ctx), b).Debug("output added")
	if l.Opts.Hidden {
		return nil
	}
	return b.Show(l.Backend)
}

func (l *Loop) setLayoutSymbol(b *bar.Bar, index int, sym string) {
	for len(l.layouts) <= index {
		l.layouts = append(l.layouts, "")
	}
	l.layouts[index] = sym
	b.SetLayoutSymbol(sym)
}

func (l *Loop) layoutSymbol(index int) string {
	if index >= 0 && index < len(l.layouts) {
		return l.layouts[index]
	}
	return ""
}

// handle applies one backend event.
func (l *Loop) handle(ctx context.Context, ev backend.Event) error {
	switch ev := ev.(type) {
	case backend.TagCount:
		if ev.Count != l.Opts.Tags {
			return fmt.Errorf("%w: window manager has %d, configured %d", ErrTagCount, ev.Count, l.Opts.Tags)
		}
	case backend.LayoutAnnounced:
		l.layouts = append(l.layouts, ev.Symbol)
	case backend.OutputAdded:
		if err := l.newBar(ctx, ev.Output); err != nil {
			return err
		}
	case backend.OutputRemoved:
		if b := l.Registry.Remove(ev.Output); b != nil {
			b.Hide()
			logx.WithBar(pslog.Ctx(ctx), b).Debug("output removed")
		}
	case backend.SeatAdded:
		l.Registry.AddSeat(ev.Seat)
	case backend.SeatRemoved:
		l.Registry.RemoveSeat(ev.Seat)
	case backend.PointerEntered, backend.PointerLeft, backend.PointerMoved,
		backend.PointerButton, backend.PointerAxis, backend.PointerFrame:
		l.pointer(ctx, ev)
	default:
		l.output(ctx, ev)
	}
	return nil
}

// output applies events addressed to one bar.
func (l *Loop) output(ctx context.Context, ev backend.Event) {
	var out backend.OutputID
	switch ev := ev.(type) {
	case backend.OutputNamed:
		out = ev.Output
	case backend.Configured:
		out = ev.Output
	case backend.SurfaceClosed:
		out = ev.Output
	case backend.TagChanged:
		out = ev.Output
	case backend.LayoutChanged:
		out = ev.Output
	case backend.LayoutSymbol:
		out = ev.Output
	case backend.TitleChanged:
		out = ev.Output
	case backend.ActiveChanged:
		out = ev.Output
	case backend.OutputFrame:
		out = ev.Output
	case backend.VisibilityToggled:
		out = ev.Output
	default:
		return
	}
	b := l.Registry.Get(out)
	if b == nil {
		return
	}
	log := logx.WithBar(pslog.Ctx(ctx), b)

	switch ev := ev.(type) {
	case backend.OutputNamed:
		b.Name = ev.Name
	case backend.Configured:
		if err := b.Configure(ev.Width, ev.Height); err != nil {
			log.Error("bar buffer unusable", "err", err)
		}
	case backend.SurfaceClosed:
		b.Hide()
	case backend.TagChanged:
		if ev.Tag < 0 || ev.Tag >= bar.MaxTags {
			log.Warn("ignoring out of range tag", "tag", ev.Tag)
			return
		}
		b.SetTag(ev.Tag, ev.State, ev.Clients)
	case backend.LayoutChanged:
		b.SetLayout(ev.Index)
		if sym := l.layoutSymbol(ev.Index); sym != "" {
			b.SetLayoutSymbol(sym)
		}
	case backend.LayoutSymbol:
		l.setLayoutSymbol(b, b.Layout, ev.Symbol)
	case backend.TitleChanged:
		b.SetWindowTitle(ev.Title)
	case backend.ActiveChanged:
		b.SetSelected(ev.Active)
	case backend.VisibilityToggled:
		if err := b.ToggleVisibility(l.Backend); err != nil {
			log.Error("toggle visibility failed", "err", err)
		}
	}
}
