package loop

import (
	"bytes"
	"context"
	"errors"
	"image"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/brendandebeasi/dwlb/pkg/backend"
	"github.com/brendandebeasi/dwlb/pkg/backend/headless"
	"github.com/brendandebeasi/dwlb/pkg/bar"
	"github.com/brendandebeasi/dwlb/pkg/click"
	"github.com/brendandebeasi/dwlb/pkg/colors"
	"github.com/brendandebeasi/dwlb/pkg/daemon"
	"github.com/brendandebeasi/dwlb/pkg/fonts"
	"github.com/brendandebeasi/dwlb/pkg/layout"
	"github.com/brendandebeasi/dwlb/pkg/markup"
	"github.com/brendandebeasi/dwlb/pkg/render"
	"github.com/brendandebeasi/dwlb/pkg/stats"
	"pkt.systems/pslog"
)

var testFace = fonts.Cell{CellWidth: 8, CellHeight: 16}

type fakeSurface struct {
	mu        sync.Mutex
	commits   int
	destroyed bool
}

func (s *fakeSurface) SetAnchor(backend.Anchor) {}

func (s *fakeSurface) Commit(img *image.RGBA) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commits++
	return nil
}

func (s *fakeSurface) Destroy() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.destroyed = true
}

func (s *fakeSurface) state() (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commits, s.destroyed
}

// fakeBackend acts like a compositor that configures every surface at
// 800 pixels wide as soon as it is created.
type fakeBackend struct {
	events chan backend.Event

	mu       sync.Mutex
	surfaces []*fakeSurface
	tags     []uint32
	cursors  []backend.CursorShape
}

func newFakeBackend(evs ...backend.Event) *fakeBackend {
	f := &fakeBackend{events: make(chan backend.Event, 64)}
	for _, ev := range evs {
		f.events <- ev
	}
	return f
}

func (f *fakeBackend) Events() <-chan backend.Event { return f.events }

func (f *fakeBackend) CreateSurface(out backend.OutputID, a backend.Anchor, h int) (backend.Surface, error) {
	s := &fakeSurface{}
	f.mu.Lock()
	f.surfaces = append(f.surfaces, s)
	f.mu.Unlock()
	f.events <- backend.Configured{Output: out, Width: 800, Height: h}
	return s, nil
}

func (f *fakeBackend) SetTags(out backend.OutputID, mask uint32, toggle bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tags = append(f.tags, mask)
}

func (f *fakeBackend) SetLayout(backend.OutputID, int) {}

func (f *fakeBackend) SetCursor(seat backend.SeatID, shape backend.CursorShape) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cursors = append(f.cursors, shape)
}

func (f *fakeBackend) Close() error { return nil }

func (f *fakeBackend) surface(i int) *fakeSurface {
	f.mu.Lock()
	defer f.mu.Unlock()
	if i < len(f.surfaces) {
		return f.surfaces[i]
	}
	return nil
}

func (f *fakeBackend) tagCalls() []uint32 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]uint32(nil), f.tags...)
}

type countingSampler struct{ calls atomic.Int32 }

func (c *countingSampler) Sample(ctx context.Context) (stats.Sample, error) {
	n := c.calls.Add(1)
	return stats.Sample{Time: time.Unix(int64(n), 0), MemTotal: 100, MemAvailable: 50}, nil
}

// failingSampler fails every call after the first.
type failingSampler struct{ calls atomic.Int32 }

func (f *failingSampler) Sample(ctx context.Context) (stats.Sample, error) {
	if f.calls.Add(1) > 1 {
		return stats.Sample{Time: time.Now()}, errors.New("cpu times: unavailable")
	}
	return stats.Sample{Time: time.Now(), MemTotal: 100, MemAvailable: 50, NetRx: 1 << 30}, nil
}

func newLoop(be backend.Backend, tags int) *Loop {
	reg := bar.NewRegistry()
	names := []string{"1", "2", "3"}[:tags]
	r := render.New(layout.NewEngine(testFace, 64), colors.DefaultPalette(), render.Options{
		Tags:       names,
		Modules:    []string{render.ModuleDate},
		TimeFormat: "15:04:05",
		DateFormat: "02-01-2006",
	}, nil, nil)
	return &Loop{
		Backend:  be,
		Registry: reg,
		Renderer: r,
		Router:   &click.Router{FloatingLayout: 2},
		Handler: &daemon.Handler{
			Registry: reg,
			Backend:  be,
			Parser:   markup.NewParser(testFace, colors.DefaultPalette().Inactive),
		},
		Opts: Options{Tags: tags, Height: 16},
	}
}

// start runs l in the background. The returned function cancels the
// loop and returns its error once it has stopped.
func start(t *testing.T, l *Loop) func() error {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- l.Run(ctx) }()
	return func() error {
		t.Helper()
		cancel()
		select {
		case err := <-done:
			return err
		case <-time.After(5 * time.Second):
			t.Fatal("loop did not stop")
			return nil
		}
	}
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func waitCommits(t *testing.T, be *fakeBackend, n int) {
	t.Helper()
	waitFor(t, "commit", func() bool {
		s := be.surface(0)
		if s == nil {
			return false
		}
		c, _ := s.state()
		return c >= n
	})
}

func TestTagCountMismatch(t *testing.T) {
	be := newFakeBackend(backend.TagCount{Count: 5})
	err := newLoop(be, 3).Run(context.Background())
	if !errors.Is(err, ErrTagCount) {
		t.Fatalf("Run = %v, want ErrTagCount", err)
	}
}

func TestBackendClosed(t *testing.T) {
	be := newFakeBackend(backend.TagCount{Count: 3})
	close(be.events)
	err := newLoop(be, 3).Run(context.Background())
	if !errors.Is(err, ErrBackendClosed) {
		t.Fatalf("Run = %v, want ErrBackendClosed", err)
	}
}

func TestBurstRendersOnce(t *testing.T) {
	be := newFakeBackend(
		backend.TagCount{Count: 3},
		backend.LayoutAnnounced{Symbol: "[]="},
		backend.LayoutAnnounced{Symbol: "><>"},
		backend.OutputAdded{Output: 1},
		backend.OutputNamed{Output: 1, Name: "DP-1"},
		backend.TagChanged{Output: 1, Tag: 0, State: backend.TagActive, Clients: 2},
		backend.TagChanged{Output: 1, Tag: 1, Clients: 1},
		backend.TagChanged{Output: 1, Tag: 2, State: backend.TagUrgent},
		backend.LayoutChanged{Output: 1, Index: 1},
		backend.TitleChanged{Output: 1, Title: "vim"},
		backend.ActiveChanged{Output: 1, Active: true},
		backend.OutputFrame{Output: 1},
	)
	l := newLoop(be, 3)
	stop := start(t, l)
	waitCommits(t, be, 1)
	if err := stop(); err != nil {
		t.Fatal(err)
	}

	commits, destroyed := be.surface(0).state()
	if commits != 1 {
		t.Errorf("commits = %d, want 1", commits)
	}
	if !destroyed {
		t.Error("surface not released on shutdown")
	}
	b := l.Registry.Get(1)
	if b == nil {
		t.Fatal("no bar for output 1")
	}
	if b.Name != "DP-1" || b.Title != "vim" || !b.Selected {
		t.Errorf("bar = %q title %q selected %v", b.Name, b.Title, b.Selected)
	}
	if !b.Mounted.Has(0) || !b.Occupied.Has(1) || !b.Urgent.Has(2) {
		t.Errorf("tags mounted %b occupied %b urgent %b", b.Mounted, b.Occupied, b.Urgent)
	}
	if b.Layout != 1 || b.LayoutSymbol != "><>" {
		t.Errorf("layout = %d %q", b.Layout, b.LayoutSymbol)
	}
}

func TestLayoutSymbolReplacesAnnouncedName(t *testing.T) {
	be := newFakeBackend(
		backend.TagCount{Count: 3},
		backend.LayoutAnnounced{Symbol: "[]="},
		backend.LayoutAnnounced{Symbol: "[M]"},
		backend.OutputAdded{Output: 1},
		backend.LayoutChanged{Output: 1, Index: 1},
		backend.LayoutSymbol{Output: 1, Symbol: "[3]"},
		backend.LayoutChanged{Output: 1, Index: 0},
		backend.LayoutChanged{Output: 1, Index: 1},
	)
	l := newLoop(be, 3)
	stop := start(t, l)
	waitCommits(t, be, 1)
	if err := stop(); err != nil {
		t.Fatal(err)
	}
	if got := l.Registry.Get(1).LayoutSymbol; got != "[3]" {
		t.Errorf("LayoutSymbol = %q, want [3]", got)
	}
	if l.layouts[1] != "[3]" {
		t.Errorf("layouts = %q", l.layouts)
	}
}

func TestControlMessage(t *testing.T) {
	be := newFakeBackend(backend.TagCount{Count: 3}, backend.OutputAdded{Output: 1})
	msgs := make(chan daemon.Message)
	l := newLoop(be, 3)
	l.Messages = msgs
	stop := start(t, l)
	waitCommits(t, be, 1)

	msgs <- daemon.Message{Command: daemon.CmdStatus, Target: "all", Arg: "^fg(ff0000)hi^fg()"}
	waitCommits(t, be, 2)
	if err := stop(); err != nil {
		t.Fatal(err)
	}
	if got := l.Registry.Get(1).Status.Text; got != "hi" {
		t.Errorf("status = %q, want hi", got)
	}
}

func TestHiddenUntilToggled(t *testing.T) {
	be := newFakeBackend(backend.TagCount{Count: 3}, backend.OutputAdded{Output: 1})
	l := newLoop(be, 3)
	l.Opts.Hidden = true
	stop := start(t, l)

	be.events <- backend.VisibilityToggled{Output: 1}
	waitCommits(t, be, 1)
	if err := stop(); err != nil {
		t.Fatal(err)
	}
	be.mu.Lock()
	n := len(be.surfaces)
	be.mu.Unlock()
	if n != 1 {
		t.Errorf("surfaces created = %d, want 1", n)
	}
}

func TestTickSamplesAndRedraws(t *testing.T) {
	be := newFakeBackend(backend.TagCount{Count: 3}, backend.OutputAdded{Output: 1})
	ticks := make(chan time.Time)
	sampler := &countingSampler{}
	l := newLoop(be, 3)
	l.Ticks = ticks
	l.Sampler = sampler
	l.Stats = &stats.GlobalStats{}
	stop := start(t, l)
	waitCommits(t, be, 1)

	ticks <- time.Now()
	waitCommits(t, be, 2)
	if err := stop(); err != nil {
		t.Fatal(err)
	}
	if got := sampler.calls.Load(); got != 2 {
		t.Errorf("samples = %d, want 2", got)
	}
	if !l.Stats.Ready() {
		t.Error("stats not ready after two samples")
	}
}

func TestFailedSampleKeepsPreviousStats(t *testing.T) {
	be := newFakeBackend(backend.TagCount{Count: 3}, backend.OutputAdded{Output: 1})
	ticks := make(chan time.Time)
	l := newLoop(be, 3)
	l.Ticks = ticks
	l.Sampler = &failingSampler{}
	l.Stats = &stats.GlobalStats{}
	stop := start(t, l)
	waitCommits(t, be, 1)

	ticks <- time.Now()
	waitCommits(t, be, 2)
	if err := stop(); err != nil {
		t.Fatal(err)
	}
	if l.Stats.Ready() {
		t.Error("failed sample counted towards rates")
	}
	if got := l.Stats.MemPercent(); got != 50 {
		t.Errorf("MemPercent() = %d, want 50 from the last good sample", got)
	}
}

func TestShutdownLogsRenderTimings(t *testing.T) {
	var buf bytes.Buffer
	logger := pslog.NewWithOptions(&buf, pslog.Options{
		Mode:     pslog.ModeStructured,
		NoColor:  true,
		MinLevel: pslog.DebugLevel,
	})
	ctx, cancel := context.WithCancel(pslog.ContextWithLogger(context.Background(), logger))
	be := newFakeBackend(backend.TagCount{Count: 3}, backend.OutputAdded{Output: 1})
	l := newLoop(be, 3)
	done := make(chan error, 1)
	go func() { done <- l.Run(ctx) }()
	waitCommits(t, be, 1)
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatal(err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("loop did not stop")
	}
	out := buf.String()
	for _, want := range []string{"render timings", "renders", "mean", "max"} {
		if !strings.Contains(out, want) {
			t.Errorf("shutdown log %q lacks %q", out, want)
		}
	}
}

func TestFailedReloadKeepsBars(t *testing.T) {
	be := newFakeBackend(backend.TagCount{Count: 3}, backend.OutputAdded{Output: 1})
	reload := make(chan struct{})
	msgs := make(chan daemon.Message)
	l := newLoop(be, 3)
	l.Reload = reload
	l.Messages = msgs
	l.OnReload = func(context.Context) error { return errors.New("bad theme") }
	stop := start(t, l)
	waitCommits(t, be, 1)

	reload <- struct{}{}
	msgs <- daemon.Message{Command: daemon.CmdTitle, Target: "all", Arg: "x"}
	waitCommits(t, be, 2)
	if err := stop(); err != nil {
		t.Fatal(err)
	}
	if c, _ := be.surface(0).state(); c != 2 {
		t.Errorf("commits = %d, want 2", c)
	}
}

func TestReloadRedrawsEveryBar(t *testing.T) {
	be := newFakeBackend(
		backend.TagCount{Count: 3},
		backend.OutputAdded{Output: 1},
		backend.OutputAdded{Output: 2},
	)
	reload := make(chan struct{})
	var reloads atomic.Int32
	l := newLoop(be, 3)
	l.Reload = reload
	l.OnReload = func(context.Context) error {
		reloads.Add(1)
		return nil
	}
	stop := start(t, l)
	waitCommits(t, be, 1)

	reload <- struct{}{}
	waitCommits(t, be, 2)
	if err := stop(); err != nil {
		t.Fatal(err)
	}
	if got := reloads.Load(); got != 1 {
		t.Errorf("reloads = %d, want 1", got)
	}
	if c, _ := be.surface(1).state(); c != 2 {
		t.Errorf("second bar commits = %d, want 2", c)
	}
}

func TestPointerLeaveDropsPendingPress(t *testing.T) {
	be := newFakeBackend(backend.TagCount{Count: 3}, backend.SeatAdded{Seat: 1}, backend.OutputAdded{Output: 1})
	l := newLoop(be, 3)
	stop := start(t, l)
	waitCommits(t, be, 1)

	// Tag "2" spans [96,116) with this face.
	be.events <- backend.PointerEntered{Seat: 1, Output: 1, X: 100, Y: 4}
	be.events <- backend.PointerButton{Seat: 1, Button: backend.ButtonLeft, Pressed: true}
	be.events <- backend.PointerLeft{Seat: 1}
	be.events <- backend.PointerFrame{Seat: 1}
	be.events <- backend.PointerEntered{Seat: 1, Output: 1, X: 100, Y: 4}
	be.events <- backend.PointerButton{Seat: 1, Button: backend.ButtonLeft, Pressed: true}
	be.events <- backend.PointerFrame{Seat: 1}
	be.events <- backend.PointerButton{Seat: 1, Button: backend.ButtonLeft, Pressed: false}
	be.events <- backend.PointerFrame{Seat: 1}
	waitFor(t, "SetTags", func() bool { return len(be.tagCalls()) > 0 })
	if err := stop(); err != nil {
		t.Fatal(err)
	}
	if got := be.tagCalls(); len(got) != 1 || got[0] != 1<<1 {
		t.Errorf("SetTags calls = %v, want [2]", got)
	}
	be.mu.Lock()
	cursors := append([]backend.CursorShape(nil), be.cursors...)
	be.mu.Unlock()
	if len(cursors) == 0 || cursors[0] != backend.CursorPointer {
		t.Errorf("cursor changes = %v, want pointer first", cursors)
	}
}

func TestHeadlessClickSwitchesTags(t *testing.T) {
	be := headless.New(headless.Options{
		Outputs:  []headless.Output{{Name: "HEADLESS-1", Width: 800}},
		TagCount: 3,
	})
	defer be.Close()
	l := newLoop(be, 3)
	stop := start(t, l)
	waitFor(t, "first frame", func() bool {
		s := be.Surface(1)
		if s == nil {
			return false
		}
		_, n := s.Frame()
		return n > 0
	})

	be.Inject(
		backend.PointerEntered{Seat: 1, Output: 1, X: 100, Y: 4},
		backend.PointerButton{Seat: 1, Button: backend.ButtonLeft, Pressed: true},
		backend.PointerFrame{Seat: 1},
	)
	waitFor(t, "tag switch", func() bool { return be.Tags(1) == 1<<1 })
	if got := be.Cursor(1); got != backend.CursorPointer {
		t.Errorf("cursor = %v, want pointer", got)
	}
	if err := stop(); err != nil {
		t.Fatal(err)
	}
}
