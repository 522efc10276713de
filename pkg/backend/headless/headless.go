// Package headless is an in-process backend with virtual outputs. It
// answers window manager requests the way dwl does and can write every
// committed frame to a PNG file, which makes it useful for development
// without a compositor and for end-to-end tests.
package headless

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"sync"

	"github.com/brendandebeasi/dwlb/pkg/backend"
)

// ErrUnknownOutput is returned for requests naming an output that does
// not exist.
var ErrUnknownOutput = errors.New("unknown output")

// Output describes one virtual display.
type Output struct {
	Name  string
	Width int
}

// Options configure the virtual session.
type Options struct {
	Outputs  []Output
	TagCount int
	// Layouts are the window manager's layout symbols.
	Layouts []string
	// SnapshotDir, when set, receives <output>.png on every commit.
	SnapshotDir string
}

var DefaultLayouts = []string{"[]=", "><>", "[M]"}

type output struct {
	id      backend.OutputID
	name    string
	width   int
	tagsets [2]uint32
	seltags int
	layout  int
	surface *Surface
}

// Backend is a headless compositor session.
type Backend struct {
	opts Options

	mu      sync.Mutex
	outputs []*output
	nextID  backend.OutputID
	cursors map[backend.SeatID]backend.CursorShape
	queue   []backend.Event
	closed  bool

	wake   chan struct{}
	done   chan struct{}
	events chan backend.Event
}

// New creates a session and queues the initial announcements: tag count,
// layouts, a seat, and every configured output with its tag state.
func New(opts Options) *Backend {
	if opts.TagCount <= 0 {
		opts.TagCount = 9
	}
	if len(opts.Layouts) == 0 {
		opts.Layouts = DefaultLayouts
	}
	if len(opts.Outputs) == 0 {
		opts.Outputs = []Output{{Name: "HEADLESS-1", Width: 1920}}
	}
	b := &Backend{
		opts:    opts,
		nextID:  1,
		cursors: make(map[backend.SeatID]backend.CursorShape),
		wake:    make(chan struct{}, 1),
		done:    make(chan struct{}),
		events:  make(chan backend.Event),
	}
	b.push(backend.TagCount{Count: opts.TagCount})
	for _, l := range opts.Layouts {
		b.push(backend.LayoutAnnounced{Symbol: l})
	}
	b.push(backend.SeatAdded{Seat: 1})
	for i, o := range opts.Outputs {
		id := b.AddOutput(o)
		if i == 0 {
			b.push(backend.ActiveChanged{Output: id, Active: true}, backend.OutputFrame{Output: id})
		}
	}
	go b.pump()
	return b
}

// AddOutput plugs in a new virtual output and returns its id.
func (b *Backend) AddOutput(o Output) backend.OutputID {
	b.mu.Lock()
	defer b.mu.Unlock()
	if o.Width <= 0 {
		o.Width = 1920
	}
	out := &output{id: b.nextID, name: o.Name, width: o.Width}
	out.tagsets = [2]uint32{1, 1}
	b.nextID++
	b.outputs = append(b.outputs, out)
	b.pushLocked(
		backend.OutputAdded{Output: out.id},
		backend.OutputNamed{Output: out.id, Name: out.name},
	)
	b.pushStateLocked(out)
	return out.id
}

// RemoveOutput unplugs an output.
func (b *Backend) RemoveOutput(id backend.OutputID) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, o := range b.outputs {
		if o.id == id {
			b.outputs = append(b.outputs[:i], b.outputs[i+1:]...)
			b.pushLocked(backend.OutputRemoved{Output: id})
			return nil
		}
	}
	return fmt.Errorf("%w: %d", ErrUnknownOutput, id)
}

// Inject queues an arbitrary event, e.g. pointer input.
func (b *Backend) Inject(evs ...backend.Event) {
	b.push(evs...)
}

func (b *Backend) Events() <-chan backend.Event {
	return b.events
}

func (b *Backend) CreateSurface(out backend.OutputID, anchor backend.Anchor, height int) (backend.Surface, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	o := b.outputLocked(out)
	if o == nil {
		return nil, fmt.Errorf("%w: %d", ErrUnknownOutput, out)
	}
	s := &Surface{backend: b, output: o.name, anchor: anchor, width: o.width, height: height}
	o.surface = s
	b.pushLocked(backend.Configured{Output: out, Width: o.width, Height: height})
	return s, nil
}

// SetTags follows dwl: with toggleTagset the alternate set is selected
// and replaced (a mask equal to the current set is ignored); without it
// the current set is replaced. An empty mask only flips the set.
func (b *Backend) SetTags(out backend.OutputID, mask uint32, toggleTagset bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	o := b.outputLocked(out)
	if o == nil {
		return
	}
	mask &= b.tagMask()
	if toggleTagset {
		if mask == o.tagsets[o.seltags] {
			return
		}
		o.seltags ^= 1
		if mask != 0 {
			o.tagsets[o.seltags] = mask
		}
	} else {
		if mask == 0 {
			return
		}
		o.tagsets[o.seltags] = mask
	}
	b.pushStateLocked(o)
}

func (b *Backend) SetLayout(out backend.OutputID, index int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	o := b.outputLocked(out)
	if o == nil || index < 0 || index >= len(b.opts.Layouts) {
		return
	}
	o.layout = index
	b.pushLocked(
		backend.LayoutChanged{Output: out, Index: index},
		backend.LayoutSymbol{Output: out, Symbol: b.opts.Layouts[index]},
		backend.OutputFrame{Output: out},
	)
}

func (b *Backend) SetCursor(seat backend.SeatID, shape backend.CursorShape) {
	b.mu.Lock()
	b.cursors[seat] = shape
	b.mu.Unlock()
}

// Cursor returns the last shape set for seat.
func (b *Backend) Cursor(seat backend.SeatID) backend.CursorShape {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.cursors[seat]
}

// Tags returns the viewed tag set of an output.
func (b *Backend) Tags(out backend.OutputID) uint32 {
	b.mu.Lock()
	defer b.mu.Unlock()
	if o := b.outputLocked(out); o != nil {
		return o.tagsets[o.seltags]
	}
	return 0
}

// Surface returns the live surface of an output, nil if none.
func (b *Backend) Surface(out backend.OutputID) *Surface {
	b.mu.Lock()
	defer b.mu.Unlock()
	if o := b.outputLocked(out); o != nil {
		return o.surface
	}
	return nil
}

// Close ends the session; the event channel is closed.
func (b *Backend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	close(b.done)
	return nil
}

func (b *Backend) tagMask() uint32 {
	if b.opts.TagCount >= 32 {
		return ^uint32(0)
	}
	return 1<<b.opts.TagCount - 1
}

func (b *Backend) outputLocked(id backend.OutputID) *output {
	for _, o := range b.outputs {
		if o.id == id {
			return o
		}
	}
	return nil
}

// pushStateLocked reports every tag, the layout and the title of o.
func (b *Backend) pushStateLocked(o *output) {
	viewed := o.tagsets[o.seltags]
	for i := 0; i < b.opts.TagCount; i++ {
		var state backend.TagState
		if viewed&(1<<i) != 0 {
			state = backend.TagActive
		}
		b.pushLocked(backend.TagChanged{Output: o.id, Tag: i, State: state})
	}
	b.pushLocked(
		backend.LayoutChanged{Output: o.id, Index: o.layout},
		backend.LayoutSymbol{Output: o.id, Symbol: b.opts.Layouts[o.layout]},
		backend.OutputFrame{Output: o.id},
	)
}

func (b *Backend) push(evs ...backend.Event) {
	b.mu.Lock()
	b.pushLocked(evs...)
	b.mu.Unlock()
}

func (b *Backend) pushLocked(evs ...backend.Event) {
	if b.closed {
		return
	}
	b.queue = append(b.queue, evs...)
	select {
	case b.wake <- struct{}{}:
	default:
	}
}

// pump forwards queued events so requests made from the event loop
// never block on the loop itself.
func (b *Backend) pump() {
	defer close(b.events)
	for {
		b.mu.Lock()
		batch := b.queue
		b.queue = nil
		b.mu.Unlock()
		for _, ev := range batch {
			select {
			case b.events <- ev:
			case <-b.done:
				return
			}
		}
		select {
		case <-b.wake:
		case <-b.done:
			return
		}
	}
}

// Surface is a virtual layer surface. It keeps the last committed frame.
type Surface struct {
	backend *Backend
	output  string

	mu        sync.Mutex
	anchor    backend.Anchor
	width     int
	height    int
	frame     *image.RGBA
	commits   int
	destroyed bool
}

func (s *Surface) SetAnchor(a backend.Anchor) {
	s.mu.Lock()
	s.anchor = a
	s.mu.Unlock()
}

// Commit copies img and, with a snapshot directory, writes it as PNG.
func (s *Surface) Commit(img *image.RGBA) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.destroyed {
		return errors.New("commit on destroyed surface")
	}
	if img.Bounds().Dx() != s.width || img.Bounds().Dy() != s.height {
		return fmt.Errorf("frame %v does not match surface %dx%d", img.Bounds(), s.width, s.height)
	}
	frame := image.NewRGBA(img.Bounds())
	for y := 0; y < img.Bounds().Dy(); y++ {
		copy(frame.Pix[y*frame.Stride:], img.Pix[y*img.Stride:y*img.Stride+img.Bounds().Dx()*4])
	}
	s.frame = frame
	s.commits++
	if dir := s.backend.opts.SnapshotDir; dir != "" {
		return writePNG(filepath.Join(dir, s.output+".png"), frame)
	}
	return nil
}

func (s *Surface) Destroy() {
	s.mu.Lock()
	s.destroyed = true
	s.mu.Unlock()
}

// Frame returns the last committed frame and the number of commits.
func (s *Surface) Frame() (*image.RGBA, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frame, s.commits
}

// Anchor returns the edge the surface is attached to.
func (s *Surface) Anchor() backend.Anchor {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.anchor
}

// writePNG replaces path atomically so viewers never see a partial file.
func writePNG(path string, img image.Image) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".snapshot-*")
	if err != nil {
		return fmt.Errorf("create snapshot: %w", err)
	}
	if err := png.Encode(tmp, img); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}
