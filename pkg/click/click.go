// Package click maps pointer input on a bar to window manager requests
// and shell commands.
package click

import (
	"context"

	"github.com/brendandebeasi/dwlb/pkg/backend"
	"github.com/brendandebeasi/dwlb/pkg/bar"
	"github.com/brendandebeasi/dwlb/pkg/markup"
	"pkt.systems/pslog"
)

// Kind is what an Action does.
type Kind int

const (
	None Kind = iota
	SetTags
	SetLayout
	Spawn
)

func (k Kind) String() string {
	switch k {
	case SetTags:
		return "set-tags"
	case SetLayout:
		return "set-layout"
	case Spawn:
		return "spawn"
	}
	return "none"
}

// Action is the outcome of routing one click or scroll step.
type Action struct {
	Kind         Kind
	Mask         uint32
	ToggleTagset bool
	Layout       int
	Command      string
}

// VolumeCommands are run for clicks and scrolls on the volume module.
// The module's left half controls playback, the right half capture.
type VolumeCommands struct {
	PlaybackToggle string
	PlaybackUp     string
	PlaybackDown   string
	CaptureToggle  string
	CaptureUp      string
	CaptureDown    string
}

// ModuleVolume names the volume module in bar geometry.
const ModuleVolume = "volume"

// Router resolves pointer positions against a bar's last geometry.
type Router struct {
	// FloatingLayout is selected by right-clicking the layout indicator.
	FloatingLayout int
	Volume         VolumeCommands
}

// Route handles a button released at x. Regions are checked left to
// right: time, tags, layout, status text, then the volume module.
func (r *Router) Route(b *bar.Bar, x int, btn backend.Button) Action {
	g := &b.Geometry
	if g.Time.Contains(x) {
		return Action{}
	}
	if tag, ok := g.TagAt(x); ok {
		return tagAction(b, tag, btn)
	}
	if g.Layout.Contains(x) {
		switch btn {
		case backend.ButtonLeft:
			return Action{Kind: SetLayout, Layout: b.PrevLayout}
		case backend.ButtonRight:
			return Action{Kind: SetLayout, Layout: r.FloatingLayout}
		}
		return Action{}
	}
	if g.Status.Contains(x) {
		trig, ok := buttonTrigger(btn)
		if !ok {
			return Action{}
		}
		return statusAction(b, x, trig)
	}
	if vol, ok := g.Module(ModuleVolume); ok && vol.Contains(x) && btn == backend.ButtonLeft {
		if captureHalf(vol, x) {
			return spawn(r.Volume.CaptureToggle)
		}
		return spawn(r.Volume.PlaybackToggle)
	}
	return Action{}
}

// RouteScroll handles a discrete scroll step at x; negative is up.
func (r *Router) RouteScroll(b *bar.Bar, x, discrete int) Action {
	if discrete == 0 {
		return Action{}
	}
	up := discrete < 0
	g := &b.Geometry
	if g.Status.Contains(x) {
		trig := markup.TriggerScrollDown
		if up {
			trig = markup.TriggerScrollUp
		}
		return statusAction(b, x, trig)
	}
	if vol, ok := g.Module(ModuleVolume); ok && vol.Contains(x) {
		switch {
		case captureHalf(vol, x) && up:
			return spawn(r.Volume.CaptureUp)
		case captureHalf(vol, x):
			return spawn(r.Volume.CaptureDown)
		case up:
			return spawn(r.Volume.PlaybackUp)
		default:
			return spawn(r.Volume.PlaybackDown)
		}
	}
	return Action{}
}

// Clickable reports whether x is over something that reacts to clicks,
// for choosing the cursor shape.
func (r *Router) Clickable(b *bar.Bar, x int) bool {
	g := &b.Geometry
	if _, ok := g.TagAt(x); ok || g.Layout.Contains(x) {
		return true
	}
	if vol, ok := g.Module(ModuleVolume); ok && vol.Contains(x) {
		return true
	}
	if g.Status.Contains(x) {
		rel := x - g.Status.X0 - g.StatusPadding
		for _, btn := range b.Status.Buttons {
			if btn.Contains(rel) {
				return true
			}
		}
	}
	return false
}

func tagAction(b *bar.Bar, tag int, btn backend.Button) Action {
	switch btn {
	case backend.ButtonLeft:
		return Action{Kind: SetTags, Mask: 1 << tag, ToggleTagset: true}
	case backend.ButtonMiddle:
		return Action{Kind: SetTags, Mask: ^uint32(0), ToggleTagset: true}
	case backend.ButtonRight:
		return Action{Kind: SetTags, Mask: uint32(b.Mounted.Toggle(tag))}
	}
	return Action{}
}

// statusAction runs the first region bound to trig that contains x,
// measured from the start of the status text.
func statusAction(b *bar.Bar, x int, trig markup.Trigger) Action {
	rel := x - b.Geometry.Status.X0 - b.Geometry.StatusPadding
	for _, region := range b.Status.Buttons {
		if region.Trigger == trig && region.Contains(rel) {
			return spawn(region.Command)
		}
	}
	return Action{}
}

func buttonTrigger(btn backend.Button) (markup.Trigger, bool) {
	switch btn {
	case backend.ButtonLeft:
		return markup.TriggerLeft, true
	case backend.ButtonMiddle:
		return markup.TriggerMiddle, true
	case backend.ButtonRight:
		return markup.TriggerRight, true
	}
	return 0, false
}

func captureHalf(vol bar.Span, x int) bool {
	return x > (vol.X0+vol.X1)/2
}

func spawn(cmd string) Action {
	if cmd == "" {
		return Action{}
	}
	return Action{Kind: Spawn, Command: cmd}
}

// Do carries out a on b's output.
func Do(ctx context.Context, a Action, b *bar.Bar, be backend.Backend, sp Spawner) {
	log := pslog.Ctx(ctx)
	switch a.Kind {
	case SetTags:
		be.SetTags(b.Output, a.Mask, a.ToggleTagset)
	case SetLayout:
		be.SetLayout(b.Output, a.Layout)
	case Spawn:
		if err := sp.Spawn(ctx, a.Command); err != nil {
			log.Warn("spawn failed", "bar", b.String(), "cmd", a.Command, "err", err)
		}
	}
}
