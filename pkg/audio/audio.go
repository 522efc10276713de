// Package audio reports mixer levels for the volume module.
package audio

import (
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"sync"
	"time"

	"pkt.systems/pslog"
)

// Levels are playback and capture volumes in percent.
type Levels struct {
	Playback      int
	Capture       int
	PlaybackMuted bool
	CaptureMuted  bool
}

// Text renders levels for the volume module; muted channels show "mute".
func (l Levels) Text() string {
	return fmt.Sprintf("%s %s ", channelText(l.Playback, l.PlaybackMuted), channelText(l.Capture, l.CaptureMuted))
}

func channelText(pct int, muted bool) string {
	if muted {
		return "mute"
	}
	return fmt.Sprintf("%3d%%", pct)
}

// Template is the widest volume text.
const Template = "100% 100% "

// Mixer reports levels and signals when they change.
type Mixer interface {
	Levels() Levels
	// Changes fires after Levels has new values. It may be nil.
	Changes() <-chan struct{}
}

// Static is a fixed mixer, used when no sound system is present.
type Static struct {
	L Levels
}

func (s Static) Levels() Levels            { return s.L }
func (s Static) Changes() <-chan struct{} { return nil }

type runFunc func(ctx context.Context, name string, args ...string) ([]byte, error)

func execRun(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// Amixer polls amixer for the playback and capture controls.
type Amixer struct {
	Playback string // control name, e.g. "Master"
	Capture  string // e.g. "Capture"
	Interval time.Duration

	run     runFunc
	mu      sync.Mutex
	levels  Levels
	changes chan struct{}
}

// NewAmixer returns a mixer for the given controls. Call Run to start
// polling.
func NewAmixer(playback, capture string, interval time.Duration) *Amixer {
	if interval <= 0 {
		interval = time.Second
	}
	return &Amixer{
		Playback: playback,
		Capture:  capture,
		Interval: interval,
		run:      execRun,
		changes:  make(chan struct{}, 1),
	}
}

func (a *Amixer) Levels() Levels {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.levels
}

func (a *Amixer) Changes() <-chan struct{} {
	return a.changes
}

// Run polls until ctx is done. The first poll happens immediately.
func (a *Amixer) Run(ctx context.Context) {
	log := pslog.Ctx(ctx).With("component", "amixer")
	ticker := time.NewTicker(a.Interval)
	defer ticker.Stop()
	failing := false
	for {
		if err := a.Poll(ctx); err != nil {
			if !failing {
				log.Warn("mixer poll failed", "err", err)
			}
			failing = true
		} else {
			failing = false
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Poll reads both controls once and signals Changes if anything moved.
func (a *Amixer) Poll(ctx context.Context) error {
	var next Levels
	var err error
	if next.Playback, next.PlaybackMuted, err = a.read(ctx, a.Playback); err != nil {
		return err
	}
	if next.Capture, next.CaptureMuted, err = a.read(ctx, a.Capture); err != nil {
		return err
	}
	a.mu.Lock()
	changed := next != a.levels
	a.levels = next
	a.mu.Unlock()
	if changed {
		select {
		case a.changes <- struct{}{}:
		default:
		}
	}
	return nil
}

func (a *Amixer) read(ctx context.Context, control string) (int, bool, error) {
	out, err := a.run(ctx, "amixer", "get", control)
	if err != nil {
		return 0, false, fmt.Errorf("amixer get %s: %w", control, err)
	}
	pct, muted, ok := ParseAmixer(string(out))
	if !ok {
		return 0, false, fmt.Errorf("amixer get %s: no volume in output", control)
	}
	return pct, muted, nil
}

var (
	percentRE = regexp.MustCompile(`\[(\d{1,3})%\]`)
	switchRE  = regexp.MustCompile(`\[(on|off)\]`)
)

// ParseAmixer extracts the first channel's percentage and mute switch
// from "amixer get" output.
func ParseAmixer(out string) (pct int, muted bool, ok bool) {
	m := percentRE.FindStringSubmatch(out)
	if m == nil {
		return 0, false, false
	}
	pct, _ = strconv.Atoi(m[1])
	if s := switchRE.FindStringSubmatch(out); s != nil {
		muted = s[1] == "off"
	}
	return pct, muted, true
}
