// Package perf times render passes. Set DWLB_PERF=1 to log every
// measurement; totals are always kept and can be read with Snapshot.
package perf

import (
	"context"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"pkt.systems/pslog"
)

var (
	enabled atomic.Bool

	mu     sync.Mutex
	totals = map[string]*Summary{}
)

func init() {
	enabled.Store(os.Getenv("DWLB_PERF") == "1")
}

// Summary aggregates the measurements taken under one name.
type Summary struct {
	Count int
	Total time.Duration
	Max   time.Duration
}

// Mean returns the average duration, zero when nothing was measured.
func (s Summary) Mean() time.Duration {
	if s.Count == 0 {
		return 0
	}
	return s.Total / time.Duration(s.Count)
}

// Timer tracks elapsed time for a named operation
type Timer struct {
	log   pslog.Logger
	name  string
	start time.Time
}

// Start begins timing an operation. kv annotates the log line.
func Start(ctx context.Context, name string, kv ...any) *Timer {
	t := &Timer{name: name, start: time.Now()}
	if enabled.Load() {
		t.log = pslog.Ctx(ctx).With(kv...)
	}
	return t
}

// Stop ends timing, records the result and logs it when enabled.
func (t *Timer) Stop() time.Duration {
	elapsed := time.Since(t.start)
	mu.Lock()
	s := totals[t.name]
	if s == nil {
		s = &Summary{}
		totals[t.name] = s
	}
	s.Count++
	s.Total += elapsed
	if elapsed > s.Max {
		s.Max = elapsed
	}
	mu.Unlock()
	if t.log != nil {
		t.log.Info("perf", "op", t.name, "elapsed", elapsed.String())
	}
	return elapsed
}

// Track is a convenience function that times a function call
func Track(ctx context.Context, name string, fn func()) time.Duration {
	t := Start(ctx, name)
	fn()
	return t.Stop()
}

// Snapshot returns the totals recorded for name.
func Snapshot(name string) Summary {
	mu.Lock()
	defer mu.Unlock()
	if s := totals[name]; s != nil {
		return *s
	}
	return Summary{}
}

// SetEnabled turns per-measurement logging on or off.
func SetEnabled(on bool) {
	enabled.Store(on)
}

// IsEnabled returns whether performance logging is enabled
func IsEnabled() bool {
	return enabled.Load()
}
