// Package stats samples system counters once per tick and turns them into
// the per-interval figures the bar's modules display.
package stats

import (
	"context"
	"time"
)

// Sample is one reading of cumulative system counters.
type Sample struct {
	Time time.Time

	CPUBusy  float64 // seconds
	CPUTotal float64 // seconds

	MemTotal     uint64
	MemAvailable uint64

	DiskRead    uint64 // bytes
	DiskWritten uint64 // bytes

	NetRx uint64 // bytes
	NetTx uint64 // bytes

	// Temperature in degrees Celsius; HasTemperature is false when no
	// matching sensor exists.
	Temperature    float64
	HasTemperature bool
}

// Sampler reads system counters.
type Sampler interface {
	Sample(ctx context.Context) (Sample, error)
}

// GlobalStats keeps the previous and current samples so every tick yields
// a delta. It is shared by all bars.
type GlobalStats struct {
	prev, cur Sample
	samples   int
}

// Update records a new sample, shifting the current one to previous.
func (g *GlobalStats) Update(s Sample) {
	g.prev = g.cur
	g.cur = s
	g.samples++
}

// Ready reports whether two samples exist, so deltas are meaningful.
func (g *GlobalStats) Ready() bool {
	return g.samples >= 2
}

// CPUPercent is the busy share of CPU time between the last two samples.
func (g *GlobalStats) CPUPercent() int {
	if !g.Ready() {
		return 0
	}
	total := g.cur.CPUTotal - g.prev.CPUTotal
	busy := g.cur.CPUBusy - g.prev.CPUBusy
	if total <= 0 || busy < 0 {
		return 0
	}
	return clampPercent(100*busy/total + 0.5)
}

// MemPercent is the share of memory not available, rounded.
func (g *GlobalStats) MemPercent() int {
	if g.samples == 0 || g.cur.MemTotal == 0 {
		return 0
	}
	total := g.cur.MemTotal
	avail := (100*g.cur.MemAvailable + total/2) / total
	return clampPercent(100 - float64(avail))
}

// Temperature returns the current reading in whole degrees.
func (g *GlobalStats) Temperature() (int, bool) {
	if g.samples == 0 || !g.cur.HasTemperature {
		return 0, false
	}
	return int(g.cur.Temperature), true
}

// DiskIO returns bytes read and written since the previous sample.
func (g *GlobalStats) DiskIO() (read, written uint64) {
	if !g.Ready() {
		return 0, 0
	}
	return delta(g.prev.DiskRead, g.cur.DiskRead), delta(g.prev.DiskWritten, g.cur.DiskWritten)
}

// NetIO returns bytes received and sent since the previous sample.
func (g *GlobalStats) NetIO() (rx, tx uint64) {
	if !g.Ready() {
		return 0, 0
	}
	return delta(g.prev.NetRx, g.cur.NetRx), delta(g.prev.NetTx, g.cur.NetTx)
}

// delta tolerates counter resets, e.g. an interface going away.
func delta(prev, cur uint64) uint64 {
	if cur < prev {
		return 0
	}
	return cur - prev
}

func clampPercent(v float64) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return int(v)
}
