package stats

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/mem"
	"github.com/shirou/gopsutil/v4/net"
	"github.com/shirou/gopsutil/v4/sensors"
)

// PSUtil samples counters through gopsutil.
type PSUtil struct {
	// Interface limits network counters to one interface; empty sums
	// every interface except loopback.
	Interface string
	// Sensor selects the first temperature sensor whose key contains it.
	Sensor string
}

func (p *PSUtil) Sample(ctx context.Context) (Sample, error) {
	s := Sample{Time: time.Now()}

	times, err := cpu.TimesWithContext(ctx, false)
	if err != nil {
		return s, fmt.Errorf("cpu times: %w", err)
	}
	if len(times) > 0 {
		t := times[0]
		idle := t.Idle + t.Iowait
		total := t.User + t.System + t.Nice + t.Irq + t.Softirq + t.Steal + idle
		s.CPUTotal = total
		s.CPUBusy = total - idle
	}

	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return s, fmt.Errorf("memory: %w", err)
	}
	s.MemTotal = vm.Total
	s.MemAvailable = vm.Available

	if counters, err := disk.IOCountersWithContext(ctx); err == nil {
		for name, c := range counters {
			if isPartition(name, counters) {
				continue
			}
			s.DiskRead += c.ReadBytes
			s.DiskWritten += c.WriteBytes
		}
	}

	if ifaces, err := net.IOCountersWithContext(ctx, true); err == nil {
		for _, c := range ifaces {
			if p.Interface != "" && c.Name != p.Interface {
				continue
			}
			if p.Interface == "" && c.Name == "lo" {
				continue
			}
			s.NetRx += c.BytesRecv
			s.NetTx += c.BytesSent
		}
	}

	// Missing sensors are common on VMs; partial results still count.
	temps, _ := sensors.TemperaturesWithContext(ctx)
	for _, t := range temps {
		if p.Sensor == "" || strings.Contains(t.SensorKey, p.Sensor) {
			s.Temperature = t.Temperature
			s.HasTemperature = true
			break
		}
	}
	return s, nil
}

// isPartition reports whether name is a partition of another listed
// device, e.g. sda1 of sda or nvme0n1p2 of nvme0n1. Counting both would
// double the totals.
func isPartition[V any](name string, devices map[string]V) bool {
	trimmed := strings.TrimRight(name, "0123456789")
	if trimmed == name || trimmed == "" {
		return false
	}
	if _, ok := devices[trimmed]; ok {
		return true
	}
	if strings.HasSuffix(trimmed, "p") {
		_, ok := devices[strings.TrimSuffix(trimmed, "p")]
		return ok
	}
	return false
}
