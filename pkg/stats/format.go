package stats

import "fmt"

// FormatIO renders a byte count in four columns: three digits and a unit
// from b, k, m, g, t. Zero renders as blanks so idle counters disappear.
func FormatIO(v uint64) string {
	var s string
	switch {
	case v == 0:
		return "    "
	case v < 1e3:
		s = fmt.Sprintf("%3db", v)
	case v < 1e6:
		s = fmt.Sprintf("%3dk", v/1e3)
	case v < 1e9:
		s = fmt.Sprintf("%3dm", v/1e6)
	case v < 1e12:
		s = fmt.Sprintf("%3dg", v/1e9)
	default:
		s = fmt.Sprintf("%3dt", v/1e12)
	}
	if len(s) > 4 {
		s = s[:4]
	}
	return s
}

// Module texts. Widths are fixed per module so the bar does not jitter
// as values change; Template gives the widest rendering.

// NetText renders the network module.
func NetText(rx, tx uint64) string {
	return fmt.Sprintf("tx %4s rx %4s", FormatIO(tx), FormatIO(rx))
}

// DiskText renders the disk module.
func DiskText(read, written uint64) string {
	return fmt.Sprintf("rd %4s wr %4s", FormatIO(read), FormatIO(written))
}

// TempText renders the temperature module.
func TempText(celsius int, ok bool) string {
	if !ok {
		return " --°C"
	}
	return fmt.Sprintf("%3d°C", celsius)
}

// CPUText renders the CPU module.
func CPUText(pct int) string {
	return fmt.Sprintf("cpu %3d%%", pct)
}

// MemText renders the memory module.
func MemText(pct int) string {
	return fmt.Sprintf("mem %3d%%", pct)
}

// Template returns the widest text a module can show, for sizing.
func Template(module string) string {
	switch module {
	case ModuleNet:
		return NetText(888e3, 888e3)
	case ModuleDisk:
		return DiskText(888e3, 888e3)
	case ModuleTemp:
		return TempText(888, true)
	case ModuleCPU:
		return CPUText(100)
	case ModuleMem:
		return MemText(100)
	}
	return ""
}

// Module names, also used in configuration.
const (
	ModuleNet  = "net"
	ModuleDisk = "disk"
	ModuleTemp = "temp"
	ModuleCPU  = "cpu"
	ModuleMem  = "mem"
)

// Text renders a module from g.
func (g *GlobalStats) Text(module string) string {
	switch module {
	case ModuleNet:
		return NetText(g.NetIO())
	case ModuleDisk:
		return DiskText(g.DiskIO())
	case ModuleTemp:
		return TempText(g.Temperature())
	case ModuleCPU:
		return CPUText(g.CPUPercent())
	case ModuleMem:
		return MemText(g.MemPercent())
	}
	return ""
}
