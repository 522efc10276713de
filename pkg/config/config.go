package config

import (
	"time"

	"github.com/brendandebeasi/dwlb/pkg/paths"
)

type Config struct {
	Font            Font          `yaml:"font"`
	Theme           string        `yaml:"theme"`
	Colors          Colors        `yaml:"colors"`
	Tags            []string      `yaml:"tags"`
	FloatingLayout  *int          `yaml:"floating_layout"`
	Hidden          bool          `yaml:"hidden"`
	Bottom          bool          `yaml:"bottom"`
	HideVacant      bool          `yaml:"hide_vacant"`
	VerticalPadding int           `yaml:"vertical_padding"`
	BufferScale     int           `yaml:"buffer_scale"`
	Modules         []string      `yaml:"modules"`
	Interval        time.Duration `yaml:"interval"`
	NetInterface    string        `yaml:"net_interface"` // empty sums every non-loopback interface
	TempSensor      string        `yaml:"temp_sensor"`
	Volume          Volume        `yaml:"volume"`
	TimeFormat      string        `yaml:"time_format"` // Go time layout (default: 15:04:05)
	DateFormat      string        `yaml:"date_format"` // Go time layout (default: 02-01-2006)
	MaxBufferBytes  int           `yaml:"max_buffer_bytes"`
}

type Font struct {
	Path string  `yaml:"path"` // TrueType/OpenType file; empty uses Go Bold
	Size float64 `yaml:"size"` // points; 0 selects the built-in 7x13 bitmap font
	DPI  float64 `yaml:"dpi"`
}

// Colors overrides individual entries of the selected theme.
type Colors struct {
	Time      Scheme `yaml:"time"`
	Active    Scheme `yaml:"active"`
	Occupied  Scheme `yaml:"occupied"`
	Inactive  Scheme `yaml:"inactive"`
	Urgent    Scheme `yaml:"urgent"`
	Middle    Scheme `yaml:"middle"`
	MiddleSel Scheme `yaml:"middle_sel"`
}

type Scheme struct {
	Fg string `yaml:"fg"`
	Bg string `yaml:"bg"`
}

// Volume configures the mixer controls polled by the volume module and
// the commands run when it is clicked or scrolled.
type Volume struct {
	PlaybackControl string `yaml:"playback_control"`
	CaptureControl  string `yaml:"capture_control"`
	PlaybackToggle  string `yaml:"playback_toggle"`
	PlaybackUp      string `yaml:"playback_up"`
	PlaybackDown    string `yaml:"playback_down"`
	CaptureToggle   string `yaml:"capture_toggle"`
	CaptureUp       string `yaml:"capture_up"`
	CaptureDown     string `yaml:"capture_down"`
}

// Module names accepted in Config.Modules, in default left-to-right order.
const (
	ModuleNet    = "net"
	ModuleDisk   = "disk"
	ModuleTemp   = "temp"
	ModuleCPU    = "cpu"
	ModuleMem    = "mem"
	ModuleVolume = "volume"
	ModuleDate   = "date"
)

var DefaultModules = []string{ModuleNet, ModuleDisk, ModuleTemp, ModuleCPU, ModuleMem, ModuleVolume, ModuleDate}

const (
	DefaultFloatingLayout = 2
	DefaultMaxBufferBytes = 64 << 20
	DefaultInterval       = time.Second
)

// Floating returns the layout index selected by right-clicking the
// layout indicator.
func (c *Config) Floating() int {
	if c.FloatingLayout == nil {
		return DefaultFloatingLayout
	}
	return *c.FloatingLayout
}

// HasModule reports whether name is enabled.
func (c *Config) HasModule(name string) bool {
	for _, m := range c.Modules {
		if m == name {
			return true
		}
	}
	return false
}

func DefaultConfigPath() string {
	return paths.ConfigPath()
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}
