package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/brendandebeasi/dwlb/pkg/colors"
	"gopkg.in/yaml.v3"
)

var (
	ErrUnknownModule = errors.New("unknown module")
	ErrUnknownTheme  = errors.New("unknown theme")
	ErrInvalidTags   = errors.New("invalid tags")
	ErrInvalidValue  = errors.New("invalid value")
)

// maxTags matches the width of the tag bitset.
const maxTags = 32

// Load reads the config at path. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML, fills in defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse yaml: %w", err)
	}
	applyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SaveConfig writes the config to the specified path
func SaveConfig(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func (c *Config) Validate() error {
	if len(c.Tags) > maxTags {
		return fmt.Errorf("%w: %d tags, at most %d", ErrInvalidTags, len(c.Tags), maxTags)
	}
	for i, t := range c.Tags {
		if t == "" {
			return fmt.Errorf("%w: tag %d has an empty label", ErrInvalidTags, i)
		}
	}
	for _, m := range c.Modules {
		switch m {
		case ModuleNet, ModuleDisk, ModuleTemp, ModuleCPU, ModuleMem, ModuleVolume, ModuleDate:
		default:
			return fmt.Errorf("%w: %q", ErrUnknownModule, m)
		}
	}
	if _, ok := colors.Themes[c.Theme]; !ok {
		return fmt.Errorf("%w: %q (available: %s)", ErrUnknownTheme, c.Theme, strings.Join(colors.ListThemes(), ", "))
	}
	switch {
	case c.Font.Size < 0:
		return fmt.Errorf("%w: font size %v", ErrInvalidValue, c.Font.Size)
	case c.BufferScale < 1:
		return fmt.Errorf("%w: buffer_scale %d", ErrInvalidValue, c.BufferScale)
	case c.VerticalPadding < 0:
		return fmt.Errorf("%w: vertical_padding %d", ErrInvalidValue, c.VerticalPadding)
	case c.Floating() < 0:
		return fmt.Errorf("%w: floating_layout %d", ErrInvalidValue, c.Floating())
	case c.Interval <= 0:
		return fmt.Errorf("%w: interval %v", ErrInvalidValue, c.Interval)
	}
	if _, err := c.Palette(); err != nil {
		return err
	}
	return nil
}

// minOverrideContrast is the contrast ratio kept between a theme's text
// and a background replaced in the config file.
const minOverrideContrast = 4.5

// Palette resolves the theme with per-entry overrides applied. When only
// the background of an entry is overridden, the theme's text color is
// adjusted until it stays readable on it.
func (c *Config) Palette() (colors.Palette, error) {
	t := colors.GetTheme(c.Theme)
	override := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	o := c.Colors
	override(&t.TimeFg, o.Time.Fg)
	override(&t.TimeBg, o.Time.Bg)
	override(&t.ActiveFg, o.Active.Fg)
	override(&t.ActiveBg, o.Active.Bg)
	override(&t.OccupiedFg, o.Occupied.Fg)
	override(&t.OccupiedBg, o.Occupied.Bg)
	override(&t.InactiveFg, o.Inactive.Fg)
	override(&t.InactiveBg, o.Inactive.Bg)
	override(&t.UrgentFg, o.Urgent.Fg)
	override(&t.UrgentBg, o.Urgent.Bg)
	override(&t.MiddleFg, o.Middle.Fg)
	override(&t.MiddleBg, o.Middle.Bg)
	override(&t.MiddleSelFg, o.MiddleSel.Fg)
	override(&t.MiddleSelBg, o.MiddleSel.Bg)
	p, err := t.Palette()
	if err != nil {
		return colors.Palette{}, err
	}
	for _, e := range []struct {
		scheme Scheme
		pair   *colors.Pair
	}{
		{o.Time, &p.Time},
		{o.Active, &p.Active},
		{o.Occupied, &p.Occupied},
		{o.Inactive, &p.Inactive},
		{o.Urgent, &p.Urgent},
		{o.Middle, &p.Middle},
		{o.MiddleSel, &p.MiddleSel},
	} {
		if e.scheme.Bg != "" && e.scheme.Fg == "" {
			e.pair.Fg = colors.EnsureContrast(e.pair.Fg, e.pair.Bg, minOverrideContrast)
		}
	}
	return p, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Theme == "" {
		cfg.Theme = "default"
	}
	if cfg.Font.DPI == 0 {
		cfg.Font.DPI = 96
	}
	if len(cfg.Tags) == 0 {
		cfg.Tags = make([]string, 9)
		for i := range cfg.Tags {
			cfg.Tags[i] = strconv.Itoa(i + 1)
		}
	}
	if cfg.BufferScale == 0 {
		cfg.BufferScale = 1
	}
	if cfg.Modules == nil {
		cfg.Modules = append([]string(nil), DefaultModules...)
	}
	if cfg.Interval == 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.TimeFormat == "" {
		cfg.TimeFormat = "15:04:05"
	}
	if cfg.DateFormat == "" {
		cfg.DateFormat = "02-01-2006"
	}
	if cfg.MaxBufferBytes == 0 {
		cfg.MaxBufferBytes = DefaultMaxBufferBytes
	}

	v := &cfg.Volume
	if v.PlaybackControl == "" {
		v.PlaybackControl = "Master"
	}
	if v.CaptureControl == "" {
		v.CaptureControl = "Capture"
	}
	amixer := func(dst *string, control, action string) {
		if *dst == "" {
			*dst = fmt.Sprintf("amixer -q set %s %s", control, action)
		}
	}
	amixer(&v.PlaybackToggle, v.PlaybackControl, "toggle")
	amixer(&v.PlaybackUp, v.PlaybackControl, "1%+")
	amixer(&v.PlaybackDown, v.PlaybackControl, "1%-")
	amixer(&v.CaptureToggle, v.CaptureControl, "toggle")
	amixer(&v.CaptureUp, v.CaptureControl, "1%+")
	amixer(&v.CaptureDown, v.CaptureControl, "1%-")
}
