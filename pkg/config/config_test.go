package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/brendandebeasi/dwlb/pkg/colors"
)

func TestLoadMissingFileGivesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(cfg.Tags) != 9 || cfg.Tags[0] != "1" || cfg.Tags[8] != "9" {
		t.Errorf("Tags = %v, want 1..9", cfg.Tags)
	}
	if cfg.Floating() != DefaultFloatingLayout {
		t.Errorf("Floating() = %d, want %d", cfg.Floating(), DefaultFloatingLayout)
	}
	if cfg.BufferScale != 1 || cfg.Interval != time.Second {
		t.Errorf("BufferScale = %d, Interval = %v", cfg.BufferScale, cfg.Interval)
	}
	if cfg.Volume.PlaybackUp != "amixer -q set Master 1%+" {
		t.Errorf("PlaybackUp = %q", cfg.Volume.PlaybackUp)
	}
	if cfg.Volume.CaptureToggle != "amixer -q set Capture toggle" {
		t.Errorf("CaptureToggle = %q", cfg.Volume.CaptureToggle)
	}
	for _, m := range DefaultModules {
		if !cfg.HasModule(m) {
			t.Errorf("module %q not enabled by default", m)
		}
	}
	pal, err := cfg.Palette()
	if err != nil {
		t.Fatalf("Palette() error: %v", err)
	}
	if pal != colors.DefaultPalette() {
		t.Error("default config palette differs from DefaultPalette()")
	}
}

func TestParse(t *testing.T) {
	data := []byte(`
theme: nord
tags: [web, code, chat]
floating_layout: 0
bottom: true
hide_vacant: true
modules: [cpu, date]
interval: 2s
volume:
  playback_control: PCM
colors:
  urgent:
    bg: "#ff0000"
`)
	cfg, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if len(cfg.Tags) != 3 || cfg.Tags[1] != "code" {
		t.Errorf("Tags = %v", cfg.Tags)
	}
	if cfg.Floating() != 0 {
		t.Errorf("Floating() = %d, want explicit 0", cfg.Floating())
	}
	if !cfg.Bottom || !cfg.HideVacant {
		t.Errorf("Bottom = %v, HideVacant = %v", cfg.Bottom, cfg.HideVacant)
	}
	if cfg.HasModule(ModuleNet) || !cfg.HasModule(ModuleCPU) {
		t.Errorf("Modules = %v", cfg.Modules)
	}
	if cfg.Interval != 2*time.Second {
		t.Errorf("Interval = %v", cfg.Interval)
	}
	if cfg.Volume.PlaybackToggle != "amixer -q set PCM toggle" {
		t.Errorf("PlaybackToggle = %q", cfg.Volume.PlaybackToggle)
	}
	pal, err := cfg.Palette()
	if err != nil {
		t.Fatalf("Palette() error: %v", err)
	}
	if got := colors.Hex(pal.Urgent.Bg); got != "#ff0000ff" {
		t.Errorf("urgent bg = %s, want override", got)
	}
	nord, _ := colors.GetTheme("nord").Palette()
	if pal.Active != nord.Active {
		t.Error("non-overridden entry should come from the theme")
	}
}

func TestParseInvalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want error
	}{
		{"unknown module", "modules: [battery]", ErrUnknownModule},
		{"unknown theme", "theme: neon", ErrUnknownTheme},
		{"empty tag", `tags: ["1", ""]`, ErrInvalidTags},
		{"negative font", "font: {size: -1}", ErrInvalidValue},
		{"negative scale", "buffer_scale: -2", ErrInvalidValue},
		{"negative interval", "interval: -1s", ErrInvalidValue},
		{"bad color", `colors: {time: {bg: "#12"}}`, colors.ErrInvalidHex},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			if !errors.Is(err, tt.want) {
				t.Errorf("Parse() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestPaletteKeepsOverriddenBackgroundReadable(t *testing.T) {
	cfg, err := Parse([]byte(`
colors:
  inactive:
    bg: "#cccccc"
  time:
    fg: "#ccccccff"
    bg: "#bbbbbbff"
`))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	pal, err := cfg.Palette()
	if err != nil {
		t.Fatalf("Palette() error: %v", err)
	}
	if r := colors.ContrastRatio(pal.Inactive.Fg, pal.Inactive.Bg); r < minOverrideContrast {
		t.Errorf("inactive text %s on %s has ratio %.2f, want >= %v",
			colors.Hex(pal.Inactive.Fg), colors.Hex(pal.Inactive.Bg), r, minOverrideContrast)
	}
	if got := colors.Hex(pal.Time.Fg); got != "#ccccccff" {
		t.Errorf("explicit time fg = %s, want it kept", got)
	}
	def := colors.DefaultPalette()
	if pal.Active != def.Active {
		t.Error("entries without overrides should not be adjusted")
	}
}

func TestUnknownThemeListsAvailable(t *testing.T) {
	_, err := Parse([]byte("theme: neon"))
	if !errors.Is(err, ErrUnknownTheme) {
		t.Fatalf("Parse() error = %v, want ErrUnknownTheme", err)
	}
	for _, name := range colors.ListThemes() {
		if !strings.Contains(err.Error(), name) {
			t.Errorf("error %q does not list theme %q", err, name)
		}
	}
}

func TestParseTooManyTags(t *testing.T) {
	data := []byte("tags: [")
	for i := 0; i < 33; i++ {
		if i > 0 {
			data = append(data, ',')
		}
		data = append(data, 'x')
	}
	data = append(data, ']')
	if _, err := Parse(data); !errors.Is(err, ErrInvalidTags) {
		t.Errorf("Parse() error = %v, want ErrInvalidTags", err)
	}
}

func TestLoadBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("tags: [unterminated"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("Load() accepted malformed yaml")
	}
}

func TestSaveThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.yaml")
	cfg := Default()
	cfg.Tags = []string{"a", "b"}
	cfg.HideVacant = true
	if err := SaveConfig(path, cfg); err != nil {
		t.Fatalf("SaveConfig() error: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(got.Tags) != 2 || !got.HideVacant {
		t.Errorf("reloaded Tags = %v, HideVacant = %v", got.Tags, got.HideVacant)
	}
}

func TestWatch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("theme: default\n"), 0644); err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes, err := Watch(ctx, path)
	if err != nil {
		t.Fatalf("Watch() error: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "other.yaml"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("theme: nord\n"), 0644); err != nil {
		t.Fatal(err)
	}
	select {
	case <-changes:
	case <-time.After(5 * time.Second):
		t.Fatal("no change signal after writing the config")
	}

	cancel()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case _, ok := <-changes:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("channel not closed after cancel")
		}
	}
}
