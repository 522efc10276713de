package colors

import (
	"fmt"
	"image/color"
	"sort"
)

// Pair is a foreground/background color scheme.
type Pair struct {
	Fg color.NRGBA64
	Bg color.NRGBA64
}

// Palette holds the resolved schemes the bar draws with.
type Palette struct {
	Time      Pair
	Active    Pair
	Occupied  Pair
	Inactive  Pair
	Urgent    Pair
	Middle    Pair
	MiddleSel Pair
}

// Theme is a named palette in hex form. Fg entries may be empty, in
// which case they are derived from the background.
type Theme struct {
	Name        string
	Description string
	Dark        bool

	TimeFg, TimeBg           string
	ActiveFg, ActiveBg       string
	OccupiedFg, OccupiedBg   string
	InactiveFg, InactiveBg   string
	UrgentFg, UrgentBg       string
	MiddleFg, MiddleBg       string
	MiddleSelFg, MiddleSelBg string
}

// Built-in themes. "default" is the stock dwlb scheme.
var Themes = map[string]Theme{
	"default": {
		Name:        "Default",
		Description: "Stock dwlb colors",
		Dark:        true,
		TimeFg:      "#080410ff", TimeBg: "#936dd3ee",
		ActiveFg: "#040810ff", ActiveBg: "#417ebaee",
		OccupiedFg: "#040810ff", OccupiedBg: "#417ebaee",
		InactiveFg: "#bbbbbbff", InactiveBg: "#222222ff",
		UrgentFg: "#222222ff", UrgentBg: "#eeeeeeff",
		MiddleFg: "#9b9b9bff", MiddleBg: "#2f4e6aee",
		MiddleSelFg: "#040810ff", MiddleSelBg: "#417ebaee",
	},
	"rose-pine": {
		Name:        "Rose Pine",
		Description: "Dark theme with muted, natural tones",
		Dark:        true,
		TimeFg:      "#191724", TimeBg: "#c4a7e7",
		ActiveFg: "#191724", ActiveBg: "#ebbcba",
		OccupiedFg: "#e0def4", OccupiedBg: "#26233a",
		InactiveFg: "#908caa", InactiveBg: "#191724",
		UrgentFg: "#191724", UrgentBg: "#eb6f92",
		MiddleFg: "#908caa", MiddleBg: "#1f1d2e",
		MiddleSelFg: "#e0def4", MiddleSelBg: "#26233a",
	},
	"rose-pine-dawn": {
		Name:        "Rose Pine Dawn",
		Description: "Soft light theme with warm colors",
		Dark:        false,
		TimeFg:      "#faf4ed", TimeBg: "#907aa9",
		ActiveFg: "#faf4ed", ActiveBg: "#d7827e",
		OccupiedFg: "#575279", OccupiedBg: "#f2e9e1",
		InactiveFg: "#9893a5", InactiveBg: "#faf4ed",
		UrgentFg: "#faf4ed", UrgentBg: "#b4637a",
		MiddleFg: "#797593", MiddleBg: "#fffaf3",
		MiddleSelFg: "#575279", MiddleSelBg: "#f2e9e1",
	},
	"catppuccin-mocha": {
		Name:        "Catppuccin Mocha",
		Description: "Soothing pastel theme, darkest flavor",
		Dark:        true,
		TimeBg:      "#cba6f7",
		ActiveBg:    "#89b4fa",
		OccupiedFg:  "#cdd6f4", OccupiedBg: "#313244",
		InactiveFg: "#6c7086", InactiveBg: "#1e1e2e",
		UrgentBg: "#f38ba8",
		MiddleFg: "#a6adc8", MiddleBg: "#181825",
		MiddleSelFg: "#cdd6f4", MiddleSelBg: "#313244",
	},
	"dracula": {
		Name:        "Dracula",
		Description: "Dark theme with vibrant colors",
		Dark:        true,
		TimeBg:      "#bd93f9",
		ActiveBg:    "#ff79c6",
		OccupiedFg:  "#f8f8f2", OccupiedBg: "#44475a",
		InactiveFg: "#6272a4", InactiveBg: "#282a36",
		UrgentBg: "#ff5555",
		MiddleFg: "#f8f8f2", MiddleBg: "#21222c",
		MiddleSelFg: "#f8f8f2", MiddleSelBg: "#44475a",
	},
	"nord": {
		Name:        "Nord",
		Description: "Arctic, north-bluish color palette",
		Dark:        true,
		TimeBg:      "#b48ead",
		ActiveBg:    "#88c0d0",
		OccupiedFg:  "#eceff4", OccupiedBg: "#434c5e",
		InactiveFg: "#7b88a1", InactiveBg: "#2e3440",
		UrgentBg: "#bf616a",
		MiddleFg: "#d8dee9", MiddleBg: "#3b4252",
		MiddleSelFg: "#eceff4", MiddleSelBg: "#4c566a",
	},
	"gruvbox-dark": {
		Name:        "Gruvbox Dark",
		Description: "Retro groove color scheme",
		Dark:        true,
		TimeBg:      "#d3869b",
		ActiveBg:    "#fabd2f",
		OccupiedFg:  "#ebdbb2", OccupiedBg: "#504945",
		InactiveFg: "#928374", InactiveBg: "#282828",
		UrgentBg: "#fb4934",
		MiddleFg: "#a89984", MiddleBg: "#3c3836",
		MiddleSelFg: "#ebdbb2", MiddleSelBg: "#504945",
	},
	"solarized-light": {
		Name:        "Solarized Light",
		Description: "Precision colors for machines and people",
		Dark:        false,
		TimeBg:      "#6c71c4",
		ActiveBg:    "#268bd2",
		OccupiedFg:  "#586e75", OccupiedBg: "#eee8d5",
		InactiveFg: "#93a1a1", InactiveBg: "#fdf6e3",
		UrgentBg: "#dc322f",
		MiddleFg: "#657b83", MiddleBg: "#eee8d5",
		MiddleSelFg: "#073642", MiddleSelBg: "#93a1a1",
	},
}

// GetTheme returns a theme by name, or the default theme if not found.
func GetTheme(name string) Theme {
	if theme, ok := Themes[name]; ok {
		return theme
	}
	return Themes["default"]
}

// ListThemes returns all available theme names, sorted.
func ListThemes() []string {
	names := make([]string, 0, len(Themes))
	for name := range Themes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Palette resolves the theme's hex strings.
func (t Theme) Palette() (Palette, error) {
	var p Palette
	entries := []struct {
		name   string
		fg, bg string
		dst    *Pair
	}{
		{"time", t.TimeFg, t.TimeBg, &p.Time},
		{"active", t.ActiveFg, t.ActiveBg, &p.Active},
		{"occupied", t.OccupiedFg, t.OccupiedBg, &p.Occupied},
		{"inactive", t.InactiveFg, t.InactiveBg, &p.Inactive},
		{"urgent", t.UrgentFg, t.UrgentBg, &p.Urgent},
		{"middle", t.MiddleFg, t.MiddleBg, &p.Middle},
		{"middle_sel", t.MiddleSelFg, t.MiddleSelBg, &p.MiddleSel},
	}
	for _, e := range entries {
		pair, err := resolvePair(e.fg, e.bg)
		if err != nil {
			return Palette{}, fmt.Errorf("theme %s: %s: %w", t.Name, e.name, err)
		}
		*e.dst = pair
	}
	return p, nil
}

// DefaultPalette is the resolved "default" theme.
func DefaultPalette() Palette {
	p, err := Themes["default"].Palette()
	if err != nil {
		panic(err)
	}
	return p
}
