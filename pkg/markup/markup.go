// Package markup parses status text with inline directives into plain
// display text, color spans and clickable button regions.
//
// Directives:
//
//	^^          literal caret
//	^fg(color)  foreground from here on; empty color resets
//	^bg(color)  background from here on; empty color resets
//	^lm(cmd)    left-click region; empty cmd closes the open one
//	^mm(cmd)    middle-click region
//	^rm(cmd)    right-click region
//	^us(cmd)    scroll-up region
//	^ds(cmd)    scroll-down region
//
// Colors are "#rrggbb" or "#rrggbbaa", the '#' optional.
package markup

import (
	"image/color"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/brendandebeasi/dwlb/pkg/colors"
	"github.com/brendandebeasi/dwlb/pkg/fonts"
)

// MaxTextBytes bounds the normalized text.
const MaxTextBytes = 2048

// Trigger is the pointer action a button region responds to.
type Trigger int

const (
	TriggerLeft Trigger = iota
	TriggerMiddle
	TriggerRight
	TriggerScrollUp
	TriggerScrollDown
	numTriggers
)

func (t Trigger) String() string {
	switch t {
	case TriggerLeft:
		return "left"
	case TriggerMiddle:
		return "middle"
	case TriggerRight:
		return "right"
	case TriggerScrollUp:
		return "scroll-up"
	case TriggerScrollDown:
		return "scroll-down"
	}
	return "unknown"
}

var triggerNames = map[string]Trigger{
	"lm": TriggerLeft,
	"mm": TriggerMiddle,
	"rm": TriggerRight,
	"us": TriggerScrollUp,
	"ds": TriggerScrollDown,
}

// ColorSpan switches the foreground or background color starting at a
// byte offset of the normalized text. It lasts until the next span of the
// same kind.
type ColorSpan struct {
	Offset     int
	Background bool
	Color      color.NRGBA64
}

// ButtonRegion is a pixel range of the status text, measured from the
// start of the text (padding excluded), bound to a shell command.
type ButtonRegion struct {
	Trigger Trigger
	Start   int
	End     int
	Command string
}

// Contains reports whether x falls in the region, both ends inclusive.
func (b ButtonRegion) Contains(x int) bool {
	return x >= b.Start && x <= b.End
}

// StatusText is a parsed status string.
type StatusText struct {
	Text    string
	Colors  []ColorSpan
	Buttons []ButtonRegion
}

// Parser turns raw status strings into StatusText. It depends on the face
// because button regions are tracked in pixels.
type Parser struct {
	Face fonts.Face
	// Default is used for empty or malformed color arguments.
	Default colors.Pair
}

// NewParser returns a parser for face with the given reset colors.
func NewParser(face fonts.Face, def colors.Pair) *Parser {
	return &Parser{Face: face, Default: def}
}

type parseState struct {
	p    *Parser
	text strings.Builder
	pen  int
	prev rune
	// placed is false until a glyph has been advanced over; kerning needs
	// a previous rune.
	placed bool
	spans  []ColorSpan
	btns   []ButtonRegion
	open   [numTriggers]int // index into btns, -1 when closed
}

// Parse scans raw once. A caret that does not begin a complete
// "name(arg)" directive is kept as text. Unknown directive names are
// dropped along with their argument.
func (p *Parser) Parse(raw string) StatusText {
	st := &parseState{p: p}
	for i := range st.open {
		st.open[i] = -1
	}
	// No directive can close past the last ')', so carets after it are
	// literal without scanning.
	lastClose := strings.LastIndexByte(raw, ')')

	i := 0
	for i < len(raw) {
		if raw[i] == '^' {
			if i+1 < len(raw) && raw[i+1] == '^' {
				if !st.emit("^") {
					break
				}
				i += 2
				continue
			}
			if next, ok := st.directive(raw, i+1, lastClose); ok {
				i = next
				continue
			}
		}
		r, size := utf8.DecodeRuneInString(raw[i:])
		chunk := raw[i : i+size]
		if r == utf8.RuneError && size == 1 {
			chunk = string(utf8.RuneError)
		}
		if !st.emit(chunk) {
			break
		}
		i += size
	}
	return st.finish()
}

// directive parses "name(arg)" starting at start. It returns the index
// after ')' and whether a directive was recognized syntactically.
func (st *parseState) directive(raw string, start, lastClose int) (int, bool) {
	j := start
	for j < len(raw) && isNameByte(raw[j]) {
		j++
	}
	if j == start || j >= len(raw) || raw[j] != '(' || j >= lastClose {
		return 0, false
	}
	end := strings.IndexByte(raw[j+1:], ')')
	if end < 0 {
		return 0, false
	}
	name := raw[start:j]
	arg := raw[j+1 : j+1+end]
	st.apply(name, arg)
	return j + 1 + end + 1, true
}

func isNameByte(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

func (st *parseState) apply(name, arg string) {
	switch name {
	case "fg":
		st.addSpan(false, st.color(arg, st.p.Default.Fg))
	case "bg":
		st.addSpan(true, st.color(arg, st.p.Default.Bg))
	default:
		if trig, ok := triggerNames[name]; ok {
			st.button(trig, arg)
		}
	}
}

// color parses arg. Empty and malformed arguments both yield def.
func (st *parseState) color(arg string, def color.NRGBA64) color.NRGBA64 {
	if arg == "" {
		return def
	}
	c, err := colors.ParseHex(arg)
	if err != nil {
		return def
	}
	return c
}

func (st *parseState) addSpan(bg bool, c color.NRGBA64) {
	off := st.text.Len()
	for k := len(st.spans) - 1; k >= 0; k-- {
		s := st.spans[k]
		if s.Offset != off {
			break
		}
		if s.Background == bg {
			st.spans[k].Color = c
			return
		}
	}
	st.spans = append(st.spans, ColorSpan{Offset: off, Background: bg, Color: c})
}

func (st *parseState) button(trig Trigger, cmd string) {
	if idx := st.open[trig]; idx >= 0 {
		st.open[trig] = -1
		if st.pen <= st.btns[idx].Start {
			// Nothing was drawn inside it; a zero-width region would
			// still claim the pixel at Start from the next one.
			st.drop(idx)
		} else {
			st.close(idx)
		}
	}
	if cmd == "" {
		return
	}
	st.open[trig] = len(st.btns)
	st.btns = append(st.btns, ButtonRegion{Trigger: trig, Start: st.pen, End: st.pen, Command: cmd})
}

// drop removes an empty region and renumbers the open ones after it.
func (st *parseState) drop(idx int) {
	st.btns = slices.Delete(st.btns, idx, idx+1)
	for t, open := range st.open {
		if open > idx {
			st.open[t] = open - 1
		}
	}
	if len(st.btns) == 0 {
		st.btns = nil
	}
}

// close stamps the current pen on an open region. Negative kerning can
// pull the pen back, so End is clamped to Start.
func (st *parseState) close(idx int) {
	b := &st.btns[idx]
	b.End = max(st.pen, b.Start)
}

// emit appends a decoded rune's bytes and advances the pen. It reports
// false once the text bound is reached.
func (st *parseState) emit(chunk string) bool {
	if st.text.Len()+len(chunk) > MaxTextBytes {
		return false
	}
	st.text.WriteString(chunk)
	r, _ := utf8.DecodeRuneInString(chunk)
	adv, ok := st.p.Face.Advance(r)
	if !ok {
		return true
	}
	if st.placed {
		st.pen += st.p.Face.Kern(st.prev, r)
	}
	st.pen += adv
	st.prev = r
	st.placed = true
	return true
}

func (st *parseState) finish() StatusText {
	for _, idx := range st.open {
		if idx >= 0 {
			st.close(idx)
		}
	}
	// A span starting at the very end colors nothing.
	n := st.text.Len()
	spans := st.spans
	for len(spans) > 0 && spans[len(spans)-1].Offset >= n {
		spans = spans[:len(spans)-1]
	}
	return StatusText{Text: st.text.String(), Colors: spans, Buttons: st.btns}
}
