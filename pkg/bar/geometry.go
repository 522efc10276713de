package bar

// Span is a horizontal pixel range [X0, X1).
type Span struct {
	X0, X1 int
}

// Contains reports whether x lies in the span.
func (s Span) Contains(x int) bool {
	return x >= s.X0 && x < s.X1
}

// Width returns X1 - X0.
func (s Span) Width() int {
	return s.X1 - s.X0
}

// TagCell is the drawn cell of one tag.
type TagCell struct {
	Tag int
	Span
}

// Geometry records region boundaries from the last render, in buffer
// pixels. Zero-width spans were not drawn.
type Geometry struct {
	Time   Span
	Tags   []TagCell
	Layout Span
	Title  Span
	Status Span
	// StatusPadding is the inset of the status text within Status.
	StatusPadding int
	Modules       []ModuleCell
}

// ModuleCell is a built-in module's drawn range.
type ModuleCell struct {
	Name string
	Span
}

// TagAt returns the tag whose cell contains x.
func (g *Geometry) TagAt(x int) (int, bool) {
	for _, c := range g.Tags {
		if c.Contains(x) {
			return c.Tag, true
		}
	}
	return 0, false
}

// Module returns the cell of a named module.
func (g *Geometry) Module(name string) (Span, bool) {
	for _, m := range g.Modules {
		if m.Name == name {
			return m.Span, true
		}
	}
	return Span{}, false
}
