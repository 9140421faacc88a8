// Package richtext provides the value-comparable rich text used for board lines,
// board titles and prefix labels.
//
// Markup parsing is deliberately absent: a Component is built from plain strings
// with explicit colours and decorations. Two components built from the same parts
// compare equal with Equal, even when they come from different calls, which is
// what the sidebar diff relies on.
package richtext

import (
	"fmt"
	"slices"
	"strings"
)

// Color is one of the sixteen named colours understood by the substrate.
type Color string

const (
	Black       Color = "black"
	DarkBlue    Color = "dark_blue"
	DarkGreen   Color = "dark_green"
	DarkAqua    Color = "dark_aqua"
	DarkRed     Color = "dark_red"
	DarkPurple  Color = "dark_purple"
	Gold        Color = "gold"
	Gray        Color = "gray"
	DarkGray    Color = "dark_gray"
	Blue        Color = "blue"
	Green       Color = "green"
	Aqua        Color = "aqua"
	Red         Color = "red"
	LightPurple Color = "light_purple"
	Yellow      Color = "yellow"
	White       Color = "white"
)

// DefaultColor is the neutral colour used when nothing else is configured.
const DefaultColor = White

var namedColors = []Color{
	Black, DarkBlue, DarkGreen, DarkAqua, DarkRed, DarkPurple, Gold, Gray,
	DarkGray, Blue, Green, Aqua, Red, LightPurple, Yellow, White,
}

// ParseColor resolves a colour name (case-insensitive). An empty name yields DefaultColor.
func ParseColor(name string) (Color, error) {
	if name == "" {
		return DefaultColor, nil
	}
	c := Color(strings.ToLower(name))
	if !slices.Contains(namedColors, c) {
		return "", fmt.Errorf("unknown color: %s", name)
	}
	return c, nil
}

// Span is a run of text sharing one style. Spans are comparable with ==.
type Span struct {
	Text   string `json:"text"`
	Color  Color  `json:"color,omitempty"`
	Bold   bool   `json:"bold,omitempty"`
	Italic bool   `json:"italic,omitempty"`
}

// Component is an ordered list of spans. The zero value is the empty component.
type Component []Span

// Plain returns an unstyled component.
func Plain(text string) Component {
	return Component{{Text: text}}
}

// Colored returns a single-span component in the given colour.
func Colored(text string, color Color) Component {
	return Component{{Text: text, Color: color}}
}

// Append returns a new component with other's spans after c's. Neither input is modified.
func (c Component) Append(other Component) Component {
	out := make(Component, 0, len(c)+len(other))
	out = append(out, c...)
	return append(out, other...)
}

// Equal reports whether both components hold the same spans in the same order.
func (c Component) Equal(other Component) bool {
	return slices.Equal(c, other)
}

// IsEmpty reports whether the component has no visible text.
func (c Component) IsEmpty() bool {
	for _, s := range c {
		if s.Text != "" {
			return false
		}
	}
	return true
}

// PlainText concatenates the text of every span, dropping styles.
func (c Component) PlainText() string {
	var b strings.Builder
	for _, s := range c {
		b.WriteString(s.Text)
	}
	return b.String()
}

// String implements fmt.Stringer.
func (c Component) String() string {
	return c.PlainText()
}
