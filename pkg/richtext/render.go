package richtext

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

// terminalColors maps named colours onto the closest ANSI attribute.
var terminalColors = map[Color]color.Attribute{
	Black:       color.FgBlack,
	DarkBlue:    color.FgBlue,
	DarkGreen:   color.FgGreen,
	DarkAqua:    color.FgCyan,
	DarkRed:     color.FgRed,
	DarkPurple:  color.FgMagenta,
	Gold:        color.FgYellow,
	Gray:        color.FgWhite,
	DarkGray:    color.FgHiBlack,
	Blue:        color.FgHiBlue,
	Green:       color.FgHiGreen,
	Aqua:        color.FgHiCyan,
	Red:         color.FgHiRed,
	LightPurple: color.FgHiMagenta,
	Yellow:      color.FgHiYellow,
	White:       color.FgHiWhite,
}

// Render writes the component to w using ANSI colours. A span without its own
// colour inherits base.
func Render(w io.Writer, c Component, base Color) error {
	for _, s := range c {
		if _, err := fmt.Fprint(w, styleFor(s, base).Sprint(s.Text)); err != nil {
			return err
		}
	}
	return nil
}

func styleFor(s Span, base Color) *color.Color {
	c := s.Color
	if c == "" {
		c = base
	}
	attrs := []color.Attribute{}
	if attr, ok := terminalColors[c]; ok {
		attrs = append(attrs, attr)
	}
	if s.Bold {
		attrs = append(attrs, color.Bold)
	}
	if s.Italic {
		attrs = append(attrs, color.Italic)
	}
	return color.New(attrs...)
}
