package printer

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/fatih/color"

	"github.com/dyluth/simpleboard/pkg/prefix"
	"github.com/dyluth/simpleboard/pkg/richtext"
)

// SidebarLine is one rendered sidebar row.
type SidebarLine struct {
	Text  richtext.Component
	Score int
}

var score = color.New(color.FgHiRed)

// Sidebar draws a sidebar: the title, a rule, then one row per line with its
// score right-aligned, highest score first as given.
func Sidebar(w io.Writer, title richtext.Component, lines []SidebarLine) error {
	width := utf8.RuneCountInString(title.PlainText())
	scoreWidth := 0
	for _, l := range lines {
		width = max(width, utf8.RuneCountInString(l.Text.PlainText()))
		scoreWidth = max(scoreWidth, len(strconv.Itoa(l.Score)))
	}
	total := width + scoreWidth + 1

	pad := (total - utf8.RuneCountInString(title.PlainText())) / 2
	fmt.Fprint(w, strings.Repeat(" ", pad))
	if err := richtext.Render(w, title, richtext.DefaultColor); err != nil {
		return err
	}
	fmt.Fprintf(w, "\n%s\n", strings.Repeat("─", total))

	for _, l := range lines {
		if err := richtext.Render(w, l.Text, richtext.DefaultColor); err != nil {
			return err
		}
		gap := width - utf8.RuneCountInString(l.Text.PlainText()) + 1
		fmt.Fprint(w, strings.Repeat(" ", gap))
		score.Fprintf(w, "%*d\n", scoreWidth, l.Score)
	}
	return nil
}

// Prefixes prints the catalog entries in the given order, one per row.
func Prefixes(w io.Writer, entries []prefix.Named) error {
	fmt.Fprintf(w, "%-16s %-8s %-24s %-14s %s\n", "NAME", "PRIORITY", "LABEL", "COLOR", "PERMISSION")
	for _, e := range entries {
		def := e.Definition
		label := def.Label().PlainText()

		fmt.Fprintf(w, "%-16s %-8d ", e.Name, def.Priority())
		if err := richtext.Render(w, def.Label(), def.Color()); err != nil {
			return err
		}
		permission := def.Permission()
		if permission == "" {
			permission = "-"
		}
		fmt.Fprintf(w, "%s %-14s %s\n", strings.Repeat(" ", max(1, 25-utf8.RuneCountInString(label))), def.Color(), permission)
	}
	return nil
}
