// Package prefix decorates viewers in the viewer list with a label and a sort
// position.
//
// Each viewer is placed in a team of its own whose name starts with the
// priority of its assigned Definition. The viewer list sorts teams by name, so
// the priority acts as a sort key. Because the sort is on text, priorities
// compare by the lexicographic order of their decimal form, not by magnitude:
// 10 sorts before 9, and 91 sorts after 9. Use Less to compare priorities the
// way the viewer list will.
package prefix

import (
	"maps"
	"strconv"

	"github.com/dyluth/simpleboard/pkg/richtext"
	"github.com/dyluth/simpleboard/pkg/substrate"
)

// Definition is a reusable prefix: a label, a priority, an optional permission,
// a colour and team options. Label and priority are fixed at construction; the
// With* setters configure the rest and return the receiver for chaining.
//
// A Definition may be assigned to many viewers at once. Finish configuring it
// before sharing it.
type Definition struct {
	label      richtext.Component
	priority   int
	color      richtext.Color
	permission string
	options    map[substrate.Option]substrate.OptionStatus
}

// NewDefinition creates a definition. Lower priorities, compared as text,
// sort first (see Less).
func NewDefinition(label richtext.Component, priority int) *Definition {
	return &Definition{
		label:    label,
		priority: priority,
		options:  make(map[substrate.Option]substrate.OptionStatus),
	}
}

// WithColor sets the team colour.
func (d *Definition) WithColor(color richtext.Color) *Definition {
	d.color = color
	return d
}

// WithPermission sets the permission a viewer needs to be offered this prefix.
func (d *Definition) WithPermission(permission string) *Definition {
	d.permission = permission
	return d
}

// WithOption sets a team option. Setting the same option again overwrites it.
func (d *Definition) WithOption(option substrate.Option, status substrate.OptionStatus) *Definition {
	d.options[option] = status
	return d
}

// Label returns the prefix label.
func (d *Definition) Label() richtext.Component {
	return d.label
}

// Priority returns the ordering priority.
func (d *Definition) Priority() int {
	return d.priority
}

// Color returns the team colour, richtext.DefaultColor if unset.
func (d *Definition) Color() richtext.Color {
	if d.color == "" {
		return richtext.DefaultColor
	}
	return d.color
}

// Permission returns the required permission, "" if unrestricted.
func (d *Definition) Permission() string {
	return d.permission
}

// Options returns a copy of the configured team options.
func (d *Definition) Options() map[substrate.Option]substrate.OptionStatus {
	return maps.Clone(d.options)
}

// Less reports whether priority a sorts before priority b in the viewer list:
// the decimal forms are compared as strings.
func Less(a, b int) bool {
	return strconv.Itoa(a) < strconv.Itoa(b)
}
