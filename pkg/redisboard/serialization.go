package redisboard

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dyluth/simpleboard/pkg/richtext"
	"github.com/dyluth/simpleboard/pkg/substrate"
)

// Serialization helpers for converting between substrate values and Redis hashes.
//
// Rich text is stored as its JSON span list. Team options are stored as
// "option:{name}" fields of the team hash.

const optionFieldPrefix = "option:"

// objectiveRecord is the JSON value stored per objective in the objectives hash.
type objectiveRecord struct {
	DisplayName richtext.Component    `json:"display_name"`
	Slot        substrate.DisplaySlot `json:"slot"`
}

func encodeObjective(displayName richtext.Component, slot substrate.DisplaySlot) (string, error) {
	data, err := json.Marshal(objectiveRecord{DisplayName: displayName, Slot: slot})
	if err != nil {
		return "", fmt.Errorf("failed to marshal objective: %w", err)
	}
	return string(data), nil
}

func decodeObjective(raw string) (objectiveRecord, error) {
	var rec objectiveRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return objectiveRecord{}, fmt.Errorf("failed to unmarshal objective: %w", err)
	}
	return rec, nil
}

// EncodeComponent converts rich text to its stored JSON form.
func EncodeComponent(c richtext.Component) (string, error) {
	if c == nil {
		c = richtext.Component{}
	}
	data, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("failed to marshal component: %w", err)
	}
	return string(data), nil
}

// DecodeComponent parses the stored JSON form of rich text. An empty string
// decodes to an empty component.
func DecodeComponent(raw string) (richtext.Component, error) {
	if raw == "" {
		return richtext.Component{}, nil
	}
	var c richtext.Component
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		return nil, fmt.Errorf("failed to unmarshal component: %w", err)
	}
	return c, nil
}

// TeamState is the decoded content of a team hash.
type TeamState struct {
	Prefix  richtext.Component
	Color   richtext.Color
	Options map[substrate.Option]substrate.OptionStatus
}

// HashToTeam converts a Redis team hash to a TeamState. Missing fields take
// their defaults.
func HashToTeam(hash map[string]string) (*TeamState, error) {
	prefix, err := DecodeComponent(hash["prefix"])
	if err != nil {
		return nil, fmt.Errorf("invalid prefix field: %w", err)
	}

	state := &TeamState{
		Prefix:  prefix,
		Color:   richtext.DefaultColor,
		Options: make(map[substrate.Option]substrate.OptionStatus),
	}
	if c := hash["color"]; c != "" {
		state.Color = richtext.Color(c)
	}
	for field, value := range hash {
		if name, ok := strings.CutPrefix(field, optionFieldPrefix); ok {
			state.Options[substrate.Option(name)] = substrate.OptionStatus(value)
		}
	}
	return state, nil
}

// EventKind names a substrate mutation.
type EventKind string

const (
	EventRegisterObjective EventKind = "register_objective"
	EventSetDisplayName    EventKind = "set_display_name"
	EventSetScore          EventKind = "set_score"
	EventResetScores       EventKind = "reset_scores"
	EventRegisterTeam      EventKind = "register_team"
	EventUnregisterTeam    EventKind = "unregister_team"
	EventSetPrefix         EventKind = "set_prefix"
	EventSetColor          EventKind = "set_color"
	EventSetOption         EventKind = "set_option"
	EventAddEntry          EventKind = "add_entry"
	EventRemoveEntry       EventKind = "remove_entry"
	EventBind              EventKind = "bind"
)

// Event describes one mutation, published on the instance events channel
// after it was written.
type Event struct {
	Scoreboard  string    `json:"scoreboard"`
	Kind        EventKind `json:"kind"`
	Name        string    `json:"name,omitempty"`
	Entry       string    `json:"entry,omitempty"`
	Score       int       `json:"score"`
	Value       string    `json:"value,omitempty"`
	TimestampMs int64     `json:"timestamp_ms"`
}
