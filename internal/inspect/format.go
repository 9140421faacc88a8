package inspect

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/dyluth/simpleboard/internal/printer"
)

// OutputFormat specifies how snapshots are written.
type OutputFormat string

const (
	// OutputFormatDefault draws each sidebar and lists its teams
	OutputFormatDefault OutputFormat = "default"

	// OutputFormatJSONL outputs complete snapshots as line-delimited JSON
	OutputFormatJSONL OutputFormat = "jsonl"
)

// Write formats snapshots in the requested format.
func Write(w io.Writer, snaps []*Snapshot, instanceName string, format OutputFormat) error {
	switch format {
	case OutputFormatDefault:
		return FormatTable(w, snaps, instanceName)
	case OutputFormatJSONL:
		return FormatJSONL(w, snaps)
	default:
		return fmt.Errorf("unknown output format: %s", format)
	}
}

// FormatTable draws every scoreboard: its sidebar, if any, then its teams.
func FormatTable(w io.Writer, snaps []*Snapshot, instanceName string) error {
	if len(snaps) == 0 {
		fmt.Fprintf(w, "No scoreboards found for instance '%s'\n", instanceName)
		return nil
	}

	fmt.Fprintf(w, "Scoreboards for instance '%s':\n", instanceName)

	for _, snap := range snaps {
		fmt.Fprintf(w, "\nScoreboard %s\n\n", snap.ID)

		if sidebar, lines, ok := snap.Sidebar(); ok {
			if err := printer.Sidebar(w, sidebar.Title, lines); err != nil {
				return err
			}
			fmt.Fprintln(w)
		}

		if len(snap.Teams) == 0 {
			fmt.Fprintf(w, "  (no teams)\n")
			continue
		}
		fmt.Fprintf(w, "  %-18s %-12s %-24s %s\n", "TEAM", "COLOR", "PREFIX", "ENTRIES")
		for _, team := range snap.Teams {
			fmt.Fprintf(w, "  %-18s %-12s %-24q %s\n",
				team.Name, team.Color, team.Prefix.PlainText(), strings.Join(team.Entries, ", "))
		}
	}

	countMsg := "scoreboard"
	if len(snaps) != 1 {
		countMsg = "scoreboards"
	}
	fmt.Fprintf(w, "\n%d %s found\n", len(snaps), countMsg)
	return nil
}

// FormatJSONL writes each snapshot as a single JSON object on its own line.
func FormatJSONL(w io.Writer, snaps []*Snapshot) error {
	for _, snap := range snaps {
		data, err := json.Marshal(snap)
		if err != nil {
			return fmt.Errorf("failed to marshal snapshot to JSON: %w", err)
		}
		if _, err := fmt.Fprintf(w, "%s\n", data); err != nil {
			return fmt.Errorf("failed to write JSONL output: %w", err)
		}
	}
	return nil
}
