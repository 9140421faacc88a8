// Package watch streams substrate mutation events for the watch command.
package watch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/dyluth/simpleboard/internal/filter"
	"github.com/dyluth/simpleboard/pkg/redisboard"
)

// OutputFormat specifies how events are written.
type OutputFormat string

const (
	// OutputFormatDefault writes one human-readable line per event
	OutputFormatDefault OutputFormat = "default"

	// OutputFormatJSON writes line-delimited JSON
	OutputFormatJSON OutputFormat = "json"
)

// ParseOutputFormat resolves a --output flag value.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(s); f {
	case OutputFormatDefault, OutputFormatJSON:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format: %s", s)
	}
}

type formatter interface {
	FormatEvent(ev *redisboard.Event) error
}

func newFormatter(format OutputFormat, w io.Writer) (formatter, error) {
	switch format {
	case OutputFormatDefault:
		return &defaultFormatter{writer: w}, nil
	case OutputFormatJSON:
		return &jsonFormatter{encoder: json.NewEncoder(w)}, nil
	default:
		return nil, fmt.Errorf("unknown output format: %s", format)
	}
}

// StreamEvents subscribes to the instance's events and writes every event
// matching criteria to w until ctx is cancelled. criteria may be nil.
func StreamEvents(ctx context.Context, client *redisboard.Client, format OutputFormat, criteria *filter.Criteria, w io.Writer) error {
	f, err := newFormatter(format, w)
	if err != nil {
		return err
	}

	sub, err := client.Subscribe(ctx)
	if err != nil {
		return err
	}
	defer sub.Close()

	errs := sub.Errors()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-sub.Events():
			if !ok {
				return nil
			}
			if criteria != nil && !criteria.Matches(ev) {
				continue
			}
			if err := f.FormatEvent(ev); err != nil {
				return fmt.Errorf("failed to write event: %w", err)
			}
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			log.Printf("[Watch] Skipping event: %v", err)
		}
	}
}

type defaultFormatter struct {
	writer io.Writer
}

// FormatEvent writes "[15:04:05] <scoreboard> <description>".
func (f *defaultFormatter) FormatEvent(ev *redisboard.Event) error {
	ts := time.UnixMilli(ev.TimestampMs).Format("15:04:05")
	_, err := fmt.Fprintf(f.writer, "[%s] %s %s\n", ts, shortID(ev.Scoreboard), describe(ev))
	return err
}

func describe(ev *redisboard.Event) string {
	switch ev.Kind {
	case redisboard.EventRegisterObjective:
		return fmt.Sprintf("objective %s registered: %q", ev.Name, ev.Value)
	case redisboard.EventSetDisplayName:
		return fmt.Sprintf("objective %s renamed: %q", ev.Name, ev.Value)
	case redisboard.EventSetScore:
		return fmt.Sprintf("score %q = %d in %s", ev.Entry, ev.Score, ev.Name)
	case redisboard.EventResetScores:
		return fmt.Sprintf("scores of %q reset", ev.Entry)
	case redisboard.EventRegisterTeam:
		return fmt.Sprintf("team %s registered", ev.Name)
	case redisboard.EventUnregisterTeam:
		return fmt.Sprintf("team %s unregistered", ev.Name)
	case redisboard.EventSetPrefix:
		return fmt.Sprintf("team %s prefix: %q", ev.Name, ev.Value)
	case redisboard.EventSetColor:
		return fmt.Sprintf("team %s color: %s", ev.Name, ev.Value)
	case redisboard.EventSetOption:
		return fmt.Sprintf("team %s option %s: %s", ev.Name, ev.Entry, ev.Value)
	case redisboard.EventAddEntry:
		return fmt.Sprintf("%q joined team %s", ev.Entry, ev.Name)
	case redisboard.EventRemoveEntry:
		return fmt.Sprintf("%q left team %s", ev.Entry, ev.Name)
	case redisboard.EventBind:
		return fmt.Sprintf("viewer %s bound", ev.Entry)
	default:
		return fmt.Sprintf("%s %s", ev.Kind, ev.Name)
	}
}

// shortID returns the first 8 characters of a scoreboard id.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

type jsonFormatter struct {
	encoder *json.Encoder
}

func (f *jsonFormatter) FormatEvent(ev *redisboard.Event) error {
	return f.encoder.Encode(ev)
}
