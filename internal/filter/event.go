package filter

import (
	"path/filepath"

	"github.com/dyluth/simpleboard/pkg/redisboard"
)

// Criteria defines filtering criteria for mutation events.
// All filters are ANDed together - an event must match ALL criteria to pass.
type Criteria struct {
	KindGlob   string // Glob pattern for the event kind, empty = no filter
	NameGlob   string // Glob pattern for the objective or team name, empty = no filter
	Scoreboard string // Exact scoreboard id, empty = no filter
}

// Matches returns true if the event matches all filter criteria.
// Empty criteria values are treated as "match all" for that criterion.
func (c *Criteria) Matches(ev *redisboard.Event) bool {
	if c.KindGlob != "" && !glob(c.KindGlob, string(ev.Kind)) {
		return false
	}
	if c.NameGlob != "" && !glob(c.NameGlob, ev.Name) {
		return false
	}
	if c.Scoreboard != "" && ev.Scoreboard != c.Scoreboard {
		return false
	}
	return true
}

// HasFilters returns true if any filters are active.
func (c *Criteria) HasFilters() bool {
	return c.KindGlob != "" || c.NameGlob != "" || c.Scoreboard != ""
}

// Validate checks the glob patterns are well-formed.
func (c *Criteria) Validate() error {
	for _, pattern := range []string{c.KindGlob, c.NameGlob} {
		if _, err := filepath.Match(pattern, ""); err != nil {
			return err
		}
	}
	return nil
}

func glob(pattern, value string) bool {
	matched, err := filepath.Match(pattern, value)
	return err == nil && matched
}
