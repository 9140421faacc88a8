package prefix

import (
	"fmt"
	"maps"
	"sort"
	"strings"
	"sync"

	"github.com/dyluth/simpleboard/pkg/substrate"
)

// Catalog is a registry of reusable definitions keyed by case-insensitive name.
// It is safe for concurrent use.
type Catalog struct {
	mu          sync.RWMutex
	definitions map[string]*Definition
}

// NewCatalog creates an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{definitions: make(map[string]*Definition)}
}

func key(name string) string {
	return strings.ToLower(name)
}

func validate(name string, def *Definition) error {
	if name == "" || def == nil {
		return fmt.Errorf("%w: name and definition must not be empty", substrate.ErrInvalidArgument)
	}
	return nil
}

// Register stores def under name unless the name is taken. Returns whether
// def was stored.
func (c *Catalog) Register(name string, def *Definition) (bool, error) {
	if err := validate(name, def); err != nil {
		return false, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	k := key(name)
	if _, exists := c.definitions[k]; exists {
		return false, nil
	}
	c.definitions[k] = def
	return true, nil
}

// Override stores def under name, replacing any existing definition.
func (c *Catalog) Override(name string, def *Definition) error {
	if err := validate(name, def); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.definitions[key(name)] = def
	return nil
}

// Lookup returns the definition registered under name. Unknown and empty
// names report false.
func (c *Catalog) Lookup(name string) (*Definition, bool) {
	if name == "" {
		return nil, false
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	def, ok := c.definitions[key(name)]
	return def, ok
}

// All returns a snapshot of the catalog keyed by lowercased name. Later
// changes to the catalog are not reflected in it.
func (c *Catalog) All() map[string]*Definition {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return maps.Clone(c.definitions)
}

// Named pairs a definition with its catalog name.
type Named struct {
	Name       string
	Definition *Definition
}

// Sorted returns every definition in viewer-list order (see Less), ties broken by name.
func (c *Catalog) Sorted() []Named {
	all := c.All()
	out := make([]Named, 0, len(all))
	for name, def := range all {
		out = append(out, Named{Name: name, Definition: def})
	}
	sort.Slice(out, func(i, j int) bool {
		pi, pj := out[i].Definition.Priority(), out[j].Definition.Priority()
		if pi != pj {
			return Less(pi, pj)
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// Eligible returns the definitions viewer holds the permission for, in
// viewer-list order.
func (c *Catalog) Eligible(viewer substrate.Viewer) []Named {
	var out []Named
	for _, n := range c.Sorted() {
		if viewer.HasPermission(n.Definition.Permission()) {
			out = append(out, n)
		}
	}
	return out
}

// Best returns the first eligible definition for viewer.
func (c *Catalog) Best(viewer substrate.Viewer) (Named, bool) {
	eligible := c.Eligible(viewer)
	if len(eligible) == 0 {
		return Named{}, false
	}
	return eligible[0], true
}
