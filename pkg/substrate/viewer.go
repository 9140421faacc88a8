package substrate

import "github.com/google/uuid"

// Viewer is a connected identity that can be shown scoreboards.
type Viewer interface {
	// ID is the stable identity of the viewer.
	ID() uuid.UUID

	// Name is the display name; it is the entry used for the viewer's team membership.
	Name() string

	// HasPermission reports whether the viewer holds permission. The empty
	// permission is always held.
	HasPermission(permission string) bool
}

// Directory enumerates the currently connected viewers.
type Directory interface {
	Online() []Viewer
}
