package memory

import (
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/dyluth/simpleboard/pkg/substrate"
)

// Player is a simple substrate.Viewer.
type Player struct {
	UUID        uuid.UUID
	DisplayName string
	Permissions []string
}

var _ substrate.Viewer = (*Player)(nil)

// NewPlayer creates a player with a random identity.
func NewPlayer(name string, permissions ...string) *Player {
	return &Player{UUID: uuid.New(), DisplayName: name, Permissions: permissions}
}

// ID returns the player's identity.
func (p *Player) ID() uuid.UUID {
	return p.UUID
}

// Name returns the display name.
func (p *Player) Name() string {
	return p.DisplayName
}

// HasPermission reports whether the player holds permission.
func (p *Player) HasPermission(permission string) bool {
	return permission == "" || slices.Contains(p.Permissions, permission)
}

// Directory is an in-memory substrate.Directory preserving join order.
type Directory struct {
	mu      sync.RWMutex
	viewers []substrate.Viewer
}

var _ substrate.Directory = (*Directory)(nil)

// NewDirectory creates a directory with the given viewers online.
func NewDirectory(viewers ...substrate.Viewer) *Directory {
	d := &Directory{}
	for _, v := range viewers {
		d.Join(v)
	}
	return d
}

// Join marks viewer as online. Joining twice is a no-op.
func (d *Directory) Join(viewer substrate.Viewer) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, v := range d.viewers {
		if v.ID() == viewer.ID() {
			return
		}
	}
	d.viewers = append(d.viewers, viewer)
}

// Leave marks viewer as offline.
func (d *Directory) Leave(viewer substrate.Viewer) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.viewers = slices.DeleteFunc(d.viewers, func(v substrate.Viewer) bool { return v.ID() == viewer.ID() })
}

// Online returns a snapshot of the connected viewers.
func (d *Directory) Online() []substrate.Viewer {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return slices.Clone(d.viewers)
}
