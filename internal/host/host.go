// Package host runs the boards and prefixes described by a configuration on
// a substrate: it shows every configured viewer its board, assigns prefixes
// and drives periodic board updates from a scheduler.
package host

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/dyluth/simpleboard/internal/config"
	"github.com/dyluth/simpleboard/internal/scheduler"
	"github.com/dyluth/simpleboard/pkg/prefix"
	"github.com/dyluth/simpleboard/pkg/richtext"
	"github.com/dyluth/simpleboard/pkg/sidebar"
	"github.com/dyluth/simpleboard/pkg/substrate"
	"github.com/dyluth/simpleboard/pkg/substrate/memory"
)

var _ sidebar.Trigger = (*scheduler.Scheduler)(nil)

// Host owns the boards, the prefix tables and the scheduler of one process.
type Host struct {
	cfg         *config.Config
	directory   *memory.Directory
	scheduler   *scheduler.Scheduler
	catalog     *prefix.Catalog
	assignments *prefix.Assignments
	boards      map[string]*sidebar.Board
	now         func() time.Time
}

// New builds a host for a validated configuration on manager.
func New(cfg *config.Config, manager substrate.Manager) (*Host, error) {
	catalog, err := cfg.Catalog()
	if err != nil {
		return nil, fmt.Errorf("failed to build prefix catalog: %w", err)
	}

	h := &Host{
		cfg:       cfg,
		directory: memory.NewDirectory(),
		scheduler: scheduler.New(cfg.TickLength()),
		catalog:   catalog,
		boards:    make(map[string]*sidebar.Board),
		now:       time.Now,
	}
	h.assignments = prefix.NewAssignments(manager, h.directory)

	for _, name := range cfg.BoardNames() {
		bc := cfg.Boards[name]
		board, err := sidebar.New(name, manager)
		if err != nil {
			return nil, fmt.Errorf("board '%s': %w", name, err)
		}
		if err := board.SetTitle(context.Background(), bc.TitleComponent()); err != nil {
			return nil, fmt.Errorf("board '%s': %w", name, err)
		}

		board.SetLineSource(func() []richtext.Component {
			return bc.Render(name, len(h.directory.Online()), h.now())
		})
		h.boards[name] = board
	}

	return h, nil
}

// Scheduler returns the scheduler driving board updates.
func (h *Host) Scheduler() *scheduler.Scheduler {
	return h.scheduler
}

// Catalog returns the prefix catalog built from the configuration.
func (h *Host) Catalog() *prefix.Catalog {
	return h.catalog
}

// Assignments returns the prefix assignment table.
func (h *Host) Assignments() *prefix.Assignments {
	return h.assignments
}

// Board returns a configured board.
func (h *Host) Board(name string) (*sidebar.Board, bool) {
	b, ok := h.boards[name]
	return b, ok
}

// Directory returns the online viewers.
func (h *Host) Directory() *memory.Directory {
	return h.directory
}

// Stats reports the number of boards and of online viewers.
func (h *Host) Stats() (boards, viewers int) {
	return len(h.boards), len(h.directory.Online())
}

// Start brings every configured viewer online, shows it its board, assigns
// its prefix, then schedules periodic updates of every board.
func (h *Host) Start(ctx context.Context) error {
	for _, vc := range h.cfg.Viewers {
		if err := h.Join(ctx, vc); err != nil {
			return err
		}
	}

	for _, name := range h.cfg.BoardNames() {
		interval := h.cfg.Boards[name].IntervalOf(h.scheduler.TickLength())
		if err := h.boards[name].StartPeriodic(h.scheduler, interval); err != nil {
			return err
		}
		h.logEvent("board_scheduled", map[string]interface{}{
			"board":       name,
			"interval_ms": interval.Milliseconds(),
		})
	}
	return nil
}

// Join brings one viewer online: it is shown its board and given its
// configured prefix, or the best prefix the catalog offers it.
func (h *Host) Join(ctx context.Context, vc config.ViewerConfig) error {
	viewer := vc.Player()
	boardName := h.cfg.BoardFor(vc)

	board, ok := h.boards[boardName]
	if !ok {
		return fmt.Errorf("viewer '%s': unknown board '%s'", vc.Name, boardName)
	}
	if err := board.Show(ctx, viewer); err != nil {
		return fmt.Errorf("failed to show board '%s' to '%s': %w", boardName, vc.Name, err)
	}
	h.directory.Join(viewer)

	def, prefixName, ok := h.prefixFor(vc)
	if !ok {
		h.logEvent("prefix_skipped", map[string]interface{}{"viewer": vc.Name})
		return nil
	}

	if err := h.assignments.Assign(ctx, viewer, def); err != nil {
		if !onlyMissingAssignments(err) {
			return fmt.Errorf("failed to assign prefix to '%s': %w", vc.Name, err)
		}
		log.Printf("[Host] Prefix refresh incomplete: %v", err)
	}

	h.logEvent("viewer_joined", map[string]interface{}{
		"viewer": vc.Name,
		"board":  boardName,
		"prefix": prefixName,
	})
	return nil
}

func (h *Host) prefixFor(vc config.ViewerConfig) (*prefix.Definition, string, bool) {
	if vc.Prefix != "" {
		def, ok := h.catalog.Lookup(vc.Prefix)
		return def, vc.Prefix, ok
	}
	best, ok := h.catalog.Best(vc.Player())
	return best.Definition, best.Name, ok
}

// onlyMissingAssignments reports whether every error joined in err is a
// refresh of a viewer that has no prefix yet.
func onlyMissingAssignments(err error) bool {
	joined, ok := err.(interface{ Unwrap() []error })
	if !ok {
		return errors.Is(err, prefix.ErrNoAssignment)
	}
	for _, e := range joined.Unwrap() {
		if !errors.Is(e, prefix.ErrNoAssignment) {
			return false
		}
	}
	return true
}

// Run drives the scheduler until ctx is cancelled.
func (h *Host) Run(ctx context.Context) error {
	return h.scheduler.Run(ctx)
}

// Shutdown clears every viewer's ordering team and destroys every board,
// removing its lines from the substrate. Objectives and bindings remain.
func (h *Host) Shutdown(ctx context.Context) error {
	var errs []error
	for _, vc := range h.cfg.Viewers {
		if err := h.assignments.Clear(ctx, vc.Player()); err != nil {
			errs = append(errs, fmt.Errorf("viewer '%s': %w", vc.Name, err))
		}
	}
	for _, name := range h.cfg.BoardNames() {
		if err := h.boards[name].Destroy(ctx); err != nil {
			errs = append(errs, fmt.Errorf("board '%s': %w", name, err))
		}
	}
	h.logEvent("shutdown", map[string]interface{}{"boards": len(h.boards)})
	return errors.Join(errs...)
}

// logEvent logs a structured event in JSON format.
func (h *Host) logEvent(eventType string, data map[string]interface{}) {
	data["timestamp"] = time.Now().UTC().Format(time.RFC3339)
	data["level"] = "info"
	data["component"] = "host"
	data["event_type"] = eventType
	data["instance"] = h.cfg.Redis.Instance

	jsonData, err := json.Marshal(data)
	if err != nil {
		log.Printf("[Host] Failed to marshal log event: %v", err)
		return
	}

	log.Println(string(jsonData))
}
