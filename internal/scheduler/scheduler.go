// Package scheduler provides the periodic trigger boards are updated from.
//
// All tasks run on a single goroutine, one tick at a time, mirroring a host's
// main simulation step: substrate mutations never race each other. Tasks may be
// registered or cancelled from any goroutine.
package scheduler

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/dyluth/simpleboard/internal/timespec"
)

// DefaultTick is the tick length when none is configured (20 ticks per second).
const DefaultTick = 50 * time.Millisecond

// Task is a unit of periodic work. A returned error is logged; the task keeps
// its schedule.
type Task = func(ctx context.Context) error

// TaskID identifies a registered task. Zero is never issued.
type TaskID = uint64

type entry struct {
	id      TaskID
	name    string
	period  int64 // ticks
	nextRun int64 // tick number
	task    Task
}

// Scheduler runs registered tasks on a fixed tick.
type Scheduler struct {
	tick time.Duration

	mu      sync.Mutex
	tasks   map[TaskID]*entry
	nextID  TaskID
	current int64
	running bool
}

// New creates a scheduler ticking every tick. A non-positive tick uses DefaultTick.
func New(tick time.Duration) *Scheduler {
	if tick <= 0 {
		tick = DefaultTick
	}
	return &Scheduler{
		tick:  tick,
		tasks: make(map[TaskID]*entry),
	}
}

// TickLength returns the scheduler's tick length.
func (s *Scheduler) TickLength() time.Duration {
	return s.tick
}

// Every registers task to run now-ish (on the next tick) and then every
// interval. The interval is rounded up to whole ticks.
func (s *Scheduler) Every(name string, interval time.Duration, task Task) (TaskID, error) {
	if task == nil {
		return 0, fmt.Errorf("task %q is nil", name)
	}
	if interval <= 0 {
		return 0, fmt.Errorf("task %q: interval must be positive, got %v", name, interval)
	}

	period := int64(timespec.Ticks(interval, s.tick))

	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	id := s.nextID
	s.tasks[id] = &entry{
		id:      id,
		name:    name,
		period:  period,
		nextRun: s.current,
		task:    task,
	}
	return id, nil
}

// Cancel removes a task. Returns false if it was not registered.
func (s *Scheduler) Cancel(id TaskID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tasks[id]; !ok {
		return false
	}
	delete(s.tasks, id)
	return true
}

// Len returns the number of registered tasks.
func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

// Step runs one tick: every due task runs, in registration order, on the
// calling goroutine.
func (s *Scheduler) Step(ctx context.Context) {
	s.mu.Lock()
	now := s.current
	s.current++
	due := make([]*entry, 0, len(s.tasks))
	for _, e := range s.tasks {
		if e.nextRun <= now {
			e.nextRun = now + e.period
			due = append(due, e)
		}
	}
	s.mu.Unlock()

	sort.Slice(due, func(i, j int) bool { return due[i].id < due[j].id })

	for _, e := range due {
		// A task cancelled by an earlier task in this tick must not run.
		s.mu.Lock()
		_, live := s.tasks[e.id]
		s.mu.Unlock()
		if !live {
			continue
		}

		start := time.Now()
		if err := e.task(ctx); err != nil {
			s.logEvent("task_failed", map[string]interface{}{
				"task":       e.name,
				"tick":       now,
				"error":      err.Error(),
				"latency_ms": time.Since(start).Milliseconds(),
			})
		}
	}
}

// Run ticks until ctx is cancelled. Only one Run may be active at a time.
func (s *Scheduler) Run(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("scheduler is already running")
	}
	s.running = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	log.Printf("[Scheduler] Starting with tick %v", s.tick)

	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Printf("[Scheduler] Shutting down...")
			return nil
		case <-ticker.C:
			s.Step(ctx)
		}
	}
}

// logEvent logs a structured event in JSON format.
func (s *Scheduler) logEvent(eventType string, data map[string]interface{}) {
	data["timestamp"] = time.Now().UTC().Format(time.RFC3339)
	data["level"] = "warn"
	data["component"] = "scheduler"
	data["event_type"] = eventType

	jsonData, err := json.Marshal(data)
	if err != nil {
		log.Printf("[Scheduler] Failed to marshal log event: %v", err)
		return
	}

	log.Println(string(jsonData))
}
