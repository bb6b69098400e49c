// Package engine reconciles the remote duty-roster hierarchy (one schedule
// per day, one task per shift, one signup per person) with the locally
// rendered slot/assignment model driven by drag-and-drop gestures.
//
// The engine is confined to a single goroutine: remote calls block inside the
// gesture entrypoints, and callers (the daemon dispatch loop, the widget
// hooks) must not invoke it concurrently. The day-schedule cache and the
// task-scan set are check-then-act; two interleaved first-time operations on
// the same uncached key can create duplicate remote entities. That hazard is
// inherited behavior and is documented rather than fixed.
package engine

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/RubberMartyr/jvgh-kantinedienst/internal/api"
	"github.com/RubberMartyr/jvgh-kantinedienst/internal/model"
)

// ShiftsEnabledKey is the preference-store key for the shift-generation toggle.
const ShiftsEnabledKey = "jvgh-shifts-enabled"

// defaultDeleteWindow is the double-activation window for the delete gesture.
const defaultDeleteWindow = 400 * time.Millisecond

// Remote is the slice of the REST surface the engine drives.
type Remote interface {
	GetSchedules(ctx context.Context) ([]api.Schedule, error)
	CreateSchedule(ctx context.Context, payload api.NewSchedule) (api.Schedule, error)
	GetTasks(ctx context.Context, sheetID int64) ([]api.Task, error)
	CreateTask(ctx context.Context, sheetID int64, payload api.NewTask) (api.Task, error)
	UpdateTask(ctx context.Context, sheetID, taskID int64, payload api.TaskUpdate) error
	GetSignups(ctx context.Context, taskID int64) ([]api.Signup, error)
	CreateSignup(ctx context.Context, taskID int64, payload api.NewSignup) (api.Signup, error)
	DeleteSignup(ctx context.Context, taskID, signupID int64) error
}

// PrefStore persists small preferences best-effort; failures are ignored.
type PrefStore interface {
	Bool(key string, def bool) bool
	SetBool(key string, value bool)
}

// EventSink receives the projected event list on every render pass. This is
// the calendar widget's event-list setter.
type EventSink func(events []Event)

// NotifyFunc surfaces a blocking, user-visible error message.
type NotifyFunc func(msg string)

// ConfirmFunc asks the user to confirm removing the named assignee.
type ConfirmFunc func(name string) bool

// Config wires the engine's collaborators.
type Config struct {
	Remote  Remote
	Prefs   PrefStore
	Sink    EventSink
	Notify  NotifyFunc
	Confirm ConfirmFunc

	// DeleteWindow overrides the double-activation delete window.
	DeleteWindow time.Duration

	// Now overrides the clock, for tests.
	Now func() time.Time
}

// Engine owns all mutable planning state for one session: the slot list, the
// assignment list and the schedule/task caches. Construct one per session
// and inject it into the widget hooks.
type Engine struct {
	remote  Remote
	cache   *SheetCache
	prefs   PrefStore
	sink    EventSink
	notify  NotifyFunc
	confirm ConfirmFunc

	slots       []*model.Slot
	assignments []*model.Assignment
	fixtures    []model.Fixture

	shiftsEnabled  bool
	overlayEnabled bool

	boardNames map[string]struct{}
	boardIDs   map[int64]struct{}

	clicks *Debounce
	now    func() time.Time
	rng    *rand.Rand
}

// New constructs an Engine. Missing collaborators get no-op defaults so the
// engine is usable headless (tests, one-shot tools).
func New(cfg Config) *Engine {
	e := &Engine{
		remote:     cfg.Remote,
		prefs:      cfg.Prefs,
		sink:       cfg.Sink,
		notify:     cfg.Notify,
		confirm:    cfg.Confirm,
		boardNames: make(map[string]struct{}),
		boardIDs:   make(map[int64]struct{}),
		now:        cfg.Now,
	}
	if e.sink == nil {
		e.sink = func([]Event) {}
	}
	if e.notify == nil {
		e.notify = func(string) {}
	}
	if e.confirm == nil {
		e.confirm = func(string) bool { return true }
	}
	if e.now == nil {
		e.now = time.Now
	}

	window := cfg.DeleteWindow
	if window <= 0 {
		window = defaultDeleteWindow
	}
	e.clicks = NewDebounce(window, e.now)

	e.cache = NewSheetCache(cfg.Remote)
	e.rng = rand.New(rand.NewSource(e.now().UnixNano()))

	// Shifts default to on; the stored preference wins when present.
	e.shiftsEnabled = true
	if e.prefs != nil {
		e.shiftsEnabled = e.prefs.Bool(ShiftsEnabledKey, true)
	}

	return e
}

// Cache exposes the schedule/task cache, mainly for the month loader and tests.
func (e *Engine) Cache() *SheetCache { return e.cache }

// SetFixtures replaces the fixture set the slot deriver works from and
// triggers a render pass.
func (e *Engine) SetFixtures(fixtures []model.Fixture) {
	e.fixtures = fixtures
	e.Render()
}

// Fixtures returns the current fixture set.
func (e *Engine) Fixtures() []model.Fixture { return e.fixtures }

// ShiftsEnabled reports whether duty slots are derived from fixtures.
func (e *Engine) ShiftsEnabled() bool { return e.shiftsEnabled }

// SetShiftsEnabled flips shift generation, persists the preference
// best-effort and re-renders.
func (e *Engine) SetShiftsEnabled(enabled bool) {
	e.shiftsEnabled = enabled
	if e.prefs != nil {
		e.prefs.SetBool(ShiftsEnabledKey, enabled)
	}
	e.Render()
}

// OverlayEnabled reports whether raw fixtures are shown alongside slots.
func (e *Engine) OverlayEnabled() bool { return e.overlayEnabled }

// SetOverlayEnabled flips the fixture overlay and re-renders. The overlay
// choice is deliberately not persisted; it resets per session.
func (e *Engine) SetOverlayEnabled(enabled bool) {
	e.overlayEnabled = enabled
	e.Render()
}

// Assignments returns the live assignment list.
func (e *Engine) Assignments() []*model.Assignment { return e.assignments }

// Slots returns the live slot list.
func (e *Engine) Slots() []*model.Slot { return e.slots }

func (e *Engine) findAssignment(id string) *model.Assignment {
	for _, a := range e.assignments {
		if a.ID == id {
			return a
		}
	}
	return nil
}

func (e *Engine) removeAssignment(id string) {
	kept := e.assignments[:0]
	for _, a := range e.assignments {
		if a.ID != id {
			kept = append(kept, a)
		}
	}
	e.assignments = kept
}

// newLocalID builds a collision-resistant local identifier.
func (e *Engine) newLocalID(prefix string) string {
	return fmt.Sprintf("%s-%d-%x", prefix, e.now().UnixMilli(), e.rng.Uint32())
}
