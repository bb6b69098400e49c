package engine

import (
	"fmt"
	"strings"
	"time"

	"github.com/RubberMartyr/jvgh-kantinedienst/internal/model"
)

// EventKind tags a projected calendar event.
type EventKind string

const (
	EventSlot       EventKind = "slot"
	EventAssignment EventKind = "assignment"
	EventFixture    EventKind = "ical"
)

// SlotStatus is the fill state of a duty slot.
type SlotStatus string

const (
	StatusEmpty   SlotStatus = "slot-empty"
	StatusPartial SlotStatus = "slot-partial"
	StatusFull    SlotStatus = "slot-full"
)

// statusPriority orders statuses for per-day summaries; a day shows its
// worst slot.
var statusPriority = map[SlotStatus]int{
	StatusEmpty:   3,
	StatusPartial: 2,
	StatusFull:    1,
}

// Event is one entry of the displayable event list consumed by the calendar
// widget. Slots project as background bands, assignments and fixtures as
// foreground events.
type Event struct {
	ID       string     `json:"id"`
	Title    string     `json:"title"`
	Start    time.Time  `json:"start"`
	End      time.Time  `json:"end"`
	Resource string     `json:"resourceId"`
	Kind     EventKind  `json:"kind"`
	SlotID   string     `json:"slotId,omitempty"`
	Role     model.Role `json:"role,omitempty"`
	Pending  bool       `json:"pending,omitempty"`
	Status   SlotStatus `json:"status,omitempty"`
	Planned  int        `json:"planned,omitempty"`
	Required int        `json:"required,omitempty"`
	Location string     `json:"location,omitempty"`
}

// Render regenerates the slot list, projects slots + assignments (+ the
// fixture overlay) into the event list, pushes it to the sink and returns it.
func (e *Engine) Render() []Event {
	e.rebuildSlots()

	events := make([]Event, 0, len(e.slots)+len(e.assignments))

	for _, slot := range e.slots {
		unique := e.uniqueAssignmentsForSlot(slot.ID)
		planned := len(unique)

		status := StatusPartial
		switch {
		case planned == 0:
			status = StatusEmpty
		case planned >= slot.Required:
			status = StatusFull
		}

		events = append(events, Event{
			ID:       slot.ID,
			Title:    fmt.Sprintf("Kantinedienst (%d/%d)", planned, slot.Required),
			Start:    slot.Start,
			End:      slot.End,
			Resource: slot.Resource,
			Kind:     EventSlot,
			SlotID:   slot.ID,
			Status:   status,
			Planned:  planned,
			Required: slot.Required,
		})

		for _, a := range unique {
			start, end := a.Start, a.End
			if start.IsZero() {
				start = slot.Start
			}
			if end.IsZero() {
				end = slot.End
			}
			role := a.Role
			if role == "" {
				role = model.RoleVolunteer
			}
			events = append(events, Event{
				ID:       a.ID,
				Title:    a.Title,
				Start:    start,
				End:      end,
				Resource: slot.Resource,
				Kind:     EventAssignment,
				SlotID:   slot.ID,
				Role:     role,
				Pending:  a.Pending,
			})
		}
	}

	if e.overlayEnabled {
		for _, fx := range e.fixtures {
			events = append(events, Event{
				ID:       fx.ID,
				Title:    fx.Title,
				Start:    fx.Start,
				End:      fx.End,
				Resource: fx.Resource,
				Kind:     EventFixture,
				Location: fx.Location,
			})
		}
	}

	e.sink(events)
	return events
}

// uniqueAssignmentsForSlot returns the slot's assignments deduplicated by
// trimmed title, first occurrence winning.
func (e *Engine) uniqueAssignmentsForSlot(slotID string) []*model.Assignment {
	seen := make(map[string]struct{})
	var out []*model.Assignment
	for _, a := range e.assignments {
		if a.SlotID != slotID {
			continue
		}
		key := strings.TrimSpace(a.Title)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, a)
	}
	return out
}

// DayStatuses summarizes the current slots per calendar day, reporting each
// day's worst slot status. Days without slots are absent.
func (e *Engine) DayStatuses() map[string]SlotStatus {
	out := make(map[string]SlotStatus)
	for _, slot := range e.slots {
		planned := len(e.uniqueAssignmentsForSlot(slot.ID))
		status := StatusPartial
		switch {
		case planned == 0:
			status = StatusEmpty
		case planned >= slot.Required:
			status = StatusFull
		}

		day := slot.DayKey()
		if prev, ok := out[day]; !ok || statusPriority[status] > statusPriority[prev] {
			out[day] = status
		}
	}
	return out
}
