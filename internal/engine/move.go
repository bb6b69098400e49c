package engine

import (
	"context"
	"time"

	"github.com/RubberMartyr/jvgh-kantinedienst/internal/api"
	"github.com/RubberMartyr/jvgh-kantinedienst/internal/metrics"
	"github.com/RubberMartyr/jvgh-kantinedienst/internal/model"
)

// GestureEvent describes a drag gesture on a rendered event, as reported by
// the widget's drop/resize hooks: the targeted event, the proposed new
// start/end and the widget's revert operation.
type GestureEvent struct {
	EventID string
	Kind    EventKind
	Start   time.Time
	End     time.Time

	// Revert undoes the visual change in the widget. It is invoked on every
	// rejection and remote failure; a nil Revert is tolerated.
	Revert func()
}

func (g GestureEvent) revert() {
	if g.Revert != nil {
		g.Revert()
	}
}

// reject emits the decision record, reverts the visual change and returns
// the validation error. No remote state has been touched at this point.
func reject(g GestureEvent, action, reason string, kv ...any) error {
	logDecision(action, reason, kv...)
	g.revert()
	return &ValidationError{Action: action, Reason: reason}
}

// HandleMove runs the move guard chain and, when every guard passes,
// optimistically rebinds the assignment and pushes the new (date, time) to
// the remote task. A remote failure reverts exactly the mutated fields and
// rejects the visual move; nothing retries automatically.
func (e *Engine) HandleMove(ctx context.Context, g GestureEvent) error {
	if g.Kind != EventAssignment {
		return reject(g, "MOVE", ReasonNotAssignment, "event_id", g.EventID)
	}

	assignment := e.findAssignment(g.EventID)
	if assignment == nil {
		return reject(g, "MOVE", ReasonUnknownAssignment, "event_id", g.EventID)
	}

	// Pending creations have no remote task yet and cannot be moved.
	if assignment.TaskID == 0 {
		return reject(g, "MOVE", ReasonMissingTaskID,
			"assignment_id", assignment.ID, "slot_id", assignment.SlotID)
	}

	if g.Start.IsZero() || g.End.IsZero() {
		return reject(g, "MOVE", ReasonInvalidInstant,
			"assignment_id", assignment.ID, "slot_id", assignment.SlotID)
	}

	targetDay := model.DayKey(g.Start)
	if !model.SameDay(g.End, g.Start) {
		return reject(g, "MOVE", ReasonCrossesDay,
			"assignment_id", assignment.ID, "start", g.Start, "end", g.End)
	}

	targetSlot := e.findSlotForDate(g.Start)
	sheetID, err := e.cache.ResolveSheetID(ctx, targetDay)
	if err != nil {
		return reject(g, "MOVE", ReasonNoSheetForDay,
			"assignment_id", assignment.ID, "day", targetDay)
	}

	// Optimistic mutation; previous holds exactly the fields we may revert.
	previous := struct {
		start, end time.Time
		slotID     string
		sheetID    int64
	}{assignment.Start, assignment.End, assignment.SlotID, assignment.SheetID}

	assignment.Start = g.Start
	assignment.End = g.End
	if targetSlot != nil {
		assignment.SlotID = targetSlot.ID
	}
	assignment.SheetID = sheetID

	dateStr := targetDay
	timeStr := model.ClockKey(g.Start)
	update := api.TaskUpdate{Date: &dateStr, Time: &timeStr}

	if err := e.remote.UpdateTask(ctx, sheetID, assignment.TaskID, update); err != nil {
		assignment.Start = previous.start
		assignment.End = previous.end
		assignment.SlotID = previous.slotID
		assignment.SheetID = previous.sheetID

		metrics.Rollbacks.Inc()
		logDecision("MOVE", ReasonRemoteFailed,
			"assignment_id", assignment.ID, "task_id", assignment.TaskID,
			"sheet_id", sheetID, "err", err.Error())
		g.revert()
		return err
	}

	e.Render()
	return nil
}
