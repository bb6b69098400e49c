package engine

import (
	"context"
	"time"

	"github.com/RubberMartyr/jvgh-kantinedienst/internal/api"
	"github.com/RubberMartyr/jvgh-kantinedienst/internal/metrics"
	"github.com/RubberMartyr/jvgh-kantinedienst/internal/model"
)

// minResizeMinutes is the smallest shift a resize may produce. The remote
// qty field only reads as a duration from 60 upward, so anything shorter
// would silently change meaning.
const minResizeMinutes = 60

// HandleResize runs the resize guard chain (the move chain plus the
// strictly-positive and minimum-duration checks) and pushes the new
// duration-in-minutes as the task quantity. A remote failure reverts
// start/end/schedule-id and rejects the visual resize.
func (e *Engine) HandleResize(ctx context.Context, g GestureEvent) error {
	if g.Kind != EventAssignment {
		return reject(g, "RESIZE", ReasonNotAssignment, "event_id", g.EventID)
	}

	assignment := e.findAssignment(g.EventID)
	if assignment == nil {
		return reject(g, "RESIZE", ReasonUnknownAssignment, "event_id", g.EventID)
	}

	if assignment.TaskID == 0 {
		return reject(g, "RESIZE", ReasonMissingTaskID,
			"assignment_id", assignment.ID, "slot_id", assignment.SlotID)
	}

	if g.Start.IsZero() || g.End.IsZero() {
		return reject(g, "RESIZE", ReasonInvalidInstant,
			"assignment_id", assignment.ID, "slot_id", assignment.SlotID)
	}

	if !g.End.After(g.Start) {
		return reject(g, "RESIZE", ReasonInvalidDuration,
			"assignment_id", assignment.ID, "start", g.Start, "end", g.End)
	}

	targetDay := model.DayKey(g.Start)
	if !model.SameDay(g.End, g.Start) {
		return reject(g, "RESIZE", ReasonCrossesDay,
			"assignment_id", assignment.ID, "start", g.Start, "end", g.End)
	}

	sheetID, err := e.cache.ResolveSheetID(ctx, targetDay)
	if err != nil {
		return reject(g, "RESIZE", ReasonNoSheetForDay,
			"assignment_id", assignment.ID, "day", targetDay)
	}

	durationMinutes := int(g.End.Sub(g.Start).Round(time.Minute) / time.Minute)
	if durationMinutes < minResizeMinutes {
		return reject(g, "RESIZE", ReasonBelowMinDuration,
			"assignment_id", assignment.ID, "duration_minutes", durationMinutes)
	}

	previous := struct {
		start, end time.Time
		sheetID    int64
	}{assignment.Start, assignment.End, assignment.SheetID}

	assignment.Start = g.Start
	assignment.End = g.End
	assignment.SheetID = sheetID

	// The duration convention: minutes become the task quantity.
	qty := durationMinutes
	update := api.TaskUpdate{Qty: &qty}

	if err := e.remote.UpdateTask(ctx, sheetID, assignment.TaskID, update); err != nil {
		assignment.Start = previous.start
		assignment.End = previous.end
		assignment.SheetID = previous.sheetID

		metrics.Rollbacks.Inc()
		logDecision("RESIZE", ReasonRemoteFailed,
			"assignment_id", assignment.ID, "task_id", assignment.TaskID,
			"sheet_id", sheetID, "duration_minutes", durationMinutes, "err", err.Error())
		g.revert()
		return err
	}

	e.Render()
	return nil
}
