package engine

import (
	"context"
	"strings"
	"time"

	"github.com/RubberMartyr/jvgh-kantinedienst/internal/api"
	appLog "github.com/RubberMartyr/jvgh-kantinedienst/internal/log"
	"github.com/RubberMartyr/jvgh-kantinedienst/internal/metrics"
	"github.com/RubberMartyr/jvgh-kantinedienst/internal/model"
)

// createFailureMsg is the blocking notification shown when the remote
// sheet/task/signup chain fails after an optimistic drop.
const createFailureMsg = "Kon de Sign-up Sheet / taak / inschrijving niet aanmaken. " +
	"Probeer het opnieuw."

// boardDurationMinutes is the default shift length for board-member drops.
const boardDurationMinutes = 270

// DropRequest describes a person card dropped onto the calendar.
type DropRequest struct {
	Title           string
	DurationMinutes int
	Role            model.Role
	UserID          int64
	Email           string

	// At is the drop instant reported by the widget.
	At time.Time
}

// HandleDrop runs the create state machine: the assignment is applied
// optimistically (Pending) and rendered, then the remote chain resolves the
// day's schedule, the shift's task and the signup. Success confirms the
// assignment; any failure rolls it back, surfaces a blocking notification
// and re-renders.
//
// Dropping a name that is already assigned to the target slot is a no-op.
func (e *Engine) HandleDrop(ctx context.Context, req DropRequest) error {
	if req.At.IsZero() {
		return &ValidationError{Action: "CREATE", Reason: ReasonInvalidInstant}
	}

	duration := req.DurationMinutes
	if duration <= 0 {
		// Board members plan a longer default shift than regular volunteers.
		if req.Role == model.RoleBoard {
			duration = boardDurationMinutes
		} else {
			duration = model.DefaultDurationMinutes
		}
	}
	start := req.At
	end := start.Add(time.Duration(duration) * time.Minute)

	// A drop inside an existing slot joins it; a drop into empty time
	// creates a manual slot spanning the assignment itself.
	slot := e.findSlotForDate(start)
	if slot == nil {
		slot = &model.Slot{
			ID:       e.newLocalID("shift-custom"),
			Start:    start,
			End:      end,
			Required: model.DefaultSlotCapacity,
			Resource: model.DefaultResource,
			Manual:   true,
		}
		e.slots = append(e.slots, slot)
	}

	name := strings.TrimSpace(req.Title)
	if name == "" {
		name = "Kantinedienst"
	}

	for _, a := range e.assignments {
		if a.SlotID == slot.ID && strings.TrimSpace(a.Title) == name {
			logDecision("CREATE", ReasonDuplicate, "slot_id", slot.ID, "title", name)
			return nil
		}
	}

	role := req.Role
	if role == "" {
		role = model.RoleVolunteer
	}

	// Optimistic apply: Pending until remote ids resolve.
	assignment := &model.Assignment{
		ID:      e.newLocalID("a"),
		SlotID:  slot.ID,
		Title:   name,
		Role:    role,
		UserID:  req.UserID,
		Pending: true,
		Start:   start,
		End:     end,
	}
	e.assignments = append(e.assignments, assignment)
	e.Render()

	if err := e.confirmCreate(ctx, slot, assignment, req); err != nil {
		// RolledBack: drop the optimistic assignment entirely.
		metrics.Rollbacks.Inc()
		logDecision("CREATE", ReasonRemoteFailed,
			"assignment_id", assignment.ID, "slot_id", slot.ID, "err", err.Error())
		e.removeAssignment(assignment.ID)
		e.notify(createFailureMsg)
		e.Render()
		return err
	}

	// Confirmed.
	e.Render()
	return nil
}

// confirmCreate resolves schedule, task and signup for a pending assignment.
func (e *Engine) confirmCreate(ctx context.Context, slot *model.Slot, assignment *model.Assignment, req DropRequest) error {
	sheetID, err := e.cache.EnsureDaySheet(ctx, slot.DayKey(), slot)
	if err != nil {
		return err
	}

	taskID, err := e.cache.EnsureTaskForSlot(ctx, slot)
	if err != nil {
		return err
	}

	firstName, lastName := model.SplitName(assignment.Title)
	payload := api.NewSignup{
		FirstName: firstName,
		LastName:  lastName,
		Email:     req.Email,
	}
	if req.UserID != 0 {
		uid := req.UserID
		payload.UserID = &uid
	}

	signup, err := e.remote.CreateSignup(ctx, taskID, payload)
	if err != nil {
		return err
	}

	assignment.SheetID = sheetID
	assignment.TaskID = taskID
	assignment.SignupID = signup.ID
	assignment.Pending = false

	appLog.Info("signup created",
		"slot_id", slot.ID, "sheet_id", sheetID, "task_id", taskID, "signup_id", signup.ID)
	return nil
}
