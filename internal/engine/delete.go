package engine

import (
	"context"
	"time"

	appLog "github.com/RubberMartyr/jvgh-kantinedienst/internal/log"
)

// Debounce turns single widget activations into double-activation detection:
// the second activation of the same id inside the window fires. The widget
// only reports generic activations; the delete gesture lives entirely here.
type Debounce struct {
	window time.Duration
	now    func() time.Time

	lastID string
	lastAt time.Time
}

// NewDebounce creates a Debounce with the given window and clock.
func NewDebounce(window time.Duration, now func() time.Time) *Debounce {
	if now == nil {
		now = time.Now
	}
	return &Debounce{window: window, now: now}
}

// Activate records an activation and reports whether it completes a double
// activation. A completed double resets the state, so a third click starts
// over.
func (d *Debounce) Activate(id string) bool {
	at := d.now()
	if d.lastID == id && at.Sub(d.lastAt) < d.window {
		d.lastID = ""
		d.lastAt = time.Time{}
		return true
	}
	d.lastID = id
	d.lastAt = at
	return false
}

// HandleActivation processes one widget activation of a rendered event. Two
// activations of the same assignment within the delete window prompt for
// confirmation (naming the assignee) and then remove the assignment
// optimistically before the remote signup deletion is issued. Remote
// deletion failures are logged but never restore the assignment; deletion
// has no rollback path once confirmed.
func (e *Engine) HandleActivation(ctx context.Context, eventID string, kind EventKind) {
	if kind != EventAssignment {
		return
	}
	if !e.clicks.Activate(eventID) {
		return
	}

	assignment := e.findAssignment(eventID)
	if assignment == nil {
		return
	}

	name := assignment.Title
	if name == "" {
		name = "vrijwilliger"
	}
	if !e.confirm(name) {
		return
	}

	taskID, signupID := assignment.TaskID, assignment.SignupID

	e.removeAssignment(assignment.ID)
	e.Render()
	logDecision("DELETE", "confirmed",
		"assignment_id", assignment.ID, "task_id", taskID, "signup_id", signupID)

	// Pending assignments never reached the remote store; nothing to delete.
	if taskID == 0 || signupID == 0 {
		return
	}

	if err := e.remote.DeleteSignup(ctx, taskID, signupID); err != nil {
		appLog.Error("signup delete failed", err,
			"task_id", taskID, "signup_id", signupID)
	}
}
