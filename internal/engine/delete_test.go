package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDebounceDoubleActivation(t *testing.T) {
	clock := newFakeClock(time.Date(2026, time.September, 1, 12, 0, 0, 0, time.UTC))
	d := NewDebounce(400*time.Millisecond, clock.Now)

	assert.False(t, d.Activate("a-1"), "first activation never fires")
	assert.True(t, d.Activate("a-1"), "second activation inside the window fires")
	assert.False(t, d.Activate("a-1"), "a completed double resets the state")
}

func TestDebounceWindowExpires(t *testing.T) {
	clock := newFakeClock(time.Date(2026, time.September, 1, 12, 0, 0, 0, time.UTC))
	d := NewDebounce(400*time.Millisecond, clock.Now)

	assert.False(t, d.Activate("a-1"))
	clock.Advance(500 * time.Millisecond)
	assert.False(t, d.Activate("a-1"), "too late; restarts the window")
	assert.True(t, d.Activate("a-1"))
}

func TestDebounceDifferentIDs(t *testing.T) {
	clock := newFakeClock(time.Date(2026, time.September, 1, 12, 0, 0, 0, time.UTC))
	d := NewDebounce(400*time.Millisecond, clock.Now)

	assert.False(t, d.Activate("a-1"))
	assert.False(t, d.Activate("a-2"), "a different id restarts the window")
	assert.True(t, d.Activate("a-2"))
}

func TestHandleActivationDeletesAfterConfirm(t *testing.T) {
	h := newHarness()
	a := seedAssignment(h)

	h.engine.HandleActivation(context.Background(), a.ID, EventAssignment)
	require.Len(t, h.engine.Assignments(), 1, "single activation does nothing")

	h.engine.HandleActivation(context.Background(), a.ID, EventAssignment)

	assert.Empty(t, h.engine.Assignments())
	require.Len(t, h.confirmNames, 1)
	assert.Equal(t, "Jan Peeters", h.confirmNames[0])
	assert.Equal(t, 1, h.remote.callCount("DeleteSignup"))
	assert.Empty(t, h.remote.signups[9])
}

func TestHandleActivationDeclinedKeepsAssignment(t *testing.T) {
	h := newHarness()
	h.confirmAnswer = false
	a := seedAssignment(h)

	h.engine.HandleActivation(context.Background(), a.ID, EventAssignment)
	h.engine.HandleActivation(context.Background(), a.ID, EventAssignment)

	assert.Len(t, h.engine.Assignments(), 1)
	assert.Equal(t, 0, h.remote.callCount("DeleteSignup"))
}

func TestHandleActivationRemoteFailureHasNoRollback(t *testing.T) {
	h := newHarness()
	a := seedAssignment(h)
	h.remote.deleteSignupErr = errRemoteDown

	h.engine.HandleActivation(context.Background(), a.ID, EventAssignment)
	h.engine.HandleActivation(context.Background(), a.ID, EventAssignment)

	// Deletion is one-way: the assignment stays removed even though the
	// remote call failed.
	assert.Empty(t, h.engine.Assignments())
	assert.Equal(t, 1, h.remote.callCount("DeleteSignup"))
}

func TestHandleActivationPendingSkipsRemote(t *testing.T) {
	h := newHarness()
	a := seedAssignment(h)
	a.TaskID = 0
	a.SignupID = 0
	a.Pending = true

	h.engine.HandleActivation(context.Background(), a.ID, EventAssignment)
	h.engine.HandleActivation(context.Background(), a.ID, EventAssignment)

	assert.Empty(t, h.engine.Assignments())
	assert.Equal(t, 0, h.remote.callCount("DeleteSignup"))
}

func TestHandleActivationIgnoresSlots(t *testing.T) {
	h := newHarness()
	seedAssignment(h)

	h.engine.HandleActivation(context.Background(), "shift-task-9", EventSlot)
	h.engine.HandleActivation(context.Background(), "shift-task-9", EventSlot)

	assert.Len(t, h.engine.Assignments(), 1)
	assert.Empty(t, h.confirmNames)
}

func TestHandleActivationUnknownNameFallsBack(t *testing.T) {
	h := newHarness()
	a := seedAssignment(h)
	a.Title = ""

	h.engine.HandleActivation(context.Background(), a.ID, EventAssignment)
	h.engine.HandleActivation(context.Background(), a.ID, EventAssignment)

	require.Len(t, h.confirmNames, 1)
	assert.Equal(t, "vrijwilliger", h.confirmNames[0])
}
