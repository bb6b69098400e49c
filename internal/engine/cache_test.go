package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RubberMartyr/jvgh-kantinedienst/internal/api"
	"github.com/RubberMartyr/jvgh-kantinedienst/internal/model"
)

func testSlot(day time.Time) *model.Slot {
	return &model.Slot{
		ID:       "shift-test",
		Start:    day,
		End:      day.Add(4 * time.Hour),
		Required: model.DefaultSlotCapacity,
		Resource: model.DefaultResource,
		Manual:   true,
	}
}

func TestEnsureDaySheetCreatesOnce(t *testing.T) {
	remote := newFakeRemote()
	cache := NewSheetCache(remote)
	slot := testSlot(localDate(2026, time.September, 8, 18, 0))

	id1, err := cache.EnsureDaySheet(context.Background(), "2026-09-08", slot)
	require.NoError(t, err)
	id2, err := cache.EnsureDaySheet(context.Background(), "2026-09-08", slot)
	require.NoError(t, err)

	assert.Equal(t, id1, id2)
	assert.Equal(t, 1, remote.callCount("CreateSchedule"))
	assert.Equal(t, id1, slot.SheetID)
}

func TestEnsureDaySheetReusesRemoteSchedule(t *testing.T) {
	remote := newFakeRemote()
	remote.schedules = []api.Schedule{
		{ID: 42, Title: "Kantinedienst 2026-09-08", Start: "2026-09-08 17:00:00"},
	}
	cache := NewSheetCache(remote)
	slot := testSlot(localDate(2026, time.September, 8, 18, 0))

	id, err := cache.EnsureDaySheet(context.Background(), "2026-09-08", slot)
	require.NoError(t, err)

	assert.Equal(t, int64(42), id)
	assert.Equal(t, 0, remote.callCount("CreateSchedule"))
}

func TestScheduleLoadIsStickyEvenOnFailure(t *testing.T) {
	remote := newFakeRemote()
	remote.schedules = []api.Schedule{
		{ID: 42, Start: "2026-09-08 17:00:00"},
	}
	remote.getSchedulesErr = errRemoteDown
	cache := NewSheetCache(remote)

	_, err := cache.ResolveSheetID(context.Background(), "2026-09-08")
	require.ErrorIs(t, err, ErrCacheMiss)

	// The remote recovers, but the load flag is sticky for the session: the
	// day stays unresolvable and no second bulk load happens.
	remote.getSchedulesErr = nil
	_, err = cache.ResolveSheetID(context.Background(), "2026-09-08")
	require.ErrorIs(t, err, ErrCacheMiss)
	assert.Equal(t, 1, remote.callCount("GetSchedules"))
}

func TestResolveSheetIDForcesBulkLoad(t *testing.T) {
	remote := newFakeRemote()
	remote.schedules = []api.Schedule{
		{ID: 7, Start: "2026-09-12T14:00:00+02:00"},
		{ID: 8, Start: "2026-09-13 00:00:00"},
		{ID: 9, Start: "not a timestamp"},
	}
	cache := NewSheetCache(remote)

	id, err := cache.ResolveSheetID(context.Background(), "2026-09-12")
	require.NoError(t, err)
	assert.Equal(t, int64(7), id)

	id, err = cache.ResolveSheetID(context.Background(), "2026-09-13")
	require.NoError(t, err)
	assert.Equal(t, int64(8), id)
	assert.Equal(t, 1, remote.callCount("GetSchedules"))
}

func TestEnsureTaskForSlotReusesMatchingTask(t *testing.T) {
	remote := newFakeRemote()
	remote.tasks[42] = []api.Task{
		// Padded forms the backend emits; matching truncates to day and HH:MM.
		{ID: 300, Date: "2026-09-08T00:00:00", Time: "18:00:00"},
		{ID: 301, Date: "2026-09-08", Time: "20:00"},
	}
	cache := NewSheetCache(remote)
	slot := testSlot(localDate(2026, time.September, 8, 18, 0))
	slot.SheetID = 42

	id, err := cache.EnsureTaskForSlot(context.Background(), slot)
	require.NoError(t, err)

	assert.Equal(t, int64(300), id)
	assert.Equal(t, int64(300), slot.TaskID)
	assert.Equal(t, 0, remote.callCount("CreateTask"))
}

func TestEnsureTaskForSlotCreatesWhenNoneMatches(t *testing.T) {
	remote := newFakeRemote()
	cache := NewSheetCache(remote)
	slot := testSlot(localDate(2026, time.September, 8, 18, 0))
	slot.SheetID = 42

	id, err := cache.EnsureTaskForSlot(context.Background(), slot)
	require.NoError(t, err)
	require.NotZero(t, id)

	require.Len(t, remote.tasks[42], 1)
	created := remote.tasks[42][0]
	assert.Equal(t, "Kantinedienst 18:00", created.Title)
	assert.Equal(t, 1, created.Qty)
}

func TestEnsureTaskForSlotRequiresSheet(t *testing.T) {
	cache := NewSheetCache(newFakeRemote())
	slot := testSlot(localDate(2026, time.September, 8, 18, 0))

	_, err := cache.EnsureTaskForSlot(context.Background(), slot)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, ReasonNoSheetForDay, verr.Reason)
}

func TestSheetIDsForMonthDeduplicates(t *testing.T) {
	cache := NewSheetCache(newFakeRemote())
	cache.PutSheetID("2026-09-08", 1)
	cache.PutSheetID("2026-09-09", 1)
	cache.PutSheetID("2026-09-10", 2)
	cache.PutSheetID("2026-10-01", 3)

	ids := cache.SheetIDsForMonth("2026-09")
	assert.ElementsMatch(t, []int64{1, 2}, ids)
}
