package engine

import (
	"context"
	"strings"
	"time"

	"github.com/RubberMartyr/jvgh-kantinedienst/internal/api"
	appLog "github.com/RubberMartyr/jvgh-kantinedienst/internal/log"
	"github.com/RubberMartyr/jvgh-kantinedienst/internal/model"
)

// SheetCache is the per-session bookkeeping around the remote store: the
// day → schedule-id map, month load state and which tasks already had their
// signups fetched.
//
// The day-schedule map is populated by a single full-schedule load. The
// loaded flag is sticky for the session, even when that load fails: the
// original behavior is that a failed bulk load does not retry by itself,
// and individual cache misses fall back to creating fresh schedules.
type SheetCache struct {
	remote Remote

	daySheet      map[string]int64
	loadedMonths  map[string]struct{}
	loadingMonths map[string]struct{}
	scannedTasks  map[int64]struct{}

	schedulesLoaded bool
}

// NewSheetCache creates an empty cache bound to the remote store.
func NewSheetCache(remote Remote) *SheetCache {
	return &SheetCache{
		remote:        remote,
		daySheet:      make(map[string]int64),
		loadedMonths:  make(map[string]struct{}),
		loadingMonths: make(map[string]struct{}),
		scannedTasks:  make(map[int64]struct{}),
	}
}

// LoadSchedulesOnce hydrates the day → schedule-id map from the remote
// store. Only the first call does work; later calls return immediately.
func (c *SheetCache) LoadSchedulesOnce(ctx context.Context) {
	if c.schedulesLoaded {
		return
	}
	c.schedulesLoaded = true

	schedules, err := c.remote.GetSchedules(ctx)
	if err != nil {
		appLog.Error("could not load existing schedules", err)
		return
	}

	for _, sch := range schedules {
		key := dayKeyFromScheduleStart(sch.Start)
		if key == "" {
			continue
		}
		if _, ok := c.daySheet[key]; !ok {
			c.daySheet[key] = sch.ID
		}
	}
	appLog.Info("schedules loaded", "days", len(c.daySheet))
}

// dayKeyFromScheduleStart extracts the day key from a schedule start string.
// The backend has emitted both RFC3339 and "YYYY-MM-DD HH:MM:SS" forms.
func dayKeyFromScheduleStart(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.ParseInLocation(layout, raw, time.Local); err == nil {
			return model.DayKey(t)
		}
	}
	return ""
}

// SheetID returns the cached schedule id for a day.
func (c *SheetCache) SheetID(dayKey string) (int64, bool) {
	id, ok := c.daySheet[dayKey]
	return id, ok
}

// PutSheetID records a day → schedule binding discovered out of band.
func (c *SheetCache) PutSheetID(dayKey string, id int64) {
	c.daySheet[dayKey] = id
}

// ResolveSheetID returns the schedule id for a day, forcing the bulk load if
// the cache has not seen the day yet. A day that is still unknown afterwards
// is a cache miss.
func (c *SheetCache) ResolveSheetID(ctx context.Context, dayKey string) (int64, error) {
	if id, ok := c.daySheet[dayKey]; ok {
		return id, nil
	}
	c.LoadSchedulesOnce(ctx)
	if id, ok := c.daySheet[dayKey]; ok {
		return id, nil
	}
	return 0, ErrCacheMiss
}

// EnsureDaySheet returns the schedule id for the slot's day, creating the
// remote schedule when the day has none. The created schedule is titled
// deterministically from the day key so repeated calls stay idempotent
// within a session. The resolved id is bound onto the slot.
func (c *SheetCache) EnsureDaySheet(ctx context.Context, dayKey string, slot *model.Slot) (int64, error) {
	c.LoadSchedulesOnce(ctx)

	if id, ok := c.daySheet[dayKey]; ok {
		slot.SheetID = id
		return id, nil
	}

	created, err := c.remote.CreateSchedule(ctx, api.NewSchedule{
		Title: "Kantinedienst " + dayKey,
		Start: slot.Start.Format(time.RFC3339),
		End:   slot.End.Format(time.RFC3339),
	})
	if err != nil {
		return 0, err
	}

	c.daySheet[dayKey] = created.ID
	slot.SheetID = created.ID
	appLog.Info("schedule created", "day", dayKey, "sheet_id", created.ID)
	return created.ID, nil
}

// EnsureTaskForSlot returns the task id for the slot's shift, reusing an
// existing task with the same (date, time) on the slot's schedule or
// creating a fresh one with the default capacity of 1. The slot must already
// carry a schedule id.
func (c *SheetCache) EnsureTaskForSlot(ctx context.Context, slot *model.Slot) (int64, error) {
	if slot.TaskID != 0 {
		return slot.TaskID, nil
	}
	if slot.SheetID == 0 {
		return 0, &ValidationError{Action: "CREATE", Reason: ReasonNoSheetForDay}
	}

	tasks, err := c.remote.GetTasks(ctx, slot.SheetID)
	if err != nil {
		return 0, err
	}

	dateStr := model.DayKey(slot.Start)
	timeStr := model.ClockKey(slot.Start)

	for _, t := range tasks {
		if taskDate(t) == dateStr && taskTime(t) == timeStr {
			slot.TaskID = t.ID
			return t.ID, nil
		}
	}

	created, err := c.remote.CreateTask(ctx, slot.SheetID, api.NewTask{
		Title: "Kantinedienst " + timeStr,
		Qty:   1,
		Date:  dateStr,
		Time:  timeStr,
	})
	if err != nil {
		return 0, err
	}

	slot.TaskID = created.ID
	appLog.Info("task created", "sheet_id", slot.SheetID, "task_id", created.ID,
		"date", dateStr, "time", timeStr)
	return created.ID, nil
}

// taskDate normalizes a task's date field to the 10-char day key.
func taskDate(t api.Task) string {
	if len(t.Date) > 10 {
		return t.Date[:10]
	}
	return t.Date
}

// taskTime normalizes a task's time field to "HH:MM".
func taskTime(t api.Task) string {
	if len(t.Time) > 5 {
		return t.Time[:5]
	}
	return t.Time
}

// === month bookkeeping =======================================

// MonthLoaded reports whether a month was fully hydrated.
func (c *SheetCache) MonthLoaded(monthKey string) bool {
	_, ok := c.loadedMonths[monthKey]
	return ok
}

// MonthLoading reports whether a month hydration is in flight.
func (c *SheetCache) MonthLoading(monthKey string) bool {
	_, ok := c.loadingMonths[monthKey]
	return ok
}

// BeginMonthLoad marks a month as in flight.
func (c *SheetCache) BeginMonthLoad(monthKey string) {
	c.loadingMonths[monthKey] = struct{}{}
}

// EndMonthLoad clears the in-flight mark; loaded records whether the month
// actually produced schedules and may be considered done.
func (c *SheetCache) EndMonthLoad(monthKey string, loaded bool) {
	delete(c.loadingMonths, monthKey)
	if loaded {
		c.loadedMonths[monthKey] = struct{}{}
	}
}

// SheetIDsForMonth returns the distinct schedule ids of days in the month.
func (c *SheetCache) SheetIDsForMonth(monthKey string) []int64 {
	seen := make(map[int64]struct{})
	var out []int64
	for dayKey, id := range c.daySheet {
		if !strings.HasPrefix(dayKey, monthKey+"-") {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// === signup-scan bookkeeping =================================

// TaskScanned reports whether a task's signups were already fetched.
func (c *SheetCache) TaskScanned(taskID int64) bool {
	_, ok := c.scannedTasks[taskID]
	return ok
}

// MarkTaskScanned records a completed signup fetch for a task.
func (c *SheetCache) MarkTaskScanned(taskID int64) {
	c.scannedTasks[taskID] = struct{}{}
}

// UnmarkTaskScanned reverts the scan mark after a failed fetch so the task
// becomes eligible for retry.
func (c *SheetCache) UnmarkTaskScanned(taskID int64) {
	delete(c.scannedTasks, taskID)
}
