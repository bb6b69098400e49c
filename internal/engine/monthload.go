package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	appLog "github.com/RubberMartyr/jvgh-kantinedienst/internal/log"
	"github.com/RubberMartyr/jvgh-kantinedienst/internal/metrics"
	"github.com/RubberMartyr/jvgh-kantinedienst/internal/model"
)

// LoadMonth bulk-hydrates local slots and assignments from the remote tasks
// and signups of one month ("YYYY-MM"). Months already loaded or currently
// loading are skipped. The month is marked loaded only when at least one
// schedule was processed; an empty month stays eligible for a retry on a
// later trigger.
//
// A superseded load (the view navigated away meanwhile) still completes and
// merges its results by key; merges are keyed, never positional.
func (e *Engine) LoadMonth(ctx context.Context, monthKey string) error {
	if monthKey == "" {
		return nil
	}
	if e.cache.MonthLoaded(monthKey) || e.cache.MonthLoading(monthKey) {
		return nil
	}

	e.cache.BeginMonthLoad(monthKey)
	appLog.Info("loading month", "month", monthKey)

	sheetsProcessed := 0
	defer func() {
		loaded := sheetsProcessed > 0
		e.cache.EndMonthLoad(monthKey, loaded)
		if loaded {
			metrics.MonthLoads.WithLabelValues("loaded").Inc()
		} else {
			metrics.MonthLoads.WithLabelValues("empty").Inc()
			appLog.Warn("month had no schedules; not marking loaded", "month", monthKey)
		}
	}()

	e.cache.LoadSchedulesOnce(ctx)
	sheetIDs := e.cache.SheetIDsForMonth(monthKey)

	// Key-based slot lookups; month data merges onto existing slots by
	// (date, time) or task id, never by position.
	slotByKey := make(map[string]*model.Slot)
	slotByTaskID := make(map[int64]*model.Slot)
	for _, s := range e.slots {
		if _, ok := slotByKey[s.TaskKey()]; !ok {
			slotByKey[s.TaskKey()] = s
		}
		if s.TaskID != 0 {
			slotByTaskID[s.TaskID] = s
		}
	}

	var newAssignments []*model.Assignment

	for _, sheetID := range sheetIDs {
		sheetsProcessed++

		tasks, err := e.remote.GetTasks(ctx, sheetID)
		if err != nil {
			appLog.Error("could not load tasks for sheet", err, "sheet_id", sheetID)
			continue
		}

		for _, task := range tasks {
			dateStr := taskDate(task)
			timeStr := taskTime(task)
			if dateStr == "" || timeStr == "" {
				continue
			}
			if !strings.HasPrefix(dateStr, monthKey) {
				continue
			}

			taskKey := dateStr + " " + timeStr
			slot := slotByTaskID[task.ID]
			if slot == nil {
				slot = slotByKey[taskKey]
			}
			if slot == nil {
				slot = e.findSlotByID(manualSlotID(task.ID))
			}
			if slot == nil {
				synthesized, synthErr := e.synthesizeSlot(task.ID, dateStr, timeStr, model.Quantity(task.Qty))
				if synthErr != nil {
					appLog.Error("could not synthesize slot for task", synthErr,
						"task_id", task.ID, "date", dateStr, "time", timeStr)
					continue
				}
				slot = synthesized
				e.slots = append(e.slots, slot)
			}

			slotByKey[taskKey] = slot
			slotByTaskID[task.ID] = slot

			slot.SheetID = sheetID
			slot.TaskID = task.ID
			if task.Qty > 0 {
				slot.Required = model.Quantity(task.Qty).Capacity()
			}

			if e.cache.TaskScanned(task.ID) {
				continue
			}
			e.cache.MarkTaskScanned(task.ID)

			signups, err := e.remote.GetSignups(ctx, task.ID)
			if err != nil {
				// Un-mark so a later load retries this task's signups.
				e.cache.UnmarkTaskScanned(task.ID)
				appLog.Error("could not load signups for task", err, "task_id", task.ID)
				continue
			}

			start, parseErr := model.ParseDayTime(dateStr, timeStr)
			if parseErr != nil {
				continue
			}
			end := start.Add(time.Duration(model.Quantity(task.Qty).DurationMinutes()) * time.Minute)

			for _, su := range signups {
				if e.signupRepresented(newAssignments, task.ID, slot.ID, su.ID) {
					continue
				}

				name := strings.TrimSpace(su.FirstName + " " + su.LastName)
				if name == "" {
					name = "Vrijwilliger"
				}

				newAssignments = append(newAssignments, &model.Assignment{
					ID:       fmt.Sprintf("a-%s-%d", slot.ID, su.ID),
					SlotID:   slot.ID,
					Title:    name,
					Role:     e.inferRole(su.UserID, name),
					SheetID:  sheetID,
					TaskID:   task.ID,
					SignupID: su.ID,
					UserID:   su.UserID,
					Start:    start,
					End:      end,
				})
			}
		}
	}

	e.assignments = append(e.assignments, newAssignments...)
	e.retagBoardAssignments()
	e.Render()

	appLog.Info("month loaded", "month", monthKey,
		"sheets", sheetsProcessed, "new_assignments", len(newAssignments))
	return nil
}

// manualSlotID is the deterministic id of a slot synthesized for a remote
// task that had no local counterpart.
func manualSlotID(taskID int64) string {
	return fmt.Sprintf("shift-task-%d", taskID)
}

// synthesizeSlot builds a manual slot for a remote task discovered during
// month hydration. Its duration comes from the task quantity via the
// duration convention; manual slots survive later render passes.
func (e *Engine) synthesizeSlot(taskID int64, dateStr, timeStr string, qty model.Quantity) (*model.Slot, error) {
	start, err := model.ParseDayTime(dateStr, timeStr)
	if err != nil {
		return nil, err
	}
	return &model.Slot{
		ID:       manualSlotID(taskID),
		Start:    start,
		End:      start.Add(time.Duration(qty.DurationMinutes()) * time.Minute),
		Required: model.DefaultSlotCapacity,
		Resource: model.DefaultResource,
		Manual:   true,
	}, nil
}

// signupRepresented reports whether a signup already has a local assignment,
// checking both the committed list and the batch being built. The dedup key
// is (taskID, signupID) or (slotID, signupID).
func (e *Engine) signupRepresented(batch []*model.Assignment, taskID int64, slotID string, signupID int64) bool {
	match := func(a *model.Assignment) bool {
		return (a.TaskID == taskID && a.SignupID == signupID) ||
			(a.SlotID == slotID && a.SignupID == signupID)
	}
	for _, a := range e.assignments {
		if match(a) {
			return true
		}
	}
	for _, a := range batch {
		if match(a) {
			return true
		}
	}
	return false
}
