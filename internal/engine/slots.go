package engine

import (
	"fmt"
	"time"

	"github.com/RubberMartyr/jvgh-kantinedienst/internal/model"
)

// Slot derivation offsets around a match fixture: the shift opens an hour
// before kickoff and closes two hours after the final whistle.
const (
	slotLeadTime  = time.Hour
	slotTrailTime = 2 * time.Hour
)

// rebuildSlots regenerates the slot list for a render pass. All derived
// slots are discarded and rebuilt from the current fixture set (when shift
// generation is on); manual slots are preserved verbatim. Every slot without
// a schedule id then re-attaches one from the day cache, since derived slots
// are fresh objects each pass.
func (e *Engine) rebuildSlots() {
	manual := make([]*model.Slot, 0, len(e.slots))
	for _, s := range e.slots {
		if s.Manual {
			manual = append(manual, s)
		}
	}

	e.slots = e.slots[:0]
	if e.shiftsEnabled {
		for i, fx := range e.fixtures {
			if fx.Start.IsZero() {
				continue
			}
			end := fx.End
			if end.IsZero() {
				end = fx.Start.Add(time.Hour)
			}
			e.slots = append(e.slots, &model.Slot{
				ID:       fmt.Sprintf("shift-%d-%d", fx.Start.UnixMilli(), i),
				Start:    fx.Start.Add(-slotLeadTime),
				End:      end.Add(slotTrailTime),
				Required: model.DefaultSlotCapacity,
				Resource: model.DefaultResource,
			})
		}
	}
	e.slots = append(e.slots, manual...)

	for _, s := range e.slots {
		if s.SheetID == 0 {
			if id, ok := e.cache.SheetID(s.DayKey()); ok {
				s.SheetID = id
			}
		}
	}
}

// findSlotForDate returns the first slot whose [start, end) window contains
// the instant.
func (e *Engine) findSlotForDate(at time.Time) *model.Slot {
	for _, s := range e.slots {
		if !at.Before(s.Start) && at.Before(s.End) {
			return s
		}
	}
	return nil
}

func (e *Engine) findSlotByID(id string) *model.Slot {
	for _, s := range e.slots {
		if s.ID == id {
			return s
		}
	}
	return nil
}
