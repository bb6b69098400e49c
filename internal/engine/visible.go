package engine

import (
	"context"
	"time"

	appLog "github.com/RubberMartyr/jvgh-kantinedienst/internal/log"
	"github.com/RubberMartyr/jvgh-kantinedienst/internal/model"
)

// ViewMonthGrid is the widget's month-grid view type. Month grids pad their
// first and last weeks with neighboring months, so only the focused month is
// loaded for them; every other granularity loads the full visible range.
const ViewMonthGrid = "dayGridMonth"

// VisibleRange is the widget's navigation callback payload: the visible
// window (End exclusive), the view granularity and the first day of the
// focused period.
type VisibleRange struct {
	Start time.Time
	End   time.Time
	View  string

	// Focused is the widget's current period start (e.g. the 1st of the
	// titled month in a month grid). Zero falls back to Start.
	Focused time.Time
}

// EnsureVisibleMonthsLoaded hydrates every month the visible range needs and
// then re-renders. It runs on every navigation action and once at mount.
func (e *Engine) EnsureVisibleMonthsLoaded(ctx context.Context, vr VisibleRange) error {
	if vr.Start.IsZero() || vr.End.IsZero() {
		appLog.Warn("visible-range trigger without valid range; ignoring")
		return nil
	}

	var months []string
	if vr.View == ViewMonthGrid {
		focused := vr.Focused
		if focused.IsZero() {
			focused = vr.Start
		}
		months = []string{model.MonthKey(focused)}
	} else {
		// End is exclusive; step back 1ms so a range ending exactly on a
		// month boundary does not drag in the next month.
		months = model.MonthsInRange(vr.Start, vr.End.Add(-time.Millisecond))
	}

	appLog.Debug("visible months", "months", months, "view", vr.View)

	var firstErr error
	for _, m := range months {
		if e.cache.MonthLoaded(m) || e.cache.MonthLoading(m) {
			continue
		}
		if err := e.LoadMonth(ctx, m); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	e.Render()
	return firstErr
}
