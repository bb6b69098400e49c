package engine

import (
	"errors"
	"fmt"
)

// Reason codes for rejected gestures and emitted decision records. The codes
// double as metric label values, so they stay short and stable.
const (
	ReasonNotAssignment     = "not_assignment"
	ReasonUnknownAssignment = "unknown_assignment"
	ReasonMissingTaskID     = "missing_task_id"
	ReasonInvalidInstant    = "invalid_instant"
	ReasonInvalidDuration   = "invalid_duration"
	ReasonCrossesDay        = "crosses_day"
	ReasonBelowMinDuration  = "below_min_duration"
	ReasonNoSheetForDay     = "no_sheet_for_day"
	ReasonRemoteFailed      = "remote_failed"
	ReasonDuplicate         = "duplicate"
)

// ValidationError rejects a gesture before any remote call is made. The
// revert is purely visual; no remote side effect exists to undo.
type ValidationError struct {
	Action string // "MOVE", "RESIZE", "CREATE"
	Reason string // one of the Reason constants
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s rejected: %s", e.Action, e.Reason)
}

// ErrCacheMiss means a day has no resolvable schedule even after a forced
// cache reload.
var ErrCacheMiss = errors.New("no schedule cached for day")
