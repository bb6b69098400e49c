package engine

import (
	appLog "github.com/RubberMartyr/jvgh-kantinedienst/internal/log"
	"github.com/RubberMartyr/jvgh-kantinedienst/internal/metrics"
)

// logDecision emits the structured decision record every rejected or failed
// gesture produces before its revert: the action, the reason code and the
// identifiers involved. The record also feeds the decision counter.
func logDecision(action, reason string, kv ...any) {
	metrics.GestureDecisions.WithLabelValues(action, reason).Inc()

	fields := append([]any{"action", action, "reason", reason}, kv...)
	appLog.Info("gesture decision", fields...)
}
