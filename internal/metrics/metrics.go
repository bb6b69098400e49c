// Package metrics exposes prometheus counters for the reconciliation engine
// and the feed pipeline. All counters are registered on the default registry
// and served by the web package's /metrics endpoint.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// GestureDecisions counts rejected or failed gestures by action
	// (CREATE/MOVE/RESIZE/DELETE) and reason code.
	GestureDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kantinedienst_gesture_decisions_total",
		Help: "Rejected or failed gestures by action and reason.",
	}, []string{"action", "reason"})

	// Rollbacks counts optimistic mutations that had to be undone.
	Rollbacks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "kantinedienst_rollbacks_total",
		Help: "Optimistic local mutations reverted after a remote failure.",
	})

	// MonthLoads counts month hydrations by outcome ("loaded", "empty",
	// "error").
	MonthLoads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kantinedienst_month_loads_total",
		Help: "Month hydration attempts by outcome.",
	}, []string{"outcome"})

	// FeedRefreshes counts fixture-feed refreshes by outcome ("ok", "error").
	FeedRefreshes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kantinedienst_feed_refreshes_total",
		Help: "Fixture feed refresh attempts by outcome.",
	}, []string{"outcome"})
)
