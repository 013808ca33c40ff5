package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	EventsEnqueued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "craftdesk_automation_events_enqueued_total",
		Help: "Total number of domain events placed on the automation queue.",
	})

	EventsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "craftdesk_automation_events_dropped_total",
		Help: "Total number of domain events rejected due to a full queue.",
	})

	EventsProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "craftdesk_automation_events_processed_total",
		Help: "Total number of domain events fully processed by the engine.",
	})

	RulesMatched = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "craftdesk_automation_rules_matched_total",
		Help: "Total number of rule matches, labelled by trigger type.",
	}, []string{"trigger_type"})

	ActionsExecuted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "craftdesk_automation_actions_executed_total",
		Help: "Total number of actions executed, labelled by type and status.",
	}, []string{"action_type", "status"})

	SweepRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "craftdesk_scheduler_sweep_runs_total",
		Help: "Total number of scheduler sweep executions, labelled by sweep.",
	}, []string{"sweep"})

	SweepDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "craftdesk_scheduler_sweep_duration_ms",
		Help:    "Sweep wall-clock duration in milliseconds.",
		Buckets: []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
	}, []string{"sweep"})

	NotificationsDeduped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "craftdesk_scheduler_notifications_deduped_total",
		Help: "Scheduled firings skipped because a ledger entry already existed.",
	})
)
