package automation

import "time"

// Event names carried by EventContext. Producers in the request layer use
// these when calling TriggerEvent after a state change commits.
const (
	EventItemCreated  = "item_created"
	EventFieldChanged = "field_changed"
	EventCronTick     = "cron_tick"
	EventDateArrived  = "date_arrived"
	EventAgentCheck   = "agent_check"
)

// EventContext is the ephemeral per-invocation input to rule evaluation
// and action execution. It lives for exactly one call and is never
// persisted.
type EventContext struct {
	EventType string
	EntityID  uint
	FieldID   uint
	OldValue  string
	NewValue  string
	ActorID   uint
	Now       time.Time
}

// ExecutionResult is what the Action Executor hands back to its caller.
// Failures travel here as values; Execute never panics across the call.
type ExecutionResult struct {
	RuleID     uint
	ActionType string
	Status     string // "success" or "failed"
	Message    string
	Duration   time.Duration
}

const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

func (r ExecutionResult) Failed() bool {
	return r.Status == StatusFailed
}
