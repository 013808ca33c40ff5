package automation

import (
	"log"
	"strings"

	"github.com/craftdesk-dev/craftdesk/internal/models"
)

// Evaluate decides whether rule fires for ctx on the immediate path. It is
// a pure function of its inputs and never panics; a malformed rule must
// not block evaluation of the rules after it.
//
// Time-based triggers (on_date_arrive, cron_schedule and the agent
// predicates) always return false here: they depend on wall-clock scans
// over whole collections and belong to the scheduler sweeps.
func Evaluate(rule models.AutomationRule, ctx EventContext) bool {
	if !rule.IsEnabled {
		return false
	}

	switch rule.TriggerType {
	case models.TriggerFieldChange:
		return evaluateFieldChange(rule, ctx)

	case models.TriggerItemCreate:
		return ctx.EventType == EventItemCreated

	case models.TriggerDateArrive, models.TriggerCronSchedule,
		models.TriggerTaskOverdue, models.TriggerBookingUpcoming,
		models.TriggerInvoiceUnpaid, models.TriggerProposalPending:
		return false

	default:
		log.Printf("automation: rule %d has unknown trigger type %q, skipping", rule.ID, rule.TriggerType)
		return false
	}
}

func evaluateFieldChange(rule models.AutomationRule, ctx EventContext) bool {
	if ctx.EventType != EventFieldChanged {
		return false
	}

	parsed, err := ParseTriggerConfig(rule.TriggerType, rule.TriggerConfig)

	if err != nil {
		log.Printf("automation: rule %d has invalid trigger config: %v", rule.ID, err)
		return false
	}

	cfg, ok := parsed.(FieldChangeConfig)

	if !ok || cfg.FieldID != ctx.FieldID {
		return false
	}

	return CompareValues(cfg.Operator, ctx.NewValue, cfg.Value)
}

// CompareValues applies a field_change operator to the changed value and
// the rule's comparison value. Equality is exact-string; contains and
// not_contains are case-sensitive substring tests. An absent actual value
// is a non-match for contains, and a match for not_contains (an empty
// string contains nothing but the empty string).
func CompareValues(operator, actual, expected string) bool {
	switch operator {
	case OpEquals:
		return actual == expected
	case OpNotEquals:
		return actual != expected
	case OpContains:
		return strings.Contains(actual, expected)
	case OpNotContains:
		return !strings.Contains(actual, expected)
	default:
		log.Printf("automation: unknown operator %q", operator)
		return false
	}
}
