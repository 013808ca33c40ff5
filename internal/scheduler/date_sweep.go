package scheduler

import (
	"encoding/json"
	"log"
	"time"

	"github.com/craftdesk-dev/craftdesk/internal/automation"
	"github.com/craftdesk-dev/craftdesk/internal/metrics"
	"github.com/craftdesk-dev/craftdesk/internal/models"
)

// RunDateArrivalSweep scans every item on each on_date_arrive rule's board,
// shifts the configured date field by the rule's offset and fires the
// action for items whose shifted date lands on today. The ledger check
// keeps a re-run later the same day from firing twice for the same item.
func (s *Scheduler) RunDateArrivalSweep(now time.Time) {
	rules, err := s.rules.ListEnabledRulesByTrigger(models.TriggerDateArrive)

	if err != nil {
		log.Printf("scheduler: date sweep failed to load rules: %v", err)
		return
	}

	for _, rule := range rules {
		s.runRule(rule, func(rule models.AutomationRule) {
			s.sweepDateRule(rule, now)
		})
	}
}

func (s *Scheduler) sweepDateRule(rule models.AutomationRule, now time.Time) {
	parsed, err := automation.ParseTriggerConfig(rule.TriggerType, rule.TriggerConfig)

	if err != nil {
		log.Printf("scheduler: skipping date rule %d: %v", rule.ID, err)
		return
	}

	cfg := parsed.(automation.DateArriveConfig)

	if rule.BoardID == nil {
		log.Printf("scheduler: date rule %d has no board, skipping", rule.ID)
		return
	}

	items, err := s.domain.ListBoardItems(*rule.BoardID)

	if err != nil {
		log.Printf("scheduler: date rule %d failed to list items: %v", rule.ID, err)
		return
	}

	for _, item := range items {
		date, ok := itemDateValue(item, cfg.FieldID)

		if !ok {
			continue
		}

		if !sameDay(date.AddDate(0, 0, cfg.OffsetDays), now) {
			continue
		}

		exists, err := s.rules.NotificationExists(rule.ID, item.ID)

		if err != nil {
			log.Printf("scheduler: date rule %d ledger check failed for item %d: %v", rule.ID, item.ID, err)
			continue
		}

		if exists {
			metrics.NotificationsDeduped.Inc()
			continue
		}

		result := s.exec.Execute(rule, automation.EventContext{
			EventType: automation.EventDateArrived,
			EntityID:  item.ID,
			ActorID:   rule.OwnerID,
			Now:       now,
		})

		s.writeLedger(rule, item.ID, "item", rule.ActionType, result.Status, now)
	}
}

// writeLedger appends the dedup record after execution. Failed executions
// are recorded too, so a permanently failing rule does not retry every
// sweep.
func (s *Scheduler) writeLedger(rule models.AutomationRule, entityID uint, entityType, channel, status string, now time.Time) {
	var ledgerStatus string

	if status == automation.StatusSuccess {
		ledgerStatus = "sent"
	} else {
		ledgerStatus = "failed"
	}

	payload, _ := json.Marshal(map[string]interface{}{
		"action_type": rule.ActionType,
		"entity_type": entityType,
	})

	entry := models.AgentNotificationLog{
		RuleID:      rule.ID,
		EntityID:    entityID,
		EntityType:  entityType,
		Channel:     channel,
		Payload:     payload,
		Status:      ledgerStatus,
		TriggeredAt: now,
	}

	if err := s.rules.CreateAgentNotificationLog(&entry); err != nil {
		log.Printf("scheduler: failed to write ledger for rule %d entity %d: %v", rule.ID, entityID, err)
	}
}

func itemDateValue(item models.DynamicItem, fieldID uint) (time.Time, bool) {
	for _, value := range item.Values {
		if value.FieldID == fieldID {
			return value.DateValue()
		}
	}

	return time.Time{}, false
}

// sameDay compares calendar dates, not timestamps.
func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()

	return ay == by && am == bm && ad == bd
}
