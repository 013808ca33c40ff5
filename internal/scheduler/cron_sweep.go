package scheduler

import (
	"log"
	"time"

	"github.com/craftdesk-dev/craftdesk/internal/automation"
	"github.com/craftdesk-dev/craftdesk/internal/models"
)

// RunCronSweep executes every enabled cron_schedule rule whose expression
// validates. The expression is advisory metadata from the rule author; the
// actual cadence is this hourly sweep. An invalid expression skips the
// rule with a warning and never aborts the sweep.
func (s *Scheduler) RunCronSweep(now time.Time) {
	rules, err := s.rules.ListEnabledRulesByTrigger(models.TriggerCronSchedule)

	if err != nil {
		log.Printf("scheduler: cron sweep failed to load rules: %v", err)
		return
	}

	for _, rule := range rules {
		s.runRule(rule, func(rule models.AutomationRule) {
			parsed, err := automation.ParseTriggerConfig(rule.TriggerType, rule.TriggerConfig)

			if err != nil {
				log.Printf("scheduler: skipping cron rule %d: %v", rule.ID, err)
				return
			}

			cfg := parsed.(automation.CronConfig)

			if err := automation.ValidateCronExpression(cfg.Expression); err != nil {
				log.Printf("scheduler: skipping cron rule %d: %v", rule.ID, err)
				return
			}

			s.exec.Execute(rule, automation.EventContext{
				EventType: automation.EventCronTick,
				ActorID:   rule.OwnerID,
				Now:       now,
			})
		})
	}
}

// runRule isolates one rule's processing so a panic is logged once and the
// remaining rules in the sweep still run.
func (s *Scheduler) runRule(rule models.AutomationRule, fn func(models.AutomationRule)) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("scheduler: rule %d panicked: %v", rule.ID, r)
		}
	}()

	fn(rule)
}
