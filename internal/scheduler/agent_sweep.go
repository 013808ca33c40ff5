package scheduler

import (
	"fmt"
	"log"
	"time"

	"github.com/craftdesk-dev/craftdesk/internal/automation"
	"github.com/craftdesk-dev/craftdesk/internal/metrics"
	"github.com/craftdesk-dev/craftdesk/internal/models"
)

// Window defaults when the rule config leaves days unset.
const (
	defaultBookingWindowDays = 3
	defaultProposalWaitDays  = 7
)

type agentCandidate struct {
	entityID   uint
	entityType string
	message    string
}

// RunAgentSweep evaluates the domain agent predicates (task_overdue,
// booking_upcoming, invoice_unpaid, proposal_pending) for every enabled
// scheduled rule. Each qualifying entity is checked against the ledger
// before the notification is created and recorded right after, favouring
// "at most once" over "guaranteed once" if the process dies in between.
func (s *Scheduler) RunAgentSweep(now time.Time) {
	rules, err := s.rules.ListEnabledRulesByTrigger(
		models.TriggerTaskOverdue,
		models.TriggerBookingUpcoming,
		models.TriggerInvoiceUnpaid,
		models.TriggerProposalPending,
	)

	if err != nil {
		log.Printf("scheduler: agent sweep failed to load rules: %v", err)
		return
	}

	for _, rule := range rules {
		if rule.RunScope != models.RunScopeScheduled {
			continue
		}

		s.runRule(rule, func(rule models.AutomationRule) {
			s.sweepAgentRule(rule, now)
		})
	}
}

func (s *Scheduler) sweepAgentRule(rule models.AutomationRule, now time.Time) {
	parsed, err := automation.ParseTriggerConfig(rule.TriggerType, rule.TriggerConfig)

	if err != nil {
		log.Printf("scheduler: skipping agent rule %d: %v", rule.ID, err)
		return
	}

	cfg := parsed.(automation.AgentWindowConfig)

	candidates, err := s.agentCandidates(rule, cfg, now)

	if err != nil {
		log.Printf("scheduler: agent rule %d failed to scan entities: %v", rule.ID, err)
		return
	}

	for _, candidate := range candidates {
		exists, err := s.rules.NotificationExists(rule.ID, candidate.entityID)

		if err != nil {
			log.Printf("scheduler: agent rule %d ledger check failed for %s %d: %v",
				rule.ID, candidate.entityType, candidate.entityID, err)
			continue
		}

		if exists {
			metrics.NotificationsDeduped.Inc()
			continue
		}

		message := cfg.Message

		if message == "" {
			message = candidate.message
		}

		status := automation.StatusSuccess

		if err := s.notifier.Notify(rule.OwnerID, message); err != nil {
			status = automation.StatusFailed
			log.Printf("scheduler: agent rule %d notification failed for %s %d: %v",
				rule.ID, candidate.entityType, candidate.entityID, err)
		}

		s.writeLedger(rule, candidate.entityID, candidate.entityType, "in_app", status, now)
		metrics.RulesMatched.WithLabelValues(rule.TriggerType).Inc()
	}
}

// agentCandidates scans the owner's entities for the rule's predicate. All
// queries are scoped to the rule's owner; the sweep never crosses tenants.
func (s *Scheduler) agentCandidates(rule models.AutomationRule, cfg automation.AgentWindowConfig, now time.Time) ([]agentCandidate, error) {
	switch rule.TriggerType {
	case models.TriggerTaskOverdue:
		tasks, err := s.domain.ListOverdueTasks(rule.OwnerID, now)
		if err != nil {
			return nil, err
		}

		candidates := make([]agentCandidate, 0, len(tasks))
		for _, task := range tasks {
			candidates = append(candidates, agentCandidate{
				entityID:   task.ID,
				entityType: "task",
				message:    fmt.Sprintf("Task %q is overdue", task.Title),
			})
		}
		return candidates, nil

	case models.TriggerBookingUpcoming:
		days := cfg.Days
		if days == 0 {
			days = defaultBookingWindowDays
		}

		bookings, err := s.domain.ListUpcomingBookings(rule.OwnerID, now, days)
		if err != nil {
			return nil, err
		}

		candidates := make([]agentCandidate, 0, len(bookings))
		for _, booking := range bookings {
			candidates = append(candidates, agentCandidate{
				entityID:   booking.ID,
				entityType: "booking",
				message:    fmt.Sprintf("Booking %q starts %s", booking.Title, booking.StartsAt.Format("2006-01-02 15:04")),
			})
		}
		return candidates, nil

	case models.TriggerInvoiceUnpaid:
		invoices, err := s.domain.ListUnpaidInvoices(rule.OwnerID, now)
		if err != nil {
			return nil, err
		}

		candidates := make([]agentCandidate, 0, len(invoices))
		for _, invoice := range invoices {
			candidates = append(candidates, agentCandidate{
				entityID:   invoice.ID,
				entityType: "invoice",
				message:    fmt.Sprintf("Invoice %s is past due", invoice.Number),
			})
		}
		return candidates, nil

	case models.TriggerProposalPending:
		days := cfg.Days
		if days == 0 {
			days = defaultProposalWaitDays
		}

		proposals, err := s.domain.ListPendingProposals(rule.OwnerID, now, days)
		if err != nil {
			return nil, err
		}

		candidates := make([]agentCandidate, 0, len(proposals))
		for _, proposal := range proposals {
			candidates = append(candidates, agentCandidate{
				entityID:   proposal.ID,
				entityType: "proposal",
				message:    fmt.Sprintf("Proposal %q has been waiting %d+ days for a reply", proposal.Title, days),
			})
		}
		return candidates, nil

	default:
		return nil, fmt.Errorf("unknown agent trigger %q", rule.TriggerType)
	}
}
