package scheduler

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/craftdesk-dev/craftdesk/internal/automation"
	"github.com/craftdesk-dev/craftdesk/internal/models"
)

// memStore implements automation.RuleStore and automation.DomainStore for
// sweep tests.
type memStore struct {
	mu sync.Mutex

	rules     []models.AutomationRule
	autoLogs  []models.AutomationLog
	ledger    []models.AgentNotificationLog
	items     map[uint][]models.DynamicItem
	tasks     []models.Task
	bookings  []models.Booking
	invoices  []models.Invoice
	proposals []models.Proposal

	fieldValues map[string]string
	created     []models.DynamicItem

	scannedOwners []uint
	listErr       error
}

func newMemStore() *memStore {
	return &memStore{
		items:       make(map[uint][]models.DynamicItem),
		fieldValues: make(map[string]string),
	}
}

func (m *memStore) ListEnabledRules(ownerID uint) ([]models.AutomationRule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []models.AutomationRule
	for _, rule := range m.rules {
		if rule.OwnerID == ownerID && rule.IsEnabled {
			out = append(out, rule)
		}
	}
	return out, nil
}

func (m *memStore) ListEnabledRulesByTrigger(triggerTypes ...string) ([]models.AutomationRule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.listErr != nil {
		return nil, m.listErr
	}

	var out []models.AutomationRule
	for _, rule := range m.rules {
		if !rule.IsEnabled {
			continue
		}
		for _, triggerType := range triggerTypes {
			if rule.TriggerType == triggerType {
				out = append(out, rule)
				break
			}
		}
	}
	return out, nil
}

func (m *memStore) GetRule(id uint) (*models.AutomationRule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.rules {
		if m.rules[i].ID == id {
			return &m.rules[i], nil
		}
	}
	return nil, automation.ErrRuleNotFound
}

func (m *memStore) GetBoardRules(boardID uint) ([]models.AutomationRule, error) {
	return nil, errors.New("not used in sweeps")
}

func (m *memStore) CreateAutomationLog(entry *models.AutomationLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.autoLogs = append(m.autoLogs, *entry)
	return nil
}

func (m *memStore) CreateAgentNotificationLog(entry *models.AgentNotificationLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.ledger {
		if existing.RuleID == entry.RuleID && existing.EntityID == entry.EntityID {
			return errors.New("duplicate ledger entry")
		}
	}

	m.ledger = append(m.ledger, *entry)
	return nil
}

func (m *memStore) NotificationExists(ruleID, entityID uint) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, entry := range m.ledger {
		if entry.RuleID == ruleID && entry.EntityID == entityID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) ListBoardItems(boardID uint) ([]models.DynamicItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.items[boardID], nil
}

func (m *memStore) SetFieldValue(itemID, fieldID uint, value string, actorID uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.fieldValues[fmt.Sprintf("%d/%d", itemID, fieldID)] = value
	return nil
}

func (m *memStore) CreateItem(boardID uint, name string, creatorID uint) (*models.DynamicItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	item := models.DynamicItem{
		BaseModel:   models.BaseModel{ID: uint(len(m.created) + 1)},
		BoardID:     boardID,
		Name:        name,
		CreatedByID: creatorID,
	}
	m.created = append(m.created, item)
	return &item, nil
}

func (m *memStore) ListOverdueTasks(ownerID uint, now time.Time) ([]models.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.scannedOwners = append(m.scannedOwners, ownerID)

	var out []models.Task
	for _, task := range m.tasks {
		if task.OwnerID == ownerID && task.Overdue(now) {
			out = append(out, task)
		}
	}
	return out, nil
}

func (m *memStore) ListUpcomingBookings(ownerID uint, now time.Time, days int) ([]models.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.scannedOwners = append(m.scannedOwners, ownerID)

	var out []models.Booking
	for _, booking := range m.bookings {
		if booking.OwnerID == ownerID && booking.UpcomingWithin(now, days) {
			out = append(out, booking)
		}
	}
	return out, nil
}

func (m *memStore) ListUnpaidInvoices(ownerID uint, now time.Time) ([]models.Invoice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.scannedOwners = append(m.scannedOwners, ownerID)

	var out []models.Invoice
	for _, invoice := range m.invoices {
		if invoice.OwnerID == ownerID && invoice.UnpaidPastDue(now) {
			out = append(out, invoice)
		}
	}
	return out, nil
}

func (m *memStore) ListPendingProposals(ownerID uint, now time.Time, days int) ([]models.Proposal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.scannedOwners = append(m.scannedOwners, ownerID)

	var out []models.Proposal
	for _, proposal := range m.proposals {
		if proposal.OwnerID == ownerID && proposal.PendingLongerThan(now, days) {
			out = append(out, proposal)
		}
	}
	return out, nil
}

func (m *memStore) ledgerEntries() []models.AgentNotificationLog {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]models.AgentNotificationLog(nil), m.ledger...)
}

func (m *memStore) automationLogs() []models.AutomationLog {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]models.AutomationLog(nil), m.autoLogs...)
}

type recordingNotifier struct {
	mu       sync.Mutex
	messages []string
	users    []uint
	err      error
	panicMsg string
}

func (r *recordingNotifier) Notify(userID uint, message string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.panicMsg != "" && message == r.panicMsg {
		panic("notifier: " + message)
	}

	if r.err != nil {
		return r.err
	}

	r.users = append(r.users, userID)
	r.messages = append(r.messages, message)
	return nil
}

func (r *recordingNotifier) sent() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]string(nil), r.messages...)
}

type noopEmail struct{}

func (noopEmail) Send(to, subject, body string) error { return nil }

func newTestScheduler(store *memStore, notifier *recordingNotifier) *Scheduler {
	exec := automation.NewExecutor(store, store, notifier, noopEmail{})
	return New(store, store, exec, notifier)
}
