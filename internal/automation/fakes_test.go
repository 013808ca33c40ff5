package automation

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/craftdesk-dev/craftdesk/internal/models"
)

// fakeStore is an in-memory RuleStore + DomainStore used across the
// package tests.
type fakeStore struct {
	mu sync.Mutex

	rules       []models.AutomationRule
	autoLogs    []models.AutomationLog
	ledger      []models.AgentNotificationLog
	items       map[uint][]models.DynamicItem
	fieldValues map[string]string
	created     []models.DynamicItem

	tasks     []models.Task
	bookings  []models.Booking
	invoices  []models.Invoice
	proposals []models.Proposal

	listErr   error
	ledgerErr error

	// owner ids the domain scans were asked for, for tenant isolation
	// assertions.
	scannedOwners []uint
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		items:       make(map[uint][]models.DynamicItem),
		fieldValues: make(map[string]string),
	}
}

func (f *fakeStore) ListEnabledRules(ownerID uint) ([]models.AutomationRule, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.listErr != nil {
		return nil, f.listErr
	}

	var out []models.AutomationRule
	for _, rule := range f.rules {
		if rule.OwnerID == ownerID && rule.IsEnabled {
			out = append(out, rule)
		}
	}
	return out, nil
}

func (f *fakeStore) ListEnabledRulesByTrigger(triggerTypes ...string) ([]models.AutomationRule, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.listErr != nil {
		return nil, f.listErr
	}

	var out []models.AutomationRule
	for _, rule := range f.rules {
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

func (f *fakeStore) GetRule(id uint) (*models.AutomationRule, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for i := range f.rules {
		if f.rules[i].ID == id {
			return &f.rules[i], nil
		}
	}
	return nil, ErrRuleNotFound
}

func (f *fakeStore) GetBoardRules(boardID uint) ([]models.AutomationRule, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []models.AutomationRule
	for _, rule := range f.rules {
		if rule.BoardID != nil && *rule.BoardID == boardID {
			out = append(out, rule)
		}
	}
	return out, nil
}

func (f *fakeStore) CreateAutomationLog(entry *models.AutomationLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.autoLogs = append(f.autoLogs, *entry)
	return nil
}

func (f *fakeStore) CreateAgentNotificationLog(entry *models.AgentNotificationLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.ledgerErr != nil {
		return f.ledgerErr
	}

	for _, existing := range f.ledger {
		if existing.RuleID == entry.RuleID && existing.EntityID == entry.EntityID {
			return errors.New("duplicate ledger entry")
		}
	}

	f.ledger = append(f.ledger, *entry)
	return nil
}

func (f *fakeStore) NotificationExists(ruleID, entityID uint) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.ledgerErr != nil {
		return false, f.ledgerErr
	}

	for _, entry := range f.ledger {
		if entry.RuleID == ruleID && entry.EntityID == entityID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) ListBoardItems(boardID uint) ([]models.DynamicItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.items[boardID], nil
}

func (f *fakeStore) SetFieldValue(itemID, fieldID uint, value string, actorID uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.fieldValues[fmt.Sprintf("%d/%d", itemID, fieldID)] = value
	return nil
}

func (f *fakeStore) CreateItem(boardID uint, name string, creatorID uint) (*models.DynamicItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	item := models.DynamicItem{
		BaseModel:   models.BaseModel{ID: uint(len(f.created) + 1)},
		BoardID:     boardID,
		Name:        name,
		CreatedByID: creatorID,
	}
	f.created = append(f.created, item)
	return &item, nil
}

func (f *fakeStore) ListOverdueTasks(ownerID uint, now time.Time) ([]models.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.scannedOwners = append(f.scannedOwners, ownerID)

	var out []models.Task
	for _, task := range f.tasks {
		if task.OwnerID == ownerID && task.Overdue(now) {
			out = append(out, task)
		}
	}
	return out, nil
}

func (f *fakeStore) ListUpcomingBookings(ownerID uint, now time.Time, days int) ([]models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.scannedOwners = append(f.scannedOwners, ownerID)

	var out []models.Booking
	for _, booking := range f.bookings {
		if booking.OwnerID == ownerID && booking.UpcomingWithin(now, days) {
			out = append(out, booking)
		}
	}
	return out, nil
}

func (f *fakeStore) ListUnpaidInvoices(ownerID uint, now time.Time) ([]models.Invoice, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.scannedOwners = append(f.scannedOwners, ownerID)

	var out []models.Invoice
	for _, invoice := range f.invoices {
		if invoice.OwnerID == ownerID && invoice.UnpaidPastDue(now) {
			out = append(out, invoice)
		}
	}
	return out, nil
}

func (f *fakeStore) ListPendingProposals(ownerID uint, now time.Time, days int) ([]models.Proposal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.scannedOwners = append(f.scannedOwners, ownerID)

	var out []models.Proposal
	for _, proposal := range f.proposals {
		if proposal.OwnerID == ownerID && proposal.PendingLongerThan(now, days) {
			out = append(out, proposal)
		}
	}
	return out, nil
}

func (f *fakeStore) automationLogs() []models.AutomationLog {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]models.AutomationLog(nil), f.autoLogs...)
}

func (f *fakeStore) ledgerEntries() []models.AgentNotificationLog {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]models.AgentNotificationLog(nil), f.ledger...)
}

type fakeNotifier struct {
	mu       sync.Mutex
	messages []string
	users    []uint
	err      error
	panicMsg string
}

func (f *fakeNotifier) Notify(userID uint, message string) error {
	if f.panicMsg != "" {
		panic(f.panicMsg)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return f.err
	}

	f.users = append(f.users, userID)
	f.messages = append(f.messages, message)
	return nil
}

func (f *fakeNotifier) sent() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]string(nil), f.messages...)
}

type fakeEmail struct {
	mu   sync.Mutex
	sent []string
	err  error
}

func (f *fakeEmail) Send(to, subject, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return f.err
	}

	f.sent = append(f.sent, to)
	return nil
}
