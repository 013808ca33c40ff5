package automation

import (
	"errors"
	"time"

	"github.com/craftdesk-dev/craftdesk/db"
	"github.com/craftdesk-dev/craftdesk/internal/models"
	"gorm.io/gorm"
)

var ErrRuleNotFound = errors.New("automation rule not found")

// RuleStore is the persistence contract for rule definitions and the two
// execution logs. Rules are loaded fresh on every call so edits made
// through the management API take effect on the next cycle.
type RuleStore interface {
	ListEnabledRules(ownerID uint) ([]models.AutomationRule, error)
	ListEnabledRulesByTrigger(triggerTypes ...string) ([]models.AutomationRule, error)
	GetRule(id uint) (*models.AutomationRule, error)
	GetBoardRules(boardID uint) ([]models.AutomationRule, error)
	CreateAutomationLog(entry *models.AutomationLog) error
	CreateAgentNotificationLog(entry *models.AgentNotificationLog) error
	NotificationExists(ruleID, entityID uint) (bool, error)
}

// DomainStore is the engine's window onto domain entities. All reads are
// scoped by owner or board; writes are limited to the single-field
// mutations the set_field_value and create_item actions need.
type DomainStore interface {
	ListBoardItems(boardID uint) ([]models.DynamicItem, error)
	SetFieldValue(itemID, fieldID uint, value string, actorID uint) error
	CreateItem(boardID uint, name string, creatorID uint) (*models.DynamicItem, error)
	ListOverdueTasks(ownerID uint, now time.Time) ([]models.Task, error)
	ListUpcomingBookings(ownerID uint, now time.Time, days int) ([]models.Booking, error)
	ListUnpaidInvoices(ownerID uint, now time.Time) ([]models.Invoice, error)
	ListPendingProposals(ownerID uint, now time.Time, days int) ([]models.Proposal, error)
}

// NotificationSink creates in-app notifications for a user.
type NotificationSink interface {
	Notify(userID uint, message string) error
}

// EmailSender delivers a single outbound email synchronously.
type EmailSender interface {
	Send(to, subject, body string) error
}

// GormStore implements RuleStore and DomainStore on the shared gorm
// connection.
type GormStore struct{}

func NewGormStore() *GormStore {
	return &GormStore{}
}

func (s *GormStore) ListEnabledRules(ownerID uint) ([]models.AutomationRule, error) {
	var rules []models.AutomationRule

	if err := db.DB.Where("owner_id = ? AND is_enabled = ?", ownerID, true).Find(&rules).Error; err != nil {
		return nil, err
	}

	return rules, nil
}

func (s *GormStore) ListEnabledRulesByTrigger(triggerTypes ...string) ([]models.AutomationRule, error) {
	var rules []models.AutomationRule

	if err := db.DB.Where("trigger_type IN ? AND is_enabled = ?", triggerTypes, true).Find(&rules).Error; err != nil {
		return nil, err
	}

	return rules, nil
}

func (s *GormStore) GetRule(id uint) (*models.AutomationRule, error) {
	var rule models.AutomationRule

	if err := db.DB.Where("id = ?", id).First(&rule).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRuleNotFound
		}
		return nil, err
	}

	return &rule, nil
}

func (s *GormStore) GetBoardRules(boardID uint) ([]models.AutomationRule, error) {
	var rules []models.AutomationRule

	if err := db.DB.Where("board_id = ?", boardID).Find(&rules).Error; err != nil {
		return nil, err
	}

	return rules, nil
}

func (s *GormStore) CreateAutomationLog(entry *models.AutomationLog) error {
	return db.DB.Create(entry).Error
}

func (s *GormStore) CreateAgentNotificationLog(entry *models.AgentNotificationLog) error {
	return db.DB.Create(entry).Error
}

func (s *GormStore) NotificationExists(ruleID, entityID uint) (bool, error) {
	var count int64

	err := db.DB.Model(&models.AgentNotificationLog{}).
		Where("rule_id = ? AND entity_id = ?", ruleID, entityID).
		Count(&count).Error

	if err != nil {
		return false, err
	}

	return count > 0, nil
}

func (s *GormStore) ListBoardItems(boardID uint) ([]models.DynamicItem, error) {
	var items []models.DynamicItem

	if err := db.DB.Preload("Values").Where("board_id = ?", boardID).Find(&items).Error; err != nil {
		return nil, err
	}

	return items, nil
}

func (s *GormStore) SetFieldValue(itemID, fieldID uint, value string, actorID uint) error {
	var existing models.DynamicFieldValue

	err := db.DB.Where("item_id = ? AND field_id = ?", itemID, fieldID).First(&existing).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return db.DB.Create(&models.DynamicFieldValue{
			ItemID:    itemID,
			FieldID:   fieldID,
			Value:     value,
			UpdatedBy: actorID,
		}).Error
	}

	if err != nil {
		return err
	}

	existing.Value = value
	existing.UpdatedBy = actorID

	return db.DB.Save(&existing).Error
}

func (s *GormStore) CreateItem(boardID uint, name string, creatorID uint) (*models.DynamicItem, error) {
	item := models.DynamicItem{
		BoardID:     boardID,
		Name:        name,
		CreatedByID: creatorID,
	}

	if err := db.DB.Create(&item).Error; err != nil {
		return nil, err
	}

	return &item, nil
}

func (s *GormStore) ListOverdueTasks(ownerID uint, now time.Time) ([]models.Task, error) {
	var tasks []models.Task

	err := db.DB.
		Where("owner_id = ? AND status <> ? AND due_date IS NOT NULL AND due_date < ?", ownerID, "done", now).
		Find(&tasks).Error

	if err != nil {
		return nil, err
	}

	return tasks, nil
}

func (s *GormStore) ListUpcomingBookings(ownerID uint, now time.Time, days int) ([]models.Booking, error) {
	var bookings []models.Booking

	err := db.DB.
		Where("owner_id = ? AND status = ? AND starts_at >= ? AND starts_at < ?",
			ownerID, "confirmed", now, now.AddDate(0, 0, days)).
		Find(&bookings).Error

	if err != nil {
		return nil, err
	}

	return bookings, nil
}

func (s *GormStore) ListUnpaidInvoices(ownerID uint, now time.Time) ([]models.Invoice, error) {
	var invoices []models.Invoice

	err := db.DB.
		Where("owner_id = ? AND status = ? AND due_date IS NOT NULL AND due_date < ?", ownerID, "sent", now).
		Find(&invoices).Error

	if err != nil {
		return nil, err
	}

	return invoices, nil
}

func (s *GormStore) ListPendingProposals(ownerID uint, now time.Time, days int) ([]models.Proposal, error) {
	var proposals []models.Proposal

	err := db.DB.
		Where("owner_id = ? AND status = ? AND sent_at IS NOT NULL AND sent_at < ?",
			ownerID, "sent", now.AddDate(0, 0, -days)).
		Find(&proposals).Error

	if err != nil {
		return nil, err
	}

	return proposals, nil
}
