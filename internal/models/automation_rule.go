package models

import (
	"gorm.io/datatypes"
)

// Trigger types understood by the engine. Event-driven triggers are
// evaluated on the immediate path; the rest belong to the scheduler.
const (
	TriggerFieldChange     = "field_change"
	TriggerItemCreate      = "item_create"
	TriggerDateArrive      = "on_date_arrive"
	TriggerCronSchedule    = "cron_schedule"
	TriggerTaskOverdue     = "task_overdue"
	TriggerBookingUpcoming = "booking_upcoming"
	TriggerInvoiceUnpaid   = "invoice_unpaid"
	TriggerProposalPending = "proposal_pending"
)

const (
	ActionNotifyUser    = "notify_user"
	ActionSetFieldValue = "set_field_value"
	ActionCreateItem    = "create_item"
	ActionSendEmail     = "send_email"
	ActionCallWebhook   = "call_webhook"
)

const (
	RunScopeImmediate = "immediate"
	RunScopeScheduled = "scheduled"
)

type AutomationRule struct {
	BaseModel

	OwnerID       uint           `gorm:"not null;index"`
	BoardID       *uint          `gorm:"index"`
	Name          string         `gorm:"not null"`
	TriggerType   string         `gorm:"not null;index"`
	TriggerConfig datatypes.JSON `gorm:"type:jsonb"`
	ActionType    string         `gorm:"not null"`
	ActionConfig  datatypes.JSON `gorm:"type:jsonb"`
	IsEnabled     bool           `gorm:"default:true;index"`
	RunScope      string         `gorm:"not null;default:'immediate'"`

	// Relationships
	Owner User   `gorm:"foreignKey:OwnerID;constraint:OnUpdate:Cascade,OnDelete:CASCADE" json:"-"`
	Board *Board `gorm:"foreignKey:BoardID;constraint:OnUpdate:Cascade,OnDelete:CASCADE" json:"-"`
}
