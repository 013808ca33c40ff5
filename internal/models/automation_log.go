package models

import (
	"time"

	"gorm.io/datatypes"
)

// AutomationLog records the outcome of every immediate-path action
// attempt, success or failure. It is the only observability surface for
// event-driven rule executions.
type AutomationLog struct {
	BaseModel

	RuleID      uint           `gorm:"not null;index"`
	ActionType  string         `gorm:"not null"`
	Status      string         `gorm:"not null"` // "success", "failed"
	Message     string
	ExecutionMs int64          `gorm:"not null"`
	Context     datatypes.JSON `gorm:"type:jsonb"`
	ExecutedAt  time.Time      `gorm:"not null"`

	// Relationships
	Rule AutomationRule `gorm:"foreignKey:RuleID;constraint:OnUpdate:Cascade,OnDelete:CASCADE" json:"-"`
}
