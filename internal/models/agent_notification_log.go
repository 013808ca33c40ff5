package models

import (
	"time"

	"gorm.io/datatypes"
)

// AgentNotificationLog is the append-only ledger behind scheduled-rule
// dedup. A row's existence for (rule, entity) means the rule already fired
// for that entity; the engine never updates or deletes rows here.
type AgentNotificationLog struct {
	BaseModel

	RuleID      uint           `gorm:"not null;uniqueIndex:idx_rule_entity"`
	EntityID    uint           `gorm:"not null;uniqueIndex:idx_rule_entity"`
	EntityType  string         `gorm:"not null"` // "task", "booking", "invoice", "proposal", "item"
	Channel     string         `gorm:"not null"`
	Payload     datatypes.JSON `gorm:"type:jsonb"`
	Status      string         `gorm:"not null"` // "sent", "failed"
	TriggeredAt time.Time      `gorm:"not null"`

	// Relationships
	Rule AutomationRule `gorm:"foreignKey:RuleID;constraint:OnUpdate:Cascade,OnDelete:CASCADE" json:"-"`
}
