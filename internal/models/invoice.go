package models

import (
	"time"

	"gorm.io/gorm"
)

type Invoice struct {
	gorm.Model

	OwnerID     uint   `gorm:"not null;index"`
	Number      string `gorm:"not null"`
	ClientName  string
	AmountCents int64  `gorm:"not null"`
	Status      string `gorm:"not null;default:'draft'"` // "draft", "sent", "paid", "void"
	DueDate     *time.Time

	// Relationships
	Owner User `gorm:"foreignKey:OwnerID;constraint:OnUpdate:Cascade,OnDelete:CASCADE" json:"-"`
}

// UnpaidPastDue reports whether a sent invoice is past its due date at now.
func (i Invoice) UnpaidPastDue(now time.Time) bool {
	if i.Status != "sent" || i.DueDate == nil {
		return false
	}

	return i.DueDate.Before(now)
}
