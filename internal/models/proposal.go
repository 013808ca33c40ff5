package models

import (
	"time"

	"gorm.io/gorm"
)

type Proposal struct {
	gorm.Model

	OwnerID    uint   `gorm:"not null;index"`
	ClientName string
	Title      string `gorm:"not null"`
	Status     string `gorm:"not null;default:'draft'"` // "draft", "sent", "accepted", "declined"
	SentAt     *time.Time

	// Relationships
	Owner User `gorm:"foreignKey:OwnerID;constraint:OnUpdate:Cascade,OnDelete:CASCADE" json:"-"`
}

// PendingLongerThan reports whether a sent proposal has been waiting for a
// reply for more than `days` days at now.
func (p Proposal) PendingLongerThan(now time.Time, days int) bool {
	if p.Status != "sent" || p.SentAt == nil {
		return false
	}

	return p.SentAt.AddDate(0, 0, days).Before(now)
}
