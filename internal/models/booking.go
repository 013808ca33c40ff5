package models

import (
	"time"

	"gorm.io/gorm"
)

type Booking struct {
	gorm.Model

	OwnerID    uint      `gorm:"not null;index"`
	ClientName string    `gorm:"not null"`
	Title      string    `gorm:"not null"`
	Status     string    `gorm:"not null;default:'confirmed'"` // "confirmed", "cancelled", "completed"
	StartsAt   time.Time `gorm:"not null;index"`
	EndsAt     *time.Time

	// Relationships
	Owner User `gorm:"foreignKey:OwnerID;constraint:OnUpdate:Cascade,OnDelete:CASCADE" json:"-"`
}

// UpcomingWithin reports whether a confirmed booking starts inside the
// next `days` days from now.
func (b Booking) UpcomingWithin(now time.Time, days int) bool {
	if b.Status != "confirmed" {
		return false
	}

	if b.StartsAt.Before(now) {
		return false
	}

	return b.StartsAt.Before(now.AddDate(0, 0, days))
}
