package models

import (
	"time"

	"gorm.io/gorm"
)

type Task struct {
	gorm.Model

	OwnerID     uint   `gorm:"not null;index"`
	BoardID     *uint  `gorm:"index"`
	Title       string `gorm:"not null"`
	Description string
	Status      string `gorm:"not null;default:'todo'"` // "todo", "doing", "done"
	DueDate     *time.Time

	// Relationships
	Owner User `gorm:"foreignKey:OwnerID;constraint:OnUpdate:Cascade,OnDelete:CASCADE" json:"-"`
}

// Overdue reports whether the task is past due and still open at now.
func (t Task) Overdue(now time.Time) bool {
	if t.DueDate == nil || t.Status == "done" {
		return false
	}

	return t.DueDate.Before(now)
}
