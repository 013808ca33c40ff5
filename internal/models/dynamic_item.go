package models

import "time"

// DynamicField is a column definition on a board ("status", "due date", ...).
type DynamicField struct {
	BaseModel

	BoardID uint   `gorm:"not null;index"`
	Name    string `gorm:"not null"`
	Type    string `gorm:"not null"` // "text", "date", "number", "status"

	// Relationships
	Board Board `gorm:"foreignKey:BoardID;constraint:OnUpdate:Cascade,OnDelete:CASCADE" json:"-"`
}

// DynamicItem is a row on a board; its cell values live in DynamicFieldValue.
type DynamicItem struct {
	BaseModel

	BoardID     uint   `gorm:"not null;index"`
	Name        string `gorm:"not null"`
	CreatedByID uint   `gorm:"not null;index"`

	// Relationships
	Board  Board               `gorm:"foreignKey:BoardID;constraint:OnUpdate:Cascade,OnDelete:CASCADE" json:"-"`
	Values []DynamicFieldValue `gorm:"foreignKey:ItemID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}

type DynamicFieldValue struct {
	BaseModel

	ItemID    uint   `gorm:"not null;uniqueIndex:idx_item_field"`
	FieldID   uint   `gorm:"not null;uniqueIndex:idx_item_field"`
	Value     string `gorm:"type:text"`
	UpdatedBy uint

	// Relationships
	Item  DynamicItem  `gorm:"foreignKey:ItemID;constraint:OnUpdate:Cascade,OnDelete:CASCADE" json:"-"`
	Field DynamicField `gorm:"foreignKey:FieldID;constraint:OnUpdate:Cascade,OnDelete:CASCADE" json:"-"`
}

// DateValue parses the cell as a calendar date. Returns false when the cell
// is empty or not a date.
func (v DynamicFieldValue) DateValue() (time.Time, bool) {
	if v.Value == "" {
		return time.Time{}, false
	}

	t, err := time.Parse("2006-01-02", v.Value)

	if err != nil {
		return time.Time{}, false
	}

	return t, true
}
