package models

import "time"

// MonthLayout is the time layout of Budget.Month.
const MonthLayout = "2006-01"

// Budget represents a monthly spending limit for a category.
// Spend is not stored; it is summed from expense transactions.
type Budget struct {
	Base
	UserID     string `gorm:"type:uuid;not null;index" json:"user_id"`
	CategoryID string `gorm:"type:uuid;not null" json:"category_id"`
	Name       string `gorm:"not null" json:"name"`
	Amount     int64  `gorm:"type:bigint;not null" json:"amount"`
	Month      string `gorm:"size:7;not null;index" json:"month"`
	IsActive   bool   `gorm:"default:true" json:"is_active"`

	// Relationships
	Category Category `gorm:"foreignKey:CategoryID" json:"category"`
}

// MonthOf formats t as a budget month.
func MonthOf(t time.Time) string {
	return t.Format(MonthLayout)
}
