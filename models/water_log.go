package models

import (
	"time"

	"gorm.io/gorm"
)

// WaterLog keeps a user's running water total for one calendar date, in
// milliliters. Quick-add buttons and manual entries both accumulate into
// the same row, one per (user, date).
type WaterLog struct {
	gorm.Model
	UserID   uint      `gorm:"not null;uniqueIndex:idx_water_user_date"`
	Date     time.Time `gorm:"not null;uniqueIndex:idx_water_user_date"`
	AmountMl float64   `gorm:"not null;default:0"`
}
