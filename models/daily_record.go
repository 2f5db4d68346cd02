package models

import (
	"time"

	"gorm.io/gorm"
)

// DailyRecord is one user's logged intake and weight for one calendar date.
// The composite unique index guarantees at most one row per (user, date);
// writes go through the upsert in services so a second save for the same
// day updates in place instead of inserting a duplicate.
type DailyRecord struct {
	gorm.Model
	UserID uint      `gorm:"not null;uniqueIndex:idx_record_user_date"`
	Date   time.Time `gorm:"not null;uniqueIndex:idx_record_user_date"` // truncated to YYYY-MM-DD

	WeightKg float64 // 0 = not weighed that day
	Calories float64
	ProteinG float64
	CarbsG   float64
	FatG     float64
	Steps    int
}
