package models

import "gorm.io/gorm"

// UserSettings keeps per-user display and reminder preferences, separate
// from the profile fields that feed the goal formulas.
type UserSettings struct {
	gorm.Model
	UserID        uint   `gorm:"uniqueIndex;not null"`
	UnitSystem    string `gorm:"size:10;default:metric"` // "metric" | "imperial"
	ShowHydration bool   `gorm:"default:true"`
	NudgeOptIn    bool   `gorm:"default:false"` // daily summary email
}
