package models

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	Email    string `gorm:"uniqueIndex;not null"`
	Password string `gorm:"not null"` // bcrypt hash, never the raw password
	Name     string

	Sex           string `gorm:"size:10"` // "male" | "female" | "other"
	Birthday      time.Time
	HeightCm      float64
	WeightKg      float64
	ActivityLevel string `gorm:"size:16;default:light"`
	FitnessGoal   string `gorm:"size:16;default:maintenance"` // "muscle_gain" | "fat_loss" | "maintenance"
}

// Age in whole years at the given instant. Zero Birthday means unknown.
func (u *User) Age(now time.Time) int {
	if u.Birthday.IsZero() {
		return 0
	}
	years := now.Year() - u.Birthday.Year()
	if now.YearDay() < u.Birthday.YearDay() {
		years--
	}
	if years < 0 {
		return 0
	}
	return years
}
