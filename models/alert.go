package models

import "time"

// Alert is a short in-app notice: a goal reached, a reminder sent. Rows
// are written by the alert bus and listed until the user marks them seen.
type Alert struct {
	ID        uint   `gorm:"primaryKey"`
	UserID    uint   `gorm:"index"`
	Type      string `gorm:"size:20"` // "info" | "success" | "reminder"
	Message   string `gorm:"type:text"`
	Seen      bool   `gorm:"default:false"`
	CreatedAt time.Time
}
