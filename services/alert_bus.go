package services

import (
	"errors"
	"time"

	"healthylife/models"

	"gorm.io/gorm"
)

type alertDeps struct {
	db *gorm.DB
	rt *RealtimeHub
}

var _alert alertDeps

func InitAlertDeps(db *gorm.DB, rt *RealtimeHub) {
	_alert = alertDeps{db: db, rt: rt}
}

// EmitAlert persists the notice and pushes it to any open dashboard
// connections. Safe to call anywhere; a no-op before InitAlertDeps.
func EmitAlert(userID uint, typ, message string) {
	if _alert.db == nil {
		return
	}
	a := &models.Alert{UserID: userID, Type: typ, Message: message, CreatedAt: time.Now()}
	_ = _alert.db.Create(a).Error

	if _alert.rt != nil {
		_alert.rt.Broadcast(userID, map[string]any{
			"kind":  "alert.created",
			"alert": a,
		})
	}
}

// PushProgress broadcasts the day's fresh percentages after an intake
// write, so open dashboards redraw their bars without polling.
func PushProgress(userID uint, date time.Time) {
	if _alert.rt == nil {
		return
	}
	_, progress, err := GetGoalsAndProgress(userID, date)
	if err != nil {
		return
	}
	_alert.rt.Broadcast(userID, map[string]any{
		"kind":     "progress.updated",
		"date":     dayStartLocal(date).Format("2006-01-02"),
		"progress": progress,
	})
}

func ListAlerts(userID uint, unseenOnly bool, limit int) ([]models.Alert, error) {
	if _alert.db == nil {
		return nil, errors.New("alert bus not initialised")
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	q := _alert.db.Where("user_id = ?", userID).Order("created_at DESC").Limit(limit)
	if unseenOnly {
		q = q.Where("seen = ?", false)
	}

	var alerts []models.Alert
	err := q.Find(&alerts).Error
	return alerts, err
}

// MarkAlertsSeen flags the given alerts, or all of the user's when ids
// is empty.
func MarkAlertsSeen(userID uint, ids []uint) error {
	if _alert.db == nil {
		return errors.New("alert bus not initialised")
	}

	q := _alert.db.Model(&models.Alert{}).Where("user_id = ?", userID)
	if len(ids) > 0 {
		q = q.Where("id IN ?", ids)
	}
	return q.Update("seen", true).Error
}
