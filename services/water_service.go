package services

import (
	"errors"
	"fmt"
	"time"

	"healthylife/config"
	"healthylife/models"

	"gorm.io/gorm"
)

// WaterQuickAddsMl are the one-tap amounts the dashboard offers. The oz
// row is the same buttons for imperial users; they convert to ml before
// hitting AddWater.
var (
	WaterQuickAddsMl = []float64{250, 350, 500, 750, 1000}
	WaterQuickAddsOz = []float64{8, 12, 16, 24, 32}
)

// AddWater accumulates ml onto the user's total for the date and returns
// the new total. Crossing the water goal on the way up emits an alert.
func AddWater(userID uint, date time.Time, ml float64) (float64, error) {
	if ml <= 0 {
		return 0, fmt.Errorf("%w: amount must be positive", ErrInvalid)
	}
	start := dayStartLocal(date)

	log := models.WaterLog{UserID: userID, Date: start}
	if err := config.DB.
		Where("user_id = ? AND date = ?", userID, start).
		FirstOrCreate(&log).Error; err != nil {
		return 0, err
	}

	prev := log.AmountMl
	log.AmountMl = prev + ml
	if err := config.DB.Save(&log).Error; err != nil {
		return 0, err
	}

	notifyWaterGoal(userID, prev, log.AmountMl)
	PushProgress(userID, date)
	return log.AmountMl, nil
}

// SetWater overwrites the day's total, for "correct today's total" style
// edits. Zero is allowed; it resets the day.
func SetWater(userID uint, date time.Time, ml float64) (float64, error) {
	if ml < 0 {
		return 0, fmt.Errorf("%w: amount must not be negative", ErrInvalid)
	}
	start := dayStartLocal(date)

	log := models.WaterLog{UserID: userID, Date: start}
	if err := config.DB.
		Where("user_id = ? AND date = ?", userID, start).
		Assign(map[string]interface{}{"amount_ml": ml}).
		FirstOrCreate(&log).Error; err != nil {
		return 0, err
	}

	PushProgress(userID, date)
	return log.AmountMl, nil
}

// DeleteWaterDay drops the day's row, today's or any past date's.
// Unscoped, so the (user, date) slot is free if the user logs again.
func DeleteWaterDay(userID uint, date time.Time) error {
	start := dayStartLocal(date)

	res := config.DB.Unscoped().
		Where("user_id = ? AND date = ?", userID, start).
		Delete(&models.WaterLog{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: no water log for %s", ErrNotFound, start.Format("2006-01-02"))
	}

	PushProgress(userID, date)
	return nil
}

// GetWater returns the day's total, zero when nothing was logged.
func GetWater(userID uint, date time.Time) (float64, error) {
	start := dayStartLocal(date)

	var log models.WaterLog
	err := config.DB.Where("user_id = ? AND date = ?", userID, start).First(&log).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return log.AmountMl, nil
}

func ListWaterLogs(userID uint, from, to time.Time) ([]models.WaterLog, error) {
	var logs []models.WaterLog
	err := config.DB.
		Where("user_id = ? AND date BETWEEN ? AND ?", userID, dayStart(from), dayEnd(to)).
		Order("date ASC").
		Find(&logs).Error
	return logs, err
}

func notifyWaterGoal(userID uint, prevMl, nowMl float64) {
	var user models.User
	if err := config.DB.First(&user, userID).Error; err != nil {
		return
	}
	goal := AutoGoals(&user).WaterMl
	if goal > 0 && prevMl < goal && nowMl >= goal {
		EmitAlert(userID, "success", fmt.Sprintf("Water goal reached: %.0f ml today.", nowMl))
	}
}
