package services

import (
	"errors"
	"fmt"
	"time"

	"healthylife/config"
	"healthylife/models"

	"gorm.io/gorm"
)

func dayStartLocal(t time.Time) time.Time {
	loc := time.Local
	tt := t.In(loc)
	return time.Date(tt.Year(), tt.Month(), tt.Day(), 0, 0, 0, 0, loc)
}

// RecordInput carries one day's logged values. Weight 0 means "not
// weighed today"; the other zeros are a valid empty log.
type RecordInput struct {
	WeightKg float64 `json:"weight_kg"`
	Calories float64 `json:"calories"`
	ProteinG float64 `json:"protein_g"`
	CarbsG   float64 `json:"carbs_g"`
	FatG     float64 `json:"fat_g"`
	Steps    int     `json:"steps"`
}

func (in *RecordInput) validate() error {
	if in.Calories < 0 || in.ProteinG < 0 || in.CarbsG < 0 || in.FatG < 0 {
		return fmt.Errorf("%w: intake values must not be negative", ErrInvalid)
	}
	if in.Steps < 0 {
		return fmt.Errorf("%w: steps must not be negative", ErrInvalid)
	}
	if in.WeightKg < 0 || in.WeightKg > 500 {
		return fmt.Errorf("%w: weight out of range", ErrInvalid)
	}
	return nil
}

// UpsertDailyRecord writes the record for (user, date @ local midnight),
// updating in place when the day already has one. Crossing the calorie
// goal on the way up emits a single alert.
func UpsertDailyRecord(userID uint, date time.Time, in RecordInput) (*models.DailyRecord, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	start := dayStartLocal(date)

	var prevKcal float64
	var before models.DailyRecord
	err := config.DB.Where("user_id = ? AND date = ?", userID, start).First(&before).Error
	switch {
	case err == nil:
		prevKcal = before.Calories
	case errors.Is(err, gorm.ErrRecordNotFound):
		// first save for this day
	default:
		return nil, err
	}

	// Upsert by (user_id, date @ local midnight). Assign takes a map so
	// zeros overwrite too; a struct Assign would skip them.
	rec := models.DailyRecord{UserID: userID, Date: start}
	if err := config.DB.
		Where("user_id = ? AND date = ?", userID, start).
		Assign(map[string]interface{}{
			"weight_kg": in.WeightKg,
			"calories":  in.Calories,
			"protein_g": in.ProteinG,
			"carbs_g":   in.CarbsG,
			"fat_g":     in.FatG,
			"steps":     in.Steps,
		}).
		FirstOrCreate(&rec).Error; err != nil {
		return nil, err
	}

	notifyCalorieGoal(userID, prevKcal, rec.Calories)
	PushProgress(userID, date)
	return &rec, nil
}

// FindDailyRecord returns the record for (user, date) or ErrNotFound.
func FindDailyRecord(userID uint, date time.Time) (*models.DailyRecord, error) {
	start := dayStartLocal(date)

	var rec models.DailyRecord
	err := config.DB.Where("user_id = ? AND date = ?", userID, start).First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: no record for %s", ErrNotFound, start.Format("2006-01-02"))
		}
		return nil, err
	}
	return &rec, nil
}

// GetDailyRecord is FindDailyRecord with absent days flattened to a zero
// record, which is what the progress and summary math wants.
func GetDailyRecord(userID uint, date time.Time) (models.DailyRecord, error) {
	rec, err := FindDailyRecord(userID, date)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return models.DailyRecord{UserID: userID, Date: dayStartLocal(date)}, nil
		}
		return models.DailyRecord{}, err
	}
	return *rec, nil
}

func ListDailyRecords(userID uint, from, to time.Time) ([]models.DailyRecord, error) {
	var recs []models.DailyRecord
	err := config.DB.
		Where("user_id = ? AND date BETWEEN ? AND ?", userID, dayStart(from), dayEnd(to)).
		Order("date ASC").
		Find(&recs).Error
	return recs, err
}

// DeleteDailyRecord removes the day's row. Unscoped: a soft-deleted row
// would keep occupying the unique (user, date) slot and block a re-log.
func DeleteDailyRecord(userID uint, date time.Time) error {
	start := dayStartLocal(date)

	res := config.DB.Unscoped().
		Where("user_id = ? AND date = ?", userID, start).
		Delete(&models.DailyRecord{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: no record for %s", ErrNotFound, start.Format("2006-01-02"))
	}

	PushProgress(userID, date)
	return nil
}

func notifyCalorieGoal(userID uint, prevKcal, nowKcal float64) {
	var user models.User
	if err := config.DB.First(&user, userID).Error; err != nil {
		return
	}
	goal := AutoGoals(&user).Calories
	if goal > 0 && prevKcal < goal && nowKcal >= goal {
		EmitAlert(userID, "success", fmt.Sprintf("Calorie goal reached: %.0f kcal logged today.", nowKcal))
	}
}
