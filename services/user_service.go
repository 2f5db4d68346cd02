package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"healthylife/config"
	"healthylife/models"
	"healthylife/utils"

	"gorm.io/gorm"
)

// ProfileInput is a partial update: zero values leave the stored field
// alone. Imperial callers send height_in/weight_lb and get converted to
// metric before anything is stored.
type ProfileInput struct {
	Name          string  `json:"name"`
	Sex           string  `json:"sex"`      // "male" | "female" | "other"
	Birthday      string  `json:"birthday"` // YYYY-MM-DD
	HeightCm      float64 `json:"height_cm"`
	WeightKg      float64 `json:"weight_kg"`
	HeightIn      float64 `json:"height_in"`
	WeightLb      float64 `json:"weight_lb"`
	ActivityLevel string  `json:"activity_level"`
	FitnessGoal   string  `json:"fitness_goal"`
}

func GetUserProfile(userID uint) (map[string]interface{}, error) {
	user, err := FindUserByID(userID)
	if err != nil {
		return nil, err
	}

	resp := map[string]interface{}{
		"id":             user.ID,
		"email":          user.Email,
		"name":           user.Name,
		"sex":            user.Sex,
		"birthday":       "",
		"age":            user.Age(time.Now()),
		"height_cm":      user.HeightCm,
		"weight_kg":      user.WeightKg,
		"activity_level": user.ActivityLevel,
		"fitness_goal":   user.FitnessGoal,
	}
	if !user.Birthday.IsZero() {
		resp["birthday"] = user.Birthday.Format("2006-01-02")
	}
	if bmi, err := utils.CalculateBMI(user.HeightCm, user.WeightKg); err == nil {
		resp["bmi"] = round2(bmi)
		resp["bmi_category"] = utils.BMICategory(bmi)
	}
	return resp, nil
}

func UpdateUserProfile(userID uint, in ProfileInput) error {
	user, err := FindUserByID(userID)
	if err != nil {
		return err
	}

	if in.Name != "" {
		user.Name = in.Name
	}
	if in.Sex != "" {
		switch in.Sex {
		case "male", "female", "other":
			user.Sex = in.Sex
		default:
			return fmt.Errorf("%w: sex must be male, female or other", ErrInvalid)
		}
	}
	if in.Birthday != "" {
		bd, err := time.Parse("2006-01-02", in.Birthday)
		if err != nil {
			return fmt.Errorf("%w: birthday must be YYYY-MM-DD", ErrInvalid)
		}
		if bd.After(time.Now()) {
			return fmt.Errorf("%w: birthday is in the future", ErrInvalid)
		}
		user.Birthday = bd
	}

	heightCm := in.HeightCm
	if heightCm == 0 && in.HeightIn > 0 {
		heightCm = utils.InchesToCm(in.HeightIn)
	}
	weightKg := in.WeightKg
	if weightKg == 0 && in.WeightLb > 0 {
		weightKg = utils.PoundsToKg(in.WeightLb)
	}
	if heightCm > 0 {
		if heightCm < 50 || heightCm > 300 {
			return fmt.Errorf("%w: height out of plausible range", ErrInvalid)
		}
		user.HeightCm = heightCm
	}
	if weightKg > 0 {
		if weightKg < 10 || weightKg > 500 {
			return fmt.Errorf("%w: weight out of plausible range", ErrInvalid)
		}
		user.WeightKg = weightKg
	}

	if in.ActivityLevel != "" {
		if _, ok := activityFactors[in.ActivityLevel]; !ok {
			return fmt.Errorf("%w: activity level must be sedentary, light, moderate or active", ErrInvalid)
		}
		user.ActivityLevel = in.ActivityLevel
	}
	if in.FitnessGoal != "" {
		if !ValidFitnessGoal(in.FitnessGoal) {
			return fmt.Errorf("%w: fitness goal must be muscle_gain, fat_loss or maintenance", ErrInvalid)
		}
		user.FitnessGoal = in.FitnessGoal
	}

	if err := config.DB.Save(user).Error; err != nil {
		return err
	}

	// new profile numbers mean new goals, so cached rankings are stale
	InvalidateSuggestions(context.Background(), userID)
	return nil
}

// SettingsInput uses pointers so "not sent" and "set to false" stay
// distinguishable.
type SettingsInput struct {
	UnitSystem    *string `json:"unit_system"`
	ShowHydration *bool   `json:"show_hydration"`
	NudgeOptIn    *bool   `json:"nudge_opt_in"`
}

func GetUserSettings(userID uint) (*models.UserSettings, error) {
	var s models.UserSettings
	err := config.DB.Where("user_id = ?", userID).First(&s).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// accounts created before settings existed get the defaults
			s = models.UserSettings{UserID: userID, UnitSystem: "metric", ShowHydration: true}
			if err := config.DB.Create(&s).Error; err != nil {
				return nil, err
			}
			return &s, nil
		}
		return nil, err
	}
	return &s, nil
}

func UpdateUserSettings(userID uint, in SettingsInput) (*models.UserSettings, error) {
	s, err := GetUserSettings(userID)
	if err != nil {
		return nil, err
	}

	if in.UnitSystem != nil {
		switch *in.UnitSystem {
		case "metric", "imperial":
			s.UnitSystem = *in.UnitSystem
		default:
			return nil, fmt.Errorf("%w: unit system must be metric or imperial", ErrInvalid)
		}
	}
	if in.ShowHydration != nil {
		s.ShowHydration = *in.ShowHydration
	}
	if in.NudgeOptIn != nil {
		s.NudgeOptIn = *in.NudgeOptIn
	}

	return s, config.DB.Save(s).Error
}

func FindUserByID(id uint) (*models.User, error) {
	var user models.User
	if err := config.DB.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user %d", ErrNotFound, id)
		}
		return nil, err
	}
	return &user, nil
}

func FindUserByEmail(email string) (*models.User, error) {
	var user models.User
	if err := config.DB.First(&user, "email = ?", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user %s", ErrNotFound, email)
		}
		return nil, err
	}
	return &user, nil
}

// DeleteUser removes the account and everything hanging off it. Hard
// deletes throughout: the email must be reusable for a fresh signup.
func DeleteUser(userID uint) error {
	return config.DB.Transaction(func(tx *gorm.DB) error {
		for _, m := range []interface{}{
			&models.DailyRecord{}, &models.WaterLog{}, &models.UserSettings{}, &models.Alert{},
		} {
			if err := tx.Unscoped().Where("user_id = ?", userID).Delete(m).Error; err != nil {
				return err
			}
		}

		res := tx.Unscoped().Delete(&models.User{}, userID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: user %d", ErrNotFound, userID)
		}
		return nil
	})
}
