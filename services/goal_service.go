package services

import (
	"errors"
	"fmt"
	"math"
	"time"

	"healthylife/config"
	"healthylife/models"

	"gorm.io/gorm"
)

// Defaults applied when the profile is incomplete, so a fresh account
// still sees sensible targets instead of an error.
const (
	defaultWeightKg = 70.0
	defaultHeightCm = 170.0
	defaultAge      = 25

	fiberGoalG     = 25.0
	waterPerKgMl   = 30.0
	defaultWaterMl = 2000.0
)

var activityFactors = map[string]float64{
	"sedentary": 1.2,
	"light":     1.375,
	"moderate":  1.55,
	"active":    1.725,
}

// Goals are the daily targets. They are derived from the profile on every
// request and never written to the database; editing the profile is the
// only way to change them.
type Goals struct {
	Calories float64 `json:"calories"`
	ProteinG float64 `json:"protein_g"`
	CarbsG   float64 `json:"carbs_g"`
	FatG     float64 `json:"fat_g"`
	FiberG   float64 `json:"fiber_g"`
	WaterMl  float64 `json:"water_ml"`
}

// BMR implements Mifflin-St Jeor. The sex offset is +5 for male, -161 for
// female, 0 otherwise.
func BMR(weightKg, heightCm float64, age int, sex string) float64 {
	base := 10*weightKg + 6.25*heightCm - 5*float64(age)
	switch sex {
	case "male":
		return base + 5
	case "female":
		return base - 161
	default:
		return base
	}
}

func activityFactor(level string) float64 {
	if f, ok := activityFactors[level]; ok {
		return f
	}
	return activityFactors["light"]
}

// AutoGoals derives the daily targets from a profile. Calories are BMR
// scaled by the activity factor; the macro split is 25% protein, 45%
// carbs, 30% fat of those calories; water is 30 ml per kg of body weight.
func AutoGoals(u *models.User) Goals {
	w := u.WeightKg
	if w <= 0 {
		w = defaultWeightKg
	}
	h := u.HeightCm
	if h <= 0 {
		h = defaultHeightCm
	}
	age := u.Age(time.Now())
	if age <= 0 {
		age = defaultAge
	}

	kcal := math.Floor(BMR(w, h, age, u.Sex) * activityFactor(u.ActivityLevel))

	water := defaultWaterMl
	if u.WeightKg > 0 {
		water = waterPerKgMl * u.WeightKg
	}

	return Goals{
		Calories: kcal,
		ProteinG: math.Floor((0.25 * kcal) / 4),
		CarbsG:   math.Floor((0.45 * kcal) / 4),
		FatG:     math.Floor((0.30 * kcal) / 9),
		FiberG:   fiberGoalG,
		WaterMl:  water,
	}
}

// MacroSplit is a protein-first macro recommendation for a named fitness
// goal; carbs take whatever calories remain after protein and fat, and
// every figure bottoms out at zero.
type MacroSplit struct {
	ProteinG float64 `json:"protein_g"`
	CarbsG   float64 `json:"carbs_g"`
	FatG     float64 `json:"fat_g"`
}

// ValidFitnessGoal reports whether s names a macro scenario.
func ValidFitnessGoal(s string) bool {
	switch s {
	case "muscle_gain", "fat_loss", "maintenance":
		return true
	}
	return false
}

func RecommendedMacros(weightKg, kcal float64, goal string) MacroSplit {
	if weightKg <= 0 {
		weightKg = defaultWeightKg
	}

	var protein, fatRatio float64
	switch goal {
	case "muscle_gain":
		protein = math.Round(2.0 * weightKg)
		fatRatio = 0.25
	case "fat_loss":
		protein = math.Round(1.8 * weightKg)
		fatRatio = 0.30
	default: // maintenance
		protein = math.Round(1.6 * weightKg)
		fatRatio = 0.28
	}

	fat := math.Floor((fatRatio * kcal) / 9)
	carbs := math.Floor((kcal - (protein*4 + fat*9)) / 4)

	// a sparse profile can drive kcal itself negative
	return MacroSplit{
		ProteinG: math.Max(protein, 0),
		CarbsG:   math.Max(carbs, 0),
		FatG:     math.Max(fat, 0),
	}
}

// GetGoalsAndProgress computes the user's targets and how far the logged
// intake for the given date has gotten toward them. Percent is capped at
// 1 so the progress bars stop at full.
func GetGoalsAndProgress(userID uint, date time.Time) (Goals, map[string]any, error) {
	var user models.User
	if err := config.DB.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Goals{}, nil, fmt.Errorf("%w: user %d", ErrNotFound, userID)
		}
		return Goals{}, nil, err
	}

	goals := AutoGoals(&user)

	rec, err := GetDailyRecord(userID, date)
	if err != nil {
		return goals, nil, err
	}
	waterMl, err := GetWater(userID, date)
	if err != nil {
		return goals, nil, err
	}

	pct := func(consumed, target float64) float64 {
		if target <= 0 {
			return 0
		}
		p := consumed / target
		if p > 1 {
			return 1
		}
		return p
	}

	progress := map[string]any{
		"calories": map[string]float64{"consumed": rec.Calories, "goal": goals.Calories, "percent": pct(rec.Calories, goals.Calories)},
		"protein":  map[string]float64{"consumed": rec.ProteinG, "goal": goals.ProteinG, "percent": pct(rec.ProteinG, goals.ProteinG)},
		"carbs":    map[string]float64{"consumed": rec.CarbsG, "goal": goals.CarbsG, "percent": pct(rec.CarbsG, goals.CarbsG)},
		"fat":      map[string]float64{"consumed": rec.FatG, "goal": goals.FatG, "percent": pct(rec.FatG, goals.FatG)},
		"water":    map[string]float64{"consumed": waterMl, "goal": goals.WaterMl, "percent": pct(waterMl, goals.WaterMl)},
	}

	return goals, progress, nil
}
