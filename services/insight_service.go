package services

import (
	"context"
	"errors"
	"fmt"
	"math"

	"healthylife/models"

	"gorm.io/gorm"
)

const (
	tdeeMinDays = 10
	tdeeWindow  = 7
	kcalPerKg   = 7700.0 // energy in a kg of body weight

	adherenceDays  = 14
	adherenceFloor = 1000.0
)

type InsightService struct{ db *gorm.DB }

func NewInsightService(db *gorm.DB) *InsightService { return &InsightService{db: db} }

type TDEEEstimate struct {
	EstimatedKcal int     `json:"estimated_kcal"`
	BaseKcal      float64 `json:"base_kcal"`
	DaysUsed      int     `json:"days_used"`
}

type AdherenceReport struct {
	KcalRate      float64 `json:"kcal_rate"`
	ProteinRate   float64 `json:"protein_rate"`
	KcalAdjust    float64 `json:"kcal_adjust"`
	SuggestedKcal float64 `json:"suggested_kcal"`
	DaysCounted   int     `json:"days_counted"`
}

// Insights are advisory only: nothing here writes goals or records. A
// nil section means the history is too thin and Notes says why.
type Insights struct {
	TDEE      *TDEEEstimate    `json:"tdee"`
	Adherence *AdherenceReport `json:"adherence"`
	Notes     []string         `json:"notes,omitempty"`
}

func (s *InsightService) Insights(ctx context.Context, userID uint) (*Insights, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user %d", ErrNotFound, userID)
		}
		return nil, err
	}
	goals := AutoGoals(&user)

	var rows []models.DailyRecord
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("date ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	out := &Insights{}

	if est, ok := estimateTDEE(rows, goals.Calories); ok {
		out.TDEE = est
	} else {
		out.Notes = append(out.Notes,
			fmt.Sprintf("TDEE needs around two weeks of days with both calories and weight logged (at least %d).", tdeeMinDays))
	}

	if rep, ok := adherence(rows, goals); ok {
		out.Adherence = rep
	} else {
		out.Notes = append(out.Notes, "Adherence needs at least one day with intake logged.")
	}

	return out, nil
}

// estimateTDEE back-solves maintenance calories from paired 7-day intake
// sums and weight-trend changes, at 7700 kcal per kg. The estimate is
// clamped to ±30% of the formula baseline so sparse noisy logs cannot
// produce nonsense.
func estimateTDEE(rows []models.DailyRecord, baseKcal float64) (*TDEEEstimate, bool) {
	var days []models.DailyRecord
	for _, r := range rows {
		if r.Calories > 0 && r.WeightKg > 0 {
			days = append(days, r)
		}
	}
	if len(days) < tdeeMinDays {
		return nil, false
	}

	n := len(days)
	kcal7 := make([]float64, n)
	wt7 := make([]float64, n)
	for i := tdeeWindow - 1; i < n; i++ {
		var ksum, wsum float64
		for j := i - tdeeWindow + 1; j <= i; j++ {
			ksum += days[j].Calories
			wsum += days[j].WeightKg
		}
		kcal7[i] = ksum
		wt7[i] = wsum / float64(tdeeWindow)
	}

	// each sample pairs a week of intake with the weight-trend change
	// seen a week later
	var sum float64
	samples := 0
	for i := tdeeWindow - 1; i+tdeeWindow < n; i++ {
		deltaW := wt7[i+tdeeWindow] - wt7[i]
		sum += kcal7[i] - kcalPerKg*deltaW
		samples++
	}
	if samples == 0 {
		return nil, false
	}

	tdee := sum / float64(samples) / float64(tdeeWindow)
	tdee = math.Max(baseKcal*0.7, math.Min(baseKcal*1.3, tdee))

	return &TDEEEstimate{
		EstimatedKcal: int(math.Round(tdee)),
		BaseKcal:      baseKcal,
		DaysUsed:      len(days),
	}, true
}

// adherence scores the recent two weeks against the calorie band (±5%)
// and the protein floor (90%) and proposes a ±100 kcal tweak, never
// below 1000 kcal.
func adherence(rows []models.DailyRecord, goals Goals) (*AdherenceReport, bool) {
	if goals.Calories <= 0 || goals.ProteinG <= 0 {
		return nil, false
	}

	var days []models.DailyRecord
	for _, r := range rows {
		if r.Calories > 0 {
			days = append(days, r)
		}
	}
	if len(days) == 0 {
		return nil, false
	}
	if len(days) > adherenceDays {
		days = days[len(days)-adherenceDays:]
	}

	var inBand, proteinOK int
	for _, r := range days {
		if r.Calories >= goals.Calories*0.95 && r.Calories <= goals.Calories*1.05 {
			inBand++
		}
		if r.ProteinG >= goals.ProteinG*0.9 {
			proteinOK++
		}
	}

	n := float64(len(days))
	kcalRate := float64(inBand) / n
	proteinRate := float64(proteinOK) / n

	var adjust float64
	if kcalRate < 0.4 {
		adjust -= 100
	}
	if kcalRate > 0.8 {
		adjust += 100
	}

	return &AdherenceReport{
		KcalRate:      round2(kcalRate),
		ProteinRate:   round2(proteinRate),
		KcalAdjust:    adjust,
		SuggestedKcal: math.Max(adherenceFloor, goals.Calories+adjust),
		DaysCounted:   len(days),
	}, true
}
