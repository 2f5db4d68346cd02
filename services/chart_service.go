package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"healthylife/models"
	"healthylife/utils"

	"gorm.io/gorm"
)

type ChartService struct{ db *gorm.DB }

func NewChartService(db *gorm.DB) *ChartService { return &ChartService{db: db} }

// ---------- Summary ----------

type MetricAvg struct {
	AvgConsumed float64 `json:"avg_consumed"`
	AvgGoal     float64 `json:"avg_goal,omitempty"`
	AvgPercent  float64 `json:"avg_percent,omitempty"`
	Unit        string  `json:"unit,omitempty"`
}

type ChartSummary struct {
	Range struct {
		From string `json:"from"`
		To   string `json:"to"`
	} `json:"range"`

	Macros map[string]MetricAvg `json:"macros"` // calories, protein, carbs, fat
	Other  map[string]MetricAvg `json:"other"`  // water, steps

	Weight struct {
		First   float64 `json:"first,omitempty"`
		Last    float64 `json:"last,omitempty"`
		Change  float64 `json:"change"`
		Weighed int     `json:"days_weighed"`
	} `json:"weight"`

	Metadata struct {
		DaysCounted        int  `json:"days_counted"`
		IncludeMissingDays bool `json:"include_missing_days"`
	} `json:"metadata"`
}

func (s *ChartService) Summary(
	ctx context.Context, userID uint, from, to time.Time, includeMissing bool,
) (*ChartSummary, error) {

	rows, waters, goals, err := s.rangeData(ctx, userID, from, to)
	if err != nil {
		return nil, err
	}

	idx := map[string]models.DailyRecord{}
	for _, r := range rows {
		idx[r.Date.Format("2006-01-02")] = r
	}
	widx := map[string]float64{}
	for _, w := range waters {
		widx[w.Date.Format("2006-01-02")] = w.AmountMl
	}

	type acc struct{ sum, psum float64 }
	m := map[string]*acc{
		"calories": {}, "protein": {}, "carbs": {}, "fat": {},
		"water": {}, "steps": {},
	}

	var dates []time.Time
	if includeMissing {
		for d := dayStart(from); !d.After(to); d = d.AddDate(0, 0, 1) {
			dates = append(dates, d)
		}
	} else {
		for _, r := range rows {
			dates = append(dates, dayStart(r.Date))
		}
	}

	for _, d := range dates {
		key := d.Format("2006-01-02")
		rec := idx[key] // zero value if not found

		type pair struct {
			k string
			c float64
			g float64
		}
		for _, p := range []pair{
			{"calories", rec.Calories, goals.Calories},
			{"protein", rec.ProteinG, goals.ProteinG},
			{"carbs", rec.CarbsG, goals.CarbsG},
			{"fat", rec.FatG, goals.FatG},
			{"water", widx[key], goals.WaterMl},
			{"steps", float64(rec.Steps), 0},
		} {
			m[p.k].sum += p.c
			if p.g > 0 {
				m[p.k].psum += (p.c / p.g) * 100.0
			}
		}
	}

	out := &ChartSummary{}
	out.Range.From = from.Format("2006-01-02")
	out.Range.To = to.Format("2006-01-02")
	out.Metadata.DaysCounted = len(dates)
	out.Metadata.IncludeMissingDays = includeMissing

	n := len(dates)
	out.Macros = map[string]MetricAvg{
		"calories": {AvgConsumed: avg(m["calories"].sum, n), AvgGoal: goals.Calories, AvgPercent: avg(m["calories"].psum, n), Unit: "kcal"},
		"protein":  {AvgConsumed: avg(m["protein"].sum, n), AvgGoal: goals.ProteinG, AvgPercent: avg(m["protein"].psum, n), Unit: "g"},
		"carbs":    {AvgConsumed: avg(m["carbs"].sum, n), AvgGoal: goals.CarbsG, AvgPercent: avg(m["carbs"].psum, n), Unit: "g"},
		"fat":      {AvgConsumed: avg(m["fat"].sum, n), AvgGoal: goals.FatG, AvgPercent: avg(m["fat"].psum, n), Unit: "g"},
	}
	out.Other = map[string]MetricAvg{
		"water": {AvgConsumed: avg(m["water"].sum, n), AvgGoal: goals.WaterMl, AvgPercent: avg(m["water"].psum, n), Unit: "ml"},
		"steps": {AvgConsumed: avg(m["steps"].sum, n), Unit: "steps"},
	}

	var first, last float64
	weighed := 0
	for _, r := range rows {
		if r.WeightKg > 0 {
			if weighed == 0 {
				first = r.WeightKg
			}
			last = r.WeightKg
			weighed++
		}
	}
	out.Weight.First = first
	out.Weight.Last = last
	out.Weight.Change = round2(last - first)
	out.Weight.Weighed = weighed

	return out, nil
}

// ---------- Daily Overview ----------

type OverviewResponse struct {
	From string `json:"from"`
	To   string `json:"to"`
	Mode string `json:"mode"` // chart|detailed
	Days any    `json:"days"`
}

type DayChart struct {
	Date        string             `json:"date"`
	Percentages map[string]float64 `json:"percentages"`
}
type Metric struct {
	Actual  float64 `json:"actual"`
	Target  float64 `json:"target"`
	Percent float64 `json:"percent"`
}
type DayDetailed struct {
	Date    string            `json:"date"`
	Metrics map[string]Metric `json:"metrics"`
}

// Overview walks every day in [from, to] so the chart has a bar per day
// even when nothing was logged.
func (s *ChartService) Overview(
	ctx context.Context, userID uint, from, to time.Time, mode string,
) (*OverviewResponse, error) {

	if mode != "chart" && mode != "detailed" {
		return nil, fmt.Errorf("%w: mode must be 'chart' or 'detailed'", ErrInvalid)
	}
	if to.Before(from) {
		return nil, fmt.Errorf("%w: range end before start", ErrInvalid)
	}

	rows, waters, goals, err := s.rangeData(ctx, userID, from, to)
	if err != nil {
		return nil, err
	}

	idx := map[string]models.DailyRecord{}
	for _, r := range rows {
		idx[r.Date.Format("2006-01-02")] = r
	}
	widx := map[string]float64{}
	for _, w := range waters {
		widx[w.Date.Format("2006-01-02")] = w.AmountMl
	}

	out := &OverviewResponse{
		From: dayStart(from).Format("2006-01-02"),
		To:   dayStart(to).Format("2006-01-02"),
		Mode: mode,
	}

	if mode == "chart" {
		var days []DayChart
		for d := dayStart(from); !d.After(to); d = d.AddDate(0, 0, 1) {
			key := d.Format("2006-01-02")
			rec := idx[key]
			days = append(days, DayChart{
				Date: key,
				Percentages: map[string]float64{
					"calories": pct(rec.Calories, goals.Calories),
					"protein":  pct(rec.ProteinG, goals.ProteinG),
					"carbs":    pct(rec.CarbsG, goals.CarbsG),
					"fat":      pct(rec.FatG, goals.FatG),
					"water":    pct(widx[key], goals.WaterMl),
				},
			})
		}
		out.Days = days
		return out, nil
	}

	var days []DayDetailed
	for d := dayStart(from); !d.After(to); d = d.AddDate(0, 0, 1) {
		key := d.Format("2006-01-02")
		rec := idx[key]
		days = append(days, DayDetailed{
			Date: key,
			Metrics: map[string]Metric{
				"calories":  {Actual: round2(rec.Calories), Target: round2(goals.Calories), Percent: pct(rec.Calories, goals.Calories)},
				"protein_g": {Actual: round2(rec.ProteinG), Target: round2(goals.ProteinG), Percent: pct(rec.ProteinG, goals.ProteinG)},
				"carbs_g":   {Actual: round2(rec.CarbsG), Target: round2(goals.CarbsG), Percent: pct(rec.CarbsG, goals.CarbsG)},
				"fat_g":     {Actual: round2(rec.FatG), Target: round2(goals.FatG), Percent: pct(rec.FatG, goals.FatG)},
				"water_ml":  {Actual: round2(widx[key]), Target: round2(goals.WaterMl), Percent: pct(widx[key], goals.WaterMl)},
				"steps":     {Actual: float64(rec.Steps)},
			},
		})
	}
	out.Days = days
	return out, nil
}

// ---------- Weight ----------

type WeightPoint struct {
	Date     string  `json:"date"`
	WeightKg float64 `json:"weight_kg"`
	BMI      float64 `json:"bmi,omitempty"`
}

// WeightSeries returns only the days a weight was logged. BMI rides
// along when the profile height allows computing it.
func (s *ChartService) WeightSeries(ctx context.Context, userID uint, from, to time.Time) ([]WeightPoint, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user %d", ErrNotFound, userID)
		}
		return nil, err
	}

	var rows []models.DailyRecord
	if err := s.db.WithContext(ctx).
		Where("user_id = ? AND date BETWEEN ? AND ? AND weight_kg > 0", userID, dayStart(from), dayEnd(to)).
		Order("date ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	points := make([]WeightPoint, 0, len(rows))
	for _, r := range rows {
		p := WeightPoint{Date: r.Date.Format("2006-01-02"), WeightKg: r.WeightKg}
		if bmi, err := utils.CalculateBMI(user.HeightCm, r.WeightKg); err == nil {
			p.BMI = round2(bmi)
		}
		points = append(points, p)
	}
	return points, nil
}

// ---------- Macro pie ----------

type MacroPieSlice struct {
	Kcal  float64 `json:"kcal"`
	Share float64 `json:"share"`
}

// MacroPie splits the day's calories by macro source. Shares are 0 when
// nothing was logged; otherwise they sum to 1 give or take rounding.
func (s *ChartService) MacroPie(ctx context.Context, userID uint, date time.Time) (map[string]MacroPieSlice, error) {
	var rec models.DailyRecord
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND date = ?", userID, dayStartLocal(date)).
		First(&rec).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	pK := rec.ProteinG * 4
	cK := rec.CarbsG * 4
	fK := rec.FatG * 9
	total := pK + cK + fK

	share := func(v float64) float64 {
		if total <= 0 {
			return 0
		}
		return round2(v / total)
	}

	return map[string]MacroPieSlice{
		"protein": {Kcal: round2(pK), Share: share(pK)},
		"carbs":   {Kcal: round2(cK), Share: share(cK)},
		"fat":     {Kcal: round2(fK), Share: share(fK)},
	}, nil
}

type MacroAvg struct {
	AvgG  float64 `json:"avg_g"`
	Share float64 `json:"share"`
}

// MacroPieRecent averages the macro grams over the user's last n logged
// records, the dashboard's default pie. Shares are of total grams and
// sum to 1 whenever anything was logged.
func (s *ChartService) MacroPieRecent(ctx context.Context, userID uint, n int) (map[string]MacroAvg, int, error) {
	if n <= 0 || n > 90 {
		n = 7
	}

	var rows []models.DailyRecord
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("date DESC").
		Limit(n).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	var p, c, f float64
	for _, r := range rows {
		p += r.ProteinG
		c += r.CarbsG
		f += r.FatG
	}
	if len(rows) > 0 {
		d := float64(len(rows))
		p, c, f = p/d, c/d, f/d
	}

	total := p + c + f
	share := func(v float64) float64 {
		if total <= 0 {
			return 0
		}
		return round2(v / total)
	}

	return map[string]MacroAvg{
		"protein": {AvgG: round2(p), Share: share(p)},
		"carbs":   {AvgG: round2(c), Share: share(c)},
		"fat":     {AvgG: round2(f), Share: share(f)},
	}, len(rows), nil
}

// ---------- Water ----------

type WaterPoint struct {
	Date     string  `json:"date"`
	AmountMl float64 `json:"amount_ml"`
	GoalMl   float64 `json:"goal_ml"`
	Percent  float64 `json:"percent"`
}

func (s *ChartService) WaterSeries(ctx context.Context, userID uint, from, to time.Time) ([]WaterPoint, error) {
	_, waters, goals, err := s.rangeData(ctx, userID, from, to)
	if err != nil {
		return nil, err
	}

	widx := map[string]float64{}
	for _, w := range waters {
		widx[w.Date.Format("2006-01-02")] = w.AmountMl
	}

	var points []WaterPoint
	for d := dayStart(from); !d.After(to); d = d.AddDate(0, 0, 1) {
		key := d.Format("2006-01-02")
		points = append(points, WaterPoint{
			Date:     key,
			AmountMl: widx[key],
			GoalMl:   goals.WaterMl,
			Percent:  pct(widx[key], goals.WaterMl),
		})
	}
	return points, nil
}

// ---------- internals ----------

func (s *ChartService) rangeData(
	ctx context.Context, userID uint, from, to time.Time,
) ([]models.DailyRecord, []models.WaterLog, Goals, error) {

	var user models.User
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, Goals{}, fmt.Errorf("%w: user %d", ErrNotFound, userID)
		}
		return nil, nil, Goals{}, err
	}
	goals := AutoGoals(&user)

	var rows []models.DailyRecord
	if err := s.db.WithContext(ctx).
		Where("user_id = ? AND date BETWEEN ? AND ?", userID, dayStart(from), dayEnd(to)).
		Order("date ASC").
		Find(&rows).Error; err != nil {
		return nil, nil, goals, err
	}

	var waters []models.WaterLog
	if err := s.db.WithContext(ctx).
		Where("user_id = ? AND date BETWEEN ? AND ?", userID, dayStart(from), dayEnd(to)).
		Order("date ASC").
		Find(&waters).Error; err != nil {
		return nil, nil, goals, err
	}

	return rows, waters, goals, nil
}

func pct(actual, goal float64) float64 {
	if goal <= 0 {
		if actual <= 0 {
			return 0
		}
		return 100
	}
	return round2((actual / goal) * 100.0)
}

func avg(sum float64, n int) float64 {
	if n <= 0 {
		return 0
	}
	return round2(sum / float64(n))
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }

func dayStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
func dayEnd(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}
