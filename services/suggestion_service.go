package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"healthylife/models"

	"gorm.io/gorm"
)

// Suggestion strategies. Balanced matches the goal macro ratios; the
// other two are single-axis preferences sharing the same calorie
// mismatch penalty.
const (
	StrategyBalanced    = "balanced"
	StrategyHighProtein = "high_protein"
	StrategyLowCarb     = "low_carb"
)

const (
	defaultTopN = 12
	minTopN     = 3
	maxTopN     = 30

	kcalPenaltyWeight = 0.2
)

type SuggestionService struct{ db *gorm.DB }

func NewSuggestionService(db *gorm.DB) *SuggestionService {
	return &SuggestionService{db: db}
}

// Suggestion is one ranked catalog item, with the est_* fields scaled to
// the target meal size. Lower score is better.
type Suggestion struct {
	FoodID   uint    `json:"food_id"`
	Name     string  `json:"name"`
	Kcal     float64 `json:"kcal"`
	ProteinG float64 `json:"protein_g"`
	CarbsG   float64 `json:"carbs_g"`
	FatG     float64 `json:"fat_g"`

	ProteinPer100Kcal float64 `json:"protein_per_100kcal"`
	CarbsPer100Kcal   float64 `json:"carbs_per_100kcal"`
	FatPer100Kcal     float64 `json:"fat_per_100kcal"`

	EstProteinG float64 `json:"est_protein_g"`
	EstCarbsG   float64 `json:"est_carbs_g"`
	EstFatG     float64 `json:"est_fat_g"`

	Score float64 `json:"score"`
}

// Suggest ranks the catalog for one meal. mealKcal 0 means a third of
// the user's calorie goal, floored at 200; topN 0 means 12, clamped to
// [3, 30]. Results are cached per (user, strategy, mealKcal, topN).
func (s *SuggestionService) Suggest(ctx context.Context, userID uint, strategy string, mealKcal float64, topN int) ([]Suggestion, error) {
	switch strategy {
	case "":
		strategy = StrategyBalanced
	case StrategyBalanced, StrategyHighProtein, StrategyLowCarb:
	default:
		return nil, fmt.Errorf("%w: strategy must be balanced, high_protein or low_carb", ErrInvalid)
	}

	if topN == 0 {
		topN = defaultTopN
	}
	if topN < minTopN {
		topN = minTopN
	}
	if topN > maxTopN {
		topN = maxTopN
	}

	var user models.User
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user %d", ErrNotFound, userID)
		}
		return nil, err
	}

	goals := AutoGoals(&user)
	if mealKcal <= 0 {
		mealKcal = math.Max(200, goals.Calories/3)
	}

	key := fmt.Sprintf("suggest:%d:%s:%.0f:%d", userID, strategy, mealKcal, topN)
	var cached []Suggestion
	if _suggestCache.GetJSON(ctx, key, &cached) {
		return cached, nil
	}

	var foods []models.FoodItem
	if err := s.db.WithContext(ctx).Find(&foods).Error; err != nil {
		return nil, err
	}

	out := rankFoods(foods, goals, strategy, mealKcal, topN)
	_suggestCache.SetJSON(ctx, key, out)
	return out, nil
}

// rankFoods is the pure scoring core. Balanced scores by squared distance
// between the food's macro-calorie ratios and the goal's; high_protein
// and low_carb score by grams per 100 kcal. All three add 0.2 times the
// relative distance between the serving's kcal and the meal target.
func rankFoods(foods []models.FoodItem, goals Goals, strategy string, mealKcal float64, topN int) []Suggestion {
	gp, gc, gf := goalRatios(goals)

	out := make([]Suggestion, 0, len(foods))
	for _, f := range foods {
		if f.Kcal <= 0 {
			continue // nothing to scale; per-kcal densities are undefined
		}

		pK := f.ProteinG * 4
		cK := f.CarbsG * 4
		fK := f.FatG * 9
		totalK := pK + cK + fK

		var rp, rc, rf float64
		if totalK > 0 {
			rp, rc, rf = pK/totalK, cK/totalK, fK/totalK
		}

		ratioMSE := (rp-gp)*(rp-gp) + (rc-gc)*(rc-gc) + (rf-gf)*(rf-gf)
		kcalPen := math.Abs(f.Kcal-mealKcal) / math.Max(mealKcal, 1)

		proteinPer100 := f.ProteinG / f.Kcal * 100
		carbsPer100 := f.CarbsG / f.Kcal * 100
		fatPer100 := f.FatG / f.Kcal * 100

		var score float64
		switch strategy {
		case StrategyHighProtein:
			score = -proteinPer100 + kcalPenaltyWeight*kcalPen
		case StrategyLowCarb:
			score = carbsPer100 + kcalPenaltyWeight*kcalPen
		default:
			score = ratioMSE + kcalPenaltyWeight*kcalPen
		}

		scale := mealKcal / f.Kcal
		out = append(out, Suggestion{
			FoodID:            f.ID,
			Name:              f.Name,
			Kcal:              f.Kcal,
			ProteinG:          f.ProteinG,
			CarbsG:            f.CarbsG,
			FatG:              f.FatG,
			ProteinPer100Kcal: round2(proteinPer100),
			CarbsPer100Kcal:   round2(carbsPer100),
			FatPer100Kcal:     round2(fatPer100),
			EstProteinG:       round1(f.ProteinG * scale),
			EstCarbsG:         round1(f.CarbsG * scale),
			EstFatG:           round1(f.FatG * scale),
			Score:             score,
		})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Score < out[j].Score })
	if len(out) > topN {
		out = out[:topN]
	}
	return out
}

// goalRatios converts the goal grams to calorie shares of protein, carbs
// and fat.
func goalRatios(g Goals) (p, c, f float64) {
	pK := g.ProteinG * 4
	cK := g.CarbsG * 4
	fK := g.FatG * 9
	total := math.Max(pK+cK+fK, 1)
	return pK / total, cK / total, fK / total
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
