package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"healthylife/models"

	"gorm.io/gorm"
)

func seedIntake(t *testing.T, db *gorm.DB, userID uint, days int, kcal, weight, protein float64) {
	t.Helper()
	base := dayStartLocal(time.Now()).AddDate(0, 0, -(days - 1))
	for i := 0; i < days; i++ {
		rec := models.DailyRecord{
			UserID:   userID,
			Date:     base.AddDate(0, 0, i),
			Calories: kcal,
			WeightKg: weight,
			ProteinG: protein,
		}
		if err := db.Create(&rec).Error; err != nil {
			t.Fatalf("seed day %d: %v", i, err)
		}
	}
}

func TestInsightsTDEEFromSteadyLogs(t *testing.T) {
	db := testDB(t)
	u := seedUser(t, db, models.User{})
	seedIntake(t, db, u.ID, 14, 2000, 80, 0)

	ins, err := NewInsightService(db).Insights(context.Background(), u.ID)
	if err != nil {
		t.Fatalf("insights: %v", err)
	}
	if ins.TDEE == nil {
		t.Fatalf("no TDEE from 14 full days (notes: %v)", ins.Notes)
	}
	// steady intake, steady weight: maintenance equals intake
	if ins.TDEE.EstimatedKcal != 2000 {
		t.Fatalf("estimated = %d, want 2000", ins.TDEE.EstimatedKcal)
	}
	if ins.TDEE.BaseKcal != 2251 || ins.TDEE.DaysUsed != 14 {
		t.Fatalf("base/days = %v/%d, want 2251/14", ins.TDEE.BaseKcal, ins.TDEE.DaysUsed)
	}
}

func TestInsightsTDEERisesWhileLosingWeight(t *testing.T) {
	db := testDB(t)
	u := seedUser(t, db, models.User{})

	// 2000 kcal a day while dropping 0.1 kg a day: maintenance must come
	// out above intake (2000 + 7700*0.7/7 = 2770)
	base := dayStartLocal(time.Now()).AddDate(0, 0, -13)
	for i := 0; i < 14; i++ {
		rec := models.DailyRecord{
			UserID:   u.ID,
			Date:     base.AddDate(0, 0, i),
			Calories: 2000,
			WeightKg: 80 - 0.1*float64(i),
		}
		if err := db.Create(&rec).Error; err != nil {
			t.Fatalf("seed day %d: %v", i, err)
		}
	}

	ins, err := NewInsightService(db).Insights(context.Background(), u.ID)
	if err != nil {
		t.Fatalf("insights: %v", err)
	}
	if ins.TDEE == nil {
		t.Fatal("no TDEE estimate")
	}
	if ins.TDEE.EstimatedKcal != 2770 {
		t.Fatalf("estimated = %d, want 2770", ins.TDEE.EstimatedKcal)
	}
}

func TestInsightsTDEEClampsToBaseline(t *testing.T) {
	db := testDB(t)
	u := seedUser(t, db, models.User{})
	seedIntake(t, db, u.ID, 14, 5000, 80, 0)

	ins, err := NewInsightService(db).Insights(context.Background(), u.ID)
	if err != nil {
		t.Fatalf("insights: %v", err)
	}
	if ins.TDEE == nil {
		t.Fatal("no TDEE estimate")
	}
	// raw back-solve says 5000; the band stops at 1.3 * 2251
	if ins.TDEE.EstimatedKcal != 2926 {
		t.Fatalf("estimated = %d, want clamp at 2926", ins.TDEE.EstimatedKcal)
	}
}

func TestInsightsThinHistoryGetsNotes(t *testing.T) {
	db := testDB(t)
	u := seedUser(t, db, models.User{})
	seedIntake(t, db, u.ID, 9, 2000, 80, 100)

	ins, err := NewInsightService(db).Insights(context.Background(), u.ID)
	if err != nil {
		t.Fatalf("insights: %v", err)
	}
	if ins.TDEE != nil {
		t.Fatal("TDEE estimated from 9 days")
	}
	found := false
	for _, n := range ins.Notes {
		if strings.Contains(n, "TDEE") {
			found = true
		}
	}
	if !found {
		t.Fatalf("no TDEE note in %v", ins.Notes)
	}
	// 9 intake days are still plenty for adherence
	if ins.Adherence == nil || ins.Adherence.DaysCounted != 9 {
		t.Fatalf("adherence = %+v", ins.Adherence)
	}
}

func TestInsightsEmptyHistory(t *testing.T) {
	db := testDB(t)
	u := seedUser(t, db, models.User{})

	ins, err := NewInsightService(db).Insights(context.Background(), u.ID)
	if err != nil {
		t.Fatalf("insights: %v", err)
	}
	if ins.TDEE != nil || ins.Adherence != nil {
		t.Fatalf("estimates from an empty history: %+v", ins)
	}
	if len(ins.Notes) != 2 {
		t.Fatalf("notes = %v, want one per missing section", ins.Notes)
	}
}

func TestInsightsAdherenceOnTargetAddsCalories(t *testing.T) {
	db := testDB(t)
	u := seedUser(t, db, models.User{})
	seedIntake(t, db, u.ID, 5, 2251, 0, 140)

	ins, err := NewInsightService(db).Insights(context.Background(), u.ID)
	if err != nil {
		t.Fatalf("insights: %v", err)
	}
	rep := ins.Adherence
	if rep == nil {
		t.Fatal("no adherence report")
	}
	if rep.KcalRate != 1 || rep.ProteinRate != 1 {
		t.Fatalf("rates = %v/%v, want 1/1", rep.KcalRate, rep.ProteinRate)
	}
	if rep.KcalAdjust != 100 || rep.SuggestedKcal != 2351 {
		t.Fatalf("adjust/suggested = %v/%v, want 100/2351", rep.KcalAdjust, rep.SuggestedKcal)
	}
}

func TestInsightsAdherenceOffTargetCutsCalories(t *testing.T) {
	db := testDB(t)
	u := seedUser(t, db, models.User{})
	seedIntake(t, db, u.ID, 5, 1500, 0, 0)

	ins, err := NewInsightService(db).Insights(context.Background(), u.ID)
	if err != nil {
		t.Fatalf("insights: %v", err)
	}
	rep := ins.Adherence
	if rep == nil {
		t.Fatal("no adherence report")
	}
	if rep.KcalRate != 0 || rep.ProteinRate != 0 {
		t.Fatalf("rates = %v/%v, want 0/0", rep.KcalRate, rep.ProteinRate)
	}
	if rep.KcalAdjust != -100 || rep.SuggestedKcal != 2151 {
		t.Fatalf("adjust/suggested = %v/%v, want -100/2151", rep.KcalAdjust, rep.SuggestedKcal)
	}
}

func TestInsightsAdherenceWindowIsTwoWeeks(t *testing.T) {
	db := testDB(t)
	u := seedUser(t, db, models.User{})

	// 6 old off-target days, then 14 on-target ones; only the window counts
	base := dayStartLocal(time.Now()).AddDate(0, 0, -19)
	for i := 0; i < 20; i++ {
		kcal := 2251.0
		if i < 6 {
			kcal = 1500
		}
		rec := models.DailyRecord{UserID: u.ID, Date: base.AddDate(0, 0, i), Calories: kcal}
		if err := db.Create(&rec).Error; err != nil {
			t.Fatalf("seed day %d: %v", i, err)
		}
	}

	ins, err := NewInsightService(db).Insights(context.Background(), u.ID)
	if err != nil {
		t.Fatalf("insights: %v", err)
	}
	rep := ins.Adherence
	if rep == nil || rep.DaysCounted != 14 {
		t.Fatalf("adherence = %+v, want 14 days counted", rep)
	}
	if rep.KcalRate != 1 {
		t.Fatalf("kcal rate = %v, old days leaked into the window", rep.KcalRate)
	}
}

func TestInsightsSuggestedKcalNeverBelowFloor(t *testing.T) {
	db := testDB(t)
	// a deliberately tiny profile so goal calories land near the floor
	u := seedUser(t, db, models.User{WeightKg: 10, HeightCm: 50, ActivityLevel: "sedentary"})
	seedIntake(t, db, u.ID, 3, 345, 0, 22)

	ins, err := NewInsightService(db).Insights(context.Background(), u.ID)
	if err != nil {
		t.Fatalf("insights: %v", err)
	}
	rep := ins.Adherence
	if rep == nil {
		t.Fatal("no adherence report")
	}
	if rep.SuggestedKcal != 1000 {
		t.Fatalf("suggested = %v, want the 1000 floor", rep.SuggestedKcal)
	}
}

func TestInsightsUnknownUser(t *testing.T) {
	db := testDB(t)

	if _, err := NewInsightService(db).Insights(context.Background(), 404); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
