package services

import (
	"errors"
	"testing"
	"time"

	"healthylife/models"
)

func TestUpsertDailyRecordKeepsOneRowPerDay(t *testing.T) {
	db := testDB(t)
	u := seedUser(t, db, models.User{})
	day := time.Date(2026, 3, 14, 15, 30, 0, 0, time.Local) // mid-afternoon on purpose

	first, err := UpsertDailyRecord(u.ID, day, RecordInput{Calories: 1800, ProteinG: 120})
	if err != nil {
		t.Fatalf("first upsert: %v", err)
	}

	// same calendar day, different clock time
	later := time.Date(2026, 3, 14, 23, 59, 0, 0, time.Local)
	second, err := UpsertDailyRecord(u.ID, later, RecordInput{Calories: 2100, ProteinG: 90})
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("second write created row %d, want update of row %d", second.ID, first.ID)
	}

	var n int64
	if err := db.Model(&models.DailyRecord{}).Where("user_id = ?", u.ID).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Fatalf("rows for the day = %d, want 1", n)
	}

	got, err := FindDailyRecord(u.ID, day)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if got.Calories != 2100 || got.ProteinG != 90 {
		t.Fatalf("record = %v/%v, want 2100/90", got.Calories, got.ProteinG)
	}
}

func TestUpsertDailyRecordZerosOverwrite(t *testing.T) {
	db := testDB(t)
	u := seedUser(t, db, models.User{})
	day := time.Date(2026, 3, 14, 0, 0, 0, 0, time.Local)

	if _, err := UpsertDailyRecord(u.ID, day, RecordInput{Calories: 1800, Steps: 9000}); err != nil {
		t.Fatalf("seed upsert: %v", err)
	}
	// correcting a fat-fingered entry back to zero must stick
	if _, err := UpsertDailyRecord(u.ID, day, RecordInput{}); err != nil {
		t.Fatalf("zero upsert: %v", err)
	}

	got, err := FindDailyRecord(u.ID, day)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if got.Calories != 0 || got.Steps != 0 {
		t.Fatalf("zeros did not overwrite: %v kcal, %v steps", got.Calories, got.Steps)
	}
}

func TestUpsertDailyRecordDistinctDates(t *testing.T) {
	db := testDB(t)
	u := seedUser(t, db, models.User{})

	for d := 1; d <= 3; d++ {
		day := time.Date(2026, 3, d, 12, 0, 0, 0, time.Local)
		if _, err := UpsertDailyRecord(u.ID, day, RecordInput{Calories: float64(1000 + d)}); err != nil {
			t.Fatalf("upsert day %d: %v", d, err)
		}
	}

	recs, err := ListDailyRecords(u.ID,
		time.Date(2026, 3, 1, 0, 0, 0, 0, time.Local),
		time.Date(2026, 3, 31, 0, 0, 0, 0, time.Local))
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(recs) != 3 {
		t.Fatalf("records = %d, want 3", len(recs))
	}
	// date ascending
	for i := 1; i < len(recs); i++ {
		if !recs[i-1].Date.Before(recs[i].Date) {
			t.Fatalf("records out of order: %v then %v", recs[i-1].Date, recs[i].Date)
		}
	}
}

func TestUpsertDailyRecordValidation(t *testing.T) {
	db := testDB(t)
	u := seedUser(t, db, models.User{})
	day := time.Now()

	cases := []struct {
		name string
		in   RecordInput
	}{
		{"negative calories", RecordInput{Calories: -1}},
		{"negative protein", RecordInput{ProteinG: -0.1}},
		{"negative steps", RecordInput{Steps: -5}},
		{"weight beyond range", RecordInput{WeightKg: 750}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := UpsertDailyRecord(u.ID, day, tc.in)
			if !errors.Is(err, ErrInvalid) {
				t.Fatalf("err = %v, want ErrInvalid", err)
			}
		})
	}

	var n int64
	db.Model(&models.DailyRecord{}).Where("user_id = ?", u.ID).Count(&n)
	if n != 0 {
		t.Fatalf("invalid input created %d rows", n)
	}
}

func TestFindDailyRecordNotFound(t *testing.T) {
	db := testDB(t)
	u := seedUser(t, db, models.User{})

	_, err := FindDailyRecord(u.ID, time.Now())
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestDeleteDailyRecordFreesTheDay(t *testing.T) {
	db := testDB(t)
	u := seedUser(t, db, models.User{})
	day := time.Date(2026, 3, 14, 0, 0, 0, 0, time.Local)

	if _, err := UpsertDailyRecord(u.ID, day, RecordInput{Calories: 1500}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := DeleteDailyRecord(u.ID, day); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := FindDailyRecord(u.ID, day); !errors.Is(err, ErrNotFound) {
		t.Fatalf("after delete err = %v, want ErrNotFound", err)
	}
	if err := DeleteDailyRecord(u.ID, day); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second delete err = %v, want ErrNotFound", err)
	}

	// the (user, date) slot must be reusable after a delete
	if _, err := UpsertDailyRecord(u.ID, day, RecordInput{Calories: 1600}); err != nil {
		t.Fatalf("re-log after delete: %v", err)
	}
}

func TestCalorieGoalAlertFiresOnceOnCross(t *testing.T) {
	db := testDB(t)
	u := seedUser(t, db, models.User{}) // default profile, goal 2251 kcal
	day := time.Now()

	if _, err := UpsertDailyRecord(u.ID, day, RecordInput{Calories: 2000}); err != nil {
		t.Fatalf("below goal: %v", err)
	}
	if _, err := UpsertDailyRecord(u.ID, day, RecordInput{Calories: 2300}); err != nil {
		t.Fatalf("crossing goal: %v", err)
	}
	if _, err := UpsertDailyRecord(u.ID, day, RecordInput{Calories: 2400}); err != nil {
		t.Fatalf("already above goal: %v", err)
	}

	var n int64
	db.Model(&models.Alert{}).Where("user_id = ? AND type = ?", u.ID, "success").Count(&n)
	if n != 1 {
		t.Fatalf("success alerts = %d, want exactly 1", n)
	}
}
