package services

import (
	"context"
	"testing"
	"time"

	"healthylife/models"
)

func TestNewReminderWorkerClampsHour(t *testing.T) {
	cases := []struct{ in, want int }{
		{-1, 20}, {24, 20}, {0, 0}, {8, 8}, {23, 23},
	}
	for _, c := range cases {
		if w := NewReminderWorker(c.in); w.hour != c.want {
			t.Errorf("hour %d clamped to %d, want %d", c.in, w.hour, c.want)
		}
	}
}

func TestNextRun(t *testing.T) {
	w := NewReminderWorker(20)

	day := func(d, h, m int) time.Time {
		return time.Date(2026, 3, d, h, m, 0, 0, time.UTC)
	}

	cases := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{"morning waits for tonight", day(10, 7, 30), day(10, 20, 0)},
		{"evening rolls to tomorrow", day(10, 21, 0), day(11, 20, 0)},
		{"on the hour rolls over", day(10, 20, 0), day(11, 20, 0)},
	}
	for _, c := range cases {
		if got := w.nextRun(c.now); !got.Equal(c.want) {
			t.Errorf("%s: nextRun = %v, want %v", c.name, got, c.want)
		}
	}
}

func TestBuildSummary(t *testing.T) {
	db := testDB(t)
	u := seedUser(t, db, models.User{WeightKg: 70})

	now := time.Now()
	yesterday := now.AddDate(0, 0, -1)
	if _, err := UpsertDailyRecord(u.ID, yesterday, RecordInput{Calories: 1500, ProteinG: 80}); err != nil {
		t.Fatalf("record: %v", err)
	}
	if _, err := AddWater(u.ID, yesterday, 500); err != nil {
		t.Fatalf("water: %v", err)
	}
	// today's half-finished log must not show up in the nudge
	if _, err := UpsertDailyRecord(u.ID, now, RecordInput{Calories: 400}); err != nil {
		t.Fatalf("record today: %v", err)
	}

	got := NewReminderWorker(20).buildSummary(u, now)
	want := "Yesterday you logged 1500 of 2251 kcal, 80 of 140 g protein and 500 of 2100 ml water."
	if got != want {
		t.Fatalf("summary = %q\nwant      %q", got, want)
	}
}

func TestSendAllNudgesOnlyOptedInUsers(t *testing.T) {
	db := testDB(t)
	optIn := seedUser(t, db, models.User{Email: "in@example.com"})
	optOut := seedUser(t, db, models.User{Email: "out@example.com"})

	for _, s := range []models.UserSettings{
		{UserID: optIn.ID, UnitSystem: "metric", NudgeOptIn: true},
		{UserID: optOut.ID, UnitSystem: "metric", NudgeOptIn: false},
	} {
		if err := db.Create(&s).Error; err != nil {
			t.Fatalf("seed settings: %v", err)
		}
	}

	// no mailer initialised: emails fail softly, the in-app nudge still lands
	NewReminderWorker(20).sendAll(context.Background())

	var alerts []models.Alert
	if err := db.Find(&alerts).Error; err != nil {
		t.Fatalf("list alerts: %v", err)
	}
	if len(alerts) != 1 {
		t.Fatalf("%d alerts, want exactly one for the opted-in user", len(alerts))
	}
	if alerts[0].UserID != optIn.ID || alerts[0].Type != "reminder" {
		t.Fatalf("alert = %+v", alerts[0])
	}
}
