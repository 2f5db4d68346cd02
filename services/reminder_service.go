package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"healthylife/config"
	"healthylife/models"
	"healthylife/utils"
)

// ReminderWorker emails an evening summary to users who opted in. One
// pass per day at the configured local hour; the mailer must have been
// initialised or every send fails softly.
type ReminderWorker struct {
	hour int
}

func NewReminderWorker(hour int) *ReminderWorker {
	if hour < 0 || hour > 23 {
		hour = 20
	}
	return &ReminderWorker{hour: hour}
}

// Run blocks until ctx is cancelled; start it in its own goroutine.
func (w *ReminderWorker) Run(ctx context.Context) {
	for {
		next := w.nextRun(time.Now())
		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
			w.sendAll(ctx)
		}
	}
}

func (w *ReminderWorker) nextRun(now time.Time) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), w.hour, 0, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

func (w *ReminderWorker) sendAll(ctx context.Context) {
	var users []models.User
	if err := config.DB.
		Joins("JOIN user_settings ON user_settings.user_id = users.id").
		Where("user_settings.nudge_opt_in = ?", true).
		Find(&users).Error; err != nil {
		slog.Error("reminder query failed", "err", err)
		return
	}

	now := time.Now()
	sent := 0
	for i := range users {
		if ctx.Err() != nil {
			return
		}
		u := &users[i]

		// the in-app nudge always lands; email is best effort on top
		summary := w.buildSummary(u, now)
		EmitAlert(u.ID, "reminder", summary)

		if err := utils.SendDailySummaryEmail(ctx, u.Email, u.Name, summary); err != nil {
			slog.Warn("daily summary email not sent", "user", u.ID, "err", err)
			continue
		}
		sent++
	}
	slog.Info("reminder pass done", "opted_in", len(users), "emailed", sent)
}

// buildSummary renders the nudge for a pass running at now: the previous
// day's intake against the current goals.
func (w *ReminderWorker) buildSummary(u *models.User, now time.Time) string {
	goals := AutoGoals(u)
	day := now.AddDate(0, 0, -1)
	rec, _ := GetDailyRecord(u.ID, day)
	water, _ := GetWater(u.ID, day)

	return fmt.Sprintf(
		"Yesterday you logged %.0f of %.0f kcal, %.0f of %.0f g protein and %.0f of %.0f ml water.",
		rec.Calories, goals.Calories, rec.ProteinG, goals.ProteinG, water, goals.WaterMl,
	)
}
