// controllers/chart_controller.go
package controllers

import (
	"net/http"
	"strconv"
	"time"

	"healthylife/services"

	"github.com/gin-gonic/gin"
)

type ChartController struct {
	Svc *services.ChartService
}

func NewChartController(svc *services.ChartService) *ChartController {
	return &ChartController{Svc: svc}
}

func (h *ChartController) GetChartSummary(c *gin.Context) {
	userID, ok := userIDFromCtx(c)
	if !ok { c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"}); return }

	now := time.Now()
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	last := first.AddDate(0, 1, -1)

	fromStr := c.DefaultQuery("from", first.Format("2006-01-02"))
	toStr := c.DefaultQuery("to", last.Format("2006-01-02"))
	includeMissing := c.DefaultQuery("includeMissingDays", "false") == "true"

	from, err := parseDay(fromStr)
	if err != nil { c.JSON(400, gin.H{"error": "invalid from date"}); return }
	to, err := parseDay(toStr)
	if err != nil { c.JSON(400, gin.H{"error": "invalid to date"}); return }
	if to.Before(from) { c.JSON(400, gin.H{"error": "`to` must be on/after `from`"}); return }

	out, err := h.Svc.Summary(c.Request.Context(), userID, from, to, includeMissing)
	if err != nil { fail(c, err); return }
	c.JSON(200, out)
}

func (h *ChartController) GetWeeklyOverview(c *gin.Context) {
	userID, ok := userIDFromCtx(c)
	if !ok { c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"}); return }

	now := time.Now()
	weekStart := startOfWeek(now)
	if v := c.Query("week_start"); v != "" {
		ws, err := parseDay(v)
		if err != nil { c.JSON(400, gin.H{"error": "invalid week_start"}); return }
		weekStart = startOfWeek(ws)
	}
	mode := c.DefaultQuery("mode", "detailed")

	out, err := h.Svc.Overview(c.Request.Context(), userID, weekStart, weekStart.AddDate(0, 0, 6), mode)
	if err != nil { fail(c, err); return }
	c.JSON(200, out)
}

func (h *ChartController) GetWeightSeries(c *gin.Context) {
	userID, ok := userIDFromCtx(c)
	if !ok { c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"}); return }

	now := time.Now()
	from, err := parseDay(c.DefaultQuery("from", now.AddDate(0, 0, -89).Format("2006-01-02")))
	if err != nil { c.JSON(400, gin.H{"error": "invalid from date"}); return }
	to, err := parseDay(c.DefaultQuery("to", now.Format("2006-01-02")))
	if err != nil { c.JSON(400, gin.H{"error": "invalid to date"}); return }

	out, err := h.Svc.WeightSeries(c.Request.Context(), userID, from, to)
	if err != nil { fail(c, err); return }
	c.JSON(200, gin.H{"points": out})
}

// GetMacroPie defaults to the mean of the last 7 logged records; ?date=
// narrows it to a single day's calorie split instead.
func (h *ChartController) GetMacroPie(c *gin.Context) {
	userID, ok := userIDFromCtx(c)
	if !ok { c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"}); return }

	if dateStr := c.Query("date"); dateStr != "" {
		date, err := parseDay(dateStr)
		if err != nil { c.JSON(400, gin.H{"error": "invalid date"}); return }

		out, err := h.Svc.MacroPie(c.Request.Context(), userID, date)
		if err != nil { fail(c, err); return }
		c.JSON(200, gin.H{"date": dateStr, "slices": out})
		return
	}

	n, _ := strconv.Atoi(c.DefaultQuery("last", "7"))
	out, used, err := h.Svc.MacroPieRecent(c.Request.Context(), userID, n)
	if err != nil { fail(c, err); return }
	c.JSON(200, gin.H{"records_used": used, "slices": out})
}

// GetWaterSeries returns the last ?days= days (default 7) against the
// goal line; explicit from/to win over days.
func (h *ChartController) GetWaterSeries(c *gin.Context) {
	userID, ok := userIDFromCtx(c)
	if !ok { c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"}); return }

	days, _ := strconv.Atoi(c.DefaultQuery("days", "7"))
	if days < 1 || days > 90 {
		c.JSON(400, gin.H{"error": "days must be 1..90"})
		return
	}

	now := time.Now()
	from, err := parseDay(c.DefaultQuery("from", now.AddDate(0, 0, -(days-1)).Format("2006-01-02")))
	if err != nil { c.JSON(400, gin.H{"error": "invalid from date"}); return }
	to, err := parseDay(c.DefaultQuery("to", now.Format("2006-01-02")))
	if err != nil { c.JSON(400, gin.H{"error": "invalid to date"}); return }

	out, err := h.Svc.WaterSeries(c.Request.Context(), userID, from, to)
	if err != nil { fail(c, err); return }
	c.JSON(200, gin.H{"points": out})
}

// --- helpers ---

func userIDFromCtx(c *gin.Context) (uint, bool) {
	v, ok := c.Get("userID")
	if !ok {
		return 0, false
	}
	switch id := v.(type) {
	case uint:
		return id, true
	case int:
		return uint(id), true
	case int64:
		return uint(id), true
	default:
		return 0, false
	}
}

func startOfWeek(t time.Time) time.Time {
	wd := int(t.Weekday())
	if wd == 0 {
		wd = 7
	}
	tt := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return tt.AddDate(0, 0, -(wd - 1)) // Monday
}
