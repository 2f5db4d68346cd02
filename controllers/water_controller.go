package controllers

import (
	"net/http"
	"time"

	"healthylife/services"
	"healthylife/utils"

	"github.com/gin-gonic/gin"
)

type WaterBody struct {
	Date     string  `json:"date"` // YYYY-MM-DD, defaults to today
	AmountMl float64 `json:"amount_ml"`
	AmountOz float64 `json:"amount_oz"` // used when amount_ml is absent
}

func (b *WaterBody) ml() float64 {
	if b.AmountMl == 0 && b.AmountOz != 0 {
		return utils.OuncesToMl(b.AmountOz)
	}
	return b.AmountMl
}

func (b *WaterBody) day() (time.Time, error) {
	if b.Date == "" {
		return time.Now(), nil
	}
	return parseDay(b.Date)
}

// POST /water/add
func AddWater(c *gin.Context) {
	userID, ok := userIDFromCtx(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var body WaterBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	date, err := body.day()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date, use YYYY-MM-DD"})
		return
	}

	total, err := services.AddWater(userID, date, body.ml())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"date": date.Format("2006-01-02"), "total_ml": total})
}

// PUT /water
func SetWater(c *gin.Context) {
	userID, ok := userIDFromCtx(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var body WaterBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	date, err := body.day()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date, use YYYY-MM-DD"})
		return
	}

	total, err := services.SetWater(userID, date, body.ml())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"date": date.Format("2006-01-02"), "total_ml": total})
}

// GET /water?date=
func GetWater(c *gin.Context) {
	userID, ok := userIDFromCtx(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	date, err := parseDay(c.DefaultQuery("date", time.Now().Format("2006-01-02")))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date, use YYYY-MM-DD"})
		return
	}

	total, err := services.GetWater(userID, date)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"date":     date.Format("2006-01-02"),
		"total_ml": total,
		"total_oz": utils.MlToOunces(total),
	})
}

// GET /water/history?from=&to=
func WaterHistory(c *gin.Context) {
	userID, ok := userIDFromCtx(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	now := time.Now()
	from, err := parseDay(c.DefaultQuery("from", now.AddDate(0, 0, -29).Format("2006-01-02")))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid from date"})
		return
	}
	to, err := parseDay(c.DefaultQuery("to", now.Format("2006-01-02")))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid to date"})
		return
	}

	logs, err := services.ListWaterLogs(userID, from, to)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, logs)
}

// DELETE /water/:date wipes the day's log, today's or a past one.
func DeleteWaterDay(c *gin.Context) {
	userID, ok := userIDFromCtx(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	date, err := parseDay(c.Param("date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date, use YYYY-MM-DD"})
		return
	}

	if err := services.DeleteWaterDay(userID, date); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GET /water/quick-adds
func WaterQuickAdds(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"ml": services.WaterQuickAddsMl,
		"oz": services.WaterQuickAddsOz,
	})
}
