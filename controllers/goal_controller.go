package controllers

import (
	"net/http"
	"strconv"
	"time"

	"healthylife/services"

	"github.com/gin-gonic/gin"
)

// GET /goals?scenario=
func GetGoals(c *gin.Context) {
	userID, ok := userIDFromCtx(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	goals, progress, err := services.GetGoalsAndProgress(userID, time.Now())
	if err != nil {
		fail(c, err)
		return
	}

	resp := gin.H{"goals": goals, "progress": progress}

	// ?scenario= layers the named protein-first split over the computed
	// calories, without touching the stored profile.
	if scenario := c.Query("scenario"); scenario != "" {
		if !services.ValidFitnessGoal(scenario) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "scenario must be muscle_gain, fat_loss or maintenance"})
			return
		}
		user, err := services.FindUserByID(userID)
		if err != nil {
			fail(c, err)
			return
		}
		resp["scenario"] = scenario
		resp["scenario_macros"] = services.RecommendedMacros(user.WeightKg, goals.Calories, scenario)
	}

	c.JSON(http.StatusOK, resp)
}

// GET /goals/by-date?date=YYYY-MM-DD
func GetGoalsByDate(c *gin.Context) {
	userID, ok := userIDFromCtx(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	dateStr := c.Query("date")
	if dateStr == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing 'date' query param"})
		return
	}
	date, err := parseDay(dateStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date format. Use YYYY-MM-DD"})
		return
	}

	goals, progress, err := services.GetGoalsAndProgress(userID, date)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"date":     dateStr,
		"goals":    goals,
		"progress": progress,
	})
}

// GET /goals/macros?calories=&scenario=
//
// Splits a calorie budget into grams per macro for the user's weight.
// Defaults: the computed daily calorie target and the profile's fitness
// goal; both overridable per request.
func RecommendMacros(c *gin.Context) {
	userID, ok := userIDFromCtx(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	user, err := services.FindUserByID(userID)
	if err != nil {
		fail(c, err)
		return
	}

	goals := services.AutoGoals(user)
	kcal := goals.Calories
	if v := c.Query("calories"); v != "" {
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "calories must be a positive number"})
			return
		}
		kcal = parsed
	}

	scenario := c.DefaultQuery("scenario", user.FitnessGoal)
	if !services.ValidFitnessGoal(scenario) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "scenario must be muscle_gain, fat_loss or maintenance"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"calories": kcal,
		"scenario": scenario,
		"macros":   services.RecommendedMacros(user.WeightKg, kcal, scenario),
	})
}
