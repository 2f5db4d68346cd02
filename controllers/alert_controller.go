package controllers

import (
	"net/http"
	"strconv"

	"healthylife/services"

	"github.com/gin-gonic/gin"
)

// GET /alerts?unseen=true&limit=
func ListAlerts(c *gin.Context) {
	userID, ok := userIDFromCtx(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	unseenOnly := c.DefaultQuery("unseen", "false") == "true"
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	alerts, err := services.ListAlerts(userID, unseenOnly, limit)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, alerts)
}

// POST /alerts/seen  { "ids": [1,2] }; empty ids marks everything.
func MarkAlertsSeen(c *gin.Context) {
	userID, ok := userIDFromCtx(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var body struct {
		IDs []uint `json:"ids"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}

	if err := services.MarkAlertsSeen(userID, body.IDs); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "alerts marked seen"})
}
