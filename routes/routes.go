package routes

import (
	"net/http"

	"healthylife/controllers"
	"healthylife/middlewares"

	"github.com/gin-gonic/gin"
)

func SetupRouter(
	food *controllers.FoodController,
	charts *controllers.ChartController,
	insights *controllers.InsightController,
	rt *controllers.RealtimeController,
) *gin.Engine {
	r := gin.Default()

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Public auth routes
	auth := r.Group("/auth")
	{
		auth.POST("/register", controllers.Register)
		auth.POST("/login", controllers.Login)
	}

	// Protected user routes
	user := r.Group("/user")
	user.Use(middlewares.AuthMiddleware())
	{
		user.GET("/profile", controllers.GetProfile)
		user.PUT("/profile", controllers.UpdateProfile)
		user.GET("/settings", controllers.GetSettings)
		user.PUT("/settings", controllers.UpdateSettings)
		user.PUT("/password", controllers.ChangePassword)
		user.DELETE("", controllers.DeleteAccount)
	}

	records := r.Group("/records")
	records.Use(middlewares.AuthMiddleware())
	{
		records.POST("", controllers.UpsertRecord)
		records.GET("", controllers.ListRecords)
		records.GET("/:date", controllers.GetRecord)
		records.DELETE("/:date", controllers.DeleteRecord)
	}

	water := r.Group("/water")
	water.Use(middlewares.AuthMiddleware())
	{
		water.POST("/add", controllers.AddWater)
		water.PUT("", controllers.SetWater)
		water.GET("", controllers.GetWater)
		water.GET("/history", controllers.WaterHistory)
		water.GET("/quick-adds", controllers.WaterQuickAdds)
		water.DELETE("/:date", controllers.DeleteWaterDay)
	}

	goals := r.Group("/goals")
	goals.Use(middlewares.AuthMiddleware())
	{
		goals.GET("", controllers.GetGoals)
		goals.GET("/by-date", controllers.GetGoalsByDate)
		goals.GET("/macros", controllers.RecommendMacros)
	}

	foods := r.Group("/foods")
	foods.Use(middlewares.AuthMiddleware())
	{
		foods.GET("", food.ListFoods)
		foods.POST("", food.CreateFood)
		foods.GET("/:id", food.GetFood)
		foods.DELETE("/:id", food.DeleteFood)
	}

	catalog := r.Group("/catalog")
	catalog.Use(middlewares.AuthMiddleware())
	{
		catalog.POST("/import", food.ImportCatalog)
		catalog.GET("/imports", food.ListImports)
	}

	suggestions := r.Group("/suggestions")
	suggestions.Use(middlewares.AuthMiddleware())
	{
		suggestions.GET("", food.Suggestions)
	}

	chartGroup := r.Group("/charts")
	chartGroup.Use(middlewares.AuthMiddleware())
	{
		chartGroup.GET("/summary", charts.GetChartSummary)
		chartGroup.GET("/overview", charts.GetWeeklyOverview)
		chartGroup.GET("/weight", charts.GetWeightSeries)
		chartGroup.GET("/macros", charts.GetMacroPie)
		chartGroup.GET("/water", charts.GetWaterSeries)
	}

	insightGroup := r.Group("/insights")
	insightGroup.Use(middlewares.AuthMiddleware())
	{
		insightGroup.GET("", insights.GetInsights)
	}

	alerts := r.Group("/alerts")
	alerts.Use(middlewares.AuthMiddleware())
	{
		alerts.GET("", controllers.ListAlerts)
		alerts.POST("/seen", controllers.MarkAlertsSeen)
	}

	ws := r.Group("/ws")
	ws.Use(middlewares.AuthMiddleware())
	{
		ws.GET("/alerts", rt.AlertsWS)
	}

	return r
}
