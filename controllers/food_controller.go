package controllers

import (
	"net/http"
	"strconv"

	"healthylife/services"

	"github.com/gin-gonic/gin"
)

type FoodController struct {
	Catalog *services.CatalogService
	Suggest *services.SuggestionService

	// CatalogPath is the CSV the import endpoint re-reads. There is no
	// upload plumbing; swapping the file and re-importing is the refresh
	// path.
	CatalogPath string
}

func NewFoodController(catalog *services.CatalogService, suggest *services.SuggestionService, catalogPath string) *FoodController {
	return &FoodController{Catalog: catalog, Suggest: suggest, CatalogPath: catalogPath}
}

// GET /foods?q=&limit=
func (fc *FoodController) ListFoods(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))

	items, err := fc.Catalog.ListFoods(c.Query("q"), limit)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

// GET /foods/:id
func (fc *FoodController) GetFood(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	item, err := fc.Catalog.GetFood(id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

type FoodBody struct {
	Name     string  `json:"name" binding:"required"`
	Kcal     float64 `json:"kcal"`
	ProteinG float64 `json:"protein_g"`
	CarbsG   float64 `json:"carbs_g"`
	FatG     float64 `json:"fat_g"`
}

// POST /foods
func (fc *FoodController) CreateFood(c *gin.Context) {
	var body FoodBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	item, err := fc.Catalog.CreateFood(body.Name, body.Kcal, body.ProteinG, body.CarbsG, body.FatG)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

// DELETE /foods/:id
func (fc *FoodController) DeleteFood(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	if err := fc.Catalog.DeleteFood(id); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// POST /catalog/import re-reads the configured CSV and upserts it into
// the catalog.
func (fc *FoodController) ImportCatalog(c *gin.Context) {
	if fc.CatalogPath == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no catalog file configured, set FOOD_CATALOG_CSV"})
		return
	}

	res, err := fc.Catalog.ImportFile(fc.CatalogPath)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// GET /catalog/imports?limit=
func (fc *FoodController) ListImports(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	batches, err := fc.Catalog.ListImports(limit)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, batches)
}

// GET /suggestions?strategy=&meal_kcal=&top_n=
func (fc *FoodController) Suggestions(c *gin.Context) {
	userID, ok := userIDFromCtx(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	strategy := c.DefaultQuery("strategy", services.StrategyBalanced)
	mealKcal, _ := strconv.ParseFloat(c.DefaultQuery("meal_kcal", "0"), 64)
	topN, _ := strconv.Atoi(c.DefaultQuery("top_n", "0"))

	out, err := fc.Suggest.Suggest(c.Request.Context(), userID, strategy, mealKcal, topN)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"strategy": strategy, "suggestions": out})
}

func idParam(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	return uint(id), err
}
