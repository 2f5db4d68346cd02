package services

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"

	"healthylife/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Header aliases the importer accepts, compared case-insensitively after
// trimming. Exports from different trackers name the same column many
// ways; the first alias with a matching column wins.
var catalogAliases = map[string][]string{
	"name":      {"food", "name", "item"},
	"kcal":      {"kcal", "calories", "calorie", "calories (kcal)", "kcal/serving"},
	"protein_g": {"protein", "protein_g", "protein (g)", "prot(g)"},
	"carbs_g":   {"carb", "carbs", "carbohydrate", "carbohydrates", "carbs (g)"},
	"fat_g":     {"fat", "fat_g", "fat (g)"},
}

var numberRe = regexp.MustCompile(`-?\d+(?:\.\d+)?`)

// parseNumber digs the first decimal out of messy cells like "120 kcal",
// "1,234" or "80g". ok is false when the cell holds no number at all.
func parseNumber(s string) (float64, bool) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return 0, false
	}
	m := numberRe.FindString(s)
	if m == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

type CatalogService struct{ db *gorm.DB }

func NewCatalogService(db *gorm.DB) *CatalogService { return &CatalogService{db: db} }

// ImportResult reports per-batch diagnostics so a half-empty CSV is
// explainable after the fact.
type ImportResult struct {
	BatchID     string            `json:"batch_id"`
	RowsIn      int               `json:"rows_in"`
	RowsKept    int               `json:"rows_kept"`
	RowsDropped int               `json:"rows_dropped"`
	Columns     map[string]string `json:"columns_mapped"`
}

// ImportCSV reads a catalog export from r and upserts items by name.
// Rows without a usable kcal value are dropped; missing macros become 0.
func (s *CatalogService) ImportCSV(r io.Reader, source string) (*ImportResult, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: cannot read CSV header", ErrInvalid)
	}

	cols := mapColumns(header)
	if _, ok := cols["name"]; !ok {
		return nil, fmt.Errorf("%w: no name column found (tried %s)",
			ErrInvalid, strings.Join(catalogAliases["name"], ", "))
	}

	res := &ImportResult{
		BatchID: uuid.NewString(),
		Columns: make(map[string]string, len(cols)),
	}
	for std, idx := range cols {
		res.Columns[std] = header[idx]
	}

	cell := func(row []string, std string) string {
		idx, ok := cols[std]
		if !ok || idx >= len(row) {
			return ""
		}
		return row[idx]
	}

	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: malformed CSV row %d", ErrInvalid, res.RowsIn+2)
		}
		res.RowsIn++

		name := strings.TrimSpace(cell(row, "name"))
		kcal, kcalOK := parseNumber(cell(row, "kcal"))
		if name == "" || !kcalOK || kcal < 0 {
			res.RowsDropped++
			continue
		}

		protein, _ := parseNumber(cell(row, "protein_g"))
		carbs, _ := parseNumber(cell(row, "carbs_g"))
		fat, _ := parseNumber(cell(row, "fat_g"))

		item := models.FoodItem{Name: name}
		if err := s.db.
			Where("name = ?", name).
			Assign(map[string]interface{}{
				"kcal":      kcal,
				"protein_g": protein,
				"carbs_g":   carbs,
				"fat_g":     fat,
			}).
			FirstOrCreate(&item).Error; err != nil {
			return nil, err
		}
		res.RowsKept++
	}

	batch := models.CatalogImport{
		BatchID:       res.BatchID,
		Source:        source,
		RowsIn:        res.RowsIn,
		RowsKept:      res.RowsKept,
		RowsDropped:   res.RowsDropped,
		ColumnsMapped: flattenColumns(res.Columns),
	}
	if err := s.db.Create(&batch).Error; err != nil {
		return nil, err
	}

	if res.RowsKept > 0 {
		InvalidateSuggestions(context.Background(), 0)
	}
	return res, nil
}

// ImportFile runs ImportCSV against a file on disk, used for the startup
// seed and the import endpoint's path mode.
func (s *CatalogService) ImportFile(path string) (*ImportResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: cannot open %s", ErrInvalid, path)
	}
	defer f.Close()
	return s.ImportCSV(f, path)
}

func (s *CatalogService) ListFoods(search string, limit int) ([]models.FoodItem, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	q := s.db.Order("name ASC").Limit(limit)
	if search != "" {
		q = q.Where("name LIKE ?", "%"+search+"%")
	}

	var items []models.FoodItem
	err := q.Find(&items).Error
	return items, err
}

func (s *CatalogService) GetFood(id uint) (*models.FoodItem, error) {
	var item models.FoodItem
	if err := s.db.First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: food %d", ErrNotFound, id)
		}
		return nil, err
	}
	return &item, nil
}

// CreateFood adds a single manual entry. Name collisions are a 409, not
// an upsert: manual entries should not silently overwrite imports.
func (s *CatalogService) CreateFood(name string, kcal, protein, carbs, fat float64) (*models.FoodItem, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalid)
	}
	if kcal < 0 || protein < 0 || carbs < 0 || fat < 0 {
		return nil, fmt.Errorf("%w: nutrition values must not be negative", ErrInvalid)
	}

	var existing models.FoodItem
	err := s.db.Where("name = ?", name).First(&existing).Error
	if err == nil {
		return nil, fmt.Errorf("%w: food %q", ErrDuplicate, name)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	item := models.FoodItem{Name: name, Kcal: kcal, ProteinG: protein, CarbsG: carbs, FatG: fat}
	if err := s.db.Create(&item).Error; err != nil {
		return nil, err
	}
	InvalidateSuggestions(context.Background(), 0)
	return &item, nil
}

// DeleteFood hard-deletes so the unique name slot frees up for a future
// import or manual re-add.
func (s *CatalogService) DeleteFood(id uint) error {
	res := s.db.Unscoped().Delete(&models.FoodItem{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: food %d", ErrNotFound, id)
	}
	InvalidateSuggestions(context.Background(), 0)
	return nil
}

func (s *CatalogService) ListImports(limit int) ([]models.CatalogImport, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var batches []models.CatalogImport
	err := s.db.Order("created_at DESC").Limit(limit).Find(&batches).Error
	return batches, err
}

func mapColumns(header []string) map[string]int {
	lc := make([]string, len(header))
	for i, h := range header {
		lc[i] = strings.ToLower(strings.TrimSpace(h))
	}

	out := map[string]int{}
	for std, cands := range catalogAliases {
		for _, cand := range cands {
			for i, h := range lc {
				if h == cand {
					out[std] = i
					break
				}
			}
			if _, ok := out[std]; ok {
				break
			}
		}
	}
	return out
}

func flattenColumns(m map[string]string) string {
	parts := make([]string, 0, len(m))
	for _, std := range []string{"name", "kcal", "protein_g", "carbs_g", "fat_g"} {
		if orig, ok := m[std]; ok {
			parts = append(parts, std+"="+orig)
		}
	}
	return strings.Join(parts, ",")
}
