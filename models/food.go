package models

import "gorm.io/gorm"

// FoodItem is one catalog entry: calories and macros per serving.
type FoodItem struct {
	gorm.Model
	Name     string  `gorm:"type:varchar(255);uniqueIndex;not null"`
	Kcal     float64 `gorm:"not null"`
	ProteinG float64
	CarbsG   float64
	FatG     float64
}

// CatalogImport records one CSV load: where the rows came from and how
// many survived cleaning, so a bad export is diagnosable after the fact.
type CatalogImport struct {
	gorm.Model
	BatchID       string `gorm:"type:varchar(36);uniqueIndex;not null"`
	Source        string
	RowsIn        int
	RowsKept      int
	RowsDropped   int
	ColumnsMapped string `gorm:"type:text"` // "field=original header" pairs, comma separated
}
