package services

import (
	"testing"

	"healthylife/config"
	"healthylife/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// testDB opens a fresh in-memory database, migrates the schema and points
// the package-level handles at it for the duration of one test.
func testDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql handle: %v", err)
	}
	// a second pooled connection would get its own empty :memory: db
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
		&models.User{},
		&models.UserSettings{},
		&models.DailyRecord{},
		&models.WaterLog{},
		&models.FoodItem{},
		&models.CatalogImport{},
		&models.Alert{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}

	prevDB, prevAlert := config.DB, _alert
	config.DB = db
	_alert = alertDeps{db: db}
	t.Cleanup(func() {
		config.DB = prevDB
		_alert = prevAlert
	})

	return db
}

func seedUser(t *testing.T, db *gorm.DB, u models.User) *models.User {
	t.Helper()
	if u.Email == "" {
		u.Email = "test@example.com"
	}
	if u.Password == "" {
		u.Password = "not-a-real-hash"
	}
	if err := db.Create(&u).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return &u
}
