package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"healthylife/models"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// Config holds every tunable the app reads from the environment. A local
// .env file is honoured when present so `go run ./cmd` works out of
// the box.
type Config struct {
	ServerPort string `env:"PORT" envDefault:"8080"`

	// "sqlite" keeps everything in a single local file; "postgres"
	// composes a DSN from the DB_* variables below.
	DBDriver   string `env:"DB_DRIVER" envDefault:"sqlite"`
	DBPath     string `env:"DB_PATH" envDefault:"healthylife.db"`
	DBHost     string `env:"DB_HOST" envDefault:"localhost"`
	DBUser     string `env:"DB_USER"`
	DBPassword string `env:"DB_PASSWORD"`
	DBName     string `env:"DB_NAME" envDefault:"healthylife"`
	DBPort     string `env:"DB_PORT" envDefault:"5432"`

	// Optional CSV to seed the food catalog from on startup.
	FoodCatalogCSV string `env:"FOOD_CATALOG_CSV"`

	// Redis is optional; empty addr disables the suggestion cache.
	RedisAddr     string        `env:"REDIS_ADDR"`
	RedisPassword string        `env:"REDIS_PASSWORD"`
	RedisDB       int           `env:"REDIS_DB" envDefault:"0"`
	CacheTTL      time.Duration `env:"CACHE_TTL" envDefault:"10m"`

	// Daily summary emails via SES. Off unless explicitly enabled.
	RemindersEnabled bool `env:"REMINDERS_ENABLED" envDefault:"false"`
	ReminderHour     int  `env:"REMINDER_HOUR" envDefault:"20"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`
}

// Load reads the .env file (if any) and parses the environment.
func Load() (*Config, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("loading .env: %w", err)
		}
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	return cfg, nil
}

func InitDB(cfg *Config) {
	var (
		db  *gorm.DB
		err error
	)

	gormCfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)}

	switch cfg.DBDriver {
	case "postgres":
		dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
			cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort)
		db, err = gorm.Open(postgres.Open(dsn), gormCfg)
	case "sqlite":
		db, err = gorm.Open(sqlite.Open(cfg.DBPath), gormCfg)
	default:
		log.Fatalf("Unknown DB_DRIVER %q (want sqlite or postgres)", cfg.DBDriver)
	}
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

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
		log.Fatalf("AutoMigrate failed: %v", err)
	}

	DB = db
}
