package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"healthylife/config"
	"healthylife/controllers"
	"healthylife/models"
	"healthylife/routes"
	"healthylife/services"
	"healthylife/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	slog.SetDefault(utils.NewLogger(cfg.LogLevel, cfg.LogFormat))
	if os.Getenv("JWT_SECRET") == "" {
		slog.Warn("JWT_SECRET is not set; authenticated routes will refuse requests")
	}

	config.InitDB(cfg)

	cache := services.NewCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.CacheTTL)
	services.InitSuggestionCache(cache)

	hub := services.NewRealtimeHub()
	services.InitAlertDeps(config.DB, hub)

	catalog := services.NewCatalogService(config.DB)
	seedCatalog(catalog, cfg.FoodCatalogCSV)

	food := controllers.NewFoodController(catalog, services.NewSuggestionService(config.DB), cfg.FoodCatalogCSV)
	charts := controllers.NewChartController(services.NewChartService(config.DB))
	insights := controllers.NewInsightController(services.NewInsightService(config.DB))
	rt := controllers.NewRealtimeController(hub)

	workerCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()
	if cfg.RemindersEnabled {
		if err := utils.InitMailer(workerCtx); err != nil {
			slog.Warn("mailer unavailable, reminders degrade to in-app alerts", "error", err)
		}
		go services.NewReminderWorker(cfg.ReminderHour).Run(workerCtx)
	}

	r := routes.SetupRouter(food, charts, insights, rt)
	srv := &http.Server{Addr: ":" + cfg.ServerPort, Handler: r}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	slog.Info("listening", "addr", srv.Addr, "db", cfg.DBDriver)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	case <-sigCh:
		stopWorkers()
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}
	slog.Info("stopped")
}

// seedCatalog imports the CSV once: a non-empty foods table means a
// previous boot (or an operator) already loaded it.
func seedCatalog(catalog *services.CatalogService, path string) {
	if path == "" {
		return
	}

	var n int64
	if err := config.DB.Model(&models.FoodItem{}).Count(&n).Error; err != nil {
		slog.Warn("catalog seed skipped", "error", err)
		return
	}
	if n > 0 {
		return
	}

	res, err := catalog.ImportFile(path)
	if err != nil {
		slog.Warn("catalog seed failed", "path", path, "error", err)
		return
	}
	slog.Info("catalog seeded", "path", path, "kept", res.RowsKept, "dropped", res.RowsDropped)
}
