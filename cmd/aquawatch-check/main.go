package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"aquawatch/common/database"
	"aquawatch/internal/config"
	"aquawatch/internal/repository"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	limit := flag.Int("limit", 20, "rows per section")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := database.NewPostgresDB(ctx, &cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	repo := repository.NewPostgresReadingsRepository(db, zap.NewNop())

	// 1. latest readings
	readings, err := repo.GetReadings(ctx, *limit)
	if err != nil {
		log.Fatalf("Failed to query readings: %v", err)
	}

	// 2. alert-eligible readings
	alerts, err := repo.GetAlerts(ctx, *limit)
	if err != nil {
		log.Fatalf("Failed to query alerts: %v", err)
	}

	printReport(os.Stdout, readings, alerts)
}
