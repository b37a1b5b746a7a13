package main

import (
	"context"
	"flag"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/coopvine/coopvine-backend/pkg/logger"

	"github.com/coopvine/coopvine-backend/internal/config"
	"github.com/coopvine/coopvine-backend/internal/infrastructure/database"
	"github.com/coopvine/coopvine-backend/internal/usecase"
)

// Generates the monthly contribution rows for one period. Safe to run
// more than once for the same period.
func main() {
	period := flag.String("period", time.Now().Format("2006-01"), "contribution period (YYYY-MM)")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zapLogger, err := logger.NewZapLogger(logger.Config{
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		Output:      cfg.Log.Output,
		Development: cfg.Log.Development,
	})
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zapLogger.Sync()

	db, err := database.NewConnection(&cfg.Database, zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := database.Close(db, zapLogger); err != nil {
			zapLogger.Error("Failed to close database connection", zap.Error(err))
		}
	}()

	if err := database.Migrate(db, zapLogger); err != nil {
		zapLogger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	repos := database.NewRepositories(db, zapLogger)

	contributionService := usecase.NewContributionService(
		repos.Cooperative, repos.Contribution, repos.Payment, nil, "", zapLogger)

	ctx := context.Background()

	created, err := contributionService.GenerateMonthly(ctx, *period)
	if err != nil {
		zapLogger.Fatal("Failed to generate contributions",
			zap.String("period", *period),
			zap.Error(err))
	}

	zapLogger.Info("Contribution generation completed",
		zap.String("period", *period),
		zap.Int64("created", created))
}
