package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/coopvine/coopvine-backend/pkg/logger"
	"github.com/coopvine/coopvine-backend/pkg/messaging"

	"github.com/coopvine/coopvine-backend/internal/config"
	"github.com/coopvine/coopvine-backend/internal/infrastructure/database"
	httpServer "github.com/coopvine/coopvine-backend/internal/infrastructure/http"
	"github.com/coopvine/coopvine-backend/internal/infrastructure/provider/payvault"
	"github.com/coopvine/coopvine-backend/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
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

	// Initialize database connection
	db, err := database.NewConnection(&cfg.Database, zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := database.Close(db, zapLogger); err != nil {
			zapLogger.Error("Failed to close database connection", zap.Error(err))
		}
	}()

	// Run database migrations
	if err := database.Migrate(db, zapLogger); err != nil {
		zapLogger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	// Initialize repositories
	repos := database.NewRepositories(db, zapLogger)

	// Notifications degrade to a no-op when Redis is unreachable; the
	// platform keeps working without them.
	notifier := usecase.NewNopNotifier()
	if cfg.Redis.Addr != "" {
		redisClient, err := messaging.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			zapLogger.Warn("Redis unavailable, notifications disabled", zap.Error(err))
		} else {
			defer redisClient.Close()
			notifier = usecase.NewRedisNotifier(redisClient, "coopvine.events", zapLogger)
		}
	}

	// Wallet provider client
	walletProvider := payvault.NewClient(&cfg.Service.PayVault, zapLogger)

	httpSrv := httpServer.NewServer(cfg, zapLogger, repos, walletProvider, notifier)

	go func() {
		if err := httpSrv.Start(); err != nil {
			zapLogger.Fatal("Failed to start HTTP server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	zapLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(ctx); err != nil {
		zapLogger.Error("Failed to shutdown HTTP server", zap.Error(err))
	}

	zapLogger.Info("Server shut down successfully")
}
