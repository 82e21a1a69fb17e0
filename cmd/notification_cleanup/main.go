// Command notification_cleanup deletes old notifications that need no further
// attention: read ones and failed ones past the retention window.
package main

import (
	"context"
	"flag"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"spacebook/internal/config"
	"spacebook/internal/database"
	"spacebook/internal/domain"
	"spacebook/internal/pkg/logger"
	"spacebook/internal/repository"
)

func main() {
	retention := flag.Duration("retention", 30*24*time.Hour, "delete notifications older than this")
	flag.Parse()

	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	log := logger.Must(cfg.AppEnv, cfg.LogLevel).Named("notification_cleanup")
	defer func() { _ = log.Sync() }()

	db, err := database.Connect(cfg.DatabaseURL, database.PoolOptions{}, log)
	if err != nil {
		log.Fatal("db connect failed", zap.Error(err))
	}
	defer func() { _ = database.Close(db) }()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	cutoff := time.Now().Add(-*retention)
	n, err := repository.NewNotificationRepository(db).PurgeBefore(ctx, cutoff, domain.NotificationRead, domain.NotificationFailed)
	if err != nil {
		log.Fatal("cleanup notifications failed", zap.Error(err))
	}
	log.Info("notification cleanup completed", zap.Int64("deleted", n), zap.Time("cutoff", cutoff))
}
