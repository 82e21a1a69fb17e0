// Command notifier consumes booking and payment events from the configured
// broker and delivers notifications for them.
package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"spacebook/internal/app"
	"spacebook/internal/config"
	"spacebook/internal/database"
	"spacebook/internal/events"
	"spacebook/internal/modules/notification"
	"spacebook/internal/pkg/logger"
	"spacebook/internal/repository"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	log := logger.Must(cfg.AppEnv, cfg.LogLevel).Named("notifier")
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(cfg.DatabaseURL, database.PoolOptions{
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
	}, log)
	if err != nil {
		log.Fatal("database connect failed", zap.Error(err))
	}
	defer func() { _ = database.Close(db) }()
	if err := database.Migrate(db); err != nil {
		log.Fatal("migration failed", zap.Error(err))
	}
	store := repository.NewStore(db)

	dispatcher := app.NewDispatcher(ctx, cfg, store, nil, log)
	sub := notification.NewSubscriber(dispatcher, store.Repos().Users, log)

	switch cfg.EventBus {
	case "rabbitmq":
		runRabbit(ctx, cfg, sub, log)
	case "asynq":
		runAsynq(ctx, cfg, sub, log)
	default:
		log.Fatal("notifier needs a broker; EVENT_BUS=memory delivers inside the api process")
	}
	log.Info("notifier stopped")
}

func runRabbit(ctx context.Context, cfg *config.Config, sub *notification.Subscriber, log *zap.Logger) {
	consumer, err := events.NewRabbitConsumer(cfg.RabbitMQURL, cfg.RabbitMQExchange, cfg.RabbitMQQueue, events.All, log)
	if err != nil {
		log.Fatal("rabbitmq consumer init failed", zap.Error(err))
	}
	defer func() { _ = consumer.Close() }()

	log.Info("consuming events", zap.String("queue", cfg.RabbitMQQueue))
	if err := consumer.Run(ctx, sub.Handle); err != nil {
		log.Error("consumer stopped", zap.Error(err))
	}
}

func runAsynq(ctx context.Context, cfg *config.Config, sub *notification.Subscriber, log *zap.Logger) {
	opt := asynq.RedisClientOpt{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisQueueDB,
	}
	srv := events.NewAsynqServer(opt, events.DefaultQueue, 8)
	if err := srv.Start(events.NewAsynqMux(sub.Handle, log)); err != nil {
		log.Fatal("asynq server start failed", zap.Error(err))
	}
	log.Info("consuming events", zap.String("queue", events.DefaultQueue))
	<-ctx.Done()
	srv.Shutdown()
}
