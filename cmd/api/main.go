package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"spacebook/internal/app"
	"spacebook/internal/config"
	"spacebook/internal/database"
	"spacebook/internal/events"
	"spacebook/internal/middleware"
	"spacebook/internal/modules/notification"
	"spacebook/internal/modules/payment"
	"spacebook/internal/pkg/cache"
	"spacebook/internal/pkg/jwt"
	"spacebook/internal/pkg/logger"
	"spacebook/internal/pkg/obs"
	"spacebook/internal/pkg/response"
	"spacebook/internal/repository"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.Must(cfg.AppEnv, cfg.LogLevel)
	defer func() { _ = log.Sync() }()
	zap.ReplaceGlobals(log)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	response.ExposeDetails(cfg.IsDev())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := obs.InitTracer(ctx, cfg.OTELServiceName, cfg.AppEnv, cfg.OTELEndpoint)
	if err != nil {
		log.Fatal("tracer init failed", zap.Error(err))
	}

	db, err := database.Connect(cfg.DatabaseURL, database.PoolOptions{
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
	}, log)
	if err != nil {
		log.Fatal("database connect failed", zap.Error(err))
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal("migration failed", zap.Error(err))
	}
	store := repository.NewStore(db)

	availabilityCache, err := cache.Connect(ctx, cache.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisCacheDB,
		Prefix:   "spacebook:",
	})
	if err != nil {
		log.Warn("redis unavailable, availability cache disabled", zap.Error(err))
		availabilityCache = nil
	}

	hub := notification.NewHub()
	dispatcher := app.NewDispatcher(ctx, cfg, store, hub, log)

	publisher, closeBus, err := newPublisher(cfg, dispatcher, store, log)
	if err != nil {
		log.Fatal("event bus init failed", zap.Error(err))
	}

	var gateway payment.Gateway = payment.NewFakeGateway()
	if cfg.StripeSecretKey != "" {
		gateway = payment.NewStripeGateway(cfg.StripeSecretKey)
	} else {
		log.Warn("STRIPE_SECRET_KEY not set, using the fake payment gateway")
	}

	jwtService := jwt.New(cfg.JWTSecret, cfg.JWTTTL)
	deps := app.Deps{
		Store:               store,
		Users:               store.Repos().Users,
		JWT:                 jwtService,
		Publisher:           publisher,
		Gateway:             gateway,
		Dispatcher:          dispatcher,
		Hub:                 hub,
		Cache:               availabilityCache,
		Log:                 log,
		CacheTTL:            cfg.AvailabilityCacheTTL,
		DailyThresholdHours: cfg.PricingDailyThresholdHours,
		Currency:            cfg.StripeCurrency,
		AllowedOrigins:      cfg.AllowedOrigins(),
	}

	limiter := middleware.NewRateLimiter(cfg.RateLimitPerMin, cfg.RateLimitBurst, log)
	go sweepVisitors(ctx, limiter)

	router := app.NewRouter(app.NewHandlers(app.NewServices(deps), deps), app.RouterOptions{
		JWT:            jwtService,
		Log:            log,
		AllowedOrigins: cfg.AllowedOrigins(),
		RequestTimeout: cfg.RequestTimeout,
		RateLimiter:    limiter,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.AppEnv), zap.String("event_bus", cfg.EventBus))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}
	hub.Close()
	if err := closeBus(); err != nil {
		log.Warn("event bus close failed", zap.Error(err))
	}
	if err := availabilityCache.Close(); err != nil {
		log.Warn("cache close failed", zap.Error(err))
	}
	if err := database.Close(db); err != nil {
		log.Warn("database close failed", zap.Error(err))
	}
	if err := shutdownTracer(shutdownCtx); err != nil {
		log.Warn("tracer shutdown failed", zap.Error(err))
	}
	log.Info("server exited")
}

// newPublisher picks the event transport. The in-memory bus delivers to the
// notification subscriber in this process; the brokers leave that to
// cmd/notifier.
func newPublisher(cfg *config.Config, d *notification.Dispatcher, store *repository.GormStore, log *zap.Logger) (events.Publisher, func() error, error) {
	switch cfg.EventBus {
	case "rabbitmq":
		p, err := events.NewRabbitPublisher(cfg.RabbitMQURL, cfg.RabbitMQExchange)
		if err != nil {
			return nil, nil, err
		}
		return p, p.Close, nil
	case "asynq":
		p := events.NewAsynqPublisher(asynq.RedisClientOpt{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisQueueDB,
		}, events.DefaultQueue)
		return p, p.Close, nil
	default:
		bus := events.NewMemoryBus(log.Named("bus"), 256, 4)
		bus.Subscribe(notification.NewSubscriber(d, store.Repos().Users, log.Named("subscriber")).Handle)
		return bus, bus.Close, nil
	}
}

func sweepVisitors(ctx context.Context, rl *middleware.RateLimiter) {
	t := time.NewTicker(5 * time.Minute)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			rl.Sweep(10 * time.Minute)
		}
	}
}
