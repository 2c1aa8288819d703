package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	billingapp "github.com/dormhub/backend/internal/application/billing"
	dormapp "github.com/dormhub/backend/internal/application/dormitory"
	meterapp "github.com/dormhub/backend/internal/application/metering"
	notifapp "github.com/dormhub/backend/internal/application/notification"
	tenancyapp "github.com/dormhub/backend/internal/application/tenancy"
	"github.com/dormhub/backend/internal/infrastructure/cache"
	"github.com/dormhub/backend/internal/infrastructure/config"
	"github.com/dormhub/backend/internal/infrastructure/event"
	"github.com/dormhub/backend/internal/infrastructure/logger"
	"github.com/dormhub/backend/internal/infrastructure/notification"
	"github.com/dormhub/backend/internal/infrastructure/persistence"
	"github.com/dormhub/backend/internal/infrastructure/scheduler"
	"github.com/dormhub/backend/internal/infrastructure/storage"
	"github.com/dormhub/backend/internal/infrastructure/telemetry"
	"github.com/dormhub/backend/internal/interfaces/http/handler"
	"github.com/dormhub/backend/internal/interfaces/http/middleware"
	"github.com/dormhub/backend/internal/interfaces/http/router"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load configuration: " + err.Error())
	}

	log := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	defer func() { _ = log.Sync() }()

	log.Info("starting dormhub backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tracer, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("failed to initialize tracing", zap.Error(err))
	}

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("error closing database", zap.Error(err))
		}
	}()
	log.Info("database connected")

	// Repositories and the transaction manager
	dormRepo := persistence.NewGormDormitoryRepository(db.DB)
	roomRepo := persistence.NewGormRoomRepository(db.DB)
	tenantRepo := persistence.NewGormTenantRepository(db.DB)
	billRepo := persistence.NewGormBillRepository(db.DB)
	readingRepo := persistence.NewGormMeterReadingRepository(db.DB)
	txManager := persistence.NewGormTransactionManager(db.DB)

	// Event bus with the chat notification subscriber
	bus := event.NewInMemoryEventBus(log)
	if err := bus.Start(ctx); err != nil {
		log.Fatal("failed to start event bus", zap.Error(err))
	}

	var notifier notifapp.Notifier = notification.NopNotifier{}
	if cfg.Notification.Enabled {
		webhookNotifier, err := notification.NewWebhookNotifier(&cfg.Notification, log)
		if err != nil {
			log.Fatal("failed to initialize webhook notifier", zap.Error(err))
		}
		notifier = webhookNotifier
	}
	bus.Subscribe(notifapp.NewEventNotificationHandler(notifier, log))

	// Evidence storage for payment slips
	var evidence billingapp.EvidenceStorage
	if cfg.Storage.Provider == "s3" {
		evidence, err = storage.NewS3EvidenceStorage(&cfg.Storage, log)
		if err != nil {
			log.Fatal("failed to initialize evidence storage", zap.Error(err))
		}
	} else {
		log.Warn("using in-memory evidence storage, payment slips will not survive restarts")
		evidence = storage.NewStubEvidenceStorage()
	}

	// Application services
	roomStatusService := dormapp.NewRoomStatusService(roomRepo, billRepo, bus, log)
	dormService := dormapp.NewDormitoryService(dormRepo, roomRepo, log)
	balanceService := billingapp.NewBalanceService(billRepo, tenantRepo, log)
	billingService := billingapp.NewBillingService(
		billRepo, roomRepo, dormRepo, tenantRepo,
		roomStatusService, balanceService, txManager, bus, log)
	paymentService := billingapp.NewPaymentService(
		billRepo, roomStatusService, balanceService, evidence, txManager, bus, log)
	tenantService := tenancyapp.NewTenantService(tenantRepo, roomStatusService, txManager, bus, log)
	meterService := meterapp.NewMeterService(readingRepo, tenantRepo, roomStatusService, txManager, bus, log)

	// Idempotency store for unsafe endpoints, Redis when configured
	idempotencyStore := newIdempotencyStore(cfg, log)
	defer func() {
		if err := idempotencyStore.Close(); err != nil {
			log.Error("error closing idempotency store", zap.Error(err))
		}
	}()

	// Daily overdue sweep
	sweepScheduler, err := scheduler.NewOverdueSweepScheduler(scheduler.Config{
		Enabled:    cfg.Scheduler.Enabled,
		Schedule:   cfg.Scheduler.SweepSchedule,
		JobTimeout: cfg.Scheduler.JobTimeout,
	}, billingService, log)
	if err != nil {
		log.Fatal("invalid sweep schedule", zap.Error(err))
	}
	if err := sweepScheduler.Start(ctx); err != nil {
		log.Fatal("failed to start sweep scheduler", zap.Error(err))
	}

	// HTTP layer
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		log.Fatal("invalid trusted proxies", zap.Error(err))
	}

	r := router.NewRouter(engine)
	r.Use(
		middleware.RequestID(log),
		logger.GinMiddleware(log),
		middleware.Recovery(log),
		middleware.CORS(middleware.CORSConfig{
			AllowOrigins: cfg.HTTP.CORSAllowOrigins,
			AllowMethods: cfg.HTTP.CORSAllowMethods,
			AllowHeaders: cfg.HTTP.CORSAllowHeaders,
		}),
		middleware.BodyLimit(cfg.HTTP.MaxBodySize),
		middleware.Tracing(cfg.Telemetry.Enabled),
		middleware.Idempotency(idempotencyStore, log),
	)
	r.Register(
		handler.NewSystemHandler(db),
		handler.NewDormitoryHandler(dormService, roomStatusService),
		handler.NewTenantHandler(tenantService, balanceService),
		handler.NewBillHandler(billingService),
		handler.NewPaymentHandler(paymentService),
		handler.NewMeterHandler(meterService),
	)
	r.Setup()

	server := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("http server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("http server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("http server shutdown failed", zap.Error(err))
	}
	sweepScheduler.Stop()
	if err := bus.Stop(shutdownCtx); err != nil {
		log.Error("event bus shutdown failed", zap.Error(err))
	}
	if err := tracer.Shutdown(shutdownCtx); err != nil {
		log.Error("tracer shutdown failed", zap.Error(err))
	}
	log.Info("shutdown complete")
}

// newIdempotencyStore prefers Redis so retried requests replay across
// instances; without Redis it degrades to a per-process store.
func newIdempotencyStore(cfg *config.Config, log *zap.Logger) cache.IdempotencyStore {
	if cfg.Redis.Host == "" {
		log.Warn("redis not configured, idempotency keys are per-process")
		return cache.NewInMemoryIdempotencyStore()
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	store, err := cache.NewRedisIdempotencyStore(client, "")
	if err != nil {
		log.Warn("redis unreachable, idempotency keys are per-process", zap.Error(err))
		return cache.NewInMemoryIdempotencyStore()
	}
	return store
}
