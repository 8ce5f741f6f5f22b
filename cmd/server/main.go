package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	catalogapp "github.com/emstack/backend/internal/application/catalog"
	inventoryapp "github.com/emstack/backend/internal/application/inventory"
	mrpapp "github.com/emstack/backend/internal/application/mrp"
	productionapp "github.com/emstack/backend/internal/application/production"
	"github.com/emstack/backend/internal/infrastructure/cache"
	"github.com/emstack/backend/internal/infrastructure/config"
	"github.com/emstack/backend/internal/infrastructure/event"
	"github.com/emstack/backend/internal/infrastructure/logger"
	"github.com/emstack/backend/internal/infrastructure/persistence"
	"github.com/emstack/backend/internal/interfaces/http/handler"
	"github.com/emstack/backend/internal/interfaces/http/middleware"
	"github.com/emstack/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&cfg.Log)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting EMS Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Create GORM logger backed by zap
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))

	// Initialize database connection
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Initialize repositories
	materialRepo := persistence.NewGormMaterialRepository(db.DB)
	bomRepo := persistence.NewGormBomRepository(db.DB)
	ledgerRepo := persistence.NewGormLedgerRepository(db.DB)
	lotRepo := persistence.NewGormLotRepository(db.DB)
	allocationRepo := persistence.NewGormAllocationRepository(db.DB)
	cycleCountRepo := persistence.NewGormCycleCountRepository(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	poLineRepo := persistence.NewGormPurchaseOrderLineRepository(db.DB)

	// Transaction scopes
	inventoryTxScope := persistence.NewGormInventoryTransactionScope(db.DB)
	productionTxScope := persistence.NewGormProductionTransactionScope(db.DB)

	// Initialize application services
	materialService := catalogapp.NewMaterialService(materialRepo)
	ledgerService := inventoryapp.NewLedgerService(inventoryTxScope, ledgerRepo)
	lotService := inventoryapp.NewLotService(inventoryTxScope, lotRepo)
	allocationService := inventoryapp.NewAllocationService(inventoryTxScope, allocationRepo)
	cycleCountService := inventoryapp.NewCycleCountService(inventoryTxScope, cycleCountRepo)
	orderService := productionapp.NewOrderService(productionTxScope, orderRepo)
	fulfillmentService := productionapp.NewFulfillmentService(productionTxScope, bomRepo)
	shortageService := mrpapp.NewShortageService(orderRepo, bomRepo, ledgerRepo, poLineRepo)

	// Shortage report cache
	if cfg.Shortage.CacheEnabled {
		reportCache, err := cache.NewRedisReportCache(&cfg.Redis)
		if err != nil {
			log.Warn("Redis unavailable, using in-memory shortage report cache", zap.Error(err))
			shortageService.SetCache(cache.NewInMemoryReportCache(), cfg.Shortage.CacheTTL)
		} else {
			shortageService.SetCache(reportCache, cfg.Shortage.CacheTTL)
			log.Info("Shortage report cache enabled",
				zap.String("backend", "redis"),
				zap.Duration("ttl", cfg.Shortage.CacheTTL),
			)
		}
	}

	// Initialize event bus and handlers
	eventBus := event.NewInMemoryEventBus(log)

	shortageInvalidationHandler := mrpapp.NewShortageInvalidationHandler(shortageService, log)
	eventBus.Subscribe(shortageInvalidationHandler, shortageInvalidationHandler.EventTypes()...)
	log.Info("Event handlers registered",
		zap.Strings("shortage_invalidation_events", shortageInvalidationHandler.EventTypes()),
	)

	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	// Inject event bus into services that publish events
	ledgerService.SetEventPublisher(eventBus)
	lotService.SetEventPublisher(eventBus)
	allocationService.SetEventPublisher(eventBus)
	cycleCountService.SetEventPublisher(eventBus)
	fulfillmentService.SetEventPublisher(eventBus)

	// Background sweep marking lots past their expiration date
	sweepCtx, cancelSweep := context.WithCancel(context.Background())
	defer cancelSweep()
	if cfg.Lot.ExpirySweepEnabled {
		go runExpirySweep(sweepCtx, lotService, cfg.Lot.ExpirySweepInterval, log)
		log.Info("Lot expiry sweep started", zap.Duration("interval", cfg.Lot.ExpirySweepInterval))
	}

	// Initialize HTTP handlers
	materialHandler := handler.NewMaterialHandler(materialService)
	ledgerHandler := handler.NewLedgerHandler(ledgerService)
	lotHandler := handler.NewLotHandler(lotService)
	allocationHandler := handler.NewAllocationHandler(allocationService)
	cycleCountHandler := handler.NewCycleCountHandler(cycleCountService)
	orderHandler := handler.NewOrderHandler(orderService, fulfillmentService)
	shortageHandler := handler.NewShortageHandler(shortageService)
	systemHandler := handler.NewSystemHandler(db)

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()

	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())

	corsConfig := middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	// Setup API routes
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Register(materialHandler).
		Register(ledgerHandler).
		Register(lotHandler).
		Register(allocationHandler).
		Register(cycleCountHandler).
		Register(orderHandler).
		Register(shortageHandler).
		Register(systemHandler)
	r.Setup()

	// Start HTTP server
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server")
	cancelSweep()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited")
}

// runExpirySweep periodically expires lots whose expiration date has passed
func runExpirySweep(ctx context.Context, lotService *inventoryapp.LotService, interval time.Duration, log *zap.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			expired, err := lotService.ExpireOverdueLots(ctx)
			if err != nil {
				log.Error("Lot expiry sweep failed", zap.Error(err))
				continue
			}
			if expired > 0 {
				log.Info("Expired overdue lots", zap.Int("count", expired))
			}
		}
	}
}
