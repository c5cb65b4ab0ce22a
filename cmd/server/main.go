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

	inventoryapp "github.com/stockledger/backend/internal/application/inventory"
	"github.com/stockledger/backend/internal/domain/inventory"
	"github.com/stockledger/backend/internal/infrastructure/config"
	"github.com/stockledger/backend/internal/infrastructure/event"
	"github.com/stockledger/backend/internal/infrastructure/logger"
	"github.com/stockledger/backend/internal/infrastructure/persistence"
	"github.com/stockledger/backend/internal/infrastructure/sequence"
	"github.com/stockledger/backend/internal/interfaces/http/handler"
	"github.com/stockledger/backend/internal/interfaces/http/middleware"
	"github.com/stockledger/backend/internal/interfaces/http/router"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting stock ledger backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Initialize database connection
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, log)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Document number sequencer
	sequencer, redisClient, err := buildSequencer(cfg, db)
	if err != nil {
		log.Fatal("Failed to initialize sequencer", zap.Error(err))
	}
	if redisClient != nil {
		defer func() {
			if err := redisClient.Close(); err != nil {
				log.Error("Error closing redis client", zap.Error(err))
			}
		}()
	}
	log.Info("Sequencer initialized", zap.String("backend", cfg.Sequencer.Backend))

	// Transaction scope shared by all services
	scope := persistence.NewGormTransactionScope(db.DB)

	// Event bus with the low stock handler subscribed
	eventBus := event.NewInMemoryEventBus(log)
	eventBus.Subscribe(inventoryapp.NewLowStockHandler(log))
	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}

	// Application services
	movementService := inventoryapp.NewMovementService(scope, sequencer, log)
	movementService.SetEventPublisher(eventBus)
	reservationService := inventoryapp.NewReservationService(scope, sequencer, log)
	reservationService.SetEventPublisher(eventBus)
	reservationService.SetDefaultExpiration(cfg.Reservation.DefaultExpiration)
	expirationService := inventoryapp.NewReservationExpirationService(scope, log)
	expirationService.SetEventPublisher(eventBus)
	stockService := inventoryapp.NewStockService(scope, log)
	valuationService := inventoryapp.NewValuationService(scope, log)

	// Background reservation expiration sweep
	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	if cfg.Reservation.SweepEnabled {
		go runExpirationSweep(sweepCtx, expirationService, cfg.Reservation.SweepInterval, log)
	}

	// HTTP engine and middleware
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Fatal("Failed to set trusted proxies", zap.Error(err))
		}
	}
	engine.Use(middleware.RequestID())
	engine.Use(logger.GinMiddleware(log))
	engine.Use(logger.Recovery(log))
	engine.Use(middleware.Tenant())

	// Routes
	r := router.NewRouter(engine)
	r.Register(handler.NewSystemHandler(db)).
		Register(handler.NewStockHandler(stockService)).
		Register(handler.NewMovementHandler(movementService)).
		Register(handler.NewReservationHandler(reservationService)).
		Register(handler.NewValuationHandler(valuationService))
	r.Setup()

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	stopSweep()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}
	if err := eventBus.Stop(ctx); err != nil {
		log.Error("Error stopping event bus", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// buildSequencer creates the document sequencer for the configured backend.
// The returned redis client is non-nil only for the redis backend.
func buildSequencer(cfg *config.Config, db *persistence.Database) (inventory.DocumentSequencer, *redis.Client, error) {
	switch cfg.Sequencer.Backend {
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(context.Background()).Err(); err != nil {
			return nil, nil, err
		}
		return sequence.NewRedisSequencer(client, cfg.Sequencer.RedisTTL), client, nil
	case "memory":
		return sequence.NewInMemorySequencer(), nil, nil
	default:
		return sequence.NewGormSequencer(db.DB), nil, nil
	}
}

// runExpirationSweep periodically releases the holds of expired reservations
func runExpirationSweep(ctx context.Context, svc *inventoryapp.ReservationExpirationService, interval time.Duration, log *zap.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			stats, err := svc.ExpireSweep(ctx, time.Now())
			if err != nil {
				log.Error("Reservation expiration sweep failed", zap.Error(err))
				continue
			}
			if stats.TotalExpired > 0 {
				log.Info("Reservation expiration sweep completed",
					zap.Int("total_expired", stats.TotalExpired),
					zap.Int("released", stats.SuccessReleased),
					zap.Int("failed", stats.FailedReleases),
				)
			}
		}
	}
}
