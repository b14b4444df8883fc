package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	coreport "github.com/amirhossein-jamali/donation-auction/internal/domain/port/core"
	"github.com/amirhossein-jamali/donation-auction/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/donation-auction/internal/domain/usecase/auction"
	"github.com/amirhossein-jamali/donation-auction/internal/domain/usecase/settlement"

	"github.com/amirhossein-jamali/donation-auction/internal/infrastructure/adapter/api/handler"
	"github.com/amirhossein-jamali/donation-auction/internal/infrastructure/adapter/api/middleware"
	"github.com/amirhossein-jamali/donation-auction/internal/infrastructure/adapter/api/routes"
	"github.com/amirhossein-jamali/donation-auction/internal/infrastructure/adapter/database"
	"github.com/amirhossein-jamali/donation-auction/internal/infrastructure/adapter/id"
	"github.com/amirhossein-jamali/donation-auction/internal/infrastructure/adapter/logger"
	"github.com/amirhossein-jamali/donation-auction/internal/infrastructure/adapter/memory"
	timeProvider "github.com/amirhossein-jamali/donation-auction/internal/infrastructure/adapter/time"
	"github.com/amirhossein-jamali/donation-auction/internal/infrastructure/config"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	appLogger, err := logger.New(cfg.Logger.Backend, cfg.Logger.Level, cfg.IsProduction())
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer appLogger.Flush()

	tp := timeProvider.NewRealTimeProvider()

	uow, healthCheckers, closeStore, err := openStore(context.Background(), cfg, appLogger, tp)
	if err != nil {
		appLogger.Error("Failed to open store", map[string]any{
			"driver": cfg.Database.Driver,
			"error":  err.Error(),
		})
		appLogger.Flush()
		os.Exit(1)
	}
	defer closeStore()

	// Use cases
	ids := id.NewUUIDGenerator()
	ledger := auction.NewLedger(uow, auction.NewBidValidator(), ids, tp, appLogger, auction.LedgerConfig{
		DuplicateBidWindow: cfg.Auction.DuplicateBidWindow(),
		DefaultListLimit:   cfg.Auction.ListLimit,
	})
	engine := settlement.NewEngine(uow, ids, tp, appLogger)
	auctionService := auction.NewService(ledger, engine, appLogger)
	payoutService := settlement.NewPayoutService(uow, tp, appLogger)

	// HTTP layer
	if err := routes.RegisterValidators(); err != nil {
		appLogger.Error("Failed to register request validators", map[string]any{"error": err.Error()})
		appLogger.Flush()
		os.Exit(1)
	}

	bidLimiter := middleware.NewRateLimiter(rate.Limit(cfg.RateLimit.BidsPerSecond), cfg.RateLimit.Burst, tp)
	defer bidLimiter.Stop()

	router := gin.New()
	routes.SetupMiddlewares(router, appLogger, tp, cfg.CORS.AllowedOrigins)
	routes.SetupRoutes(router, routes.Handlers{
		Auction: handler.NewAuctionHandler(auctionService, appLogger),
		Payout:  handler.NewPayoutHandler(payoutService, appLogger),
		Health:  handler.NewHealthHandler(appLogger, healthCheckers...),
	}, bidLimiter)

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	go func() {
		appLogger.Info("Starting server", map[string]any{
			"addr":   server.Addr,
			"env":    cfg.Environment,
			"driver": cfg.Database.Driver,
		})

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Error("Failed to start server", map[string]any{
				"error": err.Error(),
			})
			appLogger.Flush()
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...", nil)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		appLogger.Error("Server forced to shutdown", map[string]any{
			"error": err.Error(),
		})
	}

	appLogger.Info("Server exited gracefully", nil)
}

// openStore builds the unit of work for the configured driver
func openStore(
	ctx context.Context,
	cfg *config.Config,
	appLogger coreport.Logger,
	tp coreport.TimeProvider,
) (persistence.UnitOfWork, []handler.HealthChecker, func(), error) {
	if cfg.Database.Driver == "memory" {
		appLogger.Warn("Using in-memory store; data is lost on restart", nil)
		store := memory.NewStore(cfg.Auction.LockTimeout())
		return memory.NewUnitOfWork(store), nil, func() {}, nil
	}

	dbManager := database.NewManager(database.CreateConfigFromAppConfig(cfg), appLogger, tp)
	if _, err := dbManager.Connect(ctx); err != nil {
		return nil, nil, nil, fmt.Errorf("connect: %w", err)
	}

	closeDB := func() {
		if err := dbManager.Close(); err != nil {
			appLogger.Error("Failed to close database", map[string]any{"error": err.Error()})
		}
	}

	if err := dbManager.Migrate(ctx); err != nil {
		closeDB()
		return nil, nil, nil, fmt.Errorf("migrate: %w", err)
	}

	return dbManager.CreateUnitOfWork(), []handler.HealthChecker{dbManager.HealthChecker()}, closeDB, nil
}
