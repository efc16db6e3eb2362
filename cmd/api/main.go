package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/AlexyDarius/finarius/internal/cache"
	"github.com/AlexyDarius/finarius/internal/config"
	"github.com/AlexyDarius/finarius/internal/database"
	"github.com/AlexyDarius/finarius/internal/handlers"
	"github.com/AlexyDarius/finarius/internal/ledger"
	"github.com/AlexyDarius/finarius/internal/logger"
	"github.com/AlexyDarius/finarius/internal/performance"
	"github.com/AlexyDarius/finarius/internal/portfolio"
	"github.com/AlexyDarius/finarius/internal/prices"
	"github.com/AlexyDarius/finarius/internal/services"
	"github.com/AlexyDarius/finarius/internal/validator"
)

// @title           Finarius API
// @version         1.0
// @description     Portfolio reconstruction and performance metrics over an investment ledger.

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key

const shutdownTimeout = 10 * time.Second

func main() {
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	dbManager, err := database.NewManager(appConfig)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}
	defer func() {
		if err := dbManager.Close(); err != nil {
			log.Warnf("database close error: %v", err)
		}
	}()

	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	db := dbManager.DB()
	provider, closePrices, err := prices.NewProvider(db, appConfig, logger.Named("prices"))
	if err != nil {
		return fmt.Errorf("failed to build price provider: %w", err)
	}
	defer closePrices()

	reader := ledger.NewGormReader(db)
	engine := portfolio.NewEngine(reader, provider, cache.New("portfolio"), time.Now, logger.Named("portfolio"))
	calculator := performance.NewCalculator(engine, cache.New("performance"), logger.Named("performance"))
	priceSync := services.NewPriceSync(reader, provider, appConfig.BenchmarkSymbol, logger.Named("price_sync"))

	validator.Register()

	router := handlers.NewRouter(handlers.RouterConfig{
		Accounts:        reader,
		Portfolio:       engine,
		Metrics:         calculator,
		Prices:          priceSync,
		RiskFreeRate:    appConfig.RiskFreeRate,
		BenchmarkSymbol: appConfig.BenchmarkSymbol,
		PipelineAPIKey:  appConfig.PipelineAPIKey,
	})

	if appConfig.PipelineAPIKey == "" {
		log.Warn("PIPELINE_API_KEY not set, cache clear and price download endpoints are disabled")
	}

	srv := &http.Server{
		Addr:              ":" + appConfig.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      5 * time.Minute,
		IdleTimeout:       2 * time.Minute,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Infof("Starting Finarius API server on port %s", appConfig.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down API server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
