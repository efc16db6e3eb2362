// Command oracle downloads closing prices for every held symbol and the
// benchmark, for one trading date. It exits 2 when any download failed.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/AlexyDarius/finarius/internal/config"
	"github.com/AlexyDarius/finarius/internal/database"
	"github.com/AlexyDarius/finarius/internal/ledger"
	"github.com/AlexyDarius/finarius/internal/logger"
	"github.com/AlexyDarius/finarius/internal/prices"
	"github.com/AlexyDarius/finarius/internal/services"
)

func main() {
	dateFlag := flag.String("date", "", "trading date YYYY-MM-DD (default today, UTC)")
	flag.Parse()

	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()
	log := logger.Named("oracle")

	date := prices.Day(time.Now())
	if *dateFlag != "" {
		parsed, err := time.Parse(time.DateOnly, *dateFlag)
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid -date %q: %v\n", *dateFlag, err)
			os.Exit(1)
		}
		date = parsed
	}

	result, err := run(context.Background(), date)
	if err != nil {
		log.Errorw("oracle run failed", "error", err)
		logger.Sync()
		os.Exit(1)
	}

	log.Infow("oracle run completed",
		"date", result.Date.Format(time.DateOnly),
		"symbols_requested", result.SymbolsRequested,
		"prices_fetched", result.PricesFetched,
		"missing", len(result.Missing),
		"errors", len(result.Errors),
		"duration", result.Duration.String(),
	)

	for _, symbol := range result.Missing {
		log.Infow("no bar for date", "symbol", symbol)
	}
	for _, fetchErr := range result.Errors {
		log.Warnw("price fetch failed", "symbol", fetchErr.Symbol, "error", fetchErr.Err.Error())
	}

	if len(result.Errors) > 0 {
		logger.Sync()
		os.Exit(2)
	}
}

func run(ctx context.Context, date time.Time) (*services.SyncResult, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	dbManager, err := database.NewManager(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create database manager: %w", err)
	}
	defer func() { _ = dbManager.Close() }()

	if err := dbManager.RunMigrations(); err != nil {
		return nil, fmt.Errorf("failed to run database migrations: %w", err)
	}

	provider, closePrices, err := prices.NewProvider(dbManager.DB(), cfg, logger.Named("prices"))
	if err != nil {
		return nil, fmt.Errorf("failed to build price provider: %w", err)
	}
	defer closePrices()

	sync := services.NewPriceSync(ledger.NewGormReader(dbManager.DB()), provider, cfg.BenchmarkSymbol, logger.Named("price_sync"))
	return sync.Sync(ctx, date)
}
