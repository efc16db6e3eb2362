package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/AlexyDarius/finarius/internal/logger"
	"github.com/AlexyDarius/finarius/internal/prices"
)

// defaultSyncConcurrency bounds simultaneous downloads.
const defaultSyncConcurrency = 4

// SymbolSource lists the symbols held across all accounts on a date.
type SymbolSource interface {
	HeldSymbols(date time.Time) ([]string, error)
}

// SyncError records a failed download for one symbol.
type SyncError struct {
	Symbol string `json:"symbol"`
	Err    error  `json:"-"`
}

// SyncResult contains the outcome of a price sync run.
type SyncResult struct {
	Date             time.Time     `json:"date"`
	SymbolsRequested int           `json:"symbols_requested"`
	PricesFetched    int           `json:"prices_fetched"`
	Missing          []string      `json:"missing"`
	Errors           []SyncError   `json:"errors"`
	Duration         time.Duration `json:"duration"`
}

// PriceSync downloads the closing price of every held symbol, plus the
// configured benchmark, for a single date.
type PriceSync struct {
	symbols     SymbolSource
	provider    prices.Provider
	benchmark   string
	concurrency int
	log         *zap.SugaredLogger
}

// NewPriceSync creates a PriceSync. An empty benchmark is skipped.
func NewPriceSync(symbols SymbolSource, provider prices.Provider, benchmark string, log *zap.SugaredLogger) *PriceSync {
	return &PriceSync{
		symbols:     symbols,
		provider:    provider,
		benchmark:   prices.NormalizeSymbol(benchmark),
		concurrency: defaultSyncConcurrency,
		log:         logger.OrNop(log),
	}
}

// Sync runs a single download cycle. Per-symbol failures are collected in the
// result; only a failure to list symbols aborts the run.
func (s *PriceSync) Sync(ctx context.Context, date time.Time) (*SyncResult, error) {
	start := time.Now()
	day := prices.Day(date)
	result := &SyncResult{Date: day, Missing: []string{}, Errors: []SyncError{}}

	held, err := s.symbols.HeldSymbols(day)
	if err != nil {
		return nil, err
	}
	symbols := s.withBenchmark(held)
	result.SymbolsRequested = len(symbols)

	if len(symbols) == 0 {
		s.log.Info("no symbols held, nothing to do")
		result.Duration = time.Since(start)
		return result, nil
	}

	s.log.Infow("downloading prices", "date", day.Format(time.DateOnly), "count", len(symbols))

	var mu sync.Mutex
	var wg sync.WaitGroup
	slots := make(chan struct{}, s.concurrency)

	for _, symbol := range symbols {
		if ctx.Err() != nil {
			mu.Lock()
			result.Errors = append(result.Errors, SyncError{Symbol: symbol, Err: ctx.Err()})
			mu.Unlock()
			continue
		}

		wg.Add(1)
		slots <- struct{}{}
		go func(symbol string) {
			defer wg.Done()
			defer func() { <-slots }()

			p, err := s.provider.DownloadPrice(symbol, day)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err != nil:
				s.log.Warnw("price download failed", "symbol", symbol, "error", err)
				result.Errors = append(result.Errors, SyncError{Symbol: symbol, Err: err})
			case p == nil:
				result.Missing = append(result.Missing, symbol)
			default:
				result.PricesFetched++
			}
		}(symbol)
	}
	wg.Wait()

	sort.Strings(result.Missing)
	sort.Slice(result.Errors, func(i, j int) bool { return result.Errors[i].Symbol < result.Errors[j].Symbol })

	result.Duration = time.Since(start)
	return result, nil
}

func (s *PriceSync) withBenchmark(held []string) []string {
	seen := make(map[string]bool, len(held)+1)
	symbols := make([]string, 0, len(held)+1)
	for _, sym := range held {
		sym = prices.NormalizeSymbol(sym)
		if sym == "" || seen[sym] {
			continue
		}
		seen[sym] = true
		symbols = append(symbols, sym)
	}
	if s.benchmark != "" && !seen[s.benchmark] {
		symbols = append(symbols, s.benchmark)
	}
	sort.Strings(symbols)
	return symbols
}
