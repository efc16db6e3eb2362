package prices

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/AlexyDarius/finarius/internal/logger"
	"github.com/AlexyDarius/finarius/internal/metrics"
)

// Service answers lookups from the Store and persists whatever the
// Downloader fetches.
type Service struct {
	store      *Store
	downloader Downloader
	timeout    time.Duration
	log        *zap.SugaredLogger
}

// NewService creates a Service. A nil downloader makes DownloadPrice report
// every price as absent.
func NewService(store *Store, downloader Downloader, timeout time.Duration, log *zap.SugaredLogger) *Service {
	return &Service{
		store:      store,
		downloader: downloader,
		timeout:    timeout,
		log:        logger.OrNop(log),
	}
}

var _ Provider = (*Service)(nil)

// GetPrice implements Provider.
func (s *Service) GetPrice(symbol string, date time.Time) (*PricePoint, error) {
	p, err := s.store.GetPrice(symbol, date)
	switch {
	case err != nil:
		metrics.PriceLookupsTotal.WithLabelValues("store", metrics.PriceError).Inc()
	case p == nil:
		metrics.PriceLookupsTotal.WithLabelValues("store", metrics.PriceAbsent).Inc()
	default:
		metrics.PriceLookupsTotal.WithLabelValues("store", metrics.PriceHit).Inc()
	}
	return p, err
}

// GetPrices implements Provider.
func (s *Service) GetPrices(symbol string, start, end time.Time) ([]PricePoint, error) {
	return s.store.Series(symbol, start, end)
}

// DownloadPrice implements Provider. Fetched points are saved to the Store
// before being returned.
func (s *Service) DownloadPrice(symbol string, date time.Time) (*PricePoint, error) {
	if s.downloader == nil {
		return nil, nil
	}

	ctx := context.Background()
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	p, err := s.downloader.Download(ctx, symbol, date)
	metrics.PriceDownloadDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.PriceLookupsTotal.WithLabelValues("download", metrics.PriceError).Inc()
		return nil, err
	}
	if p == nil {
		metrics.PriceLookupsTotal.WithLabelValues("download", metrics.PriceAbsent).Inc()
		s.log.Debugw("no bar for date", "symbol", NormalizeSymbol(symbol), "date", Day(date).Format(time.DateOnly))
		return nil, nil
	}
	metrics.PriceLookupsTotal.WithLabelValues("download", metrics.PriceDownloaded).Inc()

	if err := s.store.Save(p); err != nil {
		return nil, err
	}
	return p, nil
}

// Store returns the underlying price store.
func (s *Service) Store() *Store {
	return s.store
}
