// Package prices resolves daily closing prices for symbols. The engine sees
// only Provider; Store, YahooDownloader, Service and RedisCache compose into
// the production implementation.
package prices

import (
	"context"
	"strings"
	"time"
)

// PricePoint is a daily bar for a symbol. Only Close is required.
type PricePoint struct {
	Symbol string    `json:"symbol"`
	Date   time.Time `json:"date"`
	Close  float64   `json:"close"`
	Open   *float64  `json:"open,omitempty"`
	High   *float64  `json:"high,omitempty"`
	Low    *float64  `json:"low,omitempty"`
	Volume *int64    `json:"volume,omitempty"`
}

// Provider resolves prices. A nil point with a nil error means the price is
// absent, which is a normal outcome.
type Provider interface {
	// GetPrice performs a local lookup.
	GetPrice(symbol string, date time.Time) (*PricePoint, error)
	// GetPrices returns the locally stored closes in [start, end], oldest
	// first. Days without a stored close are absent, not filled.
	GetPrices(symbol string, start, end time.Time) ([]PricePoint, error)
	// DownloadPrice fetches from the market data source and may populate the
	// local lookup.
	DownloadPrice(symbol string, date time.Time) (*PricePoint, error)
}

// Downloader fetches a single daily bar from a remote source.
type Downloader interface {
	Download(ctx context.Context, symbol string, date time.Time) (*PricePoint, error)
}

// NormalizeSymbol upper-cases and trims a ticker.
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// Day truncates t to UTC midnight.
func Day(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
