package services

import (
	"context"
	"time"

	"github.com/AlexyDarius/finarius/internal/ledger"
	"github.com/AlexyDarius/finarius/internal/pagination"
	"github.com/AlexyDarius/finarius/internal/performance"
	"github.com/AlexyDarius/finarius/internal/portfolio"
)

// AccountServicer defines the contract for reading accounts and their ledgers.
type AccountServicer interface {
	ListAccounts() ([]ledger.Account, error)
	GetAccount(accountID uint) (*ledger.Account, error)
	ListTransactionsPage(accountID uint, page pagination.PageRequest, filter ledger.TransactionFilter) (*pagination.PageResponse[ledger.Transaction], error)
}

// PortfolioServicer defines the contract for position, valuation and cash flow queries.
type PortfolioServicer interface {
	GetPositions(accountID uint, date time.Time, useCache bool) (portfolio.Positions, error)
	GetPositionHistory(symbol string, accountID uint, start, end time.Time, useCache bool) ([]portfolio.PositionAt, error)
	PortfolioValue(accountID uint, date time.Time, useCache bool) (float64, error)
	ValueOverTime(accountID uint, start, end time.Time, frequency portfolio.Frequency, useCache bool) ([]portfolio.ValuePoint, error)
	Breakdown(accountID uint, date time.Time, useCache bool) (map[string]portfolio.Holding, error)
	GetCashFlows(accountID uint, start, end time.Time, useCache bool) ([]portfolio.CashFlow, error)
	NetCashFlow(accountID uint, start, end time.Time, useCache bool) (float64, error)
	GetCashBalance(accountID uint, date time.Time, useCache bool) (float64, error)
	ClearCache()
}

// MetricsServicer defines the contract for performance metrics.
type MetricsServicer interface {
	Realized(accountID uint, start, end time.Time, useCache bool) (float64, error)
	RealizedBySymbol(accountID uint, start, end time.Time, useCache bool) (map[string]float64, error)
	Unrealized(accountID uint, date time.Time, useCache bool) (float64, error)
	UnrealizedBySymbol(accountID uint, date time.Time, useCache bool) (map[string]float64, error)
	TotalReturn(accountID uint, start, end time.Time, useCache bool) (float64, error)
	TotalReturnPct(accountID uint, start, end time.Time, useCache bool) (float64, error)
	CAGR(accountID uint, start, end time.Time, useCache bool) (float64, error)
	IRR(accountID uint, start, end time.Time, useCache bool) (*float64, error)
	TWRR(accountID uint, start, end time.Time, useCache bool) (float64, error)
	SharpeRatio(accountID uint, start, end time.Time, riskFreeRate float64, useCache bool) (*float64, error)
	MaxDrawdown(accountID uint, start, end time.Time, useCache bool) (float64, error)
	Volatility(accountID uint, start, end time.Time, useCache bool) (float64, error)
	Beta(accountID uint, benchmarkSymbol string, start, end time.Time, useCache bool) (*float64, error)
	DividendHistory(accountID uint, start, end time.Time, useCache bool) ([]portfolio.CashFlow, error)
	DividendIncome(accountID uint, start, end time.Time, useCache bool) (float64, error)
	DividendsBySymbol(accountID uint, start, end time.Time, useCache bool) (map[string]float64, error)
	DividendYield(accountID uint, date time.Time, useCache bool) (float64, error)
	ClearCache()
}

// PriceSyncer defines the contract for bulk price downloads.
type PriceSyncer interface {
	Sync(ctx context.Context, date time.Time) (*SyncResult, error)
}

var (
	_ AccountServicer   = (*ledger.GormReader)(nil)
	_ PortfolioServicer = (*portfolio.Engine)(nil)
	_ MetricsServicer   = (*performance.Calculator)(nil)
	_ PriceSyncer       = (*PriceSync)(nil)
)
