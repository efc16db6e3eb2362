package handlers

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/AlexyDarius/finarius/internal/ledger"
	"github.com/AlexyDarius/finarius/internal/pagination"
	"github.com/AlexyDarius/finarius/internal/portfolio"
	"github.com/AlexyDarius/finarius/internal/services"
	"github.com/AlexyDarius/finarius/internal/validator"
)

const testAPIKey = "pipeline-secret"

func init() {
	gin.SetMode(gin.TestMode)
	validator.Register()
}

// --- mock account service ---

type mockAccountService struct {
	listAccountsFn         func() ([]ledger.Account, error)
	getAccountFn           func(accountID uint) (*ledger.Account, error)
	listTransactionsPageFn func(accountID uint, page pagination.PageRequest, filter ledger.TransactionFilter) (*pagination.PageResponse[ledger.Transaction], error)
}

func (m *mockAccountService) ListAccounts() ([]ledger.Account, error) {
	if m.listAccountsFn != nil {
		return m.listAccountsFn()
	}
	return nil, nil
}

func (m *mockAccountService) GetAccount(accountID uint) (*ledger.Account, error) {
	if m.getAccountFn != nil {
		return m.getAccountFn(accountID)
	}
	return &ledger.Account{ID: accountID}, nil
}

func (m *mockAccountService) ListTransactionsPage(accountID uint, page pagination.PageRequest, filter ledger.TransactionFilter) (*pagination.PageResponse[ledger.Transaction], error) {
	if m.listTransactionsPageFn != nil {
		return m.listTransactionsPageFn(accountID, page, filter)
	}
	resp := pagination.NewPageResponse([]ledger.Transaction{}, 1, pagination.DefaultPageSize, 0)
	return &resp, nil
}

// --- mock portfolio service ---

type mockPortfolioService struct {
	getPositionsFn       func(accountID uint, date time.Time, useCache bool) (portfolio.Positions, error)
	getPositionHistoryFn func(symbol string, accountID uint, start, end time.Time, useCache bool) ([]portfolio.PositionAt, error)
	portfolioValueFn     func(accountID uint, date time.Time, useCache bool) (float64, error)
	valueOverTimeFn      func(accountID uint, start, end time.Time, frequency portfolio.Frequency, useCache bool) ([]portfolio.ValuePoint, error)
	breakdownFn          func(accountID uint, date time.Time, useCache bool) (map[string]portfolio.Holding, error)
	getCashFlowsFn       func(accountID uint, start, end time.Time, useCache bool) ([]portfolio.CashFlow, error)
	netCashFlowFn        func(accountID uint, start, end time.Time, useCache bool) (float64, error)
	getCashBalanceFn     func(accountID uint, date time.Time, useCache bool) (float64, error)
	clearCacheCalls      int
}

func (m *mockPortfolioService) GetPositions(accountID uint, date time.Time, useCache bool) (portfolio.Positions, error) {
	if m.getPositionsFn != nil {
		return m.getPositionsFn(accountID, date, useCache)
	}
	return portfolio.Positions{}, nil
}

func (m *mockPortfolioService) GetPositionHistory(symbol string, accountID uint, start, end time.Time, useCache bool) ([]portfolio.PositionAt, error) {
	if m.getPositionHistoryFn != nil {
		return m.getPositionHistoryFn(symbol, accountID, start, end, useCache)
	}
	return []portfolio.PositionAt{}, nil
}

func (m *mockPortfolioService) PortfolioValue(accountID uint, date time.Time, useCache bool) (float64, error) {
	if m.portfolioValueFn != nil {
		return m.portfolioValueFn(accountID, date, useCache)
	}
	return 0, nil
}

func (m *mockPortfolioService) ValueOverTime(accountID uint, start, end time.Time, frequency portfolio.Frequency, useCache bool) ([]portfolio.ValuePoint, error) {
	if m.valueOverTimeFn != nil {
		return m.valueOverTimeFn(accountID, start, end, frequency, useCache)
	}
	return []portfolio.ValuePoint{}, nil
}

func (m *mockPortfolioService) Breakdown(accountID uint, date time.Time, useCache bool) (map[string]portfolio.Holding, error) {
	if m.breakdownFn != nil {
		return m.breakdownFn(accountID, date, useCache)
	}
	return map[string]portfolio.Holding{}, nil
}

func (m *mockPortfolioService) GetCashFlows(accountID uint, start, end time.Time, useCache bool) ([]portfolio.CashFlow, error) {
	if m.getCashFlowsFn != nil {
		return m.getCashFlowsFn(accountID, start, end, useCache)
	}
	return []portfolio.CashFlow{}, nil
}

func (m *mockPortfolioService) NetCashFlow(accountID uint, start, end time.Time, useCache bool) (float64, error) {
	if m.netCashFlowFn != nil {
		return m.netCashFlowFn(accountID, start, end, useCache)
	}
	return 0, nil
}

func (m *mockPortfolioService) GetCashBalance(accountID uint, date time.Time, useCache bool) (float64, error) {
	if m.getCashBalanceFn != nil {
		return m.getCashBalanceFn(accountID, date, useCache)
	}
	return 0, nil
}

func (m *mockPortfolioService) ClearCache() { m.clearCacheCalls++ }

// --- mock metrics service ---

type mockMetricsService struct {
	realizedFn           func(accountID uint, start, end time.Time, useCache bool) (float64, error)
	realizedBySymbolFn   func(accountID uint, start, end time.Time, useCache bool) (map[string]float64, error)
	unrealizedFn         func(accountID uint, date time.Time, useCache bool) (float64, error)
	unrealizedBySymbolFn func(accountID uint, date time.Time, useCache bool) (map[string]float64, error)
	totalReturnFn        func(accountID uint, start, end time.Time, useCache bool) (float64, error)
	totalReturnPctFn     func(accountID uint, start, end time.Time, useCache bool) (float64, error)
	cagrFn               func(accountID uint, start, end time.Time, useCache bool) (float64, error)
	irrFn                func(accountID uint, start, end time.Time, useCache bool) (*float64, error)
	twrrFn               func(accountID uint, start, end time.Time, useCache bool) (float64, error)
	sharpeRatioFn        func(accountID uint, start, end time.Time, riskFreeRate float64, useCache bool) (*float64, error)
	maxDrawdownFn        func(accountID uint, start, end time.Time, useCache bool) (float64, error)
	volatilityFn         func(accountID uint, start, end time.Time, useCache bool) (float64, error)
	betaFn               func(accountID uint, benchmarkSymbol string, start, end time.Time, useCache bool) (*float64, error)
	dividendHistoryFn    func(accountID uint, start, end time.Time, useCache bool) ([]portfolio.CashFlow, error)
	dividendIncomeFn     func(accountID uint, start, end time.Time, useCache bool) (float64, error)
	dividendsBySymbolFn  func(accountID uint, start, end time.Time, useCache bool) (map[string]float64, error)
	dividendYieldFn      func(accountID uint, date time.Time, useCache bool) (float64, error)
	clearCacheCalls      int
}

func (m *mockMetricsService) Realized(accountID uint, start, end time.Time, useCache bool) (float64, error) {
	if m.realizedFn != nil {
		return m.realizedFn(accountID, start, end, useCache)
	}
	return 0, nil
}

func (m *mockMetricsService) RealizedBySymbol(accountID uint, start, end time.Time, useCache bool) (map[string]float64, error) {
	if m.realizedBySymbolFn != nil {
		return m.realizedBySymbolFn(accountID, start, end, useCache)
	}
	return map[string]float64{}, nil
}

func (m *mockMetricsService) Unrealized(accountID uint, date time.Time, useCache bool) (float64, error) {
	if m.unrealizedFn != nil {
		return m.unrealizedFn(accountID, date, useCache)
	}
	return 0, nil
}

func (m *mockMetricsService) UnrealizedBySymbol(accountID uint, date time.Time, useCache bool) (map[string]float64, error) {
	if m.unrealizedBySymbolFn != nil {
		return m.unrealizedBySymbolFn(accountID, date, useCache)
	}
	return map[string]float64{}, nil
}

func (m *mockMetricsService) TotalReturn(accountID uint, start, end time.Time, useCache bool) (float64, error) {
	if m.totalReturnFn != nil {
		return m.totalReturnFn(accountID, start, end, useCache)
	}
	return 0, nil
}

func (m *mockMetricsService) TotalReturnPct(accountID uint, start, end time.Time, useCache bool) (float64, error) {
	if m.totalReturnPctFn != nil {
		return m.totalReturnPctFn(accountID, start, end, useCache)
	}
	return 0, nil
}

func (m *mockMetricsService) CAGR(accountID uint, start, end time.Time, useCache bool) (float64, error) {
	if m.cagrFn != nil {
		return m.cagrFn(accountID, start, end, useCache)
	}
	return 0, nil
}

func (m *mockMetricsService) IRR(accountID uint, start, end time.Time, useCache bool) (*float64, error) {
	if m.irrFn != nil {
		return m.irrFn(accountID, start, end, useCache)
	}
	return nil, nil
}

func (m *mockMetricsService) TWRR(accountID uint, start, end time.Time, useCache bool) (float64, error) {
	if m.twrrFn != nil {
		return m.twrrFn(accountID, start, end, useCache)
	}
	return 0, nil
}

func (m *mockMetricsService) SharpeRatio(accountID uint, start, end time.Time, riskFreeRate float64, useCache bool) (*float64, error) {
	if m.sharpeRatioFn != nil {
		return m.sharpeRatioFn(accountID, start, end, riskFreeRate, useCache)
	}
	return nil, nil
}

func (m *mockMetricsService) MaxDrawdown(accountID uint, start, end time.Time, useCache bool) (float64, error) {
	if m.maxDrawdownFn != nil {
		return m.maxDrawdownFn(accountID, start, end, useCache)
	}
	return 0, nil
}

func (m *mockMetricsService) Volatility(accountID uint, start, end time.Time, useCache bool) (float64, error) {
	if m.volatilityFn != nil {
		return m.volatilityFn(accountID, start, end, useCache)
	}
	return 0, nil
}

func (m *mockMetricsService) Beta(accountID uint, benchmarkSymbol string, start, end time.Time, useCache bool) (*float64, error) {
	if m.betaFn != nil {
		return m.betaFn(accountID, benchmarkSymbol, start, end, useCache)
	}
	return nil, nil
}

func (m *mockMetricsService) DividendHistory(accountID uint, start, end time.Time, useCache bool) ([]portfolio.CashFlow, error) {
	if m.dividendHistoryFn != nil {
		return m.dividendHistoryFn(accountID, start, end, useCache)
	}
	return []portfolio.CashFlow{}, nil
}

func (m *mockMetricsService) DividendIncome(accountID uint, start, end time.Time, useCache bool) (float64, error) {
	if m.dividendIncomeFn != nil {
		return m.dividendIncomeFn(accountID, start, end, useCache)
	}
	return 0, nil
}

func (m *mockMetricsService) DividendsBySymbol(accountID uint, start, end time.Time, useCache bool) (map[string]float64, error) {
	if m.dividendsBySymbolFn != nil {
		return m.dividendsBySymbolFn(accountID, start, end, useCache)
	}
	return map[string]float64{}, nil
}

func (m *mockMetricsService) DividendYield(accountID uint, date time.Time, useCache bool) (float64, error) {
	if m.dividendYieldFn != nil {
		return m.dividendYieldFn(accountID, date, useCache)
	}
	return 0, nil
}

func (m *mockMetricsService) ClearCache() { m.clearCacheCalls++ }

// --- mock price syncer ---

type mockPriceSyncer struct {
	syncFn func(ctx context.Context, date time.Time) (*services.SyncResult, error)
}

func (m *mockPriceSyncer) Sync(ctx context.Context, date time.Time) (*services.SyncResult, error) {
	if m.syncFn != nil {
		return m.syncFn(ctx, date)
	}
	return &services.SyncResult{Date: date}, nil
}

// verify interface compliance
var (
	_ services.AccountServicer   = (*mockAccountService)(nil)
	_ services.PortfolioServicer = (*mockPortfolioService)(nil)
	_ services.MetricsServicer   = (*mockMetricsService)(nil)
	_ services.PriceSyncer       = (*mockPriceSyncer)(nil)
)

// testDeps holds the mocks behind a test router; nil fields get empty mocks.
type testDeps struct {
	accounts  *mockAccountService
	portfolio *mockPortfolioService
	metrics   *mockMetricsService
	prices    *mockPriceSyncer
}

func setupRouter(deps testDeps) *gin.Engine {
	if deps.accounts == nil {
		deps.accounts = &mockAccountService{}
	}
	if deps.portfolio == nil {
		deps.portfolio = &mockPortfolioService{}
	}
	if deps.metrics == nil {
		deps.metrics = &mockMetricsService{}
	}
	if deps.prices == nil {
		deps.prices = &mockPriceSyncer{}
	}
	return NewRouter(RouterConfig{
		Accounts:        deps.accounts,
		Portfolio:       deps.portfolio,
		Metrics:         deps.metrics,
		Prices:          deps.prices,
		RiskFreeRate:    0.02,
		BenchmarkSymbol: "SPY",
		PipelineAPIKey:  testAPIKey,
	})
}

func doRequest(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", testAPIKey)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

func assertErrorCode(t *testing.T, result map[string]interface{}, code string) {
	t.Helper()
	errObj, ok := result["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected error object in response, got: %v", result)
	}
	if errObj["code"] != code {
		t.Errorf("expected error code %q, got %q", code, errObj["code"])
	}
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func ptr(v float64) *float64 { return &v }
