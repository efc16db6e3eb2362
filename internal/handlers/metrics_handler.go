package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "github.com/AlexyDarius/finarius/internal/errors"
	"github.com/AlexyDarius/finarius/internal/portfolio"
	"github.com/AlexyDarius/finarius/internal/services"
)

// MetricsHandler serves gains, returns, risk and dividend metrics.
type MetricsHandler struct {
	metricsService  services.MetricsServicer
	riskFreeRate    float64
	benchmarkSymbol string
}

// NewMetricsHandler creates a new MetricsHandler. riskFreeRate and
// benchmarkSymbol are the defaults for the risk endpoint.
func NewMetricsHandler(metricsService services.MetricsServicer, riskFreeRate float64, benchmarkSymbol string) *MetricsHandler {
	return &MetricsHandler{
		metricsService:  metricsService,
		riskFreeRate:    riskFreeRate,
		benchmarkSymbol: benchmarkSymbol,
	}
}

// RiskQuery overrides the configured risk defaults.
type RiskQuery struct {
	RiskFreeRate *float64 `form:"risk_free_rate" binding:"omitempty,gte=-1,lte=1"`
	Benchmark    string   `form:"benchmark" binding:"omitempty,max=32"`
}

// GainsResponse is the body of GET /accounts/{id}/gains.
type GainsResponse struct {
	Realized           float64            `json:"realized"`
	RealizedBySymbol   map[string]float64 `json:"realized_by_symbol"`
	Unrealized         float64            `json:"unrealized"`
	UnrealizedBySymbol map[string]float64 `json:"unrealized_by_symbol"`
}

// ReturnsResponse is the body of GET /accounts/{id}/returns. IRR is null when
// it cannot be solved.
type ReturnsResponse struct {
	Total    float64  `json:"total"`
	TotalPct float64  `json:"total_pct"`
	CAGR     float64  `json:"cagr"`
	IRR      *float64 `json:"irr"`
	TWRR     float64  `json:"twrr"`
}

// RiskResponse is the body of GET /accounts/{id}/risk. Sharpe and beta are
// null when undefined.
type RiskResponse struct {
	Sharpe       *float64 `json:"sharpe"`
	MaxDrawdown  float64  `json:"max_drawdown"`
	Volatility   float64  `json:"volatility"`
	Beta         *float64 `json:"beta"`
	Benchmark    string   `json:"benchmark"`
	RiskFreeRate float64  `json:"risk_free_rate"`
}

// DividendsResponse is the body of GET /accounts/{id}/dividends.
type DividendsResponse struct {
	History  []portfolio.CashFlow `json:"history"`
	Income   float64              `json:"income"`
	BySymbol map[string]float64   `json:"by_symbol"`
	Yield    float64              `json:"yield"`
}

// GetGains returns realized gains over a range and unrealized gains at its end.
// @Summary     Get gains
// @Tags        metrics
// @Produce     json
// @Param       id         path  int    true "Account ID"
// @Param       start_date query string true "Range start"
// @Param       end_date   query string true "Range end"
// @Success     200 {object} GainsResponse
// @Failure     400 {object} ErrorResponse "Invalid input or date range"
// @Router      /accounts/{id}/gains [get]
func (h *MetricsHandler) GetGains(c *gin.Context) {
	accountID, start, end, useCache, ok := accountAndRange(c)
	if !ok {
		return
	}

	var resp GainsResponse
	var err error
	if resp.Realized, err = h.metricsService.Realized(accountID, start, end, useCache); err != nil {
		respondWithError(c, err)
		return
	}
	if resp.RealizedBySymbol, err = h.metricsService.RealizedBySymbol(accountID, start, end, useCache); err != nil {
		respondWithError(c, err)
		return
	}
	if resp.Unrealized, err = h.metricsService.Unrealized(accountID, end, useCache); err != nil {
		respondWithError(c, err)
		return
	}
	if resp.UnrealizedBySymbol, err = h.metricsService.UnrealizedBySymbol(accountID, end, useCache); err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetReturns returns total, annualized, money-weighted and time-weighted returns.
// @Summary     Get returns
// @Tags        metrics
// @Produce     json
// @Param       id         path  int    true "Account ID"
// @Param       start_date query string true "Range start"
// @Param       end_date   query string true "Range end"
// @Success     200 {object} ReturnsResponse
// @Failure     400 {object} ErrorResponse "Invalid input or date range"
// @Router      /accounts/{id}/returns [get]
func (h *MetricsHandler) GetReturns(c *gin.Context) {
	accountID, start, end, useCache, ok := accountAndRange(c)
	if !ok {
		return
	}

	var resp ReturnsResponse
	var err error
	if resp.Total, err = h.metricsService.TotalReturn(accountID, start, end, useCache); err != nil {
		respondWithError(c, err)
		return
	}
	if resp.TotalPct, err = h.metricsService.TotalReturnPct(accountID, start, end, useCache); err != nil {
		respondWithError(c, err)
		return
	}
	if resp.CAGR, err = h.metricsService.CAGR(accountID, start, end, useCache); err != nil {
		respondWithError(c, err)
		return
	}
	if resp.IRR, err = h.metricsService.IRR(accountID, start, end, useCache); err != nil {
		respondWithError(c, err)
		return
	}
	if resp.TWRR, err = h.metricsService.TWRR(accountID, start, end, useCache); err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetRisk returns Sharpe ratio, drawdown, volatility and beta.
// @Summary     Get risk metrics
// @Tags        metrics
// @Produce     json
// @Param       id             path  int    true  "Account ID"
// @Param       start_date     query string true  "Range start"
// @Param       end_date       query string true  "Range end"
// @Param       risk_free_rate query number false "Annual risk-free rate"
// @Param       benchmark      query string false "Benchmark ticker"
// @Success     200 {object} RiskResponse
// @Failure     400 {object} ErrorResponse "Invalid input or date range"
// @Router      /accounts/{id}/risk [get]
func (h *MetricsHandler) GetRisk(c *gin.Context) {
	accountID, start, end, useCache, ok := accountAndRange(c)
	if !ok {
		return
	}

	var q RiskQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}
	resp := RiskResponse{Benchmark: h.benchmarkSymbol, RiskFreeRate: h.riskFreeRate}
	if q.RiskFreeRate != nil {
		resp.RiskFreeRate = *q.RiskFreeRate
	}
	if q.Benchmark != "" {
		resp.Benchmark = strings.ToUpper(strings.TrimSpace(q.Benchmark))
	}

	var err error
	if resp.Sharpe, err = h.metricsService.SharpeRatio(accountID, start, end, resp.RiskFreeRate, useCache); err != nil {
		respondWithError(c, err)
		return
	}
	if resp.MaxDrawdown, err = h.metricsService.MaxDrawdown(accountID, start, end, useCache); err != nil {
		respondWithError(c, err)
		return
	}
	if resp.Volatility, err = h.metricsService.Volatility(accountID, start, end, useCache); err != nil {
		respondWithError(c, err)
		return
	}
	if resp.Beta, err = h.metricsService.Beta(accountID, resp.Benchmark, start, end, useCache); err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetDividends returns dividend history, income and trailing yield.
// @Summary     Get dividends
// @Tags        metrics
// @Produce     json
// @Param       id         path  int    true "Account ID"
// @Param       start_date query string true "Range start"
// @Param       end_date   query string true "Range end"
// @Success     200 {object} DividendsResponse
// @Failure     400 {object} ErrorResponse "Invalid input or date range"
// @Router      /accounts/{id}/dividends [get]
func (h *MetricsHandler) GetDividends(c *gin.Context) {
	accountID, start, end, useCache, ok := accountAndRange(c)
	if !ok {
		return
	}

	var resp DividendsResponse
	var err error
	if resp.History, err = h.metricsService.DividendHistory(accountID, start, end, useCache); err != nil {
		respondWithError(c, err)
		return
	}
	if resp.Income, err = h.metricsService.DividendIncome(accountID, start, end, useCache); err != nil {
		respondWithError(c, err)
		return
	}
	if resp.BySymbol, err = h.metricsService.DividendsBySymbol(accountID, start, end, useCache); err != nil {
		respondWithError(c, err)
		return
	}
	if resp.Yield, err = h.metricsService.DividendYield(accountID, end, useCache); err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
