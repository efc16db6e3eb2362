package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "github.com/AlexyDarius/finarius/internal/errors"
	"github.com/AlexyDarius/finarius/internal/portfolio"
	"github.com/AlexyDarius/finarius/internal/services"
)

// PortfolioHandler serves positions, valuation and cash flows.
type PortfolioHandler struct {
	portfolioService services.PortfolioServicer
}

// NewPortfolioHandler creates a new PortfolioHandler.
func NewPortfolioHandler(portfolioService services.PortfolioServicer) *PortfolioHandler {
	return &PortfolioHandler{portfolioService: portfolioService}
}

// SeriesQuery selects the sampling of a value series.
type SeriesQuery struct {
	Frequency string `form:"frequency" binding:"omitempty,frequency"`
}

// GetPositions returns the open positions of an account as of a date.
// @Summary     Get positions
// @Tags        portfolio
// @Produce     json
// @Param       id   path  int    true  "Account ID"
// @Param       date query string false "As-of date (default today)"
// @Success     200 {object} map[string]interface{}
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /accounts/{id}/positions [get]
func (h *PortfolioHandler) GetPositions(c *gin.Context) {
	accountID, date, useCache, ok := accountAndDate(c)
	if !ok {
		return
	}

	positions, err := h.portfolioService.GetPositions(accountID, date, useCache)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"account_id": accountID, "date": date, "positions": positions})
}

// GetPositionHistory returns the daily position of one symbol over a range.
// @Summary     Get position history
// @Tags        portfolio
// @Produce     json
// @Param       id         path  int    true "Account ID"
// @Param       symbol     path  string true "Ticker"
// @Param       start_date query string true "Range start"
// @Param       end_date   query string true "Range end"
// @Success     200 {object} map[string]interface{}
// @Failure     400 {object} ErrorResponse "Invalid input or date range"
// @Router      /accounts/{id}/positions/{symbol}/history [get]
func (h *PortfolioHandler) GetPositionHistory(c *gin.Context) {
	accountID, start, end, useCache, ok := accountAndRange(c)
	if !ok {
		return
	}
	symbol := strings.ToUpper(strings.TrimSpace(c.Param("symbol")))

	history, err := h.portfolioService.GetPositionHistory(symbol, accountID, start, end, useCache)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"account_id": accountID, "symbol": symbol, "history": history})
}

// GetValue returns the market value of an account's positions.
// @Summary     Get portfolio value
// @Tags        portfolio
// @Produce     json
// @Param       id   path  int    true  "Account ID"
// @Param       date query string false "As-of date (default today)"
// @Success     200 {object} map[string]interface{}
// @Router      /accounts/{id}/value [get]
func (h *PortfolioHandler) GetValue(c *gin.Context) {
	accountID, date, useCache, ok := accountAndDate(c)
	if !ok {
		return
	}

	value, err := h.portfolioService.PortfolioValue(accountID, date, useCache)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"account_id": accountID, "date": date, "value": value})
}

// GetValueSeries returns the portfolio value sampled over a range.
// @Summary     Get portfolio value series
// @Tags        portfolio
// @Produce     json
// @Param       id         path  int    true  "Account ID"
// @Param       start_date query string true  "Range start"
// @Param       end_date   query string true  "Range end"
// @Param       frequency  query string false "daily, weekly or monthly"
// @Success     200 {object} map[string]interface{}
// @Failure     400 {object} ErrorResponse "Invalid input or date range"
// @Router      /accounts/{id}/value/series [get]
func (h *PortfolioHandler) GetValueSeries(c *gin.Context) {
	accountID, start, end, useCache, ok := accountAndRange(c)
	if !ok {
		return
	}

	var q SeriesQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}
	frequency := portfolio.Daily
	if q.Frequency != "" {
		frequency = portfolio.Frequency(q.Frequency)
	}

	points, err := h.portfolioService.ValueOverTime(accountID, start, end, frequency, useCache)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"account_id": accountID, "frequency": frequency, "points": points})
}

// GetBreakdown returns per-symbol quantity, cost and value.
// @Summary     Get portfolio breakdown
// @Tags        portfolio
// @Produce     json
// @Param       id   path  int    true  "Account ID"
// @Param       date query string false "As-of date (default today)"
// @Success     200 {object} map[string]interface{}
// @Router      /accounts/{id}/breakdown [get]
func (h *PortfolioHandler) GetBreakdown(c *gin.Context) {
	accountID, date, useCache, ok := accountAndDate(c)
	if !ok {
		return
	}

	holdings, err := h.portfolioService.Breakdown(accountID, date, useCache)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"account_id": accountID, "date": date, "holdings": holdings})
}

// GetCashFlows returns external cash flows and their net over a range.
// @Summary     Get cash flows
// @Tags        portfolio
// @Produce     json
// @Param       id         path  int    true "Account ID"
// @Param       start_date query string true "Range start"
// @Param       end_date   query string true "Range end"
// @Success     200 {object} map[string]interface{}
// @Failure     400 {object} ErrorResponse "Invalid input or date range"
// @Router      /accounts/{id}/cash-flows [get]
func (h *PortfolioHandler) GetCashFlows(c *gin.Context) {
	accountID, start, end, useCache, ok := accountAndRange(c)
	if !ok {
		return
	}

	flows, err := h.portfolioService.GetCashFlows(accountID, start, end, useCache)
	if err != nil {
		respondWithError(c, err)
		return
	}
	net, err := h.portfolioService.NetCashFlow(accountID, start, end, useCache)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"account_id": accountID, "cash_flows": flows, "net": net})
}

// GetCashBalance returns the uninvested cash of an account.
// @Summary     Get cash balance
// @Tags        portfolio
// @Produce     json
// @Param       id   path  int    true  "Account ID"
// @Param       date query string false "As-of date (default today)"
// @Success     200 {object} map[string]interface{}
// @Router      /accounts/{id}/cash-balance [get]
func (h *PortfolioHandler) GetCashBalance(c *gin.Context) {
	accountID, date, useCache, ok := accountAndDate(c)
	if !ok {
		return
	}

	balance, err := h.portfolioService.GetCashBalance(accountID, date, useCache)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"account_id": accountID, "date": date, "balance": balance})
}
