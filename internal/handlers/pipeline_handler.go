package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "github.com/AlexyDarius/finarius/internal/errors"
	"github.com/AlexyDarius/finarius/internal/logger"
	"github.com/AlexyDarius/finarius/internal/portfolio"
	"github.com/AlexyDarius/finarius/internal/services"
)

// cacheClearer is satisfied by both facades.
type cacheClearer interface {
	ClearCache()
}

// PipelineHandler serves the endpoints schedulers call after ledger writes
// and at market close.
type PipelineHandler struct {
	caches []cacheClearer
	syncer services.PriceSyncer
}

// NewPipelineHandler creates a new PipelineHandler.
func NewPipelineHandler(portfolioService services.PortfolioServicer, metricsService services.MetricsServicer, syncer services.PriceSyncer) *PipelineHandler {
	return &PipelineHandler{
		caches: []cacheClearer{portfolioService, metricsService},
		syncer: syncer,
	}
}

// DownloadPricesRequest selects the trading date to download.
type DownloadPricesRequest struct {
	Date string `json:"date"`
}

// SyncFailure reports one symbol whose download failed.
type SyncFailure struct {
	Symbol string `json:"symbol"`
	Error  string `json:"error"`
}

// DownloadPricesResponse summarizes a price sync run.
type DownloadPricesResponse struct {
	Date             string        `json:"date"`
	SymbolsRequested int           `json:"symbols_requested"`
	PricesFetched    int           `json:"prices_fetched"`
	Missing          []string      `json:"missing"`
	Failed           []SyncFailure `json:"failed"`
	DurationMS       int64         `json:"duration_ms"`
}

// ClearCache drops every memoized facade result.
// @Summary     Clear facade caches
// @Tags        pipeline
// @Produce     json
// @Security    ApiKeyAuth
// @Success     200 {object} map[string]string
// @Failure     401 {object} ErrorResponse "Invalid API key"
// @Router      /cache/clear [post]
func (h *PipelineHandler) ClearCache(c *gin.Context) {
	for _, cache := range h.caches {
		cache.ClearCache()
	}
	logger.Get().Infow("facade caches cleared", "request_ip", c.ClientIP())
	c.JSON(http.StatusOK, gin.H{"status": "cleared"})
}

// DownloadPrices downloads closing prices for every held symbol and the
// benchmark. Per-symbol failures are reported in the body, not as an error.
// @Summary     Download prices
// @Tags        pipeline
// @Accept      json
// @Produce     json
// @Security    ApiKeyAuth
// @Param       request body DownloadPricesRequest false "Trading date (default today)"
// @Success     200 {object} DownloadPricesResponse
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Invalid API key"
// @Router      /prices/download [post]
func (h *PipelineHandler) DownloadPrices(c *gin.Context) {
	var req DownloadPricesRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
			return
		}
	}

	date := portfolio.Day(time.Now())
	if req.Date != "" {
		var err error
		if date, err = parseDate("date", req.Date); err != nil {
			respondWithError(c, err)
			return
		}
	}

	result, err := h.syncer.Sync(c.Request.Context(), date)
	if err != nil {
		respondWithError(c, err)
		return
	}

	resp := DownloadPricesResponse{
		Date:             result.Date.Format(time.DateOnly),
		SymbolsRequested: result.SymbolsRequested,
		PricesFetched:    result.PricesFetched,
		Missing:          result.Missing,
		Failed:           make([]SyncFailure, 0, len(result.Errors)),
		DurationMS:       result.Duration.Milliseconds(),
	}
	for _, e := range result.Errors {
		resp.Failed = append(resp.Failed, SyncFailure{Symbol: e.Symbol, Error: e.Err.Error()})
	}
	c.JSON(http.StatusOK, resp)
}
