package handlers

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/AlexyDarius/finarius/internal/metrics"
	"github.com/AlexyDarius/finarius/internal/middleware"
	"github.com/AlexyDarius/finarius/internal/services"
)

// RouterConfig carries the collaborators and defaults the API is built from.
type RouterConfig struct {
	Accounts        services.AccountServicer
	Portfolio       services.PortfolioServicer
	Metrics         services.MetricsServicer
	Prices          services.PriceSyncer
	RiskFreeRate    float64
	BenchmarkSymbol string
	PipelineAPIKey  string
}

// NewRouter builds the gin engine with middleware, health, Prometheus and
// the /api/v1 routes. Every route that reaches a facade runs under one lock.
func NewRouter(cfg RouterConfig) *gin.Engine {
	accountHandler := NewAccountHandler(cfg.Accounts)
	portfolioHandler := NewPortfolioHandler(cfg.Portfolio)
	metricsHandler := NewMetricsHandler(cfg.Metrics, cfg.RiskFreeRate, cfg.BenchmarkSymbol)
	pipelineHandler := NewPipelineHandler(cfg.Portfolio, cfg.Metrics, cfg.Prices)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(metrics.GinMiddleware())
	router.Use(middleware.ErrorHandler())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-API-Key, X-Request-ID")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	v1 := router.Group("/api/v1")

	// The ledger listing reads straight from the database; everything else
	// goes through the facade caches.
	v1.GET("/accounts", accountHandler.ListAccounts)
	v1.GET("/accounts/:id/transactions", accountHandler.ListTransactions)

	facades := v1.Group("", middleware.Serialize(&sync.Mutex{}))
	accounts := facades.Group("/accounts/:id")
	accounts.GET("/positions", portfolioHandler.GetPositions)
	accounts.GET("/positions/:symbol/history", portfolioHandler.GetPositionHistory)
	accounts.GET("/value", portfolioHandler.GetValue)
	accounts.GET("/value/series", portfolioHandler.GetValueSeries)
	accounts.GET("/breakdown", portfolioHandler.GetBreakdown)
	accounts.GET("/cash-flows", portfolioHandler.GetCashFlows)
	accounts.GET("/cash-balance", portfolioHandler.GetCashBalance)
	accounts.GET("/gains", metricsHandler.GetGains)
	accounts.GET("/returns", metricsHandler.GetReturns)
	accounts.GET("/risk", metricsHandler.GetRisk)
	accounts.GET("/dividends", metricsHandler.GetDividends)

	pipeline := facades.Group("", middleware.PipelineAuthMiddleware(cfg.PipelineAPIKey))
	pipeline.POST("/cache/clear", pipelineHandler.ClearCache)
	pipeline.POST("/prices/download", pipelineHandler.DownloadPrices)

	return router
}
