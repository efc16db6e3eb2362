// Package metrics provides Prometheus instrumentation for Finarius.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Price lookup results.
const (
	PriceHit        = "hit"
	PriceDownloaded = "downloaded"
	PriceAbsent     = "absent"
	PriceError      = "error"
)

var (
	// CacheRequestsTotal counts facade memoization lookups, partitioned by facade and hit/miss.
	CacheRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "finarius_metrics_cache_requests_total",
		Help: "Facade cache lookups by result",
	}, []string{"facade", "result"})

	// PriceLookupsTotal counts price resolutions by source and outcome.
	PriceLookupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "finarius_price_lookups_total",
		Help: "Price lookups by source and result",
	}, []string{"source", "result"})

	// PriceDownloadDuration tracks time spent fetching prices from the market data source.
	PriceDownloadDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "finarius_price_download_duration_seconds",
		Help:    "Price download latency in seconds",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	})

	// HTTPRequestsTotal counts HTTP requests by method, route, and status.
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "finarius_http_requests_total",
		Help: "Total HTTP requests",
	}, []string{"method", "path", "status"})

	// HTTPRequestDuration tracks request duration by method and route.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "finarius_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 5.0},
	}, []string{"method", "path"})
)

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// GinMiddleware records request count and latency per matched route.
func GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		// Route pattern keeps label cardinality bounded.
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		HTTPRequestsTotal.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		HTTPRequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}
