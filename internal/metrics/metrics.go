// Package metrics provides Prometheus instrumentation for the engine.
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

var (
	// RefreshDuration tracks one full feed refresh cycle.
	RefreshDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "yn_refresh_duration_seconds",
		Help:    "Feed refresh cycle duration in seconds",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	})

	// RefreshMatches reports the match count of the last accepted refresh.
	RefreshMatches = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "yn_refresh_matches",
		Help: "Matches published by the last refresh",
	})

	// ProviderErrors counts failed provider polls.
	ProviderErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "yn_provider_errors_total",
		Help: "Failed feed provider fetches",
	}, []string{"provider"})

	// OrdersTotal counts placed orders by side.
	OrdersTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "yn_orders_total",
		Help: "Orders placed",
	}, []string{"side"})

	// OrdersRejected counts rejected orders by rejection code.
	OrdersRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "yn_orders_rejected_total",
		Help: "Orders rejected",
	}, []string{"code"})

	// PositionsClosed counts (partial) position closes.
	PositionsClosed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "yn_positions_closed_total",
		Help: "Position close operations",
	})

	// SettlementsTotal counts settled matches.
	SettlementsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "yn_settlements_total",
		Help: "Matches settled",
	})

	// WebSocketClients tracks connected push clients.
	WebSocketClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "yn_websocket_clients",
		Help: "Connected WebSocket clients",
	})

	// HTTPRequestsTotal counts HTTP requests by method, route, and status.
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "yn_http_requests_total",
		Help: "Total HTTP requests",
	}, []string{"method", "path", "status"})

	// HTTPRequestDuration tracks request duration by method and route.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "yn_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
	}, []string{"method", "path"})
)

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware records request metrics. The route pattern is used as the path
// label to keep cardinality bounded; unrouted paths fall back to "unmatched".
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		HTTPRequestsTotal.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		HTTPRequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}
