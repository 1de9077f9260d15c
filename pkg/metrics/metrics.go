// Package metrics defines the prometheus instrumentation surface.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gin-gonic/gin"
)

var (
	// HTTPRequestsTotal counts requests by method, route and status code.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	// HTTPRequestDuration observes request latency by method and route.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// LedgerPostingsTotal counts ledger postings by outcome.
	LedgerPostingsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_postings_total",
			Help: "Total number of ledger postings attempted",
		},
		[]string{"outcome"},
	)

	// TransactionsTotal counts business transactions by type and status.
	TransactionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bank_transactions_total",
			Help: "Total number of business transactions processed",
		},
		[]string{"type", "status"},
	)

	// LedgerBalanced reports the last integrity check result: 1 when the
	// global debit and credit totals agree, 0 otherwise.
	LedgerBalanced = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ledger_integrity_balanced",
			Help: "Whether the last ledger integrity check was balanced",
		},
	)
)

// Handler returns the /metrics endpoint handler.
func Handler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
