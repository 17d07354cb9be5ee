// Package metrics provides Prometheus instrumentation for the fraud scoring service.
package metrics

import (
	"context"
	"database/sql"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTPRequestsTotal counts HTTP requests by method, path, and status.
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fraudscore",
			Name:      "http_requests_total",
			Help:      "Total HTTP requests by method, path pattern, and status code.",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration observes request latency by method and path.
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "fraudscore",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// AssessmentsTotal counts fraud assessments by severity tier.
	AssessmentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fraudscore",
			Name:      "assessments_total",
			Help:      "Total fraud assessments produced, by severity.",
		},
		[]string{"severity"},
	)

	// FraudFlaggedTotal counts assessments that crossed the fraud threshold.
	FraudFlaggedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "fraudscore",
		Name:      "fraud_flagged_total",
		Help:      "Total transactions flagged as fraud.",
	})

	// RuleHitsTotal counts individual rule triggers by rule name.
	RuleHitsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fraudscore",
			Name:      "rule_hits_total",
			Help:      "Total scoring rule triggers, by rule.",
		},
		[]string{"rule"},
	)

	// AssessmentScore observes the distribution of assessment scores.
	AssessmentScore = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "fraudscore",
		Name:      "assessment_score",
		Help:      "Distribution of fraud assessment scores.",
		Buckets:   []float64{0, 10, 20, 30, 40, 50, 60, 70, 85, 100, 120},
	})

	// TransactionsRecordedTotal counts recorded transactions by type.
	TransactionsRecordedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fraudscore",
			Name:      "transactions_recorded_total",
			Help:      "Total transactions recorded, by type.",
		},
		[]string{"type"},
	)

	// ActiveWebSocketClients tracks connected alert-stream clients.
	ActiveWebSocketClients = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "fraudscore",
			Name:      "active_websocket_clients",
			Help:      "Number of currently connected alert-stream clients.",
		},
	)

	// DBOpenConnections tracks open database connections.
	DBOpenConnections = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "fraudscore", Name: "db_open_connections",
		Help: "Number of open database connections.",
	})
	// DBIdleConnections tracks idle database connections.
	DBIdleConnections = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "fraudscore", Name: "db_idle_connections",
		Help: "Number of idle database connections.",
	})
	// DBInUseConnections tracks in-use database connections.
	DBInUseConnections = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "fraudscore", Name: "db_in_use_connections",
		Help: "Number of in-use database connections.",
	})
	// GoroutineCount tracks the current number of goroutines.
	GoroutineCount = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "fraudscore", Name: "goroutines",
		Help: "Current number of goroutines.",
	})
)

func init() {
	prometheus.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		AssessmentsTotal,
		FraudFlaggedTotal,
		RuleHitsTotal,
		AssessmentScore,
		TransactionsRecordedTotal,
		ActiveWebSocketClients,
		DBOpenConnections,
		DBIdleConnections,
		DBInUseConnections,
		GoroutineCount,
	)
}

// StartDBStatsCollector periodically samples sql.DBStats and runtime goroutine
// count into Prometheus gauges. Call in a goroutine; exits when ctx is done.
func StartDBStatsCollector(ctx context.Context, db *sql.DB, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			stats := db.Stats()
			DBOpenConnections.Set(float64(stats.OpenConnections))
			DBIdleConnections.Set(float64(stats.Idle))
			DBInUseConnections.Set(float64(stats.InUse))
			GoroutineCount.Set(float64(runtime.NumGoroutine()))
		}
	}
}

// RecordAssessment updates the scoring metrics for one assessment.
func RecordAssessment(severity string, score int, fraud bool, rules []string) {
	AssessmentsTotal.WithLabelValues(severity).Inc()
	AssessmentScore.Observe(float64(score))
	if fraud {
		FraudFlaggedTotal.Inc()
	}
	for _, r := range rules {
		RuleHitsTotal.WithLabelValues(r).Inc()
	}
}

// Middleware returns a gin middleware that records request metrics.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		timer := prometheus.NewTimer(HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(), // Route pattern, not actual path (avoids cardinality explosion)
		))

		c.Next()

		timer.ObserveDuration()
		HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			statusBucket(c.Writer.Status()),
		).Inc()
	}
}

// Handler returns the Prometheus metrics HTTP handler for the /metrics endpoint.
func Handler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}

// statusBucket groups HTTP status codes into buckets (2xx, 3xx, 4xx, 5xx).
func statusBucket(code int) string {
	switch {
	case code < 200:
		return "1xx"
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}
