package monitoring

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.1, 0.5, 1, 2, 5},
		},
		[]string{"method", "endpoint"},
	)

	ReviewsCommitted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "reviews_committed_total",
			Help: "Manual review transactions committed",
		},
	)

	RescoreRuns = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "rescore_runs_total",
			Help: "Rescore operations executed",
		},
	)

	StaleReviewConflicts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "stale_review_conflicts_total",
			Help: "Mutations rejected by the submission version check",
		},
	)

	KeywordFallbacks = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "keyword_fallbacks_total",
			Help: "Answers degraded to manual fallback by keyword config errors",
		},
	)
)

func Init() {
	prometheus.MustRegister(RequestCounter)
	prometheus.MustRegister(RequestDuration)
	prometheus.MustRegister(ReviewsCommitted)
	prometheus.MustRegister(RescoreRuns)
	prometheus.MustRegister(StaleReviewConflicts)
	prometheus.MustRegister(KeywordFallbacks)
}

func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start).Seconds()
		status := c.Writer.Status()

		RequestCounter.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			strconv.Itoa(status),
		).Inc()

		RequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
		).Observe(duration)
	}
}

func PrometheusHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
