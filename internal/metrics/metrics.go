package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
)

var (
	// HTTPRequestsTotal 记录 HTTP 请求总量
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration 记录 HTTP 请求耗时
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency distributions.",
			Buckets: []float64{0.1, 0.3, 0.5, 1.0, 2.0, 5.0},
		},
		[]string{"method", "path"},
	)
)

// 业务指标
var (
	DonationsInitiated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ngo_donations_initiated_total",
		Help: "Donations submitted and registered with the payment gateway.",
	}, []string{"cause"})

	DonationsCompleted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ngo_donations_completed_total",
		Help: "Donations confirmed by a verified gateway callback.",
	}, []string{"cause"})

	DonationsCancelled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ngo_donations_cancelled_total",
		Help: "Pending donations cancelled by the donor.",
	})

	DonationAmount = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ngo_donation_amount_total",
		Help: "Sum of completed donation amounts in major currency units.",
	}, []string{"cause"})

	SignatureFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ngo_payment_signature_failures_total",
		Help: "Payment callbacks rejected by signature verification.",
	})

	GatewayErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ngo_payment_gateway_errors_total",
		Help: "Failed order creation calls.",
	})

	ProfileSyncFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ngo_profile_sync_failures_total",
		Help: "Profile updates that failed after a completed donation.",
	})

	PendingDonations = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "ngo_stale_pending_donations",
		Help: "Pending donations older than the alert age, as of the last scan.",
	})

	NotificationsSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ngo_notifications_total",
		Help: "Notification emails by kind and result.",
	}, []string{"kind", "result"})
)

// ObserveCompleted 记录一笔完成的捐款
func ObserveCompleted(cause string, amount decimal.Decimal) {
	DonationsCompleted.WithLabelValues(cause).Inc()
	DonationAmount.WithLabelValues(cause).Add(amount.InexactFloat64())
}

// PrometheusMiddleware returns a gin middleware for monitoring
func PrometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.FullPath() // 使用路由模板 /api/v1/jobs/:id 而不是具体路径

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		if path != "" { // 忽略 404 等未匹配路由
			HTTPRequestsTotal.WithLabelValues(c.Request.Method, path, status).Inc()
			HTTPRequestDuration.WithLabelValues(c.Request.Method, path).Observe(duration)
		}
	}
}

// Handler /metrics
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
