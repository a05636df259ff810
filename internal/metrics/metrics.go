package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Notification outcome label values.
const (
	OutcomeSent   = "sent"
	OutcomeFailed = "failed"
)

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
	HTTPRequestsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Current number of HTTP requests in flight",
		},
	)

	// CouponsIssued counts newly created coupons.
	CouponsIssued = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "coupons_issued_total",
			Help: "Total number of coupons created by issuance",
		},
	)
	// CouponsReused counts issuance calls answered with an existing active coupon.
	CouponsReused = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "coupons_reused_total",
			Help: "Total number of issuance requests answered with an existing active coupon",
		},
	)
	CodeCollisions = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "coupon_code_collisions_total",
			Help: "Total number of generated coupon codes rejected as duplicates",
		},
	)
	Notifications = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coupon_notifications_total",
			Help: "Total number of coupon notification attempts by outcome",
		},
		[]string{"outcome"},
	)
)

// Register adds the HTTP and coupon collectors plus the Go and process collectors to reg.
func Register(reg prometheus.Registerer) {
	reg.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		HTTPRequestsInFlight,
		CouponsIssued,
		CouponsReused,
		CodeCollisions,
		Notifications,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}
