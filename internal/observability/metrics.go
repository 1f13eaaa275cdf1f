// Package observability holds Prometheus metric definitions and helpers.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"gorm.io/gorm"
)

var (
	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "elfatih_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "elfatih_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// FeedbackEvents counts feedback writes by action and sign.
	FeedbackEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "elfatih_feedback_events_total",
		Help: "Total number of post feedback events by action and sign",
	}, []string{"action", "sign"})

	// ImagesProcessed counts image pipeline runs by target and output format.
	ImagesProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "elfatih_images_processed_total",
		Help: "Total number of images processed by target and output format",
	}, []string{"target", "format"})

	// ImageProcessingLatency records the latency of the decode/resize/encode pipeline.
	ImageProcessingLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "elfatih_image_processing_latency_seconds",
		Help:    "Image processing latency in seconds",
		Buckets: prometheus.DefBuckets,
	})

	// QRCodesGenerated counts device QR code generations.
	QRCodesGenerated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "elfatih_qr_codes_generated_total",
		Help: "Total number of device QR codes generated",
	})

	// AuthEvents counts authentication outcomes.
	AuthEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "elfatih_auth_events_total",
		Help: "Total number of authentication events by kind and outcome",
	}, []string{"kind", "outcome"})
)

// DatabaseMetrics wraps DB access for recording query latency.
type DatabaseMetrics struct {
	db *gorm.DB
}

// NewDatabaseMetrics returns a new DatabaseMetrics instance.
func NewDatabaseMetrics(db *gorm.DB) *DatabaseMetrics {
	return &DatabaseMetrics{db: db}
}

// ObserveQuery records the latency of a database query.
func (m *DatabaseMetrics) ObserveQuery(operation, table string, start time.Time) {
	latency := time.Since(start).Seconds()
	DatabaseQueryLatency.WithLabelValues(operation, table).Observe(latency)
}

// TrackQuery returns a function that records query latency when called (e.g. defer).
func (m *DatabaseMetrics) TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		m.ObserveQuery(operation, table, start)
	}
}
