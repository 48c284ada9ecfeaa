package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "image_backend"

const (
	UploadCreated  = "created"
	UploadRejected = "rejected"
	UploadFailed   = "failed"
)

// Metrics is safe to use as a nil pointer; every method is then a no-op.
type Metrics struct {
	uploads            *prometheus.CounterVec
	normalizeDuration  *prometheus.HistogramVec
	blobDeleteFailures prometheus.Counter
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		uploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "uploads_total",
			Help:      "Image uploads by outcome.",
		}, []string{"result"}),
		normalizeDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "normalize_duration_seconds",
			Help:      "Time spent normalizing uploaded images.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12),
		}, []string{"action"}),
		blobDeleteFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "blob_delete_failures_total",
			Help:      "Best-effort blob deletions that failed.",
		}),
	}

	reg.MustRegister(m.uploads, m.normalizeDuration, m.blobDeleteFailures)

	return m
}

func (m *Metrics) Upload(result string) {
	if m == nil {
		return
	}
	m.uploads.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveNormalize(action string, d time.Duration) {
	if m == nil {
		return
	}
	m.normalizeDuration.WithLabelValues(action).Observe(d.Seconds())
}

func (m *Metrics) BlobDeleteFailed() {
	if m == nil {
		return
	}
	m.blobDeleteFailures.Inc()
}
