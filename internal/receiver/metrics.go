package receiver

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricsNamespace = "zigzag_receiver"

// metrics are per server so several receivers can live in one process
type metrics struct {
	registry    *prometheus.Registry
	uploads     *prometheus.CounterVec
	reportBytes prometheus.Histogram
}

func newMetrics() *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		uploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "uploads_total",
			Help:      "Count of upload requests by result",
		}, []string{
			"project_id",
			"result",
		}),
		reportBytes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "report_bytes",
			Help:      "Size of accepted test logs",
			Buckets:   prometheus.ExponentialBuckets(1024, 4, 8),
		}),
	}
	m.registry.MustRegister(m.uploads, m.reportBytes)
	return m
}

func (m *metrics) recordUpload(projectID, result string, size int) {
	m.uploads.WithLabelValues(projectID, result).Inc()
	if result == "accepted" {
		m.reportBytes.Observe(float64(size))
	}
}

func (m *metrics) handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}
