package batch

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics 批量识别指标
type Metrics struct {
	images   *prometheus.CounterVec
	duration prometheus.Histogram
	accuracy prometheus.Histogram
}

// NewMetrics 创建并注册指标
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		images: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "ocreval",
				Subsystem: "batch",
				Name:      "images_total",
				Help:      "Total number of processed images",
			},
			[]string{"status"},
		),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "ocreval",
			Subsystem: "batch",
			Name:      "image_duration_seconds",
			Help:      "Per-image preprocessing + inference + decoding time",
			Buckets:   prometheus.DefBuckets,
		}),
		accuracy: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "ocreval",
			Subsystem: "batch",
			Name:      "accuracy_percent",
			Help:      "Edit-distance accuracy of scored images",
			Buckets:   prometheus.LinearBuckets(0, 10, 11),
		}),
	}
	if reg != nil {
		reg.MustRegister(m.images, m.duration, m.accuracy)
	}
	return m
}

func (m *Metrics) observe(r ImageResult) {
	if m == nil {
		return
	}
	status := "ok"
	if !r.OK() {
		status = "error"
	}
	m.images.WithLabelValues(status).Inc()
	m.duration.Observe(r.Duration.Seconds())
	if r.Accuracy != nil {
		m.accuracy.Observe(*r.Accuracy)
	}
}
