// Package metrics holds the Prometheus collectors of the auth backend.
package metrics

import (
	"net/http"

	"Backend-PMS/src/models"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeError   = "error"
)

// Metrics is safe to use as a nil pointer; every method becomes a no-op.
type Metrics struct {
	gatherer      prometheus.Gatherer
	authOps       *prometheus.CounterVec
	auditFailures prometheus.Counter
	resumeBytes   prometheus.Histogram
}

// New registers the collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		gatherer: reg,
		authOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pms",
			Name:      "auth_operations_total",
			Help:      "Auth operations by operation, role and outcome.",
		}, []string{"operation", "role", "outcome"}),
		auditFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "pms",
			Name:      "activity_record_failures_total",
			Help:      "Login events that could not be written.",
		}),
		resumeBytes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "pms",
			Name:      "resume_upload_bytes",
			Help:      "Size of accepted resume uploads.",
			Buckets:   prometheus.ExponentialBuckets(16*1024, 4, 7),
		}),
	}
	reg.MustRegister(
		m.authOps,
		m.auditFailures,
		m.resumeBytes,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// AuthOperation counts one register/login/forgot/reset/update/resolve call.
func (m *Metrics) AuthOperation(operation string, role models.Role, outcome string) {
	if m == nil {
		return
	}
	m.authOps.WithLabelValues(operation, string(role), outcome).Inc()
}

// AuditFailure counts a dropped login event.
func (m *Metrics) AuditFailure() {
	if m == nil {
		return
	}
	m.auditFailures.Inc()
}

// ResumeUploaded observes the raw size of an accepted resume.
func (m *Metrics) ResumeUploaded(size int) {
	if m == nil {
		return
	}
	m.resumeBytes.Observe(float64(size))
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// Gatherer exposes the registry for tests.
func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.gatherer
}
