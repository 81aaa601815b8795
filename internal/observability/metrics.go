package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce          sync.Once
	gatewayRequestsTotal  *prometheus.CounterVec
	gatewayLatencySeconds *prometheus.HistogramVec
	remoteCallsTotal      *prometheus.CounterVec
	auditDropsTotal       prometheus.Counter
	uploadRequestsTotal   *prometheus.CounterVec
	uploadRejectedTotal   *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors used by the gateway.
func RegisterMetrics() {
	registerOnce.Do(func() {
		gatewayRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gateway_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		gatewayLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "gateway_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		remoteCallsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "moodle_remote_calls_total",
			Help: "Total number of outbound Moodle web-service calls by outcome.",
		}, []string{"wsfunction", "outcome"})

		auditDropsTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "audit_log_drops_total",
			Help: "Total number of audit log writes dropped after a persistence failure.",
		})

		uploadRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "submission_uploads_total",
			Help: "Total number of accepted submission uploads by detected type.",
		}, []string{"mime"})

		uploadRejectedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "submission_uploads_rejected_total",
			Help: "Total number of rejected submission uploads by reason.",
		}, []string{"reason"})

		prometheus.MustRegister(
			gatewayRequestsTotal, gatewayLatencySeconds, remoteCallsTotal,
			auditDropsTotal, uploadRequestsTotal, uploadRejectedTotal,
		)
	})
}

// GatewayRequests exposes the counter for served requests.
func GatewayRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return gatewayRequestsTotal
}

// GatewayLatency exposes the latency histogram for served requests.
func GatewayLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return gatewayLatencySeconds
}

// RemoteCalls exposes the counter for outbound Moodle calls.
func RemoteCalls() *prometheus.CounterVec {
	RegisterMetrics()
	return remoteCallsTotal
}

// AuditDrops exposes the counter for swallowed audit write failures.
func AuditDrops() prometheus.Counter {
	RegisterMetrics()
	return auditDropsTotal
}

// UploadRequests exposes the counter for accepted submission uploads.
func UploadRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return uploadRequestsTotal
}

// UploadRejected exposes the counter for rejected submission uploads.
func UploadRejected() *prometheus.CounterVec {
	RegisterMetrics()
	return uploadRejectedTotal
}
