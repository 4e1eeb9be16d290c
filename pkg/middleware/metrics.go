package middleware

import (
	"net/http"
	"time"

	"github.com/songzhibin97/metricsd/pkg/metrics"
	"github.com/songzhibin97/metricsd/pkg/metrics/handle"
)

// RequestMetricsConfig configures the constant parts of the request labels
type RequestMetricsConfig struct {
	// Source identifies the calling side, usually left empty for servers
	Source string `yaml:"source" json:"source"`

	// Destination identifies the serving side, usually the service name
	Destination string `yaml:"destination" json:"destination"`

	// Mechanism labels HTTP requests, MechanismHTTP when empty
	Mechanism metrics.RequestMechanism `yaml:"mechanism" json:"mechanism"`
}

// RequestMetrics records requests_total and request_latency_seconds for
// served requests
type RequestMetrics struct {
	config   RequestMetricsConfig
	requests *handle.Counter
	latency  *handle.Histogram
}

// NewRequestMetrics creates request tracking on top of existing handles,
// typically the standard metrics of an exporter.Service
func NewRequestMetrics(requests *handle.Counter, latency *handle.Histogram, config RequestMetricsConfig) *RequestMetrics {
	if config.Mechanism == "" {
		config.Mechanism = metrics.MechanismHTTP
	}

	return &RequestMetrics{
		config:   config,
		requests: requests,
		latency:  latency,
	}
}

// Name returns the middleware name
func (m *RequestMetrics) Name() string {
	return "request_metrics"
}

// Handle implements Middleware
func (m *RequestMetrics) Handle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapper := &metricsResponseWrapper{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(wrapper, r)

		labels := metrics.RequestLabels{
			Status:      metrics.StatusSuccessful,
			Mechanism:   m.config.Mechanism,
			StatusCode:  wrapper.statusCode,
			Source:      m.config.Source,
			Destination: m.config.Destination,
			Route:       getRoute(r),
		}
		if wrapper.statusCode >= 400 {
			labels.Status = metrics.StatusFailed
			labels.ErrorType = getErrorType(wrapper.statusCode)
		}

		m.record(labels.Labels(), time.Since(start))
	})
}

func (m *RequestMetrics) record(labels metrics.Labels, elapsed time.Duration) {
	m.requests.Increment(labels)
	m.latency.ObserveSeconds(labels, elapsed)
}

// getRoute returns the route recorded in the context, falling back to the path
func getRoute(r *http.Request) string {
	if route, ok := RouteFromContext(r.Context()); ok {
		return route
	}

	path := r.URL.Path
	if path == "" {
		path = "/"
	}
	return path
}

// getErrorType categorizes HTTP status codes into error types
func getErrorType(statusCode int) string {
	switch {
	case statusCode >= 400 && statusCode < 500:
		return "client_error"
	case statusCode >= 500:
		return "server_error"
	default:
		return ""
	}
}

// metricsResponseWrapper wraps http.ResponseWriter to capture the status code
type metricsResponseWrapper struct {
	http.ResponseWriter
	statusCode  int
	wroteHeader bool
}

func (rw *metricsResponseWrapper) WriteHeader(code int) {
	if !rw.wroteHeader {
		rw.statusCode = code
		rw.wroteHeader = true
		rw.ResponseWriter.WriteHeader(code)
	}
}

func (rw *metricsResponseWrapper) Write(b []byte) (int, error) {
	if !rw.wroteHeader {
		rw.WriteHeader(http.StatusOK)
	}
	return rw.ResponseWriter.Write(b)
}

// Unwrap exposes the underlying writer to http.ResponseController
func (rw *metricsResponseWrapper) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}
