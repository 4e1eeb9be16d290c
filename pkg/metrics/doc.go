// Package metrics defines the backend-neutral metrics API used by metricsd.
//
// A Provider owns a registry of named metric vectors. Vectors are created
// idempotently by name, so independent callers asking for "requests_total"
// share one series set. Concrete providers live under
// internal/metrics/driver and register themselves through RegisterFactory:
//
//	import _ "github.com/songzhibin97/metricsd/internal/metrics/driver/prometheus"
//
//	provider, err := metrics.NewProvider("prometheus", metrics.ProviderOptions{})
//
// Callers normally record through the handles in package handle, which
// accept raw Labels, run them through a Sanitizer and resolve them against
// the vector's declared label names.
//
// SanitizeRequestLabels implements the request-tracking conventions:
//
//	metrics.SanitizeRequestLabels(metrics.Labels{
//		"status":     "failed",
//		"statusCode": "not-a-number", // dropped
//		"errorType":  nil,            // dropped
//	})
package metrics
