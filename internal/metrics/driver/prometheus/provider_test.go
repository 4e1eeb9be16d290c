package prometheus

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/songzhibin97/metricsd/pkg/metrics"
)

func newTestProvider(t *testing.T) *PrometheusProvider {
	t.Helper()

	provider, err := NewProvider(Options{})
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}
	return provider
}

func TestPrometheusProvider_NewCounterVec(t *testing.T) {
	provider := newTestProvider(t)

	counterVec, err := provider.NewCounterVec(metrics.MetricOptions{
		Name:   "http_requests_total",
		Help:   "Total HTTP requests",
		Labels: []string{"method", "status"},
	})
	if err != nil {
		t.Fatalf("Failed to create counter vector: %v", err)
	}

	counter1, err := counterVec.With(map[string]string{"method": "GET", "status": "200"})
	if err != nil {
		t.Fatalf("Failed to get counter: %v", err)
	}
	counter1.Add(1)
	counter1.Add(2.0)

	if got := counter1.Value(); got != 3.0 {
		t.Errorf("Expected counter value 3.0, got %f", got)
	}

	if _, err := counterVec.With(map[string]string{"method": "GET"}); err == nil {
		t.Error("Expected error for incomplete label set")
	}

	if got := counterVec.LabelNames(); len(got) != 2 || got[0] != "method" {
		t.Errorf("Unexpected label names: %v", got)
	}
}

func TestPrometheusProvider_DeduplicatesByName(t *testing.T) {
	provider := newTestProvider(t)

	first, err := provider.NewCounterVec(metrics.MetricOptions{
		Name:   "requests_total",
		Help:   "first",
		Labels: []string{"route"},
	})
	if err != nil {
		t.Fatalf("Failed to create counter vector: %v", err)
	}

	second, err := provider.NewCounterVec(metrics.MetricOptions{
		Name:   "requests_total",
		Help:   "second",
		Labels: []string{"other"},
	})
	if err != nil {
		t.Fatalf("Expected second creation to reuse the vector, got %v", err)
	}

	if first != second {
		t.Fatal("Expected the same vector for the same name")
	}
	if got := second.LabelNames(); len(got) != 1 || got[0] != "route" {
		t.Errorf("Expected label names of the first declaration, got %v", got)
	}
}

func TestPrometheusProvider_KindMismatch(t *testing.T) {
	provider := newTestProvider(t)

	if _, err := provider.NewCounterVec(metrics.MetricOptions{Name: "shared"}); err != nil {
		t.Fatalf("Failed to create counter vector: %v", err)
	}

	_, err := provider.NewHistogramVec(metrics.MetricOptions{Name: "shared"})
	if !errors.Is(err, metrics.ErrKindMismatch) {
		t.Fatalf("Expected ErrKindMismatch, got %v", err)
	}
	if !metrics.IsRegistrationError(err) {
		t.Errorf("Expected a RegistrationError, got %T", err)
	}

	_, err = provider.NewGaugeVec(metrics.MetricOptions{Name: "shared"})
	if !errors.Is(err, metrics.ErrKindMismatch) {
		t.Fatalf("Expected ErrKindMismatch for gauge, got %v", err)
	}

	if kind, ok := provider.Lookup("shared"); !ok || kind != metrics.CounterType {
		t.Errorf("Lookup() = %v, %v, want counter, true", kind, ok)
	}
}

func TestPrometheusProvider_InvalidOptions(t *testing.T) {
	provider := newTestProvider(t)

	if _, err := provider.NewCounterVec(metrics.MetricOptions{Name: "bad-name"}); !errors.Is(err, metrics.ErrInvalidName) {
		t.Errorf("Expected ErrInvalidName, got %v", err)
	}

	if _, err := provider.NewGaugeVec(metrics.MetricOptions{Name: "ok", Labels: []string{"a", "a"}}); !errors.Is(err, metrics.ErrInvalidLabel) {
		t.Errorf("Expected ErrInvalidLabel, got %v", err)
	}

	_, err := provider.NewHistogramVec(metrics.MetricOptions{Name: "latency", Buckets: []float64{1, 0.5}})
	if !errors.Is(err, metrics.ErrInvalidBuckets) {
		t.Errorf("Expected ErrInvalidBuckets, got %v", err)
	}
	if _, ok := provider.Lookup("latency"); ok {
		t.Error("Rejected histogram must not be registered")
	}
}

func TestPrometheusProvider_NewHistogramVec(t *testing.T) {
	provider := newTestProvider(t)

	histogramVec, err := provider.NewHistogramVec(metrics.MetricOptions{
		Name:    "request_duration_seconds",
		Help:    "Request duration in seconds",
		Labels:  []string{"route"},
		Buckets: []float64{0.1, 0.5, 1.0},
	})
	if err != nil {
		t.Fatalf("Failed to create histogram vector: %v", err)
	}

	histogram, err := histogramVec.With(map[string]string{"route": "/"})
	if err != nil {
		t.Fatalf("Failed to get histogram: %v", err)
	}
	histogram.Observe(0.05)
	histogram.Observe(0.7)

	count, sum := histogram.Snapshot()
	if count != 2 {
		t.Errorf("Expected count 2, got %d", count)
	}
	if sum != 0.75 {
		t.Errorf("Expected sum 0.75, got %f", sum)
	}

	buckets := histogram.Buckets()
	if len(buckets) != 3 {
		t.Fatalf("Expected 3 buckets, got %d", len(buckets))
	}
	if buckets[0].Count != 1 || buckets[2].Count != 2 {
		t.Errorf("Unexpected cumulative bucket counts: %+v", buckets)
	}
}

func TestPrometheusProvider_AdoptsExistingCollector(t *testing.T) {
	provider := newTestProvider(t)

	existing := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "adopted_total",
		Help: "adopted_total",
	}, []string{"route"})
	provider.Registry().MustRegister(existing)

	counterVec, err := provider.NewCounterVec(metrics.MetricOptions{
		Name:   "adopted_total",
		Labels: []string{"route"},
	})
	if err != nil {
		t.Fatalf("Expected existing collector to be adopted, got %v", err)
	}

	counter, err := counterVec.With(map[string]string{"route": "/x"})
	if err != nil {
		t.Fatalf("Failed to get counter: %v", err)
	}
	counter.Add(4)

	if got := testutil.ToFloat64(existing.WithLabelValues("/x")); got != 4 {
		t.Errorf("Expected adopted counter value 4, got %f", got)
	}
}

func TestPrometheusProvider_DefaultLabels(t *testing.T) {
	provider := newTestProvider(t)

	counterVec, err := provider.NewCounterVec(metrics.MetricOptions{
		Name:   "requests_total",
		Help:   "Total requests",
		Labels: []string{"route"},
	})
	if err != nil {
		t.Fatalf("Failed to create counter vector: %v", err)
	}

	if err := provider.SetDefaultLabels(map[string]string{"route": "default", "zone": "eu"}); err != nil {
		t.Fatalf("Failed to set default labels: %v", err)
	}

	counter, _ := counterVec.With(map[string]string{"route": "/a"})
	counter.Add(1)

	expected := `
# HELP requests_total Total requests
# TYPE requests_total counter
requests_total{route="/a",zone="eu"} 1
`
	if err := testutil.GatherAndCompare(provider.Gatherer(), strings.NewReader(expected), "requests_total"); err != nil {
		t.Fatalf("Unexpected gathered output: %v", err)
	}

	if err := provider.SetDefaultLabels(map[string]string{"bad-name": "x"}); !errors.Is(err, metrics.ErrInvalidLabel) {
		t.Errorf("Expected ErrInvalidLabel, got %v", err)
	}
}

func TestPrometheusProvider_EnableDefaultMetrics(t *testing.T) {
	provider := newTestProvider(t)

	if err := provider.EnableDefaultMetrics(); err != nil {
		t.Fatalf("Failed to enable default metrics: %v", err)
	}
	if err := provider.EnableDefaultMetrics(); err != nil {
		t.Fatalf("Second call should be a no-op, got %v", err)
	}

	families, err := provider.Gather()
	if err != nil {
		t.Fatalf("Failed to gather: %v", err)
	}

	found := false
	for _, family := range families {
		if family.Name == "go_goroutines" {
			found = true
		}
	}
	if !found {
		t.Error("Expected go_goroutines among gathered families")
	}
}

func TestPrometheusProvider_WriteText(t *testing.T) {
	provider := newTestProvider(t)

	gaugeVec, err := provider.NewGaugeVec(metrics.MetricOptions{
		Name:   "last_duration_seconds",
		Labels: []string{"route"},
	})
	if err != nil {
		t.Fatalf("Failed to create gauge vector: %v", err)
	}
	gauge, _ := gaugeVec.With(map[string]string{"route": "/"})
	gauge.Set(1e-8)

	var buf bytes.Buffer
	if err := provider.WriteText(&buf); err != nil {
		t.Fatalf("Failed to write text: %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"# HELP last_duration_seconds last_duration_seconds",
		"# TYPE last_duration_seconds gauge",
		`last_duration_seconds{route="/"} 1e-08`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected output to contain %q, got:\n%s", want, out)
		}
	}
}

func TestPrometheusProvider_Namespace(t *testing.T) {
	provider, err := NewProvider(Options{Namespace: "app", Subsystem: "http"})
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	if _, err := provider.NewCounterVec(metrics.MetricOptions{Name: "requests_total"}); err != nil {
		t.Fatalf("Failed to create counter vector: %v", err)
	}

	families, err := provider.Gather()
	if err != nil {
		t.Fatalf("Failed to gather: %v", err)
	}
	// Vectors without children are not gathered
	if len(families) != 0 {
		t.Errorf("Expected no families before first observation, got %d", len(families))
	}

	if kind, ok := provider.Lookup("requests_total"); !ok || kind != metrics.CounterType {
		t.Errorf("Lookup() = %v, %v", kind, ok)
	}
}

func TestPrometheusProvider_AdoptWrongType(t *testing.T) {
	provider := newTestProvider(t)

	provider.Registry().MustRegister(prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "inflight",
		Help: "inflight",
	}, []string{"route"}))

	_, err := provider.NewCounterVec(metrics.MetricOptions{Name: "inflight", Labels: []string{"route"}})
	if !errors.Is(err, metrics.ErrKindMismatch) {
		t.Fatalf("Expected ErrKindMismatch, got %v", err)
	}
	if _, ok := provider.Lookup("inflight"); ok {
		t.Error("A collector of the wrong type must not be adopted")
	}
}

func TestPrometheusProvider_ConstLabels(t *testing.T) {
	if _, err := NewProvider(Options{ConstLabels: map[string]string{"__bad": "x"}}); !errors.Is(err, metrics.ErrInvalidLabel) {
		t.Fatalf("Expected ErrInvalidLabel, got %v", err)
	}

	provider, err := NewProvider(Options{ConstLabels: map[string]string{"service": "api"}})
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	counterVec, err := provider.NewCounterVec(metrics.MetricOptions{Name: "jobs_total", Help: "Jobs"})
	if err != nil {
		t.Fatalf("Failed to create counter vector: %v", err)
	}
	counter, _ := counterVec.With(map[string]string{})
	counter.Add(2)

	expected := `
# HELP jobs_total Jobs
# TYPE jobs_total counter
jobs_total{service="api"} 2
`
	if err := testutil.GatherAndCompare(provider.Registry(), strings.NewReader(expected), "jobs_total"); err != nil {
		t.Fatalf("Unexpected gathered output: %v", err)
	}
}

func TestFactory_Create(t *testing.T) {
	provider, err := metrics.NewProvider(DriverName, metrics.ProviderOptions{})
	if err != nil {
		t.Fatalf("Failed to create provider through factory: %v", err)
	}
	if provider.Name() != DriverName {
		t.Errorf("Expected provider name %s, got %s", DriverName, provider.Name())
	}

	other, err := metrics.NewProvider("", metrics.ProviderOptions{})
	if err != nil {
		t.Fatalf("Failed to create default provider: %v", err)
	}
	if other == provider {
		t.Error("Expected a fresh provider per Create call")
	}

	found := false
	for _, name := range metrics.Factories() {
		if name == DriverName {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected %s among registered factories %v", DriverName, metrics.Factories())
	}

	if _, err := metrics.NewProvider("statsd", metrics.ProviderOptions{}); !errors.Is(err, metrics.ErrUnknownFactory) {
		t.Errorf("Expected ErrUnknownFactory, got %v", err)
	}
}
