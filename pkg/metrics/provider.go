package metrics

import "io"

// Provider is the registry every metric handle is created against.
//
// Vector constructors are idempotent per name: asking twice for a counter
// named "requests_total" returns the vector created the first time, and the
// options of the second call are ignored. Asking for an existing name with a
// different metric type fails with ErrKindMismatch.
type Provider interface {
	// NewCounterVec creates or returns the counter vector with the given name
	NewCounterVec(opts MetricOptions) (CounterVec, error)

	// NewGaugeVec creates or returns the gauge vector with the given name
	NewGaugeVec(opts MetricOptions) (GaugeVec, error)

	// NewHistogramVec creates or returns the histogram vector with the given name
	NewHistogramVec(opts MetricOptions) (HistogramVec, error)

	// Lookup reports the type a name is registered under
	Lookup(name string) (MetricType, bool)

	// SetDefaultLabels attaches labels to every series rendered by the provider
	// that does not already carry a label of the same name
	SetDefaultLabels(labels map[string]string) error

	// EnableDefaultMetrics registers the runtime and process collectors
	EnableDefaultMetrics() error

	// Gather returns a snapshot of all registered metric families
	Gather() ([]*MetricFamily, error)

	// WriteText renders all registered metrics in the text exposition format
	WriteText(w io.Writer) error

	// Name returns the provider name
	Name() string
}

// Factory builds a provider backend from options. Every call returns a
// provider with its own registry.
type Factory func(opts ProviderOptions) (Provider, error)
