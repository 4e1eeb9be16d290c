package prometheus

import (
	"github.com/songzhibin97/metricsd/pkg/metrics"
)

// DriverName is the factory name the driver registers under
const DriverName = "prometheus"

func init() {
	metrics.RegisterFactory(DriverName, Create)
}

// Create is the metrics.Factory of the driver. Every provider gets its own
// registry.
func Create(opts metrics.ProviderOptions) (metrics.Provider, error) {
	return NewProvider(Options{
		Namespace:   opts.Namespace,
		Subsystem:   opts.Subsystem,
		ConstLabels: opts.ConstLabels,
	})
}
