package prometheus

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/common/expfmt"

	"github.com/songzhibin97/metricsd/pkg/metrics"
)

// PrometheusProvider implements metrics.Provider on a prometheus.Registry
type PrometheusProvider struct {
	registry    *prometheus.Registry
	gatherer    *defaultLabelGatherer
	namespace   string
	subsystem   string
	constLabels prometheus.Labels

	mu             sync.RWMutex
	vecs           map[string]registered // keyed by fully qualified name
	defaultMetrics bool
}

type registered struct {
	kind metrics.MetricType
	vec  any
}

// Options for creating a PrometheusProvider
type Options struct {
	// Registry defaults to a fresh registry
	Registry    *prometheus.Registry
	Namespace   string
	Subsystem   string
	ConstLabels map[string]string
}

// NewProvider creates a new PrometheusProvider
func NewProvider(opts Options) (*PrometheusProvider, error) {
	if err := metrics.ValidateLabelSet(opts.ConstLabels); err != nil {
		return nil, err
	}

	registry := opts.Registry
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	return &PrometheusProvider{
		registry:    registry,
		gatherer:    newDefaultLabelGatherer(registry),
		namespace:   opts.Namespace,
		subsystem:   opts.Subsystem,
		constLabels: mergeLabels(opts.ConstLabels, nil),
		vecs:        make(map[string]registered),
	}, nil
}

// NewCounterVec creates the counter vector named opts.Name, or returns the
// one created before under that name
func (p *PrometheusProvider) NewCounterVec(opts metrics.MetricOptions) (metrics.CounterVec, error) {
	return register(p, opts, metrics.CounterType,
		func(o prometheus.Opts) prometheus.Collector {
			return prometheus.NewCounterVec(prometheus.CounterOpts(o), opts.Labels)
		},
		counterVec,
	)
}

// NewGaugeVec creates the gauge vector named opts.Name, or returns the one
// created before under that name
func (p *PrometheusProvider) NewGaugeVec(opts metrics.MetricOptions) (metrics.GaugeVec, error) {
	return register(p, opts, metrics.GaugeType,
		func(o prometheus.Opts) prometheus.Collector {
			return prometheus.NewGaugeVec(prometheus.GaugeOpts(o), opts.Labels)
		},
		gaugeVec,
	)
}

// NewHistogramVec creates the histogram vector named opts.Name, or returns
// the one created before under that name. Empty buckets select
// prometheus.DefBuckets.
func (p *PrometheusProvider) NewHistogramVec(opts metrics.MetricOptions) (metrics.HistogramVec, error) {
	buckets := opts.Buckets
	if len(buckets) == 0 {
		buckets = prometheus.DefBuckets
	}

	return register(p, opts, metrics.HistogramType,
		func(o prometheus.Opts) prometheus.Collector {
			return prometheus.NewHistogramVec(prometheus.HistogramOpts{
				Namespace:   o.Namespace,
				Subsystem:   o.Subsystem,
				Name:        o.Name,
				Help:        o.Help,
				ConstLabels: o.ConstLabels,
				Buckets:     buckets,
			}, opts.Labels)
		},
		histogramVec,
	)
}

// register is the shared path of the vector constructors. A collector that
// was put on the registry directly under the same name is adopted when it
// has the requested type.
func register[M any](
	p *PrometheusProvider,
	opts metrics.MetricOptions,
	kind metrics.MetricType,
	build func(prometheus.Opts) prometheus.Collector,
	adapt func(prometheus.Collector, []string) (metrics.Vec[M], bool),
) (metrics.Vec[M], error) {
	if err := opts.Validate(kind); err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	fqName := metrics.BuildFQName(p.namespace, p.subsystem, opts.Name)
	if existing, ok := p.vecs[fqName]; ok {
		if existing.kind != kind {
			return nil, &metrics.RegistrationError{
				Name: fqName,
				Type: kind,
				Err:  fmt.Errorf("%w: %s is a %s", metrics.ErrKindMismatch, fqName, existing.kind),
			}
		}
		return existing.vec.(metrics.Vec[M]), nil
	}

	help := opts.Help
	if help == "" {
		help = opts.Name
	}

	collector := build(prometheus.Opts{
		Namespace:   p.namespace,
		Subsystem:   p.subsystem,
		Name:        opts.Name,
		Help:        help,
		ConstLabels: mergeLabels(p.constLabels, opts.ConstLabels),
	})

	if err := p.registry.Register(collector); err != nil {
		var are prometheus.AlreadyRegisteredError
		if !errors.As(err, &are) {
			return nil, &metrics.RegistrationError{Name: fqName, Type: kind, Err: err}
		}
		collector = are.ExistingCollector
	}

	vec, ok := adapt(collector, opts.Labels)
	if !ok {
		return nil, &metrics.RegistrationError{
			Name: fqName,
			Type: kind,
			Err:  fmt.Errorf("%w: registry holds %s as %T", metrics.ErrKindMismatch, fqName, collector),
		}
	}

	p.vecs[fqName] = registered{kind: kind, vec: vec}
	return vec, nil
}

func mergeLabels(base, extra map[string]string) prometheus.Labels {
	out := make(prometheus.Labels, len(base)+len(extra))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}

// Lookup reports the type a name is registered under
func (p *PrometheusProvider) Lookup(name string) (metrics.MetricType, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	existing, ok := p.vecs[metrics.BuildFQName(p.namespace, p.subsystem, name)]
	return existing.kind, ok
}

// SetDefaultLabels replaces the labels added at gather time to every series
// that lacks them
func (p *PrometheusProvider) SetDefaultLabels(labels map[string]string) error {
	if err := metrics.ValidateLabelSet(labels); err != nil {
		return err
	}

	p.gatherer.setLabels(labels)
	return nil
}

// EnableDefaultMetrics registers the Go runtime and process collectors.
// Calling it more than once is a no-op.
func (p *PrometheusProvider) EnableDefaultMetrics() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.defaultMetrics {
		return nil
	}

	for _, c := range []prometheus.Collector{
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	} {
		if err := p.registry.Register(c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if !errors.As(err, &are) {
				return fmt.Errorf("failed to register default collector: %w", err)
			}
		}
	}

	p.defaultMetrics = true
	return nil
}

// Gather returns a snapshot of all registered metric families
func (p *PrometheusProvider) Gather() ([]*metrics.MetricFamily, error) {
	mfs, err := p.gatherer.Gather()
	if err != nil {
		return nil, err
	}

	families := make([]*metrics.MetricFamily, 0, len(mfs))
	for _, mf := range mfs {
		families = append(families, toFamily(mf))
	}
	return families, nil
}

// WriteText renders every registered family in the text exposition format.
// Nothing is written when gathering fails.
func (p *PrometheusProvider) WriteText(w io.Writer) error {
	mfs, err := p.gatherer.Gather()
	if err != nil {
		return fmt.Errorf("failed to gather metrics: %w", err)
	}

	for _, mf := range mfs {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("failed to render %s: %w", mf.GetName(), err)
		}
	}
	return nil
}

// Registry returns the underlying Prometheus registry
func (p *PrometheusProvider) Registry() *prometheus.Registry {
	return p.registry
}

// Gatherer returns the gatherer that applies default labels
func (p *PrometheusProvider) Gatherer() prometheus.Gatherer {
	return p.gatherer
}

// Name returns DriverName
func (p *PrometheusProvider) Name() string {
	return DriverName
}
