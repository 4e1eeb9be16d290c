package handle

import (
	"fmt"

	"github.com/songzhibin97/metricsd/pkg/metrics"
)

// Counter is a monotonically increasing metric
type Counter struct {
	base
	vec metrics.CounterVec
}

// NewCounter returns a handle on the counter named opts.Name, creating the
// counter on first use. Later calls with the same name share the counter and
// their label names and help are ignored.
func NewCounter(p metrics.Provider, opts metrics.MetricOptions) (*Counter, error) {
	vec, err := p.NewCounterVec(withDefaultHelp(opts))
	if err != nil {
		return nil, fmt.Errorf("counter %s: %w", opts.Name, err)
	}

	c := &Counter{vec: vec}
	c.init(opts.Name, vec.LabelNames())
	return c, nil
}

// MustNewCounter is like NewCounter but panics on error
func MustNewCounter(p metrics.Provider, opts metrics.MetricOptions) *Counter {
	c, err := NewCounter(p, opts)
	if err != nil {
		panic(err)
	}
	return c
}

// Increment adds 1 to the series selected by labels
func (c *Counter) Increment(labels metrics.Labels) {
	c.Add(labels, 1)
}

// Add adds amount to the series selected by labels. Negative amounts are
// dropped.
func (c *Counter) Add(labels metrics.Labels, amount float64) {
	if amount < 0 {
		return
	}

	counter, err := c.vec.With(c.resolve(labels))
	if err != nil {
		return
	}
	counter.Add(amount)
}

// Value returns the current value of the series selected by labels.
// The series is created if it does not exist yet.
func (c *Counter) Value(labels metrics.Labels) float64 {
	counter, err := c.vec.With(c.resolve(labels))
	if err != nil {
		return 0
	}
	return counter.Value()
}
