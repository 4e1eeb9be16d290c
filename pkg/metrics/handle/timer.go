package handle

import (
	"fmt"
	"time"

	"github.com/songzhibin97/metricsd/pkg/metrics"
)

// Timer is a gauge holding the last measured duration in seconds
type Timer struct {
	base
	vec metrics.GaugeVec
}

// NewTimer returns a handle on the gauge named opts.Name, creating the gauge
// on first use
func NewTimer(p metrics.Provider, opts metrics.MetricOptions) (*Timer, error) {
	vec, err := p.NewGaugeVec(withDefaultHelp(opts))
	if err != nil {
		return nil, fmt.Errorf("timer %s: %w", opts.Name, err)
	}

	t := &Timer{vec: vec}
	t.init(opts.Name, vec.LabelNames())
	return t, nil
}

// MustNewTimer is like NewTimer but panics on error
func MustNewTimer(p metrics.Provider, opts metrics.MetricOptions) *Timer {
	t, err := NewTimer(p, opts)
	if err != nil {
		panic(err)
	}
	return t
}

// SetTimer overwrites the series selected by labels with elapsed in seconds
func (t *Timer) SetTimer(labels metrics.Labels, elapsed time.Duration) {
	gauge, err := t.vec.With(t.resolve(labels))
	if err != nil {
		return
	}
	gauge.Set(elapsed.Seconds())
}

// Value returns the seconds currently held by the series selected by labels.
// The series is created if it does not exist yet.
func (t *Timer) Value(labels metrics.Labels) float64 {
	gauge, err := t.vec.With(t.resolve(labels))
	if err != nil {
		return 0
	}
	return gauge.Value()
}
