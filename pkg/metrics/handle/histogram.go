package handle

import (
	"fmt"
	"time"

	"github.com/songzhibin97/metricsd/pkg/metrics"
)

// StopFunc ends a timing started by Histogram.RecordTimer. Extra label sets
// are merged over the start labels. It returns the observed seconds.
type StopFunc func(extra ...metrics.Labels) float64

// Histogram samples observations into buckets
type Histogram struct {
	base
	vec metrics.HistogramVec
}

// NewHistogram returns a handle on the histogram named opts.Name, creating
// the histogram on first use. Buckets default to metrics.RequestLatencyBuckets.
func NewHistogram(p metrics.Provider, opts metrics.MetricOptions) (*Histogram, error) {
	opts = withDefaultHelp(opts)
	if len(opts.Buckets) == 0 {
		opts.Buckets = metrics.RequestLatencyBuckets
	}

	vec, err := p.NewHistogramVec(opts)
	if err != nil {
		return nil, fmt.Errorf("histogram %s: %w", opts.Name, err)
	}

	h := &Histogram{vec: vec}
	h.init(opts.Name, vec.LabelNames())
	return h, nil
}

// MustNewHistogram is like NewHistogram but panics on error
func MustNewHistogram(p metrics.Provider, opts metrics.MetricOptions) *Histogram {
	h, err := NewHistogram(p, opts)
	if err != nil {
		panic(err)
	}
	return h
}

// Observe records value in the series selected by labels
func (h *Histogram) Observe(labels metrics.Labels, value float64) {
	h.observeResolved(h.resolve(labels), value)
}

// ObserveSeconds records elapsed as fractional seconds
func (h *Histogram) ObserveSeconds(labels metrics.Labels, elapsed time.Duration) {
	h.Observe(labels, elapsed.Seconds())
}

// RecordTimer starts a timing. Labels are sanitized now; the returned
// function observes the seconds elapsed since this call each time it is
// invoked.
func (h *Histogram) RecordTimer(labels metrics.Labels) StopFunc {
	start := time.Now()
	sanitized := h.sanitize(labels)

	return func(extra ...metrics.Labels) float64 {
		elapsed := time.Since(start).Seconds()

		final := sanitized
		if len(extra) > 0 {
			final = h.sanitize(sanitized.Merge(extra...))
		}
		h.observeResolved(final.Resolve(h.labelNames), elapsed)

		return elapsed
	}
}

// Snapshot returns the observation count and sum of the series selected by
// labels. The series is created if it does not exist yet.
func (h *Histogram) Snapshot(labels metrics.Labels) (count uint64, sum float64) {
	histogram, err := h.vec.With(h.resolve(labels))
	if err != nil {
		return 0, 0
	}
	return histogram.Snapshot()
}

func (h *Histogram) observeResolved(labels map[string]string, value float64) {
	histogram, err := h.vec.With(labels)
	if err != nil {
		return
	}
	histogram.Observe(value)
}
