// Package handle provides label-tolerant metric handles on top of a
// metrics.Provider.
//
// Handles accept raw metrics.Labels, run them through a replaceable
// Sanitizer and resolve them against the label names the underlying vector
// was declared with. Undeclared keys are dropped and missing keys are
// recorded as empty, so recording never fails because of a label set.
package handle

import (
	"sync/atomic"

	"github.com/songzhibin97/metricsd/pkg/metrics"
)

// base carries what every handle shares
type base struct {
	name       string
	labelNames []string
	sanitizer  atomic.Pointer[metrics.Sanitizer]
}

func (b *base) init(name string, labelNames []string) {
	b.name = name
	b.labelNames = labelNames
	b.SetSanitizer(metrics.PassThrough)
}

// Name returns the metric name
func (b *base) Name() string {
	return b.name
}

// LabelNames returns the label names of the underlying vector
func (b *base) LabelNames() []string {
	return append([]string(nil), b.labelNames...)
}

// SetSanitizer replaces the label sanitizer. A nil sanitizer restores
// metrics.PassThrough. Safe for concurrent use with recording.
func (b *base) SetSanitizer(s metrics.Sanitizer) {
	if s == nil {
		s = metrics.PassThrough
	}
	b.sanitizer.Store(&s)
}

func (b *base) sanitize(labels metrics.Labels) metrics.Labels {
	if labels == nil {
		labels = metrics.Labels{}
	}
	return (*b.sanitizer.Load())(labels)
}

func (b *base) resolve(labels metrics.Labels) map[string]string {
	return b.sanitize(labels).Resolve(b.labelNames)
}

func withDefaultHelp(opts metrics.MetricOptions) metrics.MetricOptions {
	if opts.Help == "" {
		opts.Help = opts.Name
	}
	return opts
}
