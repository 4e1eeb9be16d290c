package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/songzhibin97/metricsd/pkg/metrics"
)

// read snapshots a single series. A failed write yields an empty snapshot,
// whose getters all return zero.
func read(m prometheus.Metric) *dto.Metric {
	out := &dto.Metric{}
	if m == nil || m.Write(out) != nil {
		return &dto.Metric{}
	}
	return out
}

type counter struct{ prometheus.Counter }

func (c counter) Value() float64 { return read(c.Counter).GetCounter().GetValue() }

type gauge struct{ prometheus.Gauge }

func (g gauge) Value() float64 { return read(g.Gauge).GetGauge().GetValue() }

// histogram wraps the Observer returned by a HistogramVec, which is always
// a prometheus.Metric as well
type histogram struct{ prometheus.Observer }

func (h histogram) snapshot() *dto.Histogram {
	m, _ := h.Observer.(prometheus.Metric)
	return read(m).GetHistogram()
}

func (h histogram) Snapshot() (uint64, float64) {
	s := h.snapshot()
	return s.GetSampleCount(), s.GetSampleSum()
}

func (h histogram) Buckets() []metrics.Bucket {
	return toBuckets(h.snapshot().GetBucket())
}

// vec adapts a client_golang vector to metrics.Vec
type vec[M any] struct {
	*prometheus.MetricVec
	labelNames []string
	with       func(prometheus.Labels) (M, error)
}

func (v *vec[M]) With(labels map[string]string) (M, error) {
	return v.with(prometheus.Labels(labels))
}

func (v *vec[M]) LabelNames() []string {
	return append([]string(nil), v.labelNames...)
}

func (v *vec[M]) Delete(labels map[string]string) bool {
	return v.MetricVec.Delete(prometheus.Labels(labels))
}

func counterVec(c prometheus.Collector, labelNames []string) (metrics.CounterVec, bool) {
	cv, ok := c.(*prometheus.CounterVec)
	if !ok {
		return nil, false
	}
	return &vec[metrics.Counter]{
		MetricVec:  cv.MetricVec,
		labelNames: append([]string(nil), labelNames...),
		with: func(l prometheus.Labels) (metrics.Counter, error) {
			s, err := cv.GetMetricWith(l)
			if err != nil {
				return nil, err
			}
			return counter{s}, nil
		},
	}, true
}

func gaugeVec(c prometheus.Collector, labelNames []string) (metrics.GaugeVec, bool) {
	gv, ok := c.(*prometheus.GaugeVec)
	if !ok {
		return nil, false
	}
	return &vec[metrics.Gauge]{
		MetricVec:  gv.MetricVec,
		labelNames: append([]string(nil), labelNames...),
		with: func(l prometheus.Labels) (metrics.Gauge, error) {
			g, err := gv.GetMetricWith(l)
			if err != nil {
				return nil, err
			}
			return gauge{g}, nil
		},
	}, true
}

func histogramVec(c prometheus.Collector, labelNames []string) (metrics.HistogramVec, bool) {
	hv, ok := c.(*prometheus.HistogramVec)
	if !ok {
		return nil, false
	}
	return &vec[metrics.Histogram]{
		MetricVec:  hv.MetricVec,
		labelNames: append([]string(nil), labelNames...),
		with: func(l prometheus.Labels) (metrics.Histogram, error) {
			o, err := hv.GetMetricWith(l)
			if err != nil {
				return nil, err
			}
			return histogram{o}, nil
		},
	}, true
}
