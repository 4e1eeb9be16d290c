package prometheus

import (
	dto "github.com/prometheus/client_model/go"

	"github.com/songzhibin97/metricsd/pkg/metrics"
)

// familyType maps a gathered family type onto the three supported kinds.
// Summaries and untyped families only come from the runtime collectors and
// are reported as gauges.
func familyType(t dto.MetricType) metrics.MetricType {
	switch t {
	case dto.MetricType_COUNTER:
		return metrics.CounterType
	case dto.MetricType_HISTOGRAM, dto.MetricType_GAUGE_HISTOGRAM:
		return metrics.HistogramType
	default:
		return metrics.GaugeType
	}
}

func toFamily(mf *dto.MetricFamily) *metrics.MetricFamily {
	family := &metrics.MetricFamily{
		Name:    mf.GetName(),
		Help:    mf.GetHelp(),
		Type:    familyType(mf.GetType()),
		Metrics: make([]metrics.Metric, 0, len(mf.GetMetric())),
	}

	for _, m := range mf.GetMetric() {
		series := metrics.Metric{
			Name:   family.Name,
			Type:   family.Type,
			Labels: make([]metrics.LabelPair, 0, len(m.GetLabel())),
		}
		for _, lp := range m.GetLabel() {
			series.Labels = append(series.Labels, metrics.LabelPair{Name: lp.GetName(), Value: lp.GetValue()})
		}

		switch {
		case m.Counter != nil:
			series.Value = m.GetCounter().GetValue()
		case m.Gauge != nil:
			series.Value = m.GetGauge().GetValue()
		case m.Untyped != nil:
			series.Value = m.GetUntyped().GetValue()
		case m.Histogram != nil:
			series.Count = m.GetHistogram().GetSampleCount()
			series.Sum = m.GetHistogram().GetSampleSum()
			series.Buckets = toBuckets(m.GetHistogram().GetBucket())
		case m.Summary != nil:
			series.Count = m.GetSummary().GetSampleCount()
			series.Sum = m.GetSummary().GetSampleSum()
		}

		family.Metrics = append(family.Metrics, series)
	}

	return family
}

func toBuckets(in []*dto.Bucket) []metrics.Bucket {
	out := make([]metrics.Bucket, len(in))
	for i, b := range in {
		out[i] = metrics.Bucket{UpperBound: b.GetUpperBound(), Count: b.GetCumulativeCount()}
	}
	return out
}
