package metrics

// MetricType is the kind of a metric. Its value is the name used in the
// text exposition format.
type MetricType string

const (
	CounterType   MetricType = "counter"
	GaugeType     MetricType = "gauge"
	HistogramType MetricType = "histogram"
)

func (mt MetricType) String() string {
	if mt == "" {
		return "unknown"
	}
	return string(mt)
}

// MetricOptions declares a metric vector
type MetricOptions struct {
	Name string `json:"name"`

	// Help defaults to Name
	Help string `json:"help"`

	// Labels are the variable label names every series carries
	Labels      []string          `json:"labels,omitempty"`
	ConstLabels map[string]string `json:"const_labels,omitempty"`

	// Buckets are histogram upper bounds; empty selects the backend default
	Buckets []float64 `json:"buckets,omitempty"`
}

// ProviderOptions configures a provider built through a Factory
type ProviderOptions struct {
	Namespace   string            `json:"namespace,omitempty"`
	Subsystem   string            `json:"subsystem,omitempty"`
	ConstLabels map[string]string `json:"const_labels,omitempty"`
}

// Latency histogram bounds in seconds, shared by the request and response
// metrics
var (
	RequestLatencyBuckets  = []float64{0.01, 0.05, 0.1, 0.2, 0.5, 0.7, 1, 5, 10}
	ResponseLatencyBuckets = []float64{0.01, 0.05, 0.1, 0.2, 0.5, 0.7, 1, 5, 10}
)

// MetricFamily is a gathered metric with all of its series
type MetricFamily struct {
	Name    string     `json:"name"`
	Help    string     `json:"help"`
	Type    MetricType `json:"type"`
	Metrics []Metric   `json:"metrics"`
}

// Metric is one gathered series. Count, Sum and Buckets are only set for
// histograms.
type Metric struct {
	Name    string      `json:"name"`
	Type    MetricType  `json:"type"`
	Labels  []LabelPair `json:"labels,omitempty"`
	Value   float64     `json:"value"`
	Count   uint64      `json:"count,omitempty"`
	Sum     float64     `json:"sum,omitempty"`
	Buckets []Bucket    `json:"buckets,omitempty"`
}

// Label returns the value of the named label and whether it is present
func (m Metric) Label(name string) (string, bool) {
	for _, pair := range m.Labels {
		if pair.Name == name {
			return pair.Value, true
		}
	}
	return "", false
}

// LabelPair is a rendered label
type LabelPair struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Bucket is a cumulative histogram bucket
type Bucket struct {
	UpperBound float64 `json:"upper_bound"`
	Count      uint64  `json:"count"`
}
