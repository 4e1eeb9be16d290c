package metrics

// Counter is a single counter series
type Counter interface {
	// Add increases the series by delta, which must not be negative
	Add(delta float64)

	// Value reads the current total
	Value() float64
}

// Gauge is a single gauge series
type Gauge interface {
	Set(value float64)
	Value() float64
}

// Histogram is a single histogram series
type Histogram interface {
	Observe(value float64)

	// Snapshot returns the observation count and sum
	Snapshot() (count uint64, sum float64)

	// Buckets returns the cumulative bucket counts, +Inf excluded
	Buckets() []Bucket
}

// Vec is one metric partitioned into series by label values. Label maps
// must carry exactly the declared label names.
type Vec[M any] interface {
	// With returns the series for the given label values, creating it on
	// first use
	With(labels map[string]string) (M, error)

	// LabelNames returns the label names the vector was declared with
	LabelNames() []string

	// Delete removes one series and reports whether it existed
	Delete(labels map[string]string) bool

	// Reset removes every series
	Reset()
}

type (
	CounterVec   = Vec[Counter]
	GaugeVec     = Vec[Gauge]
	HistogramVec = Vec[Histogram]
)
