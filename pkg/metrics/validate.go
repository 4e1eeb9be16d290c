package metrics

import (
	"fmt"
	"math"
	"strings"
)

// Names follow the Prometheus data model: metric names match
// [a-zA-Z_:][a-zA-Z0-9_:]*, label names [a-zA-Z_][a-zA-Z0-9_]* and label
// names starting with "__" are reserved.

func validName(name string, colons bool) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r == ':' && colons:
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}

// ValidateMetricName checks a metric name
func ValidateMetricName(name string) error {
	if !validName(name, true) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

// ValidateLabelName checks a label name
func ValidateLabelName(name string) error {
	if !validName(name, false) {
		return fmt.Errorf("%w: %q", ErrInvalidLabel, name)
	}
	if strings.HasPrefix(name, "__") {
		return fmt.Errorf("%w: %q is reserved", ErrInvalidLabel, name)
	}
	return nil
}

// ValidateLabelNames checks a label declaration, rejecting duplicates
func ValidateLabelNames(names []string) error {
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		if err := ValidateLabelName(name); err != nil {
			return err
		}
		if _, dup := seen[name]; dup {
			return fmt.Errorf("%w: %q declared twice", ErrInvalidLabel, name)
		}
		seen[name] = struct{}{}
	}
	return nil
}

// ValidateLabelSet checks the names of a fixed label set, such as default or
// constant labels
func ValidateLabelSet(labels map[string]string) error {
	for name := range labels {
		if err := ValidateLabelName(name); err != nil {
			return err
		}
	}
	return nil
}

// ValidateHistogramBuckets checks that upper bounds are present and strictly
// increasing. The +Inf bucket is implicit.
func ValidateHistogramBuckets(buckets []float64) error {
	if len(buckets) == 0 {
		return fmt.Errorf("%w: no upper bounds", ErrInvalidBuckets)
	}
	for i, bound := range buckets {
		if math.IsNaN(bound) {
			return fmt.Errorf("%w: bound %d is NaN", ErrInvalidBuckets, i)
		}
		if i > 0 && bound <= buckets[i-1] {
			return fmt.Errorf("%w: %v is not increasing", ErrInvalidBuckets, buckets)
		}
	}
	return nil
}

// Validate checks the options for a metric of the given type. Empty buckets
// are accepted and mean the backend default.
func (o MetricOptions) Validate(kind MetricType) error {
	if err := ValidateMetricName(o.Name); err != nil {
		return err
	}
	if err := ValidateLabelNames(o.Labels); err != nil {
		return err
	}
	if err := ValidateLabelSet(o.ConstLabels); err != nil {
		return err
	}
	if kind == HistogramType && len(o.Buckets) > 0 {
		return ValidateHistogramBuckets(o.Buckets)
	}
	return nil
}

// BuildFQName joins the non-empty parts of a metric name with underscores
func BuildFQName(namespace, subsystem, name string) string {
	parts := make([]string, 0, 3)
	for _, part := range []string{namespace, subsystem, name} {
		if part != "" {
			parts = append(parts, part)
		}
	}
	return strings.Join(parts, "_")
}
