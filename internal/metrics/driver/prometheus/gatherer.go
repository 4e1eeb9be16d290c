package prometheus

import (
	"sort"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// defaultLabelGatherer adds registry-wide default labels to gathered series.
// A series that already carries a label of the same name keeps its own value.
type defaultLabelGatherer struct {
	next prometheus.Gatherer

	mu     sync.RWMutex
	labels []*dto.LabelPair
}

func newDefaultLabelGatherer(next prometheus.Gatherer) *defaultLabelGatherer {
	return &defaultLabelGatherer{next: next}
}

func (g *defaultLabelGatherer) setLabels(labels map[string]string) {
	pairs := make([]*dto.LabelPair, 0, len(labels))
	for name, value := range labels {
		name, value := name, value
		pairs = append(pairs, &dto.LabelPair{Name: &name, Value: &value})
	}
	sortLabelPairs(pairs)

	g.mu.Lock()
	g.labels = pairs
	g.mu.Unlock()
}

// Gather implements prometheus.Gatherer
func (g *defaultLabelGatherer) Gather() ([]*dto.MetricFamily, error) {
	families, err := g.next.Gather()

	g.mu.RLock()
	defaults := g.labels
	g.mu.RUnlock()

	if len(defaults) == 0 {
		return families, err
	}

	for _, family := range families {
		for _, metric := range family.GetMetric() {
			metric.Label = withDefaults(metric.GetLabel(), defaults)
		}
	}

	return families, err
}

func withDefaults(own, defaults []*dto.LabelPair) []*dto.LabelPair {
	present := make(map[string]struct{}, len(own))
	for _, pair := range own {
		present[pair.GetName()] = struct{}{}
	}

	merged := own
	for _, pair := range defaults {
		if _, ok := present[pair.GetName()]; ok {
			continue
		}
		merged = append(merged, pair)
	}
	if len(merged) != len(own) {
		sortLabelPairs(merged)
	}
	return merged
}

func sortLabelPairs(pairs []*dto.LabelPair) {
	sort.Slice(pairs, func(i, j int) bool {
		return pairs[i].GetName() < pairs[j].GetName()
	})
}
