// Metricsd serves Prometheus metrics for a service and merges in the
// metrics of a co-located moleculer sidecar.
//
// Usage:
//
//	# Start with the default configuration file
//	metricsd serve
//
//	# Start with a custom configuration file and no sidecar polling
//	metricsd serve --config /etc/metricsd/metricsd.yaml --moleculer=false
//
//	# Show version information
//	metricsd version
package main

func main() {
	Execute()
}
