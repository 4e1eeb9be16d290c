package exporter

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/songzhibin97/metricsd/pkg/metrics"
)

// Defaults applied to unset configuration values
const (
	DefaultPort          = 3030
	DefaultMoleculerHost = "127.0.0.1"
	DefaultMoleculerPort = 3031
	DefaultMoleculerPath = "/metrics"
)

// Config is the metrics section of the service configuration
type Config struct {
	Disabled              bool              `yaml:"disabled" json:"disabled"`
	Port                  int               `yaml:"port" json:"port"`
	Address               string            `yaml:"address" json:"address"`
	Provider              string            `yaml:"provider" json:"provider"`
	DisableDefaultMetrics bool              `yaml:"disableDefaultMetrics" json:"disableDefaultMetrics"`
	DefaultLabels         map[string]string `yaml:"defaultLabels" json:"defaultLabels"`
	RequestTimingBuckets  []float64         `yaml:"requestTimingBuckets" json:"requestTimingBuckets"`
	ResponseTimingBuckets []float64         `yaml:"responseTimingBuckets" json:"responseTimingBuckets"`
	MaxConnections        int               `yaml:"maxConnections" json:"maxConnections"`
	Moleculer             MoleculerConfig   `yaml:"moleculer" json:"moleculer"`
}

// MoleculerConfig locates the sidecar whose exposition text is appended to
// every scrape
type MoleculerConfig struct {
	Disabled bool          `yaml:"disabled" json:"disabled"`
	Host     string        `yaml:"host" json:"host"`
	Port     int           `yaml:"port" json:"port"`
	Path     string        `yaml:"path" json:"path"`
	Timeout  time.Duration `yaml:"timeout" json:"timeout"`
}

// DefaultConfig returns the configuration used when nothing is configured
func DefaultConfig() Config {
	return Config{
		Port:                  DefaultPort,
		Provider:              metrics.DefaultFactory,
		RequestTimingBuckets:  append([]float64(nil), metrics.RequestLatencyBuckets...),
		ResponseTimingBuckets: append([]float64(nil), metrics.ResponseLatencyBuckets...),
		Moleculer: MoleculerConfig{
			Host: DefaultMoleculerHost,
			Port: DefaultMoleculerPort,
			Path: DefaultMoleculerPath,
		},
	}
}

// ListenAddress returns Address when set, otherwise ":<port>"
func (c Config) ListenAddress() string {
	if c.Address != "" {
		return c.Address
	}
	port := c.Port
	if port <= 0 {
		port = DefaultPort
	}
	return net.JoinHostPort("", strconv.Itoa(port))
}

// URL returns the sidecar exposition URL
func (m MoleculerConfig) URL() string {
	host := m.Host
	if host == "" {
		host = DefaultMoleculerHost
	}
	port := m.Port
	if port <= 0 {
		port = DefaultMoleculerPort
	}
	path := m.Path
	if path == "" {
		path = DefaultMoleculerPath
	}
	return fmt.Sprintf("http://%s:%d%s", host, port, path)
}
