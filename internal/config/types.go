package config

import (
	"github.com/songzhibin97/metricsd/pkg/exporter"
)

// Config is the metricsd configuration file
type Config struct {
	// Metrics is the exposition service section, consumed by exporter.New
	Metrics exporter.Config `yaml:"metrics"`
	Logging LoggingConfig   `yaml:"logging"`
	Tracing TracingConfig   `yaml:"tracing"`
}

// LoggingConfig selects the level and encoder of the stdout log driver
type LoggingConfig struct {
	Level        string `yaml:"level"`
	Format       string `yaml:"format"` // json or console
	Development  bool   `yaml:"development"`
	EnableCaller bool   `yaml:"enable_caller"`
}

// TracingConfig enables span export for scrapes and sidecar fetches
type TracingConfig struct {
	Enabled bool         `yaml:"enabled"`
	Jaeger  JaegerConfig `yaml:"jaeger"`
}

type JaegerConfig struct {
	// Endpoint is the collector URL, e.g. http://jaeger:14268/api/traces
	Endpoint    string  `yaml:"endpoint"`
	ServiceName string  `yaml:"service_name"`
	SampleRate  float64 `yaml:"sample_rate"`
}
