package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/songzhibin97/metricsd/pkg/exporter"
	"github.com/songzhibin97/metricsd/pkg/log"
	"github.com/songzhibin97/metricsd/pkg/metrics"
)

// DefaultConfigFile is looked up in the config directory when no file is given
const DefaultConfigFile = "metricsd.yaml"

// Default returns the configuration used before file and environment overrides
func Default() *Config {
	return &Config{
		Metrics: exporter.DefaultConfig(),
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Tracing: TracingConfig{
			Enabled: false,
			Jaeger: JaegerConfig{
				Endpoint:    "http://localhost:14268/api/traces",
				ServiceName: "metricsd",
				SampleRate:  1.0,
			},
		},
	}
}

// Load loads configuration from file with environment variable overrides.
// An empty configFile skips the file step.
func Load(configFile string) (*Config, error) {
	cfg := Default()

	if configFile != "" {
		if err := loadFromFile(cfg, configFile); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	if err := loadFromEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from environment: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// loadFromFile loads configuration from YAML file
func loadFromFile(cfg *Config, filename string) error {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return fmt.Errorf("config file does not exist: %s", filename)
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse YAML config: %w", err)
	}

	return nil
}

// loadFromEnv loads configuration from environment variables
func loadFromEnv(cfg *Config) error {
	m := &cfg.Metrics

	// Metrics configuration
	if err := envBool("METRICSD_METRICS_DISABLED", &m.Disabled); err != nil {
		return err
	}
	if err := envInt("METRICSD_METRICS_PORT", &m.Port); err != nil {
		return err
	}
	if addr := os.Getenv("METRICSD_METRICS_ADDRESS"); addr != "" {
		m.Address = addr
	}
	if err := envBool("METRICSD_METRICS_DISABLE_DEFAULT_METRICS", &m.DisableDefaultMetrics); err != nil {
		return err
	}
	if labels := os.Getenv("METRICSD_METRICS_DEFAULT_LABELS"); labels != "" {
		parsed, err := parseLabels(labels)
		if err != nil {
			return fmt.Errorf("METRICSD_METRICS_DEFAULT_LABELS: %w", err)
		}
		m.DefaultLabels = parsed
	}
	if err := envInt("METRICSD_METRICS_MAX_CONNECTIONS", &m.MaxConnections); err != nil {
		return err
	}

	// Moleculer sidecar configuration
	if err := envBool("METRICSD_MOLECULER_DISABLED", &m.Moleculer.Disabled); err != nil {
		return err
	}
	if host := os.Getenv("METRICSD_MOLECULER_HOST"); host != "" {
		m.Moleculer.Host = host
	}
	if err := envInt("METRICSD_MOLECULER_PORT", &m.Moleculer.Port); err != nil {
		return err
	}
	if path := os.Getenv("METRICSD_MOLECULER_PATH"); path != "" {
		m.Moleculer.Path = path
	}
	if timeout := os.Getenv("METRICSD_MOLECULER_TIMEOUT"); timeout != "" {
		d, err := time.ParseDuration(timeout)
		if err != nil {
			return fmt.Errorf("METRICSD_MOLECULER_TIMEOUT: %w", err)
		}
		m.Moleculer.Timeout = d
	}

	// Logging configuration
	if logLevel := os.Getenv("METRICSD_LOG_LEVEL"); logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if logFormat := os.Getenv("METRICSD_LOG_FORMAT"); logFormat != "" {
		cfg.Logging.Format = logFormat
	}

	// Tracing configuration
	if err := envBool("METRICSD_TRACING_ENABLED", &cfg.Tracing.Enabled); err != nil {
		return err
	}
	if endpoint := os.Getenv("METRICSD_JAEGER_ENDPOINT"); endpoint != "" {
		cfg.Tracing.Jaeger.Endpoint = endpoint
	}

	return nil
}

func envBool(key string, dst *bool) error {
	raw := os.Getenv(key)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = v
	return nil
}

func envInt(key string, dst *int) error {
	raw := os.Getenv(key)
	if raw == "" {
		return nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = v
	return nil
}

// parseLabels parses "k1=v1,k2=v2"
func parseLabels(raw string) (map[string]string, error) {
	labels := make(map[string]string)
	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		name, value, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("label %q is not of the form name=value", pair)
		}
		labels[strings.TrimSpace(name)] = strings.TrimSpace(value)
	}
	return labels, nil
}

// validate validates the configuration
func validate(cfg *Config) error {
	m := cfg.Metrics

	if m.Port < 0 || m.Port > 65535 {
		return fmt.Errorf("invalid metrics port: %d", m.Port)
	}
	if m.MaxConnections < 0 {
		return fmt.Errorf("maxConnections cannot be negative: %d", m.MaxConnections)
	}

	if err := metrics.ValidateLabelSet(m.DefaultLabels); err != nil {
		return fmt.Errorf("invalid default label: %w", err)
	}

	if len(m.RequestTimingBuckets) > 0 {
		if err := metrics.ValidateHistogramBuckets(m.RequestTimingBuckets); err != nil {
			return fmt.Errorf("invalid requestTimingBuckets: %w", err)
		}
	}
	if len(m.ResponseTimingBuckets) > 0 {
		if err := metrics.ValidateHistogramBuckets(m.ResponseTimingBuckets); err != nil {
			return fmt.Errorf("invalid responseTimingBuckets: %w", err)
		}
	}

	if m.Moleculer.Port < 0 || m.Moleculer.Port > 65535 {
		return fmt.Errorf("invalid moleculer port: %d", m.Moleculer.Port)
	}
	if m.Moleculer.Path != "" && !strings.HasPrefix(m.Moleculer.Path, "/") {
		return fmt.Errorf("moleculer path must start with '/': %s", m.Moleculer.Path)
	}
	if m.Moleculer.Timeout < 0 {
		return fmt.Errorf("moleculer timeout cannot be negative: %s", m.Moleculer.Timeout)
	}

	if _, err := log.ParseLevel(cfg.Logging.Level); err != nil {
		return fmt.Errorf("invalid log level: %s", cfg.Logging.Level)
	}
	if f := cfg.Logging.Format; f != "" && f != "json" && f != "console" {
		return fmt.Errorf("invalid log format: %s", f)
	}

	if cfg.Tracing.Enabled {
		if cfg.Tracing.Jaeger.Endpoint == "" {
			return fmt.Errorf("jaeger endpoint cannot be empty when tracing is enabled")
		}
		if r := cfg.Tracing.Jaeger.SampleRate; r < 0 || r > 1 {
			return fmt.Errorf("jaeger sample_rate must be within [0, 1]: %v", r)
		}
	}

	return nil
}

// GetConfigDir returns the configuration directory
func GetConfigDir() string {
	if dir := os.Getenv("METRICSD_CONFIG_DIR"); dir != "" {
		return dir
	}
	return "."
}

// GetDefaultConfigFile returns the default configuration file path
func GetDefaultConfigFile() string {
	return filepath.Join(GetConfigDir(), DefaultConfigFile)
}
