package tracing

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/songzhibin97/metricsd/internal/config"
)

func TestNewTracerProvider_Disabled(t *testing.T) {
	for _, cfg := range []*config.TracingConfig{nil, {Enabled: false}} {
		tp, err := NewTracerProvider(cfg, "test")
		if err != nil {
			t.Fatalf("NewTracerProvider() error = %v", err)
		}
		if tp.IsEnabled() {
			t.Error("Expected tracing to be disabled")
		}
		if tp.Tracer("metricsd") == nil {
			t.Error("Expected a usable tracer when disabled")
		}
		if err := tp.Shutdown(context.Background()); err != nil {
			t.Errorf("Shutdown() error = %v", err)
		}
	}
}

func TestNewTracerProvider_Enabled(t *testing.T) {
	tp, err := NewTracerProvider(&config.TracingConfig{
		Enabled: true,
		Jaeger: config.JaegerConfig{
			Endpoint:    "http://127.0.0.1:1/api/traces",
			ServiceName: "metricsd-test",
			SampleRate:  0.5,
		},
	}, "test")
	if err != nil {
		t.Fatalf("NewTracerProvider() error = %v", err)
	}
	if !tp.IsEnabled() {
		t.Fatal("Expected tracing to be enabled")
	}

	_, span := tp.Tracer("metricsd").Start(context.Background(), "scrape")
	if !span.SpanContext().IsValid() {
		t.Error("Expected a recording provider to produce valid span contexts")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	// No span ended, so nothing is exported to the unreachable collector
	if err := tp.Shutdown(ctx); err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}
}

func TestSampler(t *testing.T) {
	tests := []struct {
		rate float64
		want string
	}{
		{1, "AlwaysOnSampler"},
		{2, "AlwaysOnSampler"},
	}

	for _, tt := range tests {
		if got := sampler(tt.rate).Description(); got != tt.want {
			t.Errorf("sampler(%v) = %s, want %s", tt.rate, got, tt.want)
		}
	}

	if got := sampler(0.25).Description(); !strings.HasPrefix(got, "ParentBased{") {
		t.Errorf("Expected a parent based sampler for fractional rates, got %s", got)
	}
}
