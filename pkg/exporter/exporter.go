// Package exporter runs the metrics service: it owns the provider and the
// standard request metrics, and serves the exposition endpoint.
package exporter

import (
	"bytes"
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/net/netutil"

	"github.com/songzhibin97/metricsd/internal/sidecar"
	"github.com/songzhibin97/metricsd/pkg/log"
	"github.com/songzhibin97/metricsd/pkg/metrics"
	"github.com/songzhibin97/metricsd/pkg/metrics/handle"

	// Registers the "prometheus" provider factory
	_ "github.com/songzhibin97/metricsd/internal/metrics/driver/prometheus"
)

// Standard metric names
const (
	RequestsTotalName   = "requests_total"
	RequestLatencyName  = "request_latency_seconds"
	ResponseLatencyName = "response_latency_seconds"
)

// ContentType is the content type of the exposition response
const ContentType = "text/plain; version=0.0.4; charset=utf-8"

const instrumentationName = "github.com/songzhibin97/metricsd/pkg/exporter"

// ErrAlreadyStarted is returned by StartServer when the server is running
var ErrAlreadyStarted = errors.New("exporter: server already started")

// Fetcher retrieves exposition text from the sidecar
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// Option configures a Service
type Option func(*Service)

// WithProvider uses p instead of building one from Config.Provider
func WithProvider(p metrics.Provider) Option {
	return func(s *Service) {
		s.provider = p
	}
}

// WithMoleculer enables appending the sidecar exposition to every scrape
func WithMoleculer(enabled bool) Option {
	return func(s *Service) {
		s.moleculerEnabled = enabled
	}
}

// WithFetcher replaces the sidecar HTTP client
func WithFetcher(f Fetcher) Option {
	return func(s *Service) {
		s.fetcher = f
	}
}

// WithTracer sets the tracer used for scrape spans
func WithTracer(t trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = t
	}
}

// Service is the metrics service
type Service struct {
	cfg              Config
	logger           log.Logger
	provider         metrics.Provider
	fetcher          Fetcher
	tracer           trace.Tracer
	moleculerEnabled bool

	requestsTotal   *handle.Counter
	requestLatency  *handle.Histogram
	responseLatency *handle.Histogram

	engine *gin.Engine

	mu       sync.Mutex
	server   *http.Server
	listener net.Listener
}

// New creates the service and registers the standard metrics.
//
// With DisableDefaultMetrics set, the latency histograms are registered
// under placeholder names, no default labels or runtime collectors are
// installed, and labels are recorded without sanitization.
func New(cfg Config, logger log.Logger, opts ...Option) (*Service, error) {
	if logger == nil {
		logger = log.Default()
	}

	s := &Service{
		cfg:    cfg,
		logger: logger.With(log.String(log.FieldComponent, "exporter")),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.provider == nil {
		p, err := metrics.NewProvider(cfg.Provider, metrics.ProviderOptions{})
		if err != nil {
			return nil, err
		}
		s.provider = p
	}
	if s.fetcher == nil {
		s.fetcher = sidecar.NewClient(cfg.Moleculer.Timeout)
	}
	if s.tracer == nil {
		s.tracer = otel.Tracer(instrumentationName)
	}

	if err := s.initMetrics(); err != nil {
		return nil, err
	}

	s.engine = s.newEngine()
	return s, nil
}

func (s *Service) initMetrics() error {
	var err error

	s.requestsTotal, err = handle.NewCounter(s.provider, metrics.MetricOptions{
		Name:   RequestsTotalName,
		Help:   "Total requests made by service",
		Labels: metrics.RequestLabelNames,
	})
	if err != nil {
		return err
	}

	if s.cfg.DisableDefaultMetrics {
		if s.requestLatency, err = handle.NewHistogram(s.provider, metrics.MetricOptions{Name: "dummy"}); err != nil {
			return err
		}
		if s.responseLatency, err = handle.NewHistogram(s.provider, metrics.MetricOptions{Name: "dummy1"}); err != nil {
			return err
		}
		return nil
	}

	if err := s.provider.SetDefaultLabels(s.cfg.DefaultLabels); err != nil {
		return err
	}
	if err := s.provider.EnableDefaultMetrics(); err != nil {
		return err
	}

	s.requestLatency, err = handle.NewHistogram(s.provider, metrics.MetricOptions{
		Name:    RequestLatencyName,
		Help:    "Request latency in seconds",
		Labels:  metrics.RequestLabelNames,
		Buckets: bucketsOr(s.cfg.RequestTimingBuckets, metrics.RequestLatencyBuckets),
	})
	if err != nil {
		return err
	}

	s.responseLatency, err = handle.NewHistogram(s.provider, metrics.MetricOptions{
		Name:    ResponseLatencyName,
		Help:    "Response latency in seconds",
		Labels:  metrics.RequestLabelNames,
		Buckets: bucketsOr(s.cfg.ResponseTimingBuckets, metrics.ResponseLatencyBuckets),
	})
	if err != nil {
		return err
	}

	s.requestsTotal.SetSanitizer(metrics.SanitizeRequestLabels)
	s.requestLatency.SetSanitizer(metrics.SanitizeRequestLabels)
	s.responseLatency.SetSanitizer(metrics.SanitizeRequestLabels)

	return nil
}

func bucketsOr(configured, fallback []float64) []float64 {
	if len(configured) > 0 {
		return configured
	}
	return fallback
}

func (s *Service) newEngine() *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery())
	// Every method and path serves the exposition
	engine.NoRoute(s.serveMetrics)
	engine.NoMethod(s.serveMetrics)
	return engine
}

// Handler returns the exposition handler
func (s *Service) Handler() http.Handler {
	return s.engine
}

func (s *Service) serveMetrics(c *gin.Context) {
	ctx, span := s.tracer.Start(c.Request.Context(), "metrics.scrape",
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(attribute.String("http.route", c.Request.URL.Path)),
	)
	defer span.End()

	var buf bytes.Buffer
	if err := s.provider.WriteText(&buf); err != nil {
		s.logger.WithContext(ctx).Error("Metrics request failed", log.Error(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "render failed")
		c.String(http.StatusServiceUnavailable, "Request failed")
		return
	}

	if s.moleculerEnabled && !s.cfg.Moleculer.Disabled {
		buf.WriteString(s.moleculerMetrics(ctx))
	}

	c.Data(http.StatusOK, ContentType, buf.Bytes())
}

// moleculerMetrics returns the sidecar exposition, or "" when it cannot be
// fetched
func (s *Service) moleculerMetrics(ctx context.Context) string {
	url := s.cfg.Moleculer.URL()

	ctx, span := s.tracer.Start(ctx, "moleculer.fetch",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("http.url", url)),
	)
	defer span.End()

	body, err := s.fetcher.Fetch(ctx, url)
	if err != nil {
		s.logger.WithContext(ctx).Error("Failed to get moleculer metrics",
			log.String(log.FieldURL, url),
			log.Error(err),
		)
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch failed")
		return ""
	}

	return body
}

// OnInit starts the exposition server unless metrics are disabled
func (s *Service) OnInit(ctx context.Context) error {
	if s.cfg.Disabled {
		s.logger.Info("Metrics disabled, exposition server not started")
		return nil
	}
	return s.StartServer(ctx)
}

// StartServer binds the exposition listener and serves in the background.
// It returns once the listener is bound.
func (s *Service) StartServer(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.server != nil {
		return ErrAlreadyStarted
	}

	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", s.cfg.ListenAddress())
	if err != nil {
		return err
	}
	if s.cfg.MaxConnections > 0 {
		ln = netutil.LimitListener(ln, s.cfg.MaxConnections)
	}

	server := &http.Server{
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.server = server
	s.listener = ln

	go func() {
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("Metrics server stopped", log.Error(err))
		}
	}()

	s.logger.Info("Metrics server listening",
		log.String(log.FieldAddress, ln.Addr().String()),
		log.Bool("moleculer", s.moleculerEnabled && !s.cfg.Moleculer.Disabled),
	)
	return nil
}

// Addr returns the bound address, or "" when the server is not running
func (s *Service) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Shutdown gracefully stops the exposition server
func (s *Service) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	server := s.server
	s.server = nil
	s.listener = nil
	s.mu.Unlock()

	if server == nil {
		return nil
	}

	s.logger.Info("Shutting down metrics server")
	return server.Shutdown(ctx)
}

// Provider returns the provider all standard metrics live in
func (s *Service) Provider() metrics.Provider {
	return s.provider
}

// RequestsTotal returns the requests_total counter
func (s *Service) RequestsTotal() *handle.Counter {
	return s.requestsTotal
}

// RequestLatency returns the request latency histogram
func (s *Service) RequestLatency() *handle.Histogram {
	return s.requestLatency
}

// ResponseLatency returns the response latency histogram
func (s *Service) ResponseLatency() *handle.Histogram {
	return s.responseLatency
}
