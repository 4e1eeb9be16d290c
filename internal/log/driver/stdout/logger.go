// Package stdout is the zap-backed logging driver. Importing it registers
// the "stdout" driver with package log.
package stdout

import (
	"context"
	"io"
	"os"
	"time"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/songzhibin97/metricsd/pkg/log"
)

// DriverName is the name this driver registers under in package log
const DriverName = "stdout"

func init() {
	log.RegisterDriver(DriverName, func(opts log.Options) (log.Logger, error) {
		cfg := DefaultConfig()
		cfg.Level = opts.Level
		cfg.Development = opts.Development
		cfg.EnableCaller = opts.EnableCaller
		if opts.Format != "" {
			cfg.Format = opts.Format
		}
		cfg.Output = opts.Output
		return New(cfg)
	})
}

// Config configures the zap core behind a Logger
type Config struct {
	Level log.Level `json:"level"`

	// TimeFormat is a Go time layout, RFC 3339 when empty
	TimeFormat string `json:"time_format,omitempty"`

	// Format is "json" or "console"
	Format string `json:"format,omitempty"`

	EnableCaller     bool `json:"enable_caller"`
	EnableStacktrace bool `json:"enable_stacktrace"`
	Development      bool `json:"development"`

	// Output defaults to os.Stdout
	Output io.Writer `json:"-"`
}

// DefaultConfig returns JSON output at info level with stack traces on errors
func DefaultConfig() *Config {
	return &Config{
		Level:            log.InfoLevel,
		TimeFormat:       time.RFC3339,
		Format:           "json",
		EnableStacktrace: true,
	}
}

// Logger implements log.Logger on zap
type Logger struct {
	zl *zap.Logger
}

var zapLevels = map[log.Level]zapcore.Level{
	log.DebugLevel: zapcore.DebugLevel,
	log.InfoLevel:  zapcore.InfoLevel,
	log.WarnLevel:  zapcore.WarnLevel,
	log.ErrorLevel: zapcore.ErrorLevel,
	log.FatalLevel: zapcore.FatalLevel,
}

// New builds a Logger from cfg; a nil cfg means DefaultConfig
func New(cfg *Config) (*Logger, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	encCfg := zapcore.EncoderConfig{
		TimeKey:        "timestamp",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		MessageKey:     "message",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     timeEncoder(cfg.TimeFormat),
		EncodeDuration: zapcore.SecondsDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	encoder := zapcore.NewJSONEncoder(encCfg)
	if cfg.Format == "console" {
		encoder = zapcore.NewConsoleEncoder(encCfg)
	}

	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}

	level, ok := zapLevels[cfg.Level]
	if !ok {
		level = zapcore.InfoLevel
	}

	opts := []zap.Option{}
	if cfg.EnableCaller {
		opts = append(opts, zap.AddCaller(), zap.AddCallerSkip(1))
	}
	if cfg.EnableStacktrace {
		opts = append(opts, zap.AddStacktrace(zapcore.ErrorLevel))
	}
	if cfg.Development {
		opts = append(opts, zap.Development())
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(out), level)
	return &Logger{zl: zap.New(core, opts...)}, nil
}

// NewWithCore wraps an existing zap core, mainly for tests that observe entries
func NewWithCore(core zapcore.Core) *Logger {
	return &Logger{zl: zap.New(core)}
}

func (l *Logger) Debug(msg string, fields ...log.Field) { l.zl.Debug(msg, zapFields(fields)...) }
func (l *Logger) Info(msg string, fields ...log.Field)  { l.zl.Info(msg, zapFields(fields)...) }
func (l *Logger) Warn(msg string, fields ...log.Field)  { l.zl.Warn(msg, zapFields(fields)...) }
func (l *Logger) Error(msg string, fields ...log.Field) { l.zl.Error(msg, zapFields(fields)...) }
func (l *Logger) Fatal(msg string, fields ...log.Field) { l.zl.Fatal(msg, zapFields(fields)...) }

func (l *Logger) With(fields ...log.Field) log.Logger {
	if len(fields) == 0 {
		return l
	}
	return &Logger{zl: l.zl.With(zapFields(fields)...)}
}

// WithContext adds the trace and span IDs of the span carried by ctx
func (l *Logger) WithContext(ctx context.Context) log.Logger {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return l
	}

	return l.With(
		log.String(log.FieldTraceID, sc.TraceID().String()),
		log.String(log.FieldSpanID, sc.SpanID().String()),
	)
}

// Sync flushes buffered entries
func (l *Logger) Sync() error {
	return l.zl.Sync()
}

// zapFields relies on zap.Any, which picks the typed encoder for strings,
// numbers, durations and times and reports errors through zap.NamedError
func zapFields(fields []log.Field) []zap.Field {
	out := make([]zap.Field, len(fields))
	for i, f := range fields {
		out[i] = zap.Any(f.Key, f.Value)
	}
	return out
}

func timeEncoder(layout string) zapcore.TimeEncoder {
	switch layout {
	case "", time.RFC3339:
		return zapcore.RFC3339TimeEncoder
	case time.RFC3339Nano:
		return zapcore.RFC3339NanoTimeEncoder
	default:
		return zapcore.TimeEncoderOfLayout(layout)
	}
}
