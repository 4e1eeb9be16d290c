package log

import (
	"context"
	"fmt"
	"strings"
)

// Logger is the structured logger every metricsd component writes to.
//
//	logger.Info("Metrics server listening", log.String(log.FieldAddress, addr))
//	logger.WithContext(ctx).Error("Metrics request failed", log.Error(err))
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)

	// Fatal logs and exits the process
	Fatal(msg string, fields ...Field)

	// With returns a child logger that adds fields to every entry
	With(fields ...Field) Logger

	// WithContext returns a child logger carrying the trace and span IDs
	// found in ctx, if any
	WithContext(ctx context.Context) Logger
}

// Level is a logging priority. Higher levels are more important.
type Level int

const (
	DebugLevel Level = iota
	InfoLevel
	WarnLevel
	ErrorLevel
	FatalLevel
)

var levelNames = [...]string{
	DebugLevel: "debug",
	InfoLevel:  "info",
	WarnLevel:  "warn",
	ErrorLevel: "error",
	FatalLevel: "fatal",
}

func (l Level) String() string {
	if l < DebugLevel || l > FatalLevel {
		return fmt.Sprintf("Level(%d)", int(l))
	}
	return levelNames[l]
}

// ParseLevel parses a case-insensitive level name. The empty string is
// InfoLevel and "warning" is accepted for WarnLevel.
func ParseLevel(s string) (Level, error) {
	switch name := strings.ToLower(strings.TrimSpace(s)); name {
	case "":
		return InfoLevel, nil
	case "warning":
		return WarnLevel, nil
	default:
		for l, n := range levelNames {
			if n == name {
				return Level(l), nil
			}
		}
	}
	return InfoLevel, fmt.Errorf("unknown log level %q", s)
}
