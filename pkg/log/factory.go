package log

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
)

// Options configures a logger created through a registered driver.
type Options struct {
	// Level sets the minimum logging level
	Level Level `json:"level" yaml:"level"`

	// Development enables development mode features
	Development bool `json:"development" yaml:"development"`

	// Format selects the encoder, "json" or "console"
	Format string `json:"format" yaml:"format"`

	// EnableCaller adds caller information to log entries
	EnableCaller bool `json:"enable_caller" yaml:"enable_caller"`

	// Output receives encoded entries; nil means the driver default
	Output io.Writer `json:"-" yaml:"-"`
}

// Driver builds a Logger from Options.
type Driver func(opts Options) (Logger, error)

var (
	driversMu sync.RWMutex
	drivers   = make(map[string]Driver)
)

// RegisterDriver makes a logging driver available by name. Drivers
// register themselves from init functions.
func RegisterDriver(name string, driver Driver) {
	driversMu.Lock()
	defer driversMu.Unlock()

	if driver == nil {
		panic("log: RegisterDriver driver is nil")
	}
	if _, dup := drivers[name]; dup {
		panic("log: RegisterDriver called twice for driver " + name)
	}
	drivers[name] = driver
}

// Drivers returns the sorted names of the registered drivers.
func Drivers() []string {
	driversMu.RLock()
	defer driversMu.RUnlock()

	names := make([]string, 0, len(drivers))
	for name := range drivers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New creates a logger through the named driver.
func New(driver string, opts Options) (Logger, error) {
	driversMu.RLock()
	build, ok := drivers[driver]
	driversMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("unsupported logger driver: %s", driver)
	}
	return build(opts)
}

var (
	defaultMu     sync.RWMutex
	defaultLogger Logger = nopLogger{}
)

// SetDefault replaces the process-wide logger returned by Default.
func SetDefault(logger Logger) {
	if logger == nil {
		logger = nopLogger{}
	}

	defaultMu.Lock()
	defaultLogger = logger
	defaultMu.Unlock()
}

// Default returns the process-wide logger. It discards everything until
// SetDefault is called.
func Default() Logger {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultLogger
}

// Component returns the default logger tagged with a component field.
func Component(component string) Logger {
	return Default().With(String(FieldComponent, component))
}

// FromContext extracts a logger from the context, or returns the default logger.
func FromContext(ctx context.Context) Logger {
	if logger, ok := ctx.Value(loggerContextKey).(Logger); ok {
		return logger
	}
	return Default()
}

// ToContext adds a logger to the context.
func ToContext(ctx context.Context, logger Logger) context.Context {
	return context.WithValue(ctx, loggerContextKey, logger)
}

type contextKey string

const loggerContextKey contextKey = "logger"

// Nop returns a logger that discards everything.
func Nop() Logger {
	return nopLogger{}
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...Field) {}
func (nopLogger) Info(string, ...Field) {}
func (nopLogger) Warn(string, ...Field) {}
func (nopLogger) Error(string, ...Field) {}
func (nopLogger) Fatal(string, ...Field) {}
func (n nopLogger) With(...Field) Logger { return n }
func (n nopLogger) WithContext(context.Context) Logger { return n }
