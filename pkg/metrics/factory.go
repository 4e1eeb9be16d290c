package metrics

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// DefaultFactory is the factory used when none is configured
const DefaultFactory = "prometheus"

// ErrUnknownFactory is returned by NewProvider for unregistered names
var ErrUnknownFactory = errors.New("unknown metrics factory")

var (
	factoriesMu sync.RWMutex
	factories   = make(map[string]Factory)
)

// RegisterFactory makes a provider backend available by name. Backends
// register themselves from init functions; registering a name twice panics.
func RegisterFactory(name string, factory Factory) {
	factoriesMu.Lock()
	defer factoriesMu.Unlock()

	if factory == nil {
		panic("metrics: RegisterFactory factory is nil")
	}
	if _, dup := factories[name]; dup {
		panic("metrics: RegisterFactory called twice for " + name)
	}
	factories[name] = factory
}

// Factories returns the sorted names of the registered backends
func Factories() []string {
	factoriesMu.RLock()
	defer factoriesMu.RUnlock()

	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewProvider builds a fresh provider through the named backend. An empty
// name selects DefaultFactory.
func NewProvider(name string, opts ProviderOptions) (Provider, error) {
	if name == "" {
		name = DefaultFactory
	}

	factoriesMu.RLock()
	create, ok := factories[name]
	factoriesMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %q (registered: %v)", ErrUnknownFactory, name, Factories())
	}
	return create(opts)
}
