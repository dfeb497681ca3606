package provider

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
)

// Factory builds a handler from options.
type Factory func(Options) (Handler, error)

var (
	mu        sync.RWMutex
	factories = make(map[string]Factory)
)

// Register makes a family available to New. Family packages call it from
// init. Registering a name again replaces its factory, so a program can wrap
// a built-in family. Register panics on an empty name or a nil factory.
func Register(name string, factory Factory) {
	if name == "" || factory == nil {
		panic("provider: Register needs a name and a factory")
	}
	mu.Lock()
	defer mu.Unlock()
	factories[name] = factory
}

// New builds the handler of the named family with opts.
func New(name string, opts Options) (Handler, error) {
	mu.RLock()
	factory, ok := factories[name]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w %q (registered: %s)", ErrUnknownProvider, name, strings.Join(Available(), ", "))
	}

	h, err := factory(opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return h, nil
}

// Available returns the registered family names, sorted.
func Available() []string {
	mu.RLock()
	defer mu.RUnlock()
	return slices.Sorted(maps.Keys(factories))
}

func IsRegistered(name string) bool {
	mu.RLock()
	defer mu.RUnlock()
	_, ok := factories[name]
	return ok
}
