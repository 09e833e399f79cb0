package schema

import (
	"fmt"
	"sort"
	"sync"
)

var (
	mu       sync.RWMutex
	registry = make(map[string]Representable)
)

// Register registers a representable type in the global registry
func Register(name string, r Representable) error {
	if r == nil {
		return fmt.Errorf("cannot register nil representable")
	}
	if name == "" {
		return fmt.Errorf("representable must have a name")
	}

	mu.Lock()
	defer mu.Unlock()

	if _, exists := registry[name]; exists {
		return fmt.Errorf("schema %q already registered", name)
	}

	registry[name] = r
	return nil
}

// MustRegister is Register for generated init functions; it panics on error.
func MustRegister(name string, r Representable) {
	if err := Register(name, r); err != nil {
		panic(err)
	}
}

// Lookup looks up a representable type by name
func Lookup(name string) Representable {
	mu.RLock()
	defer mu.RUnlock()
	return registry[name]
}

// Names returns the registered names in sorted order.
func Names() []string {
	mu.RLock()
	defer mu.RUnlock()

	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// All returns all registered representable types
func All() map[string]Representable {
	mu.RLock()
	defer mu.RUnlock()

	result := make(map[string]Representable, len(registry))
	for k, v := range registry {
		result[k] = v
	}
	return result
}
