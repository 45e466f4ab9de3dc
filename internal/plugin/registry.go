package plugin

import (
	"fmt"
	"slices"
	"sync"

	"github.com/maruel/natural"
)

// Registry manages extension registration and lookup.
type Registry struct {
	mu         sync.RWMutex
	extensions map[string]Extension
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		extensions: make(map[string]Extension),
	}
}

// Register adds an extension to the registry.
// Returns an error if an extension with the same name already exists.
func (r *Registry) Register(ext Extension) error {
	if ext == nil {
		return fmt.Errorf("cannot register nil extension")
	}
	name := ext.Name()
	if name == "" {
		return fmt.Errorf("extension name is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.extensions[name]; exists {
		return fmt.Errorf("extension %s already registered", name)
	}
	r.extensions[name] = ext
	return nil
}

// Get retrieves an extension by name.
func (r *Registry) Get(name string) (Extension, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ext, ok := r.extensions[name]
	if !ok {
		return nil, fmt.Errorf("extension %s not found", name)
	}
	return ext, nil
}

// Has checks if an extension is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.extensions[name]
	return ok
}

// Names returns the registered extension names in natural order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.extensions))
	for name := range r.extensions {
		names = append(names, name)
	}
	slices.SortFunc(names, func(a, b string) int {
		switch {
		case natural.Less(a, b):
			return -1
		case natural.Less(b, a):
			return 1
		}
		return 0
	})
	return names
}

// Unregister removes an extension from the registry.
func (r *Registry) Unregister(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.extensions[name]; !ok {
		return fmt.Errorf("extension %s not found", name)
	}
	delete(r.extensions, name)
	return nil
}

// Count returns the number of registered extensions.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.extensions)
}

// globalRegistry is the registry extensions add themselves to from init.
var globalRegistry = NewRegistry()

// DefaultRegistry returns the global registry.
func DefaultRegistry() *Registry {
	return globalRegistry
}

// Register adds an extension to the global registry.
func Register(ext Extension) error {
	return globalRegistry.Register(ext)
}

// MustRegister is Register for init functions; it panics on a duplicate name.
func MustRegister(ext Extension) {
	if err := globalRegistry.Register(ext); err != nil {
		panic(err)
	}
}
