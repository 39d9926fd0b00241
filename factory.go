package southbound

import (
	"fmt"
	"sort"
	"sync"

	"github.com/nanoncore/cmw-southbound/vendors/comware"
)

// Device types registered by DefaultRegistry
const (
	DeviceTypeH3C       = "h3c_cmw"
	DeviceTypeComware   = "comware"
	DeviceTypeHPComware = "hp_comware"
)

// Factory builds a driver for one device
type Factory func(config *DeviceConfig) (Driver, error)

// Registry maps device types to driver factories. It replaces plugin
// discovery: hosts register what they support explicitly.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry returns an empty registry
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// DefaultRegistry returns a fresh registry with the Comware device types
func DefaultRegistry() *Registry {
	r := NewRegistry()
	for _, t := range []string{DeviceTypeH3C, DeviceTypeComware, DeviceTypeHPComware} {
		// names are distinct, Register cannot fail here
		_ = r.Register(t, newComware)
	}
	return r
}

func newComware(config *DeviceConfig) (Driver, error) {
	return comware.New(config)
}

// Register adds a factory. Registering a type twice is an error.
func (r *Registry) Register(deviceType string, f Factory) error {
	if deviceType == "" || f == nil {
		return fmt.Errorf("device type and factory are required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.factories[deviceType]; ok {
		return fmt.Errorf("device type %s already registered", deviceType)
	}
	r.factories[deviceType] = f
	return nil
}

// New creates a driver for deviceType. The driver is not opened.
func (r *Registry) New(deviceType string, config *DeviceConfig) (Driver, error) {
	r.mu.RLock()
	f, ok := r.factories[deviceType]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unsupported device type: %s", deviceType)
	}
	drv, err := f(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s driver: %w", deviceType, err)
	}
	return drv, nil
}

// Types returns the registered device types, sorted
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for t := range r.factories {
		names = append(names, t)
	}
	sort.Strings(names)
	return names
}
