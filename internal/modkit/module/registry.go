package module

import "sync"

// process wide port sets keyed by module name, filled while the API mounts
var (
	mu  sync.RWMutex
	reg = map[string]any{}
)

// Register stores ports under name, replacing any earlier set
func Register(name string, ports any) {
	mu.Lock()
	defer mu.Unlock()
	reg[name] = ports
}

// PortsAs returns the set under name when it is a T
func PortsAs[T any](name string) (T, bool) {
	mu.RLock()
	defer mu.RUnlock()
	v, ok := reg[name].(T)
	return v, ok
}

// Reset empties the registry
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	reg = map[string]any{}
}
