package module

import "reflect"

// PortsOf finds T in m.Ports(), either the value itself or an exported struct field
func PortsOf[T any](m Module) (T, bool) {
	var zero T
	p := m.Ports()
	if p == nil {
		return zero, false
	}
	if v, ok := p.(T); ok {
		return v, true
	}
	rv := reflect.ValueOf(p)
	if rv.Kind() != reflect.Struct {
		return zero, false
	}
	for i := range rv.NumField() {
		if f := rv.Field(i); f.CanInterface() {
			if v, ok := f.Interface().(T); ok {
				return v, true
			}
		}
	}
	return zero, false
}

// MustPortsOf panics naming the module when T is absent
func MustPortsOf[T any](m Module) T {
	v, ok := PortsOf[T](m)
	if !ok {
		panic("module: requested port not found on module " + m.Name())
	}
	return v
}
