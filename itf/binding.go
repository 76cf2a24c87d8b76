package itf

import "fmt"

// Func is a remote procedure bound to an interface.
type Func func(args ...interface{}) (interface{}, error)

// Bind returns a function calling the named method. The binding dispatches
// through Call, so it fails cleanly after the interface was closed.
func (i *Interface) Bind(name string) (Func, error) {
	if i.state != Ready {
		return nil, ErrNotOpen
	}
	if _, ok := i.device.Method(name); !ok {
		return nil, fmt.Errorf("%w: %s", ErrInvalidName, name)
	}
	return func(args ...interface{}) (interface{}, error) {
		return i.Call(name, args...)
	}, nil
}

// Bindings returns bindings for all methods of the device.
func (i *Interface) Bindings() map[string]Func {
	fs := make(map[string]Func)
	for name := range i.Device().Methods {
		name := name
		fs[name] = func(args ...interface{}) (interface{}, error) {
			return i.Call(name, args...)
		}
	}
	return fs
}

// Help returns the description of a method.
func (i *Interface) Help(name string) (string, error) {
	m, ok := i.Device().Method(name)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrInvalidName, name)
	}
	return m.Describe(), nil
}
