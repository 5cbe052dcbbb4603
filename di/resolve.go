package di

import (
	"errors"
	"fmt"
)

// ErrTypeMismatch is returned when a registration holds a value of another
// type than the one requested.
var ErrTypeMismatch = errors.New("component has unexpected type")

// Resolve looks key up in c, walking scopes up to the process container, and
// asserts the result to T.
//
//	ser, err := di.Resolve[serializer.Serializer](scope, di.KeySerializer)
func Resolve[T any](c Container, key string) (T, error) {
	var zero T
	instance, err := c.Resolve(key)
	if err != nil {
		return zero, fmt.Errorf("di: resolve %s: %w", key, err)
	}
	v, ok := instance.(T)
	if !ok {
		return zero, fmt.Errorf("di: resolve %s: %w: %T, want %T", key, ErrTypeMismatch, instance, zero)
	}
	return v, nil
}

// TryResolve is Resolve for optional dependencies such as the request key.
func TryResolve[T any](c Container, key string) (T, bool) {
	v, err := Resolve[T](c, key)
	return v, err == nil
}

// MustResolve is Resolve for host services registered during startup; a
// failure is a wiring bug and panics.
func MustResolve[T any](c Container, key string) T {
	v, err := Resolve[T](c, key)
	if err != nil {
		panic(err)
	}
	return v
}
