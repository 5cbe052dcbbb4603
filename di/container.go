package di

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"sync"

	"github.com/kbukum/webhost/logger"
)

// ErrNotRegistered is returned when a key has no registration in the container
// or any of its parents.
var ErrNotRegistered = errors.New("component not registered")

// RegistrationMode determines how a component should be resolved
type RegistrationMode int

const (
	Eager     RegistrationMode = iota // Initialize immediately on registration
	Lazy                              // Initialize on first resolve
	Singleton                         // Pre-created instance
)

// String returns the mode name.
func (m RegistrationMode) String() string {
	switch m {
	case Eager:
		return "eager"
	case Lazy:
		return "lazy"
	case Singleton:
		return "singleton"
	default:
		return "unknown"
	}
}

// Container defines the interface for a dependency injection container
type Container interface {
	Register(key string, constructor interface{}) error
	RegisterLazy(key string, constructor interface{}) error
	RegisterEager(key string, constructor interface{}) error
	RegisterSingleton(key string, instance interface{}) error
	Resolve(key string) (interface{}, error)
	MustResolve(key string) interface{}
	Has(key string) bool
	Close() error

	// Introspection
	Registrations() []RegistrationInfo
}

// RegistrationInfo describes a registered component for introspection.
type RegistrationInfo struct {
	Key         string
	Mode        RegistrationMode // Eager, Lazy, or Singleton
	Initialized bool
}

// UnifiedContainer is the process-wide container. Scopes created with
// NewScope share the same implementation.
type UnifiedContainer struct {
	components map[string]*registration
	singletons map[string]interface{}
	mutex      sync.RWMutex

	// self is handed to DI-aware constructors; a scope points it at itself so
	// constructors can reach parent registrations.
	self Container
}

type registration struct {
	key         string
	constructor interface{}
	mode        RegistrationMode
	instance    interface{}
	mutex       sync.Mutex
	initialized bool
}

func newUnified() *UnifiedContainer {
	c := &UnifiedContainer{
		components: make(map[string]*registration),
		singletons: make(map[string]interface{}),
	}
	c.self = c
	return c
}

// NewContainer creates an empty process container.
func NewContainer() Container {
	return newUnified()
}

// Register component with lazy loading by default (most common case)
func (c *UnifiedContainer) Register(key string, constructor interface{}) error {
	return c.RegisterLazy(key, constructor)
}

// RegisterLazy registers a component for lazy initialization
func (c *UnifiedContainer) RegisterLazy(key string, constructor interface{}) error {
	if reflect.ValueOf(constructor).Kind() != reflect.Func {
		return fmt.Errorf("constructor for '%s' must be a function", key)
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.components[key] = &registration{
		key:         key,
		constructor: constructor,
		mode:        Lazy,
	}
	return nil
}

// RegisterEager registers a component for immediate initialization
func (c *UnifiedContainer) RegisterEager(key string, constructor interface{}) error {
	instance, err := c.callConstructor(constructor)
	if err != nil {
		return fmt.Errorf("failed to initialize eager component '%s': %w", key, err)
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.components[key] = &registration{
		key:         key,
		constructor: constructor,
		mode:        Eager,
		instance:    instance,
		initialized: true,
	}
	return nil
}

// RegisterSingleton registers a pre-created instance. Registering the same
// key again replaces the instance.
func (c *UnifiedContainer) RegisterSingleton(key string, instance interface{}) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.singletons[key] = instance
	return nil
}

// Resolve gets a component instance
func (c *UnifiedContainer) Resolve(key string) (interface{}, error) {
	c.mutex.RLock()
	if singleton, exists := c.singletons[key]; exists {
		c.mutex.RUnlock()
		return singleton, nil
	}
	reg, exists := c.components[key]
	c.mutex.RUnlock()

	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrNotRegistered, key)
	}

	return c.resolveRegistration(reg)
}

func (c *UnifiedContainer) resolveRegistration(reg *registration) (interface{}, error) {
	reg.mutex.Lock()
	defer reg.mutex.Unlock()

	if reg.initialized {
		return reg.instance, nil
	}
	if reg.mode == Eager {
		return nil, fmt.Errorf("eager component not properly initialized: %s", reg.key)
	}

	instance, err := c.callConstructor(reg.constructor)
	if err != nil {
		logger.Debug("Lazy component initialization failed", map[string]interface{}{
			"component": reg.key,
			"error":     err.Error(),
		})
		return nil, fmt.Errorf("failed to initialize lazy component '%s': %w", reg.key, err)
	}

	reg.instance = instance
	reg.initialized = true
	return instance, nil
}

// Has reports whether key is registered.
func (c *UnifiedContainer) Has(key string) bool {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	if _, ok := c.singletons[key]; ok {
		return true
	}
	_, ok := c.components[key]
	return ok
}

// MustResolve resolves key or panics.
func (c *UnifiedContainer) MustResolve(key string) interface{} {
	instance, err := c.self.Resolve(key)
	if err != nil {
		panic(err)
	}
	return instance
}

func (c *UnifiedContainer) callConstructor(constructor interface{}) (interface{}, error) {
	fn := reflect.ValueOf(constructor)
	if fn.Kind() != reflect.Func {
		return nil, fmt.Errorf("constructor must be a function")
	}

	fnType := fn.Type()

	switch fnType.NumIn() {
	case 0:
		// func() (Service, error) or func() Service
		return handleConstructorResults(fn.Call(nil))

	case 1:
		in := fnType.In(0)
		if in == contextType {
			return handleConstructorResults(fn.Call([]reflect.Value{reflect.ValueOf(context.Background())}))
		}
		if in == containerType {
			return handleConstructorResults(fn.Call([]reflect.Value{reflect.ValueOf(&c.self).Elem()}))
		}
	}
	return nil, fmt.Errorf("unsupported constructor signature %s", fnType)
}

var (
	contextType   = reflect.TypeOf((*context.Context)(nil)).Elem()
	containerType = reflect.TypeOf((*Container)(nil)).Elem()
)

func handleConstructorResults(results []reflect.Value) (interface{}, error) {
	switch len(results) {
	case 1:
		return results[0].Interface(), nil
	case 2:
		instance := results[0].Interface()
		if err, _ := results[1].Interface().(error); err != nil {
			return nil, err
		}
		return instance, nil
	default:
		return nil, fmt.Errorf("constructor must return either (instance) or (instance, error)")
	}
}

// Registrations returns info about all registered components, sorted by key.
func (c *UnifiedContainer) Registrations() []RegistrationInfo {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	result := make([]RegistrationInfo, 0, len(c.components)+len(c.singletons))

	for key, reg := range c.components {
		reg.mutex.Lock()
		result = append(result, RegistrationInfo{
			Key:         key,
			Mode:        reg.mode,
			Initialized: reg.initialized,
		})
		reg.mutex.Unlock()
	}

	for key := range c.singletons {
		result = append(result, RegistrationInfo{
			Key:         key,
			Mode:        Singleton,
			Initialized: true,
		})
	}

	sort.Slice(result, func(i, j int) bool { return result[i].Key < result[j].Key })
	return result
}

// Close closes every initialized instance implementing Close() error and
// returns the joined errors.
func (c *UnifiedContainer) Close() error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	var errs []error
	closeOne := func(key string, v interface{}) {
		if closer, ok := v.(interface{ Close() error }); ok {
			if err := closer.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close %s: %w", key, err))
			}
		}
	}

	for key, reg := range c.components {
		if reg.initialized && reg.instance != nil {
			closeOne(key, reg.instance)
		}
	}
	for key, singleton := range c.singletons {
		closeOne(key, singleton)
	}

	return errors.Join(errs...)
}
