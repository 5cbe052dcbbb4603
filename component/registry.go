package component

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/kbukum/webhost/logger"
)

// StopTimeout bounds the shutdown of a single component.
const StopTimeout = 10 * time.Second

// ErrDuplicate is returned by Register for a name already taken.
var ErrDuplicate = errors.New("component already registered")

type entry struct {
	Component
	started bool
}

// Registry starts components in registration order and stops them in
// reverse, so a component may rely on everything registered before it.
type Registry struct {
	mu      sync.RWMutex
	entries []*entry
	log     *logger.Logger
}

func NewRegistry() *Registry {
	return &Registry{}
}

// SetLogger replaces the lifecycle logger. The default is the global
// logger at the time of each message.
func (r *Registry) SetLogger(l *logger.Logger) {
	r.mu.Lock()
	r.log = l
	r.mu.Unlock()
}

func (r *Registry) logr() *logger.Logger {
	if r.log != nil {
		return r.log
	}
	return logger.WithComponent("components")
}

func (r *Registry) find(name string) *entry {
	if i := slices.IndexFunc(r.entries, func(e *entry) bool { return e.Name() == name }); i >= 0 {
		return r.entries[i]
	}
	return nil
}

// Register appends c. Register dependencies first.
func (r *Registry) Register(c Component) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.find(c.Name()) != nil {
		return fmt.Errorf("%w: %s", ErrDuplicate, c.Name())
	}
	r.entries = append(r.entries, &entry{Component: c})
	r.logr().Debug("Component registered", map[string]interface{}{logger.FieldComponent: c.Name()})
	return nil
}

// StartAll starts every component in order. When one fails, those already
// started are stopped again and the start error is returned.
func (r *Registry) StartAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.logr().Info("Starting components", map[string]interface{}{"count": len(r.entries)})
	for _, e := range r.entries {
		if err := e.Start(ctx); err != nil {
			r.logr().Error("Component start failed", logger.Fields(logger.FieldComponent, e.Name(), logger.FieldError, err.Error()))
			if stopErr := r.stopStarted(ctx); stopErr != nil {
				r.logr().Warn("Rollback incomplete", logger.ErrorFields("start", stopErr))
			}
			return fmt.Errorf("start %s: %w", e.Name(), err)
		}
		e.started = true
		r.logr().Debug("Component started", map[string]interface{}{logger.FieldComponent: e.Name()})
	}
	return nil
}

// StopAll stops the started components in reverse order. Every component
// gets its own StopTimeout; all failures are returned joined.
func (r *Registry) StopAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logr().Info("Stopping components")
	if err := r.stopStarted(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func (r *Registry) stopStarted(ctx context.Context) error {
	var errs []error
	for _, e := range slices.Backward(r.entries) {
		if !e.started {
			continue
		}
		stopCtx, cancel := context.WithTimeout(ctx, StopTimeout)
		err := e.Stop(stopCtx)
		cancel()
		e.started = false
		if err != nil {
			errs = append(errs, fmt.Errorf("stop %s: %w", e.Name(), err))
			r.logr().Error("Component stop failed", logger.Fields(logger.FieldComponent, e.Name(), logger.FieldError, err.Error()))
			continue
		}
		r.logr().Debug("Component stopped", map[string]interface{}{logger.FieldComponent: e.Name()})
	}
	return errors.Join(errs...)
}

// HealthAll asks every component, in registration order.
func (r *Registry) HealthAll(ctx context.Context) []Health {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Health, len(r.entries))
	for i, e := range r.entries {
		out[i] = e.Health(ctx)
	}
	return out
}

// Get returns the component called name, or nil.
func (r *Registry) Get(name string) Component {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e := r.find(name); e != nil {
		return e.Component
	}
	return nil
}

// All returns the components in registration order.
func (r *Registry) All() []Component {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Component, len(r.entries))
	for i, e := range r.entries {
		out[i] = e.Component
	}
	return out
}

// Names returns the component names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.entries))
	for i, e := range r.entries {
		out[i] = e.Name()
	}
	return out
}
