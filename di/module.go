package di

import (
	"fmt"

	"github.com/kbukum/webhost/logger"
)

// Module is a unit of registrations contributed by a feature package.
type Module interface {
	Name() string
	Register(c Container) error
}

// ModuleFunc adapts a function to Module.
type ModuleFunc struct {
	ID string
	Fn func(c Container) error
}

func (m ModuleFunc) Name() string               { return m.ID }
func (m ModuleFunc) Register(c Container) error { return m.Fn(c) }

// AutoRegister runs every module's registrations in order. An empty list is a
// no-op. Nil modules are skipped.
func AutoRegister(c Container, modules ...Module) error {
	if len(modules) == 0 {
		return nil
	}
	for _, m := range modules {
		if m == nil {
			continue
		}
		if err := m.Register(c); err != nil {
			return fmt.Errorf("module %s: %w", m.Name(), err)
		}
		logger.Debug("Module registered", map[string]interface{}{
			"module": m.Name(),
		})
	}
	return nil
}
