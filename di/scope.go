package di

import "errors"

// scope is a child container whose lookups fall back to its parent.
// Registrations made on a scope are invisible to the parent and to sibling
// scopes, and Close only closes what the scope itself created.
type scope struct {
	*UnifiedContainer
	parent Container
}

// NewScope creates a request-scoped container on top of parent.
func NewScope(parent Container) Container {
	s := &scope{UnifiedContainer: newUnified(), parent: parent}
	s.UnifiedContainer.self = s
	return s
}

// Resolve looks in the scope first, then in the parent.
func (s *scope) Resolve(key string) (interface{}, error) {
	instance, err := s.UnifiedContainer.Resolve(key)
	if errors.Is(err, ErrNotRegistered) && s.parent != nil {
		return s.parent.Resolve(key)
	}
	return instance, err
}

// Has reports whether key is registered in the scope or its parent.
func (s *scope) Has(key string) bool {
	if s.UnifiedContainer.Has(key) {
		return true
	}
	return s.parent != nil && s.parent.Has(key)
}

// Parent returns the container this scope was created from.
func (s *scope) Parent() Container { return s.parent }
