// Package di provides the dependency injection container used by the
// bootstrap layer.
//
// The process container holds application-wide singletons. Every request gets
// a scope created with NewScope: registrations made on the scope live for one
// request and lookups fall back to the process container.
//
// # Registration
//
//	c.RegisterSingleton(di.KeyGlobalization, g)
//	c.Register("repo", func(c di.Container) (*Repo, error) { ... })
//
// # Resolution
//
//	g := di.MustResolve[*culture.Globalization](c, di.KeyGlobalization)
package di
