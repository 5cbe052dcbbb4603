package middleware

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/webhost/di"
)

// ScopeKey is the gin context key of the per-request container.
const ScopeKey = "request_scope"

type scopeCtxKey struct{}

// SetScope attaches the request container to the gin context and to the
// request's context.Context.
func SetScope(c *gin.Context, scope di.Container) {
	c.Set(ScopeKey, scope)
	c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), scopeCtxKey{}, scope))
}

// Scope returns the request container attached by SetScope.
func Scope(c *gin.Context) (di.Container, bool) {
	v, ok := c.Get(ScopeKey)
	if !ok {
		return nil, false
	}
	s, ok := v.(di.Container)
	return s, ok
}

// ScopeFromContext returns the request container stored in ctx.
func ScopeFromContext(ctx context.Context) (di.Container, bool) {
	s, ok := ctx.Value(scopeCtxKey{}).(di.Container)
	return s, ok
}
