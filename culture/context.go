package culture

import "context"

// ContextKey is the gin context key the resolved culture is stored under.
const ContextKey = "culture"

type ctxKey int

const (
	currentKey ctxKey = iota
	currentUIKey
)

// WithCulture stores c as both the current culture and the current UI
// culture of ctx.
func WithCulture(ctx context.Context, c Culture) context.Context {
	ctx = context.WithValue(ctx, currentKey, c)
	return context.WithValue(ctx, currentUIKey, c)
}

// WithUICulture overrides only the UI culture.
func WithUICulture(ctx context.Context, c Culture) context.Context {
	return context.WithValue(ctx, currentUIKey, c)
}

// Current returns the current culture of ctx.
func Current(ctx context.Context) (Culture, bool) {
	c, ok := ctx.Value(currentKey).(Culture)
	return c, ok
}

// CurrentUI returns the current UI culture of ctx.
func CurrentUI(ctx context.Context) (Culture, bool) {
	c, ok := ctx.Value(currentUIKey).(Culture)
	return c, ok
}

// FromContext returns the current culture or fallback when none is set.
func FromContext(ctx context.Context, fallback Culture) Culture {
	if c, ok := Current(ctx); ok {
		return c
	}
	return fallback
}
