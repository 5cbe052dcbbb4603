// Package culture negotiates the request culture from the Accept-Language
// header against a fixed set of supported culture identifiers and exposes
// locale-aware formatting through golang.org/x/text.
//
// The supported set is configured once at startup through NewGlobalization and
// never changes afterwards. The first configured identifier is the default.
//
//	g, err := culture.NewGlobalization([]string{"en", "fr-fr"})
//	c := g.Resolve(r.Header.Get("Accept-Language"))
//	ctx = culture.WithCulture(ctx, c)
package culture
