package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/webhost/errors"
)

// Middleware is net/http middleware, accepted so hosts can reuse handlers
// written outside Gin.
type Middleware func(http.Handler) http.Handler

// Chain nests mws so the first one sees the request first.
func Chain(mws ...Middleware) Middleware {
	return func(h http.Handler) http.Handler {
		for i := range mws {
			h = mws[len(mws)-1-i](h)
		}
		return h
	}
}

// GinWrap runs mw inside the Gin chain. The rest of the chain runs as the
// wrapped handler and sees the request mw passes on, so headers or context
// values it adds are visible downstream. A mw that does not call its
// handler ends the request.
func GinWrap(mw Middleware) gin.HandlerFunc {
	return func(c *gin.Context) {
		called := false
		mw(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
			called = true
			c.Request = r
			c.Next()
		})).ServeHTTP(c.Writer, c.Request)
		if !called {
			c.Abort()
		}
	}
}

// AbortWithError answers with the envelope of err and stops the chain.
func AbortWithError(c *gin.Context, err *errors.AppError) {
	c.AbortWithStatusJSON(err.HTTPStatus, err.ToResponse())
}
