package middleware

import (
	"github.com/gin-gonic/gin"
)

// CORS header values applied to every response.
const (
	CORSAllowOrigin  = "*"
	CORSAllowMethods = "POST, GET, DELETE, PUT, OPTIONS, PATCH"
	CORSAllowHeaders = "Accept, Origin, Content-type, Authorization, X-Request-Id, X-CSRF-Token"
)

// CORSHeaders returns the after-hook that stamps the fixed CORS headers on
// the response, whatever its status or method.
func CORSHeaders() AfterHook {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("Access-Control-Allow-Origin", CORSAllowOrigin)
		h.Set("Access-Control-Allow-Methods", CORSAllowMethods)
		h.Set("Access-Control-Allow-Headers", CORSAllowHeaders)
	}
}

// EnableCORS inserts the CORS after-hook at the front of the after pipeline.
func EnableCORS(p *Pipelines) error {
	return p.InsertAfter("cors", CORSHeaders())
}
