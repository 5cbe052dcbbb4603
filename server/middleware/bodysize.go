package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/webhost/errors"
)

// BodySizeLimit returns a Gin middleware that restricts request bodies to
// limit bytes. A non-positive limit disables the check.
func BodySizeLimit(limit int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limit > 0 {
			if c.Request.ContentLength > limit {
				AbortWithError(c, errors.PayloadTooLarge(limit))
				return
			}
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		}
		c.Next()
	}
}
