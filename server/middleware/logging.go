package middleware

import (
	"slices"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/webhost/logger"
)

// SlowRequest marks log entries of requests that took longer.
const SlowRequest = 500 * time.Millisecond

// quietPaths are the monitoring endpoints left out of the communication log,
// also when mounted under an /api prefix.
var quietPaths = []string{"/health", "/alive", "/ready", "/metrics"}

// RequestLogger writes one communication log entry per request. The level
// follows the status: 5xx error, 4xx warn, everything else debug. Trace,
// request key and culture fields come from the request context. A nil log
// uses the global logger.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if quiet(c.Request.URL.Path) {
			c.Next()
			return
		}
		began := time.Now()
		c.Next()

		l := log
		if l == nil {
			l = logger.GetGlobalLogger()
		}
		status := c.Writer.Status()
		fields := requestFields(c, time.Since(began))
		l = l.WithContext(c.Request.Context())
		switch {
		case status >= 500:
			fields["size"] = c.Writer.Size()
			l.Error("Request completed", fields)
		case status >= 400:
			l.Warn("Request completed", fields)
		default:
			l.Debug("Request completed", fields)
		}
	}
}

func requestFields(c *gin.Context, took time.Duration) map[string]interface{} {
	target := c.Request.URL.Path
	if q := c.Request.URL.RawQuery; q != "" {
		target += "?" + q
	}
	fields := logger.Fields(
		"method", c.Request.Method,
		"path", target,
		"status", c.Writer.Status(),
		logger.FieldDuration, took.Milliseconds(),
		"client", c.ClientIP(),
	)
	if route := c.FullPath(); route != "" {
		fields["route"] = route
	}
	if took > SlowRequest {
		fields["slow"] = true
	}
	return fields
}

func quiet(path string) bool {
	return slices.ContainsFunc(quietPaths, func(p string) bool {
		return path == p || (strings.HasPrefix(path, "/api") && strings.HasSuffix(path, p))
	})
}
