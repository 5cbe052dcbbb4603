package endpoint

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/webhost/version"
)

// startTime records when the process started for uptime calculation.
var startTime = time.Now()

// Info returns a handler reporting the host identity, its uptime and the
// host services described by host, when given.
func Info(id version.Info, host Details) gin.HandlerFunc {
	return func(c *gin.Context) {
		body := gin.H{
			"application": id.Application,
			"domain":      id.Domain,
			"environment": id.Environment,
			"version":     id.Short(),
			"release":     id.Release(),
			"uptime":      time.Since(startTime).Round(time.Second).String(),
			"timestamp":   time.Now().UTC().Format(time.RFC3339),
		}
		if host != nil {
			body["host"] = host()
		}
		c.JSON(http.StatusOK, body)
	}
}

// Version returns a handler reporting the configured version and the build
// metadata.
func Version(id version.Info) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"version": id.Version,
			"build":   id.Build,
			"release": id.Release(),
		})
	}
}
