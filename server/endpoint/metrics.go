package endpoint

import (
	"maps"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
)

// Metrics returns a handler reporting process runtime figures merged with
// the fields of each stats source, such as log sink backlogs. Request
// metrics are exported through OpenTelemetry instead.
func Metrics(stats ...Details) gin.HandlerFunc {
	return func(c *gin.Context) {
		var m runtime.MemStats
		runtime.ReadMemStats(&m)

		body := gin.H{
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"runtime": gin.H{
				"goroutines":   runtime.NumGoroutine(),
				"heap_alloc":   m.HeapAlloc,
				"heap_objects": m.HeapObjects,
				"gc_runs":      m.NumGC,
			},
		}
		for _, src := range stats {
			if src != nil {
				maps.Copy(body, src())
			}
		}
		c.JSON(http.StatusOK, body)
	}
}
