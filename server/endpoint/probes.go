package endpoint

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/webhost/component"
)

// HealthChecker reports the health of the registered components.
type HealthChecker func(ctx context.Context) []component.Health

// Details supplies extra fields for an endpoint response at request time.
type Details func() map[string]any

// Health reports the aggregate status with every component. Only an
// unhealthy aggregate answers 503.
func Health(serviceName string, checker HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		components := check(c.Request.Context(), checker)
		status := component.Aggregate(components)
		body := probeBody(string(status), serviceName)
		body["components"] = components
		c.JSON(statusFor(status == component.StatusUnhealthy), body)
	}
}

// Liveness returns a handler for K8s liveness probes. It never consults
// components: a live process can serve HTTP even when dependencies are down.
func Liveness(serviceName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, probeBody("alive", serviceName))
	}
}

// Readiness returns a handler for K8s readiness probes. A degraded service
// stays ready; any unhealthy component takes it out of rotation.
func Readiness(serviceName string, checker HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		if component.Aggregate(check(c.Request.Context(), checker)) == component.StatusUnhealthy {
			c.JSON(statusFor(true), probeBody("not_ready", serviceName))
			return
		}
		c.JSON(http.StatusOK, probeBody("ready", serviceName))
	}
}

func check(ctx context.Context, checker HealthChecker) []component.Health {
	if checker == nil {
		return nil
	}
	return checker(ctx)
}

func statusFor(unavailable bool) int {
	if unavailable {
		return http.StatusServiceUnavailable
	}
	return http.StatusOK
}

func probeBody(status, serviceName string) gin.H {
	return gin.H{
		"status":    status,
		"service":   serviceName,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
}
