package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/webhost/errors"
	"github.com/kbukum/webhost/logger"
)

// StatusCodeHandler answers requests that no route handled: unknown paths,
// unsupported methods and bare status codes. OPTIONS requests without a
// route are preflights and get an empty 204.
type StatusCodeHandler struct {
	log *logger.Logger
}

// NewStatusCodeHandler creates a StatusCodeHandler logging to log; nil uses
// the global logger.
func NewStatusCodeHandler(log *logger.Logger) *StatusCodeHandler {
	return &StatusCodeHandler{log: log}
}

// Install registers the handler as the engine's NoRoute and NoMethod
// handlers.
func (h *StatusCodeHandler) Install(engine *gin.Engine) {
	engine.NoRoute(h.NoRoute)
	engine.NoMethod(h.NoMethod)
}

// NoRoute handles requests whose path matches no route.
func (h *StatusCodeHandler) NoRoute(c *gin.Context) {
	h.Handle(c, http.StatusNotFound)
}

// NoMethod handles requests whose path exists for other methods only.
func (h *StatusCodeHandler) NoMethod(c *gin.Context) {
	h.Handle(c, http.StatusMethodNotAllowed)
}

// Handle writes the error envelope for status and aborts the chain.
func (h *StatusCodeHandler) Handle(c *gin.Context, status int) {
	if c.Request.Method == http.MethodOptions {
		c.AbortWithStatus(http.StatusNoContent)
		return
	}

	appErr := h.errorFor(c, status)
	if status >= http.StatusInternalServerError {
		h.logr().WithContext(c.Request.Context()).Error("Request failed", map[string]interface{}{
			"status": status,
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
		})
	}
	c.Abort()
	Render(c, status, appErr.ToResponse())
}

func (h *StatusCodeHandler) errorFor(c *gin.Context, status int) *errors.AppError {
	method, path := c.Request.Method, c.Request.URL.Path
	switch status {
	case http.StatusNotFound:
		return errors.RouteNotFound(method, path)
	case http.StatusMethodNotAllowed:
		return errors.MethodNotAllowed(method, path)
	case http.StatusUnauthorized:
		return errors.Unauthorized("")
	case http.StatusForbidden:
		return errors.Forbidden("")
	case http.StatusServiceUnavailable:
		return errors.ServiceUnavailable("service")
	}
	code := errors.ErrCodeInternal
	if status < http.StatusInternalServerError {
		code = errors.ErrCodeInvalidInput
	}
	return errors.WithStatus(code, status, http.StatusText(status))
}

func (h *StatusCodeHandler) logr() *logger.Logger {
	if h.log != nil {
		return h.log
	}
	return logger.GetGlobalLogger()
}
