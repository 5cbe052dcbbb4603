package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/kbukum/webhost/logger"
	"github.com/kbukum/webhost/server/endpoint"
	"github.com/kbukum/webhost/server/middleware"
	"github.com/kbukum/webhost/version"
)

// Server is the HTTP server of the web host, backed by Gin and served over
// HTTP/1.1 and h2c on one port. Extra http.Handler mounts share the port.
type Server struct {
	httpServer *http.Server
	engine     *gin.Engine
	mux        *http.ServeMux
	config     Config
	log        *logger.Logger

	mu    sync.RWMutex
	bound string
}

// New creates a new Server. The Gin engine is created bare; the caller
// decides the middleware order.
func New(cfg Config, log *logger.Logger) *Server {
	// Set Gin mode based on global zerolog level.
	if zerolog.GlobalLevel() <= zerolog.DebugLevel {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	if log == nil {
		log = logger.GetGlobalLogger()
	}

	engine := gin.New()
	// Unmatched methods reach the status-code handler as 405 instead of 404.
	engine.HandleMethodNotAllowed = true

	mux := http.NewServeMux()
	mux.Handle("/", engine)

	h2s := &http2.Server{
		MaxConcurrentStreams: 250,
		IdleTimeout:          120 * time.Second,
	}

	read, write, idle := cfg.timeouts()
	httpServer := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      h2c.NewHandler(mux, h2s),
		ReadTimeout:  read,
		WriteTimeout: write,
		IdleTimeout:  idle,
	}

	return &Server{
		httpServer: httpServer,
		engine:     engine,
		mux:        mux,
		config:     cfg,
		log:        log.WithComponent("server"),
	}
}

// GinEngine returns the underlying Gin engine for route registration.
func (s *Server) GinEngine() *gin.Engine {
	return s.engine
}

// Handler returns the composed root handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Config returns the server configuration.
func (s *Server) Config() Config {
	return s.config
}

// Handle mounts an http.Handler at the given pattern on the root ServeMux,
// next to the Gin engine mounted at "/".
func (s *Server) Handle(pattern string, handler http.Handler) {
	s.mux.Handle(pattern, handler)
	s.log.Debug("Handler mounted", map[string]interface{}{
		"pattern": pattern,
	})
}

// Start binds the port and begins serving. It returns once the listener is
// bound so the caller knows the port is ready; serving continues in a goroutine.
func (s *Server) Start(ctx context.Context) error {
	s.log.Info("Starting HTTP server", map[string]interface{}{
		"addr": s.httpServer.Addr,
	})

	var lc net.ListenConfig
	listener, err := lc.Listen(ctx, "tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("server failed to bind %s: %w", s.httpServer.Addr, err)
	}

	s.mu.Lock()
	s.bound = listener.Addr().String()
	s.mu.Unlock()

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			s.log.Error("Server error", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}()

	s.log.Info("HTTP server started", map[string]interface{}{
		"addr": s.Addr(),
	})
	return nil
}

// Stop gracefully shuts down the server with a 5-second deadline.
func (s *Server) Stop(ctx context.Context) error {
	s.log.Info("Shutting down HTTP server")

	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.log.Error("Server shutdown error", map[string]interface{}{
			"error": err.Error(),
		})
		return fmt.Errorf("server shutdown error: %w", err)
	}

	s.log.Info("HTTP server shut down successfully")
	return nil
}

// Addr returns the bound address once started, the configured one before.
func (s *Server) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.bound != "" {
		return s.bound
	}
	return s.httpServer.Addr
}

// Use appends Gin middleware to the engine.
func (s *Server) Use(handlers ...gin.HandlerFunc) {
	s.engine.Use(handlers...)
}

// ApplyMiddleware applies the standard middleware stack: recovery, request
// id, any instrumentation handlers, request logging to commLog and the body
// size limit.
func (s *Server) ApplyMiddleware(commLog *logger.Logger, instrument ...gin.HandlerFunc) error {
	limit, err := s.config.MaxBodyBytes()
	if err != nil {
		return fmt.Errorf("server.max_body_size: %w", err)
	}
	s.engine.Use(middleware.Recovery(s.log))
	s.engine.Use(middleware.RequestID())
	s.engine.Use(instrument...)
	s.engine.Use(middleware.RequestLogger(commLog))
	s.engine.Use(middleware.BodySizeLimit(limit))
	return nil
}

// DefaultEndpoints describes what the built-in endpoints report.
type DefaultEndpoints struct {
	Identity version.Info
	Health   endpoint.HealthChecker
	// Host adds host service details to /info.
	Host endpoint.Details
	// Stats adds fields to /metrics.
	Stats endpoint.Details
}

// RegisterDefaultEndpoints registers the health, info, metrics, liveness,
// readiness and version endpoints.
func (s *Server) RegisterDefaultEndpoints(d DefaultEndpoints) {
	name := d.Identity.Application
	s.engine.GET("/health", endpoint.Health(name, d.Health))
	s.engine.GET("/info", endpoint.Info(d.Identity, d.Host))
	s.engine.GET("/metrics", endpoint.Metrics(d.Stats))
	s.engine.GET("/alive", endpoint.Liveness(name))
	s.engine.GET("/ready", endpoint.Readiness(name, d.Health))
	s.engine.GET("/version", endpoint.Version(d.Identity))
}
