package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/kbukum/webhost/component"
	"github.com/kbukum/webhost/config"
	"github.com/kbukum/webhost/culture"
	"github.com/kbukum/webhost/di"
	"github.com/kbukum/webhost/logger"
	"github.com/kbukum/webhost/mapper"
	"github.com/kbukum/webhost/observability"
	"github.com/kbukum/webhost/serializer"
	"github.com/kbukum/webhost/server"
	"github.com/kbukum/webhost/server/middleware"
	"github.com/kbukum/webhost/version"
)

// App is a web host with uniform lifecycle management.
// The type parameter C is the config type, which must satisfy the Config interface.
// Any struct embedding WebConfig automatically satisfies Config.
//
// Example:
//
//	app, err := bootstrap.NewApp(&myConfig, bootstrap.WithModules(billing.Module{}))
//	if err := app.Bootstrap(ctx); err != nil {
//	    return err
//	}
//	app.Server.GinEngine().GET("/invoices/:id", handler)
//	app.Run(ctx)
type App[C Config] struct {
	Name       string
	Version    string
	Cfg        C
	Container  di.Container
	Components *component.Registry
	Logger     *logger.Logger
	Summary    *Summary
	Pipelines  *middleware.Pipelines

	// Set by Bootstrap.
	Server        *server.Server
	Telemetry     *observability.Telemetry
	CSRF          *middleware.CSRF
	Mapper        *mapper.Mapper
	Serializer    serializer.Serializer
	Globalization *culture.Globalization
	Root          *config.Root

	opts            *appOptions
	gracefulTimeout time.Duration
	statusHandler   *server.StatusCodeHandler
	sinks           []logger.Sink
	onConfigure     []func(ctx context.Context, app *App[C]) error

	bootOnce   sync.Once
	bootErr    error
	mapperOnce sync.Once
	mapperErr  error

	hooks [stageCount][]Hook
}

// LoadApp loads cfg for the named application with config.Load and
// creates the App. The loaded tree, including keys cfg does not declare,
// becomes the registered configuration root.
func LoadApp[C Config](name string, cfg C, opts ...Option) (*App[C], error) {
	root, err := config.Load(name, cfg, resolveOptions(opts).loaderOptions...)
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	all := make([]Option, 0, len(opts)+1)
	all = append(all, WithConfigRoot(root))
	all = append(all, opts...)
	return NewApp(cfg, all...)
}

// NewApp creates a new application instance from a typed config.
// It applies defaults and validates the config. Nothing is wired until
// Bootstrap runs.
func NewApp[C Config](cfg C, opts ...Option) (*App[C], error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	base := cfg.GetServiceConfig()

	app := &App[C]{
		Name:            base.Name,
		Version:         base.Version,
		Cfg:             cfg,
		Container:       di.NewContainer(),
		Components:      component.NewRegistry(),
		Pipelines:       middleware.NewPipelines(),
		gracefulTimeout: 15 * time.Second,
	}

	o := resolveOptions(opts)
	app.opts = o
	if o.container != nil {
		app.Container = o.container
	}
	if o.gracefulTimeout != nil {
		app.gracefulTimeout = *o.gracefulTimeout
	}

	// Provisional until the startup phase builds the configured logger.
	if o.logger != nil {
		app.Logger = o.logger
	} else {
		app.Logger = logger.GetGlobalLogger()
	}

	app.Summary = NewSummary(base.Name, base.Version)
	if o.summaryOut != nil {
		app.Summary.SetOutput(o.summaryOut)
	}
	return app, nil
}

// Bootstrap runs the startup, container and convention phases and composes
// the HTTP handler. It runs at most once; later calls return the first
// result.
func (a *App[C]) Bootstrap(ctx context.Context) error {
	a.bootOnce.Do(func() {
		a.bootErr = a.bootstrap(ctx)
	})
	return a.bootErr
}

func (a *App[C]) bootstrap(ctx context.Context) error {
	phases := []struct {
		name string
		run  func() error
	}{
		{"startup", func() error { return a.configureStartup(ctx) }},
		{"container", a.configureContainer},
		{"server", a.composeServer},
		{"conventions", func() error { a.configureConventions(); return nil }},
	}
	for _, p := range phases {
		start := time.Now()
		if err := p.run(); err != nil {
			return fmt.Errorf("%s: %w", p.name, err)
		}
		a.Logger.Debug("Phase complete", logger.PhaseFields(p.name, time.Since(start)))
	}
	a.Pipelines.Freeze()

	a.Logger.Info("Bootstrap complete", map[string]interface{}{
		"before_hooks": a.Pipelines.BeforeNames(),
		"after_hooks":  a.Pipelines.AfterNames(),
	})
	return nil
}

// Handler returns the composed HTTP handler. It bootstraps the app first;
// a bootstrap failure yields a handler answering 500.
func (a *App[C]) Handler() http.Handler {
	if err := a.Bootstrap(context.Background()); err != nil {
		a.Logger.Error("Bootstrap failed", logger.ErrorFields("handler", err))
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		})
	}
	return a.Server.Handler()
}

// RegisterComponent adds a component to the application's registry.
func (a *App[C]) RegisterComponent(c component.Component) error {
	return a.Components.Register(c)
}

// OnConfigure registers a callback to run after components are started.
// Use this to set up business-layer dependencies that need live infrastructure.
func (a *App[C]) OnConfigure(fn func(ctx context.Context, app *App[C]) error) {
	a.onConfigure = append(a.onConfigure, fn)
}

// ReadyCheck verifies that all registered components are healthy.
func (a *App[C]) ReadyCheck(ctx context.Context) error {
	results := a.Components.HealthAll(ctx)
	var unhealthy []string
	for _, h := range results {
		if h.Status != component.StatusHealthy {
			detail := h.Name + "=" + string(h.Status)
			if h.Message != "" {
				detail += "(" + h.Message + ")"
			}
			unhealthy = append(unhealthy, detail)
		}
	}
	if len(unhealthy) > 0 {
		return fmt.Errorf("unhealthy components: %v", unhealthy)
	}
	return nil
}

// Run executes the full application lifecycle for long-running services:
// Bootstrap, start components, OnStart hooks, configure callbacks, ready
// check, OnReady hooks, block on signal, OnStop hooks, graceful shutdown.
func (a *App[C]) Run(ctx context.Context) error {
	if err := a.startup(ctx); err != nil {
		return err
	}

	a.Logger.Info("Application ready, waiting for shutdown signal")
	a.WaitForSignal(ctx)

	return a.stop()
}

// RunTask executes a finite task with the full bootstrap lifecycle.
// Unlike Run, it does not block on shutdown signals. It runs the task and
// shuts down when the task completes or the context is canceled (for
// example via SIGINT/SIGTERM).
//
//	app, _ := bootstrap.NewApp(&cfg)
//	app.RunTask(ctx, func(ctx context.Context) error {
//	    return warmCaches(ctx)
//	})
func (a *App[C]) RunTask(ctx context.Context, task func(ctx context.Context) error) error {
	if err := a.startup(ctx); err != nil {
		return err
	}

	taskCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	go func() {
		select {
		case sig := <-sigCh:
			a.Logger.Info("Received signal, canceling task", map[string]interface{}{
				"signal": sig.String(),
			})
			cancel()
		case <-taskCtx.Done():
		}
	}()

	taskErr := task(taskCtx)

	if stopErr := a.stop(); stopErr != nil {
		if taskErr != nil {
			return taskErr
		}
		return stopErr
	}
	return taskErr
}

// startup performs the common initialization sequence shared by Run and RunTask.
func (a *App[C]) startup(ctx context.Context) error {
	start := time.Now()

	if err := a.Bootstrap(ctx); err != nil {
		return err
	}

	a.Logger.Info("Starting application", map[string]interface{}{
		"name":    a.Name,
		"version": a.Version,
	})

	if err := a.Components.StartAll(ctx); err != nil {
		return fmt.Errorf("failed to start components: %w", err)
	}

	if err := a.runHooks(ctx, stageStart); err != nil {
		return err
	}

	if err := a.configure(ctx); err != nil {
		return fmt.Errorf("configuration failed: %w", err)
	}

	if err := a.ReadyCheck(ctx); err != nil {
		a.Logger.Warn("Ready check reported issues", map[string]interface{}{
			"error": err.Error(),
		})
	}

	if err := a.runHooks(ctx, stageReady); err != nil {
		return err
	}

	a.Summary.SetStartupDuration(time.Since(start))
	a.DisplaySummary()
	return nil
}

// configure runs registered configuration callbacks.
func (a *App[C]) configure(ctx context.Context) error {
	if len(a.onConfigure) == 0 {
		return nil
	}

	a.Logger.Info("Running configuration callbacks", map[string]interface{}{
		"count": len(a.onConfigure),
	})
	for _, fn := range a.onConfigure {
		if err := fn(ctx, a); err != nil {
			return err
		}
	}
	return nil
}

// Identity describes the host for the info and version endpoints.
func (a *App[C]) Identity() version.Info {
	base := a.Cfg.GetServiceConfig()
	return version.Describe(a.Name, base.Domain, base.Environment, a.Version)
}

// DisplaySummary prints the startup summary collected from the component
// registry, the pipelines and the host services.
func (a *App[C]) DisplaySummary() {
	a.Summary.DisplaySummary(a.Components, a.Pipelines, a.hostInfo())
}

func (a *App[C]) hostInfo() HostInfo {
	host := HostInfo{Loggers: logger.Names()}
	if a.Serializer != nil {
		host.SerializerMode = string(a.Serializer.Settings().Mode)
	}
	if a.Globalization != nil {
		host.Cultures = a.Globalization.SupportedCultures()
	}
	if a.Mapper != nil {
		host.Mappings = len(a.Mapper.Mappings())
	}
	return host
}

// hostDetails feeds the host section of /info.
func (a *App[C]) hostDetails() map[string]any {
	h := a.hostInfo()
	return map[string]any{
		"serializer":   h.SerializerMode,
		"cultures":     h.Cultures,
		"mappings":     h.Mappings,
		"before_hooks": a.Pipelines.BeforeNames(),
		"after_hooks":  a.Pipelines.AfterNames(),
	}
}

// sinkStats feeds the log sink backlog into /metrics.
func (a *App[C]) sinkStats() map[string]any {
	if len(a.sinks) == 0 {
		return nil
	}
	stats := make(map[string]any, len(a.sinks))
	for _, s := range a.sinks {
		st := map[string]any{}
		if b, ok := s.(interface{ Buffered() int }); ok {
			st["buffered"] = b.Buffered()
		}
		if d, ok := s.(interface{ Dropped() uint64 }); ok {
			st["dropped"] = d.Dropped()
		}
		stats[s.Name()] = st
	}
	return map[string]any{"log_sinks": stats}
}

// WaitForSignal blocks until an OS interrupt/term signal or context cancellation.
func (a *App[C]) WaitForSignal(ctx context.Context) os.Signal {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		a.Logger.Info("Received shutdown signal, graceful shutdown starting", map[string]interface{}{
			"signal": sig.String(),
		})
		return sig
	case <-ctx.Done():
		a.Logger.Info("Context canceled, shutting down")
		return nil
	}
}

// Shutdown performs graceful shutdown. Use when managing your own lifecycle.
func (a *App[C]) Shutdown(ctx context.Context) error {
	return a.stop()
}

// stop gracefully shuts down all components within the graceful timeout.
func (a *App[C]) stop() error {
	a.Logger.Info("Shutting down application", map[string]interface{}{
		"timeout": a.gracefulTimeout.String(),
	})

	ctx, cancel := context.WithTimeout(context.Background(), a.gracefulTimeout)
	defer cancel()

	var shutdownErr error

	if err := a.runHooks(ctx, stageStop); err != nil {
		a.Logger.Error("OnStop hook error", map[string]interface{}{
			"error": err.Error(),
		})
		shutdownErr = err
	}

	// Reverse order: the server drains before sinks flush.
	if err := a.Components.StopAll(ctx); err != nil {
		a.Logger.Error("Shutdown completed with errors", map[string]interface{}{
			"error": err.Error(),
		})
		shutdownErr = err
	}

	if err := a.Container.Close(); err != nil {
		a.Logger.Error("DI container close error", map[string]interface{}{
			"error": err.Error(),
		})
		if shutdownErr == nil {
			shutdownErr = err
		}
	}

	a.Logger.Info("Application shutdown complete")
	return shutdownErr
}
