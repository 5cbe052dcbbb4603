package bootstrap

import (
	"io"
	"time"

	"github.com/kbukum/webhost/config"
	"github.com/kbukum/webhost/di"
	"github.com/kbukum/webhost/logger"
	"github.com/kbukum/webhost/mapper"
	"github.com/kbukum/webhost/observability"
	"github.com/kbukum/webhost/server/middleware"
)

// Option configures the App during creation.
// Options are non-generic so they can be used with any config type.
type Option func(*appOptions)

// PipelinesHook customizes the request pipelines during startup.
type PipelinesHook func(p *middleware.Pipelines) error

// ContainerHook adds registrations to the process container during startup.
type ContainerHook func(c di.Container) error

// MapperHook configures the object mapper before it is built.
type MapperHook func(cfg *mapper.Config)

// appOptions collects all option values before applying to App.
type appOptions struct {
	logger          *logger.Logger
	container       di.Container
	gracefulTimeout *time.Duration
	configRoot      *config.Root
	loaderOptions   []config.LoaderOption
	modules         []di.Module
	pipelinesHook   PipelinesHook
	containerHook   ContainerHook
	mapperHook      MapperHook
	httpMiddleware  []middleware.Middleware
	telemetry       []observability.Option
	summaryOut      io.Writer
}

// resolveOptions applies all options and returns the collected values.
func resolveOptions(opts []Option) *appOptions {
	o := &appOptions{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithLogger sets a custom logger for the application.
// If not set, the logger is built from the config's Logging section.
func WithLogger(l *logger.Logger) Option {
	return func(o *appOptions) {
		o.logger = l
	}
}

// WithGracefulTimeout sets the maximum duration for graceful shutdown.
func WithGracefulTimeout(d time.Duration) Option {
	return func(o *appOptions) {
		o.gracefulTimeout = &d
	}
}

// WithContainer sets a custom DI container for the application.
func WithContainer(c di.Container) Option {
	return func(o *appOptions) {
		o.container = c
	}
}

// WithConfigRoot registers root as the configuration root instead of one
// derived from the typed config.
func WithConfigRoot(root *config.Root) Option {
	return func(o *appOptions) {
		o.configRoot = root
	}
}

// WithLoaderOptions passes options to config.Load when the App is created
// with LoadApp.
func WithLoaderOptions(opts ...config.LoaderOption) Option {
	return func(o *appOptions) {
		o.loaderOptions = append(o.loaderOptions, opts...)
	}
}

// WithModules registers modules into the container during startup, in order.
func WithModules(modules ...di.Module) Option {
	return func(o *appOptions) {
		o.modules = append(o.modules, modules...)
	}
}

// WithPipelinesHook sets the callback that may add request hooks.
func WithPipelinesHook(h PipelinesHook) Option {
	return func(o *appOptions) {
		o.pipelinesHook = h
	}
}

// WithContainerHook sets the callback that may add container registrations.
func WithContainerHook(h ContainerHook) Option {
	return func(o *appOptions) {
		o.containerHook = h
	}
}

// WithMapperHook sets the callback configuring the object mapper.
func WithMapperHook(h MapperHook) Option {
	return func(o *appOptions) {
		o.mapperHook = h
	}
}

// WithHTTPMiddleware adds net/http middleware after the request pipelines.
func WithHTTPMiddleware(mw ...middleware.Middleware) Option {
	return func(o *appOptions) {
		o.httpMiddleware = append(o.httpMiddleware, mw...)
	}
}

// WithTelemetryOptions passes options to the telemetry component.
func WithTelemetryOptions(opts ...observability.Option) Option {
	return func(o *appOptions) {
		o.telemetry = append(o.telemetry, opts...)
	}
}

// WithSummaryOutput redirects the startup summary; nil silences it.
func WithSummaryOutput(w io.Writer) Option {
	return func(o *appOptions) {
		if w == nil {
			w = io.Discard
		}
		o.summaryOut = w
	}
}
