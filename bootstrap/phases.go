package bootstrap

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"

	"github.com/kbukum/webhost/config"
	"github.com/kbukum/webhost/culture"
	"github.com/kbukum/webhost/di"
	apperrors "github.com/kbukum/webhost/errors"
	"github.com/kbukum/webhost/logger"
	"github.com/kbukum/webhost/mapper"
	"github.com/kbukum/webhost/observability"
	"github.com/kbukum/webhost/serializer"
	"github.com/kbukum/webhost/server"
	"github.com/kbukum/webhost/server/endpoint"
	"github.com/kbukum/webhost/server/middleware"
)

// communicationLogger is the registry name of the request/response logger.
const communicationLogger = "communication"

// configureStartup runs once per process: logger, CORS, CSRF, request key
// capture, mapper, modules and the extension hooks, in that order.
func (a *App[C]) configureStartup(ctx context.Context) error {
	web := a.Cfg.GetWebConfig()

	if err := a.setupLogger(); err != nil {
		return err
	}

	if err := middleware.EnableCORS(a.Pipelines); err != nil {
		return fmt.Errorf("cors: %w", err)
	}

	guard, err := middleware.EnableCSRF(a.Pipelines, web.CSRF)
	if err != nil {
		return fmt.Errorf("csrf: %w", err)
	}
	guard.SetLogger(a.Logger.WithComponent("csrf"))
	a.CSRF = guard

	if err := a.Pipelines.AddBefore("request-key", middleware.CaptureRequestKey()); err != nil {
		return fmt.Errorf("request key: %w", err)
	}

	if _, err := a.SetupMapper(); err != nil {
		return err
	}

	if err := di.AutoRegister(a.Container, a.opts.modules...); err != nil {
		return fmt.Errorf("modules: %w", err)
	}

	if h := a.opts.pipelinesHook; h != nil {
		if err := h(a.Pipelines); err != nil {
			return fmt.Errorf("pipelines hook: %w", err)
		}
	}
	if h := a.opts.containerHook; h != nil {
		if err := h(a.Container); err != nil {
			return fmt.Errorf("container hook: %w", err)
		}
	}

	a.Server = server.New(web.Server, a.Logger)
	tel, err := observability.New(ctx, web.Telemetry, observability.Identity{
		ServiceName:    a.Name,
		ServiceVersion: a.Version,
		Environment:    web.Environment,
	}, a.opts.telemetry...)
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	a.Telemetry = tel
	return nil
}

// setupLogger builds the process logger and replaces the global one. An
// injected logger is used as is.
func (a *App[C]) setupLogger() error {
	web := a.Cfg.GetWebConfig()

	log := a.opts.logger
	if log == nil {
		built, sinks, err := logger.NewBuilder(web.Logging).
			WithDomain(web.Domain).
			WithApplication(a.Name).
			WithSeq(web.Logging.Seq).
			WithSplunk(web.Logging.Splunk).
			Build()
		if err != nil {
			return err
		}
		log = built
		a.sinks = sinks
		for _, s := range sinks {
			if err := a.Components.Register(&sinkComponent{sink: s}); err != nil {
				return err
			}
		}
	}

	a.Logger = log
	logger.SetGlobalLogger(log)
	logger.Register(communicationLogger, log.WithComponent(communicationLogger))
	a.Components.SetLogger(log.WithComponent("components"))
	return a.Container.RegisterSingleton(di.KeyLogger, log)
}

// SetupMapper builds the object mapper once, using the MapperHook option as
// its configuration callback, and registers it under di.KeyMapper. Later
// calls return the same instance.
func (a *App[C]) SetupMapper() (*mapper.Mapper, error) {
	initialized := false
	a.mapperOnce.Do(func() {
		initialized = true
		m := mapper.New(a.opts.mapperHook)
		if err := a.Container.RegisterSingleton(di.KeyMapper, m); err != nil {
			a.mapperErr = fmt.Errorf("mapper: %w", err)
			return
		}
		a.Mapper = m
		a.Logger.Debug("Mapper initialized", map[string]interface{}{
			"mappings": len(m.Mappings()),
		})
	})
	if !initialized {
		a.Logger.Debug("Mapper already initialized")
	}
	return a.Mapper, a.mapperErr
}

// configureContainer registers the process-wide host services.
func (a *App[C]) configureContainer() error {
	web := a.Cfg.GetWebConfig()

	if err := a.Container.RegisterSingleton(di.KeyCommunicationLogger, logger.Get(communicationLogger)); err != nil {
		return err
	}

	a.statusHandler = server.NewStatusCodeHandler(a.Logger)
	if err := a.Container.RegisterSingleton(di.KeyStatusCodeHandler, a.statusHandler); err != nil {
		return err
	}

	root := a.opts.configRoot
	if root == nil {
		var err error
		if root, err = config.RootFromStruct(a.Cfg); err != nil {
			return apperrors.Configuration("config", err)
		}
	}
	a.Root = root
	if err := a.Container.RegisterSingleton(di.KeyConfigRoot, root); err != nil {
		return err
	}

	ser, err := serializer.New(web.Serializer)
	if err != nil {
		return apperrors.Configuration("serializer.mode", err)
	}
	a.Serializer = ser
	if err := a.Container.RegisterSingleton(di.KeySerializer, ser); err != nil {
		return err
	}
	if err := a.Container.RegisterSingleton(di.KeySerializerSettings, ser.Settings()); err != nil {
		return err
	}

	glob, err := culture.FromConfig(web.Globalization)
	if err != nil {
		return apperrors.Configuration("globalization.supported_cultures", err)
	}
	a.Globalization = glob
	return a.Container.RegisterSingleton(di.KeyGlobalization, glob)
}

// composeServer installs the middleware stack on the engine and registers
// the lifecycle components. Order on the engine: recovery, request id,
// telemetry, after-hook commit, request logging, body limit, request
// container, before-hooks.
func (a *App[C]) composeServer() error {
	engine := a.Server.GinEngine()
	a.statusHandler.Install(engine)

	if err := a.Server.ApplyMiddleware(logger.Get(communicationLogger), a.Telemetry.Middleware(), a.Pipelines.Commit()); err != nil {
		return err
	}
	engine.Use(a.requestContainer(), a.Pipelines.Handler())
	if len(a.opts.httpMiddleware) > 0 {
		engine.Use(middleware.GinWrap(middleware.Chain(a.opts.httpMiddleware...)))
	}

	a.Server.RegisterDefaultEndpoints(server.DefaultEndpoints{
		Identity: a.Identity(),
		Health:   a.Components.HealthAll,
		Host:     a.hostDetails,
		Stats:    a.sinkStats,
	})

	if err := a.Components.Register(a.Telemetry); err != nil {
		return err
	}
	return a.Components.Register(server.NewComponent(a.Server))
}

// requestContainer wraps every request in its own scope, closed once the
// request completes.
func (a *App[C]) requestContainer() gin.HandlerFunc {
	return func(c *gin.Context) {
		scope := a.configureRequestContainer(c)
		defer func() {
			if err := scope.Close(); err != nil {
				a.Logger.WithContext(c.Request.Context()).Warn("Request scope close failed", logger.ErrorFields("request_scope", err))
			}
		}()
		c.Next()
	}
}

// configureRequestContainer creates the request scope and resolves the
// request culture from Accept-Language.
func (a *App[C]) configureRequestContainer(c *gin.Context) di.Container {
	scope := di.NewScope(a.Container)

	cult := a.Globalization.Resolve(c.GetHeader("Accept-Language"))
	_ = scope.RegisterSingleton(di.KeyCulture, cult)

	ctx := culture.WithCulture(c.Request.Context(), cult)
	ctx = logger.ContextWithCulture(ctx, cult.Name)
	c.Request = c.Request.WithContext(ctx)
	middleware.SetScope(c, scope)
	c.Set(culture.ContextKey, cult)

	observability.Annotate(ctx, attribute.String(observability.AttrCulture, cult.Name))
	return scope
}

// configureConventions registers the documentation routes when enabled.
func (a *App[C]) configureConventions() {
	docs := a.Cfg.GetWebConfig().Docs
	if !docs.Enabled {
		return
	}
	endpoint.RegisterDocs(a.Server.GinEngine(), docs, a.Version)
	a.Logger.Debug("Docs routes registered", map[string]interface{}{
		"path": docs.Path,
	})
}
