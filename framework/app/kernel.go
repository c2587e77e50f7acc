package app

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/km-arc/go-spring/framework/aot"
	"github.com/km-arc/go-spring/framework/bean"
	"github.com/km-arc/go-spring/framework/config"
	"github.com/km-arc/go-spring/routing"
)

// Application is the runtime kernel: a bean container populated by replaying
// the generated factories index, plus the ambient pieces every app needs —
// configuration and a logger. It embeds the container so application code can
// call Get/Select on the app directly.
//
//	// Spring: an AOT-optimized ApplicationContext
type Application struct {
	*bean.Container

	Config *config.Config
	Log    *zap.Logger
}

// Option configures the Application before bootstrap.
type Option func(*settings)

type settings struct {
	factories bean.FactorySet
	log       *zap.Logger
}

// WithFactories binds the FactorySet generated initializers resolve their
// factory refs against.
func WithFactories(fs bean.FactorySet) Option {
	return func(s *settings) { s.factories = fs }
}

// WithLogger overrides the default logger.
func WithLogger(log *zap.Logger) Option {
	return func(s *settings) { s.log = log }
}

// New bootstraps the application: build a fresh container, register the
// "config" bean, then read the factories index under cfg.AOT.OutputDir once
// and apply each cached initializer in index order.
func New(cfg *config.Config, cache *aot.RegistryCache, opts ...Option) (*Application, error) {
	var s settings
	for _, opt := range opts {
		opt(&s)
	}

	log := s.log
	if log == nil {
		var err error
		if cfg.App.Debug {
			log, err = zap.NewDevelopment()
		} else {
			log, err = zap.NewProduction()
		}
		if err != nil {
			return nil, err
		}
	}

	containerOpts := []bean.Option{}
	if cfg.AOT.StrictRegistry {
		containerOpts = append(containerOpts, bean.Strict())
	}
	if s.factories != nil {
		containerOpts = append(containerOpts, bean.WithFactories(s.factories))
	}
	registry := bean.New(containerOpts...)

	err := bean.Of[*config.Config]("config").
		UsingFactory(func(*bean.Container) (any, error) { return cfg, nil }).
		RegisterWith(registry)
	if err != nil {
		return nil, err
	}

	if err := aot.Bootstrap(cfg.AOT.OutputDir, cache, registry); err != nil {
		return nil, err
	}
	log.Info("application bootstrapped from factories index",
		zap.String("output_dir", cfg.AOT.OutputDir),
		zap.Int("beans", len(registry.Names())))

	return &Application{Container: registry, Config: cfg, Log: log}, nil
}

// Run resolves the "router" bean and serves HTTP on APP_PORT.
func (a *Application) Run() error {
	router, err := bean.ResolveNamed[*routing.Router](a.Container, "router")
	if err != nil {
		return err
	}
	addr := ":" + a.Config.App.Port
	a.Log.Info("server starting",
		zap.String("app", a.Config.App.Name),
		zap.String("addr", addr),
		zap.String("env", a.Config.App.Env))
	return http.ListenAndServe(addr, router)
}

// Environment returns the APP_ENV value.
func (a *Application) Environment() string { return a.Config.App.Env }
func (a *Application) IsLocal() bool       { return a.Environment() == "local" }
func (a *Application) IsProduction() bool  { return a.Environment() == "production" }
func (a *Application) IsTesting() bool     { return a.Environment() == "testing" }
