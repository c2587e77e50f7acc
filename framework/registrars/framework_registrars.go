package registrars

import (
	"github.com/km-arc/go-spring/framework/bean"
	"github.com/km-arc/go-spring/framework/config"
	"github.com/km-arc/go-spring/routing"
)

// ── ConfigRegistrar ───────────────────────────────────────────────────────────

// ConfigRegistrar loads the application configuration from .env and registers
// it as the "config" bean.
//
// Registered beans:
//   - "config" → *config.Config
//
//	// Spring: a @Configuration exposing @ConfigurationProperties
type ConfigRegistrar struct {
	// EnvFiles overrides the .env files read; empty means ".env".
	EnvFiles []string
	// Config, when set, is registered as-is and no files are read.
	Config *config.Config
}

func (r *ConfigRegistrar) Apply(registry *bean.Container) error {
	cfg := r.Config
	envFiles := r.EnvFiles
	return bean.Of[*config.Config]("config").
		UsingFactory(func(*bean.Container) (any, error) {
			if cfg != nil {
				return cfg, nil
			}
			return config.Load(envFiles...), nil
		}).
		RegisterWith(registry)
}

// ── RouterRegistrar ───────────────────────────────────────────────────────────

// RouterRegistrar registers the HTTP router the demo surface serves from.
//
// Registered beans:
//   - "router" → *routing.Router
//
//	// Spring: RouterFunction bean in a functional-endpoints configuration
type RouterRegistrar struct{}

func (r *RouterRegistrar) Apply(registry *bean.Container) error {
	return bean.Of[*routing.Router]("router").
		UsingFactory(func(*bean.Container) (any, error) {
			return routing.New(), nil
		}).
		RegisterWith(registry)
}
