package main

import (
	"log"
	"net/http"
	"strings"

	"github.com/km-arc/go-spring/framework/aot"
	"github.com/km-arc/go-spring/framework/app"
	"github.com/km-arc/go-spring/framework/bean"
	"github.com/km-arc/go-spring/framework/config"
	"github.com/km-arc/go-spring/framework/registrars"
	"github.com/km-arc/go-spring/routing"
)

// ── Demo beans ────────────────────────────────────────────────────────────────

type Clock struct{}

type Greeter struct {
	Greeting string
	Clock    *Clock
}

func (g *Greeter) Greet(name string) string {
	return g.Greeting + ", " + name + "!"
}

// ── Composition root ──────────────────────────────────────────────────────────

func main() {
	cfg := config.Load() // reads .env when present

	// Factories referenced symbolically by generated registration code.
	factories := bean.FactorySet{
		"newGreeter": func(c *bean.Container) (any, error) {
			return &Greeter{}, nil
		},
		"motd": func(c *bean.Container) (any, error) {
			return "beans are ready", nil
		},
	}

	demo := bean.RegistrarFunc(func(registry *bean.Container) error {
		if err := bean.Of[*Greeter]("greeter").
			UsingFactoryRef("newGreeter").
			Property("greeting", "Hello from go-spring").
			Property("clock", bean.Inner[*Clock]()).
			RegisterWith(registry); err != nil {
			return err
		}
		if err := bean.Of[string]("motd").
			UsingFactoryRef("motd").
			RegisterWith(registry); err != nil {
			return err
		}
		// visible at runtime, hidden from AOT processors by the exclusion
		// filter below
		return bean.Of[string]("internalProbe").
			RegisterWith(registry)
	})

	// ── Offline pass: regenerate the registration initializer ────────────────

	pipeline := aot.NewPipeline(cfg.AOT.OutputDir,
		aot.WithRegistrars(demo, &registrars.RouterRegistrar{}),
		aot.WithFactories(factories),
		aot.WithExclusion(func(name string) bool {
			return strings.Contains(strings.ToLower(name), "internal")
		}),
		aot.WithFactoryKey(cfg.AOT.FactoryKey),
		aot.WithPackage(cfg.AOT.Package, "github.com/km-arc/go-spring/gen/"+cfg.AOT.Package),
	)
	if err := pipeline.Run(); err != nil {
		log.Fatalf("aot: %v", err)
	}

	// ── Bootstrap from the factories index ───────────────────────────────────

	// Until the freshly generated package is compiled into the binary, an
	// equivalent hand-written initializer serves under its identifier. The
	// router bean needs its factory bound because generated code refers to
	// closure-backed definitions by bean name.
	factories["router"] = func(c *bean.Container) (any, error) {
		return routing.New(), nil
	}
	cache := aot.NewRegistryCache()
	cache.Add("github.com/km-arc/go-spring/gen/"+cfg.AOT.Package+".DefaultBeanRegistrations",
		aot.InitializerFunc(func(registry *bean.Container) error {
			return bean.ApplyAll(registry, demo, &registrars.RouterRegistrar{})
		}))

	application, err := app.New(cfg, cache, app.WithFactories(factories))
	if err != nil {
		log.Fatalf("bootstrap: %v", err)
	}

	// ── Demo surface: container queries over HTTP ────────────────────────────

	router, err := bean.ResolveNamed[*routing.Router](application.Container, "router")
	if err != nil {
		log.Fatalf("router: %v", err)
	}

	router.Get("/", func(w http.ResponseWriter, req *http.Request) {
		routing.JSON(w, http.StatusOK, map[string]any{
			"app":   application.Config.App.Name,
			"beans": application.Names(),
		})
	})

	router.Get("/greet/{name}", func(w http.ResponseWriter, req *http.Request) {
		greeter, err := bean.Resolve[*Greeter](application.Container)
		if err != nil {
			routing.JSON(w, http.StatusInternalServerError, map[string]any{"error": err.Error()})
			return
		}
		routing.JSON(w, http.StatusOK, map[string]any{
			"message": greeter.Greet(routing.Param(req, "name")),
		})
	})

	router.Get("/beans/{name}", func(w http.ResponseWriter, req *http.Request) {
		instance, err := application.Get(routing.Param(req, "name"))
		if err != nil {
			routing.JSON(w, http.StatusNotFound, map[string]any{"error": err.Error()})
			return
		}
		routing.JSON(w, http.StatusOK, map[string]any{"bean": instance})
	})

	if err := application.Run(); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
