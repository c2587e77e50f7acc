package app_test

import (
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/km-arc/go-spring/framework/aot"
	"github.com/km-arc/go-spring/framework/app"
	"github.com/km-arc/go-spring/framework/bean"
	"github.com/km-arc/go-spring/framework/config"
)

func testConfig(outputDir string) *config.Config {
	return &config.Config{
		App: config.AppConfig{Name: "KernelTest", Env: "testing", Port: "0"},
		AOT: config.AOTConfig{OutputDir: outputDir, Package: "beanreg", FactoryKey: "default"},
	}
}

// generate runs a pipeline so the kernel has an index to bootstrap from.
func generate(t *testing.T, out string, registrar bean.Registrar) {
	t.Helper()
	p := aot.NewPipeline(out,
		aot.WithRegistrars(registrar),
		aot.WithPackage("beanreg", "example.com/kernel/gen/beanreg"),
	)
	if err := p.Run(); err != nil {
		t.Fatalf("pipeline: %v", err)
	}
}

func TestNew_BootstrapsFromIndex(t *testing.T) {
	out := filepath.Join(t.TempDir(), "gen")
	registrar := bean.RegistrarFunc(func(registry *bean.Container) error {
		return bean.Of[string]("greeting").
			UsingFactoryRef("greeting").
			RegisterWith(registry)
	})
	factories := bean.FactorySet{
		"greeting": func(*bean.Container) (any, error) { return "hello", nil },
	}
	pipelineRegistrar := bean.RegistrarFunc(func(registry *bean.Container) error {
		registry.BindFactory("greeting", factories["greeting"])
		return registrar.Apply(registry)
	})
	generate(t, out, pipelineRegistrar)

	cache := aot.NewRegistryCache()
	cache.Add("example.com/kernel/gen/beanreg.DefaultBeanRegistrations",
		aot.InitializerFunc(registrar.Apply))

	application, err := app.New(testConfig(out), cache,
		app.WithFactories(factories),
		app.WithLogger(zap.NewNop()),
	)
	if err != nil {
		t.Fatalf("bootstrap: %v", err)
	}

	greeting, err := bean.ResolveNamed[string](application.Container, "greeting")
	if err != nil {
		t.Fatalf("resolve greeting: %v", err)
	}
	if greeting != "hello" {
		t.Errorf("greeting: got %q, want 'hello'", greeting)
	}

	// the kernel registers the config bean itself
	cfg, err := bean.ResolveNamed[*config.Config](application.Container, "config")
	if err != nil {
		t.Fatalf("resolve config: %v", err)
	}
	if cfg.App.Name != "KernelTest" {
		t.Errorf("config bean: got %q", cfg.App.Name)
	}
}

func TestNew_MissingInitializerFails(t *testing.T) {
	out := filepath.Join(t.TempDir(), "gen")
	generate(t, out, bean.RegistrarFunc(func(registry *bean.Container) error {
		return bean.Of[string]("x").RegisterWith(registry)
	}))

	_, err := app.New(testConfig(out), aot.NewRegistryCache(), app.WithLogger(zap.NewNop()))
	if err == nil {
		t.Fatal("bootstrap with an empty registry cache must fail")
	}
}

func TestEnvironmentHelpers(t *testing.T) {
	out := filepath.Join(t.TempDir(), "gen")
	generate(t, out, bean.RegistrarFunc(func(registry *bean.Container) error {
		return bean.Of[string]("x").RegisterWith(registry)
	}))

	cache := aot.NewRegistryCache()
	cache.Add("example.com/kernel/gen/beanreg.DefaultBeanRegistrations",
		aot.InitializerFunc(func(*bean.Container) error { return nil }))

	application, err := app.New(testConfig(out), cache, app.WithLogger(zap.NewNop()))
	if err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	if !application.IsTesting() {
		t.Error("IsTesting should be true for APP_ENV=testing")
	}
	if application.IsProduction() || application.IsLocal() {
		t.Error("other environment predicates should be false")
	}
}
