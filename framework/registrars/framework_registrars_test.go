package registrars_test

import (
	"testing"

	"github.com/km-arc/go-spring/framework/bean"
	"github.com/km-arc/go-spring/framework/config"
	"github.com/km-arc/go-spring/framework/registrars"
	"github.com/km-arc/go-spring/routing"
)

func TestConfigRegistrar_PresetConfig(t *testing.T) {
	cfg := &config.Config{App: config.AppConfig{Name: "preset"}}
	c := bean.New()

	if err := (&registrars.ConfigRegistrar{Config: cfg}).Apply(c); err != nil {
		t.Fatalf("apply: %v", err)
	}

	resolved, err := bean.ResolveNamed[*config.Config](c, "config")
	if err != nil {
		t.Fatalf("resolve config: %v", err)
	}
	if resolved != cfg {
		t.Error("preset config should be registered as-is")
	}
}

func TestConfigRegistrar_LoadsFromEnv(t *testing.T) {
	t.Setenv("APP_NAME", "FromEnv")
	c := bean.New()

	if err := (&registrars.ConfigRegistrar{EnvFiles: []string{"testdata/absent.env"}}).Apply(c); err != nil {
		t.Fatalf("apply: %v", err)
	}

	resolved, err := bean.ResolveNamed[*config.Config](c, "config")
	if err != nil {
		t.Fatalf("resolve config: %v", err)
	}
	if resolved.App.Name != "FromEnv" {
		t.Errorf("App.Name: got %q, want 'FromEnv'", resolved.App.Name)
	}
}

func TestRouterRegistrar(t *testing.T) {
	c := bean.New()
	if err := (&registrars.RouterRegistrar{}).Apply(c); err != nil {
		t.Fatalf("apply: %v", err)
	}

	if _, err := bean.ResolveNamed[*routing.Router](c, "router"); err != nil {
		t.Fatalf("resolve router: %v", err)
	}
}
