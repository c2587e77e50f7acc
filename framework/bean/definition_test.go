package bean_test

import (
	"errors"
	"io"
	"testing"

	"github.com/km-arc/go-spring/framework/bean"
)

type report struct {
	Title  string
	Writer *reportWriter
}

type reportWriter struct {
	Dir string
}

// ── Builder ───────────────────────────────────────────────────────────────────

func TestBuilder_PropertiesApplied(t *testing.T) {
	c := bean.New()
	err := bean.Of[*report]("report").
		Property("title", "quarterly").
		RegisterWith(c)
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	r, err := bean.ResolveNamed[*report](c, "report")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if r.Title != "quarterly" {
		t.Errorf("Title: got %q, want 'quarterly'", r.Title)
	}
}

func TestBuilder_CustomizeMutatesDefinition(t *testing.T) {
	c := bean.New()
	err := bean.Of[*report]("report").
		Customize(func(d *bean.Definition) {
			d.SetProperty("title", "custom")
		}).
		RegisterWith(c)
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	r, err := bean.ResolveNamed[*report](c, "report")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if r.Title != "custom" {
		t.Errorf("Title: got %q, want 'custom'", r.Title)
	}
}

func TestCustomize_AfterRegisterHasNoEffect(t *testing.T) {
	c := bean.New()
	b := bean.Of[*report]("report").Property("title", "before")
	if err := b.RegisterWith(c); err != nil {
		t.Fatalf("register: %v", err)
	}

	// frozen at registration: later mutations must not leak in
	b.Customize(func(d *bean.Definition) {
		d.SetProperty("title", "after")
	})

	r, err := bean.ResolveNamed[*report](c, "report")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if r.Title != "before" {
		t.Errorf("Title: got %q, want 'before' (definition frozen at registration)", r.Title)
	}
}

func TestSetProperty_ReplacesInPlace(t *testing.T) {
	b := bean.Of[*report]("report").
		Property("title", "one").
		Property("dir", "/tmp").
		Property("title", "two")

	props := b.Definition().Properties()
	if len(props) != 2 {
		t.Fatalf("properties: got %d, want 2", len(props))
	}
	if props[0].Name != "title" || props[0].Value != "two" {
		t.Errorf("first property: got %s=%v, want title=two (replaced in place)", props[0].Name, props[0].Value)
	}
}

// ── Invalid definitions ───────────────────────────────────────────────────────

func TestRegisterWith_InterfaceWithoutFactory(t *testing.T) {
	c := bean.New()
	err := bean.Of[io.Writer]("sink").RegisterWith(c)

	var invalid *bean.InvalidDefinitionError
	if !errors.As(err, &invalid) {
		t.Fatalf("interface type without factory: got %v, want InvalidDefinitionError", err)
	}
}

func TestRegisterWith_EmptyName(t *testing.T) {
	c := bean.New()
	err := bean.Of[*report]("").RegisterWith(c)

	var invalid *bean.InvalidDefinitionError
	if !errors.As(err, &invalid) {
		t.Fatalf("empty name: got %v, want InvalidDefinitionError", err)
	}
}

// ── Inner beans ───────────────────────────────────────────────────────────────

func TestInner_CannotBeRegisteredDirectly(t *testing.T) {
	c := bean.New()
	err := c.Register(bean.Inner[*reportWriter]())

	var invalid *bean.InvalidDefinitionError
	if !errors.As(err, &invalid) {
		t.Fatalf("registering an inner definition: got %v, want InvalidDefinitionError", err)
	}
}

func TestInner_InjectedAsProperty(t *testing.T) {
	c := bean.New()
	err := bean.Of[*report]("report").
		Property("writer", bean.Inner[*reportWriter]()).
		RegisterWith(c)
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	r, err := bean.ResolveNamed[*report](c, "report")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if r.Writer == nil {
		t.Fatal("inner bean should be constructed and injected into the Writer field")
	}
}

// Scenario: a String-typed bean with an Integer-typed inner property value.
// The outer bean resolves normally; the inner definition never becomes a
// registry entry and is invisible to by-type lookup.
func TestInner_InvisibleToRegistry(t *testing.T) {
	c := bean.New()
	err := bean.Of[string]("boo").
		UsingFactory(func(*bean.Container) (any, error) { return "boo-value", nil }).
		Property("innerBean", bean.Inner[int]()).
		RegisterWith(c)
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	v, err := c.Get("boo")
	if err != nil {
		t.Fatalf("get boo: %v", err)
	}
	if _, ok := v.(string); !ok {
		t.Fatalf("boo: got %T, want string", v)
	}

	_, err = bean.Resolve[int](c)
	var missing *bean.NoSuchBeanError
	if !errors.As(err, &missing) {
		t.Fatalf("inner int definition must not be resolvable by type: got %v", err)
	}

	if len(c.Names()) != 1 {
		t.Errorf("registry names: got %v, want only [boo]", c.Names())
	}
}

func TestInner_CycleThroughInnerFactoryDetected(t *testing.T) {
	c := bean.New()

	inner := bean.Inner[*reportWriter]()
	inner.SetFactory(func(c *bean.Container) (any, error) {
		return c.Get("report")
	})

	err := bean.Of[*report]("report").
		Property("writer", inner).
		RegisterWith(c)
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	_, err = c.Get("report")
	var cyclic *bean.CyclicDependencyError
	if !errors.As(err, &cyclic) {
		t.Fatalf("inner factory reaching its owner: got %v, want CyclicDependencyError", err)
	}
	if c.Resolved("report") {
		t.Error("owner of a failed inner construction must not be cached")
	}
}

// ── Default constructor strategy ──────────────────────────────────────────────

func TestDefaultConstructor_StructPointer(t *testing.T) {
	c := bean.New()
	if err := bean.Of[*reportWriter]("writer").Property("dir", "/var/reports").RegisterWith(c); err != nil {
		t.Fatalf("register: %v", err)
	}

	w, err := bean.ResolveNamed[*reportWriter](c, "writer")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if w.Dir != "/var/reports" {
		t.Errorf("Dir: got %q, want '/var/reports'", w.Dir)
	}
}

func TestDefaultConstructor_ValueType(t *testing.T) {
	c := bean.New()
	if err := bean.Of[string]("empty").RegisterWith(c); err != nil {
		t.Fatalf("register: %v", err)
	}

	v, err := c.Get("empty")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if v != "" {
		t.Errorf("zero string bean: got %v, want \"\"", v)
	}
}
