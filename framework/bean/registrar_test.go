package bean_test

import (
	"errors"
	"testing"

	"github.com/km-arc/go-spring/framework/bean"
)

func TestApplyAll_InOrder(t *testing.T) {
	c := bean.New()
	var applied []string

	r1 := bean.RegistrarFunc(func(registry *bean.Container) error {
		applied = append(applied, "first")
		return bean.Of[string]("a").
			UsingFactory(func(*bean.Container) (any, error) { return "a", nil }).
			RegisterWith(registry)
	})
	r2 := bean.RegistrarFunc(func(registry *bean.Container) error {
		applied = append(applied, "second")
		return bean.Of[string]("b").
			UsingFactory(func(*bean.Container) (any, error) { return "b", nil }).
			RegisterWith(registry)
	})

	if err := bean.ApplyAll(c, r1, r2); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if len(applied) != 2 || applied[0] != "first" || applied[1] != "second" {
		t.Errorf("application order: got %v", applied)
	}
	if names := c.Names(); names[0] != "a" || names[1] != "b" {
		t.Errorf("registration order: got %v", names)
	}
}

func TestApplyAll_StopsAtFirstFailure(t *testing.T) {
	c := bean.New()
	boom := errors.New("boom")
	var secondRan bool

	err := bean.ApplyAll(c,
		bean.RegistrarFunc(func(*bean.Container) error { return boom }),
		bean.RegistrarFunc(func(*bean.Container) error { secondRan = true; return nil }),
	)
	if !errors.Is(err, boom) {
		t.Fatalf("apply: got %v, want boom", err)
	}
	if secondRan {
		t.Error("registrars after a failure must not run")
	}
}
