package bean

import (
	"errors"
	"reflect"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
)

// ErrFrozen is returned by Register once RefreshForProcessing has fixed the
// definition set.
var ErrFrozen = errors.New("bean: registry frozen, no further registrations accepted")

// ── Container ─────────────────────────────────────────────────────────────────

// Container is the bean registry and instance cache — the read/write core of
// the framework. Bean Definition Registrars write definitions into it;
// application code reads through Get/Select.
//
// All beans are singletons: constructed lazily on first resolution, cached for
// the container's lifetime. Reads are safe from multiple goroutines once the
// container has reached its fully-registered steady state; first construction
// of any given name happens at most once.
//
//	// Spring: DefaultListableBeanFactory
type Container struct {
	mu sync.RWMutex

	strict    bool
	factories FactorySet

	// name → definition, plus the registration order of names
	definitions map[string]*Definition
	order       []string

	// name → realized singleton
	instances map[string]any

	// names hidden from VisibleDefinitions (AOT walks); still resolvable
	exclude func(name string) bool

	frozen bool

	// construction is serialized per container; the owning goroutine id lets
	// factories resolve nested beans re-entrantly while other goroutines wait
	buildMu   sync.Mutex
	buildGoid atomic.Int64
	stack     []string
}

// Option configures a Container at construction.
type Option func(*Container)

// Strict makes Register fail with DuplicateDefinitionError on a name
// collision. The default registry is permissive: re-registering a name
// replaces the prior definition (last-write-wins) and keeps its original
// position in registration order.
func Strict() Option {
	return func(c *Container) { c.strict = true }
}

// WithFactories supplies the FactorySet consulted by StrategyFactoryRef
// definitions. Generated registration code depends on this set being bound by
// the composition root.
func WithFactories(fs FactorySet) Option {
	return func(c *Container) {
		for name, fn := range fs {
			c.factories[name] = fn
		}
	}
}

// New creates an empty container.
func New(opts ...Option) *Container {
	c := &Container{
		definitions: make(map[string]*Definition),
		instances:   make(map[string]any),
		factories:   make(FactorySet),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ── Registration ──────────────────────────────────────────────────────────────

// Register adds or replaces a definition by name and freezes it. Already
// realized instances of other names are untouched; a replaced name loses its
// cached instance so the next Get rebuilds it from the new definition.
func (c *Container) Register(d *Definition) error {
	if d == nil {
		return &InvalidDefinitionError{Reason: "nil definition"}
	}
	if d.inner {
		return &InvalidDefinitionError{Name: d.name, Reason: "inner definitions cannot be registered directly"}
	}
	if d.name == "" {
		return &InvalidDefinitionError{Reason: "empty bean name"}
	}
	if err := d.validate(c.factories); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.frozen {
		return ErrFrozen
	}
	if _, exists := c.definitions[d.name]; exists {
		if c.strict {
			return &DuplicateDefinitionError{Name: d.name}
		}
		delete(c.instances, d.name)
	} else {
		c.order = append(c.order, d.name)
	}
	c.definitions[d.name] = d
	d.freeze()
	return nil
}

// BindFactory adds a named factory to the registry's FactorySet. Factories
// must be bound before definitions referencing them are registered.
func (c *Container) BindFactory(ref string, fn Factory) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.factories[ref] = fn
}

// SetExclusion installs a predicate hiding matching definitions from
// VisibleDefinitions. Excluded beans stay resolvable through Get/Select.
func (c *Container) SetExclusion(pred func(name string) bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.exclude = pred
}

// RefreshForProcessing fixes the definition set ahead of an AOT inspection
// pass: every definition is known and ordered, no instance is materialized,
// and further Register calls fail with ErrFrozen.
func (c *Container) RefreshForProcessing() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frozen = true
}

// ── Introspection ─────────────────────────────────────────────────────────────

// Names returns every registered name in registration order.
func (c *Container) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

// Definition returns the registered definition for name, if any.
func (c *Container) Definition(name string) (*Definition, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	d, ok := c.definitions[name]
	return d, ok
}

// VisibleDefinitions returns the definitions an AOT processor may inspect:
// registration order, minus names matched by the exclusion predicate.
func (c *Container) VisibleDefinitions() []*Definition {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*Definition, 0, len(c.order))
	for _, name := range c.order {
		if c.exclude != nil && c.exclude(name) {
			continue
		}
		out = append(out, c.definitions[name])
	}
	return out
}

// Resolved reports whether name has been constructed and cached.
func (c *Container) Resolved(name string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.instances[name]
	return ok
}

// ── Resolution ────────────────────────────────────────────────────────────────

// Get returns the bean for an exact name, constructing it on first call.
// Fails with NoSuchBeanError if the name is not registered.
func (c *Container) Get(name string) (any, error) {
	c.mu.RLock()
	inst, ok := c.instances[name]
	c.mu.RUnlock()
	if ok {
		return inst, nil
	}
	return c.resolve(name)
}

// GetByType returns the single bean whose declared type is assignable to t.
// Fails with NoSuchBeanError on zero matches and NonUniqueBeanError when more
// than one definition matches — ambiguity is never resolved silently.
func (c *Container) GetByType(t reflect.Type) (any, error) {
	names := c.matching(t)
	switch len(names) {
	case 0:
		return nil, &NoSuchBeanError{Type: typeName(t)}
	case 1:
		return c.Get(names[0])
	default:
		return nil, &NonUniqueBeanError{Type: typeName(t), Count: len(names), Names: names}
	}
}

// matching returns names of definitions assignable to t, in registration order.
func (c *Container) matching(t reflect.Type) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var names []string
	for _, name := range c.order {
		if assignable(c.definitions[name].typ, t) {
			names = append(names, name)
		}
	}
	return names
}

func assignable(from, to reflect.Type) bool {
	if from == nil || to == nil {
		return false
	}
	return from == to || from.AssignableTo(to)
}

// resolve is the slow path: it serializes construction across goroutines while
// staying re-entrant for the goroutine that owns the build lock, so factories
// may resolve their own dependencies through the container.
func (c *Container) resolve(name string) (any, error) {
	id := goid()
	if c.buildGoid.Load() == id {
		// nested resolution from a factory already holding the build lock
		return c.build(name)
	}

	c.buildMu.Lock()
	c.buildGoid.Store(id)
	defer func() {
		c.buildGoid.Store(0)
		c.buildMu.Unlock()
	}()
	return c.build(name)
}

// build constructs name unless a concurrent caller already did, detecting
// cycles through the resolution stack. Caller owns the build lock.
func (c *Container) build(name string) (any, error) {
	c.mu.RLock()
	if inst, ok := c.instances[name]; ok {
		c.mu.RUnlock()
		return inst, nil
	}
	def, ok := c.definitions[name]
	c.mu.RUnlock()
	if !ok {
		return nil, &NoSuchBeanError{Name: name}
	}

	for _, n := range c.stack {
		if n == name {
			chain := append(append([]string(nil), c.stack...), name)
			return nil, &CyclicDependencyError{Chain: chain}
		}
	}
	c.stack = append(c.stack, name)
	defer func() { c.stack = c.stack[:len(c.stack)-1] }()

	inst, err := c.construct(def)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.instances[name] = inst
	c.mu.Unlock()
	return inst, nil
}

// construct runs the definition's strategy and applies its property values.
// Nothing is cached on failure; partial objects never escape.
func (c *Container) construct(d *Definition) (any, error) {
	rv, err := c.instantiate(d)
	if err != nil {
		return nil, err
	}
	if err := c.applyProperties(d, rv); err != nil {
		return nil, err
	}
	return rv.Interface(), nil
}

// instantiate produces the raw instance as an addressable reflect.Value
// wrapper so property application can set struct fields.
func (c *Container) instantiate(d *Definition) (reflect.Value, error) {
	switch d.kind {
	case StrategyFactory:
		return c.runFactory(d, d.factory)
	case StrategyFactoryRef:
		c.mu.RLock()
		fn, ok := c.factories[d.factoryRef]
		c.mu.RUnlock()
		if !ok {
			return reflect.Value{}, &ConstructionError{
				Name: d.name,
				Err:  &InvalidDefinitionError{Name: d.name, Reason: "factory ref " + strconv.Quote(d.factoryRef) + " unbound"},
			}
		}
		return c.runFactory(d, fn)
	default:
		if d.typ.Kind() == reflect.Ptr {
			return reflect.New(d.typ.Elem()), nil
		}
		// addressable zero value of the declared type
		return reflect.New(d.typ).Elem(), nil
	}
}

func (c *Container) runFactory(d *Definition, fn Factory) (reflect.Value, error) {
	inst, err := fn(c)
	if err != nil {
		// keep cycle errors from nested resolutions recognizable via Unwrap
		return reflect.Value{}, &ConstructionError{Name: d.name, Err: err}
	}
	if inst == nil {
		return reflect.Value{}, &ConstructionError{Name: d.name, Err: errors.New("factory returned nil")}
	}
	return reflect.ValueOf(inst), nil
}

// applyProperties resolves each property value — constructing inner
// definitions recursively — and assigns it to the matching exported struct
// field when the instance has one. Values without a matching field are
// evaluated and dropped; inner beans stay owned by the enclosing definition
// and are never cached in the registry.
func (c *Container) applyProperties(d *Definition, rv reflect.Value) error {
	for _, p := range d.properties {
		value := p.Value
		if in, ok := p.Inner(); ok {
			built, err := c.buildInner(d, in)
			if err != nil {
				return err
			}
			value = built
		}
		assignField(rv, p.Name, value)
	}
	return nil
}

// buildInner constructs an anonymous nested definition. The inner name joins
// the resolution stack so factory-backed inner beans participate in cycle
// detection.
func (c *Container) buildInner(owner *Definition, in *Definition) (any, error) {
	c.stack = append(c.stack, in.name)
	defer func() { c.stack = c.stack[:len(c.stack)-1] }()
	inst, err := c.construct(in)
	if err != nil {
		return nil, &ConstructionError{Name: owner.name, Err: err}
	}
	return inst, nil
}

// assignField sets the exported field matching name (first letter upper-cased)
// if the instance is a struct or struct pointer and the types line up.
func assignField(rv reflect.Value, name string, value any) {
	target := rv
	if target.Kind() == reflect.Ptr {
		if target.IsNil() {
			return
		}
		target = target.Elem()
	}
	if target.Kind() != reflect.Struct {
		return
	}
	field := target.FieldByName(exported(name))
	if !field.IsValid() || !field.CanSet() {
		return
	}
	v := reflect.ValueOf(value)
	if !v.IsValid() || !v.Type().AssignableTo(field.Type()) {
		return
	}
	field.Set(v)
}

func exported(name string) string {
	if name == "" {
		return name
	}
	return strings.ToUpper(name[:1]) + name[1:]
}

// typeName renders a reflect.Type for error messages.
func typeName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.String()
}

// ── Generics helpers ──────────────────────────────────────────────────────────

// Resolve returns the single bean assignable to T.
//
//	svc, err := bean.Resolve[*UserService](c)
func Resolve[T any](c *Container) (T, error) {
	var zero T
	inst, err := c.GetByType(typeOf[T]())
	if err != nil {
		return zero, err
	}
	typed, ok := inst.(T)
	if !ok {
		return zero, &NoSuchBeanError{Type: typeOf[T]().String()}
	}
	return typed, nil
}

// ResolveNamed returns the bean registered under name, typed as T.
func ResolveNamed[T any](c *Container, name string) (T, error) {
	var zero T
	inst, err := c.Get(name)
	if err != nil {
		return zero, err
	}
	typed, ok := inst.(T)
	if !ok {
		return zero, &ConstructionError{
			Name: name,
			Err:  errors.New("bean is not assignable to the requested type"),
		}
	}
	return typed, nil
}

// ── Goroutine identity ────────────────────────────────────────────────────────

// goid returns the current goroutine id, used to keep the build lock
// re-entrant for nested factory resolutions.
func goid() int64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	fields := strings.Fields(strings.TrimPrefix(string(buf[:n]), "goroutine "))
	id, _ := strconv.ParseInt(fields[0], 10, 64)
	return id
}
