package bean

import (
	"fmt"
	"reflect"

	"github.com/google/uuid"
)

// ── Construction strategies ───────────────────────────────────────────────────

// Factory builds a concrete bean value from the container. It may resolve
// other beans through c; those resolutions take part in cycle detection.
type Factory func(c *Container) (any, error)

// FactorySet binds symbolic factory references to factories. Generated
// registration code cannot embed closures, so it refers to factories by name
// and the composition root supplies the set (see Container's WithFactories).
type FactorySet map[string]Factory

// StrategyKind identifies how a definition constructs its bean.
type StrategyKind int

const (
	// StrategyConstructor builds the zero value of the declared type.
	StrategyConstructor StrategyKind = iota
	// StrategyFactory invokes an attached factory closure.
	StrategyFactory
	// StrategyFactoryRef looks the factory up by name in the registry's
	// FactorySet at construction time.
	StrategyFactoryRef
)

func (k StrategyKind) String() string {
	switch k {
	case StrategyFactory:
		return "factory"
	case StrategyFactoryRef:
		return "factory-ref"
	default:
		return "constructor"
	}
}

// ── Property values ───────────────────────────────────────────────────────────

// Property is one entry of a definition's ordered property-value list.
// Value is either a literal or an inner (anonymous, owned) *Definition.
type Property struct {
	Name  string
	Value any
}

// Inner reports whether the property value is a nested definition.
func (p Property) Inner() (*Definition, bool) {
	d, ok := p.Value.(*Definition)
	return d, ok
}

// ── Definition ────────────────────────────────────────────────────────────────

// Definition describes how to build one named bean: its advertised type, its
// construction strategy and its property values. A definition is mutable while
// it is being assembled and freezes when it is registered — customizations
// after RegisterWith have no effect.
//
//	// Spring: org.springframework.beans.factory.config.BeanDefinition
type Definition struct {
	name       string
	typ        reflect.Type
	kind       StrategyKind
	factory    Factory
	factoryRef string
	properties []Property
	inner      bool
	frozen     bool
}

// Name returns the registry name. Inner definitions carry a synthetic
// "(inner)#<id>" name for diagnostics only; they are never registry entries.
func (d *Definition) Name() string { return d.name }

// Type returns the advertised bean type.
func (d *Definition) Type() reflect.Type { return d.typ }

// Strategy returns the construction strategy kind.
func (d *Definition) Strategy() StrategyKind { return d.kind }

// FactoryRef returns the symbolic factory name, or "" when the strategy is
// not StrategyFactoryRef.
func (d *Definition) FactoryRef() string { return d.factoryRef }

// IsInner reports whether this is an anonymous nested definition.
func (d *Definition) IsInner() bool { return d.inner }

// Properties returns the property values in the order they were set.
func (d *Definition) Properties() []Property {
	out := make([]Property, len(d.properties))
	copy(out, d.properties)
	return out
}

// SetProperty sets a property value, replacing an earlier value of the same
// name in place (order is kept stable). The value may be a literal or an
// inner definition built with Inner. No-op once the definition is frozen.
func (d *Definition) SetProperty(name string, value any) {
	if d.frozen {
		return
	}
	for i, p := range d.properties {
		if p.Name == name {
			d.properties[i].Value = value
			return
		}
	}
	d.properties = append(d.properties, Property{Name: name, Value: value})
}

// SetFactory switches the definition to the factory strategy.
// No-op once frozen.
func (d *Definition) SetFactory(fn Factory) {
	if d.frozen || fn == nil {
		return
	}
	d.kind = StrategyFactory
	d.factory = fn
	d.factoryRef = ""
}

// SetFactoryRef switches the definition to a named factory resolved against
// the registry's FactorySet. No-op once frozen.
func (d *Definition) SetFactoryRef(ref string) {
	if d.frozen || ref == "" {
		return
	}
	d.kind = StrategyFactoryRef
	d.factory = nil
	d.factoryRef = ref
}

// freeze marks the definition (and its inner definitions) immutable.
func (d *Definition) freeze() {
	d.frozen = true
	for _, p := range d.properties {
		if in, ok := p.Inner(); ok {
			in.freeze()
		}
	}
}

// validate checks that a construction strategy is resolvable. factories is
// the registry's FactorySet, consulted for StrategyFactoryRef.
func (d *Definition) validate(factories FactorySet) error {
	if d.typ == nil {
		return &InvalidDefinitionError{Name: d.name, Reason: "no declared type"}
	}
	switch d.kind {
	case StrategyFactory:
		if d.factory == nil {
			return &InvalidDefinitionError{Name: d.name, Reason: "nil factory"}
		}
	case StrategyFactoryRef:
		if _, ok := factories[d.factoryRef]; !ok {
			return &InvalidDefinitionError{
				Name:   d.name,
				Reason: fmt.Sprintf("factory ref %q not present in the registry's factory set", d.factoryRef),
			}
		}
	default:
		if !zeroConstructible(d.typ) {
			return &InvalidDefinitionError{
				Name:   d.name,
				Reason: fmt.Sprintf("type %s has no usable default constructor; attach a factory", d.typ),
			}
		}
	}
	for _, p := range d.properties {
		if in, ok := p.Inner(); ok {
			if err := in.validate(factories); err != nil {
				return err
			}
		}
	}
	return nil
}

// zeroConstructible reports whether reflect.New can produce a meaningful
// default for t. Interfaces and funcs need a factory.
func zeroConstructible(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Interface, reflect.Func, reflect.Chan, reflect.UnsafePointer:
		return false
	case reflect.Ptr:
		return t.Elem().Kind() == reflect.Struct
	default:
		return true
	}
}

// ── Builder ───────────────────────────────────────────────────────────────────

// Builder assembles a Definition fluently and submits it to a registry.
//
//	// Spring: BeanDefinitionBuilder.rootBeanDefinition(Foo.class)
//	//             .addPropertyValue("bar", bar).getBeanDefinition()
//	err := bean.Of[*UserService]("userService").
//	    UsingFactory(newUserService).
//	    Property("greeting", "hello").
//	    RegisterWith(registry)
type Builder struct {
	def *Definition
}

// Of begins a definition named name advertising type T.
func Of[T any](name string) *Builder {
	return OfType(name, typeOf[T]())
}

// OfType is the non-generic form of Of.
func OfType(name string, t reflect.Type) *Builder {
	return &Builder{def: &Definition{name: name, typ: t}}
}

// Customize applies a mutator to the in-progress definition. Mutators run
// immediately; once RegisterWith has frozen the definition further mutators
// have no effect.
func (b *Builder) Customize(fn func(*Definition)) *Builder {
	if fn != nil {
		fn(b.def)
	}
	return b
}

// Property sets a property value on the in-progress definition.
func (b *Builder) Property(name string, value any) *Builder {
	b.def.SetProperty(name, value)
	return b
}

// UsingFactory attaches a factory closure as the construction strategy.
func (b *Builder) UsingFactory(fn Factory) *Builder {
	b.def.SetFactory(fn)
	return b
}

// UsingFactoryRef attaches a symbolic factory reference, resolved against the
// registry's FactorySet.
func (b *Builder) UsingFactoryRef(ref string) *Builder {
	b.def.SetFactoryRef(ref)
	return b
}

// Definition returns the in-progress definition, for inspection or for use as
// a property value of an enclosing definition.
func (b *Builder) Definition() *Definition { return b.def }

// RegisterWith finalizes the definition and submits it to the registry.
// It fails with InvalidDefinitionError when no construction strategy is
// resolvable, or DuplicateDefinitionError on a strict registry.
func (b *Builder) RegisterWith(r *Container) error {
	return r.Register(b.def)
}

// ── Inner definitions ─────────────────────────────────────────────────────────

// Inner creates an anonymous nested definition of type T, usable only as a
// property value of an enclosing definition. It has no registry name and can
// never be resolved through Get or Select.
//
//	// Spring: an <bean> nested inside a <property> element
func Inner[T any]() *Definition {
	return InnerType(typeOf[T]())
}

// InnerType is the non-generic form of Inner.
func InnerType(t reflect.Type) *Definition {
	return &Definition{
		name:  "(inner)#" + uuid.NewString()[:8],
		typ:   t,
		inner: true,
	}
}

// typeOf returns the reflect.Type of T, preserving interface types.
func typeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}
