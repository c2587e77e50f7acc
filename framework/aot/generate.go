package aot

import (
	"fmt"
	"go/format"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/km-arc/go-spring/framework/bean"
)

// ── Source generation ─────────────────────────────────────────────────────────

// Generator emits Go source for a registration initializer: a type whose
// Initialize method replays a factory's bean definitions into a fresh
// registry through the builder API.
//
// Factory closures cannot be serialized into source, so factory-backed
// definitions are emitted as UsingFactoryRef calls — against the original
// symbolic reference when the definition had one, otherwise against the bean
// name. The bootstrapping composition root binds the matching FactorySet.
type Generator struct {
	// Package is the package clause of the generated file.
	Package string
}

// InitializerSource renders the initializer for factoryName over defs.
// The output is gofmt-formatted; a definition whose type cannot be expressed
// in source is a generation failure, not a silent omission.
func (g *Generator) InitializerSource(factoryName string, defs []*bean.Definition) ([]byte, error) {
	imp := newImports()
	imp.add("github.com/km-arc/go-spring/framework/bean")

	var body strings.Builder
	for _, d := range defs {
		stmt, err := registrationStmt(d, imp)
		if err != nil {
			return nil, err
		}
		body.WriteString(stmt)
	}

	name := initializerName(factoryName)
	var out strings.Builder
	out.WriteString("// Code generated by go-spring aot. DO NOT EDIT.\n\n")
	fmt.Fprintf(&out, "package %s\n\n", g.Package)
	out.WriteString(imp.clause())
	fmt.Fprintf(&out, "// %s replays the %q bean factory's definitions.\n", name, factoryName)
	fmt.Fprintf(&out, "type %s struct{}\n\n", name)
	fmt.Fprintf(&out, "// Initialize registers every definition with registry, in the order the\n")
	fmt.Fprintf(&out, "// source container held them.\n")
	fmt.Fprintf(&out, "func (%s) Initialize(registry *bean.Container) error {\n", name)
	out.WriteString(body.String())
	out.WriteString("\treturn nil\n}\n")

	formatted, err := format.Source([]byte(out.String()))
	if err != nil {
		return nil, fmt.Errorf("aot: generated source for %q does not parse: %w", factoryName, err)
	}
	return formatted, nil
}

// registrationStmt renders one RegisterWith block for a definition.
func registrationStmt(d *bean.Definition, imp *imports) (string, error) {
	expr, err := builderExpr(d, imp)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	fmt.Fprintf(&b, "\tif err := %s.\n\t\tRegisterWith(registry); err != nil {\n\t\treturn err\n\t}\n", expr)
	return b.String(), nil
}

// builderExpr renders the builder chain for a definition (sans RegisterWith).
func builderExpr(d *bean.Definition, imp *imports) (string, error) {
	typ, err := typeExpr(d.Type(), imp)
	if err != nil {
		return "", fmt.Errorf("aot: definition %q: %w", d.Name(), err)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "bean.OfType(%s, %s)", strconv.Quote(d.Name()), typ)

	switch d.Strategy() {
	case bean.StrategyFactory:
		// closures are not serializable; fall back to a ref by bean name
		fmt.Fprintf(&b, ".\n\t\tUsingFactoryRef(%s)", strconv.Quote(d.Name()))
	case bean.StrategyFactoryRef:
		fmt.Fprintf(&b, ".\n\t\tUsingFactoryRef(%s)", strconv.Quote(d.FactoryRef()))
	}

	for _, p := range d.Properties() {
		val, err := valueExpr(p, imp)
		if err != nil {
			return "", fmt.Errorf("aot: definition %q, property %q: %w", d.Name(), p.Name, err)
		}
		fmt.Fprintf(&b, ".\n\t\tProperty(%s, %s)", strconv.Quote(p.Name), val)
	}
	return b.String(), nil
}

// valueExpr renders a property value: a literal constant, or a nested
// InnerType expression for inner definitions.
func valueExpr(p bean.Property, imp *imports) (string, error) {
	if in, ok := p.Inner(); ok {
		typ, err := typeExpr(in.Type(), imp)
		if err != nil {
			return "", err
		}
		expr := fmt.Sprintf("bean.InnerType(%s)", typ)
		if in.Strategy() != bean.StrategyConstructor || len(in.Properties()) > 0 {
			return "", fmt.Errorf("inner definition with %s strategy and %d properties is not replayable",
				in.Strategy(), len(in.Properties()))
		}
		return expr, nil
	}
	switch v := p.Value.(type) {
	case string:
		return strconv.Quote(v), nil
	case bool:
		return strconv.FormatBool(v), nil
	case int:
		return strconv.Itoa(v), nil
	case int64:
		return fmt.Sprintf("int64(%d)", v), nil
	case float64:
		return fmt.Sprintf("float64(%g)", v), nil
	default:
		return "", fmt.Errorf("literal of type %T is not representable in generated source", p.Value)
	}
}

// typeExpr renders a reflect.Type as a source expression evaluating to the
// same type, importing the declaring package when needed.
func typeExpr(t reflect.Type, imp *imports) (string, error) {
	syntax, err := typeSyntax(t, imp)
	if err != nil {
		return "", err
	}
	imp.add("reflect")
	return fmt.Sprintf("reflect.TypeOf((*%s)(nil)).Elem()", syntax), nil
}

func typeSyntax(t reflect.Type, imp *imports) (string, error) {
	if t == nil {
		return "", fmt.Errorf("nil type")
	}
	if t.Kind() == reflect.Ptr {
		inner, err := typeSyntax(t.Elem(), imp)
		if err != nil {
			return "", err
		}
		return "*" + inner, nil
	}
	if t.PkgPath() != "" {
		alias := imp.add(t.PkgPath())
		return alias + "." + t.Name(), nil
	}
	switch t.Kind() {
	case reflect.String, reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return t.String(), nil
	case reflect.Slice:
		inner, err := typeSyntax(t.Elem(), imp)
		if err != nil {
			return "", err
		}
		return "[]" + inner, nil
	case reflect.Map:
		key, err := typeSyntax(t.Key(), imp)
		if err != nil {
			return "", err
		}
		val, err := typeSyntax(t.Elem(), imp)
		if err != nil {
			return "", err
		}
		return "map[" + key + "]" + val, nil
	default:
		return "", fmt.Errorf("type %s is not representable in generated source", t)
	}
}

// ── Imports ───────────────────────────────────────────────────────────────────

type imports struct {
	aliases map[string]string // path → alias
}

func newImports() *imports {
	return &imports{aliases: make(map[string]string)}
}

// add records an import path and returns the alias to reference it by.
func (i *imports) add(path string) string {
	if alias, ok := i.aliases[path]; ok {
		return alias
	}
	base := path[strings.LastIndex(path, "/")+1:]
	alias := base
	for n := 2; taken(i.aliases, alias); n++ {
		alias = base + strconv.Itoa(n)
	}
	i.aliases[path] = alias
	return alias
}

func taken(aliases map[string]string, alias string) bool {
	for _, a := range aliases {
		if a == alias {
			return true
		}
	}
	return false
}

func (i *imports) clause() string {
	paths := make([]string, 0, len(i.aliases))
	for p := range i.aliases {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	var b strings.Builder
	b.WriteString("import (\n")
	for _, p := range paths {
		alias := i.aliases[p]
		if alias == p[strings.LastIndex(p, "/")+1:] {
			fmt.Fprintf(&b, "\t%s\n", strconv.Quote(p))
		} else {
			fmt.Fprintf(&b, "\t%s %s\n", alias, strconv.Quote(p))
		}
	}
	b.WriteString(")\n\n")
	return b.String()
}

// ── Naming ────────────────────────────────────────────────────────────────────

// initializerName renders the generated type name for a factory key:
// "default" → "DefaultBeanRegistrations".
func initializerName(factoryName string) string {
	return camel(factoryName) + "BeanRegistrations"
}

func camel(s string) string {
	parts := strings.FieldsFunc(s, func(r rune) bool { return r == '-' || r == '_' || r == '.' })
	var b strings.Builder
	for _, p := range parts {
		b.WriteString(strings.ToUpper(p[:1]) + p[1:])
	}
	return b.String()
}

func snake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r + ('a' - 'A'))
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}
