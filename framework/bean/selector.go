package bean

import "reflect"

// ── Selector ──────────────────────────────────────────────────────────────────

// Selector is a pure query value: a target type plus an optional name
// predicate. Equal selectors produce equivalent queries against the same
// container.
//
//	// Spring: ObjectProvider<T> / ResolvableType-based lookup
type Selector struct {
	Type reflect.Type
	// Name, when non-nil, further restricts matches by bean name.
	Name func(name string) bool
}

// SelectorFor builds a selector matching beans assignable to T.
func SelectorFor[T any]() Selector {
	return Selector{Type: typeOf[T]()}
}

// Named returns a copy of the selector restricted by a name predicate.
func (s Selector) Named(pred func(name string) bool) Selector {
	s.Name = pred
	return s
}

func (s Selector) matches(name string, t reflect.Type) bool {
	if s.Type != nil && !assignable(t, s.Type) {
		return false
	}
	if s.Name != nil && !s.Name(name) {
		return false
	}
	return true
}

// ── Selection ─────────────────────────────────────────────────────────────────

// Selection is the evaluated result of a selector: zero, one or many beans in
// the registration order of their definitions. Unlike Get, evaluating a
// selector never fails — an empty selection is an ordinary value.
type Selection struct {
	typ   reflect.Type
	names []string
	beans []any
}

// Count returns the number of matching beans.
func (s Selection) Count() int { return len(s.beans) }

// IsEmpty reports whether the selection matched nothing.
func (s Selection) IsEmpty() bool { return len(s.beans) == 0 }

// Names returns the matching bean names in registration order.
func (s Selection) Names() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

// Beans returns the matching instances in registration order.
func (s Selection) Beans() []any {
	out := make([]any, len(s.beans))
	copy(out, s.beans)
	return out
}

// Each calls fn for every matching bean, in registration order.
func (s Selection) Each(fn func(name string, instance any)) {
	for i, inst := range s.beans {
		fn(s.names[i], inst)
	}
}

// ToSingle extracts the only bean of the selection. It fails with
// NonUniqueBeanError both when the selection is empty (Count 0) and when it
// holds more than one bean — the two cases are distinguishable through the
// error's Count field.
func (s Selection) ToSingle() (any, error) {
	if len(s.beans) != 1 {
		return nil, &NonUniqueBeanError{Type: typeName(s.typ), Count: len(s.beans), Names: s.Names()}
	}
	return s.beans[0], nil
}

// ── Container query entry points ──────────────────────────────────────────────

// Select evaluates a selector. Matching beans are constructed on demand; a
// construction failure surfaces through the returned error while the
// selection itself stays well-formed for the beans already realized.
func (c *Container) Select(sel Selector) (Selection, error) {
	out := Selection{typ: sel.Type}
	c.mu.RLock()
	var names []string
	for _, name := range c.order {
		if sel.matches(name, c.definitions[name].typ) {
			names = append(names, name)
		}
	}
	c.mu.RUnlock()

	for _, name := range names {
		inst, err := c.Get(name)
		if err != nil {
			return out, err
		}
		out.names = append(out.names, name)
		out.beans = append(out.beans, inst)
	}
	return out, nil
}

// SelectType evaluates a bare type query. Never fails on zero or many
// matches.
func (c *Container) SelectType(t reflect.Type) (Selection, error) {
	return c.Select(Selector{Type: t})
}

// SelectAs is the generic form of SelectType.
//
//	sel, err := bean.SelectAs[Notifier](c)
func SelectAs[T any](c *Container) (Selection, error) {
	return c.Select(SelectorFor[T]())
}
