package bean

import (
	"fmt"
	"strings"
)

// ── Error taxonomy ────────────────────────────────────────────────────────────
//
// Every failure the container can produce is a distinct, typed error that
// callers can match with errors.As. The container never swallows a failure
// and never substitutes a default — resolution errors propagate synchronously
// to the caller of Get/Select, registration errors to the caller of
// RegisterWith.

// InvalidDefinitionError reports a definition that was finalized without a
// resolvable construction strategy.
//
//	// Spring: BeanDefinitionValidationException
type InvalidDefinitionError struct {
	Name   string
	Reason string
}

func (e *InvalidDefinitionError) Error() string {
	return fmt.Sprintf("bean: invalid definition %q: %s", e.Name, e.Reason)
}

// DuplicateDefinitionError reports a name collision on a strict-mode registry.
//
//	// Spring: BeanDefinitionOverrideException (allowBeanDefinitionOverriding=false)
type DuplicateDefinitionError struct {
	Name string
}

func (e *DuplicateDefinitionError) Error() string {
	return fmt.Sprintf("bean: definition %q already registered (strict registry)", e.Name)
}

// NoSuchBeanError reports a Get that matched zero definitions.
//
//	// Spring: NoSuchBeanDefinitionException
type NoSuchBeanError struct {
	Name string // set for by-name lookups
	Type string // set for by-type lookups
}

func (e *NoSuchBeanError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("bean: no bean named %q", e.Name)
	}
	return fmt.Sprintf("bean: no bean of type %s", e.Type)
}

// NonUniqueBeanError reports a by-type Get or a Selection.ToSingle that could
// not be narrowed to exactly one bean. Count distinguishes the zero case
// (ToSingle on an empty selection) from the many case.
//
//	// Spring: NoUniqueBeanDefinitionException
type NonUniqueBeanError struct {
	Type  string
	Count int
	Names []string
}

func (e *NonUniqueBeanError) Error() string {
	if e.Count == 0 {
		return fmt.Sprintf("bean: expected a single bean of type %s, found none", e.Type)
	}
	return fmt.Sprintf("bean: expected a single bean of type %s, found %d: %s",
		e.Type, e.Count, strings.Join(e.Names, ", "))
}

// CyclicDependencyError reports a construction chain that reached itself.
// Chain lists the names from the first resolution down to the repeated one.
//
//	// Spring: BeanCurrentlyInCreationException
type CyclicDependencyError struct {
	Chain []string
}

func (e *CyclicDependencyError) Error() string {
	return fmt.Sprintf("bean: cyclic dependency: %s", strings.Join(e.Chain, " -> "))
}

// ConstructionError wraps a failure raised by a factory or by property
// application while building a bean. Nothing is cached for the failed name.
type ConstructionError struct {
	Name string
	Err  error
}

func (e *ConstructionError) Error() string {
	return fmt.Sprintf("bean: construction of %q failed: %v", e.Name, e.Err)
}

func (e *ConstructionError) Unwrap() error { return e.Err }
