// Package bean provides a Spring-style bean container for Go: a registry of
// named, typed bean definitions with lazy singleton construction, by-type and
// by-name resolution, and never-failing selection queries.
//
// # Overview
//
// A Definition describes how one named bean is built — its advertised type,
// a construction strategy (default constructor, factory closure, or a named
// factory reference) and ordered property values, which may themselves be
// anonymous inner definitions. Definitions are assembled with a fluent
// Builder and submitted to a Container, which owns both the definition map
// and the singleton instance cache.
//
// # Registering
//
//	// Spring: BeanDefinitionBuilder + registerBeanDefinition
//	registry := bean.New()
//	err := bean.Of[*Mailer]("mailer").
//	    UsingFactory(func(c *bean.Container) (any, error) {
//	        cfg, err := bean.ResolveNamed[*config.Config](c, "config")
//	        if err != nil {
//	            return nil, err
//	        }
//	        return NewMailer(cfg), nil
//	    }).
//	    RegisterWith(registry)
//
// Re-registering a name replaces the prior definition (last-write-wins); a
// registry created with Strict() errors instead. Pick one policy per registry
// and stick with it.
//
// # Resolving
//
//	// by name — fails with NoSuchBeanError when absent
//	m, err := bean.ResolveNamed[*Mailer](registry, "mailer")
//
//	// by type — fails with NonUniqueBeanError on ambiguity
//	m, err := bean.Resolve[*Mailer](registry)
//
// Construction is lazy and cached: repeated resolutions return the identical
// instance. A definition whose construction transitively reaches itself fails
// fast with CyclicDependencyError and nothing is cached.
//
// # Selecting
//
// Selection is the forgiving counterpart of Get: evaluating a Selector never
// fails on zero or many matches.
//
//	sel, err := bean.SelectAs[Notifier](registry)
//	sel.Each(func(name string, n any) { ... })
//	only, err := sel.ToSingle() // NonUniqueBeanError unless Count() == 1
//
// # Inner beans
//
// Inner definitions are anonymous, owned exclusively by the enclosing
// definition's property values, and never enter the registry:
//
//	bean.Of[*Report]("report").
//	    Property("writer", bean.Inner[*FileWriter]())
//
// # Registrars
//
// Configuration is expressed as explicit Registrar values applied in order by
// a composition root; the framework never scans for them.
package bean
