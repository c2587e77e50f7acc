package aot

import (
	"github.com/km-arc/go-spring/framework/bean"
)

// ── Processors ────────────────────────────────────────────────────────────────

// Processor inspects a refreshed source container under a synthetic factory
// name and enqueues zero or more contributions.
//
//	// Spring: BeanFactoryInitializationAotProcessor
type Processor interface {
	Process(factoryName string, source *bean.Container, queue *Queue) error
}

// ProcessorFunc adapts a plain function to the Processor interface.
type ProcessorFunc func(factoryName string, source *bean.Container, queue *Queue) error

// Process implements Processor.
func (f ProcessorFunc) Process(factoryName string, source *bean.Container, queue *Queue) error {
	return f(factoryName, source, queue)
}

// ── Built-in registrations processor ──────────────────────────────────────────

// RegistrationsProcessor is the framework's own processor: it walks the
// container's visible definitions and enqueues a contribution generating the
// "<Key>BeanRegistrations" initializer that replays them.
//
//	// Spring: BeanRegistrationsAotProcessor → Default$$BeanRegistrations
type RegistrationsProcessor struct {
	// Package is the generated package name; defaults to "beanreg".
	Package string
	// ImportPath is the module-qualified import path recorded in the
	// factories index for the generated initializer.
	ImportPath string
}

// Process enqueues one registrations contribution covering every visible
// definition. Excluded definitions never reach the generated initializer.
func (p *RegistrationsProcessor) Process(factoryName string, source *bean.Container, queue *Queue) error {
	defs := source.VisibleDefinitions()
	if len(defs) == 0 {
		return nil
	}
	queue.Enqueue(&registrationsContribution{
		factoryName: factoryName,
		pkg:         p.pkg(),
		importPath:  p.importPath(),
		definitions: defs,
	})
	return nil
}

func (p *RegistrationsProcessor) pkg() string {
	if p.Package == "" {
		return "beanreg"
	}
	return p.Package
}

func (p *RegistrationsProcessor) importPath() string {
	if p.ImportPath == "" {
		return p.pkg()
	}
	return p.ImportPath
}

// registrationsContribution emits the generated initializer source and its
// factories-index entry.
type registrationsContribution struct {
	factoryName string
	pkg         string
	importPath  string
	definitions []*bean.Definition
}

func (c *registrationsContribution) Apply(ctx *GenerationContext) error {
	gen := &Generator{Package: c.pkg}
	src, err := gen.InitializerSource(c.factoryName, c.definitions)
	if err != nil {
		return err
	}
	path := c.pkg + "/" + snake(initializerName(c.factoryName)) + ".go"
	if err := ctx.AddSource(path, src); err != nil {
		return err
	}
	return ctx.Index().Add(c.factoryName, c.importPath+"."+initializerName(c.factoryName))
}
