// Package aot implements the ahead-of-time processing pipeline: an offline,
// single-threaded batch job that inspects a fully configured bean container
// and emits generated artifacts replaying its configuration, so application
// bootstrap skips discovery entirely.
//
// # Pipeline stages
//
//  1. Build a source container from explicit registrars, install the
//     exclusion filter, and refresh it for processing: every definition is
//     known and ordered, no instance is materialized.
//  2. Collect processors — the built-in RegistrationsProcessor first, then
//     any configured ones.
//  3. Run each processor against the source container under a stable
//     synthetic factory name ("default"); processors enqueue contributions.
//  4. Drain the contribution queue FIFO to exhaustion. Applying a
//     contribution may enqueue further contributions; the pipeline re-checks
//     the queue after every application rather than traversing it once.
//  5. Persist atomically: generated sources, the factories index and the
//     file manifest are staged under a temporary sibling directory and
//     swapped into the output location in one step. A failure at any earlier
//     stage leaves the output untouched.
//
// # Bootstrap
//
// At application start the factories index is read once; each listed
// initializer is looked up in an explicit RegistryCache and applied against a
// fresh container, in index order:
//
//	cache := aot.NewRegistryCache()
//	cache.Add("myapp/gen/beanreg.DefaultBeanRegistrations", beanreg.DefaultBeanRegistrations{})
//
//	registry := bean.New(bean.WithFactories(factories))
//	if err := aot.Bootstrap("gen", cache, registry); err != nil { ... }
//
// Factory closures are not serializable into generated source, so generated
// initializers refer to factories symbolically (UsingFactoryRef) and the
// bootstrapping composition root binds the matching FactorySet.
package aot
