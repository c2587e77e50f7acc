package aot

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/km-arc/go-spring/framework/bean"
)

// ── Errors ────────────────────────────────────────────────────────────────────

// ProcessingError reports a failure in processor execution, contribution
// application, or bootstrap replay. It aborts the whole run; nothing is
// persisted.
type ProcessingError struct {
	Stage string
	Err   error
}

func (e *ProcessingError) Error() string {
	return fmt.Sprintf("aot: %s failed: %v", e.Stage, e.Err)
}

func (e *ProcessingError) Unwrap() error { return e.Err }

// PersistenceError reports an I/O failure while writing generated output.
// Staged files never reach the final output location on failure.
type PersistenceError struct {
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("aot: persisting %s failed: %v", e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// ── Generation context ────────────────────────────────────────────────────────

// GenerationContext is the surface contributions write to: staged files, the
// factories index under construction, and the work queue for follow-up
// contributions. Everything stays in memory until the pipeline persists.
type GenerationContext struct {
	queue *Queue
	index *FactoriesIndex
	order []string
	files map[string][]byte
	log   *zap.Logger
}

func newGenerationContext(queue *Queue, log *zap.Logger) *GenerationContext {
	return &GenerationContext{
		queue: queue,
		index: NewFactoriesIndex(),
		files: make(map[string][]byte),
		log:   log,
	}
}

// AddSource stages a generated source file at a path relative to the output
// root. Two contributions claiming the same path is a hard error.
func (g *GenerationContext) AddSource(path string, content []byte) error {
	if _, exists := g.files[path]; exists {
		return fmt.Errorf("aot: generated file %q already staged", path)
	}
	g.order = append(g.order, path)
	g.files[path] = content
	g.log.Debug("staged generated file", zap.String("path", path), zap.Int("bytes", len(content)))
	return nil
}

// AddResource stages a non-source artifact; same semantics as AddSource.
func (g *GenerationContext) AddResource(path string, content []byte) error {
	return g.AddSource(path, content)
}

// Enqueue schedules a follow-up contribution. It will be applied after every
// contribution currently in the queue.
func (g *GenerationContext) Enqueue(contributions ...Contribution) {
	g.queue.Enqueue(contributions...)
}

// Index returns the factories index under construction.
func (g *GenerationContext) Index() *FactoriesIndex { return g.index }

// Files returns the staged paths in staging order.
func (g *GenerationContext) Files() []string {
	out := make([]string, len(g.order))
	copy(out, g.order)
	return out
}

// File returns the staged content for path.
func (g *GenerationContext) File(path string) ([]byte, bool) {
	content, ok := g.files[path]
	return content, ok
}

// Logger returns the pipeline's logger.
func (g *GenerationContext) Logger() *zap.Logger { return g.log }

// ── Pipeline ──────────────────────────────────────────────────────────────────

// Pipeline is the offline AOT batch job: build a source container from
// registrars, run every processor against it, drain the contribution queue,
// then persist generated files and the factories index atomically.
//
// A pipeline run is single-threaded and all-or-nothing: any processor or
// contribution failure aborts before anything reaches the output directory.
//
//	// Spring: ContextAotProcessor / ApplicationContextAotGenerator
type Pipeline struct {
	registrars []bean.Registrar
	processors []Processor
	factories  bean.FactorySet
	exclude    func(name string) bool
	outputDir  string
	pkg        string
	importPath string
	factoryKey string
	strict     bool
	log        *zap.Logger
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline)

// WithRegistrars sets the registrars populating the source container.
func WithRegistrars(registrars ...bean.Registrar) PipelineOption {
	return func(p *Pipeline) { p.registrars = append(p.registrars, registrars...) }
}

// WithProcessors adds processors run after the built-in registrations
// processor.
func WithProcessors(processors ...Processor) PipelineOption {
	return func(p *Pipeline) { p.processors = append(p.processors, processors...) }
}

// WithFactories supplies the FactorySet for the source container, so
// factory-ref definitions validate during source registration.
func WithFactories(fs bean.FactorySet) PipelineOption {
	return func(p *Pipeline) { p.factories = fs }
}

// WithExclusion hides matching definitions from AOT processors. They remain
// resolvable in the source container.
func WithExclusion(pred func(name string) bool) PipelineOption {
	return func(p *Pipeline) { p.exclude = pred }
}

// WithFactoryKey overrides the synthetic factory name, default "default".
func WithFactoryKey(key string) PipelineOption {
	return func(p *Pipeline) { p.factoryKey = key }
}

// WithPackage sets the generated package name and its import path as recorded
// in the factories index.
func WithPackage(name, importPath string) PipelineOption {
	return func(p *Pipeline) {
		p.pkg = name
		p.importPath = importPath
	}
}

// StrictRegistry makes the source container reject duplicate names.
func StrictRegistry() PipelineOption {
	return func(p *Pipeline) { p.strict = true }
}

// WithLogger sets the pipeline logger; default is a no-op logger.
func WithLogger(log *zap.Logger) PipelineOption {
	return func(p *Pipeline) { p.log = log }
}

// NewPipeline creates a pipeline writing under outputDir.
func NewPipeline(outputDir string, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		outputDir:  outputDir,
		pkg:        "beanreg",
		factoryKey: "default",
		log:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.importPath == "" {
		p.importPath = p.pkg
	}
	return p
}

// Run executes one full AOT pass. See the package documentation for the five
// stages; the run either persists everything or nothing.
func (p *Pipeline) Run() error {
	// 1. build and refresh the source container
	source, err := p.buildSource()
	if err != nil {
		return err
	}
	p.log.Info("source container refreshed for processing",
		zap.Int("definitions", len(source.Names())),
		zap.Int("visible", len(source.VisibleDefinitions())))

	// 2. collect processors, the framework's registrations processor first
	processors := append([]Processor{
		&RegistrationsProcessor{Package: p.pkg, ImportPath: p.importPath},
	}, p.processors...)

	// 3. run processors under the synthetic factory name
	queue := &Queue{}
	for _, proc := range processors {
		if err := proc.Process(p.factoryKey, source, queue); err != nil {
			return &ProcessingError{Stage: fmt.Sprintf("processor %T", proc), Err: err}
		}
	}
	p.log.Info("processors finished", zap.Int("processors", len(processors)), zap.Int("pending", queue.Len()))

	// 4. drain the queue to exhaustion; applying one contribution may
	// enqueue more, so emptiness is re-checked every iteration
	gctx := newGenerationContext(queue, p.log)
	applied := 0
	for {
		contribution, ok := queue.dequeue()
		if !ok {
			break
		}
		if err := contribution.Apply(gctx); err != nil {
			return &ProcessingError{Stage: "contribution application", Err: err}
		}
		applied++
	}
	p.log.Info("contribution queue drained", zap.Int("applied", applied))

	// 5. persist atomically
	if err := p.persist(gctx); err != nil {
		return err
	}
	p.log.Info("generated output committed",
		zap.String("dir", p.outputDir),
		zap.Int("files", len(gctx.Files())),
		zap.Int("index_entries", gctx.Index().Len()))
	return nil
}

func (p *Pipeline) buildSource() (*bean.Container, error) {
	opts := []bean.Option{}
	if p.strict {
		opts = append(opts, bean.Strict())
	}
	if p.factories != nil {
		opts = append(opts, bean.WithFactories(p.factories))
	}
	source := bean.New(opts...)
	if err := bean.ApplyAll(source, p.registrars...); err != nil {
		return nil, &ProcessingError{Stage: "source registration", Err: err}
	}
	source.SetExclusion(p.exclude)
	source.RefreshForProcessing()
	return source, nil
}

// persist writes everything into a staging directory, then swaps it into the
// final output location. A failure anywhere leaves the previous output (or
// its absence) untouched.
func (p *Pipeline) persist(g *GenerationContext) error {
	staging := fmt.Sprintf("%s.staging-%s", p.outputDir, uuid.NewString()[:8])
	defer os.RemoveAll(staging)
	if err := os.MkdirAll(staging, 0o755); err != nil {
		return &PersistenceError{Path: staging, Err: err}
	}

	for _, rel := range g.Files() {
		content, _ := g.File(rel)
		dst := filepath.Join(staging, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			return &PersistenceError{Path: dst, Err: err}
		}
		if err := os.WriteFile(dst, content, 0o644); err != nil {
			return &PersistenceError{Path: dst, Err: err}
		}
	}

	if err := p.writeIndex(staging, g); err != nil {
		return err
	}
	if err := p.writeManifest(staging, g); err != nil {
		return err
	}
	return p.commit(staging)
}

func (p *Pipeline) writeIndex(staging string, g *GenerationContext) error {
	path := filepath.Join(staging, IndexFile)
	f, err := os.Create(path)
	if err != nil {
		return &PersistenceError{Path: path, Err: err}
	}
	if err := g.Index().WriteTo(f); err != nil {
		f.Close()
		return &PersistenceError{Path: path, Err: err}
	}
	if err := f.Close(); err != nil {
		return &PersistenceError{Path: path, Err: err}
	}
	return nil
}

func (p *Pipeline) writeManifest(staging string, g *GenerationContext) error {
	path := filepath.Join(staging, ManifestFile)
	var out []byte
	for _, rel := range g.Files() {
		out = append(out, rel...)
		out = append(out, '\n')
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return &PersistenceError{Path: path, Err: err}
	}
	return nil
}

// commit swaps staging into place: the previous output is parked under a
// .old suffix until the rename of the new tree succeeds.
func (p *Pipeline) commit(staging string) error {
	if err := os.MkdirAll(filepath.Dir(p.outputDir), 0o755); err != nil {
		return &PersistenceError{Path: p.outputDir, Err: err}
	}
	old := p.outputDir + ".old"
	os.RemoveAll(old)

	hadPrevious := false
	if _, err := os.Stat(p.outputDir); err == nil {
		hadPrevious = true
		if err := os.Rename(p.outputDir, old); err != nil {
			return &PersistenceError{Path: p.outputDir, Err: err}
		}
	}
	if err := os.Rename(staging, p.outputDir); err != nil {
		if hadPrevious {
			os.Rename(old, p.outputDir)
		}
		return &PersistenceError{Path: p.outputDir, Err: err}
	}
	os.RemoveAll(old)
	return nil
}
