package aot

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/km-arc/go-spring/framework/bean"
)

// IndexFile is the name of the persisted factories index, written beside the
// generated sources at the output root.
//
//	// Spring: META-INF/spring/aot.factories
const IndexFile = "aot.factories"

// ManifestFile lists every file a pipeline run generated, enabling clean
// regeneration.
const ManifestFile = "aot.manifest"

// ── Factories index ───────────────────────────────────────────────────────────

// FactoriesIndex maps a logical factory key (e.g. "default") to the fully
// qualified identifier of the generated initializer replaying that factory's
// definitions. It is written once at the end of an AOT run and read once at
// application bootstrap; entries keep insertion order.
type FactoriesIndex struct {
	keys    []string
	entries map[string]string
}

// NewFactoriesIndex returns an empty index.
func NewFactoriesIndex() *FactoriesIndex {
	return &FactoriesIndex{entries: make(map[string]string)}
}

// Add records an entry. A duplicate key is a hard error: two contributions
// claiming the same factory key means the run is inconsistent.
func (i *FactoriesIndex) Add(key, initializer string) error {
	if key == "" || initializer == "" {
		return fmt.Errorf("aot: index entry needs both key and initializer")
	}
	if _, exists := i.entries[key]; exists {
		return fmt.Errorf("aot: factory key %q already present in index", key)
	}
	i.keys = append(i.keys, key)
	i.entries[key] = initializer
	return nil
}

// Keys returns the factory keys in insertion order.
func (i *FactoriesIndex) Keys() []string {
	out := make([]string, len(i.keys))
	copy(out, i.keys)
	return out
}

// Lookup returns the initializer identifier for key.
func (i *FactoriesIndex) Lookup(key string) (string, bool) {
	id, ok := i.entries[key]
	return id, ok
}

// Len returns the number of entries.
func (i *FactoriesIndex) Len() int { return len(i.keys) }

// WriteTo persists the index as one "key=identifier" line per entry.
func (i *FactoriesIndex) WriteTo(w io.Writer) error {
	for _, key := range i.keys {
		if _, err := fmt.Fprintf(w, "%s=%s\n", key, i.entries[key]); err != nil {
			return err
		}
	}
	return nil
}

// ReadIndex parses an index previously written with WriteTo.
func ReadIndex(r io.Reader) (*FactoriesIndex, error) {
	idx := NewFactoriesIndex()
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, id, ok := strings.Cut(line, "=")
		if !ok {
			return nil, fmt.Errorf("aot: malformed index line %q", line)
		}
		if err := idx.Add(key, id); err != nil {
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return idx, nil
}

// LoadIndex reads the index file under the generation output root.
func LoadIndex(outputDir string) (*FactoriesIndex, error) {
	path := filepath.Join(outputDir, IndexFile)
	f, err := os.Open(path)
	if err != nil {
		return nil, &PersistenceError{Path: path, Err: err}
	}
	defer f.Close()
	idx, err := ReadIndex(f)
	if err != nil {
		return nil, &PersistenceError{Path: path, Err: err}
	}
	return idx, nil
}

// ── Initializers and the registry cache ───────────────────────────────────────

// Initializer is the contract of a generated (or hand-written) registration
// unit: replay one factory's definitions into a registry.
//
//	// Spring: ApplicationContextInitializer produced by AOT processing
type Initializer interface {
	Initialize(registry *bean.Container) error
}

// InitializerFunc adapts a plain function to the Initializer interface.
type InitializerFunc func(registry *bean.Container) error

// Initialize implements Initializer.
func (f InitializerFunc) Initialize(registry *bean.Container) error { return f(registry) }

// RegistryCache maps fully qualified initializer identifiers to their
// instances. It is an explicit value handed to Bootstrap — never process-wide
// state — so tests isolate by building a fresh cache or calling Reset.
type RegistryCache struct {
	mu      sync.RWMutex
	entries map[string]Initializer
}

// NewRegistryCache returns an empty cache.
func NewRegistryCache() *RegistryCache {
	return &RegistryCache{entries: make(map[string]Initializer)}
}

// Add binds an initializer instance to its identifier, replacing any earlier
// binding.
func (c *RegistryCache) Add(identifier string, init Initializer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[identifier] = init
}

// Lookup returns the initializer bound to identifier.
func (c *RegistryCache) Lookup(identifier string) (Initializer, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	init, ok := c.entries[identifier]
	return init, ok
}

// Reset clears the cache.
func (c *RegistryCache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]Initializer)
}

// ── Bootstrap ─────────────────────────────────────────────────────────────────

// Bootstrap reads the factories index under outputDir once and applies each
// listed initializer against registry, in index order. Every identifier must
// be bound in cache; a missing binding aborts the bootstrap.
func Bootstrap(outputDir string, cache *RegistryCache, registry *bean.Container) error {
	idx, err := LoadIndex(outputDir)
	if err != nil {
		return err
	}
	return BootstrapIndex(idx, cache, registry)
}

// BootstrapIndex is Bootstrap for an already-loaded index.
func BootstrapIndex(idx *FactoriesIndex, cache *RegistryCache, registry *bean.Container) error {
	for _, key := range idx.Keys() {
		id, _ := idx.Lookup(key)
		init, ok := cache.Lookup(id)
		if !ok {
			return &ProcessingError{
				Stage: "bootstrap",
				Err:   fmt.Errorf("initializer %q (factory %q) not bound in registry cache", id, key),
			}
		}
		if err := init.Initialize(registry); err != nil {
			return &ProcessingError{Stage: "bootstrap", Err: err}
		}
	}
	return nil
}
