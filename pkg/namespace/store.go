// Package namespace implements the symbol-resolution subsystem: namespace
// specs (require/refer tables), the per-compilation namespace store, and
// the resolution algorithm that turns every symbol into a fully qualified
// one.
//
// A Store is created once per compilation run and passed explicitly through
// the pipeline. There is no process-global registry, so independent
// compilations are fully isolated and may run concurrently as long as each
// owns its Store. Within one Store all reads and writes are serialized by
// an internal mutex.
package namespace

import (
	"sync"

	"github.com/cloverlang/clover/pkg/types"
)

// Reserved namespace names.
const (
	// CoreNS is the namespace defining the standard core bindings.
	CoreNS = "core"
	// HostNS is the pseudo-namespace for host-global access: symbols
	// qualified with it resolve to bare host identifiers.
	HostNS = "js"
	// DefaultNS is the namespace a fresh store starts in.
	DefaultNS = "user"
)

// coreBindings is the fixed list of core names every new namespace refers.
var coreBindings = []string{
	"list", "vector", "hash-map", "set", "seq", "concat", "apply",
	"first", "rest", "cons", "conj", "count", "nth", "get", "assoc",
	"str", "print", "println", "symbol", "keyword",
	"+", "-", "*", "/", "=", "not=", "<", ">", "<=", ">=",
	"inc", "dec", "not", "map", "filter", "reduce",
	"create-ns", "in-ns",
}

// Spec is the resolution table of one namespace: require maps an alias to
// the namespace it names, refer maps a bare name to its defining namespace.
type Spec struct {
	Requires map[string]string
	Refers   map[string]string
}

// newSpec seeds a spec with the fixed set of referred core bindings.
func newSpec() *Spec {
	refers := make(map[string]string, len(coreBindings))
	for _, name := range coreBindings {
		refers[name] = CoreNS
	}
	return &Spec{
		Requires: make(map[string]string),
		Refers:   refers,
	}
}

// Store is the namespace registry for one compilation run: a mapping from
// namespace name to spec plus a current-namespace pointer.
//
// Safe for concurrent use; single-threaded compilation never contends.
type Store struct {
	mu      sync.RWMutex
	specs   map[string]*Spec
	current string
}

// NewStore creates a store holding the core namespace and the default user
// namespace, with the current pointer on the latter.
func NewStore() *Store {
	s := &Store{specs: make(map[string]*Spec)}
	s.specs[CoreNS] = newSpec()
	s.specs[DefaultNS] = newSpec()
	s.current = DefaultNS
	return s
}

// CreateNamespace registers a namespace seeded with the default core
// refers. Re-creating an existing namespace returns its spec unchanged.
func (s *Store) CreateNamespace(name string) *Spec {
	s.mu.Lock()
	defer s.mu.Unlock()
	if spec, ok := s.specs[name]; ok {
		return spec
	}
	spec := newSpec()
	s.specs[name] = spec
	return spec
}

// SetCurrent switches the current namespace, creating it if needed.
func (s *Store) SetCurrent(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.specs[name]; !ok {
		s.specs[name] = newSpec()
	}
	s.current = name
}

// Current returns the current namespace name.
func (s *Store) Current() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Spec returns the spec of a declared namespace.
func (s *Store) Spec(name string) (*Spec, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	spec, ok := s.specs[name]
	return spec, ok
}

// AddRequire records alias -> target in the named namespace's require table.
func (s *Store) AddRequire(ns, alias, target string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	spec, ok := s.specs[ns]
	if !ok {
		spec = newSpec()
		s.specs[ns] = spec
	}
	spec.Requires[alias] = target
}

// AddRefer records name -> defining namespace in the named namespace's
// refer table.
func (s *Store) AddRefer(ns, name, target string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	spec, ok := s.specs[ns]
	if !ok {
		spec = newSpec()
		s.specs[ns] = spec
	}
	spec.Refers[name] = target
}

// Resolve resolves a symbol against the current namespace's spec. The
// result is always fully qualified; the input form's metadata is carried
// over.
func (s *Store) Resolve(sym *types.Form) *types.Form {
	s.mu.RLock()
	spec := s.specs[s.current]
	s.mu.RUnlock()
	return s.ResolveIn(sym, spec)
}

// ResolveIn resolves a symbol against an explicit spec. Resolution order:
//
//  1. the alias is a require key -> substitute the real namespace
//  2. the alias names a declared namespace, or is the host pseudo-namespace
//     -> keep as-is
//  3. the bare name is a refer key -> substitute its defining namespace
//  4. otherwise default to the current namespace
//
// A qualified symbol whose alias matches none of the above is kept as-is:
// it is already fully qualified and rewriting it under the current
// namespace would mangle it.
func (s *Store) ResolveIn(sym *types.Form, spec *Spec) *types.Form {
	alias, name := types.SymbolParts(sym.Str)

	if alias != "" {
		if spec != nil {
			if target, ok := spec.Requires[alias]; ok {
				return qualified(target, name, sym.Meta)
			}
		}
		// Declared namespaces, the host pseudo-namespace, and unknown
		// qualifiers all pass through unchanged.
		return sym
	}

	if spec != nil {
		if target, ok := spec.Refers[name]; ok {
			return qualified(target, name, sym.Meta)
		}
	}
	return qualified(s.Current(), name, sym.Meta)
}

func qualified(ns, name string, meta types.Meta) *types.Form {
	return types.Symbol(types.QualifySymbol(ns, name)).WithMeta(meta)
}
