// Package clover is a compiler from the Clover language, a Clojure-flavored
// Lisp, to JavaScript program text.
//
// The pipeline has three semantic stages tied together by a namespace
// store: macro and syntax-quote expansion, context-sensitive semantic
// analysis, and code emission. Each top-level form compiles to one
// independently valid JavaScript fragment; joining successive fragments
// with newlines yields a complete program.
//
// # Quick start
//
//	js, err := clover.Compile(`(defn add [a b] (+ a b))`)
//
//	// Compiler instance: one namespace store across many calls
//	c := clover.New()
//	js1, _ := c.CompileString(`(ns app.main (:require [strlib :as s]))`)
//	js2, _ := c.CompileString(`(def greeting (s/join " " (list "hello" "world")))`)
//
// Compilation is strictly sequential over the top-level forms of one
// compiler: later forms resolve symbols against namespace state mutated by
// earlier ones, so forms are never processed out of order. A Compiler is
// not safe for concurrent use; independent compilations should each create
// their own.
package clover

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/cloverlang/clover/pkg/analyzer"
	"github.com/cloverlang/clover/pkg/cache"
	"github.com/cloverlang/clover/pkg/emitter"
	"github.com/cloverlang/clover/pkg/expander"
	"github.com/cloverlang/clover/pkg/macros"
	"github.com/cloverlang/clover/pkg/namespace"
	"github.com/cloverlang/clover/pkg/reader"
	"github.com/cloverlang/clover/pkg/types"
)

// Version returns the current version of the Clover compiler.
func Version() string {
	return "v0.1.0-dev"
}

// Options configures a Compiler.
type Options struct {
	// Macros is the macro table consulted by the expander. When nil, the
	// built-in table (ns, defn, when, unless, ->) bound to the compiler's
	// store is used. Supplying a table replaces the built-ins entirely.
	Macros types.MacroTable
	// Store is the namespace store the run resolves against. When nil a
	// fresh store is created, so independent compilations stay isolated.
	Store *namespace.Store
	// MaxExpansionDepth bounds the expander's fixed-point loop.
	// Defaults to expander.DefaultMaxDepth.
	MaxExpansionDepth int
	// Caching enables LRU caching of compiled output keyed by source and
	// current namespace. Only suitable for sources that do not declare or
	// switch namespaces: a cache hit replays no store mutations.
	Caching bool
	// CacheSize sets the maximum number of cached outputs. Only used when
	// Caching is true and no explicit Cache is provided. Defaults to 256.
	CacheSize int
	// Cache is a custom output cache. If non-nil, Caching is implicitly
	// enabled.
	Cache *cache.Cache
	// Logger for structured debug logging.
	Logger *slog.Logger
}

// Option configures compiler behavior.
type Option func(*Options)

// WithMacros replaces the macro table.
func WithMacros(table types.MacroTable) Option {
	return func(o *Options) { o.Macros = table }
}

// WithStore supplies an existing namespace store.
func WithStore(store *namespace.Store) Option {
	return func(o *Options) { o.Store = store }
}

// WithMaxExpansionDepth bounds the expander's fixed-point loop.
func WithMaxExpansionDepth(n int) Option {
	return func(o *Options) { o.MaxExpansionDepth = n }
}

// WithCaching enables output caching.
func WithCaching(enable bool) Option {
	return func(o *Options) { o.Caching = enable }
}

// WithCacheSize sets the output cache capacity.
func WithCacheSize(n int) Option {
	return func(o *Options) { o.CacheSize = n }
}

// WithCache supplies a custom output cache.
func WithCache(c *cache.Cache) Option {
	return func(o *Options) { o.Cache = c }
}

// WithLogger sets the logger used for debug traces.
func WithLogger(l *slog.Logger) Option {
	return func(o *Options) { o.Logger = l }
}

// Compiler drives the pipeline: reader output goes through expand-all,
// form-to-AST conversion, analysis and emission, one top-level form at a
// time, against one namespace store.
type Compiler struct {
	store    *namespace.Store
	expander *expander.Expander
	analyzer *analyzer.Analyzer
	cache    *cache.Cache
	logger   *slog.Logger
}

// New creates a Compiler with a fresh namespace store and the built-in
// macro table, unless options supply either.
func New(opts ...Option) *Compiler {
	var options Options
	for _, opt := range opts {
		opt(&options)
	}

	if options.Logger == nil {
		options.Logger = slog.Default()
	}
	store := options.Store
	if store == nil {
		store = namespace.NewStore()
	}
	table := options.Macros
	if table == nil {
		table = macros.DefaultTable(store)
	}

	var c *cache.Cache
	if options.Cache != nil {
		c = options.Cache
	} else if options.Caching {
		c = cache.New(options.CacheSize)
	}

	return &Compiler{
		store: store,
		expander: expander.New(table,
			expander.WithMaxDepth(options.MaxExpansionDepth),
			expander.WithLogger(options.Logger)),
		analyzer: analyzer.New(store),
		cache:    c,
		logger:   options.Logger,
	}
}

// Store returns the compiler's namespace store.
func (c *Compiler) Store() *namespace.Store {
	return c.store
}

// CompileString reads every top-level form from source text and compiles
// it to JavaScript, joining per-form fragments with newlines.
func (c *Compiler) CompileString(src string) (string, error) {
	if c.cache != nil {
		key := c.store.Current() + "\x00" + src
		return c.cache.GetOrCompile(key, func() (string, error) {
			return c.compileString(src)
		})
	}
	return c.compileString(src)
}

func (c *Compiler) compileString(src string) (string, error) {
	forms, err := reader.ReadString(src)
	if err != nil {
		return "", err
	}
	return c.CompileForms(forms)
}

// CompileForms compiles an ordered sequence of top-level forms. The first
// error aborts the remaining forms: later forms may depend on namespace
// state mutated while processing earlier ones, so there is no partial
// success.
func (c *Compiler) CompileForms(forms []*types.Form) (string, error) {
	fragments := make([]string, 0, len(forms))
	for _, form := range forms {
		fragment, err := c.compileForm(form)
		if err != nil {
			return "", err
		}
		fragments = append(fragments, fragment)
	}
	return strings.Join(fragments, "\n"), nil
}

// compileForm threads one form through the three stages.
func (c *Compiler) compileForm(form *types.Form) (string, error) {
	expanded, err := c.expander.ExpandAll(form)
	if err != nil {
		return "", err
	}
	node, err := c.analyzer.AnalyzeForm(types.Env{Context: types.CtxStatement}, expanded)
	if err != nil {
		return "", err
	}
	c.logger.Debug("compiled form", "op", string(node.Op), "ns", c.store.Current())
	return emitter.Emit(node)
}

// Compile is a convenience function that creates a fresh Compiler and
// compiles the source in a single call. For several sources sharing
// namespace state, create a Compiler and reuse it.
func Compile(src string, opts ...Option) (string, error) {
	return New(opts...).CompileString(src)
}

// MustCompile is like Compile but panics if the source cannot be compiled.
// It simplifies safe initialization of global variables.
func MustCompile(src string, opts ...Option) string {
	out, err := Compile(src, opts...)
	if err != nil {
		panic(fmt.Sprintf("clover: Compile(%q): %v", src, err))
	}
	return out
}
