// Package macros ships the default macro table. The expander treats macros
// as opaque caller-supplied functions; this package is one such caller,
// providing the bindings a bare compiler is expected to have: namespace
// declarations plus a handful of everyday shorthands.
package macros

import (
	"github.com/cloverlang/clover/pkg/namespace"
	"github.com/cloverlang/clover/pkg/types"
)

// DefaultTable returns the built-in macro table bound to the given store.
// The ns macro mutates the store as a side effect of expansion, which is
// why the table is per-compilation rather than a package global.
func DefaultTable(store *namespace.Store) types.MacroTable {
	return types.MacroTable{
		"ns": func(args []*types.Form) (*types.Form, error) {
			return namespace.Declare(store, args)
		},
		"defn":   defn,
		"when":   when,
		"unless": unless,
		"->":     threadFirst,
	}
}

// defn rewrites (defn name params body...) into (def name (fn params body...)).
func defn(args []*types.Form) (*types.Form, error) {
	if len(args) < 2 || args[0].Category != types.CatSymbol {
		return nil, types.NewError(types.ErrSyntax, "defn expects a name followed by fn clauses")
	}
	fn := make([]*types.Form, 0, len(args))
	fn = append(fn, types.Symbol("fn"))
	fn = append(fn, args[1:]...)
	return types.List(types.Symbol("def"), args[0], types.Coll(types.CatList, fn, nil)), nil
}

// when rewrites (when test body...) into (if test (do body...) nil).
func when(args []*types.Form) (*types.Form, error) {
	if len(args) < 1 {
		return nil, types.NewError(types.ErrSyntax, "when expects a test")
	}
	return types.List(types.Symbol("if"), args[0], doWrap(args[1:]), types.Symbol("nil")), nil
}

// unless rewrites (unless test body...) into (if test nil (do body...)).
func unless(args []*types.Form) (*types.Form, error) {
	if len(args) < 1 {
		return nil, types.NewError(types.ErrSyntax, "unless expects a test")
	}
	return types.List(types.Symbol("if"), args[0], types.Symbol("nil"), doWrap(args[1:])), nil
}

// threadFirst rewrites (-> x (f a) g) into (g (f x a)), inserting each
// intermediate result as the first argument of the next step.
func threadFirst(args []*types.Form) (*types.Form, error) {
	if len(args) == 0 {
		return nil, types.NewError(types.ErrSyntax, "-> expects an initial value")
	}
	acc := args[0]
	for _, step := range args[1:] {
		if step.Category == types.CatList && len(step.Children) > 0 {
			children := make([]*types.Form, 0, len(step.Children)+1)
			children = append(children, step.Children[0], acc)
			children = append(children, step.Children[1:]...)
			acc = types.Coll(types.CatList, children, step.Meta)
		} else {
			acc = types.List(step, acc).WithMeta(step.Meta)
		}
	}
	return acc, nil
}

func doWrap(body []*types.Form) *types.Form {
	children := make([]*types.Form, 0, len(body)+1)
	children = append(children, types.Symbol("do"))
	children = append(children, body...)
	return types.Coll(types.CatList, children, nil)
}
