package namespace

import (
	"github.com/cloverlang/clover/pkg/types"
)

// Declare processes a namespace-declaration form's arguments: the namespace
// name followed by any number of (:require ...) and (:use ...) clauses.
//
//	(ns app.main
//	  (:require [strlib :as s] weblib)
//	  (:use [mathlib :only [gcd lcm]]))
//
// The declared requires and refers are accumulated into the store and the
// current-namespace pointer switches to the new namespace, so every later
// top-level form resolves against it. The returned replacement form emits
// code that registers the namespace and switches to it at program run time.
func Declare(store *Store, args []*types.Form) (*types.Form, error) {
	if len(args) == 0 || args[0].Category != types.CatSymbol {
		return nil, types.NewError(types.ErrSyntax, "ns expects a symbol name")
	}
	name := args[0].Str
	store.CreateNamespace(name)

	for _, clause := range args[1:] {
		if err := declareClause(store, name, clause); err != nil {
			return nil, err
		}
	}
	store.SetCurrent(name)

	quoted := types.List(types.Symbol("quote"), types.Symbol(name))
	return types.List(
		types.Symbol("do"),
		types.List(types.Symbol("core/create-ns"), quoted),
		types.List(types.Symbol("core/in-ns"), quoted),
	).WithMeta(args[0].Meta), nil
}

func declareClause(store *Store, ns string, clause *types.Form) error {
	if clause.Category != types.CatList || len(clause.Children) == 0 {
		return types.NewError(types.ErrSyntax, "ns clause must be a list").WithForm(clause)
	}
	head := clause.Children[0]
	if head.Category != types.CatKeyword {
		return types.NewError(types.ErrSyntax, "ns clause must start with a keyword").WithForm(clause)
	}
	switch head.Str {
	case "require":
		for _, spec := range clause.Children[1:] {
			if err := declareRequire(store, ns, spec); err != nil {
				return err
			}
		}
	case "use", "refer":
		for _, spec := range clause.Children[1:] {
			if err := declareUse(store, ns, spec); err != nil {
				return err
			}
		}
	default:
		return types.Errorf(types.ErrSyntax, "unsupported ns clause :%s", head.Str).WithForm(clause)
	}
	return nil
}

// declareRequire handles one require spec: either a bare namespace symbol,
// which requires it under its own name, or [lib :as alias].
func declareRequire(store *Store, ns string, spec *types.Form) error {
	switch {
	case spec.Category == types.CatSymbol:
		store.AddRequire(ns, spec.Str, spec.Str)
		return nil
	case spec.Category == types.CatVector && len(spec.Children) == 3 &&
		spec.Children[0].Category == types.CatSymbol &&
		spec.Children[1].Category == types.CatKeyword && spec.Children[1].Str == "as" &&
		spec.Children[2].Category == types.CatSymbol:
		store.AddRequire(ns, spec.Children[2].Str, spec.Children[0].Str)
		return nil
	}
	return types.NewError(types.ErrSyntax, "require spec must be a symbol or [lib :as alias]").WithForm(spec)
}

// declareUse handles one use spec: [lib :only [name ...]].
func declareUse(store *Store, ns string, spec *types.Form) error {
	if spec.Category == types.CatVector && len(spec.Children) == 3 &&
		spec.Children[0].Category == types.CatSymbol &&
		spec.Children[1].Category == types.CatKeyword && spec.Children[1].Str == "only" &&
		spec.Children[2].Category == types.CatVector {
		lib := spec.Children[0].Str
		for _, n := range spec.Children[2].Children {
			if n.Category != types.CatSymbol {
				return types.NewError(types.ErrSyntax, ":only names must be symbols").WithForm(spec)
			}
			store.AddRefer(ns, n.Str, lib)
		}
		return nil
	}
	return types.NewError(types.ErrSyntax, "use spec must be [lib :only [name ...]]").WithForm(spec)
}
