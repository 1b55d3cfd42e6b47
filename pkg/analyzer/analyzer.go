// Package analyzer implements the context-sensitive semantic analysis
// stage. It classifies expanded forms, threads the environment through
// nested scopes, dispatches the special forms and resolves symbols through
// the namespace store, producing the annotated AST the emitter consumes.
package analyzer

import (
	"github.com/cloverlang/clover/pkg/namespace"
	"github.com/cloverlang/clover/pkg/types"
)

// Analyzer converts expanded forms into analyzed AST nodes.
type Analyzer struct {
	store *namespace.Store
}

// New creates an Analyzer resolving symbols against the given store.
func New(store *namespace.Store) *Analyzer {
	return &Analyzer{store: store}
}

// FormToAST classifies a form into a constant or collection node,
// recursively converting collection children. A form that fits no
// recognized category is a classification error.
func FormToAST(form *types.Form) (*types.Node, error) {
	switch form.Category {
	case types.CatList, types.CatVector, types.CatMap, types.CatSet:
		node := types.NewNode(types.OpColl, form)
		node.Children = make([]*types.Node, len(form.Children))
		for i, child := range form.Children {
			converted, err := FormToAST(child)
			if err != nil {
				return nil, err
			}
			node.Children[i] = converted
		}
		return node, nil
	case types.CatSymbol, types.CatKeyword, types.CatString,
		types.CatNumber, types.CatBoolean, types.CatNil:
		return types.NewNode(types.OpConst, form), nil
	}
	return nil, types.Errorf(types.ErrClassification, "form fits no recognized category %q", form.Category).
		WithForm(form)
}

// Analyze annotates a node under the given environment. List forms get
// list analysis, generic collections analyze every child under expression
// context, symbols go through symbol analysis, and everything else passes
// through with the environment attached.
func (a *Analyzer) Analyze(env types.Env, node *types.Node) (*types.Node, error) {
	switch {
	case node.Category == types.CatList:
		return a.analyzeList(env, node)
	case node.Op == types.OpColl:
		return a.analyzeColl(env, node)
	case node.Category == types.CatSymbol:
		return a.analyzeSymbol(env, node)
	default:
		return node.WithEnv(env), nil
	}
}

// AnalyzeForm converts and analyzes a form in one step.
func (a *Analyzer) AnalyzeForm(env types.Env, form *types.Form) (*types.Node, error) {
	node, err := FormToAST(form)
	if err != nil {
		return nil, err
	}
	return a.Analyze(env, node)
}

// analyzeColl analyzes every child of a generic collection under an
// expression-context derivation of the environment.
func (a *Analyzer) analyzeColl(env types.Env, node *types.Node) (*types.Node, error) {
	childEnv := env.WithContext(types.CtxExpr)
	children := make([]*types.Node, len(node.Children))
	for i, child := range node.Children {
		analyzed, err := a.Analyze(childEnv, child)
		if err != nil {
			return nil, err
		}
		children[i] = analyzed
	}
	annotated := node.WithEnv(env)
	annotated.Children = children
	return annotated, nil
}

// analyzeList handles list forms: quoted or childless lists are generic
// collections, a recognized special-form head dispatches to its analyzer,
// and anything else is an invocation.
func (a *Analyzer) analyzeList(env types.Env, node *types.Node) (*types.Node, error) {
	if env.Quoted || len(node.Form.Children) == 0 {
		return a.analyzeColl(env, node)
	}
	head := node.Form.Head()
	if head.Category == types.CatSymbol {
		if analyze, ok := a.specialForm(head.Str); ok {
			return analyze(env, node)
		}
	}
	return a.analyzeInvoke(env, node)
}

// analyzeInvoke analyzes an invocation: the invoked expression and every
// argument under expression context.
func (a *Analyzer) analyzeInvoke(env types.Env, node *types.Node) (*types.Node, error) {
	childEnv := env.WithContext(types.CtxExpr)
	callee, err := a.AnalyzeForm(childEnv, node.Form.Children[0])
	if err != nil {
		return nil, err
	}
	args, err := a.analyzeAll(childEnv, node.Form.Children[1:])
	if err != nil {
		return nil, err
	}
	invoke := types.NewNode(types.OpInvoke, node.Form).WithEnv(env)
	invoke.Callee = callee
	invoke.Args = args
	return invoke, nil
}

// analyzeAll analyzes a run of forms under one environment.
func (a *Analyzer) analyzeAll(env types.Env, forms []*types.Form) ([]*types.Node, error) {
	nodes := make([]*types.Node, len(forms))
	for i, form := range forms {
		analyzed, err := a.AnalyzeForm(env, form)
		if err != nil {
			return nil, err
		}
		nodes[i] = analyzed
	}
	return nodes, nil
}

// analyzeBlock analyzes a statement sequence: every expression but the
// last under statement context, the last under return context unless the
// enclosing context is already statement. This propagates value-producing
// position down a sequence without forcing intermediate expressions to
// produce values.
func (a *Analyzer) analyzeBlock(env types.Env, forms []*types.Form) ([]*types.Node, error) {
	if len(forms) == 0 {
		return nil, nil
	}
	stmtEnv := env.WithContext(types.CtxStatement)
	lastEnv := env.WithContext(types.CtxReturn)
	if env.Context == types.CtxStatement {
		lastEnv = stmtEnv
	}

	nodes := make([]*types.Node, len(forms))
	for i, form := range forms {
		childEnv := stmtEnv
		if i == len(forms)-1 {
			childEnv = lastEnv
		}
		analyzed, err := a.AnalyzeForm(childEnv, form)
		if err != nil {
			return nil, err
		}
		nodes[i] = analyzed
	}
	return nodes, nil
}

// analyzeSymbol resolves a symbol node. Quoted symbols pass through, the
// literal names for true/false/nil become fixed constant nodes, locals
// pass through unchanged, and every other symbol resolves to a fully
// qualified one through the namespace store.
func (a *Analyzer) analyzeSymbol(env types.Env, node *types.Node) (*types.Node, error) {
	if env.Quoted {
		return node.WithEnv(env), nil
	}
	switch node.Form.Str {
	case "true":
		return constNode(types.Boolean(true).WithMeta(node.Meta), env), nil
	case "false":
		return constNode(types.Boolean(false).WithMeta(node.Meta), env), nil
	case "nil":
		return constNode(types.Nil().WithMeta(node.Meta), env), nil
	}
	if env.IsLocal(node.Form.Str) {
		return node.WithEnv(env), nil
	}
	resolved := a.store.Resolve(node.Form)
	annotated := types.NewNode(types.OpConst, resolved).WithEnv(env)
	return annotated, nil
}

func constNode(form *types.Form, env types.Env) *types.Node {
	return types.NewNode(types.OpConst, form).WithEnv(env)
}
