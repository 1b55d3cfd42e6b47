package analyzer

import (
	"github.com/cloverlang/clover/pkg/types"
)

type specialFn func(types.Env, *types.Node) (*types.Node, error)

// specialForm returns the analyzer for a special-form head symbol. The
// special-form set is closed: the switch is the single registry.
func (a *Analyzer) specialForm(name string) (specialFn, bool) {
	switch name {
	case "aget":
		return a.analyzeAget, true
	case "aset":
		return a.analyzeAset, true
	case "def":
		return a.analyzeDef, true
	case "do":
		return a.analyzeDo, true
	case "fn":
		return a.analyzeFn, true
	case "if":
		return a.analyzeIf, true
	case "let":
		return a.analyzeLet, true
	case "loop":
		return a.analyzeLoop, true
	case "new":
		return a.analyzeNew, true
	case "quote":
		return a.analyzeQuote, true
	case "recur":
		return a.analyzeRecur, true
	case "throw":
		return a.analyzeThrow, true
	}
	return nil, false
}

// analyzeAget handles (aget target index...): the target and every index
// or field under expression context.
func (a *Analyzer) analyzeAget(env types.Env, node *types.Node) (*types.Node, error) {
	args := node.Form.Tail()
	if len(args) < 2 {
		return nil, types.NewError(types.ErrSyntax, "aget expects a target and at least one index").
			WithForm(node.Form)
	}
	childEnv := env.WithContext(types.CtxExpr)
	target, err := a.AnalyzeForm(childEnv, args[0])
	if err != nil {
		return nil, err
	}
	index, err := a.analyzeAll(childEnv, args[1:])
	if err != nil {
		return nil, err
	}
	out := types.NewNode(types.OpAget, node.Form).WithEnv(env)
	out.Target = target
	out.Index = index
	return out, nil
}

// analyzeAset handles (aset target field... value): the target, the field
// chain (all arguments but the last) and the assigned value (the last),
// all under expression context.
func (a *Analyzer) analyzeAset(env types.Env, node *types.Node) (*types.Node, error) {
	args := node.Form.Tail()
	if len(args) < 3 {
		return nil, types.NewError(types.ErrSyntax, "aset expects a target, at least one field and a value").
			WithForm(node.Form)
	}
	childEnv := env.WithContext(types.CtxExpr)
	target, err := a.AnalyzeForm(childEnv, args[0])
	if err != nil {
		return nil, err
	}
	fields, err := a.analyzeAll(childEnv, args[1:len(args)-1])
	if err != nil {
		return nil, err
	}
	value, err := a.AnalyzeForm(childEnv, args[len(args)-1])
	if err != nil {
		return nil, err
	}
	out := types.NewNode(types.OpAset, node.Form).WithEnv(env)
	out.Target = target
	out.Fields = fields
	out.Value = value
	return out, nil
}

// analyzeDef handles (def name init?): the name under expression context
// (resolving it into the current namespace), bound to the initializer or a
// nil literal when omitted.
func (a *Analyzer) analyzeDef(env types.Env, node *types.Node) (*types.Node, error) {
	args := node.Form.Tail()
	if len(args) < 1 || len(args) > 2 || args[0].Category != types.CatSymbol {
		return nil, types.NewError(types.ErrSyntax, "def expects a symbol name and an optional initializer").
			WithForm(node.Form)
	}
	childEnv := env.WithContext(types.CtxExpr)
	name, err := a.AnalyzeForm(childEnv, args[0])
	if err != nil {
		return nil, err
	}
	initForm := types.Nil().WithMeta(node.Meta)
	if len(args) == 2 {
		initForm = args[1]
	}
	init, err := a.AnalyzeForm(childEnv, initForm)
	if err != nil {
		return nil, err
	}
	out := types.NewNode(types.OpDef, node.Form).WithEnv(env)
	out.Name = name
	out.Init = init
	return out, nil
}

// analyzeDo sequences its body through block analysis.
func (a *Analyzer) analyzeDo(env types.Env, node *types.Node) (*types.Node, error) {
	body, err := a.analyzeBlock(env, node.Form.Tail())
	if err != nil {
		return nil, err
	}
	out := types.NewNode(types.OpDo, node.Form).WithEnv(env)
	out.Body = body
	return out, nil
}

// analyzeIf handles (if test then else?): the test under expression
// context, the branches under the same context as the enclosing node, so
// context propagates through branches unchanged.
func (a *Analyzer) analyzeIf(env types.Env, node *types.Node) (*types.Node, error) {
	args := node.Form.Tail()
	if len(args) < 2 || len(args) > 3 {
		return nil, types.NewError(types.ErrSyntax, "if expects a test, a then branch and an optional else branch").
			WithForm(node.Form)
	}
	test, err := a.AnalyzeForm(env.WithContext(types.CtxExpr), args[0])
	if err != nil {
		return nil, err
	}
	then, err := a.AnalyzeForm(env, args[1])
	if err != nil {
		return nil, err
	}
	elseForm := types.Nil().WithMeta(node.Meta)
	if len(args) == 3 {
		elseForm = args[2]
	}
	els, err := a.AnalyzeForm(env, elseForm)
	if err != nil {
		return nil, err
	}
	out := types.NewNode(types.OpIf, node.Form).WithEnv(env)
	out.Test = test
	out.Then = then
	out.Else = els
	return out, nil
}

// analyzeFn extracts one or more arity clauses. Accepted shapes: a bare
// params vector followed by the body, or one or more (params body...)
// groups, optionally preceded by a self-reference name (accepted but
// unused). Clauses are keyed by fixed parameter count; duplicate counts
// silently overwrite earlier clauses.
func (a *Analyzer) analyzeFn(env types.Env, node *types.Node) (*types.Node, error) {
	args := node.Form.Tail()
	if len(args) > 0 && args[0].Category == types.CatSymbol {
		args = args[1:] // self-reference name
	}
	if len(args) == 0 {
		return nil, types.NewError(types.ErrSyntax, "fn expects at least one clause").
			WithForm(node.Form)
	}

	clauses := make(map[int]*types.FnClause)
	if args[0].Category == types.CatVector {
		clause, err := a.analyzeClause(env, args[0], args[1:], node.Form)
		if err != nil {
			return nil, err
		}
		clauses[clause.FixedArity()] = clause
	} else {
		for _, group := range args {
			if group.Category != types.CatList || len(group.Children) == 0 ||
				group.Children[0].Category != types.CatVector {
				return nil, types.NewError(types.ErrSyntax, "fn clause must be (params body...)").
					WithForm(group)
			}
			clause, err := a.analyzeClause(env, group.Children[0], group.Children[1:], node.Form)
			if err != nil {
				return nil, err
			}
			clauses[clause.FixedArity()] = clause
		}
	}

	out := types.NewNode(types.OpFn, node.Form).WithEnv(env)
	out.Clauses = clauses
	return out, nil
}

// analyzeClause analyzes one fn clause: parameters bind as new locals and
// the body analyzes in return context so its tail position produces the
// clause's value. A & before the final parameter marks it variadic.
func (a *Analyzer) analyzeClause(env types.Env, paramsVec *types.Form, body []*types.Form, origin *types.Form) (*types.FnClause, error) {
	var params []string
	variadic := false
	for i, p := range paramsVec.Children {
		if p.Category != types.CatSymbol {
			return nil, types.NewError(types.ErrSyntax, "fn parameters must be symbols").
				WithForm(origin)
		}
		if p.Str == "&" {
			if i != len(paramsVec.Children)-2 {
				return nil, types.NewError(types.ErrSyntax, "& must precede the final parameter").
					WithForm(origin)
			}
			variadic = true
			continue
		}
		params = append(params, p.Str)
	}

	clauseEnv := env.WithContext(types.CtxReturn).WithLocals(params...)
	analyzed, err := a.analyzeBlock(clauseEnv, body)
	if err != nil {
		return nil, err
	}
	return &types.FnClause{Params: params, Variadic: variadic, Body: analyzed}, nil
}

// analyzeLet handles (let [name init ...] body...).
func (a *Analyzer) analyzeLet(env types.Env, node *types.Node) (*types.Node, error) {
	bindings, bodyEnv, err := a.analyzeBindings(env, node)
	if err != nil {
		return nil, err
	}
	out := types.NewNode(types.OpLet, node.Form).WithEnv(env)
	out.Bindings = bindings
	out.Body, err = a.analyzeBlock(bodyEnv, node.Form.Tail()[1:])
	if err != nil {
		return nil, err
	}
	return out, nil
}

// analyzeLoop handles (loop [name init ...] body...). The loop records
// itself as the active recur point for its body.
func (a *Analyzer) analyzeLoop(env types.Env, node *types.Node) (*types.Node, error) {
	bindings, bodyEnv, err := a.analyzeBindings(env, node)
	if err != nil {
		return nil, err
	}
	out := types.NewNode(types.OpLoop, node.Form).WithEnv(env)
	out.Bindings = bindings
	out.Body, err = a.analyzeBlock(bodyEnv.WithRecurPoint(out), node.Form.Tail()[1:])
	if err != nil {
		return nil, err
	}
	return out, nil
}

// analyzeBindings converts a binding vector into an ordered sequence of
// (name, analyzed initializer) pairs. Each binding's name becomes visible
// to later bindings and to the body. The vector must have an even element
// count.
func (a *Analyzer) analyzeBindings(env types.Env, node *types.Node) ([]types.Binding, types.Env, error) {
	args := node.Form.Tail()
	if len(args) == 0 || args[0].Category != types.CatVector {
		return nil, env, types.NewError(types.ErrSyntax, "bindings must be a vector").
			WithForm(node.Form)
	}
	vec := args[0]
	if len(vec.Children)%2 != 0 {
		return nil, env, types.NewError(types.ErrSyntax, "bindings vector must have an even number of forms").
			WithForm(vec)
	}

	scope := env
	bindings := make([]types.Binding, 0, len(vec.Children)/2)
	for i := 0; i < len(vec.Children); i += 2 {
		nameForm := vec.Children[i]
		if nameForm.Category != types.CatSymbol {
			return nil, env, types.NewError(types.ErrSyntax, "binding names must be symbols").
				WithForm(nameForm)
		}
		init, err := a.AnalyzeForm(scope.WithContext(types.CtxExpr), vec.Children[i+1])
		if err != nil {
			return nil, env, err
		}
		bindings = append(bindings, types.Binding{Name: nameForm.Str, Init: init})
		scope = scope.WithLocals(nameForm.Str)
	}
	return bindings, scope, nil
}

// analyzeNew handles (new Ctor args...): constructor and arguments under
// expression context.
func (a *Analyzer) analyzeNew(env types.Env, node *types.Node) (*types.Node, error) {
	args := node.Form.Tail()
	if len(args) == 0 {
		return nil, types.NewError(types.ErrSyntax, "new expects a constructor").
			WithForm(node.Form)
	}
	childEnv := env.WithContext(types.CtxExpr)
	callee, err := a.AnalyzeForm(childEnv, args[0])
	if err != nil {
		return nil, err
	}
	ctorArgs, err := a.analyzeAll(childEnv, args[1:])
	if err != nil {
		return nil, err
	}
	out := types.NewNode(types.OpNew, node.Form).WithEnv(env)
	out.Callee = callee
	out.Args = ctorArgs
	return out, nil
}

// analyzeQuote re-analyzes its single child with the quoted flag set,
// suppressing resolution and invocation semantics. The analyzed child is
// the result: quoting leaves no node of its own, only the quoted
// environment on the subtree.
func (a *Analyzer) analyzeQuote(env types.Env, node *types.Node) (*types.Node, error) {
	args := node.Form.Tail()
	if len(args) != 1 {
		return nil, types.NewError(types.ErrSyntax, "quote expects exactly one form").
			WithForm(node.Form)
	}
	return a.AnalyzeForm(env.WithQuoted(), args[0])
}

// analyzeRecur handles (recur args...): it requires an active recur point
// and analyzes its arguments under expression context. Arguments match the
// recur point's bindings positionally; a count mismatch truncates to the
// shorter side without erroring.
func (a *Analyzer) analyzeRecur(env types.Env, node *types.Node) (*types.Node, error) {
	if env.RecurPoint == nil {
		return nil, types.NewError(types.ErrScope, "recur with no active recur point").
			WithForm(node.Form)
	}
	args, err := a.analyzeAll(env.WithContext(types.CtxExpr), node.Form.Tail())
	if err != nil {
		return nil, err
	}
	out := types.NewNode(types.OpRecur, node.Form).WithEnv(env)
	out.Args = args
	return out, nil
}

// analyzeThrow handles (throw expr): the thrown expression under
// expression context.
func (a *Analyzer) analyzeThrow(env types.Env, node *types.Node) (*types.Node, error) {
	args := node.Form.Tail()
	if len(args) != 1 {
		return nil, types.NewError(types.ErrSyntax, "throw expects exactly one form").
			WithForm(node.Form)
	}
	exc, err := a.AnalyzeForm(env.WithContext(types.CtxExpr), args[0])
	if err != nil {
		return nil, err
	}
	out := types.NewNode(types.OpThrow, node.Form).WithEnv(env)
	out.Exception = exc
	return out, nil
}
