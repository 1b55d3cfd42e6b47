// Package emitter renders analyzed AST nodes as JavaScript text. Each
// node's environment context decides the shape of its output: expression
// positions render bare expressions, statement positions get a trailing
// terminator, return positions a return prefix. Blocks (do, let, loop)
// render as plain statements in statement-like positions and as
// immediately-invoked function expressions where a value is needed.
package emitter

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/cloverlang/clover/pkg/namespace"
	"github.com/cloverlang/clover/pkg/types"
)

// Emit renders one analyzed node, applying the return prefix and statement
// terminator its context calls for.
func Emit(n *types.Node) (string, error) {
	code, err := render(n)
	if err != nil {
		return "", err
	}
	if n.Env.Context == types.CtxReturn && expressionShaped(n.Op) {
		code = "return " + code
	}
	if n.Env.Context != types.CtxExpr && !selfDelimiting(n.Op) {
		code += ";"
	}
	return code, nil
}

// expressionShaped reports whether the op's rendering is itself an
// expression, making a return prefix meaningful.
func expressionShaped(op types.Op) bool {
	switch op {
	case types.OpAget, types.OpAset, types.OpConst, types.OpColl, types.OpFn, types.OpNew:
		return true
	default:
		return false
	}
}

// selfDelimiting reports whether the op emits its own block syntax, so no
// statement terminator is appended.
func selfDelimiting(op types.Op) bool {
	switch op {
	case types.OpIf, types.OpLet, types.OpLoop:
		return true
	default:
		return false
	}
}

func render(n *types.Node) (string, error) {
	switch n.Op {
	case types.OpConst, types.OpColl:
		return renderConst(n)
	case types.OpAget:
		return renderAget(n)
	case types.OpAset:
		return renderAset(n)
	case types.OpDef:
		return renderDef(n)
	case types.OpDo:
		return renderBlock(n.Env, nil, n.Body)
	case types.OpFn:
		return renderFn(n)
	case types.OpIf:
		return renderIf(n)
	case types.OpInvoke:
		return renderInvoke(n)
	case types.OpLet:
		return renderLet(n)
	case types.OpLoop:
		return renderLoop(n)
	case types.OpNew:
		return renderNew(n)
	case types.OpRecur:
		return renderRecur(n)
	case types.OpThrow:
		return renderThrow(n)
	default:
		return "", types.Errorf(types.ErrClassification, "no emission rule for op %q", n.Op).
			WithForm(n.Form)
	}
}

// renderStatements emits a run of statement nodes joined by newlines.
func renderStatements(nodes []*types.Node) (string, error) {
	lines := make([]string, len(nodes))
	for i, n := range nodes {
		code, err := Emit(n)
		if err != nil {
			return "", err
		}
		lines[i] = code
	}
	return strings.Join(lines, "\n"), nil
}

// renderArgs emits expression nodes joined by commas.
func renderArgs(nodes []*types.Node) (string, error) {
	parts := make([]string, len(nodes))
	for i, n := range nodes {
		code, err := Emit(n)
		if err != nil {
			return "", err
		}
		parts[i] = code
	}
	return strings.Join(parts, ", "), nil
}

// iife wraps sequential statements in an immediately-invoked anonymous
// function so the block yields a single value.
func iife(body string) string {
	return "(function () {\n" + body + "\n})()"
}

// renderBlock renders a statement sequence, optionally preceded by
// declaration lines, choosing plain statements or an IIFE by context.
func renderBlock(env types.Env, decls []string, body []*types.Node) (string, error) {
	stmts, err := renderStatements(body)
	if err != nil {
		return "", err
	}
	lines := append(append([]string{}, decls...), stmts)
	joined := strings.Join(lines, "\n")
	if env.Context == types.CtxExpr {
		return iife(joined), nil
	}
	return joined, nil
}

func renderAget(n *types.Node) (string, error) {
	target, err := Emit(n.Target)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	b.WriteString(target)
	for _, idx := range n.Index {
		code, err := Emit(idx)
		if err != nil {
			return "", err
		}
		b.WriteString("[" + code + "]")
	}
	return b.String(), nil
}

func renderAset(n *types.Node) (string, error) {
	target, err := Emit(n.Target)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	b.WriteString(target)
	for _, f := range n.Fields {
		code, err := Emit(f)
		if err != nil {
			return "", err
		}
		b.WriteString("[" + code + "]")
	}
	value, err := Emit(n.Value)
	if err != nil {
		return "", err
	}
	b.WriteString(" = " + value)
	return b.String(), nil
}

func renderDef(n *types.Node) (string, error) {
	name, err := Emit(n.Name)
	if err != nil {
		return "", err
	}
	init, err := Emit(n.Init)
	if err != nil {
		return "", err
	}
	return name + " = " + init, nil
}

func renderIf(n *types.Node) (string, error) {
	test, err := Emit(n.Test)
	if err != nil {
		return "", err
	}
	then, err := Emit(n.Then)
	if err != nil {
		return "", err
	}
	els, err := Emit(n.Else)
	if err != nil {
		return "", err
	}
	if n.Env.Context == types.CtxExpr {
		return "(" + test + " ? " + then + " : " + els + ")", nil
	}
	return "if (" + test + ") {\n" + then + "\n} else {\n" + els + "\n}", nil
}

func renderLet(n *types.Node) (string, error) {
	decls, err := bindingDecls(n.Bindings)
	if err != nil {
		return "", err
	}
	return renderBlock(n.Env, decls, n.Body)
}

// renderLoop emits the bindings as initializers followed by an
// unconditional loop whose body always ends in an explicit break;
// iteration happens only through recur.
func renderLoop(n *types.Node) (string, error) {
	decls, err := bindingDecls(n.Bindings)
	if err != nil {
		return "", err
	}
	stmts, err := renderStatements(n.Body)
	if err != nil {
		return "", err
	}
	loop := strings.Join(decls, "\n") + "\nwhile (true) {\n" + stmts + "\nbreak;\n}"
	if n.Env.Context == types.CtxExpr {
		return iife(loop), nil
	}
	return loop, nil
}

func bindingDecls(bindings []types.Binding) ([]string, error) {
	decls := make([]string, len(bindings))
	for i, b := range bindings {
		init, err := Emit(b.Init)
		if err != nil {
			return nil, err
		}
		decls[i] = "var " + EscapeName(b.Name) + " = " + init + ";"
	}
	return decls, nil
}

// renderRecur re-assigns the enclosing recur point's bindings, matched
// positionally and truncated to the shorter of declared bindings and
// supplied arguments, then continues the nearest enclosing loop.
func renderRecur(n *types.Node) (string, error) {
	point := n.Env.RecurPoint
	count := len(point.Bindings)
	if len(n.Args) < count {
		count = len(n.Args)
	}
	var lines []string
	for i := 0; i < count; i++ {
		arg, err := Emit(n.Args[i])
		if err != nil {
			return "", err
		}
		lines = append(lines, EscapeName(point.Bindings[i].Name)+" = "+arg+";")
	}
	lines = append(lines, "continue")
	return strings.Join(lines, "\n"), nil
}

// renderFn emits a function literal. A single clause renders as a plain
// function binding its parameters; multiple clauses render a function
// switching on the runtime argument count, binding each clause's
// parameters from the arguments object and raising a runtime arity error
// for unmatched counts.
func renderFn(n *types.Node) (string, error) {
	if len(n.Clauses) == 1 {
		for _, clause := range n.Clauses {
			return renderSingleClause(clause)
		}
	}

	arities := make([]int, 0, len(n.Clauses))
	for arity := range n.Clauses {
		arities = append(arities, arity)
	}
	sort.Ints(arities)

	var b strings.Builder
	b.WriteString("function () {\nswitch (arguments.length) {\n")
	var variadic *types.FnClause
	for _, arity := range arities {
		clause := n.Clauses[arity]
		if clause.Variadic {
			variadic = clause
			continue
		}
		body, err := clauseBody(clause)
		if err != nil {
			return "", err
		}
		b.WriteString(fmt.Sprintf("case %d:\n%s\n", arity, body))
	}
	b.WriteString("default:\n")
	if variadic != nil {
		body, err := clauseBody(variadic)
		if err != nil {
			return "", err
		}
		b.WriteString(body + "\n")
	} else {
		b.WriteString(`throw new Error("invalid arity: " + arguments.length);` + "\n")
	}
	b.WriteString("}\n}")
	return b.String(), nil
}

// renderSingleClause emits a plain function literal whose fixed parameters
// appear in the signature; a rest parameter is read from arguments.
func renderSingleClause(clause *types.FnClause) (string, error) {
	fixed := clause.Params
	var restDecl string
	if clause.Variadic {
		fixed = clause.Params[:len(clause.Params)-1]
		restDecl = restParamDecl(clause)
	}
	names := make([]string, len(fixed))
	for i, p := range fixed {
		names[i] = EscapeName(p)
	}
	stmts, err := renderStatements(clause.Body)
	if err != nil {
		return "", err
	}
	body := stmts
	if restDecl != "" {
		body = restDecl + "\n" + body
	}
	return "function (" + strings.Join(names, ", ") + ") {\n" + body + "\n}", nil
}

// clauseBody binds a clause's parameters from the arguments object and
// appends its statements, for use inside the arity switch.
func clauseBody(clause *types.FnClause) (string, error) {
	var lines []string
	fixed := clause.Params
	if clause.Variadic {
		fixed = clause.Params[:len(clause.Params)-1]
	}
	for i, p := range fixed {
		lines = append(lines, "var "+EscapeName(p)+" = arguments["+strconv.Itoa(i)+"];")
	}
	if clause.Variadic {
		lines = append(lines, restParamDecl(clause))
	}
	stmts, err := renderStatements(clause.Body)
	if err != nil {
		return "", err
	}
	lines = append(lines, stmts)
	return strings.Join(lines, "\n"), nil
}

func restParamDecl(clause *types.FnClause) string {
	rest := clause.Params[len(clause.Params)-1]
	from := strconv.Itoa(len(clause.Params) - 1)
	return "var " + EscapeName(rest) + " = Array.prototype.slice.call(arguments, " + from + ");"
}

func renderInvoke(n *types.Node) (string, error) {
	callee, err := Emit(n.Callee)
	if err != nil {
		return "", err
	}
	if n.Callee.Op == types.OpFn {
		callee = "(" + callee + ")"
	}
	args, err := renderArgs(n.Args)
	if err != nil {
		return "", err
	}
	return callee + "(" + args + ")", nil
}

func renderNew(n *types.Node) (string, error) {
	callee, err := Emit(n.Callee)
	if err != nil {
		return "", err
	}
	args, err := renderArgs(n.Args)
	if err != nil {
		return "", err
	}
	return "new " + callee + "(" + args + ")", nil
}

func renderThrow(n *types.Node) (string, error) {
	exc, err := Emit(n.Exception)
	if err != nil {
		return "", err
	}
	return "throw " + exc, nil
}

// renderConst renders literal and collection nodes by category.
func renderConst(n *types.Node) (string, error) {
	switch n.Category {
	case types.CatNumber:
		return strconv.FormatFloat(n.Form.Num, 'g', -1, 64), nil
	case types.CatBoolean:
		return strconv.FormatBool(n.Form.Bool), nil
	case types.CatNil:
		return "null", nil
	case types.CatString:
		// No internal escaping: callers must guarantee the content is
		// safe. Known limitation.
		return `"` + n.Form.Str + `"`, nil
	case types.CatKeyword:
		return runtimeKeyword(n.Form.Str), nil
	case types.CatSymbol:
		return renderSymbol(n), nil
	case types.CatList:
		return runtimeColl("core.list", n.Children)
	case types.CatVector:
		return runtimeColl("core.vector", n.Children)
	case types.CatMap:
		return runtimeColl("core.hashMap", n.Children)
	case types.CatSet:
		return runtimeColl("core.set", n.Children)
	default:
		return "", types.Errorf(types.ErrClassification, "no emission rule for category %q", n.Category).
			WithForm(n.Form)
	}
}

// renderSymbol renders an unquoted symbol as a fully qualified
// member-access path; a quoted symbol renders as a runtime symbol
// construction call carrying namespace, name and hash.
func renderSymbol(n *types.Node) string {
	ns, name := types.SymbolParts(n.Form.Str)
	if n.Env.Quoted {
		return fmt.Sprintf("core.symbol(%q, %q, %d)", ns, name, hashString(n.Form.Str))
	}
	switch ns {
	case "":
		return EscapeName(name)
	case namespace.HostNS:
		return EscapeName(name)
	default:
		return EscapeName(ns) + "." + EscapeName(name)
	}
}

// runtimeKeyword renders a keyword as a runtime construction call carrying
// its name and hash.
func runtimeKeyword(name string) string {
	return fmt.Sprintf("core.keyword(%q, %d)", name, hashString(name))
}

// runtimeColl renders a collection literal via its fixed runtime
// constructor. Empty collections call the constructor with no arguments.
func runtimeColl(ctor string, children []*types.Node) (string, error) {
	args, err := renderArgs(children)
	if err != nil {
		return "", err
	}
	return ctor + "(" + args + ")", nil
}

// hashString computes the deterministic 32-bit hash attached to emitted
// symbol and keyword constructions.
func hashString(s string) int32 {
	var h int32
	for _, r := range s {
		h = 31*h + int32(r)
	}
	return h
}
