package types

// Context classifies the syntactic position of a node and governs the shape
// of its emitted code: statement positions get a trailing terminator, return
// positions a return prefix, expression positions neither.
type Context string

const (
	CtxStatement Context = "statement"
	CtxExpr      Context = "expr"
	CtxReturn    Context = "return"
)

// Env is the analysis environment threaded through nested scopes. It is a
// value type and is never mutated in place: child scopes derive a new Env
// that extends the parent's locals or replaces its context.
type Env struct {
	Context    Context
	Locals     []string // ordered set of bound names, innermost last
	Quoted     bool     // inside a quote: suppress resolution and invocation
	RecurPoint *Node    // innermost active loop eligible to receive recur
}

// WithContext derives an environment with the given context.
func (e Env) WithContext(ctx Context) Env {
	e.Context = ctx
	return e
}

// WithLocals derives an environment whose locals extend the parent's.
// The parent's slice is copied so sibling scopes never share storage.
func (e Env) WithLocals(names ...string) Env {
	locals := make([]string, 0, len(e.Locals)+len(names))
	locals = append(locals, e.Locals...)
	locals = append(locals, names...)
	e.Locals = locals
	return e
}

// WithQuoted derives an environment marked as quoted.
func (e Env) WithQuoted() Env {
	e.Quoted = true
	return e
}

// WithRecurPoint derives an environment whose recur point is the given node.
func (e Env) WithRecurPoint(n *Node) Env {
	e.RecurPoint = n
	return e
}

// IsLocal reports whether name is bound in this environment.
func (e Env) IsLocal(name string) bool {
	for _, l := range e.Locals {
		if l == name {
			return true
		}
	}
	return false
}
