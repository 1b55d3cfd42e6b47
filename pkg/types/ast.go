package types

// Op identifies the operation an AST node performs.
type Op string

// Node operations. OpConst and OpColl cover literals and generic
// collections; the rest are the special operations recognized by the
// analyzer. Dispatch over ops is by exhaustive switch, never by lookup
// table, so an unhandled op is a visible default case rather than a silent
// fallthrough.
const (
	OpConst  Op = "const"
	OpColl   Op = "coll"
	OpAget   Op = "aget"
	OpAset   Op = "aset"
	OpDef    Op = "def"
	OpDo     Op = "do"
	OpFn     Op = "fn"
	OpIf     Op = "if"
	OpInvoke Op = "invoke"
	OpLet    Op = "let"
	OpLoop   Op = "loop"
	OpNew    Op = "new"
	OpQuote  Op = "quote"
	OpRecur  Op = "recur"
	OpThrow  Op = "throw"
)

// Binding is one (name, analyzed initializer) pair of a let or loop.
type Binding struct {
	Name string
	Init *Node
}

// FnClause is one arity of a fn form. Params lists the declared parameter
// names in order; when Variadic is true the final name binds the rest of
// the arguments.
type FnClause struct {
	Params   []string
	Variadic bool
	Body     []*Node
}

// FixedArity returns the number of fixed (non-rest) parameters, the key
// under which the clause is registered.
func (c *FnClause) FixedArity() int {
	if c.Variadic {
		return len(c.Params) - 1
	}
	return len(c.Params)
}

// Node is an analyzed AST node. Every node retains its originating form,
// metadata, category and the environment snapshot under which it was
// analyzed. Special operations populate the role-labeled fields for their
// analyzed sub-nodes; unrelated fields stay zero.
type Node struct {
	Op       Op
	Category Category
	Form     *Form
	Meta     Meta
	Env      Env

	Children []*Node // coll: independently analyzed elements

	Target *Node   // aget, aset
	Index  []*Node // aget: index/field chain
	Fields []*Node // aset: field chain before the assigned value
	Value  *Node   // aset: assigned value

	Name *Node // def: defined name
	Init *Node // def: initializer

	Test *Node // if
	Then *Node // if
	Else *Node // if

	Body []*Node // do, let, loop

	Bindings []Binding // let, loop

	Clauses map[int]*FnClause // fn: clauses keyed by fixed arity

	Callee *Node   // invoke, new
	Args   []*Node // invoke, new, recur

	Exception *Node // throw
}

// NewNode creates a node of the given op carrying the originating form's
// identity (form, metadata, category).
func NewNode(op Op, form *Form) *Node {
	var meta Meta
	var cat Category
	if form != nil {
		meta = form.Meta
		cat = form.Category
	}
	return &Node{Op: op, Category: cat, Form: form, Meta: meta}
}

// WithEnv returns a copy of the node with the environment snapshot attached.
func (n *Node) WithEnv(env Env) *Node {
	copied := *n
	copied.Env = env
	return &copied
}
