// Package expander implements the first pipeline stage: macro expansion,
// constructor-call desugaring and syntax-quote rewriting. Its input is a
// tree of data-literal forms plus a caller-supplied macro table; its output
// is a macro-free tree ready for analysis.
package expander

import (
	"log/slog"

	"github.com/cloverlang/clover/pkg/types"
)

// DefaultMaxDepth bounds the fixed-point loop of Expand. A well-formed
// macro reaches its fixed point long before this; a non-terminating macro
// surfaces as an ErrExpansionDepth instead of an infinite loop.
const DefaultMaxDepth = 1000

// Expander expands macros and syntax-quotes over Form trees.
type Expander struct {
	macros   types.MacroTable
	maxDepth int
	logger   *slog.Logger
}

// Option configures an Expander.
type Option func(*Expander)

// WithMaxDepth sets the expansion-depth budget of the fixed-point loop.
func WithMaxDepth(n int) Option {
	return func(e *Expander) {
		if n > 0 {
			e.maxDepth = n
		}
	}
}

// WithLogger sets the logger used for expansion debug traces.
func WithLogger(l *slog.Logger) Option {
	return func(e *Expander) {
		if l != nil {
			e.logger = l
		}
	}
}

// New creates an Expander over the given macro table. The table may be nil,
// in which case only desugaring and syntax-quote apply.
func New(macros types.MacroTable, opts ...Option) *Expander {
	e := &Expander{
		macros:   macros,
		maxDepth: DefaultMaxDepth,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ExpandMacro applies the macro registered for the form's head symbol to
// the remaining elements and re-merges the original form's metadata into
// the replacement (union, the replacement's own keys winning). A form whose
// head maps to no macro is returned unchanged.
func (e *Expander) ExpandMacro(form *types.Form) (*types.Form, error) {
	head := form.Head()
	if head == nil || head.Category != types.CatSymbol {
		return form, nil
	}
	macro, ok := e.macros[head.Str]
	if !ok {
		return form, nil
	}
	e.logger.Debug("expanding macro", "head", head.Str)
	replacement, err := macro(form.Tail())
	if err != nil {
		return nil, types.Errorf(types.ErrMacro, "macro %s failed", head.Str).
			WithForm(form).WithCause(err)
	}
	return replacement.WithMeta(types.MergeMeta(form.Meta, replacement.Meta)), nil
}

// DesugarNew rewrites constructor-call syntax (Ctor. args...) into
// (new Ctor args...), preserving any namespace qualifier on Ctor. Forms
// whose head does not end in a dot are returned unchanged.
func DesugarNew(form *types.Form) *types.Form {
	head := form.Head()
	if head == nil || head.Category != types.CatSymbol {
		return form
	}
	ns, name := types.SymbolParts(head.Str)
	if len(name) < 2 || name[len(name)-1] != '.' {
		return form
	}
	ctor := types.Symbol(types.QualifySymbol(ns, name[:len(name)-1])).WithMeta(head.Meta)
	children := make([]*types.Form, 0, len(form.Children)+1)
	children = append(children, types.Symbol("new"), ctor)
	children = append(children, form.Tail()...)
	return types.Coll(types.CatList, children, form.Meta)
}

// ExpandOnce applies one expansion step: ExpandMacro followed by
// DesugarNew. It is applicable only to non-empty, symbol-headed list forms;
// anything else passes through unchanged.
func (e *Expander) ExpandOnce(form *types.Form) (*types.Form, error) {
	if form.Category != types.CatList || len(form.Children) == 0 {
		return form, nil
	}
	head := form.Head()
	if head.Category != types.CatSymbol {
		return form, nil
	}
	expanded, err := e.ExpandMacro(form)
	if err != nil {
		return nil, err
	}
	return DesugarNew(expanded), nil
}

// Expand repeats ExpandOnce until the output equals the input and returns
// that fixed point. The iteration count is bounded by the expansion-depth
// budget; exhausting it reports the offending form.
func (e *Expander) Expand(form *types.Form) (*types.Form, error) {
	current := form
	for i := 0; i < e.maxDepth; i++ {
		next, err := e.ExpandOnce(current)
		if err != nil {
			return nil, err
		}
		if next.Equal(current) {
			return next, nil
		}
		current = next
	}
	return nil, types.Errorf(types.ErrExpansionDepth,
		"macro expansion did not reach a fixed point within %d steps", e.maxDepth).
		WithForm(form)
}

// TransformFunc rewrites a single form. It is applied by Walk before
// descending into the (possibly rewritten) form's children.
type TransformFunc func(*types.Form) (*types.Form, error)

// Walk applies fn to the form and then recurses into the result's children,
// rebuilding each collection with its original category and metadata. Map
// forms hold their entries as an alternating key/value sequence, so keys
// and values are transformed independently while pairing is preserved.
// Atomic leaves pass through fn only.
func Walk(form *types.Form, fn TransformFunc) (*types.Form, error) {
	rewritten, err := fn(form)
	if err != nil {
		return nil, err
	}
	if !rewritten.Category.Collection() || len(rewritten.Children) == 0 {
		return rewritten, nil
	}
	children := make([]*types.Form, len(rewritten.Children))
	for i, child := range rewritten.Children {
		walked, err := Walk(child, fn)
		if err != nil {
			return nil, err
		}
		children[i] = walked
	}
	return types.Coll(rewritten.Category, children, rewritten.Meta), nil
}

// ExpandAll expands the form to its fixed point and recurses into its
// children, preserving collection categories, element order and metadata.
// Syntax-quoted sub-forms are rewritten into their reconstruction
// expressions along the way.
func (e *Expander) ExpandAll(form *types.Form) (*types.Form, error) {
	return Walk(form, e.expandStep)
}

// expandStep is the per-node transform of ExpandAll: fixed-point expansion
// plus syntax-quote rewriting.
func (e *Expander) expandStep(form *types.Form) (*types.Form, error) {
	expanded, err := e.Expand(form)
	if err != nil {
		return nil, err
	}
	if head := expanded.Head(); expanded.Category == types.CatList && head.IsSymbol(symSyntaxQuote) {
		if len(expanded.Children) != 2 {
			return nil, types.NewError(types.ErrSyntaxQuote, "syntax-quote expects one form").
				WithForm(expanded)
		}
		quoted, err := e.SyntaxQuote(expanded.Children[1])
		if err != nil {
			return nil, err
		}
		return quoted.WithMeta(types.MergeMeta(expanded.Meta, quoted.Meta)), nil
	}
	return expanded, nil
}
