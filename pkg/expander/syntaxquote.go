package expander

import (
	"github.com/cloverlang/clover/pkg/types"
)

// Marker symbols recognized by the syntax-quote rewriter.
const (
	symSyntaxQuote   = "syntax-quote"
	symUnquote       = "unquote"
	symUnquoteSplice = "unquote-splice"
)

// SyntaxQuote rewrites a form into an expression that, when evaluated by
// the produced program, reconstructs the form as literal data except where
// explicitly unquoted or spliced.
//
// Rules:
//   - a bare symbol quotes to itself: `a  ->  (quote a)
//   - a direct unquote substitutes its argument, already expanded
//   - a direct unquote-splice at the outermost position is an error,
//     since there is nothing to splice into
//   - non-collection, non-symbol atoms and empty collections are left as
//     self-evaluating literals
//   - collections become a concatenation of one-item sequences fed to the
//     category-appropriate constructor; spliced elements contribute their
//     own sequence value in place
func (e *Expander) SyntaxQuote(form *types.Form) (*types.Form, error) {
	switch {
	case isMarker(form, symUnquote):
		return e.ExpandAll(form.Children[1])
	case isMarker(form, symUnquoteSplice):
		return nil, types.NewError(types.ErrSyntaxQuote, "unquote-splice outside a collection").
			WithForm(form)
	case form.Category == types.CatSymbol:
		return types.List(types.Symbol("quote"), form).WithMeta(form.Meta), nil
	case !form.Category.Collection(), len(form.Children) == 0:
		return form, nil
	}
	return e.syntaxQuoteColl(form)
}

// syntaxQuoteColl rewrites a populated collection. Each element becomes a
// one-item sequence (or, when spliced, its own sequence value); the pieces
// are concatenated and handed to the constructor matching the collection's
// category. Maps are already held as an interleaved key/value sequence, so
// element-wise treatment preserves pairing by construction.
func (e *Expander) syntaxQuoteColl(form *types.Form) (*types.Form, error) {
	parts := make([]*types.Form, 0, len(form.Children)+1)
	parts = append(parts, types.Symbol("core/concat"))
	for _, elem := range form.Children {
		switch {
		case isMarker(elem, symUnquote):
			value, err := e.ExpandAll(elem.Children[1])
			if err != nil {
				return nil, err
			}
			parts = append(parts, types.List(types.Symbol("core/list"), value))
		case isMarker(elem, symUnquoteSplice):
			value, err := e.ExpandAll(elem.Children[1])
			if err != nil {
				return nil, err
			}
			parts = append(parts, types.List(types.Symbol("core/seq"), value))
		default:
			quoted, err := e.SyntaxQuote(elem)
			if err != nil {
				return nil, err
			}
			parts = append(parts, types.List(types.Symbol("core/list"), quoted))
		}
	}
	concat := types.Coll(types.CatList, parts, form.Meta)

	switch form.Category {
	case types.CatList:
		return types.List(types.Symbol("core/apply"), types.Symbol("core/list"), concat).
			WithMeta(form.Meta), nil
	case types.CatMap:
		return types.List(types.Symbol("core/apply"), types.Symbol("core/hash-map"), concat).
			WithMeta(form.Meta), nil
	case types.CatSet:
		return types.List(types.Symbol("core/set"), concat).WithMeta(form.Meta), nil
	default: // vector: the concatenation is the result
		return concat, nil
	}
}

// isMarker reports whether the form is a two-element list headed by the
// given marker symbol.
func isMarker(form *types.Form, marker string) bool {
	return form.Category == types.CatList &&
		len(form.Children) == 2 &&
		form.Children[0].IsSymbol(marker)
}
