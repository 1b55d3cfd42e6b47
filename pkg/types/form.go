// Package types defines the core type system for Clover.
//
// This package contains type definitions for:
//   - Form: immutable data-literal trees produced by the reader
//   - Node: analyzed AST nodes consumed by the emitter
//   - Env: the analysis environment (context, locals, recur point)
//   - Macro: caller-supplied macro functions
//   - Error types: structured errors with codes and source positions
package types

import (
	"fmt"
	"strconv"
	"strings"
)

// Category identifies the shape of a Form.
type Category string

// Form categories. Collection categories hold ordered children; atomic
// categories hold a literal payload.
const (
	CatSymbol  Category = "symbol"
	CatKeyword Category = "keyword"
	CatList    Category = "list"
	CatVector  Category = "vector"
	CatMap     Category = "map"
	CatSet     Category = "set"
	CatString  Category = "string"
	CatNumber  Category = "number"
	CatBoolean Category = "boolean"
	CatNil     Category = "nil"
)

// Collection reports whether the category holds ordered children.
func (c Category) Collection() bool {
	switch c {
	case CatList, CatVector, CatMap, CatSet:
		return true
	default:
		return false
	}
}

// Meta carries optional side information attached to a Form or Node,
// typically the source position recorded by the reader. Metadata is never
// inherited automatically: every transform that rebuilds a form is
// responsible for carrying it forward, which the constructors in this
// package do by taking Meta explicitly.
type Meta map[string]interface{}

// Well-known metadata keys.
const (
	MetaLine   = "line"
	MetaColumn = "column"
	MetaFile   = "file"
)

// MergeMeta unions two metadata maps. Where both define a key, own wins.
// Either argument may be nil.
func MergeMeta(orig, own Meta) Meta {
	if orig == nil && own == nil {
		return nil
	}
	merged := make(Meta, len(orig)+len(own))
	for k, v := range orig {
		merged[k] = v
	}
	for k, v := range own {
		merged[k] = v
	}
	return merged
}

// Form is an immutable tree value read from source. Collection categories
// (list, vector, map, set) hold ordered children; a map holds its entries
// as an alternating key/value sequence. Atomic categories hold a literal
// payload in Str, Num or Bool.
//
// Forms are treated as immutable: transforms build new forms instead of
// mutating in place.
type Form struct {
	Category Category
	Children []*Form // collection elements; maps interleave key, value
	Str      string  // payload for symbol, keyword and string
	Num      float64 // payload for number
	Bool     bool    // payload for boolean
	Meta     Meta
}

// Symbol returns a symbol form. The text may carry a namespace qualifier,
// e.g. "strlib/join".
func Symbol(text string) *Form { return &Form{Category: CatSymbol, Str: text} }

// Keyword returns a keyword form. The name excludes the leading colon.
func Keyword(name string) *Form { return &Form{Category: CatKeyword, Str: name} }

// Str returns a string form.
func Str(s string) *Form { return &Form{Category: CatString, Str: s} }

// Number returns a number form.
func Number(n float64) *Form { return &Form{Category: CatNumber, Num: n} }

// Boolean returns a boolean form.
func Boolean(b bool) *Form { return &Form{Category: CatBoolean, Bool: b} }

// Nil returns a nil form.
func Nil() *Form { return &Form{Category: CatNil} }

// List returns a list form with the given children.
func List(children ...*Form) *Form { return &Form{Category: CatList, Children: children} }

// Vector returns a vector form with the given children.
func Vector(children ...*Form) *Form { return &Form{Category: CatVector, Children: children} }

// MapForm returns a map form. kvs interleaves keys and values.
func MapForm(kvs ...*Form) *Form { return &Form{Category: CatMap, Children: kvs} }

// SetForm returns a set form with the given children.
func SetForm(children ...*Form) *Form { return &Form{Category: CatSet, Children: children} }

// Coll rebuilds a collection of the given category around children,
// carrying meta forward.
func Coll(category Category, children []*Form, meta Meta) *Form {
	return &Form{Category: category, Children: children, Meta: meta}
}

// WithMeta returns a copy of the form carrying the given metadata.
func (f *Form) WithMeta(meta Meta) *Form {
	copied := *f
	copied.Meta = meta
	return &copied
}

// IsSymbol reports whether the form is a symbol with the given text.
func (f *Form) IsSymbol(text string) bool {
	return f != nil && f.Category == CatSymbol && f.Str == text
}

// Head returns the first child of a non-empty collection, or nil.
func (f *Form) Head() *Form {
	if f == nil || len(f.Children) == 0 {
		return nil
	}
	return f.Children[0]
}

// Tail returns all children after the first.
func (f *Form) Tail() []*Form {
	if f == nil || len(f.Children) == 0 {
		return nil
	}
	return f.Children[1:]
}

// SymbolParts splits a symbol's text into its namespace qualifier and bare
// name. An unqualified symbol yields an empty namespace. A lone "/" (the
// division symbol) is treated as unqualified.
func SymbolParts(text string) (ns, name string) {
	i := strings.Index(text, "/")
	if i <= 0 || i == len(text)-1 {
		return "", text
	}
	return text[:i], text[i+1:]
}

// QualifySymbol joins a namespace and bare name back into symbol text.
func QualifySymbol(ns, name string) string {
	if ns == "" {
		return name
	}
	return ns + "/" + name
}

// Equal reports structural equality of two forms. Metadata is ignored:
// two forms differing only in source position are equal, which is what the
// expander's fixed-point check requires.
func (f *Form) Equal(other *Form) bool {
	if f == nil || other == nil {
		return f == other
	}
	if f.Category != other.Category {
		return false
	}
	switch f.Category {
	case CatSymbol, CatKeyword, CatString:
		return f.Str == other.Str
	case CatNumber:
		return f.Num == other.Num
	case CatBoolean:
		return f.Bool == other.Bool
	case CatNil:
		return true
	}
	if len(f.Children) != len(other.Children) {
		return false
	}
	for i, child := range f.Children {
		if !child.Equal(other.Children[i]) {
			return false
		}
	}
	return true
}

// String renders the form in reader syntax. Used in error messages and
// test failure output.
func (f *Form) String() string {
	if f == nil {
		return "nil"
	}
	switch f.Category {
	case CatSymbol:
		return f.Str
	case CatKeyword:
		return ":" + f.Str
	case CatString:
		return strconv.Quote(f.Str)
	case CatNumber:
		return strconv.FormatFloat(f.Num, 'g', -1, 64)
	case CatBoolean:
		return strconv.FormatBool(f.Bool)
	case CatNil:
		return "nil"
	case CatList:
		return "(" + joinForms(f.Children) + ")"
	case CatVector:
		return "[" + joinForms(f.Children) + "]"
	case CatMap:
		return "{" + joinForms(f.Children) + "}"
	case CatSet:
		return "#{" + joinForms(f.Children) + "}"
	}
	return fmt.Sprintf("#<%s>", f.Category)
}

func joinForms(forms []*Form) string {
	parts := make([]string, len(forms))
	for i, f := range forms {
		parts[i] = f.String()
	}
	return strings.Join(parts, " ")
}

// Macro is an opaque function from unevaluated argument forms to a
// replacement form. Macros are owned and supplied by the caller; the
// expander only invokes them.
type Macro func(args []*Form) (*Form, error)

// MacroTable maps head symbol text to the macro it triggers.
type MacroTable map[string]Macro
