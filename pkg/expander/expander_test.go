package expander

import (
	"strings"
	"testing"

	"github.com/cloverlang/clover/pkg/reader"
	"github.com/cloverlang/clover/pkg/types"
	"github.com/pkg/errors"
)

// testMacros is a small macro table used across the expander tests:
// (unless t a b) -> (if t b a), and (twice x) -> (do x x).
func testMacros() types.MacroTable {
	return types.MacroTable{
		"unless": func(args []*types.Form) (*types.Form, error) {
			if len(args) != 3 {
				return nil, errors.New("unless expects 3 arguments")
			}
			return types.List(types.Symbol("if"), args[0], args[2], args[1]), nil
		},
		"twice": func(args []*types.Form) (*types.Form, error) {
			return types.List(types.Symbol("do"), args[0], args[0]), nil
		},
	}
}

func mustRead(t *testing.T, src string) *types.Form {
	t.Helper()
	forms, err := reader.ReadString(src)
	if err != nil {
		t.Fatalf("reading %q: %v", src, err)
	}
	if len(forms) != 1 {
		t.Fatalf("reading %q produced %d forms, want 1", src, len(forms))
	}
	return forms[0]
}

func TestExpandMacro(t *testing.T) {
	e := New(testMacros())

	got, err := e.ExpandMacro(mustRead(t, "(unless c a b)"))
	if err != nil {
		t.Fatal(err)
	}
	want := mustRead(t, "(if c b a)")
	if !got.Equal(want) {
		t.Errorf("ExpandMacro = %s, want %s", got, want)
	}

	// Forms without a registered macro pass through untouched.
	plain := mustRead(t, "(f a b)")
	got, err = e.ExpandMacro(plain)
	if err != nil {
		t.Fatal(err)
	}
	if got != plain {
		t.Error("non-macro form should be returned as-is")
	}
}

func TestExpandMacroMergesMetadata(t *testing.T) {
	e := New(testMacros())
	form := mustRead(t, "(twice x)").WithMeta(types.Meta{types.MetaLine: 7, types.MetaColumn: 2})

	got, err := e.ExpandMacro(form)
	if err != nil {
		t.Fatal(err)
	}
	if got.Meta[types.MetaLine] != 7 || got.Meta[types.MetaColumn] != 2 {
		t.Errorf("replacement meta = %v, want call-site position", got.Meta)
	}
}

func TestExpandMacroFailure(t *testing.T) {
	e := New(testMacros())
	_, err := e.ExpandMacro(mustRead(t, "(unless c)"))
	if err == nil {
		t.Fatal("expected macro error")
	}
	var cerr *types.Error
	if !errors.As(err, &cerr) || cerr.Code != types.ErrMacro {
		t.Errorf("error = %v, want code %s", err, types.ErrMacro)
	}
}

func TestDesugarNew(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"(Date.)", "(new Date)"},
		{"(Date. 2026 8)", "(new Date 2026 8)"},
		{"(dom/Element. tag)", "(new dom/Element tag)"},
		{"(plain x)", "(plain x)"},
		{"(. x)", "(. x)"},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			got := DesugarNew(mustRead(t, tt.src))
			if got.String() != tt.want {
				t.Errorf("DesugarNew(%s) = %s, want %s", tt.src, got, tt.want)
			}
		})
	}
}

func TestExpandReachesFixedPoint(t *testing.T) {
	// unless expands to if, and if is not a macro, so the chain stops.
	e := New(testMacros())
	got, err := e.Expand(mustRead(t, "(unless c a b)"))
	if err != nil {
		t.Fatal(err)
	}
	if !got.Equal(mustRead(t, "(if c b a)")) {
		t.Errorf("Expand = %s", got)
	}
}

func TestExpandDepthBudget(t *testing.T) {
	macros := types.MacroTable{
		"grow": func(args []*types.Form) (*types.Form, error) {
			children := append([]*types.Form{types.Symbol("grow")}, args...)
			children = append(children, types.Symbol("x"))
			return types.Coll(types.CatList, children, nil), nil
		},
	}
	e := New(macros, WithMaxDepth(8))

	_, err := e.Expand(mustRead(t, "(grow)"))
	if err == nil {
		t.Fatal("expected depth budget error")
	}
	var cerr *types.Error
	if !errors.As(err, &cerr) || cerr.Code != types.ErrExpansionDepth {
		t.Errorf("error = %v, want code %s", err, types.ErrExpansionDepth)
	}
}

func TestExpandAllRecursesIntoChildren(t *testing.T) {
	e := New(testMacros())
	got, err := e.ExpandAll(mustRead(t, "[1 (unless c a b) {:k (twice y)}]"))
	if err != nil {
		t.Fatal(err)
	}
	want := mustRead(t, "[1 (if c b a) {:k (do y y)}]")
	if !got.Equal(want) {
		t.Errorf("ExpandAll = %s, want %s", got, want)
	}
}

func TestExpandAllIdempotent(t *testing.T) {
	e := New(testMacros())
	src := "(def f (fn [x] (if x 1 2)))"

	once, err := e.ExpandAll(mustRead(t, src))
	if err != nil {
		t.Fatal(err)
	}
	again, err := e.ExpandAll(once)
	if err != nil {
		t.Fatal(err)
	}
	if !once.Equal(again) {
		t.Errorf("second pass changed the tree: %s vs %s", once, again)
	}
}

func TestWalkPreservesShape(t *testing.T) {
	form := mustRead(t, "{:a [1 b] :c #{d}}").WithMeta(types.Meta{types.MetaLine: 3})

	upper := func(f *types.Form) (*types.Form, error) {
		if f.Category == types.CatSymbol {
			return types.Symbol(strings.ToUpper(f.Str)).WithMeta(f.Meta), nil
		}
		return f, nil
	}
	got, err := Walk(form, upper)
	if err != nil {
		t.Fatal(err)
	}
	want := mustRead(t, "{:a [1 B] :c #{D}}")
	if !got.Equal(want) {
		t.Errorf("Walk = %s, want %s", got, want)
	}
	if got.Meta[types.MetaLine] != 3 {
		t.Error("Walk dropped collection metadata")
	}
}
