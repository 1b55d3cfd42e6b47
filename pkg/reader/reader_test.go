package reader

import (
	"testing"

	"github.com/cloverlang/clover/pkg/types"
)

func read1(t *testing.T, src string) *types.Form {
	t.Helper()
	forms, err := ReadString(src)
	if err != nil {
		t.Fatalf("ReadString(%q): %v", src, err)
	}
	if len(forms) != 1 {
		t.Fatalf("ReadString(%q) produced %d forms, want 1", src, len(forms))
	}
	return forms[0]
}

func TestReadForms(t *testing.T) {
	tests := []struct {
		src  string
		want *types.Form
	}{
		{"foo", types.Symbol("foo")},
		{":k", types.Keyword("k")},
		{`"hi"`, types.Str("hi")},
		{"42", types.Number(42)},
		{"(a 1)", types.List(types.Symbol("a"), types.Number(1))},
		{"[1 2]", types.Vector(types.Number(1), types.Number(2))},
		{"{:a 1}", types.MapForm(types.Keyword("a"), types.Number(1))},
		{"#{x y}", types.SetForm(types.Symbol("x"), types.Symbol("y"))},
		{"()", types.List()},
		{"(a (b [c]))", types.List(
			types.Symbol("a"),
			types.List(types.Symbol("b"), types.Vector(types.Symbol("c"))),
		)},
		{"'a", types.List(types.Symbol("quote"), types.Symbol("a"))},
		{"`(a ~b ~@c)", types.List(
			types.Symbol("syntax-quote"),
			types.List(
				types.Symbol("a"),
				types.List(types.Symbol("unquote"), types.Symbol("b")),
				types.List(types.Symbol("unquote-splice"), types.Symbol("c")),
			),
		)},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			got := read1(t, tt.src)
			if !got.Equal(tt.want) {
				t.Errorf("ReadString(%q) = %s, want %s", tt.src, got, tt.want)
			}
		})
	}
}

func TestReadMultipleTopLevelForms(t *testing.T) {
	forms, err := ReadString("(def a 1)\n(def b 2)")
	if err != nil {
		t.Fatal(err)
	}
	if len(forms) != 2 {
		t.Fatalf("got %d forms, want 2", len(forms))
	}
}

func TestReadAttachesPositions(t *testing.T) {
	form := read1(t, "\n  (foo)")
	if form.Meta[types.MetaLine] != 2 || form.Meta[types.MetaColumn] != 3 {
		t.Errorf("list position = %v:%v, want 2:3", form.Meta[types.MetaLine], form.Meta[types.MetaColumn])
	}
	if form.Children[0].Meta[types.MetaLine] != 2 {
		t.Error("child symbol carries no position")
	}
}

func TestReadErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"unmatched close", ")"},
		{"unclosed list", "(a b"},
		{"unclosed vector", "[1 2"},
		{"odd map literal", "{:a}"},
		{"dangling quote", "'"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ReadString(tt.src); err == nil {
				t.Errorf("ReadString(%q): expected error", tt.src)
			}
		})
	}
}
