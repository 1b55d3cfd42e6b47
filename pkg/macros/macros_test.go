package macros

import (
	"testing"

	"github.com/cloverlang/clover/pkg/namespace"
	"github.com/cloverlang/clover/pkg/reader"
	"github.com/cloverlang/clover/pkg/types"
)

// expandOne applies the named macro from a fresh default table to the tail
// of the given call form.
func expandOne(t *testing.T, store *namespace.Store, src string) (*types.Form, error) {
	t.Helper()
	forms, err := reader.ReadString(src)
	if err != nil {
		t.Fatalf("reading %q: %v", src, err)
	}
	call := forms[0]
	macro, ok := DefaultTable(store)[call.Head().Str]
	if !ok {
		t.Fatalf("no macro named %s", call.Head().Str)
	}
	return macro(call.Tail())
}

func TestDefn(t *testing.T) {
	store := namespace.NewStore()
	got, err := expandOne(t, store, "(defn add [a b] (+ a b))")
	if err != nil {
		t.Fatal(err)
	}
	if want := "(def add (fn [a b] (+ a b)))"; got.String() != want {
		t.Errorf("defn = %s, want %s", got, want)
	}

	if _, err := expandOne(t, store, "(defn 1 [a] a)"); err == nil {
		t.Error("expected error for non-symbol name")
	}
}

func TestWhenUnless(t *testing.T) {
	store := namespace.NewStore()

	got, err := expandOne(t, store, "(when t a b)")
	if err != nil {
		t.Fatal(err)
	}
	if want := "(if t (do a b) nil)"; got.String() != want {
		t.Errorf("when = %s, want %s", got, want)
	}

	got, err = expandOne(t, store, "(unless t a)")
	if err != nil {
		t.Fatal(err)
	}
	if want := "(if t nil (do a))"; got.String() != want {
		t.Errorf("unless = %s, want %s", got, want)
	}

	if _, err := expandOne(t, store, "(when)"); err == nil {
		t.Error("expected error for missing test")
	}
}

func TestThreadFirst(t *testing.T) {
	store := namespace.NewStore()
	tests := []struct {
		src  string
		want string
	}{
		{"(-> x)", "x"},
		{"(-> x f)", "(f x)"},
		{"(-> x (f a) g)", "(g (f x a))"},
		{"(-> x (f) (g b c))", "(g (f x) b c)"},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			got, err := expandOne(t, store, tt.src)
			if err != nil {
				t.Fatal(err)
			}
			if got.String() != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}

	if _, err := expandOne(t, store, "(->)"); err == nil {
		t.Error("expected error for empty thread")
	}
}

func TestNsMacroMutatesStore(t *testing.T) {
	store := namespace.NewStore()
	got, err := expandOne(t, store, "(ns app.main (:require [strlib :as s]))")
	if err != nil {
		t.Fatal(err)
	}
	if store.Current() != "app.main" {
		t.Errorf("current namespace = %s", store.Current())
	}
	if want := "(do (core/create-ns (quote app.main)) (core/in-ns (quote app.main)))"; got.String() != want {
		t.Errorf("ns replacement = %s, want %s", got, want)
	}
}
