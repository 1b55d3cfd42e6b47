package emitter

import (
	"testing"

	"github.com/cloverlang/clover/pkg/analyzer"
	"github.com/cloverlang/clover/pkg/namespace"
	"github.com/cloverlang/clover/pkg/reader"
	"github.com/cloverlang/clover/pkg/types"
)

// emit reads, analyzes and emits a single form under the given context
// against a fresh namespace store.
func emit(t *testing.T, ctx types.Context, src string) string {
	t.Helper()
	forms, err := reader.ReadString(src)
	if err != nil {
		t.Fatalf("reading %q: %v", src, err)
	}
	node, err := analyzer.New(namespace.NewStore()).
		AnalyzeForm(types.Env{Context: ctx}, forms[0])
	if err != nil {
		t.Fatalf("analyzing %q: %v", src, err)
	}
	code, err := Emit(node)
	if err != nil {
		t.Fatalf("emitting %q: %v", src, err)
	}
	return code
}

func TestEmitLiterals(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"42", "42"},
		{"3.14", "3.14"},
		{"-7", "-7"},
		{"true", "true"},
		{"false", "false"},
		{"nil", "null"},
		{`"hi"`, `"hi"`},
		{":k", `core.keyword("k", 107)`},
		{"[1 2]", "core.vector(1, 2)"},
		{"{:a 1}", `core.hashMap(core.keyword("a", 97), 1)`},
		{"#{1}", "core.set(1)"},
		{"()", "core.list()"},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			if got := emit(t, types.CtxExpr, tt.src); got != tt.want {
				t.Errorf("emit(%s) = %s, want %s", tt.src, got, tt.want)
			}
		})
	}
}

func TestEmitContextDecoration(t *testing.T) {
	tests := []struct {
		name string
		ctx  types.Context
		src  string
		want string
	}{
		{"expression bare", types.CtxExpr, "42", "42"},
		{"statement terminated", types.CtxStatement, "42", "42;"},
		{"return prefixed", types.CtxReturn, "42", "return 42;"},
		{"invoke not return prefixed", types.CtxReturn, "(f 1)", "user.f(1);"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := emit(t, tt.ctx, tt.src); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEmitSymbols(t *testing.T) {
	tests := []struct {
		name string
		ctx  types.Context
		src  string
		want string
	}{
		{"namespaced access", types.CtxExpr, "foo", "user.foo"},
		{"core refer", types.CtxExpr, "inc", "core.inc"},
		{"host access unprefixed", types.CtxExpr, "js/console.log", "console.log"},
		{"escaped name", types.CtxExpr, "my-fn?", "user.my_DASH_fn_QMARK_"},
		{"operator", types.CtxExpr, "<=", "core._LT__EQ_"},
		{"quoted symbol", types.CtxExpr, "'a", `core.symbol("", "a", 97)`},
		{"quoted qualified", types.CtxExpr, "'core/inc", `core.symbol("core", "inc", -468271762)`},
		{"quoted list", types.CtxExpr, "'(a 1)", `core.list(core.symbol("", "a", 97), 1)`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := emit(t, tt.ctx, tt.src); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEmitDef(t *testing.T) {
	if got, want := emit(t, types.CtxStatement, "(def x 1)"), "user.x = 1;"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
	got := emit(t, types.CtxStatement, "(def add (fn [a b] (+ a b)))")
	want := "user.add = function (a, b) {\nreturn core._PLUS_(a, b);\n};"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestEmitIf(t *testing.T) {
	if got, want := emit(t, types.CtxExpr, "(if c 1 2)"), "(user.c ? 1 : 2)"; got != want {
		t.Errorf("expression if: got %q, want %q", got, want)
	}
	got := emit(t, types.CtxReturn, "(if c 1 2)")
	want := "if (user.c) {\nreturn 1;\n} else {\nreturn 2;\n}"
	if got != want {
		t.Errorf("return if: got %q, want %q", got, want)
	}
	got = emit(t, types.CtxStatement, "(if c (f))")
	want = "if (user.c) {\nuser.f();\n} else {\nnull;\n}"
	if got != want {
		t.Errorf("statement if: got %q, want %q", got, want)
	}
}

func TestEmitBlocks(t *testing.T) {
	// Value position wraps the sequence in an IIFE with the tail returned.
	got := emit(t, types.CtxExpr, "(do 1 2)")
	want := "(function () {\n1;\nreturn 2;\n})()"
	if got != want {
		t.Errorf("expression do: got %q, want %q", got, want)
	}

	got = emit(t, types.CtxStatement, "(let [x 1] x)")
	want = "var x = 1;\nx;"
	if got != want {
		t.Errorf("statement let: got %q, want %q", got, want)
	}

	got = emit(t, types.CtxExpr, "(let [x 1] x)")
	want = "(function () {\nvar x = 1;\nreturn x;\n})()"
	if got != want {
		t.Errorf("expression let: got %q, want %q", got, want)
	}
}

func TestEmitLoopRecur(t *testing.T) {
	got := emit(t, types.CtxStatement, "(loop [x 0] (if (< x 3) (recur (inc x)) x))")
	want := "var x = 0;\n" +
		"while (true) {\n" +
		"if (core._LT_(x, 3)) {\n" +
		"x = core.inc(x);\n" +
		"continue;\n" +
		"} else {\n" +
		"x;\n" +
		"}\n" +
		"break;\n" +
		"}"
	if got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestEmitRecurTruncatesExtraArgs(t *testing.T) {
	got := emit(t, types.CtxStatement, "(loop [x 0] (recur 1 2 3))")
	want := "var x = 0;\n" +
		"while (true) {\n" +
		"x = 1;\n" +
		"continue;\n" +
		"break;\n" +
		"}"
	if got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestEmitFnVariadic(t *testing.T) {
	got := emit(t, types.CtxExpr, "(fn [a & xs] xs)")
	want := "function (a) {\n" +
		"var xs = Array.prototype.slice.call(arguments, 1);\n" +
		"return xs;\n" +
		"}"
	if got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestEmitFnMultiArity(t *testing.T) {
	got := emit(t, types.CtxExpr, "(fn ([] 0) ([a & more] more))")
	want := "function () {\n" +
		"switch (arguments.length) {\n" +
		"case 0:\n" +
		"return 0;\n" +
		"default:\n" +
		"var a = arguments[0];\n" +
		"var more = Array.prototype.slice.call(arguments, 1);\n" +
		"return more;\n" +
		"}\n" +
		"}"
	if got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestEmitFnArityError(t *testing.T) {
	got := emit(t, types.CtxExpr, "(fn ([] 0) ([a] a))")
	want := "function () {\n" +
		"switch (arguments.length) {\n" +
		"case 0:\n" +
		"return 0;\n" +
		"case 1:\n" +
		"var a = arguments[0];\n" +
		"return a;\n" +
		"default:\n" +
		`throw new Error("invalid arity: " + arguments.length);` + "\n" +
		"}\n" +
		"}"
	if got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestEmitInvoke(t *testing.T) {
	if got, want := emit(t, types.CtxStatement, `(js/console.log "hi")`), `console.log("hi");`; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
	// An immediate fn callee is parenthesized.
	got := emit(t, types.CtxExpr, "((fn [x] x) 5)")
	want := "(function (x) {\nreturn x;\n})(5)"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestEmitAgetAset(t *testing.T) {
	if got, want := emit(t, types.CtxExpr, "(aget arr 0 1)"), "user.arr[0][1]"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
	if got, want := emit(t, types.CtxReturn, "(aget arr 0)"), "return user.arr[0];"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
	if got, want := emit(t, types.CtxStatement, `(aset obj "k" 5)`), `user.obj["k"] = 5;`; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestEmitNewAndThrow(t *testing.T) {
	if got, want := emit(t, types.CtxExpr, "(new js/Date 1)"), "new Date(1)"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
	if got, want := emit(t, types.CtxStatement, "(throw err)"), "throw user.err;"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
