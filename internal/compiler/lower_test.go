package compiler

import (
	"testing"

	"github.com/amane-ame/sysy-compiler/internal/parser"
)

func constExprOf(t *testing.T, src string) parser.Expr {
	t.Helper()
	cu, err := parser.Parse([]byte("int main() { return " + src + "; }"))
	if err != nil {
		t.Fatalf("parsing %q: %v", src, err)
	}
	fd := cu.Items[0].(*parser.FuncDef)
	ret := fd.Body.Items[0].(*parser.ReturnStmt)
	return ret.Exp
}

func TestEvalConstArithmetic(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want int32
	}{
		{"add", "1+2", 3},
		{"precedence", "1+2*3", 7},
		{"unary minus", "-5", -5},
		{"unary not", "!0", 1},
		{"div", "7/2", 3},
		{"mod", "7%2", 1},
		{"relational", "3 < 4", 1},
		{"and short-circuits false", "0 && (1/0)", 0},
		{"or short-circuits true", "1 || (1/0)", 1},
		{"and both true", "1 && 2", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &LoweringContext{Scopes: NewScopes()}
			got, err := EvalConst(c, constExprOf(t, tt.src))
			if err != nil {
				t.Fatalf("EvalConst(%q): %v", tt.src, err)
			}
			if got != tt.want {
				t.Errorf("EvalConst(%q) = %d, want %d", tt.src, got, tt.want)
			}
		})
	}
}

func TestEvalConstDivisionByZeroFails(t *testing.T) {
	c := &LoweringContext{Scopes: NewScopes()}
	if _, err := EvalConst(c, constExprOf(t, "1/0")); err == nil {
		t.Fatal("expected an error for constant division by zero")
	}
}

func TestEvalConstRejectsNonConstIdentifier(t *testing.T) {
	c := &LoweringContext{Scopes: NewScopes()}
	_ = c.Scopes.Define("x", &Binding{Kind: BindVar})
	if _, err := EvalConst(c, constExprOf(t, "x")); err == nil {
		t.Fatal("expected an error referencing a non-const variable in a constant expression")
	}
}

func TestStridesInclusiveSuffixProduct(t *testing.T) {
	s := strides([]int{2, 3, 4})
	want := []int{24, 12, 4, 1}
	if len(s) != len(want) {
		t.Fatalf("got %v, want %v", s, want)
	}
	for i := range want {
		if s[i] != want[i] {
			t.Errorf("strides[%d] = %d, want %d", i, s[i], want[i])
		}
	}
}

// leafFromInt builds a trivial leaf func for flattenArrayInit tests that
// evaluates IntLit expressions directly, bypassing Emit/EvalConst plumbing.
func leafFromInt(t *testing.T) func(parser.Expr) (*Value, error) {
	return func(e parser.Expr) (*Value, error) {
		return NewInteger(e.(*parser.IntLit).Val), nil
	}
}

func parseInitList(t *testing.T, src string) *parser.InitList {
	t.Helper()
	cu, err := parser.Parse([]byte("int x[1] = " + src + ";"))
	if err != nil {
		t.Fatalf("parsing init list %q: %v", src, err)
	}
	decl := cu.Items[0].(*parser.Decl)
	return decl.Defs[0].Init.(*parser.InitList)
}

func TestFlattenArrayInitFullBrace(t *testing.T) {
	c := &LoweringContext{Scopes: NewScopes()}
	list := parseInitList(t, "{{1,2,3},{4,5,6}}")
	vals, err := flattenArrayInit(c, []int{2, 3}, list, leafFromInt(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(vals) != 6 {
		t.Fatalf("got %d elements, want 6 (= product of declared dimensions)", len(vals))
	}
	for i, want := range []int32{1, 2, 3, 4, 5, 6} {
		if vals[i].Int != want {
			t.Errorf("element %d: got %d, want %d", i, vals[i].Int, want)
		}
	}
}

func TestFlattenArrayInitPartialBraceZeroPads(t *testing.T) {
	c := &LoweringContext{Scopes: NewScopes()}
	list := parseInitList(t, "{{1},{4,5}}")
	vals, err := flattenArrayInit(c, []int{2, 3}, list, leafFromInt(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []int32{1, 0, 0, 4, 5, 0}
	if len(vals) != len(want) {
		t.Fatalf("got %d elements, want %d", len(vals), len(want))
	}
	for i := range want {
		if vals[i].Int != want[i] {
			t.Errorf("element %d: got %d, want %d", i, vals[i].Int, want[i])
		}
	}
}

func TestFlattenArrayInitFlatListRealignsAtBoundaries(t *testing.T) {
	c := &LoweringContext{Scopes: NewScopes()}
	list := parseInitList(t, "{1,2,3,4,5,6}")
	vals, err := flattenArrayInit(c, []int{2, 3}, list, leafFromInt(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(vals) != 6 {
		t.Fatalf("got %d elements, want 6", len(vals))
	}
	for i, want := range []int32{1, 2, 3, 4, 5, 6} {
		if vals[i].Int != want {
			t.Errorf("element %d: got %d, want %d", i, vals[i].Int, want)
		}
	}
}

func TestFlattenArrayInitOverflowFails(t *testing.T) {
	c := &LoweringContext{Scopes: NewScopes()}
	list := parseInitList(t, "{1,2,3,4,5,6,7}")
	if _, err := flattenArrayInit(c, []int{2, 3}, list, leafFromInt(t)); err == nil {
		t.Fatal("expected an error for an initializer longer than its target")
	}
}

func TestShortCircuitSkippedAfterTerminator(t *testing.T) {
	fn := newTestFunc("@f")
	c := &LoweringContext{Scopes: NewScopes(), Builder: NewBuilder(fn), Func: fn}
	c.Builder.OpenBlock(&BasicBlock{Name: "%entry"})
	c.Builder.Add(&Value{Kind: KindReturn, RetValue: NewInteger(0)})

	before := len(fn.BBs)
	expr := constExprOf(t, "1 && 2").(*parser.BinaryExpr)
	if _, err := emitShortCircuit(c, expr, true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(fn.BBs) != before {
		t.Errorf("emitShortCircuit after a terminator should not open new blocks, got %d new block(s)", len(fn.BBs)-before)
	}
}
