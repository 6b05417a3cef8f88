package parser

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/talekit/talekit/ast"
	"github.com/talekit/talekit/diag"
)

// parseExpr runs the expression sub-parser by embedding the source in a
// set command.
func parseExpr(t *testing.T, src string) ast.Expr {
	t.Helper()
	script, diags := ParseSource("--- t\n<<set $x = " + src + ">>\n===")
	if diag.HasErrors(diags) {
		t.Fatalf("parse %q: %v", src, diags)
	}
	return script.Nodes[0].Content[0].(*ast.SetCmd).Value
}

func bin(op string, left, right ast.Expr) ast.BinaryExpr {
	return ast.BinaryExpr{Op: op, Left: left, Right: right}
}

func num(v float64) ast.NumberLit { return ast.NumberLit{Value: v} }

func v(name string) ast.VarExpr { return ast.VarExpr{Name: name} }

func TestExpressionPrecedence(t *testing.T) {
	tests := []struct {
		src  string
		want ast.Expr
	}{
		{"1 + 2 * 3", bin("+", num(1), bin("*", num(2), num(3)))},
		{"(1 + 2) * 3", bin("*", bin("+", num(1), num(2)), num(3))},
		{"1 - 2 - 3", bin("-", bin("-", num(1), num(2)), num(3))},
		{"10 % 3 + 1", bin("+", bin("%", num(10), num(3)), num(1))},
		{"$a > 1 and $b > 2", bin("and", bin(">", v("a"), num(1)), bin(">", v("b"), num(2)))},
		{"$a and $b or $c", bin("or", bin("and", v("a"), v("b")), v("c"))},
		{"$a == 1 or $b != 2", bin("or", bin("==", v("a"), num(1)), bin("!=", v("b"), num(2)))},
		{"$a xor $b", bin("xor", v("a"), v("b"))},
		{"not $a and $b", bin("and", ast.UnaryExpr{Op: "not", Operand: v("a")}, v("b"))},
		{"-$a + 1", bin("+", ast.UnaryExpr{Op: "-", Operand: v("a")}, num(1))},
		{"--1", ast.UnaryExpr{Op: "-", Operand: ast.UnaryExpr{Op: "-", Operand: num(1)}}},
	}
	for _, tt := range tests {
		got := parseExpr(t, tt.src)
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Fatalf("%q (-want +got):\n%s", tt.src, diff)
		}
	}
}

func TestWordOperatorAliases(t *testing.T) {
	tests := []struct {
		src  string
		want ast.Expr
	}{
		{"$a eq 1", bin("==", v("a"), num(1))},
		{"$a is 1", bin("==", v("a"), num(1))},
		{"$a neq 1", bin("!=", v("a"), num(1))},
		{"$a gte 1", bin(">=", v("a"), num(1))},
		{"$a lt 1", bin("<", v("a"), num(1))},
	}
	for _, tt := range tests {
		got := parseExpr(t, tt.src)
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Fatalf("%q (-want +got):\n%s", tt.src, diff)
		}
	}
}

func TestPostfixChain(t *testing.T) {
	got := parseExpr(t, "player.items[0].name")
	want := ast.MemberExpr{
		Target: ast.IndexExpr{
			Target: ast.MemberExpr{
				Target: ast.IdentExpr{Name: "player"},
				Name:   "items",
			},
			Index: num(0),
		},
		Name: "name",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("postfix chain (-want +got):\n%s", diff)
	}
}

func TestCallWithArguments(t *testing.T) {
	got := parseExpr(t, "max($a, 3 + 1)")
	want := ast.CallExpr{
		Target: ast.IdentExpr{Name: "max"},
		Args:   []ast.Expr{v("a"), bin("+", num(3), num(1))},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("call (-want +got):\n%s", diff)
	}
}

func TestInterpolatedString(t *testing.T) {
	got := parseExpr(t, `"Hi {$name}, bye"`)
	want := ast.InterpString{Segments: []ast.TextSegment{
		ast.TextLiteral{Text: "Hi "},
		ast.TextInterp{Expr: v("name")},
		ast.TextLiteral{Text: ", bye"},
	}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("interp string (-want +got):\n%s", diff)
	}
}

func TestBadExpressionRecovers(t *testing.T) {
	script, diags := ParseSource("--- t\n<<set $x = + >>\nA: still here\n===")
	if !diag.HasErrors(diags) {
		t.Fatalf("expected an expression error")
	}
	node := script.Nodes[0]
	if len(node.Content) != 2 {
		t.Fatalf("content after recovery: got %d items, want 2", len(node.Content))
	}
	if _, ok := node.Content[1].(*ast.Dialogue); !ok {
		t.Fatalf("dialogue after bad command was lost: %T", node.Content[1])
	}
}
