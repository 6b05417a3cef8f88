package runtime

import (
	"fmt"
	"testing"

	"github.com/rs/zerolog"

	"github.com/talekit/talekit/ast"
	"github.com/talekit/talekit/parser"
)

// exprOf parses src as a script expression via a set command.
func exprOf(t *testing.T, src string) ast.Expr {
	t.Helper()
	script, diags := parser.ParseSource("--- t\n<<set $x = " + src + ">>\n===")
	for _, d := range diags {
		t.Fatalf("parse %q: %s", src, d)
	}
	return script.Nodes[0].Content[0].(*ast.SetCmd).Value
}

func testEvaluator(env Environment) *Evaluator {
	return NewEvaluator(env, zerolog.Nop())
}

func TestEvalArithmetic(t *testing.T) {
	env := NewMapEnvironment()
	env.SetVariable("a", Num(7))
	env.SetVariable("s", Str("hi"))
	ev := testEvaluator(env)

	tests := []struct {
		src  string
		want Value
	}{
		{"1 + 2 * 3", Num(7)},
		{"(1 + 2) * 3", Num(9)},
		{"10 - $a", Num(3)},
		{"7 % 3", Num(1)},
		{"-$a", Num(-7)},
		{"$a > 5", Bool(true)},
		{"$a == 7", Bool(true)},
		{"$a != 7", Bool(false)},
		{"$s + \"!\"", Str("hi!")},
		{"1 + \"2\"", Str("12")},
		{"true and $a > 0", Bool(true)},
		{"false or $a > 100", Bool(false)},
		{"true xor true", Bool(false)},
		{"not false", Bool(true)},
		{"$missing", Null()},
		{"null == null", Bool(true)},
		{"1 == \"1\"", Bool(false)},
	}
	for _, tt := range tests {
		got, err := ev.Eval(exprOf(t, tt.src))
		if err != nil {
			t.Fatalf("%q: %v", tt.src, err)
		}
		if !got.Equals(tt.want) || got.Kind() != tt.want.Kind() {
			t.Fatalf("%q: got %s %q, want %s %q", tt.src, got.Kind(), got, tt.want.Kind(), tt.want)
		}
	}
}

func TestEvalDivisionByZero(t *testing.T) {
	ev := testEvaluator(NewMapEnvironment())
	for _, src := range []string{"1 / 0", "1 % 0"} {
		if _, err := ev.Eval(exprOf(t, src)); err == nil {
			t.Fatalf("%q: expected error", src)
		}
	}
}

func TestEvalFractionalModulo(t *testing.T) {
	ev := testEvaluator(NewMapEnvironment())
	tests := []struct {
		src  string
		want Value
	}{
		{"5 % 0.5", Num(0)},
		{"7.5 % 2", Num(1.5)},
		{"5 % 0.75", Num(0.5)},
	}
	for _, tt := range tests {
		got, err := ev.Eval(exprOf(t, tt.src))
		if err != nil {
			t.Fatalf("%q: %v", tt.src, err)
		}
		if !got.Equals(tt.want) {
			t.Fatalf("%q: got %s, want %s", tt.src, got, tt.want)
		}
	}
}

func TestEvalShortCircuit(t *testing.T) {
	env := NewMapEnvironment()
	calls := 0
	env.RegisterFunction("boom", func(args ...Value) (Value, error) {
		calls++
		return Null(), fmt.Errorf("must not be called")
	})
	ev := testEvaluator(env)

	if v, err := ev.Eval(exprOf(t, "false and boom()")); err != nil || v.Truthy() {
		t.Fatalf("and: v=%v err=%v", v, err)
	}
	if v, err := ev.Eval(exprOf(t, "true or boom()")); err != nil || !v.Truthy() {
		t.Fatalf("or: v=%v err=%v", v, err)
	}
	if calls != 0 {
		t.Fatalf("short-circuited operand evaluated %d times", calls)
	}
}

func TestEvalFunctionCall(t *testing.T) {
	env := NewMapEnvironment()
	env.RegisterFunction("max", func(args ...Value) (Value, error) {
		best := args[0].Float64()
		for _, a := range args[1:] {
			if f := a.Float64(); f > best {
				best = f
			}
		}
		return Num(best), nil
	})
	ev := testEvaluator(env)

	got, err := ev.Eval(exprOf(t, "max(1, 4, 2)"))
	if err != nil {
		t.Fatalf("call failed: %v", err)
	}
	if got.Float64() != 4 {
		t.Fatalf("max: got %v", got)
	}
}

type fakeItem struct {
	name string
}

func (f fakeItem) Member(name string) (Value, bool) {
	if name == "name" {
		return Str(f.name), true
	}
	return Null(), false
}

type fakeList struct {
	items []fakeItem
}

func (f fakeList) Index(key Value) (Value, bool) {
	i := int(key.Float64())
	if i < 0 || i >= len(f.items) {
		return Null(), false
	}
	return Obj(f.items[i]), true
}

func TestEvalHostObjects(t *testing.T) {
	env := NewMapEnvironment()
	env.SetVariable("items", Obj(fakeList{items: []fakeItem{{name: "sword"}, {name: "shield"}}}))
	ev := testEvaluator(env)

	got, err := ev.Eval(exprOf(t, "$items[1].name"))
	if err != nil {
		t.Fatalf("member chain failed: %v", err)
	}
	if got.String() != "shield" {
		t.Fatalf("got %q, want %q", got.String(), "shield")
	}

	// Unknown member resolves to null, not an error.
	got, err = ev.Eval(exprOf(t, "$items[0].weight"))
	if err != nil || !got.IsNull() {
		t.Fatalf("unknown member: v=%v err=%v", got, err)
	}
}

func TestEvalStringBuiltins(t *testing.T) {
	env := NewMapEnvironment()
	env.SetVariable("word", Str("héllo"))
	ev := testEvaluator(env)

	got, err := ev.Eval(exprOf(t, "$word.length"))
	if err != nil || got.Float64() != 5 {
		t.Fatalf("length: v=%v err=%v", got, err)
	}
	got, err = ev.Eval(exprOf(t, "$word[1]"))
	if err != nil || got.String() != "é" {
		t.Fatalf("index: v=%q err=%v", got.String(), err)
	}
}

func TestEvalTextSegments(t *testing.T) {
	env := NewMapEnvironment()
	env.SetVariable("gold", Num(12.5))
	ev := testEvaluator(env)

	segs := []ast.TextSegment{
		ast.TextLiteral{Text: "you have "},
		ast.TextInterp{Expr: ast.VarExpr{Name: "gold"}},
		ast.TextLiteral{Text: " gold"},
	}
	got, err := ev.EvalText(segs)
	if err != nil {
		t.Fatalf("EvalText: %v", err)
	}
	if got != "you have 12.5 gold" {
		t.Fatalf("got %q", got)
	}
}

type namedObj struct{ name string }

func (n namedObj) String() string { return n.name }

func TestValueDisplay(t *testing.T) {
	tests := []struct {
		v    Value
		want string
	}{
		{Num(3), "3"},
		{Num(3.25), "3.25"},
		{Num(-0.5), "-0.5"},
		{Str("x"), "x"},
		{Bool(true), "true"},
		{Null(), "null"},
		{Obj(namedObj{"sword"}), "sword"},
		{Obj(struct{}{}), "<object>"},
	}
	for _, tt := range tests {
		if got := tt.v.String(); got != tt.want {
			t.Fatalf("display of %v: got %q, want %q", tt.v.Kind(), got, tt.want)
		}
	}
}
