package runtime

import (
	"fmt"
	"math"
	"strings"

	"github.com/rs/zerolog"

	"github.com/talekit/talekit/ast"
)

// Evaluator resolves AST expressions and text segments against an
// Environment. It holds no mutable state of its own; one evaluator may
// serve many expressions in sequence.
type Evaluator struct {
	env Environment
	log zerolog.Logger
}

func NewEvaluator(env Environment, log zerolog.Logger) *Evaluator {
	return &Evaluator{env: env, log: log}
}

func (ev *Evaluator) Eval(e ast.Expr) (Value, error) {
	switch ex := e.(type) {
	case ast.NumberLit:
		return Num(ex.Value), nil
	case ast.StringLit:
		return Str(ex.Value), nil
	case ast.InterpString:
		s, err := ev.EvalText(ex.Segments)
		if err != nil {
			return Null(), err
		}
		return Str(s), nil
	case ast.BoolLit:
		return Bool(ex.Value), nil
	case ast.NullLit:
		return Null(), nil
	case ast.VarExpr:
		v, ok := ev.env.GetVariable(ex.Name)
		if !ok {
			ev.log.Debug().Str("variable", ex.Name).Msg("undefined variable resolves to null")
			return Null(), nil
		}
		return v, nil
	case ast.IdentExpr:
		return ev.resolveIdent(ex.Name), nil
	case ast.UnaryExpr:
		return ev.evalUnary(ex)
	case ast.BinaryExpr:
		return ev.evalBinary(ex)
	case ast.MemberExpr:
		return ev.evalMember(ex)
	case ast.IndexExpr:
		return ev.evalIndex(ex)
	case ast.CallExpr:
		return ev.evalCall(ex)
	default:
		return Null(), fmt.Errorf("unsupported expression %T", e)
	}
}

// EvalText renders a run of text segments, resolving interpolations to
// their display form.
func (ev *Evaluator) EvalText(segs []ast.TextSegment) (string, error) {
	var b strings.Builder
	var firstErr error
	for _, seg := range segs {
		switch s := seg.(type) {
		case ast.TextLiteral:
			b.WriteString(s.Text)
		case ast.TextInterp:
			v, err := ev.Eval(s.Expr)
			if err != nil {
				if firstErr == nil {
					firstErr = err
				}
				continue
			}
			b.WriteString(v.String())
		}
	}
	return b.String(), firstErr
}

// resolveIdent looks a bare identifier up as a variable first, then as a
// registered function wrapped into an object value. Unknown names
// resolve to the Null sentinel.
func (ev *Evaluator) resolveIdent(name string) Value {
	if v, ok := ev.env.GetVariable(name); ok {
		return v
	}
	if fn, ok := ev.env.GetFunction(name); ok {
		return Obj(fn)
	}
	ev.log.Debug().Str("identifier", name).Msg("undefined identifier resolves to null")
	return Null()
}

func (ev *Evaluator) evalUnary(ex ast.UnaryExpr) (Value, error) {
	v, err := ev.Eval(ex.Operand)
	if err != nil {
		return Null(), err
	}
	switch ex.Op {
	case "-":
		return Num(-v.Float64()), nil
	case "not":
		return Bool(!v.Truthy()), nil
	default:
		return Null(), fmt.Errorf("unsupported unary operator %q", ex.Op)
	}
}

func (ev *Evaluator) evalBinary(ex ast.BinaryExpr) (Value, error) {
	// and/or short-circuit at evaluation time.
	switch ex.Op {
	case "and":
		left, err := ev.Eval(ex.Left)
		if err != nil {
			return Null(), err
		}
		if !left.Truthy() {
			return Bool(false), nil
		}
		right, err := ev.Eval(ex.Right)
		if err != nil {
			return Null(), err
		}
		return Bool(right.Truthy()), nil
	case "or":
		left, err := ev.Eval(ex.Left)
		if err != nil {
			return Null(), err
		}
		if left.Truthy() {
			return Bool(true), nil
		}
		right, err := ev.Eval(ex.Right)
		if err != nil {
			return Null(), err
		}
		return Bool(right.Truthy()), nil
	}
	left, err := ev.Eval(ex.Left)
	if err != nil {
		return Null(), err
	}
	right, err := ev.Eval(ex.Right)
	if err != nil {
		return Null(), err
	}
	return ApplyBinary(ex.Op, left, right)
}

// ApplyBinary applies a binary operator to two already-evaluated values.
// The Runner reuses it for add/sub/mul/div/mod variable commands.
func ApplyBinary(op string, left, right Value) (Value, error) {
	switch op {
	case "+":
		if left.Kind() == StringKind || right.Kind() == StringKind {
			return Str(left.String() + right.String()), nil
		}
		return Num(left.Float64() + right.Float64()), nil
	case "-":
		return Num(left.Float64() - right.Float64()), nil
	case "*":
		return Num(left.Float64() * right.Float64()), nil
	case "/":
		if right.Float64() == 0 {
			return Null(), fmt.Errorf("division by zero")
		}
		return Num(left.Float64() / right.Float64()), nil
	case "%":
		r := right.Float64()
		if r == 0 {
			return Null(), fmt.Errorf("modulo by zero")
		}
		return Num(math.Mod(left.Float64(), r)), nil
	case "==":
		return Bool(left.Equals(right)), nil
	case "!=":
		return Bool(!left.Equals(right)), nil
	case "<":
		return Bool(left.Float64() < right.Float64()), nil
	case "<=":
		return Bool(left.Float64() <= right.Float64()), nil
	case ">":
		return Bool(left.Float64() > right.Float64()), nil
	case ">=":
		return Bool(left.Float64() >= right.Float64()), nil
	case "xor":
		return Bool(left.Truthy() != right.Truthy()), nil
	case "and":
		return Bool(left.Truthy() && right.Truthy()), nil
	case "or":
		return Bool(left.Truthy() || right.Truthy()), nil
	default:
		return Null(), fmt.Errorf("unsupported binary operator %q", op)
	}
}

func (ev *Evaluator) evalMember(ex ast.MemberExpr) (Value, error) {
	target, err := ev.Eval(ex.Target)
	if err != nil {
		return Null(), err
	}
	if target.Kind() == StringKind && ex.Name == "length" {
		return Num(float64(len([]rune(target.String())))), nil
	}
	obj, ok := target.Object()
	if !ok {
		return Null(), fmt.Errorf("cannot access member %q on %s value", ex.Name, target.Kind())
	}
	m, ok := obj.(Member)
	if !ok {
		return Null(), fmt.Errorf("host object does not expose members")
	}
	v, ok := m.Member(ex.Name)
	if !ok {
		return Null(), nil
	}
	return v, nil
}

func (ev *Evaluator) evalIndex(ex ast.IndexExpr) (Value, error) {
	target, err := ev.Eval(ex.Target)
	if err != nil {
		return Null(), err
	}
	index, err := ev.Eval(ex.Index)
	if err != nil {
		return Null(), err
	}
	if target.Kind() == StringKind {
		runes := []rune(target.String())
		i := int(index.Float64())
		if i < 0 || i >= len(runes) {
			return Null(), nil
		}
		return Str(string(runes[i])), nil
	}
	obj, ok := target.Object()
	if !ok {
		return Null(), fmt.Errorf("cannot index %s value", target.Kind())
	}
	ix, ok := obj.(Indexable)
	if !ok {
		return Null(), fmt.Errorf("host object is not indexable")
	}
	v, ok := ix.Index(index)
	if !ok {
		return Null(), nil
	}
	return v, nil
}

func (ev *Evaluator) evalCall(ex ast.CallExpr) (Value, error) {
	args := make([]Value, 0, len(ex.Args))
	for _, a := range ex.Args {
		v, err := ev.Eval(a)
		if err != nil {
			return Null(), err
		}
		args = append(args, v)
	}

	// A direct name call prefers the function registry over variables.
	if ident, ok := ex.Target.(ast.IdentExpr); ok {
		if fn, found := ev.env.GetFunction(ident.Name); found {
			return fn(args...)
		}
	}

	target, err := ev.Eval(ex.Target)
	if err != nil {
		return Null(), err
	}
	obj, ok := target.Object()
	if !ok {
		return Null(), fmt.Errorf("cannot call %s value", target.Kind())
	}
	switch c := obj.(type) {
	case Function:
		return c(args...)
	case Callable:
		return c.Call(args)
	default:
		return Null(), fmt.Errorf("host object is not callable")
	}
}
