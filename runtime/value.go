package runtime

import (
	"fmt"
	"strconv"
)

type ValueKind int

const (
	NullKind ValueKind = iota
	NumberKind
	StringKind
	BoolKind
	ObjectKind
)

func (k ValueKind) String() string {
	switch k {
	case NullKind:
		return "null"
	case NumberKind:
		return "number"
	case StringKind:
		return "string"
	case BoolKind:
		return "boolean"
	case ObjectKind:
		return "object"
	default:
		return "unknown"
	}
}

// Value is the dynamically-typed runtime value produced by the evaluator.
// Objects are opaque host references exposed through member and function
// lookup.
type Value struct {
	kind ValueKind
	num  float64
	str  string
	b    bool
	obj  any
}

func Null() Value {
	return Value{kind: NullKind}
}

func Num(v float64) Value {
	return Value{kind: NumberKind, num: v}
}

func Str(v string) Value {
	return Value{kind: StringKind, str: v}
}

func Bool(v bool) Value {
	return Value{kind: BoolKind, b: v}
}

func Obj(v any) Value {
	if v == nil {
		return Null()
	}
	return Value{kind: ObjectKind, obj: v}
}

func (v Value) Kind() ValueKind {
	return v.kind
}

func (v Value) IsNull() bool {
	return v.kind == NullKind
}

// Float64 coerces to a number: strings parse, booleans map to 0/1,
// null and objects are 0.
func (v Value) Float64() float64 {
	switch v.kind {
	case NumberKind:
		return v.num
	case StringKind:
		f, err := strconv.ParseFloat(v.str, 64)
		if err != nil {
			return 0
		}
		return f
	case BoolKind:
		if v.b {
			return 1
		}
		return 0
	default:
		return 0
	}
}

// String renders the display form used for text interpolation. Whole
// numbers print without a fraction.
func (v Value) String() string {
	switch v.kind {
	case NumberKind:
		if v.num == float64(int64(v.num)) {
			return strconv.FormatInt(int64(v.num), 10)
		}
		return strconv.FormatFloat(v.num, 'g', -1, 64)
	case StringKind:
		return v.str
	case BoolKind:
		return strconv.FormatBool(v.b)
	case ObjectKind:
		if s, ok := v.obj.(fmt.Stringer); ok {
			return s.String()
		}
		return "<object>"
	default:
		return "null"
	}
}

// Truthy is the loose boolean used by and/or/not. Conditions and choice
// guards require a strict BoolKind instead; see the Runner.
func (v Value) Truthy() bool {
	switch v.kind {
	case NumberKind:
		return v.num != 0
	case StringKind:
		return v.str != ""
	case BoolKind:
		return v.b
	case ObjectKind:
		return v.obj != nil
	default:
		return false
	}
}

// BoolValue returns the strict boolean payload.
func (v Value) BoolValue() (bool, bool) {
	if v.kind != BoolKind {
		return false, false
	}
	return v.b, true
}

// Object returns the opaque host reference.
func (v Value) Object() (any, bool) {
	if v.kind != ObjectKind {
		return nil, false
	}
	return v.obj, true
}

// Equals compares by kind and payload; numbers and strings compare by
// value, objects by host identity.
func (v Value) Equals(o Value) bool {
	if v.kind != o.kind {
		// Number-ish cross comparisons stay strict except null==null.
		return false
	}
	switch v.kind {
	case NullKind:
		return true
	case NumberKind:
		return v.num == o.num
	case StringKind:
		return v.str == o.str
	case BoolKind:
		return v.b == o.b
	case ObjectKind:
		return v.obj == o.obj
	default:
		return false
	}
}
