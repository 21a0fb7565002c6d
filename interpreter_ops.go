// interpreter_ops.go — PRIVATE: value predicates, rendering, and the unary
// and binary operator tables.
//
// This file:
//  - Implements Truthy, TypeName, and Stringify (the three value predicates
//    the rest of the engine and the natives share).
//  - Implements unaryOp and binaryOp, the full operator semantics.
//  - Implements valuesEqual, the equality used by == and != (never errors).
//
// Public API is in interpreter.go. Statement/expression walking is in
// interpreter_exec.go.

package nexus

import (
	"math"
	"strconv"
	"strings"
)

// ---- value predicates ----

// Truthy reports the truth value of v: only null and false are falsy.
// Zero and the empty string are truthy.
func Truthy(v Value) bool {
	switch v.Tag {
	case VTNull:
		return false
	case VTBool:
		return v.Data.(bool)
	default:
		return true
	}
}

// TypeName returns the user-facing type name of v, as reported by type().
// User functions and natives both answer "function".
func TypeName(v Value) string {
	switch v.Tag {
	case VTNull:
		return "null"
	case VTBool:
		return "boolean"
	case VTNum:
		return "number"
	case VTStr:
		return "string"
	case VTArray:
		return "array"
	case VTFun, VTNative:
		return "function"
	case VTClass:
		return "class"
	case VTInstance:
		return "instance"
	}
	return "unknown"
}

// Stringify renders v for print, concatenation, and str(). Strings render
// without quotes; numbers use the shortest representation that round-trips
// (so 3.0 renders as "3").
func Stringify(v Value) string {
	switch v.Tag {
	case VTNull:
		return "null"
	case VTBool:
		if v.Data.(bool) {
			return "true"
		}
		return "false"
	case VTNum:
		return strconv.FormatFloat(v.Data.(float64), 'g', -1, 64)
	case VTStr:
		return v.Data.(string)
	case VTArray:
		elems := v.Data.([]Value)
		var b strings.Builder
		b.WriteByte('[')
		for i, e := range elems {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(Stringify(e))
		}
		b.WriteByte(']')
		return b.String()
	case VTFun:
		return "<function " + v.Data.(*Fun).Name + ">"
	case VTNative:
		return "<native function " + v.Data.(*NativeFun).Name + ">"
	case VTClass:
		return "<class " + v.Data.(*Class).Name + ">"
	case VTInstance:
		return "<" + v.Data.(*Instance).Class.Name + " instance>"
	}
	return "<unknown>"
}

// ---- operators ----

func unaryOp(op string, v Value) (Value, *RuntimeError) {
	switch op {
	case "-":
		if v.Tag != VTNum {
			return Null, RuntimeErrorf(ErrType, "operand of '-' must be a number, got %s", TypeName(v))
		}
		return Num(-v.Data.(float64)), nil
	case "!":
		return Bool(!Truthy(v)), nil
	}
	return Null, RuntimeErrorf(ErrType, "unknown unary operator '%s'", op)
}

func binaryOp(op string, l, r Value) (Value, *RuntimeError) {
	switch op {
	case "+":
		switch {
		case l.Tag == VTNum && r.Tag == VTNum:
			return Num(l.Data.(float64) + r.Data.(float64)), nil
		case l.Tag == VTStr && r.Tag == VTStr:
			return Str(l.Data.(string) + r.Data.(string)), nil
		// either side a string coerces the other
		case l.Tag == VTStr:
			return Str(l.Data.(string) + Stringify(r)), nil
		case r.Tag == VTStr:
			return Str(Stringify(l) + r.Data.(string)), nil
		}
		return Null, RuntimeErrorf(ErrType,
			"operands of '+' must be two numbers or involve a string, got %s and %s",
			TypeName(l), TypeName(r))

	case "-", "*", "/", "%":
		if l.Tag != VTNum || r.Tag != VTNum {
			return Null, RuntimeErrorf(ErrType,
				"operands of '%s' must be numbers, got %s and %s", op, TypeName(l), TypeName(r))
		}
		a, b := l.Data.(float64), r.Data.(float64)
		switch op {
		case "-":
			return Num(a - b), nil
		case "*":
			return Num(a * b), nil
		case "/":
			// IEEE division: x/0 is ±Inf, 0/0 is NaN
			return Num(a / b), nil
		default:
			return Num(math.Mod(a, b)), nil
		}

	case "<", "<=", ">", ">=":
		switch {
		case l.Tag == VTNum && r.Tag == VTNum:
			return Bool(compareOrdered(op, l.Data.(float64), r.Data.(float64))), nil
		case l.Tag == VTStr && r.Tag == VTStr:
			return Bool(compareOrdered(op, l.Data.(string), r.Data.(string))), nil
		}
		return Null, RuntimeErrorf(ErrType,
			"operands of '%s' must be two numbers or two strings, got %s and %s",
			op, TypeName(l), TypeName(r))

	case "==":
		return Bool(valuesEqual(l, r)), nil
	case "!=":
		return Bool(!valuesEqual(l, r)), nil
	}
	return Null, RuntimeErrorf(ErrType, "unknown binary operator '%s'", op)
}

func compareOrdered[T float64 | string](op string, a, b T) bool {
	switch op {
	case "<":
		return a < b
	case "<=":
		return a <= b
	case ">":
		return a > b
	default:
		return a >= b
	}
}

// valuesEqual implements ==. It never errors: values of different kinds are
// unequal. Booleans, numbers, and strings compare by value, arrays
// compare element-wise, and callables, classes, and instances compare by
// identity.
func valuesEqual(l, r Value) bool {
	if l.Tag != r.Tag {
		return false
	}
	switch l.Tag {
	case VTNull:
		return true
	case VTBool:
		return l.Data.(bool) == r.Data.(bool)
	case VTNum:
		return l.Data.(float64) == r.Data.(float64)
	case VTStr:
		return l.Data.(string) == r.Data.(string)
	case VTArray:
		a, b := l.Data.([]Value), r.Data.([]Value)
		if len(a) != len(b) {
			return false
		}
		for i := range a {
			if !valuesEqual(a[i], b[i]) {
				return false
			}
		}
		return true
	case VTFun:
		return l.Data.(*Fun) == r.Data.(*Fun)
	case VTNative:
		return l.Data.(*NativeFun) == r.Data.(*NativeFun)
	case VTClass:
		return l.Data.(*Class) == r.Data.(*Class)
	case VTInstance:
		return l.Data.(*Instance) == r.Data.(*Instance)
	}
	return false
}
