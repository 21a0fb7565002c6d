package nexus

import (
	"strconv"
	"strings"
)

// ---- core built-ins ----------------------------------------------------

// registerCoreBuiltins installs the native functions every interpreter
// starts with. They are ordinary bindings in Globals, so scripts can shadow
// or reassign them.
func registerCoreBuiltins(ip *Interpreter) {
	// print(args...) -> Null
	ip.RegisterNative("print", -1, func(ip *Interpreter, args []Value) (Value, *RuntimeError) {
		parts := make([]string, len(args))
		for i, a := range args {
			parts[i] = Stringify(a)
		}
		if _, err := ip.Out.Write([]byte(strings.Join(parts, " ") + "\n")); err != nil {
			return Null, RuntimeErrorf(ErrType, "print: %s", err.Error())
		}
		return Null, nil
	})

	// input(prompt) -> String; EOF yields ""
	ip.RegisterNative("input", 1, func(ip *Interpreter, args []Value) (Value, *RuntimeError) {
		if args[0].Tag != VTNull {
			if _, err := ip.Out.Write([]byte(Stringify(args[0]))); err != nil {
				return Null, RuntimeErrorf(ErrType, "input: %s", err.Error())
			}
		}
		line, err := ip.reader().ReadString('\n')
		if err != nil && line == "" {
			return Str(""), nil
		}
		line = strings.TrimRight(line, "\r\n")
		return Str(line), nil
	})

	// type(x) -> String
	ip.RegisterNative("type", 1, func(_ *Interpreter, args []Value) (Value, *RuntimeError) {
		return Str(TypeName(args[0])), nil
	})

	// str(x) -> String
	ip.RegisterNative("str", 1, func(_ *Interpreter, args []Value) (Value, *RuntimeError) {
		return Str(Stringify(args[0])), nil
	})

	// num(x) -> Number; numbers pass through, strings parse, the rest fail
	ip.RegisterNative("num", 1, func(_ *Interpreter, args []Value) (Value, *RuntimeError) {
		v := args[0]
		switch v.Tag {
		case VTNum:
			return v, nil
		case VTStr:
			s := strings.TrimSpace(v.Data.(string))
			f, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return Null, RuntimeErrorf(ErrConversion,
					"cannot convert %q to a number", v.Data.(string))
			}
			return Num(f), nil
		default:
			return Null, RuntimeErrorf(ErrConversion,
				"cannot convert %s to a number", TypeName(v))
		}
	})

	// len(x) -> Number; byte length for strings, element count for arrays
	ip.RegisterNative("len", 1, func(_ *Interpreter, args []Value) (Value, *RuntimeError) {
		v := args[0]
		switch v.Tag {
		case VTStr:
			return Num(float64(len(v.Data.(string)))), nil
		case VTArray:
			return Num(float64(len(v.Data.([]Value)))), nil
		default:
			return Null, RuntimeErrorf(ErrType, "len() expects a string or array, got %s", TypeName(v))
		}
	})
}
