package nexus

import (
	"bytes"
	"strings"
	"testing"
)

func Test_Builtin_Print(t *testing.T) {
	ip := NewInterpreter()
	var buf bytes.Buffer
	ip.Out = &buf

	mustEvalPersistent(t, ip, `print("hello", "world")`)
	mustEvalPersistent(t, ip, `print(1 + 2, true, null)`)
	mustEvalPersistent(t, ip, `print()`)

	want := "hello world\n3 true null\n\n"
	if got := buf.String(); got != want {
		t.Fatalf("print output:\ngot  %q\nwant %q", got, want)
	}
}

func Test_Builtin_Print_ReturnsNull(t *testing.T) {
	ip := NewInterpreter()
	ip.Out = &bytes.Buffer{}
	wantNull(t, mustEvalPersistent(t, ip, `print("x")`))
}

func Test_Builtin_Input(t *testing.T) {
	ip := NewInterpreter()
	ip.In = strings.NewReader("first\nsecond\n")
	var buf bytes.Buffer
	ip.Out = &buf

	wantStr(t, mustEvalPersistent(t, ip, `input("> ")`), "first")
	wantStr(t, mustEvalPersistent(t, ip, `input("> ")`), "second")
	if got := buf.String(); got != "> > " {
		t.Fatalf("prompt output: %q", got)
	}
}

func Test_Builtin_Input_EOFYieldsEmpty(t *testing.T) {
	ip := NewInterpreter()
	ip.In = strings.NewReader("")
	ip.Out = &bytes.Buffer{}
	wantStr(t, mustEvalPersistent(t, ip, `input("? ")`), "")
}

func Test_Builtin_Input_StripsCRLF(t *testing.T) {
	ip := NewInterpreter()
	ip.In = strings.NewReader("dos line\r\n")
	ip.Out = &bytes.Buffer{}
	wantStr(t, mustEvalPersistent(t, ip, `input("")`), "dos line")
}

func Test_Builtin_Type(t *testing.T) {
	wantStr(t, evalSrc(t, `type(null)`), "null")
	wantStr(t, evalSrc(t, `type(true)`), "boolean")
	wantStr(t, evalSrc(t, `type(1.5)`), "number")
	wantStr(t, evalSrc(t, `type("s")`), "string")
	wantStr(t, evalSrc(t, `type(print)`), "function")
	wantStr(t, evalSrc(t, `
func f() { return 0 }
type(f)`), "function")
	wantStr(t, evalSrc(t, `
class C {
}
type(C)`), "class")
	wantStr(t, evalSrc(t, `
class C {
}
type(C())`), "instance")
}

func Test_Builtin_Str(t *testing.T) {
	wantStr(t, evalSrc(t, `str(42)`), "42")
	wantStr(t, evalSrc(t, `str(2.5)`), "2.5")
	wantStr(t, evalSrc(t, `str(6.0)`), "6")
	wantStr(t, evalSrc(t, `str(true)`), "true")
	wantStr(t, evalSrc(t, `str(null)`), "null")
	wantStr(t, evalSrc(t, `str("already")`), "already")
}

func Test_Builtin_Num(t *testing.T) {
	wantNum(t, evalSrc(t, `num("42")`), 42)
	wantNum(t, evalSrc(t, `num("2.5")`), 2.5)
	wantNum(t, evalSrc(t, `num(" 7 ")`), 7)
	wantNum(t, evalSrc(t, `num(-1.5)`), -1.5)

	wantRuntimeError(t, `num("not a number")`, ErrConversion, `cannot convert "not a number"`)
	wantRuntimeError(t, `num(true)`, ErrConversion, "cannot convert boolean")
	wantRuntimeError(t, `num(null)`, ErrConversion, "cannot convert null")
}

func Test_Builtin_Num_ErrorIsCatchable(t *testing.T) {
	v := evalSrc(t, `
var got = "none"
try {
    num("oops")
} catch (e) {
    got = e
}
got`)
	if v.Tag != VTStr || !strings.HasPrefix(v.Data.(string), "ConversionError: ") {
		t.Fatalf("want ConversionError string, got %#v", v)
	}
}

func Test_Builtin_Len(t *testing.T) {
	wantNum(t, evalSrc(t, `len("")`), 0)
	wantNum(t, evalSrc(t, `len("abc")`), 3)
	// byte length, not rune count
	wantNum(t, evalSrc(t, `len("héllo")`), 6)

	wantRuntimeError(t, `len(5)`, ErrType, "len() expects a string or array")
	wantRuntimeError(t, `len(null)`, ErrType, "len() expects a string or array")
}

func Test_Builtin_Len_Array(t *testing.T) {
	ip := NewInterpreter()
	ip.RegisterNative("triple", 0, func(_ *Interpreter, _ []Value) (Value, *RuntimeError) {
		return Arr([]Value{Num(1), Num(2), Num(3)}), nil
	})
	wantNum(t, mustEvalPersistent(t, ip, `len(triple())`), 3)
}

func Test_Builtin_ArityErrors(t *testing.T) {
	wantRuntimeError(t, `type()`, ErrArity, "type() expects 1 argument(s), got 0")
	wantRuntimeError(t, `len("a", "b")`, ErrArity, "len() expects 1 argument(s), got 2")
	wantRuntimeError(t, `str()`, ErrArity, "str() expects 1 argument(s), got 0")
	wantRuntimeError(t, `input()`, ErrArity, "input() expects 1 argument(s), got 0")
}

func Test_Builtin_ComposeWithUserCode(t *testing.T) {
	src := `
func describe(v) {
    return type(v) + "(" + str(v) + ")"
}
describe(3.5) + " " + describe(true)`
	wantStr(t, evalSrc(t, src), "number(3.5) boolean(true)")
}
