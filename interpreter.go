// interpreter.go — SINGLE PUBLIC API SURFACE for the Nexus interpreter.
//
// OVERVIEW
// ========
// This file exposes the public surface of the Nexus runtime: the value
// model, environments, the error type every evaluation can surface, and the
// Interpreter with its canonical entry points. Algorithmic code lives in
// private files (interpreter_exec.go for the tree walk, interpreter_ops.go
// for operator semantics, runtime.go for the class model).
//
// EXECUTION & SCOPING
// -------------------
// Code evaluates in environments (*Env) forming a lexical chain. The
// Interpreter owns one well-known frame, Globals, pre-populated with the
// native functions. Entry points differ only in which environment they
// target:
//   - EvalSource runs a program in a fresh child of Globals, so bindings
//     made by the program are discarded afterwards.
//   - EvalPersistentSource evaluates directly in Globals (REPL-style):
//     declarations persist across calls.
//   - EvalProgram accepts an already-parsed (or deserialized) Program and
//     an explicit environment for hosts that control scoping themselves.
//
// ERRORS
// ------
// All Eval* methods return (Value, error). Failures before execution are
// *LexError or *ParseError; failures during execution are *RuntimeError,
// which carries an ErrKind tag, a 1-based line, and a 0-based column. Within
// the language, runtime errors unwind as catchable values: a try/catch binds
// the Rendered() form ("TypeError: ...") of the error.
//
// NATIVES
// -------
// RegisterNative installs a host capability as an ordinary callable binding
// in Globals. Natives receive evaluated arguments and the interpreter (for
// its I/O collaborators) and return a Value or a *RuntimeError. They are
// first-class: programs may pass them around, shadow them, or overwrite
// them like any other binding.
package nexus

import (
	"bufio"
	"fmt"
	"io"
	"os"
)

// ---- values ----

// ValueTag enumerates all runtime kinds a Value may hold.
type ValueTag int

const (
	VTNull     ValueTag = iota // null (no payload)
	VTBool                     // bool
	VTNum                      // float64
	VTStr                      // string
	VTArray                    // []Value
	VTFun                      // *Fun (user-defined closure)
	VTNative                   // *NativeFun (registered host capability)
	VTClass                    // *Class
	VTInstance                 // *Instance
)

// Value is the universal runtime carrier used by the interpreter.
// Tag is the discriminant; Data holds the Go value appropriate for Tag.
type Value struct {
	Tag  ValueTag
	Data interface{}
}

// String renders a debug representation; strings are quoted. For the
// language-level conversion rule, see the str native and Stringify.
func (v Value) String() string {
	if v.Tag == VTStr {
		return fmt.Sprintf("%q", v.Data.(string))
	}
	return Stringify(v)
}

// Null is the singleton null Value.
var Null = Value{Tag: VTNull}

// Primitive constructors.
func Bool(b bool) Value    { return Value{Tag: VTBool, Data: b} }
func Num(f float64) Value  { return Value{Tag: VTNum, Data: f} }
func Str(s string) Value   { return Value{Tag: VTStr, Data: s} }
func Arr(xs []Value) Value { return Value{Tag: VTArray, Data: xs} }

// FunVal wraps a user-defined function into a Value.
func FunVal(f *Fun) Value { return Value{Tag: VTFun, Data: f} }

// NativeVal wraps a registered native into a Value.
func NativeVal(n *NativeFun) Value { return Value{Tag: VTNative, Data: n} }

// ClassVal wraps a class into a Value.
func ClassVal(c *Class) Value { return Value{Tag: VTClass, Data: c} }

// InstanceVal wraps an instance into a Value.
func InstanceVal(in *Instance) Value { return Value{Tag: VTInstance, Data: in} }

// Fun is a user-defined function: parameter names, a body, and the
// environment captured at declaration time (the closure). Methods are Funs
// whose Env has this bound one frame above the declaration environment.
type Fun struct {
	Name   string
	Params []string
	Body   *Block
	Env    *Env
}

// NativeImpl is the implementation signature for registered natives. args
// are already evaluated. Returned errors normally carry no position; the
// evaluator stamps the call site before propagating.
type NativeImpl func(ip *Interpreter, args []Value) (Value, *RuntimeError)

// NativeFun is a host capability exposed as an ordinary callable.
// Arity is the required argument count; -1 accepts any count.
type NativeFun struct {
	Name  string
	Arity int
	Impl  NativeImpl
}

// ---- environments ----

type binding struct {
	value    Value
	constant bool
}

// Env is a lexical environment frame with a parent link. Lookups walk
// parent-ward to the nearest binding.
type Env struct {
	parent *Env
	table  map[string]binding
}

// NewEnv creates a new frame with the given parent (which may be nil).
func NewEnv(parent *Env) *Env { return &Env{parent: parent, table: make(map[string]binding)} }

// Declare binds name in this frame. Redeclaring in the same frame rebinds
// (shadowing any outer binding), unless the existing binding here is const.
func (e *Env) Declare(name string, v Value, constant bool) *RuntimeError {
	if b, ok := e.table[name]; ok && b.constant {
		return RuntimeErrorf(ErrRedeclaration, "cannot redeclare constant '%s'", name)
	}
	e.table[name] = binding{value: v, constant: constant}
	return nil
}

// Assign mutates the nearest visible binding of name.
func (e *Env) Assign(name string, v Value) *RuntimeError {
	for env := e; env != nil; env = env.parent {
		if b, ok := env.table[name]; ok {
			if b.constant {
				return RuntimeErrorf(ErrConstAssignment, "cannot assign to constant '%s'", name)
			}
			env.table[name] = binding{value: v}
			return nil
		}
	}
	return RuntimeErrorf(ErrUndefinedVariable, "undefined variable: %s", name)
}

// Get retrieves the nearest visible binding for name.
func (e *Env) Get(name string) (Value, *RuntimeError) {
	for env := e; env != nil; env = env.parent {
		if b, ok := env.table[name]; ok {
			return b.value, nil
		}
	}
	return Null, RuntimeErrorf(ErrUndefinedVariable, "undefined variable: %s", name)
}

// ---- runtime errors ----

// ErrKind names a runtime error category. It is the prefix catch clauses
// observe in the bound error string.
type ErrKind string

const (
	ErrUndefinedVariable ErrKind = "UndefinedVariableError"
	ErrRedeclaration     ErrKind = "RedeclarationError"
	ErrConstAssignment   ErrKind = "ConstAssignmentError"
	ErrType              ErrKind = "TypeError"
	ErrArity             ErrKind = "ArityError"
	ErrNotCallable       ErrKind = "NotCallableError"
	ErrUndefinedMethod   ErrKind = "UndefinedMethodError"
	ErrConversion        ErrKind = "ConversionError"
	ErrStackOverflow     ErrKind = "StackOverflowError"
)

// RuntimeError is an execution-time failure. Line is 1-based, Col 0-based;
// both are zero until the evaluator stamps the failing node's position.
type RuntimeError struct {
	Kind ErrKind
	Line int
	Col  int
	Msg  string
}

// Rendered is the kind-prefixed message, e.g. "TypeError: operands of '-'
// must be numbers". It is position-free: this exact string is what a catch
// clause binds.
func (e *RuntimeError) Rendered() string { return string(e.Kind) + ": " + e.Msg }

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("RUNTIME ERROR at %d:%d: %s", e.Line, e.Col, e.Rendered())
}

// RuntimeErrorf builds a position-less runtime error of the given kind.
func RuntimeErrorf(kind ErrKind, format string, a ...interface{}) *RuntimeError {
	return &RuntimeError{Kind: kind, Msg: fmt.Sprintf(format, a...)}
}

// ---- interpreter ----

// Interpreter evaluates Nexus programs.
//
// Public fields may be adjusted between runs:
//   - Globals: the root environment holding the native bindings and, for
//     persistent evaluation, all REPL state.
//   - In/Out: the I/O collaborators used by input and print.
//   - MaxCallDepth: bound on language-level call nesting; exceeding it
//     raises StackOverflowError instead of exhausting the host stack.
//   - Programs: optional parse cache consulted by EvalSource and
//     EvalPersistentSource (nil disables caching).
type Interpreter struct {
	Globals *Env

	In  io.Reader
	Out io.Writer

	MaxCallDepth int

	Programs *ProgramCache

	depth int
	stdin *bufio.Reader
}

// NewInterpreter constructs an engine whose Globals frame is pre-populated
// with the core natives (print, input, type, str, num, len). I/O defaults
// to os.Stdin/os.Stdout.
func NewInterpreter() *Interpreter {
	ip := &Interpreter{
		Globals:      NewEnv(nil),
		In:           os.Stdin,
		Out:          os.Stdout,
		MaxCallDepth: 1000,
	}
	registerCoreBuiltins(ip)
	return ip
}

// EvalSource parses and evaluates source in a fresh child of Globals.
// Bindings made by the program land in that throwaway child; Globals is
// unchanged. Returns the program's last expression value (Null when the
// program ends with a non-expression statement).
func (ip *Interpreter) EvalSource(src string) (Value, error) {
	prog, err := ip.parse(src)
	if err != nil {
		return Null, err
	}
	return ip.EvalProgram(prog, NewEnv(ip.Globals))
}

// EvalPersistentSource parses and evaluates source directly in Globals
// (REPL-style): declarations persist across calls.
func (ip *Interpreter) EvalPersistentSource(src string) (Value, error) {
	prog, err := ip.parse(src)
	if err != nil {
		return Null, err
	}
	return ip.EvalProgram(prog, ip.Globals)
}

// EvalProgram runs an already-built Program in env. A nil env means a fresh
// child of Globals. The error, if any, is a *RuntimeError.
func (ip *Interpreter) EvalProgram(prog *Program, env *Env) (Value, error) {
	if env == nil {
		env = NewEnv(ip.Globals)
	}
	return ip.execProgram(prog, env)
}

// Apply invokes a callable Value (function, native, or class) with the
// given arguments, as a call expression would.
func (ip *Interpreter) Apply(fn Value, args []Value) (Value, error) {
	v, ctrl := ip.callValue(fn, args, Position{})
	if ctrl.kind == ctrlThrow {
		return Null, ctrl.err
	}
	return v, nil
}

// RegisterNative installs a host capability as an ordinary callable binding
// named name in Globals. arity is the required argument count, or -1 for
// variadic.
func (ip *Interpreter) RegisterNative(name string, arity int, impl NativeImpl) {
	_ = ip.Globals.Declare(name, NativeVal(&NativeFun{Name: name, Arity: arity, Impl: impl}), false)
}

// parse resolves source to a Program, consulting the cache when enabled.
func (ip *Interpreter) parse(src string) (*Program, error) {
	if ip.Programs != nil {
		if prog, ok := ip.Programs.Get(src); ok {
			return prog, nil
		}
	}
	prog, err := ParseProgram(src)
	if err != nil {
		return nil, err
	}
	if ip.Programs != nil {
		ip.Programs.Put(src, prog)
	}
	return prog, nil
}

// reader lazily wraps In for line reads. Set In before the first input call.
func (ip *Interpreter) reader() *bufio.Reader {
	if ip.stdin == nil {
		ip.stdin = bufio.NewReader(ip.In)
	}
	return ip.stdin
}
