// interpreter_exec.go — PRIVATE: the tree-walking evaluator.
//
// Control flow is modeled as data, not as host panics: every statement
// execution returns a control value tagging the pending non-local exit
// (none, break, continue, return, throw), and every call site propagates it
// explicitly. Loops absorb break/continue, function calls absorb return,
// try/catch absorbs throw; anything else unwinds to the top level. No
// exported identifiers here; the public facade lives in interpreter.go.
package nexus

// ctrlKind tags the non-local exits that unwind through execution.
type ctrlKind int

const (
	ctrlNone ctrlKind = iota
	ctrlBreak
	ctrlContinue
	ctrlReturn
	ctrlThrow
)

// control is the single tagged non-local-exit result. The zero value means
// normal completion. For ctrlReturn, value is the return payload; for
// ctrlThrow, value is the catchable error string and err the underlying
// error for top-level reporting.
type control struct {
	kind  ctrlKind
	value Value
	err   *RuntimeError
}

var ctrlOK = control{}

// throwCtrl converts a runtime error into a throw signal, stamping pos onto
// errors that do not carry a position yet.
func throwCtrl(err *RuntimeError, pos Position) control {
	if err.Line == 0 {
		err.Line, err.Col = pos.Line, pos.Col
	}
	return control{kind: ctrlThrow, value: Str(err.Rendered()), err: err}
}

// enter counts a call boundary against MaxCallDepth. After a successful
// enter the caller must decrement ip.depth when the call finishes.
func (ip *Interpreter) enter(pos Position) control {
	if ip.depth >= ip.MaxCallDepth {
		return throwCtrl(RuntimeErrorf(ErrStackOverflow,
			"maximum call depth %d exceeded", ip.MaxCallDepth), pos)
	}
	ip.depth++
	return ctrlOK
}

// ---- program & statements ----

// execProgram runs the top-level statement sequence, tracking the value of
// the last expression statement (what a REPL echoes).
func (ip *Interpreter) execProgram(prog *Program, env *Env) (Value, error) {
	last := Null
	for _, st := range prog.Body {
		if es, ok := st.(*ExprStmt); ok {
			v, ctrl := ip.evalExpr(es.Expression, env)
			if ctrl.kind == ctrlThrow {
				return Null, ctrl.err
			}
			last = v
			continue
		}
		ctrl := ip.execStmt(st, env)
		switch ctrl.kind {
		case ctrlNone:
			last = Null
		case ctrlThrow:
			return Null, ctrl.err
		default:
			// The parser rejects stray break/continue/return, but a
			// hand-built or deserialized Program can still carry them.
			return Null, strayControl(ctrl, st.Pos())
		}
	}
	return last, nil
}

func strayControl(ctrl control, pos Position) *RuntimeError {
	name := "break"
	switch ctrl.kind {
	case ctrlContinue:
		name = "continue"
	case ctrlReturn:
		name = "return"
	}
	e := RuntimeErrorf(ErrType, "'%s' outside of its enclosing construct", name)
	e.Line, e.Col = pos.Line, pos.Col
	return e
}

func (ip *Interpreter) execStmt(st Stmt, env *Env) control {
	switch s := st.(type) {
	case *VarDecl:
		v := Null
		if s.Init != nil {
			var ctrl control
			if v, ctrl = ip.evalExpr(s.Init, env); ctrl.kind != ctrlNone {
				return ctrl
			}
		}
		if err := env.Declare(s.Name, v, false); err != nil {
			return throwCtrl(err, s.Position)
		}
		return ctrlOK

	case *ConstDecl:
		v, ctrl := ip.evalExpr(s.Init, env)
		if ctrl.kind != ctrlNone {
			return ctrl
		}
		if err := env.Declare(s.Name, v, true); err != nil {
			return throwCtrl(err, s.Position)
		}
		return ctrlOK

	case *FuncDecl:
		fn := &Fun{Name: s.Name, Params: s.Params, Body: s.Body, Env: env}
		if err := env.Declare(s.Name, FunVal(fn), false); err != nil {
			return throwCtrl(err, s.Position)
		}
		return ctrlOK

	case *ClassDecl:
		return ip.execClassDecl(s, env)

	case *Block:
		return ip.execBlock(s, NewEnv(env))

	case *If:
		cond, ctrl := ip.evalExpr(s.Cond, env)
		if ctrl.kind != ctrlNone {
			return ctrl
		}
		if Truthy(cond) {
			return ip.execStmt(s.Then, env)
		}
		if s.Else != nil {
			return ip.execStmt(s.Else, env)
		}
		return ctrlOK

	case *While:
		for {
			cond, ctrl := ip.evalExpr(s.Cond, env)
			if ctrl.kind != ctrlNone {
				return ctrl
			}
			if !Truthy(cond) {
				return ctrlOK
			}
			switch body := ip.execStmt(s.Body, env); body.kind {
			case ctrlNone, ctrlContinue:
			case ctrlBreak:
				return ctrlOK
			default:
				return body
			}
		}

	case *For:
		loopEnv := NewEnv(env)
		if s.Init != nil {
			if ctrl := ip.execStmt(s.Init, loopEnv); ctrl.kind != ctrlNone {
				return ctrl
			}
		}
		for {
			if s.Cond != nil {
				cond, ctrl := ip.evalExpr(s.Cond, loopEnv)
				if ctrl.kind != ctrlNone {
					return ctrl
				}
				if !Truthy(cond) {
					return ctrlOK
				}
			}
			ctrl := ip.execStmt(s.Body, loopEnv)
			if ctrl.kind == ctrlBreak {
				return ctrlOK
			}
			if ctrl.kind != ctrlNone && ctrl.kind != ctrlContinue {
				return ctrl
			}
			// continue still runs the update clause
			if s.Update != nil {
				if _, uctrl := ip.evalExpr(s.Update, loopEnv); uctrl.kind != ctrlNone {
					return uctrl
				}
			}
		}

	case *Break:
		return control{kind: ctrlBreak}

	case *Continue:
		return control{kind: ctrlContinue}

	case *Return:
		v := Null
		if s.Value != nil {
			var ctrl control
			if v, ctrl = ip.evalExpr(s.Value, env); ctrl.kind != ctrlNone {
				return ctrl
			}
		}
		return control{kind: ctrlReturn, value: v}

	case *Try:
		ctrl := ip.execBlock(s.Body, NewEnv(env))
		if ctrl.kind != ctrlThrow {
			return ctrl
		}
		catchEnv := NewEnv(env)
		_ = catchEnv.Declare(s.CatchName, ctrl.value, false)
		return ip.execBlock(s.Catch, catchEnv)

	case *ExprStmt:
		_, ctrl := ip.evalExpr(s.Expression, env)
		return ctrl
	}
	return ctrlOK
}

// execBlock runs statements in the given frame. The frame is created by the
// caller so that function calls and catch clauses can pre-seed bindings.
func (ip *Interpreter) execBlock(b *Block, env *Env) control {
	for _, st := range b.Stmts {
		if ctrl := ip.execStmt(st, env); ctrl.kind != ctrlNone {
			return ctrl
		}
	}
	return ctrlOK
}

// ---- expressions ----

func (ip *Interpreter) evalExpr(e Expr, env *Env) (Value, control) {
	switch x := e.(type) {
	case *Literal:
		switch v := x.Value.(type) {
		case nil:
			return Null, ctrlOK
		case bool:
			return Bool(v), ctrlOK
		case float64:
			return Num(v), ctrlOK
		case string:
			return Str(v), ctrlOK
		}
		return Null, throwCtrl(RuntimeErrorf(ErrType, "malformed literal"), x.Position)

	case *Identifier:
		v, err := env.Get(x.Name)
		if err != nil {
			return Null, throwCtrl(err, x.Position)
		}
		return v, ctrlOK

	case *Unary:
		operand, ctrl := ip.evalExpr(x.Operand, env)
		if ctrl.kind != ctrlNone {
			return Null, ctrl
		}
		v, err := unaryOp(x.Op, operand)
		if err != nil {
			return Null, throwCtrl(err, x.Position)
		}
		return v, ctrlOK

	case *Binary:
		left, ctrl := ip.evalExpr(x.Left, env)
		if ctrl.kind != ctrlNone {
			return Null, ctrl
		}
		right, rctrl := ip.evalExpr(x.Right, env)
		if rctrl.kind != ctrlNone {
			return Null, rctrl
		}
		v, err := binaryOp(x.Op, left, right)
		if err != nil {
			return Null, throwCtrl(err, x.Position)
		}
		return v, ctrlOK

	case *Logical:
		left, ctrl := ip.evalExpr(x.Left, env)
		if ctrl.kind != ctrlNone {
			return Null, ctrl
		}
		// short-circuit; the result is always a Boolean
		if x.Op == "||" {
			if Truthy(left) {
				return Bool(true), ctrlOK
			}
		} else {
			if !Truthy(left) {
				return Bool(false), ctrlOK
			}
		}
		right, rctrl := ip.evalExpr(x.Right, env)
		if rctrl.kind != ctrlNone {
			return Null, rctrl
		}
		return Bool(Truthy(right)), ctrlOK

	case *Assign:
		v, ctrl := ip.evalExpr(x.Value, env)
		if ctrl.kind != ctrlNone {
			return Null, ctrl
		}
		if err := env.Assign(x.Name, v); err != nil {
			return Null, throwCtrl(err, x.Position)
		}
		return v, ctrlOK

	case *Get:
		obj, ctrl := ip.evalExpr(x.Object, env)
		if ctrl.kind != ctrlNone {
			return Null, ctrl
		}
		v, err := getProperty(obj, x.Name)
		if err != nil {
			return Null, throwCtrl(err, x.Position)
		}
		return v, ctrlOK

	case *Set:
		obj, ctrl := ip.evalExpr(x.Object, env)
		if ctrl.kind != ctrlNone {
			return Null, ctrl
		}
		v, vctrl := ip.evalExpr(x.Value, env)
		if vctrl.kind != ctrlNone {
			return Null, vctrl
		}
		if err := setProperty(obj, x.Name, v); err != nil {
			return Null, throwCtrl(err, x.Position)
		}
		return v, ctrlOK

	case *Call:
		return ip.evalCall(x, env)
	}
	return Null, ctrlOK
}

// evalCall evaluates a call expression. A callee of the form obj.name on an
// instance resolves field-then-method here, so a name resolving to neither
// raises UndefinedMethodError instead of a permissive null read followed by
// NotCallableError.
func (ip *Interpreter) evalCall(x *Call, env *Env) (Value, control) {
	var callee Value
	if g, ok := x.Callee.(*Get); ok {
		obj, ctrl := ip.evalExpr(g.Object, env)
		if ctrl.kind != ctrlNone {
			return Null, ctrl
		}
		if obj.Tag == VTInstance {
			v, err := obj.Data.(*Instance).resolveForCall(g.Name)
			if err != nil {
				return Null, throwCtrl(err, g.Position)
			}
			callee = v
		} else {
			v, err := getProperty(obj, g.Name)
			if err != nil {
				return Null, throwCtrl(err, g.Position)
			}
			callee = v
		}
	} else {
		var ctrl control
		if callee, ctrl = ip.evalExpr(x.Callee, env); ctrl.kind != ctrlNone {
			return Null, ctrl
		}
	}

	args := make([]Value, 0, len(x.Args))
	for _, a := range x.Args {
		v, ctrl := ip.evalExpr(a, env)
		if ctrl.kind != ctrlNone {
			return Null, ctrl
		}
		args = append(args, v)
	}
	return ip.callValue(callee, args, x.Position)
}

// callValue applies a callable to evaluated arguments. pos is the call
// site, stamped onto errors raised before the callee's body runs.
func (ip *Interpreter) callValue(callee Value, args []Value, pos Position) (Value, control) {
	switch callee.Tag {
	case VTFun:
		return ip.callFun(callee.Data.(*Fun), args, pos)
	case VTNative:
		n := callee.Data.(*NativeFun)
		if n.Arity >= 0 && len(args) != n.Arity {
			return Null, throwCtrl(RuntimeErrorf(ErrArity,
				"%s() expects %d argument(s), got %d", n.Name, n.Arity, len(args)), pos)
		}
		if ctrl := ip.enter(pos); ctrl.kind != ctrlNone {
			return Null, ctrl
		}
		v, err := n.Impl(ip, args)
		ip.depth--
		if err != nil {
			return Null, throwCtrl(err, pos)
		}
		return v, ctrlOK
	case VTClass:
		return ip.instantiate(callee.Data.(*Class), args, pos)
	default:
		return Null, throwCtrl(RuntimeErrorf(ErrNotCallable,
			"value of type %s is not callable", TypeName(callee)), pos)
	}
}

// callFun applies a user-defined function: arity check, a fresh frame over
// the closure environment with parameters bound, then the body. Falling off
// the end yields null.
func (ip *Interpreter) callFun(fn *Fun, args []Value, pos Position) (Value, control) {
	if len(args) != len(fn.Params) {
		return Null, throwCtrl(RuntimeErrorf(ErrArity,
			"%s() expects %d argument(s), got %d", fn.Name, len(fn.Params), len(args)), pos)
	}
	if ctrl := ip.enter(pos); ctrl.kind != ctrlNone {
		return Null, ctrl
	}
	frame := NewEnv(fn.Env)
	for i, p := range fn.Params {
		_ = frame.Declare(p, args[i], false)
	}
	ctrl := ip.execBlock(fn.Body, frame)
	ip.depth--
	switch ctrl.kind {
	case ctrlReturn:
		return ctrl.value, ctrlOK
	case ctrlThrow:
		return Null, ctrl
	case ctrlBreak, ctrlContinue:
		// Parsed source cannot put these in a function body unguarded by a
		// loop, but a hand-built or decoded body can.
		return Null, throwCtrl(strayControl(ctrl, pos), pos)
	default:
		return Null, ctrlOK
	}
}
