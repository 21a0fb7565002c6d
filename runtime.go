// runtime.go
//
// The class/instance object model: class declaration, instantiation,
// method resolution along the superclass chain, `this` binding, and the
// property access rules used by the evaluator.

package nexus

// Class is a runtime class object. Super is nil for base classes. Methods
// holds the class's own methods only; inherited ones are found by walking
// the chain.
type Class struct {
	Name    string
	Super   *Class
	Methods map[string]*Fun
}

// Instance is an object created by calling a class. Fields starts empty;
// any field name can be assigned at any time.
type Instance struct {
	Class  *Class
	Fields map[string]Value
}

// findMethod resolves name on the class or the nearest ancestor that
// declares it.
func (c *Class) findMethod(name string) *Fun {
	for k := c; k != nil; k = k.Super {
		if m, ok := k.Methods[name]; ok {
			return m
		}
	}
	return nil
}

// bind closes a method over an environment where `this` is the instance.
// The binding is constant, so method bodies cannot reassign this.
func (inst *Instance) bind(m *Fun) Value {
	thisEnv := NewEnv(m.Env)
	_ = thisEnv.Declare("this", InstanceVal(inst), true)
	return FunVal(&Fun{Name: m.Name, Params: m.Params, Body: m.Body, Env: thisEnv})
}

// resolveForCall resolves obj.name when the result will be called: a field
// shadows a method of the same name, and a name resolving to neither is an
// UndefinedMethodError (the permissive null of plain property reads would
// only surface as a confusing NotCallableError here).
func (inst *Instance) resolveForCall(name string) (Value, *RuntimeError) {
	if v, ok := inst.Fields[name]; ok {
		return v, nil
	}
	if m := inst.Class.findMethod(name); m != nil {
		return inst.bind(m), nil
	}
	return Null, RuntimeErrorf(ErrUndefinedMethod,
		"undefined method '%s' on %s instance", name, inst.Class.Name)
}

// getProperty reads obj.name. On an instance the order is field, then bound
// method, then null for anything undefined. Non-instances have no
// properties.
func getProperty(obj Value, name string) (Value, *RuntimeError) {
	if obj.Tag != VTInstance {
		return Null, RuntimeErrorf(ErrType, "only instances have properties, got %s", TypeName(obj))
	}
	inst := obj.Data.(*Instance)
	if v, ok := inst.Fields[name]; ok {
		return v, nil
	}
	if m := inst.Class.findMethod(name); m != nil {
		return inst.bind(m), nil
	}
	return Null, nil
}

// setProperty writes obj.name = v, creating the field if needed.
func setProperty(obj Value, name string, v Value) *RuntimeError {
	if obj.Tag != VTInstance {
		return RuntimeErrorf(ErrType, "only instances have fields, got %s", TypeName(obj))
	}
	obj.Data.(*Instance).Fields[name] = v
	return nil
}

// execClassDecl evaluates a class declaration: resolve the superclass if
// named, build the method table, and bind the class in the current frame.
func (ip *Interpreter) execClassDecl(s *ClassDecl, env *Env) control {
	var super *Class
	if s.SuperName != "" {
		sv, err := env.Get(s.SuperName)
		if err != nil {
			return throwCtrl(err, s.Position)
		}
		if sv.Tag != VTClass {
			return throwCtrl(RuntimeErrorf(ErrType,
				"superclass of %s must be a class, got %s", s.Name, TypeName(sv)), s.Position)
		}
		super = sv.Data.(*Class)
	}

	methods := make(map[string]*Fun, len(s.Methods))
	for _, m := range s.Methods {
		methods[m.Name] = &Fun{Name: m.Name, Params: m.Params, Body: m.Body, Env: env}
	}

	cls := &Class{Name: s.Name, Super: super, Methods: methods}
	if err := env.Declare(s.Name, ClassVal(cls), false); err != nil {
		return throwCtrl(err, s.Position)
	}
	return ctrlOK
}

// instantiate creates an instance of cls and runs init if any ancestor
// declares one. init's return value is discarded; the call always yields
// the new instance. Calling a class with arguments but no init anywhere in
// the chain is an arity error.
func (ip *Interpreter) instantiate(cls *Class, args []Value, pos Position) (Value, control) {
	inst := &Instance{Class: cls, Fields: map[string]Value{}}
	if init := cls.findMethod("init"); init != nil {
		bound := inst.bind(init)
		if _, ctrl := ip.callFun(bound.Data.(*Fun), args, pos); ctrl.kind != ctrlNone {
			return Null, ctrl
		}
	} else if len(args) != 0 {
		return Null, throwCtrl(RuntimeErrorf(ErrArity,
			"%s() expects 0 argument(s), got %d", cls.Name, len(args)), pos)
	}
	return InstanceVal(inst), ctrlOK
}
