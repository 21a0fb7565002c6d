// ast_json.go — the .nvast program codec.
//
// Programs serialize as JSON trees of {"type": ..., "line": ..., "col": ...}
// nodes so that a parsed script can be stored and executed later without
// re-parsing. Decoding validates the discriminator and required fields of
// every node; a malformed document reports the offending node type.

package nexus

import (
	stdjson "encoding/json"
	"fmt"

	"github.com/oarkflow/json"
)

// EncodeProgram renders prog as indented JSON suitable for a .nvast file.
func EncodeProgram(prog *Program) ([]byte, error) {
	body := make([]interface{}, len(prog.Body))
	for i, st := range prog.Body {
		body[i] = encodeStmt(st)
	}
	doc := map[string]interface{}{"type": "Program", "body": body}
	// oarkflow/json v0.0.5 (the newest version buildable with Go 1.21) has no
	// MarshalIndent; later versions delegate it to encoding/json.MarshalIndent.
	return stdjson.MarshalIndent(doc, "", "  ")
}

// DecodeProgram parses a .nvast document produced by EncodeProgram.
func DecodeProgram(data []byte) (*Program, error) {
	var doc map[string]interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("malformed program document: %w", err)
	}
	if t, _ := doc["type"].(string); t != "Program" {
		return nil, fmt.Errorf("malformed program document: root type %q", doc["type"])
	}
	rawBody, ok := doc["body"].([]interface{})
	if !ok {
		return nil, fmt.Errorf("malformed program document: body is not a list")
	}
	prog := &Program{}
	for _, raw := range rawBody {
		st, err := decodeStmt(raw)
		if err != nil {
			return nil, err
		}
		prog.Body = append(prog.Body, st)
	}
	return prog, nil
}

// ---- encoding ----

func nodeMap(typ string, pos Position) map[string]interface{} {
	return map[string]interface{}{"type": typ, "line": pos.Line, "col": pos.Col}
}

func encodeStmt(st Stmt) map[string]interface{} {
	switch s := st.(type) {
	case *VarDecl:
		m := nodeMap("VariableDeclaration", s.Position)
		m["name"] = s.Name
		m["init"] = encodeOptExpr(s.Init)
		return m
	case *ConstDecl:
		m := nodeMap("ConstDeclaration", s.Position)
		m["name"] = s.Name
		m["init"] = encodeExpr(s.Init)
		return m
	case *FuncDecl:
		m := nodeMap("FunctionDeclaration", s.Position)
		m["name"] = s.Name
		m["params"] = stringsToIfaces(s.Params)
		m["body"] = encodeStmt(s.Body)
		return m
	case *ClassDecl:
		m := nodeMap("ClassDeclaration", s.Position)
		m["name"] = s.Name
		m["superclass"] = s.SuperName
		methods := make([]interface{}, len(s.Methods))
		for i, meth := range s.Methods {
			methods[i] = encodeStmt(meth)
		}
		m["methods"] = methods
		return m
	case *Block:
		m := nodeMap("BlockStatement", s.Position)
		body := make([]interface{}, len(s.Stmts))
		for i, inner := range s.Stmts {
			body[i] = encodeStmt(inner)
		}
		m["body"] = body
		return m
	case *If:
		m := nodeMap("IfStatement", s.Position)
		m["test"] = encodeExpr(s.Cond)
		m["consequent"] = encodeStmt(s.Then)
		if s.Else != nil {
			m["alternate"] = encodeStmt(s.Else)
		} else {
			m["alternate"] = nil
		}
		return m
	case *While:
		m := nodeMap("WhileStatement", s.Position)
		m["test"] = encodeExpr(s.Cond)
		m["body"] = encodeStmt(s.Body)
		return m
	case *For:
		m := nodeMap("ForStatement", s.Position)
		if s.Init != nil {
			m["init"] = encodeStmt(s.Init)
		} else {
			m["init"] = nil
		}
		m["test"] = encodeOptExpr(s.Cond)
		m["update"] = encodeOptExpr(s.Update)
		m["body"] = encodeStmt(s.Body)
		return m
	case *Break:
		return nodeMap("BreakStatement", s.Position)
	case *Continue:
		return nodeMap("ContinueStatement", s.Position)
	case *Return:
		m := nodeMap("ReturnStatement", s.Position)
		m["argument"] = encodeOptExpr(s.Value)
		return m
	case *Try:
		m := nodeMap("TryStatement", s.Position)
		m["block"] = encodeStmt(s.Body)
		m["param"] = s.CatchName
		m["handler"] = encodeStmt(s.Catch)
		return m
	case *ExprStmt:
		m := nodeMap("ExpressionStatement", s.Position)
		m["expression"] = encodeExpr(s.Expression)
		return m
	}
	return nodeMap("UnknownStatement", Position{})
}

func encodeExpr(e Expr) map[string]interface{} {
	switch x := e.(type) {
	case *Literal:
		m := nodeMap("Literal", x.Position)
		m["value"] = x.Value
		return m
	case *Identifier:
		m := nodeMap("Identifier", x.Position)
		m["name"] = x.Name
		return m
	case *Unary:
		m := nodeMap("UnaryExpression", x.Position)
		m["operator"] = x.Op
		m["argument"] = encodeExpr(x.Operand)
		return m
	case *Binary:
		m := nodeMap("BinaryExpression", x.Position)
		m["operator"] = x.Op
		m["left"] = encodeExpr(x.Left)
		m["right"] = encodeExpr(x.Right)
		return m
	case *Logical:
		m := nodeMap("LogicalExpression", x.Position)
		m["operator"] = x.Op
		m["left"] = encodeExpr(x.Left)
		m["right"] = encodeExpr(x.Right)
		return m
	case *Assign:
		m := nodeMap("AssignmentExpression", x.Position)
		m["name"] = x.Name
		m["value"] = encodeExpr(x.Value)
		return m
	case *Call:
		m := nodeMap("CallExpression", x.Position)
		m["callee"] = encodeExpr(x.Callee)
		args := make([]interface{}, len(x.Args))
		for i, a := range x.Args {
			args[i] = encodeExpr(a)
		}
		m["arguments"] = args
		return m
	case *Get:
		m := nodeMap("GetExpression", x.Position)
		m["object"] = encodeExpr(x.Object)
		m["name"] = x.Name
		return m
	case *Set:
		m := nodeMap("SetExpression", x.Position)
		m["object"] = encodeExpr(x.Object)
		m["name"] = x.Name
		m["value"] = encodeExpr(x.Value)
		return m
	}
	return nodeMap("UnknownExpression", Position{})
}

func encodeOptExpr(e Expr) interface{} {
	if e == nil {
		return nil
	}
	return encodeExpr(e)
}

func stringsToIfaces(ss []string) []interface{} {
	out := make([]interface{}, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

// ---- decoding ----

func asNode(raw interface{}) (map[string]interface{}, string, error) {
	m, ok := raw.(map[string]interface{})
	if !ok {
		return nil, "", fmt.Errorf("malformed node: %T is not an object", raw)
	}
	t, ok := m["type"].(string)
	if !ok {
		return nil, "", fmt.Errorf("malformed node: missing type discriminator")
	}
	return m, t, nil
}

func nodePos(m map[string]interface{}) Position {
	p := Position{}
	if f, ok := m["line"].(float64); ok {
		p.Line = int(f)
	}
	if f, ok := m["col"].(float64); ok {
		p.Col = int(f)
	}
	return p
}

func fieldStr(m map[string]interface{}, typ, key string) (string, error) {
	s, ok := m[key].(string)
	if !ok {
		return "", fmt.Errorf("malformed %s: missing %s", typ, key)
	}
	return s, nil
}

func decodeStmt(raw interface{}) (Stmt, error) {
	m, typ, err := asNode(raw)
	if err != nil {
		return nil, err
	}
	pos := nodePos(m)

	switch typ {
	case "VariableDeclaration":
		name, err := fieldStr(m, typ, "name")
		if err != nil {
			return nil, err
		}
		init, err := decodeOptExpr(m["init"])
		if err != nil {
			return nil, err
		}
		return &VarDecl{Position: pos, Name: name, Init: init}, nil

	case "ConstDeclaration":
		name, err := fieldStr(m, typ, "name")
		if err != nil {
			return nil, err
		}
		init, err := decodeExpr(m["init"])
		if err != nil {
			return nil, err
		}
		return &ConstDecl{Position: pos, Name: name, Init: init}, nil

	case "FunctionDeclaration":
		return decodeFuncDecl(m, pos)

	case "ClassDeclaration":
		name, err := fieldStr(m, typ, "name")
		if err != nil {
			return nil, err
		}
		superName, _ := m["superclass"].(string)
		rawMethods, ok := m["methods"].([]interface{})
		if !ok {
			return nil, fmt.Errorf("malformed ClassDeclaration: methods is not a list")
		}
		var methods []*FuncDecl
		for _, rm := range rawMethods {
			mm, mt, err := asNode(rm)
			if err != nil {
				return nil, err
			}
			if mt != "FunctionDeclaration" {
				return nil, fmt.Errorf("malformed ClassDeclaration: method of type %s", mt)
			}
			fd, err := decodeFuncDecl(mm, nodePos(mm))
			if err != nil {
				return nil, err
			}
			methods = append(methods, fd)
		}
		return &ClassDecl{Position: pos, Name: name, SuperName: superName, Methods: methods}, nil

	case "BlockStatement":
		return decodeBlock(m, pos)

	case "IfStatement":
		test, err := decodeExpr(m["test"])
		if err != nil {
			return nil, err
		}
		then, err := decodeStmt(m["consequent"])
		if err != nil {
			return nil, err
		}
		var alt Stmt
		if m["alternate"] != nil {
			if alt, err = decodeStmt(m["alternate"]); err != nil {
				return nil, err
			}
		}
		return &If{Position: pos, Cond: test, Then: then, Else: alt}, nil

	case "WhileStatement":
		test, err := decodeExpr(m["test"])
		if err != nil {
			return nil, err
		}
		body, err := decodeStmt(m["body"])
		if err != nil {
			return nil, err
		}
		return &While{Position: pos, Cond: test, Body: body}, nil

	case "ForStatement":
		var init Stmt
		var err error
		if m["init"] != nil {
			if init, err = decodeStmt(m["init"]); err != nil {
				return nil, err
			}
		}
		test, err := decodeOptExpr(m["test"])
		if err != nil {
			return nil, err
		}
		update, err := decodeOptExpr(m["update"])
		if err != nil {
			return nil, err
		}
		body, err := decodeStmt(m["body"])
		if err != nil {
			return nil, err
		}
		return &For{Position: pos, Init: init, Cond: test, Update: update, Body: body}, nil

	case "BreakStatement":
		return &Break{Position: pos}, nil

	case "ContinueStatement":
		return &Continue{Position: pos}, nil

	case "ReturnStatement":
		arg, err := decodeOptExpr(m["argument"])
		if err != nil {
			return nil, err
		}
		return &Return{Position: pos, Value: arg}, nil

	case "TryStatement":
		body, err := decodeStmtAsBlock(m["block"])
		if err != nil {
			return nil, err
		}
		param, err := fieldStr(m, typ, "param")
		if err != nil {
			return nil, err
		}
		handler, err := decodeStmtAsBlock(m["handler"])
		if err != nil {
			return nil, err
		}
		return &Try{Position: pos, Body: body, CatchName: param, Catch: handler}, nil

	case "ExpressionStatement":
		e, err := decodeExpr(m["expression"])
		if err != nil {
			return nil, err
		}
		return &ExprStmt{Position: pos, Expression: e}, nil
	}
	return nil, fmt.Errorf("unknown statement type %q", typ)
}

func decodeFuncDecl(m map[string]interface{}, pos Position) (*FuncDecl, error) {
	name, err := fieldStr(m, "FunctionDeclaration", "name")
	if err != nil {
		return nil, err
	}
	rawParams, ok := m["params"].([]interface{})
	if !ok {
		return nil, fmt.Errorf("malformed FunctionDeclaration: params is not a list")
	}
	var params []string
	for _, rp := range rawParams {
		p, ok := rp.(string)
		if !ok {
			return nil, fmt.Errorf("malformed FunctionDeclaration: non-string parameter")
		}
		params = append(params, p)
	}
	body, err := decodeStmtAsBlock(m["body"])
	if err != nil {
		return nil, err
	}
	return &FuncDecl{Position: pos, Name: name, Params: params, Body: body}, nil
}

func decodeBlock(m map[string]interface{}, pos Position) (*Block, error) {
	rawBody, ok := m["body"].([]interface{})
	if !ok {
		return nil, fmt.Errorf("malformed BlockStatement: body is not a list")
	}
	b := &Block{Position: pos}
	for _, raw := range rawBody {
		st, err := decodeStmt(raw)
		if err != nil {
			return nil, err
		}
		b.Stmts = append(b.Stmts, st)
	}
	return b, nil
}

func decodeOptExpr(raw interface{}) (Expr, error) {
	if raw == nil {
		return nil, nil
	}
	return decodeExpr(raw)
}

func decodeStmtAsBlock(raw interface{}) (*Block, error) {
	st, err := decodeStmt(raw)
	if err != nil {
		return nil, err
	}
	b, ok := st.(*Block)
	if !ok {
		return nil, fmt.Errorf("expected BlockStatement, got %T", st)
	}
	return b, nil
}

func decodeExpr(raw interface{}) (Expr, error) {
	m, typ, err := asNode(raw)
	if err != nil {
		return nil, err
	}
	pos := nodePos(m)

	switch typ {
	case "Literal":
		switch v := m["value"].(type) {
		case nil, bool, float64, string:
			return &Literal{Position: pos, Value: v}, nil
		default:
			return nil, fmt.Errorf("malformed Literal: value of type %T", v)
		}

	case "Identifier":
		name, err := fieldStr(m, typ, "name")
		if err != nil {
			return nil, err
		}
		return &Identifier{Position: pos, Name: name}, nil

	case "UnaryExpression":
		op, err := fieldStr(m, typ, "operator")
		if err != nil {
			return nil, err
		}
		arg, err := decodeExpr(m["argument"])
		if err != nil {
			return nil, err
		}
		return &Unary{Position: pos, Op: op, Operand: arg}, nil

	case "BinaryExpression", "LogicalExpression":
		op, err := fieldStr(m, typ, "operator")
		if err != nil {
			return nil, err
		}
		left, err := decodeExpr(m["left"])
		if err != nil {
			return nil, err
		}
		right, err := decodeExpr(m["right"])
		if err != nil {
			return nil, err
		}
		if typ == "LogicalExpression" {
			return &Logical{Position: pos, Op: op, Left: left, Right: right}, nil
		}
		return &Binary{Position: pos, Op: op, Left: left, Right: right}, nil

	case "AssignmentExpression":
		name, err := fieldStr(m, typ, "name")
		if err != nil {
			return nil, err
		}
		value, err := decodeExpr(m["value"])
		if err != nil {
			return nil, err
		}
		return &Assign{Position: pos, Name: name, Value: value}, nil

	case "CallExpression":
		callee, err := decodeExpr(m["callee"])
		if err != nil {
			return nil, err
		}
		rawArgs, ok := m["arguments"].([]interface{})
		if !ok {
			return nil, fmt.Errorf("malformed CallExpression: arguments is not a list")
		}
		var args []Expr
		for _, ra := range rawArgs {
			a, err := decodeExpr(ra)
			if err != nil {
				return nil, err
			}
			args = append(args, a)
		}
		return &Call{Position: pos, Callee: callee, Args: args}, nil

	case "GetExpression":
		obj, err := decodeExpr(m["object"])
		if err != nil {
			return nil, err
		}
		name, err := fieldStr(m, typ, "name")
		if err != nil {
			return nil, err
		}
		return &Get{Position: pos, Object: obj, Name: name}, nil

	case "SetExpression":
		obj, err := decodeExpr(m["object"])
		if err != nil {
			return nil, err
		}
		name, err := fieldStr(m, typ, "name")
		if err != nil {
			return nil, err
		}
		value, err := decodeExpr(m["value"])
		if err != nil {
			return nil, err
		}
		return &Set{Position: pos, Object: obj, Name: name, Value: value}, nil
	}
	return nil, fmt.Errorf("unknown expression type %q", typ)
}
