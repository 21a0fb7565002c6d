// parser.go — recursive-descent parser producing the typed AST in ast.go.
//
// Statements are parsed by a one-token dispatch, expressions by an explicit
// precedence ladder (assignment < || < && < equality < relational < additive
// < multiplicative < unary < call/property < primary). Parsing is fail-fast:
// the first malformed construct aborts with a *ParseError and nothing
// executes. In interactive mode, running out of tokens mid-construct marks
// the error incomplete so a REPL can ask for a continuation line instead.
package nexus

import "fmt"

// ----- errors -----

// ParseError reports the first malformed construct. Incomplete marks errors
// caused by reaching end of input in interactive mode.
type ParseError struct {
	Line       int
	Col        int
	Msg        string
	Incomplete bool
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("PARSE ERROR at %d:%d: %s", e.Line, e.Col, e.Msg)
}

// ----- public API -----

// ParseProgram parses a complete source string and returns its Program.
func ParseProgram(src string) (*Program, error) {
	toks, err := NewLexer(src).Scan()
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	return p.program()
}

// ParseProgramInteractive parses in REPL-friendly mode: unterminated
// constructs at end of input produce errors for which IsIncomplete reports
// true instead of hard failures.
func ParseProgramInteractive(src string) (*Program, error) {
	toks, err := NewLexer(src).Scan()
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks, interactive: true}
	return p.program()
}

// ----- parser state -----

type parser struct {
	toks        []Token
	i           int
	interactive bool

	loopDepth int // static nesting of loops, for break/continue placement
	funcDepth int // static nesting of function bodies, for return placement
}

// ----- token basics & helpers -----

func (p *parser) atEnd() bool { return p.peek().Type == EOF }

func (p *parser) peek() Token {
	if p.i >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.i]
}

func (p *parser) prev() Token { return p.toks[p.i-1] }

func (p *parser) check(tt TokenType) bool { return p.peek().Type == tt }

func (p *parser) match(tt ...TokenType) bool {
	for _, t := range tt {
		if p.peek().Type == t {
			p.i++
			return true
		}
	}
	return false
}

func describeToken(t Token) string {
	if t.Type == EOF {
		return "end of input"
	}
	return fmt.Sprintf("'%s'", t.Lexeme)
}

// fail builds a ParseError at the current token; at end of input in
// interactive mode the error is marked incomplete.
func (p *parser) fail(msg string) error {
	g := p.peek()
	if g.Type == EOF && p.interactive {
		return &ParseError{Line: g.Line, Col: g.Col, Msg: msg, Incomplete: true}
	}
	return &ParseError{
		Line: g.Line,
		Col:  g.Col,
		Msg:  fmt.Sprintf("%s, found %s", msg, describeToken(g)),
	}
}

func (p *parser) failAt(tok Token, msg string) error {
	return &ParseError{Line: tok.Line, Col: tok.Col, Msg: msg}
}

func (p *parser) need(tt TokenType, msg string) (Token, error) {
	if p.match(tt) {
		return p.prev(), nil
	}
	return Token{}, p.fail(msg)
}

func pos(t Token) Position { return Position{Line: t.Line, Col: t.Col} }

// ----- program & statements -----

func (p *parser) program() (*Program, error) {
	prog := &Program{}
	for !p.atEnd() {
		if p.match(SEMICOLON) {
			continue
		}
		st, err := p.declaration()
		if err != nil {
			return nil, err
		}
		prog.Body = append(prog.Body, st)
	}
	return prog, nil
}

// declaration parses any statement, including binding forms.
func (p *parser) declaration() (Stmt, error) {
	switch {
	case p.match(VAR):
		st, err := p.varDeclCore(p.prev())
		if err != nil {
			return nil, err
		}
		p.match(SEMICOLON)
		return st, nil
	case p.match(CONST):
		return p.constDecl(p.prev())
	case p.match(FUNCTION):
		return p.funcDecl(p.prev())
	case p.match(CLASS):
		return p.classDecl(p.prev())
	default:
		return p.statement()
	}
}

// varDeclCore parses "name (= expr)?" after the consumed 'var'. The caller
// handles the terminator: a for-loop initializer needs the ';' itself.
func (p *parser) varDeclCore(kw Token) (*VarDecl, error) {
	name, err := p.need(ID, "expected variable name after 'var'")
	if err != nil {
		return nil, err
	}
	var init Expr
	if p.match(ASSIGN) {
		if init, err = p.expression(); err != nil {
			return nil, err
		}
	}
	return &VarDecl{Position: pos(kw), Name: name.Lexeme, Init: init}, nil
}

func (p *parser) constDecl(kw Token) (Stmt, error) {
	name, err := p.need(ID, "expected constant name after 'const'")
	if err != nil {
		return nil, err
	}
	if _, err := p.need(ASSIGN, "expected '=' after constant name"); err != nil {
		return nil, err
	}
	init, err := p.expression()
	if err != nil {
		return nil, err
	}
	p.match(SEMICOLON)
	return &ConstDecl{Position: pos(kw), Name: name.Lexeme, Init: init}, nil
}

func (p *parser) funcDecl(kw Token) (*FuncDecl, error) {
	name, err := p.need(ID, "expected function name after 'func'")
	if err != nil {
		return nil, err
	}
	if _, err := p.need(LROUND, "expected '(' after function name"); err != nil {
		return nil, err
	}
	var params []string
	if !p.check(RROUND) {
		for {
			param, err := p.need(ID, "expected parameter name")
			if err != nil {
				return nil, err
			}
			params = append(params, param.Lexeme)
			if !p.match(COMMA) {
				break
			}
		}
	}
	if _, err := p.need(RROUND, "expected ')' after parameters"); err != nil {
		return nil, err
	}

	// A function body is its own placement context: break/continue inside it
	// must bind to loops inside it, and return becomes legal.
	savedLoops := p.loopDepth
	p.loopDepth = 0
	p.funcDepth++
	body, err := p.block()
	p.funcDepth--
	p.loopDepth = savedLoops
	if err != nil {
		return nil, err
	}
	return &FuncDecl{Position: pos(kw), Name: name.Lexeme, Params: params, Body: body}, nil
}

func (p *parser) classDecl(kw Token) (Stmt, error) {
	name, err := p.need(ID, "expected class name after 'class'")
	if err != nil {
		return nil, err
	}
	super := ""
	if p.match(LESS) {
		superTok, err := p.need(ID, "expected superclass name after '<'")
		if err != nil {
			return nil, err
		}
		super = superTok.Lexeme
	}
	if _, err := p.need(LCURLY, "expected '{' before class body"); err != nil {
		return nil, err
	}
	var methods []*FuncDecl
	for !p.check(RCURLY) && !p.atEnd() {
		fn, err := p.need(FUNCTION, "expected 'func' method declaration in class body")
		if err != nil {
			return nil, err
		}
		m, err := p.funcDecl(fn)
		if err != nil {
			return nil, err
		}
		methods = append(methods, m)
	}
	if _, err := p.need(RCURLY, "expected '}' after class body"); err != nil {
		return nil, err
	}
	return &ClassDecl{Position: pos(kw), Name: name.Lexeme, SuperName: super, Methods: methods}, nil
}

func (p *parser) statement() (Stmt, error) {
	switch {
	case p.match(IF):
		return p.ifRest(p.prev())
	case p.match(WHILE):
		return p.whileStmt(p.prev())
	case p.match(FOR):
		return p.forStmt(p.prev())
	case p.match(RETURN):
		return p.returnStmt(p.prev())
	case p.match(BREAK):
		kw := p.prev()
		if p.loopDepth == 0 {
			return nil, p.failAt(kw, "'break' outside of a loop")
		}
		p.match(SEMICOLON)
		return &Break{Position: pos(kw)}, nil
	case p.match(CONTINUE):
		kw := p.prev()
		if p.loopDepth == 0 {
			return nil, p.failAt(kw, "'continue' outside of a loop")
		}
		p.match(SEMICOLON)
		return &Continue{Position: pos(kw)}, nil
	case p.match(TRY):
		return p.tryStmt(p.prev())
	case p.check(LCURLY):
		return p.block()
	default:
		return p.exprStmt()
	}
}

func (p *parser) block() (*Block, error) {
	open, err := p.need(LCURLY, "expected '{'")
	if err != nil {
		return nil, err
	}
	blk := &Block{Position: pos(open)}
	for !p.check(RCURLY) && !p.atEnd() {
		if p.match(SEMICOLON) {
			continue
		}
		st, err := p.declaration()
		if err != nil {
			return nil, err
		}
		blk.Stmts = append(blk.Stmts, st)
	}
	if _, err := p.need(RCURLY, "expected '}' after block"); err != nil {
		return nil, err
	}
	return blk, nil
}

// bodyStmt parses a loop or conditional body: either a block or one single
// non-declaration statement ("if (j == 5) continue;").
func (p *parser) bodyStmt() (Stmt, error) {
	if p.check(LCURLY) {
		return p.block()
	}
	return p.statement()
}

// ifRest parses the remainder of an if (or elif) after its keyword.
// "elif" chains become nested Ifs in the Else slot.
func (p *parser) ifRest(kw Token) (Stmt, error) {
	if _, err := p.need(LROUND, "expected '(' after '"+kw.Lexeme+"'"); err != nil {
		return nil, err
	}
	cond, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.need(RROUND, "expected ')' after condition"); err != nil {
		return nil, err
	}
	then, err := p.bodyStmt()
	if err != nil {
		return nil, err
	}
	var els Stmt
	if p.match(ELIF) {
		if els, err = p.ifRest(p.prev()); err != nil {
			return nil, err
		}
	} else if p.match(ELSE) {
		if els, err = p.bodyStmt(); err != nil {
			return nil, err
		}
	}
	return &If{Position: pos(kw), Cond: cond, Then: then, Else: els}, nil
}

func (p *parser) whileStmt(kw Token) (Stmt, error) {
	if _, err := p.need(LROUND, "expected '(' after 'while'"); err != nil {
		return nil, err
	}
	cond, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.need(RROUND, "expected ')' after condition"); err != nil {
		return nil, err
	}
	p.loopDepth++
	body, err := p.bodyStmt()
	p.loopDepth--
	if err != nil {
		return nil, err
	}
	return &While{Position: pos(kw), Cond: cond, Body: body}, nil
}

func (p *parser) forStmt(kw Token) (Stmt, error) {
	if _, err := p.need(LROUND, "expected '(' after 'for'"); err != nil {
		return nil, err
	}

	var init Stmt
	if !p.match(SEMICOLON) {
		var err error
		if p.match(VAR) {
			init, err = p.varDeclCore(p.prev())
		} else {
			init, err = p.exprStmtNoSemi()
		}
		if err != nil {
			return nil, err
		}
		if _, err := p.need(SEMICOLON, "expected ';' after loop initializer"); err != nil {
			return nil, err
		}
	}

	var cond Expr
	if !p.check(SEMICOLON) {
		var err error
		if cond, err = p.expression(); err != nil {
			return nil, err
		}
	}
	if _, err := p.need(SEMICOLON, "expected ';' after loop condition"); err != nil {
		return nil, err
	}

	var update Expr
	if !p.check(RROUND) {
		var err error
		if update, err = p.expression(); err != nil {
			return nil, err
		}
	}
	if _, err := p.need(RROUND, "expected ')' after for clauses"); err != nil {
		return nil, err
	}

	p.loopDepth++
	body, err := p.bodyStmt()
	p.loopDepth--
	if err != nil {
		return nil, err
	}
	return &For{Position: pos(kw), Init: init, Cond: cond, Update: update, Body: body}, nil
}

func (p *parser) returnStmt(kw Token) (Stmt, error) {
	if p.funcDepth == 0 {
		return nil, p.failAt(kw, "'return' outside of a function")
	}
	var value Expr
	if !p.check(SEMICOLON) && !p.check(RCURLY) && !p.atEnd() {
		var err error
		if value, err = p.expression(); err != nil {
			return nil, err
		}
	}
	p.match(SEMICOLON)
	return &Return{Position: pos(kw), Value: value}, nil
}

func (p *parser) tryStmt(kw Token) (Stmt, error) {
	body, err := p.block()
	if err != nil {
		return nil, err
	}
	if _, err := p.need(CATCH, "expected 'catch' after try block"); err != nil {
		return nil, err
	}
	if _, err := p.need(LROUND, "expected '(' after 'catch'"); err != nil {
		return nil, err
	}
	name, err := p.need(ID, "expected catch variable name")
	if err != nil {
		return nil, err
	}
	if _, err := p.need(RROUND, "expected ')' after catch variable"); err != nil {
		return nil, err
	}
	catch, err := p.block()
	if err != nil {
		return nil, err
	}
	return &Try{Position: pos(kw), Body: body, CatchName: name.Lexeme, Catch: catch}, nil
}

func (p *parser) exprStmtNoSemi() (Stmt, error) {
	e, err := p.expression()
	if err != nil {
		return nil, err
	}
	return &ExprStmt{Position: e.Pos(), Expression: e}, nil
}

func (p *parser) exprStmt() (Stmt, error) {
	st, err := p.exprStmtNoSemi()
	if err != nil {
		return nil, err
	}
	p.match(SEMICOLON)
	return st, nil
}

// ----- expressions (precedence ladder) -----

func (p *parser) expression() (Expr, error) {
	return p.assignment()
}

func (p *parser) assignment() (Expr, error) {
	left, err := p.logicalOr()
	if err != nil {
		return nil, err
	}
	if p.match(ASSIGN) {
		eq := p.prev()
		value, err := p.assignment() // right-associative
		if err != nil {
			return nil, err
		}
		switch target := left.(type) {
		case *Identifier:
			return &Assign{Position: target.Position, Name: target.Name, Value: value}, nil
		case *Get:
			return &Set{Position: target.Position, Object: target.Object, Name: target.Name, Value: value}, nil
		default:
			return nil, p.failAt(eq, "invalid assignment target")
		}
	}
	return left, nil
}

func (p *parser) logicalOr() (Expr, error) {
	left, err := p.logicalAnd()
	if err != nil {
		return nil, err
	}
	for p.match(OR) {
		op := p.prev()
		right, err := p.logicalAnd()
		if err != nil {
			return nil, err
		}
		left = &Logical{Position: pos(op), Op: op.Lexeme, Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) logicalAnd() (Expr, error) {
	left, err := p.equality()
	if err != nil {
		return nil, err
	}
	for p.match(AND) {
		op := p.prev()
		right, err := p.equality()
		if err != nil {
			return nil, err
		}
		left = &Logical{Position: pos(op), Op: op.Lexeme, Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) equality() (Expr, error) {
	left, err := p.relational()
	if err != nil {
		return nil, err
	}
	for p.match(EQ, NEQ) {
		op := p.prev()
		right, err := p.relational()
		if err != nil {
			return nil, err
		}
		left = &Binary{Position: pos(op), Op: op.Lexeme, Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) relational() (Expr, error) {
	left, err := p.additive()
	if err != nil {
		return nil, err
	}
	for p.match(LESS, LESS_EQ, GREATER, GREATER_EQ) {
		op := p.prev()
		right, err := p.additive()
		if err != nil {
			return nil, err
		}
		left = &Binary{Position: pos(op), Op: op.Lexeme, Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) additive() (Expr, error) {
	left, err := p.multiplicative()
	if err != nil {
		return nil, err
	}
	for p.match(PLUS, MINUS) {
		op := p.prev()
		right, err := p.multiplicative()
		if err != nil {
			return nil, err
		}
		left = &Binary{Position: pos(op), Op: op.Lexeme, Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) multiplicative() (Expr, error) {
	left, err := p.unary()
	if err != nil {
		return nil, err
	}
	for p.match(MULT, DIV, MOD) {
		op := p.prev()
		right, err := p.unary()
		if err != nil {
			return nil, err
		}
		left = &Binary{Position: pos(op), Op: op.Lexeme, Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) unary() (Expr, error) {
	if p.match(BANG, MINUS) {
		op := p.prev()
		operand, err := p.unary()
		if err != nil {
			return nil, err
		}
		return &Unary{Position: pos(op), Op: op.Lexeme, Operand: operand}, nil
	}
	return p.callExpr()
}

func (p *parser) callExpr() (Expr, error) {
	e, err := p.primary()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.match(LROUND):
			open := p.prev()
			var args []Expr
			if !p.check(RROUND) {
				for {
					arg, err := p.expression()
					if err != nil {
						return nil, err
					}
					args = append(args, arg)
					if !p.match(COMMA) {
						break
					}
				}
			}
			if _, err := p.need(RROUND, "expected ')' after arguments"); err != nil {
				return nil, err
			}
			e = &Call{Position: pos(open), Callee: e, Args: args}
		case p.match(PERIOD):
			name, err := p.need(ID, "expected property name after '.'")
			if err != nil {
				return nil, err
			}
			e = &Get{Position: pos(name), Object: e, Name: name.Lexeme}
		default:
			return e, nil
		}
	}
}

func (p *parser) primary() (Expr, error) {
	switch {
	case p.match(NUMBER):
		t := p.prev()
		return &Literal{Position: pos(t), Value: t.Literal.(float64)}, nil
	case p.match(STRING):
		t := p.prev()
		return &Literal{Position: pos(t), Value: t.Literal.(string)}, nil
	case p.match(BOOLEAN):
		t := p.prev()
		return &Literal{Position: pos(t), Value: t.Literal.(bool)}, nil
	case p.match(NULL):
		return &Literal{Position: pos(p.prev()), Value: nil}, nil
	case p.match(ID):
		t := p.prev()
		return &Identifier{Position: pos(t), Name: t.Lexeme}, nil
	case p.match(LROUND):
		e, err := p.expression()
		if err != nil {
			return nil, err
		}
		if _, err := p.need(RROUND, "expected ')' after expression"); err != nil {
			return nil, err
		}
		return e, nil
	default:
		return nil, p.fail("expected expression")
	}
}
