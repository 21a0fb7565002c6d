// ast.go — the node types produced by the parser. Pure data, no behavior:
// the evaluator walks these and never mutates them, so a parsed Program can
// be shared (and cached) freely.
package nexus

// Position is the source location a node was parsed at. Line is 1-based,
// Col is a 0-based byte column.
type Position struct {
	Line int
	Col  int
}

func (p Position) Pos() Position { return p }

// Node is any AST node.
type Node interface {
	Pos() Position
}

// Stmt is a statement node.
type Stmt interface {
	Node
	stmtNode()
}

// Expr is an expression node.
type Expr interface {
	Node
	exprNode()
}

// Program is an ordered sequence of top-level statements.
type Program struct {
	Body []Stmt
}

// ---- expressions ----

// Literal holds a source literal. Value is nil, bool, float64, or string.
type Literal struct {
	Position
	Value interface{}
}

// Identifier is a name reference resolved against the environment chain.
type Identifier struct {
	Position
	Name string
}

// Unary is a prefix operator application ("-" or "!").
type Unary struct {
	Position
	Op      string
	Operand Expr
}

// Binary is an arithmetic, equality, or relational operation.
type Binary struct {
	Position
	Op    string
	Left  Expr
	Right Expr
}

// Logical is "&&" or "||"; unlike Binary, the right side may never evaluate.
type Logical struct {
	Position
	Op    string
	Left  Expr
	Right Expr
}

// Assign writes a variable. Property writes are Set, not Assign.
type Assign struct {
	Position
	Name  string
	Value Expr
}

// Call applies a callee to arguments.
type Call struct {
	Position
	Callee Expr
	Args   []Expr
}

// Get reads a property from an object.
type Get struct {
	Position
	Object Expr
	Name   string
}

// Set writes a property on an object.
type Set struct {
	Position
	Object Expr
	Name   string
	Value  Expr
}

// ---- statements ----

// VarDecl declares a mutable binding. A nil Init means null.
type VarDecl struct {
	Position
	Name string
	Init Expr
}

// ConstDecl declares an immutable binding. Init is always present.
type ConstDecl struct {
	Position
	Name string
	Init Expr
}

// FuncDecl declares a named function (or, inside a ClassDecl, a method).
type FuncDecl struct {
	Position
	Name   string
	Params []string
	Body   *Block
}

// ClassDecl declares a class. SuperName is "" when there is no superclass.
type ClassDecl struct {
	Position
	Name      string
	SuperName string
	Methods   []*FuncDecl
}

// Block is a braced statement list with its own scope.
type Block struct {
	Position
	Stmts []Stmt
}

// If is a conditional. elif chains are parsed as nested Ifs in Else;
// Else is nil when absent.
type If struct {
	Position
	Cond Expr
	Then Stmt
	Else Stmt
}

// While is a pre-test loop.
type While struct {
	Position
	Cond Expr
	Body Stmt
}

// For is the C-style three-clause loop. Any of Init/Cond/Update may be nil.
type For struct {
	Position
	Init   Stmt
	Cond   Expr
	Update Expr
	Body   Stmt
}

// Break exits the nearest enclosing loop.
type Break struct {
	Position
}

// Continue skips to the next iteration of the nearest enclosing loop.
type Continue struct {
	Position
}

// Return exits the nearest enclosing function. A nil Value means null.
type Return struct {
	Position
	Value Expr
}

// Try runs Body; a runtime error thrown inside it transfers control to
// Catch with the error bound to CatchName in the catch scope.
type Try struct {
	Position
	Body      *Block
	CatchName string
	Catch     *Block
}

// ExprStmt evaluates an expression for its side effects.
type ExprStmt struct {
	Position
	Expression Expr
}

func (*Literal) exprNode()    {}
func (*Identifier) exprNode() {}
func (*Unary) exprNode()      {}
func (*Binary) exprNode()     {}
func (*Logical) exprNode()    {}
func (*Assign) exprNode()     {}
func (*Call) exprNode()       {}
func (*Get) exprNode()        {}
func (*Set) exprNode()        {}

func (*VarDecl) stmtNode()   {}
func (*ConstDecl) stmtNode() {}
func (*FuncDecl) stmtNode()  {}
func (*ClassDecl) stmtNode() {}
func (*Block) stmtNode()     {}
func (*If) stmtNode()        {}
func (*While) stmtNode()     {}
func (*For) stmtNode()       {}
func (*Break) stmtNode()     {}
func (*Continue) stmtNode()  {}
func (*Return) stmtNode()    {}
func (*Try) stmtNode()       {}
func (*ExprStmt) stmtNode()  {}
