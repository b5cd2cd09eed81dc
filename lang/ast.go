package lang

// Node is implemented by every syntax tree node.
type Node interface {
	// Line returns the source line the node originated from.
	Line() int
}

// Expr is an expression node. The set of expression nodes is closed:
// [*Binary], [*Unary], [*Literal], [*Variable], [*Assign] and
// [*ArrayLiteral].
type Expr interface {
	Node
	exprNode()
}

// Stmt is a statement node. The set of statement nodes is closed:
// [*PrintStmt], [*ExpressionStmt], [*VarDecl], [*Block] and [*IfStmt].
type Stmt interface {
	Node
	stmtNode()
}

// Binary is an infix operation: Left Op Right.
type Binary struct {
	Left  Expr
	Right Expr
	Op    Token
}

// Unary is a prefix operation: Op Operand.
type Unary struct {
	Operand Expr
	Op      Token
}

// Literal is a constant value written in source.
type Literal struct {
	Value Value
	line  int
}

// Variable reads the binding of Name.
type Variable struct {
	Name Token
}

// Assign stores the result of Value into the binding of Name.
type Assign struct {
	Value Expr
	Name  Token
}

// ArrayLiteral is a bracketed, comma-separated list of expressions.
type ArrayLiteral struct {
	Elements []Expr
	Bracket  Token
}

func (e *Binary) Line() int       { return e.Op.Line }
func (e *Unary) Line() int        { return e.Op.Line }
func (e *Literal) Line() int      { return e.line }
func (e *Variable) Line() int     { return e.Name.Line }
func (e *Assign) Line() int       { return e.Name.Line }
func (e *ArrayLiteral) Line() int { return e.Bracket.Line }

func (*Binary) exprNode()       {}
func (*Unary) exprNode()        {}
func (*Literal) exprNode()      {}
func (*Variable) exprNode()     {}
func (*Assign) exprNode()       {}
func (*ArrayLiteral) exprNode() {}

// PrintStmt writes the external representation of Expr as one line.
type PrintStmt struct {
	Expr    Expr
	Keyword Token
}

// ExpressionStmt evaluates Expr and discards the result.
type ExpressionStmt struct {
	Expr Expr
}

// VarDecl binds Name to the value of Init, or null if Init is nil.
type VarDecl struct {
	Init Expr
	Name Token
}

// Block is a braced sequence of statements.
type Block struct {
	Stmts []Stmt
	Brace Token
}

// IfStmt executes Then when Cond is truthy, otherwise Else if it is not nil.
type IfStmt struct {
	Cond    Expr
	Then    Stmt
	Else    Stmt
	Keyword Token
}

func (s *PrintStmt) Line() int      { return s.Keyword.Line }
func (s *ExpressionStmt) Line() int { return s.Expr.Line() }
func (s *VarDecl) Line() int        { return s.Name.Line }
func (s *Block) Line() int          { return s.Brace.Line }
func (s *IfStmt) Line() int         { return s.Keyword.Line }

func (*PrintStmt) stmtNode()      {}
func (*ExpressionStmt) stmtNode() {}
func (*VarDecl) stmtNode()        {}
func (*Block) stmtNode()          {}
func (*IfStmt) stmtNode()         {}
