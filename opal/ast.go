package opal

// Node is implemented by every AST node.
type Node interface {
	Pos() Position
}

// Statement nodes appear in statement position: top level, blocks, and
// class bodies.
type Statement interface {
	Node
	stmtNode()
}

// Expression nodes produce a value.
type Expression interface {
	Node
	exprNode()
}

// Program is the AST root: an ordered list of top-level statements and
// class declarations.
type Program struct {
	Statements []Statement
}

func (p *Program) Pos() Position {
	if len(p.Statements) == 0 {
		return Position{}
	}
	return p.Statements[0].Pos()
}

type IntegerLiteral struct {
	Value    int64
	position Position
}

func (e *IntegerLiteral) exprNode()     {}
func (e *IntegerLiteral) Pos() Position { return e.position }

type FloatLiteral struct {
	Value    float64
	position Position
}

func (e *FloatLiteral) exprNode()     {}
func (e *FloatLiteral) Pos() Position { return e.position }

type StringLiteral struct {
	Value    string
	position Position
}

func (e *StringLiteral) exprNode()     {}
func (e *StringLiteral) Pos() Position { return e.position }

type Identifier struct {
	Name     string
	position Position
}

func (e *Identifier) exprNode()     {}
func (e *Identifier) Pos() Position { return e.position }

type UnaryExpr struct {
	Op       TokenType
	Operand  Expression
	position Position
}

func (e *UnaryExpr) exprNode()     {}
func (e *UnaryExpr) Pos() Position { return e.position }

type BinaryExpr struct {
	Left     Expression
	Op       TokenType
	Right    Expression
	position Position
}

func (e *BinaryExpr) exprNode()     {}
func (e *BinaryExpr) Pos() Position { return e.position }

// MethodCallExpr is `receiver.method(args)`. Chains parse left to right, so
// the receiver of the second link is the first call itself.
type MethodCallExpr struct {
	Receiver Expression
	Method   string
	Args     []Expression
	position Position
}

func (e *MethodCallExpr) exprNode()     {}
func (e *MethodCallExpr) Pos() Position { return e.position }

// FieldAccessExpr is `receiver.name` with no argument list: a field read.
type FieldAccessExpr struct {
	Receiver Expression
	Field    string
	position Position
}

func (e *FieldAccessExpr) exprNode()     {}
func (e *FieldAccessExpr) Pos() Position { return e.position }

type NewExpr struct {
	ClassName string
	Args      []Expression
	position  Position
}

func (e *NewExpr) exprNode()     {}
func (e *NewExpr) Pos() Position { return e.position }

type ThisExpr struct {
	position Position
}

func (e *ThisExpr) exprNode()     {}
func (e *ThisExpr) Pos() Position { return e.position }

type SuperExpr struct {
	position Position
}

func (e *SuperExpr) exprNode()     {}
func (e *SuperExpr) Pos() Position { return e.position }

type AssignStmt struct {
	Name     string
	Value    Expression
	position Position
}

func (s *AssignStmt) stmtNode()     {}
func (s *AssignStmt) Pos() Position { return s.position }

type PrintStmt struct {
	Value    Expression
	position Position
}

func (s *PrintStmt) stmtNode()     {}
func (s *PrintStmt) Pos() Position { return s.position }

type BlockStmt struct {
	Statements []Statement
	position   Position
}

func (s *BlockStmt) stmtNode()     {}
func (s *BlockStmt) Pos() Position { return s.position }

type IfStmt struct {
	Condition  Expression
	Consequent Statement
	Alternate  Statement // nil when there is no else branch
	position   Position
}

func (s *IfStmt) stmtNode()     {}
func (s *IfStmt) Pos() Position { return s.position }

type WhileStmt struct {
	Condition Expression
	Body      Statement
	position  Position
}

func (s *WhileStmt) stmtNode()     {}
func (s *WhileStmt) Pos() Position { return s.position }

// ClassStmt declares a class. Body entries are either MethodStmt nodes or
// field-default statements evaluated at registration time.
type ClassStmt struct {
	Name     string
	Parent   string // empty without an extends clause
	Body     []Statement
	position Position
}

func (s *ClassStmt) stmtNode()     {}
func (s *ClassStmt) Pos() Position { return s.position }

type MethodStmt struct {
	Name     string
	Params   []string
	Body     Statement
	position Position
}

func (s *MethodStmt) stmtNode()     {}
func (s *MethodStmt) Pos() Position { return s.position }

type ReturnStmt struct {
	Value    Expression
	position Position
}

func (s *ReturnStmt) stmtNode()     {}
func (s *ReturnStmt) Pos() Position { return s.position }

type ExprStmt struct {
	Expr     Expression
	position Position
}

func (s *ExprStmt) stmtNode()     {}
func (s *ExprStmt) Pos() Position { return s.position }
