// Package parser implements the lexical scanner and recursive-descent
// parser for the SysY source grammar, producing the AST that lower.go in
// package compiler consumes.
package parser

// CompUnit is a whole translation unit: an ordered sequence of top-level
// items, each either a Decl (const/var) or a FuncDef.
type CompUnit struct {
	Items []TopLevel
}

// TopLevel is the sum type for CompUnit.Items.
type TopLevel interface{ topLevel() }

func (*Decl) topLevel()    {}
func (*FuncDef) topLevel() {}

// Decl is a const or variable declaration, at file scope or block scope,
// scalar or array, holding one or more Defs sharing the `const`-ness.
type Decl struct {
	IsConst bool
	Defs    []*Def
}

// Def is a single `ident = init` (scalar) or `ident[e1][e2].. = init`
// (array) definition within a Decl.
type Def struct {
	Name  string
	Dims  []Expr // empty for a scalar
	Init  InitVal // nil if no initializer
	IsArr bool
}

// InitVal is either a single expression leaf or a nested brace-list.
type InitVal interface{ initVal() }

// InitExpr is a leaf initializer.
type InitExpr struct{ Expr Expr }

// InitList is a brace-enclosed list of child initializers (leaves or
// further nested lists).
type InitList struct{ Items []InitVal }

func (*InitExpr) initVal() {}
func (*InitList) initVal() {}

// FuncDef is a user function definition. RetType is "int" or "void" —
// unsupported return types are rejected by the semantic checks in
// lower_func.go.
type FuncDef struct {
	RetType string
	Name    string
	Params  []*Param
	Body    *Block
}

// Param is a formal parameter: scalar int, or an array parameter whose
// first dimension is omitted (`int a[]`) and remaining dimensions, if any,
// are constant expressions (`int a[][3]`).
type Param struct {
	Name    string
	IsArray bool
	// Dims holds dimensions after the first (always-omitted) one for array
	// parameters; empty for a scalar or a bare `T a[]`.
	Dims []Expr
}

// Block is a brace-enclosed sequence of statements/declarations, its own
// lexical scope.
type Block struct {
	Items []BlockItem
}

// BlockItem is the sum type for Block.Items: either a Decl or a Stmt.
type BlockItem interface{ blockItem() }

func (*Decl) blockItem() {}

// Stmt is the statement sum type.
type Stmt interface {
	blockItem()
	stmt()
}

// AssignStmt: lval = exp ;
type AssignStmt struct {
	LVal *LVal
	Exp  Expr
}

// ExprStmt: exp ; or ; (Exp == nil)
type ExprStmt struct{ Exp Expr }

// BlockStmt wraps a nested Block as a statement.
type BlockStmt struct{ Block *Block }

// IfStmt: if (Cond) Then [else Else]
type IfStmt struct {
	Cond Expr
	Then Stmt
	Else Stmt // nil if no else arm
}

// WhileStmt: while (Cond) Body
type WhileStmt struct {
	Cond Expr
	Body Stmt
}

// BreakStmt / ContinueStmt are leaves; their only state is their AST
// position for error messages, omitted here for brevity (the grammar
// covered here never needs it).
type BreakStmt struct{}
type ContinueStmt struct{}

// ReturnStmt: return [exp] ;
type ReturnStmt struct{ Exp Expr } // Exp nil for a value-less return

func (*AssignStmt) blockItem()   {}
func (*ExprStmt) blockItem()     {}
func (*BlockStmt) blockItem()    {}
func (*IfStmt) blockItem()       {}
func (*WhileStmt) blockItem()    {}
func (*BreakStmt) blockItem()    {}
func (*ContinueStmt) blockItem() {}
func (*ReturnStmt) blockItem()   {}

func (*AssignStmt) stmt()   {}
func (*ExprStmt) stmt()     {}
func (*BlockStmt) stmt()    {}
func (*IfStmt) stmt()       {}
func (*WhileStmt) stmt()    {}
func (*BreakStmt) stmt()    {}
func (*ContinueStmt) stmt() {}
func (*ReturnStmt) stmt()   {}

// LVal is an identifier followed by zero or more index expressions.
type LVal struct {
	Name    string
	Indices []Expr
}

// Expr is the expression sum type. Every variant is handled both by
// EvalConst (constant contexts) and by Emit (runtime lowering to IR), the
// recursive free functions in package compiler's lower_expr.go — free
// functions rather than methods, so the const/runtime split stays total and
// exhaustive (tagged unions over virtual dispatch).
type Expr interface{ expr() }

type IntLit struct{ Val int32 }
type LValExpr struct{ LVal *LVal }
type UnaryExpr struct {
	Op string // "+", "-", "!"
	X  Expr
}
type BinaryExpr struct {
	Op   string // "+","-","*","/","%","<",">","<=",">=","==","!=","&&","||"
	L, R Expr
}
type CallExpr struct {
	Func string
	Args []Expr
}

func (*IntLit) expr()     {}
func (*LValExpr) expr()   {}
func (*UnaryExpr) expr()  {}
func (*BinaryExpr) expr() {}
func (*CallExpr) expr()   {}
