// Package cabs defines the abstract syntax tree produced by the parser.
//
// Each syntactic category is a closed sum type: an interface with an
// unexported marker method, implemented by pointer node types. Children are
// owned by their parent; the tree never contains back-edges.
package cabs

// Node is the base interface for all AST nodes
type Node interface {
	implCabsNode()
}

// Expr is the interface for all expression nodes
type Expr interface {
	Node
	implCabsExpr()
}

// Stmt is the interface for all statement nodes
type Stmt interface {
	Node
	implCabsStmt()
}

// Type is the interface for all type nodes
type Type interface {
	Node
	implCabsType()
}

// Program is the ordered list of top-level statements of one parse.
type Program struct {
	Stmts []Stmt
}

// LiteralKind distinguishes the literal expression variants.
type LiteralKind int

const (
	LitString LiteralKind = iota
	LitChar
	LitShort
	LitInt
	LitLong
	LitFloat
	LitDouble
)

func (k LiteralKind) String() string {
	names := []string{"string", "char", "short", "int", "long", "float", "double"}
	if int(k) < len(names) {
		return names[k]
	}
	return "?"
}

// IsInteger reports whether k is one of the integer literal kinds.
func (k LiteralKind) IsInteger() bool {
	return k == LitShort || k == LitInt || k == LitLong || k == LitChar
}

// Literal is a constant. Text is the source spelling (for strings, the text
// between the quotes); the value is in the field matching Kind.
type Literal struct {
	Kind  LiteralKind
	Text  string
	Int   int64   // LitShort, LitInt, LitLong
	Float float64 // LitFloat, LitDouble
	Char  rune    // LitChar
}

// Ident is a reference to a named entity
type Ident struct {
	Name string
}

// Prefix is a prefix unary expression: -x, *p, sizeof x, ++i
type Prefix struct {
	Op      UnaryOp
	Operand Expr
}

// Postfix is a postfix increment or decrement
type Postfix struct {
	Op      PostfixOp
	Operand Expr
}

// Binary is an infix expression, including simple assignment and the comma
// operator.
type Binary struct {
	Op    BinaryOp
	Left  Expr
	Right Expr
}

// CompoundAssign is target op= value. It is kept atomic: the target is
// evaluated once and the node is not rewritten to target = target op value.
type CompoundAssign struct {
	Op     BinaryOp
	Target Expr
	Value  Expr
}

// Call is a function call
type Call struct {
	Func Expr
	Args []Expr
}

// Cast is (type) operand
type Cast struct {
	To      Type
	Operand Expr
}

// SizeofType is sizeof(type-name)
type SizeofType struct {
	Type Type
}

// AlignofType is _Alignof(type-name)
type AlignofType struct {
	Type Type
}

// Conditional is the ternary operator: cond ? then : else
type Conditional struct {
	Cond Expr
	Then Expr
	Else Expr
}

// Index is array subscript access: arr[idx]
type Index struct {
	Array Expr
	Index Expr
}

// Member is field access through . or ->
type Member struct {
	Base  Expr
	Name  string
	Arrow bool
}

func (*Literal) implCabsNode()        {}
func (*Ident) implCabsNode()          {}
func (*Prefix) implCabsNode()         {}
func (*Postfix) implCabsNode()        {}
func (*Binary) implCabsNode()         {}
func (*CompoundAssign) implCabsNode() {}
func (*Call) implCabsNode()           {}
func (*Cast) implCabsNode()           {}
func (*SizeofType) implCabsNode()     {}
func (*AlignofType) implCabsNode()    {}
func (*Conditional) implCabsNode()    {}
func (*Index) implCabsNode()          {}
func (*Member) implCabsNode()         {}

func (*Literal) implCabsExpr()        {}
func (*Ident) implCabsExpr()          {}
func (*Prefix) implCabsExpr()         {}
func (*Postfix) implCabsExpr()        {}
func (*Binary) implCabsExpr()         {}
func (*CompoundAssign) implCabsExpr() {}
func (*Call) implCabsExpr()           {}
func (*Cast) implCabsExpr()           {}
func (*SizeofType) implCabsExpr()     {}
func (*AlignofType) implCabsExpr()    {}
func (*Conditional) implCabsExpr()    {}
func (*Index) implCabsExpr()          {}
func (*Member) implCabsExpr()         {}
