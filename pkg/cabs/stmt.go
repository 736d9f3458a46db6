package cabs

// StorageClass is the storage-class specifier of a declaration
type StorageClass int

const (
	StorageNone StorageClass = iota
	StorageStatic
	StorageExtern
	StorageRegister
	StorageAuto
)

func (s StorageClass) String() string {
	names := []string{"", "static", "extern", "register", "auto"}
	if int(s) < len(names) {
		return names[s]
	}
	return "?"
}

// Qualifiers are the declaration-level qualifiers and function specifiers.
// Pointer-level qualifiers live on Pointer.
type Qualifiers struct {
	Const    bool
	Volatile bool
	Inline   bool
}

// Field is a struct/union member or a function parameter. Name is empty for
// unnamed parameters.
type Field struct {
	Name string
	Type Type
}

// Enumerator is one enum constant; Value is nil when implicit.
type Enumerator struct {
	Name  string
	Value Expr
}

// StructDecl defines (Fields != nil) or forward-declares a struct
type StructDecl struct {
	Tag    string
	Fields []Field
}

// UnionDecl defines or forward-declares a union
type UnionDecl struct {
	Tag    string
	Fields []Field
}

// EnumDecl defines an enum
type EnumDecl struct {
	Tag      string
	Variants []Enumerator
}

// Label is a goto target: name:
type Label struct {
	Name string
}

// Function declares a function. A nil Body is a forward declaration.
type Function struct {
	Name    string
	Quals   Qualifiers
	Storage StorageClass
	Params  []Field
	Return  Type
	Body    *Block
}

// Variable declares a variable with an optional initializer
type Variable struct {
	Name    string
	Quals   Qualifiers
	Storage StorageClass
	Type    Type
	Init    Expr
}

// If is one link of an if / else if / else chain. Cond is nil only for the
// final unconditional else. Else is nil at the end of the chain.
type If struct {
	Cond Expr
	Body *Block
	Else *If
}

// Case is one arm of a switch. Value is nil for default.
type Case struct {
	Value Expr
	Body  []Stmt
}

// Switch is a switch statement
type Switch struct {
	Scrutinee Expr
	Cases     []Case
}

// While is a while loop
type While struct {
	Cond Expr
	Body *Block
}

// DoWhile is a do { } while (cond); loop
type DoWhile struct {
	Cond Expr
	Body *Block
}

// For is a for loop. Any of Init, Cond and Update may be nil.
type For struct {
	Init   Stmt
	Cond   Expr
	Update Expr
	Body   *Block
}

// Typedef introduces Name as an alias for Aliased. Def holds an inline
// struct/union/enum definition when the typedef declared one.
type Typedef struct {
	Name    string
	Aliased Type
	Def     Stmt
}

// Return represents a return statement
type Return struct {
	Value Expr // nil for bare return
}

// Break exits a loop or switch
type Break struct {
	Label string
}

// Continue jumps to the next loop iteration
type Continue struct {
	Label string
}

// Goto jumps to a label
type Goto struct {
	Label string
}

// Block represents a compound statement (block)
type Block struct {
	Stmts []Stmt
}

// ExprStmt is an expression evaluated for its side effects
type ExprStmt struct {
	X Expr
}

// Empty is a lone semicolon
type Empty struct{}

func (*StructDecl) implCabsNode() {}
func (*UnionDecl) implCabsNode()  {}
func (*EnumDecl) implCabsNode()   {}
func (*Label) implCabsNode()      {}
func (*Function) implCabsNode()   {}
func (*Variable) implCabsNode()   {}
func (*If) implCabsNode()         {}
func (*Switch) implCabsNode()     {}
func (*While) implCabsNode()      {}
func (*DoWhile) implCabsNode()    {}
func (*For) implCabsNode()        {}
func (*Typedef) implCabsNode()    {}
func (*Return) implCabsNode()     {}
func (*Break) implCabsNode()      {}
func (*Continue) implCabsNode()   {}
func (*Goto) implCabsNode()       {}
func (*Block) implCabsNode()      {}
func (*ExprStmt) implCabsNode()   {}
func (*Empty) implCabsNode()      {}

func (*StructDecl) implCabsStmt() {}
func (*UnionDecl) implCabsStmt()  {}
func (*EnumDecl) implCabsStmt()   {}
func (*Label) implCabsStmt()      {}
func (*Function) implCabsStmt()   {}
func (*Variable) implCabsStmt()   {}
func (*If) implCabsStmt()         {}
func (*Switch) implCabsStmt()     {}
func (*While) implCabsStmt()      {}
func (*DoWhile) implCabsStmt()    {}
func (*For) implCabsStmt()        {}
func (*Typedef) implCabsStmt()    {}
func (*Return) implCabsStmt()     {}
func (*Break) implCabsStmt()      {}
func (*Continue) implCabsStmt()   {}
func (*Goto) implCabsStmt()       {}
func (*Block) implCabsStmt()      {}
func (*ExprStmt) implCabsStmt()   {}
func (*Empty) implCabsStmt()      {}
