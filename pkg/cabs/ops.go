package cabs

// BinaryOp represents binary operators
type BinaryOp int

const (
	OpAdd BinaryOp = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpLt
	OpLe
	OpGt
	OpGe
	OpEq
	OpNe
	OpAnd // &&
	OpOr  // ||
	OpBitAnd
	OpBitOr
	OpBitXor
	OpShl // <<
	OpShr // >>
	OpAssign
	OpComma
)

func (op BinaryOp) String() string {
	names := []string{"+", "-", "*", "/", "%", "<", "<=", ">", ">=", "==", "!=", "&&", "||", "&", "|", "^", "<<", ">>", "=", ","}
	if int(op) < len(names) {
		return names[op]
	}
	return "?"
}

// UnaryOp represents prefix operators
type UnaryOp int

const (
	OpNeg     UnaryOp = iota // -
	OpNot                    // !
	OpBitNot                 // ~
	OpPlus                   // +
	OpDeref                  // *
	OpAddrOf                 // &
	OpPreInc                 // ++
	OpPreDec                 // --
	OpSizeof                 // sizeof
	OpAlignof                // _Alignof
)

func (op UnaryOp) String() string {
	names := []string{"-", "!", "~", "+", "*", "&", "++", "--", "sizeof", "_Alignof"}
	if int(op) < len(names) {
		return names[op]
	}
	return "?"
}

// PostfixOp represents postfix operators
type PostfixOp int

const (
	OpPostInc PostfixOp = iota // ++
	OpPostDec                  // --
)

func (op PostfixOp) String() string {
	if op == OpPostDec {
		return "--"
	}
	return "++"
}
