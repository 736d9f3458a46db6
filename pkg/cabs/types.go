package cabs

// Named is a type referred to by name: a builtin specifier list such as
// "unsigned int", or a typedef name.
type Named struct {
	Name string
}

// Pointer is a pointer to Pointee. The qualifiers belong to this pointer
// level only.
type Pointer struct {
	Pointee  Type
	Const    bool
	Restrict bool
	Volatile bool
}

// Array is an array of Elem. Size is nil for an unsized array (int a[]).
type Array struct {
	Elem Type
	Size Expr
}

// Struct is a reference to a struct by tag
type Struct struct {
	Tag string
}

// Union is a reference to a union by tag
type Union struct {
	Tag string
}

// Enum is a reference to an enum by tag
type Enum struct {
	Tag string
}

func (*Named) implCabsNode()   {}
func (*Pointer) implCabsNode() {}
func (*Array) implCabsNode()   {}
func (*Struct) implCabsNode()  {}
func (*Union) implCabsNode()   {}
func (*Enum) implCabsNode()    {}

func (*Named) implCabsType()   {}
func (*Pointer) implCabsType() {}
func (*Array) implCabsType()   {}
func (*Struct) implCabsType()  {}
func (*Union) implCabsType()   {}
func (*Enum) implCabsType()    {}

// ArraySize returns the element count of a sized array when Size folds to an
// integer constant.
func (a *Array) ArraySize() (int64, bool) {
	if a.Size == nil {
		return 0, false
	}
	return FoldInt(a.Size)
}

// FoldInt evaluates integer constant expressions built from literals,
// unary and binary arithmetic, and conditionals.
func FoldInt(e Expr) (int64, bool) {
	switch e := e.(type) {
	case *Literal:
		if e.Kind == LitChar {
			return int64(e.Char), true
		}
		if e.Kind.IsInteger() {
			return e.Int, true
		}
	case *Prefix:
		v, ok := FoldInt(e.Operand)
		if !ok {
			return 0, false
		}
		switch e.Op {
		case OpNeg:
			return -v, true
		case OpPlus:
			return v, true
		case OpBitNot:
			return ^v, true
		case OpNot:
			return boolInt(v == 0), true
		}
	case *Cast:
		return FoldInt(e.Operand)
	case *Conditional:
		c, ok := FoldInt(e.Cond)
		if !ok {
			return 0, false
		}
		if c != 0 {
			return FoldInt(e.Then)
		}
		return FoldInt(e.Else)
	case *Binary:
		l, ok := FoldInt(e.Left)
		if !ok {
			return 0, false
		}
		r, ok := FoldInt(e.Right)
		if !ok {
			return 0, false
		}
		return foldBinary(e.Op, l, r)
	}
	return 0, false
}

func foldBinary(op BinaryOp, l, r int64) (int64, bool) {
	switch op {
	case OpAdd:
		return l + r, true
	case OpSub:
		return l - r, true
	case OpMul:
		return l * r, true
	case OpDiv:
		if r == 0 {
			return 0, false
		}
		return l / r, true
	case OpMod:
		if r == 0 {
			return 0, false
		}
		return l % r, true
	case OpShl:
		if r < 0 || r > 63 {
			return 0, false
		}
		return l << uint(r), true
	case OpShr:
		if r < 0 || r > 63 {
			return 0, false
		}
		return l >> uint(r), true
	case OpBitAnd:
		return l & r, true
	case OpBitOr:
		return l | r, true
	case OpBitXor:
		return l ^ r, true
	case OpLt:
		return boolInt(l < r), true
	case OpLe:
		return boolInt(l <= r), true
	case OpGt:
		return boolInt(l > r), true
	case OpGe:
		return boolInt(l >= r), true
	case OpEq:
		return boolInt(l == r), true
	case OpNe:
		return boolInt(l != r), true
	case OpAnd:
		return boolInt(l != 0 && r != 0), true
	case OpOr:
		return boolInt(l != 0 || r != 0), true
	case OpComma:
		return r, true
	}
	return 0, false
}

func boolInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
