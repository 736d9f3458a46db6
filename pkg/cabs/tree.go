package cabs

import (
	"fmt"
	"strconv"
)

// Tree is a uniform, serializable view of an AST node. The CLI encodes it as
// YAML or JSON and the golden tests compare against it.
type Tree struct {
	Kind    string   `yaml:"kind" json:"kind"`
	Name    string   `yaml:"name,omitempty" json:"name,omitempty"`
	Op      string   `yaml:"op,omitempty" json:"op,omitempty"`
	Value   string   `yaml:"value,omitempty" json:"value,omitempty"`
	Storage string   `yaml:"storage,omitempty" json:"storage,omitempty"`
	Flags   []string `yaml:"flags,omitempty" json:"flags,omitempty"`
	Type    *Tree    `yaml:"type,omitempty" json:"type,omitempty"`
	Operand *Tree    `yaml:"operand,omitempty" json:"operand,omitempty"`
	Left    *Tree    `yaml:"left,omitempty" json:"left,omitempty"`
	Right   *Tree    `yaml:"right,omitempty" json:"right,omitempty"`
	Cond    *Tree    `yaml:"cond,omitempty" json:"cond,omitempty"`
	Then    *Tree    `yaml:"then,omitempty" json:"then,omitempty"`
	Init    *Tree    `yaml:"init,omitempty" json:"init,omitempty"`
	Update  *Tree    `yaml:"update,omitempty" json:"update,omitempty"`
	Def     *Tree    `yaml:"def,omitempty" json:"def,omitempty"`
	Body    *Tree    `yaml:"body,omitempty" json:"body,omitempty"`
	Else    *Tree    `yaml:"else,omitempty" json:"else,omitempty"`
	Items   []*Tree  `yaml:"items,omitempty" json:"items,omitempty"`
}

// ProgramTree converts every top-level statement of prog.
func ProgramTree(prog *Program) []*Tree {
	trees := make([]*Tree, 0, len(prog.Stmts))
	for _, s := range prog.Stmts {
		trees = append(trees, ToTree(s))
	}
	return trees
}

// ToTree converts a node into its Tree form. A nil node yields nil.
func ToTree(n Node) *Tree {
	switch n := n.(type) {
	case nil:
		return nil
	case Expr:
		return exprTree(n)
	case Type:
		return typeTree(n)
	case Stmt:
		return stmtTree(n)
	}
	return &Tree{Kind: fmt.Sprintf("%T", n)}
}

func exprTree(e Expr) *Tree {
	switch e := e.(type) {
	case nil:
		return nil
	case *Literal:
		return literalTree(e)
	case *Ident:
		return &Tree{Kind: "Identifier", Name: e.Name}
	case *Prefix:
		return &Tree{Kind: "Prefix", Op: e.Op.String(), Operand: exprTree(e.Operand)}
	case *Postfix:
		return &Tree{Kind: "Postfix", Op: e.Op.String(), Operand: exprTree(e.Operand)}
	case *Binary:
		return &Tree{Kind: "Binary", Op: e.Op.String(), Left: exprTree(e.Left), Right: exprTree(e.Right)}
	case *CompoundAssign:
		return &Tree{Kind: "CompoundAssign", Op: e.Op.String() + "=", Left: exprTree(e.Target), Right: exprTree(e.Value)}
	case *Call:
		t := &Tree{Kind: "Call", Operand: exprTree(e.Func)}
		for _, a := range e.Args {
			t.Items = append(t.Items, exprTree(a))
		}
		return t
	case *Cast:
		return &Tree{Kind: "Cast", Type: typeTree(e.To), Operand: exprTree(e.Operand)}
	case *SizeofType:
		return &Tree{Kind: "SizeofType", Type: typeTree(e.Type)}
	case *AlignofType:
		return &Tree{Kind: "AlignofType", Type: typeTree(e.Type)}
	case *Conditional:
		return &Tree{Kind: "Conditional", Cond: exprTree(e.Cond), Then: exprTree(e.Then), Else: exprTree(e.Else)}
	case *Index:
		return &Tree{Kind: "Index", Left: exprTree(e.Array), Right: exprTree(e.Index)}
	case *Member:
		op := "."
		if e.Arrow {
			op = "->"
		}
		return &Tree{Kind: "Member", Name: e.Name, Op: op, Operand: exprTree(e.Base)}
	}
	return &Tree{Kind: fmt.Sprintf("%T", e)}
}

func literalTree(l *Literal) *Tree {
	t := &Tree{}
	switch l.Kind {
	case LitString:
		t.Kind, t.Value = "LiteralString", l.Text
	case LitChar:
		t.Kind, t.Value = "LiteralChar", string(l.Char)
	case LitShort:
		t.Kind, t.Value = "LiteralShort", strconv.FormatInt(l.Int, 10)
	case LitInt:
		t.Kind, t.Value = "LiteralInt", strconv.FormatInt(l.Int, 10)
	case LitLong:
		t.Kind, t.Value = "LiteralLong", strconv.FormatInt(l.Int, 10)
	case LitFloat:
		t.Kind, t.Value = "LiteralFloat", strconv.FormatFloat(l.Float, 'g', -1, 32)
	case LitDouble:
		t.Kind, t.Value = "LiteralDouble", strconv.FormatFloat(l.Float, 'g', -1, 64)
	}
	return t
}

func typeTree(ty Type) *Tree {
	switch ty := ty.(type) {
	case nil:
		return nil
	case *Named:
		return &Tree{Kind: "Named", Name: ty.Name}
	case *Pointer:
		t := &Tree{Kind: "Pointer", Type: typeTree(ty.Pointee)}
		if ty.Const {
			t.Flags = append(t.Flags, "const")
		}
		if ty.Restrict {
			t.Flags = append(t.Flags, "restrict")
		}
		if ty.Volatile {
			t.Flags = append(t.Flags, "volatile")
		}
		return t
	case *Array:
		t := &Tree{Kind: "Array", Type: typeTree(ty.Elem)}
		if n, ok := ty.ArraySize(); ok {
			t.Value = strconv.FormatInt(n, 10)
		} else if ty.Size != nil {
			t.Operand = exprTree(ty.Size)
		}
		return t
	case *Struct:
		return &Tree{Kind: "Struct", Name: ty.Tag}
	case *Union:
		return &Tree{Kind: "Union", Name: ty.Tag}
	case *Enum:
		return &Tree{Kind: "Enum", Name: ty.Tag}
	}
	return &Tree{Kind: fmt.Sprintf("%T", ty)}
}

func qualFlags(q Qualifiers) []string {
	var flags []string
	if q.Const {
		flags = append(flags, "const")
	}
	if q.Volatile {
		flags = append(flags, "volatile")
	}
	if q.Inline {
		flags = append(flags, "inline")
	}
	return flags
}

func fieldTrees(fields []Field, kind string) []*Tree {
	var items []*Tree
	for _, f := range fields {
		items = append(items, &Tree{Kind: kind, Name: f.Name, Type: typeTree(f.Type)})
	}
	return items
}

func blockTree(b *Block) *Tree {
	if b == nil {
		return nil
	}
	t := &Tree{Kind: "Block"}
	for _, s := range b.Stmts {
		t.Items = append(t.Items, stmtTree(s))
	}
	return t
}

func stmtTree(s Stmt) *Tree {
	switch s := s.(type) {
	case nil:
		return nil
	case *StructDecl:
		return &Tree{Kind: "Struct", Name: s.Tag, Items: fieldTrees(s.Fields, "Field")}
	case *UnionDecl:
		return &Tree{Kind: "Union", Name: s.Tag, Items: fieldTrees(s.Fields, "Field")}
	case *EnumDecl:
		t := &Tree{Kind: "Enum", Name: s.Tag}
		for _, v := range s.Variants {
			t.Items = append(t.Items, &Tree{Kind: "Enumerator", Name: v.Name, Operand: exprTree(v.Value)})
		}
		return t
	case *Label:
		return &Tree{Kind: "Label", Name: s.Name}
	case *Function:
		return &Tree{
			Kind:    "Function",
			Name:    s.Name,
			Storage: s.Storage.String(),
			Flags:   qualFlags(s.Quals),
			Type:    typeTree(s.Return),
			Items:   fieldTrees(s.Params, "Param"),
			Body:    blockTree(s.Body),
		}
	case *Variable:
		return &Tree{
			Kind:    "Variable",
			Name:    s.Name,
			Storage: s.Storage.String(),
			Flags:   qualFlags(s.Quals),
			Type:    typeTree(s.Type),
			Init:    exprTree(s.Init),
		}
	case *If:
		return ifTree(s)
	case *Switch:
		t := &Tree{Kind: "Switch", Cond: exprTree(s.Scrutinee)}
		for _, c := range s.Cases {
			ct := &Tree{Kind: "Case", Operand: exprTree(c.Value)}
			if c.Value == nil {
				ct.Kind = "Default"
			}
			for _, st := range c.Body {
				ct.Items = append(ct.Items, stmtTree(st))
			}
			t.Items = append(t.Items, ct)
		}
		return t
	case *While:
		return &Tree{Kind: "While", Cond: exprTree(s.Cond), Body: blockTree(s.Body)}
	case *DoWhile:
		return &Tree{Kind: "DoWhile", Cond: exprTree(s.Cond), Body: blockTree(s.Body)}
	case *For:
		return &Tree{
			Kind:   "For",
			Init:   stmtTree(s.Init),
			Cond:   exprTree(s.Cond),
			Update: exprTree(s.Update),
			Body:   blockTree(s.Body),
		}
	case *Typedef:
		return &Tree{Kind: "Typedef", Name: s.Name, Type: typeTree(s.Aliased), Def: stmtTree(s.Def)}
	case *Return:
		return &Tree{Kind: "Return", Operand: exprTree(s.Value)}
	case *Break:
		return &Tree{Kind: "Break", Name: s.Label}
	case *Continue:
		return &Tree{Kind: "Continue", Name: s.Label}
	case *Goto:
		return &Tree{Kind: "Goto", Name: s.Label}
	case *Block:
		return blockTree(s)
	case *ExprStmt:
		return &Tree{Kind: "Expression", Operand: exprTree(s.X)}
	case *Empty:
		return &Tree{Kind: "Empty"}
	}
	return &Tree{Kind: fmt.Sprintf("%T", s)}
}

func ifTree(s *If) *Tree {
	if s == nil {
		return nil
	}
	return &Tree{Kind: "If", Cond: exprTree(s.Cond), Body: blockTree(s.Body), Else: ifTree(s.Else)}
}
