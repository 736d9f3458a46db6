package parser

import (
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/raymyers/cfront/pkg/cabs"
	"github.com/raymyers/cfront/pkg/lexer"
	"gopkg.in/yaml.v3"
)

// TestSpec represents a test case from parse.yaml
type TestSpec struct {
	Name  string       `yaml:"name"`
	Input string       `yaml:"input"`
	AST   []*cabs.Tree `yaml:"ast"`
}

// TestFile represents the parse.yaml file structure
type TestFile struct {
	Tests []TestSpec `yaml:"tests"`
}

func TestParseYAML(t *testing.T) {
	data, err := os.ReadFile("../../testdata/parse.yaml")
	if err != nil {
		t.Fatalf("failed to read parse.yaml: %v", err)
	}

	var testFile TestFile
	if err := yaml.Unmarshal(data, &testFile); err != nil {
		t.Fatalf("failed to parse parse.yaml: %v", err)
	}

	for _, tc := range testFile.Tests {
		t.Run(tc.Name, func(t *testing.T) {
			prog := mustParse(t, tc.Input)

			want, err := yaml.Marshal(tc.AST)
			if err != nil {
				t.Fatal(err)
			}
			got, err := yaml.Marshal(cabs.ProgramTree(prog))
			if err != nil {
				t.Fatal(err)
			}
			if string(want) != string(got) {
				t.Errorf("AST mismatch\nexpected:\n%s\ngot:\n%s", want, got)
			}
		})
	}
}

// mustParse parses src and fails the test on any diagnostic.
func mustParse(t *testing.T, src string) *cabs.Program {
	t.Helper()
	prog, diags := Parse(src)
	if len(diags) > 0 {
		t.Fatalf("parser diagnostics: %v", ErrorList(diags))
	}
	return prog
}

// mustParseExpr parses src as a single expression.
func mustParseExpr(t *testing.T, src string) cabs.Expr {
	t.Helper()
	toks, err := lexer.Tokenize(src)
	if err != nil {
		t.Fatalf("lexer error: %v", err)
	}
	p := New(toks)
	e := p.ParseExpression()
	if len(p.Diagnostics()) > 0 {
		t.Fatalf("parser diagnostics: %v", ErrorList(p.Diagnostics()))
	}
	if !p.AtEOF() {
		t.Fatalf("trailing tokens after expression %q", src)
	}
	return e
}

// firstFuncBody returns the statements of the first function in prog.
func firstFuncBody(t *testing.T, prog *cabs.Program) []cabs.Stmt {
	t.Helper()
	for _, s := range prog.Stmts {
		if fn, ok := s.(*cabs.Function); ok && fn.Body != nil {
			return fn.Body.Stmts
		}
	}
	t.Fatal("no function definition")
	return nil
}

func TestOperatorPrecedence(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		// Multiplicative before additive
		{"1 + 2 * 3", "(1 + (2 * 3))"},
		{"2 * 3 + 4", "((2 * 3) + 4)"},
		// Parentheses override precedence
		{"(1 + 2) * 3", "((1 + 2) * 3)"},
		// Left associativity
		{"1 - 2 - 3", "((1 - 2) - 3)"},
		{"a == b != c", "((a == b) != c)"},
		{"x << 1 < y", "((x << 1) < y)"},
		{"a & b ^ c | d", "(((a & b) ^ c) | d)"},
		{"a || b && c", "(a || (b && c))"},
		// Right associativity
		{"a = b = c", "(a = (b = c))"},
		{"a += b -= c", "(a += (b -= c))"},
		{"a ? b : c ? d : e", "(a ? b : (c ? d : e))"},
		{"a = b ? c : d", "(a = (b ? c : d))"},
		{"a, b = c", "(a , (b = c))"},
		// Prefix and postfix
		{"-x++", "(-(x++))"},
		{"*p->f", "(*(p->f))"},
		{"!a == b", "((!a) == b)"},
		{"&a[0]", "(&a[0])"},
		{"f(1, 2)[0]", "f(1, 2)[0]"},
		{"s.a.b", "((s.a).b)"},
		{"sizeof x + 1", "((sizeof x) + 1)"},
		{"(int)x + 1", "(((int)x) + 1)"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			actual := exprString(mustParseExpr(t, tt.input))
			if actual != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, actual)
			}
		})
	}
}

func TestAssignmentChain(t *testing.T) {
	e := mustParseExpr(t, "a = b = c")
	outer, ok := e.(*cabs.Binary)
	if !ok || outer.Op != cabs.OpAssign {
		t.Fatalf("expected assignment, got %T", e)
	}
	if left, ok := outer.Left.(*cabs.Ident); !ok || left.Name != "a" {
		t.Errorf("expected left to be 'a', got %v", exprString(outer.Left))
	}
	inner, ok := outer.Right.(*cabs.Binary)
	if !ok || inner.Op != cabs.OpAssign {
		t.Fatalf("expected nested assignment on the right, got %T", outer.Right)
	}
	if exprString(inner.Left) != "b" || exprString(inner.Right) != "c" {
		t.Errorf("inner assignment wrong, got %s", exprString(inner))
	}
}

func TestCompoundAssignment(t *testing.T) {
	tests := []struct {
		input string
		op    cabs.BinaryOp
	}{
		{"x += 1", cabs.OpAdd},
		{"x -= 1", cabs.OpSub},
		{"x *= 2", cabs.OpMul},
		{"x /= 2", cabs.OpDiv},
		{"x %= 3", cabs.OpMod},
		{"x &= 1", cabs.OpBitAnd},
		{"x |= 1", cabs.OpBitOr},
		{"x ^= 1", cabs.OpBitXor},
		{"x <<= 1", cabs.OpShl},
		{"x >>= 1", cabs.OpShr},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			e := mustParseExpr(t, tt.input)
			ca, ok := e.(*cabs.CompoundAssign)
			if !ok {
				t.Fatalf("expected CompoundAssign, got %T", e)
			}
			if ca.Op != tt.op {
				t.Errorf("wrong op: expected %v, got %v", tt.op, ca.Op)
			}
			if target, ok := ca.Target.(*cabs.Ident); !ok || target.Name != "x" {
				t.Errorf("expected target to be 'x', got %s", exprString(ca.Target))
			}
		})
	}
}

func TestUnaryExpressions(t *testing.T) {
	tests := []struct {
		input string
		op    cabs.UnaryOp
	}{
		{"-5", cabs.OpNeg},
		{"+5", cabs.OpPlus},
		{"!0", cabs.OpNot},
		{"~1", cabs.OpBitNot},
		{"&x", cabs.OpAddrOf},
		{"*p", cabs.OpDeref},
		{"++x", cabs.OpPreInc},
		{"--x", cabs.OpPreDec},
		{"sizeof x", cabs.OpSizeof},
		{"sizeof (x)", cabs.OpSizeof},
		{"_Alignof x", cabs.OpAlignof},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			e := mustParseExpr(t, tt.input)
			unary, ok := e.(*cabs.Prefix)
			if !ok {
				t.Fatalf("expected Prefix, got %T", e)
			}
			if unary.Op != tt.op {
				t.Errorf("wrong op: expected %v, got %v", tt.op, unary.Op)
			}
		})
	}
}

func TestPostfixIncDec(t *testing.T) {
	tests := []struct {
		input string
		op    cabs.PostfixOp
	}{
		{"x++", cabs.OpPostInc},
		{"x--", cabs.OpPostDec},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			e := mustParseExpr(t, tt.input)
			post, ok := e.(*cabs.Postfix)
			if !ok {
				t.Fatalf("expected Postfix, got %T", e)
			}
			if post.Op != tt.op {
				t.Errorf("wrong op: expected %v, got %v", tt.op, post.Op)
			}
			if inner, ok := post.Operand.(*cabs.Ident); !ok || inner.Name != "x" {
				t.Errorf("expected operand 'x', got %s", exprString(post.Operand))
			}
		})
	}
}

func TestMemberAccess(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		structName string
		memberName string
		isArrow    bool
	}{
		{"dot", "s.x", "s", "x", false},
		{"arrow", "p->y", "p", "y", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := mustParseExpr(t, tt.input)
			member, ok := e.(*cabs.Member)
			if !ok {
				t.Fatalf("expected Member, got %T", e)
			}
			if base, ok := member.Base.(*cabs.Ident); !ok || base.Name != tt.structName {
				t.Errorf("expected base %q, got %s", tt.structName, exprString(member.Base))
			}
			if member.Name != tt.memberName {
				t.Errorf("expected member name %q, got %q", tt.memberName, member.Name)
			}
			if member.Arrow != tt.isArrow {
				t.Errorf("expected Arrow=%v, got %v", tt.isArrow, member.Arrow)
			}
		})
	}
}

func TestLiteralKinds(t *testing.T) {
	tests := []struct {
		input string
		kind  cabs.LiteralKind
	}{
		{"42", cabs.LitInt},
		{"42L", cabs.LitLong},
		{"3000000000", cabs.LitLong},
		{"0x7fffffff", cabs.LitInt},
		{"1.5", cabs.LitDouble},
		{"1.5f", cabs.LitFloat},
		{"'a'", cabs.LitChar},
		{`"hi"`, cabs.LitString},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			e := mustParseExpr(t, tt.input)
			lit, ok := e.(*cabs.Literal)
			if !ok {
				t.Fatalf("expected Literal, got %T", e)
			}
			if lit.Kind != tt.kind {
				t.Errorf("wrong kind: expected %v, got %v", tt.kind, lit.Kind)
			}
		})
	}
}

func TestCallArguments(t *testing.T) {
	e := mustParseExpr(t, "f(a, b = 1, (c, d))")
	call, ok := e.(*cabs.Call)
	if !ok {
		t.Fatalf("expected Call, got %T", e)
	}
	if len(call.Args) != 3 {
		t.Fatalf("expected 3 arguments, got %d", len(call.Args))
	}
	if got := exprString(call.Args[2]); got != "(c , d)" {
		t.Errorf("parenthesized comma argument wrong, got %q", got)
	}

	e = mustParseExpr(t, "g()")
	if call, ok := e.(*cabs.Call); !ok || len(call.Args) != 0 {
		t.Errorf("expected empty call, got %s", exprString(e))
	}
}

func TestSizeofType(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"sizeof(int)", "sizeof(int)"},
		{"sizeof(int *)", "sizeof(int*)"},
		{"sizeof(struct s)", "sizeof(struct s)"},
		{"_Alignof(double)", "_Alignof(double)"},
		{"sizeof(unsigned char) * 2", "(sizeof(unsigned char) * 2)"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			actual := exprString(mustParseExpr(t, tt.input))
			if actual != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, actual)
			}
		})
	}
}

func TestCastVersusParenthesizedExpression(t *testing.T) {
	prog := mustParse(t, `
typedef int T;
int f(int x, char *q) {
	x = (x) + 1;
	x = (T) q;
	q = (char *) x;
	x = (U *) q;
}`)
	body := firstFuncBody(t, prog)
	expected := []string{
		"(x = (x + 1))",
		"(x = ((T)q))",
		"(q = ((char*)x))",
		"(x = ((U*)q))",
	}
	if len(body) != len(expected) {
		t.Fatalf("expected %d statements, got %d", len(expected), len(body))
	}
	for i, want := range expected {
		es, ok := body[i].(*cabs.ExprStmt)
		if !ok {
			t.Fatalf("stmt %d: expected ExprStmt, got %T", i, body[i])
		}
		if got := exprString(es.X); got != want {
			t.Errorf("stmt %d: expected %q, got %q", i, want, got)
		}
	}
}

func TestVariableVersusFunction(t *testing.T) {
	prog := mustParse(t, "int x; int y = 1; int f(); int g(void) { return 0; }")
	if len(prog.Stmts) != 4 {
		t.Fatalf("expected 4 statements, got %d", len(prog.Stmts))
	}
	for i, name := range []string{"x", "y"} {
		v, ok := prog.Stmts[i].(*cabs.Variable)
		if !ok {
			t.Fatalf("stmt %d: expected Variable, got %T", i, prog.Stmts[i])
		}
		if v.Name != name {
			t.Errorf("stmt %d: expected name %q, got %q", i, name, v.Name)
		}
	}
	if v := prog.Stmts[1].(*cabs.Variable); v.Init == nil {
		t.Error("y: expected initializer")
	}

	fwd, ok := prog.Stmts[2].(*cabs.Function)
	if !ok {
		t.Fatalf("expected Function, got %T", prog.Stmts[2])
	}
	if fwd.Body != nil {
		t.Error("f: expected forward declaration without body")
	}
	def, ok := prog.Stmts[3].(*cabs.Function)
	if !ok {
		t.Fatalf("expected Function, got %T", prog.Stmts[3])
	}
	if def.Body == nil || len(def.Body.Stmts) != 1 {
		t.Errorf("g: expected body with one statement")
	}
}

func TestDeclarationVersusExpression(t *testing.T) {
	tests := []struct {
		name  string
		input string
		decl  bool
	}{
		{"known variables multiply", "void f(int a, int b) { a * b; }", false},
		{"unknown type pointer", "void f(void) { T * p; }", true},
		{"typedef pointer", "typedef int T; void f(void) { T * p; }", true},
		{"local shadows typedef", "typedef int T; void f(int T) { T * p; }", false},
		{"two identifiers", "void f(void) { size n; }", true},
		{"call statement", "void f(void) { g(1); }", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := firstFuncBody(t, mustParse(t, tt.input))
			if len(body) != 1 {
				t.Fatalf("expected 1 statement, got %d", len(body))
			}
			_, isDecl := body[0].(*cabs.Variable)
			if isDecl != tt.decl {
				t.Errorf("expected declaration=%v, got %T", tt.decl, body[0])
			}
		})
	}
}

func TestLocalsClearedAtFunctionBoundary(t *testing.T) {
	prog := mustParse(t, "void f(int a) { a; } void g(void) { a * b; }")
	g, ok := prog.Stmts[1].(*cabs.Function)
	if !ok {
		t.Fatalf("expected Function, got %T", prog.Stmts[1])
	}
	v, ok := g.Body.Stmts[0].(*cabs.Variable)
	if !ok {
		t.Fatalf("a is not visible in g: expected declaration, got %T", g.Body.Stmts[0])
	}
	ptr, ok := v.Type.(*cabs.Pointer)
	if !ok {
		t.Fatalf("expected pointer type, got %T", v.Type)
	}
	if named, ok := ptr.Pointee.(*cabs.Named); !ok || named.Name != "a" {
		t.Errorf("expected pointer to a, got %T", ptr.Pointee)
	}
}

func TestPointerQualifiers(t *testing.T) {
	prog := mustParse(t, "int ** restrict p; int * const * q; char * volatile r;")

	p := prog.Stmts[0].(*cabs.Variable).Type.(*cabs.Pointer)
	if p.Const || p.Restrict {
		t.Errorf("p: outer pointer should be unqualified, got %+v", p)
	}
	pInner, ok := p.Pointee.(*cabs.Pointer)
	if !ok || !pInner.Restrict {
		t.Fatalf("p: inner pointer should be restrict, got %+v", p.Pointee)
	}
	if named, ok := pInner.Pointee.(*cabs.Named); !ok || named.Name != "int" {
		t.Errorf("p: innermost type should be int, got %T", pInner.Pointee)
	}

	q := prog.Stmts[1].(*cabs.Variable).Type.(*cabs.Pointer)
	if q.Const {
		t.Error("q: outer pointer should not be const")
	}
	if qInner, ok := q.Pointee.(*cabs.Pointer); !ok || !qInner.Const {
		t.Errorf("q: inner pointer should be const, got %+v", q.Pointee)
	}

	r := prog.Stmts[2].(*cabs.Variable).Type.(*cabs.Pointer)
	if !r.Volatile {
		t.Error("r: pointer should be volatile")
	}
}

func TestArrayDeclarators(t *testing.T) {
	prog := mustParse(t, "int a[]; char b[4 * 2]; int c[N];")

	a := prog.Stmts[0].(*cabs.Variable).Type.(*cabs.Array)
	if a.Size != nil {
		t.Errorf("a: expected no size, got %s", exprString(a.Size))
	}
	b := prog.Stmts[1].(*cabs.Variable).Type.(*cabs.Array)
	if n, ok := b.ArraySize(); !ok || n != 8 {
		t.Errorf("b: expected folded size 8, got %d (%v)", n, ok)
	}
	c := prog.Stmts[2].(*cabs.Variable).Type.(*cabs.Array)
	if _, ok := c.ArraySize(); ok {
		t.Error("c: size should not fold")
	}
}

func TestSingleStatementBodies(t *testing.T) {
	body := firstFuncBody(t, mustParse(t, `
void f(int a) {
	if (a) return; else a = 1;
	while (a) a--;
	for (;;) break;
}`))
	if len(body) != 3 {
		t.Fatalf("expected 3 statements, got %d", len(body))
	}
	ifs := body[0].(*cabs.If)
	if len(ifs.Body.Stmts) != 1 || ifs.Else == nil || ifs.Else.Cond != nil || len(ifs.Else.Body.Stmts) != 1 {
		t.Errorf("if/else bodies not wrapped as single-statement blocks")
	}
	if w := body[1].(*cabs.While); len(w.Body.Stmts) != 1 {
		t.Errorf("while body: expected 1 statement, got %d", len(w.Body.Stmts))
	}
	loop := body[2].(*cabs.For)
	if loop.Init != nil || loop.Cond != nil || loop.Update != nil {
		t.Errorf("for(;;): expected empty clauses, got %+v", loop)
	}
}

func TestBreakContinueLabels(t *testing.T) {
	body := firstFuncBody(t, mustParse(t, "void f(void) { while (1) { break outer; continue; } }"))
	loop := body[0].(*cabs.While)
	if br, ok := loop.Body.Stmts[0].(*cabs.Break); !ok || br.Label != "outer" {
		t.Errorf("expected break with label outer, got %+v", loop.Body.Stmts[0])
	}
	if cont, ok := loop.Body.Stmts[1].(*cabs.Continue); !ok || cont.Label != "" {
		t.Errorf("expected unlabeled continue, got %+v", loop.Body.Stmts[1])
	}
}

func TestInlineStructDefinition(t *testing.T) {
	prog := mustParse(t, "struct s { int x; } v; typedef struct { char c; } C; C w;")
	if len(prog.Stmts) != 4 {
		t.Fatalf("expected 4 statements, got %d", len(prog.Stmts))
	}
	if sd, ok := prog.Stmts[0].(*cabs.StructDecl); !ok || sd.Tag != "s" || len(sd.Fields) != 1 {
		t.Errorf("expected struct s definition, got %+v", prog.Stmts[0])
	}
	if v, ok := prog.Stmts[1].(*cabs.Variable); !ok || v.Name != "v" {
		t.Errorf("expected variable v, got %+v", prog.Stmts[1])
	}
	td, ok := prog.Stmts[2].(*cabs.Typedef)
	if !ok || td.Name != "C" {
		t.Fatalf("expected typedef C, got %+v", prog.Stmts[2])
	}
	if _, ok := td.Def.(*cabs.StructDecl); !ok {
		t.Errorf("expected typedef to carry the struct definition, got %T", td.Def)
	}
}

func TestStorageClassAndQualifiers(t *testing.T) {
	prog := mustParse(t, "extern volatile int a; static inline int f(void) { return 0; } register int r;")
	a := prog.Stmts[0].(*cabs.Variable)
	if a.Storage != cabs.StorageExtern || !a.Quals.Volatile {
		t.Errorf("a: expected extern volatile, got %v %+v", a.Storage, a.Quals)
	}
	f := prog.Stmts[1].(*cabs.Function)
	if f.Storage != cabs.StorageStatic || !f.Quals.Inline {
		t.Errorf("f: expected static inline, got %v %+v", f.Storage, f.Quals)
	}
	if r := prog.Stmts[2].(*cabs.Variable); r.Storage != cabs.StorageRegister {
		t.Errorf("r: expected register, got %v", r.Storage)
	}
}

func TestConflictingStorageClass(t *testing.T) {
	prog, diags := Parse("static extern int x; int y;")
	errs := OnlyErrors(diags)
	if len(errs) != 1 {
		t.Fatalf("expected 1 error, got %d: %v", len(errs), errs)
	}
	if errs[0].Category != CategoryDeclaration {
		t.Errorf("expected declaration error, got %v", errs[0].Category)
	}
	if !strings.Contains(errs[0].Msg, "conflicting storage class") {
		t.Errorf("unexpected message %q", errs[0].Msg)
	}
	if len(prog.Stmts) != 1 {
		t.Fatalf("expected parsing to continue with y, got %d statements", len(prog.Stmts))
	}
	if v, ok := prog.Stmts[0].(*cabs.Variable); !ok || v.Name != "y" {
		t.Errorf("expected variable y, got %+v", prog.Stmts[0])
	}
}

func TestDuplicateQualifierWarning(t *testing.T) {
	prog, diags := Parse("const const int x; restrict int y;")
	if errs := OnlyErrors(diags); len(errs) != 0 {
		t.Fatalf("expected no errors, got %v", errs)
	}
	if len(diags) != 2 {
		t.Fatalf("expected 2 warnings, got %d: %v", len(diags), ErrorList(diags))
	}
	for _, d := range diags {
		if d.Severity != SeverityWarning {
			t.Errorf("expected warning, got %v", d.Severity)
		}
	}
	if x := prog.Stmts[0].(*cabs.Variable); !x.Quals.Const {
		t.Error("x: expected const")
	}
}

func TestRecoveryCollectsMultipleErrors(t *testing.T) {
	prog, diags := Parse("int a = ;\nint b = 2;\nint c = );\n")
	errs := OnlyErrors(diags)
	if len(errs) != 2 {
		t.Fatalf("expected 2 errors, got %d: %v", len(errs), errs)
	}
	if errs[0].Pos.Line != 1 || errs[1].Pos.Line != 3 {
		t.Errorf("error lines wrong: %d and %d", errs[0].Pos.Line, errs[1].Pos.Line)
	}
	if len(prog.Stmts) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(prog.Stmts))
	}
	if v, ok := prog.Stmts[0].(*cabs.Variable); !ok || v.Name != "b" {
		t.Errorf("expected variable b, got %+v", prog.Stmts[0])
	}
}

func TestRecoveryInsideBlock(t *testing.T) {
	prog, diags := Parse("int f(int x) { x = ; return x; }")
	if len(OnlyErrors(diags)) != 1 {
		t.Fatalf("expected 1 error, got %v", ErrorList(diags))
	}
	body := firstFuncBody(t, prog)
	if len(body) != 1 {
		t.Fatalf("expected the return statement to survive, got %d statements", len(body))
	}
	if _, ok := body[0].(*cabs.Return); !ok {
		t.Errorf("expected Return, got %T", body[0])
	}
}

func TestRecoveryAfterFailedHeader(t *testing.T) {
	tests := []struct {
		name  string
		input string
		body  []string
	}{
		{"if with block body", "int f() { if (x = ) { a; } b; return 0; }", []string{"Expression", "Return"}},
		{"if with single body", "int f() { if (x ==) a; b; }", []string{"Expression"}},
		{"nested blocks", "int f() { while (x +) { if (y) { a; } } b; return 0; }", []string{"Expression", "Return"}},
		{"for header", "int f() { for (i = 0; i < ; i++) { a; } return 0; }", []string{"Return"}},
		{"switch header", "int f() { switch (x *) { case 1: a; } return 0; }", []string{"Return"}},
		{"do while condition", "int f() { do { a; } while (x =); b; }", []string{"Expression"}},
		{"brace initializer", "int f() { int v = {1, 2}; return v; }", []string{"Return"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prog, diags := Parse(tt.input)
			if len(diags) != 1 {
				t.Fatalf("expected 1 diagnostic, got %v", ErrorList(diags))
			}
			if len(prog.Stmts) != 1 {
				t.Fatalf("expected only the function at file scope, got %d statements", len(prog.Stmts))
			}
			body := firstFuncBody(t, prog)
			var kinds []string
			for _, s := range body {
				kinds = append(kinds, cabs.ToTree(s).Kind)
			}
			if strings.Join(kinds, " ") != strings.Join(tt.body, " ") {
				t.Errorf("body wrong. expected=%v, got=%v", tt.body, kinds)
			}
		})
	}
}

func TestRecoveryAfterFailedCastOperand(t *testing.T) {
	prog, diags := Parse("int f() { int y; int z; y = (int); z = 1; return z; }")
	errs := OnlyErrors(diags)
	if len(errs) != 1 {
		t.Fatalf("expected 1 error, got %v", errs)
	}
	if errs[0].Pos.Column != 34 {
		t.Errorf("expected the error at column 34, got %d", errs[0].Pos.Column)
	}
	body := firstFuncBody(t, prog)
	if len(body) != 4 {
		t.Fatalf("expected 4 statements, got %d", len(body))
	}
	stmt, ok := body[2].(*cabs.ExprStmt)
	if !ok {
		t.Fatalf("expected z = 1 to survive, got %T", body[2])
	}
	if got := exprString(stmt.X); got != "(z = 1)" {
		t.Errorf("expected (z = 1), got %s", got)
	}
}

func TestRepeatedTypeKeyword(t *testing.T) {
	tests := []struct {
		input string
		ok    bool
		name  string
	}{
		{"long long x;", true, "long long"},
		{"unsigned long long int x;", true, "unsigned long long int"},
		{"int int x;", false, ""},
		{"char char c;", false, ""},
		{"unsigned unsigned u;", false, ""},
		{"long long long x;", false, ""},
		{"double long double d;", false, ""},
	}

	for i, tt := range tests {
		prog, diags := Parse(tt.input)
		errs := OnlyErrors(diags)
		if !tt.ok {
			if len(errs) != 1 || errs[0].Category != CategoryDeclaration {
				t.Errorf("tests[%d] - expected one declaration error for %q, got %v", i, tt.input, errs)
			} else if !strings.Contains(errs[0].Msg, "duplicate") {
				t.Errorf("tests[%d] - unexpected message %q", i, errs[0].Msg)
			}
			continue
		}
		if len(errs) != 0 {
			t.Errorf("tests[%d] - unexpected errors for %q: %v", i, tt.input, errs)
			continue
		}
		v := prog.Stmts[0].(*cabs.Variable)
		if got := typeString(v.Type); got != tt.name {
			t.Errorf("tests[%d] - type wrong. expected=%q, got=%q", i, tt.name, got)
		}
	}
}

func TestConditionalIsNotAssignable(t *testing.T) {
	for _, input := range []string{"a ? b : c = d;", "x = a ? b : c += d;", "(a ? b : c) = d;"} {
		_, diags := Parse(input)
		errs := OnlyErrors(diags)
		if len(errs) != 1 {
			t.Errorf("%q: expected 1 error, got %v", input, errs)
			continue
		}
		if !strings.Contains(errs[0].Msg, "not assignable") {
			t.Errorf("%q: unexpected message %q", input, errs[0].Msg)
		}
	}

	if got := exprString(mustParseExpr(t, "x = a ? b : c")); got != "(x = (a ? b : c))" {
		t.Errorf("expected (x = (a ? b : c)), got %s", got)
	}
}

func TestMissingSemicolon(t *testing.T) {
	_, diags := Parse("int x = 1 int y;")
	errs := OnlyErrors(diags)
	if len(errs) == 0 {
		t.Fatal("expected an error")
	}
	d := errs[0]
	if d.Category != CategorySyntax {
		t.Errorf("expected syntax error, got %v", d.Category)
	}
	if d.Expected != ";" || d.Got != `"int"` {
		t.Errorf("expected/got wrong: %q / %q", d.Expected, d.Got)
	}
	if d.Pos.Column != 11 {
		t.Errorf("expected column 11, got %d", d.Pos.Column)
	}
}

func TestUnexpectedEOF(t *testing.T) {
	tests := []string{
		"int f() { return 1;",
		"int x",
		"int f(",
		"x = ",
	}

	for _, input := range tests {
		t.Run(input, func(t *testing.T) {
			_, diags := Parse(input)
			errs := OnlyErrors(diags)
			if len(errs) == 0 {
				t.Fatal("expected an error")
			}
			if errs[0].Category != CategoryUnexpectedEOF {
				t.Errorf("expected unexpected end of input, got %v: %v", errs[0].Category, errs[0])
			}
		})
	}
}

func TestStrayTokensTerminate(t *testing.T) {
	prog, diags := Parse("} } ); else; case 1:; int z;")
	if len(OnlyErrors(diags)) == 0 {
		t.Fatal("expected errors")
	}
	if n := len(prog.Stmts); n == 0 {
		t.Fatal("expected int z; to be recovered")
	}
	if v, ok := prog.Stmts[len(prog.Stmts)-1].(*cabs.Variable); !ok || v.Name != "z" {
		t.Errorf("expected trailing variable z, got %+v", prog.Stmts[len(prog.Stmts)-1])
	}
}

func TestLexicalErrorFromParse(t *testing.T) {
	prog, diags := Parse("int x = 1.2.3;")
	if len(diags) != 1 {
		t.Fatalf("expected 1 diagnostic, got %d", len(diags))
	}
	if diags[0].Category != CategoryLexical {
		t.Errorf("expected lexical error, got %v", diags[0].Category)
	}
	if len(prog.Stmts) != 0 {
		t.Errorf("expected empty program, got %d statements", len(prog.Stmts))
	}
}

func TestParseStatementDrainsDeclarators(t *testing.T) {
	toks, err := lexer.Tokenize("int a, b; a = b;")
	if err != nil {
		t.Fatal(err)
	}
	p := New(toks)
	var names []string
	for !p.AtEOF() {
		switch s := p.ParseStatement().(type) {
		case *cabs.Variable:
			names = append(names, s.Name)
		case *cabs.ExprStmt:
			names = append(names, exprString(s.X))
		default:
			t.Fatalf("unexpected statement %T", s)
		}
	}
	if got := strings.Join(names, " "); got != "a b (a = b)" {
		t.Errorf("expected %q, got %q", "a b (a = b)", got)
	}
}

func TestDeterministicReparse(t *testing.T) {
	src := `
struct node { int value; struct node *next; };
typedef struct node Node;
static int sum(Node *n) {
	int total = 0;
	for (; n; n = n->next) total += n->value;
	return total > 0 ? total : -total;
}`
	first, err := yaml.Marshal(cabs.ProgramTree(mustParse(t, src)))
	if err != nil {
		t.Fatal(err)
	}
	second, err := yaml.Marshal(cabs.ProgramTree(mustParse(t, src)))
	if err != nil {
		t.Fatal(err)
	}
	if string(first) != string(second) {
		t.Errorf("re-parse differs:\n%s\n---\n%s", first, second)
	}
}

// exprString returns a string representation of an expression for testing
func exprString(e cabs.Expr) string {
	switch expr := e.(type) {
	case *cabs.Literal:
		switch expr.Kind {
		case cabs.LitString:
			return fmt.Sprintf("%q", expr.Text)
		case cabs.LitChar:
			return fmt.Sprintf("'%s'", expr.Text)
		}
		return expr.Text
	case *cabs.Ident:
		return expr.Name
	case *cabs.Binary:
		return fmt.Sprintf("(%s %s %s)", exprString(expr.Left), expr.Op, exprString(expr.Right))
	case *cabs.CompoundAssign:
		return fmt.Sprintf("(%s %s= %s)", exprString(expr.Target), expr.Op, exprString(expr.Value))
	case *cabs.Prefix:
		if expr.Op == cabs.OpSizeof || expr.Op == cabs.OpAlignof {
			return fmt.Sprintf("(%s %s)", expr.Op, exprString(expr.Operand))
		}
		return fmt.Sprintf("(%s%s)", expr.Op, exprString(expr.Operand))
	case *cabs.Postfix:
		return fmt.Sprintf("(%s%s)", exprString(expr.Operand), expr.Op)
	case *cabs.Conditional:
		return fmt.Sprintf("(%s ? %s : %s)", exprString(expr.Cond), exprString(expr.Then), exprString(expr.Else))
	case *cabs.Call:
		args := make([]string, len(expr.Args))
		for i, a := range expr.Args {
			args[i] = exprString(a)
		}
		return fmt.Sprintf("%s(%s)", exprString(expr.Func), strings.Join(args, ", "))
	case *cabs.Index:
		return fmt.Sprintf("%s[%s]", exprString(expr.Array), exprString(expr.Index))
	case *cabs.Member:
		op := "."
		if expr.Arrow {
			op = "->"
		}
		return fmt.Sprintf("(%s%s%s)", exprString(expr.Base), op, expr.Name)
	case *cabs.Cast:
		return fmt.Sprintf("((%s)%s)", typeString(expr.To), exprString(expr.Operand))
	case *cabs.SizeofType:
		return fmt.Sprintf("sizeof(%s)", typeString(expr.Type))
	case *cabs.AlignofType:
		return fmt.Sprintf("_Alignof(%s)", typeString(expr.Type))
	default:
		return "?"
	}
}

func typeString(ty cabs.Type) string {
	switch ty := ty.(type) {
	case *cabs.Named:
		return ty.Name
	case *cabs.Pointer:
		s := typeString(ty.Pointee) + "*"
		if ty.Const {
			s += " const"
		}
		return s
	case *cabs.Array:
		return typeString(ty.Elem) + "[]"
	case *cabs.Struct:
		return "struct " + ty.Tag
	case *cabs.Union:
		return "union " + ty.Tag
	case *cabs.Enum:
		return "enum " + ty.Tag
	default:
		return "?"
	}
}
