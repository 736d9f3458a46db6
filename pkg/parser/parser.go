// Package parser implements a recursive descent parser for C
package parser

import (
	"fmt"

	"github.com/raymyers/cfront/pkg/cabs"
	"github.com/raymyers/cfront/pkg/lexer"
)

// Parser parses a finished token sequence into a Cabs AST. It reads tokens
// by index and never mutates them.
type Parser struct {
	tokens []lexer.Token
	pos    int
	eof    lexer.Token
	diags  []Diagnostic

	typedefs   symbolSet // typedef names seen so far
	globals    symbolSet // file-scope values
	locals     symbolSet // values of the current function
	inFunction bool

	// extra declarators of a multi-declarator declaration (int a, b;)
	pending []cabs.Stmt
}

// New creates a new Parser over tokens as produced by lexer.Tokenize
func New(tokens []lexer.Token) *Parser {
	p := &Parser{
		tokens:   tokens,
		typedefs: make(symbolSet),
		globals:  make(symbolSet),
		locals:   make(symbolSet),
	}
	p.eof = lexer.Token{Type: lexer.TokenEOF, Pos: lexer.Pos{Line: 1, Column: 1}}
	if n := len(tokens); n > 0 {
		last := tokens[n-1]
		p.eof.Pos = last.Pos
		p.eof.Pos.Offset += len(last.Literal)
		p.eof.Pos.Column += len(last.Literal)
	}
	return p
}

// Parse tokenizes and parses src. A lexical error stops processing and is
// returned as the only diagnostic.
func Parse(src string) (*cabs.Program, []Diagnostic) {
	toks, err := lexer.Tokenize(src)
	if err != nil {
		return &cabs.Program{}, []Diagnostic{FromLexError(err)}
	}
	p := New(toks)
	prog := p.ParseProgram()
	return prog, p.Diagnostics()
}

// Diagnostics returns every error and warning recorded so far
func (p *Parser) Diagnostics() []Diagnostic {
	return p.diags
}

// Errors returns the error-severity diagnostics
func (p *Parser) Errors() ErrorList {
	return OnlyErrors(p.diags)
}

// ParseProgram parses statements until the tokens are exhausted.
func (p *Parser) ParseProgram() *cabs.Program {
	prog := &cabs.Program{}
	for !p.atEOF() {
		start := p.pos
		if stmt := p.parseStatement(); stmt != nil {
			prog.Stmts = append(prog.Stmts, stmt)
			prog.Stmts = p.drainPending(prog.Stmts)
		} else {
			p.pending = nil
			p.synchronize()
		}
		if p.pos == start {
			p.advance()
		}
	}
	return prog
}

// ParseStatement parses a single statement. Statements queued by a
// multi-declarator declaration are returned by subsequent calls.
func (p *Parser) ParseStatement() cabs.Stmt {
	if len(p.pending) > 0 {
		stmt := p.pending[0]
		p.pending = p.pending[1:]
		return stmt
	}
	return p.parseStatement()
}

// ParseExpression parses one full expression, comma operator included.
func (p *Parser) ParseExpression() cabs.Expr {
	return p.parseExpr(precLowest)
}

// AtEOF reports whether all tokens have been consumed
func (p *Parser) AtEOF() bool {
	return p.atEOF()
}

func (p *Parser) drainPending(into []cabs.Stmt) []cabs.Stmt {
	into = append(into, p.pending...)
	p.pending = nil
	return into
}

func (p *Parser) atEOF() bool {
	return p.pos >= len(p.tokens)
}

func (p *Parser) cur() lexer.Token {
	return p.peekN(0)
}

func (p *Parser) peek() lexer.Token {
	return p.peekN(1)
}

func (p *Parser) peekN(n int) lexer.Token {
	if i := p.pos + n; i < len(p.tokens) {
		return p.tokens[i]
	}
	return p.eof
}

func (p *Parser) advance() lexer.Token {
	tok := p.cur()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return tok
}

func (p *Parser) curIs(t lexer.TokenType) bool {
	return p.cur().Type == t
}

func (p *Parser) peekIs(t lexer.TokenType) bool {
	return p.peek().Type == t
}

// accept consumes the current token if it has type t.
func (p *Parser) accept(t lexer.TokenType) bool {
	if p.curIs(t) {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) expect(t lexer.TokenType) bool {
	if p.curIs(t) {
		p.advance()
		return true
	}
	got := p.cur()
	p.diags = append(p.diags, Diagnostic{
		Severity: SeverityError,
		Category: p.mismatchCategory(),
		Msg:      fmt.Sprintf("expected %s, got %s", t, describe(got)),
		Pos:      got.Pos,
		Expected: t.String(),
		Got:      describe(got),
	})
	return false
}

// expectIdent consumes an identifier and returns its name.
func (p *Parser) expectIdent(what string) (string, bool) {
	if p.curIs(lexer.TokenIdent) {
		return p.advance().Literal, true
	}
	got := p.cur()
	p.diags = append(p.diags, Diagnostic{
		Severity: SeverityError,
		Category: p.mismatchCategory(),
		Msg:      fmt.Sprintf("expected %s, got %s", what, describe(got)),
		Pos:      got.Pos,
		Expected: lexer.TokenIdent.String(),
		Got:      describe(got),
	})
	return "", false
}

func (p *Parser) mismatchCategory() Category {
	if p.atEOF() {
		return CategoryUnexpectedEOF
	}
	return CategorySyntax
}

func (p *Parser) errorf(cat Category, format string, args ...any) {
	p.diags = append(p.diags, Diagnostic{
		Severity: SeverityError,
		Category: cat,
		Msg:      fmt.Sprintf(format, args...),
		Pos:      p.cur().Pos,
	})
}

func (p *Parser) warnf(pos lexer.Pos, format string, args ...any) {
	p.diags = append(p.diags, Diagnostic{
		Severity: SeverityWarning,
		Category: CategoryDeclaration,
		Msg:      fmt.Sprintf(format, args...),
		Pos:      pos,
	})
}

func describe(tok lexer.Token) string {
	switch tok.Type {
	case lexer.TokenIdent, lexer.TokenInt, lexer.TokenFloat:
		return fmt.Sprintf("%s %q", tok.Type, tok.Literal)
	case lexer.TokenEOF:
		return "end of input"
	}
	return fmt.Sprintf("%q", tok.Type.String())
}

// checkpoint captures the cursor and diagnostic count for backtracking.
type checkpoint struct {
	pos    int
	ndiags int
}

func (p *Parser) mark() checkpoint {
	return checkpoint{pos: p.pos, ndiags: len(p.diags)}
}

// reset rewinds to c, dropping diagnostics recorded since.
func (p *Parser) reset(c checkpoint) {
	p.pos = c.pos
	p.diags = p.diags[:c.ndiags]
}

// synchronize skips to a statement boundary after a failed statement: just
// past the next ';', or before a '}' or a statement keyword. A '{' skipped
// on the way is skipped through its matching '}' (and a ';' right after
// it), which ends the failed statement.
func (p *Parser) synchronize() {
	start := p.pos
	depth := 0
	for !p.atEOF() {
		switch p.cur().Type {
		case lexer.TokenLBrace:
			depth++
		case lexer.TokenRBrace:
			if depth == 0 {
				return
			}
			depth--
			if depth == 0 {
				p.advance()
				p.accept(lexer.TokenSemicolon)
				return
			}
		case lexer.TokenSemicolon:
			if depth == 0 {
				p.advance()
				return
			}
		case lexer.TokenIf, lexer.TokenWhile, lexer.TokenFor, lexer.TokenDo,
			lexer.TokenReturn, lexer.TokenSwitch, lexer.TokenTypedef,
			lexer.TokenBreak, lexer.TokenContinue, lexer.TokenGoto:
			if depth == 0 && p.pos > start {
				return
			}
		}
		p.advance()
	}
}

// skipGroup moves the cursor just past the ')' matching the '(' at token
// index open, so a failed statement header does not leave its body to be
// read as separate statements. The scan gives up at a brace or end of input.
func (p *Parser) skipGroup(open int) {
	depth := 0
	for i := open; i < len(p.tokens); i++ {
		switch p.tokens[i].Type {
		case lexer.TokenLParen:
			depth++
		case lexer.TokenRParen:
			depth--
			if depth == 0 {
				if i+1 > p.pos {
					p.pos = i + 1
				}
				return
			}
		case lexer.TokenLBrace, lexer.TokenRBrace:
			return
		}
	}
}
