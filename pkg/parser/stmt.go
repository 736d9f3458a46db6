package parser

import (
	"github.com/raymyers/cfront/pkg/cabs"
	"github.com/raymyers/cfront/pkg/lexer"
)

// parseStatement dispatches on the current token. It returns nil after
// recording a diagnostic; the caller synchronizes.
func (p *Parser) parseStatement() cabs.Stmt {
	tok := p.cur()
	switch tok.Type {
	case lexer.TokenLBrace:
		if b := p.parseBlock(); b != nil {
			return b
		}
		return nil
	case lexer.TokenIf:
		if s := p.parseIf(); s != nil {
			return s
		}
		return nil
	case lexer.TokenWhile:
		return p.parseWhile()
	case lexer.TokenDo:
		return p.parseDoWhile()
	case lexer.TokenFor:
		return p.parseFor()
	case lexer.TokenSwitch:
		return p.parseSwitch()
	case lexer.TokenReturn:
		return p.parseReturn()
	case lexer.TokenBreak, lexer.TokenContinue:
		return p.parseJump()
	case lexer.TokenGoto:
		p.advance()
		label, ok := p.expectIdent("label after goto")
		if !ok || !p.expect(lexer.TokenSemicolon) {
			return nil
		}
		return &cabs.Goto{Label: label}
	case lexer.TokenTypedef:
		return p.parseTypedef()
	case lexer.TokenSemicolon:
		p.advance()
		return &cabs.Empty{}
	case lexer.TokenRBrace:
		p.errorf(CategorySyntax, "unexpected '}'")
		return nil
	case lexer.TokenCase, lexer.TokenDefault:
		p.errorf(CategorySyntax, "%q label not within a switch statement", tok.Literal)
		return nil
	case lexer.TokenElse:
		p.errorf(CategorySyntax, "'else' without a previous 'if'")
		return nil
	}

	if tok.Type == lexer.TokenIdent && p.peekIs(lexer.TokenColon) {
		p.advance()
		p.advance()
		return &cabs.Label{Name: tok.Literal}
	}

	if p.startsDeclaration() {
		stmts := p.parseDeclaration()
		if len(stmts) == 0 {
			return nil
		}
		p.pending = append(p.pending, stmts[1:]...)
		return stmts[0]
	}

	return p.parseExprStmt()
}

func (p *Parser) parseExprStmt() cabs.Stmt {
	x := p.parseExpr(precLowest)
	if x == nil || !p.expect(lexer.TokenSemicolon) {
		return nil
	}
	return &cabs.ExprStmt{X: x}
}

// parseBlock parses { statements }. A failed statement inside the block is
// skipped and parsing continues with the next one; only a missing '}' fails
// the block.
func (p *Parser) parseBlock() *cabs.Block {
	if !p.expect(lexer.TokenLBrace) {
		return nil
	}
	block := &cabs.Block{Stmts: []cabs.Stmt{}}
	for !p.curIs(lexer.TokenRBrace) {
		if p.atEOF() {
			p.expect(lexer.TokenRBrace)
			return nil
		}
		start := p.pos
		if stmt := p.parseStatement(); stmt != nil {
			block.Stmts = append(block.Stmts, stmt)
			block.Stmts = p.drainPending(block.Stmts)
		} else {
			p.pending = nil
			p.synchronize()
		}
		if p.pos == start {
			p.advance()
		}
	}
	p.advance() // '}'
	return block
}

// parseBody parses a loop or if body: a block, or a single statement which
// is wrapped in one.
func (p *Parser) parseBody() *cabs.Block {
	if p.curIs(lexer.TokenLBrace) {
		return p.parseBlock()
	}
	stmt := p.parseStatement()
	if stmt == nil {
		return nil
	}
	return &cabs.Block{Stmts: p.drainPending([]cabs.Stmt{stmt})}
}

// parseCondition parses ( expression ).
func (p *Parser) parseCondition() cabs.Expr {
	open := p.pos
	if !p.expect(lexer.TokenLParen) {
		return nil
	}
	cond := p.parseExpr(precLowest)
	if cond == nil || !p.expect(lexer.TokenRParen) {
		p.skipGroup(open)
		return nil
	}
	return cond
}

// parseIf parses an if / else if / else chain into linked If nodes.
func (p *Parser) parseIf() *cabs.If {
	p.advance() // 'if'
	cond := p.parseCondition()
	if cond == nil {
		return nil
	}
	body := p.parseBody()
	if body == nil {
		return nil
	}
	node := &cabs.If{Cond: cond, Body: body}

	if !p.accept(lexer.TokenElse) {
		return node
	}
	if p.curIs(lexer.TokenIf) {
		if node.Else = p.parseIf(); node.Else == nil {
			return nil
		}
		return node
	}
	els := p.parseBody()
	if els == nil {
		return nil
	}
	node.Else = &cabs.If{Body: els}
	return node
}

func (p *Parser) parseWhile() cabs.Stmt {
	p.advance() // 'while'
	cond := p.parseCondition()
	if cond == nil {
		return nil
	}
	body := p.parseBody()
	if body == nil {
		return nil
	}
	return &cabs.While{Cond: cond, Body: body}
}

func (p *Parser) parseDoWhile() cabs.Stmt {
	p.advance() // 'do'
	body := p.parseBody()
	if body == nil || !p.expect(lexer.TokenWhile) {
		return nil
	}
	cond := p.parseCondition()
	if cond == nil || !p.expect(lexer.TokenSemicolon) {
		return nil
	}
	return &cabs.DoWhile{Cond: cond, Body: body}
}

// parseFor parses for (init; cond; update) body. The init clause is a
// declaration or an expression statement; several declarators are grouped
// in a Block.
func (p *Parser) parseFor() cabs.Stmt {
	p.advance() // 'for'
	open := p.pos
	if !p.expect(lexer.TokenLParen) {
		return nil
	}
	loop := &cabs.For{}
	if !p.parseForHeader(loop) {
		p.skipGroup(open)
		return nil
	}
	if loop.Body = p.parseBody(); loop.Body == nil {
		return nil
	}
	return loop
}

// parseForHeader parses init; cond; update) into loop.
func (p *Parser) parseForHeader(loop *cabs.For) bool {
	switch {
	case p.accept(lexer.TokenSemicolon):
	case p.startsDeclaration():
		stmts := p.parseDeclaration()
		switch len(stmts) {
		case 0:
			return false
		case 1:
			loop.Init = stmts[0]
		default:
			loop.Init = &cabs.Block{Stmts: stmts}
		}
	default:
		if loop.Init = p.parseExprStmt(); loop.Init == nil {
			return false
		}
	}

	if !p.curIs(lexer.TokenSemicolon) {
		if loop.Cond = p.parseExpr(precLowest); loop.Cond == nil {
			return false
		}
	}
	if !p.expect(lexer.TokenSemicolon) {
		return false
	}
	if !p.curIs(lexer.TokenRParen) {
		if loop.Update = p.parseExpr(precLowest); loop.Update == nil {
			return false
		}
	}
	return p.expect(lexer.TokenRParen)
}

// parseSwitch parses switch (x) { case v: ... default: ... }. Statements
// belong to the closest preceding label.
func (p *Parser) parseSwitch() cabs.Stmt {
	p.advance() // 'switch'
	scrutinee := p.parseCondition()
	if scrutinee == nil || !p.expect(lexer.TokenLBrace) {
		return nil
	}
	sw := &cabs.Switch{Scrutinee: scrutinee, Cases: []cabs.Case{}}

	for !p.curIs(lexer.TokenRBrace) {
		if p.atEOF() {
			p.expect(lexer.TokenRBrace)
			return nil
		}
		start := p.pos
		switch p.cur().Type {
		case lexer.TokenCase:
			p.advance()
			value := p.parseExpr(precLowest)
			if value == nil || !p.expect(lexer.TokenColon) {
				p.synchronize()
				break
			}
			sw.Cases = append(sw.Cases, cabs.Case{Value: value})
		case lexer.TokenDefault:
			p.advance()
			if !p.expect(lexer.TokenColon) {
				p.synchronize()
				break
			}
			sw.Cases = append(sw.Cases, cabs.Case{})
		default:
			if len(sw.Cases) == 0 {
				p.errorf(CategorySyntax, "statement before first case label")
				p.synchronize()
				break
			}
			arm := &sw.Cases[len(sw.Cases)-1]
			if stmt := p.parseStatement(); stmt != nil {
				arm.Body = append(arm.Body, stmt)
				arm.Body = p.drainPending(arm.Body)
			} else {
				p.pending = nil
				p.synchronize()
			}
		}
		if p.pos == start {
			p.advance()
		}
	}
	p.advance() // '}'
	return sw
}

func (p *Parser) parseReturn() cabs.Stmt {
	p.advance() // 'return'
	if p.accept(lexer.TokenSemicolon) {
		return &cabs.Return{}
	}
	value := p.parseExpr(precLowest)
	if value == nil || !p.expect(lexer.TokenSemicolon) {
		return nil
	}
	return &cabs.Return{Value: value}
}

// parseJump parses break or continue with an optional label.
func (p *Parser) parseJump() cabs.Stmt {
	kw := p.advance()
	label := ""
	if p.curIs(lexer.TokenIdent) {
		label = p.advance().Literal
	}
	if !p.expect(lexer.TokenSemicolon) {
		return nil
	}
	if kw.Type == lexer.TokenBreak {
		return &cabs.Break{Label: label}
	}
	return &cabs.Continue{Label: label}
}

// parseTypedef parses typedef specifiers declarator; and registers the
// new type name.
func (p *Parser) parseTypedef() cabs.Stmt {
	p.advance() // 'typedef'
	spec, ok := p.parseDeclSpec()
	if !ok {
		return nil
	}
	if spec.storage != cabs.StorageNone {
		p.errorf(CategoryDeclaration, "storage class %q in typedef", spec.storage)
		return nil
	}
	ty := p.parsePointers(spec.base)
	name, ok := p.expectIdent("typedef name")
	if !ok {
		return nil
	}
	if ty, ok = p.parseArraySuffix(ty); !ok {
		return nil
	}
	if !p.expect(lexer.TokenSemicolon) {
		return nil
	}
	p.typedefs.add(name)
	delete(p.locals, name)
	return &cabs.Typedef{Name: name, Aliased: ty, Def: spec.def}
}
