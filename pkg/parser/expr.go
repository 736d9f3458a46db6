package parser

import (
	"math"
	"strings"

	"github.com/raymyers/cfront/pkg/cabs"
	"github.com/raymyers/cfront/pkg/lexer"
)

// Binding powers, lowest first. An operator is consumed by parseExpr only
// when its power exceeds the caller's minimum.
const (
	precLowest = iota
	precComma
	precAssign // right-associative
	precTernary
	precLogOr
	precLogAnd
	precBitOr
	precBitXor
	precBitAnd
	precEquality
	precRelational
	precShift
	precAdditive
	precMultiplicative
	precPrefix
	precPostfix // call, index, member, ++, --
)

var binaryOps = map[lexer.TokenType]cabs.BinaryOp{
	lexer.TokenPlus:      cabs.OpAdd,
	lexer.TokenMinus:     cabs.OpSub,
	lexer.TokenStar:      cabs.OpMul,
	lexer.TokenSlash:     cabs.OpDiv,
	lexer.TokenPercent:   cabs.OpMod,
	lexer.TokenLt:        cabs.OpLt,
	lexer.TokenLe:        cabs.OpLe,
	lexer.TokenGt:        cabs.OpGt,
	lexer.TokenGe:        cabs.OpGe,
	lexer.TokenEq:        cabs.OpEq,
	lexer.TokenNe:        cabs.OpNe,
	lexer.TokenAnd:       cabs.OpAnd,
	lexer.TokenOr:        cabs.OpOr,
	lexer.TokenAmpersand: cabs.OpBitAnd,
	lexer.TokenPipe:      cabs.OpBitOr,
	lexer.TokenCaret:     cabs.OpBitXor,
	lexer.TokenShl:       cabs.OpShl,
	lexer.TokenShr:       cabs.OpShr,
	lexer.TokenAssign:    cabs.OpAssign,
	lexer.TokenComma:     cabs.OpComma,
}

// compoundOps maps op= tokens to their underlying operator.
var compoundOps = map[lexer.TokenType]cabs.BinaryOp{
	lexer.TokenPlusAssign:    cabs.OpAdd,
	lexer.TokenMinusAssign:   cabs.OpSub,
	lexer.TokenStarAssign:    cabs.OpMul,
	lexer.TokenSlashAssign:   cabs.OpDiv,
	lexer.TokenPercentAssign: cabs.OpMod,
	lexer.TokenAndAssign:     cabs.OpBitAnd,
	lexer.TokenOrAssign:      cabs.OpBitOr,
	lexer.TokenXorAssign:     cabs.OpBitXor,
	lexer.TokenShlAssign:     cabs.OpShl,
	lexer.TokenShrAssign:     cabs.OpShr,
}

var prefixOps = map[lexer.TokenType]cabs.UnaryOp{
	lexer.TokenMinus:     cabs.OpNeg,
	lexer.TokenPlus:      cabs.OpPlus,
	lexer.TokenNot:       cabs.OpNot,
	lexer.TokenTilde:     cabs.OpBitNot,
	lexer.TokenStar:      cabs.OpDeref,
	lexer.TokenAmpersand: cabs.OpAddrOf,
	lexer.TokenIncrement: cabs.OpPreInc,
	lexer.TokenDecrement: cabs.OpPreDec,
}

func infixPrecedence(t lexer.TokenType) int {
	if _, ok := compoundOps[t]; ok {
		return precAssign
	}
	switch t {
	case lexer.TokenComma:
		return precComma
	case lexer.TokenAssign:
		return precAssign
	case lexer.TokenQuestion:
		return precTernary
	case lexer.TokenOr:
		return precLogOr
	case lexer.TokenAnd:
		return precLogAnd
	case lexer.TokenPipe:
		return precBitOr
	case lexer.TokenCaret:
		return precBitXor
	case lexer.TokenAmpersand:
		return precBitAnd
	case lexer.TokenEq, lexer.TokenNe:
		return precEquality
	case lexer.TokenLt, lexer.TokenLe, lexer.TokenGt, lexer.TokenGe:
		return precRelational
	case lexer.TokenShl, lexer.TokenShr:
		return precShift
	case lexer.TokenPlus, lexer.TokenMinus:
		return precAdditive
	case lexer.TokenStar, lexer.TokenSlash, lexer.TokenPercent:
		return precMultiplicative
	case lexer.TokenLParen, lexer.TokenLBracket, lexer.TokenDot, lexer.TokenArrow,
		lexer.TokenIncrement, lexer.TokenDecrement:
		return precPostfix
	}
	return precLowest
}

// parseExpr is the precedence climbing loop. It returns nil after recording
// a diagnostic.
func (p *Parser) parseExpr(minPrec int) cabs.Expr {
	left := p.parsePrefix()
	if left == nil {
		return nil
	}

	for {
		tok := p.cur()
		prec := infixPrecedence(tok.Type)
		if prec <= minPrec {
			return left
		}

		switch tok.Type {
		case lexer.TokenLParen:
			left = p.parseCall(left)
		case lexer.TokenLBracket:
			left = p.parseIndex(left)
		case lexer.TokenDot, lexer.TokenArrow:
			p.advance()
			name, ok := p.expectIdent("member name")
			if !ok {
				return nil
			}
			left = &cabs.Member{Base: left, Name: name, Arrow: tok.Type == lexer.TokenArrow}
		case lexer.TokenIncrement:
			p.advance()
			left = &cabs.Postfix{Op: cabs.OpPostInc, Operand: left}
		case lexer.TokenDecrement:
			p.advance()
			left = &cabs.Postfix{Op: cabs.OpPostDec, Operand: left}
		case lexer.TokenQuestion:
			left = p.parseConditional(left)
		case lexer.TokenAssign:
			if !p.assignable(left) {
				return nil
			}
			p.advance()
			right := p.parseExpr(precAssign - 1)
			if right == nil {
				return nil
			}
			left = &cabs.Binary{Op: cabs.OpAssign, Left: left, Right: right}
		default:
			op, compound := compoundOps[tok.Type]
			if compound && !p.assignable(left) {
				return nil
			}
			p.advance()
			if compound {
				value := p.parseExpr(precAssign - 1)
				if value == nil {
					return nil
				}
				left = &cabs.CompoundAssign{Op: op, Target: left, Value: value}
				continue
			}
			right := p.parseExpr(prec)
			if right == nil {
				return nil
			}
			left = &cabs.Binary{Op: binaryOps[tok.Type], Left: left, Right: right}
		}
		if left == nil {
			return nil
		}
	}
}

// assignable rejects a conditional as the target of an assignment:
// a ? b : c = d does not parse as (a ? b : c) = d.
func (p *Parser) assignable(target cabs.Expr) bool {
	if _, ok := target.(*cabs.Conditional); ok {
		p.errorf(CategorySyntax, "conditional expression is not assignable")
		return false
	}
	return true
}

func (p *Parser) parsePrefix() cabs.Expr {
	tok := p.cur()

	if op, ok := prefixOps[tok.Type]; ok {
		p.advance()
		operand := p.parseExpr(precPrefix)
		if operand == nil {
			return nil
		}
		return &cabs.Prefix{Op: op, Operand: operand}
	}

	switch tok.Type {
	case lexer.TokenInt:
		p.advance()
		kind := cabs.LitInt
		if strings.ContainsAny(tok.Suffix, "lL") || tok.Int > math.MaxInt32 || tok.Int < 0 {
			kind = cabs.LitLong
		}
		return &cabs.Literal{Kind: kind, Text: tok.Literal, Int: tok.Int}
	case lexer.TokenFloat:
		p.advance()
		kind := cabs.LitDouble
		if strings.ContainsAny(tok.Suffix, "fF") {
			kind = cabs.LitFloat
		}
		return &cabs.Literal{Kind: kind, Text: tok.Literal, Float: tok.Float}
	case lexer.TokenChar:
		p.advance()
		return &cabs.Literal{Kind: cabs.LitChar, Text: tok.Literal, Char: tok.Char, Int: int64(tok.Char)}
	case lexer.TokenString:
		p.advance()
		return &cabs.Literal{Kind: cabs.LitString, Text: tok.Literal}
	case lexer.TokenIdent:
		p.advance()
		return &cabs.Ident{Name: tok.Literal}
	case lexer.TokenLParen:
		if cast, committed := p.tryCast(); committed {
			return cast
		}
		p.advance()
		inner := p.parseExpr(precLowest)
		if inner == nil || !p.expect(lexer.TokenRParen) {
			return nil
		}
		return inner
	case lexer.TokenSizeof, lexer.TokenAlignof:
		return p.parseSizeof()
	}

	p.errorf(p.mismatchCategory(), "expected expression, got %s", describe(tok))
	return nil
}

// tryCast attempts (type-name) operand. committed is false when no type
// name in parentheses is present; the cursor and the diagnostics are then
// restored. Once the parenthesized type is read the cast is committed, and
// a failing operand yields nil with committed still true.
func (p *Parser) tryCast() (cast cabs.Expr, committed bool) {
	if !p.looksLikeTypeName(1) {
		return nil, false
	}
	cp := p.mark()
	p.advance()
	ty := p.parseTypeName()
	if ty == nil || !p.accept(lexer.TokenRParen) {
		p.reset(cp)
		return nil, false
	}
	operand := p.parseExpr(precPrefix)
	if operand == nil {
		return nil, true
	}
	return &cabs.Cast{To: ty, Operand: operand}, true
}

// parseSizeof handles sizeof and _Alignof applied to a parenthesized type
// name or to an expression.
func (p *Parser) parseSizeof() cabs.Expr {
	kw := p.advance()
	if p.curIs(lexer.TokenLParen) && p.looksLikeTypeName(1) {
		cp := p.mark()
		p.advance()
		if ty := p.parseTypeName(); ty != nil && p.accept(lexer.TokenRParen) {
			if kw.Type == lexer.TokenAlignof {
				return &cabs.AlignofType{Type: ty}
			}
			return &cabs.SizeofType{Type: ty}
		}
		p.reset(cp)
	}
	operand := p.parseExpr(precPrefix)
	if operand == nil {
		return nil
	}
	op := cabs.OpSizeof
	if kw.Type == lexer.TokenAlignof {
		op = cabs.OpAlignof
	}
	return &cabs.Prefix{Op: op, Operand: operand}
}

func (p *Parser) parseCall(fn cabs.Expr) cabs.Expr {
	p.advance() // '('
	args := []cabs.Expr{}
	if p.accept(lexer.TokenRParen) {
		return &cabs.Call{Func: fn, Args: args}
	}
	for {
		arg := p.parseExpr(precComma)
		if arg == nil {
			return nil
		}
		args = append(args, arg)
		if !p.accept(lexer.TokenComma) {
			break
		}
	}
	if !p.expect(lexer.TokenRParen) {
		return nil
	}
	return &cabs.Call{Func: fn, Args: args}
}

func (p *Parser) parseIndex(array cabs.Expr) cabs.Expr {
	p.advance() // '['
	idx := p.parseExpr(precLowest)
	if idx == nil || !p.expect(lexer.TokenRBracket) {
		return nil
	}
	return &cabs.Index{Array: array, Index: idx}
}

// parseConditional parses "? then : else". The else operand may itself be
// a conditional, so a ? b : c ? d : e nests to the right.
func (p *Parser) parseConditional(cond cabs.Expr) cabs.Expr {
	p.advance() // '?'
	then := p.parseExpr(precLowest)
	if then == nil || !p.expect(lexer.TokenColon) {
		return nil
	}
	els := p.parseExpr(precAssign)
	if els == nil {
		return nil
	}
	return &cabs.Conditional{Cond: cond, Then: then, Else: els}
}
