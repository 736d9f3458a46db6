package parser

import (
	"strings"

	"github.com/raymyers/cfront/pkg/cabs"
	"github.com/raymyers/cfront/pkg/lexer"
)

// declSpec is the specifier prefix of a declaration: base type, storage
// class and declaration-level qualifiers.
type declSpec struct {
	base    cabs.Type
	words   []string // builtin type keywords, in source order
	storage cabs.StorageClass
	quals   cabs.Qualifiers
	def     cabs.Stmt // inline struct/union/enum definition
	pos     lexer.Pos
}

type declKind int

const (
	declVariable declKind = iota
	declFunction
)

var storageClasses = map[lexer.TokenType]cabs.StorageClass{
	lexer.TokenStatic:   cabs.StorageStatic,
	lexer.TokenExtern:   cabs.StorageExtern,
	lexer.TokenRegister: cabs.StorageRegister,
	lexer.TokenAuto:     cabs.StorageAuto,
}

func isTypeKeyword(t lexer.TokenType) bool {
	switch t {
	case lexer.TokenInt_, lexer.TokenVoid, lexer.TokenChar_, lexer.TokenShort,
		lexer.TokenLong, lexer.TokenFloat_, lexer.TokenDouble,
		lexer.TokenSigned, lexer.TokenUnsigned:
		return true
	}
	return false
}

// isDeclSpecifier reports whether t can only begin declaration specifiers.
func isDeclSpecifier(t lexer.TokenType) bool {
	if isTypeKeyword(t) {
		return true
	}
	if _, ok := storageClasses[t]; ok {
		return true
	}
	switch t {
	case lexer.TokenConst, lexer.TokenVolatile, lexer.TokenRestrict, lexer.TokenInline,
		lexer.TokenStruct, lexer.TokenUnion, lexer.TokenEnum:
		return true
	}
	return false
}

// startsDeclaration decides whether the statement at the cursor is a
// declaration. An identifier starts one when it is a typedef name, or is
// followed by another identifier, or by '*' and is not a known variable.
func (p *Parser) startsDeclaration() bool {
	tok := p.cur()
	if isDeclSpecifier(tok.Type) {
		return true
	}
	if tok.Type != lexer.TokenIdent {
		return false
	}
	if p.isTypedef(tok.Literal) {
		return !p.peekIs(lexer.TokenColon)
	}
	switch p.peek().Type {
	case lexer.TokenIdent:
		return true
	case lexer.TokenStar:
		return !p.isVariable(tok.Literal)
	}
	return false
}

// parseDeclSpec consumes specifiers up to the first pointer star or the
// declared name. Each token updates at most one of: base type, a qualifier,
// the storage class.
func (p *Parser) parseDeclSpec() (*declSpec, bool) {
	spec := &declSpec{pos: p.cur().Pos}

loop:
	for {
		tok := p.cur()
		if sc, ok := storageClasses[tok.Type]; ok {
			if spec.storage != cabs.StorageNone {
				p.errorf(CategoryDeclaration, "conflicting storage class %q: already %q", tok.Literal, spec.storage)
				return nil, false
			}
			spec.storage = sc
			p.advance()
			continue
		}

		switch {
		case tok.Type == lexer.TokenConst:
			p.setQualifier(&spec.quals.Const, tok)
		case tok.Type == lexer.TokenVolatile:
			p.setQualifier(&spec.quals.Volatile, tok)
		case tok.Type == lexer.TokenInline:
			p.setQualifier(&spec.quals.Inline, tok)
		case tok.Type == lexer.TokenRestrict:
			p.warnf(tok.Pos, "restrict applies only to pointer types; ignored")
		case isTypeKeyword(tok.Type):
			if spec.base != nil {
				p.errorf(CategoryDeclaration, "two or more data types in declaration specifiers")
				return nil, false
			}
			if !p.allowTypeWord(spec.words, tok) {
				return nil, false
			}
			spec.words = append(spec.words, tok.Literal)
		case tok.Type == lexer.TokenStruct, tok.Type == lexer.TokenUnion, tok.Type == lexer.TokenEnum:
			if spec.base != nil || len(spec.words) > 0 {
				p.errorf(CategoryDeclaration, "two or more data types in declaration specifiers")
				return nil, false
			}
			if !p.parseComposite(spec) {
				return nil, false
			}
			continue
		case tok.Type == lexer.TokenIdent:
			if spec.base != nil || len(spec.words) > 0 {
				break loop // the declared name
			}
			spec.base = &cabs.Named{Name: tok.Literal}
		default:
			break loop
		}
		p.advance()
	}

	if len(spec.words) > 0 {
		spec.base = &cabs.Named{Name: strings.Join(spec.words, " ")}
	}
	if spec.base == nil {
		if p.atEOF() {
			p.errorf(CategoryUnexpectedEOF, "unexpected end of input in declaration")
		} else {
			p.errorf(CategorySyntax, "expected type specifier, got %s", describe(p.cur()))
		}
		return nil, false
	}
	return spec, true
}

// allowTypeWord rejects a repeated type keyword. long is the one keyword
// that may appear twice.
func (p *Parser) allowTypeWord(words []string, tok lexer.Token) bool {
	seen := 0
	for _, w := range words {
		if w == tok.Literal {
			seen++
		}
	}
	limit := 1
	if tok.Type == lexer.TokenLong {
		limit = 2
	}
	if seen >= limit {
		p.errorf(CategoryDeclaration, "duplicate %q in declaration specifiers", tok.Literal)
		return false
	}
	return true
}

func (p *Parser) setQualifier(flag *bool, tok lexer.Token) {
	if *flag {
		p.warnf(tok.Pos, "duplicate %q qualifier", tok.Literal)
		return
	}
	*flag = true
}

// parseComposite parses struct/union/enum [tag] [{ body }] into spec.base,
// and the body (if any) into spec.def.
func (p *Parser) parseComposite(spec *declSpec) bool {
	kw := p.advance()
	tag := ""
	if p.curIs(lexer.TokenIdent) {
		tag = p.advance().Literal
	}
	if tag == "" && !p.curIs(lexer.TokenLBrace) {
		p.expectIdent("tag name")
		return false
	}

	switch kw.Type {
	case lexer.TokenStruct:
		spec.base = &cabs.Struct{Tag: tag}
	case lexer.TokenUnion:
		spec.base = &cabs.Union{Tag: tag}
	case lexer.TokenEnum:
		spec.base = &cabs.Enum{Tag: tag}
	}

	if !p.curIs(lexer.TokenLBrace) {
		return true
	}
	p.advance()

	if kw.Type == lexer.TokenEnum {
		variants, ok := p.parseEnumBody()
		if !ok {
			return false
		}
		spec.def = &cabs.EnumDecl{Tag: tag, Variants: variants}
		return true
	}

	fields, ok := p.parseFieldList()
	if !ok {
		return false
	}
	if kw.Type == lexer.TokenStruct {
		spec.def = &cabs.StructDecl{Tag: tag, Fields: fields}
	} else {
		spec.def = &cabs.UnionDecl{Tag: tag, Fields: fields}
	}
	return true
}

// parseFieldList parses member declarations up to and including '}'.
func (p *Parser) parseFieldList() ([]cabs.Field, bool) {
	fields := []cabs.Field{}
	for !p.curIs(lexer.TokenRBrace) {
		if p.atEOF() {
			p.expect(lexer.TokenRBrace)
			return nil, false
		}
		spec, ok := p.parseDeclSpec()
		if !ok {
			return nil, false
		}
		for {
			ty := p.parsePointers(spec.base)
			name, ok := p.expectIdent("field name")
			if !ok {
				return nil, false
			}
			ty, ok = p.parseArraySuffix(ty)
			if !ok {
				return nil, false
			}
			fields = append(fields, cabs.Field{Name: name, Type: ty})
			if !p.accept(lexer.TokenComma) {
				break
			}
		}
		if !p.expect(lexer.TokenSemicolon) {
			return nil, false
		}
	}
	p.advance() // '}'
	return fields, true
}

// parseEnumBody parses enumerators up to and including '}'.
func (p *Parser) parseEnumBody() ([]cabs.Enumerator, bool) {
	var variants []cabs.Enumerator
	for !p.curIs(lexer.TokenRBrace) {
		name, ok := p.expectIdent("enumerator name")
		if !ok {
			return nil, false
		}
		v := cabs.Enumerator{Name: name}
		if p.accept(lexer.TokenAssign) {
			if v.Value = p.parseExpr(precAssign); v.Value == nil {
				return nil, false
			}
		}
		variants = append(variants, v)
		p.declare(name)
		if !p.accept(lexer.TokenComma) {
			break
		}
	}
	if !p.expect(lexer.TokenRBrace) {
		return nil, false
	}
	return variants, true
}

// parsePointers wraps base in one Pointer per '*'. Qualifiers after a run
// of stars belong to the innermost pointer of that run, so
// int * const * p is a pointer to a const pointer to int.
func (p *Parser) parsePointers(base cabs.Type) cabs.Type {
	var levels []*cabs.Pointer
	runStart := 0
	prevStar := false

	for {
		tok := p.cur()
		switch tok.Type {
		case lexer.TokenStar:
			if !prevStar {
				runStart = len(levels)
			}
			levels = append(levels, &cabs.Pointer{})
			prevStar = true
		case lexer.TokenConst, lexer.TokenRestrict, lexer.TokenVolatile:
			if len(levels) == 0 {
				return base
			}
			ptr := levels[runStart]
			switch tok.Type {
			case lexer.TokenConst:
				p.setQualifier(&ptr.Const, tok)
			case lexer.TokenRestrict:
				p.setQualifier(&ptr.Restrict, tok)
			case lexer.TokenVolatile:
				p.setQualifier(&ptr.Volatile, tok)
			}
			prevStar = false
		default:
			ty := base
			for _, lv := range levels {
				lv.Pointee = ty
				ty = lv
			}
			return ty
		}
		p.advance()
	}
}

// parseArraySuffix parses any number of [size] suffixes. int a[2][3] is an
// array of 2 arrays of 3 ints.
func (p *Parser) parseArraySuffix(elem cabs.Type) (cabs.Type, bool) {
	var dims []cabs.Expr
	for p.accept(lexer.TokenLBracket) {
		var size cabs.Expr
		if !p.curIs(lexer.TokenRBracket) {
			if size = p.parseExpr(precAssign); size == nil {
				return nil, false
			}
		}
		if !p.expect(lexer.TokenRBracket) {
			return nil, false
		}
		dims = append(dims, size)
	}
	ty := elem
	for i := len(dims) - 1; i >= 0; i-- {
		ty = &cabs.Array{Elem: ty, Size: dims[i]}
	}
	return ty, true
}

// classifyDeclarator scans forward from the cursor (just past the declared
// name) for the first decisive token: '(' means a function, '=', ';', '['
// or ',' mean a variable. The scan stops at braces and at end of input.
func (p *Parser) classifyDeclarator() (declKind, bool) {
	for i := p.pos; ; i++ {
		if i >= len(p.tokens) {
			p.pos = len(p.tokens)
			p.errorf(CategoryUnexpectedEOF, "unexpected end of input in declaration")
			return 0, false
		}
		switch p.tokens[i].Type {
		case lexer.TokenLParen:
			return declFunction, true
		case lexer.TokenAssign, lexer.TokenSemicolon, lexer.TokenLBracket, lexer.TokenComma:
			return declVariable, true
		case lexer.TokenLBrace, lexer.TokenRBrace:
			p.errorf(CategorySyntax, "expected ';' after declarator, got %s", describe(p.cur()))
			return 0, false
		}
	}
}

// parseDeclaration parses a declaration statement. It returns more than one
// statement for an inline composite definition followed by declarators, or
// for comma-separated declarators.
func (p *Parser) parseDeclaration() []cabs.Stmt {
	spec, ok := p.parseDeclSpec()
	if !ok {
		return nil
	}

	if p.accept(lexer.TokenSemicolon) {
		return []cabs.Stmt{p.bareSpecStmt(spec)}
	}

	var out []cabs.Stmt
	if spec.def != nil {
		out = append(out, spec.def)
	}

	ty := p.parsePointers(spec.base)
	name, ok := p.expectIdent("identifier after type")
	if !ok {
		return nil
	}

	kind, ok := p.classifyDeclarator()
	if !ok {
		return nil
	}
	if kind == declFunction {
		fn := p.parseFunctionRest(spec, ty, name)
		if fn == nil {
			return nil
		}
		return append(out, fn)
	}

	for {
		v := p.parseVariableRest(spec, ty, name)
		if v == nil {
			return nil
		}
		out = append(out, v)
		if !p.accept(lexer.TokenComma) {
			break
		}
		ty = p.parsePointers(spec.base)
		if name, ok = p.expectIdent("identifier after ','"); !ok {
			return nil
		}
		if p.curIs(lexer.TokenLParen) {
			p.errorf(CategorySyntax, "function declarator in declarator list is not supported")
			return nil
		}
	}
	if !p.expect(lexer.TokenSemicolon) {
		return nil
	}
	return out
}

// bareSpecStmt handles a declaration with no declarator: struct S { ... };
// or struct S;
func (p *Parser) bareSpecStmt(spec *declSpec) cabs.Stmt {
	if spec.def != nil {
		return spec.def
	}
	switch base := spec.base.(type) {
	case *cabs.Struct:
		return &cabs.StructDecl{Tag: base.Tag}
	case *cabs.Union:
		return &cabs.UnionDecl{Tag: base.Tag}
	case *cabs.Enum:
		return &cabs.EnumDecl{Tag: base.Tag}
	}
	p.warnf(spec.pos, "declaration does not declare anything")
	return &cabs.Empty{}
}

// parseVariableRest parses the array suffix and initializer after the name.
func (p *Parser) parseVariableRest(spec *declSpec, ty cabs.Type, name string) *cabs.Variable {
	ty, ok := p.parseArraySuffix(ty)
	if !ok {
		return nil
	}
	v := &cabs.Variable{
		Name:    name,
		Quals:   spec.quals,
		Storage: spec.storage,
		Type:    ty,
	}
	if p.accept(lexer.TokenAssign) {
		if p.curIs(lexer.TokenLBrace) {
			p.errorf(CategorySyntax, "brace-enclosed initializer lists are not supported")
			return nil
		}
		if v.Init = p.parseExpr(precComma); v.Init == nil {
			return nil
		}
	}
	p.declare(name)
	return v
}

// parseFunctionRest parses the parameter list and either ';' (forward
// declaration) or a body.
func (p *Parser) parseFunctionRest(spec *declSpec, ret cabs.Type, name string) *cabs.Function {
	params, ok := p.parseParams()
	if !ok {
		return nil
	}
	fn := &cabs.Function{
		Name:    name,
		Quals:   spec.quals,
		Storage: spec.storage,
		Params:  params,
		Return:  ret,
	}
	p.declare(name)

	switch p.cur().Type {
	case lexer.TokenSemicolon:
		p.advance()
		return fn
	case lexer.TokenLBrace:
		if p.inFunction {
			p.errorf(CategorySyntax, "function definition is not allowed here")
			return nil
		}
		names := make([]string, len(params))
		for i, prm := range params {
			names[i] = prm.Name
		}
		p.enterFunction(names)
		defer p.leaveFunction()
		if fn.Body = p.parseBlock(); fn.Body == nil {
			return nil
		}
		return fn
	}
	p.expect(lexer.TokenLBrace)
	return nil
}

// parseParams parses '(' parameter-list ')'. (void) and () are both empty.
func (p *Parser) parseParams() ([]cabs.Field, bool) {
	if !p.expect(lexer.TokenLParen) {
		return nil, false
	}
	params := []cabs.Field{}
	if p.curIs(lexer.TokenVoid) && p.peekIs(lexer.TokenRParen) {
		p.advance()
	}
	if p.accept(lexer.TokenRParen) {
		return params, true
	}
	for {
		spec, ok := p.parseDeclSpec()
		if !ok {
			return nil, false
		}
		if spec.storage != cabs.StorageNone && spec.storage != cabs.StorageRegister {
			p.errorf(CategoryDeclaration, "invalid storage class %q for parameter", spec.storage)
			return nil, false
		}
		ty := p.parsePointers(spec.base)
		name := ""
		if p.curIs(lexer.TokenIdent) {
			name = p.advance().Literal
		}
		if ty, ok = p.parseArraySuffix(ty); !ok {
			return nil, false
		}
		params = append(params, cabs.Field{Name: name, Type: ty})
		if !p.accept(lexer.TokenComma) {
			break
		}
	}
	if !p.expect(lexer.TokenRParen) {
		return nil, false
	}
	return params, true
}

// looksLikeTypeName decides, without consuming anything, whether the token
// at offset n begins a type name inside parentheses.
func (p *Parser) looksLikeTypeName(n int) bool {
	tok := p.peekN(n)
	if isDeclSpecifier(tok.Type) {
		return true
	}
	if tok.Type != lexer.TokenIdent {
		return false
	}
	if p.isTypedef(tok.Literal) {
		return true
	}
	if p.isVariable(tok.Literal) {
		return false
	}
	// (T *) or (T **) with T not otherwise known
	i := n + 1
	stars := 0
	for {
		switch p.peekN(i).Type {
		case lexer.TokenStar:
			stars++
		case lexer.TokenConst, lexer.TokenRestrict, lexer.TokenVolatile:
		case lexer.TokenRParen:
			return stars > 0
		default:
			return false
		}
		i++
	}
}

// parseTypeName parses an abstract type (no declared name) as used in
// casts and sizeof.
func (p *Parser) parseTypeName() cabs.Type {
	spec, ok := p.parseDeclSpec()
	if !ok {
		return nil
	}
	if spec.storage != cabs.StorageNone {
		p.errorf(CategoryDeclaration, "storage class %q in type name", spec.storage)
		return nil
	}
	ty := p.parsePointers(spec.base)
	ty, ok = p.parseArraySuffix(ty)
	if !ok {
		return nil
	}
	return ty
}
