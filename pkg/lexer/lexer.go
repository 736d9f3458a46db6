// Package lexer turns C source text into tokens.
package lexer

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Error is a lexical error. Lexing cannot continue past it.
type Error struct {
	Msg  string
	Char rune
	Pos  Pos
}

func (e *Error) Error() string {
	return fmt.Sprintf("line %d, col %d: %s", e.Pos.Line, e.Pos.Column, e.Msg)
}

// Lexer tokenizes C source code
type Lexer struct {
	input   string
	pos     int  // current position in input
	readPos int  // next reading position
	ch      byte // current character
	line    int
	column  int
}

// New creates a new Lexer for the given input
func New(input string) *Lexer {
	l := &Lexer{input: input, line: 1, column: 0}
	l.readChar()
	return l
}

// Tokenize lexes the whole input. The result does not contain TokenEOF;
// the end of the stream is the end of the slice.
func Tokenize(input string) ([]Token, error) {
	l := New(input)
	var toks []Token
	for {
		tok, err := l.NextToken()
		if err != nil {
			return toks, err
		}
		if tok.Type == TokenEOF {
			return toks, nil
		}
		toks = append(toks, tok)
	}
}

func (l *Lexer) readChar() {
	if l.pos < len(l.input) && l.readPos > 0 && l.input[l.pos] == '\n' {
		l.line++
		l.column = 0
	}
	if l.readPos >= len(l.input) {
		l.ch = 0 // EOF
	} else {
		l.ch = l.input[l.readPos]
	}
	l.pos = l.readPos
	l.readPos++
	l.column++
}

func (l *Lexer) peekChar() byte {
	if l.readPos >= len(l.input) {
		return 0
	}
	return l.input[l.readPos]
}

func (l *Lexer) peekCharN(n int) byte {
	if l.readPos+n-1 >= len(l.input) {
		return 0
	}
	return l.input[l.readPos+n-1]
}

func (l *Lexer) atEOF() bool {
	return l.pos >= len(l.input)
}

func (l *Lexer) here() Pos {
	return Pos{Offset: l.pos, Line: l.line, Column: l.column}
}

func (l *Lexer) errorf(pos Pos, ch rune, format string, args ...any) error {
	return &Error{Msg: fmt.Sprintf(format, args...), Char: ch, Pos: pos}
}

// NextToken returns the next token from the input. At the end of input it
// returns a TokenEOF token.
func (l *Lexer) NextToken() (Token, error) {
	if err := l.skipTrivia(); err != nil {
		return Token{}, err
	}

	start := l.here()
	if l.atEOF() {
		return Token{Type: TokenEOF, Pos: start}, nil
	}

	switch {
	case isLetter(l.ch):
		lit := l.readIdentifier()
		return Token{Type: LookupIdent(lit), Literal: lit, Pos: start}, nil
	case isDigit(l.ch), l.ch == '.' && isDigit(l.peekChar()):
		return l.readNumber(start)
	case l.ch == '"':
		return l.readString(start)
	case l.ch == '\'':
		return l.readCharLit(start)
	}

	typ := l.readSymbol()
	if typ == TokenIllegal {
		r, _ := utf8.DecodeRuneInString(l.input[start.Offset:])
		return Token{}, l.errorf(start, r, "unexpected character %q", r)
	}
	return Token{Type: typ, Literal: l.input[start.Offset:l.pos], Pos: start}, nil
}

// readSymbol consumes the longest operator or delimiter at the cursor.
func (l *Lexer) readSymbol() TokenType {
	ch := l.ch
	next := l.peekChar()
	two := func(t TokenType) TokenType {
		l.readChar()
		l.readChar()
		return t
	}
	one := func(t TokenType) TokenType {
		l.readChar()
		return t
	}

	switch ch {
	case '+':
		switch next {
		case '+':
			return two(TokenIncrement)
		case '=':
			return two(TokenPlusAssign)
		}
		return one(TokenPlus)
	case '-':
		switch next {
		case '-':
			return two(TokenDecrement)
		case '=':
			return two(TokenMinusAssign)
		case '>':
			return two(TokenArrow)
		}
		return one(TokenMinus)
	case '*':
		if next == '=' {
			return two(TokenStarAssign)
		}
		return one(TokenStar)
	case '/':
		if next == '=' {
			return two(TokenSlashAssign)
		}
		return one(TokenSlash)
	case '%':
		if next == '=' {
			return two(TokenPercentAssign)
		}
		return one(TokenPercent)
	case '=':
		if next == '=' {
			return two(TokenEq)
		}
		return one(TokenAssign)
	case '!':
		if next == '=' {
			return two(TokenNe)
		}
		return one(TokenNot)
	case '<':
		switch next {
		case '<':
			if l.peekCharN(2) == '=' {
				l.readChar()
				return two(TokenShlAssign)
			}
			return two(TokenShl)
		case '=':
			return two(TokenLe)
		}
		return one(TokenLt)
	case '>':
		switch next {
		case '>':
			if l.peekCharN(2) == '=' {
				l.readChar()
				return two(TokenShrAssign)
			}
			return two(TokenShr)
		case '=':
			return two(TokenGe)
		}
		return one(TokenGt)
	case '&':
		switch next {
		case '&':
			return two(TokenAnd)
		case '=':
			return two(TokenAndAssign)
		}
		return one(TokenAmpersand)
	case '|':
		switch next {
		case '|':
			return two(TokenOr)
		case '=':
			return two(TokenOrAssign)
		}
		return one(TokenPipe)
	case '^':
		if next == '=' {
			return two(TokenXorAssign)
		}
		return one(TokenCaret)
	case '~':
		return one(TokenTilde)
	case '?':
		return one(TokenQuestion)
	case ':':
		return one(TokenColon)
	case '(':
		return one(TokenLParen)
	case ')':
		return one(TokenRParen)
	case '{':
		return one(TokenLBrace)
	case '}':
		return one(TokenRBrace)
	case '[':
		return one(TokenLBracket)
	case ']':
		return one(TokenRBracket)
	case ';':
		return one(TokenSemicolon)
	case ',':
		return one(TokenComma)
	case '.':
		return one(TokenDot)
	}
	return TokenIllegal
}

func (l *Lexer) skipWhitespace() {
	for !l.atEOF() && isSpace(l.ch) {
		l.readChar()
	}
}

// skipTrivia skips whitespace and comments.
func (l *Lexer) skipTrivia() error {
	for {
		l.skipWhitespace()
		if l.atEOF() || l.ch != '/' {
			return nil
		}
		switch l.peekChar() {
		case '/':
			for !l.atEOF() && l.ch != '\n' {
				l.readChar()
			}
		case '*':
			start := l.here()
			l.readChar() // consume /
			l.readChar() // consume *
			for {
				if l.atEOF() {
					return l.errorf(start, '/', "unterminated block comment")
				}
				if l.ch == '*' && l.peekChar() == '/' {
					l.readChar()
					l.readChar()
					break
				}
				l.readChar()
			}
		default:
			return nil
		}
	}
}

func (l *Lexer) readIdentifier() string {
	pos := l.pos
	for isLetter(l.ch) || isDigit(l.ch) {
		l.readChar()
	}
	return l.input[pos:l.pos]
}

func (l *Lexer) readNumber(start Pos) (Token, error) {
	if l.ch == '0' && (l.peekChar() == 'x' || l.peekChar() == 'X') {
		return l.readHexNumber(start)
	}

	seenPoint := false
	for isDigit(l.ch) || l.ch == '.' {
		if l.ch == '.' {
			if seenPoint {
				return Token{}, l.errorf(l.here(), '.', "second decimal point in numeric literal")
			}
			seenPoint = true
		}
		l.readChar()
	}
	if (l.ch == 'e' || l.ch == 'E') && (isDigit(l.peekChar()) ||
		(l.peekChar() == '+' || l.peekChar() == '-') && isDigit(l.peekCharN(2))) {
		seenPoint = true
		l.readChar()
		if l.ch == '+' || l.ch == '-' {
			l.readChar()
		}
		for isDigit(l.ch) {
			l.readChar()
		}
	}
	digits := l.input[start.Offset:l.pos]

	suffix := l.readSuffix()
	lit := l.input[start.Offset:l.pos]
	if isLetter(l.ch) || isDigit(l.ch) {
		return Token{}, l.errorf(l.here(), rune(l.ch), "malformed numeric literal %q", lit+string(l.ch))
	}

	if seenPoint || suffix == "f" {
		if !seenPoint && suffix == "f" {
			return Token{}, l.errorf(start, rune(l.input[start.Offset]), "malformed numeric literal %q", lit)
		}
		if suffix != "" && suffix != "f" && suffix != "l" {
			return Token{}, l.errorf(start, rune(l.input[start.Offset]), "invalid suffix %q on floating literal", suffix)
		}
		f, err := strconv.ParseFloat(digits, 64)
		if err != nil {
			return Token{}, l.errorf(start, rune(l.input[start.Offset]), "malformed numeric literal %q", lit)
		}
		return Token{Type: TokenFloat, Literal: lit, Float: f, Suffix: suffix, Pos: start}, nil
	}

	if !validIntSuffix(suffix) {
		return Token{}, l.errorf(start, rune(l.input[start.Offset]), "invalid suffix %q on integer literal", suffix)
	}
	return l.intToken(start, digits, lit, suffix, 10)
}

func (l *Lexer) readHexNumber(start Pos) (Token, error) {
	l.readChar() // 0
	l.readChar() // x
	from := l.pos
	for isHexDigit(l.ch) {
		l.readChar()
	}
	digits := l.input[from:l.pos]
	suffix := l.readSuffix()
	lit := l.input[start.Offset:l.pos]
	if digits == "" || isLetter(l.ch) || isDigit(l.ch) || !validIntSuffix(suffix) {
		return Token{}, l.errorf(start, '0', "malformed numeric literal %q", lit)
	}
	return l.intToken(start, digits, lit, suffix, 16)
}

func (l *Lexer) intToken(start Pos, digits, lit, suffix string, base int) (Token, error) {
	if base == 10 && len(digits) > 1 && digits[0] == '0' {
		base = 8
	}
	v, err := strconv.ParseUint(digits, base, 64)
	if err != nil {
		return Token{}, l.errorf(start, rune(lit[0]), "invalid integer literal %q", lit)
	}
	return Token{Type: TokenInt, Literal: lit, Int: int64(v), Suffix: suffix, Pos: start}, nil
}

func (l *Lexer) readSuffix() string {
	pos := l.pos
	for isSuffixChar(l.ch) {
		l.readChar()
	}
	return strings.ToLower(l.input[pos:l.pos])
}

func validIntSuffix(s string) bool {
	switch s {
	case "", "u", "l", "ul", "lu", "ll", "ull", "llu":
		return true
	}
	return false
}

func (l *Lexer) readString(start Pos) (Token, error) {
	l.readChar() // consume opening quote
	pos := l.pos
	for l.ch != '"' {
		if l.atEOF() || l.ch == '\n' {
			return Token{}, l.errorf(start, '"', "unterminated string literal")
		}
		if l.ch == '\\' {
			l.readChar() // skip escape char
			if l.atEOF() {
				return Token{}, l.errorf(start, '"', "unterminated string literal")
			}
		}
		l.readChar()
	}
	str := l.input[pos:l.pos]
	l.readChar() // consume closing quote
	return Token{Type: TokenString, Literal: str, Pos: start}, nil
}

func (l *Lexer) readCharLit(start Pos) (Token, error) {
	l.readChar() // consume opening quote
	pos := l.pos
	if l.atEOF() || l.ch == '\'' || l.ch == '\n' {
		return Token{}, l.errorf(start, '\'', "empty or unterminated character literal")
	}

	var value rune
	if l.ch == '\\' {
		l.readChar()
		esc, ok := escapes[l.ch]
		if !ok || l.atEOF() {
			return Token{}, l.errorf(l.here(), rune(l.ch), "unknown escape sequence \\%c", l.ch)
		}
		value = esc
		l.readChar()
	} else {
		r, size := utf8.DecodeRuneInString(l.input[l.pos:])
		value = r
		for i := 0; i < size; i++ {
			l.readChar()
		}
	}

	if l.ch != '\'' {
		return Token{}, l.errorf(start, '\'', "unterminated character literal")
	}
	lit := l.input[pos:l.pos]
	l.readChar() // consume closing quote
	return Token{Type: TokenChar, Literal: lit, Char: value, Pos: start}, nil
}

var escapes = map[byte]rune{
	'n':  '\n',
	't':  '\t',
	'r':  '\r',
	'0':  0,
	'\\': '\\',
	'\'': '\'',
	'"':  '"',
	'a':  '\a',
	'b':  '\b',
	'f':  '\f',
	'v':  '\v',
}

func isLetter(ch byte) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z' || ch == '_'
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}

func isHexDigit(ch byte) bool {
	return isDigit(ch) || 'a' <= ch && ch <= 'f' || 'A' <= ch && ch <= 'F'
}

func isSuffixChar(ch byte) bool {
	switch ch {
	case 'u', 'U', 'l', 'L', 'f', 'F':
		return true
	}
	return false
}

func isSpace(ch byte) bool {
	switch ch {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	}
	return false
}
