package syntax

import (
	"strings"

	"sable/report"
)

// Lexer scans Sable source text into tokens.  Positions are zero-indexed.
type Lexer struct {
	src []rune

	// ndx is the index of the next rune to consume.
	ndx int

	// line and col are the position of the next rune.
	line, col int

	// tokLine and tokCol mark the start of the token being built.
	tokLine, tokCol int

	// tokBuf accumulates the text of the token being built.
	tokBuf strings.Builder
}

// NewLexer creates a lexer over the given source text.
func NewLexer(src string) *Lexer {
	return &Lexer{src: []rune(src)}
}

// NextToken scans and returns the next token.  Lexical errors are raised as
// local compile errors.
func (l *Lexer) NextToken() *Token {
	l.skipTrivia()

	l.tokLine, l.tokCol = l.line, l.col
	l.tokBuf.Reset()

	if l.ndx >= len(l.src) {
		return l.makeToken(TokEOF)
	}

	c := l.peek()
	switch {
	case isIdentStart(c):
		return l.lexIdentOrKeyword()
	case isDigit(c):
		return l.lexNumber()
	case c == '"':
		return l.lexString(false)
	case c == '\'':
		return l.lexChar()
	}

	return l.lexOperator()
}

// -----------------------------------------------------------------------------

func (l *Lexer) peek() rune {
	return l.src[l.ndx]
}

func (l *Lexer) peekAt(offset int) (rune, bool) {
	if l.ndx+offset < len(l.src) {
		return l.src[l.ndx+offset], true
	}

	return 0, false
}

// advance consumes the next rune and appends it to the token buffer.
func (l *Lexer) advance() rune {
	c := l.src[l.ndx]
	l.ndx++

	if c == '\n' {
		l.line++
		l.col = 0
	} else {
		l.col++
	}

	l.tokBuf.WriteRune(c)
	return c
}

// skip consumes the next rune without recording it.
func (l *Lexer) skip() {
	c := l.src[l.ndx]
	l.ndx++

	if c == '\n' {
		l.line++
		l.col = 0
	} else {
		l.col++
	}
}

// skipTrivia consumes whitespace and line comments.
func (l *Lexer) skipTrivia() {
	for l.ndx < len(l.src) {
		c := l.peek()
		if c == ' ' || c == '\t' || c == '\r' || c == '\n' {
			l.skip()
		} else if c == '/' {
			if next, ok := l.peekAt(1); ok && next == '/' {
				for l.ndx < len(l.src) && l.peek() != '\n' {
					l.skip()
				}
			} else {
				return
			}
		} else {
			return
		}
	}
}

// makeToken finishes the token being built.
func (l *Lexer) makeToken(kind int) *Token {
	endLine, endCol := l.line, l.col-1
	if endCol < 0 {
		endLine, endCol = l.tokLine, l.tokCol
	}

	return &Token{
		Kind:    kind,
		Value:   l.tokBuf.String(),
		Line:    l.tokLine,
		Col:     l.tokCol,
		EndLine: endLine,
		EndCol:  endCol,
	}
}

func (l *Lexer) fail(msg string, args ...interface{}) {
	span := &report.TextSpan{
		StartLine: l.tokLine,
		StartCol:  l.tokCol,
		EndLine:   l.line,
		EndCol:    l.col,
	}
	panic(report.Raise(span, msg, args...))
}

// -----------------------------------------------------------------------------

func isIdentStart(c rune) bool {
	return c == '_' || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

func isDigit(c rune) bool {
	return '0' <= c && c <= '9'
}

func isHexDigit(c rune) bool {
	return isDigit(c) || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}

func (l *Lexer) lexIdentOrKeyword() *Token {
	// A `c` immediately followed by a string literal is a C string.
	if l.peek() == 'c' {
		if next, ok := l.peekAt(1); ok && next == '"' {
			l.skip() // drop the prefix
			return l.lexString(true)
		}
	}

	for l.ndx < len(l.src) && (isIdentStart(l.peek()) || isDigit(l.peek())) {
		l.advance()
	}

	if kind, ok := keywords[l.tokBuf.String()]; ok {
		return l.makeToken(kind)
	}

	return l.makeToken(TokIdent)
}

func (l *Lexer) lexNumber() *Token {
	isFloat := false

	// Prefixed integer literals.
	if l.peek() == '0' {
		if next, ok := l.peekAt(1); ok && (next == 'x' || next == 'o' || next == 'b') {
			l.advance()
			l.advance()
			for l.ndx < len(l.src) && (isHexDigit(l.peek()) || l.peek() == '_') {
				l.advance()
			}

			return l.makeToken(TokIntLit)
		}
	}

	for l.ndx < len(l.src) && (isDigit(l.peek()) || l.peek() == '_') {
		l.advance()
	}

	// A fractional part: a dot followed by a digit.  A bare dot is a field
	// access or the start of an ellipsis.
	if l.ndx < len(l.src) && l.peek() == '.' {
		if next, ok := l.peekAt(1); ok && isDigit(next) {
			isFloat = true
			l.advance()
			for l.ndx < len(l.src) && isDigit(l.peek()) {
				l.advance()
			}
		}
	}

	// An exponent.
	if l.ndx < len(l.src) && (l.peek() == 'e' || l.peek() == 'E') {
		if next, ok := l.peekAt(1); ok && (isDigit(next) || next == '-' || next == '+') {
			isFloat = true
			l.advance()
			if l.peek() == '-' || l.peek() == '+' {
				l.advance()
			}
			for l.ndx < len(l.src) && isDigit(l.peek()) {
				l.advance()
			}
		}
	}

	if isFloat {
		return l.makeToken(TokFloatLit)
	}

	return l.makeToken(TokIntLit)
}

// lexEscape consumes an escape sequence (after the backslash) and returns the
// denoted character.
func (l *Lexer) lexEscape() rune {
	if l.ndx >= len(l.src) {
		l.fail("unterminated escape sequence")
	}

	c := l.src[l.ndx]
	l.skip()

	switch c {
	case 'n':
		return '\n'
	case 't':
		return '\t'
	case 'r':
		return '\r'
	case '0':
		return 0
	case '\\', '\'', '"':
		return c
	case 'x':
		var val rune
		for i := 0; i < 2; i++ {
			if l.ndx >= len(l.src) || !isHexDigit(l.peek()) {
				l.fail("invalid hex escape sequence")
			}

			d := l.src[l.ndx]
			l.skip()
			val <<= 4
			switch {
			case isDigit(d):
				val += d - '0'
			case 'a' <= d && d <= 'f':
				val += d - 'a' + 10
			default:
				val += d - 'A' + 10
			}
		}

		return val
	}

	l.fail("invalid escape sequence: '\\%c'", c)
	return 0
}

func (l *Lexer) lexString(cstr bool) *Token {
	l.skip() // opening quote

	var sb strings.Builder
	for {
		if l.ndx >= len(l.src) || l.peek() == '\n' {
			l.fail("unterminated string literal")
		}

		c := l.peek()
		if c == '"' {
			l.skip()
			break
		}

		l.skip()
		if c == '\\' {
			sb.WriteRune(l.lexEscape())
		} else {
			sb.WriteRune(c)
		}
	}

	l.tokBuf.WriteString(sb.String())
	if cstr {
		return l.makeToken(TokCStringLit)
	}

	return l.makeToken(TokStringLit)
}

func (l *Lexer) lexChar() *Token {
	l.skip() // opening quote

	if l.ndx >= len(l.src) {
		l.fail("unterminated character literal")
	}

	c := l.peek()
	l.skip()
	if c == '\\' {
		c = l.lexEscape()
	}

	if l.ndx >= len(l.src) || l.peek() != '\'' {
		l.fail("unterminated character literal")
	}
	l.skip()

	l.tokBuf.WriteRune(c)
	return l.makeToken(TokCharLit)
}

// -----------------------------------------------------------------------------

// operator spellings ordered so longer operators match first.
var operators = []struct {
	text string
	kind int
}{
	{"<<=", TokShlAssign},
	{">>=", TokShrAssign},
	{"&&=", TokAndAndAssign},
	{"||=", TokOrOrAssign},
	{"...", TokEllipsis},
	{"==", TokEq},
	{"!=", TokNotEq},
	{"<=", TokLessEq},
	{">=", TokGreaterEq},
	{"<<", TokShl},
	{">>", TokShr},
	{"&&", TokAndAnd},
	{"||", TokOrOr},
	{"->", TokArrow},
	{"=>", TokFatArrow},
	{"+=", TokPlusAssign},
	{"-=", TokMinusAssign},
	{"*=", TokStarAssign},
	{"/=", TokSlashAssign},
	{"%=", TokPercentAssign},
	{"&=", TokAmpAssign},
	{"^=", TokCaretAssign},
	{"|=", TokPipeAssign},
	{"++", TokPlusPlus},
	{"??", TokQuestQuest},
	{"?=", TokQuestEq},
	{"%%", TokPercPerc},
	{"(", TokLParen},
	{")", TokRParen},
	{"{", TokLBrace},
	{"}", TokRBrace},
	{"[", TokLBracket},
	{"]", TokRBracket},
	{",", TokComma},
	{";", TokSemicolon},
	{":", TokColon},
	{".", TokDot},
	{"#", TokHash},
	{"@", TokAt},
	{"|", TokPipe},
	{"=", TokAssign},
	{"+", TokPlus},
	{"-", TokMinus},
	{"*", TokStar},
	{"/", TokSlash},
	{"%", TokPercent},
	{"&", TokAmp},
	{"^", TokCaret},
	{"!", TokBang},
	{"~", TokTilde},
	{"<", TokLess},
	{">", TokGreater},
	{"?", TokQuestion},
}

func (l *Lexer) lexOperator() *Token {
	for _, op := range operators {
		if l.matches(op.text) {
			for range op.text {
				l.advance()
			}

			return l.makeToken(op.kind)
		}
	}

	c := l.peek()
	l.advance()
	l.fail("unexpected character: '%c'", c)
	return nil
}

func (l *Lexer) matches(text string) bool {
	for i, c := range text {
		got, ok := l.peekAt(i)
		if !ok || got != c {
			return false
		}
	}

	return true
}
