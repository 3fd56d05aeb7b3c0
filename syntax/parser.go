package syntax

import (
	"sable/ast"
	"sable/report"
)

// Parser parses one Sable source file into an untyped AST.  The parser owns a
// reference to the session's node creation counter so creation indices stay
// globally unique and monotonic across every file of a compilation.
type Parser struct {
	lexer *Lexer

	// tok is the current token; peeked is a one-token pushback buffer.
	tok    *Token
	peeked *Token

	absPath  string
	reprPath string

	rep     *report.Reporter
	counter *uint32

	// noCurly suppresses container-initializer suffixes while parsing the
	// element type of an array type expression, so `[3]i32 {1, 2, 3}`
	// attaches the initializer to the array type rather than its element, and
	// while parsing a function's return type, so the body's opening brace is
	// left for the body.
	noCurly bool
}

// NewParser creates a parser over the given source text.  The counter must be
// shared by every parser of one session.
func NewParser(rep *report.Reporter, absPath, reprPath, src string, counter *uint32) *Parser {
	return &Parser{
		lexer:    NewLexer(src),
		absPath:  absPath,
		reprPath: reprPath,
		rep:      rep,
		counter:  counter,
	}
}

// ParseFile parses the entire file.  It returns false if a syntax error was
// reported.
func (p *Parser) ParseFile() (root *ast.Root, ok bool) {
	defer func() {
		if x := recover(); x != nil {
			if cerr, isCompile := x.(*report.LocalCompileError); isCompile {
				p.rep.ReportCompileError(p.absPath, p.reprPath, cerr.Span, cerr.Message)
				root, ok = nil, false
			} else {
				panic(x)
			}
		}
	}()

	p.advance()
	root = p.parseRoot()
	return root, true
}

// -----------------------------------------------------------------------------

// advance moves to the next token.
func (p *Parser) advance() {
	if p.peeked != nil {
		p.tok = p.peeked
		p.peeked = nil
		return
	}

	p.tok = p.lexer.NextToken()
}

// peek returns the token after the current one without consuming anything.
func (p *Parser) peek() *Token {
	if p.peeked == nil {
		p.peeked = p.lexer.NextToken()
	}

	return p.peeked
}

// got returns whether the current token has the given kind.
func (p *Parser) got(kind int) bool {
	return p.tok.Kind == kind
}

// accept consumes the current token if it has the given kind.
func (p *Parser) accept(kind int) (*Token, bool) {
	if p.tok.Kind == kind {
		tok := p.tok
		p.advance()
		return tok, true
	}

	return nil, false
}

// want consumes a token of the given kind or fails with a syntax error.
func (p *Parser) want(kind int) *Token {
	if p.tok.Kind != kind {
		p.fail("unexpected token: '%s'", p.describe(p.tok))
	}

	tok := p.tok
	p.advance()
	return tok
}

func (p *Parser) describe(tok *Token) string {
	if tok.Kind == TokEOF {
		return "end of file"
	}

	return tok.Value
}

func (p *Parser) fail(msg string, args ...interface{}) {
	panic(report.Raise(p.tok.Span(), msg, args...))
}

// -----------------------------------------------------------------------------

// newIndex allocates the next node creation index.
func (p *Parser) newIndex() uint32 {
	idx := *p.counter
	*p.counter++
	return idx
}

// baseOn creates an AST base spanning the given span.
func (p *Parser) baseOn(span *report.TextSpan) ast.ASTBase {
	return ast.NewASTBaseOn(span, p.newIndex())
}

// baseOver creates an AST base spanning from start to end.
func (p *Parser) baseOver(start, end *report.TextSpan) ast.ASTBase {
	return ast.NewASTBaseOn(report.NewSpanOver(start, end), p.newIndex())
}

// exprBaseOn creates an expression base spanning the given span.
func (p *Parser) exprBaseOn(span *report.TextSpan) ast.ExprBase {
	return ast.ExprBase{ASTBase: p.baseOn(span)}
}

// exprBaseOver creates an expression base spanning from start to end.
func (p *Parser) exprBaseOver(start, end *report.TextSpan) ast.ExprBase {
	return ast.ExprBase{ASTBase: p.baseOver(start, end)}
}
