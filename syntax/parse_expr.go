package syntax

import (
	"sable/ast"
	"sable/report"
)

// parseExpr parses a full expression.
func (p *Parser) parseExpr() ast.Expr {
	return p.parseBoolOr()
}

// binLevel parses a left-associative run of the given operators over the next
// tighter level.
func (p *Parser) binLevel(ops map[int]ast.BinOp, next func() ast.Expr) ast.Expr {
	lhs := next()

	for {
		op, ok := ops[p.tok.Kind]
		if !ok {
			return lhs
		}

		p.advance()
		rhs := next()
		lhs = &ast.BinaryExpr{
			ExprBase: p.exprBaseOver(lhs.Span(), rhs.Span()),
			Op:       op,
			Lhs:      lhs,
			Rhs:      rhs,
		}
	}
}

var boolOrOps = map[int]ast.BinOp{TokOrOr: ast.BinOpBoolOr}
var boolAndOps = map[int]ast.BinOp{TokAndAnd: ast.BinOpBoolAnd}
var cmpOps = map[int]ast.BinOp{
	TokEq:        ast.BinOpCmpEq,
	TokNotEq:     ast.BinOpCmpNotEq,
	TokLess:      ast.BinOpCmpLT,
	TokGreater:   ast.BinOpCmpGT,
	TokLessEq:    ast.BinOpCmpLTE,
	TokGreaterEq: ast.BinOpCmpGTE,
}
var bitOrOps = map[int]ast.BinOp{TokPipe: ast.BinOpBitOr}
var bitXorOps = map[int]ast.BinOp{TokCaret: ast.BinOpBitXor}
var bitAndOps = map[int]ast.BinOp{TokAmp: ast.BinOpBitAnd}
var shiftOps = map[int]ast.BinOp{TokShl: ast.BinOpShl, TokShr: ast.BinOpShr}
var addOps = map[int]ast.BinOp{
	TokPlus:     ast.BinOpAdd,
	TokMinus:    ast.BinOpSub,
	TokPlusPlus: ast.BinOpArrayCat,
}
var mulOps = map[int]ast.BinOp{
	TokStar:    ast.BinOpMul,
	TokSlash:   ast.BinOpDiv,
	TokPercent: ast.BinOpMod,
}

func (p *Parser) parseBoolOr() ast.Expr {
	return p.binLevel(boolOrOps, p.parseBoolAnd)
}

func (p *Parser) parseBoolAnd() ast.Expr {
	return p.binLevel(boolAndOps, p.parseUnwrap)
}

// parseUnwrap parses the unwrap operators `??` and `%%`, which sit between
// the boolean and comparison levels.
func (p *Parser) parseUnwrap() ast.Expr {
	lhs := p.parseComparison()

	for {
		switch p.tok.Kind {
		case TokQuestQuest:
			p.advance()
			rhs := p.parseComparison()
			lhs = &ast.BinaryExpr{
				ExprBase: p.exprBaseOver(lhs.Span(), rhs.Span()),
				Op:       ast.BinOpUnwrapOptional,
				Lhs:      lhs,
				Rhs:      rhs,
			}
		case TokPercPerc:
			p.advance()

			var errVar *ast.SymbolExpr
			if _, ok := p.accept(TokPipe); ok {
				name := p.want(TokIdent)
				errVar = &ast.SymbolExpr{
					ExprBase: p.exprBaseOn(name.Span()),
					Name:     name.Value,
				}
				p.want(TokPipe)
			}

			rhs := p.parseComparison()
			lhs = &ast.UnwrapErrorExpr{
				ExprBase: p.exprBaseOver(lhs.Span(), rhs.Span()),
				Operand:  lhs,
				ErrVar:   errVar,
				Else:     rhs,
			}
		default:
			return lhs
		}
	}
}

func (p *Parser) parseComparison() ast.Expr {
	return p.binLevel(cmpOps, p.parseBitOr)
}

func (p *Parser) parseBitOr() ast.Expr {
	return p.binLevel(bitOrOps, p.parseBitXor)
}

func (p *Parser) parseBitXor() ast.Expr {
	return p.binLevel(bitXorOps, p.parseBitAnd)
}

func (p *Parser) parseBitAnd() ast.Expr {
	return p.binLevel(bitAndOps, p.parseShift)
}

func (p *Parser) parseShift() ast.Expr {
	return p.binLevel(shiftOps, p.parseAddition)
}

func (p *Parser) parseAddition() ast.Expr {
	return p.binLevel(addOps, p.parseMultiplication)
}

func (p *Parser) parseMultiplication() ast.Expr {
	return p.binLevel(mulOps, p.parseUnary)
}

// -----------------------------------------------------------------------------

// parseUnary parses prefix operator applications.
func (p *Parser) parseUnary() ast.Expr {
	startSpan := p.tok.Span()

	var op ast.PrefixOp
	switch p.tok.Kind {
	case TokBang:
		op = ast.PrefixOpBoolNot
	case TokTilde:
		op = ast.PrefixOpBitNot
	case TokMinus:
		op = ast.PrefixOpNeg
	case TokAmp:
		p.advance()
		op = ast.PrefixOpAddrOf
		if _, ok := p.accept(TokConst); ok {
			op = ast.PrefixOpConstAddrOf
		}

		operand := p.parseUnary()
		return &ast.PrefixExpr{
			ExprBase: p.exprBaseOver(startSpan, operand.Span()),
			Op:       op,
			Operand:  operand,
		}
	case TokStar:
		op = ast.PrefixOpDeref
	case TokQuestion:
		op = ast.PrefixOpOptional
	case TokPercent:
		op = ast.PrefixOpError
	case TokPercPerc:
		op = ast.PrefixOpUnwrapError
	default:
		return p.parsePostfix()
	}

	p.advance()
	operand := p.parseUnary()

	return &ast.PrefixExpr{
		ExprBase: p.exprBaseOver(startSpan, operand.Span()),
		Op:       op,
		Operand:  operand,
	}
}

// -----------------------------------------------------------------------------

// parsePostfix parses call, index, slice, field access, and container
// initialization suffixes.
func (p *Parser) parsePostfix() ast.Expr {
	expr := p.parsePrimary()

	for {
		switch p.tok.Kind {
		case TokLParen:
			p.advance()
			var args []ast.Expr
			for !p.got(TokRParen) {
				if len(args) > 0 {
					p.want(TokComma)
				}
				args = append(args, p.parseExpr())
			}
			end := p.want(TokRParen)

			expr = &ast.CallExpr{
				ExprBase: p.exprBaseOver(expr.Span(), end.Span()),
				Fn:       expr,
				Args:     args,
			}
		case TokLBracket:
			p.advance()
			start := p.parseExpr()

			if _, ok := p.accept(TokEllipsis); ok {
				var endExpr ast.Expr
				if !p.got(TokRBracket) {
					endExpr = p.parseExpr()
				}
				end := p.want(TokRBracket)

				expr = &ast.SliceRangeExpr{
					ExprBase: p.exprBaseOver(expr.Span(), end.Span()),
					Array:    expr,
					Start:    start,
					End:      endExpr,
				}
			} else {
				end := p.want(TokRBracket)
				expr = &ast.IndexExpr{
					ExprBase:  p.exprBaseOver(expr.Span(), end.Span()),
					Array:     expr,
					Subscript: start,
				}
			}
		case TokDot:
			p.advance()
			name := p.want(TokIdent)

			expr = &ast.FieldExpr{
				ExprBase: p.exprBaseOver(expr.Span(), name.Span()),
				Root:     expr,
				Field:    name.Value,
			}
		case TokLBrace:
			if p.noCurly {
				return expr
			}

			expr = p.parseContainerInit(expr)
		default:
			return expr
		}
	}
}

// parseContainerInit parses `{...}` initializer entries after a type
// expression.
func (p *Parser) parseContainerInit(typeExpr ast.Expr) ast.Expr {
	p.want(TokLBrace)

	kind := ast.InitKindArray
	var fieldInits []*ast.FieldInit
	var elems []ast.Expr

	if p.got(TokDot) {
		kind = ast.InitKindStruct
		for !p.got(TokRBrace) {
			if len(fieldInits) > 0 {
				p.want(TokComma)
				if p.got(TokRBrace) {
					break
				}
			}

			fieldStart := p.want(TokDot).Span()
			name := p.want(TokIdent)
			p.want(TokAssign)
			value := p.parseExpr()

			fieldInits = append(fieldInits, &ast.FieldInit{
				ASTBase: p.baseOver(fieldStart, value.Span()),
				Name:    name.Value,
				Value:   value,
			})
		}
	} else {
		for !p.got(TokRBrace) {
			if len(elems) > 0 {
				p.want(TokComma)
				if p.got(TokRBrace) {
					break
				}
			}

			elems = append(elems, p.parseExpr())
		}
	}

	end := p.want(TokRBrace)

	return &ast.ContainerInit{
		ExprBase:   p.exprBaseOver(typeExpr.Span(), end.Span()),
		TypeExpr:   typeExpr,
		Kind:       kind,
		FieldInits: fieldInits,
		Elems:      elems,
	}
}

// -----------------------------------------------------------------------------

// parsePrimary parses an atomic expression.
func (p *Parser) parsePrimary() ast.Expr {
	startSpan := p.tok.Span()

	switch p.tok.Kind {
	case TokIntLit:
		tok := p.tok
		p.advance()
		return &ast.NumberLit{ExprBase: p.exprBaseOn(tok.Span()), Text: tok.Value}
	case TokFloatLit:
		tok := p.tok
		p.advance()
		return &ast.NumberLit{ExprBase: p.exprBaseOn(tok.Span()), IsFloat: true, Text: tok.Value}
	case TokStringLit:
		tok := p.tok
		p.advance()
		return &ast.StringLit{ExprBase: p.exprBaseOn(tok.Span()), Value: tok.Value}
	case TokCStringLit:
		tok := p.tok
		p.advance()
		return &ast.StringLit{ExprBase: p.exprBaseOn(tok.Span()), Value: tok.Value, CStr: true}
	case TokCharLit:
		tok := p.tok
		p.advance()
		return &ast.CharLit{ExprBase: p.exprBaseOn(tok.Span()), Value: tok.Value[0]}
	case TokTrue, TokFalse:
		tok := p.tok
		p.advance()
		return &ast.BoolLit{ExprBase: p.exprBaseOn(tok.Span()), Value: tok.Kind == TokTrue}
	case TokNull:
		p.advance()
		return &ast.NullLit{ExprBase: p.exprBaseOn(startSpan)}
	case TokUndefined:
		p.advance()
		return &ast.UndefinedLit{ExprBase: p.exprBaseOn(startSpan)}
	case TokIdent:
		tok := p.tok
		p.advance()
		return &ast.SymbolExpr{ExprBase: p.exprBaseOn(tok.Span()), Name: tok.Value}
	case TokError:
		p.advance()
		return &ast.ErrorTypeExpr{ExprBase: p.exprBaseOn(startSpan)}
	case TokAt:
		p.advance()
		name := p.want(TokIdent)
		fnRef := &ast.SymbolExpr{ExprBase: p.exprBaseOn(name.Span()), Name: name.Value}

		p.want(TokLParen)
		var args []ast.Expr
		for !p.got(TokRParen) {
			if len(args) > 0 {
				p.want(TokComma)
			}
			args = append(args, p.parseExpr())
		}
		end := p.want(TokRParen)

		return &ast.CallExpr{
			ExprBase:  p.exprBaseOver(startSpan, end.Span()),
			Fn:        fnRef,
			Args:      args,
			IsBuiltin: true,
		}
	case TokLParen:
		p.advance()
		expr := p.parseExpr()
		p.want(TokRParen)
		return expr
	case TokLBracket:
		return p.parseArrayType()
	case TokIf:
		return p.parseIf()
	case TokWhile:
		return p.parseWhile()
	case TokFor:
		return p.parseFor()
	case TokSwitch:
		return p.parseSwitch()
	case TokLBrace:
		return p.parseBlock()
	}

	p.fail("expected an expression, found '%s'", p.describe(p.tok))
	return nil
}

// parseArrayType parses `[N]T`, `[]T`, or `[]const T`.
func (p *Parser) parseArrayType() ast.Expr {
	startSpan := p.want(TokLBracket).Span()

	var size ast.Expr
	if !p.got(TokRBracket) {
		size = p.parseExpr()
	}
	p.want(TokRBracket)

	isConst := false
	if size == nil {
		if _, ok := p.accept(TokConst); ok {
			isConst = true
		}
	}

	outerNoCurly := p.noCurly
	p.noCurly = true
	elem := p.parseUnary()
	p.noCurly = outerNoCurly

	return &ast.ArrayTypeExpr{
		ExprBase: p.exprBaseOver(startSpan, elem.Span()),
		Size:     size,
		Elem:     elem,
		Const:    isConst,
	}
}

// parseIf parses `if (cond) ...` and `if (var x ?= expr) ...`.
func (p *Parser) parseIf() ast.Expr {
	startSpan := p.want(TokIf).Span()
	p.want(TokLParen)

	if p.got(TokVar) || p.got(TokConst) {
		declStart := p.tok.Span()
		isConst := p.got(TokConst)
		p.advance()

		name := p.want(TokIdent)

		var typeExpr ast.Expr
		if _, ok := p.accept(TokColon); ok {
			typeExpr = p.parseExpr()
		}

		p.want(TokQuestEq)
		init := p.parseExpr()
		p.want(TokRParen)

		decl := &ast.VarDecl{
			ASTBase: p.baseOver(declStart, init.Span()),
			Name:    name.Value,
			Const:   isConst,
			Type:    typeExpr,
			Init:    init,
		}

		then := p.parseBlock()
		elseNode, endSpan := p.parseElse(then.Span())

		return &ast.IfVarExpr{
			ExprBase: p.exprBaseOver(startSpan, endSpan),
			Decl:     decl,
			Then:     then,
			Else:     elseNode,
		}
	}

	cond := p.parseExpr()
	p.want(TokRParen)
	then := p.parseBlock()
	elseNode, endSpan := p.parseElse(then.Span())

	return &ast.IfExpr{
		ExprBase: p.exprBaseOver(startSpan, endSpan),
		Cond:     cond,
		Then:     then,
		Else:     elseNode,
	}
}

// parseElse parses an optional else clause, returning the node and the span
// the whole conditional ends on.
func (p *Parser) parseElse(endSpan *report.TextSpan) (ast.Node, *report.TextSpan) {
	if _, ok := p.accept(TokElse); !ok {
		return nil, endSpan
	}

	if p.got(TokIf) {
		elseIf := p.parseIf()
		return elseIf, elseIf.Span()
	}

	block := p.parseBlock()
	return block, block.Span()
}

// parseWhile parses `while (cond) body`.
func (p *Parser) parseWhile() ast.Expr {
	startSpan := p.want(TokWhile).Span()
	p.want(TokLParen)
	cond := p.parseExpr()
	p.want(TokRParen)
	body := p.parseBlock()

	return &ast.WhileExpr{
		ExprBase: p.exprBaseOver(startSpan, body.Span()),
		Cond:     cond,
		Body:     body,
	}
}

// parseFor parses `for (elem [, index] : arr) body`.
func (p *Parser) parseFor() ast.Expr {
	startSpan := p.want(TokFor).Span()
	p.want(TokLParen)

	elemTok := p.want(TokIdent)
	elem := &ast.SymbolExpr{ExprBase: p.exprBaseOn(elemTok.Span()), Name: elemTok.Value}

	var index *ast.SymbolExpr
	if _, ok := p.accept(TokComma); ok {
		indexTok := p.want(TokIdent)
		index = &ast.SymbolExpr{ExprBase: p.exprBaseOn(indexTok.Span()), Name: indexTok.Value}
	}

	p.want(TokColon)
	array := p.parseExpr()
	p.want(TokRParen)
	body := p.parseBlock()

	return &ast.ForExpr{
		ExprBase: p.exprBaseOver(startSpan, body.Span()),
		Elem:     elem,
		Index:    index,
		Array:    array,
		Body:     body,
	}
}

// parseSwitch parses a switch expression.
func (p *Parser) parseSwitch() ast.Expr {
	startSpan := p.want(TokSwitch).Span()
	p.want(TokLParen)
	operand := p.parseExpr()
	p.want(TokRParen)
	p.want(TokLBrace)

	var prongs []*ast.SwitchProng
	for !p.got(TokRBrace) {
		prongs = append(prongs, p.parseSwitchProng())

		if !p.got(TokRBrace) {
			p.want(TokComma)
		}
	}

	end := p.want(TokRBrace)

	return &ast.SwitchExpr{
		ExprBase: p.exprBaseOver(startSpan, end.Span()),
		Operand:  operand,
		Prongs:   prongs,
	}
}

// parseSwitchProng parses one switch arm.
func (p *Parser) parseSwitchProng() *ast.SwitchProng {
	startSpan := p.tok.Span()

	var items []ast.Expr
	if _, ok := p.accept(TokElse); !ok {
		for {
			item := p.parseExpr()

			if _, isRange := p.accept(TokEllipsis); isRange {
				endItem := p.parseExpr()
				item = &ast.SwitchRange{
					ExprBase: p.exprBaseOver(item.Span(), endItem.Span()),
					Start:    item,
					End:      endItem,
				}
			}

			items = append(items, item)

			if _, more := p.accept(TokComma); !more {
				break
			}
		}
	}

	p.want(TokFatArrow)

	var capture *ast.SymbolExpr
	if _, ok := p.accept(TokPipe); ok {
		name := p.want(TokIdent)
		capture = &ast.SymbolExpr{ExprBase: p.exprBaseOn(name.Span()), Name: name.Value}
		p.want(TokPipe)
	}

	body := p.parseExpr()

	return &ast.SwitchProng{
		ASTBase: p.baseOver(startSpan, body.Span()),
		Items:   items,
		Capture: capture,
		Body:    body,
	}
}
