package syntax

import "sable/ast"

// parseBlock parses a brace-delimited statement block.
func (p *Parser) parseBlock() *ast.Block {
	startSpan := p.want(TokLBrace).Span()

	var stmts []ast.Node
	for !p.got(TokRBrace) {
		stmts = append(stmts, p.parseStatement())
	}

	end := p.want(TokRBrace)

	return &ast.Block{
		ExprBase: p.exprBaseOver(startSpan, end.Span()),
		Stmts:    stmts,
	}
}

// assignOps maps assignment tokens to their binary operator kinds.
var assignOps = map[int]ast.BinOp{
	TokAssign:        ast.BinOpAssign,
	TokStarAssign:    ast.BinOpAssignTimes,
	TokSlashAssign:   ast.BinOpAssignDiv,
	TokPercentAssign: ast.BinOpAssignMod,
	TokPlusAssign:    ast.BinOpAssignPlus,
	TokMinusAssign:   ast.BinOpAssignMinus,
	TokShlAssign:     ast.BinOpAssignShl,
	TokShrAssign:     ast.BinOpAssignShr,
	TokAmpAssign:     ast.BinOpAssignBitAnd,
	TokCaretAssign:   ast.BinOpAssignBitXor,
	TokPipeAssign:    ast.BinOpAssignBitOr,
	TokAndAndAssign:  ast.BinOpAssignBoolAnd,
	TokOrOrAssign:    ast.BinOpAssignBoolOr,
}

// parseStatement parses a single statement within a block.
func (p *Parser) parseStatement() ast.Node {
	startSpan := p.tok.Span()

	switch p.tok.Kind {
	case TokVar, TokConst:
		decl := p.parseVarDecl(ast.VisibPrivate)
		p.want(TokSemicolon)
		return decl
	case TokReturn:
		p.advance()
		var value ast.Expr
		endSpan := startSpan
		if !p.got(TokSemicolon) {
			value = p.parseExpr()
			endSpan = value.Span()
		}
		p.want(TokSemicolon)

		return &ast.ReturnStmt{
			ExprBase: p.exprBaseOver(startSpan, endSpan),
			Kind:     ast.ReturnUnconditional,
			Value:    value,
		}
	case TokPercent:
		if p.peek().Kind == TokReturn {
			p.advance()
			p.advance()
			value := p.parseExpr()
			p.want(TokSemicolon)

			return &ast.ReturnStmt{
				ExprBase: p.exprBaseOver(startSpan, value.Span()),
				Kind:     ast.ReturnError,
				Value:    value,
			}
		}
	case TokBreak:
		p.advance()
		p.want(TokSemicolon)
		return &ast.Break{ExprBase: p.exprBaseOn(startSpan)}
	case TokContinue:
		p.advance()
		p.want(TokSemicolon)
		return &ast.Continue{ExprBase: p.exprBaseOn(startSpan)}
	case TokGoto:
		p.advance()
		name := p.want(TokIdent)
		p.want(TokSemicolon)

		return &ast.Goto{
			ExprBase: p.exprBaseOver(startSpan, name.Span()),
			Name:     name.Value,
		}
	case TokIdent:
		if p.peek().Kind == TokColon {
			name := p.tok
			p.advance()
			p.advance()

			return &ast.Label{
				ExprBase: p.exprBaseOn(name.Span()),
				Name:     name.Value,
			}
		}
	}

	expr := p.parseExpr()

	if op, ok := assignOps[p.tok.Kind]; ok {
		p.advance()
		rhs := p.parseExpr()
		bin := &ast.BinaryExpr{
			ExprBase: p.exprBaseOver(expr.Span(), rhs.Span()),
			Op:       op,
			Lhs:      expr,
			Rhs:      rhs,
		}
		p.want(TokSemicolon)
		return bin
	}

	// A semicolon is required unless the expression ends with a block.
	if !p.blockEnded(expr) || p.got(TokSemicolon) {
		p.want(TokSemicolon)
	}

	return expr
}

// blockEnded returns whether the expression's final token is a closing brace,
// making a trailing semicolon optional.
func (p *Parser) blockEnded(expr ast.Expr) bool {
	switch v := expr.(type) {
	case *ast.Block, *ast.WhileExpr, *ast.ForExpr, *ast.SwitchExpr:
		return true
	case *ast.IfExpr:
		return true
	case *ast.IfVarExpr:
		return true
	case *ast.ContainerInit:
		_ = v
		return true
	}

	return false
}
