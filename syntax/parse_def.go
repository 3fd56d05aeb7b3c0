package syntax

import (
	"sable/ast"
	"sable/report"
)

// parseRoot parses the file's top-level declaration list.
func (p *Parser) parseRoot() *ast.Root {
	startSpan := p.tok.Span()

	var decls []ast.Node
	for !p.got(TokEOF) {
		decls = append(decls, p.parseTopDecl())
	}

	return &ast.Root{
		ASTBase: p.baseOver(startSpan, p.tok.Span()),
		Decls:   decls,
	}
}

// parseTopDecl parses a single top-level declaration.
func (p *Parser) parseTopDecl() ast.Node {
	directives := p.parseDirectives()

	visib := ast.VisibPrivate
	startSpan := p.tok.Span()

	switch p.tok.Kind {
	case TokPub:
		p.advance()
		visib = ast.VisibPub
	case TokExport:
		p.advance()
		visib = ast.VisibExport

		// `export exe|lib|obj "name";` is the root export declaration.
		if p.got(TokIdent) {
			return p.parseRootExport(startSpan, directives)
		}
	case TokImport:
		p.advance()
		path := p.want(TokStringLit)
		end := p.want(TokSemicolon)

		return &ast.Import{
			ASTBase:    p.baseOver(startSpan, end.Span()),
			Path:       path.Value,
			Directives: directives,
		}
	case TokCImport:
		p.advance()
		block := p.parseBlock()

		return &ast.CImport{
			ASTBase: p.baseOver(startSpan, block.Span()),
			Block:   block,
		}
	}

	switch p.tok.Kind {
	case TokExtern:
		p.advance()
		if p.got(TokFn) {
			proto := p.parseFnProto(visib, true, directives)
			p.want(TokSemicolon)
			return proto
		}

		decl := p.parseVarDecl(visib)
		decl.Extern = true
		p.want(TokSemicolon)
		return decl
	case TokFn:
		proto := p.parseFnProto(visib, false, directives)
		if p.got(TokSemicolon) {
			p.advance()
			return proto
		}

		body := p.parseBlock()
		return &ast.FnDef{
			ASTBase: p.baseOver(proto.Span(), body.Span()),
			Proto:   proto,
			Body:    body,
		}
	case TokVar, TokConst:
		decl := p.parseVarDecl(visib)
		p.want(TokSemicolon)
		return decl
	case TokPacked, TokStruct, TokEnum:
		return p.parseContainerDecl(visib, directives)
	case TokError:
		p.advance()
		name := p.want(TokIdent)
		end := p.want(TokSemicolon)

		return &ast.ErrorDecl{
			ASTBase: p.baseOver(startSpan, end.Span()),
			Name:    name.Value,
			Visib:   visib,
		}
	}

	p.fail("expected a top-level declaration, found '%s'", p.describe(p.tok))
	return nil
}

// parseDirectives parses a possibly-empty run of `#name("param")` directives.
func (p *Parser) parseDirectives() []*ast.Directive {
	var directives []*ast.Directive
	for p.got(TokHash) {
		startSpan := p.tok.Span()
		p.advance()

		name := p.want(TokIdent)
		p.want(TokLParen)

		param := ""
		if tok, ok := p.accept(TokStringLit); ok {
			param = tok.Value
		}

		end := p.want(TokRParen)

		directives = append(directives, &ast.Directive{
			ASTBase: p.baseOver(startSpan, end.Span()),
			Name:    name.Value,
			Param:   param,
		})
	}

	return directives
}

// parseRootExport parses `export exe|lib|obj "name";` after the `export`
// keyword has been consumed.
func (p *Parser) parseRootExport(startSpan *report.TextSpan, directives []*ast.Directive) ast.Node {
	kindTok := p.want(TokIdent)

	var outKind int
	switch kindTok.Value {
	case "exe":
		outKind = ast.OutExe
	case "lib":
		outKind = ast.OutLib
	case "obj":
		outKind = ast.OutObj
	default:
		p.fail("invalid export kind: '%s'", kindTok.Value)
	}

	name := p.want(TokStringLit)
	end := p.want(TokSemicolon)

	return &ast.RootExport{
		ASTBase:    p.baseOver(startSpan, end.Span()),
		OutKind:    outKind,
		OutName:    name.Value,
		Directives: directives,
	}
}

// parseFnProto parses a function prototype after any modifiers.
func (p *Parser) parseFnProto(visib int, extern bool, directives []*ast.Directive) *ast.FnProto {
	startSpan := p.tok.Span()
	p.want(TokFn)
	name := p.want(TokIdent)
	p.want(TokLParen)

	var params []*ast.ParamDecl
	varArgs := false
	for !p.got(TokRParen) {
		if len(params) > 0 || varArgs {
			p.want(TokComma)
		}

		if p.got(TokEllipsis) {
			p.advance()
			varArgs = true
			continue
		}

		paramStart := p.tok.Span()
		noAlias := false
		if _, ok := p.accept(TokNoAlias); ok {
			noAlias = true
		}

		paramName := p.want(TokIdent)
		p.want(TokColon)
		paramType := p.parseExpr()

		params = append(params, &ast.ParamDecl{
			ASTBase: p.baseOver(paramStart, paramType.Span()),
			Name:    paramName.Value,
			Type:    paramType,
			NoAlias: noAlias,
		})
	}

	endSpan := p.want(TokRParen).Span()

	var returnType ast.Expr
	if _, ok := p.accept(TokArrow); ok {
		// The body's opening brace must not be read as an initializer of the
		// return type.
		outerNoCurly := p.noCurly
		p.noCurly = true
		returnType = p.parseExpr()
		p.noCurly = outerNoCurly
		endSpan = returnType.Span()
	}

	return &ast.FnProto{
		ASTBase:    p.baseOver(startSpan, endSpan),
		Name:       name.Value,
		Visib:      visib,
		Params:     params,
		ReturnType: returnType,
		VarArgs:    varArgs,
		Extern:     extern,
		Directives: directives,
	}
}

// parseVarDecl parses `var|const name [: type] [= init]` without the trailing
// semicolon.
func (p *Parser) parseVarDecl(visib int) *ast.VarDecl {
	startSpan := p.tok.Span()

	isConst := p.got(TokConst)
	if !isConst && !p.got(TokVar) {
		p.fail("expected 'var' or 'const'")
	}
	p.advance()

	name := p.want(TokIdent)
	endSpan := name.Span()

	var typeExpr ast.Expr
	if _, ok := p.accept(TokColon); ok {
		typeExpr = p.parseExpr()
		endSpan = typeExpr.Span()
	}

	var init ast.Expr
	if _, ok := p.accept(TokAssign); ok {
		init = p.parseExpr()
		endSpan = init.Span()
	}

	return &ast.VarDecl{
		ASTBase: p.baseOver(startSpan, endSpan),
		Name:    name.Value,
		Const:   isConst,
		Visib:   visib,
		Type:    typeExpr,
		Init:    init,
	}
}

// parseContainerDecl parses a struct or enum declaration.
func (p *Parser) parseContainerDecl(visib int, directives []*ast.Directive) *ast.ContainerDecl {
	startSpan := p.tok.Span()

	packed := false
	if _, ok := p.accept(TokPacked); ok {
		packed = true
	}

	var kind int
	switch p.tok.Kind {
	case TokStruct:
		kind = ast.ContainerStruct
	case TokEnum:
		kind = ast.ContainerEnum
	default:
		p.fail("expected 'struct' or 'enum'")
	}
	p.advance()

	name := p.want(TokIdent)
	p.want(TokLBrace)

	var fields []*ast.FieldDecl
	var methods []*ast.FnDef
	for !p.got(TokRBrace) {
		methodVisib := ast.VisibPrivate
		if _, ok := p.accept(TokPub); ok {
			methodVisib = ast.VisibPub
		}

		if p.got(TokFn) {
			proto := p.parseFnProto(methodVisib, false, nil)
			body := p.parseBlock()
			methods = append(methods, &ast.FnDef{
				ASTBase: p.baseOver(proto.Span(), body.Span()),
				Proto:   proto,
				Body:    body,
			})
			continue
		}

		fieldStart := p.tok.Span()
		fieldName := p.want(TokIdent)
		fieldEnd := fieldName.Span()

		var fieldType ast.Expr
		if kind == ast.ContainerStruct {
			p.want(TokColon)
			fieldType = p.parseExpr()
			fieldEnd = fieldType.Span()
		} else if _, ok := p.accept(TokColon); ok {
			fieldType = p.parseExpr()
			fieldEnd = fieldType.Span()
		}

		fields = append(fields, &ast.FieldDecl{
			ASTBase: p.baseOver(fieldStart, fieldEnd),
			Name:    fieldName.Value,
			Type:    fieldType,
		})

		if !p.got(TokRBrace) {
			p.want(TokComma)
		}
	}

	end := p.want(TokRBrace)

	return &ast.ContainerDecl{
		ASTBase:    p.baseOver(startSpan, end.Span()),
		Name:       name.Value,
		Kind:       kind,
		Fields:     fields,
		Methods:    methods,
		Packed:     packed,
		Visib:      visib,
		Directives: directives,
	}
}
