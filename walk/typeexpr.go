package walk

import (
	"sable/ast"
	"sable/depm"
	"sable/sem"
	"sable/typing"
)

// resolveType extracts the type denoted by an already-analyzed type
// expression.  The node must have resolved to a MetaType with a computed
// constant value; otherwise an error is reported and Invalid returned.
func (a *Analyzer) resolveType(file *depm.SableFile, node ast.Expr) typing.DataType {
	re := a.re(node)

	if typing.IsInvalid(re.Type) {
		return typing.PrimType(typing.PrimInvalid)
	}

	if re.Type != typing.PrimType(typing.PrimMetaType) {
		a.errorf(file, node.Span(), "expected type, found expression")
		return typing.PrimType(typing.PrimInvalid)
	}

	if !re.Const.OK {
		a.errorf(file, node.Span(), "unable to resolve constant expression")
		return typing.PrimType(typing.PrimInvalid)
	}

	return re.Const.Type
}

// analyzeTypeExpr analyzes a node as a type expression and returns the type
// it denotes.
func (a *Analyzer) analyzeTypeExpr(file *depm.SableFile, scope *sem.Scope, node ast.Expr) typing.DataType {
	a.analyzeExpression(file, scope, nil, node)
	return a.resolveType(file, node)
}
