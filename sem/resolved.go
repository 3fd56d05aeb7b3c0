package sem

import (
	"sable/ast"
	"sable/typing"
)

// CastOp classifies a type conversion for the backend.  Implicit conversions
// chosen by the analyzer and explicit casts both classify into this set.
type CastOp int

// Enumeration of cast classifications.
const (
	CastNoCast CastOp = iota // no conversion applies
	CastNoop
	CastPtrToInt
	CastIntToPtr
	CastIntWidenOrShorten
	CastToSlice // fixed array to slice decay
	CastMaybeWrap
	CastErrorWrap
	CastPureErrorWrap
	CastPointerReinterpret
	CastErrToInt
)

// ResolvedExpr is the per-expression record produced by the analyzer.  It
// lives in a side table keyed by the expression node so the parser output
// stays immutable.
type ResolvedExpr struct {
	// Type is the type the expression itself yielded.
	Type typing.DataType

	// ConvType is the type after the implicit conversion demanded by the
	// expression's context; nil when no conversion applies.
	ConvType typing.DataType

	// Cast is the conversion's backend classification.
	Cast CastOp

	// Const is the expression's compile-time value, if computable.
	Const ConstValue

	// HasGlobalConst marks values already registered with the backend's
	// global constant list.
	HasGlobalConst bool

	// GenHandle is the backend's constant handle for this value; opaque to
	// the analyzer.
	GenHandle interface{}
}

// FinalType returns the expression's type after any implicit conversion.
func (re *ResolvedExpr) FinalType() typing.DataType {
	if re.ConvType != nil {
		return re.ConvType
	}

	return re.Type
}

// ExprMap is the analyzer's side table of resolved expressions.
type ExprMap map[ast.Expr]*ResolvedExpr

// Get returns the resolved record for the given expression, allocating an
// empty one on first access.
func (m ExprMap) Get(e ast.Expr) *ResolvedExpr {
	if re, ok := m[e]; ok {
		return re
	}

	re := &ResolvedExpr{}
	m[e] = re
	return re
}
