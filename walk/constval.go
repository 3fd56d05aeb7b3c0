package walk

import (
	"sable/ast"
	"sable/depm"
	"sable/sem"
	"sable/typing"
)

// The resolveConstValAs* helpers fill in an expression's constant value and
// return its type in one step.

func (a *Analyzer) resolveConstValAsVoid(node ast.Expr) typing.DataType {
	a.re(node).Const = sem.ConstValue{OK: true}
	return typing.PrimType(typing.PrimVoid)
}

func (a *Analyzer) resolveConstValAsType(node ast.Expr, dt typing.DataType) typing.DataType {
	a.re(node).Const = sem.ConstValue{OK: true, Type: dt}
	return typing.PrimType(typing.PrimMetaType)
}

func (a *Analyzer) resolveConstValAsBool(node ast.Expr, value bool) typing.DataType {
	a.re(node).Const = sem.ConstValue{OK: true, Bool: value}
	return typing.PrimType(typing.PrimBool)
}

func (a *Analyzer) resolveConstValAsFn(node ast.Expr, fn *sem.FnEntry) typing.DataType {
	a.re(node).Const = sem.ConstValue{OK: true, Fn: fn}
	return fn.Type
}

func (a *Analyzer) resolveConstValAsErr(node ast.Expr, err *sem.ErrorEntry) typing.DataType {
	a.re(node).Const = sem.ConstValue{OK: true, Err: err}
	return typing.PrimType(typing.PrimPureError)
}

func (a *Analyzer) resolveConstValAsNull(node ast.Expr, optType typing.DataType) typing.DataType {
	a.re(node).Const = sem.ConstValue{OK: true}
	return optType
}

func (a *Analyzer) resolveConstValAsIntNum(node ast.Expr, num sem.BigNum) typing.DataType {
	a.re(node).Const = sem.ConstValue{OK: true, Num: num}
	return typing.PrimType(typing.PrimNumLitInt)
}

func (a *Analyzer) resolveConstValAsFloatNum(node ast.Expr, num sem.BigNum) typing.DataType {
	a.re(node).Const = sem.ConstValue{OK: true, Num: num}
	return typing.PrimType(typing.PrimNumLitFloat)
}

// resolveConstValAsOther copies another expression's constant value onto this
// node, returning the other expression's type.
func (a *Analyzer) resolveConstValAsOther(node ast.Expr, other ast.Expr) typing.DataType {
	otherRe := a.re(other)
	a.re(node).Const = otherRe.Const
	return otherRe.Type
}

// resolveConstValAsStringLit folds an ordinary string literal to a constant
// byte array.
func (a *Analyzer) resolveConstValAsStringLit(node ast.Expr, value string) typing.DataType {
	elems := make([]*sem.ConstValue, len(value))
	for i := 0; i < len(value); i++ {
		elems[i] = &sem.ConstValue{OK: true, Num: sem.IntNum(uint64(value[i]))}
	}

	a.re(node).Const = sem.ConstValue{OK: true, Elems: elems}
	return a.interner.ArrayOf(typing.U8, uint64(len(value)))
}

// resolveConstValAsCStringLit folds a C string literal to a constant pointer
// whose pointee vector carries a trailing NUL.
func (a *Analyzer) resolveConstValAsCStringLit(node ast.Expr, value string) typing.DataType {
	vals := make([]*sem.ConstValue, len(value)+1)
	for i := 0; i < len(value); i++ {
		vals[i] = &sem.ConstValue{OK: true, Num: sem.IntNum(uint64(value[i]))}
	}
	vals[len(value)] = &sem.ConstValue{OK: true, Num: sem.IntNum(0)}

	a.re(node).Const = sem.ConstValue{OK: true, Ptr: &sem.PtrValue{Vals: vals}}
	return a.interner.PointerTo(typing.U8, true)
}

// resolveConstValAsNumOp folds a numeric binary operation over two constant
// operands, reporting overflow against the resolved type.
func (a *Analyzer) resolveConstValAsNumOp(file *depm.SableFile, node ast.Expr, op sem.BigNumOp,
	lhs, rhs ast.Expr, resolvedType typing.DataType) typing.DataType {

	lhsVal := a.constOf(lhs)
	rhsVal := a.constOf(rhs)

	// Intentionally-uninitialized operands carry no number to fold.
	if lhsVal.Undef || rhsVal.Undef {
		return resolvedType
	}

	result, ok := op(lhsVal.Num, rhsVal.Num)
	if !ok {
		a.errorf(file, node.Span(), "value cannot be represented in any integer type")
		return resolvedType
	}

	a.re(node).Const = sem.ConstValue{OK: true, Num: result}
	a.numLitFits(file, node, resolvedType)
	return resolvedType
}

// constSliceBytes extracts the byte contents of a constant slice-of-u8 value.
func constSliceBytes(val *sem.ConstValue) []byte {
	if !val.OK || len(val.Fields) != 2 || val.Fields[0].Ptr == nil {
		return nil
	}

	vals := val.Fields[0].Ptr.Vals
	bytes := make([]byte, len(vals))
	for i, ch := range vals {
		bytes[i] = byte(ch.Num.Uint64())
	}

	return bytes
}
