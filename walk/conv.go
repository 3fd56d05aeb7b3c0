package walk

import (
	"sable/ast"
	"sable/depm"
	"sable/sem"
	"sable/typing"
)

// numLitFits checks whether the numeric literal held by the given node fits
// the other type, reporting an error when it does not.
func (a *Analyzer) numLitFits(file *depm.SableFile, litNode ast.Expr, other typing.DataType) bool {
	if typing.IsInvalid(other) {
		return false
	}

	constVal := a.constOf(litNode)
	if !constVal.OK {
		return false
	}

	switch ot := other.(type) {
	case *typing.FloatType:
		return true
	case *typing.IntType:
		if constVal.Num.Kind == sem.BigNumInt &&
			constVal.Num.FitsInBits(int(a.sizes.SizeOfBits(ot)), ot.Signed) {
			return true
		}
	case typing.PrimType:
		if (ot == typing.PrimType(typing.PrimNumLitFloat) && constVal.Num.Kind == sem.BigNumFloat) ||
			(ot == typing.PrimType(typing.PrimNumLitInt) && constVal.Num.Kind == sem.BigNumInt) {
			return true
		}
	}

	litKind := "integer"
	if constVal.Num.Kind == sem.BigNumFloat {
		litKind = "float"
	}

	a.errorf(file, litNode.Span(), "%s value %s cannot be implicitly casted to type '%s'",
		litKind, constVal.Num.String(), other.Repr())
	return false
}

// typesMatchWithImplicitCast determines whether the actual type implicitly
// converts to the expected type.  The literal node is consulted for the
// numeric literal rule; reported is set when a diagnostic was already
// emitted.
func (a *Analyzer) typesMatchWithImplicitCast(file *depm.SableFile, expected, actual typing.DataType,
	litNode ast.Expr, reported *bool) bool {

	if typing.ConstCastOnly(expected, actual) {
		return true
	}

	// Implicit wrapping into an optional.
	if opt, ok := expected.(*typing.OptionalType); ok {
		if a.typesMatchWithImplicitCast(file, opt.Elem, actual, litNode, reported) {
			return true
		}
	}

	if errUnion, ok := expected.(*typing.ErrorUnionType); ok {
		// Implicit wrapping of a pure error into an error union.
		if actual == typing.PrimType(typing.PrimPureError) {
			return true
		}

		// Implicit wrapping of the payload into an error union.
		if a.typesMatchWithImplicitCast(file, errUnion.Ok, actual, litNode, reported) {
			return true
		}
	}

	// Implicit integer widening of matching signedness.
	if expInt, ok := expected.(*typing.IntType); ok {
		if actInt, ok := actual.(*typing.IntType); ok && typing.ImplicitIntWiden(expInt, actInt) {
			return true
		}
	}

	// Implicit fixed array to slice decay.
	if expSlice, ok := expected.(*typing.SliceType); ok {
		if actArray, ok := actual.(*typing.ArrayType); ok &&
			typing.ConstCastOnly(expSlice.Elem, actArray.Elem) {
			return true
		}
	}

	// A numeric literal fits any numeric type that can represent it.
	if typing.IsNumLit(actual) && litNode != nil {
		if a.numLitFits(file, litNode, expected) {
			return true
		}

		*reported = true
	}

	return false
}

// -----------------------------------------------------------------------------

// resolveTypeCompat reconciles an expression's actual type with the type its
// context expects, recording the implicit conversion on the expression's
// resolved record.  It returns the type the expression has after conversion.
func (a *Analyzer) resolveTypeCompat(file *depm.SableFile, scope *sem.Scope, node ast.Expr,
	expected, actual typing.DataType) typing.DataType {

	if expected == nil {
		return actual
	}
	if expected == actual {
		return expected
	}
	if typing.IsInvalid(expected) || typing.IsInvalid(actual) {
		return typing.PrimType(typing.PrimInvalid)
	}
	if typing.IsUnreachable(actual) {
		return actual
	}

	reported := false
	if a.typesMatchWithImplicitCast(file, expected, actual, node, &reported) {
		a.applyImplicitCast(scope, node, expected, actual)
		return expected
	}

	if !reported {
		a.errorf(file, node.Span(), "expected type '%s', got '%s'", expected.Repr(), actual.Repr())
	}

	return typing.PrimType(typing.PrimInvalid)
}

// applyImplicitCast records an implicit conversion on the node's resolved
// record, registers any backend temporary it demands, and const-evaluates the
// conversion.
func (a *Analyzer) applyImplicitCast(scope *sem.Scope, node ast.Expr, expected, actual typing.DataType) {
	re := a.re(node)
	re.ConvType = expected
	re.Cast = classifyCast(expected, actual)

	switch re.Cast {
	case sem.CastMaybeWrap, sem.CastErrorWrap, sem.CastToSlice:
		scope.CastAllocas = append(scope.CastAllocas, node)
	}

	re.Const = evalCastValue(expected, actual, re.Const)
}

// classifyCast picks the backend classification for a conversion from actual
// to expected.
func classifyCast(expected, actual typing.DataType) sem.CastOp {
	if typing.ConstCastOnly(expected, actual) {
		return sem.CastNoop
	}

	switch exp := expected.(type) {
	case *typing.OptionalType:
		return sem.CastMaybeWrap
	case *typing.ErrorUnionType:
		if actual == typing.PrimType(typing.PrimPureError) {
			return sem.CastPureErrorWrap
		}

		return sem.CastErrorWrap
	case *typing.IntType:
		if _, ok := actual.(*typing.IntType); ok {
			return sem.CastIntWidenOrShorten
		}
	case *typing.SliceType:
		if _, ok := actual.(*typing.ArrayType); ok {
			return sem.CastToSlice
		}

		_ = exp
	}

	return sem.CastNoop
}

// evalCastValue const-evaluates a conversion, recursing through wrapping
// conversions so nested optional and error union targets fold correctly.
func evalCastValue(expected, actual typing.DataType, val sem.ConstValue) sem.ConstValue {
	if !val.OK {
		return val
	}

	if typing.ConstCastOnly(expected, actual) {
		return val
	}

	switch exp := expected.(type) {
	case *typing.OptionalType:
		inner := evalCastValue(exp.Elem, actual, val)
		return sem.ConstValue{OK: true, Maybe: &inner}
	case *typing.ErrorUnionType:
		if actual == typing.PrimType(typing.PrimPureError) {
			return sem.ConstValue{OK: true, Err: val.Err}
		}

		inner := evalCastValue(exp.Ok, actual, val)
		return sem.ConstValue{OK: true, ErrPayload: &inner}
	case *typing.SliceType:
		if arr, ok := actual.(*typing.ArrayType); ok {
			ptrField := &sem.ConstValue{OK: true, Ptr: &sem.PtrValue{Vals: val.Elems}}
			lenField := &sem.ConstValue{OK: true, Num: sem.IntNum(arr.Len)}
			return sem.ConstValue{OK: true, Fields: []*sem.ConstValue{ptrField, lenField}}
		}
	}

	return val
}

// -----------------------------------------------------------------------------

// determinePeerType picks a single type compatible with each of several
// sibling expressions, or reports an incompatibility.
func (a *Analyzer) determinePeerType(file *depm.SableFile, parent ast.Expr,
	nodes []ast.Expr, types []typing.DataType) typing.DataType {

	prevType := types[0]
	prevNode := nodes[0]
	if typing.IsInvalid(prevType) {
		return prevType
	}

	for i := 1; i < len(types); i++ {
		curType := types[i]
		curNode := nodes[i]

		if typing.IsInvalid(curType) {
			return curType
		} else if typing.ConstCastOnly(prevType, curType) {
			continue
		} else if typing.ConstCastOnly(curType, prevType) {
			prevType, prevNode = curType, curNode
			continue
		} else if typing.IsUnreachable(prevType) {
			prevType, prevNode = curType, curNode
		} else if typing.IsUnreachable(curType) {
			continue
		} else if prevInt, ok := prevType.(*typing.IntType); ok {
			if curInt, isInt := curType.(*typing.IntType); isInt && prevInt.Signed == curInt.Signed &&
				!prevInt.PtrSized && !curInt.PtrSized {

				if curInt.Bits > prevInt.Bits {
					prevType, prevNode = curType, curNode
				}
				continue
			}

			prevType, prevNode = a.peerNumLitOrFail(file, parent, prevType, prevNode, curType, curNode)
			if typing.IsInvalid(prevType) {
				return prevType
			}
		} else if prevFloat, ok := prevType.(*typing.FloatType); ok {
			if curFloat, isFloat := curType.(*typing.FloatType); isFloat {
				if curFloat.Bits > prevFloat.Bits {
					prevType, prevNode = curType, curNode
				}
				continue
			}

			prevType, prevNode = a.peerNumLitOrFail(file, parent, prevType, prevNode, curType, curNode)
			if typing.IsInvalid(prevType) {
				return prevType
			}
		} else if prevErr, ok := prevType.(*typing.ErrorUnionType); ok &&
			typing.ConstCastOnly(prevErr.Ok, curType) {
			continue
		} else if curErr, ok := curType.(*typing.ErrorUnionType); ok &&
			typing.ConstCastOnly(curErr.Ok, prevType) {
			prevType, prevNode = curType, curNode
		} else {
			prevType, prevNode = a.peerNumLitOrFail(file, parent, prevType, prevNode, curType, curNode)
			if typing.IsInvalid(prevType) {
				return prevType
			}
		}
	}

	return prevType
}

// peerNumLitOrFail applies the numeric-literal tie-break between two peer
// types: a numeric-literal peer coerces toward the other operand if it fits.
func (a *Analyzer) peerNumLitOrFail(file *depm.SableFile, parent ast.Expr,
	prevType typing.DataType, prevNode ast.Expr,
	curType typing.DataType, curNode ast.Expr) (typing.DataType, ast.Expr) {

	invalid := typing.DataType(typing.PrimType(typing.PrimInvalid))

	if typing.IsNumLit(prevType) {
		if a.numLitFits(file, prevNode, curType) {
			return curType, curNode
		}

		return invalid, prevNode
	}

	if typing.IsNumLit(curType) {
		if a.numLitFits(file, curNode, prevType) {
			return prevType, prevNode
		}

		return invalid, curNode
	}

	a.errorf(file, parent.Span(), "incompatible types: '%s' and '%s'",
		prevType.Repr(), curType.Repr())
	return invalid, prevNode
}

// resolvePeerTypes unifies several sibling expressions to one common type and
// converts each of them to it.
func (a *Analyzer) resolvePeerTypes(file *depm.SableFile, scope *sem.Scope, parent ast.Expr,
	nodes []ast.Expr, types []typing.DataType) typing.DataType {

	expected := a.determinePeerType(file, parent, nodes, types)
	if typing.IsInvalid(expected) {
		return expected
	}

	for i, node := range nodes {
		if node == nil {
			continue
		}

		a.resolveTypeCompat(file, scope, node, expected, types[i])
		a.addGlobalConst(a.re(node))
	}

	return expected
}
