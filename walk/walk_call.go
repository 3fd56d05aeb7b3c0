package walk

import (
	"sable/ast"
	"sable/depm"
	"sable/sem"
	"sable/typing"
)

// analyzeCallExpr analyzes a call expression, which may be an ordinary or
// method call, an explicit cast (a type in call position), an enum variant
// initialization, or a builtin call.
func (a *Analyzer) analyzeCallExpr(file *depm.SableFile, scope *sem.Scope,
	expected typing.DataType, node *ast.CallExpr) typing.DataType {

	if node.IsBuiltin {
		return a.analyzeBuiltinCall(file, scope, expected, node)
	}

	if fieldRef, ok := node.Fn.(*ast.FieldExpr); ok {
		return a.analyzeFieldCall(file, scope, node, fieldRef)
	}

	invokeType := a.analyzeExpression(file, scope, nil, node.Fn)
	if typing.IsInvalid(invokeType) {
		return invalidType
	}

	// A compile-time-known callee is either a type (an explicit cast) or a
	// direct function reference; anything else is a function pointer call.
	fnVal := a.constOf(node.Fn)
	if fnVal.OK {
		if invokeType == metaType {
			return a.analyzeCastExpr(file, scope, node)
		}

		if fnVal.Fn != nil {
			return a.analyzeFnCall(file, scope, node, fnVal.Fn, nil)
		}
	}

	if fnType, ok := invokeType.(*typing.FuncType); ok {
		a.analyzeCallArgs(file, scope, node, fnType, 0)
		return fnType.ReturnType
	}

	a.errorf(file, node.Fn.Span(), "type '%s' not a function", invokeType.Repr())
	return invalidType
}

// analyzeFieldCall analyzes calls whose callee is a field access: method
// calls and enum variant initializations.
func (a *Analyzer) analyzeFieldCall(file *depm.SableFile, scope *sem.Scope,
	node *ast.CallExpr, fieldRef *ast.FieldExpr) typing.DataType {

	receiverType := a.analyzeExpression(file, scope, nil, fieldRef.Root)

	bareType := receiverType
	if ptr, ok := receiverType.(*typing.PointerType); ok {
		bareType = ptr.Elem
	}

	if structType, ok := bareType.(*typing.StructType); ok {
		if method, ok := a.methods[structType][fieldRef.Field]; ok {
			a.re(fieldRef).Type = method.Type
			return a.analyzeFnCall(file, scope, node, method, receiverType)
		}

		a.errorf(file, fieldRef.Span(), "no function named '%s' in '%s'",
			fieldRef.Field, structType.Name)

		// Still analyze the arguments, even without expectations.
		for _, arg := range node.Args {
			a.analyzeExpression(file, scope, nil, arg)
		}

		return invalidType
	}

	if typing.IsInvalid(receiverType) {
		return receiverType
	}

	if receiverType == metaType {
		namedType := a.resolveType(file, fieldRef.Root)

		if typing.IsInvalid(namedType) {
			return namedType
		}

		if enumType, ok := namedType.(*typing.EnumType); ok {
			if len(node.Args) > 1 {
				a.errorf(file, node.Args[1].Span(), "enum values accept only one parameter")
				return enumType
			}

			var valueNode ast.Expr
			if len(node.Args) == 1 {
				valueNode = node.Args[0]
			}

			a.re(fieldRef).Type = metaType
			return a.analyzeEnumValueExpr(file, scope, node, fieldRef.Field, valueNode, enumType)
		}
	}

	a.errorf(file, fieldRef.Root.Span(), "member reference base type not struct or enum")
	return invalidType
}

// analyzeFnCall analyzes a direct call of a known function.  For method calls
// the receiver expression has already been analyzed and counts as the first
// parameter.
func (a *Analyzer) analyzeFnCall(file *depm.SableFile, scope *sem.Scope,
	node *ast.CallExpr, entry *sem.FnEntry, receiverType typing.DataType) typing.DataType {

	argOffset := 0
	if receiverType != nil {
		argOffset = 1
	}

	a.analyzeCallArgs(file, scope, node, entry.Type, argOffset)

	returnType := entry.Type.ReturnType
	if typing.IsInvalid(returnType) {
		return returnType
	}

	if a.sizes.HandleIsPtr(returnType) {
		scope.CastAllocas = append(scope.CastAllocas, node)
	}

	return returnType
}

// analyzeCallArgs checks arity and analyzes each argument against the
// callee's parameter types.
func (a *Analyzer) analyzeCallArgs(file *depm.SableFile, scope *sem.Scope,
	node *ast.CallExpr, fnType *typing.FuncType, argOffset int) {

	expectedCount := len(fnType.Params)
	actualCount := len(node.Args) + argOffset

	if fnType.VarArgs {
		if actualCount < expectedCount {
			a.errorf(file, node.Span(), "expected at least %d arguments, got %d",
				expectedCount, actualCount)
		}
	} else if expectedCount != actualCount {
		a.errorf(file, node.Span(), "expected %d arguments, got %d", expectedCount, actualCount)
	}

	for i, arg := range node.Args {
		var expectedParamType typing.DataType
		if paramIndex := i + argOffset; paramIndex < len(fnType.Params) {
			expectedParamType = fnType.Params[paramIndex]
		}

		a.analyzeExpression(file, scope, expectedParamType, arg)
	}
}

// -----------------------------------------------------------------------------

// analyzeCastExpr classifies an explicit cast (a type expression in call
// position) and const-evaluates it when the operand is constant.
func (a *Analyzer) analyzeCastExpr(file *depm.SableFile, scope *sem.Scope, node *ast.CallExpr) typing.DataType {
	if len(node.Args) != 1 {
		a.errorf(file, node.Fn.Span(), "cast expression expects exactly one parameter")
		return invalidType
	}

	exprNode := node.Args[0]
	wantedType := a.resolveType(file, node.Fn)
	actualType := a.analyzeExpression(file, scope, nil, exprNode)

	if typing.IsInvalid(wantedType) || typing.IsInvalid(actualType) {
		return invalidType
	}

	applyCast := func(op sem.CastOp, needsAlloca bool) typing.DataType {
		re := a.re(node)
		re.Cast = op

		if needsAlloca {
			scope.CastAllocas = append(scope.CastAllocas, node)
		}

		re.Const = a.evalExplicitCast(op, wantedType, actualType, *a.constOf(exprNode))
		return wantedType
	}

	// Explicit match or non-const to const.
	if typing.ConstCastOnly(wantedType, actualType) {
		return applyCast(sem.CastNoop, false)
	}

	// Pointer to pointer-sized integer.
	if (wantedType == typing.Isize || wantedType == typing.Usize) && isPointer(actualType) {
		return applyCast(sem.CastPtrToInt, false)
	}

	// Pointer-sized integer to pointer.
	if isPointer(wantedType) && (actualType == typing.Isize || actualType == typing.Usize) {
		return applyCast(sem.CastIntToPtr, false)
	}

	// Any integer to any other integer.
	if isInt(wantedType) && isInt(actualType) {
		return applyCast(sem.CastIntWidenOrShorten, false)
	}

	// Fixed array to slice.
	if wantedSlice, ok := wantedType.(*typing.SliceType); ok {
		if actualArray, ok := actualType.(*typing.ArrayType); ok &&
			typing.ConstCastOnly(wantedSlice.Elem, actualArray.Elem) {
			return applyCast(sem.CastToSlice, true)
		}
	}

	// Pointer to another pointer.
	if isPointer(wantedType) && isPointer(actualType) {
		return applyCast(sem.CastPointerReinterpret, false)
	}

	// Wrapping into an optional.
	if wantedOpt, ok := wantedType.(*typing.OptionalType); ok {
		if typing.ConstCastOnly(wantedOpt.Elem, actualType) {
			return applyCast(sem.CastMaybeWrap, true)
		}

		if typing.IsNumLit(actualType) {
			if a.numLitFits(file, exprNode, wantedOpt.Elem) {
				return applyCast(sem.CastMaybeWrap, true)
			}

			return invalidType
		}
	}

	if wantedErr, ok := wantedType.(*typing.ErrorUnionType); ok {
		// Wrapping a pure error into an error union.
		if actualType == pureErrorType {
			return applyCast(sem.CastPureErrorWrap, false)
		}

		// Wrapping the payload into an error union.
		if typing.ConstCastOnly(wantedErr.Ok, actualType) {
			return applyCast(sem.CastErrorWrap, true)
		}

		if typing.IsNumLit(actualType) {
			if a.numLitFits(file, exprNode, wantedErr.Ok) {
				return applyCast(sem.CastErrorWrap, true)
			}

			return invalidType
		}
	}

	// A numeric literal casts to anything it fits.
	if typing.IsNumLit(actualType) {
		if a.numLitFits(file, exprNode, wantedType) {
			return applyCast(sem.CastNoop, false)
		}

		return invalidType
	}

	// An error value casts to an integer wide enough for every declared
	// error value.
	actualIsVoidErr := false
	if actualErr, ok := actualType.(*typing.ErrorUnionType); ok {
		actualIsVoidErr = a.sizes.SizeOfBits(actualErr.Ok) == 0
	}

	if (actualIsVoidErr || actualType == pureErrorType) && isInt(wantedType) {
		count := sem.IntNum(uint64(a.errorValueCount))
		if count.FitsInBits(int(a.sizes.SizeOfBits(wantedType)), wantedType.(*typing.IntType).Signed) {
			return applyCast(sem.CastErrToInt, false)
		}

		a.errorf(file, node.Span(), "too many error values to fit in '%s'", wantedType.Repr())
		return invalidType
	}

	a.errorf(file, node.Span(), "invalid cast from type '%s' to '%s'",
		actualType.Repr(), wantedType.Repr())
	return invalidType
}

// evalExplicitCast const-evaluates an explicit cast.
func (a *Analyzer) evalExplicitCast(op sem.CastOp, wanted, actual typing.DataType,
	val sem.ConstValue) sem.ConstValue {

	if !val.OK {
		return sem.ConstValue{}
	}

	switch op {
	case sem.CastNoop, sem.CastIntWidenOrShorten, sem.CastPointerReinterpret:
		return val
	case sem.CastPtrToInt, sem.CastIntToPtr:
		// Not computable at compile time.
		return sem.ConstValue{}
	case sem.CastToSlice, sem.CastMaybeWrap, sem.CastErrorWrap, sem.CastPureErrorWrap:
		return evalCastValue(wanted, actual, val)
	case sem.CastErrToInt:
		var value uint64
		if val.Err != nil {
			value = uint64(val.Err.Value)
		}

		return sem.ConstValue{OK: true, Num: sem.IntNum(value)}
	}

	return sem.ConstValue{}
}

func isPointer(dt typing.DataType) bool {
	_, ok := dt.(*typing.PointerType)
	return ok
}

func isInt(dt typing.DataType) bool {
	_, ok := dt.(*typing.IntType)
	return ok
}
