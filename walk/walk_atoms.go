package walk

import (
	"sable/ast"
	"sable/depm"
	"sable/sem"
	"sable/typing"
)

func (a *Analyzer) analyzeIndexExpr(file *depm.SableFile, scope *sem.Scope, node *ast.IndexExpr) typing.DataType {
	arrayType := a.analyzeExpression(file, scope, nil, node.Array)

	var returnType typing.DataType
	switch at := arrayType.(type) {
	case *typing.ArrayType:
		returnType = at.Elem
	case *typing.PointerType:
		returnType = at.Elem
	case *typing.SliceType:
		returnType = at.Elem
	default:
		if typing.IsInvalid(arrayType) {
			returnType = arrayType
		} else {
			a.errorf(file, node.Span(), "array access of non-array type '%s'", arrayType.Repr())
			returnType = invalidType
		}
	}

	a.analyzeExpression(file, scope, typing.Isize, node.Subscript)

	return returnType
}

// analyzeSliceExpr analyzes `a[start...end]`.  The slice's constness is
// inherited from the base: slicing a const slice or a const pointer yields a
// const slice.  The end bound may be omitted only when the base has a known
// length.
func (a *Analyzer) analyzeSliceExpr(file *depm.SableFile, scope *sem.Scope, node *ast.SliceRangeExpr) typing.DataType {
	arrayType := a.analyzeExpression(file, scope, nil, node.Array)

	var returnType typing.DataType
	endRequired := false

	switch at := arrayType.(type) {
	case *typing.ArrayType:
		returnType = a.interner.SliceOf(at.Elem, false)
	case *typing.PointerType:
		returnType = a.interner.SliceOf(at.Elem, at.Const)
		endRequired = true
	case *typing.SliceType:
		returnType = a.interner.SliceOf(at.Elem, at.Const)
	default:
		if typing.IsInvalid(arrayType) {
			returnType = arrayType
		} else {
			a.errorf(file, node.Span(), "slice of non-array type '%s'", arrayType.Repr())
			returnType = invalidType
		}
	}

	if node.End == nil && endRequired {
		a.errorf(file, node.Span(), "slice of pointer requires an end bound")
	}

	if !typing.IsInvalid(returnType) {
		scope.StructExprAllocas = append(scope.StructExprAllocas, &sem.StructValAlloca{
			Type: returnType,
			Node: node,
		})
	}

	a.analyzeExpression(file, scope, typing.Isize, node.Start)

	if node.End != nil {
		a.analyzeExpression(file, scope, typing.Isize, node.End)
	}

	// A slice of a fixed array with constant bounds has a compile-time
	// length.
	if arr, ok := arrayType.(*typing.ArrayType); ok {
		a.foldArraySliceLen(node, arr)
	}

	return returnType
}

// foldArraySliceLen folds the length of a slice taken from a fixed array with
// constant bounds.
func (a *Analyzer) foldArraySliceLen(node *ast.SliceRangeExpr, arr *typing.ArrayType) {
	startVal := a.constOf(node.Start)
	if !startVal.OK || startVal.Num.IsNegative() {
		return
	}

	endNum := sem.IntNum(arr.Len)
	if node.End != nil {
		endVal := a.constOf(node.End)
		if !endVal.OK {
			return
		}

		endNum = endVal.Num
	}

	length, ok := sem.NumSub(endNum, startVal.Num)
	if !ok || length.IsNegative() {
		return
	}

	arrayVal := a.constOf(node.Array)
	if !arrayVal.OK {
		// Without a constant array there are no pointee values to fold;
		// the slice expression stays non-constant.
		return
	}

	start := int(startVal.Num.Uint64())
	end := int(endNum.Uint64())
	if start < 0 || end > len(arrayVal.Elems) || start > end {
		return
	}

	ptrField := &sem.ConstValue{OK: true, Ptr: &sem.PtrValue{Vals: arrayVal.Elems[start:end]}}
	lenField := &sem.ConstValue{OK: true, Num: length}
	a.re(node).Const = sem.ConstValue{OK: true, Fields: []*sem.ConstValue{ptrField, lenField}}
}

// -----------------------------------------------------------------------------

func (a *Analyzer) analyzeFieldExpr(file *depm.SableFile, scope *sem.Scope, node *ast.FieldExpr) typing.DataType {
	rootType := a.analyzeExpression(file, scope, nil, node.Root)

	// Struct field access, through a pointer if necessary.
	bareType := rootType
	if ptr, ok := rootType.(*typing.PointerType); ok {
		bareType = ptr.Elem
	}

	switch rt := bareType.(type) {
	case *typing.StructType:
		if field := rt.FieldByName(node.Field); field != nil {
			return field.Type
		}

		a.errorf(file, node.Span(), "no member named '%s' in '%s'", node.Field, rootType.Repr())
		return invalidType
	case *typing.ArrayType:
		switch node.Field {
		case "len":
			return a.resolveConstValAsIntNumTyped(node, sem.IntNum(rt.Len), typing.Isize)
		case "ptr":
			return a.interner.PointerTo(rt.Elem, false)
		}

		a.errorf(file, node.Span(), "no member named '%s' in '%s'", node.Field, rootType.Repr())
		return invalidType
	case *typing.SliceType:
		switch node.Field {
		case "len":
			return typing.Usize
		case "ptr":
			return a.interner.PointerTo(rt.Elem, rt.Const)
		}

		a.errorf(file, node.Span(), "no member named '%s' in '%s'", node.Field, rootType.Repr())
		return invalidType
	}

	if rootType == metaType {
		namedType := a.resolveType(file, node.Root)

		switch nt := namedType.(type) {
		case *typing.EnumType:
			return a.analyzeEnumValueExpr(file, scope, node, node.Field, nil, nt)
		case typing.PrimType:
			if nt == typing.PrimType(typing.PrimPureError) {
				return a.analyzeErrorLiteral(file, node, node.Field)
			}
		}

		if !typing.IsInvalid(namedType) {
			a.errorf(file, node.Span(), "type '%s' does not support field access", namedType.Repr())
		}

		return invalidType
	}

	if !typing.IsInvalid(rootType) {
		a.errorf(file, node.Span(), "type '%s' does not support field access", rootType.Repr())
	}

	return invalidType
}

// resolveConstValAsIntNumTyped records a constant integer of a concrete type.
func (a *Analyzer) resolveConstValAsIntNumTyped(node ast.Expr, num sem.BigNum, dt typing.DataType) typing.DataType {
	a.re(node).Const = sem.ConstValue{OK: true, Num: num}
	return dt
}

// analyzeErrorLiteral analyzes `error.Name`.
func (a *Analyzer) analyzeErrorLiteral(file *depm.SableFile, node ast.Expr, name string) typing.DataType {
	if entry := file.Scope.FindError(name); entry != nil {
		return a.resolveConstValAsErr(node, entry)
	}

	a.errorf(file, node.Span(), "use of undeclared error value '%s'", name)
	return pureErrorType
}

// analyzeEnumValueExpr analyzes `Enum.Variant` and `Enum.Variant(payload)`.
// The constant value is attached to the given node, which is the field access
// for bare variants and the call expression for initialized ones.
func (a *Analyzer) analyzeEnumValueExpr(file *depm.SableFile, scope *sem.Scope,
	node ast.Expr, fieldName string, valueNode ast.Expr, enumType *typing.EnumType) typing.DataType {

	field := enumType.FieldByName(fieldName)
	if field == nil {
		a.errorf(file, node.Span(), "no member named '%s' in '%s'", fieldName, enumType.Name)
		return enumType
	}

	if valueNode != nil {
		a.analyzeExpression(file, scope, field.Type, valueNode)

		scope.StructExprAllocas = append(scope.StructExprAllocas, &sem.StructValAlloca{
			Type: enumType,
			Node: node,
		})

		payloadVal := a.constOf(valueNode)
		if payloadVal.OK {
			payload := *payloadVal
			a.re(node).Const = sem.ConstValue{
				OK:   true,
				Enum: sem.EnumValue{Tag: field.Value, Payload: &payload},
			}
		}
	} else if !typing.IsVoid(field.Type) {
		a.errorf(file, node.Span(), "enum value '%s.%s' requires parameter of type '%s'",
			enumType.Name, fieldName, field.Type.Repr())
	} else {
		a.re(node).Const = sem.ConstValue{OK: true, Enum: sem.EnumValue{Tag: field.Value}}
	}

	return enumType
}

// -----------------------------------------------------------------------------

// analyzeContainerInit analyzes container literals: struct initializers,
// array literals, and the `void{}` / `unreachable{}` value forms.
func (a *Analyzer) analyzeContainerInit(file *depm.SableFile, scope *sem.Scope, node *ast.ContainerInit) typing.DataType {
	containerType := a.analyzeTypeExpr(file, scope, node.TypeExpr)

	switch ct := containerType.(type) {
	case *typing.StructType:
		if node.Kind != ast.InitKindStruct && len(node.Elems) > 0 {
			a.errorf(file, node.Span(), "type '%s' requires struct initialization syntax", ct.Name)
			return invalidType
		}

		return a.analyzeStructInit(file, scope, node, ct)
	case *typing.SliceType:
		// An initializer on a slice type produces a fixed array of the
		// element type sized by the entry count.
		if node.Kind != ast.InitKindArray {
			a.errorf(file, node.Span(), "type '%s' requires array initialization syntax", ct.Repr())
			return invalidType
		}

		return a.analyzeArrayInit(file, scope, node, ct.Elem, uint64(len(node.Elems)))
	case *typing.ArrayType:
		if node.Kind != ast.InitKindArray {
			a.errorf(file, node.Span(), "type '%s' requires array initialization syntax", ct.Repr())
			return invalidType
		}

		if uint64(len(node.Elems)) != ct.Len {
			a.errorf(file, node.Span(), "expected %d array elements, got %d", ct.Len, len(node.Elems))
			return invalidType
		}

		return a.analyzeArrayInit(file, scope, node, ct.Elem, ct.Len)
	case typing.PrimType:
		switch ct {
		case typing.PrimType(typing.PrimInvalid):
			return containerType
		case typing.PrimType(typing.PrimVoid):
			if len(node.Elems) != 0 || len(node.FieldInits) != 0 {
				a.errorf(file, node.Span(), "void expression expects no arguments")
				return invalidType
			}

			return a.resolveConstValAsVoid(node)
		case typing.PrimType(typing.PrimUnreachable):
			if len(node.Elems) != 0 || len(node.FieldInits) != 0 {
				a.errorf(file, node.Span(), "unreachable expression expects no arguments")
				return invalidType
			}

			return unreachableType
		}
	}

	initKind := "array"
	if node.Kind == ast.InitKindStruct {
		initKind = "struct"
	}

	a.errorf(file, node.Span(), "type '%s' does not support %s initialization syntax",
		containerType.Repr(), initKind)
	return invalidType
}

func (a *Analyzer) analyzeStructInit(file *depm.SableFile, scope *sem.Scope,
	node *ast.ContainerInit, structType *typing.StructType) typing.DataType {

	scope.StructExprAllocas = append(scope.StructExprAllocas, &sem.StructValAlloca{
		Type: structType,
		Node: node,
	})

	fieldCount := len(structType.Fields)
	fieldUseCounts := make([]int, fieldCount)

	constVal := sem.ConstValue{OK: true, Fields: make([]*sem.ConstValue, fieldCount)}

	for _, fieldInit := range node.FieldInits {
		field := structType.FieldByName(fieldInit.Name)
		if field == nil {
			a.errorf(file, fieldInit.Span(), "no member named '%s' in '%s'",
				fieldInit.Name, structType.Name)
			continue
		}

		fieldUseCounts[field.SrcIndex]++
		if fieldUseCounts[field.SrcIndex] > 1 {
			a.errorf(file, fieldInit.Span(), "duplicate field")
			continue
		}

		a.analyzeExpression(file, scope, field.Type, fieldInit.Value)

		if constVal.OK {
			fieldVal := a.constOf(fieldInit.Value)
			if fieldVal.OK {
				constVal.Fields[field.SrcIndex] = fieldVal
			} else {
				constVal.OK = false
			}
		}
	}

	for i := 0; i < fieldCount; i++ {
		if fieldUseCounts[i] == 0 {
			a.errorf(file, node.Span(), "missing field: '%s'", structType.Fields[i].Name)
			constVal.OK = false
		}
	}

	if constVal.OK {
		a.re(node).Const = constVal
	}

	return structType
}

func (a *Analyzer) analyzeArrayInit(file *depm.SableFile, scope *sem.Scope,
	node *ast.ContainerInit, elemType typing.DataType, length uint64) typing.DataType {

	constVal := sem.ConstValue{OK: true, Elems: make([]*sem.ConstValue, len(node.Elems))}

	for i, elem := range node.Elems {
		a.analyzeExpression(file, scope, elemType, elem)

		if constVal.OK {
			elemVal := a.constOf(elem)
			if elemVal.OK {
				constVal.Elems[i] = elemVal
			} else {
				constVal.OK = false
			}
		}
	}

	arrayType := a.interner.ArrayOf(elemType, length)

	scope.StructExprAllocas = append(scope.StructExprAllocas, &sem.StructValAlloca{
		Type: arrayType,
		Node: node,
	})

	if constVal.OK {
		a.re(node).Const = constVal
	}

	return arrayType
}

// -----------------------------------------------------------------------------

// analyzeArrayTypeExpr analyzes `[N]T`, `[]T`, and `[]const T` type
// expressions.  A non-constant size yields a slice type.
func (a *Analyzer) analyzeArrayTypeExpr(file *depm.SableFile, scope *sem.Scope, node *ast.ArrayTypeExpr) typing.DataType {
	elemType := a.analyzeTypeExpr(file, scope, node.Elem)

	if typing.IsUnreachable(elemType) {
		a.errorf(file, node.Span(), "array of unreachable not allowed")
		return invalidType
	} else if typing.IsInvalid(elemType) {
		return invalidType
	}

	if node.Size != nil {
		sizeType := a.analyzeExpression(file, scope, typing.Isize, node.Size)
		if typing.IsInvalid(sizeType) {
			return invalidType
		}

		sizeVal := a.constOf(node.Size)
		if sizeVal.OK {
			if sizeVal.Num.IsNegative() {
				a.errorf(file, node.Size.Span(), "array size %s is negative", sizeVal.Num.String())
				return invalidType
			}

			return a.resolveConstValAsType(node, a.interner.ArrayOf(elemType, sizeVal.Num.Uint64()))
		}

		return a.resolveConstValAsType(node, a.interner.SliceOf(elemType, node.Const))
	}

	return a.resolveConstValAsType(node, a.interner.SliceOf(elemType, node.Const))
}
