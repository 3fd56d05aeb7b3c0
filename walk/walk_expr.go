package walk

import (
	"sable/ast"
	"sable/depm"
	"sable/sem"
	"sable/typing"
)

var invalidType = typing.DataType(typing.PrimType(typing.PrimInvalid))
var voidType = typing.DataType(typing.PrimType(typing.PrimVoid))
var boolType = typing.DataType(typing.PrimType(typing.PrimBool))
var unreachableType = typing.DataType(typing.PrimType(typing.PrimUnreachable))
var metaType = typing.DataType(typing.PrimType(typing.PrimMetaType))
var pureErrorType = typing.DataType(typing.PrimType(typing.PrimPureError))

// analyzeExpression assigns a type (and, when possible, a constant value) to
// an expression node, reconciling it with the type its context expects.  It
// returns the expression's type after any implicit conversion.
func (a *Analyzer) analyzeExpression(file *depm.SableFile, scope *sem.Scope,
	expected typing.DataType, node ast.Expr) typing.DataType {

	var returnType typing.DataType

	switch v := node.(type) {
	case *ast.Block:
		returnType = a.analyzeBlock(file, scope, expected, v)
	case *ast.ReturnStmt:
		returnType = a.analyzeReturn(file, scope, v)
	case *ast.Goto:
		returnType = a.analyzeGoto(file, scope, v)
	case *ast.Break:
		if scope.ParentLoop == nil {
			a.errorf(file, v.Span(), "'break' expression outside loop")
		} else if while, ok := scope.ParentLoop.(*ast.WhileExpr); ok {
			a.loopBreaks[while] = true
		}

		returnType = unreachableType
	case *ast.Continue:
		if scope.ParentLoop == nil {
			a.errorf(file, v.Span(), "'continue' expression outside loop")
		}

		returnType = unreachableType
	case *ast.BinaryExpr:
		returnType = a.analyzeBinaryExpr(file, scope, expected, v)
	case *ast.UnwrapErrorExpr:
		returnType = a.analyzeUnwrapError(file, scope, v)
	case *ast.PrefixExpr:
		returnType = a.analyzePrefixExpr(file, scope, expected, v)
	case *ast.CallExpr:
		returnType = a.analyzeCallExpr(file, scope, expected, v)
	case *ast.IndexExpr:
		returnType = a.analyzeIndexExpr(file, scope, v)
	case *ast.SliceRangeExpr:
		returnType = a.analyzeSliceExpr(file, scope, v)
	case *ast.FieldExpr:
		returnType = a.analyzeFieldExpr(file, scope, v)
	case *ast.ContainerInit:
		returnType = a.analyzeContainerInit(file, scope, v)
	case *ast.ArrayTypeExpr:
		returnType = a.analyzeArrayTypeExpr(file, scope, v)
	case *ast.ErrorTypeExpr:
		returnType = a.resolveConstValAsType(v, pureErrorType)
	case *ast.NumberLit:
		returnType = a.analyzeNumberLit(file, v)
	case *ast.StringLit:
		if v.CStr {
			returnType = a.resolveConstValAsCStringLit(v, v.Value)
		} else {
			returnType = a.resolveConstValAsStringLit(v, v.Value)
		}
	case *ast.CharLit:
		returnType = a.resolveConstValAsIntNum(v, sem.IntNum(uint64(v.Value)))
	case *ast.BoolLit:
		returnType = a.resolveConstValAsBool(v, v.Value)
	case *ast.NullLit:
		returnType = a.analyzeNullLit(file, scope, expected, v)
	case *ast.UndefinedLit:
		a.re(v).Const = sem.ConstValue{OK: true, Undef: true}
		if expected != nil {
			returnType = expected
		} else {
			returnType = typing.PrimType(typing.PrimUndefLit)
		}
	case *ast.SymbolExpr:
		returnType = a.analyzeSymbolExpr(file, scope, v)
	case *ast.IfExpr:
		returnType = a.analyzeIfExpr(file, scope, expected, v)
	case *ast.IfVarExpr:
		returnType = a.analyzeIfVarExpr(file, scope, expected, v)
	case *ast.WhileExpr:
		returnType = a.analyzeWhileExpr(file, scope, v)
	case *ast.ForExpr:
		returnType = a.analyzeForExpr(file, scope, v)
	case *ast.SwitchExpr:
		returnType = a.analyzeSwitchExpr(file, scope, expected, v)
	default:
		a.errorf(file, node.Span(), "expression not valid in this context")
		returnType = invalidType
	}

	re := a.re(node)
	re.Type = returnType

	resolvedType := a.resolveTypeCompat(file, scope, node, expected, returnType)

	a.addGlobalConst(re)

	return resolvedType
}

// -----------------------------------------------------------------------------

// isVoidExpr returns whether the node is the void value expression `void{}`.
func isVoidExpr(node ast.Node) bool {
	if init, ok := node.(*ast.ContainerInit); ok && init.Kind == ast.InitKindArray {
		if sym, ok := init.TypeExpr.(*ast.SymbolExpr); ok {
			return sym.Name == "void"
		}
	}

	return false
}

// analyzeBlock analyzes a statement block.  The block's value is the value of
// its final statement; only the final statement sees the context's expected
// type.
func (a *Analyzer) analyzeBlock(file *depm.SableFile, scope *sem.Scope,
	expected typing.DataType, block *ast.Block) typing.DataType {

	childScope := sem.NewScope(block, scope)
	returnType := voidType

	for i, stmt := range block.Stmts {
		if label, ok := stmt.(*ast.Label); ok {
			if scope.Fn == nil {
				a.errorf(file, label.Span(), "label outside function definition")
				continue
			}

			entry := scope.Fn.Labels[label.Name]
			if entry == nil {
				// Labels in nested blocks are not previewed; declare on
				// first sight.
				entry = &sem.Label{Node: label}
				scope.Fn.Labels[label.Name] = entry
			}

			entry.EnteredFromFallthrough = !typing.IsUnreachable(returnType)
			returnType = voidType
			continue
		}

		if typing.IsUnreachable(returnType) {
			// {unreachable; void; void} is allowed: void statements are
			// ignored once in unreachable land.
			if isVoidExpr(stmt) {
				a.analyzeExpression(file, childScope, voidType, stmt.(ast.Expr))
				continue
			}

			a.errorf(file, stmt.Span(), "unreachable code")
			break
		}

		isLast := i == len(block.Stmts)-1
		var passedExpected typing.DataType
		if isLast {
			passedExpected = expected
		}

		returnType = a.analyzeStmt(file, childScope, passedExpected, stmt)

		// The block's value is its final statement's value; a constant final
		// statement makes the block constant.
		if isLast {
			if lastExpr, isExpr := stmt.(ast.Expr); isExpr {
				if lastVal := a.constOf(lastExpr); lastVal.OK {
					a.re(block).Const = *lastVal
				}
			}
		}

		if !isLast {
			if returnType == metaType {
				a.errorf(file, stmt.Span(), "expected expression, found type")
			} else if _, isErr := returnType.(*typing.ErrorUnionType); isErr {
				a.errorf(file, stmt.Span(), "statement ignores error value")
			}
		}
	}

	return returnType
}

// analyzeStmt analyzes one statement, which is either a variable declaration
// or an expression.
func (a *Analyzer) analyzeStmt(file *depm.SableFile, scope *sem.Scope,
	expected typing.DataType, stmt ast.Node) typing.DataType {

	switch v := stmt.(type) {
	case *ast.VarDecl:
		a.analyzeVarDecl(file, scope, v, false)
		return voidType
	case ast.Expr:
		return a.analyzeExpression(file, scope, expected, v)
	}

	a.errorf(file, stmt.Span(), "declaration not valid inside a function body")
	return invalidType
}

func (a *Analyzer) analyzeGoto(file *depm.SableFile, scope *sem.Scope, node *ast.Goto) typing.DataType {
	if scope.Fn == nil {
		a.errorf(file, node.Span(), "'goto' outside function definition")
		return unreachableType
	}

	if entry, ok := scope.Fn.Labels[node.Name]; ok {
		entry.Used = true
	} else {
		a.errorf(file, node.Span(), "use of undeclared label '%s'", node.Name)
	}

	return unreachableType
}

// -----------------------------------------------------------------------------

func (a *Analyzer) analyzeNumberLit(file *depm.SableFile, node *ast.NumberLit) typing.DataType {
	num, ok := sem.ParseNumberText(node.Text, node.IsFloat)
	if !ok {
		a.errorf(file, node.Span(), "number literal too large to be represented in any type")
		return invalidType
	}

	if node.IsFloat {
		return a.resolveConstValAsFloatNum(node, num)
	}

	return a.resolveConstValAsIntNum(node, num)
}

func (a *Analyzer) analyzeNullLit(file *depm.SableFile, scope *sem.Scope,
	expected typing.DataType, node *ast.NullLit) typing.DataType {

	if expected == nil {
		a.errorf(file, node.Span(), "unable to determine null type")
		return invalidType
	}

	optType, ok := expected.(*typing.OptionalType)
	if !ok {
		if !typing.IsInvalid(expected) {
			a.errorf(file, node.Span(), "expected type '%s', got 'null'", expected.Repr())
		}

		return invalidType
	}

	scope.StructExprAllocas = append(scope.StructExprAllocas, &sem.StructValAlloca{
		Type: optType,
		Node: node,
	})

	return a.resolveConstValAsNull(node, optType)
}

func (a *Analyzer) analyzeSymbolExpr(file *depm.SableFile, scope *sem.Scope, node *ast.SymbolExpr) typing.DataType {
	if prim, ok := typing.PrimitiveByName[node.Name]; ok {
		return a.resolveConstValAsType(node, prim)
	}

	if v := scope.FindVar(node.Name); v != nil {
		if v.Const {
			if declNode, ok := v.DeclNode.(*ast.VarDecl); ok && declNode.Init != nil {
				if a.constOf(declNode.Init).OK {
					return a.resolveConstValAsOther(node, declNode.Init)
				}
			}
		}

		return v.Type
	}

	if containerType := scope.FindType(node.Name); containerType != nil {
		return a.resolveConstValAsType(node, containerType)
	}

	if fn, ok := file.FnTable[node.Name]; ok {
		return a.resolveConstValAsFn(node, fn)
	}

	a.errorf(file, node.Span(), "use of undeclared identifier '%s'", node.Name)
	return invalidType
}

// -----------------------------------------------------------------------------

// numBinOps maps foldable binary operators to their big number operations.
var numBinOps = map[ast.BinOp]sem.BigNumOp{
	ast.BinOpAdd:    sem.NumAdd,
	ast.BinOpSub:    sem.NumSub,
	ast.BinOpMul:    sem.NumMul,
	ast.BinOpDiv:    sem.NumDiv,
	ast.BinOpMod:    sem.NumMod,
	ast.BinOpBitOr:  sem.NumOr,
	ast.BinOpBitAnd: sem.NumAnd,
	ast.BinOpBitXor: sem.NumXor,
	ast.BinOpShl:    sem.NumShl,
	ast.BinOpShr:    sem.NumShr,
}

// intOnlyOps are the arithmetic operators defined only on integers.
var intOnlyOps = map[ast.BinOp]bool{
	ast.BinOpBitOr:  true,
	ast.BinOpBitAnd: true,
	ast.BinOpBitXor: true,
	ast.BinOpShl:    true,
	ast.BinOpShr:    true,
}

func (a *Analyzer) analyzeBinaryExpr(file *depm.SableFile, scope *sem.Scope,
	expected typing.DataType, node *ast.BinaryExpr) typing.DataType {

	switch node.Op {
	case ast.BinOpBoolOr, ast.BinOpBoolAnd:
		return a.analyzeLogicExpr(file, scope, node)
	case ast.BinOpCmpEq, ast.BinOpCmpNotEq, ast.BinOpCmpLT, ast.BinOpCmpGT,
		ast.BinOpCmpLTE, ast.BinOpCmpGTE:
		return a.analyzeCmpExpr(file, scope, node)
	case ast.BinOpUnwrapOptional:
		return a.analyzeUnwrapOptional(file, scope, node)
	case ast.BinOpArrayCat:
		return a.analyzeArrayCat(file, scope, node)
	}

	if node.Op.IsAssign() {
		return a.analyzeAssignExpr(file, scope, node)
	}

	return a.analyzeArithExpr(file, scope, expected, node)
}

func (a *Analyzer) analyzeAssignExpr(file *depm.SableFile, scope *sem.Scope, node *ast.BinaryExpr) typing.DataType {
	expectedRhsType := a.analyzeLvalue(file, scope, node.Lhs, true)

	if !isOpAllowed(expectedRhsType, node.Op) {
		if !typing.IsInvalid(expectedRhsType) {
			a.errorf(file, node.Lhs.Span(), "operator not allowed for type '%s'", expectedRhsType.Repr())
		}
	}

	a.analyzeExpression(file, scope, expectedRhsType, node.Rhs)
	return voidType
}

// isOpAllowed returns whether a compound assignment operator is defined for
// the left-hand type.
func isOpAllowed(dt typing.DataType, op ast.BinOp) bool {
	switch op {
	case ast.BinOpAssign:
		return true
	case ast.BinOpAssignTimes, ast.BinOpAssignDiv, ast.BinOpAssignMod:
		switch dt.(type) {
		case *typing.IntType, *typing.FloatType:
			return true
		}
		return false
	case ast.BinOpAssignPlus, ast.BinOpAssignMinus:
		switch dt.(type) {
		case *typing.IntType, *typing.FloatType, *typing.PointerType:
			return true
		}
		return false
	case ast.BinOpAssignShl, ast.BinOpAssignShr, ast.BinOpAssignBitAnd,
		ast.BinOpAssignBitXor, ast.BinOpAssignBitOr:
		_, isInt := dt.(*typing.IntType)
		return isInt
	case ast.BinOpAssignBoolAnd, ast.BinOpAssignBoolOr:
		return dt == boolType
	}

	return false
}

func (a *Analyzer) analyzeLogicExpr(file *depm.SableFile, scope *sem.Scope, node *ast.BinaryExpr) typing.DataType {
	lhsType := a.analyzeExpression(file, scope, boolType, node.Lhs)
	rhsType := a.analyzeExpression(file, scope, boolType, node.Rhs)

	if typing.IsInvalid(lhsType) || typing.IsInvalid(rhsType) {
		return invalidType
	}

	lhsVal := a.constOf(node.Lhs)
	rhsVal := a.constOf(node.Rhs)
	if !lhsVal.OK || !rhsVal.OK {
		return boolType
	}

	var answer bool
	if node.Op == ast.BinOpBoolOr {
		answer = lhsVal.Bool || rhsVal.Bool
	} else {
		answer = lhsVal.Bool && rhsVal.Bool
	}

	return a.resolveConstValAsBool(node, answer)
}

func (a *Analyzer) analyzeCmpExpr(file *depm.SableFile, scope *sem.Scope, node *ast.BinaryExpr) typing.DataType {
	lhsType := a.analyzeExpression(file, scope, nil, node.Lhs)
	rhsType := a.analyzeExpression(file, scope, nil, node.Rhs)

	opNodes := []ast.Expr{node.Lhs, node.Rhs}
	opTypes := []typing.DataType{lhsType, rhsType}

	resolvedType := a.resolvePeerTypes(file, scope, node, opNodes, opTypes)
	if typing.IsInvalid(resolvedType) {
		return invalidType
	}

	isEquality := node.Op == ast.BinOpCmpEq || node.Op == ast.BinOpCmpNotEq

	switch rt := resolvedType.(type) {
	case *typing.IntType, *typing.FloatType:
		// All comparison operators apply.
	case typing.PrimType:
		switch rt {
		case typing.PrimType(typing.PrimNumLitInt), typing.PrimType(typing.PrimNumLitFloat):
		case typing.PrimType(typing.PrimBool), typing.PrimType(typing.PrimPureError):
			if !isEquality {
				a.errorf(file, node.Span(), "operator not allowed for type '%s'", resolvedType.Repr())
				return invalidType
			}
		default:
			a.errorf(file, node.Span(), "operator not allowed for type '%s'", resolvedType.Repr())
			return invalidType
		}
	case *typing.PointerType:
		if !isEquality {
			a.errorf(file, node.Span(), "operator not allowed for type '%s'", resolvedType.Repr())
			return invalidType
		}
	case *typing.EnumType:
		if !isEquality {
			a.errorf(file, node.Span(), "operator not allowed for type '%s'", resolvedType.Repr())
			return invalidType
		}

		// Equality on enums carrying payloads would have to compare the
		// payload values as well; it is rejected until the comparison
		// semantics are settled.
		for _, field := range rt.Fields {
			if !typing.IsVoid(field.Type) {
				a.errorf(file, node.Span(),
					"cannot compare enum '%s': variant '%s' carries a payload", rt.Name, field.Name)
				return invalidType
			}
		}
	default:
		a.errorf(file, node.Span(), "operator not allowed for type '%s'", resolvedType.Repr())
		return invalidType
	}

	lhsVal := a.constOf(node.Lhs)
	rhsVal := a.constOf(node.Rhs)
	if !lhsVal.OK || !rhsVal.OK {
		return boolType
	}

	var answer bool
	switch resolvedType.(type) {
	case *typing.EnumType:
		equal := lhsVal.Enum.Tag == rhsVal.Enum.Tag
		if node.Op == ast.BinOpCmpEq {
			answer = equal
		} else {
			answer = !equal
		}
	default:
		if resolvedType == boolType || resolvedType == pureErrorType {
			equal := lhsVal.Bool == rhsVal.Bool
			if resolvedType == pureErrorType {
				equal = lhsVal.Err == rhsVal.Err
			}

			if node.Op == ast.BinOpCmpEq {
				answer = equal
			} else {
				answer = !equal
			}
		} else {
			// Only numeric constants fold; constant pointers compare at
			// runtime.
			if lhsVal.Num.Kind == sem.BigNumInt && lhsVal.Num.Int == nil {
				return boolType
			}

			cmp := sem.NumCmp(lhsVal.Num, rhsVal.Num)
			switch node.Op {
			case ast.BinOpCmpEq:
				answer = cmp == 0
			case ast.BinOpCmpNotEq:
				answer = cmp != 0
			case ast.BinOpCmpLT:
				answer = cmp < 0
			case ast.BinOpCmpGT:
				answer = cmp > 0
			case ast.BinOpCmpLTE:
				answer = cmp <= 0
			default:
				answer = cmp >= 0
			}
		}
	}

	return a.resolveConstValAsBool(node, answer)
}

func (a *Analyzer) analyzeArithExpr(file *depm.SableFile, scope *sem.Scope,
	expected typing.DataType, node *ast.BinaryExpr) typing.DataType {

	lhsType := a.analyzeExpression(file, scope, expected, node.Lhs)
	rhsType := a.analyzeExpression(file, scope, expected, node.Rhs)

	opNodes := []ast.Expr{node.Lhs, node.Rhs}
	opTypes := []typing.DataType{lhsType, rhsType}

	resolvedType := a.resolvePeerTypes(file, scope, node, opNodes, opTypes)
	if typing.IsInvalid(resolvedType) {
		return resolvedType
	}

	switch resolvedType.(type) {
	case *typing.IntType:
	case *typing.FloatType:
		if intOnlyOps[node.Op] {
			a.errorf(file, node.Span(), "operator not allowed for type '%s'", resolvedType.Repr())
			return invalidType
		}
	case typing.PrimType:
		if resolvedType == typing.PrimType(typing.PrimNumLitInt) {
			break
		}

		if resolvedType == typing.PrimType(typing.PrimNumLitFloat) && !intOnlyOps[node.Op] {
			break
		}

		a.errorf(file, node.Span(), "operator not allowed for type '%s'", resolvedType.Repr())
		return invalidType
	default:
		a.errorf(file, node.Span(), "operator not allowed for type '%s'", resolvedType.Repr())
		return invalidType
	}

	lhsVal := a.constOf(node.Lhs)
	rhsVal := a.constOf(node.Rhs)
	if !lhsVal.OK || !rhsVal.OK {
		return resolvedType
	}

	return a.resolveConstValAsNumOp(file, node, numBinOps[node.Op], node.Lhs, node.Rhs, resolvedType)
}

func (a *Analyzer) analyzeUnwrapOptional(file *depm.SableFile, scope *sem.Scope, node *ast.BinaryExpr) typing.DataType {
	lhsType := a.analyzeExpression(file, scope, nil, node.Lhs)

	if typing.IsInvalid(lhsType) {
		return lhsType
	}

	optType, ok := lhsType.(*typing.OptionalType)
	if !ok {
		a.errorf(file, node.Lhs.Span(), "expected optional type, got '%s'", lhsType.Repr())
		return invalidType
	}

	a.analyzeExpression(file, scope, optType.Elem, node.Rhs)
	return optType.Elem
}

// analyzeArrayCat analyzes the constant concatenation operator `++`.
func (a *Analyzer) analyzeArrayCat(file *depm.SableFile, scope *sem.Scope, node *ast.BinaryExpr) typing.DataType {
	strType := a.interner.SliceOf(typing.U8, true)

	lhsType := a.analyzeExpression(file, scope, strType, node.Lhs)
	rhsType := a.analyzeExpression(file, scope, strType, node.Rhs)

	if typing.IsInvalid(lhsType) || typing.IsInvalid(rhsType) {
		return invalidType
	}

	lhsVal := a.constOf(node.Lhs)
	rhsVal := a.constOf(node.Rhs)

	var badNode ast.Expr
	if !lhsVal.OK {
		badNode = node.Lhs
	} else if !rhsVal.OK {
		badNode = node.Rhs
	}

	if badNode != nil {
		a.errorf(file, badNode.Span(), "string concatenation requires constant expression")
		return invalidType
	}

	lhsBytes := lhsVal.Fields[0].Ptr.Vals
	rhsBytes := rhsVal.Fields[0].Ptr.Vals

	vals := make([]*sem.ConstValue, 0, len(lhsBytes)+len(rhsBytes))
	vals = append(vals, lhsBytes...)
	vals = append(vals, rhsBytes...)

	ptrField := &sem.ConstValue{OK: true, Ptr: &sem.PtrValue{Vals: vals}}
	lenField := &sem.ConstValue{OK: true, Num: sem.IntNum(uint64(len(vals)))}

	a.re(node).Const = sem.ConstValue{OK: true, Fields: []*sem.ConstValue{ptrField, lenField}}
	return strType
}

// -----------------------------------------------------------------------------

// analyzeLvalue analyzes an assignment target or an address-of operand.  For
// assignment the left-hand side must be a variable, array access, field
// access, or dereference, and the variable must not be constant.
func (a *Analyzer) analyzeLvalue(file *depm.SableFile, scope *sem.Scope, lhs ast.Expr, forAssign bool) typing.DataType {
	switch v := lhs.(type) {
	case *ast.SymbolExpr:
		if !forAssign {
			return a.analyzeExpression(file, scope, nil, lhs)
		}

		targetVar := scope.FindVar(v.Name)
		if targetVar == nil {
			a.errorf(file, lhs.Span(), "use of undeclared identifier '%s'", v.Name)
			return invalidType
		}

		if targetVar.Const {
			a.errorf(file, lhs.Span(), "cannot assign to constant")
			return invalidType
		}

		a.re(lhs).Type = targetVar.Type
		return targetVar.Type
	case *ast.IndexExpr, *ast.FieldExpr:
		return a.analyzeExpression(file, scope, nil, lhs)
	case *ast.PrefixExpr:
		if v.Op == ast.PrefixOpDeref && forAssign {
			operandType := a.analyzeExpression(file, scope, nil, v.Operand)
			if typing.IsInvalid(operandType) {
				return operandType
			}

			if ptr, ok := operandType.(*typing.PointerType); ok {
				a.re(lhs).Type = ptr.Elem
				return ptr.Elem
			}

			a.errorf(file, v.Operand.Span(),
				"indirection requires pointer operand ('%s' invalid)", operandType.Repr())
			return invalidType
		}
	}

	if forAssign {
		a.errorf(file, lhs.Span(), "invalid assignment target")
		return invalidType
	}

	targetType := a.analyzeExpression(file, scope, nil, lhs)
	if typing.IsInvalid(targetType) || targetType == metaType {
		return targetType
	}

	a.errorf(file, lhs.Span(), "invalid addressof target")
	return invalidType
}

// -----------------------------------------------------------------------------

func (a *Analyzer) analyzeUnwrapError(file *depm.SableFile, scope *sem.Scope, node *ast.UnwrapErrorExpr) typing.DataType {
	lhsType := a.analyzeExpression(file, scope, nil, node.Operand)

	if typing.IsInvalid(lhsType) {
		return lhsType
	}

	errUnion, ok := lhsType.(*typing.ErrorUnionType)
	if !ok {
		a.errorf(file, node.Operand.Span(), "expected error type, got '%s'", lhsType.Repr())
		return invalidType
	}

	childScope := scope
	if node.ErrVar != nil {
		childScope = sem.NewScope(node, scope)
		a.addLocalVar(file, childScope, node.ErrVar, node.ErrVar.Name, pureErrorType, true)
	}

	a.analyzeExpression(file, childScope, errUnion.Ok, node.Else)
	return errUnion.Ok
}

// -----------------------------------------------------------------------------

func (a *Analyzer) analyzePrefixExpr(file *depm.SableFile, scope *sem.Scope,
	expected typing.DataType, node *ast.PrefixExpr) typing.DataType {

	switch node.Op {
	case ast.PrefixOpBoolNot:
		operandType := a.analyzeExpression(file, scope, boolType, node.Operand)
		if typing.IsInvalid(operandType) {
			return boolType
		}

		operandVal := a.constOf(node.Operand)
		if !operandVal.OK {
			return boolType
		}

		return a.resolveConstValAsBool(node, !operandVal.Bool)
	case ast.PrefixOpBitNot:
		operandType := a.analyzeExpression(file, scope, expected, node.Operand)
		if typing.IsInvalid(operandType) {
			return operandType
		}

		switch operandType.(type) {
		case *typing.IntType:
			return operandType
		}

		if operandType == typing.PrimType(typing.PrimNumLitInt) {
			return operandType
		}

		a.errorf(file, node.Operand.Span(), "invalid binary not type: '%s'", operandType.Repr())
		return invalidType
	case ast.PrefixOpNeg:
		operandType := a.analyzeExpression(file, scope, expected, node.Operand)
		if typing.IsInvalid(operandType) {
			return operandType
		}

		negatable := false
		switch ot := operandType.(type) {
		case *typing.IntType:
			negatable = ot.Signed
		case *typing.FloatType:
			negatable = true
		default:
			negatable = typing.IsNumLit(operandType)
		}

		if !negatable {
			a.errorf(file, node.Span(), "invalid negation type: '%s'", operandType.Repr())
			return invalidType
		}

		operandVal := a.constOf(node.Operand)
		if !operandVal.OK || operandVal.Undef {
			return operandType
		}

		a.re(node).Const = sem.ConstValue{OK: true, Num: sem.NumNeg(operandVal.Num)}
		return operandType
	case ast.PrefixOpAddrOf, ast.PrefixOpConstAddrOf:
		isConst := node.Op == ast.PrefixOpConstAddrOf

		childType := a.analyzeLvalue(file, scope, node.Operand, false)
		if typing.IsInvalid(childType) {
			return invalidType
		}

		if childType == metaType {
			pointeeType := a.resolveType(file, node.Operand)
			if typing.IsInvalid(pointeeType) {
				return invalidType
			}

			if typing.IsUnreachable(pointeeType) {
				a.errorf(file, node.Span(), "pointer to unreachable not allowed")
				return invalidType
			}

			return a.resolveConstValAsType(node, a.interner.PointerTo(pointeeType, isConst))
		}

		if typing.IsNumLit(childType) {
			a.errorf(file, node.Operand.Span(), "unable to get address of type '%s'", childType.Repr())
			return invalidType
		}

		return a.interner.PointerTo(childType, isConst)
	case ast.PrefixOpDeref:
		operandType := a.analyzeExpression(file, scope, nil, node.Operand)
		if typing.IsInvalid(operandType) {
			return operandType
		}

		if ptr, ok := operandType.(*typing.PointerType); ok {
			return ptr.Elem
		}

		a.errorf(file, node.Operand.Span(),
			"indirection requires pointer operand ('%s' invalid)", operandType.Repr())
		return invalidType
	case ast.PrefixOpOptional:
		operandType := a.analyzeExpression(file, scope, nil, node.Operand)
		if typing.IsInvalid(operandType) {
			return operandType
		}

		if operandType == metaType {
			wrapped := a.resolveType(file, node.Operand)
			if typing.IsInvalid(wrapped) {
				return invalidType
			}

			if typing.IsUnreachable(wrapped) {
				a.errorf(file, node.Span(), "unable to wrap unreachable in optional type")
				return invalidType
			}

			return a.resolveConstValAsType(node, a.interner.OptionalOf(wrapped))
		}

		if typing.IsUnreachable(operandType) {
			a.errorf(file, node.Operand.Span(), "unable to wrap unreachable in optional type")
			return invalidType
		}

		// TODO: fold constant operands once optional wrapping is generated.
		return a.interner.OptionalOf(operandType)
	case ast.PrefixOpError:
		operandType := a.analyzeExpression(file, scope, nil, node.Operand)
		if typing.IsInvalid(operandType) {
			return operandType
		}

		if operandType == metaType {
			wrapped := a.resolveType(file, node.Operand)
			if typing.IsInvalid(wrapped) {
				return wrapped
			}

			if typing.IsUnreachable(wrapped) {
				a.errorf(file, node.Span(), "unable to wrap unreachable in error type")
				return invalidType
			}

			return a.resolveConstValAsType(node, a.interner.ErrorUnionOf(wrapped))
		}

		if typing.IsUnreachable(operandType) {
			a.errorf(file, node.Operand.Span(), "unable to wrap unreachable in error type")
			return invalidType
		}

		// TODO: fold constant operands once error wrapping is generated.
		return a.interner.ErrorUnionOf(operandType)
	case ast.PrefixOpUnwrapError:
		operandType := a.analyzeExpression(file, scope, nil, node.Operand)
		if typing.IsInvalid(operandType) {
			return operandType
		}

		if errUnion, ok := operandType.(*typing.ErrorUnionType); ok {
			return errUnion.Ok
		}

		a.errorf(file, node.Operand.Span(), "expected error type, got '%s'", operandType.Repr())
		return invalidType
	}

	a.errorf(file, node.Span(), "invalid prefix operator")
	return invalidType
}
