package walk

import (
	"sable/ast"
	"sable/depm"
	"sable/sem"
	"sable/typing"
)

// analyzeVarDecl analyzes a variable declaration, local or global.  When
// unwrapOptional is set (the `if (var x ?= e)` form), the initializer must be
// an optional and the variable binds its payload type.
func (a *Analyzer) analyzeVarDecl(file *depm.SableFile, scope *sem.Scope,
	decl *ast.VarDecl, unwrapOptional bool) *sem.Var {

	var explicitType typing.DataType
	if decl.Type != nil {
		explicitType = a.analyzeTypeExpr(file, scope, decl.Type)
		if typing.IsUnreachable(explicitType) {
			a.errorf(file, decl.Type.Span(), "variable of type 'unreachable' not allowed")
			explicitType = invalidType
		}
	}

	var implicitType typing.DataType
	if decl.Init != nil {
		implicitType = a.analyzeExpression(file, scope, explicitType, decl.Init)

		if typing.IsInvalid(implicitType) {
			// The poison value propagates silently.
		} else if unwrapOptional {
			if opt, ok := implicitType.(*typing.OptionalType); ok {
				implicitType = opt.Elem
			} else {
				a.errorf(file, decl.Init.Span(), "expected optional type, got '%s'", implicitType.Repr())
				implicitType = invalidType
			}
		} else if typing.IsUnreachable(implicitType) {
			a.errorf(file, decl.Span(), "variable initialization is unreachable")
			implicitType = invalidType
		} else if (!decl.Const || decl.Visib == ast.VisibExport) && typing.IsNumLit(implicitType) {
			a.errorf(file, decl.Span(), "unable to infer variable type")
			implicitType = invalidType
		} else if implicitType == metaType && !decl.Const {
			a.errorf(file, decl.Span(), "variable of type 'type' must be constant")
			implicitType = invalidType
		}

		// Global initializers must be compile-time constants; the backend
		// materializes them verbatim.
		if !typing.IsInvalid(implicitType) && scope.Fn == nil {
			if !a.constOf(decl.Init).OK {
				a.errorf(file, decl.Init.Span(), "global variable initializer requires constant expression")
			}
		}
	} else if !decl.Extern {
		a.errorf(file, decl.Span(), "variables must be initialized")
		implicitType = invalidType
	} else if explicitType == nil {
		a.errorf(file, decl.Span(), "extern variable requires a type")
		implicitType = invalidType
	}

	declType := explicitType
	if declType == nil {
		declType = implicitType
	}

	v := a.addLocalVar(file, scope, decl, decl.Name, declType, decl.Const)

	if decl.Visib != ast.VisibPrivate && scope.Fn == nil {
		for _, importer := range file.Importers {
			if _, ok := importer.File.Scope.Vars[decl.Name]; ok {
				a.errorf(importer.File, importer.Node.Span(),
					"import of variable '%s' overrides existing definition", decl.Name)
			} else {
				importer.File.Scope.Vars[decl.Name] = v
			}
		}
	}

	return v
}

// -----------------------------------------------------------------------------

// analyzeReturn analyzes both return forms.  `return e` converts e to the
// function's declared return type and yields `unreachable`.  `%return e`
// requires e of error-union type: the error branch returns the error, the ok
// branch yields the payload as the expression's value.
func (a *Analyzer) analyzeReturn(file *depm.SableFile, scope *sem.Scope, node *ast.ReturnStmt) typing.DataType {
	if scope.Fn == nil {
		a.errorf(file, node.Span(), "return expression outside function definition")
		return invalidType
	}

	returnType := scope.Fn.Type.ReturnType

	switch node.Kind {
	case ast.ReturnUnconditional:
		if node.Value != nil {
			a.analyzeExpression(file, scope, returnType, node.Value)
		} else if !typing.IsVoid(returnType) && !typing.IsInvalid(returnType) {
			a.errorf(file, node.Span(), "expected type '%s', got 'void'", returnType.Repr())
		}

		return unreachableType
	case ast.ReturnError:
		// The operand is checked against the function's return type, which
		// must itself be an error union for the error branch to propagate.
		var expectedErr typing.DataType
		if _, ok := returnType.(*typing.ErrorUnionType); ok {
			expectedErr = returnType
		}

		resolvedType := a.analyzeExpression(file, scope, expectedErr, node.Value)
		if typing.IsInvalid(resolvedType) {
			return resolvedType
		}

		if errUnion, ok := resolvedType.(*typing.ErrorUnionType); ok {
			if expectedErr == nil {
				a.errorf(file, node.Span(),
					"'%%return' in function returning '%s'", returnType.Repr())
				return invalidType
			}

			return errUnion.Ok
		}

		a.errorf(file, node.Value.Span(), "expected error type, got '%s'", resolvedType.Repr())
		return invalidType
	default:
		a.errorf(file, node.Span(), "unsupported return form")
		return invalidType
	}
}

// -----------------------------------------------------------------------------

// analyzeIfThenElse reconciles the two branches of a conditional.  A missing
// else branch acts as `void`, which means an if-without-else can only yield a
// non-void value when the context expects an error union (the zero-error
// value is produced implicitly).
func (a *Analyzer) analyzeIfThenElse(file *depm.SableFile, scope *sem.Scope,
	expected typing.DataType, then *ast.Block, elseNode ast.Node, parent ast.Expr) typing.DataType {

	thenType := a.analyzeExpression(file, scope, expected, then)

	var elseType typing.DataType
	var elseExpr ast.Expr
	if elseNode != nil {
		elseExpr = elseNode.(ast.Expr)
		elseType = a.analyzeExpression(file, scope, expected, elseExpr)
	} else {
		elseType = a.resolveTypeCompat(file, scope, parent, expected, voidType)
	}

	if expected != nil {
		if typing.IsUnreachable(thenType) {
			return elseType
		}

		return thenType
	}

	return a.resolvePeerTypes(file, scope, parent,
		[]ast.Expr{then, elseExpr}, []typing.DataType{thenType, elseType})
}

func (a *Analyzer) analyzeIfExpr(file *depm.SableFile, scope *sem.Scope,
	expected typing.DataType, node *ast.IfExpr) typing.DataType {

	a.analyzeExpression(file, scope, boolType, node.Cond)

	result := a.analyzeIfThenElse(file, scope, expected, node.Then, node.Else, node)

	// A constant condition folds to the taken branch's value; both branches
	// were still type-analyzed above.
	condVal := a.constOf(node.Cond)
	if condVal.OK && !typing.IsInvalid(result) {
		var taken ast.Expr
		if condVal.Bool {
			taken = node.Then
		} else if node.Else != nil {
			taken = node.Else.(ast.Expr)
		}

		if taken != nil {
			if takenVal := a.constOf(taken); takenVal.OK {
				a.re(node).Const = *takenVal
			}
		}
	}

	return result
}

func (a *Analyzer) analyzeIfVarExpr(file *depm.SableFile, scope *sem.Scope,
	expected typing.DataType, node *ast.IfVarExpr) typing.DataType {

	childScope := sem.NewScope(node, scope)
	a.analyzeVarDecl(file, childScope, node.Decl, true)

	return a.analyzeIfThenElse(file, childScope, expected, node.Then, node.Else, node)
}

// -----------------------------------------------------------------------------

func (a *Analyzer) analyzeWhileExpr(file *depm.SableFile, scope *sem.Scope, node *ast.WhileExpr) typing.DataType {
	condType := a.analyzeExpression(file, scope, boolType, node.Cond)

	childScope := sem.NewScope(node, scope)
	childScope.ParentLoop = node

	a.analyzeExpression(file, childScope, voidType, node.Body)

	if typing.IsInvalid(condType) {
		return invalidType
	}

	// A constant-true condition with no break makes the loop's result
	// unreachable.
	condVal := a.constOf(node.Cond)
	if condVal.OK && condVal.Bool && !a.loopBreaks[node] {
		return unreachableType
	}

	return voidType
}

func (a *Analyzer) analyzeForExpr(file *depm.SableFile, scope *sem.Scope, node *ast.ForExpr) typing.DataType {
	arrayType := a.analyzeExpression(file, scope, nil, node.Array)

	var elemType typing.DataType
	switch at := arrayType.(type) {
	case *typing.ArrayType:
		elemType = at.Elem
	case *typing.SliceType:
		elemType = at.Elem
	default:
		if typing.IsInvalid(arrayType) {
			elemType = arrayType
		} else {
			a.errorf(file, node.Array.Span(), "iteration over non array type '%s'", arrayType.Repr())
			elemType = invalidType
		}
	}

	childScope := sem.NewScope(node, scope)
	childScope.ParentLoop = node

	a.addLocalVar(file, childScope, node.Elem, node.Elem.Name, elemType, true)

	if node.Index != nil {
		a.addLocalVar(file, childScope, node.Index, node.Index.Name, typing.Isize, true)
	} else {
		// The implicit index is anonymous: allocated for the backend but
		// invisible to lookup.
		a.addLocalVar(file, childScope, node, "", typing.Isize, true)
	}

	a.analyzeExpression(file, childScope, voidType, node.Body)

	return voidType
}

// -----------------------------------------------------------------------------

func (a *Analyzer) analyzeSwitchExpr(file *depm.SableFile, scope *sem.Scope,
	expected typing.DataType, node *ast.SwitchExpr) typing.DataType {

	operandType := a.analyzeExpression(file, scope, nil, node.Operand)

	if typing.IsInvalid(operandType) {
		return operandType
	}

	if typing.IsUnreachable(operandType) {
		a.errorf(file, node.Operand.Span(), "switch on unreachable expression not allowed")
		return invalidType
	}

	var elseProng *ast.SwitchProng
	coveredTags := make(map[uint32]bool)

	var prongExprs []ast.Expr
	var prongTypes []typing.DataType

	for _, prong := range node.Prongs {
		if len(prong.Items) == 0 {
			if elseProng != nil {
				a.errorf(file, prong.Span(), "multiple else prongs in switch expression")
			} else {
				elseProng = prong
			}
		} else {
			for _, item := range prong.Items {
				if rng, ok := item.(*ast.SwitchRange); ok {
					a.analyzeSwitchRange(file, scope, operandType, rng, coveredTags)
					continue
				}

				a.analyzeExpression(file, scope, operandType, item)

				itemVal := a.constOf(item)
				if !itemVal.OK {
					a.errorf(file, item.Span(), "unable to resolve constant expression")
					continue
				}

				if _, isEnum := operandType.(*typing.EnumType); isEnum {
					if coveredTags[itemVal.Enum.Tag] {
						a.errorf(file, item.Span(), "duplicate switch value")
					}
					coveredTags[itemVal.Enum.Tag] = true
				}
			}
		}

		prongScope := sem.NewScope(node, scope)
		if prong.Capture != nil {
			a.addLocalVar(file, prongScope, prong.Capture, prong.Capture.Name, operandType, true)
		}

		prongType := a.analyzeExpression(file, prongScope, expected, prong.Body)

		prongExprs = append(prongExprs, prong.Body)
		prongTypes = append(prongTypes, prongType)
	}

	// Exhaustiveness: enum switches must cover every variant or carry an
	// else prong; integer switches always need an else prong.
	if elseProng == nil {
		if enumType, ok := operandType.(*typing.EnumType); ok {
			for _, field := range enumType.Fields {
				if !coveredTags[field.Value] {
					a.errorf(file, node.Span(), "switch does not handle '%s.%s'", enumType.Name, field.Name)
				}
			}
		} else {
			a.errorf(file, node.Span(), "switch must handle all possibilities")
		}
	}

	if expected != nil {
		return expected
	}

	if len(prongExprs) == 0 {
		return voidType
	}

	return a.resolvePeerTypes(file, scope, node, prongExprs, prongTypes)
}

// analyzeSwitchRange analyzes a `start ... end` prong item.
func (a *Analyzer) analyzeSwitchRange(file *depm.SableFile, scope *sem.Scope,
	operandType typing.DataType, rng *ast.SwitchRange, coveredTags map[uint32]bool) {

	a.analyzeExpression(file, scope, operandType, rng.Start)
	a.analyzeExpression(file, scope, operandType, rng.End)

	for _, bound := range []ast.Expr{rng.Start, rng.End} {
		if !a.constOf(bound).OK {
			a.errorf(file, bound.Span(), "unable to resolve constant expression")
		}
	}

	a.re(rng).Type = operandType
}
