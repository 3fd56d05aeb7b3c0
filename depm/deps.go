package depm

import (
	"sable/ast"
	"sable/sem"
	"sable/typing"
)

// CollectExprDeps walks a type or initializer subexpression of a top-level
// declaration, collecting every bare identifier that is neither a primitive
// type nor the name of a type already declared in the file scope at
// collection time.
// These names form the declaration's dependency set.
func CollectExprDeps(scope *sem.Scope, node ast.Node, decl *TopLevelDecl) {
	switch v := node.(type) {
	case *ast.NumberLit, *ast.StringLit, *ast.CharLit, *ast.BoolLit,
		*ast.NullLit, *ast.UndefinedLit, *ast.Goto, *ast.Break,
		*ast.Continue, *ast.Label, *ast.ErrorTypeExpr:
		// No dependencies on other top-level declarations.
	case *ast.SymbolExpr:
		if _, ok := typing.PrimitiveByName[v.Name]; ok {
			return
		}

		if scope.FindType(v.Name) != nil {
			return
		}

		decl.Deps[v.Name] = v
	case *ast.BinaryExpr:
		CollectExprDeps(scope, v.Lhs, decl)
		CollectExprDeps(scope, v.Rhs, decl)
	case *ast.UnwrapErrorExpr:
		CollectExprDeps(scope, v.Operand, decl)
		CollectExprDeps(scope, v.Else, decl)
	case *ast.PrefixExpr:
		CollectExprDeps(scope, v.Operand, decl)
	case *ast.ReturnStmt:
		if v.Value != nil {
			CollectExprDeps(scope, v.Value, decl)
		}
	case *ast.CallExpr:
		if !v.IsBuiltin {
			CollectExprDeps(scope, v.Fn, decl)
		}

		for _, arg := range v.Args {
			CollectExprDeps(scope, arg, decl)
		}
	case *ast.IndexExpr:
		CollectExprDeps(scope, v.Array, decl)
		CollectExprDeps(scope, v.Subscript, decl)
	case *ast.SliceRangeExpr:
		CollectExprDeps(scope, v.Array, decl)
		CollectExprDeps(scope, v.Start, decl)
		if v.End != nil {
			CollectExprDeps(scope, v.End, decl)
		}
	case *ast.FieldExpr:
		CollectExprDeps(scope, v.Root, decl)
	case *ast.IfExpr:
		CollectExprDeps(scope, v.Cond, decl)
		CollectExprDeps(scope, v.Then, decl)
		if v.Else != nil {
			CollectExprDeps(scope, v.Else, decl)
		}
	case *ast.IfVarExpr:
		if v.Decl.Type != nil {
			CollectExprDeps(scope, v.Decl.Type, decl)
		}
		if v.Decl.Init != nil {
			CollectExprDeps(scope, v.Decl.Init, decl)
		}
		CollectExprDeps(scope, v.Then, decl)
		if v.Else != nil {
			CollectExprDeps(scope, v.Else, decl)
		}
	case *ast.WhileExpr:
		CollectExprDeps(scope, v.Cond, decl)
		CollectExprDeps(scope, v.Body, decl)
	case *ast.ForExpr:
		CollectExprDeps(scope, v.Array, decl)
		CollectExprDeps(scope, v.Body, decl)
	case *ast.Block:
		for _, stmt := range v.Stmts {
			CollectExprDeps(scope, stmt, decl)
		}
	case *ast.VarDecl:
		if v.Type != nil {
			CollectExprDeps(scope, v.Type, decl)
		}
		if v.Init != nil {
			CollectExprDeps(scope, v.Init, decl)
		}
	case *ast.ContainerInit:
		CollectExprDeps(scope, v.TypeExpr, decl)
		for _, fi := range v.FieldInits {
			CollectExprDeps(scope, fi.Value, decl)
		}
		for _, elem := range v.Elems {
			CollectExprDeps(scope, elem, decl)
		}
	case *ast.ArrayTypeExpr:
		if v.Size != nil {
			CollectExprDeps(scope, v.Size, decl)
		}
		CollectExprDeps(scope, v.Elem, decl)
	case *ast.SwitchExpr:
		CollectExprDeps(scope, v.Operand, decl)
		for _, prong := range v.Prongs {
			for _, item := range prong.Items {
				CollectExprDeps(scope, item, decl)
			}
			CollectExprDeps(scope, prong.Body, decl)
		}
	case *ast.SwitchRange:
		CollectExprDeps(scope, v.Start, decl)
		CollectExprDeps(scope, v.End, decl)
	}
}
