package walk

import (
	"math"

	"sable/ast"
	"sable/depm"
	"sable/sem"
	"sable/typing"
)

// builtinArity maps each builtin intrinsic to its fixed parameter count.
var builtinArity = map[string]int{
	"memcpy":            3,
	"memset":            3,
	"sizeof":            1,
	"max_value":         1,
	"min_value":         1,
	"member_count":      1,
	"typeof":            1,
	"add_with_overflow": 4,
	"sub_with_overflow": 4,
	"mul_with_overflow": 4,
	"c_include":         1,
	"c_define":          2,
	"c_undef":           1,
}

// analyzeBuiltinCall analyzes a `@name(...)` intrinsic call.
func (a *Analyzer) analyzeBuiltinCall(file *depm.SableFile, scope *sem.Scope,
	expected typing.DataType, node *ast.CallExpr) typing.DataType {

	name := node.Fn.(*ast.SymbolExpr).Name

	arity, ok := builtinArity[name]
	if !ok {
		a.errorf(file, node.Span(), "invalid builtin function: '%s'", name)
		return invalidType
	}

	if len(node.Args) != arity {
		a.errorf(file, node.Span(), "expected %d arguments, got %d", arity, len(node.Args))
		return invalidType
	}

	switch name {
	case "sizeof":
		typeEntry := a.analyzeTypeExpr(file, scope, node.Args[0])
		if typing.IsInvalid(typeEntry) {
			return invalidType
		}

		if typing.IsUnreachable(typeEntry) {
			a.errorf(file, node.Args[0].Span(), "no size available for type '%s'", typeEntry.Repr())
			return invalidType
		}

		return a.resolveConstValAsIntNum(node, sem.IntNum(a.sizes.SizeOfBits(typeEntry)/8))
	case "max_value":
		return a.analyzeMinMaxValue(file, scope, node, true)
	case "min_value":
		return a.analyzeMinMaxValue(file, scope, node, false)
	case "member_count":
		typeEntry := a.analyzeTypeExpr(file, scope, node.Args[0])
		if typing.IsInvalid(typeEntry) {
			return typeEntry
		}

		if enumType, ok := typeEntry.(*typing.EnumType); ok {
			return a.resolveConstValAsIntNum(node, sem.IntNum(uint64(len(enumType.Fields))))
		}

		a.errorf(file, node.Span(), "no value count available for type '%s'", typeEntry.Repr())
		return invalidType
	case "typeof":
		exprType := a.analyzeExpression(file, scope, nil, node.Args[0])

		switch exprType {
		case invalidType:
			return exprType
		case typing.PrimType(typing.PrimNumLitInt), typing.PrimType(typing.PrimNumLitFloat),
			typing.PrimType(typing.PrimUndefLit):
			a.errorf(file, node.Args[0].Span(), "type '%s' not eligible for @typeof", exprType.Repr())
			return invalidType
		}

		return a.resolveConstValAsType(node, exprType)
	case "memcpy":
		return a.analyzeMemcpy(file, scope, node)
	case "memset":
		return a.analyzeMemset(file, scope, node)
	case "add_with_overflow", "sub_with_overflow", "mul_with_overflow":
		return a.analyzeOverflowOp(file, scope, node)
	case "c_include", "c_define", "c_undef":
		return a.analyzeCDirective(file, scope, node, name)
	}

	return invalidType
}

// analyzeMinMaxValue analyzes @min_value / @max_value over a type argument.
func (a *Analyzer) analyzeMinMaxValue(file *depm.SableFile, scope *sem.Scope,
	node *ast.CallExpr, isMax bool) typing.DataType {

	errFormat := "no min value available for type '%s'"
	if isMax {
		errFormat = "no max value available for type '%s'"
	}

	typeEntry := a.analyzeTypeExpr(file, scope, node.Args[0])

	switch te := typeEntry.(type) {
	case *typing.IntType:
		bits := int(a.sizes.SizeOfBits(te))

		var num sem.BigNum
		switch {
		case isMax && te.Signed:
			if bits == 64 {
				num = sem.SignedNum(math.MaxInt64)
			} else {
				num = sem.SignedNum(int64(1)<<(bits-1) - 1)
			}
		case isMax:
			if bits == 64 {
				num = sem.IntNum(math.MaxUint64)
			} else {
				num = sem.IntNum(uint64(1)<<bits - 1)
			}
		case te.Signed:
			if bits == 64 {
				num = sem.SignedNum(math.MinInt64)
			} else {
				num = sem.SignedNum(-(int64(1) << (bits - 1)))
			}
		default:
			num = sem.IntNum(0)
		}

		a.re(node).Const = sem.ConstValue{OK: true, Num: num}
		return te
	case *typing.FloatType:
		// TODO: float min/max once float limits fold through BigNum.
		a.errorf(file, node.Span(), errFormat, typeEntry.Repr())
		return invalidType
	case typing.PrimType:
		if te == typing.PrimType(typing.PrimBool) {
			return a.resolveConstValAsBool(node, isMax)
		}

		if typing.IsInvalid(te) {
			return invalidType
		}
	}

	a.errorf(file, node.Span(), errFormat, typeEntry.Repr())
	return invalidType
}

func (a *Analyzer) analyzeMemcpy(file *depm.SableFile, scope *sem.Scope, node *ast.CallExpr) typing.DataType {
	destType := a.analyzeExpression(file, scope, nil, node.Args[0])
	srcType := a.analyzeExpression(file, scope, nil, node.Args[1])
	a.analyzeExpression(file, scope, typing.Usize, node.Args[2])

	destPtr, destOk := destType.(*typing.PointerType)
	if !destOk && !typing.IsInvalid(destType) {
		a.errorf(file, node.Args[0].Span(), "expected pointer argument, got '%s'", destType.Repr())
	}

	srcPtr, srcOk := srcType.(*typing.PointerType)
	if !srcOk && !typing.IsInvalid(srcType) {
		a.errorf(file, node.Args[1].Span(), "expected pointer argument, got '%s'", srcType.Repr())
	}

	if destOk && srcOk {
		destAlign := a.sizes.AlignOfBits(destPtr.Elem)
		srcAlign := a.sizes.AlignOfBits(srcPtr.Elem)
		if destAlign != srcAlign {
			a.errorf(file, node.Args[0].Span(),
				"misaligned memcpy, '%s' has alignment %d, '%s' has alignment %d",
				destType.Repr(), destAlign/8, srcType.Repr(), srcAlign/8)
		}
	}

	return voidType
}

func (a *Analyzer) analyzeMemset(file *depm.SableFile, scope *sem.Scope, node *ast.CallExpr) typing.DataType {
	destType := a.analyzeExpression(file, scope, nil, node.Args[0])
	a.analyzeExpression(file, scope, typing.U8, node.Args[1])
	a.analyzeExpression(file, scope, typing.Usize, node.Args[2])

	if _, ok := destType.(*typing.PointerType); !ok && !typing.IsInvalid(destType) {
		a.errorf(file, node.Args[0].Span(), "expected pointer argument, got '%s'", destType.Repr())
	}

	return voidType
}

// analyzeOverflowOp analyzes the overflow intrinsics: the operands are of the
// given integer type, the result is written through the pointer argument, and
// the intrinsic yields whether the operation overflowed.
func (a *Analyzer) analyzeOverflowOp(file *depm.SableFile, scope *sem.Scope, node *ast.CallExpr) typing.DataType {
	intType := a.analyzeTypeExpr(file, scope, node.Args[0])
	if typing.IsInvalid(intType) {
		return boolType
	}

	if _, ok := intType.(*typing.IntType); !ok {
		a.errorf(file, node.Args[0].Span(), "expected integer type, got '%s'", intType.Repr())
		return boolType
	}

	a.analyzeExpression(file, scope, intType, node.Args[1])
	a.analyzeExpression(file, scope, intType, node.Args[2])
	a.analyzeExpression(file, scope, a.interner.PointerTo(intType, false), node.Args[3])

	// TODO: constant folding of overflow intrinsics.

	return boolType
}

// analyzeCDirective analyzes @c_include, @c_define, and @c_undef, which are
// valid only inside a c_import block: they append preprocessor directives to
// the block's accumulator buffer.
func (a *Analyzer) analyzeCDirective(file *depm.SableFile, scope *sem.Scope,
	node *ast.CallExpr, name string) typing.DataType {

	if scope.CImportBuf == nil {
		a.errorf(file, node.Span(), "@%s valid only in c_import blocks", name)
		return invalidType
	}

	strType := a.interner.SliceOf(typing.U8, true)

	resolvedType := a.analyzeExpression(file, scope, strType, node.Args[0])
	if typing.IsInvalid(resolvedType) {
		return resolvedType
	}

	nameVal := a.constOf(node.Args[0])
	if !nameVal.OK {
		a.errorf(file, node.Args[0].Span(), "@%s requires constant expression", name)
		return voidType
	}

	nameStr := string(constSliceBytes(nameVal))

	switch name {
	case "c_include":
		scope.CImportBuf.Include(nameStr)
	case "c_undef":
		scope.CImportBuf.Undef(nameStr)
	case "c_define":
		valueNode := node.Args[1]
		valueType := a.analyzeExpression(file, scope, nil, valueNode)
		if typing.IsInvalid(valueType) {
			return valueType
		}

		valueVal := a.constOf(valueNode)
		if !valueVal.OK {
			a.errorf(file, valueNode.Span(), "@c_define requires constant expression")
			return voidType
		}

		var valueStr string
		switch {
		case valueVal.Num.Int != nil || valueVal.Num.Kind == sem.BigNumFloat:
			valueStr = valueVal.Num.String()
		case len(valueVal.Fields) == 2:
			valueStr = string(constSliceBytes(valueVal))
		case valueVal.Elems != nil:
			// A bare string literal folds to a byte array.
			bytes := make([]byte, len(valueVal.Elems))
			for i, ch := range valueVal.Elems {
				bytes[i] = byte(ch.Num.Uint64())
			}
			valueStr = string(bytes)
		}

		scope.CImportBuf.Define(nameStr, valueStr)
	}

	return voidType
}
