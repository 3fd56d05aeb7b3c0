package generate

import (
	"sable/ast"
	"sable/sem"
	"sable/typing"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"
)

// genFnBody generates the body of one function definition.
func (g *Generator) genFnBody(entry *sem.FnEntry) {
	fn := g.fnVals[entry]

	g.enclosingFn = fn
	g.entry = entry
	g.block = fn.NewBlock("entry")
	g.pushScope()
	defer g.popScope()

	// Parameters are spilled to allocas so they are addressable.
	for i, param := range entry.Proto.Params {
		paramType := entry.Type.Params[i]
		if g.sizes.SizeOfBits(paramType) == 0 {
			continue
		}

		genIndex := 0
		for j := 0; j < i; j++ {
			if g.sizes.SizeOfBits(entry.Type.Params[j]) > 0 {
				genIndex++
			}
		}

		slot := g.block.NewAlloca(g.convType(paramType))
		g.block.NewStore(fn.Params[genIndex], slot)
		g.defineLocal(param.Name, slot, false)
	}

	bodyVal := g.genBlock(entry.DefNode.Body)

	if !g.terminated() {
		returnType := entry.Type.ReturnType
		implicitType := g.a.ImplicitReturnType(entry.DefNode)

		if typing.IsUnreachable(implicitType) {
			g.block.NewUnreachable()
		} else if g.sizes.SizeOfBits(returnType) == 0 {
			g.block.NewRet(nil)
		} else if bodyVal != nil {
			g.block.NewRet(bodyVal)
		} else {
			g.block.NewUnreachable()
		}
	}
}

// genBlock generates a statement block and returns the value of its final
// statement, or nil for void blocks.
func (g *Generator) genBlock(block *ast.Block) value.Value {
	g.pushScope()
	defer g.popScope()

	var lastVal value.Value
	for _, stmt := range block.Stmts {
		if g.terminated() {
			break
		}

		lastVal = g.genStmt(stmt)
	}

	return lastVal
}

// genStmt generates one statement.
func (g *Generator) genStmt(stmt ast.Node) value.Value {
	switch v := stmt.(type) {
	case *ast.VarDecl:
		g.genLocalVarDecl(v)
		return nil
	case *ast.Label, *ast.Goto:
		g.ice("goto lowering not supported yet")
		return nil
	case ast.Expr:
		return g.genExpr(v)
	}

	g.ice("unexpected statement %T", stmt)
	return nil
}

// genLocalVarDecl generates a local variable declaration.
func (g *Generator) genLocalVarDecl(decl *ast.VarDecl) {
	var declType typing.DataType
	if decl.Init != nil {
		declType = g.a.Resolved().Get(decl.Init).FinalType()
	}
	if decl.Type != nil {
		re := g.a.Resolved().Get(decl.Type)
		if re.Const.OK {
			declType = re.Const.Type
		}
	}

	if declType == nil || g.sizes.SizeOfBits(declType) == 0 {
		return
	}

	slot := g.block.NewAlloca(g.convType(declType))
	g.defineLocal(decl.Name, slot, !decl.Const)

	if decl.Init != nil {
		initVal := g.genExpr(decl.Init)
		if initVal != nil && !g.terminated() {
			g.block.NewStore(initVal, slot)
		}
	}
}

// -----------------------------------------------------------------------------

// genExpr generates an expression and applies any implicit conversion the
// analyzer recorded for it.
func (g *Generator) genExpr(e ast.Expr) value.Value {
	re := g.a.Resolved().Get(e)

	// Constants the analyzer computed are materialized verbatim.
	if re.Const.OK && !re.Const.Undef && g.isMaterializable(re.FinalType()) {
		return g.genConst(&re.Const, re.FinalType())
	}

	raw := g.genExprRaw(e, re)

	if re.ConvType != nil && raw != nil {
		return g.genCastOp(re.Cast, raw, re.Type, re.ConvType)
	}

	return raw
}

// isMaterializable returns whether a constant of the type can be emitted
// directly.
func (g *Generator) isMaterializable(dt typing.DataType) bool {
	switch dt.(type) {
	case *typing.IntType, *typing.FloatType, *typing.ArrayType, *typing.SliceType,
		*typing.PointerType, *typing.OptionalType, *typing.ErrorUnionType,
		*typing.StructType, *typing.EnumType:
		return true
	}

	return dt == typing.PrimType(typing.PrimBool) || dt == typing.PrimType(typing.PrimPureError)
}

// genExprRaw generates an expression's unconverted value.
func (g *Generator) genExprRaw(e ast.Expr, re *sem.ResolvedExpr) value.Value {
	switch v := e.(type) {
	case *ast.Block:
		return g.genBlock(v)
	case *ast.SymbolExpr:
		ident, ok := g.lookup(v.Name)
		if !ok {
			if fn, isFn := g.a.Files()[0].FnTable[v.Name]; isFn {
				return g.fnVals[fn]
			}

			g.ice("undefined identifier '%s' survived analysis", v.Name)
		}

		return g.block.NewLoad(g.convType(re.Type), ident.Val)
	case *ast.BinaryExpr:
		return g.genBinaryExpr(v, re)
	case *ast.PrefixExpr:
		return g.genPrefixExpr(v, re)
	case *ast.CallExpr:
		return g.genCallExpr(v, re)
	case *ast.FieldExpr:
		return g.genFieldExpr(v, re)
	case *ast.IndexExpr:
		addr := g.genLvalueAddr(v)
		return g.block.NewLoad(g.convType(re.Type), addr)
	case *ast.ReturnStmt:
		g.genReturn(v)
		return nil
	case *ast.IfExpr:
		return g.genIfExpr(v, re)
	case *ast.WhileExpr:
		g.genWhileExpr(v)
		return nil
	case *ast.Break, *ast.Continue:
		g.genLoopJump(e)
		return nil
	case *ast.ContainerInit:
		if typing.IsVoid(re.Type) {
			return nil
		}
	case *ast.UndefinedLit:
		return nil
	}

	g.ice("lowering for %T not supported yet", e)
	return nil
}

// -----------------------------------------------------------------------------

// genCastOp applies a classified conversion to a generated value.
func (g *Generator) genCastOp(op sem.CastOp, val value.Value, from, to typing.DataType) value.Value {
	switch op {
	case sem.CastNoCast, sem.CastNoop:
		return val
	case sem.CastIntWidenOrShorten:
		fromBits := g.sizes.SizeOfBits(from)
		toBits := g.sizes.SizeOfBits(to)
		toType := g.convType(to)

		if toBits < fromBits {
			return g.block.NewTrunc(val, toType)
		} else if toBits > fromBits {
			if fromInt, ok := from.(*typing.IntType); ok && fromInt.Signed {
				return g.block.NewSExt(val, toType)
			}

			return g.block.NewZExt(val, toType)
		}

		return val
	case sem.CastPtrToInt:
		return g.block.NewPtrToInt(val, g.convType(to))
	case sem.CastIntToPtr:
		return g.block.NewIntToPtr(val, g.convType(to))
	case sem.CastPointerReinterpret:
		return g.block.NewBitCast(val, g.convType(to))
	case sem.CastMaybeWrap:
		optType := g.convType(to).(*types.StructType)
		agg := g.block.NewInsertValue(constant.NewUndef(optType), val, 0)
		return g.block.NewInsertValue(agg, constant.NewBool(true), 1)
	case sem.CastErrorWrap:
		tagType := types.NewInt(uint64(g.sizes.ErrTagBits))

		if !g.sizes.HandleIsPtr(to) {
			return constant.NewInt(tagType, 0)
		}

		unionType := g.convType(to).(*types.StructType)
		agg := g.block.NewInsertValue(constant.NewUndef(unionType), constant.NewInt(tagType, 0), 0)
		return g.block.NewInsertValue(agg, val, 1)
	case sem.CastPureErrorWrap:
		if !g.sizes.HandleIsPtr(to) {
			return val
		}

		unionType := g.convType(to).(*types.StructType)
		return g.block.NewInsertValue(constant.NewUndef(unionType), val, 0)
	case sem.CastErrToInt:
		return g.genCastOp(sem.CastIntWidenOrShorten, val,
			typing.PrimType(typing.PrimPureError), to)
	case sem.CastToSlice:
		g.ice("runtime array-to-slice decay not supported yet")
	}

	return val
}

// -----------------------------------------------------------------------------

func (g *Generator) genBinaryExpr(e *ast.BinaryExpr, re *sem.ResolvedExpr) value.Value {
	if e.Op.IsAssign() {
		g.genAssign(e)
		return nil
	}

	lhs := g.genExpr(e.Lhs)
	rhs := g.genExpr(e.Rhs)

	operandType := g.a.Resolved().Get(e.Lhs).FinalType()

	isFloat := false
	isSigned := false
	switch ot := operandType.(type) {
	case *typing.FloatType:
		isFloat = true
	case *typing.IntType:
		isSigned = ot.Signed
	}

	switch e.Op {
	case ast.BinOpAdd:
		if isFloat {
			return g.block.NewFAdd(lhs, rhs)
		}
		return g.block.NewAdd(lhs, rhs)
	case ast.BinOpSub:
		if isFloat {
			return g.block.NewFSub(lhs, rhs)
		}
		return g.block.NewSub(lhs, rhs)
	case ast.BinOpMul:
		if isFloat {
			return g.block.NewFMul(lhs, rhs)
		}
		return g.block.NewMul(lhs, rhs)
	case ast.BinOpDiv:
		if isFloat {
			return g.block.NewFDiv(lhs, rhs)
		}
		if isSigned {
			return g.block.NewSDiv(lhs, rhs)
		}
		return g.block.NewUDiv(lhs, rhs)
	case ast.BinOpMod:
		if isFloat {
			return g.block.NewFRem(lhs, rhs)
		}
		if isSigned {
			return g.block.NewSRem(lhs, rhs)
		}
		return g.block.NewURem(lhs, rhs)
	case ast.BinOpBitAnd, ast.BinOpBoolAnd:
		return g.block.NewAnd(lhs, rhs)
	case ast.BinOpBitOr, ast.BinOpBoolOr:
		return g.block.NewOr(lhs, rhs)
	case ast.BinOpBitXor:
		return g.block.NewXor(lhs, rhs)
	case ast.BinOpShl:
		return g.block.NewShl(lhs, rhs)
	case ast.BinOpShr:
		if isSigned {
			return g.block.NewAShr(lhs, rhs)
		}
		return g.block.NewLShr(lhs, rhs)
	case ast.BinOpCmpEq, ast.BinOpCmpNotEq, ast.BinOpCmpLT, ast.BinOpCmpGT,
		ast.BinOpCmpLTE, ast.BinOpCmpGTE:
		if isFloat {
			return g.block.NewFCmp(floatPreds[e.Op], lhs, rhs)
		}
		if isSigned {
			return g.block.NewICmp(signedPreds[e.Op], lhs, rhs)
		}
		return g.block.NewICmp(unsignedPreds[e.Op], lhs, rhs)
	}

	g.ice("lowering for binary operator %d not supported yet", e.Op)
	return nil
}

var signedPreds = map[ast.BinOp]enum.IPred{
	ast.BinOpCmpEq:    enum.IPredEQ,
	ast.BinOpCmpNotEq: enum.IPredNE,
	ast.BinOpCmpLT:    enum.IPredSLT,
	ast.BinOpCmpGT:    enum.IPredSGT,
	ast.BinOpCmpLTE:   enum.IPredSLE,
	ast.BinOpCmpGTE:   enum.IPredSGE,
}

var unsignedPreds = map[ast.BinOp]enum.IPred{
	ast.BinOpCmpEq:    enum.IPredEQ,
	ast.BinOpCmpNotEq: enum.IPredNE,
	ast.BinOpCmpLT:    enum.IPredULT,
	ast.BinOpCmpGT:    enum.IPredUGT,
	ast.BinOpCmpLTE:   enum.IPredULE,
	ast.BinOpCmpGTE:   enum.IPredUGE,
}

var floatPreds = map[ast.BinOp]enum.FPred{
	ast.BinOpCmpEq:    enum.FPredOEQ,
	ast.BinOpCmpNotEq: enum.FPredONE,
	ast.BinOpCmpLT:    enum.FPredOLT,
	ast.BinOpCmpGT:    enum.FPredOGT,
	ast.BinOpCmpLTE:   enum.FPredOLE,
	ast.BinOpCmpGTE:   enum.FPredOGE,
}

// genAssign generates simple and compound assignments.
func (g *Generator) genAssign(e *ast.BinaryExpr) {
	addr := g.genLvalueAddr(e.Lhs)
	rhs := g.genExpr(e.Rhs)

	if e.Op == ast.BinOpAssign {
		g.block.NewStore(rhs, addr)
		return
	}

	lhsType := g.a.Resolved().Get(e.Lhs).FinalType()
	current := g.block.NewLoad(g.convType(lhsType), addr)

	updated := g.genCompound(e.Op, current, rhs, lhsType)
	g.block.NewStore(updated, addr)
}

// compoundBaseOp maps a compound assignment operator to its base operator.
func compoundBaseOp(op ast.BinOp) ast.BinOp {
	switch op {
	case ast.BinOpAssignTimes:
		return ast.BinOpMul
	case ast.BinOpAssignDiv:
		return ast.BinOpDiv
	case ast.BinOpAssignMod:
		return ast.BinOpMod
	case ast.BinOpAssignPlus:
		return ast.BinOpAdd
	case ast.BinOpAssignMinus:
		return ast.BinOpSub
	case ast.BinOpAssignShl:
		return ast.BinOpShl
	case ast.BinOpAssignShr:
		return ast.BinOpShr
	case ast.BinOpAssignBitAnd:
		return ast.BinOpBitAnd
	case ast.BinOpAssignBitXor:
		return ast.BinOpBitXor
	case ast.BinOpAssignBitOr:
		return ast.BinOpBitOr
	case ast.BinOpAssignBoolAnd:
		return ast.BinOpBoolAnd
	default:
		return ast.BinOpBoolOr
	}
}

// genCompound applies the arithmetic step of a compound assignment.
func (g *Generator) genCompound(op ast.BinOp, current, rhs value.Value, dt typing.DataType) value.Value {
	isFloat := false
	isSigned := false
	switch ot := dt.(type) {
	case *typing.FloatType:
		isFloat = true
	case *typing.IntType:
		isSigned = ot.Signed
	}

	switch compoundBaseOp(op) {
	case ast.BinOpMul:
		if isFloat {
			return g.block.NewFMul(current, rhs)
		}
		return g.block.NewMul(current, rhs)
	case ast.BinOpDiv:
		if isFloat {
			return g.block.NewFDiv(current, rhs)
		}
		if isSigned {
			return g.block.NewSDiv(current, rhs)
		}
		return g.block.NewUDiv(current, rhs)
	case ast.BinOpMod:
		if isSigned {
			return g.block.NewSRem(current, rhs)
		}
		return g.block.NewURem(current, rhs)
	case ast.BinOpAdd:
		if isFloat {
			return g.block.NewFAdd(current, rhs)
		}
		return g.block.NewAdd(current, rhs)
	case ast.BinOpSub:
		if isFloat {
			return g.block.NewFSub(current, rhs)
		}
		return g.block.NewSub(current, rhs)
	case ast.BinOpShl:
		return g.block.NewShl(current, rhs)
	case ast.BinOpShr:
		if isSigned {
			return g.block.NewAShr(current, rhs)
		}
		return g.block.NewLShr(current, rhs)
	case ast.BinOpBitAnd, ast.BinOpBoolAnd:
		return g.block.NewAnd(current, rhs)
	case ast.BinOpBitXor:
		return g.block.NewXor(current, rhs)
	default:
		return g.block.NewOr(current, rhs)
	}
}

// -----------------------------------------------------------------------------

func (g *Generator) genPrefixExpr(e *ast.PrefixExpr, re *sem.ResolvedExpr) value.Value {
	switch e.Op {
	case ast.PrefixOpBoolNot:
		operand := g.genExpr(e.Operand)
		return g.block.NewXor(operand, constant.NewBool(true))
	case ast.PrefixOpBitNot:
		operand := g.genExpr(e.Operand)
		bits := g.sizes.SizeOfBits(re.Type)
		return g.block.NewXor(operand, constant.NewInt(types.NewInt(bits), -1))
	case ast.PrefixOpNeg:
		operand := g.genExpr(e.Operand)
		if _, ok := re.Type.(*typing.FloatType); ok {
			return g.block.NewFNeg(operand)
		}

		zero := constant.NewInt(g.convType(re.Type).(*types.IntType), 0)
		return g.block.NewSub(zero, operand)
	case ast.PrefixOpAddrOf, ast.PrefixOpConstAddrOf:
		return g.genLvalueAddr(e.Operand)
	case ast.PrefixOpDeref:
		ptr := g.genExpr(e.Operand)
		return g.block.NewLoad(g.convType(re.Type), ptr)
	}

	g.ice("lowering for prefix operator %d not supported yet", e.Op)
	return nil
}

// -----------------------------------------------------------------------------

func (g *Generator) genCallExpr(e *ast.CallExpr, re *sem.ResolvedExpr) value.Value {
	// Explicit casts reuse the classified conversion machinery.
	if re.Cast != sem.CastNoCast {
		operand := g.genExpr(e.Args[0])
		operandType := g.a.Resolved().Get(e.Args[0]).FinalType()
		return g.genCastOp(re.Cast, operand, operandType, re.Type)
	}

	fnVal := g.a.Resolved().Get(e.Fn)
	var callee value.Value
	var argOffset []value.Value

	if fnVal.Const.OK && fnVal.Const.Fn != nil {
		callee = g.fnVals[fnVal.Const.Fn]

		// Method calls pass the receiver as the first argument.
		if fieldRef, ok := e.Fn.(*ast.FieldExpr); ok && fnVal.Const.Fn.MemberOf != nil {
			argOffset = append(argOffset, g.genExpr(fieldRef.Root))
		}
	} else {
		callee = g.genExpr(e.Fn)
	}

	args := argOffset
	for _, arg := range e.Args {
		argType := g.a.Resolved().Get(arg).FinalType()
		if g.sizes.SizeOfBits(argType) == 0 {
			continue
		}

		args = append(args, g.genExpr(arg))
	}

	return g.block.NewCall(callee, args...)
}

// -----------------------------------------------------------------------------

func (g *Generator) genFieldExpr(e *ast.FieldExpr, re *sem.ResolvedExpr) value.Value {
	rootRe := g.a.Resolved().Get(e.Root)
	rootType := rootRe.FinalType()

	// Slice pseudo-fields.
	if sl, ok := rootType.(*typing.SliceType); ok {
		_ = sl
		root := g.genExpr(e.Root)
		if e.Field == "ptr" {
			return g.block.NewExtractValue(root, 0)
		}

		return g.block.NewExtractValue(root, 1)
	}

	bareType := rootType
	if ptr, ok := rootType.(*typing.PointerType); ok {
		bareType = ptr.Elem
	}

	if st, ok := bareType.(*typing.StructType); ok {
		field := st.FieldByName(e.Field)
		if field == nil || field.GenIndex < 0 {
			g.ice("field '%s' has no generated index", e.Field)
		}

		if _, isPtr := rootType.(*typing.PointerType); isPtr {
			ptr := g.genExpr(e.Root)
			addr := g.block.NewGetElementPtr(g.convType(bareType), ptr,
				constant.NewInt(types.I32, 0),
				constant.NewInt(types.I32, int64(field.GenIndex)))
			return g.block.NewLoad(g.convType(field.Type), addr)
		}

		root := g.genExpr(e.Root)
		return g.block.NewExtractValue(root, uint64(field.GenIndex))
	}

	g.ice("field lowering for type '%s' not supported yet", rootType.Repr())
	return nil
}

// -----------------------------------------------------------------------------

// genLvalueAddr generates the address of an assignable expression.
func (g *Generator) genLvalueAddr(e ast.Expr) value.Value {
	switch v := e.(type) {
	case *ast.SymbolExpr:
		ident, ok := g.lookup(v.Name)
		if !ok {
			g.ice("undefined lvalue '%s' survived analysis", v.Name)
		}

		return ident.Val
	case *ast.IndexExpr:
		arrayRe := g.a.Resolved().Get(v.Array)
		subscript := g.genExpr(v.Subscript)

		switch at := arrayRe.FinalType().(type) {
		case *typing.ArrayType:
			base := g.genLvalueAddr(v.Array)
			return g.block.NewGetElementPtr(g.convType(at), base,
				constant.NewInt(types.I64, 0), subscript)
		case *typing.PointerType:
			base := g.genExpr(v.Array)
			return g.block.NewGetElementPtr(g.convType(at.Elem), base, subscript)
		case *typing.SliceType:
			slice := g.genExpr(v.Array)
			dataPtr := g.block.NewExtractValue(slice, 0)
			return g.block.NewGetElementPtr(g.convType(at.Elem), dataPtr, subscript)
		}

		g.ice("index lowering for type '%s' not supported yet", arrayRe.FinalType().Repr())
	case *ast.FieldExpr:
		rootType := g.a.Resolved().Get(v.Root).FinalType()

		bareType := rootType
		isPtr := false
		if ptr, ok := rootType.(*typing.PointerType); ok {
			bareType = ptr.Elem
			isPtr = true
		}

		if st, ok := bareType.(*typing.StructType); ok {
			field := st.FieldByName(v.Field)

			var base value.Value
			if isPtr {
				base = g.genExpr(v.Root)
			} else {
				base = g.genLvalueAddr(v.Root)
			}

			return g.block.NewGetElementPtr(g.convType(bareType), base,
				constant.NewInt(types.I32, 0),
				constant.NewInt(types.I32, int64(field.GenIndex)))
		}

		g.ice("field address for type '%s' not supported yet", rootType.Repr())
	case *ast.PrefixExpr:
		if v.Op == ast.PrefixOpDeref {
			return g.genExpr(v.Operand)
		}
	}

	g.ice("expression is not an lvalue")
	return nil
}

// -----------------------------------------------------------------------------

// genReturn generates both return forms.
func (g *Generator) genReturn(e *ast.ReturnStmt) {
	switch e.Kind {
	case ast.ReturnUnconditional:
		if e.Value == nil || g.sizes.SizeOfBits(g.entry.Type.ReturnType) == 0 {
			if e.Value != nil {
				g.genExpr(e.Value)
			}

			g.block.NewRet(nil)
			return
		}

		g.block.NewRet(g.genExpr(e.Value))
	case ast.ReturnError:
		g.genErrorReturn(e)
	default:
		g.ice("unsupported return form")
	}
}

// genErrorReturn lowers `%return e`: the error branch returns the error tag,
// the ok branch continues with the payload.
func (g *Generator) genErrorReturn(e *ast.ReturnStmt) {
	operand := g.genExpr(e.Value)
	operandType := g.a.Resolved().Get(e.Value).FinalType()

	errUnion, ok := operandType.(*typing.ErrorUnionType)
	if !ok {
		g.ice("%%return operand is not an error union")
	}

	tagType := types.NewInt(uint64(g.sizes.ErrTagBits))
	hasPayload := g.sizes.SizeOfBits(errUnion.Ok) > 0

	var tag value.Value
	if hasPayload {
		tag = g.block.NewExtractValue(operand, 0)
	} else {
		tag = operand
	}

	isErr := g.block.NewICmp(enum.IPredNE, tag, constant.NewInt(tagType, 0))

	errBlock := g.appendBlock()
	okBlock := g.appendBlock()
	g.block.NewCondBr(isErr, errBlock, okBlock)

	// The error branch re-wraps the tag in the function's return type.
	g.block = errBlock
	returnType := g.entry.Type.ReturnType
	if retUnion, isUnion := returnType.(*typing.ErrorUnionType); isUnion &&
		g.sizes.SizeOfBits(retUnion.Ok) > 0 {

		unionType := g.convType(returnType).(*types.StructType)
		agg := g.block.NewInsertValue(constant.NewUndef(unionType), tag, 0)
		g.block.NewRet(agg)
	} else {
		g.block.NewRet(tag)
	}

	g.block = okBlock
}

// -----------------------------------------------------------------------------

// genIfExpr generates a conditional.  Value-producing conditionals spill
// their result through a temporary.
func (g *Generator) genIfExpr(e *ast.IfExpr, re *sem.ResolvedExpr) value.Value {
	cond := g.genExpr(e.Cond)

	thenBlock := g.appendBlock()
	elseBlock := g.appendBlock()
	endBlock := g.appendBlock()

	producesValue := g.sizes.SizeOfBits(re.Type) > 0 && !typing.IsUnreachable(re.Type)

	var resultSlot *ir.InstAlloca
	if producesValue {
		resultSlot = g.block.NewAlloca(g.convType(re.Type))
	}

	g.block.NewCondBr(cond, thenBlock, elseBlock)

	g.block = thenBlock
	thenVal := g.genBlock(e.Then)
	if !g.terminated() {
		if producesValue && thenVal != nil {
			g.block.NewStore(thenVal, resultSlot)
		}
		g.block.NewBr(endBlock)
	}

	g.block = elseBlock
	if e.Else != nil {
		elseVal := g.genExpr(e.Else.(ast.Expr))
		if !g.terminated() {
			if producesValue && elseVal != nil {
				g.block.NewStore(elseVal, resultSlot)
			}
			g.block.NewBr(endBlock)
		}
	} else if !g.terminated() {
		g.block.NewBr(endBlock)
	}

	g.block = endBlock

	if producesValue {
		return g.block.NewLoad(g.convType(re.Type), resultSlot)
	}

	return nil
}

// loopContext carries the branch targets of the enclosing loop.
type loopContext struct {
	condBlock *ir.Block
	endBlock  *ir.Block
}

// genWhileExpr generates a while loop.
func (g *Generator) genWhileExpr(e *ast.WhileExpr) {
	condBlock := g.appendBlock()
	bodyBlock := g.appendBlock()
	endBlock := g.appendBlock()

	g.block.NewBr(condBlock)

	g.block = condBlock
	cond := g.genExpr(e.Cond)
	g.block.NewCondBr(cond, bodyBlock, endBlock)

	g.loopStack = append(g.loopStack, loopContext{condBlock: condBlock, endBlock: endBlock})

	g.block = bodyBlock
	g.genBlock(e.Body)
	if !g.terminated() {
		g.block.NewBr(condBlock)
	}

	g.loopStack = g.loopStack[:len(g.loopStack)-1]

	g.block = endBlock
}

// genLoopJump generates break and continue branches.
func (g *Generator) genLoopJump(e ast.Expr) {
	if len(g.loopStack) == 0 {
		g.ice("loop jump outside loop survived analysis")
	}

	ctx := g.loopStack[len(g.loopStack)-1]
	if _, isBreak := e.(*ast.Break); isBreak {
		g.block.NewBr(ctx.endBlock)
	} else {
		g.block.NewBr(ctx.condBlock)
	}
}
