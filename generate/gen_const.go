package generate

import (
	"fmt"

	"sable/ast"
	"sable/sem"
	"sable/typing"

	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/types"
)

// globalInitFor materializes a global variable's initializer from its
// resolved constant value.
func (g *Generator) globalInitFor(gv *sem.Var) constant.Constant {
	declNode, ok := gv.DeclNode.(*ast.VarDecl)
	if !ok || declNode.Init == nil {
		return nil
	}

	re := g.a.Resolved().Get(declNode.Init)
	if !re.Const.OK {
		return nil
	}

	return g.genConst(&re.Const, gv.Type)
}

// genConst converts a resolved constant value to an LLVM constant of the
// given Sable type.  The analyzer has already validated the value against the
// type; mismatches here are internal errors.
func (g *Generator) genConst(val *sem.ConstValue, dt typing.DataType) constant.Constant {
	if val.Undef {
		return constant.NewUndef(g.convType(dt))
	}

	switch v := dt.(type) {
	case typing.PrimType:
		switch v {
		case typing.PrimType(typing.PrimBool):
			return constant.NewBool(val.Bool)
		case typing.PrimType(typing.PrimPureError):
			return constant.NewInt(types.NewInt(uint64(g.sizes.ErrTagBits)), errTagOf(val))
		}
	case *typing.IntType:
		return constant.NewInt(types.NewInt(g.sizes.SizeOfBits(v)), val.Num.Int64())
	case *typing.FloatType:
		if v.Bits == 32 {
			return constant.NewFloat(types.Float, val.Num.AsFloat())
		}

		return constant.NewFloat(types.Double, val.Num.AsFloat())
	case *typing.ArrayType:
		arrayType := g.convType(v).(*types.ArrayType)

		var elems []constant.Constant
		for _, elemVal := range val.Elems {
			elems = append(elems, g.genConst(elemVal, v.Elem))
		}

		return constant.NewArray(arrayType, elems...)
	case *typing.PointerType:
		if val.Ptr == nil {
			return constant.NewNull(g.convType(v).(*types.PointerType))
		}

		return g.internPointee(val, v)
	case *typing.SliceType:
		sliceType := g.convType(v).(*types.StructType)

		elemArray := g.internSliceData(val, v)
		length := val.Fields[1].Num.Int64()

		return constant.NewStruct(sliceType,
			elemArray,
			constant.NewInt(types.NewInt(uint64(g.sizes.PointerBits)), length),
		)
	case *typing.OptionalType:
		optType := g.convType(v).(*types.StructType)

		if val.Maybe == nil {
			return constant.NewStruct(optType,
				constant.NewZeroInitializer(g.convType(v.Elem)),
				constant.NewBool(false),
			)
		}

		return constant.NewStruct(optType,
			g.genConst(val.Maybe, v.Elem),
			constant.NewBool(true),
		)
	case *typing.ErrorUnionType:
		tagType := types.NewInt(uint64(g.sizes.ErrTagBits))

		if g.sizes.SizeOfBits(v.Ok) == 0 {
			return constant.NewInt(tagType, errTagOf(val))
		}

		unionType := g.convType(v).(*types.StructType)

		payload := constant.Constant(constant.NewZeroInitializer(g.convType(v.Ok)))
		if val.Err == nil && val.ErrPayload != nil {
			payload = g.genConst(val.ErrPayload, v.Ok)
		}

		return constant.NewStruct(unionType, constant.NewInt(tagType, errTagOf(val)), payload)
	case *typing.StructType:
		structType := g.convType(v).(*types.StructType)

		var fields []constant.Constant
		for _, field := range v.Fields {
			if field.GenIndex < 0 {
				continue
			}

			fieldVal := val.Fields[field.SrcIndex]
			if fieldVal == nil {
				fields = append(fields, constant.NewZeroInitializer(g.convType(field.Type)))
			} else {
				fields = append(fields, g.genConst(fieldVal, field.Type))
			}
		}

		return constant.NewStruct(structType, fields...)
	case *typing.EnumType:
		tagType := types.NewInt(uint64(v.TagType.Bits))
		tag := constant.NewInt(tagType, int64(val.Enum.Tag))

		if v.GenFieldCount == 0 {
			return tag
		}

		enumType := g.convType(v).(*types.StructType)
		return constant.NewStruct(enumType, tag,
			constant.NewZeroInitializer(enumType.Fields[1]))
	case *typing.FuncType:
		if val.Fn != nil {
			return g.fnVals[val.Fn]
		}
	}

	g.ice("cannot materialize constant of type '%s'", dt.Repr())
	return nil
}

// errTagOf returns the error tag value of an error constant.
func errTagOf(val *sem.ConstValue) int64 {
	if val.Err != nil {
		return int64(val.Err.Value)
	}

	return 0
}

// internPointee creates an anonymous global for a constant pointer's pointee
// vector and returns a pointer to its first element.  Pointee vectors are
// shared between constant expressions, so identical C strings intern to one
// global per use site at most.
func (g *Generator) internPointee(val *sem.ConstValue, ptrType *typing.PointerType) constant.Constant {
	elemType := g.convType(ptrType.Elem)
	arrayType := types.NewArray(uint64(len(val.Ptr.Vals)), elemType)

	var elems []constant.Constant
	for _, elemVal := range val.Ptr.Vals {
		elems = append(elems, g.genConst(elemVal, ptrType.Elem))
	}

	global := g.mod.NewGlobalDef(g.anonGlobalName(), constant.NewArray(arrayType, elems...))
	global.Immutable = ptrType.Const

	zero := constant.NewInt(types.I32, 0)
	return constant.NewGetElementPtr(arrayType, global, zero, zero)
}

// internSliceData creates the backing array global of a constant slice.
func (g *Generator) internSliceData(val *sem.ConstValue, sliceType *typing.SliceType) constant.Constant {
	ptrVal := &sem.ConstValue{OK: true, Ptr: val.Fields[0].Ptr}
	return g.internPointee(ptrVal, &typing.PointerType{Elem: sliceType.Elem, Const: sliceType.Const})
}

// anonGlobalName numbers anonymous globals.
func (g *Generator) anonGlobalName() string {
	g.globalCounter++
	return fmt.Sprintf("__anon%d", g.globalCounter)
}
