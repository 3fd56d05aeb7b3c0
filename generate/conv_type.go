package generate

import (
	"sable/typing"

	"github.com/llir/llvm/ir/types"
)

// convType converts a Sable data type to its LLVM representation.
func (g *Generator) convType(dt typing.DataType) types.Type {
	if cached, ok := g.typeCache[dt]; ok {
		return cached
	}

	conv := g.doConvType(dt)
	g.typeCache[dt] = conv
	return conv
}

func (g *Generator) doConvType(dt typing.DataType) types.Type {
	switch v := dt.(type) {
	case typing.PrimType:
		switch v {
		case typing.PrimType(typing.PrimBool):
			return types.I1
		case typing.PrimType(typing.PrimVoid), typing.PrimType(typing.PrimUnreachable):
			return types.Void
		case typing.PrimType(typing.PrimPureError):
			return types.NewInt(uint64(g.sizes.ErrTagBits))
		}
	case *typing.IntType:
		return types.NewInt(g.sizes.SizeOfBits(v))
	case *typing.FloatType:
		if v.Bits == 32 {
			return types.Float
		}

		return types.Double
	case *typing.PointerType:
		return types.NewPointer(g.convType(v.Elem))
	case *typing.ArrayType:
		return types.NewArray(v.Len, g.convType(v.Elem))
	case *typing.SliceType:
		// Const and non-const slices share the layout of the non-const peer.
		if v.Const {
			return g.convType(v.VarPeer)
		}

		return types.NewStruct(
			types.NewPointer(g.convType(v.Elem)),
			types.NewInt(uint64(g.sizes.PointerBits)),
		)
	case *typing.OptionalType:
		return types.NewStruct(g.convType(v.Elem), types.I1)
	case *typing.ErrorUnionType:
		tagType := types.NewInt(uint64(g.sizes.ErrTagBits))
		if g.sizes.SizeOfBits(v.Ok) == 0 {
			return tagType
		}

		return types.NewStruct(tagType, g.convType(v.Ok))
	case *typing.StructType:
		var fieldTypes []types.Type
		for _, field := range v.Fields {
			if field.GenIndex >= 0 {
				fieldTypes = append(fieldTypes, g.convType(field.Type))
			}
		}

		st := types.NewStruct(fieldTypes...)
		st.Packed = v.Packed
		return st
	case *typing.EnumType:
		tagType := types.NewInt(uint64(v.TagType.Bits))
		if v.GenFieldCount == 0 {
			return tagType
		}

		// The payload union is modelled as a byte blob sized to the largest
		// payload.
		payloadBits := v.SizeInBits - uint64(v.TagType.Bits)
		return types.NewStruct(tagType, types.NewArray(payloadBits/8, types.I8))
	case *typing.FuncType:
		var paramTypes []types.Type
		for _, param := range v.Params {
			if g.sizes.SizeOfBits(param) > 0 {
				paramTypes = append(paramTypes, g.convType(param))
			}
		}

		returnType := types.Type(types.Void)
		if g.sizes.SizeOfBits(v.ReturnType) > 0 {
			returnType = g.convType(v.ReturnType)
		}

		fnType := types.NewFunc(returnType, paramTypes...)
		fnType.Variadic = v.VarArgs
		return types.NewPointer(fnType)
	}

	g.ice("no LLVM representation for type '%s'", dt.Repr())
	return nil
}
