package walk

import (
	"sable/typing"
)

// resolveStructType resolves a struct declaration's body: field types, field
// indices, and layout.  By-value recursion is detected via the
// EmbeddedInCurrent flag and reported at most once.
func (a *Analyzer) resolveStructType(st *typing.StructType) {
	src := a.structDecls[st]
	if src == nil {
		return
	}

	if st.EmbeddedInCurrent {
		if !st.ReportedInfiniteErr {
			st.ReportedInfiniteErr = true
			a.errorf(src.file, src.node.Span(), "struct has infinite size")
		}
		return
	}

	if st.Fields != nil || st.Complete {
		return
	}

	fieldCount := len(src.node.Fields)
	st.Fields = make([]typing.StructField, fieldCount)

	isInvalid := false
	var totalSizeBits, firstFieldAlign uint64

	// Only set during the recursive descent into this struct's own fields.
	st.EmbeddedInCurrent = true

	genIndex := 0
	for i, fieldNode := range src.node.Fields {
		fieldType := a.analyzeTypeExpr(src.file, src.file.Scope, fieldNode.Type)

		st.Fields[i] = typing.StructField{
			Name:     fieldNode.Name,
			Type:     fieldType,
			SrcIndex: i,
			GenIndex: -1,
		}

		switch ft := fieldType.(type) {
		case *typing.StructType:
			a.resolveStructType(ft)
		case *typing.EnumType:
			a.resolveEnumType(ft)
		case typing.PrimType:
			if typing.IsInvalid(ft) {
				isInvalid = true
				continue
			} else if typing.IsVoid(ft) {
				continue
			}
		}

		if a.sizes.SizeOfBits(fieldType) == 0 {
			continue
		}

		st.Fields[i].GenIndex = genIndex
		genIndex++

		totalSizeBits += a.sizes.SizeOfBits(fieldType)
		if firstFieldAlign == 0 {
			firstFieldAlign = a.sizes.AlignOfBits(fieldType)
		}
	}

	st.EmbeddedInCurrent = false

	st.GenFieldCount = genIndex
	st.Complete = true

	if !isInvalid {
		st.SizeInBits = totalSizeBits
		st.AlignInBits = firstFieldAlign
	}
}

// resolveEnumType resolves an enum declaration's body.  An enum is a tagged
// union: for enums with at least one non-void payload the layout is
// `{tag, union}`; all-void enums collapse to the bare tag.
func (a *Analyzer) resolveEnumType(et *typing.EnumType) {
	src := a.enumDecls[et]
	if src == nil {
		return
	}

	if et.EmbeddedInCurrent {
		if !et.ReportedInfiniteErr {
			et.ReportedInfiniteErr = true
			a.errorf(src.file, src.node.Span(), "enum has infinite size")
		}
		return
	}

	if et.Fields != nil || et.Complete {
		return
	}

	fieldCount := len(src.node.Fields)
	et.Fields = make([]typing.EnumField, fieldCount)

	isInvalid := false
	var biggestPayloadBits, biggestAlign uint64

	et.EmbeddedInCurrent = true

	genIndex := 0
	for i, fieldNode := range src.node.Fields {
		payloadType := typing.DataType(typing.PrimType(typing.PrimVoid))
		if fieldNode.Type != nil {
			payloadType = a.analyzeTypeExpr(src.file, src.file.Scope, fieldNode.Type)
		}

		et.Fields[i] = typing.EnumField{
			Name:  fieldNode.Name,
			Type:  payloadType,
			Value: uint32(i),
		}

		switch ft := payloadType.(type) {
		case *typing.StructType:
			a.resolveStructType(ft)
		case *typing.EnumType:
			a.resolveEnumType(ft)
		case typing.PrimType:
			if typing.IsInvalid(ft) {
				isInvalid = true
				continue
			} else if typing.IsVoid(ft) {
				continue
			}
		}

		if a.sizes.SizeOfBits(payloadType) == 0 {
			continue
		}

		if align := a.sizes.AlignOfBits(payloadType); align > biggestAlign {
			biggestAlign = align
		}

		if size := a.sizes.SizeOfBits(payloadType); size > biggestPayloadBits {
			biggestPayloadBits = size
		}

		genIndex++
	}

	et.EmbeddedInCurrent = false

	et.GenFieldCount = genIndex
	et.Complete = true

	if !isInvalid {
		tagType := typing.SmallestUnsignedFitting(uint64(fieldCount))
		et.TagType = tagType

		tagBits := uint64(tagType.Bits)
		if genIndex == 0 {
			et.SizeInBits = tagBits
			et.AlignInBits = tagBits
		} else {
			et.SizeInBits = tagBits + biggestPayloadBits
			et.AlignInBits = biggestAlign
			if tagBits > et.AlignInBits {
				et.AlignInBits = tagBits
			}
		}
	}
}
