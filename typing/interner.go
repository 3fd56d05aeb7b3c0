package typing

// Interner canonicalizes structural types: every call with equal logical
// parameters returns the identical handle, so handle identity is type
// equality.  The interner is populated lazily and is order-independent.  One
// interner belongs to one compilation session and lives for its duration.
type Interner struct {
	pointerTypes  map[elemConstKey]*PointerType
	arrayTypes    map[arrayKey]*ArrayType
	sliceTypes    map[elemConstKey]*SliceType
	optionalTypes map[DataType]*OptionalType
	errUnionTypes map[DataType]*ErrorUnionType
	fnTypes       map[string]*FuncType
}

type elemConstKey struct {
	elem    DataType
	isConst bool
}

type arrayKey struct {
	elem DataType
	len  uint64
}

// NewInterner creates a new, empty type interner.
func NewInterner() *Interner {
	return &Interner{
		pointerTypes:  make(map[elemConstKey]*PointerType),
		arrayTypes:    make(map[arrayKey]*ArrayType),
		sliceTypes:    make(map[elemConstKey]*SliceType),
		optionalTypes: make(map[DataType]*OptionalType),
		errUnionTypes: make(map[DataType]*ErrorUnionType),
		fnTypes:       make(map[string]*FuncType),
	}
}

// PointerTo returns the canonical pointer type to the given element type.
func (it *Interner) PointerTo(elem DataType, isConst bool) *PointerType {
	key := elemConstKey{elem, isConst}
	if pt, ok := it.pointerTypes[key]; ok {
		return pt
	}

	pt := &PointerType{Elem: elem, Const: isConst}
	it.pointerTypes[key] = pt
	return pt
}

// ArrayOf returns the canonical fixed-size array type.
func (it *Interner) ArrayOf(elem DataType, length uint64) *ArrayType {
	key := arrayKey{elem, length}
	if at, ok := it.arrayTypes[key]; ok {
		return at
	}

	at := &ArrayType{Elem: elem, Len: length}
	it.arrayTypes[key] = at
	return at
}

// SliceOf returns the canonical slice type.  The const and non-const variants
// of a given element type are distinct handles sharing one physical layout;
// the const variant's VarPeer records its layout peer.
func (it *Interner) SliceOf(elem DataType, isConst bool) *SliceType {
	key := elemConstKey{elem, isConst}
	if st, ok := it.sliceTypes[key]; ok {
		return st
	}

	st := &SliceType{Elem: elem, Const: isConst}
	if isConst {
		st.VarPeer = it.SliceOf(elem, false)
	} else {
		st.VarPeer = st
	}

	it.sliceTypes[key] = st
	return st
}

// OptionalOf returns the canonical optional type wrapping the given type.
func (it *Interner) OptionalOf(elem DataType) *OptionalType {
	if ot, ok := it.optionalTypes[elem]; ok {
		return ot
	}

	ot := &OptionalType{Elem: elem}
	it.optionalTypes[elem] = ot
	return ot
}

// ErrorUnionOf returns the canonical error union type with the given payload.
// A zero-sized payload collapses the representation to the bare tag but not
// the type identity.
func (it *Interner) ErrorUnionOf(ok DataType) *ErrorUnionType {
	if et, found := it.errUnionTypes[ok]; found {
		return et
	}

	et := &ErrorUnionType{Ok: ok}
	it.errUnionTypes[ok] = et
	return et
}

// FuncOf returns the canonical function type with the given signature.
func (it *Interner) FuncOf(params []DataType, returnType DataType, varArgs bool, callConv int, naked bool) *FuncType {
	ft := &FuncType{
		Params:     params,
		VarArgs:    varArgs,
		ReturnType: returnType,
		CallConv:   callConv,
		Naked:      naked,
	}

	key := ft.Repr()
	if callConv == CallConvFast {
		key = "fastcall " + key
	}

	if existing, ok := it.fnTypes[key]; ok {
		return existing
	}

	it.fnTypes[key] = ft
	return ft
}
