package typing

import "strings"

// DataType is the parent interface for all types in Sable.  Every data type is
// canonicalized: two types are equal if and only if they are the same handle.
// All composite types are created through the Interner; primitive types are
// the package-level canonical values below.  Because of canonicalization,
// ordinary `==` comparison is the equality relation on data types.
type DataType interface {
	// Repr returns a representative string of the type for purposes of error
	// reporting.
	Repr() string
}

// -----------------------------------------------------------------------------

// PrimType represents a primitive type with no variant data.  It must be one
// of the enumerated primitive kinds.
type PrimType int

// Enumeration of the different primitive kinds.
const (
	PrimInvalid = iota // the poison type; propagates without diagnostics
	PrimMetaType
	PrimVoid
	PrimUnreachable
	PrimBool
	PrimUndefLit
	PrimNumLitInt
	PrimNumLitFloat
	PrimPureError
)

func (pt PrimType) Repr() string {
	switch pt {
	case PrimInvalid:
		return "(invalid)"
	case PrimMetaType:
		return "type"
	case PrimVoid:
		return "void"
	case PrimUnreachable:
		return "unreachable"
	case PrimBool:
		return "bool"
	case PrimUndefLit:
		return "(undefined)"
	case PrimNumLitInt:
		return "(integer literal)"
	case PrimNumLitFloat:
		return "(float literal)"
	default:
		// PrimPureError
		return "error"
	}
}

// -----------------------------------------------------------------------------

// IntType represents a sized integer type.  The ten canonical instances are
// the package-level variables below; IntType values must never be constructed
// elsewhere.
type IntType struct {
	name   string
	Signed bool

	// Bits is the integer's width.  It is zero for the pointer-sized integers
	// `isize` and `usize`, whose width is target-dependent.
	Bits int

	// PtrSized indicates a pointer-sized integer (`isize` or `usize`).
	PtrSized bool
}

func (it *IntType) Repr() string {
	return it.name
}

// The canonical integer type handles.
var (
	I8    = &IntType{name: "i8", Signed: true, Bits: 8}
	I16   = &IntType{name: "i16", Signed: true, Bits: 16}
	I32   = &IntType{name: "i32", Signed: true, Bits: 32}
	I64   = &IntType{name: "i64", Signed: true, Bits: 64}
	U8    = &IntType{name: "u8", Bits: 8}
	U16   = &IntType{name: "u16", Bits: 16}
	U32   = &IntType{name: "u32", Bits: 32}
	U64   = &IntType{name: "u64", Bits: 64}
	Isize = &IntType{name: "isize", Signed: true, PtrSized: true}
	Usize = &IntType{name: "usize", PtrSized: true}
)

// IntOfBits returns the canonical fixed-width integer type with the given
// signedness and bit width.  The width must be 8, 16, 32, or 64.
func IntOfBits(signed bool, bits int) *IntType {
	if signed {
		switch bits {
		case 8:
			return I8
		case 16:
			return I16
		case 32:
			return I32
		case 64:
			return I64
		}
	} else {
		switch bits {
		case 8:
			return U8
		case 16:
			return U16
		case 32:
			return U32
		case 64:
			return U64
		}
	}

	panic("invalid integer width")
}

// -----------------------------------------------------------------------------

// FloatType represents a floating point type.  The two canonical instances
// are F32 and F64.
type FloatType struct {
	name string
	Bits int
}

func (ft *FloatType) Repr() string {
	return ft.name
}

// The canonical float type handles.
var (
	F32 = &FloatType{name: "f32", Bits: 32}
	F64 = &FloatType{name: "f64", Bits: 64}
)

// -----------------------------------------------------------------------------

// PrimitiveByName maps primitive type names to their canonical handles.  It is
// consulted during symbol resolution and top-level dependency collection: a
// name in this table can never be a dependency on another declaration.
var PrimitiveByName = map[string]DataType{
	"i8":          I8,
	"i16":         I16,
	"i32":         I32,
	"i64":         I64,
	"u8":          U8,
	"u16":         U16,
	"u32":         U32,
	"u64":         U64,
	"isize":       Isize,
	"usize":       Usize,
	"f32":         F32,
	"f64":         F64,
	"bool":        PrimType(PrimBool),
	"void":        PrimType(PrimVoid),
	"unreachable": PrimType(PrimUnreachable),
}

// -----------------------------------------------------------------------------

// PointerType represents a single-item pointer `&T` or `&const T`.
type PointerType struct {
	Elem  DataType
	Const bool
}

func (pt *PointerType) Repr() string {
	if pt.Const {
		return "&const " + pt.Elem.Repr()
	}

	return "&" + pt.Elem.Repr()
}

// ArrayType represents a fixed-size array `[N]T`.
type ArrayType struct {
	Elem DataType
	Len  uint64
}

func (at *ArrayType) Repr() string {
	return "[" + utoa(at.Len) + "]" + at.Elem.Repr()
}

// SliceType represents a slice `[]T` or `[]const T`: a fat pointer
// `{ptr: &T, len: usize}` into a contiguous array.  The const and non-const
// slices of a given element share one physical layout but are distinct type
// handles; the const variant records its non-const layout peer.
type SliceType struct {
	Elem  DataType
	Const bool

	// VarPeer is the non-const slice sharing this slice's layout.  It is the
	// slice itself for non-const slices.
	VarPeer *SliceType
}

func (st *SliceType) Repr() string {
	if st.Const {
		return "[]const " + st.Elem.Repr()
	}

	return "[]" + st.Elem.Repr()
}

// OptionalType represents an optional `?T`: a value is either a `T` or the
// absence marker `null`.  Represented as `{value: T, present: bool}`.
type OptionalType struct {
	Elem DataType
}

func (ot *OptionalType) Repr() string {
	return "?" + ot.Elem.Repr()
}

// ErrorUnionType represents an error union `%T`: a value is either an error
// tag or a `T` payload.  If the payload type has zero size the representation
// degenerates to the bare tag.
type ErrorUnionType struct {
	Ok DataType
}

func (et *ErrorUnionType) Repr() string {
	return "%" + et.Ok.Repr()
}

// -----------------------------------------------------------------------------

// StructField is a single field within a structure type.
type StructField struct {
	Name string
	Type DataType

	// SrcIndex is the field's index in source order; it is stable for
	// diagnostics.
	SrcIndex int

	// GenIndex is the field's generated index, which skips zero-sized fields.
	// It is -1 for fields with no generated representation.
	GenIndex int
}

// StructType represents a named structure type.  Structure types are nominal:
// each declaration creates a fresh handle, so no interning applies.
type StructType struct {
	Name   string
	Fields []StructField
	Packed bool

	// Complete is set exactly when all fields have been resolved.
	Complete bool

	// EmbeddedInCurrent is set while the struct's own body is being resolved;
	// a recursive visit observing it has found a by-value cycle.
	EmbeddedInCurrent bool

	// ReportedInfiniteErr de-duplicates the "infinite size" diagnostic.
	ReportedInfiniteErr bool

	// GenFieldCount is the number of fields with a generated representation.
	GenFieldCount int

	SizeInBits  uint64
	AlignInBits uint64
}

func (st *StructType) Repr() string {
	return st.Name
}

// FieldByName returns the struct field with the given name, or nil.
func (st *StructType) FieldByName(name string) *StructField {
	for i := range st.Fields {
		if st.Fields[i].Name == name {
			return &st.Fields[i]
		}
	}

	return nil
}

// -----------------------------------------------------------------------------

// EnumField is a single variant of an enum type.
type EnumField struct {
	Name string

	// Type is the variant's payload type; `void` for payload-free variants.
	Type DataType

	// Value is the variant's tag value.
	Value uint32
}

// EnumType represents a named enum: a tagged union.  If every payload is
// `void`, the representation collapses to the bare tag.
type EnumType struct {
	Name   string
	Fields []EnumField

	// TagType is the smallest unsigned integer able to represent the variant
	// count.
	TagType *IntType

	Complete            bool
	EmbeddedInCurrent   bool
	ReportedInfiniteErr bool

	// GenFieldCount is the number of variants carrying a non-zero-sized
	// payload.  Zero means the enum is represented as the bare tag.
	GenFieldCount int

	SizeInBits  uint64
	AlignInBits uint64
}

func (et *EnumType) Repr() string {
	return et.Name
}

// FieldByName returns the enum variant with the given name, or nil.
func (et *EnumType) FieldByName(name string) *EnumField {
	for i := range et.Fields {
		if et.Fields[i].Name == name {
			return &et.Fields[i]
		}
	}

	return nil
}

// -----------------------------------------------------------------------------

// Enumeration of calling conventions.
const (
	CallConvC = iota // the platform C calling convention
	CallConvFast
)

// FuncType represents a function type.
type FuncType struct {
	Params     []DataType
	VarArgs    bool
	ReturnType DataType
	CallConv   int
	Naked      bool
}

func (ft *FuncType) Repr() string {
	sb := strings.Builder{}

	if ft.Naked {
		sb.WriteString("naked ")
	}

	sb.WriteString("fn(")

	for i, param := range ft.Params {
		if i > 0 {
			sb.WriteString(", ")
		}

		sb.WriteString(param.Repr())
	}

	if ft.VarArgs {
		if len(ft.Params) > 0 {
			sb.WriteString(", ")
		}

		sb.WriteString("...")
	}

	sb.WriteString(")")

	if ft.ReturnType != PrimType(PrimVoid) {
		sb.WriteString(" -> ")
		sb.WriteString(ft.ReturnType.Repr())
	}

	return sb.String()
}

// -----------------------------------------------------------------------------

func utoa(x uint64) string {
	if x == 0 {
		return "0"
	}

	var digits []byte
	for x > 0 {
		digits = append([]byte{byte('0' + x%10)}, digits...)
		x /= 10
	}

	return string(digits)
}
