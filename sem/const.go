package sem

import "sable/typing"

// ConstValue is a compile-time value.  The OK flag records whether the value
// could be computed; an un-ok ConstValue carries no data.  Which payload
// field is meaningful is determined by the type of the expression the value
// belongs to.
type ConstValue struct {
	// OK indicates the value was successfully computed at compile time.
	OK bool

	// Undef indicates the value is intentionally uninitialized (`undefined`).
	Undef bool

	// Num holds integer, float, and character values.
	Num BigNum

	// Bool holds boolean values.
	Bool bool

	// Type holds the value of a type expression (the payload of a MetaType
	// value).
	Type typing.DataType

	// Fn holds a compile-time function reference.
	Fn *FnEntry

	// Err holds an error value; nil denotes the reserved "ok" tag.  For error
	// union values ErrPayload holds the ok payload when Err is nil.
	Err        *ErrorEntry
	ErrPayload *ConstValue

	// Maybe holds an optional's payload; nil denotes `null`.
	Maybe *ConstValue

	// Ptr holds the pointee values of a pointer.  Length 1 for ordinary
	// pointers, greater for C strings.  Pointee vectors are shared by
	// reference between constant expressions, never copied.
	Ptr *PtrValue

	// Fields holds a struct value's field values indexed by source field
	// index.
	Fields []*ConstValue

	// Elems holds an array value's elements.
	Elems []*ConstValue

	// Enum holds an enum value.
	Enum EnumValue
}

// PtrValue is the owned pointee vector of a constant pointer.
type PtrValue struct {
	Vals []*ConstValue
}

// EnumValue is a constant enum value: a tag plus an optional payload.
type EnumValue struct {
	Tag     uint32
	Payload *ConstValue
}
