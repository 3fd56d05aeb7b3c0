package typing

// Conversion Relations
// --------------------
// Three relations are defined over data types, from strictest to loosest:
// 1. Handle identity: `a == b`.  The interner guarantees this is structural
//    equality.
// 2. ConstCastOnly: structural match up to constness.  A non-const value may
//    be used where a const value is expected, recursively through pointers,
//    slices, optionals, error unions, and functions.  Casts in this relation
//    are free: no representation change occurs.
// 3. Implicit convertibility: ConstCastOnly, plus wrapping into an optional
//    or error union, integer widening of matching signedness, fixed array to
//    slice decay, and numeric literals that fit the target.  The parts of the
//    relation that depend only on the types live here; the numeric literal
//    rule needs the literal's constant value and is owned by the analyzer.

// ConstCastOnly returns whether a value of the actual type may be used where
// the expected type is required with no representation change: equality, or
// a conversion that only adds constness.
func ConstCastOnly(expected, actual DataType) bool {
	if expected == actual {
		return true
	}

	switch exp := expected.(type) {
	case *PointerType:
		if act, ok := actual.(*PointerType); ok && (!act.Const || exp.Const) {
			return ConstCastOnly(exp.Elem, act.Elem)
		}
	case *SliceType:
		if act, ok := actual.(*SliceType); ok && (!act.Const || exp.Const) {
			return ConstCastOnly(exp.Elem, act.Elem)
		}
	case *OptionalType:
		if act, ok := actual.(*OptionalType); ok {
			return ConstCastOnly(exp.Elem, act.Elem)
		}
	case *ErrorUnionType:
		if act, ok := actual.(*ErrorUnionType); ok {
			return ConstCastOnly(exp.Ok, act.Ok)
		}
	case *FuncType:
		if act, ok := actual.(*FuncType); ok {
			if len(exp.Params) != len(act.Params) || exp.VarArgs != act.VarArgs {
				return false
			}

			for i, param := range exp.Params {
				if !ConstCastOnly(act.Params[i], param) {
					return false
				}
			}

			return ConstCastOnly(exp.ReturnType, act.ReturnType)
		}
	}

	return false
}

// ImplicitIntWiden returns whether the actual integer type implicitly widens
// to the expected integer type: same signedness, no narrowing.  Pointer-sized
// integers only widen to themselves since their width is target-dependent.
func ImplicitIntWiden(expected, actual *IntType) bool {
	if expected.Signed != actual.Signed {
		return false
	}

	if expected.PtrSized || actual.PtrSized {
		return expected == actual
	}

	return expected.Bits >= actual.Bits
}

// -----------------------------------------------------------------------------

// IsNumLit returns whether the given type is a numeric literal type.
func IsNumLit(dt DataType) bool {
	return dt == PrimType(PrimNumLitInt) || dt == PrimType(PrimNumLitFloat)
}

// IsInvalid returns whether the given type is the poison type.
func IsInvalid(dt DataType) bool {
	return dt == PrimType(PrimInvalid)
}

// IsVoid returns whether the given type is `void`.
func IsVoid(dt DataType) bool {
	return dt == PrimType(PrimVoid)
}

// IsUnreachable returns whether the given type is `unreachable`.
func IsUnreachable(dt DataType) bool {
	return dt == PrimType(PrimUnreachable)
}
