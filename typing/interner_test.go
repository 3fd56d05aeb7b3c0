package typing

import "testing"

func TestInternerIdempotence(t *testing.T) {
	it := NewInterner()

	if it.PointerTo(I32, false) != it.PointerTo(I32, false) {
		t.Errorf("pointer types not interned")
	}

	if it.PointerTo(I32, false) == it.PointerTo(I32, true) {
		t.Errorf("const and non-const pointers share a handle")
	}

	if it.ArrayOf(U8, 3) != it.ArrayOf(U8, 3) {
		t.Errorf("array types not interned")
	}

	if it.ArrayOf(U8, 3) == it.ArrayOf(U8, 4) {
		t.Errorf("arrays of different lengths share a handle")
	}

	if it.OptionalOf(I32) != it.OptionalOf(I32) {
		t.Errorf("optional types not interned")
	}

	if it.ErrorUnionOf(I32) != it.ErrorUnionOf(I32) {
		t.Errorf("error union types not interned")
	}

	// Nested composites intern structurally.
	inner := it.PointerTo(U8, true)
	if it.OptionalOf(inner) != it.OptionalOf(it.PointerTo(U8, true)) {
		t.Errorf("nested composite types not interned")
	}
}

func TestInternerSlicePeers(t *testing.T) {
	it := NewInterner()

	constSlice := it.SliceOf(U8, true)
	varSlice := it.SliceOf(U8, false)

	if constSlice == varSlice {
		t.Fatalf("const and non-const slices share a handle")
	}

	if constSlice.VarPeer != varSlice {
		t.Errorf("const slice does not record its layout peer")
	}

	if varSlice.VarPeer != varSlice {
		t.Errorf("non-const slice peer should be itself")
	}

	if it.SliceOf(U8, true) != constSlice {
		t.Errorf("slice types not interned")
	}
}

func TestInternerFuncTypes(t *testing.T) {
	it := NewInterner()

	a := it.FuncOf([]DataType{I32, I32}, I64, false, CallConvC, false)
	b := it.FuncOf([]DataType{I32, I32}, I64, false, CallConvC, false)

	if a != b {
		t.Errorf("structurally equal function types not interned")
	}

	c := it.FuncOf([]DataType{I32}, I64, false, CallConvC, false)
	if a == c {
		t.Errorf("function types with different signatures share a handle")
	}
}

func TestSmallestUnsignedFitting(t *testing.T) {
	tests := []struct {
		value uint64
		want  *IntType
	}{
		{0, U8},
		{255, U8},
		{256, U16},
		{65535, U16},
		{65536, U32},
		{1 << 32, U64},
	}

	for _, tt := range tests {
		if got := SmallestUnsignedFitting(tt.value); got != tt.want {
			t.Errorf("SmallestUnsignedFitting(%d) = %s, want %s", tt.value, got.Repr(), tt.want.Repr())
		}
	}
}

func TestSizes(t *testing.T) {
	it := NewInterner()
	sizes := NewSizes(64)
	sizes.SetErrorCount(3)

	if sizes.ErrTagBits != 8 {
		t.Errorf("ErrTagBits = %d, want 8", sizes.ErrTagBits)
	}

	tests := []struct {
		dt   DataType
		want uint64
	}{
		{I32, 32},
		{Usize, 64},
		{it.PointerTo(I32, false), 64},
		{it.ArrayOf(U8, 10), 80},
		{it.SliceOf(U8, true), 128},
		{it.OptionalOf(I32), 40},
		{it.ErrorUnionOf(PrimType(PrimVoid)), 8},
		{it.ErrorUnionOf(I32), 40},
		{PrimType(PrimPureError), 8},
		{PrimType(PrimVoid), 0},
	}

	for _, tt := range tests {
		if got := sizes.SizeOfBits(tt.dt); got != tt.want {
			t.Errorf("SizeOfBits(%s) = %d, want %d", tt.dt.Repr(), got, tt.want)
		}
	}

	// Error tag widening: 300 error values need a 16-bit tag, which widens
	// the degenerate error union with it.
	sizes.SetErrorCount(300)
	if sizes.ErrTagBits != 16 {
		t.Errorf("ErrTagBits = %d, want 16", sizes.ErrTagBits)
	}
	if got := sizes.SizeOfBits(it.ErrorUnionOf(PrimType(PrimVoid))); got != 16 {
		t.Errorf("degenerate error union size = %d, want 16", got)
	}
}

func TestConstCastOnly(t *testing.T) {
	it := NewInterner()

	tests := []struct {
		name             string
		expected, actual DataType
		want             bool
	}{
		{"identical ints", I32, I32, true},
		{"distinct ints", I32, I64, false},
		{"var ptr to const ptr", it.PointerTo(U8, true), it.PointerTo(U8, false), true},
		{"const ptr to var ptr", it.PointerTo(U8, false), it.PointerTo(U8, true), false},
		{"var slice to const slice", it.SliceOf(U8, true), it.SliceOf(U8, false), true},
		{"const slice to var slice", it.SliceOf(U8, false), it.SliceOf(U8, true), false},
		{"optional recursion", it.OptionalOf(it.PointerTo(U8, true)), it.OptionalOf(it.PointerTo(U8, false)), true},
		{"error union recursion", it.ErrorUnionOf(I32), it.ErrorUnionOf(I32), true},
		{"mismatched shapes", it.OptionalOf(I32), I32, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ConstCastOnly(tt.expected, tt.actual); got != tt.want {
				t.Errorf("ConstCastOnly(%s, %s) = %v, want %v",
					tt.expected.Repr(), tt.actual.Repr(), got, tt.want)
			}
		})
	}
}

func TestImplicitIntWiden(t *testing.T) {
	tests := []struct {
		expected, actual *IntType
		want             bool
	}{
		{I64, I32, true},
		{I32, I64, false},
		{I32, I32, true},
		{U64, I32, false},
		{Usize, U64, false},
		{Usize, Usize, true},
	}

	for _, tt := range tests {
		if got := ImplicitIntWiden(tt.expected, tt.actual); got != tt.want {
			t.Errorf("ImplicitIntWiden(%s, %s) = %v, want %v",
				tt.expected.Repr(), tt.actual.Repr(), got, tt.want)
		}
	}
}

func TestTypeRepr(t *testing.T) {
	it := NewInterner()

	tests := []struct {
		dt   DataType
		want string
	}{
		{it.PointerTo(U8, true), "&const u8"},
		{it.ArrayOf(I32, 5), "[5]i32"},
		{it.SliceOf(U8, true), "[]const u8"},
		{it.OptionalOf(I32), "?i32"},
		{it.ErrorUnionOf(I32), "%i32"},
		{it.FuncOf([]DataType{I32}, PrimType(PrimVoid), false, CallConvC, false), "fn(i32)"},
		{it.FuncOf([]DataType{I32}, I64, true, CallConvC, false), "fn(i32, ...) -> i64"},
	}

	for _, tt := range tests {
		if got := tt.dt.Repr(); got != tt.want {
			t.Errorf("Repr() = %q, want %q", got, tt.want)
		}
	}
}
