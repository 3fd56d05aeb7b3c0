package sem

import (
	"math"
	"math/big"
	"strconv"
	"strings"
)

// BigNumKind discriminates the two kinds of compile-time numbers.
type BigNumKind int

// Enumeration of big number kinds.
const (
	BigNumInt BigNumKind = iota
	BigNumFloat
)

// BigNum is the universal compile-time numeric value: an arbitrary-precision
// signed integer or an IEEE-754 double.  All constant folding of numeric
// literals happens on BigNums so no precision is lost before a literal is
// coerced into a concrete type.
type BigNum struct {
	Kind  BigNumKind
	Int   *big.Int
	Float float64
}

// IntNum creates an integer BigNum from an unsigned value.
func IntNum(x uint64) BigNum {
	return BigNum{Kind: BigNumInt, Int: new(big.Int).SetUint64(x)}
}

// SignedNum creates an integer BigNum from a signed value.
func SignedNum(x int64) BigNum {
	return BigNum{Kind: BigNumInt, Int: big.NewInt(x)}
}

// FloatNum creates a float BigNum.
func FloatNum(x float64) BigNum {
	return BigNum{Kind: BigNumFloat, Float: x}
}

// ParseNumberText parses the text of a numeric literal.  Integer literals may
// carry `0x`, `0o`, or `0b` prefixes.  The boolean result is false if the
// text does not form a valid number of the indicated kind.
func ParseNumberText(text string, isFloat bool) (BigNum, bool) {
	if isFloat {
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return BigNum{}, false
		}

		return FloatNum(f), true
	}

	base := 10
	digits := text
	if strings.HasPrefix(text, "0x") || strings.HasPrefix(text, "0X") {
		base, digits = 16, text[2:]
	} else if strings.HasPrefix(text, "0o") || strings.HasPrefix(text, "0O") {
		base, digits = 8, text[2:]
	} else if strings.HasPrefix(text, "0b") || strings.HasPrefix(text, "0B") {
		base, digits = 2, text[2:]
	}

	i, ok := new(big.Int).SetString(strings.ReplaceAll(digits, "_", ""), base)
	if !ok {
		return BigNum{}, false
	}

	return BigNum{Kind: BigNumInt, Int: i}, true
}

// -----------------------------------------------------------------------------

// IsNegative returns whether the number is negative.
func (bn BigNum) IsNegative() bool {
	if bn.Kind == BigNumFloat {
		return bn.Float < 0
	}

	return bn.Int.Sign() < 0
}

// Uint64 returns the number's low 64 bits as an unsigned value.
func (bn BigNum) Uint64() uint64 {
	if bn.Kind == BigNumFloat {
		return uint64(bn.Float)
	}

	return bn.Int.Uint64()
}

// Int64 returns the number as a signed 64-bit value.
func (bn BigNum) Int64() int64 {
	if bn.Kind == BigNumFloat {
		return int64(bn.Float)
	}

	return bn.Int.Int64()
}

// AsFloat returns the number as a float, converting integers exactly where
// the double mantissa allows.
func (bn BigNum) AsFloat() float64 {
	if bn.Kind == BigNumFloat {
		return bn.Float
	}

	f, _ := new(big.Float).SetInt(bn.Int).Float64()
	return f
}

// FitsInBits returns whether an integer number is representable in the given
// integer width and signedness.  Float numbers never fit an integer.
func (bn BigNum) FitsInBits(bits int, signed bool) bool {
	if bn.Kind == BigNumFloat {
		return false
	}

	if signed {
		min := new(big.Int).Lsh(big.NewInt(-1), uint(bits-1))
		max := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), uint(bits-1)), big.NewInt(1))
		return bn.Int.Cmp(min) >= 0 && bn.Int.Cmp(max) <= 0
	}

	if bn.Int.Sign() < 0 {
		return false
	}

	return bn.Int.BitLen() <= bits
}

func (bn BigNum) String() string {
	if bn.Kind == BigNumFloat {
		return strconv.FormatFloat(bn.Float, 'g', -1, 64)
	}

	return bn.Int.String()
}

// -----------------------------------------------------------------------------

// BigNumOp is a binary operation over big numbers.  The boolean result is
// false when the operation is undefined for the operands (division by zero,
// an unrepresentable shift count, or a bitwise operation on floats).
type BigNumOp func(a, b BigNum) (BigNum, bool)

// promote returns both operands as floats if either is a float.
func promote(a, b BigNum) (BigNum, BigNum, bool) {
	if a.Kind == BigNumFloat || b.Kind == BigNumFloat {
		return FloatNum(a.AsFloat()), FloatNum(b.AsFloat()), true
	}

	return a, b, false
}

// NumAdd adds two big numbers.
func NumAdd(a, b BigNum) (BigNum, bool) {
	if fa, fb, isFloat := promote(a, b); isFloat {
		return FloatNum(fa.Float + fb.Float), true
	}

	return BigNum{Kind: BigNumInt, Int: new(big.Int).Add(a.Int, b.Int)}, true
}

// NumSub subtracts b from a.
func NumSub(a, b BigNum) (BigNum, bool) {
	if fa, fb, isFloat := promote(a, b); isFloat {
		return FloatNum(fa.Float - fb.Float), true
	}

	return BigNum{Kind: BigNumInt, Int: new(big.Int).Sub(a.Int, b.Int)}, true
}

// NumMul multiplies two big numbers.
func NumMul(a, b BigNum) (BigNum, bool) {
	if fa, fb, isFloat := promote(a, b); isFloat {
		return FloatNum(fa.Float * fb.Float), true
	}

	return BigNum{Kind: BigNumInt, Int: new(big.Int).Mul(a.Int, b.Int)}, true
}

// NumDiv divides a by b; fails on division by zero.
func NumDiv(a, b BigNum) (BigNum, bool) {
	if fa, fb, isFloat := promote(a, b); isFloat {
		if fb.Float == 0 {
			return BigNum{}, false
		}

		return FloatNum(fa.Float / fb.Float), true
	}

	if b.Int.Sign() == 0 {
		return BigNum{}, false
	}

	return BigNum{Kind: BigNumInt, Int: new(big.Int).Quo(a.Int, b.Int)}, true
}

// NumMod computes a modulo b; fails on division by zero.
func NumMod(a, b BigNum) (BigNum, bool) {
	if fa, fb, isFloat := promote(a, b); isFloat {
		if fb.Float == 0 {
			return BigNum{}, false
		}

		return FloatNum(math.Mod(fa.Float, fb.Float)), true
	}

	if b.Int.Sign() == 0 {
		return BigNum{}, false
	}

	return BigNum{Kind: BigNumInt, Int: new(big.Int).Rem(a.Int, b.Int)}, true
}

// NumAnd computes the bitwise and of two integers.
func NumAnd(a, b BigNum) (BigNum, bool) {
	if a.Kind == BigNumFloat || b.Kind == BigNumFloat {
		return BigNum{}, false
	}

	return BigNum{Kind: BigNumInt, Int: new(big.Int).And(a.Int, b.Int)}, true
}

// NumOr computes the bitwise or of two integers.
func NumOr(a, b BigNum) (BigNum, bool) {
	if a.Kind == BigNumFloat || b.Kind == BigNumFloat {
		return BigNum{}, false
	}

	return BigNum{Kind: BigNumInt, Int: new(big.Int).Or(a.Int, b.Int)}, true
}

// NumXor computes the bitwise xor of two integers.
func NumXor(a, b BigNum) (BigNum, bool) {
	if a.Kind == BigNumFloat || b.Kind == BigNumFloat {
		return BigNum{}, false
	}

	return BigNum{Kind: BigNumInt, Int: new(big.Int).Xor(a.Int, b.Int)}, true
}

// NumShl shifts a left by b bits.
func NumShl(a, b BigNum) (BigNum, bool) {
	if a.Kind == BigNumFloat || b.Kind == BigNumFloat || b.Int.Sign() < 0 || !b.Int.IsUint64() {
		return BigNum{}, false
	}

	return BigNum{Kind: BigNumInt, Int: new(big.Int).Lsh(a.Int, uint(b.Int.Uint64()))}, true
}

// NumShr shifts a right by b bits.
func NumShr(a, b BigNum) (BigNum, bool) {
	if a.Kind == BigNumFloat || b.Kind == BigNumFloat || b.Int.Sign() < 0 || !b.Int.IsUint64() {
		return BigNum{}, false
	}

	return BigNum{Kind: BigNumInt, Int: new(big.Int).Rsh(a.Int, uint(b.Int.Uint64()))}, true
}

// NumNeg negates a big number.
func NumNeg(a BigNum) BigNum {
	if a.Kind == BigNumFloat {
		return FloatNum(-a.Float)
	}

	return BigNum{Kind: BigNumInt, Int: new(big.Int).Neg(a.Int)}
}

// NumCmp compares two big numbers, returning -1, 0, or 1.
func NumCmp(a, b BigNum) int {
	if fa, fb, isFloat := promote(a, b); isFloat {
		switch {
		case fa.Float < fb.Float:
			return -1
		case fa.Float > fb.Float:
			return 1
		default:
			return 0
		}
	}

	return a.Int.Cmp(b.Int)
}
