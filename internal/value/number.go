// Package value implements the tagged scalar (Value) used throughout the
// compiler and evaluator, along with its two payload-bearing pieces: Number
// (the unified integer/float tower) and ByteString (the UTF-8-tracking byte
// buffer).
package value

import (
	"errors"
	"math"
	"math/big"
	"strconv"
)

// ErrOverflow is returned when arithmetic cannot be represented exactly and
// the fallback float result is not finite.
var ErrOverflow = errors.New("integer overflow")

// ErrDivByZero is returned for any division or modulus by zero, integer or
// float. The system never lets a NaN or infinite float escape to a Number.
var ErrDivByZero = errors.New("division by zero or NaN")

// Number is a sum type over a wide signed integer and a finite float64.
// Exactly one of the two representations is active at a time.
type Number struct {
	isFloat bool
	i       big.Int // valid when !isFloat; bounded to the signed 128-bit range
	f       float64 // valid when isFloat; never NaN or +-Inf
}

// int128Min/int128Max bound the exact-integer range. Arithmetic attempts
// the exact operation first and falls back to float only when the result
// lands outside this range; integer literals beyond it parse as floats.
var (
	int128Max = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 127), big.NewInt(1))
	int128Min = new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), 127))
)

func fitsInt128(x *big.Int) bool {
	return x.Cmp(int128Min) >= 0 && x.Cmp(int128Max) <= 0
}

// NewInt builds an integer Number from an int64.
func NewInt(i int64) Number {
	var n Number
	n.i.SetInt64(i)
	return n
}

// NewUint builds an integer Number from a uint64.
func NewUint(u uint64) Number {
	var n Number
	n.i.SetUint64(u)
	return n
}

// NewBigInt builds an integer Number from a *big.Int (copied).
func NewBigInt(i *big.Int) Number {
	var n Number
	n.i.Set(i)
	return n
}

// NewFloat builds a float Number. Panics if f is NaN or infinite: callers
// must route through FloatResult to turn that into ErrOverflow instead.
func NewFloat(f float64) Number {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		panic("value: NewFloat called with non-finite value")
	}
	return Number{isFloat: true, f: f}
}

// FloatResult wraps a computed float, converting non-finite results into
// ErrOverflow per the Number invariant ("floats are never NaN nor infinite
// inside a Number").
func FloatResult(f float64) (Number, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Number{}, ErrOverflow
	}
	return Number{isFloat: true, f: f}, nil
}

func (n Number) IsFloat() bool { return n.isFloat }

func (n Number) Float64() float64 {
	if n.isFloat {
		return n.f
	}
	f := new(big.Float).SetInt(&n.i)
	out, _ := f.Float64()
	return out
}

// Int64 returns the integer value and whether the Number is an
// exactly-representable integer that fits in an int64.
func (n Number) Int64() (int64, bool) {
	if n.isFloat {
		return 0, false
	}
	if !n.i.IsInt64() {
		return 0, false
	}
	return n.i.Int64(), true
}

// BigInt returns the underlying integer and true, iff this Number is integral.
func (n Number) BigInt() (*big.Int, bool) {
	if n.isFloat {
		return nil, false
	}
	return new(big.Int).Set(&n.i), true
}

func (n Number) String() string {
	if n.isFloat {
		return formatFloat(n.f)
	}
	return n.i.String()
}

func formatFloat(f float64) string {
	// shortest round-trip representation, matching SQL's usual textual float output.
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// binaryOp applies intOp when both operands are integers and the result does
// not overflow; otherwise both operands are widened to float64 and floatOp is
// used, re-wrapped per the Number invariant.
func binaryOp(a, b Number, intOp func(a, b *big.Int) (*big.Int, bool), floatOp func(a, b float64) float64) (Number, error) {
	if !a.isFloat && !b.isFloat {
		if r, ok := intOp(&a.i, &b.i); ok {
			return NewBigInt(r), nil
		}
	}
	return FloatResult(floatOp(a.Float64(), b.Float64()))
}

func (a Number) Add(b Number) (Number, error) {
	return binaryOp(a, b,
		func(x, y *big.Int) (*big.Int, bool) { r := new(big.Int).Add(x, y); return r, fitsInt128(r) },
		func(x, y float64) float64 { return x + y },
	)
}

func (a Number) Sub(b Number) (Number, error) {
	return binaryOp(a, b,
		func(x, y *big.Int) (*big.Int, bool) { r := new(big.Int).Sub(x, y); return r, fitsInt128(r) },
		func(x, y float64) float64 { return x - y },
	)
}

func (a Number) Mul(b Number) (Number, error) {
	return binaryOp(a, b,
		func(x, y *big.Int) (*big.Int, bool) { r := new(big.Int).Mul(x, y); return r, fitsInt128(r) },
		func(x, y float64) float64 { return x * y },
	)
}

func (a Number) Neg() (Number, error) {
	if !a.isFloat {
		r := new(big.Int).Neg(&a.i)
		if !fitsInt128(r) {
			return FloatResult(-a.Float64())
		}
		return NewBigInt(r), nil
	}
	return FloatResult(-a.f)
}

// Div implements SQL `/`: always produces a float, a zero divisor is
// ErrDivByZero, and a non-finite result otherwise is ErrOverflow.
func (a Number) Div(b Number) (Number, error) {
	bf := b.Float64()
	if bf == 0 {
		return Number{}, ErrDivByZero
	}
	return FloatResult(a.Float64() / bf)
}

// IntDiv implements truncated-toward-zero integer division (`div`). Division
// by zero is always ErrDivByZero, never infinity. MIN div -1 is the one
// quotient that leaves the exact range; it falls back to float.
func (a Number) IntDiv(b Number) (Number, error) {
	if !a.isFloat && !b.isFloat {
		if b.i.Sign() == 0 {
			return Number{}, ErrDivByZero
		}
		q := new(big.Int)
		q.Quo(&a.i, &b.i)
		if !fitsInt128(q) {
			return FloatResult(math.Trunc(a.Float64() / b.Float64()))
		}
		return NewBigInt(q), nil
	}
	bf := b.Float64()
	if bf == 0 {
		return Number{}, ErrDivByZero
	}
	return FloatResult(math.Trunc(a.Float64() / bf))
}

// Mod implements truncated modulus (`mod`); `(-MIN) rem -1` yields 0.
func (a Number) Mod(b Number) (Number, error) {
	if !a.isFloat && !b.isFloat {
		if b.i.Sign() == 0 {
			return Number{}, ErrDivByZero
		}
		r := new(big.Int)
		r.Rem(&a.i, &b.i)
		return NewBigInt(r), nil
	}
	bf := b.Float64()
	if bf == 0 {
		return Number{}, ErrDivByZero
	}
	return FloatResult(math.Mod(a.Float64(), bf))
}

// Cmp compares two Numbers, widening only as needed. Returns -1, 0, or 1.
func (a Number) Cmp(b Number) int {
	if !a.isFloat && !b.isFloat {
		return a.i.Cmp(&b.i)
	}
	af, bf := a.Float64(), b.Float64()
	switch {
	case af < bf:
		return -1
	case af > bf:
		return 1
	default:
		return 0
	}
}

// Round rounds to d decimal digits (d may be negative), matching SQL ROUND.
func (a Number) Round(d int) Number {
	if !a.isFloat && d >= 0 {
		return a // integers are exact at non-negative digit counts
	}
	scale := math.Pow10(d)
	return NewFloat(math.Round(a.Float64()*scale) / scale)
}

// AsUint64 reports whether the Number is a non-negative integer fitting in
// uint64, used by rand.range's "unsigned-64 if both ends fit" width choice.
func (a Number) AsUint64() (uint64, bool) {
	if a.isFloat || a.i.Sign() < 0 || !a.i.IsUint64() {
		return 0, false
	}
	return a.i.Uint64(), true
}
