package value

import (
	"math"
	"math/big"
	"testing"
)

func TestNumberAddExact(t *testing.T) {
	got, err := NewInt(2).Add(NewInt(3))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.IsFloat() {
		t.Fatalf("expected exact integer result, got float %s", got)
	}
	if got.String() != "5" {
		t.Fatalf("got %s, want 5", got)
	}
}

func TestNumberAddOverflowFallsBackToFloat(t *testing.T) {
	huge := NewBigInt(new(big.Int).Lsh(big.NewInt(1), 126))
	got, err := huge.Add(huge) // 2^127 leaves the exact range
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.IsFloat() {
		t.Fatalf("a sum past the exact range must fall back to float, got %s", got)
	}
	if got.Float64() != math.Ldexp(1, 127) {
		t.Fatalf("got %v, want 2^127", got.Float64())
	}
}

func TestNumberMulOverflowFallsBackToFloat(t *testing.T) {
	big100 := NewBigInt(new(big.Int).Lsh(big.NewInt(1), 100))
	got, err := big100.Mul(big100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.IsFloat() {
		t.Fatalf("a product past the exact range must fall back to float, got %s", got)
	}
	if got.Float64() != math.Ldexp(1, 200) {
		t.Fatalf("got %v, want 2^200", got.Float64())
	}
}

func TestNumberNegAtRangeBoundaryFallsBackToFloat(t *testing.T) {
	got, err := NewBigInt(int128Min).Neg()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.IsFloat() {
		t.Fatalf("-(-2^127) must fall back to float, got %s", got)
	}
	if got.Float64() != math.Ldexp(1, 127) {
		t.Fatalf("got %v, want 2^127", got.Float64())
	}
}

func TestNumberIntDivRangeBoundaryFallsBackToFloat(t *testing.T) {
	got, err := NewBigInt(int128Min).IntDiv(NewInt(-1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.IsFloat() {
		t.Fatalf("MIN div -1 must fall back to float, got %s", got)
	}
	if got.Float64() != math.Ldexp(1, 127) {
		t.Fatalf("got %v, want 2^127", got.Float64())
	}
}

func TestNumberMixedIntFloatUsesFloat(t *testing.T) {
	got, err := NewInt(2).Add(NewFloat(3.5))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.IsFloat() {
		t.Fatalf("expected float result mixing int and float operands")
	}
	if got.Float64() != 5.5 {
		t.Fatalf("got %v, want 5.5", got.Float64())
	}
}

func TestNumberDivByZeroIsErrorNeverInfinity(t *testing.T) {
	if _, err := NewInt(1).Div(NewInt(0)); err != ErrDivByZero {
		t.Fatalf("Div by zero: got %v, want ErrDivByZero", err)
	}
	if _, err := NewInt(1).IntDiv(NewInt(0)); err != ErrDivByZero {
		t.Fatalf("IntDiv by zero: got %v, want ErrDivByZero", err)
	}
	if _, err := NewInt(1).Mod(NewInt(0)); err != ErrDivByZero {
		t.Fatalf("Mod by zero: got %v, want ErrDivByZero", err)
	}
	if _, err := NewFloat(1.5).Div(NewFloat(0)); err != ErrDivByZero {
		t.Fatalf("float Div by zero: got %v, want ErrDivByZero", err)
	}
}

func TestNumberIntDivTruncatesTowardZero(t *testing.T) {
	got, err := NewInt(-7).IntDiv(NewInt(2))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.String() != "-3" {
		t.Fatalf("got %s, want -3 (truncated toward zero)", got)
	}
}

func TestNumberModMatchesTruncatedDiv(t *testing.T) {
	got, err := NewInt(-7).Mod(NewInt(2))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.String() != "-1" {
		t.Fatalf("got %s, want -1", got)
	}
}

func TestNumberDivAlwaysProducesFloat(t *testing.T) {
	got, err := NewInt(4).Div(NewInt(2))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.IsFloat() {
		t.Fatalf("`/` must always produce a float, even for exact results")
	}
}

func TestNumberCmp(t *testing.T) {
	if NewInt(1).Cmp(NewInt(2)) >= 0 {
		t.Fatalf("1 should compare less than 2")
	}
	if NewFloat(1.5).Cmp(NewInt(1)) <= 0 {
		t.Fatalf("1.5 should compare greater than 1")
	}
}

func TestNumberAsUint64(t *testing.T) {
	if _, ok := NewInt(-1).AsUint64(); ok {
		t.Fatalf("negative numbers must not report as uint64")
	}
	if _, ok := NewFloat(1.0).AsUint64(); ok {
		t.Fatalf("floats must not report as uint64 even if integral-valued")
	}
	u, ok := NewUint(42).AsUint64()
	if !ok || u != 42 {
		t.Fatalf("got (%d, %v), want (42, true)", u, ok)
	}
}

func TestParseNumberLiteralPrefersExactInteger(t *testing.T) {
	n, err := ParseNumberLiteral("123456789012345678901234567890")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n.IsFloat() {
		t.Fatalf("a huge integer literal must parse exactly, not as float")
	}
	if n.String() != "123456789012345678901234567890" {
		t.Fatalf("got %s", n)
	}
}

func TestParseNumberLiteralBeyondExactRangeIsFloat(t *testing.T) {
	n, err := ParseNumberLiteral("340282366920938463463374607431768211456") // 2^128
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !n.IsFloat() {
		t.Fatalf("a literal past the exact 128-bit range must parse as float, got %s", n)
	}
}

func TestParseNumberLiteralFloat(t *testing.T) {
	n, err := ParseNumberLiteral("2.5")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !n.IsFloat() {
		t.Fatalf("a literal containing '.' must parse as float")
	}
}
