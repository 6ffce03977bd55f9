package functions_test

import (
	"testing"
	"time"

	"github.com/sqldef/tablegen/internal/compiler"
	"github.com/sqldef/tablegen/internal/compiler/functions"
	"github.com/sqldef/tablegen/internal/errs"
	"github.com/sqldef/tablegen/internal/eval"
	"github.com/sqldef/tablegen/internal/genrow"
	"github.com/sqldef/tablegen/internal/parser"
	"github.com/sqldef/tablegen/internal/randengine"
	"github.com/sqldef/tablegen/internal/value"
)

// compileExpr compiles a single expression the way a template column would
// carry it, returning the compiled node or the compile-time error (constant
// folding means many error cases surface here rather than at eval time).
func compileExpr(t *testing.T, expr string) (compiler.Compiled, error) {
	t.Helper()
	tmpl, _, err := parser.ParseTemplate("CREATE TABLE t (x {{ " + expr + " }});")
	if err != nil {
		t.Fatalf("ParseTemplate(%q): %v", expr, err)
	}
	cc := compiler.NewCompileContext(time.UTC)
	reg := compiler.NewRegistry()
	functions.Register(reg)
	tables, err := genrow.Compile(tmpl, reg, cc)
	if err != nil {
		return nil, err
	}
	return tables[0].Columns[0], nil
}

func newState(t *testing.T) *eval.State {
	t.Helper()
	engine, err := randengine.New(randengine.ChaCha, [32]byte{})
	if err != nil {
		t.Fatalf("randengine.New: %v", err)
	}
	s := eval.New(engine, time.UTC, nil)
	s.SetRowNum(1)
	return s
}

func evalExpr(t *testing.T, expr string) (value.Value, error) {
	t.Helper()
	c, err := compileExpr(t, expr)
	if err != nil {
		return value.Value{}, err
	}
	return c.Eval(newState(t))
}

func mustNumber(t *testing.T, v value.Value) value.Number {
	t.Helper()
	n, ok := v.Number()
	if !ok {
		t.Fatalf("got %s, want a number", v.Kind())
	}
	return n
}

func mustString(t *testing.T, v value.Value) string {
	t.Helper()
	b, ok := v.Bytes()
	if !ok {
		t.Fatalf("got %s, want bytes", v.Kind())
	}
	return b.String()
}

func wantKind(t *testing.T, err error, kind errs.Kind) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected a %s error, got nil", kind)
	}
	got, ok := errs.KindOf(err)
	if !ok {
		t.Fatalf("error %v carries no kind", err)
	}
	if got != kind {
		t.Fatalf("got error kind %s, want %s (%v)", got, kind, err)
	}
}

func TestRandRangeEqualBoundsErrors(t *testing.T) {
	_, err := evalExpr(t, "rand.range(7, 7)")
	wantKind(t, err, errs.KindInvalidArguments)
}

func TestRandRangeInclusiveEqualBoundsIsDeterministic(t *testing.T) {
	v, err := evalExpr(t, "rand.range_inclusive(7, 7)")
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	if got := mustNumber(t, v).String(); got != "7" {
		t.Fatalf("got %s, want 7", got)
	}
}

func TestRandRangeInclusiveStaysWithinBounds(t *testing.T) {
	c, err := compileExpr(t, "rand.range_inclusive(1, 3)")
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	state := newState(t)
	for i := 0; i < 200; i++ {
		v, err := c.Eval(state)
		if err != nil {
			t.Fatalf("eval %d: %v", i, err)
		}
		n, ok := mustNumber(t, v).Int64()
		if !ok || n < 1 || n > 3 {
			t.Fatalf("draw %d: got %v, want an integer in [1,3]", i, v)
		}
	}
}

func TestRandRangeReversedBoundsErrors(t *testing.T) {
	_, err := evalExpr(t, "rand.range_inclusive(3, 1)")
	wantKind(t, err, errs.KindInvalidArguments)
}

func TestRandBoolOutOfRangeErrors(t *testing.T) {
	_, err := evalExpr(t, "rand.bool(1.5)")
	wantKind(t, err, errs.KindInvalidArguments)
}

func TestRandZipfInvalidParamsError(t *testing.T) {
	_, err := evalExpr(t, "rand.zipf(0, 1.5)")
	wantKind(t, err, errs.KindInvalidArguments)
}

func TestRandZipfRanksAreOneBased(t *testing.T) {
	c, err := compileExpr(t, "rand.zipf(5, 1.5)")
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	state := newState(t)
	for i := 0; i < 100; i++ {
		v, err := c.Eval(state)
		if err != nil {
			t.Fatalf("eval %d: %v", i, err)
		}
		n, ok := mustNumber(t, v).Int64()
		if !ok || n < 1 || n > 5 {
			t.Fatalf("draw %d: got %v, want a rank in [1,5]", i, v)
		}
	}
}

func TestDivisionByZeroKind(t *testing.T) {
	_, err := evalExpr(t, "1 / 0")
	wantKind(t, err, errs.KindDivisionByZero)
}

func TestModByZeroKind(t *testing.T) {
	_, err := evalExpr(t, "1 mod 0")
	wantKind(t, err, errs.KindDivisionByZero)
}

func TestArithmeticNullPropagates(t *testing.T) {
	v, err := evalExpr(t, "1 + NULL")
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	if !v.IsNull() {
		t.Fatalf("got %v, want NULL", v)
	}
}

func TestGenerateSeriesZeroStepErrors(t *testing.T) {
	_, err := evalExpr(t, "generate_series(1, 10, 0)")
	wantKind(t, err, errs.KindInvalidArguments)
}

func TestGenerateSeriesWrongDirectionIsEmpty(t *testing.T) {
	v, err := evalExpr(t, "generate_series(10, 1, 1)")
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	arr, ok := v.Array()
	if !ok {
		t.Fatalf("got %s, want array", v.Kind())
	}
	if arr.Len() != 0 {
		t.Fatalf("got %d elements, want 0", arr.Len())
	}
}

func TestGenerateSeriesIsInclusive(t *testing.T) {
	v, err := evalExpr(t, "generate_series(1, 10, 3)")
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	arr, ok := v.Array()
	if !ok {
		t.Fatalf("got %s, want array", v.Kind())
	}
	want := []string{"1", "4", "7", "10"}
	if arr.Len() != len(want) {
		t.Fatalf("got %d elements, want %d", arr.Len(), len(want))
	}
	for i, w := range want {
		e, err := arr.Get(i)
		if err != nil {
			t.Fatalf("Get(%d): %v", i, err)
		}
		if got := mustNumber(t, e).String(); got != w {
			t.Errorf("element %d = %s, want %s", i, got, w)
		}
	}
}

func TestSubstringClampsStart(t *testing.T) {
	v, err := evalExpr(t, "substring_using_characters('hello', 0, 3)")
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	if got := mustString(t, v); got != "hel" {
		t.Fatalf("got %q, want %q", got, "hel")
	}
}

func TestSubstringNegativeLengthIsEmpty(t *testing.T) {
	v, err := evalExpr(t, "substring_using_characters('hello', 2, -1)")
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	if got := mustString(t, v); got != "" {
		t.Fatalf("got %q, want empty", got)
	}
}

func TestSubstringCharactersCountsRunes(t *testing.T) {
	v, err := evalExpr(t, "substring_using_characters('héllo', 2, 2)")
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	if got := mustString(t, v); got != "él" {
		t.Fatalf("got %q, want %q", got, "él")
	}
}

func TestCharLengthVsOctetLength(t *testing.T) {
	cl, err := evalExpr(t, "char_length('héllo')")
	if err != nil {
		t.Fatalf("eval char_length: %v", err)
	}
	ol, err := evalExpr(t, "octet_length('héllo')")
	if err != nil {
		t.Fatalf("eval octet_length: %v", err)
	}
	if got := mustNumber(t, cl).String(); got != "5" {
		t.Errorf("char_length = %s, want 5", got)
	}
	if got := mustNumber(t, ol).String(); got != "6" {
		t.Errorf("octet_length = %s, want 6", got)
	}
}

func TestHexRoundTripUppercases(t *testing.T) {
	v, err := evalExpr(t, "encode.hex(decode.hex('a1b2'))")
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	if got := mustString(t, v); got != "A1B2" {
		t.Fatalf("got %q, want %q", got, "A1B2")
	}
}

func TestBase64RoundTrip(t *testing.T) {
	v, err := evalExpr(t, "decode.base64(encode.base64('hello world'))")
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	if got := mustString(t, v); got != "hello world" {
		t.Fatalf("got %q, want %q", got, "hello world")
	}
}

func TestDecodeHexInvalidInputErrors(t *testing.T) {
	_, err := evalExpr(t, "decode.hex('zz')")
	wantKind(t, err, errs.KindInvalidArguments)
}

func TestCoalesceFirstNonNull(t *testing.T) {
	v, err := evalExpr(t, "coalesce(NULL, 2, 3)")
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	if got := mustNumber(t, v).String(); got != "2" {
		t.Fatalf("got %s, want 2", got)
	}
}

func TestLeastIgnoresNulls(t *testing.T) {
	v, err := evalExpr(t, "least(3, NULL, 1)")
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	if got := mustNumber(t, v).String(); got != "1" {
		t.Fatalf("got %s, want 1", got)
	}
}

func TestGreatestAllNullIsNull(t *testing.T) {
	v, err := evalExpr(t, "greatest(NULL, NULL)")
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	if !v.IsNull() {
		t.Fatalf("got %v, want NULL", v)
	}
}

func TestAndShortCircuitsOnFalseDespiteNull(t *testing.T) {
	v, err := evalExpr(t, "NULL AND FALSE")
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	if got := mustNumber(t, v).String(); got != "0" {
		t.Fatalf("NULL AND FALSE = %v, want FALSE", v)
	}
}

func TestOrShortCircuitsOnTrueDespiteNull(t *testing.T) {
	v, err := evalExpr(t, "NULL OR TRUE")
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	if got := mustNumber(t, v).String(); got != "1" {
		t.Fatalf("NULL OR TRUE = %v, want TRUE", v)
	}
}

func TestAndWithNullAndTrueIsNull(t *testing.T) {
	v, err := evalExpr(t, "TRUE AND NULL")
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	if !v.IsNull() {
		t.Fatalf("TRUE AND NULL = %v, want NULL", v)
	}
}

func TestComparisonNullPropagates(t *testing.T) {
	v, err := evalExpr(t, "1 < NULL")
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	if !v.IsNull() {
		t.Fatalf("1 < NULL = %v, want NULL", v)
	}
}

func TestIsNullIdentity(t *testing.T) {
	v, err := evalExpr(t, "NULL IS NULL")
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	if got := mustNumber(t, v).String(); got != "1" {
		t.Fatalf("NULL IS NULL = %v, want TRUE", v)
	}
}

func TestConcatNullPropagates(t *testing.T) {
	v, err := evalExpr(t, "'a' || NULL")
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	if !v.IsNull() {
		t.Fatalf("'a' || NULL = %v, want NULL", v)
	}
}

func TestConcatJoinsBytes(t *testing.T) {
	v, err := evalExpr(t, "'foo' || 'bar'")
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	if got := mustString(t, v); got != "foobar" {
		t.Fatalf("got %q, want %q", got, "foobar")
	}
}

func TestCaseReducesByEquality(t *testing.T) {
	v, err := evalExpr(t, "CASE 2 WHEN 1 THEN 'a' WHEN 2 THEN 'b' ELSE 'c' END")
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	if got := mustString(t, v); got != "b" {
		t.Fatalf("got %q, want %q", got, "b")
	}
}

func TestCaseFallsThroughToElse(t *testing.T) {
	v, err := evalExpr(t, "CASE 9 WHEN 1 THEN 'a' ELSE 'c' END")
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	if got := mustString(t, v); got != "c" {
		t.Fatalf("got %q, want %q", got, "c")
	}
}

func TestSubscriptIsOneBased(t *testing.T) {
	v, err := evalExpr(t, "ARRAY[10, 20, 30][1]")
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	if got := mustNumber(t, v).String(); got != "10" {
		t.Fatalf("got %s, want 10", got)
	}
}

func TestSubscriptOutOfRangeIsNull(t *testing.T) {
	v, err := evalExpr(t, "ARRAY[10, 20][5]")
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	if !v.IsNull() {
		t.Fatalf("got %v, want NULL", v)
	}
}

func TestRandRegexProducesConformingDigits(t *testing.T) {
	c, err := compileExpr(t, "rand.regex('[0-9]{4}')")
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	state := newState(t)
	for i := 0; i < 50; i++ {
		v, err := c.Eval(state)
		if err != nil {
			t.Fatalf("eval %d: %v", i, err)
		}
		s := mustString(t, v)
		if len(s) != 4 {
			t.Fatalf("draw %d: got %q, want 4 characters", i, s)
		}
		for _, r := range s {
			if r < '0' || r > '9' {
				t.Fatalf("draw %d: got %q, want ASCII digits only", i, s)
			}
		}
	}
}

func TestRandUUIDShape(t *testing.T) {
	v, err := evalExpr(t, "rand.uuid()")
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	s := mustString(t, v)
	if len(s) != 36 || s[8] != '-' || s[13] != '-' || s[18] != '-' || s[23] != '-' {
		t.Fatalf("got %q, want a dashed UUID", s)
	}
	if s[14] != '4' {
		t.Fatalf("got %q, want a version-4 UUID", s)
	}
}

func TestRandShufflePermutesArray(t *testing.T) {
	v, err := evalExpr(t, "rand.shuffle(generate_series(1, 20))")
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	arr, ok := v.Array()
	if !ok {
		t.Fatalf("got %s, want array", v.Kind())
	}
	if arr.Len() != 20 {
		t.Fatalf("got %d elements, want 20", arr.Len())
	}
	seen := map[string]bool{}
	for i := 0; i < arr.Len(); i++ {
		e, err := arr.Get(i)
		if err != nil {
			t.Fatalf("Get(%d): %v", i, err)
		}
		seen[mustNumber(t, e).String()] = true
	}
	if len(seen) != 20 {
		t.Fatalf("shuffle lost elements: %d distinct values, want 20", len(seen))
	}
}

func TestDebugPanicAlwaysFails(t *testing.T) {
	_, err := evalExpr(t, "debug.panic('boom')")
	wantKind(t, err, errs.KindPanic)
}

func TestUnknownFunctionErrors(t *testing.T) {
	_, err := compileExpr(t, "rand.no_such_function(1)")
	wantKind(t, err, errs.KindUnknownFunction)
}

func TestNotEnoughArgumentsKind(t *testing.T) {
	_, err := compileExpr(t, "rand.range_inclusive(1)")
	wantKind(t, err, errs.KindNotEnoughArguments)
}

func TestTimestampParsesAndFolds(t *testing.T) {
	c, err := compileExpr(t, "timestamp('2021-03-04 05:06:07')")
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	v, ok := compiler.AsConstant(c)
	if !ok {
		t.Fatalf("timestamp of a literal should fold to a Constant, got %T", c)
	}
	ts, ok := v.Timestamp()
	if !ok {
		t.Fatalf("got %s, want timestamp", v.Kind())
	}
	if got := ts.Instant.Format("2006-01-02 15:04:05"); got != "2021-03-04 05:06:07" {
		t.Fatalf("got %s, want 2021-03-04 05:06:07", got)
	}
}

func TestTimestampInvalidStringErrors(t *testing.T) {
	_, err := compileExpr(t, "timestamp('not a timestamp')")
	wantKind(t, err, errs.KindInvalidTimestampString)
}

func TestDebugPrintIsIdentity(t *testing.T) {
	v, err := evalExpr(t, "debug.print(42)")
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	if got := mustNumber(t, v).String(); got != "42" {
		t.Fatalf("got %s, want 42", got)
	}
}
