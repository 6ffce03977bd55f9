package compiler

import (
	"github.com/sqldef/tablegen/internal/errs"
	"github.com/sqldef/tablegen/internal/span"
	"github.com/sqldef/tablegen/internal/value"
)

// truthOf interprets a Value as a three-valued boolean: booleans are
// represented as Number(1)/Number(0) (parsePrimary desugars TRUE/FALSE that
// way), a nil *bool means SQL NULL.
func truthOf(v value.Value, sp span.Span) (*bool, error) {
	if v.IsNull() {
		return nil, nil
	}
	n, ok := v.Number()
	if !ok {
		return nil, errs.New(errs.KindInvalidArgumentType, sp, "expected boolean, got %s", v.Kind())
	}
	b := n.Cmp(value.NewInt(0)) != 0
	return &b, nil
}

func boolValue(b bool) value.Value {
	if b {
		return value.FromNumber(value.NewInt(1))
	}
	return value.FromNumber(value.NewInt(0))
}

// andNode / orNode implement short-circuiting 3-valued logic:
// AND short-circuits on FALSE regardless of remaining NULLs, OR
// short-circuits on TRUE; otherwise any NULL argument forces a NULL result.
type andNode struct {
	args []Compiled
	sp   span.Span
}

func (n *andNode) SpanOf() span.Span { return n.sp }

func (n *andNode) Eval(ctx EvalContext) (value.Value, error) {
	sawNull := false
	for _, a := range n.args {
		v, err := a.Eval(ctx)
		if err != nil {
			return value.Value{}, err
		}
		t, err := truthOf(v, n.sp)
		if err != nil {
			return value.Value{}, err
		}
		if t == nil {
			sawNull = true
			continue
		}
		if !*t {
			return boolValue(false), nil
		}
	}
	if sawNull {
		return value.Null(), nil
	}
	return boolValue(true), nil
}

type orNode struct {
	args []Compiled
	sp   span.Span
}

func (n *orNode) SpanOf() span.Span { return n.sp }

func (n *orNode) Eval(ctx EvalContext) (value.Value, error) {
	sawNull := false
	for _, a := range n.args {
		v, err := a.Eval(ctx)
		if err != nil {
			return value.Value{}, err
		}
		t, err := truthOf(v, n.sp)
		if err != nil {
			return value.Value{}, err
		}
		if t == nil {
			sawNull = true
			continue
		}
		if *t {
			return boolValue(true), nil
		}
	}
	if sawNull {
		return value.Null(), nil
	}
	return boolValue(false), nil
}

// NewAnd / NewOr build the short-circuit logic nodes; exported so
// functions/ops.go's registry entries for "and"/"or" can construct them.
func NewAnd(args []Compiled, sp span.Span) Compiled { return &andNode{args: args, sp: sp} }
func NewOr(args []Compiled, sp span.Span) Compiled  { return &orNode{args: args, sp: sp} }

// caseNode implements CASE value WHEN w THEN t ... ELSE e END (value == nil
// selects the searched form, where each Whens[i] is itself boolean).
type caseNode struct {
	value           Compiled // nil for searched CASE
	whens, thens    []Compiled
	elseExpr        Compiled // nil if no ELSE
	sp              span.Span
}

func (n *caseNode) SpanOf() span.Span { return n.sp }

func (n *caseNode) Eval(ctx EvalContext) (value.Value, error) {
	var subject value.Value
	hasSubject := n.value != nil
	if hasSubject {
		v, err := n.value.Eval(ctx)
		if err != nil {
			return value.Value{}, err
		}
		subject = v
	}
	for i, w := range n.whens {
		wv, err := w.Eval(ctx)
		if err != nil {
			return value.Value{}, err
		}
		var matched bool
		if hasSubject {
			ord, err := subject.SQLCmp(wv)
			if err != nil {
				return value.Value{}, errs.Wrap(errs.KindInvalidArgumentType, n.sp, err, "CASE comparison")
			}
			matched = ord == value.OrdEqual
		} else {
			t, err := truthOf(wv, n.sp)
			if err != nil {
				return value.Value{}, err
			}
			matched = t != nil && *t
		}
		if matched {
			return n.thens[i].Eval(ctx)
		}
	}
	if n.elseExpr != nil {
		return n.elseExpr.Eval(ctx)
	}
	return value.Null(), nil
}

func NewCase(valueExpr Compiled, whens, thens []Compiled, elseExpr Compiled, sp span.Span) Compiled {
	return &caseNode{value: valueExpr, whens: whens, thens: thens, elseExpr: elseExpr, sp: sp}
}

// arrayNode builds ARRAY[e1, e2, ...].
type arrayNode struct {
	elems []Compiled
	sp    span.Span
}

func (n *arrayNode) SpanOf() span.Span { return n.sp }

func (n *arrayNode) Eval(ctx EvalContext) (value.Value, error) {
	vals := make([]value.Value, len(n.elems))
	for i, e := range n.elems {
		v, err := e.Eval(ctx)
		if err != nil {
			return value.Value{}, err
		}
		vals[i] = v
	}
	return value.FromArray(value.NewMaterializedArray(vals)), nil
}

// NewArray folds to a Constant when every element is already constant.
func NewArray(elems []Compiled, sp span.Span) Compiled {
	if vals, ok := AllConstant(elems); ok {
		return Constant{Value: value.FromArray(value.NewMaterializedArray(vals)), Span: sp}
	}
	return &arrayNode{elems: elems, sp: sp}
}

// subscriptNode implements 1-based a[i] with out-of-range yielding NULL.
type subscriptNode struct {
	base, index Compiled
	sp          span.Span
}

func (n *subscriptNode) SpanOf() span.Span { return n.sp }

func (n *subscriptNode) Eval(ctx EvalContext) (value.Value, error) {
	bv, err := n.base.Eval(ctx)
	if err != nil {
		return value.Value{}, err
	}
	iv, err := n.index.Eval(ctx)
	if err != nil {
		return value.Value{}, err
	}
	if bv.IsNull() || iv.IsNull() {
		return value.Null(), nil
	}
	arr, ok := bv.Array()
	if !ok {
		return value.Value{}, errs.New(errs.KindInvalidArgumentType, n.sp, "subscript base is not an array (%s)", bv.Kind())
	}
	idxNum, ok := iv.Number()
	if !ok {
		return value.Value{}, errs.New(errs.KindInvalidArgumentType, n.sp, "subscript index is not a number (%s)", iv.Kind())
	}
	idx64, ok := idxNum.Int64()
	if !ok {
		return value.Value{}, errs.New(errs.KindInvalidArgumentType, n.sp, "subscript index is not an integer")
	}
	v, err := arr.Get(int(idx64) - 1) // 1-based
	if err != nil {
		return value.Null(), nil // out-of-range yields NULL, not an error
	}
	return v, nil
}

func NewSubscript(base, index Compiled, sp span.Span) Compiled {
	return &subscriptNode{base: base, index: index, sp: sp}
}

// intervalUnitMicros maps the unit keyword following INTERVAL n <unit> to a
// microsecond multiplier.
var intervalUnitMicros = map[string]int64{
	"microsecond": 1,
	"millisecond": 1_000,
	"second":      1_000_000,
	"minute":      60 * 1_000_000,
	"hour":        3600 * 1_000_000,
	"day":         86400 * 1_000_000,
}

// intervalNode implements INTERVAL <count> <unit>.
type intervalNode struct {
	count  Compiled
	micros int64
	sp     span.Span
}

func (n *intervalNode) SpanOf() span.Span { return n.sp }

func (n *intervalNode) Eval(ctx EvalContext) (value.Value, error) {
	cv, err := n.count.Eval(ctx)
	if err != nil {
		return value.Value{}, err
	}
	if cv.IsNull() {
		return value.Null(), nil
	}
	num, ok := cv.Number()
	if !ok {
		return value.Value{}, errs.New(errs.KindInvalidArgumentType, n.sp, "interval count is not a number (%s)", cv.Kind())
	}
	scaled, err := num.Mul(value.NewInt(n.micros))
	if err != nil {
		return value.Value{}, errs.Wrap(errs.KindIntegerOverflow, n.sp, err, "interval overflow")
	}
	i64, ok := scaled.Int64()
	if !ok {
		return value.Value{}, errs.New(errs.KindIntegerOverflow, n.sp, "interval does not fit in 64 bits")
	}
	return value.FromInterval(value.Interval(i64)), nil
}

// NewInterval looks up unit and folds to a Constant when count is already
// constant. Interval overflow at the minimum int64 boundary is accepted
// as-is rather than specially clamped.
func NewInterval(count Compiled, unit string, sp span.Span) (Compiled, error) {
	micros, ok := intervalUnitMicros[unit]
	if !ok {
		return nil, errs.New(errs.KindInvalidArguments, sp, "unknown interval unit %q", unit)
	}
	n := &intervalNode{count: count, micros: micros, sp: sp}
	if v, ok := AsConstant(count); ok {
		folded, err := n.evalConstant(v)
		if err != nil {
			return nil, err
		}
		return Constant{Value: folded, Span: sp}, nil
	}
	return n, nil
}

func (n *intervalNode) evalConstant(cv value.Value) (value.Value, error) {
	if cv.IsNull() {
		return value.Null(), nil
	}
	num, ok := cv.Number()
	if !ok {
		return value.Value{}, errs.New(errs.KindInvalidArgumentType, n.sp, "interval count is not a number (%s)", cv.Kind())
	}
	scaled, err := num.Mul(value.NewInt(n.micros))
	if err != nil {
		return value.Value{}, errs.Wrap(errs.KindIntegerOverflow, n.sp, err, "interval overflow")
	}
	i64, ok := scaled.Int64()
	if !ok {
		return value.Value{}, errs.New(errs.KindIntegerOverflow, n.sp, "interval does not fit in 64 bits")
	}
	return value.FromInterval(value.Interval(i64)), nil
}
