package functions

import (
	"github.com/sqldef/tablegen/internal/compiler"
	"github.com/sqldef/tablegen/internal/errs"
	"github.com/sqldef/tablegen/internal/span"
	"github.com/sqldef/tablegen/internal/value"
)

// timestampFunc implements timestamp(str) / timestamp_with_time_zone(str).
// Unlike simpleFunc it needs the output zone (cc.Zone at compile time for
// the constant-folding path, ctx.Zone() for the deferred path) so it is its
// own small Func rather than going through newFunc.
type timestampFunc struct {
	name     string
	withZone bool
}

func (f timestampFunc) Pure() bool { return true }

func (f timestampFunc) Compile(cc *compiler.CompileContext, sp span.Span, args []compiler.Compiled) (compiler.Compiled, error) {
	if err := compiler.RequireArgCount(f.name, sp, args, 1, 1); err != nil {
		return nil, err
	}
	parse := func(raw value.Value) (value.Value, error) {
		if raw.IsNull() {
			return value.Null(), nil
		}
		b, err := argBytes(raw, sp, f.name)
		if err != nil {
			return value.Value{}, err
		}
		ts, err := value.ParseTimestamp(b.String(), "", cc.Zone)
		if err != nil {
			return value.Value{}, errs.Wrap(errs.KindInvalidTimestampString, sp, err, f.name)
		}
		return value.FromTimestamp(ts), nil
	}
	if v, ok := compiler.AsConstant(args[0]); ok {
		folded, err := parse(v)
		if err != nil {
			return nil, err
		}
		return compiler.Constant{Value: folded, Span: sp}, nil
	}
	return &compiler.GenericCall{
		FnName: f.name,
		Args:   args,
		Span:   sp,
		Apply: func(ctx compiler.EvalContext, vals []value.Value) (value.Value, error) {
			if vals[0].IsNull() {
				return value.Null(), nil
			}
			b, err := argBytes(vals[0], sp, f.name)
			if err != nil {
				return value.Value{}, err
			}
			ts, err := value.ParseTimestamp(b.String(), "", ctx.Zone())
			if err != nil {
				return value.Value{}, errs.Wrap(errs.KindInvalidTimestampString, sp, err, f.name)
			}
			return value.FromTimestamp(ts), nil
		},
	}, nil
}

func registerTimeFuncs(reg *compiler.Registry) {
	reg.Register("timestamp", timestampFunc{name: "timestamp"})
	reg.Register("timestamp_with_time_zone", timestampFunc{name: "timestamp_with_time_zone", withZone: true})
}
