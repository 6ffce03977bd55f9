package functions

import (
	"encoding/hex"

	"github.com/sqldef/tablegen/internal/compiler"
	"github.com/sqldef/tablegen/internal/span"
	"github.com/sqldef/tablegen/internal/value"
)

// impureFunc is the rand.* counterpart to simpleFunc: it never folds (every
// call must draw fresh from state.rng), so Compile only validates arity and
// wraps apply in a *compiler.GenericCall whose Eval supplies the real span.
type impureFunc struct {
	name     string
	min, max int
	apply    func(ctx compiler.EvalContext, args []value.Value, sp span.Span) (value.Value, error)
}

func (f impureFunc) Pure() bool { return false }

func (f impureFunc) Compile(cc *compiler.CompileContext, sp span.Span, args []compiler.Compiled) (compiler.Compiled, error) {
	if err := compiler.RequireArgCount(f.name, sp, args, f.min, f.max); err != nil {
		return nil, err
	}
	return &compiler.GenericCall{
		FnName: f.name,
		Args:   args,
		Span:   sp,
		Apply: func(ctx compiler.EvalContext, vals []value.Value) (value.Value, error) {
			return f.apply(ctx, vals, sp)
		},
	}, nil
}

func newImpureFunc(name string, min, max int, apply func(ctx compiler.EvalContext, args []value.Value, sp span.Span) (value.Value, error)) compiler.Func {
	return impureFunc{name: name, min: min, max: max, apply: apply}
}

func formatUUID(b [16]byte) string {
	var out [36]byte
	hex.Encode(out[0:8], b[0:4])
	out[8] = '-'
	hex.Encode(out[9:13], b[4:6])
	out[13] = '-'
	hex.Encode(out[14:18], b[6:8])
	out[18] = '-'
	hex.Encode(out[19:23], b[8:10])
	out[23] = '-'
	hex.Encode(out[24:36], b[10:16])
	return string(out[:])
}
