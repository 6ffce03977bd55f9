// Package functions registers the DSL's built-in function set with a
// compiler.Registry, one file per family.
package functions

import (
	"github.com/sqldef/tablegen/internal/compiler"
	"github.com/sqldef/tablegen/internal/errs"
	"github.com/sqldef/tablegen/internal/span"
	"github.com/sqldef/tablegen/internal/value"
)

func argNumber(v value.Value, sp span.Span, name string) (value.Number, error) {
	n, ok := v.Number()
	if !ok {
		return value.Number{}, errs.New(errs.KindInvalidArgumentType, sp, "%s: expected number, got %s", name, v.Kind())
	}
	return n, nil
}

func argInt64(v value.Value, sp span.Span, name string) (int64, error) {
	n, err := argNumber(v, sp, name)
	if err != nil {
		return 0, err
	}
	i, ok := n.Int64()
	if !ok {
		return 0, errs.New(errs.KindInvalidArgumentType, sp, "%s: expected integer", name)
	}
	return i, nil
}

func argBytes(v value.Value, sp span.Span, name string) (value.ByteString, error) {
	b, ok := v.Bytes()
	if !ok {
		return value.ByteString{}, errs.New(errs.KindInvalidArgumentType, sp, "%s: expected string/bytes, got %s", name, v.Kind())
	}
	return b, nil
}

func argArray(v value.Value, sp span.Span, name string) (*value.Array, error) {
	a, ok := v.Array()
	if !ok {
		return nil, errs.New(errs.KindInvalidArgumentType, sp, "%s: expected array, got %s", name, v.Kind())
	}
	return a, nil
}

func argFloat64(v value.Value, sp span.Span, name string) (float64, error) {
	n, err := argNumber(v, sp, name)
	if err != nil {
		return 0, err
	}
	return n.Float64(), nil
}

// simpleFunc adapts a plain (ctx, args, sp) -> (Value, error) function into
// a compiler.Func: when pure and every arg is constant it folds at compile
// time (via compiler.TryFold), otherwise it builds a *compiler.GenericCall
// that re-applies on every Eval. sp is always the call's own span, so
// errors built from it (e.g. division by zero) point at the offending
// construct even when folded at compile time.
type simpleFunc struct {
	name  string
	pure  bool
	arity func(sp span.Span, args []compiler.Compiled) error
	apply func(ctx compiler.EvalContext, args []value.Value, sp span.Span) (value.Value, error)
}

func (f *simpleFunc) Pure() bool { return f.pure }

func (f *simpleFunc) Compile(cc *compiler.CompileContext, sp span.Span, args []compiler.Compiled) (compiler.Compiled, error) {
	if f.arity != nil {
		if err := f.arity(sp, args); err != nil {
			return nil, err
		}
	}
	if folded, ok, err := compiler.TryFold(f.pure, sp, args, func(vals []value.Value) (value.Value, error) {
		return f.apply(nil, vals, sp)
	}); ok {
		if err != nil {
			return nil, err
		}
		return folded, nil
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

func newFunc(name string, pure bool, minArgs, maxArgs int, apply func(ctx compiler.EvalContext, args []value.Value, sp span.Span) (value.Value, error)) *simpleFunc {
	return &simpleFunc{
		name: name,
		pure: pure,
		arity: func(sp span.Span, args []compiler.Compiled) error {
			return compiler.RequireArgCount(name, sp, args, minArgs, maxArgs)
		},
		apply: apply,
	}
}

// Register installs every function family into reg.
func Register(reg *compiler.Registry) {
	registerRand(reg)
	registerOps(reg)
	registerStringFuncs(reg)
	registerArrayFuncs(reg)
	registerCodecFuncs(reg)
	registerTimeFuncs(reg)
	registerDebugFuncs(reg)
}
