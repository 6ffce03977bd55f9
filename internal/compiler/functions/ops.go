package functions

import (
	"github.com/sqldef/tablegen/internal/compiler"
	"github.com/sqldef/tablegen/internal/errs"
	"github.com/sqldef/tablegen/internal/span"
	"github.com/sqldef/tablegen/internal/value"
)

// arithFunc wraps a Number-Number-Number operator, propagating NULL.
func arithFunc(name string, op func(a, b value.Number) (value.Number, error)) *simpleFunc {
	return newFunc(name, true, 2, 2, func(_ compiler.EvalContext, args []value.Value, sp span.Span) (value.Value, error) {
		if args[0].IsNull() || args[1].IsNull() {
			return value.Null(), nil
		}
		a, err := argNumber(args[0], sp, name)
		if err != nil {
			return value.Value{}, err
		}
		b, err := argNumber(args[1], sp, name)
		if err != nil {
			return value.Value{}, err
		}
		r, err := op(a, b)
		if err != nil {
			kind := errs.KindIntegerOverflow
			if err == value.ErrDivByZero {
				kind = errs.KindDivisionByZero
			}
			return value.Value{}, errs.Wrap(kind, sp, err, "%s", name)
		}
		return value.FromNumber(r), nil
	})
}

func cmpFunc(name string, accept func(value.Ordering) bool) *simpleFunc {
	return newFunc(name, true, 2, 2, func(_ compiler.EvalContext, args []value.Value, sp span.Span) (value.Value, error) {
		ord, err := args[0].SQLCmp(args[1])
		if err != nil {
			return value.Value{}, errs.Wrap(errs.KindInvalidArgumentType, sp, err, "%s", name)
		}
		if ord == value.OrdNull {
			return value.Null(), nil
		}
		return boolVal(accept(ord)), nil
	})
}

func boolVal(b bool) value.Value {
	if b {
		return value.FromNumber(value.NewInt(1))
	}
	return value.FromNumber(value.NewInt(0))
}

func registerOps(reg *compiler.Registry) {
	reg.Register("+", arithFunc("+", value.Number.Add))
	reg.Register("-", arithFunc("-", value.Number.Sub))
	reg.Register("*", arithFunc("*", value.Number.Mul))
	reg.Register("/", arithFunc("/", value.Number.Div))
	reg.Register("div", arithFunc("div", value.Number.IntDiv))
	reg.Register("mod", arithFunc("mod", value.Number.Mod))

	reg.Register("neg", newFunc("neg", true, 1, 1, func(_ compiler.EvalContext, args []value.Value, sp span.Span) (value.Value, error) {
		if args[0].IsNull() {
			return value.Null(), nil
		}
		n, err := argNumber(args[0], sp, "neg")
		if err != nil {
			return value.Value{}, err
		}
		r, err := n.Neg()
		if err != nil {
			return value.Value{}, errs.Wrap(errs.KindIntegerOverflow, sp, err, "neg")
		}
		return value.FromNumber(r), nil
	}))

	reg.Register("round", newFunc("round", true, 1, 2, func(_ compiler.EvalContext, args []value.Value, sp span.Span) (value.Value, error) {
		if args[0].IsNull() {
			return value.Null(), nil
		}
		n, err := argNumber(args[0], sp, "round")
		if err != nil {
			return value.Value{}, err
		}
		d := 0
		if len(args) == 2 && !args[1].IsNull() {
			d64, err := argInt64(args[1], sp, "round")
			if err != nil {
				return value.Value{}, err
			}
			d = int(d64)
		}
		return value.FromNumber(n.Round(d)), nil
	}))

	reg.Register("<", cmpFunc("<", func(o value.Ordering) bool { return o == value.OrdLess }))
	reg.Register("<=", cmpFunc("<=", func(o value.Ordering) bool { return o == value.OrdLess || o == value.OrdEqual }))
	reg.Register("=", cmpFunc("=", func(o value.Ordering) bool { return o == value.OrdEqual }))
	reg.Register(">", cmpFunc(">", func(o value.Ordering) bool { return o == value.OrdGreater }))
	reg.Register(">=", cmpFunc(">=", func(o value.Ordering) bool { return o == value.OrdGreater || o == value.OrdEqual }))
	reg.Register("<>", cmpFunc("<>", func(o value.Ordering) bool { return o != value.OrdEqual }))

	reg.Register("is", newFunc("is", true, 2, 2, func(_ compiler.EvalContext, args []value.Value, _ span.Span) (value.Value, error) {
		return boolVal(args[0].IdentityEqual(args[1])), nil
	}))
	reg.Register("is_not", newFunc("is_not", true, 2, 2, func(_ compiler.EvalContext, args []value.Value, _ span.Span) (value.Value, error) {
		return boolVal(!args[0].IdentityEqual(args[1])), nil
	}))

	reg.Register("not", newFunc("not", true, 1, 1, func(_ compiler.EvalContext, args []value.Value, sp span.Span) (value.Value, error) {
		if args[0].IsNull() {
			return value.Null(), nil
		}
		n, ok := args[0].Number()
		if !ok {
			return value.Value{}, errs.New(errs.KindInvalidArgumentType, sp, "not: expected boolean")
		}
		return boolVal(n.Cmp(value.NewInt(0)) == 0), nil
	}))

	// "and"/"or" need short-circuit control flow, so they bypass
	// simpleFunc/GenericCall and build compiler's dedicated nodes directly.
	reg.Register("and", andOrFunc(true))
	reg.Register("or", andOrFunc(false))

	reg.Register("coalesce", newFunc("coalesce", true, 1, -1, func(_ compiler.EvalContext, args []value.Value, _ span.Span) (value.Value, error) {
		for _, a := range args {
			if !a.IsNull() {
				return a, nil
			}
		}
		return value.Null(), nil
	}))

	reg.Register("least", extremumFunc("least", func(o value.Ordering) bool { return o == value.OrdLess }))
	reg.Register("greatest", extremumFunc("greatest", func(o value.Ordering) bool { return o == value.OrdGreater }))

	reg.Register("||", newFunc("||", true, 2, 2, func(_ compiler.EvalContext, args []value.Value, sp span.Span) (value.Value, error) {
		if args[0].IsNull() || args[1].IsNull() {
			return value.Null(), nil
		}
		a, err := argBytes(args[0], sp, "||")
		if err != nil {
			return value.Value{}, err
		}
		b, err := argBytes(args[1], sp, "||")
		if err != nil {
			return value.Value{}, err
		}
		return value.FromBytes(a.Extend(b)), nil
	}))
}

// andOrFunc wraps compiler.NewAnd/NewOr as a Func so they install into the
// same registry as everything else, while still short-circuiting and
// propagating NULL per 3-valued logic (never folded, since
// folding would need the same short-circuit logic the runtime node already
// implements correctly).
type andOrWrap struct{ isAnd bool }

func (w andOrWrap) Pure() bool { return false }

func (w andOrWrap) Compile(cc *compiler.CompileContext, sp span.Span, args []compiler.Compiled) (compiler.Compiled, error) {
	if err := compiler.RequireArgCount("and/or", sp, args, 2, 2); err != nil {
		return nil, err
	}
	if w.isAnd {
		return compiler.NewAnd(args, sp), nil
	}
	return compiler.NewOr(args, sp), nil
}

func andOrFunc(isAnd bool) compiler.Func { return andOrWrap{isAnd: isAnd} }

func extremumFunc(name string, prefer func(value.Ordering) bool) *simpleFunc {
	return newFunc(name, true, 1, -1, func(_ compiler.EvalContext, args []value.Value, sp span.Span) (value.Value, error) {
		var best value.Value
		found := false
		for _, a := range args {
			if a.IsNull() {
				continue
			}
			if !found {
				best, found = a, true
				continue
			}
			ord, err := a.SQLCmp(best)
			if err != nil {
				return value.Value{}, errs.Wrap(errs.KindInvalidArgumentType, sp, err, "%s", name)
			}
			if prefer(ord) {
				best = a
			}
		}
		if !found {
			return value.Null(), nil
		}
		return best, nil
	})
}
