// Package compiler lowers a parsed template (internal/ast) into a tree of
// Compiled nodes, folding constants as deeply as possible. Functions are
// one small interface (Func) dispatched through a name->implementation
// table rather than a large switch over AST node kinds.
package compiler

import (
	"time"

	"github.com/sqldef/tablegen/internal/errs"
	"github.com/sqldef/tablegen/internal/randengine"
	"github.com/sqldef/tablegen/internal/span"
	"github.com/sqldef/tablegen/internal/value"
)

// EvalContext is the runtime surface a Compiled node needs: the per-shard
// counters, RNG, variable slots, and time zone. internal/eval.State
// implements this; the compiler package never imports eval, avoiding a
// cycle (eval depends on compiler, not the reverse).
type EvalContext interface {
	RowNum() int64
	SubRowNum() int64
	Variable(slot int) (value.Value, error)
	RNG() randengine.Engine
	Zone() *time.Location
}

// Compiled is any node in the compiled expression tree.
type Compiled interface {
	Eval(ctx EvalContext) (value.Value, error)
	SpanOf() span.Span
}

// CompileContext carries the information available at compile time: the
// output time zone and the variable-name -> slot assignment established
// while compiling global ("SET") expressions.
type CompileContext struct {
	Zone     *time.Location
	VarSlots map[string]int
	MaxRepeat int // not read by rand.regex, which applies its own default of 100 when max_repeat is omitted
}

func NewCompileContext(zone *time.Location) *CompileContext {
	return &CompileContext{Zone: zone, VarSlots: map[string]int{}, MaxRepeat: 100}
}

// Constant is a compile-time-folded value; its Eval is trivial.
type Constant struct {
	Value value.Value
	Span  span.Span
}

func (c Constant) Eval(EvalContext) (value.Value, error) { return c.Value, nil }
func (c Constant) SpanOf() span.Span                     { return c.Span }

// AsConstant reports whether c is a folded Constant.
func AsConstant(c Compiled) (value.Value, bool) {
	k, ok := c.(Constant)
	if !ok {
		return value.Value{}, false
	}
	return k.Value, true
}

// AllConstant reports whether every node in args is a Constant, returning
// their values in order.
func AllConstant(args []Compiled) ([]value.Value, bool) {
	vals := make([]value.Value, len(args))
	for i, a := range args {
		v, ok := AsConstant(a)
		if !ok {
			return nil, false
		}
		vals[i] = v
	}
	return vals, true
}

type rowNumNode struct{ sp span.Span }

func (n rowNumNode) Eval(ctx EvalContext) (value.Value, error) {
	return value.FromNumber(value.NewInt(ctx.RowNum())), nil
}
func (n rowNumNode) SpanOf() span.Span { return n.sp }

func NewRowNum(sp span.Span) Compiled { return rowNumNode{sp} }

type subRowNumNode struct{ sp span.Span }

func (n subRowNumNode) Eval(ctx EvalContext) (value.Value, error) {
	return value.FromNumber(value.NewInt(ctx.SubRowNum())), nil
}
func (n subRowNumNode) SpanOf() span.Span { return n.sp }

func NewSubRowNum(sp span.Span) Compiled { return subRowNumNode{sp} }

type variableNode struct {
	slot int
	sp   span.Span
}

func (n variableNode) Eval(ctx EvalContext) (value.Value, error) { return ctx.Variable(n.slot) }
func (n variableNode) SpanOf() span.Span                         { return n.sp }

func NewVariable(slot int, sp span.Span) Compiled { return variableNode{slot, sp} }

// GenericCall re-evaluates its Args every call and applies Apply to the
// resulting Values: the node's shape never changes across calls, it simply
// recomputes from freshly evaluated arguments (which, for distribution
// functions, means a fresh RNG draw on every row).
type GenericCall struct {
	FnName string
	Args   []Compiled
	Apply  func(ctx EvalContext, args []value.Value) (value.Value, error)
	Span   span.Span
}

func (c *GenericCall) Eval(ctx EvalContext) (value.Value, error) {
	vals := make([]value.Value, len(c.Args))
	for i, a := range c.Args {
		v, err := a.Eval(ctx)
		if err != nil {
			return value.Value{}, err
		}
		vals[i] = v
	}
	v, err := c.Apply(ctx, vals)
	if err != nil {
		if _, ok := err.(*errs.Error); ok {
			return value.Value{}, err
		}
		return value.Value{}, errs.Wrap(errs.KindInvalidArguments, c.Span, err, "%s", c.FnName)
	}
	return v, nil
}

func (c *GenericCall) SpanOf() span.Span { return c.Span }

// TryFold attempts compile-time constant folding: if fn is pure and every
// argument is already Constant, apply is invoked once at compile time and
// the result wrapped as a Constant. Returns ok=false when folding does not
// apply (impure function, or not all arguments constant); the caller
// should then build a runtime node (typically *GenericCall).
func TryFold(pure bool, sp span.Span, args []Compiled, apply func(args []value.Value) (value.Value, error)) (Compiled, bool, error) {
	if !pure {
		return nil, false, nil
	}
	vals, ok := AllConstant(args)
	if !ok {
		return nil, false, nil
	}
	v, err := apply(vals)
	if err != nil {
		return nil, true, err
	}
	return Constant{Value: v, Span: sp}, true, nil
}
