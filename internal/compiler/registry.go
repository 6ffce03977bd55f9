package compiler

import (
	"github.com/sqldef/tablegen/internal/errs"
	"github.com/sqldef/tablegen/internal/span"
)

// Func is the polymorphic function object behind every registry entry:
// one concrete implementation per DSL function, exposing a single Compile
// operation.
type Func interface {
	// Pure reports whether the function may be constant-folded when every
	// argument is a Constant: true for arithmetic, comparisons, string ops,
	// and codecs; false for anything reading from the RNG.
	Pure() bool
	// Compile type-checks args and returns the Compiled node: a Constant
	// when folding applies, otherwise a runtime node.
	Compile(cc *CompileContext, sp span.Span, args []Compiled) (Compiled, error)
}

// Registry maps a DSL function's dotted name to its implementation.
type Registry struct {
	funcs map[string]Func
}

func NewRegistry() *Registry { return &Registry{funcs: map[string]Func{}} }

func (r *Registry) Register(name string, fn Func) { r.funcs[name] = fn }

func (r *Registry) Lookup(name string) (Func, bool) {
	fn, ok := r.funcs[name]
	return fn, ok
}

// Compile resolves name and dispatches to its Func, producing
// errs.KindUnknownFunction when the name is not registered.
func (r *Registry) Compile(name string, cc *CompileContext, sp span.Span, args []Compiled) (Compiled, error) {
	fn, ok := r.Lookup(name)
	if !ok {
		return nil, errs.New(errs.KindUnknownFunction, sp, "unknown function %q", name)
	}
	return fn.Compile(cc, sp, args)
}

// RequireArgCount validates args is within [min,max] (max<0 means
// unbounded), producing a NotEnoughArguments error otherwise.
func RequireArgCount(name string, sp span.Span, args []Compiled, min, max int) error {
	if len(args) < min || (max >= 0 && len(args) > max) {
		return errs.New(errs.KindNotEnoughArguments, sp, "%s expects between %d and %d arguments, got %d", name, min, max, len(args))
	}
	return nil
}
