package compiler

import (
	"fmt"
	"strings"

	"github.com/sqldef/tablegen/internal/ast"
	"github.com/sqldef/tablegen/internal/errs"
	"github.com/sqldef/tablegen/internal/value"
	"github.com/sqldef/tablegen/util"
)

// Lower walks an ast.Expr bottom-up, compiling each node via the registry
// and folding constants as deeply as possible.
func (r *Registry) Lower(e ast.Expr, cc *CompileContext) (Compiled, error) {
	switch n := e.(type) {
	case *ast.Literal:
		return r.lowerLiteral(n)

	case *ast.RowNum:
		return NewRowNum(n.SpanOf()), nil

	case *ast.SubRowNum:
		return NewSubRowNum(n.SpanOf()), nil

	case *ast.VarRef:
		slot, ok := cc.VarSlots[n.Name]
		if !ok {
			return nil, errs.New(errs.KindUnknownIdentifier, n.SpanOf(), "unknown identifier %q (known: %s)", n.Name, knownVarNames(cc))
		}
		return NewVariable(slot, n.SpanOf()), nil

	case *ast.Call:
		args := make([]Compiled, len(n.Args))
		for i, a := range n.Args {
			c, err := r.Lower(a, cc)
			if err != nil {
				return nil, err
			}
			args[i] = c
		}
		return r.Compile(n.Name, cc, n.SpanOf(), args)

	case *ast.Subscript:
		base, err := r.Lower(n.Base, cc)
		if err != nil {
			return nil, err
		}
		idx, err := r.Lower(n.Index, cc)
		if err != nil {
			return nil, err
		}
		return NewSubscript(base, idx, n.SpanOf()), nil

	case *ast.CaseExpr:
		var valueC Compiled
		if n.Value != nil {
			v, err := r.Lower(n.Value, cc)
			if err != nil {
				return nil, err
			}
			valueC = v
		}
		whens := make([]Compiled, len(n.Whens))
		thens := make([]Compiled, len(n.Thens))
		for i := range n.Whens {
			w, err := r.Lower(n.Whens[i], cc)
			if err != nil {
				return nil, err
			}
			t, err := r.Lower(n.Thens[i], cc)
			if err != nil {
				return nil, err
			}
			whens[i], thens[i] = w, t
		}
		var elseC Compiled
		if n.Else != nil {
			e2, err := r.Lower(n.Else, cc)
			if err != nil {
				return nil, err
			}
			elseC = e2
		}
		return NewCase(valueC, whens, thens, elseC, n.SpanOf()), nil

	case *ast.ArrayLit:
		elems := make([]Compiled, len(n.Elems))
		for i, el := range n.Elems {
			c, err := r.Lower(el, cc)
			if err != nil {
				return nil, err
			}
			elems[i] = c
		}
		return NewArray(elems, n.SpanOf()), nil

	case *ast.TimestampLit:
		// WithZone means the literal carries a trailing IANA zone name
		// inside Text; ParseTimestamp detects and strips it either way.
		ts, err := value.ParseTimestamp(n.Text, "", cc.Zone)
		if err != nil {
			return nil, errs.Wrap(errs.KindInvalidTimestampString, n.SpanOf(), err, "invalid timestamp literal %q", n.Text)
		}
		return Constant{Value: value.FromTimestamp(ts), Span: n.SpanOf()}, nil

	case *ast.IntervalLit:
		count, err := r.Lower(n.Count, cc)
		if err != nil {
			return nil, err
		}
		return NewInterval(count, n.Unit, n.SpanOf())

	default:
		return nil, fmt.Errorf("compiler: unhandled ast node %T", e)
	}
}

// knownVarNames renders cc's declared global-variable names in a stable
// order for an "unknown identifier" diagnostic, so the message does not
// vary across runs with Go's randomized map order.
func knownVarNames(cc *CompileContext) string {
	var names []string
	for name := range util.CanonicalMapIter(cc.VarSlots) {
		names = append(names, name)
	}
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, ", ")
}

func (r *Registry) lowerLiteral(n *ast.Literal) (Compiled, error) {
	switch n.Kind {
	case ast.LitNumber:
		num, err := value.ParseNumberLiteral(n.Num)
		if err != nil {
			return nil, errs.Wrap(errs.KindParseTemplate, n.SpanOf(), err, "invalid number literal")
		}
		return Constant{Value: value.FromNumber(num), Span: n.SpanOf()}, nil
	case ast.LitString:
		return Constant{Value: value.FromString(n.Str), Span: n.SpanOf()}, nil
	case ast.LitNull:
		return Constant{Value: value.Null(), Span: n.SpanOf()}, nil
	default:
		return nil, fmt.Errorf("compiler: unhandled literal kind %v", n.Kind)
	}
}

// CompileGlobals lowers each SET expression (evaluation happens later,
// against the synthetic global shard) and assigns it a slot in
// cc.VarSlots, in declaration order, so later SET statements and table
// columns may reference earlier ones.
func (r *Registry) CompileGlobals(globals []*ast.GlobalAssign, cc *CompileContext) ([]Compiled, error) {
	out := make([]Compiled, len(globals))
	for i, g := range globals {
		c, err := r.Lower(g.Expr, cc)
		if err != nil {
			return nil, err
		}
		out[i] = c
		cc.VarSlots[g.Name] = i
	}
	return out, nil
}
