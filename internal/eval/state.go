// Package eval implements compiler.EvalContext: the mutable per-shard state
// (row/sub-row counters, pre-evaluated global-variable slots, RNG, zone)
// threaded through a compiled expression tree's Eval calls.
package eval

import (
	"time"

	"github.com/sqldef/tablegen/internal/compiler"
	"github.com/sqldef/tablegen/internal/errs"
	"github.com/sqldef/tablegen/internal/randengine"
	"github.com/sqldef/tablegen/internal/span"
	"github.com/sqldef/tablegen/internal/value"
)

// State is a shard's mutable evaluation context. It is owned and mutated
// by exactly one goroutine.
type State struct {
	rowNum    int64
	subRowNum int64
	vars      []value.Value
	rng       randengine.Engine
	zone      *time.Location
}

var _ compiler.EvalContext = (*State)(nil)

// New builds a shard's State. vars holds the already-evaluated global
// expression slots (shared, read-only, across shards; see NewGlobalShard).
func New(rng randengine.Engine, zone *time.Location, vars []value.Value) *State {
	return &State{rng: rng, zone: zone, vars: vars}
}

// NewGlobalShard builds the synthetic row_num=0 shard used to evaluate a
// template's global variable-producing expressions once, before any real
// shard starts.
func NewGlobalShard(rng randengine.Engine, zone *time.Location) *State {
	return &State{rng: rng, zone: zone}
}

func (s *State) RowNum() int64    { return s.rowNum }
func (s *State) SubRowNum() int64 { return s.subRowNum }
func (s *State) RNG() randengine.Engine  { return s.rng }
func (s *State) Zone() *time.Location    { return s.zone }

func (s *State) Variable(slot int) (value.Value, error) {
	if slot < 0 || slot >= len(s.vars) {
		return value.Value{}, errs.New(errs.KindUnknownIdentifier, span.Null, "variable slot %d out of range (have %d)", slot, len(s.vars))
	}
	return s.vars[slot], nil
}

// SetVars installs the evaluated global-expression slots, called once after
// NewGlobalShard's CompileContext finishes evaluating them.
func (s *State) SetVars(vars []value.Value) { s.vars = vars }

// SetRowNum seeds the starting row_num for a shard, per the partitioning
// rule starting row_num = (i-1)*N*R + 1.
func (s *State) SetRowNum(n int64) { s.rowNum = n }

// AdvanceRow increments row_num by one, called after a root row (and all
// of its descendants) finishes.
func (s *State) AdvanceRow() { s.rowNum++ }

// SetSubRowNum sets the current derived-child repetition counter.
func (s *State) SetSubRowNum(r int64) { s.subRowNum = r }

// EvalGlobals evaluates each compiled global expression against a synthetic
// shard in declaration order, so later globals may reference earlier slots
// (each slot becomes visible to Variable only once its own expression has
// been evaluated).
func EvalGlobals(globals []compiler.Compiled, rng randengine.Engine, zone *time.Location) ([]value.Value, error) {
	shard := NewGlobalShard(rng, zone)
	vars := make([]value.Value, len(globals))
	for i, g := range globals {
		shard.vars = vars[:i]
		v, err := g.Eval(shard)
		if err != nil {
			return nil, err
		}
		vars[i] = v
	}
	shard.vars = vars
	return vars, nil
}
