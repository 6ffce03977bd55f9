package genrow

import (
	"github.com/sqldef/tablegen/internal/compiler"
	"github.com/sqldef/tablegen/internal/errs"
	"github.com/sqldef/tablegen/internal/eval"
	"github.com/sqldef/tablegen/internal/format"
)

// tableState pairs a table with its writer and the two flags that drive
// the header/separator and trailer decisions.
type tableState struct {
	table  *CompiledTable
	writer format.Writer
	fresh  bool // not yet visited this WriteRow() call
	empty  bool // no rows written since the last trailer (or ever)
}

// Env drives one shard's tables through repeated WriteRow calls, fanning
// each root row out to its derived children.
type Env struct {
	tables []*tableState
	state  *eval.State
}

// NewEnv builds an Env over tables, using newWriter to construct each
// table's output sink (one call per table, in declaration order).
func NewEnv(tables []*CompiledTable, state *eval.State, newWriter func(*CompiledTable) (format.Writer, error)) (*Env, error) {
	ts := make([]*tableState, len(tables))
	for i, t := range tables {
		w, err := newWriter(t)
		if err != nil {
			return nil, err
		}
		ts[i] = &tableState{table: t, writer: w, fresh: true, empty: true}
	}
	return &Env{tables: ts, state: state}, nil
}

// WriteRow emits one row from every table that is a root this round (i.e.
// not reached as some other root's derived descendant), recursing into
// derived children, then advances state.row_num.
func (e *Env) WriteRow() error {
	for _, t := range e.tables {
		t.fresh = true
	}
	for i := range e.tables {
		if !e.tables[i].fresh {
			continue
		}
		e.markDescendantsVisited(i)
		e.state.SetSubRowNum(1)
		if err := e.writeOneRow(i); err != nil {
			return err
		}
	}
	e.state.AdvanceRow()
	return nil
}

func (e *Env) markDescendantsVisited(root int) {
	stack := []int{root}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		t := e.tables[id]
		t.fresh = false
		for _, child := range t.table.Children {
			stack = append(stack, child.ChildIndex)
		}
	}
}

func (e *Env) writeOneRow(idx int) error {
	t := e.tables[idx]

	if t.empty {
		if err := t.writer.WriteHeader(t.table.QualifiedName); err != nil {
			return err
		}
		t.empty = false
	} else {
		if err := t.writer.WriteRowSeparator(); err != nil {
			return err
		}
	}

	for i, col := range t.table.Columns {
		if i != 0 {
			if err := t.writer.WriteValueSeparator(); err != nil {
				return err
			}
		}
		v, err := col.Eval(e.state)
		if err != nil {
			return err
		}
		if err := t.writer.WriteValue(v); err != nil {
			return err
		}
	}

	for _, child := range t.table.Children {
		countVal, err := child.Count.Eval(e.state)
		if err != nil {
			return err
		}
		n, ok := countVal.Number()
		if !ok {
			return errs.New(errs.KindInvalidArgumentType, child.Count.SpanOf(), "derived child row count must be a number")
		}
		count, ok := n.Int64()
		if !ok {
			return errs.New(errs.KindInvalidArgumentType, child.Count.SpanOf(), "derived child row count must be an integer")
		}
		for r := int64(1); r <= count; r++ {
			e.state.SetSubRowNum(r)
			if err := e.writeOneRow(child.ChildIndex); err != nil {
				return err
			}
		}
	}

	return nil
}

// Finish emits a trailer on every table that has written at least one row
// since its last trailer, resetting it back to the empty state.
func (e *Env) Finish() error {
	for _, t := range e.tables {
		if !t.empty {
			if err := t.writer.WriteTrailer(); err != nil {
				return err
			}
			t.empty = true
		}
	}
	return nil
}
