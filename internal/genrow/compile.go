// Package genrow implements row orchestration: compiling a parsed
// Template's tables into a form the write pipeline can drive row by row,
// and the depth-first root/derived-child visit that fans a single
// WriteRow call out across a table and all of its descendants.
package genrow

import (
	"github.com/sqldef/tablegen/internal/ast"
	"github.com/sqldef/tablegen/internal/compiler"
	"github.com/sqldef/tablegen/internal/errs"
)

// CompiledChild is a derived-child edge: the index (into the owning
// Template's table slice) of the child table, and the compiled expression
// producing its per-parent-row repetition count.
type CompiledChild struct {
	ChildIndex int
	Count      compiler.Compiled
}

// CompiledTable is one CREATE TABLE declaration reduced to its compiled
// row-generating form: one Compiled expression per directive-bearing
// column (columns without a `{{ ... }}` directive contribute no value and
// are skipped), plus its derived children.
type CompiledTable struct {
	QualifiedName string
	Body          string
	ColumnNames   []string
	Columns       []compiler.Compiled
	Children      []CompiledChild
}

// Compile lowers every table in tmpl against reg/cc, resolving derived
// children by name to table index. Tables keep the declaration order of
// tmpl.Tables; child references must name a table declared somewhere in
// the same template.
func Compile(tmpl *ast.Template, reg *compiler.Registry, cc *compiler.CompileContext) ([]*CompiledTable, error) {
	index := make(map[string]int, len(tmpl.Tables))
	for i, t := range tmpl.Tables {
		index[t.QualifiedName] = i
	}

	out := make([]*CompiledTable, len(tmpl.Tables))
	for i, t := range tmpl.Tables {
		ct := &CompiledTable{QualifiedName: t.QualifiedName, Body: t.Body}
		for _, col := range t.Columns {
			if col.Expr == nil {
				continue
			}
			c, err := reg.Lower(col.Expr, cc)
			if err != nil {
				return nil, err
			}
			ct.ColumnNames = append(ct.ColumnNames, col.Name)
			ct.Columns = append(ct.Columns, c)
		}
		for _, dc := range t.Children {
			childIdx, ok := index[dc.ChildName]
			if !ok {
				return nil, errs.New(errs.KindParseTemplate, dc.Span, "derived child %q references unknown table", dc.ChildName)
			}
			countCompiled, err := reg.Lower(dc.Count, cc)
			if err != nil {
				return nil, err
			}
			ct.Children = append(ct.Children, CompiledChild{ChildIndex: childIdx, Count: countCompiled})
		}
		out[i] = ct
	}
	return out, nil
}
