// Package ast is the parser's output: a template broken into table
// declarations and DSL expressions, every node carrying a span back into
// the source text.
package ast

import "github.com/sqldef/tablegen/internal/span"

// Template is the parsed form of an entire input file: zero or more table
// declarations plus any "SET" global-expression statements.
type Template struct {
	Tables  []*Table
	Globals []*GlobalAssign
}

// GlobalAssign is a `SET ident = expr` statement; its expressions are
// evaluated once, in a synthetic shard, before any real shard starts.
type GlobalAssign struct {
	Name string
	Expr Expr
	Span span.Span
}

// Table is one `CREATE TABLE qname ( columns ) options` declaration.
type Table struct {
	QualifiedName string
	Columns       []*Column
	Body          string // verbatim CREATE TABLE text, for schema emission
	Children      []*DerivedChild
	Span          span.Span
}

// Column is one column of a CREATE TABLE: its SQL type tokens (kept
// verbatim for schema emission) plus an optional compiled-at-runtime value
// expression.
type Column struct {
	Name     string
	TypeText string // the raw type/constraint tokens between name and the directive
	Expr     Expr   // nil if the column has no {{ ... }} directive
	Span     span.Span
}

// DerivedChild declares `{{for each row of parent generate <expr> rows of
// child}}`: the child table (by name, resolved to an index after all
// tables are parsed) and the per-parent-row multiplicity expression.
type DerivedChild struct {
	ChildName string
	Count     Expr
	Span      span.Span
}

// Expr is any DSL expression node.
type Expr interface {
	exprNode()
	SpanOf() span.Span
}

type baseExpr struct{ Span span.Span }

func (baseExpr) exprNode()          {}
func (b baseExpr) SpanOf() span.Span { return b.Span }

// Literal is a parsed constant: number, string, bool, or null keyword.
type Literal struct {
	baseExpr
	Kind LiteralKind
	Num  string // raw numeric text, for Number parsing
	Str  string // raw (already-unescaped) string text
}

type LiteralKind int

const (
	LitNumber LiteralKind = iota
	LitString
	LitNull
)

// RowNum / SubRowNum reference the current row counters.
type RowNum struct{ baseExpr }
type SubRowNum struct{ baseExpr }

// VarRef references a name bound by a `SET` global assignment.
type VarRef struct {
	baseExpr
	Name string
}

// Call is any function application, `dotted.name(args...)`, including
// operators desugared to calls (e.g. `a + b` becomes Call{Name:"+"}).
type Call struct {
	baseExpr
	Name string
	Args []Expr
}

// Subscript is `base[index]`.
type Subscript struct {
	baseExpr
	Base  Expr
	Index Expr
}

// CaseExpr is `CASE value WHEN w1 THEN t1 ... [ELSE e] END`. Value is nil
// for the searched form `CASE WHEN cond THEN t ... END`, where each When is
// itself a boolean expression.
type CaseExpr struct {
	baseExpr
	Value   Expr
	Whens   []Expr
	Thens   []Expr
	Else    Expr
}

// ArrayLit is `ARRAY[e1, e2, ...]`.
type ArrayLit struct {
	baseExpr
	Elems []Expr
}

// TimestampLit is `TIMESTAMP '...'` or `TIMESTAMP WITH TIME ZONE '...'`.
type TimestampLit struct {
	baseExpr
	Text     string
	WithZone bool
}

// IntervalLit is `INTERVAL n unit`.
type IntervalLit struct {
	baseExpr
	Count Expr
	Unit  string
}

// Constructors, used by the parser package (which cannot set the
// unexported baseExpr field directly).

func NewLiteral(kind LiteralKind, raw string, sp span.Span) *Literal {
	l := &Literal{baseExpr: baseExpr{sp}, Kind: kind}
	switch kind {
	case LitNumber:
		l.Num = raw
	case LitString:
		l.Str = raw
	}
	return l
}

func NewRowNum(sp span.Span) *RowNum       { return &RowNum{baseExpr{sp}} }
func NewSubRowNum(sp span.Span) *SubRowNum { return &SubRowNum{baseExpr{sp}} }

func NewVarRef(name string, sp span.Span) *VarRef {
	return &VarRef{baseExpr: baseExpr{sp}, Name: name}
}

func NewCall(name string, args []Expr, sp span.Span) *Call {
	return &Call{baseExpr: baseExpr{sp}, Name: name, Args: args}
}

func NewSubscript(base, index Expr, sp span.Span) *Subscript {
	return &Subscript{baseExpr: baseExpr{sp}, Base: base, Index: index}
}

func NewCaseExpr(value Expr, whens, thens []Expr, elseExpr Expr, sp span.Span) *CaseExpr {
	return &CaseExpr{baseExpr: baseExpr{sp}, Value: value, Whens: whens, Thens: thens, Else: elseExpr}
}

func NewArrayLit(elems []Expr, sp span.Span) *ArrayLit {
	return &ArrayLit{baseExpr: baseExpr{sp}, Elems: elems}
}

func NewTimestampLit(text string, withZone bool, sp span.Span) *TimestampLit {
	return &TimestampLit{baseExpr: baseExpr{sp}, Text: text, WithZone: withZone}
}

func NewIntervalLit(count Expr, unit string, sp span.Span) *IntervalLit {
	return &IntervalLit{baseExpr: baseExpr{sp}, Count: count, Unit: unit}
}
