// Package parser turns template text into an ast.Template. It accepts a
// superset of SQL CREATE TABLE statements plus `{{ expr }}` placeholders in
// column position: a hand-rolled scanner producing position-tracked tokens
// feeds a recursive-descent expression parser, which also recognizes
// derived-table directives that have no SQL-dialect analogue.
package parser

import (
	"strings"

	"github.com/sqldef/tablegen/internal/ast"
	"github.com/sqldef/tablegen/internal/errs"
	"github.com/sqldef/tablegen/internal/span"
)

// ParseTemplate parses template text into an AST plus the span.Registry
// needed to render diagnostics against it.
func ParseTemplate(text string) (*ast.Template, *span.Registry, error) {
	reg := span.NewRegistry(text)
	p := &parseState{text: text, reg: reg}
	tmpl, err := p.parse()
	if err != nil {
		return nil, reg, err
	}
	if err := resolveChildren(tmpl); err != nil {
		return nil, reg, err
	}
	return tmpl, reg, nil
}

type parseState struct {
	text string
	reg  *span.Registry
}

type pendingDirective struct {
	parentName string
	child      *ast.DerivedChild
}

func (p *parseState) parse() (*ast.Template, error) {
	tmpl := &ast.Template{}
	var pending []pendingDirective
	var lastTable *ast.Table

	for _, s := range splitStatements(p.text) {
		body := trimSpace(s.text)
		if body == "" {
			continue
		}
		upper := strings.ToUpper(body)
		switch {
		case strings.HasPrefix(upper, "CREATE TABLE"):
			t, err := p.parseCreateTable(s)
			if err != nil {
				return nil, err
			}
			tmpl.Tables = append(tmpl.Tables, t)
			lastTable = t

		case strings.HasPrefix(upper, "SET "):
			g, err := p.parseSet(s)
			if err != nil {
				return nil, err
			}
			tmpl.Globals = append(tmpl.Globals, g)

		case strings.HasPrefix(trimSpace(body), "{{"):
			d, parent, err := p.parseDerivedDirective(s)
			if err != nil {
				return nil, err
			}
			pending = append(pending, pendingDirective{parentName: parent, child: d})

		default:
			if lastTable != nil {
				lastTable.Body += ";" + s.text
			}
		}
	}

	for _, pd := range pending {
		attached := false
		for _, t := range tmpl.Tables {
			if t.QualifiedName == pd.parentName {
				t.Children = append(t.Children, pd.child)
				attached = true
				break
			}
		}
		if !attached {
			return nil, errs.New(errs.KindParseTemplate, pd.child.Span,
				"derived-table directive references unknown parent table %q", pd.parentName)
		}
	}
	return tmpl, nil
}

// resolveChildren verifies every DerivedChild.ChildName names a declared table.
func resolveChildren(tmpl *ast.Template) error {
	names := map[string]bool{}
	for _, t := range tmpl.Tables {
		names[t.QualifiedName] = true
	}
	for _, t := range tmpl.Tables {
		for _, c := range t.Children {
			if !names[c.ChildName] {
				return errs.New(errs.KindParseTemplate, c.Span, "derived child table %q is not declared", c.ChildName)
			}
		}
	}
	return nil
}

func (p *parseState) parseCreateTable(s stmt) (*ast.Table, error) {
	text := s.text
	upper := strings.ToUpper(text)
	afterKw := strings.Index(upper, "CREATE TABLE") + len("CREATE TABLE")
	rest := text[afterKw:]
	restStart := s.start + afterKw

	openRel := strings.IndexByte(rest, '(')
	if openRel < 0 {
		return nil, errs.New(errs.KindParseTemplate, p.reg.New(s.start, s.start+len(s.text)),
			"CREATE TABLE is missing a column list")
	}
	name := trimSpace(rest[:openRel])
	closeRel := findMatchingParen(rest, openRel)
	if closeRel < 0 {
		return nil, errs.New(errs.KindParseTemplate, p.reg.New(s.start, s.start+len(s.text)),
			"unbalanced parentheses in CREATE TABLE")
	}
	columnsText := rest[openRel+1 : closeRel]
	columnsStart := restStart + openRel + 1

	table := &ast.Table{
		QualifiedName: unquoteIdent(name),
		Body:          text,
		Span:          p.reg.New(s.start, s.start+len(s.text)),
	}

	offset := 0
	for _, seg := range splitTopLevelCommas(columnsText) {
		segStart := columnsStart + offset
		offset += len(seg) + 1 // account for the comma removed by the split
		trimmed := trimSpace(seg)
		if trimmed == "" {
			continue
		}
		col, err := p.parseColumn(seg, segStart)
		if err != nil {
			return nil, err
		}
		if col != nil {
			table.Columns = append(table.Columns, col)
		}
	}
	return table, nil
}

// parseColumn parses `ident type-tokens ({{ expr }})?`. seg is the raw
// (untrimmed) column text and segStart its absolute offset.
func (p *parseState) parseColumn(seg string, segStart int) (*ast.Column, error) {
	leadTrimmed, leadOffset := trimSpaceOffset(seg)
	if leadTrimmed == "" {
		return nil, nil
	}
	nameEnd := 0
	for nameEnd < len(leadTrimmed) && isIdentByte(leadTrimmed[nameEnd]) {
		nameEnd++
	}
	if nameEnd == 0 {
		return nil, errs.New(errs.KindParseTemplate, p.reg.New(segStart, segStart+len(seg)), "expected column name")
	}
	name := leadTrimmed[:nameEnd]
	rest := leadTrimmed[nameEnd:]
	restOffset := leadOffset + nameEnd

	directiveRel := strings.Index(rest, "{{")
	var typeText string
	var exprNode ast.Expr
	if directiveRel < 0 {
		typeText = trimSpace(rest)
	} else {
		typeText = trimSpace(rest[:directiveRel])
		endRel := strings.Index(rest[directiveRel:], "}}")
		if endRel < 0 {
			return nil, errs.New(errs.KindParseTemplate, p.reg.New(segStart, segStart+len(seg)), "unterminated {{ expression }}")
		}
		exprText := rest[directiveRel+2 : directiveRel+endRel]
		exprBase := segStart + restOffset + directiveRel + 2
		e, err := p.parseExprText(exprText, exprBase)
		if err != nil {
			return nil, err
		}
		exprNode = e
	}

	return &ast.Column{
		Name:     name,
		TypeText: typeText,
		Expr:     exprNode,
		Span:     p.reg.New(segStart, segStart+len(seg)),
	}, nil
}

func (p *parseState) parseSet(s stmt) (*ast.GlobalAssign, error) {
	trimmed, lead := trimSpaceOffset(s.text)
	rest := trimmed[len("SET"):]
	restStart := s.start + lead + len("SET")
	eq := strings.IndexByte(rest, '=')
	if eq < 0 {
		return nil, errs.New(errs.KindParseTemplate, p.reg.New(s.start, s.start+len(s.text)), "SET statement is missing '='")
	}
	name := trimSpace(rest[:eq])
	exprText := rest[eq+1:]
	exprBase := restStart + eq + 1
	e, err := p.parseExprText(exprText, exprBase)
	if err != nil {
		return nil, err
	}
	return &ast.GlobalAssign{Name: name, Expr: e, Span: p.reg.New(s.start, s.start+len(s.text))}, nil
}

// parseDerivedDirective parses `{{for each row of <parent> generate <expr>
// rows of <child>}}`.
func (p *parseState) parseDerivedDirective(s stmt) (*ast.DerivedChild, string, error) {
	text := trimSpace(s.text)
	inner := text
	if strings.HasPrefix(inner, "{{") {
		inner = inner[2:]
	}
	inner = strings.TrimSuffix(inner, "}}")
	fields := strings.Fields(inner)
	// for each row of <parent> generate <expr...> rows of <child>
	if len(fields) < 8 || fields[0] != "for" || fields[1] != "each" || fields[2] != "row" || fields[3] != "of" {
		return nil, "", errs.New(errs.KindParseTemplate, p.reg.New(s.start, s.start+len(s.text)),
			"unrecognized derived-table directive %q", text)
	}
	parent := fields[4]
	if fields[5] != "generate" {
		return nil, "", errs.New(errs.KindParseTemplate, p.reg.New(s.start, s.start+len(s.text)),
			"expected 'generate' in derived-table directive")
	}
	rowsIdx := -1
	for i := 6; i < len(fields); i++ {
		if fields[i] == "rows" && i+1 < len(fields) && fields[i+1] == "of" {
			rowsIdx = i
			break
		}
	}
	if rowsIdx < 0 || rowsIdx+2 >= len(fields) {
		return nil, "", errs.New(errs.KindParseTemplate, p.reg.New(s.start, s.start+len(s.text)),
			"expected '... rows of <child>' in derived-table directive")
	}
	child := fields[rowsIdx+2]
	countText := strings.Join(fields[6:rowsIdx], " ")

	// re-locate the count expression within the original text to keep
	// accurate spans: find it textually within the statement.
	rel := strings.Index(text, countText)
	base := s.start
	if rel >= 0 {
		base = s.start + rel
	}
	countExpr, err := p.parseExprText(countText, base)
	if err != nil {
		return nil, "", err
	}
	return &ast.DerivedChild{
		ChildName: child,
		Count:     countExpr,
		Span:      p.reg.New(s.start, s.start+len(s.text)),
	}, parent, nil
}

func isIdentByte(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

func trimSpaceOffset(s string) (trimmed string, offset int) {
	i := 0
	for i < len(s) && isSpace(s[i]) {
		i++
	}
	j := len(s)
	for j > i && isSpace(s[j-1]) {
		j--
	}
	return s[i:j], i
}

func unquoteIdent(s string) string {
	s = trimSpace(s)
	if len(s) >= 2 && (s[0] == '`' || s[0] == '"') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1]
	}
	return s
}
