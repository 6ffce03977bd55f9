package parser

import (
	"strings"

	"github.com/sqldef/tablegen/internal/ast"
	"github.com/sqldef/tablegen/internal/errs"
	"github.com/sqldef/tablegen/internal/lexer"
	"github.com/sqldef/tablegen/internal/span"
)

// exprParser is a small recursive-descent / precedence-climbing parser
// over the DSL's expression grammar.
type exprParser struct {
	lx  *lexer.Lexer
	reg *span.Registry
	tok lexer.Token
}

func (p *parseState) parseExprText(text string, baseOffset int) (ast.Expr, error) {
	ep := &exprParser{lx: lexer.NewLexer(text, baseOffset), reg: p.reg}
	if err := ep.advance(); err != nil {
		return nil, err
	}
	e, err := ep.parseOr()
	if err != nil {
		return nil, err
	}
	if ep.tok.Kind != lexer.EOF {
		return nil, errs.New(errs.KindParseTemplate, p.reg.New(ep.tok.Start, ep.tok.End),
			"unexpected trailing token %q", ep.tok.Text)
	}
	return e, nil
}

func (ep *exprParser) advance() error {
	t, err := ep.lx.Next()
	if err != nil {
		return errs.New(errs.KindParseTemplate, span.Null, "%s", err.Error())
	}
	ep.tok = t
	return nil
}

func (ep *exprParser) isKeyword(kws ...string) bool {
	if ep.tok.Kind != lexer.Ident {
		return false
	}
	up := strings.ToUpper(ep.tok.Text)
	for _, k := range kws {
		if up == k {
			return true
		}
	}
	return false
}

func (ep *exprParser) isPunct(p string) bool {
	return ep.tok.Kind == lexer.Punct && ep.tok.Text == p
}

func (ep *exprParser) expectPunct(p string) error {
	if !ep.isPunct(p) {
		return errs.New(errs.KindParseTemplate, ep.reg.New(ep.tok.Start, ep.tok.End), "expected %q, got %q", p, ep.tok.Text)
	}
	return ep.advance()
}

func (ep *exprParser) mkSpan(start int) span.Span {
	return ep.reg.New(start, ep.tok.Start)
}

func (ep *exprParser) parseOr() (ast.Expr, error) {
	start := ep.tok.Start
	left, err := ep.parseAnd()
	if err != nil {
		return nil, err
	}
	for ep.isKeyword("OR") {
		if err := ep.advance(); err != nil {
			return nil, err
		}
		right, err := ep.parseAnd()
		if err != nil {
			return nil, err
		}
		left = ast.NewCall("or", []ast.Expr{left, right}, ep.mkSpan(start))
	}
	return left, nil
}

func (ep *exprParser) parseAnd() (ast.Expr, error) {
	start := ep.tok.Start
	left, err := ep.parseNot()
	if err != nil {
		return nil, err
	}
	for ep.isKeyword("AND") {
		if err := ep.advance(); err != nil {
			return nil, err
		}
		right, err := ep.parseNot()
		if err != nil {
			return nil, err
		}
		left = ast.NewCall("and", []ast.Expr{left, right}, ep.mkSpan(start))
	}
	return left, nil
}

func (ep *exprParser) parseNot() (ast.Expr, error) {
	if ep.isKeyword("NOT") {
		start := ep.tok.Start
		if err := ep.advance(); err != nil {
			return nil, err
		}
		operand, err := ep.parseNot()
		if err != nil {
			return nil, err
		}
		return ast.NewCall("not", []ast.Expr{operand}, ep.mkSpan(start)), nil
	}
	return ep.parseComparison()
}

var comparisonOps = map[string]string{
	"<": "<", "<=": "<=", "=": "=", ">": ">", ">=": ">=", "<>": "<>", "!=": "<>",
}

func (ep *exprParser) parseComparison() (ast.Expr, error) {
	start := ep.tok.Start
	left, err := ep.parseConcat()
	if err != nil {
		return nil, err
	}
	if ep.isKeyword("IS") {
		if err := ep.advance(); err != nil {
			return nil, err
		}
		not := false
		if ep.isKeyword("NOT") {
			not = true
			if err := ep.advance(); err != nil {
				return nil, err
			}
		}
		right, err := ep.parseConcat()
		if err != nil {
			return nil, err
		}
		name := "is"
		if not {
			name = "is_not"
		}
		return ast.NewCall(name, []ast.Expr{left, right}, ep.mkSpan(start)), nil
	}
	if ep.tok.Kind == lexer.Punct {
		if name, ok := comparisonOps[ep.tok.Text]; ok {
			if err := ep.advance(); err != nil {
				return nil, err
			}
			right, err := ep.parseConcat()
			if err != nil {
				return nil, err
			}
			return ast.NewCall(name, []ast.Expr{left, right}, ep.mkSpan(start)), nil
		}
	}
	return left, nil
}

func (ep *exprParser) parseConcat() (ast.Expr, error) {
	start := ep.tok.Start
	left, err := ep.parseAdditive()
	if err != nil {
		return nil, err
	}
	for ep.isPunct("||") {
		if err := ep.advance(); err != nil {
			return nil, err
		}
		right, err := ep.parseAdditive()
		if err != nil {
			return nil, err
		}
		left = ast.NewCall("||", []ast.Expr{left, right}, ep.mkSpan(start))
	}
	return left, nil
}

func (ep *exprParser) parseAdditive() (ast.Expr, error) {
	start := ep.tok.Start
	left, err := ep.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for ep.isPunct("+") || ep.isPunct("-") {
		op := ep.tok.Text
		if err := ep.advance(); err != nil {
			return nil, err
		}
		right, err := ep.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		left = ast.NewCall(op, []ast.Expr{left, right}, ep.mkSpan(start))
	}
	return left, nil
}

func (ep *exprParser) parseMultiplicative() (ast.Expr, error) {
	start := ep.tok.Start
	left, err := ep.parseUnary()
	if err != nil {
		return nil, err
	}
	for ep.isPunct("*") || ep.isPunct("/") || ep.isKeyword("DIV") || ep.isKeyword("MOD") {
		var op string
		if ep.tok.Kind == lexer.Punct {
			op = ep.tok.Text
		} else {
			op = strings.ToLower(ep.tok.Text)
		}
		if err := ep.advance(); err != nil {
			return nil, err
		}
		right, err := ep.parseUnary()
		if err != nil {
			return nil, err
		}
		left = ast.NewCall(op, []ast.Expr{left, right}, ep.mkSpan(start))
	}
	return left, nil
}

func (ep *exprParser) parseUnary() (ast.Expr, error) {
	if ep.isPunct("-") {
		start := ep.tok.Start
		if err := ep.advance(); err != nil {
			return nil, err
		}
		operand, err := ep.parseUnary()
		if err != nil {
			return nil, err
		}
		return ast.NewCall("neg", []ast.Expr{operand}, ep.mkSpan(start)), nil
	}
	if ep.isPunct("+") {
		if err := ep.advance(); err != nil {
			return nil, err
		}
		return ep.parseUnary()
	}
	return ep.parsePostfix()
}

func (ep *exprParser) parsePostfix() (ast.Expr, error) {
	start := ep.tok.Start
	e, err := ep.parsePrimary()
	if err != nil {
		return nil, err
	}
	for ep.isPunct("[") {
		if err := ep.advance(); err != nil {
			return nil, err
		}
		idx, err := ep.parseOr()
		if err != nil {
			return nil, err
		}
		if err := ep.expectPunct("]"); err != nil {
			return nil, err
		}
		e = ast.NewSubscript(e, idx, ep.mkSpan(start))
	}
	return e, nil
}

func (ep *exprParser) parsePrimary() (ast.Expr, error) {
	start := ep.tok.Start
	switch {
	case ep.tok.Kind == lexer.Number:
		text := ep.tok.Text
		if err := ep.advance(); err != nil {
			return nil, err
		}
		return ast.NewLiteral(ast.LitNumber, text, ep.mkSpan(start)), nil

	case ep.tok.Kind == lexer.String:
		text := ep.tok.Text
		if err := ep.advance(); err != nil {
			return nil, err
		}
		return ast.NewLiteral(ast.LitString, text, ep.mkSpan(start)), nil

	case ep.isPunct("("):
		if err := ep.advance(); err != nil {
			return nil, err
		}
		e, err := ep.parseOr()
		if err != nil {
			return nil, err
		}
		if err := ep.expectPunct(")"); err != nil {
			return nil, err
		}
		return e, nil

	case ep.isKeyword("NULL"):
		if err := ep.advance(); err != nil {
			return nil, err
		}
		return ast.NewLiteral(ast.LitNull, "", ep.mkSpan(start)), nil

	case ep.isKeyword("TRUE"):
		if err := ep.advance(); err != nil {
			return nil, err
		}
		return ast.NewLiteral(ast.LitNumber, "1", ep.mkSpan(start)), nil

	case ep.isKeyword("FALSE"):
		if err := ep.advance(); err != nil {
			return nil, err
		}
		return ast.NewLiteral(ast.LitNumber, "0", ep.mkSpan(start)), nil

	case ep.isKeyword("ROWNUM", "ROW_NUM"):
		if err := ep.advance(); err != nil {
			return nil, err
		}
		return ast.NewRowNum(ep.mkSpan(start)), nil

	case ep.isKeyword("SUBROWNUM", "SUB_ROW_NUM"):
		if err := ep.advance(); err != nil {
			return nil, err
		}
		return ast.NewSubRowNum(ep.mkSpan(start)), nil

	case ep.isKeyword("CASE"):
		return ep.parseCase(start)

	case ep.isKeyword("ARRAY"):
		return ep.parseArrayLit(start)

	case ep.isKeyword("TIMESTAMP"):
		return ep.parseTimestamp(start)

	case ep.isKeyword("INTERVAL"):
		return ep.parseInterval(start)

	case ep.tok.Kind == lexer.Ident:
		name := ep.tok.Text
		if err := ep.advance(); err != nil {
			return nil, err
		}
		if ep.isPunct("(") {
			args, err := ep.parseArgList()
			if err != nil {
				return nil, err
			}
			return ast.NewCall(name, args, ep.mkSpan(start)), nil
		}
		return ast.NewVarRef(name, ep.mkSpan(start)), nil

	default:
		return nil, errs.New(errs.KindParseTemplate, ep.reg.New(ep.tok.Start, ep.tok.End),
			"unexpected token %q", ep.tok.Text)
	}
}

func (ep *exprParser) parseArgList() ([]ast.Expr, error) {
	if err := ep.expectPunct("("); err != nil {
		return nil, err
	}
	var args []ast.Expr
	if !ep.isPunct(")") {
		for {
			a, err := ep.parseOr()
			if err != nil {
				return nil, err
			}
			args = append(args, a)
			if ep.isPunct(",") {
				if err := ep.advance(); err != nil {
					return nil, err
				}
				continue
			}
			break
		}
	}
	if err := ep.expectPunct(")"); err != nil {
		return nil, err
	}
	return args, nil
}

func (ep *exprParser) parseCase(start int) (ast.Expr, error) {
	if err := ep.advance(); err != nil { // consume CASE
		return nil, err
	}
	var value ast.Expr
	if !ep.isKeyword("WHEN") {
		v, err := ep.parseOr()
		if err != nil {
			return nil, err
		}
		value = v
	}
	var whens, thens []ast.Expr
	for ep.isKeyword("WHEN") {
		if err := ep.advance(); err != nil {
			return nil, err
		}
		w, err := ep.parseOr()
		if err != nil {
			return nil, err
		}
		if !ep.isKeyword("THEN") {
			return nil, errs.New(errs.KindParseTemplate, ep.reg.New(ep.tok.Start, ep.tok.End), "expected THEN in CASE")
		}
		if err := ep.advance(); err != nil {
			return nil, err
		}
		t, err := ep.parseOr()
		if err != nil {
			return nil, err
		}
		whens = append(whens, w)
		thens = append(thens, t)
	}
	var elseExpr ast.Expr
	if ep.isKeyword("ELSE") {
		if err := ep.advance(); err != nil {
			return nil, err
		}
		e, err := ep.parseOr()
		if err != nil {
			return nil, err
		}
		elseExpr = e
	}
	if !ep.isKeyword("END") {
		return nil, errs.New(errs.KindParseTemplate, ep.reg.New(ep.tok.Start, ep.tok.End), "expected END to close CASE")
	}
	if err := ep.advance(); err != nil {
		return nil, err
	}
	return ast.NewCaseExpr(value, whens, thens, elseExpr, ep.mkSpan(start)), nil
}

func (ep *exprParser) parseArrayLit(start int) (ast.Expr, error) {
	if err := ep.advance(); err != nil { // consume ARRAY
		return nil, err
	}
	if err := ep.expectPunct("["); err != nil {
		return nil, err
	}
	var elems []ast.Expr
	if !ep.isPunct("]") {
		for {
			e, err := ep.parseOr()
			if err != nil {
				return nil, err
			}
			elems = append(elems, e)
			if ep.isPunct(",") {
				if err := ep.advance(); err != nil {
					return nil, err
				}
				continue
			}
			break
		}
	}
	if err := ep.expectPunct("]"); err != nil {
		return nil, err
	}
	return ast.NewArrayLit(elems, ep.mkSpan(start)), nil
}

func (ep *exprParser) parseTimestamp(start int) (ast.Expr, error) {
	if err := ep.advance(); err != nil { // consume TIMESTAMP
		return nil, err
	}
	withZone := false
	if ep.isKeyword("WITH") {
		if err := ep.advance(); err != nil {
			return nil, err
		}
		if !ep.isKeyword("TIME") {
			return nil, errs.New(errs.KindParseTemplate, ep.reg.New(ep.tok.Start, ep.tok.End), "expected TIME ZONE after WITH")
		}
		if err := ep.advance(); err != nil {
			return nil, err
		}
		if !ep.isKeyword("ZONE") {
			return nil, errs.New(errs.KindParseTemplate, ep.reg.New(ep.tok.Start, ep.tok.End), "expected ZONE after WITH TIME")
		}
		if err := ep.advance(); err != nil {
			return nil, err
		}
		withZone = true
	}
	if ep.tok.Kind != lexer.String {
		return nil, errs.New(errs.KindParseTemplate, ep.reg.New(ep.tok.Start, ep.tok.End), "expected timestamp string literal")
	}
	text := ep.tok.Text
	if err := ep.advance(); err != nil {
		return nil, err
	}
	return ast.NewTimestampLit(text, withZone, ep.mkSpan(start)), nil
}

func (ep *exprParser) parseInterval(start int) (ast.Expr, error) {
	if err := ep.advance(); err != nil { // consume INTERVAL
		return nil, err
	}
	count, err := ep.parseUnary()
	if err != nil {
		return nil, err
	}
	if ep.tok.Kind != lexer.Ident {
		return nil, errs.New(errs.KindParseTemplate, ep.reg.New(ep.tok.Start, ep.tok.End), "expected interval unit")
	}
	unit := strings.ToLower(ep.tok.Text)
	if err := ep.advance(); err != nil {
		return nil, err
	}
	return ast.NewIntervalLit(count, unit, ep.mkSpan(start)), nil
}
