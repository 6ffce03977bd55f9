package compiler_test

import (
	"testing"
	"time"

	"github.com/sqldef/tablegen/internal/compiler"
	"github.com/sqldef/tablegen/internal/compiler/functions"
	"github.com/sqldef/tablegen/internal/genrow"
	"github.com/sqldef/tablegen/internal/parser"
)

func TestConstantArithmeticFoldsAtCompileTime(t *testing.T) {
	const template = `CREATE TABLE t (x {{ 2 + 3 }});`
	tmpl, _, err := parser.ParseTemplate(template)
	if err != nil {
		t.Fatalf("ParseTemplate: %v", err)
	}
	cc := compiler.NewCompileContext(time.UTC)
	reg := compiler.NewRegistry()
	functions.Register(reg)

	tables, err := genrow.Compile(tmpl, reg, cc)
	if err != nil {
		t.Fatalf("genrow.Compile: %v", err)
	}
	col := tables[0].Columns[0]
	v, ok := compiler.AsConstant(col)
	if !ok {
		t.Fatalf("2 + 3 should fold to a compile-time Constant, got %T", col)
	}
	n, ok := v.Number()
	if !ok {
		t.Fatalf("folded value is not a number")
	}
	if n.String() != "5" {
		t.Fatalf("got %s, want 5", n)
	}
}

func TestRowNumNeverFolds(t *testing.T) {
	const template = `CREATE TABLE t (x {{ row_num + 1 }});`
	tmpl, _, err := parser.ParseTemplate(template)
	if err != nil {
		t.Fatalf("ParseTemplate: %v", err)
	}
	cc := compiler.NewCompileContext(time.UTC)
	reg := compiler.NewRegistry()
	functions.Register(reg)

	tables, err := genrow.Compile(tmpl, reg, cc)
	if err != nil {
		t.Fatalf("genrow.Compile: %v", err)
	}
	col := tables[0].Columns[0]
	if _, ok := compiler.AsConstant(col); ok {
		t.Fatalf("an expression referencing row_num must not fold to a compile-time constant")
	}
}

func TestUnknownIdentifierReportsKnownNames(t *testing.T) {
	const template = "SET a = 1;\nCREATE TABLE t (x {{ b }});"
	tmpl, _, err := parser.ParseTemplate(template)
	if err != nil {
		t.Fatalf("ParseTemplate: %v", err)
	}
	cc := compiler.NewCompileContext(time.UTC)
	reg := compiler.NewRegistry()
	functions.Register(reg)

	if _, err := reg.CompileGlobals(tmpl.Globals, cc); err != nil {
		t.Fatalf("CompileGlobals: %v", err)
	}
	_, err = genrow.Compile(tmpl, reg, cc)
	if err == nil {
		t.Fatalf("expected an unknown-identifier error for %q", "b")
	}
	if got := err.Error(); !containsAll(got, "b", "a") {
		t.Fatalf("error %q should mention both the unknown name %q and the known name %q", got, "b", "a")
	}
}

func containsAll(s string, subs ...string) bool {
	for _, sub := range subs {
		if !contains(s, sub) {
			return false
		}
	}
	return true
}

func contains(s, sub string) bool {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return true
		}
	}
	return false
}
