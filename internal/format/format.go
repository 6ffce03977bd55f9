// Package format implements the two output formatters: SQL INSERT
// statements and CSV rows. Both satisfy the same Writer contract so
// genrow.Env never needs to know which one it is driving.
package format

import "github.com/sqldef/tablegen/internal/value"

// Writer is the per-table output sink genrow.Env drives: one header before
// the first row, a separator between rows, a separator between values
// within a row, and a trailer once the table has produced at least one row.
type Writer interface {
	WriteHeader(qualifiedName string) error
	WriteRowSeparator() error
	WriteValueSeparator() error
	WriteValue(v value.Value) error
	WriteTrailer() error
}
