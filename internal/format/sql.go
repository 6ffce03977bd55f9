package format

import (
	"bufio"
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	"github.com/sqldef/tablegen/internal/errs"
	"github.com/sqldef/tablegen/internal/span"
	"github.com/sqldef/tablegen/internal/value"
)

// SQLWriter renders rows as `INSERT INTO {name} VALUES (...), (...);`
// statements.
type SQLWriter struct {
	w               *bufio.Writer
	escapeBackslash bool
}

func NewSQLWriter(w io.Writer, escapeBackslash bool) *SQLWriter {
	return &SQLWriter{w: bufio.NewWriter(w), escapeBackslash: escapeBackslash}
}

var _ Writer = (*SQLWriter)(nil)

func (s *SQLWriter) wrapErr(err error) error {
	if err == nil {
		return nil
	}
	return errs.Wrap(errs.KindIO, span.Null, err, "sql writer")
}

func (s *SQLWriter) WriteHeader(qualifiedName string) error {
	_, err := fmt.Fprintf(s.w, "INSERT INTO %s VALUES\n(", qualifiedName)
	return s.wrapErr(err)
}

func (s *SQLWriter) WriteRowSeparator() error {
	_, err := s.w.WriteString("),\n(")
	return s.wrapErr(err)
}

func (s *SQLWriter) WriteValueSeparator() error {
	_, err := s.w.WriteString(", ")
	return s.wrapErr(err)
}

func (s *SQLWriter) WriteValue(v value.Value) error {
	text, err := formatSQLValue(v, s.escapeBackslash)
	if err != nil {
		return err
	}
	_, werr := s.w.WriteString(text)
	return s.wrapErr(werr)
}

func (s *SQLWriter) WriteTrailer() error {
	if _, err := s.w.WriteString(");\n"); err != nil {
		return s.wrapErr(err)
	}
	return s.wrapErr(s.w.Flush())
}

func formatSQLValue(v value.Value, escapeBackslash bool) (string, error) {
	switch v.Kind() {
	case value.KindNull:
		return "NULL", nil
	case value.KindNumber:
		n, _ := v.Number()
		return n.String(), nil
	case value.KindBytes:
		b, _ := v.Bytes()
		return formatSQLBytes(b, escapeBackslash), nil
	case value.KindTimestamp:
		ts, _ := v.Timestamp()
		return "'" + formatTimestamp(ts) + "'", nil
	case value.KindInterval:
		iv, _ := v.Interval()
		return "'" + formatInterval(iv) + "'", nil
	case value.KindArray:
		arr, _ := v.Array()
		elems, err := arr.Materialize()
		if err != nil {
			return "", errs.Wrap(errs.KindIO, span.Null, err, "materializing array")
		}
		parts := make([]string, len(elems))
		for i, e := range elems {
			parts[i], err = formatSQLValue(e, escapeBackslash)
			if err != nil {
				return "", err
			}
		}
		return "ARRAY[" + strings.Join(parts, ", ") + "]", nil
	default:
		return "", errs.New(errs.KindIO, span.Null, "unformattable value kind %s", v.Kind())
	}
}

func formatSQLBytes(b value.ByteString, escapeBackslash bool) string {
	if !b.IsValidUTF8() {
		return "X'" + strings.ToUpper(hex.EncodeToString(b.Bytes())) + "'"
	}
	s := b.String()
	var sb strings.Builder
	sb.Grow(len(s) + 2)
	sb.WriteByte('\'')
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '\'':
			sb.WriteString("''")
		case c == '\\' && escapeBackslash:
			sb.WriteString(`\\`)
		case c == 0 && escapeBackslash:
			sb.WriteString(`\0`)
		default:
			sb.WriteByte(c)
		}
	}
	sb.WriteByte('\'')
	return sb.String()
}
