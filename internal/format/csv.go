package format

import (
	"bufio"
	"io"
	"strings"

	"github.com/sqldef/tablegen/internal/errs"
	"github.com/sqldef/tablegen/internal/span"
	"github.com/sqldef/tablegen/internal/value"
)

// CSVWriter renders rows as plain comma-separated lines: no header or
// trailer besides row newlines.
type CSVWriter struct {
	w *bufio.Writer
}

func NewCSVWriter(w io.Writer) *CSVWriter {
	return &CSVWriter{w: bufio.NewWriter(w)}
}

var _ Writer = (*CSVWriter)(nil)

func (c *CSVWriter) wrapErr(err error) error {
	if err == nil {
		return nil
	}
	return errs.Wrap(errs.KindIO, span.Null, err, "csv writer")
}

func (c *CSVWriter) WriteHeader(qualifiedName string) error { return nil }

func (c *CSVWriter) WriteRowSeparator() error {
	_, err := c.w.WriteString("\n")
	return c.wrapErr(err)
}

func (c *CSVWriter) WriteValueSeparator() error {
	_, err := c.w.WriteString(",")
	return c.wrapErr(err)
}

func (c *CSVWriter) WriteValue(v value.Value) error {
	text, err := formatCSVValue(v)
	if err != nil {
		return err
	}
	_, werr := c.w.WriteString(text)
	return c.wrapErr(werr)
}

func (c *CSVWriter) WriteTrailer() error {
	if _, err := c.w.WriteString("\n"); err != nil {
		return c.wrapErr(err)
	}
	return c.wrapErr(c.w.Flush())
}

func formatCSVValue(v value.Value) (string, error) {
	switch v.Kind() {
	case value.KindNull:
		return `\N`, nil
	case value.KindNumber:
		n, _ := v.Number()
		return n.String(), nil
	case value.KindBytes:
		b, _ := v.Bytes()
		return formatCSVBytes(b), nil
	case value.KindTimestamp:
		ts, _ := v.Timestamp()
		return formatTimestamp(ts), nil
	case value.KindInterval:
		iv, _ := v.Interval()
		return formatInterval(iv), nil
	case value.KindArray:
		arr, _ := v.Array()
		elems, err := arr.Materialize()
		if err != nil {
			return "", errs.Wrap(errs.KindIO, span.Null, err, "materializing array")
		}
		parts := make([]string, len(elems))
		for i, e := range elems {
			parts[i], err = formatCSVValue(e)
			if err != nil {
				return "", err
			}
		}
		return "{" + strings.Join(parts, ",") + "}", nil
	default:
		return "", errs.New(errs.KindIO, span.Null, "unformattable value kind %s", v.Kind())
	}
}

func formatCSVBytes(b value.ByteString) string {
	s := b.String()
	var sb strings.Builder
	sb.Grow(len(s) + 2)
	sb.WriteByte('"')
	for i := 0; i < len(s); i++ {
		if s[i] == '"' {
			sb.WriteString(`""`)
		} else {
			sb.WriteByte(s[i])
		}
	}
	sb.WriteByte('"')
	return sb.String()
}
