package format

import (
	"bytes"
	"math"
	"testing"

	"github.com/sqldef/tablegen/internal/value"
)

func writeSQLRows(t *testing.T, w *SQLWriter, name string, rows [][]value.Value) {
	t.Helper()
	if err := w.WriteHeader(name); err != nil {
		t.Fatalf("WriteHeader: %v", err)
	}
	for ri, row := range rows {
		if ri > 0 {
			if err := w.WriteRowSeparator(); err != nil {
				t.Fatalf("WriteRowSeparator: %v", err)
			}
		}
		for ci, v := range row {
			if ci > 0 {
				if err := w.WriteValueSeparator(); err != nil {
					t.Fatalf("WriteValueSeparator: %v", err)
				}
			}
			if err := w.WriteValue(v); err != nil {
				t.Fatalf("WriteValue: %v", err)
			}
		}
	}
	if err := w.WriteTrailer(); err != nil {
		t.Fatalf("WriteTrailer: %v", err)
	}
}

func TestSQLWriterBasicInsert(t *testing.T) {
	var buf bytes.Buffer
	w := NewSQLWriter(&buf, false)
	rows := [][]value.Value{
		{value.FromNumber(value.NewInt(1)), value.FromString("a")},
		{value.FromNumber(value.NewInt(2)), value.FromString("b")},
	}
	writeSQLRows(t, w, "t", rows)

	want := "INSERT INTO t VALUES\n(1, 'a'),\n(2, 'b');\n"
	if buf.String() != want {
		t.Errorf("got:\n%q\nwant:\n%q", buf.String(), want)
	}
}

func TestSQLWriterEscapesSingleQuotes(t *testing.T) {
	var buf bytes.Buffer
	w := NewSQLWriter(&buf, false)
	writeSQLRows(t, w, "t", [][]value.Value{{value.FromString("it's")}})
	want := "INSERT INTO t VALUES\n('it''s');\n"
	if buf.String() != want {
		t.Errorf("got %q, want %q", buf.String(), want)
	}
}

func TestSQLWriterNull(t *testing.T) {
	var buf bytes.Buffer
	w := NewSQLWriter(&buf, false)
	writeSQLRows(t, w, "t", [][]value.Value{{value.Null()}})
	want := "INSERT INTO t VALUES\n(NULL);\n"
	if buf.String() != want {
		t.Errorf("got %q, want %q", buf.String(), want)
	}
}

func TestSQLWriterInvalidUTF8UsesHexLiteral(t *testing.T) {
	var buf bytes.Buffer
	w := NewSQLWriter(&buf, false)
	bad := value.FromBytes(value.NewByteString([]byte{0xff, 0x00}))
	writeSQLRows(t, w, "t", [][]value.Value{{bad}})
	want := "INSERT INTO t VALUES\n(X'FF00');\n"
	if buf.String() != want {
		t.Errorf("got %q, want %q", buf.String(), want)
	}
}

func TestSQLWriterEscapeBackslashOption(t *testing.T) {
	var buf bytes.Buffer
	w := NewSQLWriter(&buf, true)
	writeSQLRows(t, w, "t", [][]value.Value{{value.FromString(`a\b`)}})
	want := "INSERT INTO t VALUES\n('a\\\\b');\n"
	if buf.String() != want {
		t.Errorf("got %q, want %q", buf.String(), want)
	}
}

func TestSQLWriterArrayLiteral(t *testing.T) {
	var buf bytes.Buffer
	w := NewSQLWriter(&buf, false)
	arr := value.NewMaterializedArray([]value.Value{
		value.FromNumber(value.NewInt(1)), value.FromNumber(value.NewInt(2)),
	})
	writeSQLRows(t, w, "t", [][]value.Value{{value.FromArray(arr)}})
	want := "INSERT INTO t VALUES\n(ARRAY[1, 2]);\n"
	if buf.String() != want {
		t.Errorf("got %q, want %q", buf.String(), want)
	}
}

func TestSQLWriterIntervalFormatting(t *testing.T) {
	var buf bytes.Buffer
	w := NewSQLWriter(&buf, false)
	iv := value.Interval(-(26*3600 + 3*60 + 4) * 1_000_000)
	writeSQLRows(t, w, "t", [][]value.Value{{value.FromInterval(iv)}})
	want := "INSERT INTO t VALUES\n('-1 02:03:04');\n"
	if buf.String() != want {
		t.Errorf("got %q, want %q", buf.String(), want)
	}
}

func TestSQLWriterIntervalMinInt64(t *testing.T) {
	var buf bytes.Buffer
	w := NewSQLWriter(&buf, false)
	iv := value.Interval(math.MinInt64)
	writeSQLRows(t, w, "t", [][]value.Value{{value.FromInterval(iv)}})
	want := "INSERT INTO t VALUES\n('-106751991 04:00:54.775808');\n"
	if buf.String() != want {
		t.Errorf("got %q, want %q", buf.String(), want)
	}
}
