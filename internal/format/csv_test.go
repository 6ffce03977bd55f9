package format

import (
	"bytes"
	"testing"

	"github.com/sqldef/tablegen/internal/value"
)

func writeCSVRows(t *testing.T, w *CSVWriter, rows [][]value.Value) {
	t.Helper()
	if err := w.WriteHeader("ignored"); err != nil {
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

func TestCSVWriterHasNoHeaderOrTrailerText(t *testing.T) {
	var buf bytes.Buffer
	w := NewCSVWriter(&buf)
	writeCSVRows(t, w, [][]value.Value{
		{value.FromNumber(value.NewInt(1)), value.FromString("a")},
	})
	want := "1,\"a\"\n"
	if buf.String() != want {
		t.Errorf("got %q, want %q", buf.String(), want)
	}
}

func TestCSVWriterMultipleRows(t *testing.T) {
	var buf bytes.Buffer
	w := NewCSVWriter(&buf)
	writeCSVRows(t, w, [][]value.Value{
		{value.FromNumber(value.NewInt(1))},
		{value.FromNumber(value.NewInt(2))},
	})
	want := "1\n2\n"
	if buf.String() != want {
		t.Errorf("got %q, want %q", buf.String(), want)
	}
}

func TestCSVWriterNullIsBackslashN(t *testing.T) {
	var buf bytes.Buffer
	w := NewCSVWriter(&buf)
	writeCSVRows(t, w, [][]value.Value{{value.Null()}})
	want := "\\N\n"
	if buf.String() != want {
		t.Errorf("got %q, want %q", buf.String(), want)
	}
}

func TestCSVWriterEscapesDoubleQuotes(t *testing.T) {
	var buf bytes.Buffer
	w := NewCSVWriter(&buf)
	writeCSVRows(t, w, [][]value.Value{{value.FromString(`say "hi"`)}})
	want := `"say ""hi"""` + "\n"
	if buf.String() != want {
		t.Errorf("got %q, want %q", buf.String(), want)
	}
}

func TestCSVWriterArrayLiteral(t *testing.T) {
	var buf bytes.Buffer
	w := NewCSVWriter(&buf)
	arr := value.NewMaterializedArray([]value.Value{
		value.FromNumber(value.NewInt(1)), value.FromNumber(value.NewInt(2)),
	})
	writeCSVRows(t, w, [][]value.Value{{value.FromArray(arr)}})
	want := "{1,2}\n"
	if buf.String() != want {
		t.Errorf("got %q, want %q", buf.String(), want)
	}
}
