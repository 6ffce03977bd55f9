package span

import "testing"

func TestRegistryTextReturnsSlice(t *testing.T) {
	r := NewRegistry("hello world")
	sp := r.New(6, 11)
	if got := r.Text(sp); got != "world" {
		t.Errorf("got %q, want %q", got, "world")
	}
}

func TestNullSpanIsEmptyText(t *testing.T) {
	r := NewRegistry("hello")
	if got := r.Text(Null); got != "" {
		t.Errorf("Null span text = %q, want empty", got)
	}
}

func TestSnippetCaretAlignsUnderSpan(t *testing.T) {
	r := NewRegistry("line one\nline TWO\nline three")
	sp := r.New(14, 17) // "TWO" within the second line
	snippet := r.Snippet(sp)
	want := "line TWO\n     ^^^"
	if snippet != want {
		t.Errorf("got:\n%q\nwant:\n%q", snippet, want)
	}
}

func TestLineCol(t *testing.T) {
	r := NewRegistry("ab\ncd\nef")
	sp := r.New(6, 7) // 'e', first byte of the third line
	line, col := r.LineCol(sp)
	if line != 3 || col != 1 {
		t.Errorf("got (line=%d,col=%d), want (3,1)", line, col)
	}
}
