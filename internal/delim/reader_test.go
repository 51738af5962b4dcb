package delim

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

const people = "name,age,city\nAlice,30,Paris\nBob,25,Rome\nCarol,41,Oslo\n"

func newTestReader(content string, opts ...Option) *Reader {
	opts = append([]Option{WithOpener(StringOpener{"test.csv": content})}, opts...)
	return NewReader("test.csv", opts...)
}

func readRows(t *testing.T, r *Reader) [][]string {
	t.Helper()
	var out [][]string
	for {
		row, err := r.Next()
		if err == io.EOF {
			return out
		}
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		out = append(out, row.Strings())
	}
}

func TestReader_Basic(t *testing.T) {
	r := newTestReader(people)

	header, err := r.Header()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := []string{"name", "age", "city"}; !reflect.DeepEqual(header, want) {
		t.Errorf("header = %q, want %q", header, want)
	}
	if r.State() != StateInitialized {
		t.Errorf("state = %v, want %v", r.State(), StateInitialized)
	}

	n, err := r.ColumnCount()
	if err != nil || n != 3 {
		t.Errorf("ColumnCount() = %d, %v, want 3", n, err)
	}

	got := readRows(t, r)
	want := [][]string{
		{"Alice", "30", "Paris"},
		{"Bob", "25", "Rome"},
		{"Carol", "41", "Oslo"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("rows = %q, want %q", got, want)
	}
}

func TestReader_EndOfStream(t *testing.T) {
	r := newTestReader(people)

	for i := 0; i < 3; i++ {
		if _, err := r.Next(); err != nil {
			t.Fatalf("row %d: unexpected error: %v", i, err)
		}
		if r.State() != StateIterating {
			t.Errorf("state = %v, want %v", r.State(), StateIterating)
		}
	}

	if _, err := r.Next(); err != io.EOF {
		t.Fatalf("expected io.EOF, got %v", err)
	}
	if r.State() != StateClosed {
		t.Errorf("state after EOF = %v, want %v", r.State(), StateClosed)
	}

	// A later Next starts a new session.
	row, err := r.Next()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := row.Get(0).Value; got != "Alice" {
		t.Errorf("got %q, want %q", got, "Alice")
	}
}

func TestReader_SkipLines(t *testing.T) {
	content := "exported by tool v2\ngenerated 2024-01-01\nid,name\n1,a\n2,b\n"
	r := newTestReader(content, WithSkipLines(2))

	pre, err := r.Preamble()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := "exported by tool v2\ngenerated 2024-01-01\n"; pre != want {
		t.Errorf("preamble = %q, want %q", pre, want)
	}

	start, _ := r.ContentStartLine()
	if start != 2 {
		t.Errorf("content start = %d, want 2", start)
	}

	header, _ := r.Header()
	if want := []string{"id", "name"}; !reflect.DeepEqual(header, want) {
		t.Errorf("header = %q, want %q", header, want)
	}

	got := readRows(t, r)
	if want := [][]string{{"1", "a"}, {"2", "b"}}; !reflect.DeepEqual(got, want) {
		t.Errorf("rows = %q, want %q", got, want)
	}
}

func TestReader_SkipUntil(t *testing.T) {
	content := "Report\nDetail lines\n---\na;b\n1;2\n3;4\n"
	r := newTestReader(content, WithSkipUntil("---"))

	d, err := r.Dialect()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Separator != ';' {
		t.Errorf("separator = %q, want ';'", d.Separator)
	}
	if d.SkipLines != 3 || d.ContentStart != 3 {
		t.Errorf("skip = %d, content start = %d, want 3 and 3", d.SkipLines, d.ContentStart)
	}
	// One match and one differ vote per column: ties keep the header.
	if !d.Headers {
		t.Error("headers = false, want true")
	}

	pre, _ := r.Preamble()
	if want := "Report\nDetail lines\n---\n"; pre != want {
		t.Errorf("preamble = %q, want %q", pre, want)
	}

	got := readRows(t, r)
	if want := [][]string{{"1", "2"}, {"3", "4"}}; !reflect.DeepEqual(got, want) {
		t.Errorf("rows = %q, want %q", got, want)
	}
}

func TestReader_SkipUntilMissing(t *testing.T) {
	r := newTestReader("a,b\n1,2\n", WithSkipUntil("BEGIN"))
	_, err := r.Dialect()
	if !errors.Is(err, ErrMarkerNotFound) {
		t.Errorf("expected ErrMarkerNotFound, got %v", err)
	}
}

func TestReader_CommentHeader(t *testing.T) {
	r := newTestReader("#Name,Age\nAlice,30\nBob,25\n")

	header, err := r.Header()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := []string{"Name", "Age"}; !reflect.DeepEqual(header, want) {
		t.Errorf("header = %q, want %q", header, want)
	}
	got := readRows(t, r)
	if want := [][]string{{"Alice", "30"}, {"Bob", "25"}}; !reflect.DeepEqual(got, want) {
		t.Errorf("rows = %q, want %q", got, want)
	}
}

func TestReader_SkipsCommentAndBlankLines(t *testing.T) {
	r := newTestReader("id,val\n1,10\n# note\n\n2,20\n")

	got := readRows(t, r)
	if want := [][]string{{"1", "10"}, {"2", "20"}}; !reflect.DeepEqual(got, want) {
		t.Errorf("rows = %q, want %q", got, want)
	}
}

func TestReader_DiscardColumn(t *testing.T) {
	r := newTestReader("x,y,z\nx2,y2,z2\n", WithHeaders(Off))
	r.DiscardColumn(1)

	row, err := r.Next()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(row) != 3 {
		t.Fatalf("got %d cells, want 3", len(row))
	}
	if row[0].Value != "x" || row[2].Value != "z" {
		t.Errorf("row = %q, want x and z kept", row.Strings())
	}
	if row[1].Valid {
		t.Errorf("cell 1 = %+v, want absent", row[1])
	}

	// Discarding does not reset the session.
	if r.State() != StateIterating {
		t.Fatalf("state = %v, want %v", r.State(), StateIterating)
	}
	r.KeepColumn(1)
	row, _ = r.Next()
	if !row[1].Valid || row[1].Value != "y2" {
		t.Errorf("cell 1 after KeepColumn = %+v, want y2", row[1])
	}
}

func TestReader_SettersInvalidate(t *testing.T) {
	r := newTestReader("a;b,c\nd;e,f\n")

	if _, err := r.Dialect(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.State() != StateInitialized {
		t.Fatalf("state = %v, want %v", r.State(), StateInitialized)
	}

	r.SetSeparator(';')
	if r.State() != StateUninitialized {
		t.Errorf("state after SetSeparator = %v, want %v", r.State(), StateUninitialized)
	}
	sep, err := r.Separator()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sep != ';' {
		t.Errorf("separator = %q, want ';'", sep)
	}

	r.SetHeaders(false)
	tbl, err := r.ReadAll()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := [][]string{{"a", "b,c"}, {"d", "e,f"}}
	var got [][]string
	for _, row := range tbl.Rows {
		got = append(got, row.Strings())
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("rows = %q, want %q", got, want)
	}
	if tbl.Header != nil {
		t.Errorf("header = %q, want nil", tbl.Header)
	}
}

func TestReader_CommentIndicators(t *testing.T) {
	r := newTestReader("a,b\n1,2\n%x,y\n3,4\n", WithHeaders(On))

	rows := readRows(t, r)
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}

	r.AddCommentIndicator('%')
	rows = readRows(t, r)
	if want := [][]string{{"1", "2"}, {"3", "4"}}; !reflect.DeepEqual(rows, want) {
		t.Errorf("rows = %q, want %q", rows, want)
	}

	r.RemoveCommentIndicator('%')
	if rows = readRows(t, r); len(rows) != 3 {
		t.Errorf("got %d rows after RemoveCommentIndicator, want 3", len(rows))
	}
}

func TestReader_Idempotent(t *testing.T) {
	content := "Title line\n\nid,name,score\n1,ann,3.5\n2,ben,4.0\n3,cy,2.25\n"
	r := newTestReader(content)

	first, err := r.ReadAll()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.State() != StateClosed {
		t.Errorf("state after ReadAll = %v, want %v", r.State(), StateClosed)
	}
	second, err := r.ReadAll()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("second read differs:\n got %+v\nwant %+v", second, first)
	}

	fresh, err := newTestReader(content).ReadAll()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(first, fresh) {
		t.Errorf("fresh reader differs:\n got %+v\nwant %+v", fresh, first)
	}
	if first.Preamble != "Title line\n\n" {
		t.Errorf("preamble = %q, want %q", first.Preamble, "Title line\n\n")
	}
	if first.Len() != 3 {
		t.Errorf("Len() = %d, want 3", first.Len())
	}
}

func TestReader_Errors(t *testing.T) {
	t.Run("not delimited", func(t *testing.T) {
		r := newTestReader("just\nsome\nwords\n")
		_, err := r.Header()
		if !errors.Is(err, ErrNotDelimited) {
			t.Errorf("expected ErrNotDelimited, got %v", err)
		}
		if _, err := r.Next(); !errors.Is(err, ErrNotDelimited) {
			t.Errorf("Next: expected ErrNotDelimited, got %v", err)
		}
	})

	t.Run("unknown source", func(t *testing.T) {
		r := NewReader("missing", WithOpener(StringOpener{}))
		if _, err := r.Dialect(); !errors.Is(err, ErrNoSource) {
			t.Errorf("expected ErrNoSource, got %v", err)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		r := NewReader(filepath.Join(t.TempDir(), "nope.csv"))
		if _, err := r.Dialect(); !errors.Is(err, ErrNoSource) {
			t.Errorf("expected ErrNoSource, got %v", err)
		}
	})
}

func TestReader_FileWithBOM(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bom.csv")
	content := append([]byte{0xEF, 0xBB, 0xBF}, "a;b\r\n1;2\r\n3;4\r\n"...)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	r := NewReader(path)
	header, err := r.Header()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := []string{"a", "b"}; !reflect.DeepEqual(header, want) {
		t.Errorf("header = %q, want %q", header, want)
	}
	got := readRows(t, r)
	if want := [][]string{{"1", "2"}, {"3", "4"}}; !reflect.DeepEqual(got, want) {
		t.Errorf("rows = %q, want %q", got, want)
	}
}

func TestReader_FinalLineWithoutNewline(t *testing.T) {
	r := newTestReader("key|val\nx|1\ny|2")
	got := readRows(t, r)
	if want := [][]string{{"x", "1"}, {"y", "2"}}; !reflect.DeepEqual(got, want) {
		t.Errorf("rows = %q, want %q", got, want)
	}
}

func TestState_String(t *testing.T) {
	if got := StateIterating.String(); got != "iterating" {
		t.Errorf("got %q, want %q", got, "iterating")
	}
	if got := State(42).String(); got != "State(42)" {
		t.Errorf("got %q, want %q", got, "State(42)")
	}
}
