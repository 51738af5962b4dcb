package delim

import (
	"bytes"
	"errors"
	"reflect"
	"testing"
)

func cells(values ...string) Row {
	row := make(Row, len(values))
	for i, v := range values {
		row[i] = Cell{Value: v, Valid: true}
	}
	return row
}

func sampleTable() *Table {
	return &Table{
		Preamble: "Exported data\n",
		Header:   []string{"id", "name", "note"},
		Rows: []Row{
			cells("1", "Smith, John", `say "hi"`),
			cells("2", " padded ", "'quoted'"),
			cells("3", "", "plain"),
		},
	}
}

func TestWriter_WriteTable(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, ',')
	if err := w.WriteTable(sampleTable()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := "Exported data\n" +
		"id,name,note\n" +
		`1,"Smith, John","say ""hi"""` + "\n" +
		`2," padded ","'quoted'"` + "\n" +
		"3,,plain\n"
	if got := buf.String(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestWriter_RoundTrip(t *testing.T) {
	tests := []struct {
		name string
		sep  rune
	}{
		{"comma", ','},
		{"semicolon", ';'},
		{"tab", '\t'},
		{"pipe", '|'},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := sampleTable()
			var buf bytes.Buffer
			if err := NewWriter(&buf, tt.sep).WriteTable(src); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			got, err := newTestReader(buf.String(), WithSeparator(tt.sep)).ReadAll()
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got.Header, src.Header) {
				t.Errorf("header = %q, want %q", got.Header, src.Header)
			}
			if got.Preamble != src.Preamble {
				t.Errorf("preamble = %q, want %q", got.Preamble, src.Preamble)
			}
			if !reflect.DeepEqual(got.Rows, src.Rows) {
				t.Errorf("rows = %v, want %v", got.Rows, src.Rows)
			}
		})
	}
}

func TestWriter_QuotesCommentLikeFirstCell(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, ',')
	w.WriteRow([]string{"#1", "#2"})
	w.WriteRow([]string{""})
	w.Flush()

	want := "\"#1\",#2\n\"\"\n"
	if got := buf.String(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestWriter_SentinelFallsBackToTab(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, SepWhitespace)
	if w.Separator() != '\t' {
		t.Errorf("separator = %q, want tab", w.Separator())
	}
	w.Write(Row{{Value: "a", Valid: true}, {}, {Value: "c", Valid: true}})
	w.Flush()
	if got := buf.String(); got != "a\t\tc\n" {
		t.Errorf("got %q, want %q", got, "a\t\tc\n")
	}
}

func TestTable_Accessors(t *testing.T) {
	tbl := &Table{
		Header: []string{"a", "b"},
		Rows:   []Row{cells("1", "2", "3"), cells("4")},
	}

	if tbl.Width() != 3 {
		t.Errorf("Width() = %d, want 3", tbl.Width())
	}
	if got := tbl.ColumnName(1); got != "b" {
		t.Errorf("ColumnName(1) = %q, want %q", got, "b")
	}
	if got := tbl.ColumnName(2); got != "column_3" {
		t.Errorf("ColumnName(2) = %q, want %q", got, "column_3")
	}
	if got := tbl.ColumnNames(); !reflect.DeepEqual(got, []string{"a", "b", "column_3"}) {
		t.Errorf("ColumnNames() = %q", got)
	}
	if got := tbl.Column("b"); got != 1 {
		t.Errorf("Column(b) = %d, want 1", got)
	}

	c, err := tbl.Cell(0, 2)
	if err != nil || c.Value != "3" {
		t.Errorf("Cell(0, 2) = %+v, %v, want 3", c, err)
	}
	c, err = tbl.Cell(1, 2)
	if err != nil || c.Valid {
		t.Errorf("Cell(1, 2) = %+v, %v, want absent", c, err)
	}
	if _, err := tbl.Cell(5, 0); !errors.Is(err, ErrInvalidRow) {
		t.Errorf("expected ErrInvalidRow, got %v", err)
	}
	if _, err := tbl.Cell(0, 9); !errors.Is(err, ErrInvalidColumn) {
		t.Errorf("expected ErrInvalidColumn, got %v", err)
	}
}
