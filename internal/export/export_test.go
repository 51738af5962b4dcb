package export

import (
	"bytes"
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"

	"github.com/JonMunkholm/csvsniff/internal/delim"
)

func cells(values ...string) delim.Row {
	row := make(delim.Row, len(values))
	for i, v := range values {
		row[i] = delim.Cell{Value: v, Valid: true}
	}
	return row
}

func testTable() *delim.Table {
	return &delim.Table{
		Header: []string{"id", "name", "name"},
		Rows: []delim.Row{
			cells("1", "ann", "x"),
			{{Value: "2", Valid: true}, {}, {Value: "y", Valid: true}},
			cells("3", `quote "q"`),
		},
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input string
		want  Format
	}{
		{"", JSON},
		{"json", JSON},
		{"CSV", CSV},
		{" tsv ", TSV},
		{"ndjson", NDJSON},
		{"parquet", Parquet},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseFormat(tt.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}

	if _, err := ParseFormat("xlsx"); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("expected ErrUnknownFormat, got %v", err)
	}
}

func TestFormat_Metadata(t *testing.T) {
	if got := Parquet.Extension(); got != ".parquet" {
		t.Errorf("Extension() = %q, want .parquet", got)
	}
	if got := NDJSON.Extension(); got != ".jsonl" {
		t.Errorf("Extension() = %q, want .jsonl", got)
	}
	if got := CSV.ContentType(); got != "text/csv; charset=utf-8" {
		t.Errorf("ContentType() = %q", got)
	}
}

func TestUniqueNames(t *testing.T) {
	tbl := &delim.Table{
		Header: []string{"a", "a", "a_2", ""},
		Rows:   []delim.Row{cells("1", "2", "3", "4", "5")},
	}
	// Names are assigned left to right, so the literal "a_2" is suffixed too.
	want := []string{"a", "a_2", "a_2_2", "column_4", "column_5"}
	if got := UniqueNames(tbl); !reflect.DeepEqual(got, want) {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, testTable()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := `[{"id":"1","name":"ann","name_2":"x"},` +
		`{"id":"2","name":null,"name_2":"y"},` +
		`{"id":"3","name":"quote \"q\"","name_2":null}]` + "\n"
	if got := buf.String(); got != want {
		t.Errorf("got %s\nwant %s", got, want)
	}
}

func TestWriteJSON_NewlineDelimited(t *testing.T) {
	var buf bytes.Buffer
	err := WriteJSON(&buf, testTable(), WithNewlineDelimited(true), WithLimit(2))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := `{"id":"1","name":"ann","name_2":"x"}` + "\n" +
		`{"id":"2","name":null,"name_2":"y"}` + "\n"
	if got := buf.String(); got != want {
		t.Errorf("got %s\nwant %s", got, want)
	}
}

func TestWriteJSON_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, &delim.Table{Header: []string{"a"}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := buf.String(); got != "[]\n" {
		t.Errorf("got %q, want %q", got, "[]\n")
	}
}

func TestWrite_Delimited(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, testTable(), TSV); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "id\tname\tname\n1\tann\tx\n2\t\ty\n3\t\"quote \"\"q\"\"\"\n"
	if got := buf.String(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}

	if err := Write(&buf, testTable(), Format("xml")); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("expected ErrUnknownFormat, got %v", err)
	}
}

func TestToRecord(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	rec := ToRecord(testTable(), mem)
	defer rec.Release()

	if rec.NumRows() != 3 || rec.NumCols() != 3 {
		t.Fatalf("got %dx%d record, want 3x3", rec.NumRows(), rec.NumCols())
	}
	if got := rec.ColumnName(2); got != "name_2" {
		t.Errorf("column 2 = %q, want name_2", got)
	}

	names := rec.Column(1).(*array.String)
	if names.Value(0) != "ann" {
		t.Errorf("got %q, want %q", names.Value(0), "ann")
	}
	if !names.IsNull(1) {
		t.Error("absent cell should be null")
	}
	if !rec.Column(2).(*array.String).IsNull(2) {
		t.Error("missing trailing cell should be null")
	}
}

func TestWriteParquet(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteParquet(&buf, testTable()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tbl, err := pqarrow.ReadTable(context.Background(), bytes.NewReader(buf.Bytes()),
		parquet.NewReaderProperties(memory.DefaultAllocator),
		pqarrow.ArrowReadProperties{}, memory.DefaultAllocator)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	defer tbl.Release()

	if tbl.NumRows() != 3 {
		t.Errorf("NumRows() = %d, want 3", tbl.NumRows())
	}
	if got := tbl.Schema().Field(0).Name; got != "id" {
		t.Errorf("field 0 = %q, want id", got)
	}

	col := tbl.Column(1).Data().Chunk(0).(*array.String)
	if col.Value(2) != `quote "q"` {
		t.Errorf("got %q, want %q", col.Value(2), `quote "q"`)
	}
	if !col.IsNull(1) {
		t.Error("absent cell should read back as null")
	}
}
