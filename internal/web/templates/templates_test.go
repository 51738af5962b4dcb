package templates

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{1024, "1.0 KB"},
		{1536, "1.5 KB"},
		{100 * 1024 * 1024, "100.0 MB"},
	}
	for _, tt := range tests {
		if got := FormatBytes(tt.in); got != tt.want {
			t.Errorf("FormatBytes(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestInspectPage_Escapes(t *testing.T) {
	var buf bytes.Buffer
	p := InspectParams{
		FileName:  "<script>.csv",
		Separator: "semicolon",
		Columns:   []string{"a&b", "c"},
		Preview:   [][]string{{"<b>1</b>"}},
		Preamble:  "Report\n",
		TotalRows: 1,
	}
	if err := InspectPage(p).Render(context.Background(), &buf); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	out := buf.String()

	for _, want := range []string{"&lt;script&gt;.csv", "<th>a&amp;b</th>", "<td>&lt;b&gt;1&lt;/b&gt;</td><td></td>", "<pre>Report\n</pre>"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
	if strings.Contains(out, "<script>") {
		t.Error("file name was not escaped")
	}
}

func TestIndex(t *testing.T) {
	var buf bytes.Buffer
	err := Index(IndexParams{Profiles: []string{"bank"}, MaxFileSize: 1024}).Render(context.Background(), &buf)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, `<option value="bank">bank</option>`) {
		t.Error("profile option missing")
	}
	if !strings.Contains(out, "Database imports are disabled") {
		t.Error("disabled imports notice missing")
	}
}

func TestErrorAlert(t *testing.T) {
	var buf bytes.Buffer
	if err := ErrorAlert("Bad <file>", "", "FILE002").Render(context.Background(), &buf); err != nil {
		t.Fatal(err)
	}
	got := buf.String()
	want := `<div class="alert" role="alert"><strong>Bad &lt;file&gt;</strong><p class="muted">Code: FILE002</p></div>`
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
