package templates

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/a-h/templ"
)

// InspectParams is the view of an inspected upload.
type InspectParams struct {
	FileName   string
	Size       int64
	Profile    string
	Separator  string
	Collapse   bool
	Headers    bool
	SkipLines  int
	Columns    []string
	Preamble   string
	Preview    [][]string
	TotalRows  int
	DurationMs int64
}

// InspectPage renders the result of an inspection.
func InspectPage(p InspectParams) templ.Component {
	return Layout(p.FileName, InspectPartial(p))
}

// InspectPartial renders the inspection result without the page chrome.
func InspectPartial(p InspectParams) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		if err := writeAll(w,
			`<h1>`, templ.EscapeString(p.FileName), `</h1>`,
			`<dl>`,
			`<dt>Size</dt><dd>`, FormatBytes(p.Size), `</dd>`,
			`<dt>Separator</dt><dd>`, templ.EscapeString(p.Separator), `</dd>`,
			`<dt>Collapse</dt><dd>`, yesNo(p.Collapse), `</dd>`,
			`<dt>Header line</dt><dd>`, yesNo(p.Headers), `</dd>`,
			`<dt>Preamble lines</dt><dd>`, strconv.Itoa(p.SkipLines), `</dd>`,
			`<dt>Rows</dt><dd>`, strconv.Itoa(p.TotalRows), `</dd>`,
		); err != nil {
			return err
		}
		if p.Profile != "" {
			if err := writeAll(w, `<dt>Profile</dt><dd>`, templ.EscapeString(p.Profile), `</dd>`); err != nil {
				return err
			}
		}
		if err := writeAll(w, `</dl>`); err != nil {
			return err
		}

		if p.Preamble != "" {
			if err := writeAll(w, `<h2>Preamble</h2><pre>`, templ.EscapeString(p.Preamble), `</pre>`); err != nil {
				return err
			}
		}

		if err := writeAll(w, `<h2>Preview</h2><table><thead><tr>`); err != nil {
			return err
		}
		for _, col := range p.Columns {
			if err := writeAll(w, `<th>`, templ.EscapeString(col), `</th>`); err != nil {
				return err
			}
		}
		if err := writeAll(w, `</tr></thead><tbody>`); err != nil {
			return err
		}
		for _, row := range p.Preview {
			if err := writeAll(w, `<tr>`); err != nil {
				return err
			}
			for i := range p.Columns {
				var cell string
				if i < len(row) {
					cell = row[i]
				}
				if err := writeAll(w, `<td>`, templ.EscapeString(cell), `</td>`); err != nil {
					return err
				}
			}
			if err := writeAll(w, `</tr>`); err != nil {
				return err
			}
		}
		return writeAll(w, `</tbody></table>`,
			`<p class="muted">Inspected in `, strconv.FormatInt(p.DurationMs, 10), ` ms.</p>`)
	})
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// FormatBytes formats a byte count for display.
func FormatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGTPE"[exp])
}
