package templates

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// IndexParams configures the upload form.
type IndexParams struct {
	Profiles       []string
	Formats        []string
	ImportsEnabled bool
	MaxFileSize    int64
}

// Index renders the upload form page.
func Index(p IndexParams) templ.Component {
	return Layout("Inspect a file", indexBody(p))
}

func indexBody(p IndexParams) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		if err := writeAll(w,
			`<h1>Inspect a delimited file</h1>`,
			`<p class="muted">The separator, header and preamble are inferred unless set below. Maximum size: `,
			templ.EscapeString(FormatBytes(p.MaxFileSize)), `.</p>`,
			`<form method="post" action="/inspect" enctype="multipart/form-data">`,
			`<fieldset><legend>File</legend><input type="file" name="file" required></fieldset>`,
			`<fieldset><legend>Dialect</legend>`,
		); err != nil {
			return err
		}

		if len(p.Profiles) > 0 {
			if err := writeAll(w, `<label>Profile <select name="profile"><option value="">(none)</option>`); err != nil {
				return err
			}
			for _, name := range p.Profiles {
				e := templ.EscapeString(name)
				if err := writeAll(w, `<option value="`, e, `">`, e, `</option>`); err != nil {
					return err
				}
			}
			if err := writeAll(w, `</select></label>`); err != nil {
				return err
			}
		}

		if err := writeAll(w,
			`<label>Separator <input name="separator" placeholder="auto"></label>`,
			toggleSelect("headers", "Header line"),
			toggleSelect("collapse", "Collapse repeated separators"),
			toggleSelect("stripQuotes", "Strip quotes"),
			`<label>Skip lines <input name="skip" type="number" min="0"></label>`,
			`<label>Skip until line starting with <input name="skipUntil"></label>`,
			`<label>Comment characters <input name="comments" placeholder="#;"></label>`,
			`<label>Discard columns <input name="discard" placeholder="0,3"></label>`,
			`<label>Encoding <input name="encoding" placeholder="auto"></label>`,
			`</fieldset><button type="submit">Inspect</button></form>`,
		); err != nil {
			return err
		}

		if len(p.Formats) > 0 {
			if err := writeAll(w, `<h2>Convert</h2>`,
				`<form method="post" action="/api/convert" enctype="multipart/form-data">`,
				`<input type="file" name="file" required> <select name="format">`); err != nil {
				return err
			}
			for _, f := range p.Formats {
				e := templ.EscapeString(f)
				if err := writeAll(w, `<option value="`, e, `">`, e, `</option>`); err != nil {
					return err
				}
			}
			if err := writeAll(w, `</select> <button type="submit">Convert</button></form>`); err != nil {
				return err
			}
		}

		if !p.ImportsEnabled {
			return writeAll(w, `<p class="muted">Database imports are disabled.</p>`)
		}
		return nil
	})
}

func toggleSelect(name, label string) string {
	return `<label>` + label + ` <select name="` + name + `">` +
		`<option value="auto">auto</option><option value="yes">yes</option><option value="no">no</option>` +
		`</select></label>`
}
