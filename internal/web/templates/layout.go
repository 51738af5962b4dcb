// Package templates renders the HTML pages of the web UI.
package templates

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// Layout wraps body in the page chrome.
func Layout(title string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`+
			`<meta name="viewport" content="width=device-width, initial-scale=1">`+
			`<title>`+templ.EscapeString(title)+` · csvsniff</title>`+
			`<style>`+stylesheet+`</style></head><body><header><a href="/">csvsniff</a></header><main>`); err != nil {
			return err
		}
		if err := body.Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, `</main></body></html>`)
		return err
	})
}

const stylesheet = `body{font-family:system-ui,sans-serif;margin:0;color:#1f2937}` +
	`header{background:#111827;padding:.75rem 1.5rem}header a{color:#fff;text-decoration:none;font-weight:600}` +
	`main{max-width:72rem;margin:1.5rem auto;padding:0 1.5rem}` +
	`table{border-collapse:collapse;font-size:.875rem}td,th{border:1px solid #d1d5db;padding:.25rem .5rem;text-align:left}` +
	`th{background:#f3f4f6}dl{display:grid;grid-template-columns:max-content auto;gap:.25rem 1rem}dt{font-weight:600}` +
	`pre{background:#f9fafb;padding:.5rem;overflow:auto}fieldset{border:1px solid #e5e7eb;margin-bottom:1rem}` +
	`label{display:block;margin:.25rem 0}.alert{border:1px solid #fca5a5;background:#fef2f2;padding:.75rem;margin-bottom:1rem}` +
	`.muted{color:#6b7280}`

// writeAll writes each part in order, stopping at the first error.
func writeAll(w io.Writer, parts ...string) error {
	for _, p := range parts {
		if _, err := io.WriteString(w, p); err != nil {
			return err
		}
	}
	return nil
}
