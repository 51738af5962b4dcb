package templates

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// ErrorAlert renders a user-facing error with its suggested action and code.
func ErrorAlert(message, action, code string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		if err := writeAll(w, `<div class="alert" role="alert"><strong>`, templ.EscapeString(message), `</strong>`); err != nil {
			return err
		}
		if action != "" {
			if err := writeAll(w, `<p>`, templ.EscapeString(action), `</p>`); err != nil {
				return err
			}
		}
		return writeAll(w, `<p class="muted">Code: `, templ.EscapeString(code), `</p></div>`)
	})
}

// ErrorPage renders an error alert as a full page.
func ErrorPage(message, action, code string) templ.Component {
	return Layout("Error", ErrorAlert(message, action, code))
}
