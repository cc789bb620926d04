// Package templates renders the fastaframes HTML views as templ components.
//
// The components are hand-written templ.ComponentFunc values, not output
// of the templ generator; there are no .templ sources. Every dynamic value
// is passed through templ.EscapeString before it is written.
package templates

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/fastaframes/internal/core"
)

// PreviewLimit caps the rows shown in a preview table.
const PreviewLimit = 100

const pageStyle = `body{font-family:system-ui,sans-serif;margin:2rem;color:#1f2933}
table{border-collapse:collapse;font-size:.85rem}
th,td{border:1px solid #cbd2d9;padding:.25rem .5rem;text-align:left;vertical-align:top}
td.seq{font-family:monospace;max-width:24rem;overflow-wrap:anywhere}
.warn{color:#b44d12}.error{border:1px solid #e12d39;padding:.5rem;color:#8a041a}
.null{color:#9aa5b1}`

// Index renders the upload page.
func Index(columns []core.Column, maxUpload int64) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
		b.WriteString(`<title>fastaframes</title><style>` + pageStyle + `</style></head><body>`)
		b.WriteString(`<h1>fastaframes</h1>`)
		b.WriteString(`<p>Upload a UniProt FASTA file to preview it as a table.</p>`)
		b.WriteString(`<form method="post" action="/preview" enctype="multipart/form-data">`)
		b.WriteString(`<input type="file" name="file" accept=".fasta,.fa,.faa,.txt" required> `)
		b.WriteString(`<button type="submit">Preview</button></form>`)
		fmt.Fprintf(&b, `<p class="null">Maximum upload: %d MiB</p>`, maxUpload>>20)

		b.WriteString(`<h2>Columns</h2><table><tr><th>name</th><th>type</th></tr>`)
		for _, c := range columns {
			fmt.Fprintf(&b, `<tr><td>%s</td><td>%s</td></tr>`,
				templ.EscapeString(c.Name), templ.EscapeString(c.Type.String()))
		}
		b.WriteString(`</table></body></html>`)

		_, err := io.WriteString(w, b.String())
		return err
	})
}

// Preview renders up to PreviewLimit rows of t followed by the warnings.
func Preview(t *core.Table, warnings []core.Warning) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		fmt.Fprintf(&b, `<section id="preview"><p>%d records, %d warnings</p>`, t.Len(), len(warnings))

		b.WriteString(`<table><tr>`)
		for _, col := range t.Columns {
			fmt.Fprintf(&b, `<th>%s</th>`, templ.EscapeString(col))
		}
		b.WriteString(`</tr>`)

		for i, row := range t.Rows {
			if i == PreviewLimit {
				break
			}
			b.WriteString(`<tr>`)
			for _, col := range t.Columns {
				writeCell(&b, col, row[col])
			}
			b.WriteString(`</tr>`)
		}
		b.WriteString(`</table>`)
		if t.Len() > PreviewLimit {
			fmt.Fprintf(&b, `<p class="null">showing first %d of %d rows</p>`, PreviewLimit, t.Len())
		}

		if len(warnings) > 0 {
			b.WriteString(`<h3>Warnings</h3><ul class="warn">`)
			for _, warn := range warnings {
				fmt.Fprintf(&b, `<li>%s</li>`, templ.EscapeString(warn.String()))
			}
			b.WriteString(`</ul>`)
		}
		b.WriteString(`</section>`)

		_, err := io.WriteString(w, b.String())
		return err
	})
}

func writeCell(b *strings.Builder, col string, v any) {
	class := ""
	if col == core.ColSequence {
		class = ` class="seq"`
	}
	if v == nil {
		fmt.Fprintf(b, `<td%s><span class="null">null</span></td>`, class)
		return
	}
	fmt.Fprintf(b, `<td%s>%s</td>`, class, templ.EscapeString(fmt.Sprint(v)))
}

// ErrorAlert renders a user-facing error fragment.
func ErrorAlert(message, action, code string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w, `<div class="error" role="alert"><strong>%s</strong> %s <small>(%s)</small></div>`,
			templ.EscapeString(message), templ.EscapeString(action), templ.EscapeString(code))
		return err
	})
}
