package templates

import (
	"context"
	"strings"
	"testing"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/fastaframes/internal/core"
)

func render(t *testing.T, c templ.Component) string {
	t.Helper()
	var b strings.Builder
	require.NoError(t, c.Render(context.Background(), &b))
	return b.String()
}

func TestIndex(t *testing.T) {
	out := render(t, Index(core.AllColumns(), 100<<20))

	assert.Contains(t, out, `action="/preview"`)
	assert.Contains(t, out, `name="file"`)
	assert.Contains(t, out, "Maximum upload: 100 MiB")
	assert.Contains(t, out, "<td>organism_identifier</td><td>integer</td>")
}

func TestPreview_EscapesCells(t *testing.T) {
	tbl := core.NewTable([]string{core.ColProteinName, core.ColGeneName, core.ColSequence})
	tbl.Append(core.Row{core.ColProteinName: `<script>alert("x")</script>`, core.ColSequence: "MKV"})
	warnings := []core.Warning{{Code: "HDR001", Record: 1, Message: "header has no <prefix>"}}

	out := render(t, Preview(tbl, warnings))

	assert.NotContains(t, out, "<script>")
	assert.Contains(t, out, "&lt;script&gt;")
	assert.Contains(t, out, `<span class="null">null</span>`)
	assert.Contains(t, out, `<td class="seq">MKV</td>`)
	assert.Contains(t, out, "1 records, 1 warnings")
	assert.Contains(t, out, "HDR001 record 1: header has no &lt;prefix&gt;")
}

func TestPreview_Limit(t *testing.T) {
	tbl := core.NewTable([]string{core.ColSequence})
	for range PreviewLimit + 5 {
		tbl.Append(core.Row{core.ColSequence: "M"})
	}

	out := render(t, Preview(tbl, nil))

	assert.Equal(t, PreviewLimit, strings.Count(out, `<td class="seq">`))
	assert.Contains(t, out, "showing first 100 of 105 rows")
	assert.NotContains(t, out, "Warnings")
}

func TestErrorAlert(t *testing.T) {
	out := render(t, ErrorAlert("Bad <input>", "Retry", "REQ003"))

	assert.Equal(t, `<div class="error" role="alert"><strong>Bad &lt;input&gt;</strong> Retry <small>(REQ003)</small></div>`, out)
}
