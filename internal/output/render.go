package output

import (
	"html/template"
	"io"

	"rota-engine/internal/schedule"
)

var rotaTmpl = template.Must(template.New("rota").Parse(`<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <title>Rota {{.Start.Format "2006-01-02"}}</title>
  <style>
    body { font-family: sans-serif; margin: 2rem; }
    table { border-collapse: collapse; margin-bottom: 1.5rem; }
    th, td { border: 1px solid #999; padding: 0.3rem 0.6rem; text-align: center; }
    th { background: #eee; }
    td.name { text-align: left; font-weight: bold; }
  </style>
</head>
<body>
  <h1>Rota starting {{.Start.Format "Monday 02 January 2006"}}</h1>
  {{range .Weeks}}
  <table>
    <tr>{{range .Header}}<th>{{.}}</th>{{end}}</tr>
    {{range .Rows}}
    <tr>{{range $i, $cell := .}}{{if eq $i 0}}<td class="name">{{$cell}}</td>{{else}}<td>{{$cell}}</td>{{end}}{{end}}</tr>
    {{end}}
  </table>
  {{end}}
</body>
</html>
`))

// RenderHTML writes the table as a standalone HTML page, one <table>
// per week block.
func RenderHTML(w io.Writer, t *schedule.Table) error {
	return rotaTmpl.Execute(w, t)
}
