package render

import (
	"bytes"
	"fmt"
	"html/template"

	"property_report/pkg/core/report"
	"property_report/pkg/core/utils"
)

var page = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: Georgia, "Times New Roman", serif; max-width: 8.5in; margin: 0 auto; padding: 0.5in; color: #111; }
h1 { font-size: 1.6em; border-bottom: 2px solid #111; padding-bottom: 0.2em; }
h2 { font-size: 1.2em; margin-top: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 0.6em 0; font-size: 0.9em; }
th, td { border: 1px solid #999; padding: 4px 6px; text-align: left; }
th { background: #eee; }
code { font-size: 0.85em; }
@media print {
  body { padding: 0; }
  h2 { break-after: avoid; }
  table, ul { break-inside: avoid; }
}
@page { size: letter; margin: 0.6in; }
</style>
</head>
<body>
{{.Body}}
</body>
</html>
`))

// HTML renders the Markdown report into a standalone, print-ready page.
func HTML(resp *report.GenerateResponse) ([]byte, error) {
	body, err := utils.MarkdownToHTML(Markdown(resp))
	if err != nil {
		return nil, err
	}

	title := "Investment Report"
	if resp.Report != nil && resp.Report.Subject.Address != "" {
		title += ": " + resp.Report.Subject.Address
	}

	var buf bytes.Buffer
	err = page.Execute(&buf, struct {
		Title string
		Body  template.HTML
	}{title, template.HTML(body)})
	if err != nil {
		return nil, fmt.Errorf("failed to render page: %w", err)
	}
	return buf.Bytes(), nil
}
