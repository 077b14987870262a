package export

import (
	"bytes"
	"html/template"
	"time"

	"github.com/code-gritt/klientel/pkg/analytics"
)

var reportTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<style>
  body { font-family: Helvetica, Arial, sans-serif; color: #1a1a1a; margin: 2rem; }
  h1 { font-size: 1.4rem; }
  .generated { color: #666; font-size: 0.8rem; margin-bottom: 1.5rem; }
  table { border-collapse: collapse; width: 100%; }
  th, td { border: 1px solid #ccc; padding: 0.5rem 0.75rem; text-align: left; }
  th { background: #e0e0e0; }
  td.num { text-align: right; }
</style>
</head>
<body>
<h1>Pipeline Report</h1>
<div class="generated">Generated {{.GeneratedAt}}</div>
<table>
<tr><th>Status</th><th>Lead Count</th><th>Conversion Rate (%)</th><th>Avg Time in Stage (days)</th></tr>
{{range .Rows}}<tr>
<td>{{.Status}}</td>
<td class="num">{{.LeadCount}}</td>
<td class="num">{{printf "%.2f" .ConversionRatePercent}}</td>
<td class="num">{{printf "%.2f" .AvgDwellDays}}</td>
</tr>
{{end}}</table>
</body>
</html>
`))

func renderReportHTML(report []analytics.Metric, now time.Time) (string, error) {
	var buf bytes.Buffer
	err := reportTemplate.Execute(&buf, struct {
		GeneratedAt string
		Rows        []analytics.Metric
	}{
		GeneratedAt: now.Format("2006-01-02 15:04 MST"),
		Rows:        report,
	})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}
