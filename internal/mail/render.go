package mail

import (
	"fmt"
	"html/template"
	"strings"

	"credvault/internal/domain/health"
)

var reportTemplate = template.Must(template.New("report").Parse(`<html><body>
<h1>Password Health Report</h1>
<p>Generated on: {{.GeneratedAt.Format "2006-01-02 15:04"}}</p>
<h2>Overall Security Score: <span style="color:{{.ScoreColor}}">{{.OverallScore}}%</span></h2>
<table border="1" cellpadding="5" style="border-collapse: collapse;">
<tr><th>Weak Passwords</th><th>Reused Passwords</th><th>Old Passwords</th></tr>
<tr><td align="center">{{.WeakCount}}</td><td align="center">{{.ReusedCount}}</td><td align="center">{{.OldCount}}</td></tr>
</table>
<h2>Details</h2>
<pre>{{.Detail}}</pre>
<p>Open the manager to review and improve your credentials.</p>
</body></html>
`))

// RenderReport produces the mail subject and HTML body for a report.
// The subject names the severity so the owner can triage from the
// inbox line alone.
func RenderReport(rep health.Report) (subject, htmlBody string, err error) {
	severity := "Good"
	color := "#00cc00"
	switch {
	case rep.OverallScore < 50:
		severity = "Critical"
		color = "#cc0000"
	case rep.OverallScore < 75:
		severity = "Needs Improvement"
		color = "#cccc00"
	}

	subject = fmt.Sprintf("Password Security Report - %s", severity)

	data := struct {
		health.Report
		ScoreColor string
	}{Report: rep, ScoreColor: color}

	var b strings.Builder
	if err := reportTemplate.Execute(&b, data); err != nil {
		return "", "", fmt.Errorf("render report: %w", err)
	}

	return subject, b.String(), nil
}
