package report

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"coachdesk-backend/internal/schedule"
)

var reportTmpl = template.Must(template.New("weekly").Funcs(template.FuncMap{
	"pct":  func(v float64) string { return fmt.Sprintf("%.1f%%", v) },
	"date": longDate,
}).Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>Weekly Attendance Report</title></head>
<body style="font-family: Arial, sans-serif; margin: 0; padding: 20px; background-color: #f5f5f5;">
<div style="max-width: 800px; margin: 0 auto; background-color: white; padding: 30px; border-radius: 8px;">
<h1 style="color: #333;">Weekly Attendance Report</h1>
<p style="color: #666;"><strong>Coach:</strong> {{.Staff.Name}}<br>
<strong>Period:</strong> {{date .Period.From}} to {{date .Period.To}}</p>

<h2 style="color: #333;">Team Summary</h2>
<table style="width: 100%; border-collapse: collapse;">
<thead><tr style="background-color: #f8f9fa;">
<th style="padding: 12px; border: 1px solid #ddd; text-align: left;">Team</th>
<th style="padding: 12px; border: 1px solid #ddd;">Sessions</th>
<th style="padding: 12px; border: 1px solid #ddd;">Attendance Rate</th>
<th style="padding: 12px; border: 1px solid #ddd;">Present</th>
<th style="padding: 12px; border: 1px solid #ddd;">Absent</th>
</tr></thead>
<tbody>
{{- range .Teams}}
<tr>
<td style="padding: 8px; border: 1px solid #ddd;">{{.TeamName}}</td>
<td style="padding: 8px; border: 1px solid #ddd; text-align: center;">{{.Sessions}}</td>
<td style="padding: 8px; border: 1px solid #ddd; text-align: center;">{{pct .AttendanceRate}}</td>
<td style="padding: 8px; border: 1px solid #ddd; text-align: center;">{{.Present}}</td>
<td style="padding: 8px; border: 1px solid #ddd; text-align: center;">{{.Absent}}</td>
</tr>
{{- end}}
</tbody>
</table>
{{if .TopAbsentees}}
<h2 style="color: #333;">Top Absent Students</h2>
<table style="width: 100%; border-collapse: collapse;">
<thead><tr style="background-color: #f8f9fa;">
<th style="padding: 12px; border: 1px solid #ddd; text-align: left;">Student</th>
<th style="padding: 12px; border: 1px solid #ddd; text-align: left;">Team</th>
<th style="padding: 12px; border: 1px solid #ddd;">Absences</th>
</tr></thead>
<tbody>
{{- range .TopAbsentees}}
<tr>
<td style="padding: 8px; border: 1px solid #ddd;">{{.Name}}</td>
<td style="padding: 8px; border: 1px solid #ddd;">{{.TeamName}}</td>
<td style="padding: 8px; border: 1px solid #ddd; text-align: center;">{{.Absences}}</td>
</tr>
{{- end}}
</tbody>
</table>
{{end}}
<div style="margin-top: 30px; padding-top: 20px; border-top: 1px solid #eee; color: #666; font-size: 14px;">
<p>This report was automatically generated by the Coach Dashboard system.</p>
</div>
</div>
</body>
</html>
`))

func Render(r Report) (string, error) {
	var buf bytes.Buffer
	if err := reportTmpl.Execute(&buf, r); err != nil {
		return "", fmt.Errorf("render weekly report: %w", err)
	}
	return buf.String(), nil
}

func Subject(r Report) string {
	return fmt.Sprintf("Weekly Attendance Report - %s to %s", longDate(r.Period.From), longDate(r.Period.To))
}

// longDate turns 2025-01-06 into "January 6, 2025".
func longDate(d string) string {
	t, err := time.Parse(schedule.DateLayout, d)
	if err != nil {
		return d
	}
	return t.Format("January 2, 2006")
}
