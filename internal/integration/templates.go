package integration

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/flownest/flownest-server/internal/report"
)

var welcomeTmpl = template.Must(template.New("welcome").Parse(`<h2>Welcome to FlowNest, {{.Name}}!</h2>
<p>Your shop <strong>{{.Business}}</strong> is ready. Your free trial runs for {{.TrialDays}} days.</p>
<p>Add your services and staff to start billing.</p>`))

var dailyReportTmpl = template.Must(template.New("daily").Parse(`<h2>Daily Sales Report</h2>
<p>Hello {{.Name}}, here is your summary for {{.Date}}.</p>
<p>Total revenue: <strong>&#8377;{{printf "%.2f" .Summary.TotalRevenue}}</strong><br>
Transactions: <strong>{{.Summary.TotalTransactions}}</strong></p>
{{if .Summary.MethodBreakdown}}<table>
<tr><th>Method</th><th>Amount</th></tr>
{{range .Summary.MethodBreakdown}}<tr><td>{{.Method}}</td><td>&#8377;{{printf "%.2f" .Amount}}</td></tr>
{{end}}</table>{{end}}`))

// WelcomeEmail builds the message sent after owner registration.
func WelcomeEmail(to, name, business string, trialDays int) (Message, error) {
	var buf bytes.Buffer
	err := welcomeTmpl.Execute(&buf, struct {
		Name      string
		Business  string
		TrialDays int
	}{name, business, trialDays})
	if err != nil {
		return Message{}, fmt.Errorf("render welcome email: %w", err)
	}
	return Message{To: to, Subject: "Welcome to FlowNest", HTML: buf.String()}, nil
}

// DailyReportEmail builds the end-of-day summary message.
func DailyReportEmail(to, name string, s report.DailySummary) (Message, error) {
	var buf bytes.Buffer
	err := dailyReportTmpl.Execute(&buf, struct {
		Name    string
		Date    string
		Summary report.DailySummary
	}{name, s.Date.Format("02 Jan 2006"), s})
	if err != nil {
		return Message{}, fmt.Errorf("render daily report email: %w", err)
	}
	return Message{
		To:      to,
		Subject: fmt.Sprintf("Daily Sales Report - %s", s.Date.Format("02 Jan 2006")),
		HTML:    buf.String(),
	}, nil
}
