package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/url"

	"github.com/google/uuid"
	"github.com/resend/resend-go/v2"
	"go.uber.org/zap"

	"github.com/cyphera/cyphera-rebalancer/internal/types/business"
)

const summaryTemplate = `<h2>Rebalance run {{.RunDate}}: {{.Status}}</h2>
<p>Sentiment {{.SentimentScore}} ({{.Classification}}), action {{.Action}} {{.BasisPoints}} bps{{if .DryRun}} (dry run){{end}}{{if .Forced}} (forced){{end}}.</p>
<table>
<tr><td>Processed</td><td>{{.Processed}}</td></tr>
<tr><td>Succeeded</td><td>{{.Succeeded}}</td></tr>
<tr><td>Failed</td><td>{{.Failed}}</td></tr>
<tr><td>Retried</td><td>{{.Retried}}</td></tr>
<tr><td>Volume (USD)</td><td>{{.VolumeUSD.StringFixed 2}}</td></tr>
<tr><td>Fees (USD)</td><td>{{.FeeUSD.StringFixed 2}}</td></tr>
</table>
{{if .Failures}}<h3>Failures</h3>
<ul>{{range .Failures}}<li>{{.Account}} [{{.Stage}}/{{.Category}}] {{.Message}}</li>
{{end}}</ul>{{end}}`

// SummaryNotifier emails the daily run summary to operators through Resend.
type SummaryNotifier struct {
	client *resend.Client
	from   string
	to     []string
	tmpl   *template.Template
	logger *zap.Logger
}

// NewSummaryNotifier builds a notifier. baseURL overrides the Resend endpoint when non-empty.
func NewSummaryNotifier(apiKey, from string, to []string, baseURL string, logger *zap.Logger) (*SummaryNotifier, error) {
	client := resend.NewClient(apiKey)
	if baseURL != "" {
		u, err := url.Parse(baseURL)
		if err != nil {
			return nil, fmt.Errorf("invalid resend base url: %w", err)
		}
		client.BaseURL = u
	}

	tmpl, err := template.New("summary").Parse(summaryTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse summary template: %w", err)
	}

	return &SummaryNotifier{
		client: client,
		from:   from,
		to:     to,
		tmpl:   tmpl,
		logger: logger,
	}, nil
}

// SendRunSummary renders and sends the summary.
func (n *SummaryNotifier) SendRunSummary(_ context.Context, summary *business.RunSummary) error {
	if len(n.to) == 0 {
		return nil
	}

	var html bytes.Buffer
	if err := n.tmpl.Execute(&html, summary); err != nil {
		return fmt.Errorf("failed to render summary: %w", err)
	}

	params := &resend.SendEmailRequest{
		From:    n.from,
		To:      n.to,
		Subject: fmt.Sprintf("Rebalance %s: %d/%d succeeded, volume $%s", summary.RunDate, summary.Succeeded, summary.Processed, summary.VolumeUSD.StringFixed(2)),
		Html:    html.String(),
		Headers: map[string]string{
			"X-Entity-Ref-ID": uuid.New().String(),
		},
		Tags: []resend.Tag{
			{Name: "category", Value: "run_summary"},
			{Name: "status", Value: summary.Status},
		},
	}

	sent, err := n.client.Emails.Send(params)
	if err != nil {
		n.logger.Error("failed to send run summary email", zap.Error(err), zap.Strings("to", n.to))
		return fmt.Errorf("failed to send email: %w", err)
	}

	n.logger.Info("run summary email sent",
		zap.String("email_id", sent.Id),
		zap.String("run_id", summary.RunID.String()))
	return nil
}
