package integration

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"

	"github.com/flownest/flownest-server/internal/config"
)

// Message is one outgoing email
type Message struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

// Mailer delivers email
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// NewMailer returns an HTTP mailer when an API endpoint is configured and a
// logging mailer otherwise.
func NewMailer(cfg config.MailConfig) Mailer {
	if cfg.APIURL == "" {
		log.Info().Msg("Mail API not configured, emails will be logged only")
		return LogMailer{}
	}
	return NewHTTPMailer(cfg)
}

// HTTPMailer posts messages to a transactional mail API
type HTTPMailer struct {
	client *resty.Client
	from   string
}

type sendRequest struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

// NewHTTPMailer creates a mailer for the configured endpoint.
func NewHTTPMailer(cfg config.MailConfig) *HTTPMailer {
	client := resty.New().
		SetBaseURL(cfg.APIURL).
		SetTimeout(cfg.Timeout).
		SetRetryCount(cfg.RetryCount).
		SetRetryWaitTime(500*time.Millisecond).
		SetRetryMaxWaitTime(5*time.Second).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return r != nil && r.StatusCode() >= http.StatusInternalServerError
		})
	if cfg.APIKey != "" {
		client.SetAuthToken(cfg.APIKey)
	}

	return &HTTPMailer{client: client, from: cfg.From}
}

func (m *HTTPMailer) Send(ctx context.Context, msg Message) error {
	resp, err := m.client.R().
		SetContext(ctx).
		SetBody(sendRequest{From: m.from, To: msg.To, Subject: msg.Subject, HTML: msg.HTML}).
		Post("")
	if err != nil {
		return fmt.Errorf("send mail to %s: %w", msg.To, err)
	}
	if resp.IsError() {
		return fmt.Errorf("send mail to %s: status %d: %s", msg.To, resp.StatusCode(), resp.String())
	}

	log.Debug().
		Str("to", msg.To).
		Str("subject", msg.Subject).
		Msg("Email sent")
	return nil
}

// LogMailer writes messages to the log instead of sending them
type LogMailer struct{}

func (LogMailer) Send(ctx context.Context, msg Message) error {
	log.Info().
		Str("to", msg.To).
		Str("subject", msg.Subject).
		Int("size", len(msg.HTML)).
		Msg("Email (not sent, mail API not configured)")
	return nil
}
