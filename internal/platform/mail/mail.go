package mail

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"

	"github.com/resend/resend-go/v2"
	"github.com/shrimpsizemoose/trekker/logger"
)

// batchSize is the Resend batch API limit.
const batchSize = 100

type Message struct {
	From    string // empty means the mailer default
	To      []string
	Cc      []string
	ReplyTo string
	Subject string
	HTML    string
	Text    string
}

type Mailer interface {
	// Send returns the provider message id.
	Send(ctx context.Context, msg Message) (string, error)
	// SendBatch returns ids in request order.
	SendBatch(ctx context.Context, msgs []Message) ([]string, error)
}

// New picks Resend when an API key is configured and a logging mailer otherwise.
func New(apiKey, from string) Mailer {
	if strings.TrimSpace(apiKey) == "" {
		logger.Info.Println("no resend api key configured, mails are only logged")
		return &LogMailer{}
	}
	return NewResendMailer(apiKey, from)
}

// ===== resend =====

type ResendMailer struct {
	client *resend.Client
	from   string
}

func NewResendMailer(apiKey, from string) *ResendMailer {
	return &ResendMailer{client: resend.NewClient(apiKey), from: from}
}

// NewResendMailerWithBaseURL points the client at another API host.
func NewResendMailerWithBaseURL(apiKey, from, baseURL string, hc *http.Client) (*ResendMailer, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}
	client := resend.NewCustomClient(hc, apiKey)
	client.BaseURL = u
	return &ResendMailer{client: client, from: from}, nil
}

func (m *ResendMailer) params(msg Message) *resend.SendEmailRequest {
	from := msg.From
	if from == "" {
		from = m.from
	}
	p := &resend.SendEmailRequest{
		From:    from,
		To:      msg.To,
		Cc:      msg.Cc,
		Subject: msg.Subject,
		Html:    msg.HTML,
		Text:    msg.Text,
	}
	if msg.ReplyTo != "" {
		p.ReplyTo = msg.ReplyTo
	}
	return p
}

func (m *ResendMailer) Send(ctx context.Context, msg Message) (string, error) {
	sent, err := m.client.Emails.SendWithContext(ctx, m.params(msg))
	if err != nil {
		logger.Error.Printf("resend send failed to=%v subject=%q: %v", msg.To, msg.Subject, err)
		return "", fmt.Errorf("resend send failed: %w", err)
	}
	logger.Info.Printf("resend sent id=%s to=%v", sent.Id, msg.To)
	return sent.Id, nil
}

func (m *ResendMailer) SendBatch(ctx context.Context, msgs []Message) ([]string, error) {
	var ids []string
	for i := 0; i < len(msgs); i += batchSize {
		end := i + batchSize
		if end > len(msgs) {
			end = len(msgs)
		}

		params := make([]*resend.SendEmailRequest, 0, end-i)
		for _, msg := range msgs[i:end] {
			params = append(params, m.params(msg))
		}

		resp, err := m.client.Batch.SendWithContext(ctx, params)
		if err != nil {
			logger.Error.Printf("resend batch failed size=%d: %v", len(params), err)
			return ids, fmt.Errorf("resend batch send failed: %w", err)
		}
		for _, item := range resp.Data {
			ids = append(ids, item.Id)
		}
		logger.Info.Printf("resend batch sent count=%d total=%d", len(params), len(ids))
	}
	return ids, nil
}

// ===== log only =====

// LogMailer writes a line per mail instead of delivering it.
type LogMailer struct {
	n atomic.Int64
}

func (m *LogMailer) Send(_ context.Context, msg Message) (string, error) {
	id := fmt.Sprintf("log-%d", m.n.Add(1))
	logger.Info.Printf("mail %s to=%v cc=%v subject=%q (%d bytes html)", id, msg.To, msg.Cc, msg.Subject, len(msg.HTML))
	return id, nil
}

func (m *LogMailer) SendBatch(ctx context.Context, msgs []Message) ([]string, error) {
	ids := make([]string, 0, len(msgs))
	for _, msg := range msgs {
		id, _ := m.Send(ctx, msg)
		ids = append(ids, id)
	}
	return ids, nil
}
